/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"chainguard.dev/trialscreen/agents/retry"
	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

// keywordEmbedder maps each text onto counts of a fixed vocabulary.
type keywordEmbedder struct {
	vocab []string
	calls int
	err   error
}

func (k *keywordEmbedder) Embed(_ context.Context, _ Task, texts ...string) ([][]float32, error) {
	k.calls++
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v := make([]float32, len(k.vocab))
		for i, w := range k.vocab {
			v[i] = float32(strings.Count(strings.ToLower(t), w))
		}
		out = append(out, v)
	}
	return out, nil
}

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	m, err := NewMemoryStore(&keywordEmbedder{vocab: []string{"diabetes", "insulin", "kidney"}})
	if err != nil {
		t.Fatalf("NewMemoryStore() = %v", err)
	}
	return m
}

func TestMemoryStoreRetrieve(t *testing.T) {
	m := newMemory(t)
	docs := []Document{
		{ID: "a", Document: "diabetes diabetes", Metadata: map[string]string{"patient_id": "P1"}},
		{ID: "b", Document: "insulin kidney", Metadata: map[string]string{"patient_id": "P1"}},
		{ID: "c", Document: "diabetes", Metadata: map[string]string{"patient_id": "P2"}},
	}
	if err := m.Upsert(context.Background(), docs); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}

	got, err := m.Retrieve(context.Background(), "diabetes", 5, map[string]string{"patient_id": "P1"})
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids(got)); diff != "" {
		t.Errorf("Retrieve() ids mismatch (-want +got):\n%s", diff)
	}
	if got[0].Distance > 1e-6 || math.Abs(got[1].Distance-1) > 1e-6 {
		t.Errorf("distances = %v, %v, want 0 and 1", got[0].Distance, got[1].Distance)
	}

	got, err = m.Retrieve(context.Background(), "diabetes", 1, nil)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Errorf("Retrieve(topK=1) ids mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	if err := m.Upsert(ctx, []Document{{ID: "a", Document: "kidney"}}); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}
	if err := m.Upsert(ctx, []Document{{ID: "a", Document: "insulin"}}); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	got, err := m.Retrieve(ctx, "insulin", 3, nil)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if len(got) != 1 || got[0].Document != "insulin" {
		t.Errorf("Retrieve() = %+v, want the replaced document", got)
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	if _, err := NewMemoryStore(nil); err == nil {
		t.Error("NewMemoryStore(nil) = nil, want error")
	}
	m, err := NewMemoryStore(&keywordEmbedder{err: errors.New("quota")})
	if err != nil {
		t.Fatalf("NewMemoryStore() = %v", err)
	}
	if _, err := m.Retrieve(context.Background(), "q", 0, nil); err == nil {
		t.Error("Retrieve(topK=0) = nil, want error")
	}
	if _, err := m.Retrieve(context.Background(), "q", 1, nil); err == nil {
		t.Error("Retrieve() with failing embedder = nil, want error")
	}
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

type recordingIndexer struct {
	batches [][]Document
}

func (r *recordingIndexer) Upsert(_ context.Context, docs []Document) error {
	r.batches = append(r.batches, docs)
	return nil
}

func TestUpsertPatients(t *testing.T) {
	patients := make([]criteria.Patient, 0, 150)
	for i := range 150 {
		patients = append(patients, criteria.Patient{"patient_id": string(rune('A'+i%26)) + strings.Repeat("x", i/26), "age": "50"})
	}
	idx := &recordingIndexer{}
	if err := Upsert(context.Background(), idx, patients); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}
	if len(idx.batches) != 2 || len(idx.batches[0]) != 100 || len(idx.batches[1]) != 50 {
		t.Fatalf("batches = %d, want 100 + 50", len(idx.batches))
	}
	first := idx.batches[0][0]
	if first.ID != "A" || first.Metadata["patient_id"] != "A" || !strings.Contains(first.Document, "Age: 50") {
		t.Errorf("first document = %+v", first)
	}

	idx = &recordingIndexer{}
	err := Upsert(context.Background(), idx, []criteria.Patient{{"patient_id": "P1"}, {"age": "3"}})
	if err == nil || !strings.Contains(err.Error(), "patient 1") {
		t.Errorf("Upsert() = %v, want missing id error for patient 1", err)
	}
	if len(idx.batches) != 0 {
		t.Error("Upsert() wrote documents despite an invalid patient")
	}
}

type fakeEmbedContent struct {
	calls   int
	sizes   []int
	configs []*genai.EmbedContentConfig
	errs    []error
	short   bool
}

func (f *fakeEmbedContent) EmbedContent(_ context.Context, _ string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	f.sizes = append(f.sizes, len(contents))
	f.configs = append(f.configs, config)
	resp := &genai.EmbedContentResponse{}
	n := len(contents)
	if f.short {
		n--
	}
	for range n {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{3, 4}})
	}
	return resp, nil
}

func TestGeminiEmbedder(t *testing.T) {
	fake := &fakeEmbedContent{errs: []error{errors.New("503 Service Unavailable")}}
	g, err := NewGeminiEmbedder(fake,
		WithDimensions(2),
		WithEmbeddingRetry(retry.Config{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}))
	if err != nil {
		t.Fatalf("NewGeminiEmbedder() = %v", err)
	}
	texts := make([]string, 120)
	got, err := g.Embed(context.Background(), TaskDocument, texts...)
	if err != nil {
		t.Fatalf("Embed() = %v", err)
	}
	if len(got) != 120 {
		t.Fatalf("len(Embed()) = %d, want 120", len(got))
	}
	if diff := cmp.Diff([]float32{0.6, 0.8}, got[0]); diff != "" {
		t.Errorf("vector not normalised (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{100, 20}, fake.sizes); diff != "" {
		t.Errorf("batch sizes mismatch (-want +got):\n%s", diff)
	}
	if c := fake.configs[0]; c.TaskType != "RETRIEVAL_DOCUMENT" || c.OutputDimensionality == nil || *c.OutputDimensionality != 2 {
		t.Errorf("config = %+v", c)
	}
}

func TestGeminiEmbedderErrors(t *testing.T) {
	if _, err := NewGeminiEmbedder(nil); err == nil {
		t.Error("NewGeminiEmbedder(nil) = nil, want error")
	}
	if _, err := NewGeminiEmbedder(&fakeEmbedContent{}, WithDimensions(0)); err == nil {
		t.Error("WithDimensions(0) = nil, want error")
	}
	g, err := NewGeminiEmbedder(&fakeEmbedContent{short: true})
	if err != nil {
		t.Fatalf("NewGeminiEmbedder() = %v", err)
	}
	if _, err := g.Embed(context.Background(), TaskQuery, "a", "b"); err == nil {
		t.Error("Embed() with a short response = nil, want error")
	}
	g, err = NewGeminiEmbedder(&fakeEmbedContent{errs: []error{errors.New("permission denied")}})
	if err != nil {
		t.Fatalf("NewGeminiEmbedder() = %v", err)
	}
	if _, err := g.Embed(context.Background(), TaskQuery, "a"); err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Embed() = %v, want permission error", err)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "same", a: []float32{1, 0}, b: []float32{2, 0}, want: 0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 2},
		{name: "zero", a: []float32{0, 0}, b: []float32{1, 0}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}
