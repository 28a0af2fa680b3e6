/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"

	"chainguard.dev/trialscreen/agents/retry"
	"google.golang.org/genai"
)

// Task tells the embedder which side of a search the text is on.
type Task string

const (
	TaskDocument Task = "RETRIEVAL_DOCUMENT"
	TaskQuery    Task = "RETRIEVAL_QUERY"
)

// Embedder turns texts into vectors of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, task Task, texts ...string) ([][]float32, error)
}

// DefaultEmbeddingModel is the Gemini embedding model used when none is configured.
const DefaultEmbeddingModel = "gemini-embedding-001"

// maxBatch is the per-request item limit of the embedding API.
const maxBatch = 100

// ContentEmbedder is the subset of *genai.Models used for embeddings.
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder embeds text with a Gemini embedding model and normalises
// the vectors to unit length.
type GeminiEmbedder struct {
	models     ContentEmbedder
	model      string
	dimensions int32
	retry      retry.Config
}

// GeminiOption configures a GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder) error

// WithEmbeddingModel overrides DefaultEmbeddingModel.
func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiEmbedder) error {
		if model == "" {
			return errors.New("embedding model cannot be empty")
		}
		g.model = model
		return nil
	}
}

// WithDimensions truncates vectors to n dimensions. It must match the
// dimension of any persistent index.
func WithDimensions(n int) GeminiOption {
	return func(g *GeminiEmbedder) error {
		if n <= 0 || n > math.MaxInt32 {
			return fmt.Errorf("dimensions must be positive, got %d", n)
		}
		g.dimensions = int32(n)
		return nil
	}
}

// WithEmbeddingRetry overrides the retry policy for transient failures.
func WithEmbeddingRetry(cfg retry.Config) GeminiOption {
	return func(g *GeminiEmbedder) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		g.retry = cfg
		return nil
	}
}

// NewGeminiEmbedder creates an embedder over client.Models.
func NewGeminiEmbedder(models ContentEmbedder, opts ...GeminiOption) (*GeminiEmbedder, error) {
	if models == nil {
		return nil, errors.New("models client is required")
	}
	g := &GeminiEmbedder{
		models: models,
		model:  DefaultEmbeddingModel,
		retry:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return g, nil
}

// Embed implements Embedder.
func (g *GeminiEmbedder) Embed(ctx context.Context, task Task, texts ...string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		batch := texts[start:min(start+maxBatch, len(texts))]
		contents := make([]*genai.Content, 0, len(batch))
		for _, t := range batch {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}
		cfg := &genai.EmbedContentConfig{TaskType: string(task)}
		if g.dimensions > 0 {
			cfg.OutputDimensionality = genai.Ptr(g.dimensions)
		}

		resp, err := retry.Do(ctx, g.retry, "embed_content", retry.TransientMessage,
			func(ctx context.Context) (*genai.EmbedContentResponse, error) {
				return g.models.EmbedContent(ctx, g.model, contents, cfg)
			})
		if err != nil {
			return nil, fmt.Errorf("embedding %d texts: %w", len(batch), err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(batch))
		}
		for _, e := range resp.Embeddings {
			if e == nil || len(e.Values) == 0 {
				return nil, errors.New("embedding response contains an empty vector")
			}
			out = append(out, normalize(e.Values))
		}
	}
	return out, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// cosineDistance is 1 - cos(a, b). Vectors of different length are maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
