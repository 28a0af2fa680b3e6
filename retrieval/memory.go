/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-process vector index.
type MemoryStore struct {
	embedder Embedder

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	doc    Document
	vector []float32
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(e Embedder) (*MemoryStore, error) {
	if e == nil {
		return nil, errors.New("embedder is required")
	}
	return &MemoryStore{embedder: e, entries: make(map[string]entry)}, nil
}

// Upsert embeds and stores docs, replacing documents with the same id.
func (m *MemoryStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	vectors, err := m.embedder.Embed(ctx, TaskDocument, Texts(docs)...)
	if err != nil {
		return err
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range docs {
		d.Metadata = maps.Clone(d.Metadata)
		m.entries[d.ID] = entry{doc: d, vector: vectors[i]}
	}
	return nil
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Retrieve returns up to topK documents matching filter, nearest first.
// Ties are broken by id so results are stable.
func (m *MemoryStore) Retrieve(ctx context.Context, query string, topK int, filter map[string]string) ([]Document, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", topK)
	}
	vectors, err := m.embedder.Embed(ctx, TaskQuery, query)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d vectors for one query", len(vectors))
	}
	q := vectors[0]

	m.mu.RLock()
	found := make([]Document, 0, len(m.entries))
	for _, e := range m.entries {
		if !matches(e.doc.Metadata, filter) {
			continue
		}
		d := e.doc
		d.Metadata = maps.Clone(d.Metadata)
		d.Distance = cosineDistance(q, e.vector)
		found = append(found, d)
	}
	m.mu.RUnlock()

	slices.SortFunc(found, func(a, b Document) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return found[:min(topK, len(found))], nil
}
