/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retrieval indexes patient cards as vectors and returns the nearest
// snippets for a query, restricted by exact metadata filters.
//
// Two stores are provided: PGStore keeps vectors in Postgres with pgvector,
// MemoryStore keeps them in process for tests and local runs. Both rank by
// cosine distance and both implement matcher.Retriever. Documents are
// embedded by an Embedder, normally GeminiEmbedder.
package retrieval
