/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// DefaultTable holds patient documents when no table is configured.
const DefaultTable = "patient_documents"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// queryable is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore keeps document vectors in Postgres using pgvector.
type PGStore struct {
	db       queryable
	embedder Embedder
	table    string
}

// NewPGStore creates a store over db. The table name must be a plain
// lower-case identifier; it is interpolated into SQL.
func NewPGStore(db queryable, e Embedder, table string) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if e == nil {
		return nil, errors.New("embedder is required")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PGStore{db: db, embedder: e, table: table}, nil
}

// EnsureSchema creates the vector extension, table and index if missing.
// dimensions must match the embedder output.
func (s *PGStore) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table, dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_metadata_idx ON %[1]s USING GIN (metadata)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx ON %[1]s USING hnsw (embedding vector_cosine_ops)`, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema for %s: %w", s.table, err)
		}
	}
	return nil
}

// Upsert embeds and stores docs, replacing documents with the same id.
func (s *PGStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	vectors, err := s.embedder.Embed(ctx, TaskDocument, Texts(docs)...)
	if err != nil {
		return err
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs))
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, document, metadata, embedding)
		VALUES ($1, $2, $3::jsonb, $4::vector)
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()`, s.table)
	for i, d := range docs {
		meta, err := metadataJSON(d.Metadata)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(ctx, stmt, d.ID, d.Document, meta, pgvector.NewVector(vectors[i])); err != nil {
			return fmt.Errorf("upserting document %s: %w", d.ID, err)
		}
	}
	return nil
}

// Retrieve returns up to topK documents whose metadata contains filter,
// nearest first by cosine distance.
func (s *PGStore) Retrieve(ctx context.Context, query string, topK int, filter map[string]string) ([]Document, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", topK)
	}
	vectors, err := s.embedder.Embed(ctx, TaskQuery, query)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d vectors for one query", len(vectors))
	}
	where, err := metadataJSON(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT id, document, metadata, embedding <=> $1::vector AS distance
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3`, s.table), pgvector.NewVector(vectors[0]), where, topK)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d    Document
			meta []byte
		)
		if err := rows.Scan(&d.ID, &d.Document, &meta, &d.Distance); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", d.ID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func metadataJSON(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}
