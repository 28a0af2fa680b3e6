/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/trialscreen/agents/metaagent"
	"chainguard.dev/trialscreen/agents/retry"
	"chainguard.dev/trialscreen/ingest"
	"chainguard.dev/trialscreen/retrieval"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
	"chainguard.dev/trialscreen/screening/verifier"
	"chainguard.dev/trialscreen/sink"
	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"
)

// vectorStore is implemented by both retrieval stores.
type vectorStore interface {
	retrieval.Indexer
	matcher.Retriever
}

// agentConfig returns the provider settings for model. Prompts are left for
// the constructors to fill in.
func (c *config) agentConfig(ctx context.Context, model string) (metaagent.Config, error) {
	out := metaagent.Config{
		Model:   model,
		APIKey:  c.GeminiAPIKey,
		Project: c.Project,
		Region:  c.Region,
	}
	if strings.HasPrefix(strings.ToLower(model), "claude-") {
		out.APIKey = c.AnthropicAPIKey
	}
	if c.Retry != (retry.Config{}) {
		out.Retry = &c.Retry
	}
	if out.APIKey == "" && out.Project == "" {
		project, err := c.detectProject(ctx)
		if err != nil {
			return metaagent.Config{}, err
		}
		out.Project = project
	}
	return out, nil
}

func (c *config) detectProject(ctx context.Context) (string, error) {
	project, err := metadata.ProjectIDWithContext(ctx)
	if err != nil || project == "" {
		return "", fmt.Errorf("no API key or GOOGLE_CLOUD_PROJECT set, and project detection failed: %w", err)
	}
	clog.FromContext(ctx).With("project_id", project).Info("Detected Google Cloud project")
	c.Project = project
	return project, nil
}

func (c *config) judgeModel() string {
	if c.JudgeModel != "" {
		return c.JudgeModel
	}
	return c.Model
}

// embedder always uses Gemini embeddings, whichever provider generates.
func (c *config) embedder(ctx context.Context) (*retrieval.GeminiEmbedder, error) {
	cc := &genai.ClientConfig{APIKey: c.GeminiAPIKey, Backend: genai.BackendGeminiAPI}
	if c.GeminiAPIKey == "" {
		if c.Project == "" {
			if _, err := c.detectProject(ctx); err != nil {
				return nil, err
			}
		}
		cc = &genai.ClientConfig{Project: c.Project, Location: c.Region, Backend: genai.BackendVertexAI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	opts := []retrieval.GeminiOption{
		retrieval.WithEmbeddingModel(c.EmbeddingModel),
		retrieval.WithDimensions(c.EmbeddingDimensions),
	}
	if c.Retry != (retry.Config{}) {
		opts = append(opts, retrieval.WithEmbeddingRetry(c.Retry))
	}
	return retrieval.NewGeminiEmbedder(client.Models, opts...)
}

// openStore returns the configured vector store and a release func. The
// in-memory store starts empty, so callers must index the cohort into it.
func (c *config) openStore(ctx context.Context, e retrieval.Embedder) (vectorStore, bool, func(), error) {
	if c.DatabaseURL == "" {
		m, err := retrieval.NewMemoryStore(e)
		return m, false, func() {}, err
	}
	pool, err := pgxpool.New(ctx, c.DatabaseURL)
	if err != nil {
		return nil, false, nil, fmt.Errorf("connecting to database: %w", err)
	}
	s, err := retrieval.NewPGStore(pool, e, c.Table)
	if err != nil {
		pool.Close()
		return nil, false, nil, err
	}
	if err := s.EnsureSchema(ctx, c.EmbeddingDimensions); err != nil {
		pool.Close()
		return nil, false, nil, err
	}
	return s, true, pool.Close, nil
}

// newMatcher builds a matcher over the cohort. Patients are indexed first
// when the store is in memory.
func (c *config) newMatcher(ctx context.Context, patients []criteria.Patient) (*matcher.Matcher, func(), error) {
	e, err := c.embedder(ctx)
	if err != nil {
		return nil, nil, err
	}
	store, durable, release, err := c.openStore(ctx, e)
	if err != nil {
		return nil, nil, err
	}
	if !durable {
		if err := retrieval.Upsert(ctx, store, patients); err != nil {
			release()
			return nil, nil, err
		}
	}

	acfg, err := c.agentConfig(ctx, c.Model)
	if err != nil {
		release()
		return nil, nil, err
	}
	v, err := verifier.NewFromConfig(ctx, acfg)
	if err != nil {
		release()
		return nil, nil, err
	}
	m, err := matcher.New(store, v, matcher.WithTopK(c.TopK), matcher.WithWorkers(c.Workers))
	if err != nil {
		release()
		return nil, nil, err
	}
	return m, release, nil
}

// newSink fans results out to a JSONL file when out is set and to Kafka
// when brokers are configured.
func (c *config) newSink(ctx context.Context, out string) (sink.Multi, error) {
	var sinks sink.Multi
	if out != "" {
		j, err := sink.CreateJSONL(out)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, j)
	}
	if len(c.KafkaBrokers) > 0 {
		k, err := sink.NewKafka(c.KafkaBrokers, c.KafkaTopic, runIDFrom(ctx))
		if err != nil {
			return nil, errors.Join(err, sinks.Close())
		}
		sinks = append(sinks, k)
	}
	return sinks, nil
}

func loadInputs(patientsPath, criteriaPath string) ([]criteria.Patient, *criteria.StudyCriteria, error) {
	patients, err := ingest.ReadFile(patientsPath)
	if err != nil {
		return nil, nil, err
	}
	sc, err := criteria.LoadFile(criteriaPath)
	if err != nil {
		return nil, nil, err
	}
	return patients, sc, nil
}
