/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"

	"chainguard.dev/trialscreen/agents/executor/googleexecutor"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/schema"
	"google.golang.org/genai"
)

func newGoogleAgent[Req promptbuilder.Bindable, Resp any](ctx context.Context, cfg Config) (Agent[Req, Resp], error) {
	cc := &genai.ClientConfig{
		Project:  cfg.Project,
		Location: cfg.Region,
		Backend:  genai.BackendVertexAI,
	}
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return googleAgent[Req, Resp](client.Models, cfg)
}

func googleAgent[Req promptbuilder.Bindable, Resp any](models googleexecutor.Generator, cfg Config) (Agent[Req, Resp], error) {
	opts := []googleexecutor.Option[Req, Resp]{
		googleexecutor.WithModel[Req, Resp](cfg.Model),
		googleexecutor.WithTemperature[Req, Resp](float32(cfg.Temperature)),
		googleexecutor.WithResponseSchema[Req, Resp](schema.ForGemini(schema.ReflectType[Resp]())),
	}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, googleexecutor.WithMaxOutputTokens[Req, Resp](int32(cfg.MaxOutputTokens)))
	}
	if cfg.SystemInstructions != nil {
		opts = append(opts, googleexecutor.WithSystemInstructions[Req, Resp](cfg.SystemInstructions))
	}
	if cfg.Retry != nil {
		opts = append(opts, googleexecutor.WithRetryConfig[Req, Resp](*cfg.Retry))
	}

	exec, err := googleexecutor.New(models, cfg.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini executor: %w", err)
	}
	return exec, nil
}
