/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"

	"chainguard.dev/trialscreen/agents/executor/claudeexecutor"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/schema"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

func newClaudeAgent[Req promptbuilder.Bindable, Resp any](ctx context.Context, cfg Config) (Agent[Req, Resp], error) {
	auth := vertex.WithGoogleAuth(ctx, cfg.Region, cfg.Project)
	if cfg.APIKey != "" {
		auth = option.WithAPIKey(cfg.APIKey)
	}
	client := anthropic.NewClient(auth)
	return claudeAgent[Req, Resp](&client.Messages, cfg)
}

func claudeAgent[Req promptbuilder.Bindable, Resp any](messages claudeexecutor.MessageCreator, cfg Config) (Agent[Req, Resp], error) {
	opts := []claudeexecutor.Option[Req, Resp]{
		claudeexecutor.WithModel[Req, Resp](cfg.Model),
		claudeexecutor.WithTemperature[Req, Resp](cfg.Temperature),
		claudeexecutor.WithResponseSchema[Req, Resp](schema.ReflectType[Resp]()),
	}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, claudeexecutor.WithMaxTokens[Req, Resp](int64(cfg.MaxOutputTokens)))
	}
	if cfg.SystemInstructions != nil {
		opts = append(opts, claudeexecutor.WithSystemInstructions[Req, Resp](cfg.SystemInstructions))
	}
	if cfg.Retry != nil {
		opts = append(opts, claudeexecutor.WithRetryConfig[Req, Resp](*cfg.Retry))
	}

	exec, err := claudeexecutor.New(messages, cfg.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Claude executor: %w", err)
	}
	return exec, nil
}
