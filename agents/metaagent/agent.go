/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/trialscreen/agents/promptbuilder"
)

// Agent produces a validated Resp for each request.
type Agent[Req promptbuilder.Bindable, Resp any] interface {
	Execute(ctx context.Context, request Req) (Resp, error)
}

// New creates an Agent for cfg.Model.
func New[Req promptbuilder.Bindable, Resp any](ctx context.Context, cfg Config) (Agent[Req, Resp], error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	switch model := strings.ToLower(cfg.Model); {
	case strings.HasPrefix(model, "gemini-"):
		return newGoogleAgent[Req, Resp](ctx, cfg)
	case strings.HasPrefix(model, "claude-"):
		return newClaudeAgent[Req, Resp](ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported model: %s (expected gemini-* or claude-*)", cfg.Model)
	}
}
