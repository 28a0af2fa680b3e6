/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/trialscreen/agents/metaagent"
)

type judge struct {
	agent metaagent.Agent[*Request, *Judgement]
}

// New wraps an existing agent.
func New(agent metaagent.Agent[*Request, *Judgement]) (Interface, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	return &judge{agent: agent}, nil
}

// NewFromConfig builds a judge agent from cfg. The provider is selected from
// cfg.Model; judgements use deterministic sampling.
func NewFromConfig(ctx context.Context, cfg metaagent.Config) (Interface, error) {
	cfg.SystemInstructions = systemPrompt
	cfg.UserPrompt = userPrompt
	cfg.Temperature = 0
	agent, err := metaagent.New[*Request, *Judgement](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating judge agent: %w", err)
	}
	return New(agent)
}

// Judge implements Interface.
func (j *judge) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	if request == nil {
		return nil, errors.New("request is required")
	}
	if err := request.validate(); err != nil {
		return nil, fmt.Errorf("invalid judge request: %w", err)
	}
	return j.agent.Execute(ctx, request)
}
