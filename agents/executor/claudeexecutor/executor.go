/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/agents/metrics"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/agents/retry"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

const (
	DefaultModel = "claude-sonnet-4@20250514"

	meterName = "chainguard.dev/trialscreen/agents"
)

// Interface is the public interface for Claude execution.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	Execute(ctx context.Context, request Request) (Response, error)
}

// MessageCreator is the part of anthropic.MessageService the executor calls.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type executor[Request promptbuilder.Bindable, Response any] struct {
	messages           MessageCreator
	modelName          string
	systemInstructions *promptbuilder.Prompt
	responseSchema     string
	prompt             *promptbuilder.Prompt
	maxTokens          int64
	temperature        float64
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates a Claude executor. messages is usually &client.Messages.
func New[Request promptbuilder.Bindable, Response any](
	messages MessageCreator,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if messages == nil {
		return nil, errors.New("anthropic messages client is required")
	}
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request, Response]{
		messages:     messages,
		modelName:    DefaultModel,
		prompt:       prompt,
		maxTokens:    8192,
		temperature:  0.1,
		genaiMetrics: metrics.NewGenAI(meterName),
		retryConfig:  retry.DefaultConfig(),
	}
	e.genaiMetrics.SetAttributeEnricher(agenttrace.Enrich)

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return e, nil
}

// Execute implements Interface.
func (e *executor[Request, Response]) Execute(ctx context.Context, request Request) (response Response, err error) {
	bound, err := request.Bind(e.prompt)
	if err != nil {
		return response, fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := bound.Build()
	if err != nil {
		return response, fmt.Errorf("failed to build prompt: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
		Temperature: anthropic.Float(e.temperature),
	}
	system, err := e.system()
	if err != nil {
		return response, err
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	ctx, trace := agenttrace.StartTrace[Response](ctx, prompt)
	defer func() { trace.Complete(response, err) }()

	log := clog.FromContext(ctx).With("model", e.modelName)
	log.With("prompt_length", len(prompt)).Debug("Calling Claude")

	start := time.Now()
	message, err := retry.Do(ctx, e.retryConfig, "messages_new", isRetryableClaudeError,
		func(ctx context.Context) (*anthropic.Message, error) {
			return e.messages.New(ctx, params)
		})
	if err != nil {
		e.genaiMetrics.RecordRequest(ctx, e.modelName, metrics.OutcomeError, time.Since(start))
		return response, fmt.Errorf("creating message with %q: %w", e.modelName, err)
	}

	e.genaiMetrics.RecordTokens(ctx, e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens)
	trace.RecordTokenUsage(e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens)
	if message.StopReason == anthropic.StopReasonMaxTokens {
		log.With("max_tokens", e.maxTokens).Warn("Claude response truncated at max tokens")
	}

	var text strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	trace.RecordRaw(text.String())

	out, err := result.Extract[Response](text.String())
	if err != nil {
		e.genaiMetrics.RecordRequest(ctx, e.modelName, metrics.OutcomeInvalid, time.Since(start))
		log.With("response", text.String()).With("error", err).Warn("Failed to parse Claude response")
		return response, err
	}

	e.genaiMetrics.RecordRequest(ctx, e.modelName, metrics.OutcomeSuccess, time.Since(start))
	return out, nil
}

func (e *executor[Request, Response]) system() (string, error) {
	var parts []string
	if e.systemInstructions != nil {
		s, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		parts = append(parts, s)
	}
	if e.responseSchema != "" {
		parts = append(parts, "Respond with a single JSON object, and nothing else, matching this JSON schema:\n"+e.responseSchema)
	}
	return strings.Join(parts, "\n\n"), nil
}
