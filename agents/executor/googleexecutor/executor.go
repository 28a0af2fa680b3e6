/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/agents/metrics"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/agents/retry"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"

	meterName = "chainguard.dev/trialscreen/agents"
)

// Interface defines the contract for Google AI executors.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute renders request into the prompt, calls the model once (plus
	// retries) and decodes its JSON answer.
	Execute(ctx context.Context, request Request) (Response, error)
}

// Generator is the part of *genai.Models the executor calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type executor[Request promptbuilder.Bindable, Response any] struct {
	models             Generator
	prompt             *promptbuilder.Prompt
	model              string
	temperature        float32
	maxOutputTokens    int32
	systemInstructions *promptbuilder.Prompt
	responseMIMEType   string
	responseSchema     *genai.Schema
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
}

// New creates a Gemini executor. models is usually client.Models.
func New[Request promptbuilder.Bindable, Response any](
	models Generator,
	prompt *promptbuilder.Prompt,
	options ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if models == nil {
		return nil, errors.New("genai models client is required")
	}
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	exec := &executor[Request, Response]{
		models:           models,
		prompt:           prompt,
		model:            DefaultModel,
		temperature:      0.1,
		maxOutputTokens:  8192,
		responseMIMEType: "application/json",
		genaiMetrics:     metrics.NewGenAI(meterName),
		retryConfig:      retry.DefaultConfig(),
	}
	exec.genaiMetrics.SetAttributeEnricher(agenttrace.Enrich)

	for _, opt := range options {
		if err := opt(exec); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return exec, nil
}

// Execute implements Interface.
func (e *executor[Request, Response]) Execute(ctx context.Context, request Request) (resp Response, err error) {
	bound, err := request.Bind(e.prompt)
	if err != nil {
		return resp, fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := bound.Build()
	if err != nil {
		return resp, fmt.Errorf("failed to build prompt: %w", err)
	}

	config, err := e.config()
	if err != nil {
		return resp, err
	}

	ctx, trace := agenttrace.StartTrace[Response](ctx, prompt)
	defer func() { trace.Complete(resp, err) }()

	log := clog.FromContext(ctx).With("model", e.model)
	log.With("prompt_length", len(prompt)).Debug("Calling Gemini")

	start := time.Now()
	response, err := retry.Do(ctx, e.retryConfig, "generate_content", isRetryableVertexError,
		func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			return e.models.GenerateContent(ctx, e.model, genai.Text(prompt), config)
		})
	if err != nil {
		e.genaiMetrics.RecordRequest(ctx, e.model, metrics.OutcomeError, time.Since(start))
		return resp, fmt.Errorf("generating content with %q: %w", e.model, err)
	}

	if usage := response.UsageMetadata; usage != nil {
		e.genaiMetrics.RecordTokens(ctx, e.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
		trace.RecordTokenUsage(e.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
	}

	if len(response.Candidates) == 0 {
		e.genaiMetrics.RecordRequest(ctx, e.model, metrics.OutcomeInvalid, time.Since(start))
		return resp, &result.ExtractionError{Err: errors.New("no candidates in response")}
	}
	if c := response.Candidates[0]; c.FinishReason != "" && c.FinishReason != genai.FinishReasonStop {
		log.With("finish_reason", c.FinishReason).With("finish_message", c.FinishMessage).Warn("Gemini stopped early")
	}

	text := response.Text()
	trace.RecordRaw(text)

	out, err := result.Extract[Response](text)
	if err != nil {
		e.genaiMetrics.RecordRequest(ctx, e.model, metrics.OutcomeInvalid, time.Since(start))
		log.With("response", text).With("error", err).Warn("Failed to parse Gemini response")
		return resp, err
	}

	e.genaiMetrics.RecordRequest(ctx, e.model, metrics.OutcomeSuccess, time.Since(start))
	return out, nil
}

func (e *executor[Request, Response]) config() (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(e.temperature),
		MaxOutputTokens:  e.maxOutputTokens,
		ResponseMIMEType: e.responseMIMEType,
		ResponseSchema:   e.responseSchema,
	}
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return nil, fmt.Errorf("building system prompt: %w", err)
		}
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config, nil
}
