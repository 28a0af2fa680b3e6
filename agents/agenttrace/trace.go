/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/trialscreen/agents/agenttrace"

// Trace is one prompt-to-result model interaction.
type Trace[T any] struct {
	ID           string           `json:"id"`
	ExecContext  ExecutionContext `json:"exec_context"`
	Prompt       string           `json:"prompt"`
	Model        string           `json:"model,omitempty"`
	Raw          string           `json:"raw,omitempty"`
	Result       T                `json:"result"`
	Error        error            `json:"-"`
	InputTokens  int64            `json:"input_tokens"`
	OutputTokens int64            `json:"output_tokens"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`

	tracer Tracer[T]
	span   oteltrace.Span
	mu     sync.Mutex
}

func newTrace[T any](ctx context.Context, tracer Tracer[T], prompt string) (context.Context, *Trace[T]) {
	exec := GetExecutionContext(ctx)
	ctx, span := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0")).
		Start(ctx, "agent.execution", oteltrace.WithAttributes(exec.spanAttributes()...))

	return ctx, &Trace[T]{
		ID:          newTraceID(),
		ExecContext: exec,
		Prompt:      prompt,
		StartTime:   time.Now(),
		tracer:      tracer,
		span:        span,
	}
}

// StartTrace opens a trace using the Tracer in ctx. The returned context
// carries the trace's span.
func StartTrace[T any](ctx context.Context, prompt string) (context.Context, *Trace[T]) {
	return newTrace(ctx, TracerFromContext[T](ctx), prompt)
}

// RecordTokenUsage stores the model and token counts on the trace and its span.
// Repeated calls accumulate tokens, so retried attempts are all counted.
func (t *Trace[T]) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Model = model
	t.InputTokens += inputTokens
	t.OutputTokens += outputTokens
	t.span.SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", t.InputTokens),
		attribute.Int64("tokens.output", t.OutputTokens),
		attribute.Int64("tokens.total", t.InputTokens+t.OutputTokens),
	)
}

// RecordRaw keeps the unparsed model text.
func (t *Trace[T]) RecordRaw(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Raw = text
}

// Complete ends the span and hands the trace to its tracer.
func (t *Trace[T]) Complete(result T, err error) {
	t.mu.Lock()
	t.Result = result
	t.Error = err
	t.EndTime = time.Now()
	t.mu.Unlock()

	if err != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, err.Error())
	} else {
		t.span.SetStatus(codes.Ok, "")
	}
	t.span.End()

	t.tracer.RecordTrace(t)
}

// Duration is the elapsed time so far, or the total once complete.
func (t *Trace[T]) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration()
}

func (t *Trace[T]) duration() time.Duration {
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String renders a compact multi-line summary for logs.
func (t *Trace[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	if t.ExecContext != (ExecutionContext{}) {
		fmt.Fprintf(&sb, "Agent: %s study=%s patient=%s\n", t.ExecContext.Agent, t.ExecContext.StudyID, t.ExecContext.PatientID)
	}
	fmt.Fprintf(&sb, "Prompt: %s\n", truncate(t.Prompt, 200))
	fmt.Fprintf(&sb, "Duration: %v\n", t.duration())
	if t.Model != "" {
		fmt.Fprintf(&sb, "Model: %s (tokens in=%d out=%d)\n", t.Model, t.InputTokens, t.OutputTokens)
	}
	if t.Error != nil {
		fmt.Fprintf(&sb, "Error: %v\n", t.Error)
		if t.Raw != "" {
			fmt.Fprintf(&sb, "Raw: %s\n", truncate(t.Raw, 500))
		}
	} else {
		fmt.Fprintf(&sb, "Result: %s\n", truncate(fmt.Sprintf("%+v", t.Result), 500))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// newTraceID returns YYYYMMDD-HHMMSS-RRRRRRRR.
func newTraceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000")
	}
	return time.Now().Format("20060102-150405") + "-" + hex.EncodeToString(b)
}
