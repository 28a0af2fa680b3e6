/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records OpenTelemetry usage metrics for model calls.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher adds request-scoped attributes, such as the study being
// screened, to the base attributes of every measurement.
type AttributeEnricher func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue

// Outcome labels a finished model call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	// OutcomeInvalid means the model answered but the answer did not decode or validate.
	OutcomeInvalid Outcome = "invalid"
	OutcomeError   Outcome = "error"
)

// GenAI holds the counters shared by every executor. The meter name is
// shared too; the model is a dimension on each measurement.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	requests         metric.Int64Counter
	latency          metric.Float64Histogram
	enrich           AttributeEnricher
}

// NewGenAI creates the instruments on the global meter provider. An
// instrument that cannot be created degrades to a no-op.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	m := &GenAI{
		promptTokens: counter(meter, meterName, "genai.token.prompt",
			"The number of prompt tokens used", "{tokens}"),
		completionTokens: counter(meter, meterName, "genai.token.completion",
			"The number of completion tokens used", "{tokens}"),
		requests: counter(meter, meterName, "genai.requests",
			"The number of model calls by outcome", "{calls}"),
	}

	latency, err := meter.Float64Histogram("genai.request.duration",
		metric.WithDescription("Wall time of a model call including retries"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create latency histogram, metrics will be disabled", "error", err, "meter", meterName)
		latency = noop.Float64Histogram{}
	}
	m.latency = latency

	return m
}

func counter(meter metric.Meter, meterName, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create counter, metrics will be disabled", "error", err, "meter", meterName, "counter", name)
		return noop.Int64Counter{}
	}
	return c
}

// SetAttributeEnricher installs an enricher applied before every recording.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.enrich = enricher
}

func (m *GenAI) attrs(ctx context.Context, model string, extra ...attribute.KeyValue) metric.MeasurementOption {
	base := []attribute.KeyValue{attribute.String("model", model)}
	if m.enrich != nil {
		base = m.enrich(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	opt := m.attrs(ctx, model)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordRequest records one finished call and how long it took.
func (m *GenAI) RecordRequest(ctx context.Context, model string, outcome Outcome, elapsed time.Duration) {
	opt := m.attrs(ctx, model, attribute.String("outcome", string(outcome)))
	m.requests.Add(ctx, 1, opt)
	m.latency.Record(ctx, elapsed.Seconds(), opt)
}
