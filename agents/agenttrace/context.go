/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies what a model call is working on.
type ExecutionContext struct {
	// Agent names the collaborator making the call, e.g. "verifier" or "judge".
	Agent     string `json:"agent,omitempty"`
	StudyID   string `json:"study_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
}

// EnrichAttributes appends the bounded labels of e to base.
//
// PatientID is left out: it is unbounded and belongs on spans, not metrics.
func (e ExecutionContext) EnrichAttributes(base []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(base), len(base)+2)
	copy(attrs, base)
	if e.Agent != "" {
		attrs = append(attrs, attribute.String("agent", e.Agent))
	}
	if e.StudyID != "" {
		attrs = append(attrs, attribute.String("study_id", e.StudyID))
	}
	return attrs
}

// spanAttributes returns every populated field, including PatientID.
func (e ExecutionContext) spanAttributes() []attribute.KeyValue {
	attrs := e.EnrichAttributes(nil)
	if e.PatientID != "" {
		attrs = append(attrs, attribute.String("patient_id", e.PatientID))
	}
	return attrs
}

type contextKey struct{}

// WithExecutionContext stores e in ctx.
func WithExecutionContext(ctx context.Context, e ExecutionContext) context.Context {
	return context.WithValue(ctx, contextKey{}, e)
}

// GetExecutionContext returns the ExecutionContext in ctx, or the zero value.
func GetExecutionContext(ctx context.Context) ExecutionContext {
	e, _ := ctx.Value(contextKey{}).(ExecutionContext)
	return e
}

// Enrich is a metrics.AttributeEnricher that reads the ExecutionContext from ctx.
func Enrich(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
	return GetExecutionContext(ctx).EnrichAttributes(base)
}
