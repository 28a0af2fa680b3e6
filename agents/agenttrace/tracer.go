/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"sync"

	"github.com/chainguard-dev/clog"
)

// Tracer receives completed traces.
type Tracer[T any] interface {
	RecordTrace(*Trace[T])
}

// TraceCallback is invoked with each completed trace.
type TraceCallback[T any] func(*Trace[T])

type byCode[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a Tracer that runs every non-nil callback concurrently and
// waits for all of them.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	var cbs []TraceCallback[T]
	for _, cb := range callbacks {
		if cb != nil {
			cbs = append(cbs, cb)
		}
	}
	return &byCode[T]{callbacks: cbs}
}

func (b *byCode[T]) RecordTrace(trace *Trace[T]) {
	var wg sync.WaitGroup
	for _, cb := range b.callbacks {
		wg.Go(func() { cb(trace) })
	}
	wg.Wait()
}

// NewDefaultTracer logs each trace at debug level, and failed traces at warn.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	log := clog.FromContext(ctx)
	return ByCode(func(trace *Trace[T]) {
		l := log.With("trace_id", trace.ID,
			"agent", trace.ExecContext.Agent,
			"study_id", trace.ExecContext.StudyID,
			"duration_ms", trace.Duration().Milliseconds())
		if trace.Error != nil {
			l.Warn("Agent trace failed", "trace", trace.String())
			return
		}
		l.Debug("Agent trace completed", "trace", trace.String())
	})
}

type tracerKey[T any] struct{}

// WithTracer stores a Tracer for result type T in ctx.
func WithTracer[T any](ctx context.Context, tracer Tracer[T]) context.Context {
	return context.WithValue(ctx, tracerKey[T]{}, tracer)
}

// TracerFromContext returns the Tracer for T in ctx, or a default logging tracer.
func TracerFromContext[T any](ctx context.Context) Tracer[T] {
	if t, ok := ctx.Value(tracerKey[T]{}).(Tracer[T]); ok {
		return t
	}
	return NewDefaultTracer[T](ctx)
}
