/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"reflect"

	"chainguard.dev/trialscreen/agents/agenttrace"
)

// NoErrors fails traces that completed with an error.
func NoErrors[T any]() ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		if trace.Error != nil {
			o.Fail(fmt.Sprintf("trace error: got = %v, wanted = nil", trace.Error))
		}
	}
}

// ResultValidator fails traces whose result is nil or rejected by validator.
// Traces that already failed are skipped; NoErrors reports those.
func ResultValidator[T any](validator func(result T) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		if trace.Error != nil {
			return
		}
		v := reflect.ValueOf(trace.Result)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			o.Fail("result is nil")
			return
		}
		if err := validator(trace.Result); err != nil {
			o.Fail(err.Error())
		}
	}
}

// TokenBudget fails traces that used more than limit tokens in total.
func TokenBudget[T any](limit int64) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		if used := trace.InputTokens + trace.OutputTokens; used > limit {
			o.Fail(fmt.Sprintf("token usage: got = %d, wanted <= %d", used, limit))
		}
	}
}

// BuildCallbacks injects each evaluation with the child observer of the same name.
func BuildCallbacks[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) []agenttrace.TraceCallback[T] {
	callbacks := make([]agenttrace.TraceCallback[T], 0, len(evalMap))
	for name, eval := range evalMap {
		callbacks = append(callbacks, Inject(observer.Child(name), eval))
	}
	return callbacks
}

// BuildTracer is agenttrace.ByCode over BuildCallbacks.
func BuildTracer[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) agenttrace.Tracer[T] {
	return agenttrace.ByCode(BuildCallbacks(observer, evalMap)...)
}
