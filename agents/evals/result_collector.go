/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Grade is a recorded score and its reasoning.
type Grade struct {
	Score     float64
	Reasoning string
}

// ResultCollector keeps failures and grades for reporting and forwards
// everything to an inner observer. A nil inner observer is allowed.
type ResultCollector struct {
	inner Observer
	total atomic.Int64

	mu       sync.Mutex
	failures []string
	grades   []Grade
}

// NewResultCollector wraps inner.
func NewResultCollector(inner Observer) *ResultCollector {
	return &ResultCollector{inner: inner}
}

// Fail stores msg. The inner observer sees it as a failure too.
func (r *ResultCollector) Fail(msg string) {
	if r.inner != nil {
		r.inner.Fail(msg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *ResultCollector) Log(msg string) {
	if r.inner != nil {
		r.inner.Log(msg)
	}
}

// Grade stores the grade and forwards it.
func (r *ResultCollector) Grade(score float64, reasoning string) {
	if r.inner != nil {
		r.inner.Grade(score, reasoning)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades = append(r.grades, Grade{Score: score, Reasoning: reasoning})
}

func (r *ResultCollector) Increment() {
	r.total.Add(1)
	if r.inner != nil {
		r.inner.Increment()
	}
}

// Total counts the traces this collector saw.
func (r *ResultCollector) Total() int64 {
	return r.total.Load()
}

// Failures returns a copy of the recorded failures.
func (r *ResultCollector) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

// Grades returns a copy of the recorded grades.
func (r *ResultCollector) Grades() []Grade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.grades)
}
