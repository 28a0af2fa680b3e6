/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"maps"
	"path"
	"slices"
	"sync"

	"chainguard.dev/trialscreen/agents/agenttrace"
)

// Observer receives the outcome of evaluations.
type Observer interface {
	// Fail marks the current evaluation as failed.
	Fail(string)
	Log(string)
	// Grade records a score in [0, 1] with its reasoning.
	Grade(score float64, reasoning string)
	// Increment is called once per evaluated trace.
	Increment()
	// Total returns how many traces were evaluated.
	Total() int64
}

// ObservableTraceCallback evaluates one completed trace.
type ObservableTraceCallback[T any] func(Observer, *agenttrace.Trace[T])

// Inject binds an evaluation to an observer, producing a trace callback.
func Inject[T any](obs Observer, callback ObservableTraceCallback[T]) agenttrace.TraceCallback[T] {
	return func(trace *agenttrace.Trace[T]) {
		obs.Increment()
		callback(obs, trace)
	}
}

// NamespacedObserver is a tree of observers addressed by slash-separated path.
type NamespacedObserver[T Observer] struct {
	name    string
	inner   T
	factory func(string) T

	mu       sync.Mutex
	children map[string]*NamespacedObserver[T]
}

// NewNamespacedObserver creates the root "/" of a tree whose nodes are built by factory.
func NewNamespacedObserver[T Observer](factory func(string) T) *NamespacedObserver[T] {
	return &NamespacedObserver[T]{
		name:     "/",
		inner:    factory("/"),
		factory:  factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
}

func (n *NamespacedObserver[T]) Fail(msg string)                       { n.inner.Fail(msg) }
func (n *NamespacedObserver[T]) Log(msg string)                        { n.inner.Log(msg) }
func (n *NamespacedObserver[T]) Grade(score float64, reasoning string) { n.inner.Grade(score, reasoning) }
func (n *NamespacedObserver[T]) Increment()                            { n.inner.Increment() }
func (n *NamespacedObserver[T]) Total() int64                          { return n.inner.Total() }

// Child returns the named child, creating it on first use.
func (n *NamespacedObserver[T]) Child(name string) *NamespacedObserver[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if child, ok := n.children[name]; ok {
		return child
	}
	p := path.Join(n.name, name)
	child := &NamespacedObserver[T]{
		name:     p,
		inner:    n.factory(p),
		factory:  n.factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
	n.children[name] = child
	return child
}

// Walk visits n and then its descendants depth first, children in name order.
func (n *NamespacedObserver[T]) Walk(visitor func(string, T)) {
	visitor(n.name, n.inner)

	n.mu.Lock()
	names := slices.Sorted(maps.Keys(n.children))
	children := make([]*NamespacedObserver[T], 0, len(names))
	for _, name := range names {
		children = append(children, n.children[name])
	}
	n.mu.Unlock()

	for _, child := range children {
		child.Walk(visitor)
	}
}
