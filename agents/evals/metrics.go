/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"reflect"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_evaluations_total",
			Help: "Total number of agent evaluations performed",
		},
		[]string{"result_type", "namespace"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_evaluation_failures_total",
			Help: "Total number of failed evaluations",
		},
		[]string{"result_type", "namespace"},
	)

	gradeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trialscreen_evaluation_grade",
			Help: "Most recent evaluation grade (0.0-1.0)",
		},
		[]string{"result_type", "namespace"},
	)
)

// MetricsObserver exports evaluation outcomes as Prometheus metrics labelled
// by the traced result type and namespace.
type MetricsObserver struct {
	evals  prometheus.Counter
	fails  prometheus.Counter
	grade  prometheus.Gauge
	counts atomic.Int64
}

// NewMetricsObserver creates a metrics observer for traces of T.
func NewMetricsObserver[T any](namespace string) *MetricsObserver {
	labels := prometheus.Labels{
		"result_type": reflect.TypeFor[T]().String(),
		"namespace":   namespace,
	}
	return &MetricsObserver{
		evals: evaluationCounter.With(labels),
		fails: failureCounter.With(labels),
		grade: gradeGauge.With(labels),
	}
}

func (m *MetricsObserver) Increment() {
	m.counts.Add(1)
	m.evals.Inc()
}

func (m *MetricsObserver) Fail(string) { m.fails.Inc() }

func (m *MetricsObserver) Grade(score float64, _ string) { m.grade.Set(score) }

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

func (m *MetricsObserver) Total() int64 { return m.counts.Load() }
