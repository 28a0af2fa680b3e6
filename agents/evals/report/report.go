/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"chainguard.dev/trialscreen/agents/evals"
)

// Generator renders an observer tree. The boolean is true when any node
// falls below threshold on pass rate or average grade.
type Generator func(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool)

var (
	_ Generator = Summary
	_ Generator = ByEval
)

// stats aggregates one or more collectors.
type stats struct {
	evaluated int64
	failures  []string
	grades    []evals.Grade
}

func (s *stats) add(c *evals.ResultCollector) {
	s.evaluated += c.Total()
	s.failures = append(s.failures, c.Failures()...)
	s.grades = append(s.grades, c.Grades()...)
}

func (s *stats) passRate() float64 {
	if s.evaluated == 0 {
		return 0
	}
	return float64(s.evaluated-int64(len(s.failures))) / float64(s.evaluated)
}

func (s *stats) avgGrade() (float64, bool) {
	if len(s.grades) == 0 {
		return 0, false
	}
	var total float64
	for _, g := range s.grades {
		total += g.Score
	}
	return total / float64(len(s.grades)), true
}

func (s *stats) below(threshold float64) bool {
	if s.passRate() < threshold {
		return true
	}
	avg, ok := s.avgGrade()
	return ok && avg < threshold
}

func (s *stats) row(threshold float64, leading ...string) []string {
	grade := "-"
	if avg, ok := s.avgGrade(); ok {
		grade = fmt.Sprintf("%.2f", avg)
	}
	status := "ok"
	if s.below(threshold) {
		status = "FAIL"
	}
	return append(leading,
		fmt.Sprintf("%d", s.evaluated),
		fmt.Sprintf("%.1f%%", s.passRate()*100),
		grade,
		status,
	)
}

// Summary renders one row per node that evaluated anything, followed by the
// failure messages and the grades below threshold.
func Summary(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	var (
		rows    [][]string
		details strings.Builder
		failed  bool
	)

	obs.Walk(func(name string, c *evals.ResultCollector) {
		if c.Total() == 0 {
			return
		}
		var s stats
		s.add(c)
		failed = failed || s.below(threshold)
		rows = append(rows, s.row(threshold, name))

		for _, f := range s.failures {
			fmt.Fprintf(&details, "- %s: FAIL %s\n", name, f)
		}
		for _, g := range s.grades {
			if g.Score < threshold {
				fmt.Fprintf(&details, "- %s: %.2f %s\n", name, g.Score, g.Reasoning)
			}
		}
	})

	var buf strings.Builder
	_ = Markdown(&buf, []string{"Path", "Evaluated", "Pass rate", "Avg grade", "Status"}, rows)
	if details.Len() > 0 {
		buf.WriteString("\n")
		buf.WriteString(details.String())
	}
	return buf.String(), failed
}

// ByEval groups results shaped /{model}/{study}/{eval} by eval and model,
// summing over studies. Paths of any other depth are ignored.
func ByEval(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	type key struct{ eval, model string }
	groups := map[key]*stats{}
	studies := map[key]map[string]struct{}{}

	obs.Walk(func(name string, c *evals.ResultCollector) {
		parts := strings.Split(strings.Trim(name, "/"), "/")
		if len(parts) != 3 || c.Total() == 0 {
			return
		}
		k := key{eval: parts[2], model: parts[0]}
		if groups[k] == nil {
			groups[k] = &stats{}
			studies[k] = map[string]struct{}{}
		}
		groups[k].add(c)
		studies[k][parts[1]] = struct{}{}
	})

	keys := slices.SortedFunc(maps.Keys(groups), func(a, b key) int {
		if c := strings.Compare(a.eval, b.eval); c != 0 {
			return c
		}
		return strings.Compare(a.model, b.model)
	})

	failed := false
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		s := groups[k]
		failed = failed || s.below(threshold)
		rows = append(rows, s.row(threshold, k.eval, k.model, fmt.Sprintf("%d", len(studies[k]))))
	}

	var buf strings.Builder
	_ = Markdown(&buf, []string{"Eval", "Model", "Studies", "Evaluated", "Pass rate", "Avg grade", "Status"}, rows)
	return buf.String(), failed
}

// Averages renders one row per name in order with its mean value over n
// samples. Names missing from avgs are skipped.
func Averages(avgs map[string]float64, order []string, n int) string {
	var rows [][]string
	for _, name := range order {
		if v, ok := avgs[name]; ok {
			rows = append(rows, []string{name, fmt.Sprintf("%d", n), fmt.Sprintf("%.2f", v)})
		}
	}
	var buf strings.Builder
	_ = Markdown(&buf, []string{"Dimension", "Samples", "Average"}, rows)
	return buf.String()
}
