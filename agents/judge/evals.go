/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/agents/evals"
)

// ValidScores fails judgements with any score outside [MinScore, MaxScore].
func ValidScores() evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		return result.Validate()
	})
}

// HasNotes fails judgements that carry no notes.
func HasNotes() evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if len(result.Notes) == 0 {
			return errors.New("judgement has no notes")
		}
		return nil
	})
}

// ScoreRange grades how well the normalised judgement score fits the
// expected range.
func ScoreRange(minScore, maxScore float64) evals.ObservableTraceCallback[*Judgement] {
	return func(o evals.Observer, trace *agenttrace.Trace[*Judgement]) {
		if trace.Result == nil {
			o.Fail("judgement result is nil")
			return
		}

		score := trace.Result.Score()
		grade := rangeGrade(score, minScore, maxScore)
		reasoning := fmt.Sprintf("score %.2f is within expected range [%.2f, %.2f]", score, minScore, maxScore)
		if grade < 1 {
			reasoning = fmt.Sprintf("score %.2f is outside expected range [%.2f, %.2f]", score, minScore, maxScore)
		}
		o.Grade(grade, reasoning)
	}
}

// rangeGrade is 1 inside [lo, hi] and falls off linearly with the distance
// to the nearest bound, reaching 0 at twice the range width.
func rangeGrade(score, lo, hi float64) float64 {
	if score >= lo && score <= hi {
		return 1
	}
	distance := min(abs(score-lo), abs(score-hi))
	width := hi - lo
	if width <= 0 {
		return 0
	}
	return max(0, 1-distance/(width*2))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Evals returns the checks applied to the judge's own output.
func Evals() map[string]evals.ObservableTraceCallback[*Judgement] {
	return map[string]evals.ObservableTraceCallback[*Judgement]{
		"no-errors":    evals.NoErrors[*Judgement](),
		"valid-scores": ValidScores(),
		"has-notes":    HasNotes(),
	}
}
