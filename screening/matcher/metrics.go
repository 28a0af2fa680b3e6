/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels are bounded: study ids and the three decisions. Patient ids stay
// on spans and logs only.
var (
	ruleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_rule_decisions_total",
			Help: "Rule screen decisions by study",
		},
		[]string{"study_id", "decision"},
	)

	finalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_final_decisions_total",
			Help: "Reconciled final decisions by study",
		},
		[]string{"study_id", "decision"},
	)

	conflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_verifier_conflicts_total",
			Help: "Matches where the verifier disagreed with the rule screen",
		},
		[]string{"study_id"},
	)

	failures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialscreen_match_failures_total",
			Help: "Match runs aborted by stage",
		},
		[]string{"study_id", "stage"},
	)
)

const (
	stageScreen   = "screen"
	stageRetrieve = "retrieve"
	stageVerify   = "verify"
)
