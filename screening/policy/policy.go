/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package policy reconciles the rule screen's decision with a verifier's
// opinion. Disagreement is never resolved in favour of either side: it
// always downgrades the final decision to uncertain for human review.
package policy

import "chainguard.dev/trialscreen/screening/criteria"

// Resolution is the reconciled outcome for one patient and study.
type Resolution struct {
	Final    criteria.Decision
	Conflict bool
	// UncertaintyReason is non-nil iff Final is uncertain.
	UncertaintyReason *criteria.UncertaintyReason
}

// Reconcile combines the rule decision with the verifier's agreement.
func Reconcile(rule criteria.Decision, agree bool, missing []string) Resolution {
	res := Resolution{Final: rule}
	if !agree {
		res.Final = criteria.Uncertain
		res.Conflict = true
	}
	res.UncertaintyReason = UncertaintyReason(res.Final, res.Conflict, missing)
	return res
}

// UncertaintyReason explains an uncertain final decision. Conflict takes
// priority over missing patient data. It returns nil for any other decision.
func UncertaintyReason(final criteria.Decision, conflict bool, missing []string) *criteria.UncertaintyReason {
	if final != criteria.Uncertain {
		return nil
	}
	var r criteria.UncertaintyReason
	switch {
	case conflict:
		r = criteria.ReasonVerifierConflict
	case len(missing) > 0:
		r = criteria.ReasonMissingPatientData
	default:
		r = criteria.ReasonMissingTrialInfo
	}
	return &r
}
