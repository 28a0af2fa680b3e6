/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package rulescreen evaluates study criteria against a patient record
// deterministically. It performs no I/O.
package rulescreen

import (
	"fmt"
	"slices"

	"chainguard.dev/trialscreen/screening/criteria"
)

const (
	// ReasonMissing is reported when screening passes but some referenced
	// fields could not be checked.
	ReasonMissing = "Some required info missing in dataset -> uncertain"
	// ReasonSatisfied is reported when every criterion was checked and held.
	ReasonSatisfied = "All checked criteria satisfied"
)

// Outcome is the result of screening one patient against one study.
type Outcome struct {
	Decision criteria.Decision
	Reasons  []string
	// Missing is sorted and contains each field at most once.
	Missing []string
}

// Screen evaluates exclusions and then inclusions in declaration order and
// stops at the first exclusion hit or failed inclusion. Fields that are
// absent, blank or (for numeric fields) unparseable are recorded as missing
// and never disqualify on their own.
//
// An error is returned only when the criteria are malformed.
func Screen(patient criteria.Patient, sc *criteria.StudyCriteria) (Outcome, error) {
	if err := sc.Validate(); err != nil {
		return Outcome{}, err
	}

	missing := make(map[string]struct{})

	for _, c := range sc.Exclusion {
		hit, ok := check(patient, c)
		if !ok {
			missing[string(c.Field)] = struct{}{}
			continue
		}
		if hit {
			return Outcome{
				Decision: criteria.NotEligible,
				Reasons:  []string{fmt.Sprintf("Exclusion hit: %s", c)},
				Missing:  sorted(missing),
			}, nil
		}
	}

	for _, c := range sc.Inclusion {
		holds, ok := check(patient, c)
		if !ok {
			missing[string(c.Field)] = struct{}{}
			continue
		}
		if !holds {
			return Outcome{
				Decision: criteria.NotEligible,
				Reasons:  []string{failedInclusion(c)},
				Missing:  sorted(missing),
			}, nil
		}
	}

	if len(missing) > 0 {
		return Outcome{
			Decision: criteria.Uncertain,
			Reasons:  []string{ReasonMissing},
			Missing:  sorted(missing),
		}, nil
	}
	return Outcome{
		Decision: criteria.Eligible,
		Reasons:  []string{ReasonSatisfied},
		Missing:  []string{},
	}, nil
}

func failedInclusion(c criteria.Criterion) string {
	if c.Field.Kind() == criteria.KindNumeric {
		return fmt.Sprintf("Failed inclusion: %s must be %s %s", c.Field, c.Op, c.Value)
	}
	return fmt.Sprintf("Failed inclusion: %s", c)
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
