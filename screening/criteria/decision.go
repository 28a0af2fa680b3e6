/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Decision is an eligibility verdict.
type Decision string

const (
	Eligible    Decision = "eligible"
	NotEligible Decision = "not_eligible"
	Uncertain   Decision = "uncertain"
)

// Decisions lists the closed decision set.
var Decisions = []Decision{Eligible, NotEligible, Uncertain}

// Validate rejects anything outside the closed decision set.
func (d Decision) Validate() error {
	switch d {
	case Eligible, NotEligible, Uncertain:
		return nil
	}
	return fmt.Errorf("invalid decision %q (want eligible, not_eligible or uncertain)", string(d))
}

// ParseDecision converts s into a Decision.
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// JSONSchema restricts generated schemas to the decision set.
func (Decision) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "string",
		Enum: []any{string(Eligible), string(NotEligible), string(Uncertain)},
	}
}

// UncertaintyReason explains why a final decision is uncertain.
type UncertaintyReason string

const (
	ReasonMissingPatientData UncertaintyReason = "missing patient data"
	ReasonMissingTrialInfo   UncertaintyReason = "missing essential trial info"
	ReasonVerifierConflict   UncertaintyReason = "conflict with verifier"
)

// Validate rejects reasons outside the closed set.
func (r UncertaintyReason) Validate() error {
	switch r {
	case ReasonMissingPatientData, ReasonMissingTrialInfo, ReasonVerifierConflict:
		return nil
	}
	return fmt.Errorf("invalid uncertainty reason %q", string(r))
}
