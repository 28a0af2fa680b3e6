/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"errors"
	"fmt"
	"slices"

	"chainguard.dev/trialscreen/screening/criteria"
)

// MatchResult is the auditable record produced for one patient and study.
type MatchResult struct {
	PatientID string `json:"patient_id"`
	StudyID   string `json:"study_id"`

	RuleDecision  criteria.Decision `json:"rule_decision"`
	FinalDecision criteria.Decision `json:"final_decision"`

	RuleReasons []string `json:"rule_reasons"`

	VerifierAgree             bool              `json:"verifier_agree"`
	VerifierSuggestedDecision criteria.Decision `json:"verifier_suggested_decision"`
	VerifierNotes             []string          `json:"verifier_notes"`

	Evidence    []string `json:"evidence"`
	MissingInfo []string `json:"missing_info"`

	Conflict          bool                        `json:"conflict"`
	UncertaintyReason *criteria.UncertaintyReason `json:"uncertainty_reason"`
}

// Validate checks the record's invariants. It is used on results read back
// from storage as well as on freshly assembled ones.
func (r *MatchResult) Validate() error {
	var errs []error
	if r.PatientID == "" {
		errs = append(errs, errors.New("patient_id is required"))
	}
	for name, d := range map[string]criteria.Decision{
		"rule_decision":               r.RuleDecision,
		"final_decision":              r.FinalDecision,
		"verifier_suggested_decision": r.VerifierSuggestedDecision,
	} {
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if r.Conflict == r.VerifierAgree {
		errs = append(errs, errors.New("conflict must be set iff the verifier disagreed"))
	}
	if r.Conflict && r.FinalDecision != criteria.Uncertain {
		errs = append(errs, errors.New("a conflict must produce an uncertain final decision"))
	}
	switch {
	case r.FinalDecision == criteria.Uncertain && r.UncertaintyReason == nil:
		errs = append(errs, errors.New("uncertainty_reason is required when final_decision is uncertain"))
	case r.FinalDecision != criteria.Uncertain && r.UncertaintyReason != nil:
		errs = append(errs, errors.New("uncertainty_reason must be null unless final_decision is uncertain"))
	case r.UncertaintyReason != nil:
		if err := r.UncertaintyReason.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if !slices.IsSorted(r.MissingInfo) || len(slices.Compact(slices.Clone(r.MissingInfo))) != len(r.MissingInfo) {
		errs = append(errs, errors.New("missing_info must be sorted and unique"))
	}
	return errors.Join(errs...)
}

// SchemaViolationError reports a collaborator response outside the closed
// value set the pipeline expects.
type SchemaViolationError struct {
	Collaborator string
	Field        string
	Value        string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s returned invalid %s %q", e.Collaborator, e.Field, e.Value)
}

// IsSchemaViolation reports whether err wraps a *SchemaViolationError.
func IsSchemaViolation(err error) bool {
	var sve *SchemaViolationError
	return errors.As(err, &sve)
}
