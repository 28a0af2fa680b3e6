/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/retrieval"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/policy"
	"chainguard.dev/trialscreen/screening/rulescreen"
	"github.com/chainguard-dev/clog"
)

const (
	// DefaultTopK is the number of evidence snippets requested per match.
	DefaultTopK = 3
	// DefaultWorkers bounds concurrent matches in Batch.
	DefaultWorkers = 4
)

// ErrMissingPatientID is returned for patient records without an id. The id
// scopes retrieval, so such records cannot be screened safely.
var ErrMissingPatientID = errors.New("patient record has no patient_id")

// Matcher runs the screening pipeline for patient and study pairs.
type Matcher struct {
	retriever Retriever
	verifier  Verifier
	topK      int
	workers   int
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithTopK sets the number of evidence snippets requested per match.
func WithTopK(k int) Option {
	return func(m *Matcher) error {
		if k <= 0 {
			return fmt.Errorf("top-k must be positive, got %d", k)
		}
		m.topK = k
		return nil
	}
}

// WithWorkers sets the number of matches Batch runs concurrently.
func WithWorkers(n int) Option {
	return func(m *Matcher) error {
		if n <= 0 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		m.workers = n
		return nil
	}
}

// New creates a Matcher over the given collaborators.
func New(r Retriever, v Verifier, opts ...Option) (*Matcher, error) {
	if r == nil {
		return nil, errors.New("retriever is required")
	}
	if v == nil {
		return nil, errors.New("verifier is required")
	}
	m := &Matcher{
		retriever: r,
		verifier:  v,
		topK:      DefaultTopK,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return m, nil
}

// Run screens one patient against one study. Collaborator failures abort the
// run and are returned wrapped; no partial result is produced.
//
// Each run is recorded as an agenttrace.Trace[*MatchResult] whose prompt is
// the retrieval query, so evals can grade live screening.
func (m *Matcher) Run(ctx context.Context, patient criteria.Patient, sc *criteria.StudyCriteria) (result *MatchResult, err error) {
	if sc == nil {
		return nil, errors.New("study criteria is required")
	}
	pid := patient.ID()
	if pid == "" {
		return nil, ErrMissingPatientID
	}
	studyID := sc.ID()

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Agent:     "matcher",
		StudyID:   studyID,
		PatientID: pid,
	})
	query := BuildQuery(sc)
	ctx, tr := agenttrace.StartTrace[*MatchResult](ctx, query)
	defer func() { tr.Complete(result, err) }()

	log := clog.FromContext(ctx).With("study_id", studyID).With("patient_id", pid)

	outcome, err := rulescreen.Screen(patient, sc)
	if err != nil {
		failures.WithLabelValues(studyID, stageScreen).Inc()
		return nil, fmt.Errorf("screening patient %s for study %s: %w", pid, studyID, err)
	}
	ruleDecisions.WithLabelValues(studyID, string(outcome.Decision)).Inc()
	log.With("rule_decision", outcome.Decision).With("missing", outcome.Missing).Debug("Rule screen complete")

	docs, err := m.retriever.Retrieve(ctx, query, m.topK, map[string]string{criteria.KeyPatientID: pid})
	if err != nil {
		failures.WithLabelValues(studyID, stageRetrieve).Inc()
		return nil, fmt.Errorf("retrieving evidence for patient %s: %w", pid, err)
	}
	for _, d := range docs {
		if owner, ok := d.Metadata[criteria.KeyPatientID]; ok && owner != pid {
			failures.WithLabelValues(studyID, stageRetrieve).Inc()
			return nil, &SchemaViolationError{Collaborator: "retriever", Field: "metadata.patient_id", Value: owner}
		}
	}
	evidence := retrieval.Texts(docs)

	ver, err := m.verifier.Verify(ctx, &VerificationRequest{
		Patient:      patient,
		Criteria:     sc,
		RuleDecision: outcome.Decision,
		RuleReasons:  outcome.Reasons,
		Evidence:     evidence,
	})
	if err != nil {
		failures.WithLabelValues(studyID, stageVerify).Inc()
		return nil, fmt.Errorf("verifying patient %s for study %s: %w", pid, studyID, err)
	}
	if ver == nil {
		failures.WithLabelValues(studyID, stageVerify).Inc()
		return nil, fmt.Errorf("verifying patient %s for study %s: verifier returned no result", pid, studyID)
	}
	if ver.SuggestedDecision.Validate() != nil {
		failures.WithLabelValues(studyID, stageVerify).Inc()
		return nil, &SchemaViolationError{Collaborator: "verifier", Field: "suggested_decision", Value: string(ver.SuggestedDecision)}
	}

	res := policy.Reconcile(outcome.Decision, ver.Agree, outcome.Missing)
	finalDecisions.WithLabelValues(studyID, string(res.Final)).Inc()
	if res.Conflict {
		conflicts.WithLabelValues(studyID).Inc()
		log.With("rule_decision", outcome.Decision).
			With("suggested_decision", ver.SuggestedDecision).
			Warn("Verifier disagreed with rule screen")
	}

	notes := ver.Notes
	if notes == nil {
		notes = []string{}
	}

	result = &MatchResult{
		PatientID:                 pid,
		StudyID:                   studyID,
		RuleDecision:              outcome.Decision,
		FinalDecision:             res.Final,
		RuleReasons:               outcome.Reasons,
		VerifierAgree:             ver.Agree,
		VerifierSuggestedDecision: ver.SuggestedDecision,
		VerifierNotes:             notes,
		Evidence:                  evidence,
		MissingInfo:               outcome.Missing,
		Conflict:                  res.Conflict,
		UncertaintyReason:         res.UncertaintyReason,
	}
	log.With("final_decision", result.FinalDecision).Info("Match complete")
	return result, nil
}
