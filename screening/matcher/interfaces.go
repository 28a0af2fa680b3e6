/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"context"

	"chainguard.dev/trialscreen/retrieval"
	"chainguard.dev/trialscreen/screening/criteria"
)

// Retriever finds evidence for a query. Implementations must honour the
// filter exactly; the matcher relies on it to keep evidence scoped to a
// single patient.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, filter map[string]string) ([]retrieval.Document, error)
}

// VerificationRequest is what the verifier is asked to check.
type VerificationRequest struct {
	Patient      criteria.Patient
	Criteria     *criteria.StudyCriteria
	RuleDecision criteria.Decision
	RuleReasons  []string
	Evidence     []string
}

// Verification is the verifier's opinion of a rule decision.
type Verification struct {
	Agree             bool
	SuggestedDecision criteria.Decision
	Notes             []string
}

// Verifier checks a rule decision against patient fields and evidence.
type Verifier interface {
	Verify(ctx context.Context, req *VerificationRequest) (*Verification, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, req *VerificationRequest) (*Verification, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, req *VerificationRequest) (*Verification, error) {
	return f(ctx, req)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, query string, topK int, filter map[string]string) ([]retrieval.Document, error)

// Retrieve implements Retriever.
func (f RetrieverFunc) Retrieve(ctx context.Context, query string, topK int, filter map[string]string) ([]retrieval.Document, error) {
	return f(ctx, query, topK, filter)
}
