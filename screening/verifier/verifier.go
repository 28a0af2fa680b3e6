/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/trialscreen/agents/metaagent"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
	"github.com/chainguard-dev/clog"
	"github.com/invopop/jsonschema"
)

// Groundedness is the verifier's own estimate of how well its check is
// supported by the inputs.
type Groundedness string

const (
	GroundednessHigh   Groundedness = "high"
	GroundednessMedium Groundedness = "medium"
	GroundednessLow    Groundedness = "low"
)

// JSONSchema restricts generated schemas to the groundedness levels.
func (Groundedness) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "string",
		Enum: []any{string(GroundednessHigh), string(GroundednessMedium), string(GroundednessLow)},
	}
}

// Request is the prompt input for one verification.
type Request struct {
	*matcher.VerificationRequest
}

// Bind implements promptbuilder.Bindable.
func (r *Request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	var err error
	if p, err = p.BindJSON("criteria", r.Criteria); err != nil {
		return nil, err
	}
	if p, err = p.BindJSON("patient", r.Patient.Fields()); err != nil {
		return nil, err
	}
	if p, err = p.BindJSON("required_evidence", r.Criteria.EvidenceFields()); err != nil {
		return nil, err
	}
	if p, err = p.BindList("evidence", r.Evidence); err != nil {
		return nil, err
	}
	if p, err = p.BindJSON("rule_decision", r.RuleDecision); err != nil {
		return nil, err
	}
	return p.BindList("rule_reasons", r.RuleReasons)
}

// Response is the structured model output.
type Response struct {
	Agree                   bool              `json:"agree" jsonschema:"required,description=Whether the rule-based decision is consistent with the inputs"`
	SuggestedDecision       criteria.Decision `json:"suggested_decision" jsonschema:"required"`
	Notes                   []string          `json:"notes" jsonschema:"description=Short notes explaining the check"`
	Groundedness            Groundedness      `json:"groundedness,omitempty"`
	UsedOnlyAvailableFields *bool             `json:"used_only_available_fields,omitempty"`
}

// Validate implements result.Validator.
func (r *Response) Validate() error {
	if r == nil {
		return errors.New("response is empty")
	}
	var errs []error
	if err := r.SuggestedDecision.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("suggested_decision: %w", err))
	}
	switch r.Groundedness {
	case "", GroundednessHigh, GroundednessMedium, GroundednessLow:
	default:
		errs = append(errs, fmt.Errorf("groundedness: invalid level %q", r.Groundedness))
	}
	return errors.Join(errs...)
}

// Verifier implements matcher.Verifier with a structured generation agent.
type Verifier struct {
	agent metaagent.Agent[*Request, *Response]
}

var _ matcher.Verifier = (*Verifier)(nil)

// New wraps an existing agent.
func New(agent metaagent.Agent[*Request, *Response]) (*Verifier, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	return &Verifier{agent: agent}, nil
}

// NewFromConfig builds the agent from cfg with the verifier prompts.
// Verification uses deterministic sampling regardless of cfg.Temperature.
func NewFromConfig(ctx context.Context, cfg metaagent.Config) (*Verifier, error) {
	cfg.SystemInstructions = systemPrompt
	cfg.UserPrompt = userPrompt
	cfg.Temperature = 0
	agent, err := metaagent.New[*Request, *Response](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating verifier agent: %w", err)
	}
	return New(agent)
}

// Verify implements matcher.Verifier.
func (v *Verifier) Verify(ctx context.Context, req *matcher.VerificationRequest) (*matcher.Verification, error) {
	if req == nil || req.Criteria == nil {
		return nil, errors.New("verification request requires criteria")
	}
	resp, err := v.agent.Execute(ctx, &Request{VerificationRequest: req})
	if err != nil {
		return nil, fmt.Errorf("verifying rule decision: %w", err)
	}

	log := clog.FromContext(ctx)
	if resp.UsedOnlyAvailableFields != nil && !*resp.UsedOnlyAvailableFields {
		log.Warn("Verifier reports using information beyond the provided fields")
	}
	log.With("agree", resp.Agree).
		With("suggested_decision", resp.SuggestedDecision).
		With("groundedness", resp.Groundedness).
		Debug("Verification complete")

	notes := resp.Notes
	if notes == nil {
		notes = []string{}
	}
	return &matcher.Verification{
		Agree:             resp.Agree,
		SuggestedDecision: resp.SuggestedDecision,
		Notes:             notes,
	}, nil
}
