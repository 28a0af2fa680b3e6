/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
	"github.com/google/go-cmp/cmp"
)

type fakeAgent struct {
	resp *Response
	err  error
	got  *Request
}

func (f *fakeAgent) Execute(_ context.Context, req *Request) (*Response, error) {
	f.got = req
	return f.resp, f.err
}

func sampleRequest() *matcher.VerificationRequest {
	return &matcher.VerificationRequest{
		Patient: criteria.Patient{
			"patient_id":   "P001",
			"age":          "54",
			"gender":       "F",
			"egfr":         "72",
			"patient_card": "Patient ID: P001",
		},
		Criteria: &criteria.StudyCriteria{
			StudyID: "T2D-CGM-01",
			Title:   "CGM in type 2 diabetes",
			Inclusion: []criteria.Criterion{
				{Field: criteria.FieldAge, Op: criteria.OpGreaterOrEqual, Value: criteria.Scalar(40)},
			},
		},
		RuleDecision: criteria.Uncertain,
		RuleReasons:  []string{"Some required info missing in dataset -> uncertain"},
		Evidence:     []string{"Patient ID: P001\nAge: 54"},
	}
}

func TestRequestBind(t *testing.T) {
	p, err := (&Request{VerificationRequest: sampleRequest()}).Bind(userPrompt)
	if err != nil {
		t.Fatalf("Bind() = %v", err)
	}
	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	for _, want := range []string{
		`"study_id": "T2D-CGM-01"`,
		`"patient_id": "P001"`,
		`decision = "uncertain"`,
		"1. Patient ID: P001 Age: 54",
		"1. Some required info missing in dataset -> uncertain",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "patient_card") {
		t.Errorf("prompt leaks derived columns:\n%s", got)
	}
}

func TestRequestBindRequiredEvidence(t *testing.T) {
	tests := []struct {
		name     string
		required []criteria.Field
		want     string
	}{{
		name: "default",
		want: `"comorbidities",`,
	}, {
		name:     "study override",
		required: []criteria.Field{criteria.FieldEGFR},
		want:     `"egfr"`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			req.Criteria.RequiredEvidence = tt.required
			p, err := (&Request{VerificationRequest: req}).Bind(userPrompt)
			if err != nil {
				t.Fatalf("Bind() = %v", err)
			}
			got, err := p.Build()
			if err != nil {
				t.Fatalf("Build() = %v", err)
			}
			_, after, ok := strings.Cut(got, "REQUIRED EVIDENCE FIELDS:\n")
			if !ok {
				t.Fatalf("prompt has no required evidence section:\n%s", got)
			}
			section, _, _ := strings.Cut(after, "\n\n")
			if !strings.Contains(section, tt.want) {
				t.Errorf("required evidence = %q, want it to contain %q", section, tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	agent := &fakeAgent{resp: &Response{
		Agree:             false,
		SuggestedDecision: criteria.NotEligible,
		Groundedness:      GroundednessHigh,
	}}
	v, err := New(agent)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	req := sampleRequest()
	got, err := v.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("Verify() = %v", err)
	}
	want := &matcher.Verification{Agree: false, SuggestedDecision: criteria.NotEligible, Notes: []string{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Verify() mismatch (-want +got):\n%s", diff)
	}
	if agent.got.VerificationRequest != req {
		t.Error("agent did not receive the verification request")
	}
}

func TestVerifyErrors(t *testing.T) {
	extractErr := &result.ExtractionError{Raw: "nope", Err: errors.New("invalid character")}
	v, err := New(&fakeAgent{err: extractErr})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	_, err = v.Verify(context.Background(), sampleRequest())
	if !result.IsExtractionError(err) {
		t.Errorf("Verify() = %v, want wrapped extraction error", err)
	}

	if _, err := v.Verify(context.Background(), &matcher.VerificationRequest{}); err == nil {
		t.Error("Verify(no criteria) = nil, want error")
	}
	if _, err := New(nil); err == nil {
		t.Error("New(nil) = nil, want error")
	}
}

func TestResponseValidate(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		wantErr bool
	}{
		{name: "valid", resp: Response{SuggestedDecision: criteria.Eligible, Groundedness: GroundednessLow}},
		{name: "groundedness omitted", resp: Response{SuggestedDecision: criteria.Uncertain}},
		{name: "unknown decision", resp: Response{SuggestedDecision: "maybe"}, wantErr: true},
		{name: "empty decision", resp: Response{}, wantErr: true},
		{name: "unknown groundedness", resp: Response{SuggestedDecision: criteria.Eligible, Groundedness: "certain"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.resp.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNullResponse(t *testing.T) {
	if err := (*Response)(nil).Validate(); err == nil {
		t.Error("nil Response.Validate() = nil, want error")
	}
	got, err := result.Extract[*Response]("null")
	if !result.IsExtractionError(err) {
		t.Fatalf("Extract(null) error = %v, want *ExtractionError", err)
	}
	if got != nil {
		t.Errorf("Extract(null) = %+v, want nil", got)
	}
}
