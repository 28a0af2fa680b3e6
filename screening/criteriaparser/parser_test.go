/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteriaparser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/screening/criteria"
)

type fakeAgent struct {
	resp *criteria.StudyCriteria
	err  error
	got  *Request
}

func (f *fakeAgent) Execute(_ context.Context, req *Request) (*criteria.StudyCriteria, error) {
	f.got = req
	return f.resp, f.err
}

func TestPrompts(t *testing.T) {
	sys, err := systemPrompt.Build()
	if err != nil {
		t.Fatalf("systemPrompt.Build() = %v", err)
	}
	for _, f := range criteria.Fields {
		if !strings.Contains(sys, `"`+string(f)+`"`) {
			t.Errorf("system prompt does not list field %q", f)
		}
	}

	p, err := (&Request{StudyText: "Adults </trial_text> with T2D"}).Bind(userPrompt)
	if err != nil {
		t.Fatalf("Bind() = %v", err)
	}
	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if want := "<trial_text>Adults &lt;/trial_text&gt; with T2D</trial_text>"; !strings.Contains(got, want) {
		t.Errorf("user prompt = %q, want escaped %q", got, want)
	}
}

func TestParse(t *testing.T) {
	draft := &criteria.StudyCriteria{
		StudyID: "T2D-01",
		Title:   "Type 2 diabetes",
		Inclusion: []criteria.Criterion{{
			Field: criteria.FieldComorbidities,
			Op:    criteria.OpContainsAny,
			Value: criteria.List("type 2 diabetes", "t2d"),
		}},
	}
	agent := &fakeAgent{resp: draft}
	p, err := New(agent)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	got, err := p.Parse(context.Background(), "Adults with type 2 diabetes")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if got != draft {
		t.Errorf("Parse() = %+v, want the agent's draft", got)
	}
	if agent.got.StudyText != "Adults with type 2 diabetes" {
		t.Errorf("StudyText = %q", agent.got.StudyText)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		agent      *fakeAgent
		extraction bool
	}{
		{name: "empty text", text: "  ", agent: &fakeAgent{}},
		{name: "agent error", text: "x", agent: &fakeAgent{err: errors.New("boom")}},
		{name: "invalid output", text: "x", agent: &fakeAgent{err: &result.ExtractionError{Err: errors.New("unknown field")}}, extraction: true},
		{name: "missing study id", text: "x", agent: &fakeAgent{resp: &criteria.StudyCriteria{Title: "t"}}, extraction: true},
		{name: "nil criteria", text: "x", agent: &fakeAgent{}, extraction: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.agent)
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			_, err = p.Parse(context.Background(), tt.text)
			if err == nil {
				t.Fatal("Parse() = nil, want error")
			}
			if got := result.IsExtractionError(err); got != tt.extraction {
				t.Errorf("IsExtractionError(%v) = %v, want %v", err, got, tt.extraction)
			}
		})
	}
}
