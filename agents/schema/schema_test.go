/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"strings"
	"testing"

	"chainguard.dev/trialscreen/agents/schema"
	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func TestReflect(t *testing.T) {
	type nested struct {
		Value string `json:"value" jsonschema:"description=Nested value"`
	}
	type sample struct {
		Name   string  `json:"name" jsonschema:"description=Name,required"`
		Count  int     `json:"count,omitempty"`
		Nested *nested `json:"nested,omitempty"`
	}

	s := schema.Reflect(&sample{})
	if s == nil {
		t.Fatal("expected schema")
	}
	if diff := cmp.Diff([]string{"name"}, s.Required); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}

	name, ok := s.Properties.Get("name")
	if !ok {
		t.Fatal("missing name property")
	}
	if name.Description != "Name" {
		t.Errorf("name description = %q, want Name", name.Description)
	}

	n, ok := s.Properties.Get("nested")
	if !ok || n.Properties == nil {
		t.Fatal("missing nested properties")
	}
	if v, ok := n.Properties.Get("value"); !ok || v.Description != "Nested value" {
		t.Errorf("nested value = %+v, want description %q", v, "Nested value")
	}
}

func TestForGemini(t *testing.T) {
	type response struct {
		Agree    bool                `json:"agree" jsonschema:"required"`
		Decision criteria.Decision   `json:"decision" jsonschema:"required"`
		Notes    []string            `json:"notes"`
		Criteria *criteria.Criterion `json:"criterion,omitempty"`
	}

	got := schema.ForGemini(schema.ReflectType[response]())

	if got.Type != genai.TypeObject {
		t.Errorf("Type = %q, want %q", got.Type, genai.TypeObject)
	}
	if diff := cmp.Diff([]string{"agree", "decision", "notes", "criterion"}, got.PropertyOrdering); diff != "" {
		t.Errorf("PropertyOrdering mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"agree", "decision"}, got.Required); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"eligible", "not_eligible", "uncertain"}, got.Properties["decision"].Enum); diff != "" {
		t.Errorf("decision enum mismatch (-want +got):\n%s", diff)
	}
	if notes := got.Properties["notes"]; notes.Type != genai.TypeArray || notes.Items.Type != genai.TypeString {
		t.Errorf("notes = %+v, want array of string", notes)
	}
	value := got.Properties["criterion"].Properties["value"]
	if len(value.AnyOf) == 0 {
		t.Errorf("criterion value AnyOf is empty, want alternatives")
	}
}

func TestJSON(t *testing.T) {
	type response struct {
		Agree bool `json:"agree" jsonschema:"required"`
	}
	got, err := schema.JSON(schema.ReflectType[response]())
	if err != nil {
		t.Fatalf("JSON() = %v", err)
	}
	if !strings.Contains(got, `"agree"`) {
		t.Errorf("JSON() = %s, want agree property", got)
	}
}

func TestForGeminiBounds(t *testing.T) {
	type scored struct {
		Score int `json:"score" jsonschema:"required,minimum=1,maximum=5"`
	}
	got := schema.ForGemini(schema.ReflectType[*scored]()).Properties["score"]
	if got.Type != genai.TypeInteger {
		t.Errorf("Type = %q, want %q", got.Type, genai.TypeInteger)
	}
	if got.Minimum == nil || *got.Minimum != 1 {
		t.Errorf("Minimum = %v, want 1", got.Minimum)
	}
	if got.Maximum == nil || *got.Maximum != 5 {
		t.Errorf("Maximum = %v, want 5", got.Maximum)
	}
}
