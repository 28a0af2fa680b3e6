/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/google/go-cmp/cmp"
)

func TestCriterionValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       criteria.Criterion
		wantErr string
	}{{
		name: "numeric ordering",
		c:    criteria.Criterion{Field: criteria.FieldAge, Op: criteria.OpGreaterOrEqual, Value: criteria.Scalar(40)},
	}, {
		name: "text list",
		c:    criteria.Criterion{Field: criteria.FieldComorbidities, Op: criteria.OpContainsAny, Value: criteria.List("t2d")},
	}, {
		name: "boolean equality",
		c:    criteria.Criterion{Field: criteria.FieldInsulinUser, Op: criteria.OpEqual, Value: criteria.Scalar(false)},
	}, {
		name: "text equality",
		c:    criteria.Criterion{Field: criteria.FieldGender, Op: criteria.OpEqual, Value: criteria.Scalar("female")},
	}, {
		name:    "scalar for contains_any",
		c:       criteria.Criterion{Field: criteria.FieldComorbidities, Op: criteria.OpContainsAny, Value: criteria.Scalar("t2d")},
		wantErr: "requires a list value",
	}, {
		name:    "list for ordering",
		c:       criteria.Criterion{Field: criteria.FieldAge, Op: criteria.OpGreater, Value: criteria.List("40")},
		wantErr: "requires a scalar value",
	}, {
		name:    "ordering on text field",
		c:       criteria.Criterion{Field: criteria.FieldGender, Op: criteria.OpLess, Value: criteria.Scalar(3)},
		wantErr: "cannot be applied to text field gender",
	}, {
		name:    "contains on numeric field",
		c:       criteria.Criterion{Field: criteria.FieldEGFR, Op: criteria.OpContainsAll, Value: criteria.List("60")},
		wantErr: "cannot be applied to numeric field egfr",
	}, {
		name:    "non-numeric threshold",
		c:       criteria.Criterion{Field: criteria.FieldAge, Op: criteria.OpLessOrEqual, Value: criteria.Scalar("old")},
		wantErr: "is not a number",
	}, {
		name:    "non-boolean flag",
		c:       criteria.Criterion{Field: criteria.FieldInsulinUser, Op: criteria.OpEqual, Value: criteria.Scalar("sometimes")},
		wantErr: "is not a boolean",
	}, {
		name:    "empty list",
		c:       criteria.Criterion{Field: criteria.FieldComorbidities, Op: criteria.OpNotContainsAny, Value: criteria.List()},
		wantErr: "at least one item",
	}, {
		name:    "unknown field",
		c:       criteria.Criterion{Field: "hba1c", Op: criteria.OpLess, Value: criteria.Scalar(7)},
		wantErr: `unknown field "hba1c"`,
	}, {
		name:    "unknown operator",
		c:       criteria.Criterion{Field: criteria.FieldAge, Op: "between", Value: criteria.Scalar(7)},
		wantErr: `unknown operator "between"`,
	}, {
		name:    "missing value",
		c:       criteria.Criterion{Field: criteria.FieldAge, Op: criteria.OpLess},
		wantErr: "value is required",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.wantErr)
			}
			if !criteria.IsMalformedCriterion(err) {
				t.Errorf("Validate() error %T is not a *MalformedCriterionError", err)
			}
		})
	}
}

func TestStudyCriteriaValidateLocatesCriterion(t *testing.T) {
	sc := &criteria.StudyCriteria{
		StudyID: "S1",
		Inclusion: []criteria.Criterion{
			{Field: criteria.FieldAge, Op: criteria.OpGreaterOrEqual, Value: criteria.Scalar(40)},
			{Field: criteria.FieldComorbidities, Op: criteria.OpContainsAny, Value: criteria.Scalar("t2d")},
		},
	}

	err := sc.Validate()
	var mce *criteria.MalformedCriterionError
	if !errors.As(err, &mce) {
		t.Fatalf("Validate() = %v, want *MalformedCriterionError", err)
	}
	if mce.Section != criteria.SectionInclusion || mce.Index != 1 {
		t.Errorf("located at %s[%d], want inclusion[1]", mce.Section, mce.Index)
	}
}

func TestStudyCriteriaDefaults(t *testing.T) {
	sc := &criteria.StudyCriteria{}
	if got := sc.ID(); got != criteria.UnknownStudyID {
		t.Errorf("ID() = %q, want %q", got, criteria.UnknownStudyID)
	}
	want := []criteria.Field{criteria.FieldComorbidities, criteria.FieldCurrentMedications}
	if diff := cmp.Diff(want, sc.EvidenceFields()); diff != "" {
		t.Errorf("EvidenceFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	want := &criteria.StudyCriteria{
		StudyID: "DM-040",
		Title:   "Type 2 diabetes, non-insulin",
		Inclusion: []criteria.Criterion{
			{Field: criteria.FieldComorbidities, Op: criteria.OpContainsAny, Value: criteria.List("type 2 diabetes", "t2d")},
			{Field: criteria.FieldAge, Op: criteria.OpGreaterOrEqual, Value: criteria.Scalar(40)},
			{Field: criteria.FieldInsulinUser, Op: criteria.OpEqual, Value: criteria.Scalar(false), Note: "non-insulin treated"},
		},
		Exclusion: []criteria.Criterion{
			{Field: criteria.FieldComorbidities, Op: criteria.OpContainsAny, Value: criteria.List("type 1 diabetes", "t1d")},
		},
	}

	tests := []struct {
		name  string
		input string
	}{{
		name: "yaml",
		input: `
study_id: DM-040
title: Type 2 diabetes, non-insulin
inclusion:
  - field: comorbidities
    op: contains_any
    value: [type 2 diabetes, t2d]
  - field: age
    op: ">="
    value: 40
  - field: insulin_user
    op: "=="
    value: false
    note: non-insulin treated
exclusion:
  - field: comorbidities
    op: contains_any
    value: [type 1 diabetes, t1d]
`,
	}, {
		name: "json",
		input: `{
  "study_id": "DM-040",
  "title": "Type 2 diabetes, non-insulin",
  "inclusion": [
    {"field": "comorbidities", "op": "contains_any", "value": ["type 2 diabetes", "t2d"]},
    {"field": "age", "op": ">=", "value": 40},
    {"field": "insulin_user", "op": "==", "value": false, "note": "non-insulin treated"}
  ],
  "exclusion": [
    {"field": "comorbidities", "op": "contains_any", "value": ["type 1 diabetes", "t1d"]}
  ]
}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := criteria.Load(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Load() = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	_, err := criteria.Load(strings.NewReader(`
study_id: X
exclusion:
  - field: comorbidities
    op: contains_any
    value: t1d
`))
	if !criteria.IsMalformedCriterion(err) {
		t.Fatalf("Load() = %v, want malformed criterion error", err)
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want criteria.Value
		str  string
	}{
		{name: "integer", in: `40`, want: criteria.Scalar(40), str: "40"},
		{name: "float", in: `1.5`, want: criteria.Scalar(1.5), str: "1.5"},
		{name: "bool", in: `false`, want: criteria.Scalar(false), str: "false"},
		{name: "string", in: `"female"`, want: criteria.Scalar("female"), str: "female"},
		{name: "list", in: `["a", "b"]`, want: criteria.List("a", "b"), str: "[a, b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got criteria.Value
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
			out, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("Marshal() = %v", err)
			}
			if string(out) != strings.ReplaceAll(tt.in, " ", "") {
				t.Errorf("Marshal() = %s, want %s", out, tt.in)
			}
		})
	}
}

func TestParseDecision(t *testing.T) {
	for _, d := range criteria.Decisions {
		if _, err := criteria.ParseDecision(string(d)); err != nil {
			t.Errorf("ParseDecision(%q) = %v", d, err)
		}
	}
	if _, err := criteria.ParseDecision("maybe"); err == nil {
		t.Error("ParseDecision(maybe) = nil, want error")
	}
}

func TestParseField(t *testing.T) {
	for _, f := range criteria.Fields {
		got, err := criteria.ParseField(string(f))
		if err != nil || got != f {
			t.Errorf("ParseField(%q) = %q, %v", f, got, err)
		}
	}
	for _, s := range []string{"", "hba1c", "Age", " age"} {
		if _, err := criteria.ParseField(s); err == nil {
			t.Errorf("ParseField(%q) = nil, want error", s)
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, o := range criteria.Operators {
		got, err := criteria.ParseOperator(string(o))
		if err != nil || got != o {
			t.Errorf("ParseOperator(%q) = %q, %v", o, got, err)
		}
	}
	for _, s := range []string{"", "between", "=>"} {
		if _, err := criteria.ParseOperator(s); err == nil {
			t.Errorf("ParseOperator(%q) = nil, want error", s)
		}
	}
}

func TestStudyCriteriaValidateRequiredEvidence(t *testing.T) {
	sc := &criteria.StudyCriteria{
		StudyID:          "S1",
		RequiredEvidence: []criteria.Field{criteria.FieldEGFR, "hba1c"},
	}
	err := sc.Validate()
	if err == nil || !strings.Contains(err.Error(), `required_evidence: unknown field "hba1c"`) {
		t.Errorf("Validate() = %v, want required_evidence error", err)
	}
}

func TestPatientCard(t *testing.T) {
	p := criteria.Patient{
		"patient_id":          "P1",
		"age":                 "55",
		"gender":              "F",
		"egfr":                " 72 ",
		"insulin_user":        "no",
		"current_medications": "metformin",
	}
	want := "PATIENT:\n" +
		"patient_id: P1\n" +
		"age: 55\n" +
		"gender: F\n" +
		"egfr: 72\n" +
		"insulin_user: no\n" +
		"current_medications: metformin\n" +
		"comorbidities: "
	if got := p.Card(); got != want {
		t.Errorf("Card() = %q, want %q", got, want)
	}

	p["patient_card"] = "prebuilt"
	if got := p.Card(); got != "prebuilt" {
		t.Errorf("Card() with prebuilt card = %q, want prebuilt", got)
	}
	if got := p.RenderCard(); got != want {
		t.Errorf("RenderCard() = %q, want %q", got, want)
	}
}
