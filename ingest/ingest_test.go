/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ingest_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/trialscreen/ingest"
	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/google/go-cmp/cmp"
)

const cohort = `patient_id,age,gender,egfr,insulin_user,current_medications,comorbidities,site
P001, 54 ,F,72,yes,metformin,type 2 diabetes;hypertension,Boston
P002,67,M,n/a,0,,ckd,Austin
`

func TestReadPatients(t *testing.T) {
	got, err := ingest.ReadPatients(strings.NewReader(cohort))
	if err != nil {
		t.Fatalf("ReadPatients() = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(ReadPatients()) = %d, want 2", len(got))
	}

	want := criteria.Patient{
		"patient_id":          "P001",
		"age":                 "54",
		"gender":              "F",
		"egfr":                "72",
		"insulin_user":        "yes",
		"current_medications": "metformin",
		"comorbidities":       "type 2 diabetes;hypertension",
		"site":                "Boston",
		"insulin_user_bool":   "true",
		"egfr_num":            "72",
		"patient_card": `PATIENT:
patient_id: P001
age: 54
gender: F
egfr: 72
insulin_user: yes
current_medications: metformin
comorbidities: type 2 diabetes;hypertension`,
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("patient mismatch (-want +got):\n%s", diff)
	}

	if got[1]["egfr_num"] != "" || got[1]["insulin_user_bool"] != "false" {
		t.Errorf("derived columns = %q, %q, want blank and false", got[1]["egfr_num"], got[1]["insulin_user_bool"])
	}
	if _, ok := got[1].Lookup(criteria.FieldCurrentMedications); ok {
		t.Error("blank medications reported as present")
	}
}

func TestReadPatientsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{{
		name:  "empty",
		input: "",
		check: func(err error) bool {
			var mce *ingest.MissingColumnsError
			return errors.As(err, &mce) && len(mce.Columns) == len(ingest.RequiredColumns)
		},
	}, {
		name:  "missing columns",
		input: "patient_id,age,gender\nP1,1,F\n",
		check: func(err error) bool {
			var mce *ingest.MissingColumnsError
			return errors.As(err, &mce) && cmp.Equal(mce.Columns, []string{"egfr", "insulin_user", "current_medications", "comorbidities"})
		},
	}, {
		name:  "blank id",
		input: "patient_id,age,gender,egfr,insulin_user,current_medications,comorbidities\n ,1,F,1,0,,\n",
		check: func(err error) bool {
			var re *ingest.RowError
			return errors.As(err, &re) && re.Row == 2
		},
	}, {
		name:  "duplicate id",
		input: "patient_id,age,gender,egfr,insulin_user,current_medications,comorbidities\nP1,1,F,1,0,,\nP1,2,M,1,0,,\n",
		check: func(err error) bool {
			var re *ingest.RowError
			return errors.As(err, &re) && re.Row == 3 && strings.Contains(err.Error(), "first seen on row 2")
		},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.ReadPatients(strings.NewReader(tt.input))
			if err == nil || !tt.check(err) {
				t.Errorf("ReadPatients() = %v", err)
			}
		})
	}
}

func TestPrepareKeepsExistingCard(t *testing.T) {
	p := criteria.Patient{"patient_id": "P1", "patient_card": "custom card", "egfr": "44.50"}
	ingest.Prepare(p)
	if p["patient_card"] != "custom card" {
		t.Errorf("patient_card = %q, want the existing card", p["patient_card"])
	}
	if p["egfr_num"] != "44.5" {
		t.Errorf("egfr_num = %q, want 44.5", p["egfr_num"])
	}
}

func TestWritePatientsRoundTrip(t *testing.T) {
	in, err := ingest.ReadPatients(strings.NewReader(cohort))
	if err != nil {
		t.Fatalf("ReadPatients() = %v", err)
	}
	var buf bytes.Buffer
	if err := ingest.WritePatients(&buf, in); err != nil {
		t.Fatalf("WritePatients() = %v", err)
	}
	header, _, _ := strings.Cut(buf.String(), "\n")
	if want := "patient_id,age,gender,egfr,insulin_user,current_medications,comorbidities,site,insulin_user_bool,egfr_num,patient_card"; header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	out, err := ingest.ReadPatients(&buf)
	if err != nil {
		t.Fatalf("ReadPatients(written) = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
