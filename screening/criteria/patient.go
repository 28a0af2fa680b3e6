/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"fmt"
	"strings"
)

const (
	// KeyPatientID is the column that identifies a patient record.
	KeyPatientID = "patient_id"
	// KeyPatientCard holds the prebuilt retrieval text for a patient.
	KeyPatientCard = "patient_card"
)

// Patient is a flat record of field name to raw value.
type Patient map[string]string

// ID returns the trimmed patient identifier.
func (p Patient) ID() string {
	return strings.TrimSpace(p[KeyPatientID])
}

// Lookup returns the trimmed value of f and whether it is present.
// Blank values count as absent.
func (p Patient) Lookup(f Field) (string, bool) {
	v := strings.TrimSpace(p[string(f)])
	return v, v != ""
}

// Fields returns the subset of the record that criteria can reference,
// plus the patient id. Derived columns such as the patient card are left out.
func (p Patient) Fields() map[string]string {
	out := make(map[string]string, len(Fields)+1)
	out[KeyPatientID] = p.ID()
	for _, f := range Fields {
		v, _ := p.Lookup(f)
		out[string(f)] = v
	}
	return out
}

// Card returns the text indexed for retrieval. A prebuilt patient card is
// preferred; otherwise the card is rendered by RenderCard.
func (p Patient) Card() string {
	if card := strings.TrimSpace(p[KeyPatientCard]); card != "" {
		return p[KeyPatientCard]
	}
	return p.RenderCard()
}

// RenderCard renders the card from the patient id and the known fields, one
// "name: value" line each under a PATIENT: heading.
func (p Patient) RenderCard() string {
	var b strings.Builder
	b.WriteString("PATIENT:")
	fmt.Fprintf(&b, "\n%s: %s", KeyPatientID, p.ID())
	for _, f := range Fields {
		fmt.Fprintf(&b, "\n%s: %s", f, strings.TrimSpace(p[string(f)]))
	}
	return b.String()
}
