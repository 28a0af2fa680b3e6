/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// Field names a patient attribute that criteria may test.
type Field string

const (
	FieldAge                Field = "age"
	FieldGender             Field = "gender"
	FieldEGFR               Field = "egfr"
	FieldInsulinUser        Field = "insulin_user"
	FieldCurrentMedications Field = "current_medications"
	FieldComorbidities      Field = "comorbidities"
)

// Fields lists every field in the order the patient dataset declares them.
var Fields = []Field{
	FieldAge,
	FieldGender,
	FieldEGFR,
	FieldInsulinUser,
	FieldCurrentMedications,
	FieldComorbidities,
}

// Kind classifies how a field's value is compared.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kind returns the comparison kind of the field.
func (f Field) Kind() Kind {
	switch f {
	case FieldAge, FieldEGFR:
		return KindNumeric
	case FieldInsulinUser:
		return KindBoolean
	default:
		return KindText
	}
}

// Valid reports whether f is one of the known fields.
func (f Field) Valid() bool {
	switch f {
	case FieldAge, FieldGender, FieldEGFR, FieldInsulinUser, FieldCurrentMedications, FieldComorbidities:
		return true
	}
	return false
}

// ParseField converts s into a Field, rejecting anything outside the closed set.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown field %q", s)
	}
	return f, nil
}

// JSONSchema restricts generated schemas to the known fields.
func (Field) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(Fields))
	for _, f := range Fields {
		enum = append(enum, string(f))
	}
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enum,
		Description: "Patient field the criterion tests",
	}
}

// IsTruthy reports whether a raw boolean column value means true.
// Anything outside the accepted spellings is false.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes", "y":
		return true
	}
	return false
}

// ParseFlag parses a boolean criterion value. Unlike IsTruthy it rejects
// spellings it does not recognise.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes", "y":
		return true, nil
	case "false", "0", "0.0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

// ParseNumber parses a numeric field value.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
