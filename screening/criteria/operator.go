/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Operator is a comparison a criterion applies to a patient field.
type Operator string

const (
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpEqual          Operator = "=="
	OpContainsAny    Operator = "contains_any"
	OpContainsAll    Operator = "contains_all"
	OpNotContainsAny Operator = "not_contains_any"
)

// Operators lists the closed operator set.
var Operators = []Operator{
	OpGreaterOrEqual,
	OpLessOrEqual,
	OpGreater,
	OpLess,
	OpEqual,
	OpContainsAny,
	OpContainsAll,
	OpNotContainsAny,
}

// Valid reports whether o is part of the operator set.
func (o Operator) Valid() bool {
	switch o {
	case OpGreaterOrEqual, OpLessOrEqual, OpGreater, OpLess, OpEqual,
		OpContainsAny, OpContainsAll, OpNotContainsAny:
		return true
	}
	return false
}

// IsList reports whether the operator takes a list value.
func (o Operator) IsList() bool {
	switch o {
	case OpContainsAny, OpContainsAll, OpNotContainsAny:
		return true
	}
	return false
}

// IsOrdering reports whether the operator is a numeric ordering comparison.
func (o Operator) IsOrdering() bool {
	switch o {
	case OpGreaterOrEqual, OpLessOrEqual, OpGreater, OpLess:
		return true
	}
	return false
}

// ParseOperator converts s into an Operator.
func ParseOperator(s string) (Operator, error) {
	o := Operator(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return o, nil
}

// JSONSchema restricts generated schemas to the known operators.
func (Operator) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(Operators))
	for _, o := range Operators {
		enum = append(enum, string(o))
	}
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enum,
		Description: "Comparison applied to the field",
	}
}
