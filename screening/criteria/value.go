/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Value is the right-hand side of a criterion: either a single scalar or an
// ordered list of scalars. Scalars are held in their canonical string form.
type Value struct {
	items []string
	list  bool
}

// Scalar builds a scalar value from a string, number or boolean.
func Scalar(v any) Value {
	s, err := scalarString(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return Value{items: []string{s}}
}

// List builds a list value.
func List(items ...string) Value {
	return Value{items: append([]string{}, items...), list: true}
}

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.list }

// IsZero reports whether the value was never set.
func (v Value) IsZero() bool { return !v.list && len(v.items) == 0 }

// Items returns a copy of the list elements. A scalar yields a single item.
func (v Value) Items() []string {
	return append([]string{}, v.items...)
}

// Scalar returns the scalar string, or "" for lists and unset values.
func (v Value) Scalar() string {
	if v.list || len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Equal reports whether two values have the same shape and items.
func (v Value) Equal(o Value) bool {
	if v.list != o.list || len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if v.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// String renders the value for reasons and retrieval queries.
func (v Value) String() string {
	if v.list {
		return "[" + strings.Join(v.items, ", ") + "]"
	}
	return v.Scalar()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.natural())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueFrom(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	return v.natural(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueFrom(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// JSONSchema describes a value as a string, number, boolean or list of strings.
func (Value) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Scalar for comparison operators, list of strings for contains_* operators",
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "boolean"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// natural converts the value back into the JSON/YAML shape it most likely
// came from, so numbers and booleans do not turn into quoted strings.
func (v Value) natural() any {
	if v.list {
		return v.Items()
	}
	if len(v.items) == 0 {
		return nil
	}
	s := v.items[0]
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

func valueFrom(raw any) (Value, error) {
	switch raw := raw.(type) {
	case nil:
		return Value{}, nil
	case []any:
		items := make([]string, 0, len(raw))
		for i, elem := range raw {
			s, err := scalarString(elem)
			if err != nil {
				return Value{}, fmt.Errorf("list element %d: %w", i, err)
			}
			items = append(items, s)
		}
		return Value{items: items, list: true}, nil
	default:
		s, err := scalarString(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{items: []string{s}}, nil
	}
}

func scalarString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
