/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// ForGemini converts a JSON schema into the subset genai understands.
// Property order is preserved so the model emits fields in declaration order.
func ForGemini(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Format:      s.Format,
		Required:    s.Required,
	}

	out.Minimum = number(s.Minimum)
	out.Maximum = number(s.Maximum)

	for _, e := range s.Enum {
		out.Enum = append(out.Enum, enumString(e))
	}

	if s.Properties != nil {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = ForGemini(pair.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}

	if s.Items != nil {
		out.Items = ForGemini(s.Items)
	}

	for _, alt := range append(s.AnyOf, s.OneOf...) {
		out.AnyOf = append(out.AnyOf, ForGemini(alt))
	}

	return out
}

// JSON renders s as indented JSON for providers that take the schema as
// prompt text.
func JSON(s *jsonschema.Schema) (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return string(b), nil
}

func number(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}

func enumString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
