/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type binding interface {
	render() (string, error)
}

type unbound struct{}

func (unbound) render() (string, error) { return "", fmt.Errorf("unbound placeholder") }

type literal string

func (l literal) render() (string, error) { return string(l), nil }

type jsonValue struct{ data any }

func (j jsonValue) render() (string, error) {
	b, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(b), nil
}

type yamlValue struct{ data any }

func (y yamlValue) render() (string, error) {
	b, err := yaml.Marshal(y.data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

type xmlValue struct{ data any }

func (x xmlValue) render() (string, error) {
	b, err := xml.MarshalIndent(x.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return string(b), nil
}

type listValue []string

func (l listValue) render() (string, error) {
	if len(l) == 0 {
		return "(none)", nil
	}
	var b strings.Builder
	for i, item := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		item = strings.Join(strings.Fields(item), " ")
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String(), nil
}
