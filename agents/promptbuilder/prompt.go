/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// stringLiteral only accepts untyped string constants from callers outside
// this package, which keeps request data out of templates.
type stringLiteral string

// Prompt is an immutable template plus the values bound to it so far.
type Prompt struct {
	segments []segment
	bindings map[string]binding
}

// NewPrompt parses a template literal.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	segments, err := tokenize(string(template))
	if err != nil {
		return nil, err
	}
	bindings := make(map[string]binding)
	for _, s := range segments {
		if s.placeholder {
			bindings[s.text] = unbound{}
		}
	}
	return &Prompt{segments: segments, bindings: bindings}, nil
}

// Placeholders returns the sorted placeholder names in the template.
func (p *Prompt) Placeholders() []string {
	return slices.Sorted(maps.Keys(p.bindings))
}

// Unbound returns the sorted placeholder names that still need a value.
func (p *Prompt) Unbound() []string {
	var names []string
	for name, b := range p.bindings {
		if _, ok := b.(unbound); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// BindStringLiteral binds developer-authored text.
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.with(name, literal(value))
}

// BindJSON binds data marshalled as indented JSON.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	return p.with(name, jsonValue{data})
}

// BindYAML binds data marshalled as YAML.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	return p.with(name, yamlValue{data})
}

// BindXML binds data marshalled as indented XML. Use a struct with a
// ",chardata" field to wrap free text so markup in it is escaped.
func (p *Prompt) BindXML(name string, data any) (*Prompt, error) {
	return p.with(name, xmlValue{data})
}

// BindList binds untrusted strings as a numbered list, one item per line.
// Newlines inside an item are flattened so an item cannot forge new entries.
func (p *Prompt) BindList(name string, items []string) (*Prompt, error) {
	return p.with(name, listValue(slices.Clone(items)))
}

// Build renders the prompt. It fails when a placeholder is unbound or a
// value cannot be encoded.
func (p *Prompt) Build() (string, error) {
	if missing := p.Unbound(); len(missing) > 0 {
		return "", fmt.Errorf("unbound placeholders: %s", strings.Join(missing, ", "))
	}

	rendered := make(map[string]string, len(p.bindings))
	for name, b := range p.bindings {
		v, err := b.render()
		if err != nil {
			return "", fmt.Errorf("rendering %q: %w", name, err)
		}
		rendered[name] = v
	}

	var out strings.Builder
	for _, s := range p.segments {
		if s.placeholder {
			out.WriteString(rendered[s.text])
		} else {
			out.WriteString(s.text)
		}
	}
	return out.String(), nil
}

func (p *Prompt) with(name string, b binding) (*Prompt, error) {
	current, ok := p.bindings[name]
	if !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if _, ok := current.(unbound); !ok {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Prompt{segments: p.segments, bindings: maps.Clone(p.bindings)}
	next.bindings[name] = b
	return next, nil
}
