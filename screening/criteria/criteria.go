/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownStudyID is reported for criteria that carry no study identifier.
const UnknownStudyID = "UNKNOWN"

// DefaultRequiredEvidence is used when a study does not name the fields it
// considers evidentially required.
var DefaultRequiredEvidence = []Field{FieldComorbidities, FieldCurrentMedications}

// Criterion is a single comparison test against one patient field.
type Criterion struct {
	Field Field    `json:"field" yaml:"field" jsonschema:"required"`
	Op    Operator `json:"op" yaml:"op" jsonschema:"required"`
	Value Value    `json:"value" yaml:"value" jsonschema:"required"`
	Note  string   `json:"note,omitempty" yaml:"note,omitempty" jsonschema:"description=Short explanation of mapping or assumption"`
}

// String renders the criterion as "field op value".
func (c Criterion) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Value)
}

// Validate checks that the operator, field and value shape agree.
func (c Criterion) Validate() error {
	fail := func(format string, args ...any) error {
		return &MalformedCriterionError{Criterion: c, Reason: fmt.Sprintf(format, args...)}
	}

	if _, err := ParseField(string(c.Field)); err != nil {
		return fail("%v", err)
	}
	if _, err := ParseOperator(string(c.Op)); err != nil {
		return fail("%v", err)
	}
	if c.Value.IsZero() {
		return fail("value is required")
	}
	if c.Op.IsList() != c.Value.IsList() {
		if c.Op.IsList() {
			return fail("operator %s requires a list value", c.Op)
		}
		return fail("operator %s requires a scalar value", c.Op)
	}

	kind := c.Field.Kind()
	switch {
	case c.Op.IsList():
		if kind != KindText {
			return fail("operator %s cannot be applied to %s field %s", c.Op, kind, c.Field)
		}
		items := c.Value.Items()
		if len(items) == 0 {
			return fail("operator %s requires at least one item", c.Op)
		}
		for i, item := range items {
			if strings.TrimSpace(item) == "" {
				return fail("item %d is empty", i)
			}
		}
	case c.Op.IsOrdering():
		if kind != KindNumeric {
			return fail("operator %s cannot be applied to %s field %s", c.Op, kind, c.Field)
		}
		if _, err := ParseNumber(c.Value.Scalar()); err != nil {
			return fail("value %q is not a number", c.Value.Scalar())
		}
	case c.Op == OpEqual:
		switch kind {
		case KindNumeric:
			if _, err := ParseNumber(c.Value.Scalar()); err != nil {
				return fail("value %q is not a number", c.Value.Scalar())
			}
		case KindBoolean:
			if _, err := ParseFlag(c.Value.Scalar()); err != nil {
				return fail("value %q is not a boolean", c.Value.Scalar())
			}
		case KindText:
		}
	}
	return nil
}

// StudyCriteria describes one trial's inclusion and exclusion criteria.
type StudyCriteria struct {
	StudyID          string      `json:"study_id" yaml:"study_id" jsonschema:"required"`
	Title            string      `json:"title" yaml:"title" jsonschema:"required"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	Inclusion        []Criterion `json:"inclusion" yaml:"inclusion"`
	Exclusion        []Criterion `json:"exclusion" yaml:"exclusion"`
	RequiredEvidence []Field     `json:"required_evidence,omitempty" yaml:"required_evidence,omitempty"`
}

// ID returns the study identifier, or UnknownStudyID when it is blank.
func (s *StudyCriteria) ID() string {
	if id := strings.TrimSpace(s.StudyID); id != "" {
		return id
	}
	return UnknownStudyID
}

// EvidenceFields returns the fields the study considers evidentially required.
func (s *StudyCriteria) EvidenceFields() []Field {
	if len(s.RequiredEvidence) == 0 {
		return append([]Field{}, DefaultRequiredEvidence...)
	}
	return append([]Field{}, s.RequiredEvidence...)
}

// Validate checks every criterion and the required evidence list.
func (s *StudyCriteria) Validate() error {
	if s == nil {
		return errors.New("study criteria is nil")
	}
	var errs []error
	check := func(section Section, list []Criterion) {
		for i, c := range list {
			if err := c.Validate(); err != nil {
				var mce *MalformedCriterionError
				if errors.As(err, &mce) {
					mce.Section = section
					mce.Index = i
				}
				errs = append(errs, err)
			}
		}
	}
	check(SectionExclusion, s.Exclusion)
	check(SectionInclusion, s.Inclusion)
	for _, f := range s.RequiredEvidence {
		if _, err := ParseField(string(f)); err != nil {
			errs = append(errs, fmt.Errorf("required_evidence: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Load decodes study criteria from r and validates them. JSON input is
// detected by a leading '{'; anything else is decoded as YAML.
func Load(r io.Reader) (*StudyCriteria, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading criteria: %w", err)
	}

	var sc StudyCriteria
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("decoding criteria JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding criteria YAML: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadFile reads and validates study criteria from path.
func LoadFile(path string) (*StudyCriteria, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sc, nil
}
