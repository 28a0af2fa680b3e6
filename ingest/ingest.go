/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ingest loads patient cohorts from CSV and prepares them for
// screening and indexing.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"chainguard.dev/trialscreen/screening/criteria"
)

const (
	// ColumnInsulinUserBool is the derived truthiness of insulin_user.
	ColumnInsulinUserBool = "insulin_user_bool"
	// ColumnEGFRNum is the derived numeric eGFR, blank when unparseable.
	ColumnEGFRNum = "egfr_num"
)

// RequiredColumns must be present in every cohort file.
var RequiredColumns = []string{
	criteria.KeyPatientID,
	string(criteria.FieldAge),
	string(criteria.FieldGender),
	string(criteria.FieldEGFR),
	string(criteria.FieldInsulinUser),
	string(criteria.FieldCurrentMedications),
	string(criteria.FieldComorbidities),
}

var derivedColumns = []string{ColumnInsulinUserBool, ColumnEGFRNum, criteria.KeyPatientCard}

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowError locates a problem in the input. Row 1 is the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// ReadPatients parses a cohort CSV. Values are trimmed, derived columns are
// recomputed and a patient card is built unless the file already carries one.
// Every row needs a unique, non-blank patient id.
func ReadPatients(r io.Reader) ([]criteria.Patient, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Columns: slices.Clone(RequiredColumns)}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !slices.Contains(header, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var patients []criteria.Patient
	seen := map[string]int{}
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Row: row, Err: err}
		}

		p := make(criteria.Patient, len(header)+len(derivedColumns))
		for i, name := range header {
			if i < len(rec) {
				p[name] = strings.TrimSpace(rec[i])
			}
		}
		id := p.ID()
		if id == "" {
			return nil, &RowError{Row: row, Err: errors.New("patient_id is blank")}
		}
		if prev, dup := seen[id]; dup {
			return nil, &RowError{Row: row, Err: fmt.Errorf("duplicate patient_id %q (first seen on row %d)", id, prev)}
		}
		seen[id] = row

		Prepare(p)
		patients = append(patients, p)
	}
	return patients, nil
}

// ReadFile is ReadPatients over the file at path.
func ReadFile(path string) ([]criteria.Patient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	patients, err := ReadPatients(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return patients, nil
}

// Prepare fills the derived columns of p in place.
func Prepare(p criteria.Patient) {
	p[ColumnInsulinUserBool] = strconv.FormatBool(criteria.IsTruthy(p[string(criteria.FieldInsulinUser)]))
	p[ColumnEGFRNum] = ""
	if v, err := criteria.ParseNumber(p[string(criteria.FieldEGFR)]); err == nil {
		p[ColumnEGFRNum] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if strings.TrimSpace(p[criteria.KeyPatientCard]) == "" {
		p[criteria.KeyPatientCard] = Card(p)
	}
}

// Card renders the retrieval text for a patient from the required columns.
func Card(p criteria.Patient) string {
	return p.RenderCard()
}

// WritePatients writes patients as CSV: the required columns, any other
// input columns in sorted order, then the derived columns.
func WritePatients(w io.Writer, patients []criteria.Patient) error {
	extra := map[string]struct{}{}
	for _, p := range patients {
		for k := range p {
			if !slices.Contains(RequiredColumns, k) && !slices.Contains(derivedColumns, k) {
				extra[k] = struct{}{}
			}
		}
	}
	header := slices.Concat(RequiredColumns, sortedKeys(extra), derivedColumns)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, p := range patients {
		for i, c := range header {
			row[i] = p[c]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
