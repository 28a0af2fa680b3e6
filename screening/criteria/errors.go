/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteria

import (
	"errors"
	"fmt"
)

// Section identifies which list of a study a criterion belongs to.
type Section string

const (
	SectionInclusion Section = "inclusion"
	SectionExclusion Section = "exclusion"
)

// MalformedCriterionError reports a criterion whose operator, field and
// value cannot be evaluated together.
type MalformedCriterionError struct {
	Section   Section
	Index     int
	Criterion Criterion
	Reason    string
}

func (e *MalformedCriterionError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("malformed criterion (%s): %s", e.Criterion, e.Reason)
	}
	return fmt.Sprintf("malformed %s criterion %d (%s): %s", e.Section, e.Index, e.Criterion, e.Reason)
}

// IsMalformedCriterion reports whether err wraps a *MalformedCriterionError.
func IsMalformedCriterion(err error) bool {
	var mce *MalformedCriterionError
	return errors.As(err, &mce)
}
