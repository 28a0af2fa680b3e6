/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rulescreen

import (
	"strings"

	"chainguard.dev/trialscreen/screening/criteria"
)

// check reports whether criterion c holds for the patient. The second result
// is false when the field cannot be evaluated and must be treated as missing.
// Criteria are validated before check is called, so value shapes are trusted.
func check(p criteria.Patient, c criteria.Criterion) (holds, ok bool) {
	raw, present := p.Lookup(c.Field)
	if !present {
		return false, false
	}

	switch c.Field.Kind() {
	case criteria.KindNumeric:
		x, err := criteria.ParseNumber(raw)
		if err != nil {
			return false, false
		}
		// Validated during Screen.
		want, _ := criteria.ParseNumber(c.Value.Scalar())
		return compareNumber(c.Op, x, want), true
	case criteria.KindBoolean:
		got, err := criteria.ParseFlag(raw)
		if err != nil {
			return false, false
		}
		want, _ := criteria.ParseFlag(c.Value.Scalar())
		return got == want, true
	case criteria.KindText:
		return compareText(c.Op, raw, c.Value), true
	default:
		return false, false
	}
}

func compareNumber(op criteria.Operator, x, want float64) bool {
	switch op {
	case criteria.OpGreaterOrEqual:
		return x >= want
	case criteria.OpLessOrEqual:
		return x <= want
	case criteria.OpGreater:
		return x > want
	case criteria.OpLess:
		return x < want
	case criteria.OpEqual:
		return x == want
	case criteria.OpContainsAny, criteria.OpContainsAll, criteria.OpNotContainsAny:
		return false
	default:
		return false
	}
}

func compareText(op criteria.Operator, haystack string, v criteria.Value) bool {
	switch op {
	case criteria.OpEqual:
		return strings.EqualFold(haystack, strings.TrimSpace(v.Scalar()))
	case criteria.OpContainsAny:
		return containsAny(haystack, v.Items())
	case criteria.OpContainsAll:
		return containsAll(haystack, v.Items())
	case criteria.OpNotContainsAny:
		return !containsAny(haystack, v.Items())
	case criteria.OpGreaterOrEqual, criteria.OpLessOrEqual, criteria.OpGreater, criteria.OpLess:
		return false
	default:
		return false
	}
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func containsAll(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if !strings.Contains(h, strings.ToLower(n)) {
			return false
		}
	}
	return true
}
