/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"strings"

	"chainguard.dev/trialscreen/screening/criteria"
)

const (
	// MaxQueryTerms bounds the number of keywords and phrases in a query.
	MaxQueryTerms = 25
	// QuerySeparator joins query terms.
	QuerySeparator = " ; "
)

// BuildQuery derives a retrieval query from the criteria. List values of the
// contains_* operators contribute each element as a keyword; every other
// criterion contributes a "field op value" phrase. Inclusions come first.
func BuildQuery(sc *criteria.StudyCriteria) string {
	var terms []string
	for _, block := range [][]criteria.Criterion{sc.Inclusion, sc.Exclusion} {
		for _, c := range block {
			if c.Op.IsList() && c.Value.IsList() {
				terms = append(terms, c.Value.Items()...)
				continue
			}
			terms = append(terms, c.String())
		}
	}
	if len(terms) > MaxQueryTerms {
		terms = terms[:MaxQueryTerms]
	}
	return strings.Join(terms, QuerySeparator)
}
