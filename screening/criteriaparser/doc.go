/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package criteriaparser drafts StudyCriteria from free-text trial
// descriptions with a language model. Output is restricted to the closed
// patient field set; criteria that cannot be represented are left out and
// mentioned in the description or a note. Drafts are validated like any other
// criteria file, but still need human review before screening.
package criteriaparser
