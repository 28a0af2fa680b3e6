/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package verifier asks a language model whether a rule-based screening
// decision is consistent with the study criteria, the patient's fields and the
// retrieved evidence. It implements matcher.Verifier.
package verifier
