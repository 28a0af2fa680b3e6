/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders evaluation results collected in a
// NamespacedObserver tree as markdown tables.
package report
