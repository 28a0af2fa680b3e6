/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package matcher sequences one screening run: rule screen, evidence
retrieval scoped to the patient, verification of the rule decision and
reconciliation into a MatchResult.

	m, err := matcher.New(store, verifier, matcher.WithTopK(3))
	if err != nil {
		return err
	}
	result, err := m.Run(ctx, patient, study)

Run never retries. Retries belong to the collaborators (the LLM executors
retry rate-limited calls internally). Any collaborator error aborts the run
for that pair; use Batch to screen many patients with per-item isolation.
*/
package matcher
