/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

import (
	"context"
	"fmt"

	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/chainguard-dev/clog"
)

// Indexer stores documents for later retrieval.
type Indexer interface {
	Upsert(ctx context.Context, docs []Document) error
}

// PatientDocument is the single indexed document for a patient: its card,
// tagged with the patient id so retrieval can be scoped to it.
func PatientDocument(p criteria.Patient) Document {
	id := p.ID()
	return Document{
		ID:       id,
		Document: p.Card(),
		Metadata: map[string]string{criteria.KeyPatientID: id},
	}
}

// Upsert indexes one document per patient in batches. Patients without an id
// are rejected before anything is written.
func Upsert(ctx context.Context, idx Indexer, patients []criteria.Patient) error {
	docs := make([]Document, 0, len(patients))
	for i, p := range patients {
		if p.ID() == "" {
			return fmt.Errorf("patient %d has no %s", i, criteria.KeyPatientID)
		}
		docs = append(docs, PatientDocument(p))
	}
	for start := 0; start < len(docs); start += maxBatch {
		batch := docs[start:min(start+maxBatch, len(docs))]
		if err := idx.Upsert(ctx, batch); err != nil {
			return fmt.Errorf("indexing patients %d-%d: %w", start, start+len(batch)-1, err)
		}
	}
	clog.FromContext(ctx).With("patients", len(docs)).Info("Indexed patient documents")
	return nil
}
