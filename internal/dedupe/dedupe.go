// Package dedupe reconciles freshly extracted records against the identities
// already committed to the corpus.
package dedupe

import (
	"fmt"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/normalize"
)

// IdentitySet is the duplicate lookup consulted during reconciliation
type IdentitySet interface {
	Contains(id model.Identity) bool
	Add(id model.Identity) error
}

// Result is the outcome of reconciling one batch
type Result struct {
	Accepted   []model.Record
	Duplicates int
}

// Reconcile filters batch down to the records whose identity is not yet in
// set. Accepted identities are added to set immediately, so a later record in
// the same batch that matches an earlier one counts as a duplicate. Batch
// order is preserved and records are never modified.
func Reconcile(set IdentitySet, batch []model.Record) (Result, error) {
	var res Result
	for _, rec := range batch {
		id := normalize.RecordIdentity(rec)
		if set.Contains(id) {
			res.Duplicates++
			continue
		}
		if err := set.Add(id); err != nil {
			return res, fmt.Errorf("record identity %q: %w", rec.Question, err)
		}
		res.Accepted = append(res.Accepted, rec)
	}
	return res, nil
}
