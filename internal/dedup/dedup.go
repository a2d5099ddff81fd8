// Package dedup plans the removal of redundant entities after an import.
// It is strictly scoped to one import batch: entities the user already had
// are never deleted, even when duplicated among themselves.
package dedup

import (
	"sort"

	"github.com/agentsync/agentsync/internal/fingerprint"
)

// Resolution is the user's answer at the duplicate confirmation gate.
type Resolution int

const (
	// KeepAll imports everything, duplicates included.
	KeepAll Resolution = iota
	// RemoveDuplicates deletes the redundant new entities per Plan.
	RemoveDuplicates
	// Cancel aborts the import entirely.
	Cancel
)

func (r Resolution) String() string {
	switch r {
	case KeepAll:
		return "keep-all"
	case RemoveDuplicates:
		return "remove-duplicates"
	case Cancel:
		return "cancel"
	}
	return "unknown"
}

// Plan returns the entities to delete. The pool is grouped by fingerprint;
// in every group the oldest entity survives and the remaining members that
// belong to the new batch are marked for deletion. A new entity that is the
// oldest in its group survives and its newer siblings go. Entities outside
// newIDs are never returned.
func Plan(all []fingerprint.Entity, newIDs map[string]bool) []fingerprint.Entity {
	var toDelete []fingerprint.Entity

	for _, group := range fingerprint.FindDuplicates(all) {
		sorted := append([]fingerprint.Entity(nil), group...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
				return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
			}
			return sorted[i].ID < sorted[j].ID
		})
		for _, e := range sorted[1:] {
			if newIDs[e.ID] {
				toDelete = append(toDelete, e)
			}
		}
	}

	// Map iteration order is not stable; sort for deterministic output.
	sort.Slice(toDelete, func(i, j int) bool { return toDelete[i].ID < toDelete[j].ID })
	return toDelete
}

// Precheck runs duplicate detection over the about-to-be-imported set merged
// with the pre-existing pool. Groups with no member from the incoming batch
// are dropped: duplicates the user already chose to keep must not re-trigger
// the gate on an unrelated import. A non-empty result means the caller must
// offer the user an explicit choice before importing.
func Precheck(existing, incoming []fingerprint.Entity) map[string][]fingerprint.Entity {
	pool := append(append([]fingerprint.Entity(nil), existing...), incoming...)
	incomingIDs := make(map[string]bool, len(incoming))
	for _, e := range incoming {
		incomingIDs[e.ID] = true
	}

	groups := fingerprint.FindDuplicates(pool)
	for fp, group := range groups {
		touched := false
		for _, e := range group {
			if incomingIDs[e.ID] {
				touched = true
				break
			}
		}
		if !touched {
			delete(groups, fp)
		}
	}
	return groups
}
