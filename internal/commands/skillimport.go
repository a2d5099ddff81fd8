package commands

import (
	"fmt"
	"sort"

	"github.com/agentsync/agentsync/internal/dedup"
	"github.com/agentsync/agentsync/internal/fingerprint"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/skills"
)

// SkillImportPlan is a prepared skill import with its duplicate pre-check.
type SkillImportPlan struct {
	SourceDir  string
	Module     mapping.Module
	Found      []skills.Discovered
	Existing   []skills.Skill
	Duplicates map[string][]fingerprint.Entity

	fingerprints map[string]string // discovered name -> fingerprint
}

// SkillImportResult summarizes an applied skill import.
type SkillImportResult struct {
	Imported  []string
	Removed   []string
	Cancelled bool
}

// PrepareSkillImport scans a directory for skills and pre-checks the batch
// against the already-imported set.
func PrepareSkillImport(store *skills.Store, sourceDir string, module mapping.Module) (*SkillImportPlan, error) {
	found, err := skills.Scan(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no skills found in %s", sourceDir)
	}

	existing, err := store.Load()
	if err != nil {
		return nil, err
	}

	plan := &SkillImportPlan{
		SourceDir:    sourceDir,
		Module:       module,
		Found:        found,
		Existing:     existing,
		fingerprints: make(map[string]string, len(found)),
	}

	var incoming []fingerprint.Entity
	for _, d := range found {
		fp, err := d.Fingerprint()
		if err != nil {
			return nil, err
		}
		plan.fingerprints[d.Name] = fp
		incoming = append(incoming, fingerprint.Entity{ID: "pending:" + d.Name, Name: d.Name, Fingerprint: fp})
	}
	plan.Duplicates = dedup.Precheck(entitiesOf(existing), incoming)
	return plan, nil
}

// ApplySkillImport copies the discovered skills into the managed tree under
// the user's resolution, then deduplicates the batch when asked to.
func ApplySkillImport(store *skills.Store, plan *SkillImportPlan, destDir string, res dedup.Resolution) (*SkillImportResult, error) {
	if res == dedup.Cancel {
		return &SkillImportResult{Cancelled: true}, nil
	}

	result := &SkillImportResult{}
	var imported []skills.Skill
	for _, d := range plan.Found {
		sk, err := skills.Import(d, plan.Module, destDir)
		if err != nil {
			return nil, err
		}
		imported = append(imported, sk)
		result.Imported = append(result.Imported, sk.Name)
	}
	if err := store.Add(imported...); err != nil {
		return nil, err
	}
	sort.Strings(result.Imported)

	if res == dedup.RemoveDuplicates {
		newIDs := make(map[string]bool, len(imported))
		for _, sk := range imported {
			newIDs[sk.ID] = true
		}
		all, err := store.Load()
		if err != nil {
			return nil, err
		}
		toDelete := dedup.Plan(entitiesOf(all), newIDs)
		if len(toDelete) > 0 {
			ids := make(map[string]bool, len(toDelete))
			for _, e := range toDelete {
				ids[e.ID] = true
				result.Removed = append(result.Removed, e.Name)
			}
			if err := store.Delete(ids); err != nil {
				return nil, err
			}
			sort.Strings(result.Removed)
		}
	}

	return result, nil
}
