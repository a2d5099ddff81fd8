package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentsync/agentsync/internal/dedup"
	"github.com/agentsync/agentsync/internal/fingerprint"
	"github.com/agentsync/agentsync/internal/mapping"
	"github.com/agentsync/agentsync/internal/servers"
)

// MCPImportPlan is a prepared import: scanned servers, detected secrets, and
// the duplicate pre-check against the existing pool. Nothing is persisted
// until Apply runs with the user's resolution.
type MCPImportPlan struct {
	SourcePath string
	Module     mapping.Module
	New        []servers.Server
	Existing   []servers.Server
	Secrets    []servers.DetectedSecret
	Duplicates map[string][]fingerprint.Entity
}

// MCPImportResult summarizes what Apply did.
type MCPImportResult struct {
	Imported        []string
	Removed         []string // names deleted by deduplication
	SecretsReplaced int
	Cancelled       bool
}

// PrepareMCPImport scans a project .mcp.json, builds the would-be server
// entries, and runs the duplicate pre-check. The caller must gate on
// Duplicates being non-empty before applying.
func PrepareMCPImport(store *servers.Store, sourcePath string, module mapping.Module) (*MCPImportPlan, error) {
	configs, err := servers.ReadMCPConfigFile(sourcePath)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no MCP servers found in %s", sourcePath)
	}

	existing, err := store.Load()
	if err != nil {
		return nil, err
	}

	configs = servers.NormalizeHomePaths(configs)

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	plan := &MCPImportPlan{
		SourcePath: sourcePath,
		Module:     module,
		Existing:   existing,
		Secrets:    servers.DetectSecrets(configs),
	}
	for _, name := range names {
		plan.New = append(plan.New, servers.New(name, module, configs[name]))
	}

	plan.Duplicates = dedup.Precheck(entitiesOf(existing), entitiesOf(plan.New))
	return plan, nil
}

// ReplaceSecrets rewrites the planned servers' secret env values with ${VAR}
// references. Returns how many values were replaced.
func (p *MCPImportPlan) ReplaceSecrets() int {
	if len(p.Secrets) == 0 {
		return 0
	}
	configs := make(map[string]json.RawMessage, len(p.New))
	for _, srv := range p.New {
		configs[srv.Name] = srv.Config
	}
	replaced := servers.ReplaceSecrets(configs, p.Secrets)
	for i := range p.New {
		p.New[i].Config = replaced[p.New[i].Name]
	}
	return len(p.Secrets)
}

// ApplyMCPImport persists the plan under the user's resolution. KeepAll
// stores every new server, duplicates included. RemoveDuplicates stores them
// and then deletes the redundant new entries, oldest fingerprint-sibling
// surviving. Cancel stores nothing.
func ApplyMCPImport(store *servers.Store, plan *MCPImportPlan, res dedup.Resolution) (*MCPImportResult, error) {
	if res == dedup.Cancel {
		return &MCPImportResult{Cancelled: true}, nil
	}

	if err := store.Add(plan.New...); err != nil {
		return nil, err
	}

	result := &MCPImportResult{}
	for _, srv := range plan.New {
		result.Imported = append(result.Imported, srv.Name)
	}
	sort.Strings(result.Imported)

	if res == dedup.RemoveDuplicates {
		newIDs := make(map[string]bool, len(plan.New))
		for _, srv := range plan.New {
			newIDs[srv.ID] = true
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

// entitiesOf projects server entries into the duplicate-detection shape.
func entitiesOf[S interface{ Entity() fingerprint.Entity }](list []S) []fingerprint.Entity {
	out := make([]fingerprint.Entity, 0, len(list))
	for _, item := range list {
		out = append(out, item.Entity())
	}
	return out
}
