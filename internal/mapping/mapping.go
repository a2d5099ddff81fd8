// Package mapping holds the declarative local/remote path mappings and
// expands them into concrete file-level work items at sync time.
package mapping

import (
	"fmt"

	"github.com/agentsync/agentsync/internal/pathconv"
)

// Module tags which tool's config a mapping belongs to. It is a closed set;
// unknown tags are rejected at parse time rather than silently mis-filtered
// later.
type Module string

const (
	ModuleOpenCode Module = "opencode"
	ModuleClaude   Module = "claude"
	ModuleCodex    Module = "codex"
)

// Modules lists every valid module tag.
func Modules() []Module {
	return []Module{ModuleOpenCode, ModuleClaude, ModuleCodex}
}

// ParseModule validates a module tag.
func ParseModule(s string) (Module, error) {
	switch Module(s) {
	case ModuleOpenCode, ModuleClaude, ModuleCodex:
		return Module(s), nil
	}
	return "", fmt.Errorf("unknown module %q (valid: opencode, claude, codex)", s)
}

// FileMapping pairs a local path with its remote counterpart. Read-only
// during a sync pass; disabled mappings are excluded from resolution
// entirely.
type FileMapping struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Module      Module `yaml:"module"`
	LocalPath   string `yaml:"local_path"`
	RemotePath  string `yaml:"remote_path"`
	Enabled     bool   `yaml:"enabled"`
	IsPattern   bool   `yaml:"is_pattern,omitempty"`
	IsDirectory bool   `yaml:"is_directory,omitempty"`
	Recursive   bool   `yaml:"recursive,omitempty"`
}

// ValidationError reports a malformed mapping. Per-item, non-fatal.
type ValidationError struct {
	Mapping string // mapping name or id
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mapping %q: %s", e.Mapping, e.Reason)
}

// Validate checks the mapping after path resolution against the local side.
// Both paths must be non-empty once variables and home shortcuts resolve.
func (m FileMapping) Validate(local pathconv.Side) error {
	if _, err := ParseModule(string(m.Module)); err != nil {
		return &ValidationError{Mapping: m.Name, Reason: err.Error()}
	}
	localPath, err := pathconv.Resolve(m.LocalPath, local)
	if err != nil {
		return err
	}
	if localPath == "" {
		return &ValidationError{Mapping: m.Name, Reason: "empty local path"}
	}
	if m.RemotePath == "" {
		return &ValidationError{Mapping: m.Name, Reason: "empty remote path"}
	}
	return nil
}
