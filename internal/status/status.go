// Package status persists the last sync outcome. It is a thin store the
// sync engine folds its session result into; the full per-item detail lives
// only in the session result itself.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// State is the last recorded sync status.
type State string

const (
	// StateNever means no pass has run yet.
	StateNever State = "never"
	// StateSuccess means the last pass finished with an empty error list.
	StateSuccess State = "success"
	// StateError means the last pass accumulated at least one error.
	StateError State = "error"
)

// Status holds the persisted last-sync fields.
type Status struct {
	LastSyncTime   time.Time `yaml:"last_sync_time,omitempty"`
	LastSyncStatus State     `yaml:"last_sync_status"`
	LastSyncError  string    `yaml:"last_sync_error,omitempty"`
	SyncedCount    int       `yaml:"synced_count,omitempty"`
	SkippedCount   int       `yaml:"skipped_count,omitempty"`
	ErrorCount     int       `yaml:"error_count,omitempty"`
}

// Store reads and writes status.yaml.
type Store struct {
	Path string
}

// NewStore returns a store over the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the current status. A missing file reports StateNever.
func (s *Store) Load() (Status, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Status{LastSyncStatus: StateNever}, nil
		}
		return Status{}, fmt.Errorf("reading status: %w", err)
	}
	var st Status
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Status{}, fmt.Errorf("parsing status: %w", err)
	}
	if st.LastSyncStatus == "" {
		st.LastSyncStatus = StateNever
	}
	return st, nil
}

// Record folds a finished pass into the store.
func (s *Store) Record(at time.Time, synced, skipped int, errs []string) error {
	st := Status{
		LastSyncTime:   at,
		LastSyncStatus: StateSuccess,
		SyncedCount:    synced,
		SkippedCount:   skipped,
		ErrorCount:     len(errs),
	}
	if len(errs) > 0 {
		st.LastSyncStatus = StateError
		st.LastSyncError = errs[0]
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling status: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating sync dir: %w", err)
	}
	return os.WriteFile(s.Path, data, 0644)
}
