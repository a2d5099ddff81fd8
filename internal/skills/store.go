package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the imported skill list as skills.json.
type Store struct {
	Path string
}

// NewStore returns a store over the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

type storeDoc struct {
	Version int     `json:"version"`
	Skills  []Skill `json:"skills"`
}

// Load reads all skills. A missing file is an empty list.
func (s *Store) Load() ([]Skill, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading skills: %w", err)
	}
	var doc storeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing skills: %w", err)
	}
	return doc.Skills, nil
}

// Save writes the full skill list.
func (s *Store) Save(list []Skill) error {
	data, err := json.MarshalIndent(storeDoc{Version: 1, Skills: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling skills: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating sync dir: %w", err)
	}
	return os.WriteFile(s.Path, append(data, '\n'), 0644)
}

// Add appends skills to the store.
func (s *Store) Add(add ...Skill) error {
	list, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(list, add...))
}

// Delete removes skills by id and their copies in the managed tree.
func (s *Store) Delete(ids map[string]bool) error {
	list, err := s.Load()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, sk := range list {
		if ids[sk.ID] {
			_ = os.RemoveAll(sk.Path)
			continue
		}
		kept = append(kept, sk)
	}
	return s.Save(kept)
}
