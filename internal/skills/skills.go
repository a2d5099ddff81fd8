// Package skills discovers and imports skill definitions: directories
// carrying a SKILL.md manifest, or loose command .md files. Imported skills
// live in the managed skills tree and are mirrored to the remote environment
// by the sync engine's skills phase.
package skills

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentsync/agentsync/internal/fingerprint"
	"github.com/agentsync/agentsync/internal/mapping"
)

// Skill is one imported skill entry.
type Skill struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Module      mapping.Module `json:"module"`
	CreatedAt   time.Time      `json:"createdAt"`
	Path        string         `json:"path"`        // location inside the managed tree
	Fingerprint string         `json:"fingerprint"` // manifest content hash
}

// Entity projects the skill into the duplicate-detection shape.
func (s Skill) Entity() fingerprint.Entity {
	return fingerprint.Entity{
		ID:          s.ID,
		Name:        s.Name,
		Fingerprint: s.Fingerprint,
		CreatedAt:   s.CreatedAt,
	}
}

// IsDir reports whether the skill is a SKILL.md directory rather than a
// single command file.
func (s Skill) IsDir() bool {
	return !strings.HasSuffix(s.Path, ".md")
}

// FileRef is one file belonging to a skill, as an absolute local path plus
// its path relative to the skill root.
type FileRef struct {
	Local string
	Rel   string
}

// Files lists the skill's files. A command skill is its single file; a
// directory skill is every file under its tree. A skill whose local copy
// vanished yields its root so the sync pass reports it as skipped.
func (s Skill) Files() []FileRef {
	if !s.IsDir() {
		return []FileRef{{Local: s.Path, Rel: ""}}
	}
	var refs []FileRef
	err := filepath.WalkDir(s.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(s.Path, path)
		if relErr != nil {
			return relErr
		}
		refs = append(refs, FileRef{Local: path, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil || len(refs) == 0 {
		return []FileRef{{Local: filepath.Join(s.Path, "SKILL.md"), Rel: "SKILL.md"}}
	}
	return refs
}

// Discovered is a skill found by Scan, not yet imported.
type Discovered struct {
	Name         string
	SourcePath   string // skill directory, or the .md file itself
	ManifestPath string // SKILL.md for directories, SourcePath for files
	IsDir        bool
}

// Fingerprint hashes the discovered skill's manifest.
func (d Discovered) Fingerprint() (string, error) {
	data, err := os.ReadFile(d.ManifestPath)
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}
	return fingerprint.Skill(data), nil
}

// Scan finds importable skills under dir: immediate subdirectories with a
// SKILL.md, and loose .md files treated as single-file commands.
func Scan(dir string) ([]Discovered, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var found []Discovered
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			manifest := filepath.Join(full, "SKILL.md")
			if _, err := os.Stat(manifest); err == nil {
				found = append(found, Discovered{
					Name:         entry.Name(),
					SourcePath:   full,
					ManifestPath: manifest,
					IsDir:        true,
				})
			}
			continue
		}
		if strings.HasSuffix(entry.Name(), ".md") {
			found = append(found, Discovered{
				Name:         strings.TrimSuffix(entry.Name(), ".md"),
				SourcePath:   full,
				ManifestPath: full,
			})
		}
	}
	return found, nil
}

// Import copies a discovered skill into the managed tree rooted at destDir
// and returns the resulting entry.
func Import(d Discovered, module mapping.Module, destDir string) (Skill, error) {
	fp, err := d.Fingerprint()
	if err != nil {
		return Skill{}, err
	}

	var target string
	if d.IsDir {
		target = filepath.Join(destDir, d.Name)
		if err := copyTree(d.SourcePath, target); err != nil {
			return Skill{}, fmt.Errorf("importing skill %s: %w", d.Name, err)
		}
	} else {
		target = filepath.Join(destDir, d.Name+".md")
		if err := copyFile(d.SourcePath, target); err != nil {
			return Skill{}, fmt.Errorf("importing command %s: %w", d.Name, err)
		}
	}

	return Skill{
		ID:          uuid.NewString(),
		Name:        d.Name,
		Module:      module,
		CreatedAt:   time.Now().UTC(),
		Path:        target,
		Fingerprint: fp,
	}, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}
