package mapping

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentsync/agentsync/internal/pathconv"
)

// ItemKind classifies a work item.
type ItemKind string

const (
	KindFile      ItemKind = "file"
	KindDirectory ItemKind = "directory"
)

// WorkItem is one concrete transfer derived from a mapping. Never persisted;
// recomputed on every pass against the live filesystem.
type WorkItem struct {
	Mapping    FileMapping
	LocalPath  string // local syntax, variables and home shortcut expanded
	RemotePath string // remote syntax, tilde left for the remote shell
	Kind       ItemKind
}

// Resolver expands mappings into work items using the local filesystem.
type Resolver struct {
	Local pathconv.Side
}

// Resolve turns the enabled mappings into work items. Per-mapping failures
// (unresolvable variable, malformed mapping) are collected, not fatal; the
// returned error order follows the mapping list order, which is also the
// order the session result reports them in.
//
// A plain file mapping yields exactly one item whether or not the file
// exists — existence is the transfer's problem. A directory mapping whose
// local directory is missing yields zero items and no error.
func (r *Resolver) Resolve(mappings []FileMapping) ([]WorkItem, []error) {
	var items []WorkItem
	var errs []error

	for _, m := range mappings {
		if !m.Enabled {
			continue
		}
		if err := m.Validate(r.Local); err != nil {
			errs = append(errs, err)
			continue
		}
		local, err := pathconv.Resolve(m.LocalPath, r.Local)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		switch {
		case m.IsPattern:
			items = append(items, r.resolvePattern(m, local)...)
		case m.IsDirectory:
			items = append(items, r.resolveDirectory(m, local)...)
		default:
			items = append(items, WorkItem{
				Mapping:    m,
				LocalPath:  local,
				RemotePath: m.RemotePath,
				Kind:       KindFile,
			})
		}
	}
	return items, errs
}

// resolveDirectory enumerates the local directory, one item per file entry,
// preserving the relative subpath on both sides. Enumeration order follows
// the filesystem (os.ReadDir sorts by name). Recursive mappings walk the
// whole tree; empty subdirectories surface as directory items so the remote
// structure matches.
func (r *Resolver) resolveDirectory(m FileMapping, localDir string) []WorkItem {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		// Missing local directory: nothing to do, by design not an error.
		return nil
	}

	var items []WorkItem
	for _, entry := range entries {
		local := filepath.Join(localDir, entry.Name())
		remote := joinRemote(m.RemotePath, entry.Name())
		if entry.IsDir() {
			if !m.Recursive {
				continue
			}
			sub := m
			sub.RemotePath = remote
			children := r.resolveDirectory(sub, local)
			if len(children) == 0 {
				items = append(items, WorkItem{Mapping: m, LocalPath: local, RemotePath: remote, Kind: KindDirectory})
				continue
			}
			items = append(items, children...)
			continue
		}
		items = append(items, WorkItem{Mapping: m, LocalPath: local, RemotePath: remote, Kind: KindFile})
	}
	return items
}

// resolvePattern evaluates the glob against the local side and substitutes
// each match's relative path into the remote template.
func (r *Resolver) resolvePattern(m FileMapping, localPattern string) []WorkItem {
	root := globRoot(localPattern)
	matches, err := filepath.Glob(localPattern)
	if err != nil {
		// Malformed pattern matches nothing.
		return nil
	}

	var items []WorkItem
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(root, match)
		if err != nil {
			rel = filepath.Base(match)
		}
		items = append(items, WorkItem{
			Mapping:    m,
			LocalPath:  match,
			RemotePath: joinRemote(remoteRoot(m.RemotePath), filepath.ToSlash(rel)),
			Kind:       KindFile,
		})
	}
	return items
}

// globRoot returns the longest directory prefix of pattern with no glob
// metacharacters.
func globRoot(pattern string) string {
	norm := filepath.ToSlash(pattern)
	if i := strings.IndexAny(norm, "*?["); i >= 0 {
		norm = norm[:i]
	}
	if j := strings.LastIndex(norm, "/"); j >= 0 {
		return filepath.FromSlash(norm[:j])
	}
	return "."
}

// remoteRoot strips the glob part from a remote template, leaving the
// directory matches are placed under.
func remoteRoot(template string) string {
	if i := strings.IndexAny(template, "*?["); i >= 0 {
		template = template[:i]
	}
	return strings.TrimSuffix(template, "/")
}

// joinRemote joins remote path segments with forward slashes, keeping a
// leading tilde intact.
func joinRemote(base, rel string) string {
	base = strings.TrimSuffix(base, "/")
	rel = strings.TrimPrefix(rel, "/")
	if base == "" {
		return rel
	}
	return base + "/" + rel
}
