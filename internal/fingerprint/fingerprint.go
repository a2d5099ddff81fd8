// Package fingerprint derives stable identity strings for syncable entities.
// Two entities a user would consider "the same underlying thing" fingerprint
// identically regardless of display name, id, or declaration order, and the
// result is stable across process restarts.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Entity is the minimal shape the duplicate machinery works over.
type Entity struct {
	ID          string
	Name        string
	Fingerprint string
	CreatedAt   time.Time
}

// serverShape is the subset of an MCP server config that carries identity.
// Everything else (name, env, headers) is surface detail.
type serverShape struct {
	Type      string   `json:"type"`
	Transport string   `json:"transport"`
	Command   string   `json:"command"`
	Args      []string `json:"args"`
	URL       string   `json:"url"`
}

// Server computes the fingerprint of an MCP server config document.
//
// Process-backed servers hash to "stdio:<command> <sorted args>"; remote
// servers hash to "<type>:<url>". Headers and auth are intentionally not part
// of an HTTP fingerprint: two declarations of the same endpoint are treated
// as the same server even when credentials differ.
func Server(raw json.RawMessage) string {
	var cfg serverShape
	if err := json.Unmarshal(raw, &cfg); err != nil {
		// Unparseable config: fall back to a content hash so it still
		// groups with byte-identical declarations.
		return "raw:" + sum(raw)
	}

	kind := cfg.Type
	if kind == "" {
		kind = cfg.Transport
	}
	if kind == "" {
		if cfg.URL != "" {
			kind = "http"
		} else {
			kind = "stdio"
		}
	}
	kind = strings.ToLower(kind)

	if kind == "stdio" {
		args := append([]string(nil), cfg.Args...)
		sort.Strings(args)
		parts := append([]string{cfg.Command}, args...)
		return "stdio:" + strings.Join(parts, " ")
	}
	return kind + ":" + strings.TrimRight(cfg.URL, "/")
}

// Content computes the fingerprint of raw file bytes.
func Content(data []byte) string {
	return "file:" + sum(data)
}

// Skill computes the fingerprint of a skill from its manifest content.
func Skill(manifest []byte) string {
	return "skill:" + sum(manifest)
}

func sum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// FindDuplicates groups entities by fingerprint. Only fingerprints shared by
// more than one entity appear in the result; group members keep input order.
func FindDuplicates(entities []Entity) map[string][]Entity {
	byFP := make(map[string][]Entity)
	for _, e := range entities {
		byFP[e.Fingerprint] = append(byFP[e.Fingerprint], e)
	}
	dups := make(map[string][]Entity)
	for fp, group := range byFP {
		if len(group) > 1 {
			dups[fp] = group
		}
	}
	return dups
}

// Index is a mutable fingerprint lookup scoped to one sync or import session.
type Index struct {
	byFP map[string][]Entity
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byFP: make(map[string][]Entity)}
}

// Insert records an entity under its fingerprint.
func (x *Index) Insert(e Entity) {
	x.byFP[e.Fingerprint] = append(x.byFP[e.Fingerprint], e)
}

// Lookup returns the entities recorded under fp, in insertion order.
func (x *Index) Lookup(fp string) []Entity {
	return x.byFP[fp]
}

// HasDuplicate reports whether another entity with the same fingerprint but a
// different id is already indexed.
func (x *Index) HasDuplicate(e Entity) bool {
	for _, other := range x.byFP[e.Fingerprint] {
		if other.ID != e.ID {
			return true
		}
	}
	return false
}
