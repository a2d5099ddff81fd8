package fingerprint_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/internal/fingerprint"
)

// --- Server Fingerprint Tests ---

func TestServer_StdioIgnoresArgOrder(t *testing.T) {
	a := json.RawMessage(`{"command":"npx","args":["-y","@context7/mcp"]}`)
	b := json.RawMessage(`{"command":"npx","args":["@context7/mcp","-y"]}`)

	assert.Equal(t, fingerprint.Server(a), fingerprint.Server(b))
}

func TestServer_StdioDistinguishesCommands(t *testing.T) {
	a := json.RawMessage(`{"command":"npx","args":["-y","server-a"]}`)
	b := json.RawMessage(`{"command":"node","args":["-y","server-a"]}`)

	assert.NotEqual(t, fingerprint.Server(a), fingerprint.Server(b))
}

func TestServer_HTTPIgnoresHeaders(t *testing.T) {
	a := json.RawMessage(`{"type":"http","url":"https://mcp.example.com/v1","headers":{"Authorization":"Bearer aaa"}}`)
	b := json.RawMessage(`{"type":"http","url":"https://mcp.example.com/v1","headers":{"Authorization":"Bearer bbb"}}`)

	assert.Equal(t, fingerprint.Server(a), fingerprint.Server(b))
}

func TestServer_HTTPTrailingSlashInsensitive(t *testing.T) {
	a := json.RawMessage(`{"type":"http","url":"https://mcp.example.com/v1/"}`)
	b := json.RawMessage(`{"type":"http","url":"https://mcp.example.com/v1"}`)

	assert.Equal(t, fingerprint.Server(a), fingerprint.Server(b))
}

func TestServer_TransportFieldAccepted(t *testing.T) {
	a := json.RawMessage(`{"transport":"sse","url":"https://mcp.example.com"}`)
	b := json.RawMessage(`{"type":"sse","url":"https://mcp.example.com"}`)

	assert.Equal(t, fingerprint.Server(a), fingerprint.Server(b))
}

func TestServer_KindInferredFromShape(t *testing.T) {
	http := json.RawMessage(`{"url":"https://mcp.example.com"}`)
	stdio := json.RawMessage(`{"command":"npx"}`)

	assert.Contains(t, fingerprint.Server(http), "http:")
	assert.Contains(t, fingerprint.Server(stdio), "stdio:")
}

func TestServer_UnparseableFallsBackToContentHash(t *testing.T) {
	bad := json.RawMessage(`{not json`)

	fp := fingerprint.Server(bad)
	assert.Contains(t, fp, "raw:")
	assert.Equal(t, fp, fingerprint.Server(bad), "fallback must be stable")
}

func TestServer_StableAcrossCalls(t *testing.T) {
	cfg := json.RawMessage(`{"command":"npx","args":["-y","@context7/mcp"],"env":{"KEY":"val"}}`)

	first := fingerprint.Server(cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, fingerprint.Server(cfg))
	}
}

// --- Content / Skill Tests ---

func TestContent_StableAndDistinct(t *testing.T) {
	a := fingerprint.Content([]byte("hello"))
	b := fingerprint.Content([]byte("hello"))
	c := fingerprint.Content([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSkill_DiffersFromContentForSameBytes(t *testing.T) {
	data := []byte("# My Skill\n")
	assert.NotEqual(t, fingerprint.Content(data), fingerprint.Skill(data))
}

// --- FindDuplicates Tests ---

func TestFindDuplicates_GroupsByFingerprint(t *testing.T) {
	entities := []fingerprint.Entity{
		{ID: "1", Name: "a", Fingerprint: "stdio:npx x"},
		{ID: "2", Name: "b", Fingerprint: "stdio:npx x"},
		{ID: "3", Name: "c", Fingerprint: "stdio:npx y"},
	}

	dups := fingerprint.FindDuplicates(entities)
	require.Len(t, dups, 1)
	require.Len(t, dups["stdio:npx x"], 2)
	assert.Equal(t, "1", dups["stdio:npx x"][0].ID, "group keeps input order")
	assert.Equal(t, "2", dups["stdio:npx x"][1].ID)
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	entities := []fingerprint.Entity{
		{ID: "1", Fingerprint: "a"},
		{ID: "2", Fingerprint: "b"},
	}
	assert.Empty(t, fingerprint.FindDuplicates(entities))
}

func TestFindDuplicates_SymmetricAndTransitive(t *testing.T) {
	// If a~b and b~c then all three land in one group.
	entities := []fingerprint.Entity{
		{ID: "a", Fingerprint: "x"},
		{ID: "b", Fingerprint: "x"},
		{ID: "c", Fingerprint: "x"},
	}
	dups := fingerprint.FindDuplicates(entities)
	require.Len(t, dups["x"], 3)
}

// --- Index Tests ---

func TestIndex_HasDuplicate(t *testing.T) {
	idx := fingerprint.NewIndex()
	idx.Insert(fingerprint.Entity{ID: "1", Fingerprint: "x"})

	assert.True(t, idx.HasDuplicate(fingerprint.Entity{ID: "2", Fingerprint: "x"}))
	assert.False(t, idx.HasDuplicate(fingerprint.Entity{ID: "1", Fingerprint: "x"}), "same id is not a duplicate")
	assert.False(t, idx.HasDuplicate(fingerprint.Entity{ID: "2", Fingerprint: "y"}))
}

func TestIndex_LookupInsertionOrder(t *testing.T) {
	idx := fingerprint.NewIndex()
	idx.Insert(fingerprint.Entity{ID: "1", Fingerprint: "x"})
	idx.Insert(fingerprint.Entity{ID: "2", Fingerprint: "x"})

	got := idx.Lookup("x")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Empty(t, idx.Lookup("missing"))
}
