package environ

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Kind Tests ---

func TestParseKind(t *testing.T) {
	for _, s := range []string{"wsl", "ssh"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, Kind(s), k)
	}

	_, err := ParseKind("docker")
	assert.Error(t, err)
}

func TestDescriptor_String(t *testing.T) {
	d := Descriptor{Kind: KindWSL, Identity: "Ubuntu"}
	assert.Equal(t, "wsl:Ubuntu", d.String())
}

// --- Error Tests ---

func TestUnavailableError_Message(t *testing.T) {
	err := &UnavailableError{
		Env:    Descriptor{Kind: KindSSH, Identity: "devbox"},
		Reason: "connection refused",
	}
	assert.Contains(t, err.Error(), "ssh:devbox")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTransferError_Unwrap(t *testing.T) {
	inner := errors.New("broken pipe")
	err := &TransferError{Op: "write", Path: "~/.claude/settings.json", Err: inner}

	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "write ~/.claude/settings.json: broken pipe", err.Error())

	var terr *TransferError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &terr))
}

// --- Quote Tests ---

func TestQuote(t *testing.T) {
	assert.Equal(t, "'/home/dev/file'", Quote("/home/dev/file"))
	assert.Equal(t, "'with space'", Quote("with space"))
	assert.Equal(t, `'it'\''s'`, Quote("it's"))
	assert.Equal(t, "''", Quote(""))
}

// --- WSL Output Parsing Tests ---

func TestDecodeWSLOutput(t *testing.T) {
	// wsl.exe emits UTF-16LE: NUL-padded ASCII with CRLF line endings.
	raw := []byte("U\x00b\x00u\x00n\x00t\x00u\x00\r\x00\n\x00")
	assert.Equal(t, "Ubuntu\n", decodeWSLOutput(raw))
}

func TestParseListing(t *testing.T) {
	entries := parseListing("SKILL.md\nscripts/\n.hidden\n\n")
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "SKILL.md"}, entries[0])
	assert.Equal(t, Entry{Name: "scripts", IsDir: true}, entries[1])
	assert.Equal(t, Entry{Name: ".hidden"}, entries[2])
}

func TestParseListing_Empty(t *testing.T) {
	assert.Empty(t, parseListing(""))
}
