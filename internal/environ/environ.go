package environ

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies the flavor of a secondary execution environment.
type Kind string

const (
	KindWSL Kind = "wsl"
	KindSSH Kind = "ssh"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWSL, KindSSH:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown environment kind %q", s)
}

// Descriptor identifies one concrete environment: a WSL distro name or an
// SSH connection id. Immutable for the duration of a sync session.
type Descriptor struct {
	Kind     Kind   `yaml:"kind"`
	Identity string `yaml:"identity"`
}

func (d Descriptor) String() string {
	return string(d.Kind) + ":" + d.Identity
}

// Entry is a single directory listing entry.
type Entry struct {
	Name  string
	IsDir bool
}

// Environment is the collaborator the sync engine talks to. Implementations
// hold a single persistent connection and are not safe for concurrent use;
// the engine transfers one item at a time.
type Environment interface {
	Descriptor() Descriptor
	CheckAvailability(ctx context.Context) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	ListDirectory(ctx context.Context, path string) ([]Entry, error)
	RunCommand(ctx context.Context, command string) (string, error)
}

// Detection reports candidate environment identities.
type Detection struct {
	Available  bool
	Identities []string
}

// ErrNotFound is returned by ReadFile and ListDirectory when the remote path
// does not exist.
var ErrNotFound = errors.New("path not found in environment")

// UnavailableError means the environment cannot be reached at all. It is
// fatal to a whole sync pass, unlike per-item transfer failures.
type UnavailableError struct {
	Env    Descriptor
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("environment %s unavailable: %s", e.Env, e.Reason)
}

// TransferError is a per-item I/O failure reading or writing a file.
type TransferError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Quote single-quotes s for POSIX shells.
func Quote(s string) string {
	out := "'"
	for _, r := range s {
		if r == '\'' {
			out += `'\''`
			continue
		}
		out += string(r)
	}
	return out + "'"
}
