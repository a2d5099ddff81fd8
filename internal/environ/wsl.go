package environ

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
)

// WSL talks to a WSL distribution through wsl.exe. Each operation spawns a
// short-lived shell inside the distro; no state is kept between calls.
type WSL struct {
	distro string
	exe    string // overridable for tests
}

// NewWSL returns an environment bound to the named distro.
func NewWSL(distro string) *WSL {
	return &WSL{distro: distro, exe: "wsl.exe"}
}

func (w *WSL) Descriptor() Descriptor {
	return Descriptor{Kind: KindWSL, Identity: w.distro}
}

// DetectWSL enumerates installed distros via `wsl.exe -l -q`.
func DetectWSL(ctx context.Context) Detection {
	out, err := exec.CommandContext(ctx, "wsl.exe", "-l", "-q").Output()
	if err != nil {
		return Detection{}
	}
	var ids []string
	for _, line := range strings.Split(decodeWSLOutput(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}
	return Detection{Available: len(ids) > 0, Identities: ids}
}

// decodeWSLOutput strips the UTF-16 NUL padding and CRs that wsl.exe emits.
func decodeWSLOutput(out []byte) string {
	cleaned := bytes.ReplaceAll(out, []byte{0}, nil)
	return strings.ReplaceAll(string(cleaned), "\r", "")
}

func (w *WSL) CheckAvailability(ctx context.Context) error {
	det := DetectWSL(ctx)
	if !det.Available {
		return &UnavailableError{Env: w.Descriptor(), Reason: "no WSL distributions installed"}
	}
	for _, id := range det.Identities {
		if id == w.distro {
			if _, err := w.sh(ctx, "true", nil); err != nil {
				return &UnavailableError{Env: w.Descriptor(), Reason: err.Error()}
			}
			return nil
		}
	}
	return &UnavailableError{Env: w.Descriptor(), Reason: fmt.Sprintf("distro %q not installed", w.distro)}
}

// sh runs a shell command inside the distro, optionally feeding stdin.
func (w *WSL) sh(ctx context.Context, command string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, w.exe, "-d", w.distro, "--", "sh", "-c", command)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return out, nil
}

func (w *WSL) ReadFile(ctx context.Context, p string) ([]byte, error) {
	q := Quote(p)
	out, err := w.sh(ctx, fmt.Sprintf("if [ -f %s ]; then cat %s; else echo __AGENTSYNC_NOENT__ >&2; exit 3; fi", q, q), nil)
	if err != nil {
		if strings.Contains(err.Error(), "__AGENTSYNC_NOENT__") {
			return nil, ErrNotFound
		}
		return nil, &TransferError{Op: "read", Path: p, Err: err}
	}
	return out, nil
}

func (w *WSL) WriteFile(ctx context.Context, p string, data []byte) error {
	dir := path.Dir(p)
	_, err := w.sh(ctx, fmt.Sprintf("mkdir -p %s && cat > %s", Quote(dir), Quote(p)), data)
	if err != nil {
		return &TransferError{Op: "write", Path: p, Err: err}
	}
	return nil
}

func (w *WSL) ListDirectory(ctx context.Context, p string) ([]Entry, error) {
	q := Quote(p)
	out, err := w.sh(ctx, fmt.Sprintf("if [ -d %s ]; then ls -1Ap %s; else echo __AGENTSYNC_NOENT__ >&2; exit 3; fi", q, q), nil)
	if err != nil {
		if strings.Contains(err.Error(), "__AGENTSYNC_NOENT__") {
			return nil, ErrNotFound
		}
		return nil, &TransferError{Op: "list", Path: p, Err: err}
	}
	return parseListing(string(out)), nil
}

func (w *WSL) RunCommand(ctx context.Context, command string) (string, error) {
	out, err := w.sh(ctx, command, nil)
	return string(out), err
}

// parseListing parses `ls -1Ap` output: directories carry a trailing slash.
func parseListing(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "/") {
			entries = append(entries, Entry{Name: strings.TrimSuffix(line, "/"), IsDir: true})
		} else {
			entries = append(entries, Entry{Name: line})
		}
	}
	return entries
}
