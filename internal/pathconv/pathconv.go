// Package pathconv translates paths between the host and a secondary
// environment's namespace: %VAR% template expansion, Windows drive to WSL
// mount conversion, and separator normalization. It is pure; no I/O.
package pathconv

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/agentsync/agentsync/internal/environ"
)

// Syntax is the path convention of one side of a translation.
type Syntax string

const (
	SyntaxWindows Syntax = "windows"
	SyntaxPOSIX   Syntax = "posix"
)

// Side describes one filesystem namespace: its path syntax, the template
// variables resolvable on it, and (for WSL) the mount root under which the
// Windows drives appear. Home is set only on sides whose home directory is
// knowable from here; the remote side leaves it empty so its tilde stays
// with the remote shell.
type Side struct {
	Syntax   Syntax
	Vars     map[string]string // %VAR% values, keys upper-cased
	Home     string            // home directory, empty when unknown
	WSLMount string            // "/mnt" when this POSIX side exposes Windows drives
}

// PathResolutionError reports a template variable that could not be resolved.
// It is a per-item error; callers record it and continue the pass.
type PathResolutionError struct {
	Token string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s in path", e.Token)
}

// HostSide builds the local side from the running OS and its environment
// variables.
func HostSide() Side {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			vars[strings.ToUpper(kv[:i])] = kv[i+1:]
		}
	}
	syntax := SyntaxPOSIX
	if runtime.GOOS == "windows" {
		syntax = SyntaxWindows
	}
	home, _ := os.UserHomeDir()
	return Side{Syntax: syntax, Vars: vars, Home: home}
}

// RemoteSide builds the remote side for an environment kind. WSL exposes the
// Windows drives under /mnt; an SSH remote sees nothing of the host.
func RemoteSide(kind environ.Kind) Side {
	side := Side{Syntax: SyntaxPOSIX}
	if kind == environ.KindWSL {
		side.WSLMount = "/mnt"
	}
	return side
}

var varPattern = regexp.MustCompile(`%([^%\\/]+)%`)

// ExpandVars replaces %VAR% tokens using the side's variable table. Tildes
// are left untouched here; Resolve handles the local home shortcut and the
// remote shell owns its own.
func ExpandVars(p string, side Side) (string, error) {
	var missing string
	expanded := varPattern.ReplaceAllStringFunc(p, func(match string) string {
		name := strings.ToUpper(match[1 : len(match)-1])
		if val, ok := side.Vars[name]; ok {
			return val
		}
		if missing == "" {
			missing = match
		}
		return match
	})
	if missing != "" {
		return "", &PathResolutionError{Token: missing}
	}
	return expanded, nil
}

// Resolve fully resolves a path against the side it lives on: %VAR% tokens
// first, then a leading home shortcut ("~", "~/", "~\") against the side's
// Home. A home shortcut on a side with no known home cannot name a real
// file, so it fails with PathResolutionError instead of surviving as a
// literal "~" the filesystem will never match.
func Resolve(p string, side Side) (string, error) {
	expanded, err := ExpandVars(p, side)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(expanded, "~") {
		return expanded, nil
	}
	if side.Home == "" {
		return "", &PathResolutionError{Token: "~"}
	}
	if expanded == "~" {
		return side.Home, nil
	}
	if expanded[1] == '/' || expanded[1] == '\\' {
		return side.Home + expanded[1:], nil
	}
	// "~user" forms are not supported.
	return "", &PathResolutionError{Token: "~"}
}

// Normalize rewrites separators to the syntax's convention. Tilde-prefixed
// paths are passed through untouched.
func Normalize(p string, syntax Syntax) string {
	if strings.HasPrefix(p, "~") {
		return p
	}
	if syntax == SyntaxWindows && !looksPOSIXAbsolute(p) {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// looksPOSIXAbsolute reports whether p is already a rooted POSIX path, which
// should keep forward slashes even when the nominal syntax is Windows.
func looksPOSIXAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

var drivePattern = regexp.MustCompile(`^([A-Za-z]):[\\/]`)

// Translate converts p from one side's syntax to the other's. It expands the
// source side's template variables first and is idempotent: a path already in
// target form passes through unchanged apart from separator normalization.
func Translate(p string, from, to Side) (string, error) {
	expanded, err := ExpandVars(p, from)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(expanded, "~") {
		return expanded, nil
	}
	if from.Syntax == to.Syntax {
		return Normalize(expanded, to.Syntax), nil
	}

	if from.Syntax == SyntaxWindows {
		// windows -> posix
		if m := drivePattern.FindStringSubmatch(expanded); m != nil {
			if to.WSLMount == "" {
				return "", &PathResolutionError{Token: m[1] + ":"}
			}
			rest := strings.ReplaceAll(expanded[len(m[0]):], `\`, "/")
			return to.WSLMount + "/" + strings.ToLower(m[1]) + "/" + rest, nil
		}
		return Normalize(expanded, SyntaxPOSIX), nil
	}

	// posix -> windows
	if from.WSLMount != "" && strings.HasPrefix(expanded, from.WSLMount+"/") {
		rest := strings.TrimPrefix(expanded, from.WSLMount+"/")
		if len(rest) >= 1 {
			drive := strings.ToUpper(rest[:1])
			tail := strings.TrimPrefix(rest[1:], "/")
			return drive + `:\` + strings.ReplaceAll(tail, "/", `\`), nil
		}
	}
	return Normalize(expanded, SyntaxWindows), nil
}
