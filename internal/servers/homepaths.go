package servers

import (
	"encoding/json"
	"os"
	"strings"
)

// NormalizeHomePaths rewrites absolute home-prefixed paths in command, args
// and cwd to ~-relative form so stored configs stay portable across
// machines and environments.
func NormalizeHomePaths(configs map[string]json.RawMessage) map[string]json.RawMessage {
	home, _ := os.UserHomeDir()
	if home == "" {
		return configs
	}
	return rewritePaths(configs, func(p string) string {
		if p == home {
			return "~"
		}
		if strings.HasPrefix(p, home+"/") {
			return "~" + p[len(home):]
		}
		return p
	})
}

// ExpandHomePaths is the inverse of NormalizeHomePaths: ~-relative paths
// become absolute under the current home directory.
func ExpandHomePaths(configs map[string]json.RawMessage) map[string]json.RawMessage {
	home, _ := os.UserHomeDir()
	if home == "" {
		return configs
	}
	return rewritePaths(configs, func(p string) string {
		if p == "~" {
			return home
		}
		if strings.HasPrefix(p, "~/") {
			return home + p[1:]
		}
		return p
	})
}

// rewritePaths applies fn to the path-bearing fields of every config.
func rewritePaths(configs map[string]json.RawMessage, fn func(string) string) map[string]json.RawMessage {
	result := make(map[string]json.RawMessage, len(configs))
	for name, raw := range configs {
		var cfg map[string]any
		if err := json.Unmarshal(raw, &cfg); err != nil {
			result[name] = raw
			continue
		}
		changed := false
		for _, field := range []string{"command", "cwd"} {
			if val, ok := cfg[field].(string); ok {
				if next := fn(val); next != val {
					cfg[field] = next
					changed = true
				}
			}
		}
		if args, ok := cfg["args"].([]any); ok {
			for i, a := range args {
				if val, ok := a.(string); ok {
					if next := fn(val); next != val {
						args[i] = next
						changed = true
					}
				}
			}
			cfg["args"] = args
		}
		if !changed {
			result[name] = raw
			continue
		}
		data, err := json.Marshal(cfg)
		if err != nil {
			result[name] = raw
			continue
		}
		result[name] = json.RawMessage(data)
	}
	return result
}
