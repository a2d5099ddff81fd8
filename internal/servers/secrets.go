package servers

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// DetectedSecret is a credential-looking value found in a server's env block.
type DetectedSecret struct {
	ServerName string
	EnvKey     string
	Value      string
	Reason     string
}

// Mask returns the value with all but the first four characters hidden.
func (s DetectedSecret) Mask() string {
	if len(s.Value) <= 4 {
		return "****"
	}
	return s.Value[:4] + strings.Repeat("*", len(s.Value)-4)
}

// DetectSecrets scans server configs for secrets in env values, sorted by
// server name then env key. Values already templated as ${VAR} are skipped.
func DetectSecrets(configs map[string]json.RawMessage) []DetectedSecret {
	var secrets []DetectedSecret
	for name, raw := range configs {
		var cfg struct {
			Env map[string]string `json:"env"`
		}
		if err := json.Unmarshal(raw, &cfg); err != nil || len(cfg.Env) == 0 {
			continue
		}
		for key, value := range cfg.Env {
			if isTemplated(value) {
				continue
			}
			if reason := classifySecret(key, value); reason != "" {
				secrets = append(secrets, DetectedSecret{
					ServerName: name,
					EnvKey:     key,
					Value:      value,
					Reason:     reason,
				})
			}
		}
	}
	sort.Slice(secrets, func(i, j int) bool {
		if secrets[i].ServerName != secrets[j].ServerName {
			return secrets[i].ServerName < secrets[j].ServerName
		}
		return secrets[i].EnvKey < secrets[j].EnvKey
	})
	return secrets
}

func classifySecret(key, value string) string {
	upper := strings.ToUpper(key)
	for _, suffix := range []string{"_KEY", "_TOKEN", "_SECRET", "_PASSWORD", "_API_KEY", "_APIKEY"} {
		if strings.HasSuffix(upper, suffix) {
			return fmt.Sprintf("key matches *%s", suffix)
		}
	}

	for _, prefix := range secretPrefixes {
		if strings.HasPrefix(value, prefix) {
			return fmt.Sprintf("value matches %s* prefix", prefix)
		}
	}

	// Long mostly-alphanumeric strings are likely credentials.
	if len(value) >= 32 {
		alnum := 0
		for _, r := range value {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				alnum++
			}
		}
		if float64(alnum)/float64(len(value)) >= 0.8 {
			return "long alphanumeric string (likely credential)"
		}
	}
	return ""
}

// Known secret value prefixes from common services.
var secretPrefixes = []string{
	"sk-",    // OpenAI, Stripe
	"rnd_",   // Render
	"NRAK-",  // New Relic
	"xoxc-",  // Slack client token
	"xoxd-",  // Slack D token
	"xoxb-",  // Slack bot token
	"xoxp-",  // Slack user token
	"shpat_", // Shopify
	"pa-",    // PlanetScale
	"live_",  // various payment providers
}

func isTemplated(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

// ReplaceSecrets substitutes detected secret values with ${ENV_KEY}
// references so credentials never reach the persisted store.
func ReplaceSecrets(configs map[string]json.RawMessage, secrets []DetectedSecret) map[string]json.RawMessage {
	keysByServer := make(map[string][]string)
	for _, s := range secrets {
		keysByServer[s.ServerName] = append(keysByServer[s.ServerName], s.EnvKey)
	}

	result := make(map[string]json.RawMessage, len(configs))
	for name, raw := range configs {
		keys, ok := keysByServer[name]
		if !ok {
			result[name] = raw
			continue
		}
		result[name] = rewriteEnv(raw, func(env map[string]any) {
			for _, key := range keys {
				env[key] = "${" + key + "}"
			}
		})
	}
	return result
}

var envVarRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars materializes ${VAR} references from the process environment
// before a config is written to a remote. Unresolved references are left
// intact and reported as warnings.
func ResolveEnvVars(configs map[string]json.RawMessage) (map[string]json.RawMessage, []string) {
	if len(configs) == 0 {
		return configs, nil
	}

	var warnings []string
	result := make(map[string]json.RawMessage, len(configs))
	for name, raw := range configs {
		result[name] = rewriteEnv(raw, func(env map[string]any) {
			for key, val := range env {
				strVal, ok := val.(string)
				if !ok {
					continue
				}
				env[key] = envVarRefPattern.ReplaceAllStringFunc(strVal, func(match string) string {
					varName := match[2 : len(match)-1]
					if envVal, ok := os.LookupEnv(varName); ok {
						return envVal
					}
					warnings = append(warnings, fmt.Sprintf("%s: env var %s not set (used by %s)", name, varName, key))
					return match
				})
			}
		})
	}
	sort.Strings(warnings)
	return result, warnings
}

// rewriteEnv applies fn to a config's env block and re-marshals. Configs
// without a usable env block pass through unchanged.
func rewriteEnv(raw json.RawMessage, fn func(env map[string]any)) json.RawMessage {
	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return raw
	}
	env, ok := cfg["env"].(map[string]any)
	if !ok {
		return raw
	}
	fn(env)
	cfg["env"] = env
	data, err := json.Marshal(cfg)
	if err != nil {
		return raw
	}
	return json.RawMessage(data)
}
