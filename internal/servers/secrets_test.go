package servers_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/internal/servers"
)

func configWithEnv(t *testing.T, env map[string]string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(map[string]any{"command": "npx", "env": env})
	require.NoError(t, err)
	return data
}

// --- DetectSecrets Tests ---

func TestDetectSecrets_KeySuffixes(t *testing.T) {
	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"RENDER_API_KEY": "abc",
			"APP_TOKEN":      "def",
			"APP_SECRET":     "ghi",
			"APP_PASSWORD":   "jkl",
			"MY_APIKEY":      "mno",
			"SAFE_VALUE":     "hello",
		}),
	}

	detected := servers.DetectSecrets(configs)
	keys := make(map[string]bool)
	for _, s := range detected {
		keys[s.EnvKey] = true
	}
	assert.True(t, keys["RENDER_API_KEY"])
	assert.True(t, keys["APP_TOKEN"])
	assert.True(t, keys["APP_SECRET"])
	assert.True(t, keys["APP_PASSWORD"])
	assert.True(t, keys["MY_APIKEY"])
	assert.False(t, keys["SAFE_VALUE"])
}

func TestDetectSecrets_ValuePrefixes(t *testing.T) {
	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"OPENAI":  "sk-abc123",
			"RENDER":  "rnd_xyz",
			"SLACK":   "xoxb-token",
			"SHOPIFY": "shpat_value",
			"SAFE":    "hello",
		}),
	}

	detected := servers.DetectSecrets(configs)
	keys := make(map[string]bool)
	for _, s := range detected {
		keys[s.EnvKey] = true
	}
	assert.True(t, keys["OPENAI"])
	assert.True(t, keys["RENDER"])
	assert.True(t, keys["SLACK"])
	assert.True(t, keys["SHOPIFY"])
	assert.False(t, keys["SAFE"])
}

func TestDetectSecrets_LongAlphanumeric(t *testing.T) {
	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"LONG_CRED": "abcdefghijklmnopqrstuvwxyz0123456789",
			"SAFE_URL":  "https://example.com/some/path/here/x",
		}),
	}

	detected := servers.DetectSecrets(configs)
	keys := make(map[string]bool)
	for _, s := range detected {
		keys[s.EnvKey] = true
	}
	assert.True(t, keys["LONG_CRED"])
	assert.False(t, keys["SAFE_URL"], "slashes push it under the 80% threshold")
}

func TestDetectSecrets_SkipsTemplated(t *testing.T) {
	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"API_KEY":   "${API_KEY}",
			"API_TOKEN": "sk-real",
		}),
	}

	detected := servers.DetectSecrets(configs)
	require.Len(t, detected, 1)
	assert.Equal(t, "API_TOKEN", detected[0].EnvKey)
}

func TestDetectSecrets_SortedOutput(t *testing.T) {
	configs := map[string]json.RawMessage{
		"zeta":  configWithEnv(t, map[string]string{"Z_KEY": "1", "A_KEY": "2"}),
		"alpha": configWithEnv(t, map[string]string{"M_TOKEN": "3"}),
	}

	detected := servers.DetectSecrets(configs)
	require.Len(t, detected, 3)
	assert.Equal(t, "alpha", detected[0].ServerName)
	assert.Equal(t, "A_KEY", detected[1].EnvKey)
	assert.Equal(t, "Z_KEY", detected[2].EnvKey)
}

func TestDetectSecrets_NoEnvBlock(t *testing.T) {
	configs := map[string]json.RawMessage{"srv": json.RawMessage(`{"command":"npx"}`)}
	assert.Empty(t, servers.DetectSecrets(configs))
	assert.Empty(t, servers.DetectSecrets(nil))
}

// --- Mask Tests ---

func TestDetectedSecret_Mask(t *testing.T) {
	assert.Equal(t, "sk-r********", servers.DetectedSecret{Value: "sk-real12345"}.Mask())
	assert.Equal(t, "****", servers.DetectedSecret{Value: "abc"}.Mask())
}

// --- ReplaceSecrets Tests ---

func TestReplaceSecrets(t *testing.T) {
	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"API_KEY":  "sk-real",
			"APP_NAME": "my-app",
		}),
	}
	secrets := []servers.DetectedSecret{{ServerName: "srv", EnvKey: "API_KEY", Value: "sk-real"}}

	result := servers.ReplaceSecrets(configs, secrets)

	var cfg struct {
		Env map[string]string `json:"env"`
	}
	require.NoError(t, json.Unmarshal(result["srv"], &cfg))
	assert.Equal(t, "${API_KEY}", cfg.Env["API_KEY"])
	assert.Equal(t, "my-app", cfg.Env["APP_NAME"])
}

func TestReplaceSecrets_UntouchedServersPassThrough(t *testing.T) {
	configs := map[string]json.RawMessage{"clean": json.RawMessage(`{"command":"npx"}`)}
	result := servers.ReplaceSecrets(configs, nil)
	assert.Equal(t, string(configs["clean"]), string(result["clean"]))
}

// --- ResolveEnvVars Tests ---

func TestResolveEnvVars_ResolvesSetVars(t *testing.T) {
	t.Setenv("AGENTSYNC_TEST_KEY", "resolved")

	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{
			"API_KEY": "${AGENTSYNC_TEST_KEY}",
			"STATIC":  "plain",
		}),
	}

	resolved, warnings := servers.ResolveEnvVars(configs)
	assert.Empty(t, warnings)

	var cfg struct {
		Env map[string]string `json:"env"`
	}
	require.NoError(t, json.Unmarshal(resolved["srv"], &cfg))
	assert.Equal(t, "resolved", cfg.Env["API_KEY"])
	assert.Equal(t, "plain", cfg.Env["STATIC"])
}

func TestResolveEnvVars_WarnsOnUnset(t *testing.T) {
	os.Unsetenv("AGENTSYNC_MISSING_XYZZY")

	configs := map[string]json.RawMessage{
		"srv": configWithEnv(t, map[string]string{"MY_KEY": "${AGENTSYNC_MISSING_XYZZY}"}),
	}

	resolved, warnings := servers.ResolveEnvVars(configs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "AGENTSYNC_MISSING_XYZZY")

	var cfg struct {
		Env map[string]string `json:"env"`
	}
	require.NoError(t, json.Unmarshal(resolved["srv"], &cfg))
	assert.Equal(t, "${AGENTSYNC_MISSING_XYZZY}", cfg.Env["MY_KEY"], "unresolved refs left intact")
}

func TestResolveEnvVars_EmptyInput(t *testing.T) {
	resolved, warnings := servers.ResolveEnvVars(nil)
	assert.Nil(t, resolved)
	assert.Empty(t, warnings)
}
