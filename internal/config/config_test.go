package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "INTERNAL_PORT", "DATABASE_URL", "PLATFORM_API_URL", "PLATFORM_BOT_TOKEN", "PLATFORM_APP_TOKEN",
	"OPENAI_API_KEY", "OPENAI_API_URL", "OPENAI_MODEL", "OPENAI_TIMEOUT_SECONDS",
	"POLICY_FILE", "BLOCKED_CHANNELS", "DEBUG_MODE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "https://slack.com/api", cfg.PlatformAPIURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Empty(t, cfg.BlockedChannels)
	assert.True(t, cfg.DebugMode)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "5")
	t.Setenv("BLOCKED_CHANNELS", "C1, C2,,")
	t.Setenv("DEBUG_MODE", "false")

	cfg := Load()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, 5*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, []string{"C1", "C2"}, cfg.BlockedChannels)
	assert.False(t, cfg.DebugMode)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "eighty")
	assert.Equal(t, 8080, Load().HTTPPort)

	for _, value := range []string{"0", "-5", "soon"} {
		t.Setenv("OPENAI_TIMEOUT_SECONDS", value)
		assert.Equal(t, 30*time.Second, Load().OpenAITimeout, "OPENAI_TIMEOUT_SECONDS=%s", value)
	}
}

func TestIsDebugMode(t *testing.T) {
	assert.True(t, IsDebugMode(""))
	assert.True(t, IsDebugMode("true"))
	assert.False(t, IsDebugMode("false"))
	assert.False(t, IsDebugMode("TRUE"))
	assert.False(t, IsDebugMode("1"))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENAI_API_KEY=sk-from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("OPENAI_API_KEY") })
	assert.Equal(t, "sk-from-file", Load().OpenAIAPIKey)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
