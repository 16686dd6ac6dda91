package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing config file falls back to defaults")

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://www.seek.com.au", cfg.BaseURL)
	assert.Equal(t, "browser", cfg.FetchMode)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.BackoffBase())
	assert.Equal(t, 30*time.Second, cfg.BackoffCeiling())
	assert.Equal(t, 2*time.Minute, cfg.BlockBackoffCeiling())
	assert.Equal(t, 2, cfg.BlockBudget)
	assert.Equal(t, 2*time.Second, cfg.PageDelay())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, time.Duration(0), cfg.RunBudget())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9090"
fetch_mode: "http"
retry_attempts: 5
page_delay_ms: 500
max_pages: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "http", cfg.FetchMode)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.PageDelay())
	assert.Equal(t, 10, cfg.MaxPages)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`fetch_mode: "browser"`), 0644))

	t.Setenv("FETCH_MODE", "http")
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.FetchMode)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, int64(12345), cfg.TelegramChatID)
}

func TestInvalidFetchMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`fetch_mode: "carrier-pigeon"`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestInvalidTelegramChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
