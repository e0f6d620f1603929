package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:3000", c.ServerEndpointAddr)
	assert.Equal(t, "devquest.db", c.DatabasePath)
	assert.Empty(t, c.CredentialFile)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:3000", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJSON_OverlaysNonEmptyFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data, err := json.Marshal(map[string]any{
		"server_endpoint_addr": "https://api.devquest.io",
		"request_timeout":      "30s",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"devquest", "-c", path}

	var cfg Config
	cfg.LoadDefaults()
	parseJSON(&cfg)

	assert.Equal(t, "https://api.devquest.io", cfg.ServerEndpointAddr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "devquest.db", cfg.DatabasePath, "absent fields keep defaults")
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"devquest", "-a", "https://api.devquest.io", "-t", "20", "-s", "creds.enc"}

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "https://api.devquest.io", cfg.ServerEndpointAddr)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "creds.enc", cfg.CredentialFile)
	assert.Equal(t, "devquest.db", cfg.DatabasePath)
}
