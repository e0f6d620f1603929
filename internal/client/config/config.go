// Package config holds runtime settings for the DevQuest CLI and loads them
// from defaults, an optional JSON file, and command-line flags, in that
// order of precedence.
package config

import "time"

// Config holds runtime settings for the DevQuest CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the platform REST API.
	ServerEndpointAddr string

	// DatabasePath is the local SQLite database file.
	DatabasePath string

	// CredentialFile enables the encrypted-file secure storage when set;
	// empty means credentials live in the SQLite metadata table.
	CredentialFile string

	// RequestTimeout bounds every individual API call.
	RequestTimeout time.Duration

	// OnlineCheckInterval is how often the connectivity watcher probes the
	// server.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.DatabasePath = "devquest.db"
	c.CredentialFile = ""
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
