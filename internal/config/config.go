// Package config handles configuration for the gistpen binary,
// including defaults, environment, config file overlay and command-line flags.
package config

import "github.com/dmitrijs2005/gistpen/internal/common"

// Config holds runtime settings.
//
// Fields:
//   - Driver: storage backend, one of memory, sqlite, postgres, bolt.
//   - DatabaseDSN: driver specific DSN (file path for sqlite and bolt).
//   - MetaPrefix: namespace for metadata keys and the language taxonomy.
//   - LogLevel / LogFormat: slog level name and handler (text or json).
type Config struct {
	Driver      string
	DatabaseDSN string
	MetaPrefix  string
	LogLevel    string
	LogFormat   string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Driver = "sqlite"
	c.DatabaseDSN = "gistpen.db"
	c.MetaPrefix = common.DefaultMetaPrefix
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional config file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
