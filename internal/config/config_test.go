package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDriver, EnvDatabaseDSN, EnvMetaPrefix, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.Driver)
	assert.Equal(t, "gistpen.db", c.DatabaseDSN)
	assert.Equal(t, "wpgp", c.MetaPrefix)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"gistpen"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	want := &Config{}
	want.LoadDefaults()
	assert.Equal(t, want, c)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.yaml", "driver: bolt\ndatabase_dsn: file.db\nlog_level: warn\n")

	t.Setenv(EnvDriver, "memory")
	t.Setenv(EnvMetaPrefix, "envp")
	t.Setenv(EnvLogFormat, "json")

	os.Args = []string{"gistpen", "-c", path, "-d", "flag.db"}

	c := LoadConfig()

	assert.Equal(t, "bolt", c.Driver, "file overrides env")
	assert.Equal(t, "flag.db", c.DatabaseDSN, "flag overrides file")
	assert.Equal(t, "envp", c.MetaPrefix, "env overrides default")
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}
