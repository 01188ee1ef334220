package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"gistpen", "-r", "postgres", "-d", "postgres://db", "-p", "gp", "-l", "debug", "-f", "json"},
			expected: &Config{
				Driver:      "postgres",
				DatabaseDSN: "postgres://db",
				MetaPrefix:  "gp",
				LogLevel:    "debug",
				LogFormat:   "json",
			},
		},
		{
			name: "config flag is ignored here",
			args: []string{"gistpen", "-c", "cfg.json", "-r", "memory"},
			expected: &Config{
				Driver: "memory",
			},
		},
		{
			name:        "flag missing value",
			args:        []string{"gistpen", "-r"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
