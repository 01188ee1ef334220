package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/flagx"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. The same keys are used
// for JSON, YAML and TOML.
type FileConfig struct {
	Driver      string `json:"driver" yaml:"driver" toml:"driver"`
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	MetaPrefix  string `json:"meta_prefix" yaml:"meta_prefix" toml:"meta_prefix"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// parseFile loads configuration values from the file named by the -c or
// -config flag. If neither flag is set nothing is loaded. Only non-empty
// values overwrite the target. A file that cannot be read or decoded panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}

	overlay(&config.Driver, fc.Driver)
	overlay(&config.DatabaseDSN, fc.DatabaseDSN)
	overlay(&config.MetaPrefix, fc.MetaPrefix)
	overlay(&config.LogLevel, fc.LogLevel)
	overlay(&config.LogFormat, fc.LogFormat)
}

// readFile decodes path according to its extension.
func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc := &FileConfig{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	case ".toml":
		err = toml.Unmarshal(data, fc)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return fc, nil
}
