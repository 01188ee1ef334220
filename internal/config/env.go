package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted by parseEnv.
const (
	EnvDriver      = "GISTPEN_DRIVER"
	EnvDatabaseDSN = "GISTPEN_DATABASE_DSN"
	EnvMetaPrefix  = "GISTPEN_META_PREFIX"
	EnvLogLevel    = "GISTPEN_LOG_LEVEL"
	EnvLogFormat   = "GISTPEN_LOG_FORMAT"
)

// parseEnv loads an optional .env file from the working directory and then
// copies every non-empty GISTPEN_* variable into config. Variables already
// present in the process environment take precedence over the .env file.
func parseEnv(config *Config) {
	_ = godotenv.Load() // a missing .env is fine

	overlay(&config.Driver, os.Getenv(EnvDriver))
	overlay(&config.DatabaseDSN, os.Getenv(EnvDatabaseDSN))
	overlay(&config.MetaPrefix, os.Getenv(EnvMetaPrefix))
	overlay(&config.LogLevel, os.Getenv(EnvLogLevel))
	overlay(&config.LogFormat, os.Getenv(EnvLogFormat))
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
