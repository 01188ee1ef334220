package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gistpen/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-r string   storage driver (memory, sqlite, postgres, bolt)
//	-d string   database DSN
//	-p string   metadata prefix
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json)
//
// os.Args is filtered with flagx.FilterArgs first so the -c/-config flags
// handled by parseFile do not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-d", "-p", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Driver, "r", config.Driver, "storage driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MetaPrefix, "p", config.MetaPrefix, "metadata prefix")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
