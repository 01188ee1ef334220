package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gistpen/internal/cli"
	"github.com/dmitrijs2005/gistpen/internal/config"
	"github.com/dmitrijs2005/gistpen/internal/logging"
	"github.com/dmitrijs2005/gistpen/internal/manager"
	"github.com/dmitrijs2005/gistpen/internal/storage/backend"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Printf("error opening %s storage: %v", cfg.Driver, err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(ctx, "close storage", "error", err)
		}
	}()

	m := manager.New(store, cfg.MetaPrefix, logger.With("component", "manager"))
	app := cli.NewApp(m, logger.With("component", "cli"), os.Stdout, os.Stderr)

	app.Run(ctx, os.Stdin)
}
