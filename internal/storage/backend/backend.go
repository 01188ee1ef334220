// Package backend builds the storage adapter selected by configuration.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/config"
	"github.com/dmitrijs2005/gistpen/internal/dbx"
	"github.com/dmitrijs2005/gistpen/internal/filex"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/dmitrijs2005/gistpen/internal/storage/boltstore"
	"github.com/dmitrijs2005/gistpen/internal/storage/memory"
	"github.com/dmitrijs2005/gistpen/internal/storage/sqlstore"
)

// Supported values of config.Config.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// openSQL is a seam for tests.
var openSQL = func(ctx context.Context, d dbx.Dialect, dsn string) (*sqlstore.Store, error) {
	s, err := sqlstore.Open(ctx, d, dsn)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open returns the adapter for cfg.Driver. SQL drivers are migrated before
// the adapter is returned.
func Open(ctx context.Context, cfg *config.Config) (storage.Adapter, error) {
	switch driver := strings.ToLower(cfg.Driver); driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverBolt, "bbolt":
		s, err := boltstore.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite, "sqlite3", DriverPostgres, "postgresql", "pgx":
		d, err := dbx.ParseDialect(driver)
		if err != nil {
			return nil, err
		}
		dsn := cfg.DatabaseDSN
		if d == dbx.DialectSQLite {
			if dsn, err = filex.EnsureParentDir(dsn); err != nil {
				return nil, err
			}
		}
		s, err := openSQL(ctx, d, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", common.ErrInvalidArgument, cfg.Driver)
	}
}
