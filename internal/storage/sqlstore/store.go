// Package sqlstore implements storage.Adapter over database/sql. The same
// queries serve SQLite (modernc.org/sqlite) and PostgreSQL (pgx); they are
// written with '?' placeholders and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/dbx"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Store struct {
	db      *sql.DB
	dialect dbx.Dialect
	now     func() time.Time
}

var _ storage.Adapter = (*Store)(nil)

// New wraps an open database handle. The schema is expected to be migrated.
func New(db *sql.DB, dialect dbx.Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to dsn using the dialect's driver and checks the connection.
func Open(ctx context.Context, dialect dbx.Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if dialect == dbx.DialectSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return New(db, dialect), nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// q rebinds a query for the store's dialect.
func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
