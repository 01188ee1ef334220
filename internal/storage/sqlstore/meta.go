package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/dbx"
)

func (s *Store) GetMeta(ctx context.Context, id int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT meta_value FROM record_meta WHERE record_id = ? AND meta_key = ?`), id, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get meta[%d/%s]: %w", id, key, err)
	}
	return value, true, nil
}

func (s *Store) SetMeta(ctx context.Context, id int64, key, value string) error {
	return s.setMeta(ctx, s.db, id, key, value)
}

func (s *Store) setMeta(ctx context.Context, db dbx.DBTX, id int64, key, value string) error {
	_, err := db.ExecContext(ctx, s.q(`
		INSERT INTO record_meta (record_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT (record_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`), id, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta[%d/%s]: %w", id, key, err)
	}
	return nil
}

func (s *Store) DeleteMeta(ctx context.Context, id int64, key string) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`DELETE FROM record_meta WHERE record_id = ? AND meta_key = ?`), id, key)
	if err != nil {
		return fmt.Errorf("failed to delete meta[%d/%s]: %w", id, key, err)
	}
	return nil
}

func (s *Store) GetTermMeta(ctx context.Context, termID int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT meta_value FROM term_meta WHERE term_id = ? AND meta_key = ?`), termID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get term meta[%d/%s]: %w", termID, key, err)
	}
	return value, true, nil
}

func (s *Store) SetTermMeta(ctx context.Context, termID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO term_meta (term_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT (term_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`), termID, key, value)
	if err != nil {
		return fmt.Errorf("failed to set term meta[%d/%s]: %w", termID, key, err)
	}
	return nil
}
