package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/dbx"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

const termSelect = `SELECT t.id, t.taxonomy, t.slug, t.name,
	(SELECT COUNT(*) FROM term_relationships c WHERE c.term_id = t.id)
	FROM terms t`

func scanTerm(row scanner) (*storage.Term, error) {
	var t storage.Term
	if err := row.Scan(&t.ID, &t.Taxonomy, &t.Slug, &t.Name, &t.Count); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) InsertTerm(ctx context.Context, slug, taxonomy string) (*storage.Term, error) {
	id, err := s.insertTerm(ctx, s.db, slug, taxonomy)
	if err != nil {
		return nil, err
	}
	return &storage.Term{ID: id, Taxonomy: taxonomy, Slug: slug, Name: slug}, nil
}

func (s *Store) insertTerm(ctx context.Context, db dbx.DBTX, slug, taxonomy string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, s.q(`
		INSERT INTO terms (taxonomy, slug, name) VALUES (?, ?, ?)
		ON CONFLICT (taxonomy, slug) DO NOTHING
		RETURNING id
	`), taxonomy, slug, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrTermExists
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert term %s/%s: %w", taxonomy, slug, err)
	}
	return id, nil
}

func (s *Store) UpdateTerm(ctx context.Context, t *storage.Term) error {
	name := t.Name
	if name == "" {
		name = t.Slug
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var other int64
		err := tx.QueryRowContext(ctx, s.q(`SELECT id FROM terms WHERE taxonomy = ? AND slug = ? AND id <> ?`),
			t.Taxonomy, t.Slug, t.ID).Scan(&other)
		switch {
		case err == nil:
			return storage.ErrTermExists
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check term slug %s: %w", t.Slug, err)
		}

		res, err := tx.ExecContext(ctx, s.q(`UPDATE terms SET slug = ?, name = ? WHERE id = ? AND taxonomy = ?`),
			t.Slug, name, t.ID, t.Taxonomy)
		if err != nil {
			return fmt.Errorf("failed to update term %d: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update term %d: %w", t.ID, err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func (s *Store) GetTerm(ctx context.Context, id int64, taxonomy string) (*storage.Term, error) {
	row := s.db.QueryRowContext(ctx, s.q(termSelect+` WHERE t.id = ? AND t.taxonomy = ?`), id, taxonomy)

	t, err := scanTerm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get term %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) QueryTerms(ctx context.Context, f storage.TermFilter) ([]*storage.Term, error) {
	var (
		conds []string
		args  []any
	)
	if f.Taxonomy != "" {
		conds = append(conds, "t.taxonomy = ?")
		args = append(args, f.Taxonomy)
	}
	if f.Slug != "" {
		conds = append(conds, "t.slug = ?")
		args = append(args, f.Slug)
	}
	if f.HideEmpty {
		conds = append(conds, "EXISTS (SELECT 1 FROM term_relationships e WHERE e.term_id = t.id)")
	}

	query := termSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.slug ASC, t.id ASC"

	return s.queryTerms(ctx, query, args...)
}

func (s *Store) queryTerms(ctx context.Context, query string, args ...any) ([]*storage.Term, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	out := make([]*storage.Term, 0)
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan term row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate term rows: %w", err)
	}
	return out, nil
}

func (s *Store) SetObjectTerms(ctx context.Context, id int64, slug, taxonomy string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var termID int64
		err := tx.QueryRowContext(ctx, s.q(`SELECT id FROM terms WHERE taxonomy = ? AND slug = ?`),
			taxonomy, slug).Scan(&termID)
		if errors.Is(err, sql.ErrNoRows) {
			termID, err = s.insertTerm(ctx, tx, slug, taxonomy)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve term %s/%s: %w", taxonomy, slug, err)
		}

		if err := s.clearObjectTerms(ctx, tx, id, taxonomy); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO term_relationships (record_id, term_id, term_order)
			VALUES (?, ?, (SELECT COALESCE(MAX(term_order), 0) + 1 FROM term_relationships WHERE record_id = ?))
		`), id, termID, id)
		if err != nil {
			return fmt.Errorf("failed to attach term %d to record %d: %w", termID, id, err)
		}
		return nil
	})
}

func (s *Store) ClearObjectTerms(ctx context.Context, id int64, taxonomy string) error {
	return s.clearObjectTerms(ctx, s.db, id, taxonomy)
}

func (s *Store) clearObjectTerms(ctx context.Context, db dbx.DBTX, id int64, taxonomy string) error {
	_, err := db.ExecContext(ctx, s.q(`
		DELETE FROM term_relationships
		WHERE record_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)
	`), id, taxonomy)
	if err != nil {
		return fmt.Errorf("failed to clear terms of record %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetObjectTerms(ctx context.Context, id int64, taxonomy string) ([]*storage.Term, error) {
	query := `SELECT t.id, t.taxonomy, t.slug, t.name,
		(SELECT COUNT(*) FROM term_relationships c WHERE c.term_id = t.id)
		FROM term_relationships r
		JOIN terms t ON t.id = r.term_id
		WHERE r.record_id = ? AND t.taxonomy = ?
		ORDER BY r.term_order ASC, r.term_id ASC`

	return s.queryTerms(ctx, query, id, taxonomy)
}
