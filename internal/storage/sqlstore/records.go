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

const recordColumns = `id, type, parent, status, title, slug, content, excerpt, password, guid, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.Record, error) {
	var (
		r                storage.Record
		created, updated int64
	)
	err := row.Scan(&r.ID, &r.Type, &r.Parent, &r.Status, &r.Title, &r.Slug,
		&r.Content, &r.Excerpt, &r.Password, &r.GUID, &created, &updated)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = fromUnix(created)
	r.UpdatedAt = fromUnix(updated)
	return &r, nil
}

func (s *Store) InsertRecord(ctx context.Context, rec *storage.Record) (int64, error) {
	now := s.now()
	created := rec.CreatedAt
	if created.IsZero() {
		created = now
	}

	query := `INSERT INTO records (type, parent, status, title, slug, content, excerpt, password, guid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, s.q(query),
		rec.Type, rec.Parent, rec.Status, rec.Title, rec.Slug, rec.Content,
		rec.Excerpt, rec.Password, rec.GUID, toUnix(created), toUnix(now),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	rec.ID = id
	rec.CreatedAt = created
	rec.UpdatedAt = now
	return id, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec *storage.Record) error {
	now := s.now()

	sets := `type = ?, parent = ?, status = ?, title = ?, slug = ?, content = ?, excerpt = ?, password = ?, guid = ?, updated_at = ?`
	args := []any{rec.Type, rec.Parent, rec.Status, rec.Title, rec.Slug, rec.Content,
		rec.Excerpt, rec.Password, rec.GUID, toUnix(now)}

	if !rec.CreatedAt.IsZero() {
		sets += `, created_at = ?`
		args = append(args, toUnix(rec.CreatedAt))
	}
	args = append(args, rec.ID)

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE records SET `+sets+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", rec.ID, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	rec.UpdatedAt = now
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, id int64, permanent bool) error {
	if permanent {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.purgeRecord(ctx, tx, id)
		})
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.trashRecord(ctx, tx, id)
	})
}

func (s *Store) purgeRecord(ctx context.Context, tx dbx.DBTX, id int64) error {
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM records WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM record_meta WHERE record_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete meta of record %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM term_relationships WHERE record_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete terms of record %d: %w", id, err)
	}
	return nil
}

func (s *Store) trashRecord(ctx context.Context, tx dbx.DBTX, id int64) error {
	var status string
	err := tx.QueryRowContext(ctx, s.q(`SELECT status FROM records WHERE id = ?`), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get record %d: %w", id, err)
	}

	if status == storage.StatusTrash {
		return nil
	}

	if err := s.setMeta(ctx, tx, id, storage.TrashStatusMetaKey, status); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.q(`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`),
		storage.StatusTrash, toUnix(s.now()), id)
	if err != nil {
		return fmt.Errorf("failed to trash record %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id int64) (*storage.Record, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+recordColumns+` FROM records WHERE id = ?`), id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return rec, nil
}

var orderColumns = map[string]string{
	storage.OrderByDate:  "created_at",
	storage.OrderByID:    "id",
	storage.OrderByTitle: "title",
}

// buildRecordQuery renders f as a SELECT with '?' placeholders.
func (s *Store) buildRecordQuery(f storage.RecordFilter) (string, []any) {
	f = f.Normalized()

	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Parent != nil {
		conds = append(conds, "parent = ?")
		args = append(args, *f.Parent)
	}
	if f.ExcludeRoot {
		conds = append(conds, "parent <> 0")
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Slug != "" {
		conds = append(conds, "slug = ?")
		args = append(args, f.Slug)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + recordColumns + ` FROM records`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	col := orderColumns[f.OrderBy]
	b.WriteString(" ORDER BY " + col + " " + f.Order)
	if col != "id" {
		b.WriteString(", id " + f.Order)
	}

	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		if f.Limit == 0 && s.dialect == dbx.DialectSQLite {
			b.WriteString(" LIMIT -1")
		}
		b.WriteString(" OFFSET ?")
		args = append(args, f.Offset)
	}

	return b.String(), args
}

func (s *Store) QueryRecords(ctx context.Context, f storage.RecordFilter) ([]*storage.Record, error) {
	query, args := s.buildRecordQuery(f)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	out := make([]*storage.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}

	return out, nil
}
