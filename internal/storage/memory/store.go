// Package memory implements storage.Adapter on top of mutex-guarded maps.
// It is used by tests and by the "memory" driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	lastRecordID int64
	lastTermID   int64

	records  map[int64]*storage.Record
	meta     map[int64]map[string]string
	terms    map[int64]*storage.Term
	termMeta map[int64]map[string]string
	// record id -> term ids in attach order
	relationships map[int64][]int64

	now func() time.Time
}

var _ storage.Adapter = (*Store)(nil)

func New() *Store {
	return &Store{
		records:       make(map[int64]*storage.Record),
		meta:          make(map[int64]map[string]string),
		terms:         make(map[int64]*storage.Term),
		termMeta:      make(map[int64]map[string]string),
		relationships: make(map[int64][]int64),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) InsertRecord(ctx context.Context, rec *storage.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRecordID++
	now := s.now()

	rec.ID = s.lastRecordID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	s.records[rec.ID] = rec.Clone()
	return rec.ID, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec *storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[rec.ID]
	if !ok {
		return storage.ErrNotFound
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = cur.CreatedAt
	}
	rec.UpdatedAt = s.now()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, id int64, permanent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return storage.ErrNotFound
	}

	if permanent {
		delete(s.records, id)
		delete(s.meta, id)
		delete(s.relationships, id)
		return nil
	}

	if rec.Status != storage.StatusTrash {
		s.setMetaLocked(id, storage.TrashStatusMetaKey, rec.Status)
		rec.Status = storage.StatusTrash
		rec.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id int64) (*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) QueryRecords(ctx context.Context, f storage.RecordFilter) ([]*storage.Record, error) {
	s.mu.RLock()
	all := make([]*storage.Record, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r.Clone())
	}
	s.mu.RUnlock()

	return f.Apply(all), nil
}

func (s *Store) GetMeta(ctx context.Context, id int64, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.meta[id][key]
	return v, ok, nil
}

func (s *Store) SetMeta(ctx context.Context, id int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setMetaLocked(id, key, value)
	return nil
}

func (s *Store) setMetaLocked(id int64, key, value string) {
	m, ok := s.meta[id]
	if !ok {
		m = make(map[string]string)
		s.meta[id] = m
	}
	m[key] = value
}

func (s *Store) DeleteMeta(ctx context.Context, id int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.meta[id], key)
	return nil
}
