package manager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/logging"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/dmitrijs2005/gistpen/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type deletion struct {
	id        int64
	permanent bool
}

// spyStore records writes and injects failures on top of a real adapter.
type spyStore struct {
	storage.Adapter

	mu         sync.Mutex
	setMeta    []string
	deleteMeta []string
	deleted    []deletion

	insertErr func(rec *storage.Record) error
	deleteErr func(id int64) error
	queryErr  error
	getErr    error
}

func (s *spyStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMeta = nil
	s.deleteMeta = nil
	s.deleted = nil
}

func (s *spyStore) InsertRecord(ctx context.Context, rec *storage.Record) (int64, error) {
	if s.insertErr != nil {
		if err := s.insertErr(rec); err != nil {
			return 0, err
		}
	}
	return s.Adapter.InsertRecord(ctx, rec)
}

func (s *spyStore) GetRecord(ctx context.Context, id int64) (*storage.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Adapter.GetRecord(ctx, id)
}

func (s *spyStore) DeleteRecord(ctx context.Context, id int64, permanent bool) error {
	if s.deleteErr != nil {
		if err := s.deleteErr(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.deleted = append(s.deleted, deletion{id: id, permanent: permanent})
	s.mu.Unlock()
	return s.Adapter.DeleteRecord(ctx, id, permanent)
}

func (s *spyStore) QueryRecords(ctx context.Context, f storage.RecordFilter) ([]*storage.Record, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.Adapter.QueryRecords(ctx, f)
}

func (s *spyStore) SetMeta(ctx context.Context, id int64, key, value string) error {
	s.mu.Lock()
	s.setMeta = append(s.setMeta, key)
	s.mu.Unlock()
	return s.Adapter.SetMeta(ctx, id, key, value)
}

func (s *spyStore) DeleteMeta(ctx context.Context, id int64, key string) error {
	s.mu.Lock()
	s.deleteMeta = append(s.deleteMeta, key)
	s.mu.Unlock()
	return s.Adapter.DeleteMeta(ctx, id, key)
}

// -------- helpers --------

func newTestManager(t *testing.T, opts ...Option) (*Manager, *spyStore) {
	t.Helper()
	spy := &spyStore{Adapter: memory.New()}
	t.Cleanup(func() { _ = spy.Close() })
	return New(spy, "", logging.Discard(), opts...), spy
}

func blobData(filename, lang string) map[string]any {
	return map[string]any{
		"filename": filename,
		"code":     "// " + filename,
		"language": map[string]any{"slug": lang},
	}
}

func createRepo(t *testing.T, m *Manager, blobs ...map[string]any) *entity.Repo {
	t.Helper()

	list := make([]any, 0, len(blobs))
	for _, b := range blobs {
		list = append(list, b)
	}

	r, err := m.CreateRepo(context.Background(), map[string]any{
		"title":  "snippets",
		"status": "publish",
		"blobs":  list,
	})
	require.NoError(t, err)
	require.Equal(t, len(blobs), r.Blobs().Len())
	return r
}

// -------- tests --------

func TestNew_Defaults(t *testing.T) {
	m := New(memory.New(), "", nil)

	assert.Equal(t, common.DefaultMetaPrefix, m.Prefix())
	assert.Equal(t, "_wpgp_sync", m.metaKey("sync"))
	assert.Equal(t, "wpgp_language", m.taxonomy())
	assert.NotNil(t, m.log)
	assert.NoError(t, m.policy(nil))
}

func TestNew_CustomPrefix(t *testing.T) {
	m := New(memory.New(), "acme", logging.Discard())

	assert.Equal(t, "_acme_gist_id", m.metaKey("gist_id"))
	assert.Equal(t, "acme_language", m.taxonomy())
}

func TestStorageErr(t *testing.T) {
	err := storageErr("get", storage.ErrNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, common.ErrStorageFailure)

	boom := errors.New("boom")
	err = storageErr("insert", boom)
	assert.ErrorIs(t, err, common.ErrStorageFailure)
	assert.ErrorIs(t, err, boom)
}

func TestAsEntity_NilPointer(t *testing.T) {
	var r *entity.Repo
	e, err := asEntity(r, common.ErrNotFound)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, common.ErrNotFound)

	e, err = asEntity(entity.NewRepo(), nil)
	assert.NotNil(t, e)
	assert.NoError(t, err)
}
