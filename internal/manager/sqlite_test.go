package manager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gistpen/internal/dbx"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/logging"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/dmitrijs2005/gistpen/internal/storage/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, dbx.DialectSQLite, filepath.Join(t.TempDir(), "gistpen.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	m := New(store, "", logging.Discard())

	r := createRepo(t, m, blobData("a.go", "go"), blobData("b.js", "js"), blobData("c.go", "go"))

	langs, err := m.FindLanguages(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, langs.Len())

	loaded, err := m.FindRepo(ctx, r.ID(), With("blobs.language"))
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Blobs().Len())
	assert.Equal(t, r.Blobs().IDs(), loaded.Blobs().IDs())

	dropped, _ := loaded.Blobs().At(2)
	loaded.SetBlobs(loaded.Blobs().Filter(func(b *entity.Blob) bool { return b.ID() != dropped.ID() }))
	require.NoError(t, loaded.SetAttribute("sync", "on", entity.Guarded))

	saved, err := m.PersistRepo(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, "on", saved.Sync())
	assert.Equal(t, 2, saved.Blobs().Len())

	rec, err := store.GetRecord(ctx, dropped.ID())
	require.NoError(t, err)
	assert.Equal(t, storage.StatusTrash, rec.Status)

	_, err = m.Delete(ctx, saved, true)
	require.NoError(t, err)

	left, err := store.QueryRecords(ctx, storage.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, dropped.ID(), left[0].ID)

	repos, err := m.FindRepos(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 0, repos.Len())
}
