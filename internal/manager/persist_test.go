package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersist_Nil(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Persist(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrMisconfigured)
}

func TestPersistRepo_TrashesRemovedBlob(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()

	r := createRepo(t, m, blobData("a.go", "go"), blobData("b.go", "go"), blobData("c.go", "go"))

	loaded, err := m.FindRepo(ctx, r.ID(), With("blobs.language"))
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Blobs().Len())

	removed, _ := loaded.Blobs().At(1)
	loaded.SetBlobs(loaded.Blobs().Filter(func(b *entity.Blob) bool {
		return b.ID() != removed.ID()
	}))
	require.NoError(t, loaded.SetAttribute("status", "private", entity.Guarded))
	spy.reset()

	saved, err := m.Persist(ctx, loaded)
	require.NoError(t, err)

	repo := saved.(*entity.Repo)
	assert.Equal(t, "private", repo.Status())
	require.Equal(t, 2, repo.Blobs().Len())
	for _, b := range repo.Blobs().Items() {
		assert.NotEqual(t, removed.ID(), b.ID())
		assert.Equal(t, "private", b.Status())
		assert.Equal(t, r.ID(), b.RepoID())
		assert.Equal(t, "go", b.Language().Slug())
	}

	assert.Equal(t, []deletion{{id: removed.ID(), permanent: false}}, spy.deleted)

	rec, err := spy.Adapter.GetRecord(ctx, removed.ID())
	require.NoError(t, err)
	assert.Equal(t, storage.StatusTrash, rec.Status)
}

func TestPersistRepo_UnloadedBlobsFollowStatus(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()

	r := createRepo(t, m, blobData("a.go", "go"), blobData("b.go", "go"), blobData("c.go", "go"))
	trashed, _ := r.Blobs().At(2)
	_, err := m.Delete(ctx, trashed, false)
	require.NoError(t, err)

	loaded, err := m.FindRepo(ctx, r.ID(), Params{})
	require.NoError(t, err)
	require.False(t, loaded.BlobsLoaded())
	require.NoError(t, loaded.SetAttribute("status", "private", entity.Guarded))
	spy.reset()

	saved, err := m.PersistRepo(ctx, loaded)
	require.NoError(t, err)
	assert.Empty(t, spy.deleted)

	require.Equal(t, 2, saved.Blobs().Len())
	for _, b := range saved.Blobs().Items() {
		assert.Equal(t, "private", b.Status())
		assert.Equal(t, "go", b.Language().Slug())

		rec, err := spy.Adapter.GetRecord(ctx, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "private", rec.Status)
	}

	rec, err := spy.Adapter.GetRecord(ctx, trashed.ID())
	require.NoError(t, err)
	assert.Equal(t, storage.StatusTrash, rec.Status)
}

func TestPersistRepo_WritesOnlyChangedMeta(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m)

	loaded, err := m.FindRepo(ctx, r.ID(), Params{})
	require.NoError(t, err)
	require.NoError(t, loaded.SetAttribute("sync", "on", entity.Guarded))
	require.NoError(t, loaded.SetAttribute("title", "renamed", entity.Guarded))
	spy.reset()

	saved, err := m.PersistRepo(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, []string{"_wpgp_sync"}, spy.setMeta)
	assert.Equal(t, "on", saved.Sync())
	assert.Equal(t, "renamed", saved.Title())
	assert.Empty(t, saved.ChangedTable())

	spy.reset()
	_, err = m.PersistRepo(ctx, saved)
	require.NoError(t, err)
	assert.Empty(t, spy.setMeta)
}

func TestPersistRepo_AddsNewBlob(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m, blobData("a.go", "go"))

	loaded, err := m.FindRepo(ctx, r.ID(), With("blobs.language"))
	require.NoError(t, err)

	nb := entity.NewBlob()
	require.NoError(t, nb.SetAttribute("filename", "new.py", entity.Guarded))
	lang, err := m.FindLanguages(ctx, Params{Slug: "go"})
	require.NoError(t, err)
	l, _ := lang.At(0)
	nb.SetLanguage(l)
	require.NoError(t, loaded.Blobs().Add(nb))

	saved, err := m.PersistRepo(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, 2, saved.Blobs().Len())
	added, _ := saved.Blobs().At(1)
	assert.Equal(t, "new.py", added.Filename())
	assert.Equal(t, "publish", added.Status())
	assert.Equal(t, "go", added.Language().Slug())
}

func TestPersistRepo_NoID(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Persist(context.Background(), entity.NewRepo())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPersistRepo_FailedChildTrash(t *testing.T) {
	m, spy := newTestManager(t, WithCascadePolicy(FailOnAny))
	ctx := context.Background()
	r := createRepo(t, m, blobData("a.go", "go"), blobData("b.go", "go"))

	loaded, err := m.FindRepo(ctx, r.ID(), With("blobs"))
	require.NoError(t, err)
	first, _ := loaded.Blobs().At(0)
	loaded.SetBlobs(entity.NewCollection(entity.KindBlob, first))
	spy.deleteErr = func(int64) error { return errors.New("locked") }

	saved, err := m.PersistRepo(ctx, loaded)
	require.ErrorIs(t, err, common.ErrStorageFailure)
	require.NotNil(t, saved)
	assert.Equal(t, 2, saved.Blobs().Len())
}

func TestPersistBlob_ChangesLanguage(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m, blobData("a.go", "go"))
	_, err := m.Create(ctx, entity.KindLanguage, map[string]any{"slug": "python"})
	require.NoError(t, err)

	b, _ := r.Blobs().At(0)
	require.NoError(t, b.SetAttribute("filename", "a.py", entity.Guarded))
	python, err := m.FindLanguages(ctx, Params{Slug: "python"})
	require.NoError(t, err)
	l, _ := python.At(0)
	b.SetLanguage(l)

	saved, err := m.Persist(ctx, b)
	require.NoError(t, err)

	blob := saved.(*entity.Blob)
	assert.Equal(t, b.ID(), blob.ID())
	assert.Equal(t, "a.py", blob.Filename())
	assert.Equal(t, "python", blob.Language().Slug())
}

func TestPersistBlob_SwitchToNoneDetachesTerm(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m, blobData("a.go", "go"))
	first, _ := r.Blobs().At(0)

	b, err := m.FindBlob(ctx, first.ID(), With(entity.RelationLanguage))
	require.NoError(t, err)
	require.Equal(t, "go", b.Language().Slug())

	b.SetLanguage(entity.Placeholder())
	saved, err := m.PersistBlob(ctx, b)
	require.NoError(t, err)
	assert.True(t, saved.Language().IsPlaceholder())

	terms, err := spy.Adapter.GetObjectTerms(ctx, b.ID(), common.LanguageTaxonomy(common.DefaultMetaPrefix))
	require.NoError(t, err)
	assert.Empty(t, terms)

	langs, err := m.FindLanguages(ctx, Params{Slug: "go"})
	require.NoError(t, err)
	assert.Equal(t, 1, langs.Len(), "the language term itself is kept")
}

func TestPersistBlob_UnloadedLanguageKeepsTerm(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m, blobData("a.go", "go"))
	first, _ := r.Blobs().At(0)

	b, err := m.FindBlob(ctx, first.ID(), Params{})
	require.NoError(t, err)
	require.Nil(t, b.Language())

	_, err = m.PersistBlob(ctx, b)
	require.NoError(t, err)

	terms, err := spy.Adapter.GetObjectTerms(ctx, b.ID(), common.LanguageTaxonomy(common.DefaultMetaPrefix))
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "go", terms[0].Slug)
}

func TestPersistBlob_RequiresRepo(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.PersistBlob(context.Background(), entity.NewBlob())
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestPersistLanguage(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	l := entity.NewLanguage()
	require.NoError(t, l.SetAttribute("slug", "ruby", entity.Guarded))
	saved, err := m.Persist(ctx, l)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())

	lang := saved.(*entity.Language)
	require.NoError(t, lang.SetAttribute("slug", "rb", entity.Guarded))
	updated, err := m.Persist(ctx, lang)
	require.NoError(t, err)
	assert.Equal(t, saved.ID(), updated.ID())
	assert.Equal(t, "rb", updated.(*entity.Language).Slug())

	all, err := m.FindLanguages(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Len())
}

func TestPersistCommit(t *testing.T) {
	m, spy := newTestManager(t)
	ctx := context.Background()
	r := createRepo(t, m)

	e, err := m.Create(ctx, entity.KindCommit, map[string]any{"repo_id": r.ID()})
	require.NoError(t, err)
	c, err := m.FindCommit(ctx, e.ID(), Params{})
	require.NoError(t, err)

	require.NoError(t, c.SetAttribute("head_gist_id", "g-1", entity.Guarded))
	spy.reset()

	saved, err := m.Persist(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"_wpgp_head_gist_id"}, spy.setMeta)
	assert.Equal(t, "g-1", saved.(*entity.Commit).HeadGistID())
	assert.NotNil(t, saved.(*entity.Commit).States())
}

func TestPersistState(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Persist(ctx, entity.NewState())
	assert.ErrorIs(t, err, common.ErrNotFound)

	r := createRepo(t, m, blobData("a.go", ""))
	b, _ := r.Blobs().At(0)

	e, err := m.Create(ctx, entity.KindState, map[string]any{"blob_id": b.ID(), "code": "v1"})
	require.NoError(t, err)
	s := e.(*entity.State)
	require.NoError(t, s.SetAttribute("code", "v2", entity.Guarded))

	saved, err := m.Persist(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "v2", saved.(*entity.State).Code())
	assert.True(t, saved.(*entity.State).Language().IsPlaceholder())

	goLang, err := m.Create(ctx, entity.KindLanguage, map[string]any{"slug": "go"})
	require.NoError(t, err)

	st := saved.(*entity.State)
	st.SetLanguage(goLang.(*entity.Language))
	saved, err = m.Persist(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "go", saved.(*entity.State).Language().Slug())
}
