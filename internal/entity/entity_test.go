package entity

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, k := range Kinds() {
		e, err := New(k)
		require.NoError(t, err)
		assert.Equal(t, k, e.Kind())
		assert.Zero(t, e.ID())
	}

	_, err := New(Kind(0))
	assert.ErrorIs(t, err, common.ErrMisconfigured)
}

func TestNewRepo_Defaults(t *testing.T) {
	r := NewRepo()

	assert.Equal(t, "draft", r.Status())
	assert.Equal(t, "off", r.Sync())
	assert.Equal(t, "none", r.GistID())
	assert.False(t, r.BlobsLoaded())
	assert.Equal(t, common.PostTypeRepo, r.Record().Type)

	_, ok := r.Attribute(RelationBlobs)
	assert.False(t, ok)
}

func TestSetAttribute_Guards(t *testing.T) {
	r := NewRepo()

	err := r.SetAttribute("id", 5, Unguarded)
	assert.ErrorIs(t, err, ErrGuarded)

	err = r.SetAttribute("created_at", time.Now(), Guarded)
	assert.ErrorIs(t, err, ErrGuarded)

	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, r.SetAttribute("created_at", ts, Unguarded))
	got, ok := r.Attribute("created_at")
	require.True(t, ok)
	assert.Equal(t, ts, got)

	err = r.SetAttribute("blobs", nil, Unguarded)
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	err = r.SetAttribute("nope", "x", Unguarded)
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestSetAttribute_BlobStatusIsProtected(t *testing.T) {
	b := NewBlob()

	assert.ErrorIs(t, b.SetAttribute("status", "publish", Guarded), ErrGuarded)
	require.NoError(t, b.SetAttribute("status", "publish", Unguarded))
	assert.Equal(t, "publish", b.Status())

	require.NoError(t, b.SetAttribute("repo_id", "12", Guarded))
	assert.Equal(t, int64(12), b.RepoID())
}

func TestSetAttribute_InvalidValue(t *testing.T) {
	c := NewCommit()

	err := c.SetAttribute("head_id", "not-a-number", Guarded)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, int64(0), c.HeadID())

	err = c.SetAttribute("state_ids", 17, Guarded)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFill_ReturnsSkippedKeys(t *testing.T) {
	r := NewRepo()

	skipped := Fill(r, map[string]any{
		"title":      "hello",
		"sync":       "on",
		"id":         9,
		"created_at": time.Now(),
		"blobs":      []any{},
	}, Guarded)

	assert.Equal(t, []string{"blobs", "created_at", "id"}, skipped)
	assert.Equal(t, "hello", r.Title())
	assert.Equal(t, "on", r.Sync())
	assert.Zero(t, r.ID())
}

func TestChangedTable(t *testing.T) {
	r := NewRepo()
	r.SyncOriginal()
	assert.Empty(t, r.ChangedTable())

	require.NoError(t, r.SetAttribute("sync", "on", Guarded))
	changed := r.ChangedTable()
	assert.Equal(t, []string{KeySync}, changed.Keys())
	assert.Equal(t, `"on"`, changed.MetaValue(KeySync))

	r.SyncOriginal()
	assert.Empty(t, r.ChangedTable())
}

func TestCommit_StateIDs(t *testing.T) {
	c := NewCommit()
	assert.Equal(t, []int64{}, c.StateIDs())
	assert.Equal(t, "none", c.HeadGistID())
	assert.Equal(t, common.StatusInherit, c.Status())

	require.NoError(t, c.SetAttribute("state_ids", []any{1.0, "2", 3}, Guarded))
	assert.Equal(t, []int64{1, 2, 3}, c.StateIDs())
	assert.Equal(t, "[1,2,3]", c.Table().MetaValue(KeyStateIDs))

	require.NoError(t, c.SetAttribute("state_ids", "[4,5]", Guarded))
	assert.Equal(t, []int64{4, 5}, c.StateIDs())
}

func TestCommit_CommittedAtIsSettable(t *testing.T) {
	c := NewCommit()
	require.NoError(t, c.SetAttribute("committed_at", "2024-01-02T03:04:05Z", Guarded))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), c.CommittedAt())
}

func TestHydrateTable_FallsBackToDefault(t *testing.T) {
	c := NewCommit()
	c.HydrateTable(Table{
		KeyHeadID:     RawFromMeta("abc"),
		KeyHeadGistID: RawFromMeta("g-1"),
		"undeclared":  RawFromMeta("x"),
	})

	assert.Equal(t, int64(0), c.HeadID())
	assert.Equal(t, "g-1", c.HeadGistID())
	assert.NotContains(t, c.Table(), "undeclared")
}

func TestBindRecord(t *testing.T) {
	r := NewRepo()
	require.NoError(t, r.BindRecord(&storage.Record{ID: 4, Type: common.PostTypeRepo, Title: "x"}))
	assert.Equal(t, int64(4), r.ID())
	assert.Equal(t, "x", r.Title())

	err := r.BindRecord(&storage.Record{ID: 5})
	assert.ErrorIs(t, err, ErrIDReassigned)
	assert.Equal(t, int64(4), r.ID())

	l := NewLanguage()
	assert.ErrorIs(t, l.BindRecord(&storage.Record{ID: 1}), ErrKindMismatch)
	assert.ErrorIs(t, r.BindTerm(&storage.Term{ID: 1}), ErrKindMismatch)
}

func TestRecordIsCopied(t *testing.T) {
	b := NewBlob()
	rec := b.Record()
	rec.Title = "changed"
	assert.Equal(t, "", b.Filename())
}

func TestLanguage(t *testing.T) {
	l := NewLanguage()
	require.NoError(t, l.SetAttribute("slug", "cpp", Guarded))
	assert.Equal(t, "cpp", l.Slug())
	assert.Equal(t, "C++", l.DisplayName())
	assert.ErrorIs(t, l.SetAttribute("display_name", "x", Unguarded), ErrGuarded)

	want := map[string]any{"id": int64(0), "slug": "cpp", "display_name": "C++"}
	if diff := cmp.Diff(want, l.Attributes()); diff != "" {
		t.Errorf("Attributes() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "brainfuck", DisplayName("brainfuck"))
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, "none", p.Slug())

	require.NoError(t, p.BindTerm(&storage.Term{ID: 3, Slug: "none"}))
	assert.False(t, p.IsPlaceholder())
}

func TestBlobAttributes_IncludeLanguage(t *testing.T) {
	b := NewBlob()
	require.NoError(t, b.SetAttribute("filename", "main.go", Guarded))
	l := NewLanguage()
	require.NoError(t, l.SetAttribute("slug", "go", Guarded))
	b.SetLanguage(l)

	attrs := b.Attributes()
	assert.Equal(t, "main.go", attrs["filename"])
	assert.Equal(t, "Go", attrs["language"].(map[string]any)["display_name"])
}

func TestRepo_RemovedBlobs(t *testing.T) {
	mk := func(id int64) *Blob {
		b := NewBlob()
		require.NoError(t, b.BindRecord(&storage.Record{ID: id, Type: common.PostTypeRepo, Parent: 1}))
		return b
	}
	b1, b2 := mk(1), mk(2)

	r := NewRepo()
	assert.Nil(t, r.RemovedBlobs())

	r.SetBlobs(NewCollection(KindBlob, b1, b2))
	r.SyncOriginal()
	assert.Empty(t, r.RemovedBlobs())

	r.SetBlobs(NewCollection(KindBlob, b1, NewBlob()))
	removed := r.RemovedBlobs()
	require.Len(t, removed, 1)
	assert.Equal(t, int64(2), removed[0].ID())

	r.SetBlobs(nil)
	assert.Len(t, r.RemovedBlobs(), 2)
}

func TestRepoAttributes_SerializeBlobs(t *testing.T) {
	r := NewRepo()
	b := NewBlob()
	require.NoError(t, b.SetAttribute("code", "x", Guarded))
	r.SetBlobs(NewCollection(KindBlob, b))

	blobs, ok := r.Attributes()["blobs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, blobs, 1)
	assert.Equal(t, "x", blobs[0]["code"])
}
