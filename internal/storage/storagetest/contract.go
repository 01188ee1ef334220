// Package storagetest holds the behavioral contract every storage.Adapter
// implementation is tested against.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty adapter. The adapter is closed by the suite.
type Factory func(t *testing.T) storage.Adapter

// Run executes the contract suite against adapters built by newAdapter.
func Run(t *testing.T, newAdapter Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Adapter)
	}{
		{"InsertAndGet", testInsertAndGet},
		{"GetMissing", testGetMissing},
		{"Update", testUpdate},
		{"UpdateMissing", testUpdateMissing},
		{"SoftDelete", testSoftDelete},
		{"PermanentDelete", testPermanentDelete},
		{"DeleteMissing", testDeleteMissing},
		{"QueryRecords", testQueryRecords},
		{"Meta", testMeta},
		{"Terms", testTerms},
		{"TermMeta", testTermMeta},
		{"ObjectTerms", testObjectTerms},
		{"ClearObjectTerms", testClearObjectTerms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAdapter(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func insert(t *testing.T, s storage.Adapter, rec *storage.Record) int64 {
	t.Helper()
	id, err := s.InsertRecord(context.Background(), rec)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Equal(t, id, rec.ID)
	return id
}

func recordIDs(recs []*storage.Record) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func testInsertAndGet(t *testing.T, s storage.Adapter) {
	ctx := context.Background()

	rec := &storage.Record{
		Type:     "gistpen",
		Status:   "publish",
		Title:    "Repo",
		Slug:     "repo",
		Content:  "body",
		Excerpt:  "desc",
		Password: "pw",
		GUID:     "guid-1",
	}
	id := insert(t, s, rec)

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "gistpen", got.Type)
	assert.Equal(t, int64(0), got.Parent)
	assert.Equal(t, "publish", got.Status)
	assert.Equal(t, "Repo", got.Title)
	assert.Equal(t, "repo", got.Slug)
	assert.Equal(t, "body", got.Content)
	assert.Equal(t, "desc", got.Excerpt)
	assert.Equal(t, "pw", got.Password)
	assert.Equal(t, "guid-1", got.GUID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())

	second := insert(t, s, &storage.Record{Type: "gistpen", Parent: id})
	assert.NotEqual(t, id, second)

	got.Title = "mutated"
	again, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Repo", again.Title, "returned records must be copies")

	created := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	third := insert(t, s, &storage.Record{Type: "revision", CreatedAt: created})
	got, err = s.GetRecord(ctx, third)
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt), "explicit CreatedAt is kept")
}

func testGetMissing(t *testing.T, s storage.Adapter) {
	_, err := s.GetRecord(context.Background(), 424242)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdate(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	id := insert(t, s, &storage.Record{Type: "gistpen", Title: "old", Status: "draft"})

	rec, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	rec.Title = "new"
	rec.Status = "publish"
	rec.Parent = 9
	require.NoError(t, s.UpdateRecord(ctx, rec))

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "publish", got.Status)
	assert.Equal(t, int64(9), got.Parent)
	assert.False(t, got.UpdatedAt.Before(rec.CreatedAt))
}

func testUpdateMissing(t *testing.T, s storage.Adapter) {
	err := s.UpdateRecord(context.Background(), &storage.Record{ID: 777, Title: "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testSoftDelete(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	id := insert(t, s, &storage.Record{Type: "gistpen", Status: "publish"})

	require.NoError(t, s.DeleteRecord(ctx, id, false))

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusTrash, got.Status)

	prev, ok, err := s.GetMeta(ctx, id, storage.TrashStatusMetaKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "publish", prev)

	// trashing twice keeps the original status
	require.NoError(t, s.DeleteRecord(ctx, id, false))
	prev, _, err = s.GetMeta(ctx, id, storage.TrashStatusMetaKey)
	require.NoError(t, err)
	assert.Equal(t, "publish", prev)
}

func testPermanentDelete(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	id := insert(t, s, &storage.Record{Type: "gistpen", Parent: 1, Status: "publish"})
	require.NoError(t, s.SetMeta(ctx, id, "_wpgp_sync", "on"))
	require.NoError(t, s.SetObjectTerms(ctx, id, "go", "wpgp_language"))

	require.NoError(t, s.DeleteRecord(ctx, id, true))

	_, err := s.GetRecord(ctx, id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, ok, err := s.GetMeta(ctx, id, "_wpgp_sync")
	require.NoError(t, err)
	assert.False(t, ok)

	terms, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: "wpgp_language", Slug: "go"})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, 0, terms[0].Count, "relationships are removed")
}

func testDeleteMissing(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	require.ErrorIs(t, s.DeleteRecord(ctx, 31337, false), storage.ErrNotFound)
	require.ErrorIs(t, s.DeleteRecord(ctx, 31337, true), storage.ErrNotFound)
}

func testQueryRecords(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := insert(t, s, &storage.Record{Type: "gistpen", Status: "publish", Title: "r", CreatedAt: base})
	b1 := insert(t, s, &storage.Record{Type: "gistpen", Parent: repo, Status: "publish", Title: "b", Slug: "one", CreatedAt: base.Add(2 * time.Minute)})
	b2 := insert(t, s, &storage.Record{Type: "gistpen", Parent: repo, Status: "publish", Title: "a", Slug: "two", CreatedAt: base.Add(time.Minute)})
	b3 := insert(t, s, &storage.Record{Type: "gistpen", Parent: repo, Status: "draft", Title: "c", CreatedAt: base.Add(3 * time.Minute)})
	rev := insert(t, s, &storage.Record{Type: "revision", Parent: repo, Status: "inherit", CreatedAt: base})

	root := int64(0)

	tests := []struct {
		name string
		f    storage.RecordFilter
		want []int64
	}{
		{"children date asc", storage.RecordFilter{Type: "gistpen", Parent: &repo, Order: storage.OrderASC}, []int64{b2, b1, b3}},
		{"children same status", storage.RecordFilter{Type: "gistpen", Parent: &repo, Status: "publish", Order: storage.OrderASC}, []int64{b2, b1}},
		{"roots only", storage.RecordFilter{Type: "gistpen", Parent: &root}, []int64{repo}},
		{"exclude root default desc", storage.RecordFilter{Type: "gistpen", ExcludeRoot: true}, []int64{b3, b1, b2}},
		{"by slug", storage.RecordFilter{Slug: "two"}, []int64{b2}},
		{"by title", storage.RecordFilter{Type: "gistpen", ExcludeRoot: true, OrderBy: storage.OrderByTitle, Order: storage.OrderASC}, []int64{b2, b1, b3}},
		{"by id desc with limit", storage.RecordFilter{OrderBy: storage.OrderByID, Limit: 2}, []int64{rev, b3}},
		{"offset", storage.RecordFilter{OrderBy: storage.OrderByID, Order: storage.OrderASC, Limit: 2, Offset: 1}, []int64{b1, b2}},
		{"revisions", storage.RecordFilter{Type: "revision", Parent: &repo}, []int64{rev}},
		{"nothing", storage.RecordFilter{Type: "nope"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryRecords(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, recordIDs(got))
		})
	}
}

func testMeta(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	id := insert(t, s, &storage.Record{Type: "gistpen"})

	_, ok, err := s.GetMeta(ctx, id, "_wpgp_gist_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetMeta(ctx, id, "_wpgp_gist_id", "abc"))
	require.NoError(t, s.SetMeta(ctx, id, "_wpgp_gist_id", "def"))

	v, ok, err := s.GetMeta(ctx, id, "_wpgp_gist_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", v, "last write wins")

	require.NoError(t, s.SetMeta(ctx, id, "_wpgp_empty", ""))
	v, ok, err = s.GetMeta(ctx, id, "_wpgp_empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	require.NoError(t, s.DeleteMeta(ctx, id, "_wpgp_gist_id"))
	require.NoError(t, s.DeleteMeta(ctx, id, "_wpgp_gist_id"), "delete is idempotent")

	_, ok, err = s.GetMeta(ctx, id, "_wpgp_gist_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testTerms(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	const tax = "wpgp_language"

	goTerm, err := s.InsertTerm(ctx, "go", tax)
	require.NoError(t, err)
	assert.NotZero(t, goTerm.ID)
	assert.Equal(t, "go", goTerm.Slug)
	assert.Equal(t, tax, goTerm.Taxonomy)

	_, err = s.InsertTerm(ctx, "go", tax)
	require.ErrorIs(t, err, storage.ErrTermExists)

	other, err := s.InsertTerm(ctx, "go", "other_tax")
	require.NoError(t, err, "slugs are unique per taxonomy")
	assert.NotEqual(t, goTerm.ID, other.ID)

	php, err := s.InsertTerm(ctx, "php", tax)
	require.NoError(t, err)

	got, err := s.GetTerm(ctx, goTerm.ID, tax)
	require.NoError(t, err)
	assert.Equal(t, "go", got.Slug)

	_, err = s.GetTerm(ctx, goTerm.ID, "other_tax")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetTerm(ctx, 9999, tax)
	require.ErrorIs(t, err, storage.ErrNotFound)

	php.Slug = "go"
	require.ErrorIs(t, s.UpdateTerm(ctx, php), storage.ErrTermExists)

	php.Slug = "php5"
	php.Name = "PHP 5"
	require.NoError(t, s.UpdateTerm(ctx, php))
	got, err = s.GetTerm(ctx, php.ID, tax)
	require.NoError(t, err)
	assert.Equal(t, "php5", got.Slug)
	assert.Equal(t, "PHP 5", got.Name)

	require.ErrorIs(t, s.UpdateTerm(ctx, &storage.Term{ID: 5555, Taxonomy: tax, Slug: "x"}), storage.ErrNotFound)

	all, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "go", all[0].Slug)
	assert.Equal(t, "php5", all[1].Slug)

	empty, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax, HideEmpty: true})
	require.NoError(t, err)
	assert.Empty(t, empty)

	bySlug, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax, Slug: "php5"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, php.ID, bySlug[0].ID)
}

func testTermMeta(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	term, err := s.InsertTerm(ctx, "go", "wpgp_language")
	require.NoError(t, err)

	_, ok, err := s.GetTermMeta(ctx, term.ID, "_wpgp_color")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetTermMeta(ctx, term.ID, "_wpgp_color", "blue"))
	require.NoError(t, s.SetTermMeta(ctx, term.ID, "_wpgp_color", "green"))

	v, ok, err := s.GetTermMeta(ctx, term.ID, "_wpgp_color")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "green", v)
}

func testObjectTerms(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	const tax = "wpgp_language"

	a := insert(t, s, &storage.Record{Type: "gistpen", Parent: 1})
	b := insert(t, s, &storage.Record{Type: "gistpen", Parent: 1})

	terms, err := s.GetObjectTerms(ctx, a, tax)
	require.NoError(t, err)
	assert.Empty(t, terms)

	require.NoError(t, s.SetObjectTerms(ctx, a, "ruby", tax), "missing term is created")
	require.NoError(t, s.SetObjectTerms(ctx, b, "ruby", tax), "existing term is reused")

	rubies, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax, Slug: "ruby"})
	require.NoError(t, err)
	require.Len(t, rubies, 1)
	assert.Equal(t, 2, rubies[0].Count)

	require.NoError(t, s.SetObjectTerms(ctx, a, "go", tax))

	terms, err = s.GetObjectTerms(ctx, a, tax)
	require.NoError(t, err)
	require.Len(t, terms, 1, "set replaces the previous term")
	assert.Equal(t, "go", terms[0].Slug)
	assert.Equal(t, 1, terms[0].Count)

	nonEmpty, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax, HideEmpty: true})
	require.NoError(t, err)
	require.Len(t, nonEmpty, 2)
	assert.Equal(t, "go", nonEmpty[0].Slug)
	assert.Equal(t, "ruby", nonEmpty[1].Slug)
	assert.Equal(t, 1, nonEmpty[1].Count)

	other, err := s.GetObjectTerms(ctx, a, "other_tax")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testClearObjectTerms(t *testing.T, s storage.Adapter) {
	ctx := context.Background()
	const tax = "wpgp_language"

	id := insert(t, s, &storage.Record{Type: "gistpen", Parent: 1})
	require.NoError(t, s.ClearObjectTerms(ctx, id, tax), "nothing attached yet")

	require.NoError(t, s.SetObjectTerms(ctx, id, "go", tax))
	require.NoError(t, s.SetObjectTerms(ctx, id, "misc", "other_tax"))

	require.NoError(t, s.ClearObjectTerms(ctx, id, tax))

	terms, err := s.GetObjectTerms(ctx, id, tax)
	require.NoError(t, err)
	assert.Empty(t, terms)

	other, err := s.GetObjectTerms(ctx, id, "other_tax")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "misc", other[0].Slug)

	gos, err := s.QueryTerms(ctx, storage.TermFilter{Taxonomy: tax, Slug: "go"})
	require.NoError(t, err)
	require.Len(t, gos, 1, "the term itself is kept")
	assert.Equal(t, 0, gos[0].Count)

	require.NoError(t, s.SetObjectTerms(ctx, id, "ruby", tax))
	terms, err = s.GetObjectTerms(ctx, id, tax)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "ruby", terms[0].Slug)
}
