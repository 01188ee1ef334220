package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(recs []*Record) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestRecordFilter_Normalized(t *testing.T) {
	f := RecordFilter{OrderBy: "TITLE", Order: "asc", Limit: -1, Offset: -3}.Normalized()
	assert.Equal(t, OrderByTitle, f.OrderBy)
	assert.Equal(t, OrderASC, f.Order)
	assert.Zero(t, f.Limit)
	assert.Zero(t, f.Offset)

	f = RecordFilter{OrderBy: "bogus", Order: "sideways"}.Normalized()
	assert.Equal(t, OrderByDate, f.OrderBy)
	assert.Equal(t, OrderDESC, f.Order)
}

func TestRecordFilter_Match(t *testing.T) {
	zero := int64(0)
	seven := int64(7)
	r := &Record{ID: 1, Type: "gistpen", Parent: 7, Status: "publish", Slug: "a"}

	assert.True(t, RecordFilter{}.Match(r))
	assert.True(t, RecordFilter{Type: "gistpen", Parent: &seven, Status: "publish", Slug: "a"}.Match(r))
	assert.True(t, RecordFilter{ExcludeRoot: true}.Match(r))
	assert.False(t, RecordFilter{Type: "revision"}.Match(r))
	assert.False(t, RecordFilter{Parent: &zero}.Match(r))
	assert.False(t, RecordFilter{Status: "draft"}.Match(r))
	assert.False(t, RecordFilter{Slug: "b"}.Match(r))
	assert.False(t, RecordFilter{ExcludeRoot: true}.Match(&Record{Parent: 0}))
}

func TestRecordFilter_Apply(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []*Record{
		{ID: 1, Title: "b", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, Title: "a", CreatedAt: base},
		{ID: 3, Title: "c", CreatedAt: base},
		{ID: 4, Title: "a", CreatedAt: base.Add(time.Hour)},
	}

	tests := []struct {
		name string
		f    RecordFilter
		want []int64
	}{
		{"default is date desc with id tiebreak", RecordFilter{}, []int64{1, 4, 3, 2}},
		{"date asc", RecordFilter{Order: OrderASC}, []int64{2, 3, 4, 1}},
		{"id asc", RecordFilter{OrderBy: OrderByID, Order: OrderASC}, []int64{1, 2, 3, 4}},
		{"title asc", RecordFilter{OrderBy: OrderByTitle, Order: OrderASC}, []int64{2, 4, 1, 3}},
		{"limit and offset", RecordFilter{Order: OrderASC, Limit: 2, Offset: 1}, []int64{3, 4}},
		{"offset past end", RecordFilter{Offset: 10}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.f.Apply(recs)))
		})
	}
}

func TestTermFilter_MatchAndSort(t *testing.T) {
	tm := &Term{ID: 1, Taxonomy: "wpgp_language", Slug: "go", Count: 0}

	assert.True(t, TermFilter{Taxonomy: "wpgp_language"}.Match(tm))
	assert.False(t, TermFilter{Taxonomy: "other"}.Match(tm))
	assert.False(t, TermFilter{Slug: "php"}.Match(tm))
	assert.False(t, TermFilter{HideEmpty: true}.Match(tm))

	terms := []*Term{{ID: 3, Slug: "php"}, {ID: 2, Slug: "go"}, {ID: 1, Slug: "php"}}
	SortTerms(terms)
	assert.Equal(t, []int64{2, 1, 3}, []int64{terms[0].ID, terms[1].ID, terms[2].ID})
}

func TestClone(t *testing.T) {
	r := &Record{ID: 1, Title: "x"}
	c := r.Clone()
	c.Title = "y"
	assert.Equal(t, "x", r.Title)

	var nilRec *Record
	assert.Nil(t, nilRec.Clone())

	tm := &Term{ID: 1, Slug: "go"}
	tc := tm.Clone()
	tc.Slug = "php"
	assert.Equal(t, "go", tm.Slug)
}
