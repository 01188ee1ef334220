package storage

import (
	"sort"
	"strings"
)

// Sort columns accepted by RecordFilter.OrderBy.
const (
	OrderByDate  = "date"
	OrderByID    = "id"
	OrderByTitle = "title"
)

// Sort directions accepted by RecordFilter.Order.
const (
	OrderASC  = "ASC"
	OrderDESC = "DESC"
)

// RecordFilter selects records. Zero values match everything.
type RecordFilter struct {
	Type        string
	Parent      *int64
	ExcludeRoot bool
	Status      string
	Slug        string
	OrderBy     string
	Order       string
	Limit       int
	Offset      int
}

// TermFilter selects terms of one taxonomy.
type TermFilter struct {
	Taxonomy  string
	Slug      string
	HideEmpty bool
}

// Normalized returns f with OrderBy and Order resolved to one of the known
// values. Unknown values fall back to date and DESC.
func (f RecordFilter) Normalized() RecordFilter {
	switch strings.ToLower(f.OrderBy) {
	case OrderByID:
		f.OrderBy = OrderByID
	case OrderByTitle:
		f.OrderBy = OrderByTitle
	default:
		f.OrderBy = OrderByDate
	}

	if strings.EqualFold(f.Order, OrderASC) {
		f.Order = OrderASC
	} else {
		f.Order = OrderDESC
	}

	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	return f
}

// Match reports whether r passes every condition of f.
func (f RecordFilter) Match(r *Record) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Parent != nil && r.Parent != *f.Parent {
		return false
	}
	if f.ExcludeRoot && r.Parent == 0 {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Slug != "" && r.Slug != f.Slug {
		return false
	}
	return true
}

// Apply filters, sorts and pages recs in memory. It is used by adapters
// that cannot push the query down to the storage engine.
func (f RecordFilter) Apply(recs []*Record) []*Record {
	f = f.Normalized()

	out := make([]*Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.Order == OrderASC {
			return recordLess(f.OrderBy, a, b)
		}
		return recordLess(f.OrderBy, b, a)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Record{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}

	return out
}

func recordLess(orderBy string, a, b *Record) bool {
	switch orderBy {
	case OrderByTitle:
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case OrderByDate:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	return a.ID < b.ID
}

// Match reports whether t passes f.
func (f TermFilter) Match(t *Term) bool {
	if f.Taxonomy != "" && t.Taxonomy != f.Taxonomy {
		return false
	}
	if f.Slug != "" && t.Slug != f.Slug {
		return false
	}
	if f.HideEmpty && t.Count == 0 {
		return false
	}
	return true
}

// SortTerms orders terms by slug, then id.
func SortTerms(terms []*Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Slug != terms[j].Slug {
			return terms[i].Slug < terms[j].Slug
		}
		return terms[i].ID < terms[j].ID
	})
}
