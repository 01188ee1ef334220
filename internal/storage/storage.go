// Package storage defines the document store the entity manager is mapped
// onto: records with string-keyed metadata, and taxonomy terms attached to
// records. Implementations live in the subpackages.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record or term does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrTermExists is returned when a slug is already taken within a taxonomy.
	ErrTermExists = errors.New("storage: term exists")
)

// TrashStatusMetaKey holds the status a record had before it was trashed.
const TrashStatusMetaKey = "_trash_meta_status"

// StatusTrash is the status of a soft-deleted record.
const StatusTrash = "trash"

// Record is a stored document.
type Record struct {
	ID        int64
	Type      string
	Parent    int64
	Status    string
	Title     string
	Slug      string
	Content   string
	Excerpt   string
	Password  string
	GUID      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Term is a taxonomy term. Count is the number of records tagged with it.
type Term struct {
	ID       int64
	Taxonomy string
	Slug     string
	Name     string
	Count    int
}

// Clone returns a copy of t.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// RecordStore stores records.
type RecordStore interface {
	// InsertRecord stores rec, assigns rec.ID and its timestamps and returns the new id.
	InsertRecord(ctx context.Context, rec *Record) (int64, error)
	// UpdateRecord overwrites the stored record rec.ID and refreshes UpdatedAt.
	UpdateRecord(ctx context.Context, rec *Record) error
	// DeleteRecord trashes the record, or removes it together with its
	// metadata and term relationships when permanent is set.
	DeleteRecord(ctx context.Context, id int64, permanent bool) error
	GetRecord(ctx context.Context, id int64) (*Record, error)
	QueryRecords(ctx context.Context, f RecordFilter) ([]*Record, error)
}

// MetaStore stores string metadata attached to records.
type MetaStore interface {
	GetMeta(ctx context.Context, id int64, key string) (string, bool, error)
	SetMeta(ctx context.Context, id int64, key, value string) error
	DeleteMeta(ctx context.Context, id int64, key string) error
}

// TermStore stores taxonomy terms, their metadata and record relationships.
type TermStore interface {
	InsertTerm(ctx context.Context, slug, taxonomy string) (*Term, error)
	UpdateTerm(ctx context.Context, t *Term) error
	GetTerm(ctx context.Context, id int64, taxonomy string) (*Term, error)
	QueryTerms(ctx context.Context, f TermFilter) ([]*Term, error)
	GetTermMeta(ctx context.Context, termID int64, key string) (string, bool, error)
	SetTermMeta(ctx context.Context, termID int64, key, value string) error
	// SetObjectTerms replaces the record's terms in taxonomy with the single
	// term slug, creating that term when it does not exist yet.
	SetObjectTerms(ctx context.Context, id int64, slug, taxonomy string) error
	// ClearObjectTerms detaches every term in taxonomy from the record. The
	// terms themselves are kept.
	ClearObjectTerms(ctx context.Context, id int64, taxonomy string) error
	// GetObjectTerms lists the record's terms in taxonomy in attach order.
	GetObjectTerms(ctx context.Context, id int64, taxonomy string) ([]*Term, error)
}

// Adapter is a complete storage backend.
type Adapter interface {
	RecordStore
	MetaStore
	TermStore
	Close() error
}
