package entity

import (
	"time"

	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// Table keys of Repo.
const (
	KeySync   = "sync"
	KeyGistID = "gist_id"
)

var repoSchema = &kindSchema{
	fields: map[string]field{
		"id":          idField(),
		"title":       stringField("title", func(r *storage.Record) *string { return &r.Title }),
		"slug":        stringField("slug", func(r *storage.Record) *string { return &r.Slug }),
		"status":      stringField("status", func(r *storage.Record) *string { return &r.Status }),
		"description": stringField("description", func(r *storage.Record) *string { return &r.Excerpt }),
		"password":    stringField("password", func(r *storage.Record) *string { return &r.Password }),
		"created_at":  timeField("created_at", func(r *storage.Record) *time.Time { return &r.CreatedAt }).protect(),
		"updated_at":  timeField("updated_at", func(r *storage.Record) *time.Time { return &r.UpdatedAt }).protect(),
	},
	table: []tableKey{
		{name: KeySync, def: "off", coerce: toString},
		{name: KeyGistID, def: "none", coerce: toString},
	},
}

// Repo is a top-level container of Blobs.
type Repo struct {
	model

	blobs         *Collection[*Blob]
	originalBlobs *Collection[*Blob]
}

func NewRepo() *Repo {
	return &Repo{model: newRecordModel(KindRepo, "draft")}
}

func (r *Repo) Title() string       { return r.record.Title }
func (r *Repo) Slug() string        { return r.record.Slug }
func (r *Repo) Status() string      { return r.record.Status }
func (r *Repo) Description() string { return r.record.Excerpt }
func (r *Repo) Sync() string        { return r.tableString(KeySync) }
func (r *Repo) GistID() string      { return r.tableString(KeyGistID) }

// Blobs returns the loaded blobs relation, or nil when it was never loaded.
func (r *Repo) Blobs() *Collection[*Blob] {
	return r.blobs
}

// SetBlobs replaces the blobs relation. The original snapshot is untouched.
func (r *Repo) SetBlobs(c *Collection[*Blob]) {
	r.blobs = c
}

// BlobsLoaded reports whether the blobs relation is present.
func (r *Repo) BlobsLoaded() bool {
	return r.blobs != nil
}

// RemovedBlobs returns the blobs of the original snapshot that are no longer
// present, by id, in the current relation.
func (r *Repo) RemovedBlobs() []*Blob {
	if r.originalBlobs == nil {
		return nil
	}

	var current *Collection[*Blob]
	if r.blobs != nil {
		current = r.blobs
	} else {
		current = NewCollection[*Blob](KindBlob)
	}

	return r.originalBlobs.Filter(func(b *Blob) bool {
		return b.ID() != 0 && !current.Contains(b.ID())
	}).Items()
}

// SyncOriginal snapshots the table and the blobs relation.
func (r *Repo) SyncOriginal() {
	r.model.SyncOriginal()
	if r.blobs == nil {
		r.originalBlobs = nil
		return
	}
	r.originalBlobs = r.blobs.Clone()
}

func (r *Repo) Attribute(key string) (any, bool) {
	if key == RelationBlobs {
		if r.blobs == nil {
			return nil, false
		}
		return r.blobs, true
	}
	return r.model.Attribute(key)
}

func (r *Repo) Attributes() map[string]any {
	out := r.model.Attributes()
	if r.blobs != nil {
		out[RelationBlobs] = serializeAll(r.blobs)
	}
	return out
}
