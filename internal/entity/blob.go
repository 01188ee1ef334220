package entity

import (
	"time"

	"github.com/dmitrijs2005/gistpen/internal/storage"
)

var blobSchema = &kindSchema{
	fields: map[string]field{
		"id":         idField(),
		"filename":   stringField("filename", func(r *storage.Record) *string { return &r.Title }),
		"slug":       stringField("slug", func(r *storage.Record) *string { return &r.Slug }),
		"code":       stringField("code", func(r *storage.Record) *string { return &r.Content }),
		"repo_id":    int64Field("repo_id", func(r *storage.Record) *int64 { return &r.Parent }),
		"status":     stringField("status", func(r *storage.Record) *string { return &r.Status }).protect(),
		"created_at": timeField("created_at", func(r *storage.Record) *time.Time { return &r.CreatedAt }).protect(),
		"updated_at": timeField("updated_at", func(r *storage.Record) *time.Time { return &r.UpdatedAt }).protect(),
	},
}

// Blob is one file of a Repo. Its status mirrors the Repo's.
type Blob struct {
	model

	language *Language
}

func NewBlob() *Blob {
	return &Blob{model: newRecordModel(KindBlob, "draft")}
}

func (b *Blob) Filename() string { return b.record.Title }
func (b *Blob) Slug() string     { return b.record.Slug }
func (b *Blob) Code() string     { return b.record.Content }
func (b *Blob) RepoID() int64    { return b.record.Parent }
func (b *Blob) Status() string   { return b.record.Status }

// Language returns the language relation, or nil when it was never loaded.
func (b *Blob) Language() *Language {
	return b.language
}

func (b *Blob) SetLanguage(l *Language) {
	b.language = l
}

func (b *Blob) Attribute(key string) (any, bool) {
	if key == RelationLanguage {
		if b.language == nil {
			return nil, false
		}
		return b.language, true
	}
	return b.model.Attribute(key)
}

func (b *Blob) Attributes() map[string]any {
	out := b.model.Attributes()
	if b.language != nil {
		out[RelationLanguage] = b.language.Attributes()
	}
	return out
}
