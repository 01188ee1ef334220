package entity

import (
	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

var stateSchema = &kindSchema{
	fields: map[string]field{
		"id":       idField(),
		"filename": stringField("filename", func(r *storage.Record) *string { return &r.Title }),
		"code":     stringField("code", func(r *storage.Record) *string { return &r.Content }),
		"blob_id":  int64Field("blob_id", func(r *storage.Record) *int64 { return &r.Parent }),
		"status":   stringField("status", func(r *storage.Record) *string { return &r.Status }),
	},
}

// State is the content of one Blob at a Commit.
type State struct {
	model

	language *Language
}

func NewState() *State {
	return &State{model: newRecordModel(KindState, common.StatusInherit)}
}

func (s *State) Filename() string { return s.record.Title }
func (s *State) Code() string     { return s.record.Content }
func (s *State) BlobID() int64    { return s.record.Parent }
func (s *State) Status() string   { return s.record.Status }

func (s *State) Language() *Language {
	return s.language
}

func (s *State) SetLanguage(l *Language) {
	s.language = l
}

func (s *State) Attribute(key string) (any, bool) {
	if key == RelationLanguage {
		if s.language == nil {
			return nil, false
		}
		return s.language, true
	}
	return s.model.Attribute(key)
}

func (s *State) Attributes() map[string]any {
	out := s.model.Attributes()
	if s.language != nil {
		out[RelationLanguage] = s.language.Attributes()
	}
	return out
}
