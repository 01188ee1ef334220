package entity

import (
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/spf13/cast"
)

var languageSchema = &kindSchema{
	fields: map[string]field{
		"id": idField(),
		"slug": {
			get: func(m *model) any { return m.term.Slug },
			set: func(m *model, v any) error {
				s, err := cast.ToStringE(v)
				if err != nil {
					return invalid("slug", v, err)
				}
				m.term.Slug = s
				m.term.Name = s
				return nil
			},
		},
		"display_name": {
			readOnly: true,
			get:      func(m *model) any { return DisplayName(m.term.Slug) },
		},
	},
}

// Language is a taxonomy term identified by slug.
type Language struct {
	model
}

func NewLanguage() *Language {
	return &Language{model: newTermModel(KindLanguage)}
}

// Placeholder returns the unsaved "none" language attached to records
// without a language term.
func Placeholder() *Language {
	l := NewLanguage()
	l.term.Slug = common.LanguageNone
	l.term.Name = common.LanguageNone
	l.SyncOriginal()
	return l
}

func (l *Language) Slug() string        { return l.term.Slug }
func (l *Language) DisplayName() string { return DisplayName(l.term.Slug) }
func (l *Language) Taxonomy() string    { return l.term.Taxonomy }

// IsPlaceholder reports whether l is the unsaved "none" language.
func (l *Language) IsPlaceholder() bool {
	return l.term.ID == 0 && l.term.Slug == common.LanguageNone
}

func (l *Language) String() string {
	return fmt.Sprintf("language(%d:%s)", l.term.ID, l.term.Slug)
}
