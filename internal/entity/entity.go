// Package entity is the typed data model of the gistpen store: five entity
// kinds mapped onto storage records and taxonomy terms.
//
// Each entity carries core fields on its underlying storage object, an
// extension Table hydrated from namespaced metadata, loaded relations, and an
// original snapshot of the table used to compute diffed writes.
package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

var (
	// ErrGuarded is returned when a protected attribute is set in Guarded mode
	// or a read-only attribute is set at all.
	ErrGuarded = errors.New("guarded attribute")
	// ErrUnknownAttribute is returned for keys the kind does not declare.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrInvalidValue is returned when a value cannot be coerced to the attribute type.
	ErrInvalidValue = errors.New("invalid attribute value")
	// ErrIDReassigned is returned when binding would change an assigned id.
	ErrIDReassigned = errors.New("primary id already assigned")
	// ErrKindMismatch is returned when a collection receives an entity of another kind.
	ErrKindMismatch = errors.New("entity kind mismatch")
)

// Guard selects whether protected attributes may be written.
type Guard int

const (
	Guarded Guard = iota
	Unguarded
)

// Entity is implemented by *Repo, *Blob, *Language, *Commit and *State only.
type Entity interface {
	Kind() Kind
	ID() int64

	// Attribute returns a core, table or loaded relation value.
	Attribute(key string) (any, bool)
	// SetAttribute writes a core or table attribute.
	SetAttribute(key string, value any, g Guard) error
	// Attributes serializes the entity for output.
	Attributes() map[string]any

	Table() Table
	Original() Table
	ChangedTable() Table
	// SyncOriginal makes the current state the diff baseline.
	SyncOriginal()

	sealed()
}

// RecordEntity is an entity backed by a storage record.
type RecordEntity interface {
	Entity
	// Record returns a copy of the underlying record.
	Record() *storage.Record
	// BindRecord replaces the underlying record with a stored one.
	BindRecord(rec *storage.Record) error
	// HydrateTable replaces table values for declared keys.
	HydrateTable(t Table)
}

// TermEntity is an entity backed by a taxonomy term.
type TermEntity interface {
	Entity
	Term() *storage.Term
	BindTerm(t *storage.Term) error
	HydrateTable(t Table)
}

// New returns an empty entity of kind k.
func New(k Kind) (Entity, error) {
	switch k {
	case KindRepo:
		return NewRepo(), nil
	case KindBlob:
		return NewBlob(), nil
	case KindLanguage:
		return NewLanguage(), nil
	case KindCommit:
		return NewCommit(), nil
	case KindState:
		return NewState(), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrMisconfigured, k)
	}
}

// Fill sets every entry of data on e with guard g and returns the keys that
// were rejected. Relation keys are always rejected.
func Fill(e Entity, data map[string]any, g Guard) []string {
	var skipped []string
	for _, key := range sortedKeys(data) {
		if err := e.SetAttribute(key, data[key], g); err != nil {
			skipped = append(skipped, key)
		}
	}
	return skipped
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
