package entity

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// Kind enumerates the entity kinds. The zero value is not a valid kind.
type Kind int

const (
	KindRepo Kind = iota + 1
	KindBlob
	KindLanguage
	KindCommit
	KindState
)

// Kinds lists every valid kind.
func Kinds() []Kind {
	return []Kind{KindRepo, KindBlob, KindLanguage, KindCommit, KindState}
}

func (k Kind) String() string {
	switch k {
	case KindRepo:
		return "repo"
	case KindBlob:
		return "blob"
	case KindLanguage:
		return "language"
	case KindCommit:
		return "commit"
	case KindState:
		return "state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindRepo && k <= KindState
}

// ParseKind accepts a kind name, singular or plural, in any case.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", common.ErrInvalidArgument, s)
}

// Backing is the storage representation of a kind.
type Backing int

const (
	BackingNone Backing = iota
	BackingRecord
	BackingTerm
)

func (k Kind) Backing() Backing {
	switch k {
	case KindRepo, KindBlob, KindCommit, KindState:
		return BackingRecord
	case KindLanguage:
		return BackingTerm
	default:
		return BackingNone
	}
}

// RecordType is the storage record type of record-backed kinds.
func (k Kind) RecordType() string {
	switch k {
	case KindRepo, KindBlob:
		return common.PostTypeRepo
	case KindCommit, KindState:
		return common.PostTypeRevision
	default:
		return ""
	}
}

// Matches reports whether rec is a valid backing record for k. Repos are
// roots and blobs are children of the shared record type. Commits and states
// share the revision type and need a parent; ParentKind tells them apart.
func (k Kind) Matches(rec *storage.Record) bool {
	if rec == nil || rec.Type != k.RecordType() {
		return false
	}
	switch k {
	case KindRepo:
		return rec.Parent == 0
	case KindBlob, KindCommit, KindState:
		return rec.Parent != 0
	default:
		return true
	}
}

// ParentKind returns the kind a record of k must hang off when the record
// type alone does not tell k apart: commits belong to a repo, states to a
// blob.
func (k Kind) ParentKind() (Kind, bool) {
	switch k {
	case KindCommit:
		return KindRepo, true
	case KindState:
		return KindBlob, true
	default:
		return 0, false
	}
}

// Core attribute names shared by several kinds.
const (
	FieldID     = "id"
	FieldStatus = "status"
	FieldSlug   = "slug"
	FieldRepoID = "repo_id"
	FieldBlobID = "blob_id"
)

// Relation names.
const (
	RelationBlobs    = "blobs"
	RelationLanguage = "language"
	RelationStates   = "states"
)

// Relations lists the relation keys k declares.
func (k Kind) Relations() []string {
	switch k {
	case KindRepo:
		return []string{RelationBlobs}
	case KindBlob, KindState:
		return []string{RelationLanguage}
	case KindCommit:
		return []string{RelationStates}
	default:
		return nil
	}
}

// HasRelation reports whether k declares the relation name.
func (k Kind) HasRelation(name string) bool {
	for _, r := range k.Relations() {
		if r == name {
			return true
		}
	}
	return false
}

// IsRelationKey reports whether key names any relation.
func IsRelationKey(key string) bool {
	return key == RelationBlobs || key == RelationLanguage || key == RelationStates
}

// TableKeys lists the extension attributes k stores as metadata.
func (k Kind) TableKeys() []string {
	schema := schemaFor(k)
	if schema == nil {
		return nil
	}
	keys := make([]string, 0, len(schema.table))
	for _, tk := range schema.table {
		keys = append(keys, tk.name)
	}
	return keys
}
