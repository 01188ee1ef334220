package entity

import (
	"time"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// Table keys of Commit.
const (
	KeyStateIDs   = "state_ids"
	KeyHeadID     = "head_id"
	KeyHeadGistID = "head_gist_id"
)

var commitSchema = &kindSchema{
	fields: map[string]field{
		"id":           idField(),
		"description":  stringField("description", func(r *storage.Record) *string { return &r.Title }),
		"repo_id":      int64Field("repo_id", func(r *storage.Record) *int64 { return &r.Parent }),
		"status":       stringField("status", func(r *storage.Record) *string { return &r.Status }),
		"committed_at": timeField("committed_at", func(r *storage.Record) *time.Time { return &r.CreatedAt }),
	},
	table: []tableKey{
		{name: KeyStateIDs, def: []int64{}, coerce: toInt64Slice},
		{name: KeyHeadID, def: int64(0), coerce: toInt64},
		{name: KeyHeadGistID, def: "none", coerce: toString},
	},
}

// Commit is a point-in-time revision of a Repo.
type Commit struct {
	model

	states *Collection[*State]
}

func NewCommit() *Commit {
	return &Commit{model: newRecordModel(KindCommit, common.StatusInherit)}
}

func (c *Commit) Description() string    { return c.record.Title }
func (c *Commit) RepoID() int64          { return c.record.Parent }
func (c *Commit) Status() string         { return c.record.Status }
func (c *Commit) CommittedAt() time.Time { return c.record.CreatedAt }
func (c *Commit) StateIDs() []int64      { return c.tableInt64s(KeyStateIDs) }
func (c *Commit) HeadID() int64          { return c.tableInt64(KeyHeadID) }
func (c *Commit) HeadGistID() string     { return c.tableString(KeyHeadGistID) }

// States returns the loaded states relation, or nil when it was never loaded.
func (c *Commit) States() *Collection[*State] {
	return c.states
}

func (c *Commit) SetStates(states *Collection[*State]) {
	c.states = states
}

func (c *Commit) Attribute(key string) (any, bool) {
	if key == RelationStates {
		if c.states == nil {
			return nil, false
		}
		return c.states, true
	}
	return c.model.Attribute(key)
}

func (c *Commit) Attributes() map[string]any {
	out := c.model.Attributes()
	if c.states != nil {
		out[RelationStates] = serializeAll(c.states)
	}
	return out
}
