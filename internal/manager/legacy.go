package manager

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
)

// migrateLegacyCommitMeta hoists state_ids out of the composite commit meta
// written by old installations. The upgrade is best effort: failures are
// logged and the commit keeps whatever was hydrated. Without a legacy entry
// nothing is written.
func (m *Manager) migrateLegacyCommitMeta(ctx context.Context, c *entity.Commit) {
	raw, ok, err := m.store.GetMeta(ctx, c.ID(), common.LegacyCommitMetaKey)
	if err != nil {
		m.log.Warn(ctx, "legacy commit meta unreadable", "commit_id", c.ID(), "error", err)
		return
	}
	if !ok {
		return
	}

	var legacy map[string]any
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		m.log.Warn(ctx, "legacy commit meta malformed", "commit_id", c.ID(), "error", err)
		return
	}
	ids, ok := legacy[entity.KeyStateIDs]
	if !ok {
		return
	}

	if err := c.SetAttribute(entity.KeyStateIDs, ids, entity.Unguarded); err != nil {
		m.log.Warn(ctx, "legacy state ids rejected", "commit_id", c.ID(), "error", err)
		return
	}

	key := m.metaKey(entity.KeyStateIDs)
	if err := m.store.SetMeta(ctx, c.ID(), key, c.Table().MetaValue(entity.KeyStateIDs)); err != nil {
		m.log.Warn(ctx, "legacy state ids not stored", "commit_id", c.ID(), "error", err)
		return
	}
	if err := m.store.DeleteMeta(ctx, c.ID(), common.LegacyCommitMetaKey); err != nil {
		m.log.Warn(ctx, "legacy commit meta not removed", "commit_id", c.ID(), "error", err)
		return
	}

	m.log.Info(ctx, "legacy commit meta migrated", "commit_id", c.ID(), "state_ids", c.StateIDs())
}
