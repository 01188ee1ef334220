package manager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// Persist writes e back to storage and returns it freshly loaded.
func (m *Manager) Persist(ctx context.Context, e entity.Entity) (entity.Entity, error) {
	switch v := e.(type) {
	case *entity.Repo:
		return asEntity(m.PersistRepo(ctx, v))
	case *entity.Blob:
		return asEntity(m.PersistBlob(ctx, v))
	case *entity.Language:
		return asEntity(m.persistLanguage(ctx, v))
	case *entity.Commit:
		return asEntity(m.persistCommit(ctx, v))
	case *entity.State:
		return asEntity(m.persistState(ctx, v))
	default:
		return nil, fmt.Errorf("%w: cannot persist %T", common.ErrMisconfigured, e)
	}
}

// PersistRepo updates the repo and its changed metadata, then reconciles the
// blobs relation: every current blob is persisted with the repo's id and
// status, and blobs dropped from the relation since it was loaded are
// trashed. A repo loaded without its blobs still pushes its status to the
// stored children.
func (m *Manager) PersistRepo(ctx context.Context, r *entity.Repo) (*entity.Repo, error) {
	if r.ID() == 0 {
		return nil, fmt.Errorf("%w: repo has no id", common.ErrNotFound)
	}

	if err := m.updateRecord(ctx, r); err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, r.ID(), r.ChangedTable()); err != nil {
		return nil, err
	}

	removed := r.RemovedBlobs()

	blobs, err := m.currentBlobs(ctx, r)
	if err != nil {
		return nil, err
	}

	var results []ChildResult
	for _, b := range blobs.Items() {
		res := ChildResult{Kind: entity.KindBlob, ID: b.ID(), Op: OpPersist}
		res.Err = m.forceBlob(b, r)
		if res.Err == nil {
			var saved *entity.Blob
			saved, res.Err = m.PersistBlob(ctx, b)
			if saved != nil {
				res.ID = saved.ID()
			}
		}
		results = append(results, res)
	}

	for _, b := range removed {
		res := ChildResult{Kind: entity.KindBlob, ID: b.ID(), Op: OpTrash}
		if err := m.store.DeleteRecord(ctx, b.ID(), false); err != nil {
			res.Err = storageErr("trash blob", err)
		}
		results = append(results, res)
	}

	cascadeErr := m.cascade(ctx, r, results)

	fresh, err := m.FindRepo(ctx, r.ID(), With(entity.RelationBlobs+"."+entity.RelationLanguage))
	if err != nil {
		return nil, err
	}
	return fresh, cascadeErr
}

// currentBlobs returns the blobs relation of r, or its stored children that
// are not in the trash when the relation was never loaded.
func (m *Manager) currentBlobs(ctx context.Context, r *entity.Repo) (*entity.Collection[*entity.Blob], error) {
	if r.BlobsLoaded() {
		return r.Blobs(), nil
	}
	children, err := m.FindBlobs(ctx, Params{RepoID: r.ID()})
	if err != nil {
		return nil, err
	}
	return children.Filter(func(b *entity.Blob) bool {
		return b.Status() != storage.StatusTrash
	}), nil
}

// forceBlob points b at repo r with r's status, bypassing the status guard.
func (m *Manager) forceBlob(b *entity.Blob, r *entity.Repo) error {
	if err := b.SetAttribute(entity.FieldRepoID, r.ID(), entity.Unguarded); err != nil {
		return err
	}
	return b.SetAttribute(entity.FieldStatus, r.Status(), entity.Unguarded)
}

// PersistBlob inserts or updates the blob, writes its changed metadata and
// re-tags its language when the relation is loaded.
func (m *Manager) PersistBlob(ctx context.Context, b *entity.Blob) (*entity.Blob, error) {
	if b.RepoID() == 0 {
		return nil, fmt.Errorf("%w: blob requires %s", common.ErrInvalidArgument, entity.FieldRepoID)
	}

	var err error
	if b.ID() == 0 {
		err = m.insertRecord(ctx, b)
	} else {
		err = m.updateRecord(ctx, b)
	}
	if err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, b.ID(), b.ChangedTable()); err != nil {
		return nil, err
	}

	m.retagLanguage(ctx, entity.KindBlob, b.ID(), b.Language())

	return m.FindBlob(ctx, b.ID(), With(entity.RelationLanguage))
}

// retagLanguage points the record's language term at l. The placeholder
// detaches any stored term; a relation that was never loaded is left alone.
func (m *Manager) retagLanguage(ctx context.Context, k entity.Kind, id int64, l *entity.Language) {
	if l == nil {
		return
	}

	var err error
	if l.IsPlaceholder() || l.Slug() == "" || l.Slug() == common.LanguageNone {
		err = m.store.ClearObjectTerms(ctx, id, m.taxonomy())
	} else {
		err = m.store.SetObjectTerms(ctx, id, l.Slug(), m.taxonomy())
	}
	if err != nil {
		m.log.Warn(ctx, "language not tagged", "kind", k.String(), "id", id, "language", l.Slug(), "error", err)
	}
}

func (m *Manager) persistLanguage(ctx context.Context, l *entity.Language) (*entity.Language, error) {
	if l.ID() != 0 {
		t := l.Term()
		t.Taxonomy = m.taxonomy()
		if err := m.store.UpdateTerm(ctx, t); err != nil {
			return nil, storageErr("update language", err)
		}
	} else {
		if l.Slug() == "" {
			return nil, fmt.Errorf("%w: language requires a slug", common.ErrInvalidArgument)
		}
		t, err := m.store.InsertTerm(ctx, l.Slug(), m.taxonomy())
		if err != nil {
			return nil, storageErr(fmt.Sprintf("insert language %q", l.Slug()), err)
		}
		if err := l.BindTerm(t); err != nil {
			return nil, err
		}
	}

	if err := m.writeTermMeta(ctx, l.ID(), l.Table()); err != nil {
		return nil, err
	}
	return m.FindLanguage(ctx, l.ID())
}

func (m *Manager) persistCommit(ctx context.Context, c *entity.Commit) (*entity.Commit, error) {
	if err := m.updateWithMeta(ctx, c); err != nil {
		return nil, err
	}
	return m.FindCommit(ctx, c.ID(), With(entity.RelationStates))
}

func (m *Manager) persistState(ctx context.Context, s *entity.State) (*entity.State, error) {
	if err := m.updateWithMeta(ctx, s); err != nil {
		return nil, err
	}
	m.retagLanguage(ctx, entity.KindState, s.ID(), s.Language())
	return m.FindState(ctx, s.ID(), With(entity.RelationLanguage))
}

// updateWithMeta updates an existing record and writes its changed metadata.
func (m *Manager) updateWithMeta(ctx context.Context, e entity.RecordEntity) error {
	if e.ID() == 0 {
		return fmt.Errorf("%w: %s has no id", common.ErrNotFound, e.Kind())
	}
	if err := m.updateRecord(ctx, e); err != nil {
		return err
	}
	return m.writeMeta(ctx, e.ID(), e.ChangedTable())
}
