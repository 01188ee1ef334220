package manager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
)

// Delete removes e from storage. force selects permanent deletion over
// trashing. Deleting a repo cascades to its blobs.
func (m *Manager) Delete(ctx context.Context, e entity.Entity, force bool) (entity.Entity, error) {
	switch v := e.(type) {
	case *entity.Repo:
		return asEntity(m.DeleteRepo(ctx, v, force))
	case *entity.Blob:
		return asEntity(m.deleteBlob(ctx, v, force))
	case *entity.Language, *entity.Commit, *entity.State:
		return nil, fmt.Errorf("%w: delete %s", common.ErrUnsupported, v.Kind())
	default:
		return nil, fmt.Errorf("%w: cannot delete %T", common.ErrMisconfigured, e)
	}
}

// DeleteRepo deletes the repo and then each of its blobs. When the blobs
// relation was never loaded, the repo's children of any status are used.
func (m *Manager) DeleteRepo(ctx context.Context, r *entity.Repo, force bool) (*entity.Repo, error) {
	if r.ID() == 0 {
		return nil, fmt.Errorf("%w: repo does not exist", common.ErrNotFound)
	}

	blobs := r.Blobs()
	if blobs == nil {
		children, err := m.FindBlobs(ctx, Params{RepoID: r.ID()})
		if err != nil {
			return nil, err
		}
		blobs = children
	}

	if err := m.deleteRecord(ctx, r, force); err != nil {
		return nil, err
	}

	op := OpTrash
	if force {
		op = OpDelete
	}

	results := make([]ChildResult, 0, blobs.Len())
	for _, b := range blobs.Items() {
		_, err := m.deleteBlob(ctx, b, force)
		results = append(results, ChildResult{Kind: entity.KindBlob, ID: b.ID(), Op: op, Err: err})
	}

	return r, m.cascade(ctx, r, results)
}

func (m *Manager) deleteBlob(ctx context.Context, b *entity.Blob, force bool) (*entity.Blob, error) {
	if err := m.deleteRecord(ctx, b, force); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *Manager) deleteRecord(ctx context.Context, e entity.Entity, force bool) error {
	if e.ID() == 0 {
		return fmt.Errorf("%w: %s does not exist", common.ErrNotFound, e.Kind())
	}
	if err := m.store.DeleteRecord(ctx, e.ID(), force); err != nil {
		return storageErr("delete "+e.Kind().String(), err)
	}
	return nil
}
