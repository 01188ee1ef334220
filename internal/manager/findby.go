package manager

import (
	"context"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// FindBy returns the entities of kind k matching p. Zero matches yield an
// empty collection; entities that fail to load are left out.
func (m *Manager) FindBy(ctx context.Context, k entity.Kind, p Params) (*entity.Collection[entity.Entity], error) {
	out := entity.NewCollection[entity.Entity](k)

	var f storage.RecordFilter
	switch k {
	case entity.KindRepo:
		f = p.recordFilter(common.PostTypeRepo)
		root := int64(0)
		f.Parent = &root
		if p.With == nil {
			p.With = With(entity.RelationBlobs).With
		}
	case entity.KindBlob:
		f = p.recordFilter(common.PostTypeRepo)
		f.ExcludeRoot = true
		if p.RepoID != 0 {
			parent := p.RepoID
			f.Parent = &parent
		}
	case entity.KindCommit:
		if p.RepoID == 0 {
			m.log.Debug(ctx, "commit lookup without repo_id", "kind", k.String())
			return out, nil
		}
		f = p.recordFilter(common.PostTypeRevision)
		parent := p.RepoID
		f.Parent = &parent
	case entity.KindState:
		if p.BlobID == 0 {
			m.log.Debug(ctx, "state lookup without blob_id", "kind", k.String())
			return out, nil
		}
		f = p.recordFilter(common.PostTypeRevision)
		parent := p.BlobID
		f.Parent = &parent
	case entity.KindLanguage:
		return m.findLanguagesBy(ctx, p, out)
	default:
		return nil, misconfigured(k)
	}

	recs, err := m.store.QueryRecords(ctx, f)
	if err != nil {
		return nil, storageErr("query "+k.String(), err)
	}

	nested := Params{With: p.With}
	for _, rec := range recs {
		e, err := m.Find(ctx, k, rec.ID, nested)
		if err != nil {
			m.log.Debug(ctx, "find_by result skipped", "kind", k.String(), "id", rec.ID, "error", err)
			continue
		}
		_ = out.Add(e)
	}
	return out, nil
}

func (m *Manager) findLanguagesBy(ctx context.Context, p Params, out *entity.Collection[entity.Entity]) (*entity.Collection[entity.Entity], error) {
	terms, err := m.store.QueryTerms(ctx, storage.TermFilter{
		Taxonomy:  m.taxonomy(),
		Slug:      p.Slug,
		HideEmpty: false,
	})
	if err != nil {
		return nil, storageErr("query languages", err)
	}

	for _, t := range terms {
		e, err := m.Find(ctx, entity.KindLanguage, t.ID, Params{})
		if err != nil {
			m.log.Debug(ctx, "find_by result skipped", "kind", entity.KindLanguage.String(), "id", t.ID, "error", err)
			continue
		}
		_ = out.Add(e)
	}
	return out, nil
}

// FindRepos is FindBy for KindRepo.
func (m *Manager) FindRepos(ctx context.Context, p Params) (*entity.Collection[*entity.Repo], error) {
	return findByAs[*entity.Repo](ctx, m, entity.KindRepo, p)
}

func (m *Manager) FindBlobs(ctx context.Context, p Params) (*entity.Collection[*entity.Blob], error) {
	return findByAs[*entity.Blob](ctx, m, entity.KindBlob, p)
}

func (m *Manager) FindLanguages(ctx context.Context, p Params) (*entity.Collection[*entity.Language], error) {
	return findByAs[*entity.Language](ctx, m, entity.KindLanguage, p)
}

func (m *Manager) FindCommits(ctx context.Context, p Params) (*entity.Collection[*entity.Commit], error) {
	return findByAs[*entity.Commit](ctx, m, entity.KindCommit, p)
}

func (m *Manager) FindStates(ctx context.Context, p Params) (*entity.Collection[*entity.State], error) {
	return findByAs[*entity.State](ctx, m, entity.KindState, p)
}

func findByAs[T entity.Entity](ctx context.Context, m *Manager, k entity.Kind, p Params) (*entity.Collection[T], error) {
	found, err := m.FindBy(ctx, k, p)
	if err != nil {
		return nil, err
	}
	return entity.Narrow[T](found), nil
}
