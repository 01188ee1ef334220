package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/spf13/cast"
)

// Create stores a new entity of kind k built from data. Keys that are
// guarded, unknown or of the wrong type are skipped.
func (m *Manager) Create(ctx context.Context, k entity.Kind, data map[string]any) (entity.Entity, error) {
	switch k {
	case entity.KindRepo:
		return asEntity(m.CreateRepo(ctx, data))
	case entity.KindBlob:
		return asEntity(m.createBlob(ctx, data, entity.Guarded))
	case entity.KindLanguage:
		return asEntity(m.createLanguage(ctx, data))
	case entity.KindCommit:
		return asEntity(m.createCommit(ctx, data))
	case entity.KindState:
		return asEntity(m.createState(ctx, data))
	default:
		return nil, misconfigured(k)
	}
}

// CreateRepo creates a repo and the blobs listed under "blobs". Blobs that
// fail to be created are left out of the relation and handed to the cascade
// policy.
func (m *Manager) CreateRepo(ctx context.Context, data map[string]any) (*entity.Repo, error) {
	data, blobsData := extractList(data, entity.RelationBlobs)

	r := entity.NewRepo()
	m.fill(ctx, r, data, entity.Guarded)

	if err := m.insertRecord(ctx, r); err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, r.ID(), r.Table()); err != nil {
		return nil, err
	}

	blobs := entity.NewCollection[*entity.Blob](entity.KindBlob)
	results := make([]ChildResult, 0, len(blobsData))
	for _, bd := range blobsData {
		bd[entity.FieldRepoID] = r.ID()
		bd[entity.FieldStatus] = r.Status()

		b, err := m.createBlob(ctx, bd, entity.Unguarded)
		res := ChildResult{Kind: entity.KindBlob, Op: OpCreate, Err: err}
		if b != nil {
			res.ID = b.ID()
		}
		results = append(results, res)
		if err == nil {
			_ = blobs.Add(b)
		}
	}

	r.SetBlobs(blobs)
	r.SyncOriginal()
	return r, m.cascade(ctx, r, results)
}

// CreateBlob creates a blob of an existing repo. The blob takes the repo's
// status.
func (m *Manager) CreateBlob(ctx context.Context, data map[string]any) (*entity.Blob, error) {
	return m.createBlob(ctx, data, entity.Guarded)
}

func (m *Manager) createBlob(ctx context.Context, data map[string]any, g entity.Guard) (*entity.Blob, error) {
	data, langData := extractMap(data, entity.RelationLanguage)

	b := entity.NewBlob()
	m.fill(ctx, b, data, g)

	if b.RepoID() == 0 {
		return nil, fmt.Errorf("%w: blob requires %s", common.ErrInvalidArgument, entity.FieldRepoID)
	}
	if g == entity.Guarded {
		repo, err := m.store.GetRecord(ctx, b.RepoID())
		if err != nil {
			return nil, storageErr(fmt.Sprintf("get repo %d", b.RepoID()), err)
		}
		if !entity.KindRepo.Matches(repo) {
			return nil, fmt.Errorf("%w: record %d is not a repo", common.ErrNotFound, b.RepoID())
		}
		if err := b.SetAttribute(entity.FieldStatus, repo.Status, entity.Unguarded); err != nil {
			return nil, err
		}
	}

	if err := m.insertRecord(ctx, b); err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, b.ID(), b.Table()); err != nil {
		return nil, err
	}

	l, err := m.attachLanguage(ctx, b.ID(), langData)
	if err != nil {
		return nil, err
	}
	b.SetLanguage(l)

	b.SyncOriginal()
	return b, nil
}

func (m *Manager) createState(ctx context.Context, data map[string]any) (*entity.State, error) {
	data, langData := extractMap(data, entity.RelationLanguage)

	s := entity.NewState()
	m.fill(ctx, s, data, entity.Guarded)

	if err := m.insertRecord(ctx, s); err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, s.ID(), s.Table()); err != nil {
		return nil, err
	}

	l, err := m.attachLanguage(ctx, s.ID(), langData)
	if err != nil {
		return nil, err
	}
	s.SetLanguage(l)

	s.SyncOriginal()
	return s, nil
}

func (m *Manager) createCommit(ctx context.Context, data map[string]any) (*entity.Commit, error) {
	data, _ = extractList(data, entity.RelationStates)

	c := entity.NewCommit()
	m.fill(ctx, c, data, entity.Guarded)

	if err := m.insertRecord(ctx, c); err != nil {
		return nil, err
	}
	if err := m.writeMeta(ctx, c.ID(), c.Table()); err != nil {
		return nil, err
	}

	c.SyncOriginal()
	return c, nil
}

func (m *Manager) createLanguage(ctx context.Context, data map[string]any) (*entity.Language, error) {
	l := entity.NewLanguage()
	m.fill(ctx, l, data, entity.Guarded)

	slug := strings.TrimSpace(l.Slug())
	if slug == "" {
		return nil, fmt.Errorf("%w: language requires a slug", common.ErrInvalidArgument)
	}

	t, err := m.store.InsertTerm(ctx, slug, m.taxonomy())
	if err != nil {
		return nil, storageErr(fmt.Sprintf("insert language %q", slug), err)
	}
	if err := l.BindTerm(t); err != nil {
		return nil, err
	}
	if err := m.writeTermMeta(ctx, l.ID(), l.Table()); err != nil {
		return nil, err
	}

	l.SyncOriginal()
	return l, nil
}

// attachLanguage tags the record with the language named by data["slug"],
// reusing an existing term with that slug or creating one. Without a slug
// the placeholder language is returned and nothing is stored.
func (m *Manager) attachLanguage(ctx context.Context, recordID int64, data map[string]any) (*entity.Language, error) {
	slug := strings.TrimSpace(cast.ToString(data["slug"]))
	if slug == "" || slug == common.LanguageNone {
		return entity.Placeholder(), nil
	}

	l, err := m.resolveLanguage(ctx, slug, data)
	if err != nil {
		return nil, err
	}

	if err := m.store.SetObjectTerms(ctx, recordID, l.Slug(), m.taxonomy()); err != nil {
		return nil, storageErr("tag language", err)
	}
	return l, nil
}

// resolveLanguage returns the first language with slug, creating it when
// none exists.
func (m *Manager) resolveLanguage(ctx context.Context, slug string, data map[string]any) (*entity.Language, error) {
	if l, ok, err := m.lookupLanguage(ctx, slug); err != nil || ok {
		return l, err
	}

	create := make(map[string]any, len(data))
	for k, v := range data {
		create[k] = v
	}
	create["slug"] = slug

	l, err := m.createLanguage(ctx, create)
	if errors.Is(err, storage.ErrTermExists) {
		// created concurrently
		if existing, ok, lerr := m.lookupLanguage(ctx, slug); lerr == nil && ok {
			return existing, nil
		}
	}
	return l, err
}

func (m *Manager) lookupLanguage(ctx context.Context, slug string) (*entity.Language, bool, error) {
	found, err := m.FindLanguages(ctx, Params{Slug: slug})
	if err != nil {
		return nil, false, err
	}
	l, ok := found.At(0)
	return l, ok, nil
}

// fill applies data to e and logs the keys that were skipped.
func (m *Manager) fill(ctx context.Context, e entity.Entity, data map[string]any, g entity.Guard) {
	if skipped := entity.Fill(e, data, g); len(skipped) > 0 {
		m.log.Debug(ctx, "attributes skipped", "kind", e.Kind().String(), "keys", skipped)
	}
}

// extractMap removes key from a copy of data and returns its value when it
// is an object.
func extractMap(data map[string]any, key string) (map[string]any, map[string]any) {
	rest := copyData(data)
	raw, ok := rest[key]
	if !ok {
		return rest, nil
	}
	delete(rest, key)

	sub, _ := raw.(map[string]any)
	return rest, sub
}

// extractList removes key from a copy of data and returns the objects it
// lists. Items that are not objects are dropped.
func extractList(data map[string]any, key string) (map[string]any, []map[string]any) {
	rest := copyData(data)
	raw, ok := rest[key]
	if !ok {
		return rest, nil
	}
	delete(rest, key)

	var out []map[string]any
	switch items := raw.(type) {
	case []map[string]any:
		for _, item := range items {
			out = append(out, copyData(item))
		}
	case []any:
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, copyData(obj))
			}
		}
	}
	return rest, out
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
