package manager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// Find loads the entity of kind k with the given id and eager-loads the
// relations named in p.With.
func (m *Manager) Find(ctx context.Context, k entity.Kind, id int64, p Params) (entity.Entity, error) {
	switch k.Backing() {
	case entity.BackingRecord:
		return m.findRecord(ctx, k, id, p)
	case entity.BackingTerm:
		return m.findTerm(ctx, k, id)
	default:
		return nil, misconfigured(k)
	}
}

func (m *Manager) findRecord(ctx context.Context, k entity.Kind, id int64, p Params) (entity.Entity, error) {
	rec, err := m.store.GetRecord(ctx, id)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get %s %d", k, id), err)
	}
	if !k.Matches(rec) {
		return nil, fmt.Errorf("%w: record %d is not a %s", common.ErrNotFound, id, k)
	}
	if err := m.checkParent(ctx, k, rec); err != nil {
		return nil, err
	}

	e, err := entity.New(k)
	if err != nil {
		return nil, err
	}
	re := e.(entity.RecordEntity)
	if err := re.BindRecord(rec); err != nil {
		return nil, err
	}

	table, err := m.readTable(ctx, k, id)
	if err != nil {
		return nil, err
	}
	re.HydrateTable(table)

	switch v := e.(type) {
	case *entity.Repo:
		if emptySync(v.Sync()) {
			_ = v.SetAttribute(entity.KeySync, "off", entity.Unguarded)
		}
	case *entity.Commit:
		m.migrateLegacyCommitMeta(ctx, v)
	}

	for _, name := range p.Relations() {
		if !k.HasRelation(name) {
			m.log.Debug(ctx, "relation not declared, skipped", "kind", k.String(), "relation", name)
			continue
		}
		if err := m.loadRelation(ctx, e, rec, p.With[name]); err != nil {
			return nil, err
		}
	}

	e.SyncOriginal()
	return e, nil
}

// readTable hydrates the declared table keys of k from record metadata.
// Missing or empty values keep the kind's default.
func (m *Manager) readTable(ctx context.Context, k entity.Kind, id int64) (entity.Table, error) {
	table := entity.Table{}
	for _, key := range k.TableKeys() {
		v, ok, err := m.store.GetMeta(ctx, id, m.metaKey(key))
		if err != nil {
			return nil, storageErr("get meta "+key, err)
		}
		if !ok || v == "" {
			continue
		}
		table[key] = entity.RawFromMeta(v)
	}
	return table, nil
}

func (m *Manager) loadRelation(ctx context.Context, e entity.Entity, rec *storage.Record, p Params) error {
	switch v := e.(type) {
	case *entity.Repo:
		blobs, err := m.repoBlobs(ctx, v.ID(), rec.Status, p)
		if err != nil {
			return err
		}
		v.SetBlobs(blobs)
	case *entity.Blob:
		l, err := m.recordLanguage(ctx, v.ID())
		if err != nil {
			return err
		}
		v.SetLanguage(l)
	case *entity.State:
		l, err := m.recordLanguage(ctx, v.ID())
		if err != nil {
			return err
		}
		v.SetLanguage(l)
	case *entity.Commit:
		v.SetStates(m.commitStates(ctx, v, p))
	}
	return nil
}

// repoBlobs returns the children of a repo sharing its status, oldest first.
func (m *Manager) repoBlobs(ctx context.Context, repoID int64, status string, p Params) (*entity.Collection[*entity.Blob], error) {
	p.RepoID = repoID
	p.Status = status
	p.OrderBy = storage.OrderByDate
	p.Order = storage.OrderASC

	found, err := m.FindBy(ctx, entity.KindBlob, p)
	if err != nil {
		return nil, err
	}
	return entity.Narrow[*entity.Blob](found), nil
}

// recordLanguage returns the last language term attached to the record, or
// the placeholder language when there is none.
func (m *Manager) recordLanguage(ctx context.Context, id int64) (*entity.Language, error) {
	terms, err := m.store.GetObjectTerms(ctx, id, m.taxonomy())
	if err != nil {
		return nil, storageErr("get language terms", err)
	}
	if len(terms) == 0 {
		return entity.Placeholder(), nil
	}
	return m.languageFromTerm(ctx, terms[len(terms)-1])
}

func (m *Manager) commitStates(ctx context.Context, c *entity.Commit, p Params) *entity.Collection[*entity.State] {
	states := entity.NewCollection[*entity.State](entity.KindState)
	for _, sid := range c.StateIDs() {
		s, err := m.FindState(ctx, sid, p)
		if err != nil {
			m.log.Debug(ctx, "commit state skipped", "commit_id", c.ID(), "state_id", sid, "error", err)
			continue
		}
		_ = states.Add(s)
	}
	return states
}

// emptySync reports whether a stored sync flag reads as unset. Older rows
// carry "0" or false instead of a mode.
func emptySync(v string) bool {
	switch v {
	case "", "0", "false":
		return true
	default:
		return false
	}
}

// checkParent rejects a revision record whose parent is not of the kind k
// hangs off, so a state is never loaded as a commit and vice versa.
func (m *Manager) checkParent(ctx context.Context, k entity.Kind, rec *storage.Record) error {
	pk, ok := k.ParentKind()
	if !ok {
		return nil
	}
	parent, err := m.store.GetRecord(ctx, rec.Parent)
	if err != nil {
		return storageErr(fmt.Sprintf("get %s parent of %s %d", pk, k, rec.ID), err)
	}
	if !pk.Matches(parent) {
		return fmt.Errorf("%w: record %d is not a %s", common.ErrNotFound, rec.ID, k)
	}
	return nil
}

func (m *Manager) findTerm(ctx context.Context, k entity.Kind, id int64) (entity.Entity, error) {
	if k != entity.KindLanguage {
		return nil, misconfigured(k)
	}

	t, err := m.store.GetTerm(ctx, id, m.taxonomy())
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get %s %d", k, id), err)
	}
	return m.languageFromTerm(ctx, t)
}

func (m *Manager) languageFromTerm(ctx context.Context, t *storage.Term) (*entity.Language, error) {
	l := entity.NewLanguage()
	if err := l.BindTerm(t); err != nil {
		return nil, err
	}

	table := entity.Table{}
	for _, key := range entity.KindLanguage.TableKeys() {
		v, ok, err := m.store.GetTermMeta(ctx, t.ID, m.metaKey(key))
		if err != nil {
			return nil, storageErr("get term meta "+key, err)
		}
		if ok && v != "" {
			table[key] = entity.RawFromMeta(v)
		}
	}
	l.HydrateTable(table)

	l.SyncOriginal()
	return l, nil
}

// FindRepo is Find for KindRepo.
func (m *Manager) FindRepo(ctx context.Context, id int64, p Params) (*entity.Repo, error) {
	return findAs[*entity.Repo](ctx, m, entity.KindRepo, id, p)
}

func (m *Manager) FindBlob(ctx context.Context, id int64, p Params) (*entity.Blob, error) {
	return findAs[*entity.Blob](ctx, m, entity.KindBlob, id, p)
}

func (m *Manager) FindLanguage(ctx context.Context, id int64) (*entity.Language, error) {
	return findAs[*entity.Language](ctx, m, entity.KindLanguage, id, Params{})
}

func (m *Manager) FindCommit(ctx context.Context, id int64, p Params) (*entity.Commit, error) {
	return findAs[*entity.Commit](ctx, m, entity.KindCommit, id, p)
}

func (m *Manager) FindState(ctx context.Context, id int64, p Params) (*entity.State, error) {
	return findAs[*entity.State](ctx, m, entity.KindState, id, p)
}

func findAs[T entity.Entity](ctx context.Context, m *Manager, k entity.Kind, id int64, p Params) (T, error) {
	var zero T
	e, err := m.Find(ctx, k, id, p)
	if err != nil {
		return zero, err
	}
	v, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s %d has type %T", common.ErrMisconfigured, k, id, e)
	}
	return v, nil
}
