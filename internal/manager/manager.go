// Package manager implements the entity manager: find, find_by, create,
// persist and delete for the five gistpen entity kinds on top of a
// storage.Adapter.
//
// Every call is synchronous and request scoped. Multi-step operations are
// not atomic; writes completed before a failure stay in place.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/logging"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/google/uuid"
)

type Manager struct {
	store  storage.Adapter
	prefix string
	log    logging.Logger
	policy CascadePolicy

	newGUID func() string
}

type Option func(*Manager)

// WithCascadePolicy selects how failed child operations affect the parent.
func WithCascadePolicy(p CascadePolicy) Option {
	return func(m *Manager) {
		if p != nil {
			m.policy = p
		}
	}
}

// New returns a manager storing metadata under "_<prefix>_<key>". An empty
// prefix selects common.DefaultMetaPrefix.
func New(store storage.Adapter, prefix string, logger logging.Logger, opts ...Option) *Manager {
	if prefix == "" {
		prefix = common.DefaultMetaPrefix
	}
	if logger == nil {
		logger = logging.Discard()
	}

	m := &Manager{
		store:   store,
		prefix:  prefix,
		log:     logger,
		policy:  BestEffort,
		newGUID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Prefix() string {
	return m.prefix
}

func (m *Manager) metaKey(key string) string {
	return common.MetaKey(m.prefix, key)
}

func (m *Manager) taxonomy() string {
	return common.LanguageTaxonomy(m.prefix)
}

func misconfigured(k entity.Kind) error {
	return fmt.Errorf("%w: %s", common.ErrMisconfigured, k)
}

// storageErr translates adapter errors into the manager's error kinds.
func storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", common.ErrNotFound, op, err)
	}
	return fmt.Errorf("%w: %s: %w", common.ErrStorageFailure, op, err)
}

// asEntity keeps a nil concrete pointer from becoming a non-nil Entity.
func asEntity[T entity.Entity](v T, err error) (entity.Entity, error) {
	var zero T
	if any(v) == any(zero) {
		return nil, err
	}
	return v, err
}

// writeMeta stores every entry of t as namespaced record metadata.
func (m *Manager) writeMeta(ctx context.Context, id int64, t entity.Table) error {
	for _, key := range t.Keys() {
		if err := m.store.SetMeta(ctx, id, m.metaKey(key), t.MetaValue(key)); err != nil {
			return storageErr("set meta "+key, err)
		}
	}
	return nil
}

func (m *Manager) writeTermMeta(ctx context.Context, id int64, t entity.Table) error {
	for _, key := range t.Keys() {
		if err := m.store.SetTermMeta(ctx, id, m.metaKey(key), t.MetaValue(key)); err != nil {
			return storageErr("set term meta "+key, err)
		}
	}
	return nil
}

// insertRecord stores e as a new record and binds the stored copy.
func (m *Manager) insertRecord(ctx context.Context, e entity.RecordEntity) error {
	rec := e.Record()
	if rec.GUID == "" {
		rec.GUID = m.newGUID()
	}

	id, err := m.store.InsertRecord(ctx, rec)
	if err != nil {
		return storageErr("insert "+e.Kind().String(), err)
	}
	return m.rebind(ctx, e, id)
}

func (m *Manager) updateRecord(ctx context.Context, e entity.RecordEntity) error {
	if err := m.store.UpdateRecord(ctx, e.Record()); err != nil {
		return storageErr("update "+e.Kind().String(), err)
	}
	return m.rebind(ctx, e, e.ID())
}

func (m *Manager) rebind(ctx context.Context, e entity.RecordEntity, id int64) error {
	stored, err := m.store.GetRecord(ctx, id)
	if err != nil {
		return storageErr("get "+e.Kind().String(), err)
	}
	return e.BindRecord(stored)
}
