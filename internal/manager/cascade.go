package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
)

// Op names a child operation performed as part of a parent operation.
type Op string

const (
	OpCreate  Op = "create"
	OpPersist Op = "persist"
	OpTrash   Op = "trash"
	OpDelete  Op = "delete"
)

// ChildResult is the outcome of one child operation. ID is zero when a
// child create failed before a record was stored.
type ChildResult struct {
	Kind entity.Kind
	ID   int64
	Op   Op
	Err  error
}

func (r ChildResult) Failed() bool {
	return r.Err != nil
}

func (r ChildResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s %d: %v", r.Op, r.Kind, r.ID, r.Err)
	}
	return fmt.Sprintf("%s %s %d: ok", r.Op, r.Kind, r.ID)
}

// CascadePolicy decides whether the child results of a parent operation
// fail it. A non-nil error is returned by the parent together with the
// parent entity; completed writes are not rolled back.
type CascadePolicy func(results []ChildResult) error

// BestEffort ignores failed children.
func BestEffort([]ChildResult) error {
	return nil
}

// FailOnAny fails the parent when any child failed.
func FailOnAny(results []ChildResult) error {
	var errs []error
	for _, r := range results {
		if r.Failed() {
			errs = append(errs, fmt.Errorf("%s %s %d: %w", r.Op, r.Kind, r.ID, r.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d child operation(s) failed: %w", common.ErrStorageFailure, len(errs), errors.Join(errs...))
}

// cascade logs failed children and applies the policy.
func (m *Manager) cascade(ctx context.Context, parent entity.Entity, results []ChildResult) error {
	for _, r := range results {
		if r.Failed() {
			m.log.Warn(ctx, "child operation skipped",
				"parent", parent.Kind().String(), "parent_id", parent.ID(),
				"op", string(r.Op), "kind", r.Kind.String(), "id", r.ID, "error", r.Err)
		}
	}
	return m.policy(results)
}
