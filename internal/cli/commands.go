package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/manager"
	"github.com/spf13/cast"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// Find handles "find <kind> <id> [params-json]".
func (a *App) Find(ctx context.Context, args string) error {
	parts := splitArgs(args, 3)
	if len(parts) < 2 {
		return a.fail(usage("find <kind> <id> [params-json]"))
	}

	k, id, err := parseTarget(parts[0], parts[1])
	if err != nil {
		return a.fail(err)
	}
	p, err := parseParams(parts[2:])
	if err != nil {
		return a.fail(err)
	}

	e, err := a.manager.Find(ctx, k, id, p)
	if err != nil {
		return a.fail(err)
	}
	return a.printJSON(e.Attributes())
}

// FindBy handles "findby <kind> [params-json]".
func (a *App) FindBy(ctx context.Context, args string) error {
	parts := splitArgs(args, 2)
	if len(parts) < 1 {
		return a.fail(usage("findby <kind> [params-json]"))
	}

	k, err := entity.ParseKind(parts[0])
	if err != nil {
		return a.fail(err)
	}
	p, err := parseParams(parts[1:])
	if err != nil {
		return a.fail(err)
	}

	found, err := a.manager.FindBy(ctx, k, p)
	if err != nil {
		return a.fail(err)
	}

	out := make([]map[string]any, 0, found.Len())
	for _, e := range found.Items() {
		out = append(out, e.Attributes())
	}
	return a.printJSON(out)
}

// Create handles "create <kind> <data-json>".
func (a *App) Create(ctx context.Context, args string) error {
	parts := splitArgs(args, 2)
	if len(parts) < 2 {
		return a.fail(usage("create <kind> <data-json>"))
	}

	k, err := entity.ParseKind(parts[0])
	if err != nil {
		return a.fail(err)
	}
	data, err := parseObject(parts[1])
	if err != nil {
		return a.fail(err)
	}

	e, err := a.manager.Create(ctx, k, data)
	if err != nil {
		if e == nil {
			return a.fail(err)
		}
		_ = a.fail(err)
	}
	return a.printJSON(e.Attributes())
}

// Update handles "update <kind> <id> <attrs-json>": the entity is loaded,
// the attributes are applied guarded and the entity is persisted.
func (a *App) Update(ctx context.Context, args string) error {
	parts := splitArgs(args, 3)
	if len(parts) < 3 {
		return a.fail(usage("update <kind> <id> <attrs-json>"))
	}

	k, id, err := parseTarget(parts[0], parts[1])
	if err != nil {
		return a.fail(err)
	}
	attrs, err := parseObject(parts[2])
	if err != nil {
		return a.fail(err)
	}

	var p manager.Params
	if k == entity.KindBlob || k == entity.KindState {
		p = manager.With(entity.RelationLanguage)
	}
	e, err := a.manager.Find(ctx, k, id, p)
	if err != nil {
		return a.fail(err)
	}

	if skipped := entity.Fill(e, attrs, entity.Guarded); len(skipped) > 0 {
		a.warn("skipped attributes: %s", strings.Join(skipped, ", "))
	}

	saved, err := a.manager.Persist(ctx, e)
	if err != nil {
		if saved == nil {
			return a.fail(err)
		}
		_ = a.fail(err)
	}
	return a.printJSON(saved.Attributes())
}

// Delete handles "delete <kind> <id> [force]".
func (a *App) Delete(ctx context.Context, args string) error {
	parts := splitArgs(args, 3)
	if len(parts) < 2 {
		return a.fail(usage("delete <kind> <id> [force]"))
	}

	k, id, err := parseTarget(parts[0], parts[1])
	if err != nil {
		return a.fail(err)
	}

	force := false
	if len(parts) == 3 {
		if parts[2] == "force" {
			force = true
		} else if force, err = cast.ToBoolE(parts[2]); err != nil {
			return a.fail(fmt.Errorf("%w: force: %v", common.ErrInvalidArgument, err))
		}
	}

	e, err := a.manager.Find(ctx, k, id, manager.Params{})
	if err != nil {
		return a.fail(err)
	}
	deleted, err := a.manager.Delete(ctx, e, force)
	if err != nil {
		if deleted == nil {
			return a.fail(err)
		}
		_ = a.fail(err)
	}

	a.log.Info(ctx, "entity deleted", "kind", k.String(), "id", id, "force", force)
	return a.printJSON(map[string]any{"deleted": id, "kind": k.String(), "force": force})
}

func parseTarget(kind, id string) (entity.Kind, int64, error) {
	k, err := entity.ParseKind(kind)
	if err != nil {
		return 0, 0, err
	}
	n, err := cast.ToInt64E(id)
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("%w: id %q", common.ErrInvalidArgument, id)
	}
	return k, n, nil
}

func parseParams(rest []string) (manager.Params, error) {
	if len(rest) == 0 {
		return manager.Params{}, nil
	}
	raw, err := parseObject(rest[0])
	if err != nil {
		return manager.Params{}, err
	}
	return manager.ParseParams(raw)
}

func parseObject(s string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON object: %v", common.ErrInvalidArgument, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", common.ErrInvalidArgument)
	}
	return out, nil
}
