package manager

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/spf13/cast"
)

// Params constrains find and find_by. With names the relations to eager-load,
// each with its own nested params.
type Params struct {
	With map[string]Params

	Status  string
	Slug    string
	RepoID  int64
	BlobID  int64
	OrderBy string
	Order   string
	Limit   int
	Offset  int
}

// With builds Params that eager-load the given relation paths. A dotted path
// such as "blobs.language" loads nested relations.
func With(paths ...string) Params {
	var p Params
	for _, path := range paths {
		p.addPath(path)
	}
	return p
}

func (p *Params) addPath(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	name, rest, _ := strings.Cut(path, ".")
	if p.With == nil {
		p.With = make(map[string]Params)
	}
	nested := p.With[name]
	nested.addPath(rest)
	p.With[name] = nested
}

// Relations returns the names in With in sorted order.
func (p Params) Relations() []string {
	names := make([]string, 0, len(p.With))
	for name := range p.With {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loads reports whether relation name is requested.
func (p Params) Loads(name string) bool {
	_, ok := p.With[name]
	return ok
}

func (p Params) recordFilter(recordType string) storage.RecordFilter {
	return storage.RecordFilter{
		Type:    recordType,
		Status:  p.Status,
		Slug:    p.Slug,
		OrderBy: p.OrderBy,
		Order:   p.Order,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
}

// ParseParams converts loosely typed params, e.g. decoded JSON, into Params.
// Unrecognized keys are ignored.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	var err error

	for key, v := range raw {
		switch key {
		case "with":
			p.With, err = ParseWith(v)
		case "status", "post_status":
			p.Status, err = cast.ToStringE(v)
		case "slug", "name":
			p.Slug, err = cast.ToStringE(v)
		case "repo_id":
			p.RepoID, err = cast.ToInt64E(v)
		case "blob_id":
			p.BlobID, err = cast.ToInt64E(v)
		case "orderby", "order_by":
			p.OrderBy, err = cast.ToStringE(v)
		case "order":
			p.Order, err = cast.ToStringE(v)
		case "limit", "posts_per_page":
			p.Limit, err = cast.ToIntE(v)
		case "offset":
			p.Offset, err = cast.ToIntE(v)
		default:
			continue
		}
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidArgument, key, err)
		}
	}
	return p, nil
}

// ParseWith accepts a relation path, a list of paths, or a map of relation
// name to nested params.
func ParseWith(v any) (map[string]Params, error) {
	var p Params

	switch w := v.(type) {
	case nil:
		return nil, nil
	case string:
		p.addPath(w)
	case []string:
		for _, path := range w {
			p.addPath(path)
		}
	case []any:
		for _, item := range w {
			path, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: with: list item %v (%T) is not a relation name", common.ErrInvalidArgument, item, item)
			}
			p.addPath(path)
		}
	case map[string]Params:
		for name, nested := range w {
			if p.With == nil {
				p.With = make(map[string]Params, len(w))
			}
			p.With[name] = nested
		}
	case map[string]any:
		for name, raw := range w {
			nested, err := parseNested(raw)
			if err != nil {
				return nil, fmt.Errorf("with.%s: %w", name, err)
			}
			if p.With == nil {
				p.With = make(map[string]Params, len(w))
			}
			p.With[name] = nested
		}
	default:
		return nil, fmt.Errorf("%w: with: unsupported value of type %T", common.ErrInvalidArgument, v)
	}

	return p.With, nil
}

func parseNested(raw any) (Params, error) {
	switch n := raw.(type) {
	case nil, bool:
		return Params{}, nil
	case map[string]any:
		return ParseParams(n)
	default:
		return Params{}, fmt.Errorf("%w: nested params of type %T", common.ErrInvalidArgument, raw)
	}
}
