package entity

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/spf13/cast"
)

// field describes one core attribute of a kind.
type field struct {
	guarded  bool
	readOnly bool
	get      func(m *model) any
	set      func(m *model, v any) error
}

func (f field) protect() field {
	f.guarded = true
	return f
}

// tableKey describes one extension attribute stored as metadata.
type tableKey struct {
	name   string
	def    any
	coerce func(v any) (any, error)
}

type kindSchema struct {
	fields map[string]field
	table  []tableKey
}

func (s *kindSchema) tableKey(name string) (tableKey, bool) {
	for _, tk := range s.table {
		if tk.name == name {
			return tk, true
		}
	}
	return tableKey{}, false
}

func schemaFor(k Kind) *kindSchema {
	switch k {
	case KindRepo:
		return repoSchema
	case KindBlob:
		return blobSchema
	case KindLanguage:
		return languageSchema
	case KindCommit:
		return commitSchema
	case KindState:
		return stateSchema
	default:
		return nil
	}
}

func invalid(key string, v any, err error) error {
	return fmt.Errorf("%w: %s=%v: %v", ErrInvalidValue, key, v, err)
}

func idField() field {
	return field{
		readOnly: true,
		get:      func(m *model) any { return m.ID() },
	}
}

func stringField(key string, sel func(r *storage.Record) *string) field {
	return field{
		get: func(m *model) any { return *sel(m.record) },
		set: func(m *model, v any) error {
			s, err := cast.ToStringE(v)
			if err != nil {
				return invalid(key, v, err)
			}
			*sel(m.record) = s
			return nil
		},
	}
}

func int64Field(key string, sel func(r *storage.Record) *int64) field {
	return field{
		get: func(m *model) any { return *sel(m.record) },
		set: func(m *model, v any) error {
			n, err := cast.ToInt64E(v)
			if err != nil {
				return invalid(key, v, err)
			}
			*sel(m.record) = n
			return nil
		},
	}
}

func timeField(key string, sel func(r *storage.Record) *time.Time) field {
	return field{
		get: func(m *model) any { return *sel(m.record) },
		set: func(m *model, v any) error {
			t, err := cast.ToTimeE(v)
			if err != nil {
				return invalid(key, v, err)
			}
			*sel(m.record) = t.UTC()
			return nil
		},
	}
}

func toString(v any) (any, error) {
	return cast.ToStringE(v)
}

func toInt64(v any) (any, error) {
	return cast.ToInt64E(v)
}

// toInt64Slice accepts any slice or array of integer-like values, or a JSON
// array encoded as a string.
func toInt64Slice(v any) (any, error) {
	switch s := v.(type) {
	case nil:
		return []int64{}, nil
	case []int64:
		return append([]int64{}, s...), nil
	case string:
		if s == "" {
			return []int64{}, nil
		}
		var raw []any
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, fmt.Errorf("unable to cast %q to []int64: %w", s, err)
		}
		return toInt64Slice(raw)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("unable to cast %#v of type %T to []int64", v, v)
	}

	out := make([]int64, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, err := cast.ToInt64E(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
