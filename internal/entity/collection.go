package entity

import "fmt"

// Collection is an ordered list of entities of a single kind.
type Collection[T Entity] struct {
	kind  Kind
	items []T
}

func NewCollection[T Entity](k Kind, items ...T) *Collection[T] {
	c := &Collection[T]{kind: k}
	for _, item := range items {
		// items of another kind are dropped
		_ = c.Add(item)
	}
	return c
}

func (c *Collection[T]) Kind() Kind {
	return c.kind
}

// Add appends item, rejecting entities of another kind.
func (c *Collection[T]) Add(item T) error {
	if item.Kind() != c.kind {
		return fmt.Errorf("%w: %s collection cannot hold %s", ErrKindMismatch, c.kind, item.Kind())
	}
	c.items = append(c.items, item)
	return nil
}

func (c *Collection[T]) At(i int) (T, bool) {
	if c == nil || i < 0 || i >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns the entities in order. The slice is a copy.
func (c *Collection[T]) Items() []T {
	if c == nil {
		return nil
	}
	return append([]T(nil), c.items...)
}

// Filter returns a new collection with the entities keep accepts.
func (c *Collection[T]) Filter(keep func(T) bool) *Collection[T] {
	if c == nil {
		return nil
	}
	out := &Collection[T]{kind: c.kind}
	for _, item := range c.items {
		if keep(item) {
			out.items = append(out.items, item)
		}
	}
	return out
}

func (c *Collection[T]) IDs() []int64 {
	ids := make([]int64, 0, c.Len())
	for _, item := range c.Items() {
		ids = append(ids, item.ID())
	}
	return ids
}

// Contains reports whether an entity with a non-zero id equal to id is present.
func (c *Collection[T]) Contains(id int64) bool {
	if id == 0 {
		return false
	}
	for _, item := range c.Items() {
		if item.ID() == id {
			return true
		}
	}
	return false
}

// Clone returns a collection sharing the same entities.
func (c *Collection[T]) Clone() *Collection[T] {
	if c == nil {
		return nil
	}
	return &Collection[T]{kind: c.kind, items: append([]T(nil), c.items...)}
}

// Widen converts c into a collection of the Entity interface.
func Widen[T Entity](c *Collection[T]) *Collection[Entity] {
	if c == nil {
		return nil
	}
	out := &Collection[Entity]{kind: c.kind}
	for _, item := range c.items {
		out.items = append(out.items, item)
	}
	return out
}

// Narrow converts c into a typed collection, dropping entities of other types.
func Narrow[T Entity](c *Collection[Entity]) *Collection[T] {
	if c == nil {
		return nil
	}
	out := &Collection[T]{kind: c.kind}
	for _, item := range c.items {
		if v, ok := item.(T); ok {
			out.items = append(out.items, v)
		}
	}
	return out
}

func serializeAll[T Entity](c *Collection[T]) []map[string]any {
	out := make([]map[string]any, 0, c.Len())
	for _, item := range c.Items() {
		out = append(out, item.Attributes())
	}
	return out
}
