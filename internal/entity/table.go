package entity

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Table holds extension attributes as JSON values keyed by attribute name.
type Table map[string]json.RawMessage

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return Table{}
	}
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// Keys returns the keys of t in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MetaValue renders the stored form of key.
func (t Table) MetaValue(key string) string {
	return string(t[key])
}

// Diff returns the entries of current that are absent from original or hold
// a different value. Neither argument is modified.
func Diff(original, current Table) Table {
	changed := Table{}
	for k, v := range current {
		if o, ok := original[k]; ok && bytes.Equal(o, v) {
			continue
		}
		changed[k] = append(json.RawMessage(nil), v...)
	}
	return changed
}

// RawFromMeta converts a stored metadata value into a table value. Values
// that are not valid JSON are kept as JSON strings.
func RawFromMeta(v string) json.RawMessage {
	if v != "" && json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	b, _ := json.Marshal(v)
	return b
}

func mustRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
