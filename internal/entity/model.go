package entity

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gistpen/internal/storage"
)

// model is the state shared by every kind.
type model struct {
	kind     Kind
	schema   *kindSchema
	record   *storage.Record
	term     *storage.Term
	table    Table
	original Table
}

func newRecordModel(k Kind, status string) model {
	m := model{
		kind:     k,
		schema:   schemaFor(k),
		record:   &storage.Record{Type: k.RecordType(), Status: status},
		original: Table{},
	}
	m.table = m.defaultTable()
	return m
}

func newTermModel(k Kind) model {
	m := model{
		kind:     k,
		schema:   schemaFor(k),
		term:     &storage.Term{},
		original: Table{},
	}
	m.table = m.defaultTable()
	return m
}

func (m *model) defaultTable() Table {
	t := make(Table, len(m.schema.table))
	for _, tk := range m.schema.table {
		t[tk.name] = mustRaw(tk.def)
	}
	return t
}

func (m *model) sealed() {}

func (m *model) Kind() Kind {
	return m.kind
}

func (m *model) ID() int64 {
	if m.record != nil {
		return m.record.ID
	}
	if m.term != nil {
		return m.term.ID
	}
	return 0
}

func (m *model) Table() Table {
	return m.table.Clone()
}

func (m *model) Original() Table {
	return m.original.Clone()
}

func (m *model) ChangedTable() Table {
	return Diff(m.original, m.table)
}

func (m *model) SyncOriginal() {
	m.original = m.table.Clone()
}

// HydrateTable copies the declared keys of t into the current table.
func (m *model) HydrateTable(t Table) {
	for _, tk := range m.schema.table {
		if v, ok := t[tk.name]; ok {
			m.table[tk.name] = append(json.RawMessage(nil), v...)
		}
	}
}

// Record returns a copy of the underlying record, or nil for term kinds.
func (m *model) Record() *storage.Record {
	return m.record.Clone()
}

func (m *model) BindRecord(rec *storage.Record) error {
	if m.record == nil || rec == nil {
		return fmt.Errorf("%w: %s is not record backed", ErrKindMismatch, m.kind)
	}
	if m.record.ID != 0 && rec.ID != m.record.ID {
		return fmt.Errorf("%w: %d -> %d", ErrIDReassigned, m.record.ID, rec.ID)
	}
	m.record = rec.Clone()
	return nil
}

// Term returns a copy of the underlying term, or nil for record kinds.
func (m *model) Term() *storage.Term {
	return m.term.Clone()
}

func (m *model) BindTerm(t *storage.Term) error {
	if m.term == nil || t == nil {
		return fmt.Errorf("%w: %s is not term backed", ErrKindMismatch, m.kind)
	}
	if m.term.ID != 0 && t.ID != m.term.ID {
		return fmt.Errorf("%w: %d -> %d", ErrIDReassigned, m.term.ID, t.ID)
	}
	m.term = t.Clone()
	return nil
}

func (m *model) SetAttribute(key string, value any, g Guard) error {
	if f, ok := m.schema.fields[key]; ok {
		if f.readOnly || (f.guarded && g == Guarded) {
			return fmt.Errorf("%w: %s.%s", ErrGuarded, m.kind, key)
		}
		return f.set(m, value)
	}

	if tk, ok := m.schema.tableKey(key); ok {
		v, err := tk.coerce(value)
		if err != nil {
			return invalid(key, value, err)
		}
		m.table[key] = mustRaw(v)
		return nil
	}

	return fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, m.kind, key)
}

func (m *model) Attribute(key string) (any, bool) {
	if f, ok := m.schema.fields[key]; ok {
		return f.get(m), true
	}
	if _, ok := m.schema.tableKey(key); ok {
		return m.tableValue(key), true
	}
	return nil, false
}

// tableValue decodes key, falling back to its default when the stored value
// does not fit the attribute type.
func (m *model) tableValue(key string) any {
	tk, ok := m.schema.tableKey(key)
	if !ok {
		return nil
	}

	var decoded any
	if raw, ok := m.table[key]; ok {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			decoded = nil
		}
	}
	if decoded == nil {
		decoded = tk.def
	}

	v, err := tk.coerce(decoded)
	if err != nil {
		v, _ = tk.coerce(tk.def)
	}
	return v
}

func (m *model) tableString(key string) string {
	s, _ := m.tableValue(key).(string)
	return s
}

func (m *model) tableInt64(key string) int64 {
	n, _ := m.tableValue(key).(int64)
	return n
}

func (m *model) tableInt64s(key string) []int64 {
	ids, _ := m.tableValue(key).([]int64)
	return ids
}

func (m *model) Attributes() map[string]any {
	out := make(map[string]any, len(m.schema.fields)+len(m.schema.table))
	for key, f := range m.schema.fields {
		out[key] = f.get(m)
	}
	for _, tk := range m.schema.table {
		out[tk.name] = m.tableValue(tk.name)
	}
	return out
}
