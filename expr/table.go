// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"github.com/canonical/resultrow/coltype"
)

// Table is a declared database table.
type Table struct {
	Name string

	columns   []*Column
	id        *Column
	idColumns []*Column
	composite bool
}

// NewTable returns an empty table declaration.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) String() string {
	return t.Name
}

// Column declares a column on the table and returns it.
func (t *Table) Column(name string, typ coltype.ColumnType, opts ...ColumnOption) *Column {
	c := &Column{Table: t, Name: name, Type: typ}
	for _, opt := range opts {
		opt(c)
	}
	t.columns = append(t.columns, c)
	return c
}

// Columns returns the columns of the table in declaration order.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// SetID makes col the identifier of the table. The returned column takes
// col's place in the table and holds an [EntityID] wrapping col's value. col
// stays usable to address the plain value.
func (t *Table) SetID(col *Column) *Column {
	id := t.wrapIdentifier(col)
	t.id = id
	t.idColumns = []*Column{id}
	t.composite = false
	return id
}

// AddIDColumn makes col one of the columns of the table's composite
// identifier. The returned column takes col's place in the table. After the
// first call, [Table.ID] returns a composite identifier column which has no
// backing value of its own.
func (t *Table) AddIDColumn(col *Column) *Column {
	if !t.composite {
		t.id = &Column{Table: t, Name: "id", Type: &EntityIDColumnType{Table: t}}
		t.idColumns = nil
		t.composite = true
	}
	id := t.wrapIdentifier(col)
	t.idColumns = append(t.idColumns, id)
	return id
}

func (t *Table) wrapIdentifier(col *Column) *Column {
	id := &Column{
		Table:           t,
		Name:            col.Name,
		Type:            &EntityIDColumnType{IDColumn: col, Table: t},
		DatabaseDefault: col.DatabaseDefault,
		DefaultFunc:     col.DefaultFunc,
	}
	for i, c := range t.columns {
		if c == col {
			t.columns[i] = id
			return id
		}
	}
	t.columns = append(t.columns, id)
	return id
}

// ID returns the identifier column of the table, or nil if it has none.
func (t *Table) ID() *Column {
	return t.id
}

// IDColumns returns the columns the identifier is made of.
func (t *Table) IDColumns() []*Column {
	return append([]*Column(nil), t.idColumns...)
}

// IsCompositeID reports whether the identifier of the table is assembled
// from several columns.
func (t *Table) IsCompositeID() bool {
	return t.composite
}
