// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/dialect"
)

// EntityID is the identifier of a row of Table.
type EntityID struct {
	Table *Table
	Value any
}

func (id EntityID) String() string {
	return fmt.Sprint(id.Value)
}

// CompositeID is the value of an identifier made of several columns. The
// parts keep the order in which they are set.
type CompositeID struct {
	columns []*Column
	values  map[*Column]any
}

// NewCompositeID returns an empty composite identifier.
func NewCompositeID() *CompositeID {
	return &CompositeID{values: map[*Column]any{}}
}

// Set sets the part of the identifier held by col.
func (id *CompositeID) Set(col *Column, v any) {
	if _, ok := id.values[col]; !ok {
		id.columns = append(id.columns, col)
	}
	id.values[col] = v
}

// Get returns the part of the identifier held by col.
func (id *CompositeID) Get(col *Column) (any, bool) {
	v, ok := id.values[col]
	return v, ok
}

// Columns returns the identifier columns in order.
func (id *CompositeID) Columns() []*Column {
	return append([]*Column(nil), id.columns...)
}

// Values returns the parts of the identifier in column order.
func (id *CompositeID) Values() []any {
	vals := make([]any, len(id.columns))
	for i, c := range id.columns {
		vals[i] = id.values[c]
	}
	return vals
}

func (id *CompositeID) String() string {
	parts := make([]string, len(id.columns))
	for i, c := range id.columns {
		parts[i] = fmt.Sprintf("%s=%v", c.Name, id.values[c])
	}
	return "CompositeID(" + strings.Join(parts, ", ") + ")"
}

// EntityIDColumnType is the type of an identifier column. Its values are
// [EntityID]s wrapping the values of IDColumn. IDColumn is nil for the
// identifier column of a table with a composite identifier.
//
// EntityIDColumnType must be used through a pointer.
type EntityIDColumnType struct {
	IDColumn *Column
	Table    *Table
}

func (t *EntityIDColumnType) SQLType() string {
	if t.IDColumn == nil {
		return "COMPOSITE"
	}
	return t.IDColumn.Type.SQLType()
}

func (t *EntityIDColumnType) Nullable() bool {
	return t.IDColumn != nil && t.IDColumn.Type.Nullable()
}

func (t *EntityIDColumnType) ReadObject(src coltype.RowSource, index int) (any, error) {
	if t.IDColumn == nil {
		return src.ValueAt(index)
	}
	return t.IDColumn.Type.ReadObject(src, index)
}

// ValueFromDB converts raw with the type of IDColumn and wraps it in an
// EntityID of the table.
func (t *EntityIDColumnType) ValueFromDB(d dialect.Dialect, raw any) (any, error) {
	if id, ok := raw.(EntityID); ok {
		return id, nil
	}
	if t.IDColumn == nil {
		if cid, ok := raw.(*CompositeID); ok {
			return EntityID{Table: t.Table, Value: cid}, nil
		}
		return nil, errors.Errorf("cannot convert %T to composite identifier of %s", raw, t.Table)
	}
	v, err := t.IDColumn.Type.ValueFromDB(d, raw)
	if err != nil {
		return nil, err
	}
	return EntityID{Table: t.Table, Value: v}, nil
}

// IDColumnOf returns the plain column wrapped by an identifier column.
func IDColumnOf(c *Column) (*Column, bool) {
	t, ok := c.Type.(*EntityIDColumnType)
	if !ok || t.IDColumn == nil {
		return nil, false
	}
	return t.IDColumn, true
}
