// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/dialect"
	"github.com/canonical/resultrow/expr"
)

// RowSource gives positional access to the raw values of a record.
type RowSource = coltype.RowSource

// notInitializedValue marks a slot that was declared but never written to.
// It is distinct from a NULL, which is stored as nil.
type notInitializedValue struct{}

func (notInitializedValue) String() string {
	return "NotInitialized"
}

var notInitialized = notInitializedValue{}

func isNotInitialized(v any) bool {
	_, ok := v.(notInitializedValue)
	return ok
}

// ResultRow is a record retrieved from the database, addressed by the
// expressions that were projected rather than by column position.
//
// Raw values are read eagerly when the row is built and converted to their
// Go values on first access. A ResultRow must not be used from several
// goroutines while Set is being called.
type ResultRow struct {
	index   *FieldIndex
	data    []any
	dialect dialect.Dialect
	logger  logrus.FieldLogger
	cache   rowCache
}

func newRow(index *FieldIndex, data []any, o options) *ResultRow {
	return &ResultRow{
		index:   index,
		data:    data,
		dialect: o.dialect,
		logger:  o.logger,
	}
}

// Create reads the raw values of the record in src into a new row. Typed
// expressions read their position through their column type, anything else
// gets the value the source returns.
//
// The dialect the row converts values under is resolved from ctx, see
// [WithDialect].
func Create(ctx context.Context, src RowSource, index *FieldIndex, opts ...Option) (*ResultRow, error) {
	return create(src, index, resolveOptions(ctx, opts))
}

func create(src RowSource, index *FieldIndex, o options) (*ResultRow, error) {
	data := make([]any, index.Len())
	for pos, e := range index.exprs {
		var (
			v   any
			err error
		)
		if t := columnTypeOf(e); t != nil {
			v, err = t.ReadObject(src, pos)
		} else {
			v, err = src.ValueAt(pos)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %s at position %d", e, pos)
		}
		data[pos] = v
	}
	return newRow(index, data, o), nil
}

// FieldValue pairs an expression with its value.
type FieldValue struct {
	Expr  expr.Expression
	Value any
}

// CreateAndFillValues builds a row holding values that are already
// materialized, e.g. the values of an insert. Positions follow the order of
// values.
func CreateAndFillValues(ctx context.Context, values []FieldValue, opts ...Option) (*ResultRow, error) {
	exprs := make([]expr.Expression, len(values))
	data := make([]any, len(values))
	for i, fv := range values {
		exprs[i] = fv.Expr
		data[i] = fv.Value
	}
	index, err := NewFieldIndex(exprs...)
	if err != nil {
		return nil, err
	}
	return newRow(index, data, resolveOptions(ctx, opts)), nil
}

// CreateAndFillDefaults builds a row holding the defaults of columns, without
// a database round trip. A column gets the output of its default generator if
// it has one, NULL if its type is nullable, and is left uninitialized
// otherwise.
func CreateAndFillDefaults(ctx context.Context, columns []*expr.Column, opts ...Option) (*ResultRow, error) {
	exprs := make([]expr.Expression, len(columns))
	data := make([]any, len(columns))
	for i, c := range columns {
		exprs[i] = c
		v, err := defaultValueOrNotInitialized(c)
		if err != nil {
			return nil, err
		}
		data[i] = v
	}
	index, err := NewFieldIndex(exprs...)
	if err != nil {
		return nil, err
	}
	return newRow(index, data, resolveOptions(ctx, opts)), nil
}

func defaultValueOrNotInitialized(c *expr.Column) (any, error) {
	switch {
	case c.DefaultFunc != nil:
		v, err := coltype.UnwrapRecursive(c.Type, c.DefaultFunc())
		if err != nil {
			return nil, errors.Wrapf(err, "cannot unwrap default of %s", c)
		}
		return v, nil
	case c.Type != nil && c.Type.Nullable():
		return nil, nil
	}
	return notInitialized, nil
}

// Dialect returns the dialect the row converts values under. It may be nil.
func (r *ResultRow) Dialect() dialect.Dialect {
	return r.dialect
}

// FieldIndex returns the field index of the row.
func (r *ResultRow) FieldIndex() *FieldIndex {
	return r.index
}

// Get returns the value of e. It fails with [ErrNotInRecordSet] if e is not
// part of the row and with [ErrNotInitialized] if no value was written for it.
//
// The identifier column of a table with a composite identifier has no
// position of its own. Its value is assembled from the identifier columns of
// the table.
func (r *ResultRow) Get(e expr.Expression) (any, error) {
	if c, ok := compositeIdentifier(e); ok {
		return r.compositeID(c, true)
	}
	return r.get(e, true)
}

// GetOrNull returns the value of e, or nil if the row holds no value for it.
func (r *ResultRow) GetOrNull(e expr.Expression) (any, error) {
	if !r.HasValue(e) {
		return nil, nil
	}
	if c, ok := compositeIdentifier(e); ok {
		return r.compositeID(c, false)
	}
	return r.get(e, false)
}

// HasValue reports whether the row holds a value, possibly NULL, for e. It
// never fails and is the way to check a row before calling Get.
func (r *ResultRow) HasValue(e expr.Expression) bool {
	if c, ok := compositeIdentifier(e); ok {
		return r.allHaveValues(columnsToExprs(c.Table.IDColumns()))
	}
	if cc, ok := e.(*expr.CompositeColumn); ok {
		return r.allHaveValues(cc.RealColumns())
	}
	pos, ok := r.index.locate(e)
	return ok && !isNotInitialized(r.data[pos])
}

func (r *ResultRow) allHaveValues(exprs []expr.Expression) bool {
	if len(exprs) == 0 {
		return false
	}
	for _, e := range exprs {
		if !r.HasValue(e) {
			return false
		}
	}
	return true
}

// Set overwrites the raw value of e. The next Get converts v afresh.
func (r *ResultRow) Set(e expr.Expression, v any) error {
	pos, ok := r.index.locate(e)
	if !ok {
		return ErrNotInRecordSet.New(e)
	}
	r.data[pos] = v
	r.cache.remove(e)
	// Aliases and identifier columns sharing the slot, and composite
	// columns built from it, hold conversions of the old value too.
	r.cache.removeWhere(func(k expr.Expression) bool {
		if _, ok := k.(*expr.CompositeColumn); ok {
			return true
		}
		p, ok := r.index.locate(k)
		return ok && p == pos
	})
	return nil
}

// String renders the raw values of the row in field index order.
func (r *ResultRow) String() string {
	parts := make([]string, len(r.index.exprs))
	for pos, e := range r.index.exprs {
		parts[pos] = fmt.Sprintf("%s=%v", e, r.data[pos])
	}
	return strings.Join(parts, ", ")
}

// get resolves e through its slot, converting and caching the value. The
// nullability check runs on every call, cached or not.
func (r *ResultRow) get(e expr.Expression, checkNullability bool) (any, error) {
	if checkNullability {
		r.warnIfUnexpectedNull(e)
	}
	return r.cache.cached(e, func() (any, error) {
		raw, err := r.raw(e)
		if err != nil {
			return nil, err
		}
		return r.rawToValue(raw, e)
	})
}

// raw returns the raw value of e. Composite columns are restored from the
// raw values of their parts.
func (r *ResultRow) raw(e expr.Expression) (any, error) {
	if cc, ok := e.(*expr.CompositeColumn); ok {
		parts := make(map[expr.Expression]any, len(cc.Parts))
		for _, part := range cc.RealColumns() {
			v, err := r.raw(part)
			if err != nil {
				return nil, err
			}
			if isNotInitialized(v) {
				return notInitialized, nil
			}
			parts[part] = v
		}
		if cc.Restore == nil {
			return nil, errors.Errorf("composite column %s cannot be restored", cc)
		}
		v, err := cc.Restore(parts)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot restore %s", cc)
		}
		return v, nil
	}
	pos, ok := r.index.locate(e)
	if !ok {
		return nil, ErrNotInRecordSet.New(e)
	}
	return r.data[pos], nil
}

// warnIfUnexpectedNull reports a NULL held for a non-nullable column with a
// database default. It usually means the row was built before the database
// filled in the default and has to be read again.
func (r *ResultRow) warnIfUnexpectedNull(e expr.Expression) {
	c, ok := e.(*expr.Column)
	if !ok || c.Type == nil || c.Type.Nullable() || !hasNonNullDefault(c) {
		return
	}
	pos, ok := r.index.locate(c)
	if !ok || r.data[pos] != nil {
		return
	}
	r.logger.WithField("column", c.String()).Warn(
		"column is marked as not null and has a database default but returned null, it may have to be read again from the database")
}

func hasNonNullDefault(c *expr.Column) bool {
	if c.DatabaseDefault == nil {
		return false
	}
	if l, ok := c.DatabaseDefault.(*expr.Literal); ok && strings.EqualFold(strings.TrimSpace(l.SQL), "NULL") {
		return false
	}
	return true
}

// compositeID assembles the identifier of a table with a composite
// identifier from its identifier columns.
func (r *ResultRow) compositeID(c *expr.Column, checkNullability bool) (any, error) {
	cid := expr.NewCompositeID()
	for _, idc := range c.Table.IDColumns() {
		v, err := r.get(idc, checkNullability)
		if err != nil {
			return nil, err
		}
		if id, ok := v.(expr.EntityID); ok {
			v = id.Value
		}
		cid.Set(idc, v)
	}
	return expr.EntityID{Table: c.Table, Value: cid}, nil
}

func compositeIdentifier(e expr.Expression) (*expr.Column, bool) {
	c, ok := e.(*expr.Column)
	if !ok || !c.IsEntityIdentifier() || !c.Table.IsCompositeID() {
		return nil, false
	}
	return c, true
}

func columnsToExprs(cols []*expr.Column) []expr.Expression {
	exprs := make([]expr.Expression, len(cols))
	for i, c := range cols {
		exprs[i] = c
	}
	return exprs
}

// GetAs returns the value of e as a T. A NULL gives the zero value of T.
func GetAs[T any](r *ResultRow, e expr.Expression) (T, error) {
	var zero T
	v, err := r.Get(e)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, ErrTypeMismatch.New(e, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return t, nil
}
