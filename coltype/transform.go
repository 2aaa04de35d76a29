// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package coltype

import (
	"github.com/canonical/resultrow/dialect"
)

// Transform is a column type that stores values of Delegate in the database
// and exposes them as a different Go type. Wrap turns a delegate value into
// the exposed value, Unwrap does the opposite.
//
// Transform must be used through a pointer.
type Transform struct {
	Delegate ColumnType
	Wrap     func(any) (any, error)
	Unwrap   func(any) (any, error)
}

func (t *Transform) SQLType() string { return t.Delegate.SQLType() }
func (t *Transform) Nullable() bool  { return t.Delegate.Nullable() }

func (t *Transform) ReadObject(src RowSource, index int) (any, error) {
	return t.Delegate.ReadObject(src, index)
}

// ValueFromDB converts raw with the delegate then wraps the result.
func (t *Transform) ValueFromDB(d dialect.Dialect, raw any) (any, error) {
	v, err := t.Delegate.ValueFromDB(d, raw)
	if err != nil {
		return nil, err
	}
	if v == nil || t.Wrap == nil {
		return v, nil
	}
	return t.Wrap(v)
}

// UnwrapRecursive peels every transform layer of t off v, outermost first,
// giving the value the innermost column type stores.
func UnwrapRecursive(t ColumnType, v any) (any, error) {
	for {
		tr, ok := t.(*Transform)
		if !ok || v == nil {
			return v, nil
		}
		if tr.Unwrap != nil {
			var err error
			if v, err = tr.Unwrap(v); err != nil {
				return nil, err
			}
		}
		t = tr.Delegate
	}
}
