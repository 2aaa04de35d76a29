// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/expr"
)

// booleanType converts conditions, which have no column type of their own.
var booleanType coltype.ColumnType = coltype.Boolean{}

// rawToValue converts a raw value into the Go value of e under the row's
// dialect. Aliases only rename their delegate, so they convert like it.
func (r *ResultRow) rawToValue(raw any, e expr.Expression) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if isNotInitialized(raw) {
		return nil, ErrNotInitialized.New(e)
	}
	switch e := e.(type) {
	case *expr.Alias:
		return r.rawToValue(raw, e.Delegate)
	case *expr.ExpressionAlias:
		return r.rawToValue(raw, e.Delegate)
	case *expr.Condition:
		return booleanType.ValueFromDB(r.dialect, raw)
	case expr.Typed:
		if t := e.ColumnType(); t != nil {
			return t.ValueFromDB(r.dialect, raw)
		}
	}
	return raw, nil
}

// columnTypeOf returns the declared column type of e, or nil.
func columnTypeOf(e expr.Expression) coltype.ColumnType {
	if t, ok := e.(expr.Typed); ok {
		return t.ColumnType()
	}
	return nil
}
