// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/expr"
)

// cacheKey identifies a conversion. The column type is part of the key so a
// column read under one type never hands its value to the same column read
// under another, e.g. a plain column and its identifier-wrapping type.
type cacheKey struct {
	expr expr.Expression
	typ  coltype.ColumnType
}

func keyFor(e expr.Expression) cacheKey {
	k := cacheKey{expr: e}
	if c, ok := e.(*expr.Column); ok {
		k.typ = c.Type
	}
	return k
}

// rowCache memoizes the converted values of a result row so each
// interpretation of a raw value is converted at most once. Failed
// conversions are not cached.
//
// The cache is owned by a single row and is not safe for concurrent
// mutation.
type rowCache struct {
	values map[cacheKey]any
}

// cached returns the value stored for e, calling compute to produce and store
// it if there is none.
func (rc *rowCache) cached(e expr.Expression, compute func() (any, error)) (any, error) {
	k := keyFor(e)
	if v, ok := rc.values[k]; ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	if rc.values == nil {
		rc.values = map[cacheKey]any{}
	}
	rc.values[k] = v
	return v, nil
}

// remove evicts every entry for e, whichever column type it was keyed under.
func (rc *rowCache) remove(e expr.Expression) {
	rc.removeWhere(func(k expr.Expression) bool { return k == e })
}

// removeWhere evicts the entries whose expression matches.
func (rc *rowCache) removeWhere(match func(expr.Expression) bool) {
	for k := range rc.values {
		if match(k.expr) {
			delete(rc.values, k)
		}
	}
}

func (rc *rowCache) len() int {
	return len(rc.values)
}
