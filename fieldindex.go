// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"fmt"
	"sync"

	"github.com/canonical/resultrow/expr"
)

// FieldIndex maps the expressions projected by a query to their positions in
// the raw record. Positions are unique and contiguous over [0, Len()).
//
// A FieldIndex is immutable once built and can be shared by all the rows of
// a result set.
type FieldIndex struct {
	exprs     []expr.Expression
	positions map[expr.Expression]int

	// fallback maps the expressions reachable through an identifier column
	// or an expression alias to the position of the first such column. It is
	// built on first use.
	fallbackOnce sync.Once
	fallback     map[expr.Expression]int
}

// NewFieldIndex returns a field index placing each expression at its
// position in exprs.
func NewFieldIndex(exprs ...expr.Expression) (*FieldIndex, error) {
	fi := &FieldIndex{
		exprs:     make([]expr.Expression, len(exprs)),
		positions: make(map[expr.Expression]int, len(exprs)),
	}
	for i, e := range exprs {
		if e == nil {
			return nil, ErrInvalidFieldIndex.New(fmt.Sprintf("nil expression at position %d", i))
		}
		if prev, ok := fi.positions[e]; ok {
			return nil, ErrInvalidFieldIndex.New(fmt.Sprintf("%s at positions %d and %d", e, prev, i))
		}
		fi.exprs[i] = e
		fi.positions[e] = i
	}
	return fi, nil
}

// MustFieldIndex is the same as [NewFieldIndex] except that it panics on
// error.
func MustFieldIndex(exprs ...expr.Expression) *FieldIndex {
	fi, err := NewFieldIndex(exprs...)
	if err != nil {
		panic(err)
	}
	return fi
}

// FieldIndexFromMap builds a field index from an explicit mapping. The
// positions must cover [0, len(m)) exactly once.
func FieldIndexFromMap(m map[expr.Expression]int) (*FieldIndex, error) {
	exprs := make([]expr.Expression, len(m))
	for e, pos := range m {
		if pos < 0 || pos >= len(m) {
			return nil, ErrInvalidFieldIndex.New(fmt.Sprintf("position %d of %s out of range [0, %d)", pos, e, len(m)))
		}
		if exprs[pos] != nil {
			return nil, ErrInvalidFieldIndex.New(fmt.Sprintf("%s and %s share position %d", exprs[pos], e, pos))
		}
		exprs[pos] = e
	}
	return NewFieldIndex(exprs...)
}

// Len returns the number of positions.
func (fi *FieldIndex) Len() int {
	return len(fi.exprs)
}

// Expressions returns the indexed expressions in position order.
func (fi *FieldIndex) Expressions() []expr.Expression {
	return append([]expr.Expression(nil), fi.exprs...)
}

// Position returns the position of e if it is directly indexed.
func (fi *FieldIndex) Position(e expr.Expression) (int, bool) {
	pos, ok := fi.positions[e]
	return pos, ok
}

// locate returns the position backing e. An expression that is not indexed
// itself resolves to the first indexed column that is either an identifier
// column wrapping e or an alias of e. Result sets are often indexed by the
// identifier column while callers address the plain column, or the other way
// round through an alias.
func (fi *FieldIndex) locate(e expr.Expression) (int, bool) {
	if pos, ok := fi.positions[e]; ok {
		return pos, true
	}
	fi.fallbackOnce.Do(fi.buildFallback)
	pos, ok := fi.fallback[e]
	return pos, ok
}

func (fi *FieldIndex) buildFallback() {
	fi.fallback = map[expr.Expression]int{}
	add := func(target expr.Expression, pos int) {
		if _, ok := fi.fallback[target]; !ok {
			fi.fallback[target] = pos
		}
	}
	for pos, e := range fi.exprs {
		switch e := e.(type) {
		case *expr.Column:
			if inner, ok := expr.IDColumnOf(e); ok {
				add(inner, pos)
			}
		case *expr.ExpressionAlias:
			add(e.Delegate, pos)
		}
	}
}
