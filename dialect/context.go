// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dialect

import (
	"context"
	"sync/atomic"
)

type contextKey struct{}

// NewContext returns a copy of ctx that carries d. Rows built with the
// returned context convert their values under d.
func NewContext(ctx context.Context, d Dialect) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// FromContext returns the dialect stored in ctx, if any.
func FromContext(ctx context.Context) (Dialect, bool) {
	if ctx == nil {
		return nil, false
	}
	d, ok := ctx.Value(contextKey{}).(Dialect)
	return d, ok && d != nil
}

// current holds the process-wide dialect. It is wrapped in a holder because
// atomic.Value refuses to store values of differing concrete types.
var current atomic.Value

type holder struct {
	d Dialect
}

// SetCurrent sets the process-wide dialect used when neither a row option nor
// the context names one. A nil d clears it.
func SetCurrent(d Dialect) {
	current.Store(holder{d: d})
}

// Current returns the process-wide dialect, or nil if none is set.
func Current() Dialect {
	h, _ := current.Load().(holder)
	return h.d
}

// Resolve returns the dialect in ctx, falling back to the process-wide
// dialect. The result may be nil.
func Resolve(ctx context.Context) Dialect {
	if d, ok := FromContext(ctx); ok {
		return d
	}
	return Current()
}
