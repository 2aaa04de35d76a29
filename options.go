// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/canonical/resultrow/dialect"
)

// Option configures the construction of result rows.
type Option func(*options)

type options struct {
	logger     logrus.FieldLogger
	dialect    dialect.Dialect
	dialectSet bool
}

// WithLogger sets the logger diagnostics are written to. The default is the
// logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialect sets the dialect values are converted under, overriding the
// dialect found in the context.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) {
		o.dialect = d
		o.dialectSet = true
	}
}

// resolveOptions applies opts and resolves the dialect once. Rows keep the
// result for their whole lifetime, so later changes to the context or to the
// process-wide dialect never affect a row that was already built.
func resolveOptions(ctx context.Context, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	if !o.dialectSet {
		o.dialect = dialect.Resolve(ctx)
	}
	return o
}
