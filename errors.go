// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrNotInRecordSet is returned when an expression has no position in
	// the row, neither directly nor through an alias or identifier column.
	ErrNotInRecordSet = errors.NewKind("%s is not in record set")

	// ErrNotInitialized is returned by Get when the expression has a
	// position in the row but no value was ever written to it. Use HasValue
	// or GetOrNull to check for it first.
	ErrNotInitialized = errors.NewKind("%s is not initialized yet")

	// ErrInvalidFieldIndex is returned when an expression to position
	// mapping is not a valid field index.
	ErrInvalidFieldIndex = errors.NewKind("invalid field index: %s")

	// ErrTypeMismatch is returned by GetAs when the value of the expression
	// is not of the requested type.
	ErrTypeMismatch = errors.NewKind("value of %s has type %T, want %s")
)
