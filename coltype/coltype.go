// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package coltype contains the logical column types of result rows. A column type
knows how to read a correctly shaped raw value from a row source, and how to
turn a driver-native raw value into its Go domain value under a dialect.
*/
package coltype

import (
	"gopkg.in/src-d/go-errors.v1"

	"github.com/canonical/resultrow/dialect"
)

// ErrInvalidConversion is returned when a raw value cannot be turned into the
// domain value of a column type.
var ErrInvalidConversion = errors.NewKind("cannot convert %v (%T) to %s: %s")

// RowSource gives positional access to the raw values of a single record.
type RowSource interface {
	// ValueAt returns the driver-native value at the zero based position.
	ValueAt(index int) (any, error)
}

// ColumnType is the logical type of a column.
//
// Implementations are used as map keys and must be comparable. Types carrying
// functions must be used through a pointer.
type ColumnType interface {
	// SQLType returns the SQL name of the type.
	SQLType() string

	// Nullable reports whether the column accepts NULL.
	Nullable() bool

	// ValueFromDB converts a non-nil raw value into the type's Go value. The
	// dialect may be nil. Values already in domain form are returned as is.
	ValueFromDB(d dialect.Dialect, raw any) (any, error)

	// ReadObject reads the raw value at index from src.
	ReadObject(src RowSource, index int) (any, error)
}

// readGeneric is the ReadObject of types that accept whatever the driver
// returns.
func readGeneric(src RowSource, index int) (any, error) {
	return src.ValueAt(index)
}

func conversionError(raw any, t ColumnType, err error) error {
	return ErrInvalidConversion.New(raw, raw, t.SQLType(), err)
}
