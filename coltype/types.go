// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package coltype

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/canonical/resultrow/dialect"
	"github.com/canonical/resultrow/internal/convert"
)

// Integer is a 32 bit integer column. Values are int32.
type Integer struct {
	Null bool
}

func (t Integer) SQLType() string { return "INT" }
func (t Integer) Nullable() bool  { return t.Null }

func (t Integer) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t Integer) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	if v, ok := raw.(int32); ok {
		return v, nil
	}
	v, err := convert.Int32(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// Long is a 64 bit integer column. Values are int64.
type Long struct {
	Null bool
}

func (t Long) SQLType() string { return "BIGINT" }
func (t Long) Nullable() bool  { return t.Null }

func (t Long) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t Long) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	v, err := convert.Int64(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// Double is a double precision floating point column. Values are float64.
type Double struct {
	Null bool
}

func (t Double) SQLType() string { return "DOUBLE PRECISION" }
func (t Double) Nullable() bool  { return t.Null }

func (t Double) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t Double) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	v, err := convert.Float64(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// VarChar is a bounded text column. Values are strings.
type VarChar struct {
	Length int
	Null   bool
}

func (t VarChar) SQLType() string { return fmt.Sprintf("VARCHAR(%d)", t.Length) }
func (t VarChar) Nullable() bool  { return t.Null }

func (t VarChar) ReadObject(src RowSource, index int) (any, error) {
	return readText(src, index)
}

func (t VarChar) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	v, err := convert.String(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// Text is an unbounded text column. Values are strings.
type Text struct {
	Null bool
}

func (t Text) SQLType() string { return "TEXT" }
func (t Text) Nullable() bool  { return t.Null }

func (t Text) ReadObject(src RowSource, index int) (any, error) {
	return readText(src, index)
}

func (t Text) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	v, err := convert.String(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// readText turns driver byte slices into strings as they are read, so the
// raw slot never aliases a driver buffer.
func readText(src RowSource, index int) (any, error) {
	v, err := src.ValueAt(index)
	if b, ok := v.([]byte); ok {
		return string(b), err
	}
	return v, err
}

// Boolean is a boolean column. Values are bools. The encoding of booleans
// differs between dialects.
type Boolean struct {
	Null bool
}

func (t Boolean) SQLType() string { return "BOOLEAN" }
func (t Boolean) Nullable() bool  { return t.Null }

func (t Boolean) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t Boolean) ValueFromDB(d dialect.Dialect, raw any) (any, error) {
	var parse func(string) (bool, bool)
	if d != nil {
		parse = d.ParseBool
	}
	v, err := convert.Bool(raw, parse)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// Decimal is a fixed point column. Values are decimal.Decimal rounded to
// Scale digits. A zero Precision leaves the column unconstrained and values
// are not rounded.
type Decimal struct {
	Precision int
	Scale     int
	Null      bool
}

func (t Decimal) SQLType() string { return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale) }
func (t Decimal) Nullable() bool  { return t.Null }

func (t Decimal) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t Decimal) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	var (
		v   decimal.Decimal
		err error
	)
	switch r := raw.(type) {
	case decimal.Decimal:
		v = r
	case float64:
		v = decimal.NewFromFloat(r)
	case float32:
		v = decimal.NewFromFloat32(r)
	case []byte:
		v, err = decimal.NewFromString(string(r))
	case string:
		v, err = decimal.NewFromString(r)
	default:
		var i int64
		i, err = convert.Int64(raw)
		v = decimal.NewFromInt(i)
	}
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	if t.Precision == 0 {
		return v, nil
	}
	return v.Round(int32(t.Scale)), nil
}

// UUID is a universally unique identifier column. Values are uuid.UUID.
type UUID struct {
	Null bool
}

func (t UUID) SQLType() string { return "UUID" }
func (t UUID) Nullable() bool  { return t.Null }

func (t UUID) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

// ValueFromDB accepts both the binary and the textual encoding. A 16 byte
// slice is taken as binary only when the dialect stores UUIDs that way, as
// it could otherwise be text.
func (t UUID) ValueFromDB(d dialect.Dialect, raw any) (any, error) {
	var (
		v   uuid.UUID
		err error
	)
	switch r := raw.(type) {
	case uuid.UUID:
		v = r
	case [16]byte:
		v = uuid.UUID(r)
	case []byte:
		if len(r) == 16 && (d == nil || d.BinaryUUID()) {
			v, err = uuid.FromBytes(r)
		} else {
			v, err = uuid.ParseBytes(r)
		}
	case string:
		v, err = uuid.Parse(r)
	default:
		err = errors.Errorf("unsupported type %T", raw)
	}
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// DateTime is a timestamp column. Values are time.Time. Textual timestamps
// are parsed with the layouts of the dialect.
type DateTime struct {
	Null bool
}

func (t DateTime) SQLType() string { return "DATETIME" }
func (t DateTime) Nullable() bool  { return t.Null }

func (t DateTime) ReadObject(src RowSource, index int) (any, error) {
	return readGeneric(src, index)
}

func (t DateTime) ValueFromDB(d dialect.Dialect, raw any) (any, error) {
	var layouts []string
	if d != nil {
		layouts = d.TimestampLayouts()
	} else {
		layouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02"}
	}
	v, err := convert.Time(raw, layouts)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}

// Blob is a binary column. Values are byte slices.
type Blob struct {
	Null bool
}

func (t Blob) SQLType() string { return "BLOB" }
func (t Blob) Nullable() bool  { return t.Null }

func (t Blob) ReadObject(src RowSource, index int) (any, error) {
	v, err := src.ValueAt(index)
	if err != nil || v == nil {
		return v, err
	}
	return convert.Bytes(v)
}

func (t Blob) ValueFromDB(_ dialect.Dialect, raw any) (any, error) {
	v, err := convert.Bytes(raw)
	if err != nil {
		return nil, conversionError(raw, t, err)
	}
	return v, nil
}
