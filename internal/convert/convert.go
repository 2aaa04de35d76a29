// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package convert coerces the driver-native values returned by database/sql
// into the primitive Go types the column types are built on.
package convert

import (
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Int64 converts an integer, a whole float or the text of an integer.
func Int64(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, errors.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Errorf("value %v is not a whole number", v)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
		if v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, errors.Errorf("value %v overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return Int64(float64(v))
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	}
	return 0, errors.Errorf("cannot convert %T to int64", src)
}

func parseInt(s string) (int64, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse %q as integer", s)
	}
	return i, nil
}

// Int32 converts like Int64 and checks the result fits in 32 bits.
func Int32(src any) (int32, error) {
	i, err := Int64(src)
	if err != nil {
		return 0, err
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, errors.Errorf("value %d overflows int32", i)
	}
	return int32(i), nil
}

// Float64 converts any numeric value or the text of a number.
func Float64(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	}
	i, err := Int64(src)
	if err != nil {
		return 0, errors.Errorf("cannot convert %T to float64", src)
	}
	return float64(i), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse %q as number", s)
	}
	return f, nil
}

// String converts text, bytes and the primitive scalars to their textual
// representation.
func String(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	}
	return "", errors.Errorf("cannot convert %T to string", src)
}

// Bytes returns a copy of text or binary values. The copy guards against
// drivers that reuse their buffers between rows.
func Bytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.Errorf("cannot convert %T to []byte", src)
}

// Bool converts booleans and integers. Text is handed to parse, which
// reports whether it recognised the value.
func Bool(src any, parse func(string) (bool, bool)) (bool, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case []byte:
		return parseBool(string(v), parse)
	case string:
		return parseBool(v, parse)
	}
	i, err := Int64(src)
	if err != nil {
		return false, errors.Errorf("cannot convert %T to bool", src)
	}
	return i != 0, nil
}

func parseBool(s string, parse func(string) (bool, bool)) (bool, error) {
	if parse != nil {
		if b, ok := parse(s); ok {
			return b, nil
		}
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(err, "cannot parse %q as boolean", s)
	}
	return b, nil
}

// Time converts time values, unix seconds and textual timestamps in any of
// the given layouts.
func Time(src any, layouts []string) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case float64:
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	case []byte:
		return parseTime(string(v), layouts)
	case string:
		return parseTime(v, layouts)
	}
	return time.Time{}, errors.Errorf("cannot convert %T to time.Time", src)
}

func parseTime(s string, layouts []string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339Nano}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("cannot parse %q as timestamp", s)
}
