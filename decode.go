// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/canonical/resultrow/expr"
	rreflect "github.com/canonical/resultrow/internal/reflect"
)

var entityIDType = reflect.TypeOf(expr.EntityID{})

// Decode copies the values of the columns of table into the struct dst points
// to. Fields are matched to columns by their "db" tag, e.g.
//
//	type Person struct {
//		ID   int64  `db:"id"`
//		Name string `db:"name"`
//	}
//
// A field whose column the row holds no value for is left untouched. NULL
// sets the zero value. Identifier values are unwrapped unless the field is an
// [expr.EntityID].
func Decode(r *ResultRow, table *expr.Table, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot decode into %T: need a non-nil pointer to a struct", dst)
	}
	info, err := rreflect.Cache().Reflect(v.Type())
	if err != nil {
		return err
	}

	cols := map[string]*expr.Column{}
	for _, c := range table.Columns() {
		cols[c.Name] = c
	}
	// The identifier of a composite identifier table is not one of its
	// columns.
	if id := table.ID(); id != nil {
		if _, ok := cols[id.Name]; !ok {
			cols[id.Name] = id
		}
	}

	for _, f := range info.Fields {
		c, ok := cols[f.Column]
		if !ok {
			return errors.Errorf("cannot decode field %s: no column %q in table %s", f.Name, f.Column, table)
		}
		if !r.HasValue(c) {
			continue
		}
		val, err := r.Get(c)
		if err != nil {
			return err
		}
		if err := assign(v.Elem().FieldByIndex(f.Index), val); err != nil {
			return errors.Wrapf(err, "cannot decode %s into field %s", c, f.Name)
		}
	}
	return nil
}

// assign sets field to val, converting between numeric kinds and between
// types sharing an underlying kind.
func assign(field reflect.Value, val any) error {
	ft := field.Type()
	if val == nil {
		field.Set(reflect.Zero(ft))
		return nil
	}
	if id, ok := val.(expr.EntityID); ok && ft != entityIDType {
		return assign(field, id.Value)
	}

	rv := reflect.ValueOf(val)
	if ft.Kind() == reflect.Pointer && !rv.Type().AssignableTo(ft) {
		p := reflect.New(ft.Elem())
		if err := assign(p.Elem(), val); err != nil {
			return err
		}
		field.Set(p)
		return nil
	}
	switch {
	case rv.Type().AssignableTo(ft):
		field.Set(rv)
	case isNumeric(rv.Kind()) && isNumeric(ft.Kind()),
		rv.Kind() == ft.Kind() && rv.Type().ConvertibleTo(ft):
		field.Set(rv.Convert(ft))
	default:
		return errors.Errorf("cannot assign %T to %s", val, ft)
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
