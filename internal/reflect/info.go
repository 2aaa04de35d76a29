// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package reflect

import (
	"reflect"
)

// Field represents a single tagged field of a struct type.
type Field struct {
	// Name is the name of the struct field.
	Name string

	// Column is the column name from the field's "db" tag.
	Column string

	// Index is the index sequence of the field for
	// reflect.Value.FieldByIndex.
	Index []int

	// Type is the type of the field.
	Type reflect.Type
}

// Struct represents reflected information about a struct type.
type Struct struct {
	Type reflect.Type

	// Fields holds the fields with a "db" tag, in declaration order.
	// Fields without a tag are ignored.
	Fields []Field
}

// Name returns the name of the struct type.
func (s *Struct) Name() string {
	return s.Type.Name()
}
