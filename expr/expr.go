// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package expr contains the expressions that can be projected by a query and
read back from a result row.

The set of expressions is closed: plain and identifier columns ([Column]),
aliases carrying a column type ([Alias]), aliases of arbitrary expressions
([ExpressionAlias]), composite columns restored from several real columns
([CompositeColumn]), boolean conditions ([Condition]) and SQL literals
([Literal]). All of them are pointers, so an expression is identified by
reference and can be used as a map key.
*/
package expr

import (
	"github.com/canonical/resultrow/coltype"
)

// Expression is a value that can appear in the projection of a query.
type Expression interface {
	// String returns the expression as it would appear in SQL, for use in
	// error messages and debug output.
	String() string

	// expression seals the interface to this package.
	expression()
}

// Typed is an expression with a declared column type.
type Typed interface {
	Expression
	ColumnType() coltype.ColumnType
}

// Column is a column of a table.
type Column struct {
	// Table is the table the column belongs to.
	Table *Table

	// Name is the name of the column in the database.
	Name string

	// Type is the logical type of the column.
	Type coltype.ColumnType

	// DatabaseDefault is the default the database fills in on insert, or
	// nil if there is none.
	DatabaseDefault Expression

	// DefaultFunc generates the client side default of the column. It may
	// be nil.
	DefaultFunc func() any
}

func (*Column) expression() {}

// ColumnType returns the type of the column.
func (c *Column) ColumnType() coltype.ColumnType {
	return c.Type
}

// String returns the qualified name of the column.
func (c *Column) String() string {
	if c.Table == nil {
		return c.Name
	}
	return c.Table.Name + "." + c.Name
}

// IsEntityIdentifier reports whether c is the identifier column of its table.
func (c *Column) IsEntityIdentifier() bool {
	return c.Table != nil && c.Table.id == c
}

// Alias returns an alias of the column which keeps its column type.
func (c *Column) Alias(name string) *Alias {
	return &Alias{Delegate: c, Name: name}
}

// ColumnOption configures a column when it is declared on a table.
type ColumnOption func(*Column)

// WithDatabaseDefault declares the default the database applies to the
// column.
func WithDatabaseDefault(e Expression) ColumnOption {
	return func(c *Column) {
		c.DatabaseDefault = e
	}
}

// WithDefault sets the client side default generator of the column.
func WithDefault(f func() any) ColumnOption {
	return func(c *Column) {
		c.DefaultFunc = f
	}
}

// Alias renames a typed expression. It keeps the delegate's column type.
type Alias struct {
	Delegate Typed
	Name     string
}

func (*Alias) expression() {}

// ColumnType returns the column type of the delegate.
func (a *Alias) ColumnType() coltype.ColumnType {
	return a.Delegate.ColumnType()
}

func (a *Alias) String() string {
	return a.Delegate.String() + " AS " + a.Name
}

// ExpressionAlias renames any expression, typically when a sub-query or
// column is projected under another name.
type ExpressionAlias struct {
	Delegate Expression
	Name     string
}

// As returns an alias of e.
func As(e Expression, name string) *ExpressionAlias {
	return &ExpressionAlias{Delegate: e, Name: name}
}

func (*ExpressionAlias) expression() {}

func (a *ExpressionAlias) String() string {
	return a.Delegate.String() + " AS " + a.Name
}

// CompositeColumn is a virtual column whose value is restored from the values
// of other columns. Parts may themselves be composite columns.
type CompositeColumn struct {
	Name string

	// Parts are the columns the value is restored from.
	Parts []Expression

	// Restore builds the value of the composite column from the raw values
	// of its parts.
	Restore func(parts map[Expression]any) (any, error)
}

func (*CompositeColumn) expression() {}

func (c *CompositeColumn) String() string {
	return c.Name
}

// RealColumns returns the expressions the composite column is made of.
func (c *CompositeColumn) RealColumns() []Expression {
	return c.Parts
}

// Condition is a boolean valued SQL condition, e.g. "age > 18".
type Condition struct {
	SQL string
}

func (*Condition) expression() {}

func (c *Condition) String() string {
	return c.SQL
}

// Literal is a fragment of SQL used verbatim, e.g. as a database default.
type Literal struct {
	SQL string
}

func (*Literal) expression() {}

func (l *Literal) String() string {
	return l.SQL
}
