// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package resultrow materializes the records returned by a SQL query into typed
rows addressed by the expressions that were projected, rather than by column
position.

# Basics

A query projects a list of expressions, usually columns declared on tables of
the expr package. A [FieldIndex] records the position of each of them in the
records the query returns:

	person := expr.NewTable("person")
	name := person.Column("name", coltype.VarChar{Length: 50})
	age := person.Column("age", coltype.Integer{})

	index := resultrow.MustFieldIndex(name, age)

Each record is then turned into a [ResultRow]. Raw values are read from the
record eagerly, while the conversion to Go values happens on first access and
is cached:

	rows, err := db.QueryContext(ctx, "SELECT name, age FROM person")
	...
	iter := resultrow.NewIterator(ctx, rows, index)
	for iter.Next() {
		row := iter.Row()
		n, err := resultrow.GetAs[string](row, name)
		...
	}
	err = iter.Close()

# Addressing values

A value can be addressed through the expression it was projected as, or
through a related expression:

  - the plain column wrapped by an identifier column resolves to the
    identifier column's position (see [expr.Table.SetID]);
  - an expression resolves to the position of an alias of it (see [expr.As]);
  - the identifier column of a table with a composite identifier is assembled
    from the table's identifier columns;
  - a composite column is restored from the values of its parts.

[ResultRow.Get] fails with [ErrNotInRecordSet] for expressions the row cannot
resolve, and with [ErrNotInitialized] for positions that never received a
value. [ResultRow.HasValue] and [ResultRow.GetOrNull] inspect a row without
failing.

[Decode] copies the values of a table's columns into the "db" tagged fields
of a struct.

# Dialects

Databases encode booleans, timestamps and UUIDs differently. The dialect used
to convert a row's values is resolved once, when the row is built: from
[WithDialect], else from the context (see [dialect.NewContext]), else from the
process-wide dialect (see [dialect.SetCurrent]).
*/
package resultrow
