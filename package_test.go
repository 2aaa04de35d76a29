// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow_test

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "gopkg.in/check.v1"

	"github.com/canonical/resultrow"
	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/dialect"
	"github.com/canonical/resultrow/expr"
)

type PackageSuite struct{}

var _ = Suite(&PackageSuite{})

func setupDB() (*sql.DB, error) {
	return sql.Open("sqlite3", ":memory:")
}

func createExampleDB(createTables string, inserts []string) (*sql.DB, error) {
	db, err := setupDB()
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" opens its own database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(createTables)
	if err != nil {
		return nil, err
	}
	for _, insert := range inserts {
		_, err := db.Exec(insert)
		if err != nil {
			return nil, err
		}
	}

	return db, nil
}

func personDB() (*sql.DB, error) {
	createTables := `
CREATE TABLE person (
	id integer,
	name text,
	age integer,
	active boolean,
	email text
);
CREATE TABLE visit (
	person_id integer,
	day text,
	note text
);
`
	inserts := []string{
		"INSERT INTO person VALUES (1, 'Fred', 30, 1, 'fred@email.com');",
		"INSERT INTO person VALUES (2, 'Mark', 20, 0, NULL);",
		"INSERT INTO person VALUES (3, 'Mary', 40, 1, 'mary@email.com');",
		"INSERT INTO visit VALUES (1, '2024-01-02', 'first');",
		"INSERT INTO visit VALUES (1, '2024-01-03', 'second');",
	}
	return createExampleDB(createTables, inserts)
}

type personColumns struct {
	id, name, age, active, email *expr.Column
}

func personSchema() personColumns {
	t := expr.NewTable("person")
	id := t.Column("id", coltype.Long{})
	p := personColumns{
		name:   t.Column("name", coltype.Text{}),
		age:    t.Column("age", coltype.Integer{}),
		active: t.Column("active", coltype.Boolean{}),
		email:  t.Column("email", coltype.Text{Null: true}),
	}
	p.id = t.SetID(id)
	return p
}

func (s *PackageSuite) TestIterator(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	p := personSchema()
	index := resultrow.MustFieldIndex(p.id, p.name, p.age, p.active, p.email)
	ctx := dialect.NewContext(context.Background(), dialect.SQLite)

	rows, err := db.QueryContext(ctx, "SELECT id, name, age, active, email FROM person ORDER BY id")
	c.Assert(err, IsNil)

	type person struct {
		name   string
		age    int32
		active bool
		email  any
	}
	expected := []person{
		{"Fred", 30, true, "fred@email.com"},
		{"Mark", 20, false, nil},
		{"Mary", 40, true, "mary@email.com"},
	}

	iter := resultrow.NewIterator(ctx, rows, index)
	var got []person
	for iter.Next() {
		row := iter.Row()
		c.Assert(row.Dialect(), Equals, dialect.SQLite)

		var v person
		v.name, err = resultrow.GetAs[string](row, p.name)
		c.Assert(err, IsNil)
		v.age, err = resultrow.GetAs[int32](row, p.age)
		c.Assert(err, IsNil)
		v.active, err = resultrow.GetAs[bool](row, p.active)
		c.Assert(err, IsNil)
		v.email, err = row.Get(p.email)
		c.Assert(err, IsNil)
		got = append(got, v)

		id, err := row.Get(p.id)
		c.Assert(err, IsNil)
		c.Assert(id.(expr.EntityID).Value, Equals, int64(len(got)))
	}
	c.Assert(iter.Close(), IsNil)
	c.Assert(got, DeepEquals, expected)

	// Close can be called again.
	c.Assert(iter.Close(), IsNil)
	c.Assert(iter.Next(), Equals, false)
	c.Assert(iter.Row(), IsNil)
}

func (s *PackageSuite) TestAll(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	p := personSchema()
	index := resultrow.MustFieldIndex(p.name, expr.As(p.age, "years"))

	rows, err := db.Query("SELECT name, age AS years FROM person WHERE age > 25 ORDER BY age")
	c.Assert(err, IsNil)
	result, err := resultrow.All(context.Background(), rows, index)
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 2)

	var ages []int32
	for _, row := range result {
		age, err := resultrow.GetAs[int32](row, p.age)
		c.Assert(err, IsNil)
		ages = append(ages, age)
	}
	c.Assert(ages, DeepEquals, []int32{30, 40})

	name, err := result[1].Get(p.name)
	c.Assert(err, IsNil)
	c.Assert(name, Equals, "Mary")
}

func (s *PackageSuite) TestAllNoRows(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	p := personSchema()
	rows, err := db.Query("SELECT name FROM person WHERE age > 100")
	c.Assert(err, IsNil)
	result, err := resultrow.All(context.Background(), rows, resultrow.MustFieldIndex(p.name))
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 0)
}

func (s *PackageSuite) TestIteratorTooFewColumns(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	p := personSchema()
	rows, err := db.Query("SELECT name FROM person")
	c.Assert(err, IsNil)

	iter := resultrow.NewIterator(context.Background(), rows, resultrow.MustFieldIndex(p.name, p.age))
	c.Assert(iter.Next(), Equals, false)
	err = iter.Close()
	c.Assert(resultrow.ErrInvalidFieldIndex.Is(err), Equals, true)
	c.Assert(err, ErrorMatches, "invalid field index: 2 positions indexed but query returns 1 columns")
}

func (s *PackageSuite) TestConversionErrorOnAccess(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	// Conversions happen on access, so a bad value does not stop iteration.
	t := expr.NewTable("person")
	name := t.Column("name", coltype.Integer{})
	rows, err := db.Query("SELECT name FROM person ORDER BY id")
	c.Assert(err, IsNil)
	result, err := resultrow.All(context.Background(), rows, resultrow.MustFieldIndex(name))
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 3)

	_, err = result[0].Get(name)
	c.Assert(coltype.ErrInvalidConversion.Is(err), Equals, true)
}

func (s *PackageSuite) TestCompositeIdentifierFromQuery(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	t := expr.NewTable("visit")
	personID := t.AddIDColumn(t.Column("person_id", coltype.Long{}))
	day := t.AddIDColumn(t.Column("day", coltype.Text{}))
	note := t.Column("note", coltype.Text{})

	rows, err := db.Query("SELECT person_id, day, note FROM visit ORDER BY day")
	c.Assert(err, IsNil)
	result, err := resultrow.All(context.Background(), rows, resultrow.MustFieldIndex(personID, day, note))
	c.Assert(err, IsNil)
	c.Assert(result, HasLen, 2)

	v, err := result[1].Get(t.ID())
	c.Assert(err, IsNil)
	c.Assert(v.(expr.EntityID).Value.(*expr.CompositeID).Values(), DeepEquals, []any{int64(1), "2024-01-03"})
	c.Assert(v.(expr.EntityID).String(), Equals, "CompositeID(person_id=1, day=2024-01-03)")
}

func (s *PackageSuite) TestSQLXIterator(c *C) {
	sqldb, err := personDB()
	c.Assert(err, IsNil)
	db := sqlx.NewDb(sqldb, "sqlite3")
	defer db.Close()

	p := personSchema()
	index := resultrow.MustFieldIndex(p.name, p.email)
	rows, err := db.Queryx("SELECT name, email FROM person ORDER BY id")
	c.Assert(err, IsNil)

	iter := resultrow.NewSQLXIterator(context.Background(), rows, index, resultrow.WithDialect(dialect.SQLite))
	var emails []any
	for iter.Next() {
		c.Assert(iter.Row().HasValue(p.email), Equals, true)
		email, err := iter.Row().GetOrNull(p.email)
		c.Assert(err, IsNil)
		emails = append(emails, email)
	}
	c.Assert(iter.Close(), IsNil)
	c.Assert(emails, DeepEquals, []any{"fred@email.com", nil, "mary@email.com"})
}

func (s *PackageSuite) TestScanRow(c *C) {
	db, err := personDB()
	c.Assert(err, IsNil)
	defer db.Close()

	rows, err := db.Query("SELECT id, name FROM person WHERE id = 3")
	c.Assert(err, IsNil)
	defer rows.Close()

	c.Assert(rows.Next(), Equals, true)
	vals, err := resultrow.ScanRow(rows)
	c.Assert(err, IsNil)
	c.Assert(vals, HasLen, 2)
	c.Assert(vals[0], Equals, int64(3))

	_, err = vals.ValueAt(2)
	c.Assert(err, ErrorMatches, "position 2 out of range, record has 2 values")
}
