// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow_test

import (
	"context"

	. "gopkg.in/check.v1"

	"github.com/canonical/resultrow"
	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/expr"
)

type DecodeSuite struct{}

var _ = Suite(&DecodeSuite{})

type Person struct {
	ID     int64   `db:"id"`
	Name   string  `db:"name"`
	Age    int     `db:"age"`
	Email  *string `db:"email"`
	Ignore string
}

func (s *DecodeSuite) TestDecode(c *C) {
	p := newPersonTable()
	index := resultrow.MustFieldIndex(p.id, p.name, p.age, p.email)
	row, err := resultrow.Create(context.Background(), resultrow.Values{int64(7), "Alice", int64(30), "a@b.c"}, index)
	c.Assert(err, IsNil)

	var got Person
	c.Assert(resultrow.Decode(row, p.table, &got), IsNil)
	c.Assert(got.ID, Equals, int64(7))
	c.Assert(got.Name, Equals, "Alice")
	c.Assert(got.Age, Equals, 30)
	c.Assert(got.Email, NotNil)
	c.Assert(*got.Email, Equals, "a@b.c")
}

func (s *DecodeSuite) TestDecodeNullAndMissing(c *C) {
	p := newPersonTable()
	index := resultrow.MustFieldIndex(p.name, p.email)
	row, err := resultrow.Create(context.Background(), resultrow.Values{"Bob", nil}, index)
	c.Assert(err, IsNil)

	email := "old@b.c"
	got := Person{ID: 3, Age: 12, Email: &email}
	c.Assert(resultrow.Decode(row, p.table, &got), IsNil)
	c.Assert(got.Name, Equals, "Bob")
	c.Assert(got.Email, IsNil)
	// Columns missing from the row keep their field.
	c.Assert(got.ID, Equals, int64(3))
	c.Assert(got.Age, Equals, 12)
}

func (s *DecodeSuite) TestDecodeCompositeIdentifier(c *C) {
	t := expr.NewTable("visit")
	personID := t.AddIDColumn(t.Column("person_id", coltype.Long{}))
	day := t.AddIDColumn(t.Column("day", coltype.Text{}))

	row, err := resultrow.Create(context.Background(), resultrow.Values{int64(1), "monday"}, resultrow.MustFieldIndex(personID, day))
	c.Assert(err, IsNil)

	var visit struct {
		ID       expr.EntityID `db:"id"`
		PersonID int64         `db:"person_id"`
		Day      string        `db:"day"`
	}
	c.Assert(resultrow.Decode(row, t, &visit), IsNil)
	c.Assert(visit.PersonID, Equals, int64(1))
	c.Assert(visit.Day, Equals, "monday")
	c.Assert(visit.ID.Table, Equals, t)
	c.Assert(visit.ID.Value.(*expr.CompositeID).Values(), DeepEquals, []any{int64(1), "monday"})
}

func (s *DecodeSuite) TestDecodeErrors(c *C) {
	p := newPersonTable()
	row, err := resultrow.Create(context.Background(), resultrow.Values{"Alice"}, resultrow.MustFieldIndex(p.name))
	c.Assert(err, IsNil)

	var person Person
	err = resultrow.Decode(row, p.table, person)
	c.Assert(err, ErrorMatches, `cannot decode into resultrow_test.Person: need a non-nil pointer to a struct`)

	var unknown struct {
		Height int `db:"height"`
	}
	err = resultrow.Decode(row, p.table, &unknown)
	c.Assert(err, ErrorMatches, `cannot decode field Height: no column "height" in table person`)

	var mismatch struct {
		Name int `db:"name"`
	}
	err = resultrow.Decode(row, p.table, &mismatch)
	c.Assert(err, ErrorMatches, `cannot decode person.name into field Name: cannot assign string to int`)
}
