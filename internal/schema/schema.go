// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package schema loads table declarations from YAML.
//
// A schema file looks like:
//
//	dialect: sqlite
//	tables:
//	  - name: person
//	    columns:
//	      - name: id
//	        type: bigint
//	        id: true
//	      - name: name
//	        type: varchar(50)
//	      - name: created
//	        type: datetime
//	        default: CURRENT_TIMESTAMP
//	      - name: email
//	        type: text
//	        nullable: true
package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/canonical/resultrow/coltype"
	"github.com/canonical/resultrow/dialect"
	"github.com/canonical/resultrow/expr"
)

// File is the YAML representation of a schema.
type File struct {
	// Dialect names the dialect values are read under. It is optional.
	Dialect string `yaml:"dialect,omitempty"`

	Tables []TableDecl `yaml:"tables"`
}

// TableDecl declares a table.
type TableDecl struct {
	Name    string       `yaml:"name"`
	Columns []ColumnDecl `yaml:"columns"`
}

// ColumnDecl declares a column. Columns with ID set make up the identifier
// of their table, which is composite if there is more than one.
type ColumnDecl struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
	ID       bool   `yaml:"id,omitempty"`

	// Default is the SQL the database uses as the column default.
	Default string `yaml:"default,omitempty"`
}

// Schema holds the tables declared by a file.
type Schema struct {
	Dialect dialect.Dialect

	tables []*expr.Table
	byName map[string]*expr.Table
}

// LoadFile reads and builds the schema in the file at path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read schema file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Load reads and builds a schema. Unknown fields are rejected so typos in
// a declaration do not go unnoticed.
func Load(r io.Reader) (*Schema, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("cannot parse schema: %w", err)
	}
	return f.Build()
}

// Build turns the declarations into tables.
func (f *File) Build() (*Schema, error) {
	s := &Schema{byName: map[string]*expr.Table{}}
	if f.Dialect != "" {
		d, ok := dialect.Lookup(f.Dialect)
		if !ok {
			return nil, errors.Errorf("unknown dialect %q", f.Dialect)
		}
		s.Dialect = d
	}
	for _, td := range f.Tables {
		t, err := td.build()
		if err != nil {
			return nil, fmt.Errorf("cannot build table %q: %s", td.Name, err)
		}
		if _, ok := s.byName[t.Name]; ok {
			return nil, errors.Errorf("table %q declared twice", t.Name)
		}
		s.tables = append(s.tables, t)
		s.byName[t.Name] = t
	}
	return s, nil
}

func (td *TableDecl) build() (*expr.Table, error) {
	if td.Name == "" {
		return nil, errors.New("missing name")
	}
	if len(td.Columns) == 0 {
		return nil, errors.New("no columns")
	}
	t := expr.NewTable(td.Name)
	seen := map[string]bool{}
	var ids []*expr.Column
	for _, cd := range td.Columns {
		if cd.Name == "" {
			return nil, errors.New("column with no name")
		}
		if seen[cd.Name] {
			return nil, errors.Errorf("column %q declared twice", cd.Name)
		}
		seen[cd.Name] = true
		typ, err := ParseType(cd.Type, cd.Nullable)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", cd.Name)
		}
		var opts []expr.ColumnOption
		if cd.Default != "" {
			opts = append(opts, expr.WithDatabaseDefault(&expr.Literal{SQL: cd.Default}))
		}
		c := t.Column(cd.Name, typ, opts...)
		if cd.ID {
			ids = append(ids, c)
		}
	}
	switch len(ids) {
	case 0:
	case 1:
		t.SetID(ids[0])
	default:
		for _, c := range ids {
			t.AddIDColumn(c)
		}
	}
	return t, nil
}

// Tables returns the tables in declaration order.
func (s *Schema) Tables() []*expr.Table {
	return append([]*expr.Table(nil), s.tables...)
}

// Table returns the table called name.
func (s *Schema) Table(name string) (*expr.Table, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// ParseType returns the column type named by a SQL type name such as
// "integer", "varchar(20)" or "decimal(10, 2)". Names are case insensitive.
func ParseType(name string, nullable bool) (coltype.ColumnType, error) {
	base, args, err := splitTypeName(name)
	if err != nil {
		return nil, err
	}
	arg := func(i int) int {
		if i < len(args) {
			return args[i]
		}
		return 0
	}
	var (
		typ   coltype.ColumnType
		arity []int
	)
	switch base {
	case "int", "integer", "int4", "smallint", "mediumint":
		typ, arity = coltype.Integer{Null: nullable}, []int{0, 1}
	case "bigint", "int8", "long":
		typ, arity = coltype.Long{Null: nullable}, []int{0, 1}
	case "double", "double precision", "float", "float8", "real":
		typ, arity = coltype.Double{Null: nullable}, []int{0}
	case "varchar", "character varying", "char":
		typ, arity = coltype.VarChar{Length: arg(0), Null: nullable}, []int{1}
	case "text", "string", "clob":
		typ, arity = coltype.Text{Null: nullable}, []int{0}
	case "bool", "boolean", "tinyint":
		typ, arity = coltype.Boolean{Null: nullable}, []int{0, 1}
	case "decimal", "numeric":
		typ, arity = coltype.Decimal{Precision: arg(0), Scale: arg(1), Null: nullable}, []int{1, 2}
	case "uuid":
		typ, arity = coltype.UUID{Null: nullable}, []int{0}
	case "datetime", "timestamp", "timestamptz", "date":
		typ, arity = coltype.DateTime{Null: nullable}, []int{0, 1}
	case "blob", "bytea", "binary", "varbinary":
		typ, arity = coltype.Blob{Null: nullable}, []int{0, 1}
	default:
		return nil, errors.Errorf("unknown column type %q", name)
	}
	for _, n := range arity {
		if len(args) == n {
			return typ, nil
		}
	}
	return nil, errors.Errorf("type %s takes %v arguments, got %d", base, arity, len(args))
}

func splitTypeName(name string) (string, []int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil, errors.New("missing column type")
	}
	open := strings.IndexByte(name, '(')
	if open < 0 {
		return name, nil, nil
	}
	if !strings.HasSuffix(name, ")") {
		return "", nil, errors.Errorf("malformed column type %q", name)
	}
	base := strings.TrimSpace(name[:open])
	var args []int
	for _, a := range strings.Split(name[open+1:len(name)-1], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || n < 0 {
			return "", nil, errors.Errorf("malformed column type %q", name)
		}
		args = append(args, n)
	}
	return base, args, nil
}
