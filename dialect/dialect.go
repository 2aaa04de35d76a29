// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package dialect describes how a particular database encodes values that
database/sql hands back untyped. Column types consult the dialect of a row when
turning driver-native values into Go values.
*/
package dialect

import "strings"

// Dialect describes the value encodings of a database.
type Dialect interface {
	// Name is the lower case name of the dialect, e.g. "sqlite".
	Name() string

	// TimestampLayouts lists the time layouts, in order of preference, that
	// textual timestamps returned by the database can be parsed with.
	TimestampLayouts() []string

	// ParseBool interprets a textual boolean returned by the database.
	ParseBool(s string) (bool, bool)

	// BinaryUUID is true when the database stores UUIDs as 16 raw bytes
	// rather than as their textual form.
	BinaryUUID() bool
}

// SQLite timestamps are stored as text in any of the formats accepted by the
// SQLite date and time functions.
var sqliteTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

var mysqlTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var postgresTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type sqlite struct{}

// SQLite is the dialect of SQLite and dqlite databases.
var SQLite Dialect = sqlite{}

func (sqlite) Name() string                    { return "sqlite" }
func (sqlite) TimestampLayouts() []string      { return sqliteTimestampLayouts }
func (sqlite) BinaryUUID() bool                { return true }
func (sqlite) ParseBool(s string) (bool, bool) { return parseNumericBool(s) }

type mysql struct{}

// MySQL is the dialect of MySQL and MariaDB databases.
var MySQL Dialect = mysql{}

func (mysql) Name() string                    { return "mysql" }
func (mysql) TimestampLayouts() []string      { return mysqlTimestampLayouts }
func (mysql) BinaryUUID() bool                { return true }
func (mysql) ParseBool(s string) (bool, bool) { return parseNumericBool(s) }

type postgres struct{}

// PostgreSQL is the dialect of PostgreSQL databases.
var PostgreSQL Dialect = postgres{}

func (postgres) Name() string               { return "postgresql" }
func (postgres) TimestampLayouts() []string { return postgresTimestampLayouts }
func (postgres) BinaryUUID() bool           { return false }

func (postgres) ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "t", "true", "y", "yes", "on", "1":
		return true, true
	case "f", "false", "n", "no", "off", "0":
		return false, true
	}
	return false, false
}

// parseNumericBool handles databases without a native boolean type, where
// booleans come back as the text of a 0 or 1 integer.
func parseNumericBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	}
	return false, false
}

var dialects = map[string]Dialect{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"dqlite":     SQLite,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"postgresql": PostgreSQL,
	"postgres":   PostgreSQL,
}

// Lookup returns the dialect with the given name or alias. Driver names as
// registered with database/sql are accepted.
func Lookup(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}
