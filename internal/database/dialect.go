package database

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour spoken by the connected driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	LibSQL   Dialect = "libsql"
	Postgres Dialect = "postgres"
)

// Rebind rewrites '?' placeholders into the form the dialect expects.
// Queries in this module never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ForUpdate returns the row locking clause for SELECTs inside a transaction.
// SQLite locks the whole database for write transactions instead.
func (d Dialect) ForUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case LibSQL:
		return "libsql"
	default:
		return "sqlite3"
	}
}

func (d Dialect) gooseDialect() string {
	switch d {
	case Postgres:
		return "postgres"
	case LibSQL:
		return "turso"
	default:
		return "sqlite3"
	}
}

func (d Dialect) migrationsSubdir() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}
