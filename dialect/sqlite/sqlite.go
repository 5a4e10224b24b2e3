// Package sqlite registers the SQLite dialect. Importing it pulls in the
// mattn/go-sqlite3 driver.
package sqlite

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/kuzkok/qdjango/dialect"
	"github.com/kuzkok/qdjango/schema"
)

type sqliteDialect struct {
	dialect.Base
}

func (sqliteDialect) Name() string {
	return "sqlite3"
}

// SQLite LIKE is case-insensitive for ASCII regardless of the requested
// sensitivity.
func (sqliteDialect) LikeOperator(caseSensitive bool) string {
	return "LIKE"
}

func (sqliteDialect) LikeEscape() string {
	return " ESCAPE '\\'"
}

func (sqliteDialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.Int, schema.Bool:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	case schema.String:
		return "TEXT"
	case schema.Bytes:
		return "BLOB"
	case schema.Time:
		return "DATETIME"
	}
	return ""
}

func (d sqliteDialect) PrimaryKeyColumn(k schema.Kind, autoIncrement bool) string {
	if autoIncrement {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return d.ColumnType(k) + " PRIMARY KEY"
}

func init() {
	dialect.Register("sqlite", sqliteDialect{})
	dialect.Register("sqlite3", sqliteDialect{})
}
