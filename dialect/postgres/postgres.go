// Package postgres registers the PostgreSQL dialect. Importing it pulls in
// the lib/pq driver.
package postgres

import (
	"strconv"

	_ "github.com/lib/pq"

	"github.com/kuzkok/qdjango/dialect"
	"github.com/kuzkok/qdjango/schema"
)

type postgresDialect struct {
	dialect.Base
}

func (postgresDialect) Name() string {
	return "postgres"
}

func (postgresDialect) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (postgresDialect) LikeOperator(caseSensitive bool) string {
	if caseSensitive {
		return "LIKE"
	}
	return "ILIKE"
}

func (postgresDialect) InsertReturning() bool {
	return true
}

func (postgresDialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE PRECISION"
	case schema.Bool:
		return "BOOLEAN"
	case schema.String:
		return "TEXT"
	case schema.Bytes:
		return "BYTEA"
	case schema.Time:
		return "TIMESTAMP WITH TIME ZONE"
	}
	return ""
}

func (d postgresDialect) PrimaryKeyColumn(k schema.Kind, autoIncrement bool) string {
	if autoIncrement {
		return "BIGSERIAL PRIMARY KEY"
	}
	return d.ColumnType(k) + " PRIMARY KEY"
}

func init() {
	dialect.Register("postgres", postgresDialect{})
}
