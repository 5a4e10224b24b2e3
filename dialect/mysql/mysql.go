// Package mysql registers the MySQL dialect. Importing it pulls in the
// go-sql-driver/mysql driver.
package mysql

import (
	_ "github.com/go-sql-driver/mysql"

	"github.com/kuzkok/qdjango/dialect"
	"github.com/kuzkok/qdjango/schema"
)

type mysqlDialect struct {
	dialect.Base
}

func (mysqlDialect) Name() string {
	return "mysql"
}

func (mysqlDialect) QuoteIdent(s string) string {
	return "`" + s + "`"
}

// MySQL LIKE follows the column collation, which is case-insensitive by
// default; BINARY forces an exact-case match.
func (mysqlDialect) LikeOperator(caseSensitive bool) string {
	if caseSensitive {
		return "LIKE BINARY"
	}
	return "LIKE"
}

func (mysqlDialect) DefaultValues() string {
	return "() VALUES ()"
}

func (mysqlDialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE"
	case schema.Bool:
		return "BOOL"
	case schema.String:
		return "VARCHAR(255)"
	case schema.Bytes:
		return "BLOB"
	case schema.Time:
		return "DATETIME"
	}
	return ""
}

func (d mysqlDialect) PrimaryKeyColumn(k schema.Kind, autoIncrement bool) string {
	if autoIncrement {
		return "BIGINT PRIMARY KEY AUTO_INCREMENT"
	}
	return d.ColumnType(k) + " PRIMARY KEY"
}

func init() {
	dialect.Register("mysql", mysqlDialect{})
}
