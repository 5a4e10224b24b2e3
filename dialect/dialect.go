// Package dialect captures the backend-specific SQL syntax rules the
// compiler consults: placeholder style, identifier quoting, LIKE
// rendering and the always-true/false predicates used for empty IN sets.
// Each backend lives in its own subpackage and registers itself on import.
package dialect

import (
	"strconv"

	"github.com/kuzkok/qdjango/schema"
)

type Dialect interface {
	// Name is the database/sql driver name passed to sql.Open.
	Name() string
	// Placeholder returns the parameter placeholder for the n'th
	// position, starting at 1.
	Placeholder(n int) string
	// QuoteIdent quotes a table or column identifier.
	QuoteIdent(s string) string
	// LikeOperator returns the pattern match operator. Backends that
	// can't express the requested case sensitivity fall back to their
	// native behavior.
	LikeOperator(caseSensitive bool) string
	// LikeEscape is appended after a LIKE pattern placeholder when the
	// backend needs an explicit escape character declaration.
	LikeEscape() string
	// FalseClause is a predicate matching no rows, used for IN over an
	// empty set.
	FalseClause() string
	// TrueClause is a predicate matching every row.
	TrueClause() string
	// InsertReturning reports whether the backend returns generated ids
	// through a RETURNING clause instead of Result.LastInsertId.
	InsertReturning() bool
	// DefaultValues is the clause inserting a row with no explicit
	// values.
	DefaultValues() string
	// ColumnType maps a field kind to a column type for DDL.
	ColumnType(k schema.Kind) string
	// PrimaryKeyColumn returns the type and constraint fragment for a
	// primary key column, e.g. "INTEGER PRIMARY KEY AUTOINCREMENT".
	PrimaryKeyColumn(k schema.Kind, autoIncrement bool) string
}

// Base provides the defaults shared by the ? placeholder backends.
// Concrete dialects embed it and override what differs.
type Base struct {
}

func (Base) Placeholder(n int) string {
	return "?"
}

func (Base) QuoteIdent(s string) string {
	return strconv.Quote(s)
}

func (Base) LikeOperator(caseSensitive bool) string {
	return "LIKE"
}

func (Base) LikeEscape() string {
	return ""
}

func (Base) FalseClause() string {
	return "1 = 0"
}

func (Base) TrueClause() string {
	return "1 = 1"
}

func (Base) InsertReturning() bool {
	return false
}

func (Base) DefaultValues() string {
	return "DEFAULT VALUES"
}

var registry = map[string]Dialect{}

// Register makes a dialect available under the given name. It's called
// from the init function of each backend subpackage.
func Register(name string, d Dialect) {
	registry[name] = d
}

// Get returns the dialect registered under name, or nil.
func Get(name string) Dialect {
	return registry[name]
}
