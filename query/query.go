// Package query defines the nodes a where clause is built from. Trees are
// assembled bottom-up by the constructor functions in the root package and
// are never mutated afterwards; a nil Q means no constraint.
package query

type Q interface {
	// This function exists only to avoid declaring Q as an empty
	// interface, so unrelated values can't be passed where a query
	// is expected without a compiler error.
	q()
}

// F represents a reference to a field. It's used to disambiguate when the
// value in a Q refers to a string literal or to another field.
type F string

// Field is a comparison against a single field. The field name may be a
// dotted path traversing foreign key relations, e.g. "Author.Name".
type Field struct {
	Field string
	Value interface{}
}

func (f Field) q() {
}

type Eq struct {
	Field
}

type Neq struct {
	Field
}

type Lt struct {
	Field
}

type Lte struct {
	Field
}

type Gt struct {
	Field
}

type Gte struct {
	Field
}

// In matches when the field equals one of the values. An empty value set
// matches nothing.
type In struct {
	Field
}

// Like is a pattern match. The value carries the SQL pattern with % and _
// wildcards; the convenience constructors in the root package escape user
// input before wrapping it.
type Like struct {
	Field
	// CaseSensitive requests an exact-case match where the dialect can
	// express one.
	CaseSensitive bool
}

// IsNull checks a field against NULL.
type IsNull struct {
	Name string
	// Not inverts the check to IS NOT NULL.
	Not bool
}

func (i IsNull) q() {
}

type Combinator struct {
	Conditions []Q
}

func (c Combinator) q() {
}

type And struct {
	Combinator
}

type Or struct {
	Combinator
}

// Not negates a condition. The compiler simplifies negated comparisons to
// their inverse operator instead of emitting NOT (...).
type Not struct {
	Condition Q
}

func (n Not) q() {
}
