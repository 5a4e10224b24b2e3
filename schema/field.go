package schema

import (
	"reflect"
	"time"
)

// Kind is the SQL-level type tag of a field. Dialects map each kind to a
// concrete column type.
type Kind int

const (
	Int Kind = iota + 1
	Float
	Bool
	String
	Bytes
	Time
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Time:
		return "time"
	}
	return "invalid"
}

// Reference declares a foreign key pointing at a field of another model.
type Reference struct {
	Model string
	Field string
}

// Field describes a single column of a model. Fields are declared in a
// Definition and are immutable once the model is registered.
type Field struct {
	// Name is the field name, which must match an exported field of the
	// model's Go struct.
	Name string
	// Column is the database column name. Defaults to the snake case
	// form of Name.
	Column string
	Kind   Kind
	// Nullable columns scan SQL NULL as the Go zero value.
	Nullable   bool
	PrimaryKey bool
	// AutoIncrement marks an integer primary key as database assigned.
	// Inserting a zero value backfills the generated id.
	AutoIncrement bool
	// Default is either a literal (used in DDL) or the name of a
	// registered function followed by parentheses, e.g. "now()", applied
	// when inserting a zero value.
	Default string
	// Reference makes this field a foreign key.
	Reference *Reference
	// Relation names the relation introduced by Reference. Defaults to
	// the referenced model name. Only meaningful with Reference set, and
	// required when two fields reference the same model.
	Relation string

	index []int // struct field index, resolved at registration
}

var timeType = reflect.TypeOf(time.Time{})

// kindOf maps a Go type to a Kind, returning 0 for unsupported types.
func kindOf(t reflect.Type) Kind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes
		}
	case reflect.Struct:
		if t == timeType {
			return Time
		}
	}
	return 0
}

// CheckValue verifies that v is usable as a literal for f. A nil value is
// accepted for any field; comparisons against nil compile to IS NULL.
func (m *Model) CheckValue(f *Field, v interface{}) error {
	if v == nil {
		return nil
	}
	if kindOf(reflect.TypeOf(v)) != f.Kind {
		return &TypeMismatchError{Model: m.name, Field: f.Name, Kind: f.Kind, Value: v}
	}
	return nil
}

func (f *Field) equal(other *Field) bool {
	if f.Name != other.Name || f.Column != other.Column || f.Kind != other.Kind ||
		f.Nullable != other.Nullable || f.PrimaryKey != other.PrimaryKey ||
		f.AutoIncrement != other.AutoIncrement || f.Default != other.Default ||
		f.Relation != other.Relation {
		return false
	}
	if (f.Reference == nil) != (other.Reference == nil) {
		return false
	}
	if f.Reference != nil && *f.Reference != *other.Reference {
		return false
	}
	return true
}
