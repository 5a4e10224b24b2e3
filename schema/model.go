package schema

import (
	"reflect"
	"strings"
)

// Definition is the explicit declaration a model is registered from. The
// schema shape comes entirely from the declared fields; the Go type is only
// used to locate struct fields for hydration.
type Definition struct {
	// Name is the model name. Defaults to the Go type name.
	Name string
	// Table is the table name. Defaults to the plural snake case form
	// of the model name.
	Table string
	// Type is a prototype of the Go struct, e.g. (*User)(nil).
	Type interface{}
	// Fields lists the columns in declaration order, which is also the
	// column order of every SELECT and hydration.
	Fields []Field
}

// Relation is a traversable link derived from a foreign key field.
type Relation struct {
	// Name is the traversal name, used in dotted field paths and for
	// locating the struct field eager loads hydrate into.
	Name string
	// Field is the foreign key field on the owning model.
	Field string
	// Target is the referenced model name, Dereferenced lazily through
	// the registry so models may reference models registered later.
	Target string
	// TargetField is the referenced field, usually the primary key.
	TargetField string
}

// Model is the immutable descriptor produced by registering a Definition.
type Model struct {
	registry  *Registry
	name      string
	table     string
	typ       reflect.Type
	fields    []*Field
	byName    map[string]int
	relations map[string]*Relation
	pk        int
}

func (m *Model) Name() string {
	return m.name
}

// Registry returns the registry this model was registered with.
func (m *Model) Registry() *Registry {
	return m.registry
}

func (m *Model) Table() string {
	return m.table
}

// Type returns the Go struct type hydration produces.
func (m *Model) Type() reflect.Type {
	return m.typ
}

// Fields returns the field descriptors in declaration order. The returned
// slice must not be modified.
func (m *Model) Fields() []*Field {
	return m.fields
}

// PrimaryKey returns the primary key descriptor, or nil if the model has
// none.
func (m *Model) PrimaryKey() *Field {
	if m.pk < 0 {
		return nil
	}
	return m.fields[m.pk]
}

// Field resolves a plain field name on this model.
func (m *Model) Field(name string) (*Field, error) {
	if p, ok := m.byName[name]; ok {
		return m.fields[p], nil
	}
	return nil, &UnknownFieldError{Model: m.name, Field: name}
}

// Relation resolves a relation name on this model.
func (m *Model) Relation(name string) (*Relation, error) {
	if r, ok := m.relations[name]; ok {
		return r, nil
	}
	return nil, &UnknownFieldError{Model: m.name, Field: name}
}

// Relations returns the relation names in field declaration order.
func (m *Model) Relations() []*Relation {
	var rels []*Relation
	for _, f := range m.fields {
		if f.Reference != nil {
			rels = append(rels, m.relations[relationName(f)])
		}
	}
	return rels
}

// Index returns the struct field index for a descriptor, for use with
// reflect.Value.FieldByIndex.
func (m *Model) Index(f *Field) []int {
	return f.index
}

// Step is one hop of a resolved dotted field path.
type Step struct {
	Relation *Relation
	// Model is the model the relation lives on.
	Model *Model
	// Target is the resolved target model.
	Target *Model
}

// ResolvePath resolves a possibly dotted field path like "Author.Name",
// traversing foreign key relations. It returns the traversal steps, the
// model owning the final field, and the field itself.
func (m *Model) ResolvePath(path string) ([]Step, *Model, *Field, error) {
	cur := m
	var steps []Step
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		rel, err := cur.Relation(part)
		if err != nil {
			return nil, nil, nil, err
		}
		target, err := m.registry.Model(rel.Target)
		if err != nil {
			return nil, nil, nil, err
		}
		steps = append(steps, Step{Relation: rel, Model: cur, Target: target})
		cur = target
	}
	f, err := cur.Field(parts[len(parts)-1])
	if err != nil {
		return nil, nil, nil, err
	}
	return steps, cur, f, nil
}

func relationName(f *Field) string {
	if f.Relation != "" {
		return f.Relation
	}
	return f.Reference.Model
}

func (m *Model) equal(typ reflect.Type, table string, fields []Field) bool {
	if m.typ != typ || m.table != table || len(m.fields) != len(fields) {
		return false
	}
	for ii, f := range fields {
		if !m.fields[ii].equal(&f) {
			return false
		}
	}
	return true
}
