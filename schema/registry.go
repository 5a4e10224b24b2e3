package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// Registry holds the registered model descriptors. Registration happens
// during startup; the first query execution freezes the registry, which is
// from then on read-only and safe for concurrent use without locking.
type Registry struct {
	models map[string]*Model
	frozen bool
}

// DefaultRegistry is the registry used by engines that aren't given an
// explicit one.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{models: map[string]*Model{}}
}

// Register validates a definition and produces its immutable descriptor.
// Registering the same name twice with an identical shape is idempotent and
// returns the existing model; a different shape fails with a
// *SchemaConflictError.
func (r *Registry) Register(def Definition) (*Model, error) {
	typ := reflect.TypeOf(def.Type)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("only structs can be registered as models (got %T)", def.Type)
	}
	name := def.Name
	if name == "" {
		name = typ.Name()
	}
	if len(def.Fields) == 0 {
		return nil, &SchemaConflictError{Model: name, Reason: "definition has no fields"}
	}
	table := def.Table
	if table == "" {
		table = inflection.Plural(snakeCase(name))
	}
	fields := make([]Field, len(def.Fields))
	copy(fields, def.Fields)
	for ii := range fields {
		if fields[ii].Column == "" {
			fields[ii].Column = snakeCase(fields[ii].Name)
		}
	}
	if prev, ok := r.models[name]; ok {
		if prev.equal(typ, table, fields) {
			return prev, nil
		}
		return nil, &SchemaConflictError{Model: name, Reason: "already registered with a different shape"}
	}
	if r.frozen {
		return nil, &SchemaConflictError{Model: name, Reason: "registry is frozen after first query execution"}
	}
	m := &Model{
		registry:  r,
		name:      name,
		table:     table,
		typ:       typ,
		byName:    make(map[string]int, len(fields)),
		relations: map[string]*Relation{},
		pk:        -1,
	}
	for ii := range fields {
		f := &fields[ii]
		if _, ok := m.byName[f.Name]; ok {
			return nil, &SchemaConflictError{Model: name, Reason: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		sf, ok := typ.FieldByName(f.Name)
		if !ok {
			return nil, &SchemaConflictError{Model: name, Reason: fmt.Sprintf("type %v has no field %q", typ, f.Name)}
		}
		if kindOf(sf.Type) != f.Kind {
			return nil, &SchemaConflictError{Model: name,
				Reason: fmt.Sprintf("field %q declared as %s but type %v has %v", f.Name, f.Kind, typ, sf.Type)}
		}
		f.index = sf.Index
		if f.PrimaryKey {
			if m.pk >= 0 {
				return nil, &SchemaConflictError{Model: name,
					Reason: fmt.Sprintf("duplicate primary key (%s and %s)", m.fields[m.pk].Name, f.Name)}
			}
			m.pk = ii
		}
		if f.AutoIncrement && (!f.PrimaryKey || f.Kind != Int) {
			return nil, &SchemaConflictError{Model: name,
				Reason: fmt.Sprintf("field %q: auto increment requires an integer primary key", f.Name)}
		}
		if f.Reference != nil {
			rel := relationName(f)
			if _, ok := m.relations[rel]; ok {
				return nil, &SchemaConflictError{Model: name, Reason: fmt.Sprintf("duplicate relation %q", rel)}
			}
			m.relations[rel] = &Relation{
				Name:        rel,
				Field:       f.Name,
				Target:      f.Reference.Model,
				TargetField: f.Reference.Field,
			}
		}
		m.fields = append(m.fields, f)
		m.byName[f.Name] = ii
	}
	r.models[name] = m
	return m, nil
}

// MustRegister works like Register, but panics on error.
func (r *Registry) MustRegister(def Definition) *Model {
	m, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return m
}

// Model resolves a registered model by name.
func (r *Registry) Model(name string) (*Model, error) {
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	return nil, &UnknownModelError{Model: name}
}

// Models returns the registered models in an unspecified order.
func (r *Registry) Models() []*Model {
	models := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		models = append(models, m)
	}
	return models
}

// Freeze marks the registry read-only. Called by the engine before the
// first statement executes; later registrations fail.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for ii, r := range runes {
		if unicode.IsUpper(r) {
			// Insert a separator at word boundaries, keeping runs of
			// capitals like "ID" together.
			if ii > 0 && (!unicode.IsUpper(runes[ii-1]) ||
				(ii+1 < len(runes) && !unicode.IsUpper(runes[ii+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
