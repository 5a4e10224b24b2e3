package qdjango

import (
	"github.com/kuzkok/qdjango/query"
	"github.com/kuzkok/qdjango/schema"
)

// Direction is the sort direction of an OrderBy entry.
type Direction int

const (
	ASC Direction = iota
	DESC
)

type order struct {
	field string
	dir   Direction
}

// QuerySet is an immutable, lazily executed description of a query. Every
// builder call returns a new value sharing the model descriptor, so
// querysets can be stored, branched and shared between goroutines freely.
// Nothing is compiled or executed until a terminal operation (Iter, All,
// First, Count, Exists, Delete, Update) runs.
type QuerySet struct {
	orm   *Orm
	model *schema.Model
	cond  query.Q
	sort  []order
	// projection of dotted field paths; empty means every column of the
	// model plus any included relations.
	fields   []string
	includes []string
	limit    int
	offset   int
	// the first builder error; builder calls validate eagerly and
	// terminal operations surface the error without touching the
	// backend.
	err error
}

func (qs *QuerySet) clone() *QuerySet {
	c := *qs
	c.sort = qs.sort[:len(qs.sort):len(qs.sort)]
	c.fields = qs.fields[:len(qs.fields):len(qs.fields)]
	c.includes = qs.includes[:len(qs.includes):len(qs.includes)]
	return &c
}

// Filter derives a queryset restricted by q, ANDed with any previous
// condition. The expression is validated against the model immediately:
// unknown fields and type mismatches are reported here, not at execution
// time.
func (qs *QuerySet) Filter(q query.Q) *QuerySet {
	return qs.addCondition(q, false)
}

// Exclude derives a queryset that ANDs the negation of q.
func (qs *QuerySet) Exclude(q query.Q) *QuerySet {
	return qs.addCondition(q, true)
}

func (qs *QuerySet) addCondition(q query.Q, negate bool) *QuerySet {
	if q == nil {
		return qs
	}
	c := qs.clone()
	if c.err == nil {
		if err := validate(qs.model, q); err != nil {
			c.err = err
			return c
		}
	}
	if negate {
		q = Not(q)
	}
	if c.cond == nil {
		c.cond = q
	} else {
		c.cond = And(c.cond, q)
	}
	return c
}

// OrderBy appends an ordering entry. Entries compile to ORDER BY in
// declaration order exactly; callers wanting deterministic pagination
// must include a unique tiebreaker field themselves.
func (qs *QuerySet) OrderBy(field string, dir Direction) *QuerySet {
	c := qs.clone()
	if c.err == nil {
		if _, _, _, err := qs.model.ResolvePath(field); err != nil {
			c.err = err
			return c
		}
	}
	c.sort = append(c.sort, order{field: field, dir: dir})
	return c
}

// Limit caps the number of results. A negative limit means no limit.
func (qs *QuerySet) Limit(limit int) *QuerySet {
	c := qs.clone()
	c.limit = limit
	return c
}

// Offset skips the first offset results.
func (qs *QuerySet) Offset(offset int) *QuerySet {
	c := qs.clone()
	c.offset = offset
	return c
}

// Select restricts the columns fetched and hydrated to the given field
// paths. Unselected fields keep their zero value. Dotted paths join
// through the relation and hydrate into the related object.
func (qs *QuerySet) Select(fields ...string) *QuerySet {
	c := qs.clone()
	if c.err == nil {
		for _, f := range fields {
			if _, _, _, err := qs.model.ResolvePath(f); err != nil {
				c.err = err
				break
			}
		}
	}
	c.fields = append(c.fields, fields...)
	return c
}

// Include eager-loads a relation with a LEFT JOIN, hydrating the related
// object into the parent's pointer field of the same name. Rows without a
// related record are preserved with a nil pointer.
func (qs *QuerySet) Include(relations ...string) *QuerySet {
	c := qs.clone()
	if c.err == nil {
		for _, rel := range relations {
			// A relation path is a field path minus the final field;
			// resolve it against the target's fields by appending the
			// relation's own target field.
			if _, err := resolveRelationPath(qs.model, rel); err != nil {
				c.err = err
				break
			}
		}
	}
	c.includes = append(c.includes, relations...)
	return c
}

// Err returns the first error produced by a builder call, if any.
func (qs *QuerySet) Err() error {
	return qs.err
}

// resolveRelationPath walks a dotted relation path like
// "Author.Publisher" and returns the final target model.
func resolveRelationPath(m *schema.Model, path string) (*schema.Model, error) {
	cur := m
	for _, part := range splitPath(path) {
		rel, err := cur.Relation(part)
		if err != nil {
			return nil, err
		}
		target, err := m.Registry().Model(rel.Target)
		if err != nil {
			return nil, err
		}
		cur = target
	}
	return cur, nil
}
