package qdjango

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/kuzkok/qdjango/dialect"
	"github.com/kuzkok/qdjango/query"
	"github.com/kuzkok/qdjango/schema"
)

// Statement is a compiled, dialect-specific SQL statement with its
// parameter list in placeholder order. Values are always parameters,
// never interpolated into the text.
type Statement struct {
	SQL    string
	Params []interface{}
}

// join is a required relation traversal discovered during compilation.
// Joins are deduplicated by relation path, so filtering twice through the
// same relation emits one clause.
type join struct {
	path   string
	rel    *schema.Relation
	parent *join // nil when joined directly to the base table
	// owner is the model the foreign key lives on.
	owner *schema.Model
	// model is the joined (target) model.
	model *schema.Model
	alias string
	// left joins preserve base rows with no related record; they come
	// from eager includes. Joins required by filters are inner.
	left    bool
	include bool
}

// compiler renders one queryset against one dialect. It collects
// parameters in traversal order and joins in first-reference order; both
// the SELECT list and the hydration plan are derived from the same
// compiler state, so they can't drift apart.
type compiler struct {
	model   *schema.Model
	d       dialect.Dialect
	params  []interface{}
	joins   []*join
	joinIdx map[string]*join
}

func newCompiler(m *schema.Model, d dialect.Dialect) *compiler {
	return &compiler{model: m, d: d, joinIdx: map[string]*join{}}
}

// placeholder appends v to the parameter list and returns its positional
// placeholder.
func (c *compiler) placeholder(v interface{}) string {
	c.params = append(c.params, v)
	return c.d.Placeholder(len(c.params))
}

func (c *compiler) column(alias, column string) string {
	return c.d.QuoteIdent(alias) + "." + c.d.QuoteIdent(column)
}

// resolve maps a dotted field path to a qualified, quoted column
// reference, registering any joins the traversal requires.
func (c *compiler) resolve(path string, left, include bool) (string, *join, *schema.Field, error) {
	steps, _, f, err := c.model.ResolvePath(path)
	if err != nil {
		return "", nil, nil, err
	}
	j, err := c.registerSteps(steps, left, include)
	if err != nil {
		return "", nil, nil, err
	}
	alias := c.model.Table()
	if j != nil {
		alias = j.alias
	}
	return c.column(alias, f.Column), j, f, nil
}

func (c *compiler) registerSteps(steps []schema.Step, left, include bool) (*join, error) {
	var parent *join
	key := ""
	for _, st := range steps {
		if key == "" {
			key = st.Relation.Name
		} else {
			key += "." + st.Relation.Name
		}
		if existing, ok := c.joinIdx[key]; ok {
			existing.left = existing.left && left
			existing.include = existing.include || include
			parent = existing
			continue
		}
		j := &join{
			path:    key,
			rel:     st.Relation,
			parent:  parent,
			owner:   st.Model,
			model:   st.Target,
			alias:   strings.ToLower(strings.ReplaceAll(key, ".", "_")),
			left:    left,
			include: include,
		}
		c.joins = append(c.joins, j)
		c.joinIdx[key] = j
		parent = j
	}
	return parent, nil
}

// resolveRelation registers the join chain for an eager include path and
// returns its final join.
func (c *compiler) resolveRelation(path string) (*join, error) {
	cur := c.model
	var steps []schema.Step
	for _, part := range splitPath(path) {
		rel, err := cur.Relation(part)
		if err != nil {
			return nil, err
		}
		target, err := c.model.Registry().Model(rel.Target)
		if err != nil {
			return nil, err
		}
		steps = append(steps, schema.Step{Relation: rel, Model: cur, Target: target})
		cur = target
	}
	return c.registerSteps(steps, true, true)
}

// where renders the condition tree. A nil tree means no constraint and
// renders to the empty string.
func (c *compiler) where(q query.Q) (string, error) {
	if q == nil {
		return "", nil
	}
	return c.condition(q, false)
}

// condition renders one node. Negation is simplified where an inverse
// operator exists, so NOT(a < b) becomes a >= b and NOT IS NULL becomes
// IS NOT NULL; only combinators render an explicit NOT (...).
func (c *compiler) condition(q query.Q, negate bool) (string, error) {
	switch x := q.(type) {
	case *query.Eq:
		if negate {
			return c.cmp(x.Field, "!=", "IS NOT NULL")
		}
		return c.cmp(x.Field, "=", "IS NULL")
	case *query.Neq:
		if negate {
			return c.cmp(x.Field, "=", "IS NULL")
		}
		return c.cmp(x.Field, "!=", "IS NOT NULL")
	case *query.Lt:
		return c.cmp(x.Field, pick(negate, ">=", "<"), "")
	case *query.Lte:
		return c.cmp(x.Field, pick(negate, ">", "<="), "")
	case *query.Gt:
		return c.cmp(x.Field, pick(negate, "<=", ">"), "")
	case *query.Gte:
		return c.cmp(x.Field, pick(negate, "<", ">="), "")
	case *query.In:
		return c.in(x, negate)
	case *query.Like:
		return c.like(x, negate)
	case *query.IsNull:
		col, _, _, err := c.resolve(x.Name, false, false)
		if err != nil {
			return "", err
		}
		if x.Not != negate {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil
	case *query.And:
		return c.combine(x.Conditions, " AND ", negate)
	case *query.Or:
		return c.combine(x.Conditions, " OR ", negate)
	case *query.Not:
		return c.condition(x.Condition, !negate)
	}
	return "", fmt.Errorf("unsupported query node %T", q)
}

func (c *compiler) cmp(f query.Field, op string, nullOp string) (string, error) {
	col, _, _, err := c.resolve(f.Field, false, false)
	if err != nil {
		return "", err
	}
	if f.Value == nil && nullOp != "" {
		return col + " " + nullOp, nil
	}
	if ref, ok := f.Value.(query.F); ok {
		other, _, _, err := c.resolve(string(ref), false, false)
		if err != nil {
			return "", err
		}
		return col + " " + op + " " + other, nil
	}
	return col + " " + op + " " + c.placeholder(f.Value), nil
}

// in renders an IN predicate. Over an empty value set it renders the
// dialect's always-false predicate (always-true when negated) instead of
// the invalid empty list syntax.
func (c *compiler) in(x *query.In, negate bool) (string, error) {
	col, _, _, err := c.resolve(x.Field.Field, false, false)
	if err != nil {
		return "", err
	}
	values, ok := x.Field.Value.([]interface{})
	if !ok {
		return "", fmt.Errorf("argument for IN must be a value slice (field %s)", x.Field.Field)
	}
	if len(values) == 0 {
		if negate {
			return c.d.TrueClause(), nil
		}
		return c.d.FalseClause(), nil
	}
	placeholders := make([]string, len(values))
	for ii, v := range values {
		placeholders[ii] = c.placeholder(v)
	}
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	return col + " " + op + " (" + strings.Join(placeholders, ",") + ")", nil
}

func (c *compiler) like(x *query.Like, negate bool) (string, error) {
	col, _, _, err := c.resolve(x.Field.Field, false, false)
	if err != nil {
		return "", err
	}
	op := c.d.LikeOperator(x.CaseSensitive)
	if negate {
		op = "NOT " + op
	}
	return col + " " + op + " " + c.placeholder(x.Field.Value) + c.d.LikeEscape(), nil
}

func (c *compiler) combine(conditions []query.Q, sep string, negate bool) (string, error) {
	clauses := make([]string, 0, len(conditions))
	for _, q := range conditions {
		if q == nil {
			continue
		}
		clause, err := c.condition(q, false)
		if err != nil {
			return "", err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		// An empty combinator matches everything; negated it matches
		// nothing.
		if negate {
			return c.d.FalseClause(), nil
		}
		return "", nil
	}
	combined := "(" + strings.Join(clauses, sep) + ")"
	if negate {
		combined = "NOT " + combined
	}
	return combined, nil
}

// writeJoins appends the JOIN clauses in first-reference order. Parent
// joins always precede their children.
func (c *compiler) writeJoins(buf *bytes.Buffer) {
	for _, j := range c.joins {
		if j.left {
			buf.WriteString(" LEFT JOIN ")
		} else {
			buf.WriteString(" INNER JOIN ")
		}
		buf.WriteString(c.d.QuoteIdent(j.model.Table()))
		buf.WriteString(" AS ")
		buf.WriteString(c.d.QuoteIdent(j.alias))
		buf.WriteString(" ON ")
		parentAlias := c.model.Table()
		if j.parent != nil {
			parentAlias = j.parent.alias
		}
		fk, _ := j.owner.Field(j.rel.Field)
		target, _ := j.model.Field(j.rel.TargetField)
		buf.WriteString(c.column(parentAlias, fk.Column))
		buf.WriteString(" = ")
		buf.WriteString(c.column(j.alias, target.Column))
	}
}

// planColumn ties one SELECT column to the join (nil for the base model)
// and field it hydrates into.
type planColumn struct {
	join  *join
	field *schema.Field
}

// selectPlan is the hydration side of a compiled SELECT. It's derived
// from the same compiler state as the column list, within one execution,
// so the column order always matches.
type selectPlan struct {
	model *schema.Model
	cols  []planColumn
	joins []*join
}

// compileSelect renders the queryset to a SELECT statement plus its
// hydration plan. A non-empty raw selector (e.g. "COUNT(*)" or "1")
// replaces the column list and skips ordering, offset and the plan.
func (qs *QuerySet) compileSelect(raw string, limit int) (*Statement, *selectPlan, error) {
	if qs.err != nil {
		return nil, nil, qs.err
	}
	c := newCompiler(qs.model, qs.orm.conn.Dialect())
	// Includes come first so the column list follows include order.
	for _, rel := range qs.includes {
		if _, err := c.resolveRelation(rel); err != nil {
			return nil, nil, err
		}
	}
	var sel []string
	var cols []planColumn
	switch {
	case raw != "":
		sel = append(sel, raw)
	case len(qs.fields) > 0:
		for _, path := range qs.fields {
			ref, j, f, err := c.resolve(path, false, false)
			if err != nil {
				return nil, nil, err
			}
			sel = append(sel, ref)
			cols = append(cols, planColumn{join: j, field: f})
		}
	default:
		for _, f := range qs.model.Fields() {
			sel = append(sel, c.column(qs.model.Table(), f.Column))
			cols = append(cols, planColumn{field: f})
		}
		// Every join on an include path gets its columns, so a nested
		// include like "Author.Publisher" hydrates the intermediate
		// object too.
		for _, j := range c.joins {
			if !j.include {
				continue
			}
			for _, f := range j.model.Fields() {
				sel = append(sel, c.column(j.alias, f.Column))
				cols = append(cols, planColumn{join: j, field: f})
			}
		}
	}
	where, err := c.where(qs.cond)
	if err != nil {
		return nil, nil, err
	}
	var orderBy []string
	if raw == "" {
		for _, o := range qs.sort {
			ref, _, _, err := c.resolve(o.field, false, false)
			if err != nil {
				return nil, nil, err
			}
			if o.dir == DESC {
				ref += " DESC"
			}
			orderBy = append(orderBy, ref)
		}
	}
	var buf bytes.Buffer
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(sel, ","))
	buf.WriteString(" FROM ")
	buf.WriteString(c.d.QuoteIdent(qs.model.Table()))
	c.writeJoins(&buf)
	if where != "" {
		buf.WriteString(" WHERE ")
		buf.WriteString(where)
	}
	if len(orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(orderBy, ","))
	}
	if limit >= 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(limit))
	}
	if raw == "" && qs.offset >= 0 {
		buf.WriteString(" OFFSET ")
		buf.WriteString(strconv.Itoa(qs.offset))
	}
	stmt := &Statement{SQL: buf.String(), Params: c.params}
	if raw != "" {
		return stmt, nil, nil
	}
	return stmt, &selectPlan{model: qs.model, cols: cols, joins: c.joins}, nil
}

// compileUpdate renders an UPDATE over the model's table. Querysets with
// joins (includes or dotted filter paths) are rejected: the target table
// would be ambiguous.
func (qs *QuerySet) compileUpdate(values Values) (*Statement, error) {
	if qs.err != nil {
		return nil, qs.err
	}
	if len(qs.includes) > 0 {
		return nil, &UnsupportedOperationError{Op: "update", Reason: "queryset has eager-loaded relations"}
	}
	if len(values) == 0 {
		return nil, &UnsupportedOperationError{Op: "update", Reason: "no values to set"}
	}
	c := newCompiler(qs.model, qs.orm.conn.Dialect())
	// SET parameters precede WHERE parameters; fields compile in
	// declaration order so the statement is deterministic.
	var buf bytes.Buffer
	buf.WriteString("UPDATE ")
	buf.WriteString(c.d.QuoteIdent(qs.model.Table()))
	buf.WriteString(" SET ")
	assigned := 0
	for _, f := range qs.model.Fields() {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := qs.model.CheckValue(f, v); err != nil {
			return nil, err
		}
		if assigned > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(c.d.QuoteIdent(f.Column))
		buf.WriteString(" = ")
		buf.WriteString(c.placeholder(v))
		assigned++
	}
	if assigned != len(values) {
		for name := range values {
			if _, err := qs.model.Field(name); err != nil {
				return nil, err
			}
		}
	}
	where, err := c.where(qs.cond)
	if err != nil {
		return nil, err
	}
	if len(c.joins) > 0 {
		return nil, &UnsupportedOperationError{Op: "update", Reason: "filter traverses a relation"}
	}
	if where != "" {
		buf.WriteString(" WHERE ")
		buf.WriteString(where)
	}
	return &Statement{SQL: buf.String(), Params: c.params}, nil
}

// compileDelete renders a DELETE, with the same join restriction as
// compileUpdate.
func (qs *QuerySet) compileDelete() (*Statement, error) {
	if qs.err != nil {
		return nil, qs.err
	}
	if len(qs.includes) > 0 {
		return nil, &UnsupportedOperationError{Op: "delete", Reason: "queryset has eager-loaded relations"}
	}
	c := newCompiler(qs.model, qs.orm.conn.Dialect())
	where, err := c.where(qs.cond)
	if err != nil {
		return nil, err
	}
	if len(c.joins) > 0 {
		return nil, &UnsupportedOperationError{Op: "delete", Reason: "filter traverses a relation"}
	}
	var buf bytes.Buffer
	buf.WriteString("DELETE FROM ")
	buf.WriteString(c.d.QuoteIdent(qs.model.Table()))
	if where != "" {
		buf.WriteString(" WHERE ")
		buf.WriteString(where)
	}
	return &Statement{SQL: buf.String(), Params: c.params}, nil
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
