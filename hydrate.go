package qdjango

import (
	"fmt"
	"reflect"
	"time"

	"github.com/kuzkok/qdjango/schema"
)

// fieldScanner implements sql.Scanner for a single struct field. It
// tolerates the representation differences between backends (sqlite
// integers for bools, text timestamps, byte slices for strings) and
// records whether the column was NULL so eager-loaded objects can be
// dropped when their whole row is absent.
type fieldScanner struct {
	dest  reflect.Value
	kind  schema.Kind
	isNil bool
}

func (s *fieldScanner) Scan(src interface{}) error {
	s.isNil = false
	switch x := src.(type) {
	case nil:
		s.isNil = true
		s.dest.Set(reflect.Zero(s.dest.Type()))
		return nil
	case int64:
		switch s.kind {
		case schema.Int:
			if s.dest.Kind() >= reflect.Uint && s.dest.Kind() <= reflect.Uint64 {
				s.dest.SetUint(uint64(x))
			} else {
				s.dest.SetInt(x)
			}
			return nil
		case schema.Float:
			s.dest.SetFloat(float64(x))
			return nil
		case schema.Bool:
			s.dest.SetBool(x != 0)
			return nil
		case schema.Time:
			s.dest.Set(reflect.ValueOf(time.Unix(x, 0).UTC()))
			return nil
		}
	case float64:
		switch s.kind {
		case schema.Float:
			s.dest.SetFloat(x)
			return nil
		case schema.Int:
			s.dest.SetInt(int64(x))
			return nil
		}
	case bool:
		if s.kind == schema.Bool {
			s.dest.SetBool(x)
			return nil
		}
	case []byte:
		switch s.kind {
		case schema.Bytes:
			b := make([]byte, len(x))
			copy(b, x)
			s.dest.SetBytes(b)
			return nil
		case schema.String:
			s.dest.SetString(string(x))
			return nil
		case schema.Time:
			return s.scanTimeString(string(x))
		}
	case string:
		switch s.kind {
		case schema.String:
			s.dest.SetString(x)
			return nil
		case schema.Bytes:
			s.dest.SetBytes([]byte(x))
			return nil
		case schema.Time:
			return s.scanTimeString(x)
		}
	case time.Time:
		if s.kind == schema.Time {
			s.dest.Set(reflect.ValueOf(x))
			return nil
		}
	}
	return fmt.Errorf("can't scan %v (%T) into %s field", src, src, s.kind)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

func (s *fieldScanner) scanTimeString(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			s.dest.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return fmt.Errorf("can't parse %q as a time", v)
}

// rowTargets builds the scan destinations for one result row following
// the plan's column order, which is the SELECT column order by
// construction. The base object is scanned in place; every join gets a
// freshly allocated target object whose pointer is attached afterwards by
// attach, unless the whole joined row was NULL.
type rowTargets struct {
	plan     *selectPlan
	base     reflect.Value // struct value, settable
	objs     map[*join]reflect.Value
	scanners []*fieldScanner
	byJoin   map[*join][]*fieldScanner
}

func newRowTargets(plan *selectPlan, base reflect.Value) (*rowTargets, error) {
	rt := &rowTargets{
		plan:   plan,
		base:   base,
		objs:   map[*join]reflect.Value{},
		byJoin: map[*join][]*fieldScanner{},
	}
	for _, col := range plan.cols {
		owner := base
		model := plan.model
		if col.join != nil {
			obj, ok := rt.objs[col.join]
			if !ok {
				obj = reflect.New(col.join.model.Type()).Elem()
				rt.objs[col.join] = obj
			}
			owner = obj
			model = col.join.model
		}
		dest := owner.FieldByIndex(model.Index(col.field))
		if !dest.CanSet() {
			return nil, fmt.Errorf("field %s.%s is not settable", model.Name(), col.field.Name)
		}
		s := &fieldScanner{dest: dest, kind: col.field.Kind}
		rt.scanners = append(rt.scanners, s)
		if col.join != nil {
			rt.byJoin[col.join] = append(rt.byJoin[col.join], s)
		}
	}
	return rt, nil
}

func (rt *rowTargets) dests() []interface{} {
	out := make([]interface{}, len(rt.scanners))
	for ii, s := range rt.scanners {
		out[ii] = s
	}
	return out
}

// attach wires the hydrated related objects into their parents' pointer
// fields. Children register after their parents, so walking the joins in
// reverse attaches the deepest objects first and each parent is copied
// into its own parent with its pointers already set. Joined rows that
// were entirely NULL leave a nil pointer.
func (rt *rowTargets) attach() error {
	for ii := len(rt.plan.joins) - 1; ii >= 0; ii-- {
		j := rt.plan.joins[ii]
		obj, ok := rt.objs[j]
		if !ok {
			continue
		}
		scanners := rt.byJoin[j]
		allNil := true
		for _, s := range scanners {
			if !s.isNil {
				allNil = false
				break
			}
		}
		if allNil && len(scanners) > 0 {
			continue
		}
		parent := rt.base
		parentModel := rt.plan.model
		if j.parent != nil {
			p, ok := rt.objs[j.parent]
			if !ok {
				continue
			}
			parent = p
			parentModel = j.parent.model
		}
		field := parent.FieldByName(j.rel.Name)
		if !field.IsValid() || field.Kind() != reflect.Ptr || field.Type().Elem() != j.model.Type() {
			return fmt.Errorf("type %v needs a *%s field named %q to eager-load the %s relation",
				parentModel.Type(), j.model.Type().Name(), j.rel.Name, j.rel.Name)
		}
		ptr := reflect.New(j.model.Type())
		ptr.Elem().Set(obj)
		field.Set(ptr)
	}
	return nil
}

// outValue checks that out is a non-nil pointer to the model's struct
// type and returns the settable struct value.
func outValue(m *schema.Model, out interface{}) (reflect.Value, error) {
	val := reflect.ValueOf(out)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() {
		return reflect.Value{}, fmt.Errorf("out must be a non-nil *%s, got %T", m.Type().Name(), out)
	}
	elem := val.Elem()
	if elem.Type() != m.Type() {
		return reflect.Value{}, fmt.Errorf("out must be a *%s, got %T", m.Type().Name(), out)
	}
	return elem, nil
}
