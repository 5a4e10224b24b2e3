package qdjango

import (
	"fmt"

	"github.com/kuzkok/qdjango/query"
	"github.com/kuzkok/qdjango/schema"
)

// validate checks an expression tree against a model: every referenced
// field must resolve (traversing relations for dotted paths) and every
// literal must be compatible with its field's kind. Validation runs at
// builder-call time so a malformed query never reaches the backend.
func validate(m *schema.Model, q query.Q) error {
	switch x := q.(type) {
	case *query.Eq:
		return validateField(m, x.Field)
	case *query.Neq:
		return validateField(m, x.Field)
	case *query.Lt:
		return validateField(m, x.Field)
	case *query.Lte:
		return validateField(m, x.Field)
	case *query.Gt:
		return validateField(m, x.Field)
	case *query.Gte:
		return validateField(m, x.Field)
	case *query.Like:
		_, owner, f, err := m.ResolvePath(x.Field.Field)
		if err != nil {
			return err
		}
		if f.Kind != schema.String {
			return &schema.TypeMismatchError{Model: owner.Name(), Field: f.Name, Kind: f.Kind, Value: x.Field.Value}
		}
		if _, ok := x.Field.Value.(string); !ok {
			return owner.CheckValue(f, x.Field.Value)
		}
		return nil
	case *query.In:
		_, owner, f, err := m.ResolvePath(x.Field.Field)
		if err != nil {
			return err
		}
		values, ok := x.Field.Value.([]interface{})
		if !ok {
			return fmt.Errorf("argument for IN must be a value slice (field %s)", x.Field.Field)
		}
		for _, v := range values {
			if err := owner.CheckValue(f, v); err != nil {
				return err
			}
		}
		return nil
	case *query.IsNull:
		_, _, _, err := m.ResolvePath(x.Name)
		return err
	case *query.And:
		return validateAll(m, x.Conditions)
	case *query.Or:
		return validateAll(m, x.Conditions)
	case *query.Not:
		return validate(m, x.Condition)
	}
	return fmt.Errorf("unsupported query node %T", q)
}

func validateAll(m *schema.Model, qs []query.Q) error {
	for _, q := range qs {
		if q == nil {
			continue
		}
		if err := validate(m, q); err != nil {
			return err
		}
	}
	return nil
}

func validateField(m *schema.Model, f query.Field) error {
	_, owner, fd, err := m.ResolvePath(f.Field)
	if err != nil {
		return err
	}
	if ref, ok := f.Value.(query.F); ok {
		_, _, _, err := m.ResolvePath(string(ref))
		return err
	}
	return owner.CheckValue(fd, f.Value)
}
