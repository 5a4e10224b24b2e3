package schema

import (
	"fmt"
)

// UnknownModelError is returned when a model name has not been registered.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q", e.Model)
}

// UnknownFieldError is returned when a field reference does not resolve on
// the model it was used with.
type UnknownFieldError struct {
	Model string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("model %q has no field %q", e.Model, e.Field)
}

// TypeMismatchError is returned when a value is not compatible with the
// declared kind of the field it's compared against or assigned to.
type TypeMismatchError struct {
	Model string
	Field string
	Kind  Kind
	Value interface{}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %s.%s has kind %s, can't use value %v (%T)",
		e.Model, e.Field, e.Kind, e.Value, e.Value)
}

// SchemaConflictError is returned when registering a model name with a
// shape different from a previous registration, or after the registry
// has been frozen by the first query execution.
type SchemaConflictError struct {
	Model  string
	Reason string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("can't register model %q: %s", e.Model, e.Reason)
}
