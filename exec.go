package qdjango

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
)

// Values maps field names to the new values of an Update. Fields compile
// in model declaration order regardless of map order.
type Values map[string]interface{}

// Iter returns a fresh iterator over the results. Each call re-executes
// the query; nothing is cached across iterations.
func (qs *QuerySet) Iter() *Iter {
	return &Iter{qs: qs, limit: qs.limit}
}

// All materializes every result into out, which must be a pointer to a
// slice of the model's struct type (or of pointers to it).
func (qs *QuerySet) All(out interface{}) error {
	val := reflect.ValueOf(out)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() || val.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a non-nil pointer to a slice, got %T", out)
	}
	slice := val.Elem()
	elemType := slice.Type().Elem()
	byPtr := elemType.Kind() == reflect.Ptr
	if byPtr {
		elemType = elemType.Elem()
	}
	if elemType != qs.model.Type() {
		return fmt.Errorf("out element type must be %v, got %v", qs.model.Type(), slice.Type().Elem())
	}
	slice.SetLen(0)
	iter := qs.Iter()
	defer iter.Close()
	for {
		obj := reflect.New(elemType)
		if !iter.Next(obj.Interface()) {
			break
		}
		if byPtr {
			slice = reflect.Append(slice, obj)
		} else {
			slice = reflect.Append(slice, obj.Elem())
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	val.Elem().Set(slice)
	return nil
}

// First fetches the first result into out. It returns ErrNotFound when
// the query matches no rows.
func (qs *QuerySet) First(out interface{}) error {
	iter := &Iter{qs: qs, limit: 1}
	defer iter.Close()
	if iter.Next(out) {
		return nil
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return ErrNotFound
}

// Count returns the number of matching rows, ignoring limit and offset.
func (qs *QuerySet) Count() (int64, error) {
	qs.orm.freeze()
	stmt, _, err := qs.compileSelect("COUNT(*)", -1)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := qs.orm.conn.QueryRow(stmt.SQL, stmt.Params).Scan(&count); err != nil {
		return 0, execError(stmt.SQL, err)
	}
	return count, nil
}

// Exists reports whether the query matches at least one row.
func (qs *QuerySet) Exists() (bool, error) {
	qs.orm.freeze()
	stmt, _, err := qs.compileSelect("1", 1)
	if err != nil {
		return false, err
	}
	var one int64
	err = qs.orm.conn.QueryRow(stmt.SQL, stmt.Params).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, execError(stmt.SQL, err)
	}
	return one == 1, nil
}

// Delete removes the matching rows and returns the affected count. It
// fails with an *UnsupportedOperationError when the queryset has joins.
func (qs *QuerySet) Delete() (int64, error) {
	qs.orm.freeze()
	stmt, err := qs.compileDelete()
	if err != nil {
		return 0, err
	}
	affected, _, err := qs.orm.conn.Exec(stmt.SQL, stmt.Params)
	if err != nil {
		return 0, execError(stmt.SQL, err)
	}
	return affected, nil
}

// Update sets the given fields on every matching row and returns the
// affected count. Like Delete, it rejects querysets with joins.
func (qs *QuerySet) Update(values Values) (int64, error) {
	qs.orm.freeze()
	stmt, err := qs.compileUpdate(values)
	if err != nil {
		return 0, err
	}
	affected, _, err := qs.orm.conn.Exec(stmt.SQL, stmt.Params)
	if err != nil {
		return 0, execError(stmt.SQL, err)
	}
	return affected, nil
}

// SQL compiles the queryset without executing it. This is the inspection
// entry point for the outer layers (request handlers, scripting) and for
// tests.
func (qs *QuerySet) SQL() (*Statement, error) {
	stmt, _, err := qs.compileSelect("", qs.limit)
	return stmt, err
}

// IsNotFound reports whether err is the no-results sentinel, directly or
// wrapped.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
