package qdjango

import (
	"database/sql"
	"reflect"
)

// Iter iterates over the results of a queryset. The query executes on the
// first Next call; obtaining a fresh Iter from the same queryset
// re-executes it, so querysets are restartable while Iters are one-shot.
type Iter struct {
	qs      *QuerySet
	limit   int
	stmt    *Statement
	plan    *selectPlan
	rows    *sql.Rows
	started bool
	err     error
}

// Next fetches the next result into out, which must be a non-nil pointer
// to the model's struct type. It returns false when the results are
// exhausted or an error occurs; check Err afterwards.
func (i *Iter) Next(out interface{}) bool {
	if i.err != nil {
		return false
	}
	if !i.started {
		i.start()
		if i.err != nil {
			return false
		}
	}
	if i.rows == nil || !i.rows.Next() {
		i.finish()
		return false
	}
	base, err := outValue(i.qs.model, out)
	if err != nil {
		i.err = err
		return false
	}
	base.Set(reflect.Zero(base.Type()))
	rt, err := newRowTargets(i.plan, base)
	if err != nil {
		i.err = err
		return false
	}
	if err := i.rows.Scan(rt.dests()...); err != nil {
		i.err = execError(i.stmt.SQL, err)
		return false
	}
	if err := rt.attach(); err != nil {
		i.err = err
		return false
	}
	return true
}

func (i *Iter) start() {
	i.started = true
	i.qs.orm.freeze()
	stmt, plan, err := i.qs.compileSelect("", i.limit)
	if err != nil {
		i.err = err
		return
	}
	rows, err := i.qs.orm.conn.Query(stmt.SQL, stmt.Params)
	if err != nil {
		i.err = execError(stmt.SQL, err)
		return
	}
	i.stmt = stmt
	i.plan = plan
	i.rows = rows
}

func (i *Iter) finish() {
	if i.rows == nil {
		return
	}
	err := i.rows.Err()
	if cerr := i.rows.Close(); err == nil {
		err = cerr
	}
	i.rows = nil
	if err != nil && i.err == nil {
		i.err = execError(i.stmt.SQL, err)
	}
}

// Err returns the first error encountered while iterating.
func (i *Iter) Err() error {
	return i.err
}

// Close releases the result set. It's safe to call multiple times and
// after exhaustion.
func (i *Iter) Close() error {
	i.finish()
	return i.err
}
