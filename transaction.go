package qdjango

import (
	"errors"

	"github.com/kuzkok/qdjango/driver"
)

var (
	ErrInTransaction    = driver.ErrInTransaction
	ErrNotInTransaction = driver.ErrNotInTransaction
	ErrFinished         = driver.ErrFinished
)

// Tx is an Orm scoped to a transaction. Statements issued through it see
// and affect only the transaction until Commit.
type Tx struct {
	Orm
	done bool
}

// Begin starts a transaction.
func (o *Orm) Begin() (*Tx, error) {
	conn, err := o.conn.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{Orm: Orm{conn: conn, registry: o.registry, logger: o.logger}}, nil
}

// Begin just returns ErrInTransaction when called on a transaction.
func (t *Tx) Begin() (*Tx, error) {
	return nil, ErrInTransaction
}

// Commit commits the transaction. If it was already committed or rolled
// back, it returns ErrFinished.
func (t *Tx) Commit() error {
	if t.done {
		return ErrFinished
	}
	if t.logger != nil {
		t.logger.Debug("committing transaction")
	}
	if err := t.conn.Commit(); err != nil {
		return err
	}
	t.done = true
	return nil
}

// Rollback rolls the transaction back. If it was already committed or
// rolled back, it returns ErrFinished.
func (t *Tx) Rollback() error {
	if t.done {
		return ErrFinished
	}
	if t.logger != nil {
		t.logger.Debug("rolling back transaction")
	}
	if err := t.conn.Rollback(); err != nil {
		return err
	}
	t.done = true
	return nil
}

// Close rolls the transaction back unless it was committed. It's meant to
// be deferred right after Begin, so the transaction is released even on
// panic or early return:
//
//	tx, err := o.Begin()
//	if err != nil {
//		return err
//	}
//	defer tx.Close()
//	// ... work with tx ...
//	return tx.Commit()
func (t *Tx) Close() error {
	if t.done {
		return nil
	}
	return t.Rollback()
}

// Transaction runs f inside a transaction, committing when it returns
// nil and rolling back otherwise. Returning the Rollback sentinel rolls
// back without Transaction reporting an error.
func (o *Orm) Transaction(f func(*Tx) error) error {
	tx, err := o.Begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	if err := f(tx); err != nil {
		if errors.Is(err, Rollback) {
			return tx.Rollback()
		}
		return err
	}
	return tx.Commit()
}
