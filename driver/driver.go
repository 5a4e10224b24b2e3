// Package driver provides the connection adapter the engine executes
// compiled statements through. It's a thin layer over database/sql: the
// pool, timeouts and retries all belong to the underlying driver.
package driver

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kuzkok/qdjango/dialect"
)

var (
	ErrInTransaction    = errors.New("already in a transaction")
	ErrNotInTransaction = errors.New("not in a transaction")
	// ErrFinished is returned when committing or rolling back a
	// transaction that was already finished.
	ErrFinished = errors.New("transaction already finished")
)

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Conn executes parameterized statements against a backend. A Conn
// obtained from Begin routes statements through the transaction until
// Commit or Rollback.
type Conn struct {
	sqlDB   *sql.DB
	tx      *sql.Tx
	q       queryer
	dialect dialect.Dialect
	logger  *slog.Logger
}

// Open connects to the backend registered under name. The name selects
// both the dialect and the database/sql driver; backend subpackages under
// dialect/ must be imported for their side effects.
func Open(name, dsn string) (*Conn, error) {
	d := dialect.Get(name)
	if d == nil {
		return nil, fmt.Errorf("no driver registered for %q (missing dialect import?)", name)
	}
	db, err := sql.Open(d.Name(), dsn)
	if err != nil {
		return nil, err
	}
	return &Conn{sqlDB: db, q: db, dialect: d}, nil
}

func (c *Conn) Dialect() dialect.Dialect {
	return c.dialect
}

// DB exposes the underlying pool, e.g. for PRAGMA statements in tests.
func (c *Conn) DB() *sql.DB {
	return c.sqlDB
}

func (c *Conn) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Conn) Query(query string, params []interface{}) (*sql.Rows, error) {
	c.debugq(query, params)
	return c.q.Query(query, params...)
}

func (c *Conn) QueryRow(query string, params []interface{}) *sql.Row {
	c.debugq(query, params)
	return c.q.QueryRow(query, params...)
}

// Exec runs a write statement and returns the affected row count and, when
// the backend provides one, the last inserted id.
func (c *Conn) Exec(query string, params []interface{}) (affected int64, lastID int64, err error) {
	c.debugq(query, params)
	res, err := c.q.Exec(query, params...)
	if err != nil {
		return 0, 0, err
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	// Not every backend reports insert ids; ignore the error and let
	// the caller use RETURNING where supported.
	lastID, _ = res.LastInsertId()
	return affected, lastID, nil
}

// Begin starts a transaction and returns a Conn scoped to it. The parent
// Conn stays usable outside the transaction.
func (c *Conn) Begin() (*Conn, error) {
	if c.tx != nil {
		return nil, ErrInTransaction
	}
	tx, err := c.sqlDB.Begin()
	if err != nil {
		return nil, err
	}
	return &Conn{sqlDB: c.sqlDB, tx: tx, q: tx, dialect: c.dialect, logger: c.logger}, nil
}

func (c *Conn) Commit() error {
	if c.tx == nil {
		return ErrNotInTransaction
	}
	err := c.tx.Commit()
	if errors.Is(err, sql.ErrTxDone) {
		return ErrFinished
	}
	return err
}

func (c *Conn) Rollback() error {
	if c.tx == nil {
		return ErrNotInTransaction
	}
	err := c.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return ErrFinished
	}
	return err
}

func (c *Conn) Close() error {
	if c.tx != nil {
		return nil
	}
	return c.sqlDB.Close()
}

func (c *Conn) debugq(query string, params []interface{}) {
	if c.logger == nil {
		return
	}
	if len(params) > 0 {
		c.logger.Debug("SQL", "query", query, "params", params)
	} else {
		c.logger.Debug("SQL", "query", query)
	}
}
