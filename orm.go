package qdjango

import (
	"log/slog"

	"github.com/kuzkok/qdjango/config"
	"github.com/kuzkok/qdjango/driver"
	"github.com/kuzkok/qdjango/query"
	"github.com/kuzkok/qdjango/schema"
)

// Orm ties a schema registry to a database connection. Model registration
// happens at startup; the first executed statement freezes the registry,
// after which the Orm is safe for concurrent use from multiple goroutines
// (each execution draws its own connection from the database/sql pool).
type Orm struct {
	conn     *driver.Conn
	registry *schema.Registry
	logger   *slog.Logger
}

// Open connects to the backend registered under name, using the process
// wide default registry. The corresponding dialect subpackage must be
// imported for its side effects, e.g.
//
//	import _ "github.com/kuzkok/qdjango/dialect/sqlite"
func Open(name, dsn string) (*Orm, error) {
	conn, err := driver.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	return New(conn, schema.DefaultRegistry), nil
}

// OpenConfig opens an Orm from a loaded database configuration.
func OpenConfig(db config.Database) (*Orm, error) {
	name, dsn, err := db.DriverAndDSN()
	if err != nil {
		return nil, err
	}
	return Open(name, dsn)
}

// New wraps an established connection with an explicit registry.
func New(conn *driver.Conn, registry *schema.Registry) *Orm {
	return &Orm{conn: conn, registry: registry}
}

// Register declares a model. See schema.Definition for the declaration
// format.
func (o *Orm) Register(def schema.Definition) (*schema.Model, error) {
	return o.registry.Register(def)
}

// MustRegister works like Register, but panics if there's an error.
func (o *Orm) MustRegister(def schema.Definition) *schema.Model {
	m, err := o.Register(def)
	if err != nil {
		panic(err)
	}
	return m
}

// Model resolves a registered model by name. This is the queryset factory
// entry point for layers that only hold model names, like the request
// routing and scripting layers.
func (o *Orm) Model(name string) (*schema.Model, error) {
	return o.registry.Model(name)
}

// Queryset returns an empty queryset bound to the given model. The
// returned value is immutable; builder calls derive new querysets.
func (o *Orm) Queryset(m *schema.Model) *QuerySet {
	return &QuerySet{orm: o, model: m, limit: -1, offset: -1}
}

// QuerysetFor is a shorthand for resolving a model by name and returning
// its queryset.
func (o *Orm) QuerysetFor(name string) (*QuerySet, error) {
	m, err := o.Model(name)
	if err != nil {
		return nil, err
	}
	return o.Queryset(m), nil
}

// Get fetches the first object matching q into out. It returns
// ErrNotFound when nothing matches.
func (o *Orm) Get(m *schema.Model, q query.Q, out interface{}) error {
	return o.Queryset(m).Filter(q).First(out)
}

// Exists is a shorthand for Queryset(m).Filter(q).Exists().
func (o *Orm) Exists(m *schema.Model, q query.Q) (bool, error) {
	return o.Queryset(m).Filter(q).Exists()
}

// Count is a shorthand for Queryset(m).Filter(q).Count(). Pass nil to
// count every row.
func (o *Orm) Count(m *schema.Model, q query.Q) (int64, error) {
	return o.Queryset(m).Filter(q).Count()
}

// Registry returns the schema registry backing this Orm.
func (o *Orm) Registry() *schema.Registry {
	return o.registry
}

// Conn returns the underlying connection adapter.
func (o *Orm) Conn() *driver.Conn {
	return o.conn
}

// SetLogger sets a logger for this Orm. Compiled statements are logged at
// Debug level before execution.
func (o *Orm) SetLogger(logger *slog.Logger) {
	o.logger = logger
	o.conn.SetLogger(logger)
}

func (o *Orm) Close() error {
	return o.conn.Close()
}

// freeze is called before any statement executes; from then on the schema
// is read-only.
func (o *Orm) freeze() {
	if !o.registry.Frozen() {
		o.registry.Freeze()
	}
}
