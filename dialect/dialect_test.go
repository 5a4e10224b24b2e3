package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuzkok/qdjango/dialect"
	_ "github.com/kuzkok/qdjango/dialect/mysql"
	_ "github.com/kuzkok/qdjango/dialect/postgres"
	_ "github.com/kuzkok/qdjango/dialect/sqlite"
	"github.com/kuzkok/qdjango/schema"
)

func TestRegisteredBackends(t *testing.T) {
	for _, name := range []string{"sqlite", "sqlite3", "postgres", "mysql"} {
		assert.NotNil(t, dialect.Get(name), name)
	}
	assert.Nil(t, dialect.Get("nope"))
}

func TestSQLite(t *testing.T) {
	d := dialect.Get("sqlite")
	require.NotNil(t, d)
	assert.Equal(t, "sqlite3", d.Name())
	assert.Equal(t, "?", d.Placeholder(1))
	assert.Equal(t, "?", d.Placeholder(7))
	assert.Equal(t, `"users"`, d.QuoteIdent("users"))
	assert.Equal(t, "LIKE", d.LikeOperator(true))
	assert.Equal(t, ` ESCAPE '\'`, d.LikeEscape())
	assert.False(t, d.InsertReturning())
	assert.Equal(t, "INTEGER", d.ColumnType(schema.Int))
	assert.Equal(t, "INTEGER PRIMARY KEY AUTOINCREMENT", d.PrimaryKeyColumn(schema.Int, true))
	assert.Equal(t, "TEXT PRIMARY KEY", d.PrimaryKeyColumn(schema.String, false))
}

func TestPostgres(t *testing.T) {
	d := dialect.Get("postgres")
	require.NotNil(t, d)
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$12", d.Placeholder(12))
	assert.Equal(t, "LIKE", d.LikeOperator(true))
	assert.Equal(t, "ILIKE", d.LikeOperator(false))
	assert.True(t, d.InsertReturning())
	assert.Equal(t, "BIGSERIAL PRIMARY KEY", d.PrimaryKeyColumn(schema.Int, true))
	assert.Equal(t, "TIMESTAMP WITH TIME ZONE", d.ColumnType(schema.Time))
}

func TestMySQL(t *testing.T) {
	d := dialect.Get("mysql")
	require.NotNil(t, d)
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, "`users`", d.QuoteIdent("users"))
	assert.Equal(t, "LIKE BINARY", d.LikeOperator(true))
	assert.Equal(t, "LIKE", d.LikeOperator(false))
	assert.Equal(t, "() VALUES ()", d.DefaultValues())
	assert.Equal(t, "BIGINT PRIMARY KEY AUTO_INCREMENT", d.PrimaryKeyColumn(schema.Int, true))
}
