package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Account struct {
	ID        int64
	Email     string
	Age       int64
	CreatedAt time.Time
}

type Invoice struct {
	ID        int64
	AccountID int64
	PayerID   int64
	Total     float64
}

func accountDef() Definition {
	return Definition{
		Type: (*Account)(nil),
		Fields: []Field{
			{Name: "ID", Kind: Int, PrimaryKey: true, AutoIncrement: true},
			{Name: "Email", Kind: String},
			{Name: "Age", Kind: Int},
			{Name: "CreatedAt", Kind: Time, Default: "now()"},
		},
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register(accountDef())
	require.NoError(t, err)
	assert.Equal(t, "Account", m.Name())
	assert.Equal(t, "accounts", m.Table())

	email, err := m.Field("Email")
	require.NoError(t, err)
	assert.Equal(t, "email", email.Column)
	created, err := m.Field("CreatedAt")
	require.NoError(t, err)
	assert.Equal(t, "created_at", created.Column)

	pk := m.PrimaryKey()
	require.NotNil(t, pk)
	assert.Equal(t, "ID", pk.Name)
	assert.True(t, pk.AutoIncrement)
}

func TestRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	first, err := r.Register(accountDef())
	require.NoError(t, err)
	second, err := r.Register(accountDef())
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A different shape under the same name is a conflict.
	def := accountDef()
	def.Fields[2].Nullable = true
	var conflict *SchemaConflictError
	_, err = r.Register(def)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Account", conflict.Model)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	var conflict *SchemaConflictError

	// Field without a matching struct field.
	_, err := r.Register(Definition{
		Type:   (*Account)(nil),
		Fields: []Field{{Name: "Nope", Kind: Int}},
	})
	require.ErrorAs(t, err, &conflict)

	// Declared kind disagreeing with the struct type.
	_, err = r.Register(Definition{
		Type:   (*Account)(nil),
		Fields: []Field{{Name: "Email", Kind: Int}},
	})
	require.ErrorAs(t, err, &conflict)

	// Two primary keys.
	_, err = r.Register(Definition{
		Type: (*Account)(nil),
		Fields: []Field{
			{Name: "ID", Kind: Int, PrimaryKey: true},
			{Name: "Age", Kind: Int, PrimaryKey: true},
		},
	})
	require.ErrorAs(t, err, &conflict)

	// Auto increment requires an integer primary key.
	_, err = r.Register(Definition{
		Type:   (*Account)(nil),
		Fields: []Field{{Name: "Email", Kind: String, PrimaryKey: true, AutoIncrement: true}},
	})
	require.ErrorAs(t, err, &conflict)

	// Not a struct.
	_, err = r.Register(Definition{Type: 42, Fields: []Field{{Name: "X", Kind: Int}}})
	require.Error(t, err)
}

func TestFreeze(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(accountDef())
	require.NoError(t, err)
	r.Freeze()
	require.True(t, r.Frozen())

	// Identical re-registration stays allowed; new models don't.
	_, err = r.Register(accountDef())
	assert.NoError(t, err)
	var conflict *SchemaConflictError
	_, err = r.Register(Definition{
		Type:   (*Invoice)(nil),
		Fields: []Field{{Name: "ID", Kind: Int, PrimaryKey: true}},
	})
	require.ErrorAs(t, err, &conflict)
}

func TestRelations(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(accountDef())
	require.NoError(t, err)
	invoice, err := r.Register(Definition{
		Type: (*Invoice)(nil),
		Fields: []Field{
			{Name: "ID", Kind: Int, PrimaryKey: true, AutoIncrement: true},
			{Name: "AccountID", Kind: Int,
				Reference: &Reference{Model: "Account", Field: "ID"}},
			{Name: "PayerID", Kind: Int, Relation: "Payer",
				Reference: &Reference{Model: "Account", Field: "ID"}},
			{Name: "Total", Kind: Float},
		},
	})
	require.NoError(t, err)

	rels := invoice.Relations()
	require.Len(t, rels, 2)
	assert.Equal(t, "Account", rels[0].Name)
	assert.Equal(t, "Payer", rels[1].Name)
	assert.Equal(t, "AccountID", rels[0].Field)
	assert.Equal(t, "ID", rels[0].TargetField)

	// Two references to the same model need distinct relation names.
	var conflict *SchemaConflictError
	_, err = r.Register(Definition{
		Name: "Invoice2",
		Type: (*Invoice)(nil),
		Fields: []Field{
			{Name: "AccountID", Kind: Int,
				Reference: &Reference{Model: "Account", Field: "ID"}},
			{Name: "PayerID", Kind: Int,
				Reference: &Reference{Model: "Account", Field: "ID"}},
		},
	})
	require.ErrorAs(t, err, &conflict)
}

func TestResolvePath(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(accountDef())
	require.NoError(t, err)
	invoice, err := r.Register(Definition{
		Type: (*Invoice)(nil),
		Fields: []Field{
			{Name: "ID", Kind: Int, PrimaryKey: true},
			{Name: "AccountID", Kind: Int,
				Reference: &Reference{Model: "Account", Field: "ID"}},
			{Name: "Total", Kind: Float},
		},
	})
	require.NoError(t, err)

	steps, owner, f, err := invoice.ResolvePath("Account.Email")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "Account", steps[0].Relation.Name)
	assert.Equal(t, "Account", owner.Name())
	assert.Equal(t, "email", f.Column)

	_, owner, f, err = invoice.ResolvePath("Total")
	require.NoError(t, err)
	assert.Same(t, invoice, owner)
	assert.Equal(t, "total", f.Column)

	var unknown *UnknownFieldError
	_, _, _, err = invoice.ResolvePath("Account.Nope")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Account", unknown.Model)

	_, _, _, err = invoice.ResolvePath("Nope.Email")
	require.ErrorAs(t, err, &unknown)
}

func TestCheckValue(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register(accountDef())
	require.NoError(t, err)
	email, err := m.Field("Email")
	require.NoError(t, err)

	assert.NoError(t, m.CheckValue(email, "a@b.c"))
	assert.NoError(t, m.CheckValue(email, nil))

	var mismatch *TypeMismatchError
	err = m.CheckValue(email, 42)
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Email", mismatch.Field)
	assert.Equal(t, String, mismatch.Kind)
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"Name":       "name",
		"AuthorID":   "author_id",
		"CreatedAt":  "created_at",
		"HTTPStatus": "http_status",
		"ID":         "id",
	} {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
