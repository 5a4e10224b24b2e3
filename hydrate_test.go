package qdjango

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuzkok/qdjango/schema"
)

func scanInto(t *testing.T, kind schema.Kind, dest interface{}, src interface{}) *fieldScanner {
	t.Helper()
	s := &fieldScanner{dest: reflect.ValueOf(dest).Elem(), kind: kind}
	require.NoError(t, s.Scan(src))
	return s
}

func TestFieldScannerConversions(t *testing.T) {
	var i int64
	scanInto(t, schema.Int, &i, int64(42))
	assert.EqualValues(t, 42, i)

	var b bool
	scanInto(t, schema.Bool, &b, int64(1))
	assert.True(t, b)
	scanInto(t, schema.Bool, &b, false)
	assert.False(t, b)

	var f float64
	scanInto(t, schema.Float, &f, 1.5)
	assert.Equal(t, 1.5, f)

	var s string
	scanInto(t, schema.String, &s, []byte("hello"))
	assert.Equal(t, "hello", s)

	var ts time.Time
	scanInto(t, schema.Time, &ts, "2026-08-29 10:30:00")
	assert.Equal(t, time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC), ts.UTC())

	want := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	scanInto(t, schema.Time, &ts, want)
	assert.True(t, ts.Equal(want))
}

func TestFieldScannerNull(t *testing.T) {
	s := "stale"
	scanner := scanInto(t, schema.String, &s, nil)
	assert.True(t, scanner.isNil)
	assert.Empty(t, s)
}

func TestFieldScannerMismatch(t *testing.T) {
	var i int64
	s := &fieldScanner{dest: reflect.ValueOf(&i).Elem(), kind: schema.Int}
	assert.Error(t, s.Scan("not a number"))
}

type Event struct {
	ID      int64
	Name    string
	Active  bool
	Score   float64
	Payload []byte
	At      time.Time
}

// Typed columns survive a write-read cycle through SQLite's loose storage
// classes.
func TestTypedRoundtrip(t *testing.T) {
	runTest(t, func(t *testing.T, o *Orm) {
		event := o.MustRegister(schema.Definition{
			Type: (*Event)(nil),
			Fields: []schema.Field{
				{Name: "ID", Kind: schema.Int, PrimaryKey: true, AutoIncrement: true},
				{Name: "Name", Kind: schema.String},
				{Name: "Active", Kind: schema.Bool},
				{Name: "Score", Kind: schema.Float},
				{Name: "Payload", Kind: schema.Bytes, Nullable: true},
				{Name: "At", Kind: schema.Time},
			},
		})
		require.NoError(t, o.CreateTables())

		at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
		in := &Event{Name: "deploy", Active: true, Score: 0.75, Payload: []byte{1, 2, 3}, At: at}
		require.NoError(t, o.Insert(event, in))

		var got Event
		require.NoError(t, o.Get(event, Eq("ID", in.ID), &got))
		assert.Equal(t, "deploy", got.Name)
		assert.True(t, got.Active)
		assert.Equal(t, 0.75, got.Score)
		assert.Equal(t, []byte{1, 2, 3}, got.Payload)
		assert.True(t, got.At.Equal(at), got.At)

		ok, err := o.Exists(event, Eq("Active", true))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
