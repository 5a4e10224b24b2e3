package qdjango

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuzkok/qdjango/query"
)

func TestEscapeLike(t *testing.T) {
	for in, want := range map[string]string{
		"plain":   "plain",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
		"%_":      `\%\_`,
	} {
		assert.Equal(t, want, escapeLike(in), in)
	}
}

func TestLikeShorthands(t *testing.T) {
	for _, tc := range []struct {
		q             query.Q
		pattern       string
		caseSensitive bool
	}{
		{StartsWith("Name", "Bo"), "Bo%", true},
		{IStartsWith("Name", "Bo"), "Bo%", false},
		{EndsWith("Name", "ob"), "%ob", true},
		{IEndsWith("Name", "ob"), "%ob", false},
		{Contains("Name", "o"), "%o%", true},
		{IContains("Name", "o"), "%o%", false},
		{Like("Name", "B_b"), "B_b", true},
		{ILike("Name", "B_b"), "B_b", false},
	} {
		like, ok := tc.q.(*query.Like)
		require.True(t, ok)
		assert.Equal(t, tc.pattern, like.Field.Value)
		assert.Equal(t, tc.caseSensitive, like.CaseSensitive)
	}
}

func TestBetween(t *testing.T) {
	o := sqliteOrm(t)
	user := registerUser(t, o)

	stmt, err := o.Queryset(user).Filter(Between("Age", 18, 65)).SQL()
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, `("users"."age" > ? AND "users"."age" < ?)`)
	assert.Equal(t, []interface{}{18, 65}, stmt.Params)

	stmt, err = o.Queryset(user).Filter(CBetween("Age", 18, 65)).SQL()
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, `("users"."age" >= ? AND "users"."age" <= ?)`)
}

func TestDefaultFunc(t *testing.T) {
	require.Nil(t, defaultFunc("0"))
	require.Nil(t, defaultFunc("admin"))
	require.Nil(t, defaultFunc("nope()"))

	now := defaultFunc("now()")
	require.NotNil(t, now)
	_, ok := now().(time.Time)
	assert.True(t, ok)

	today := defaultFunc("today()")
	require.NotNil(t, today)
	day, ok := today().(time.Time)
	require.True(t, ok)
	assert.Zero(t, day.Hour())
	assert.Zero(t, day.Minute())

	u := defaultFunc("uuid()")
	require.NotNil(t, u)
	s, ok := u().(string)
	require.True(t, ok)
	assert.Len(t, s, 36)
}
