package qdjango

import (
	"strings"

	"github.com/kuzkok/qdjango/query"
)

func Eq(field string, value interface{}) query.Q {
	return &query.Eq{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

func Neq(field string, value interface{}) query.Q {
	return &query.Neq{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

func Lt(field string, value interface{}) query.Q {
	return &query.Lt{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

func Lte(field string, value interface{}) query.Q {
	return &query.Lte{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

func Gt(field string, value interface{}) query.Q {
	return &query.Gt{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

func Gte(field string, value interface{}) query.Q {
	return &query.Gte{
		Field: query.Field{
			Field: field,
			Value: value,
		},
	}
}

// In matches when the field equals one of values. An empty values slice
// matches no rows; it compiles to an always-false predicate rather than
// invalid SQL.
func In(field string, values ...interface{}) query.Q {
	return &query.In{
		Field: query.Field{
			Field: field,
			Value: values,
		},
	}
}

// IsNull matches rows where the field is NULL.
func IsNull(field string) query.Q {
	return &query.IsNull{Name: field}
}

// NotNull matches rows where the field is not NULL.
func NotNull(field string) query.Q {
	return &query.IsNull{Name: field, Not: true}
}

// Like matches the field against a raw SQL pattern. The pattern is passed
// through verbatim, wildcards included; use StartsWith, EndsWith or
// Contains for matching against user input.
func Like(field string, pattern string) query.Q {
	return &query.Like{
		Field: query.Field{
			Field: field,
			Value: pattern,
		},
		CaseSensitive: true,
	}
}

// ILike works like Like, matching case-insensitively where the backend
// can express it.
func ILike(field string, pattern string) query.Q {
	return &query.Like{
		Field: query.Field{
			Field: field,
			Value: pattern,
		},
	}
}

func And(qs ...query.Q) query.Q {
	return &query.And{
		Combinator: query.Combinator{
			Conditions: qs,
		},
	}
}

func Or(qs ...query.Q) query.Q {
	return &query.Or{
		Combinator: query.Combinator{
			Conditions: qs,
		},
	}
}

func Not(q query.Q) query.Q {
	return &query.Not{Condition: q}
}

// These are shorthand forms for the previous

func StartsWith(field string, prefix string) query.Q {
	return like(field, escapeLike(prefix)+"%", true)
}

func IStartsWith(field string, prefix string) query.Q {
	return like(field, escapeLike(prefix)+"%", false)
}

func EndsWith(field string, suffix string) query.Q {
	return like(field, "%"+escapeLike(suffix), true)
}

func IEndsWith(field string, suffix string) query.Q {
	return like(field, "%"+escapeLike(suffix), false)
}

func Contains(field string, substr string) query.Q {
	return like(field, "%"+escapeLike(substr)+"%", true)
}

func IContains(field string, substr string) query.Q {
	return like(field, "%"+escapeLike(substr)+"%", false)
}

// Between is equivalent to field > begin AND field < end.
func Between(field string, begin interface{}, end interface{}) query.Q {
	return And(Gt(field, begin), Lt(field, end))
}

// CBetween stands for closed between and is equivalent to field >= begin AND field <= end.
func CBetween(field string, begin interface{}, end interface{}) query.Q {
	return And(Gte(field, begin), Lte(field, end))
}

func like(field, pattern string, caseSensitive bool) query.Q {
	return &query.Like{
		Field: query.Field{
			Field: field,
			Value: pattern,
		},
		CaseSensitive: caseSensitive,
	}
}

// escapeLike neutralizes the LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
