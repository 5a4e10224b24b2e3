package qdjango

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultFuncs are the functions a field default may name, e.g.
// Default: "now()". They run on insert when the field holds its zero
// value. Literal defaults (no parentheses) are handled by the database
// through the DDL instead.
var defaultFuncs = map[string]func() interface{}{
	"now":   funcNow,
	"today": funcToday,
	"uuid":  funcUUID,
}

func funcNow() interface{} {
	return time.Now().UTC()
}

func funcToday() interface{} {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func funcUUID() interface{} {
	return uuid.NewString()
}

// defaultFunc returns the function named by a field default, or nil when
// the default is a literal or names no registered function.
func defaultFunc(def string) func() interface{} {
	name, ok := strings.CutSuffix(def, "()")
	if !ok {
		return nil
	}
	return defaultFuncs[name]
}
