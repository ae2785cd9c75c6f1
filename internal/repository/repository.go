// Package repository holds the GORM data access layer. Each store is an
// interface plus a private implementation; services depend on the interface.
package repository

import (
	"errors"
	"strings"
)

// ErrNoRowsAffected is returned by guarded updates whose WHERE matched nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// likePattern builds a case-insensitive "contains" pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}

// likeClause ORs LOWER(col) LIKE ? over cols, escaping with backslash.
func likeClause(cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(COALESCE(" + c + ", '')) LIKE ? ESCAPE '\\'"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func repeatArg(v interface{}, n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = v
	}
	return out
}
