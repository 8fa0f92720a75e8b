package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/collection/dialect"
)

// Rebind rewrites '?' placeholders into the bind syntax of the dialect.
// PostgreSQL uses ordinal placeholders ($1, $2, ...); SQLite and MySQL
// accept '?' as is. Placeholders inside single-quoted literals are kept.
func Rebind(name, query string) string {
	if !strings.HasPrefix(name, dialect.Postgres) || !strings.Contains(query, "?") {
		return query
	}
	var (
		b      strings.Builder
		n      int
		quoted bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			quoted = !quoted
			b.WriteByte(ch)
		case ch == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Placeholders returns n comma separated '?' placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
