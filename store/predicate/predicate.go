// Package predicate holds the WHERE builders accepted by store queries.
package predicate

import "strings"

// Selector accumulates WHERE clauses written with '?' placeholders.
type Selector struct {
	clauses []string
	args    []any
}

// Where adds a clause joined with AND to the previous ones.
func (s *Selector) Where(clause string, args ...any) *Selector {
	s.clauses = append(s.clauses, clause)
	s.args = append(s.args, args...)
	return s
}

// Query returns the WHERE part of a statement and its arguments.
// It returns an empty string when no clause was added.
func (s *Selector) Query() (string, []any) {
	if len(s.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(s.clauses, " AND "), s.args
}

// ProductGroup is the predicate function for product_groups queries.
type ProductGroup func(*Selector)

// Product is the predicate function for products queries.
type Product func(*Selector)
