// Package product holds the table and column names of the Product entity.
package product

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/store/predicate"
)

const (
	// Label holds the string label denoting the product type in the database.
	Label = "Product"
	// FieldID holds the string denoting the id field in the database.
	FieldID = "id"
)

// Table holds the table name of the product in the database.
var Table = inflect.Pluralize(inflect.Underscore(Label))

// Columns holds all SQL columns for product fields.
var Columns = []string{FieldID}

// IDIn applies the In predicate on the ID field.
func IDIn(ids ...string) predicate.Product {
	return func(s *predicate.Selector) {
		in(s, ids)
	}
}

// IDEQ applies the EQ predicate on the ID field.
func IDEQ(id string) predicate.Product {
	return func(s *predicate.Selector) {
		s.Where(FieldID+" = ?", id)
	}
}

func in(s *predicate.Selector, ids []string) {
	if len(ids) == 0 {
		s.Where("1 = 0")
		return
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	s.Where(FieldID+" IN ("+sql.Placeholders(len(ids))+")", args...)
}
