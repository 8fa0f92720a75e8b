// Package productgroup holds the table and column names of the ProductGroup
// entity and its predicates.
package productgroup

import (
	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/store/predicate"
	"github.com/syssam/collection/store/product"
)

const (
	// Label holds the string label denoting the productgroup type in the database.
	Label = "ProductGroup"
	// FieldID holds the string denoting the id field in the database.
	FieldID = "id"
	// FieldName holds the string denoting the name field in the database.
	FieldName = "name"
	// EdgeProducts holds the string denoting the products edge name in mutations.
	EdgeProducts = "products"
)

var (
	// Table holds the table name of the productgroup in the database.
	Table = inflect.Pluralize(inflect.Underscore(Label))
	// ProductsTable is the join table of the products edge.
	ProductsTable = inflect.Underscore(Label) + "_" + product.Table
	// ProductsPrimaryKey is the primary key of the join table: the group
	// column first, then the product column.
	ProductsPrimaryKey = []string{
		inflect.Underscore(Label) + "_id",
		inflect.Underscore(product.Label) + "_id",
	}
)

// Columns holds all SQL columns for productgroup fields.
var Columns = []string{FieldID, FieldName}

// DefaultID generates the id of a new group.
var DefaultID = uuid.NewString

// IDIn applies the In predicate on the ID field.
func IDIn(ids ...string) predicate.ProductGroup {
	return func(s *predicate.Selector) {
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
}

// IDEQ applies the EQ predicate on the ID field.
func IDEQ(id string) predicate.ProductGroup {
	return func(s *predicate.Selector) {
		s.Where(FieldID+" = ?", id)
	}
}

// NameEQ applies the EQ predicate on the name field.
func NameEQ(name string) predicate.ProductGroup {
	return func(s *predicate.Selector) {
		s.Where(FieldName+" = ?", name)
	}
}

// NameIsNil applies the IsNil predicate on the name field.
func NameIsNil() predicate.ProductGroup {
	return func(s *predicate.Selector) {
		s.Where(FieldName + " IS NULL")
	}
}
