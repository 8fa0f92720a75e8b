package store

import (
	"context"
	"errors"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/dialect/sql/schema"
	"github.com/syssam/collection/store/product"
	"github.com/syssam/collection/store/productgroup"
)

var (
	// ProductsColumns holds the columns for the "products" table.
	ProductsColumns = []*schema.Column{
		{Name: product.FieldID},
	}
	// ProductsTable holds the schema information for the "products" table.
	ProductsTable = &schema.Table{
		Name:       product.Table,
		Columns:    ProductsColumns,
		PrimaryKey: []*schema.Column{ProductsColumns[0]},
	}
	// ProductGroupsColumns holds the columns for the "product_groups" table.
	ProductGroupsColumns = []*schema.Column{
		{Name: productgroup.FieldID},
		{Name: productgroup.FieldName, Nullable: true},
	}
	// ProductGroupsTable holds the schema information for the "product_groups" table.
	ProductGroupsTable = &schema.Table{
		Name:       productgroup.Table,
		Columns:    ProductGroupsColumns,
		PrimaryKey: []*schema.Column{ProductGroupsColumns[0]},
	}
	// ProductGroupProductsColumns holds the columns for the "product_group_products" table.
	ProductGroupProductsColumns = []*schema.Column{
		{Name: productgroup.ProductsPrimaryKey[0]},
		{Name: productgroup.ProductsPrimaryKey[1]},
	}
	// ProductGroupProductsTable holds the schema information for the "product_group_products" table.
	ProductGroupProductsTable = &schema.Table{
		Name:       productgroup.ProductsTable,
		Columns:    ProductGroupProductsColumns,
		PrimaryKey: []*schema.Column{ProductGroupProductsColumns[0], ProductGroupProductsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     productgroup.ProductsTable + "_" + productgroup.ProductsPrimaryKey[0],
				Columns:    []*schema.Column{ProductGroupProductsColumns[0]},
				RefTable:   ProductGroupsTable,
				RefColumns: []*schema.Column{ProductGroupsColumns[0]},
				OnDelete:   atlas.Cascade,
			},
			{
				Symbol:     productgroup.ProductsTable + "_" + productgroup.ProductsPrimaryKey[1],
				Columns:    []*schema.Column{ProductGroupProductsColumns[1]},
				RefTable:   ProductsTable,
				RefColumns: []*schema.Column{ProductsColumns[0]},
				OnDelete:   atlas.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    productgroup.ProductsTable + "_" + productgroup.ProductsPrimaryKey[1] + "_idx",
				Columns: []*schema.Column{ProductGroupProductsColumns[1]},
			},
		},
	}
	// Tables holds all the tables in the schema, referenced tables first.
	Tables = []*schema.Table{
		ProductsTable,
		ProductGroupsTable,
		ProductGroupProductsTable,
	}
)

// Schema is the API for creating the store tables.
type Schema struct {
	config
}

// Create runs the additive migration of the store tables.
func (s *Schema) Create(ctx context.Context, opts ...schema.MigrateOption) error {
	db, ok := sql.DBOf(s.driver)
	if !ok {
		return errors.New("store: migration requires a database/sql backed driver")
	}
	m, err := schema.NewMigrate(db, s.driver.Dialect(), append([]schema.MigrateOption{schema.WithLogger(s.logger)}, opts...)...)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
