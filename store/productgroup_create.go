package store

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/syssam/collection"
	"github.com/syssam/collection/contrib/dataloader"
	"github.com/syssam/collection/dialect"
	"github.com/syssam/collection/dialect/sql/sqlgraph"
	"github.com/syssam/collection/store/productgroup"
)

// ProductGroupCreate is the builder for creating a ProductGroup entity.
type ProductGroupCreate struct {
	config
	id         *string
	name       *string
	productIDs []string
}

// SetID sets the id of the group instead of generating one.
func (c *ProductGroupCreate) SetID(id string) *ProductGroupCreate {
	c.id = &id
	return c
}

// SetName sets the "name" field.
func (c *ProductGroupCreate) SetName(name string) *ProductGroupCreate {
	c.name = &name
	return c
}

// SetNillableName sets the "name" field if the given value is not nil.
func (c *ProductGroupCreate) SetNillableName(name *string) *ProductGroupCreate {
	if name != nil {
		c.SetName(*name)
	}
	return c
}

// AddProductIDs links the group to products by id. Products that do not
// exist yet are created.
func (c *ProductGroupCreate) AddProductIDs(ids ...string) *ProductGroupCreate {
	c.productIDs = append(c.productIDs, ids...)
	return c
}

// AddProducts links the group to the given products.
func (c *ProductGroupCreate) AddProducts(products ...*Product) *ProductGroupCreate {
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return c.AddProductIDs(ids...)
}

// Save creates the ProductGroup in the database and returns it with its
// products loaded. The group, the missing products and the links are
// written in one transaction.
func (c *ProductGroupCreate) Save(ctx context.Context) (*ProductGroup, error) {
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, collection.NewMutationError(productgroup.Label, "create", err)
	}
	cfg := c.config
	cfg.driver = &txDriver{drv: c.driver, tx: tx}
	g, err := c.save(ctx, cfg)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return nil, errors.Join(err, &collection.RollbackError{Err: rerr})
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, collection.NewMutationError(productgroup.Label, "commit", err)
	}
	// Detach the result from the finished transaction.
	g.config = c.config
	for _, p := range g.Edges.Products {
		p.config = c.config
	}
	return g, nil
}

func (c *ProductGroupCreate) save(ctx context.Context, cfg config) (*ProductGroup, error) {
	id := productgroup.DefaultID()
	if c.id != nil {
		id = *c.id
	}
	productIDs := dataloader.Unique(c.productIDs)
	if len(productIDs) > 0 {
		if err := upsertProducts(withOp(ctx, productgroup.Label, "upsert-products"), cfg.driver, productIDs); err != nil {
			return nil, collection.NewMutationError(productgroup.Label, "upsert-products", sqlgraph.Wrap(err))
		}
	}
	var name any
	if c.name != nil {
		name = *c.name
	}
	insert := "INSERT INTO " + productgroup.Table + " (" + productgroup.FieldID + ", " + productgroup.FieldName + ") VALUES (?, ?)"
	if err := cfg.driver.Exec(withOp(ctx, productgroup.Label, "create"), insert, []any{id, name}, nil); err != nil {
		return nil, collection.NewMutationError(productgroup.Label, "create", sqlgraph.Wrap(err))
	}
	for _, batch := range lo.Chunk(productIDs, batchSize) {
		if err := linkProducts(withOp(ctx, productgroup.Label, "link-products"), cfg.driver, id, batch); err != nil {
			return nil, collection.NewMutationError(productgroup.Label, "link-products", sqlgraph.Wrap(err))
		}
	}
	g, err := (&ProductGroupQuery{config: cfg}).Where(productgroup.IDEQ(id)).WithProducts().Only(ctx)
	if err != nil {
		return nil, collection.NewMutationError(productgroup.Label, "create", err)
	}
	return g, nil
}

// linkProducts inserts the join rows of one group.
func linkProducts(ctx context.Context, drv dialect.Driver, groupID string, productIDs []string) error {
	args := make([]any, 0, len(productIDs)*2)
	for _, pid := range productIDs {
		args = append(args, groupID, pid)
	}
	link := "INSERT INTO " + productgroup.ProductsTable +
		" (" + strings.Join(productgroup.ProductsPrimaryKey, ", ") + ") VALUES " +
		strings.TrimSuffix(strings.Repeat("(?, ?), ", len(productIDs)), ", ")
	return drv.Exec(ctx, link, args, nil)
}
