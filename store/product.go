package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/syssam/collection"
	"github.com/syssam/collection/dialect"
	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/dialect/sql/sqlgraph"
	"github.com/syssam/collection/store/predicate"
	"github.com/syssam/collection/store/product"
)

// Product is the model entity for the Product schema. Only the key is
// stored locally; the products service owns every other field.
type Product struct {
	config
	// ID of the ent.
	ID string `json:"id,omitempty"`
}

// String implements the fmt.Stringer.
func (p *Product) String() string {
	return fmt.Sprintf("Product(id=%v)", p.ID)
}

// ProductClient is a client for the Product schema.
type ProductClient struct {
	config
}

// Query returns a query builder for Product.
func (c *ProductClient) Query() *ProductQuery {
	return &ProductQuery{config: c.config}
}

// Upsert inserts the products that do not exist yet. Existing rows are
// left untouched.
func (c *ProductClient) Upsert(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := upsertProducts(withOp(ctx, product.Label, "upsert"), c.driver, ids); err != nil {
		return collection.NewMutationError(product.Label, "upsert", sqlgraph.Wrap(err))
	}
	return nil
}

// upsertProducts is the connect-or-create of product ids: statements that
// skip ids already present, one per batch.
func upsertProducts(ctx context.Context, drv dialect.Driver, ids []string) error {
	for _, batch := range lo.Chunk(ids, batchSize) {
		values := strings.TrimSuffix(strings.Repeat("(?), ", len(batch)), ", ")
		if err := drv.Exec(ctx, upsertQuery(drv.Dialect(), values), lo.ToAnySlice(batch), nil); err != nil {
			return err
		}
	}
	return nil
}

func upsertQuery(name, values string) string {
	if name == dialect.MySQL {
		return "INSERT IGNORE INTO " + product.Table + " (" + product.FieldID + ") VALUES " + values
	}
	return "INSERT INTO " + product.Table + " (" + product.FieldID + ") VALUES " + values + " ON CONFLICT DO NOTHING"
}

// ProductQuery is the builder for querying Product entities.
type ProductQuery struct {
	config
	predicates []predicate.Product
}

// Where adds a new predicate for the ProductQuery builder.
func (q *ProductQuery) Where(ps ...predicate.Product) *ProductQuery {
	q.predicates = append(q.predicates, ps...)
	return q
}

// All executes the query and returns a list of Products ordered by id.
func (q *ProductQuery) All(ctx context.Context) ([]*Product, error) {
	s := &predicate.Selector{}
	for _, p := range q.predicates {
		p(s)
	}
	where, args := s.Query()
	query := "SELECT " + product.FieldID + " FROM " + product.Table + where + " ORDER BY " + product.FieldID
	rows := &sql.Rows{}
	if err := q.driver.Query(withOp(ctx, product.Label, "all"), query, args, rows); err != nil {
		return nil, collection.NewQueryError(product.Label, "all", err)
	}
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p := &Product{config: q.config}
		if err := rows.Scan(&p.ID); err != nil {
			return nil, collection.NewQueryError(product.Label, "all", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, collection.NewQueryError(product.Label, "all", err)
	}
	return products, nil
}

// IDs executes the query and returns the matching ids.
func (q *ProductQuery) IDs(ctx context.Context) ([]string, error) {
	products, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids, nil
}
