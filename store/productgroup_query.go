package store

import (
	"context"

	"github.com/samber/lo"

	"github.com/syssam/collection"
	"github.com/syssam/collection/contrib/dataloader"
	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/store/predicate"
	"github.com/syssam/collection/store/productgroup"
)

// batchSize bounds the ids bound to one statement, below the variable
// limits of SQLite (32766) and PostgreSQL and MySQL (65535).
const batchSize = 500

// ProductGroupQuery is the builder for querying ProductGroup entities.
type ProductGroupQuery struct {
	config
	predicates   []predicate.ProductGroup
	withProducts bool
}

// Where adds a new predicate for the ProductGroupQuery builder.
func (q *ProductGroupQuery) Where(ps ...predicate.ProductGroup) *ProductGroupQuery {
	q.predicates = append(q.predicates, ps...)
	return q
}

// WithProducts tells the query-builder to eager-load the products
// linked to every group.
func (q *ProductGroupQuery) WithProducts() *ProductGroupQuery {
	q.withProducts = true
	return q
}

// All executes the query and returns a list of ProductGroups in the order
// the database returns them.
func (q *ProductGroupQuery) All(ctx context.Context) ([]*ProductGroup, error) {
	groups, err := q.scan(withOp(ctx, productgroup.Label, "all"))
	if err != nil {
		return nil, collection.NewQueryError(productgroup.Label, "all", err)
	}
	if q.withProducts && len(groups) > 0 {
		if err := q.loadProducts(withOp(ctx, productgroup.Label, "load-products"), groups); err != nil {
			return nil, collection.NewQueryError(productgroup.Label, "load-products", err)
		}
	}
	return groups, nil
}

// First returns the first ProductGroup entity from the query.
// Returns a *NotFoundError when no ProductGroup was found.
func (q *ProductGroupQuery) First(ctx context.Context) (*ProductGroup, error) {
	groups, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, collection.NewNotFoundError(productgroup.Label, nil)
	}
	return groups[0], nil
}

// Only returns a single ProductGroup entity found by the query, ensuring it
// only returns one. Returns a *NotFoundError when no entity was found.
func (q *ProductGroupQuery) Only(ctx context.Context) (*ProductGroup, error) {
	groups, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(groups) {
	case 1:
		return groups[0], nil
	case 0:
		return nil, collection.NewNotFoundError(productgroup.Label, nil)
	default:
		return nil, collection.NewQueryError(productgroup.Label, "only", errNotSingular)
	}
}

// IDs executes the query and returns the group ids.
func (q *ProductGroupQuery) IDs(ctx context.Context) ([]string, error) {
	groups, err := q.scan(withOp(ctx, productgroup.Label, "ids"))
	if err != nil {
		return nil, collection.NewQueryError(productgroup.Label, "ids", err)
	}
	return ProductGroups(groups).IDs(), nil
}

// scan reads the group rows and closes the cursor before returning, so that
// edges can be loaded on the same connection.
func (q *ProductGroupQuery) scan(ctx context.Context) ([]*ProductGroup, error) {
	s := &predicate.Selector{}
	for _, p := range q.predicates {
		p(s)
	}
	where, args := s.Query()
	query := "SELECT " + productgroup.FieldID + ", " + productgroup.FieldName + " FROM " + productgroup.Table + where
	rows := &sql.Rows{}
	if err := q.driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []*ProductGroup
	for rows.Next() {
		var (
			g    = &ProductGroup{config: q.config}
			name sql.NullString
		)
		if err := rows.Scan(&g.ID, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			g.Name = &name.String
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

type groupLink struct {
	groupID   string
	productID string
}

// loadProducts attaches products to groups, reading the join table in
// batches of group ids.
func (q *ProductGroupQuery) loadProducts(ctx context.Context, groups []*ProductGroup) error {
	ids := ProductGroups(groups).IDs()
	var links []groupLink
	for _, batch := range lo.Chunk(ids, batchSize) {
		ls, err := q.queryLinks(ctx, batch)
		if err != nil {
			return err
		}
		links = append(links, ls...)
	}
	byGroup := dataloader.GroupByKey(links, func(l groupLink) string { return l.groupID })
	for i, ls := range dataloader.OrderGroupsByKeys(ids, byGroup) {
		products := make([]*Product, len(ls))
		for j, l := range ls {
			products[j] = &Product{config: q.config, ID: l.productID}
		}
		groups[i].Edges.Products = products
		groups[i].Edges.loadedTypes[0] = true
	}
	return nil
}

// queryLinks reads the join rows of the given groups ordered by product id.
func (q *ProductGroupQuery) queryLinks(ctx context.Context, ids []string) ([]groupLink, error) {
	var (
		groupCol   = productgroup.ProductsPrimaryKey[0]
		productCol = productgroup.ProductsPrimaryKey[1]
		query      = "SELECT " + groupCol + ", " + productCol + " FROM " + productgroup.ProductsTable +
			" WHERE " + groupCol + " IN (" + sql.Placeholders(len(ids)) + ") ORDER BY " + productCol
	)
	rows := &sql.Rows{}
	if err := q.driver.Query(ctx, query, lo.ToAnySlice(ids), rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var links []groupLink
	for rows.Next() {
		var l groupLink
		if err := rows.Scan(&l.groupID, &l.productID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
