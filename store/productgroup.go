package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/syssam/collection"
	"github.com/syssam/collection/contrib/dataloader"
	"github.com/syssam/collection/store/productgroup"
)

// ProductGroup is the model entity for the ProductGroup schema.
type ProductGroup struct {
	config
	// ID of the ent.
	ID string `json:"id,omitempty"`
	// Name of the group. Nil when the group was created without one.
	Name *string `json:"name,omitempty"`
	// Edges holds the relations/edges for other nodes in the graph.
	// The values are being populated by the ProductGroupQuery when eager-loading is set.
	Edges ProductGroupEdges `json:"edges"`
}

// ProductGroupEdges holds the relations/edges for other nodes in the graph.
type ProductGroupEdges struct {
	// Products linked to the group, ordered by id.
	Products []*Product `json:"products,omitempty"`
	// loadedTypes holds the information for reporting if a
	// type was loaded (or requested) in eager-loading or not.
	loadedTypes [1]bool
}

// ProductsOrErr returns the Products value or an error if the edge
// was not loaded in eager-loading.
func (e ProductGroupEdges) ProductsOrErr() ([]*Product, error) {
	if e.loadedTypes[0] {
		return e.Products, nil
	}
	return nil, collection.NewNotLoadedError(productgroup.EdgeProducts)
}

// ProductIDs returns the ids of the loaded products.
func (pg *ProductGroup) ProductIDs() ([]string, error) {
	products, err := pg.Edges.ProductsOrErr()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids, nil
}

// String implements the fmt.Stringer.
func (pg *ProductGroup) String() string {
	var builder strings.Builder
	builder.WriteString("ProductGroup(")
	builder.WriteString(fmt.Sprintf("id=%v", pg.ID))
	builder.WriteString(", name=")
	if pg.Name != nil {
		builder.WriteString(*pg.Name)
	} else {
		builder.WriteString("<nil>")
	}
	builder.WriteByte(')')
	return builder.String()
}

// ProductGroups is a parsable slice of ProductGroup.
type ProductGroups []*ProductGroup

// IDs returns the ids of the groups in order.
func (pgs ProductGroups) IDs() []string {
	ids := make([]string, len(pgs))
	for i, pg := range pgs {
		ids[i] = pg.ID
	}
	return ids
}

// ProductGroupClient is a client for the ProductGroup schema.
type ProductGroupClient struct {
	config
}

// Query returns a query builder for ProductGroup.
func (c *ProductGroupClient) Query() *ProductGroupQuery {
	return &ProductGroupQuery{config: c.config}
}

// Create returns a builder for creating a ProductGroup entity.
func (c *ProductGroupClient) Create() *ProductGroupCreate {
	return &ProductGroupCreate{config: c.config}
}

// Get returns a ProductGroup entity by its id.
func (c *ProductGroupClient) Get(ctx context.Context, id string) (*ProductGroup, error) {
	return c.Query().Where(productgroup.IDEQ(id)).Only(ctx)
}

// Load returns the groups with the given ids and their products, querying
// them in batches. Unknown ids are skipped and the order is unspecified.
func (c *ProductGroupClient) Load(ctx context.Context, ids ...string) ([]*ProductGroup, error) {
	var groups []*ProductGroup
	for _, batch := range lo.Chunk(dataloader.Unique(ids), batchSize) {
		gs, err := c.Query().Where(productgroup.IDIn(batch...)).WithProducts().All(ctx)
		if err != nil {
			return nil, err
		}
		groups = append(groups, gs...)
	}
	return groups, nil
}
