package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/collection/store"
)

// resolvers returns the resolver table of the local schema.
func resolvers() Resolvers {
	return Resolvers{
		"Query.productGroups":       queryProductGroups,
		"Mutation.productGroups":    createProductGroup,
		"ProductGroup.id":           productGroupID,
		"ProductGroup.name":         productGroupName,
		"ProductGroup.products":     productGroupProducts,
		"ProductSearchResults.hits": searchResultHits,
		"ProductHit.doc":            productHitDoc,
		"Product.id":                productID,
	}
}

func queryProductGroups(p graphql.ResolveParams) (any, error) {
	client, err := storeFrom(p.Context)
	if err != nil {
		return nil, err
	}
	return client.ProductGroup.Query().WithProducts().All(p.Context)
}

func createProductGroup(p graphql.ResolveParams) (any, error) {
	client, err := storeFrom(p.Context)
	if err != nil {
		return nil, err
	}
	create := client.ProductGroup.Create()
	if name, ok := p.Args["group_name"].(string); ok {
		create.SetName(name)
	}
	if ids, ok := p.Args["productIds"].([]any); ok {
		for _, id := range ids {
			// Null list items are skipped.
			if s, ok := id.(string); ok {
				create.AddProductIDs(s)
			}
		}
	}
	return create.Save(p.Context)
}

func productGroupID(p graphql.ResolveParams) (any, error) {
	g, err := source[*store.ProductGroup](p)
	if err != nil {
		return nil, err
	}
	return g.ID, nil
}

func productGroupName(p graphql.ResolveParams) (any, error) {
	g, err := source[*store.ProductGroup](p)
	if err != nil || g.Name == nil {
		return nil, err
	}
	return *g.Name, nil
}

func productGroupProducts(p graphql.ResolveParams) (any, error) {
	g, err := source[*store.ProductGroup](p)
	if err != nil {
		return nil, err
	}
	products, err := g.Edges.ProductsOrErr()
	if err != nil {
		return nil, err
	}
	return searchResults(products), nil
}

func searchResultHits(p graphql.ResolveParams) (any, error) {
	r, err := source[*ProductSearchResults](p)
	if err != nil {
		return nil, err
	}
	return r.Hits, nil
}

func productHitDoc(p graphql.ResolveParams) (any, error) {
	h, err := source[*ProductHit](p)
	if err != nil || h.Doc == nil {
		return nil, err
	}
	return h.Doc, nil
}

func productID(p graphql.ResolveParams) (any, error) {
	product, err := source[*store.Product](p)
	if err != nil {
		return nil, err
	}
	return product.ID, nil
}

// source returns the parent value of the field being resolved.
func source[T any](p graphql.ResolveParams) (T, error) {
	v, ok := p.Source.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("graph: %s.%s: unexpected source %T", p.Info.ParentType.Name(), p.Info.FieldName, p.Source)
	}
	return v, nil
}

// typeOf resolves the object type of values returned for _Entity.
func typeOf(value any) (string, bool) {
	switch value.(type) {
	case *store.ProductGroup:
		return "ProductGroup", true
	case *store.Product:
		return "Product", true
	default:
		return "", false
	}
}
