package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/collection/contrib/dataloader"
	"github.com/syssam/collection/graph/federation"
	"github.com/syssam/collection/store"
)

// serviceResolver answers _service with the subgraph SDL.
func serviceResolver(sdl string) graphql.FieldResolveFn {
	return func(graphql.ResolveParams) (any, error) {
		return map[string]any{"sdl": sdl}, nil
	}
}

// resolveEntities answers _entities. Groups are read in batched queries and
// returned in the order of the representations, null when unknown.
// Products are owned elsewhere and resolve to their key only.
func resolveEntities(p graphql.ResolveParams) (any, error) {
	reps, ok := p.Args["representations"].([]any)
	if !ok {
		return nil, fmt.Errorf("graph: representations must be a list, got %T", p.Args["representations"])
	}
	var (
		result   = make([]any, len(reps))
		groupAt  []int
		groupIDs []string
	)
	for i, r := range reps {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("graph: representation %d is not an object", i)
		}
		typename, _ := m[federation.TypenameKey].(string)
		id, ok := m["id"].(string)
		switch typename {
		case "ProductGroup", "Product":
			if !ok {
				return nil, fmt.Errorf("graph: representation %d of %s has no string id", i, typename)
			}
		default:
			return nil, fmt.Errorf("graph: representation %d: unknown entity type %q", i, typename)
		}
		if typename == "Product" {
			result[i] = &store.Product{ID: id}
			continue
		}
		groupAt = append(groupAt, i)
		groupIDs = append(groupIDs, id)
	}
	if len(groupIDs) == 0 {
		return result, nil
	}
	client, err := storeFrom(p.Context)
	if err != nil {
		return nil, err
	}
	groups, err := client.ProductGroup.Load(p.Context, groupIDs...)
	if err != nil {
		return nil, err
	}
	ordered := dataloader.OrderByKeysNoError(groupIDs, groups, func(g *store.ProductGroup) string { return g.ID })
	for j, i := range groupAt {
		if ordered[j] != nil {
			result[i] = ordered[j]
		}
	}
	return result, nil
}
