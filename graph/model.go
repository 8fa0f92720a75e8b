package graph

import "github.com/syssam/collection/store"

// ProductSearchResults is the value resolved for ProductGroup.products.
type ProductSearchResults struct {
	Hits []*ProductHit `json:"hits"`
}

// ProductHit wraps one product of a search result.
type ProductHit struct {
	Doc *store.Product `json:"doc"`
}

// searchResults reshapes the products of a group into search results.
func searchResults(products []*store.Product) *ProductSearchResults {
	hits := make([]*ProductHit, len(products))
	for i, p := range products {
		hits[i] = &ProductHit{Doc: p}
	}
	return &ProductSearchResults{Hits: hits}
}
