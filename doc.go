// Package collection is the root of the collection subgraph: a GraphQL
// federation service that stores product groups in a relational database
// and links them to products owned by a separate products subgraph.
//
// # Layout
//
//   - dialect, dialect/sql: database drivers, statistics and debug logging
//   - dialect/sql/sqlgraph: constraint error classification
//   - dialect/sql/schema: additive auto-migration backed by atlas
//   - store: typed client for ProductGroup and Product
//   - contrib/dataloader: key ordering and grouping helpers
//   - graph: schema builder, resolvers, per-request context and HTTP handler
//   - graph/federation: federation annotations and subgraph SDL
//   - graph/typegen: generated artifacts for developer tooling
//   - config: YAML configuration with environment overrides
//   - cmd/collection: server bootstrap
//
// This package holds the error types shared by the store and the resolvers.
//
//	groups, err := client.ProductGroup.Query().WithProducts().All(ctx)
//	if collection.IsQueryError(err) {
//	    // the read of the product groups failed
//	}
package collection
