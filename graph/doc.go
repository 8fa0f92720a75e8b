// Package graph serves the collection subgraph over HTTP.
//
// The schema is written in SDL (schema/*.graphqls), validated with gqlparser,
// rewritten into a federation subgraph by the federation package and
// compiled into an executable graphql-go schema:
//
//	s, err := graph.NewSchema()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":80", graph.NewHandler(s, client))
//
// Resolvers reach the store through the per-request context:
//
//	groups, err := graph.ForContext(ctx).Store.ProductGroup.Query().WithProducts().All(ctx)
package graph
