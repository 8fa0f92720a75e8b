package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
	gqlast "github.com/graphql-go/graphql/language/ast"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/collection/graph/federation"
)

// Federation returns the federation annotations of the collection subgraph.
func Federation() federation.Config {
	return federation.Config{
		"Query":        {Extend: true},
		"ProductGroup": {KeyFields: []string{"id"}},
		"Product": {
			Extend:    true,
			KeyFields: []string{"id"},
			Fields:    map[string]federation.Field{"id": {External: true}},
		},
		"ProductHit": {
			Fields: map[string]federation.Field{"doc": {Provides: "id"}},
		},
	}
}

// Schema is the executable collection subgraph.
type Schema struct {
	// Exec is the schema requests are executed against.
	Exec graphql.Schema
	// AST is the validated schema including the federation additions.
	AST *ast.Schema
	// Subgraph holds the SDL served at _service.
	Subgraph *federation.Subgraph
}

// SchemaOption configures NewSchema.
type SchemaOption func(*schemaOptions)

type schemaOptions struct {
	sources    []*ast.Source
	federation federation.Config
	resolvers  Resolvers
}

// WithSources replaces the embedded SDL sources.
func WithSources(sources ...*ast.Source) SchemaOption {
	return func(o *schemaOptions) {
		o.sources = sources
	}
}

// WithFederation replaces the federation annotations.
func WithFederation(cfg federation.Config) SchemaOption {
	return func(o *schemaOptions) {
		o.federation = cfg
	}
}

// WithResolvers adds or overrides field resolvers.
func WithResolvers(r Resolvers) SchemaOption {
	return func(o *schemaOptions) {
		for k, v := range r {
			o.resolvers[k] = v
		}
	}
}

// NewSchema loads the SDL, applies the federation annotations and builds
// the executable schema. Any inconsistency in the type definitions, the
// resolver table or the annotations is returned as an error.
func NewSchema(opts ...SchemaOption) (*Schema, error) {
	o := &schemaOptions{federation: Federation(), resolvers: resolvers()}
	for _, opt := range opts {
		opt(o)
	}
	if o.sources == nil {
		sources, err := Sources()
		if err != nil {
			return nil, fmt.Errorf("graph: read schema sources: %w", err)
		}
		o.sources = sources
	}
	local, err := gqlparser.LoadSchema(o.sources...)
	if err != nil {
		return nil, fmt.Errorf("graph: load schema: %w", err)
	}
	doc, err := parser.ParseSchemas(o.sources...)
	if err != nil {
		return nil, fmt.Errorf("graph: parse schema: %w", err)
	}
	if err := o.federation.CheckResolvers(o.resolvers.Has); err != nil {
		return nil, err
	}
	sub, err := federation.Transform(doc, local, o.federation)
	if err != nil {
		return nil, err
	}
	full, err := gqlparser.LoadSchema(append(o.sources[:len(o.sources):len(o.sources)], sub.Source)...)
	if err != nil {
		return nil, fmt.Errorf("graph: load federation schema: %w", err)
	}
	r := Resolvers{full.Query.Name + "." + federation.ServiceField: serviceResolver(sub.SDL)}
	if len(sub.Entities) > 0 {
		r[full.Query.Name+"."+federation.EntitiesField] = resolveEntities
	}
	for k, v := range o.resolvers {
		r[k] = v
	}
	exec, err := Build(full, r, typeOf, ScalarConfigs{
		federation.FieldSetType: {
			Serialize:  func(v any) any { return v },
			ParseValue: func(v any) any { return v },
			ParseLiteral: func(v gqlast.Value) any {
				if s, ok := v.(*gqlast.StringValue); ok {
					return s.Value
				}
				return nil
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Schema{Exec: exec, AST: full, Subgraph: sub}, nil
}
