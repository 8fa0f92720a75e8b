package federation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Federation field and type names added to the executable schema.
const (
	ServiceField  = "_service"
	EntitiesField = "_entities"
	ServiceType   = "_Service"
	EntityUnion   = "_Entity"
	AnyScalar     = "_Any"
	FieldSetType  = "_FieldSet"
	TypenameKey   = "__typename"
)

// Subgraph is the result of Transform.
type Subgraph struct {
	// SDL is the annotated schema returned by _service. It does not contain
	// the federation built-ins.
	SDL string
	// Document is the annotated schema document SDL was printed from.
	Document *ast.SchemaDocument
	// Source extends the local schema with the federation built-ins needed to
	// execute _service and _entities.
	Source *ast.Source
	// Entities lists the members of the _Entity union.
	Entities []string
}

// Transform validates cfg, applies it to doc and prints the subgraph SDL.
// doc must be the parsed form of the sources schema was loaded from; it is
// modified in place.
func Transform(doc *ast.SchemaDocument, schema *ast.Schema, cfg Config) (*Subgraph, error) {
	if err := cfg.Validate(schema); err != nil {
		return nil, err
	}
	for _, ext := range doc.Extensions {
		if t, ok := cfg[ext.Name]; ok {
			annotate(ext, t)
		}
	}
	var definitions ast.DefinitionList
	for _, def := range doc.Definitions {
		t, ok := cfg[def.Name]
		if !ok {
			definitions = append(definitions, def)
			continue
		}
		annotate(def, t)
		if t.Extend {
			doc.Extensions = append(doc.Extensions, def)
		} else {
			definitions = append(definitions, def)
		}
	}
	doc.Definitions = definitions
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	entities := cfg.Entities()
	return &Subgraph{
		SDL:      buf.String(),
		Document: doc,
		Source:   source(entities),
		Entities: entities,
	}, nil
}

func annotate(def *ast.Definition, t Type) {
	if key := t.Key(); key != "" {
		def.Directives = append(def.Directives, fieldsDirective("key", key))
	}
	for _, f := range def.Fields {
		fa, ok := t.Fields[f.Name]
		if !ok {
			continue
		}
		if fa.External {
			f.Directives = append(f.Directives, &ast.Directive{Name: "external"})
		}
		if fa.Provides != "" {
			f.Directives = append(f.Directives, fieldsDirective("provides", fa.Provides))
		}
	}
}

func fieldsDirective(name, fields string) *ast.Directive {
	return &ast.Directive{
		Name: name,
		Arguments: ast.ArgumentList{{
			Name:  "fields",
			Value: &ast.Value{Kind: ast.StringValue, Raw: fields},
		}},
	}
}

// source builds the federation additions of the executable schema.
func source(entities []string) *ast.Source {
	var b strings.Builder
	fmt.Fprintf(&b, "scalar %s\n", AnyScalar)
	fmt.Fprintf(&b, "scalar %s\n", FieldSetType)
	fmt.Fprintf(&b, "type %s {\n  sdl: String\n}\n", ServiceType)
	if len(entities) > 0 {
		fmt.Fprintf(&b, "union %s = %s\n", EntityUnion, strings.Join(entities, " | "))
	}
	b.WriteString("extend type Query {\n")
	fmt.Fprintf(&b, "  %s: %s!\n", ServiceField, ServiceType)
	if len(entities) > 0 {
		fmt.Fprintf(&b, "  %s(representations: [%s!]!): [%s]!\n", EntitiesField, AnyScalar, EntityUnion)
	}
	b.WriteString("}\n")
	return &ast.Source{Name: "federation.graphqls", Input: b.String()}
}
