package graph

import (
	"embed"
	"io/fs"

	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema/*.graphqls
var schemaFS embed.FS

// Sources returns the SDL sources of the local schema in a stable order.
func Sources() ([]*ast.Source, error) {
	names, err := fs.Glob(schemaFS, "schema/*.graphqls")
	if err != nil {
		return nil, err
	}
	sources := make([]*ast.Source, 0, len(names))
	for _, name := range names {
		b, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &ast.Source{Name: name, Input: string(b)})
	}
	return sources, nil
}
