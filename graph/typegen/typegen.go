// Package typegen writes the developer artifacts of the collection subgraph:
// the subgraph SDL, Go type definitions for the schema and a gqlgen
// configuration pointing at both.
package typegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/collection/graph/federation"
)

// Artifact file names.
const (
	SchemaFile = "schema.graphql"
	TypesFile  = "types.go"
	ConfigFile = "gqlgen.yml"
)

// Generator writes artifacts for one schema into a directory.
type Generator struct {
	schema   *ast.Schema
	subgraph *federation.Subgraph
	dir      string
	pkg      string
	autobind []string
	workers  int

	mu      sync.Mutex
	metrics Metrics
}

// Metrics counts what the last Generate call wrote.
type Metrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithPackage sets the Go package name of the generated types file.
func WithPackage(name string) Option {
	return func(g *Generator) {
		g.pkg = name
	}
}

// WithAutobind adds Go packages gqlgen binds models from.
func WithAutobind(pkgs ...string) Option {
	return func(g *Generator) {
		g.autobind = append(g.autobind, pkgs...)
	}
}

// WithWorkers sets the number of files written concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// New returns a Generator writing into dir. schema is the executable
// schema and sub the subgraph it was built from.
func New(schema *ast.Schema, sub *federation.Subgraph, dir string, opts ...Option) *Generator {
	g := &Generator{
		schema:   schema,
		subgraph: sub,
		dir:      dir,
		pkg:      "model",
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Metrics returns the counters of the last Generate call.
func (g *Generator) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics
}

type fileTask struct {
	name   string
	render func(path string) ([]byte, error)
}

// Generate writes every artifact. Files are rendered and written in
// parallel; the first failure cancels the remaining ones.
func (g *Generator) Generate(ctx context.Context) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("typegen: create output directory: %w", err)
	}
	g.mu.Lock()
	g.metrics = Metrics{}
	g.mu.Unlock()
	files := []fileTask{
		{name: SchemaFile, render: func(string) ([]byte, error) { return []byte(g.subgraph.SDL), nil }},
		{name: TypesFile, render: g.types},
		{name: ConfigFile, render: g.config},
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return g.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

func (g *Generator) writeFile(f fileTask) error {
	path := filepath.Join(g.dir, f.name)
	b, err := f.render(path)
	if err != nil {
		return fmt.Errorf("typegen: render %s: %w", f.name, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("typegen: write %s: %w", f.name, err)
	}
	g.mu.Lock()
	g.metrics.FilesGenerated++
	g.metrics.TotalBytes += int64(len(b))
	g.mu.Unlock()
	return nil
}
