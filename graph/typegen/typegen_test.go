package typegen

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/collection/graph/federation"
)

const testSDL = `
"A named collection of products."
type ProductGroup {
  id: String!
  name: String
  tags: [String!]
  kind: Kind
  products: [Product]
}

type Product {
  id: String!
}

enum Kind {
  IN_STOCK
  SOLD_OUT
}

union Item = Product | ProductGroup

type Query {
  productGroups: [ProductGroup]
  item: Item
}

type Mutation {
  productGroups(productIds: [String], group_name: String): ProductGroup
}
`

func newGenerator(t *testing.T, dir string, opts ...Option) *Generator {
	t.Helper()
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "test.graphqls", Input: testSDL})
	require.NoError(t, err)
	sub := &federation.Subgraph{SDL: testSDL, Entities: []string{"ProductGroup"}}
	return New(schema, sub, dir, opts...)
}

func TestGoName(t *testing.T) {
	for in, want := range map[string]string{
		"id":            "ID",
		"group_name":    "GroupName",
		"productIds":    "ProductIDs",
		"productGroups": "ProductGroups",
		"ProductGroup":  "ProductGroup",
		"IN_STOCK":      "InStock",
		"sdl":           "SDL",
	} {
		assert.Equal(t, want, GoName(in), in)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(t, dir, WithPackage("model"), WithAutobind("github.com/syssam/collection/store"), WithWorkers(2))

	require.NoError(t, g.Generate(context.Background()))
	assert.Equal(t, 3, g.Metrics().FilesGenerated)
	assert.Positive(t, g.Metrics().TotalBytes)

	t.Run("schema", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dir, SchemaFile))
		require.NoError(t, err)
		assert.Equal(t, testSDL, string(b))
	})

	t.Run("types", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dir, TypesFile))
		require.NoError(t, err)
		src := string(b)
		assert.Contains(t, src, "// Code generated by typegen, DO NOT EDIT.")
		assert.Contains(t, src, "package model")
		assert.Contains(t, src, "// A named collection of products.\ntype ProductGroup struct {")
		for _, pattern := range []string{
			`ID\s+string\s+` + "`json:\"id\"`",
			`Name\s+\*string\s+` + "`json:\"name,omitempty\"`",
			`Tags\s+\[\]string\s+`,
			`Kind\s+\*Kind\s+`,
			`Products\s+\[\]\*Product\s+`,
			`type MutationProductGroupsArgs struct`,
			`ProductIDs\s+\[\]\*string\s+` + "`json:\"productIds,omitempty\"`",
			`GroupName\s+\*string\s+` + "`json:\"group_name,omitempty\"`",
			`KindInStock\s+Kind = "IN_STOCK"`,
			`type Item interface`,
			`func \(ProductGroup\) IsItem\(\)`,
		} {
			assert.Regexp(t, regexp.MustCompile(pattern), src)
		}
		// Root types only contribute argument structs.
		assert.NotContains(t, src, "type Query struct")
		assert.NotContains(t, src, "QueryProductGroupsArgs")
	})

	t.Run("gqlgen config", func(t *testing.T) {
		cfg, err := LoadGQLGenConfig(filepath.Join(dir, ConfigFile))
		require.NoError(t, err)
		assert.Equal(t, StringList{SchemaFile}, cfg.SchemaFilename)
		assert.Equal(t, PackageConfig{Filename: TypesFile, Package: "model"}, cfg.Model)
		assert.Equal(t, 1, cfg.Federation.Version)
		assert.Equal(t, []string{"github.com/syssam/collection/store"}, cfg.Autobind)
		assert.Equal(t, StringList{"github.com/99designs/gqlgen/graphql.ID"}, cfg.Models["ID"].Model)
	})
}

func TestGenerate_KeepsConfig(t *testing.T) {
	dir := t.TempDir()
	existing := []byte("schema:\n  - extra.graphql\nexec:\n  filename: exec.go\n  package: gen\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), existing, 0o644))

	g := newGenerator(t, dir)
	require.NoError(t, g.Generate(context.Background()))
	require.NoError(t, g.Generate(context.Background()))

	cfg, err := LoadGQLGenConfig(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, StringList{"extra.graphql", SchemaFile}, cfg.SchemaFilename)
	assert.Equal(t, PackageConfig{Filename: "exec.go", Package: "gen"}, cfg.Exec)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		err := newGenerator(t, filepath.Join(file, "out")).Generate(context.Background())
		assert.ErrorContains(t, err, "typegen: create output directory")
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := newGenerator(t, t.TempDir(), WithWorkers(1)).Generate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("bad config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("schema: {a: b}\n"), 0o644))
		err := newGenerator(t, dir).Generate(context.Background())
		assert.ErrorContains(t, err, "typegen: render gqlgen.yml")
	})
}

func TestStringList(t *testing.T) {
	var v struct {
		One  StringList `yaml:"one"`
		Many StringList `yaml:"many"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("one: a\nmany: [b, c]\n"), &v))
	assert.Equal(t, StringList{"a"}, v.One)
	assert.Equal(t, StringList{"b", "c"}, v.Many)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "one: a\nmany:\n    - b\n    - c\n", string(out))
}
