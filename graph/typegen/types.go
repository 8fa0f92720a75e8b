package typegen

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
)

// initialisms are words rendered in upper case inside Go identifiers.
var initialisms = map[string]string{
	"Id":   "ID",
	"Ids":  "IDs",
	"Url":  "URL",
	"Sdl":  "SDL",
	"Json": "JSON",
	"Http": "HTTP",
}

var titleCaser = cases.Title(language.English)

// GoName returns the exported Go identifier for a GraphQL name.
//
//	group_name  -> GroupName
//	productIds  -> ProductIDs
//	IN_STOCK    -> InStock
func GoName(name string) string {
	if strings.ToUpper(name) == name {
		// Enum style names split on underscores only.
		var b strings.Builder
		for _, w := range strings.Split(name, "_") {
			b.WriteString(titleCaser.String(w))
		}
		return b.String()
	}
	words := strings.Fields(inflect.Titleize(name))
	for i, w := range words {
		if s, ok := initialisms[w]; ok {
			words[i] = s
		}
	}
	return strings.Join(words, "")
}

// types renders the Go type definitions and formats them with goimports.
func (g *Generator) types(path string) ([]byte, error) {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by typegen, DO NOT EDIT.")
	for _, name := range g.typeNames() {
		def := g.schema.Types[name]
		switch def.Kind {
		case ast.Object:
			if g.isRoot(def) {
				g.genArgs(f, def)
			} else {
				g.genObject(f, def)
			}
		case ast.InputObject:
			g.genObject(f, def)
		case ast.Enum:
			g.genEnum(f, def)
		case ast.Union, ast.Interface:
			g.genAbstract(f, def)
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		// Keep the unformatted source around for inspection.
		_ = os.WriteFile(path+".error", buf.Bytes(), 0o644)
		return nil, fmt.Errorf("format: %w (unformatted written to %s.error)", err, path)
	}
	return formatted, nil
}

// typeNames returns the generated type names in sorted order. Built-in and
// federation types are skipped.
func (g *Generator) typeNames() []string {
	var names []string
	for name, def := range g.schema.Types {
		if def.BuiltIn || strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (g *Generator) isRoot(def *ast.Definition) bool {
	for _, root := range []*ast.Definition{g.schema.Query, g.schema.Mutation, g.schema.Subscription} {
		if root != nil && root.Name == def.Name {
			return true
		}
	}
	return false
}

func comment(f *jen.File, desc string) {
	if desc == "" {
		return
	}
	for _, l := range strings.Split(strings.TrimSpace(desc), "\n") {
		f.Comment(strings.TrimSpace(l))
	}
}

func (g *Generator) genObject(f *jen.File, def *ast.Definition) {
	comment(f, def.Description)
	f.Type().Id(def.Name).StructFunc(func(grp *jen.Group) {
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			grp.Id(GoName(fd.Name)).Add(g.goType(fd.Type)).Tag(jsonTag(fd.Name, fd.Type))
		}
	})
	for _, u := range g.abstractsOf(def.Name) {
		f.Func().Params(jen.Id(def.Name)).Id("Is" + u).Params().Block()
	}
}

// genArgs renders one struct per root field that takes arguments.
func (g *Generator) genArgs(f *jen.File, def *ast.Definition) {
	for _, fd := range def.Fields {
		if len(fd.Arguments) == 0 || strings.HasPrefix(fd.Name, "_") {
			continue
		}
		name := def.Name + GoName(fd.Name) + "Args"
		f.Commentf("%s holds the arguments of %s.%s.", name, def.Name, fd.Name)
		f.Type().Id(name).StructFunc(func(grp *jen.Group) {
			for _, a := range fd.Arguments {
				grp.Id(GoName(a.Name)).Add(g.goType(a.Type)).Tag(jsonTag(a.Name, a.Type))
			}
		})
	}
}

func (g *Generator) genEnum(f *jen.File, def *ast.Definition) {
	comment(f, def.Description)
	f.Type().Id(def.Name).String()
	f.Const().DefsFunc(func(grp *jen.Group) {
		for _, v := range def.EnumValues {
			grp.Id(def.Name + GoName(v.Name)).Id(def.Name).Op("=").Lit(v.Name)
		}
	})
}

func (g *Generator) genAbstract(f *jen.File, def *ast.Definition) {
	comment(f, def.Description)
	f.Type().Id(def.Name).Interface(jen.Id("Is" + def.Name).Params())
}

// abstractsOf returns the unions and interfaces name belongs to.
func (g *Generator) abstractsOf(name string) []string {
	var names []string
	for _, n := range g.typeNames() {
		def := g.schema.Types[n]
		switch def.Kind {
		case ast.Union:
			if slices.Contains(def.Types, name) {
				names = append(names, n)
			}
		case ast.Interface:
			if obj := g.schema.Types[name]; obj != nil && slices.Contains(obj.Interfaces, n) {
				names = append(names, n)
			}
		}
	}
	return names
}

func (g *Generator) goType(t *ast.Type) *jen.Statement {
	if t.Elem != nil {
		return jen.Index().Add(g.goType(t.Elem))
	}
	var base *jen.Statement
	switch t.NamedType {
	case "String", "ID":
		base = jen.String()
	case "Int":
		base = jen.Int()
	case "Float":
		base = jen.Float64()
	case "Boolean":
		base = jen.Bool()
	default:
		def := g.schema.Types[t.NamedType]
		switch {
		case def == nil || def.Kind == ast.Scalar:
			return jen.Any()
		case def.Kind == ast.Union || def.Kind == ast.Interface:
			return jen.Id(t.NamedType)
		case def.Kind == ast.Object || def.Kind == ast.InputObject:
			return jen.Op("*").Id(t.NamedType)
		default:
			base = jen.Id(t.NamedType)
		}
	}
	if !t.NonNull {
		return jen.Op("*").Add(base)
	}
	return base
}

func jsonTag(name string, t *ast.Type) map[string]string {
	if t.NonNull {
		return map[string]string{"json": name}
	}
	return map[string]string{"json": name + ",omitempty"}
}
