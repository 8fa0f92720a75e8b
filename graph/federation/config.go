// Package federation turns a local GraphQL schema into an Apollo Federation
// v1 subgraph.
//
// Annotations are declared per type instead of being written into the SDL:
//
//	federation.Config{
//		"Query":        {Extend: true},
//		"ProductGroup": {KeyFields: []string{"id"}},
//		"Product": {
//			Extend:    true,
//			KeyFields: []string{"id"},
//			Fields:    map[string]federation.Field{"id": {External: true}},
//		},
//	}
package federation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Config maps type names to their federation annotations.
type Config map[string]Type

// Type holds the annotations of one type.
type Type struct {
	// Extend marks a type owned by another subgraph.
	Extend bool
	// KeyFields form the field set of the @key directive.
	KeyFields []string
	// Fields holds per-field annotations.
	Fields map[string]Field
}

// Field holds the annotations of one field.
type Field struct {
	// External marks a field resolved by the owning subgraph.
	External bool
	// Provides is the field set this field returns for the referenced type.
	Provides string
}

// Key returns the @key field set of the type, or "" when the type is not
// an entity.
func (t Type) Key() string {
	return strings.Join(t.KeyFields, " ")
}

// Entities returns the sorted names of the types declaring a key.
func (c Config) Entities() []string {
	var names []string
	for name, t := range c {
		if len(t.KeyFields) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Validate checks the config against the schema.
func (c Config) Validate(schema *ast.Schema) error {
	for _, name := range sortedKeys(c) {
		t := c[name]
		def := schema.Types[name]
		if def == nil {
			return fmt.Errorf("federation: type %q is not defined", name)
		}
		if def.Kind != ast.Object {
			return fmt.Errorf("federation: type %q is %s, expected OBJECT", name, def.Kind)
		}
		isRoot := isRootType(schema, def)
		if isRoot && len(t.KeyFields) > 0 {
			return fmt.Errorf("federation: root type %q cannot declare a key", name)
		}
		if len(t.KeyFields) > 0 {
			if err := checkFieldSet(schema, def, t.Key()); err != nil {
				return fmt.Errorf("federation: key of %q: %w", name, err)
			}
		}
		for _, fname := range sortedKeys(t.Fields) {
			f := t.Fields[fname]
			fd := def.Fields.ForName(fname)
			if fd == nil {
				return fmt.Errorf("federation: field %s.%s is not defined", name, fname)
			}
			if f.External && !t.Extend {
				return fmt.Errorf("federation: external field %s.%s requires an extended type", name, fname)
			}
			if f.Provides == "" {
				continue
			}
			target := schema.Types[fd.Type.Name()]
			if target == nil || target.Kind != ast.Object {
				return fmt.Errorf("federation: field %s.%s provides fields on non-object type %q", name, fname, fd.Type.Name())
			}
			if err := checkFieldSet(schema, target, f.Provides); err != nil {
				return fmt.Errorf("federation: provides of %s.%s: %w", name, fname, err)
			}
			for _, provided := range topLevel(f.Provides) {
				if !c[target.Name].Fields[provided].External {
					return fmt.Errorf("federation: %s.%s provides %s.%s which is not external", name, fname, target.Name, provided)
				}
			}
		}
	}
	return nil
}

// CheckResolvers reports external fields that would be resolved locally.
// Key fields are exempt since the subgraph receives them in representations.
func (c Config) CheckResolvers(resolved func(typ, field string) bool) error {
	for _, name := range sortedKeys(c) {
		t := c[name]
		for _, fname := range sortedKeys(t.Fields) {
			if !t.Fields[fname].External || slices.Contains(t.KeyFields, fname) {
				continue
			}
			if resolved(name, fname) {
				return fmt.Errorf("federation: external field %s.%s has a local resolver", name, fname)
			}
		}
	}
	return nil
}

// checkFieldSet parses fields as a selection set and resolves it against def.
func checkFieldSet(schema *ast.Schema, def *ast.Definition, fields string) error {
	if strings.TrimSpace(fields) == "" {
		return fmt.Errorf("empty field set")
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "fieldset", Input: "{" + fields + "}"})
	if err != nil {
		return fmt.Errorf("invalid field set %q: %w", fields, err)
	}
	if len(doc.Operations) != 1 || len(doc.Fragments) > 0 {
		return fmt.Errorf("invalid field set %q", fields)
	}
	return checkSelection(schema, def, doc.Operations[0].SelectionSet)
}

func checkSelection(schema *ast.Schema, def *ast.Definition, set ast.SelectionSet) error {
	for _, sel := range set {
		f, ok := sel.(*ast.Field)
		if !ok {
			return fmt.Errorf("field sets cannot contain fragments")
		}
		fd := def.Fields.ForName(f.Name)
		if fd == nil {
			return fmt.Errorf("field %s.%s is not defined", def.Name, f.Name)
		}
		if len(f.SelectionSet) == 0 {
			continue
		}
		child := schema.Types[fd.Type.Name()]
		if child == nil || child.Kind != ast.Object {
			return fmt.Errorf("field %s.%s has no sub-fields", def.Name, f.Name)
		}
		if err := checkSelection(schema, child, f.SelectionSet); err != nil {
			return err
		}
	}
	return nil
}

// topLevel returns the first level field names of a field set.
func topLevel(fields string) []string {
	var (
		names []string
		depth int
	)
	for _, tok := range strings.Fields(strings.NewReplacer("{", " { ", "}", " } ").Replace(fields)) {
		switch tok {
		case "{":
			depth++
		case "}":
			depth--
		default:
			if depth == 0 {
				names = append(names, tok)
			}
		}
	}
	return names
}

func isRootType(schema *ast.Schema, def *ast.Definition) bool {
	return def == schema.Query || def == schema.Mutation || def == schema.Subscription
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
