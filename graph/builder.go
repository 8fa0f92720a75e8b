package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/graphql-go/graphql"
	gqlast "github.com/graphql-go/graphql/language/ast"
	"github.com/vektah/gqlparser/v2/ast"
)

// Resolvers maps "Type.field" to the function resolving that field.
// Fields without an entry use graphql-go's default resolver.
type Resolvers map[string]graphql.FieldResolveFn

// Has reports whether typ.field has a resolver.
func (r Resolvers) Has(typ, field string) bool {
	_, ok := r[typ+"."+field]
	return ok
}

// TypeResolver returns the object type name of a value returned for an
// abstract type.
type TypeResolver func(value any) (string, bool)

// ScalarConfigs maps custom scalar names to their graphql-go configuration.
// Custom scalars without an entry pass values through unchanged.
type ScalarConfigs map[string]graphql.ScalarConfig

var builtinScalars = map[string]*graphql.Scalar{
	"String":  graphql.String,
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

// builder compiles a validated gqlparser schema into graphql-go types.
type builder struct {
	schema       *ast.Schema
	resolvers    Resolvers
	resolveType  TypeResolver
	scalars      ScalarConfigs
	types        map[string]graphql.Type
	objects      map[string]*graphql.Object
	typeResolver graphql.ResolveTypeFn
}

// Build compiles schema into an executable graphql-go schema. Every resolver
// must match a field of an object type.
func Build(schema *ast.Schema, resolvers Resolvers, resolveType TypeResolver, scalars ScalarConfigs) (graphql.Schema, error) {
	b := &builder{
		schema:      schema,
		resolvers:   resolvers,
		resolveType: resolveType,
		scalars:     scalars,
		types:       make(map[string]graphql.Type),
		objects:     make(map[string]*graphql.Object),
	}
	if err := b.check(); err != nil {
		return graphql.Schema{}, err
	}
	b.typeResolver = func(p graphql.ResolveTypeParams) *graphql.Object {
		if b.resolveType == nil {
			return nil
		}
		name, ok := b.resolveType(p.Value)
		if !ok {
			return nil
		}
		return b.objects[name]
	}
	names := b.names()
	// Scalars and enums first, then objects and inputs, then unions that
	// reference objects.
	for _, name := range names {
		def := schema.Types[name]
		switch def.Kind {
		case ast.Scalar:
			b.types[name] = b.scalar(def)
		case ast.Enum:
			b.types[name] = b.enum(def)
		}
	}
	for _, name := range names {
		def := schema.Types[name]
		switch def.Kind {
		case ast.Object:
			obj := b.object(def)
			b.objects[name] = obj
			b.types[name] = obj
		case ast.InputObject:
			b.types[name] = b.inputObject(def)
		}
	}
	for _, name := range names {
		if def := schema.Types[name]; def.Kind == ast.Union {
			b.types[name] = b.union(def)
		}
	}
	cfg := graphql.SchemaConfig{}
	if schema.Query != nil {
		cfg.Query = b.objects[schema.Query.Name]
	}
	if schema.Mutation != nil {
		cfg.Mutation = b.objects[schema.Mutation.Name]
	}
	for _, name := range names {
		cfg.Types = append(cfg.Types, b.types[name])
	}
	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("graph: build schema: %w", err)
	}
	return s, nil
}

// names returns the user defined type names in sorted order.
func (b *builder) names() []string {
	var names []string
	for name, def := range b.schema.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		if _, ok := builtinScalars[name]; ok {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// check reports what graphql-go cannot build, so that thunks never fail.
func (b *builder) check() error {
	if b.schema.Query == nil {
		return fmt.Errorf("graph: schema has no query type")
	}
	if b.schema.Subscription != nil {
		return fmt.Errorf("graph: subscriptions are not supported")
	}
	for _, name := range b.names() {
		def := b.schema.Types[name]
		switch def.Kind {
		case ast.Object, ast.InputObject, ast.Scalar, ast.Enum, ast.Union:
		default:
			return fmt.Errorf("graph: type %q: unsupported kind %s", name, def.Kind)
		}
		if def.Kind == ast.Union && b.resolveType == nil {
			return fmt.Errorf("graph: union %q requires a type resolver", name)
		}
		if len(def.Interfaces) > 0 {
			return fmt.Errorf("graph: type %q: interfaces are not supported", name)
		}
	}
	keys := make([]string, 0, len(b.resolvers))
	for key := range b.resolvers {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		typ, field, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("graph: resolver %q is not of the form Type.field", key)
		}
		def := b.schema.Types[typ]
		if def == nil || def.Kind != ast.Object {
			return fmt.Errorf("graph: resolver %q: unknown object type %q", key, typ)
		}
		if def.Fields.ForName(field) == nil {
			return fmt.Errorf("graph: resolver %q: unknown field %q", key, field)
		}
	}
	return nil
}

func (b *builder) object(def *ast.Definition) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				fields[f.Name] = &graphql.Field{
					Name:              f.Name,
					Description:       f.Description,
					Type:              b.output(f.Type),
					Args:              b.args(f.Arguments),
					Resolve:           b.resolvers[def.Name+"."+f.Name],
					DeprecationReason: deprecation(f.Directives),
				}
			}
			return fields
		}),
	})
}

func (b *builder) args(defs ast.ArgumentDefinitionList) graphql.FieldConfigArgument {
	if len(defs) == 0 {
		return nil
	}
	args := graphql.FieldConfigArgument{}
	for _, a := range defs {
		args[a.Name] = &graphql.ArgumentConfig{
			Type:         b.input(a.Type),
			Description:  a.Description,
			DefaultValue: defaultValue(a.DefaultValue),
		}
	}
	return args
}

func (b *builder) inputObject(def *ast.Definition) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range def.Fields {
				fields[f.Name] = &graphql.InputObjectFieldConfig{
					Type:         b.input(f.Type),
					Description:  f.Description,
					DefaultValue: defaultValue(f.DefaultValue),
				}
			}
			return fields
		}),
	})
}

func (b *builder) input(t *ast.Type) graphql.Input {
	var in graphql.Input
	if t.Elem != nil {
		in = graphql.NewList(b.input(t.Elem))
	} else {
		in = b.named(t.NamedType).(graphql.Input)
	}
	if t.NonNull {
		return graphql.NewNonNull(in)
	}
	return in
}

func (b *builder) output(t *ast.Type) graphql.Output {
	var out graphql.Output
	if t.Elem != nil {
		out = graphql.NewList(b.output(t.Elem))
	} else {
		out = b.named(t.NamedType).(graphql.Output)
	}
	if t.NonNull {
		return graphql.NewNonNull(out)
	}
	return out
}

func (b *builder) named(name string) graphql.Type {
	if s, ok := builtinScalars[name]; ok {
		return s
	}
	return b.types[name]
}

func (b *builder) scalar(def *ast.Definition) *graphql.Scalar {
	cfg, ok := b.scalars[def.Name]
	if !ok {
		cfg = graphql.ScalarConfig{
			Serialize:    func(v any) any { return v },
			ParseValue:   func(v any) any { return v },
			ParseLiteral: literal,
		}
	}
	cfg.Name = def.Name
	if cfg.Description == "" {
		cfg.Description = def.Description
	}
	return graphql.NewScalar(cfg)
}

func (b *builder) enum(def *ast.Definition) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, v := range def.EnumValues {
		values[v.Name] = &graphql.EnumValueConfig{
			Value:             v.Name,
			Description:       v.Description,
			DeprecationReason: deprecation(v.Directives),
		}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        def.Name,
		Description: def.Description,
		Values:      values,
	})
}

func (b *builder) union(def *ast.Definition) *graphql.Union {
	types := make([]*graphql.Object, 0, len(def.Types))
	for _, name := range def.Types {
		types = append(types, b.objects[name])
	}
	return graphql.NewUnion(graphql.UnionConfig{
		Name:        def.Name,
		Description: def.Description,
		Types:       types,
		ResolveType: b.typeResolver,
	})
}

func deprecation(directives ast.DirectiveList) string {
	d := directives.ForName("deprecated")
	if d == nil {
		return ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func defaultValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	value, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return value
}

// literal converts an inline GraphQL value into its Go form.
func literal(v gqlast.Value) any {
	switch v := v.(type) {
	case *gqlast.StringValue:
		return v.Value
	case *gqlast.BooleanValue:
		return v.Value
	case *gqlast.IntValue:
		return v.Value
	case *gqlast.FloatValue:
		return v.Value
	case *gqlast.EnumValue:
		return v.Value
	case *gqlast.ListValue:
		list := make([]any, len(v.Values))
		for i, item := range v.Values {
			list[i] = literal(item)
		}
		return list
	case *gqlast.ObjectValue:
		obj := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			obj[f.Name.Value] = literal(f.Value)
		}
		return obj
	default:
		return nil
	}
}
