package typegen

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// GQLGenConfig is the subset of gqlgen.yml written next to the schema.
type GQLGenConfig struct {
	// SchemaFilename is the path(s) to the GraphQL schema file(s).
	SchemaFilename StringList `yaml:"schema,omitempty"`

	Exec       PackageConfig    `yaml:"exec,omitempty"`
	Model      PackageConfig    `yaml:"model,omitempty"`
	Federation FederationConfig `yaml:"federation,omitempty"`

	// Autobind is a list of packages to autobind types from.
	Autobind []string `yaml:"autobind,omitempty"`

	// Models is a map of GraphQL type name to model configuration.
	Models map[string]TypeMapEntry `yaml:"models,omitempty"`
}

// PackageConfig names a generated file and its package.
type PackageConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
}

// FederationConfig enables gqlgen's federation plugin.
type FederationConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
	Version  int    `yaml:"version,omitempty"`
}

// TypeMapEntry is the configuration for a single GraphQL type.
type TypeMapEntry struct {
	Model StringList `yaml:"model,omitempty"`
}

// StringList is a YAML value that is either one string or a list of them.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig reads a gqlgen.yml file. A missing file yields an empty
// configuration.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &GQLGenConfig{Models: make(map[string]TypeMapEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var cfg GQLGenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return &cfg, nil
}

// AddSchemaPath adds path unless it is already listed.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// AddAutobind adds pkg unless it is already listed.
func (c *GQLGenConfig) AddAutobind(pkg string) {
	if !slices.Contains(c.Autobind, pkg) {
		c.Autobind = append(c.Autobind, pkg)
	}
}

// SetModel binds typeName to model unless already bound.
func (c *GQLGenConfig) SetModel(typeName, model string) {
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, model) {
		entry.Model = append(entry.Model, model)
	}
	c.Models[typeName] = entry
}

// config renders gqlgen.yml. Settings of an existing file at path are kept
// and the subgraph settings merged in.
func (g *Generator) config(path string) ([]byte, error) {
	cfg, err := LoadGQLGenConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.AddSchemaPath(SchemaFile)
	if cfg.Exec.Filename == "" {
		cfg.Exec = PackageConfig{Filename: "generated.go", Package: g.pkg}
	}
	if cfg.Model.Filename == "" {
		cfg.Model = PackageConfig{Filename: TypesFile, Package: g.pkg}
	}
	if len(g.subgraph.Entities) > 0 && cfg.Federation.Filename == "" {
		cfg.Federation = FederationConfig{Filename: "federation.go", Package: g.pkg, Version: 1}
	}
	for _, pkg := range g.autobind {
		cfg.AddAutobind(pkg)
	}
	cfg.SetModel("ID", "github.com/99designs/gqlgen/graphql.ID")
	return yaml.Marshal(cfg)
}
