// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/syssam/collection/dialect"
)

// EnvPrefix prefixes every environment override, e.g. COLLECTION_SERVER_ADDR.
const EnvPrefix = "COLLECTION"

// Config is the service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Log       Log       `yaml:"log"`
	Artifacts Artifacts `yaml:"artifacts"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `yaml:"addr"`
	// Playground serves the GraphQL playground at /playground.
	Playground      bool          `yaml:"playground"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// Database configures the store.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Debug logs every statement.
	Debug bool `yaml:"debug"`
	// SlowQueryThreshold is reloaded when the file changes.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" split_words:"true"`
	MaxOpenConns       int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns       int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime" split_words:"true"`
	// AutoMigrate creates missing tables, columns and indexes on startup.
	AutoMigrate bool `yaml:"auto_migrate" split_words:"true"`
}

// Log configures the process logger.
type Log struct {
	// Level is reloaded when the file changes.
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Artifacts configures the files written for developer tooling.
type Artifacts struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Package string `yaml:"package"`
}

// Default returns the configuration used for settings absent from the file
// and the environment.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":80",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			Driver:             dialect.SQLite,
			DSN:                "file:collection.db?cache=shared&_pragma=foreign_keys(1)",
			SlowQueryThreshold: 200 * time.Millisecond,
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetime:    30 * time.Minute,
			AutoMigrate:        true,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Artifacts: Artifacts{
			Enabled: true,
			Dir:     "generated",
			Package: "model",
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if err := dialect.Valid(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("database.driver: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Database.SlowQueryThreshold < 0 {
		errs = append(errs, errors.New("database.slow_query_threshold must not be negative"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database connection limits must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Artifacts.Enabled && (c.Artifacts.Dir == "" || c.Artifacts.Package == "") {
		errs = append(errs, errors.New("artifacts.dir and artifacts.package are required when artifacts are enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// SlogLevel parses Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// Handler returns the slog handler writing to w at level.
func (l Log) Handler(w io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
