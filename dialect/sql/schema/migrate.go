package schema

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/collection/dialect"
)

// Differ computes the changes needed to move current to desired.
type Differ interface {
	Diff(current, desired *atlas.Schema) ([]atlas.Change, error)
}

// DiffFunc is an adapter to allow the use of ordinary functions as Differ.
type DiffFunc func(current, desired *atlas.Schema) ([]atlas.Change, error)

// Diff calls f(current, desired).
func (f DiffFunc) Diff(current, desired *atlas.Schema) ([]atlas.Change, error) {
	return f(current, desired)
}

// DiffHook wraps the default Differ.
type DiffHook func(Differ) Differ

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithSchemaName sets the database schema to inspect and migrate.
// An empty name selects the connection default.
func WithSchemaName(name string) MigrateOption {
	return func(m *Migrate) {
		m.schemaName = name
	}
}

// WithDiffHook adds a hook around the default differ.
func WithDiffHook(hooks ...DiffHook) MigrateOption {
	return func(m *Migrate) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithLogger sets the logger used to report applied and skipped changes.
func WithLogger(logger *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		m.logger = logger
	}
}

// Migrate runs additive migrations: tables, columns, indexes and foreign
// keys are created, nothing is modified or dropped.
type Migrate struct {
	db         *stdsql.DB
	dialect    string
	schemaName string
	hooks      []DiffHook
	logger     *slog.Logger
	open       func(*stdsql.DB) (migrate.Driver, error)
}

// NewMigrate returns a Migrate for the database of the given dialect.
func NewMigrate(db *stdsql.DB, name string, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{db: db, dialect: name, logger: slog.Default()}
	switch name {
	case dialect.SQLite:
		m.open = func(db *stdsql.DB) (migrate.Driver, error) { return sqlite.Open(db) }
	case dialect.Postgres:
		m.open = func(db *stdsql.DB) (migrate.Driver, error) { return postgres.Open(db) }
	case dialect.MySQL:
		m.open = func(db *stdsql.DB) (migrate.Driver, error) { return mysql.Open(db) }
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", name)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create inspects the database and applies the additive changes needed for
// the given tables to exist.
func (m *Migrate) Create(ctx context.Context, tables ...*Table) error {
	drv, err := m.open(m.db)
	if err != nil {
		return fmt.Errorf("schema: open atlas driver: %w", err)
	}
	current, err := drv.InspectSchema(ctx, m.schemaName, nil)
	if err != nil {
		return fmt.Errorf("schema: inspect: %w", err)
	}
	desired, err := realm(current.Name, tables)
	if err != nil {
		return err
	}
	var differ Differ = DiffFunc(func(current, desired *atlas.Schema) ([]atlas.Change, error) {
		return drv.SchemaDiff(current, desired)
	})
	for i := len(m.hooks) - 1; i >= 0; i-- {
		differ = m.hooks[i](differ)
	}
	changes, err := differ.Diff(current, desired)
	if err != nil {
		return fmt.Errorf("schema: diff: %w", err)
	}
	changes, skipped := Additive(prune(current, changes))
	for _, c := range skipped {
		m.logger.WarnContext(ctx, "skipping non-additive schema change", "change", fmt.Sprintf("%T", c))
	}
	if len(changes) == 0 {
		return nil
	}
	if err := drv.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("schema: apply: %w", err)
	}
	m.logger.InfoContext(ctx, "schema migrated", "dialect", m.dialect, "changes", len(changes))
	return nil
}

// Additive splits changes into those that only add objects and the rest.
// Table modifications are narrowed to their additive sub-changes.
func Additive(changes []atlas.Change) (keep, skipped []atlas.Change) {
	for _, c := range changes {
		switch c := c.(type) {
		case *atlas.AddTable:
			keep = append(keep, c)
		case *atlas.ModifyTable:
			var sub []atlas.Change
			for _, tc := range c.Changes {
				switch tc.(type) {
				case *atlas.AddColumn, *atlas.AddIndex, *atlas.AddForeignKey:
					sub = append(sub, tc)
				default:
					skipped = append(skipped, tc)
				}
			}
			if len(sub) > 0 {
				keep = append(keep, &atlas.ModifyTable{T: c.T, Changes: sub})
			}
		default:
			skipped = append(skipped, c)
		}
	}
	return keep, skipped
}

// prune drops index and foreign key additions that already exist under
// another name. Some dialects do not report constraint names back.
func prune(current *atlas.Schema, changes []atlas.Change) []atlas.Change {
	out := make([]atlas.Change, 0, len(changes))
	for _, c := range changes {
		m, ok := c.(*atlas.ModifyTable)
		if !ok {
			out = append(out, c)
			continue
		}
		t, ok := current.Table(m.T.Name)
		if !ok {
			out = append(out, c)
			continue
		}
		sub := make([]atlas.Change, 0, len(m.Changes))
		for _, tc := range m.Changes {
			switch tc := tc.(type) {
			case *atlas.AddForeignKey:
				if hasForeignKey(t, tc.F) {
					continue
				}
			case *atlas.AddIndex:
				if hasIndex(t, tc.I) {
					continue
				}
			case *atlas.DropForeignKey:
				if hasForeignKey(m.T, tc.F) {
					continue
				}
			case *atlas.DropIndex:
				if hasIndex(m.T, tc.I) {
					continue
				}
			}
			sub = append(sub, tc)
		}
		if len(sub) > 0 {
			out = append(out, &atlas.ModifyTable{T: m.T, Changes: sub})
		}
	}
	return out
}

func hasForeignKey(t *atlas.Table, fk *atlas.ForeignKey) bool {
	for _, other := range t.ForeignKeys {
		if other.RefTable == nil || fk.RefTable == nil || other.RefTable.Name != fk.RefTable.Name {
			continue
		}
		if sameColumns(other.Columns, fk.Columns) && sameColumns(other.RefColumns, fk.RefColumns) {
			return true
		}
	}
	return false
}

func hasIndex(t *atlas.Table, idx *atlas.Index) bool {
	for _, other := range t.Indexes {
		if other.Unique != idx.Unique || len(other.Parts) != len(idx.Parts) {
			continue
		}
		same := true
		for i := range other.Parts {
			if other.Parts[i].C == nil || idx.Parts[i].C == nil || other.Parts[i].C.Name != idx.Parts[i].C.Name {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func sameColumns(a, b []*atlas.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}
