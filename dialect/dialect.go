package dialect

import (
	"context"
	"fmt"
)

// Dialect names for the supported databases.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
//
// args must be a []any; v is a *sql.Result (or nil) for Exec and a
// *sql.Rows for Query.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the store.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Valid reports whether name is one of the supported dialects.
func Valid(name string) error {
	switch name {
	case MySQL, SQLite, Postgres:
		return nil
	default:
		return fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}
