package store

import (
	"context"

	"github.com/syssam/collection/dialect"
)

// Tx is a transactional client that is created by calling Client.Tx().
type Tx struct {
	config
	// ProductGroup is the client for interacting with the ProductGroup builders.
	ProductGroup *ProductGroupClient
	// Product is the client for interacting with the Product builders.
	Product *ProductClient
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	return tx.config.driver.(*txDriver).tx.Commit()
}

// Rollback rollbacks the transaction.
func (tx *Tx) Rollback() error {
	return tx.config.driver.(*txDriver).tx.Rollback()
}

// txDriver wraps the given dialect.Tx with a nop dialect.Driver implementation.
// Builders that open their own transaction join the outer one instead.
type txDriver struct {
	drv dialect.Driver
	tx  dialect.Tx
}

// Exec calls tx.Exec.
func (tx *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return tx.tx.Exec(ctx, query, args, v)
}

// Query calls tx.Query.
func (tx *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return tx.tx.Query(ctx, query, args, v)
}

// Tx returns the transaction wrapper (txDriver) to avoid Commit or Rollback
// calls from the internal builders. Should be called only by the internal
// builders.
func (tx *txDriver) Tx(context.Context) (dialect.Tx, error) { return tx, nil }

// Commit is a nop commit for the internal builders.
// User must call `Tx.Commit` in order to commit the transaction.
func (*txDriver) Commit() error { return nil }

// Rollback is a nop rollback for the internal builders.
// User must call `Tx.Rollback` in order to rollback the transaction.
func (*txDriver) Rollback() error { return nil }

// Close is a nop close.
func (*txDriver) Close() error { return nil }

// Dialect returns the dialect of the driver this transaction was opened on.
func (tx *txDriver) Dialect() string { return tx.drv.Dialect() }

var _ dialect.Driver = (*txDriver)(nil)
