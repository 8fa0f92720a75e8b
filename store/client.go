// Package store is the typed persistence client for product groups and the
// products they link to.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/collection"
	"github.com/syssam/collection/dialect"
	"github.com/syssam/collection/dialect/sql"
)

// Client is the client that holds all entity clients.
type Client struct {
	config
	// Schema is the client for migrating the store tables.
	Schema *Schema
	// ProductGroup is the client for interacting with the ProductGroup builders.
	ProductGroup *ProductGroupClient
	// Product is the client for interacting with the Product builders.
	Product *ProductClient
}

// config holds the configuration of the client.
type config struct {
	driver dialect.Driver
	logger *slog.Logger
}

// Option function to configure the client.
type Option func(*config)

// Driver sets the driver for the client.
func Driver(driver dialect.Driver) Option {
	return func(c *config) {
		c.driver = driver
	}
}

// Logger sets the logger used by the client and its migrations.
func Logger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// NewClient creates a new client configured with the given options.
func NewClient(opts ...Option) *Client {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	client := &Client{config: cfg}
	client.init()
	return client
}

func (c *Client) init() {
	c.Schema = &Schema{config: c.config}
	c.ProductGroup = &ProductGroupClient{config: c.config}
	c.Product = &ProductClient{config: c.config}
}

// Open opens a database connection and returns the client.
func Open(driverName, dataSourceName string, opts ...Option) (*Client, error) {
	if err := dialect.Valid(driverName); err != nil {
		return nil, err
	}
	drv, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	return NewClient(append(opts, Driver(drv))...), nil
}

// Dialect returns the dialect name of the underlying driver.
func (c *Client) Dialect() string {
	return c.driver.Dialect()
}

// Tx returns a new transactional client.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, collection.ErrTxStarted
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: starting a transaction: %w", err)
	}
	cfg := c.config
	cfg.driver = &txDriver{tx: tx, drv: c.driver}
	return &Tx{
		config:       cfg,
		ProductGroup: &ProductGroupClient{config: cfg},
		Product:      &ProductClient{config: cfg},
	}, nil
}

// withOp labels the statements run under ctx for the query statistics.
func withOp(ctx context.Context, entity, op string) context.Context {
	return sql.WithOperation(ctx, entity+"."+op)
}

// Close closes the database connection and prevents new queries from starting.
func (c *Client) Close() error {
	return c.driver.Close()
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back when fn returns an error or panics.
func WithTx(ctx context.Context, client *Client, fn func(tx *Tx) error) (err error) {
	tx, err := client.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, &collection.RollbackError{Err: rerr})
		}
		return err
	}
	return tx.Commit()
}
