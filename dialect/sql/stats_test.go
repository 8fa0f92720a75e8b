package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/collection/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(0))
	ctx := context.Background()
	readCtx := WithOperation(ctx, "ProductGroup.all")
	writeCtx := WithOperation(ctx, "Product.upsert")

	mock.ExpectQuery("SELECT id FROM products").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	rows := &Rows{}
	require.NoError(t, drv.Query(readCtx, "SELECT id FROM products", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE FROM products").WillReturnError(errors.New("locked"))
	require.Error(t, drv.Exec(ctx, "DELETE FROM products", []any{}, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	tx, err := drv.Tx(writeCtx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(writeCtx, "INSERT INTO products (id) VALUES (?)", []any{"p1"}, nil))
	require.NoError(t, tx.Exec(writeCtx, "INSERT INTO products (id) VALUES (?)", []any{"p2"}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	snap := drv.Stats().Snapshot()
	require.Len(t, snap, 3)
	assert.EqualValues(t, 1, snap["ProductGroup.all"].Statements)
	assert.EqualValues(t, 2, snap["Product.upsert"].Statements)
	assert.EqualValues(t, 2, snap["Product.upsert"].Slow)
	assert.EqualValues(t, 1, snap[OtherOperation].Errors)

	total := drv.Stats().Total()
	assert.EqualValues(t, 4, total.Statements)
	assert.EqualValues(t, 1, total.Errors)
	assert.EqualValues(t, 4, total.Slow)
}

func TestRequestStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	assert.Nil(t, RequestStatsFrom(context.Background()))
	ctx, rs := WithRequestStats(context.Background())
	require.Same(t, rs, RequestStatsFrom(ctx))

	mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(WithOperation(ctx, "Product.delete"), "DELETE FROM products", []any{}, nil))
	// Outside the request only the driver counts it.
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM products", []any{}, nil))

	assert.Equal(t, map[string]OpStats{"Product.delete": rs.Snapshot()["Product.delete"]}, rs.Snapshot())
	assert.EqualValues(t, 1, rs.Total().Statements)
	assert.EqualValues(t, 2, drv.Stats().Total().Statements)
}

func TestStatsDriverThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())
	drv.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, drv.SlowThreshold())
}

func TestStatsLogValue(t *testing.T) {
	var s Stats
	assert.Empty(t, s.Snapshot())
	s.add("ProductGroup.all", 30*time.Millisecond, false, nil)
	s.add("ProductGroup.all", 10*time.Millisecond, true, nil)
	s.add("Product.upsert", time.Millisecond, false, errors.New("locked"))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("stats", "db", &s)
	out := buf.String()
	assert.Contains(t, out, "db.ProductGroup.all.statements=2")
	assert.Contains(t, out, "db.ProductGroup.all.duration=40ms")
	assert.Contains(t, out, "db.ProductGroup.all.slow=1")
	assert.Contains(t, out, "db.Product.upsert.errors=1")
	assert.Less(t, strings.Index(out, "Product.upsert"), strings.Index(out, "ProductGroup.all"))
}

func TestSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(0), WithSlowQueryLog(logger))

	mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(WithOperation(context.Background(), "Product.delete"), "DELETE FROM products", []any{}, nil))
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "operation=Product.delete")
	assert.Contains(t, buf.String(), "DELETE FROM products")
}

func TestStatementLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithStatementLog(logger))
	ctx := WithOperation(context.Background(), "ProductGroup.all")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	rows := &Rows{}
	require.NoError(t, tx.Query(ctx, "SELECT id FROM products", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "begin transaction")
	assert.Contains(t, out, `msg="tx query" operation=ProductGroup.all sql="SELECT id FROM products"`)
	assert.Contains(t, out, "rollback transaction")
	assert.EqualValues(t, 1, drv.Stats().Snapshot()["ProductGroup.all"].Statements)
}
