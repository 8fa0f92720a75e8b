package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/collection/dialect"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverDialectPrefix(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB("postgres-instrumented", db)
	assert.Equal(t, dialect.Postgres, drv.Dialect())
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("rebinds placeholders", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name FROM product_groups WHERE id = \$1`).
			WithArgs("g1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("g1", "Summer"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT id, name FROM product_groups WHERE id = ?", []any{"g1"}, rows)
		require.NoError(t, err)
		require.True(t, rows.Next())
		var id, name string
		require.NoError(t, rows.Scan(&id, &name))
		assert.Equal(t, "g1", id)
		assert.Equal(t, "Summer", name)
		require.NoError(t, rows.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps errors", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("boom"))
		err := drv.Query(context.Background(), "SELECT 1", []any{}, &Rows{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query: boom")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid destination", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", []any{}, nil)
		assert.ErrorContains(t, err, "expect *sql.Rows")
		err = drv.Query(context.Background(), "SELECT 1", "nope", &Rows{})
		assert.ErrorContains(t, err, "expect []any")
	})
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	mock.ExpectExec(`INSERT INTO products \(id\) VALUES \(\?\)`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	var res sql.Result
	require.NoError(t, drv.Exec(context.Background(), "INSERT INTO products (id) VALUES (?)", []any{"p1"}, &res))
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM products", []any{}, nil))

	err = drv.Exec(context.Background(), "DELETE FROM products", []any{}, new(int))
	assert.ErrorContains(t, err, "expect *sql.Result")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO product_groups \(id, name\) VALUES \(\$1, \$2\)`).
		WithArgs("g1", "Summer").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "INSERT INTO product_groups (id, name) VALUES (?, ?)", []any{"g1", "Summer"}, nil))
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err = drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverSetPool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)
	drv.SetPool(PoolOptions{MaxOpenConns: 3, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	assert.Equal(t, 3, db.Stats().MaxOpenConnections)
}

func TestDBOf(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	got, ok := DBOf(drv)
	require.True(t, ok)
	assert.Same(t, db, got)

	got, ok = DBOf(NewStatsDriver(drv))
	require.True(t, ok)
	assert.Same(t, db, got)

	_, ok = DBOf(nil)
	assert.False(t, ok)
}
