// Package sql provides the database/sql backed driver used by the store,
// placeholder rebinding per dialect, and StatsDriver, which counts
// statements per store operation and logs slow ones.
//
// Statements are written once with '?' placeholders:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	rows := &sql.Rows{}
//	err = drv.Query(ctx, "SELECT id, name FROM product_groups WHERE id = ?", []any{id}, rows)
//
// and rewritten to "$1" for PostgreSQL by Conn.
package sql
