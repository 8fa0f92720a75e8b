// Package dialect defines the database dialects the collection store runs
// on and the driver interfaces the store talks to.
//
// The following dialects are supported:
//
//	dialect.SQLite   = "sqlite"   // modernc.org/sqlite, the default
//	dialect.Postgres = "postgres" // github.com/lib/pq
//	dialect.MySQL    = "mysql"    // github.com/go-sql-driver/mysql
//
// Opening a database connection:
//
//	drv, err := sql.Open(dialect.SQLite, "file:collection.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	client := store.NewClient(store.Driver(drv))
package dialect
