// Package database connects to the SQL object store backends.
//
// Objects live in a single table (default "bucketgate_objects") keyed by
// (bucket, key), holding the content, its content type, size and the time
// it was last written.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool
//   - SQLite: modernc.org/sqlite, suitable for single-node deployments and tests
//
// # Usage
//
//	store, err := database.Open(ctx, database.Config{
//	    Type:  "sqlite",
//	    DSN:   "bucketgate.db",
//	    Table: "bucketgate_objects",
//	}, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Connect only opens the connection. Open additionally runs migrations when
// asked and always validates the table schema before returning.
package database
