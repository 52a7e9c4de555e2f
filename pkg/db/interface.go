package db

import "database/sql"

// DBProvider is an interface for database clients that provide access
// to a sql.DB handle. Both PostgresClient and SupabaseClient satisfy it,
// so either can serve as a replication target.
type DBProvider interface {
	DB() *sql.DB
}
