// Package dialect names the SQL databases known to modelgen and defines the
// driver interfaces used to read their schema.
//
// The same names select the DDL flavor of the sql generator and the
// database/sql driver of the schema importer:
//
//	dialect.Postgres = "postgres" // github.com/lib/pq
//	dialect.MySQL    = "mysql"    // github.com/go-sql-driver/mysql
//	dialect.SQLite   = "sqlite"   // modernc.org/sqlite
//
// Drivers execute statements through Exec and Query, whose arguments and
// results are driver specific. See package dialect/sql for the database/sql
// implementation.
package dialect
