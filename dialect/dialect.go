package dialect

import (
	"context"
	"fmt"
	"slices"
)

// Dialect names. They are also the database/sql driver names registered
// by lib/pq, go-sql-driver/mysql and modernc.org/sqlite.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Supported lists the supported dialects.
var Supported = []string{Postgres, MySQL, SQLite}

// Validate returns an error if name is not a supported dialect.
func Validate(name string) error {
	if !slices.Contains(Supported, name) {
		return fmt.Errorf("dialect: unsupported dialect %q, expected one of %v", name, Supported)
	}
	return nil
}

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for database
// connections.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
