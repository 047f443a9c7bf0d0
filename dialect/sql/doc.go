// Package sql implements dialect.Driver on top of database/sql.
//
// The schema importer opens a Driver for the configured source, reads the
// catalog in a transaction and closes it:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, "SELECT table_name FROM information_schema.tables", []any{}, rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
//
// A StatsDriver counts the statements executed by a Driver and reports the
// slow ones.
package sql
