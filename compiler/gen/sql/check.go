package sql

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/dialect"
	dsql "github.com/syssam/modelgen/dialect/sql"
)

// check creates the tables in scope and inserts their reference values
// in an in-memory SQLite database with foreign keys enforced. The SQLite
// rendering of the schema is used whatever the target dialect.
func check(ctx context.Context, gc *gen.Context, opts Options) error {
	opts.Dialect = dialect.SQLite
	opts.Schema = ""
	b := newBuilder(gc, opts)
	tables, err := b.build()
	if err != nil {
		return err
	}
	stmts, err := plan(ctx, dialect.SQLite, tables)
	if err != nil {
		return err
	}
	stmts = append(stmts, b.inserts(b.values())...)

	raw, err := dsql.Open(dialect.SQLite, ":memory:")
	if err != nil {
		return err
	}
	drv := dsql.NewStatsDriver(raw, dsql.WithSlowQueryLog(gc.Logger))
	defer drv.Close()
	// Every connection gets its own in-memory database.
	drv.DB().SetMaxOpenConns(1)
	// Outside of a transaction: the pragma is a no-op inside one.
	if err := drv.Exec(ctx, "PRAGMA foreign_keys = ON", []any{}, nil); err != nil {
		return err
	}
	for _, s := range stmts {
		if err := drv.Exec(ctx, s, []any{}, nil); err != nil {
			return fmt.Errorf("%w\n%s", err, s)
		}
	}
	gc.Logger.Debug("sql schema checked", "tables", len(tables), "stats", drv.Stats())
	return nil
}
