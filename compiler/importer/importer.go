// Package importer reads the catalog of an existing database and writes
// the model files describing its tables.
//
// Tables become classes, grouped in one file per module. Single column
// foreign keys named after the referenced key become associations. The
// rows of reference tables can be extracted into class values.
//
//	imp, err := importer.New(cfg, importer.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	tasks, err := imp.Tasks(ctx)
//	...
//	err = gen.NewWriter(root).Write(ctx, imp.Name(), tasks)
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	// Database/sql drivers of the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/load"
	"github.com/syssam/modelgen/dialect"
	"github.com/syssam/modelgen/dialect/sql"
)

// Importer maps a database to model files.
type Importer struct {
	cfg    Config
	logger *slog.Logger
	open   func(name, source string) (dialect.Driver, error)
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger of the importer.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithDriver makes the importer read drv instead of opening the
// configured source.
func WithDriver(drv dialect.Driver) Option {
	return func(i *Importer) {
		i.open = func(string, string) (dialect.Driver, error) { return drv, nil }
	}
}

// New returns an importer of the database described by cfg.
func New(cfg Config, opts ...Option) (*Importer, error) {
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	i := &Importer{
		cfg:    cfg,
		logger: slog.Default(),
	}
	i.open = func(name, source string) (dialect.Driver, error) {
		drv, err := sql.Open(name, source)
		if err != nil {
			return nil, err
		}
		return sql.NewStatsDriver(drv, sql.WithSlowQueryLog(i.logger)), nil
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Name identifies the importer in logs and errors.
func (i *Importer) Name() string { return "import" }

// Tasks reads the database and returns one task per model file. The
// catalog is read in a transaction that is rolled back.
func (i *Importer) Tasks(ctx context.Context) ([]gen.Task, error) {
	files, err := i.Files(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]gen.Task, 0, len(files))
	for _, f := range files {
		data, err := load.Marshal(f)
		if err != nil {
			return nil, gen.NewGenerationError(i.Name(), f.Path, "encode model file", err)
		}
		tasks = append(tasks, gen.StaticTask(f.Path, f.Module, data))
	}
	return tasks, nil
}

// Files reads the database and returns its model files.
func (i *Importer) Files(ctx context.Context) (_ []*load.File, err error) {
	src := i.cfg.Source
	cat, err := newCatalog(src.Type, src.Schema)
	if err != nil {
		return nil, err
	}
	drv, err := i.open(src.Type, src.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", src.Type, err)
	}
	defer func() {
		if s, ok := drv.(*sql.StatsDriver); ok {
			i.logger.Info("database read", "stats", s.Stats())
		}
		err = errors.Join(err, drv.Close())
	}()
	tx, err := drv.Tx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	tables, err := cat.tables(ctx, tx)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("catalog read", "dialect", src.Type, "tables", len(tables))
	m := newMapper(&i.cfg, i.logger, tables)
	values := make(map[string]load.Values)
	for _, t := range tables {
		name := t.Name
		if _, ok := m.tables[name]; !ok || len(t.Columns) == 0 || !match(i.cfg.ExtractValues, name) {
			continue
		}
		rows, err := i.values(ctx, tx, src.Type, t)
		if err != nil {
			return nil, err
		}
		values[name] = rows
	}
	return m.files(values), nil
}

// values reads the rows of t, ordered by primary key. Fields are keyed by
// column name and NULL columns are left out.
func (i *Importer) values(ctx context.Context, q dialect.ExecQuerier, name string, t *table) (load.Values, error) {
	columns := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		columns[j] = quote(name, c.Name)
	}
	order := t.PrimaryKey
	if len(order) == 0 {
		order = []string{t.Columns[0].Name}
	}
	orderBy := make([]string, len(order))
	for j, c := range order {
		orderBy[j] = quote(name, c)
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(columns, ", "), quote(name, t.Name), strings.Join(orderBy, ", "))
	var out load.Values
	err := query(ctx, q, stmt, []any{}, func(r sql.ColumnScanner) error {
		dest := make([]sql.NullString, len(t.Columns))
		ptrs := make([]any, len(dest))
		for j := range dest {
			ptrs[j] = &dest[j]
		}
		if err := r.Scan(ptrs...); err != nil {
			return err
		}
		v := load.Value{Fields: make(map[string]string)}
		for j, c := range t.Columns {
			if dest[j].Valid {
				v.Fields[c.Name] = dest[j].String
			}
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	i.logger.Debug("values extracted", "table", t.Name, "rows", len(out))
	return out, nil
}

// quote quotes an identifier for the dialect.
func quote(name, ident string) string {
	if name == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
