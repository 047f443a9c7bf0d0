package sql

import (
	"context"
	"path"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/dialect"
)

// Options configures the generator.
type Options struct {
	// Tags restricts the classes in scope.
	Tags []string
	// Root is the directory of the generated scripts.
	Root string
	// Dialect is one of dialect.Postgres, dialect.MySQL or dialect.SQLite.
	Dialect string
	// Schema qualifies table names when set.
	Schema string
	// Comments adds the comments of classes and properties to the DDL.
	Comments bool
	// Values renders the insertion script of reference values.
	Values bool
	// IdentityStart and IdentityIncrement configure identity columns.
	IdentityStart     int64
	IdentityIncrement int64
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "sql"
	}
	if o.Dialect == "" {
		o.Dialect = dialect.Postgres
	}
}

// Generator renders SQL scripts.
type Generator struct {
	opts Options
}

// New returns a SQL generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "sql" }

// DomainTarget implements gen.DomainTarget.
func (*Generator) DomainTarget() string { return domain.TargetSQL }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator. With the sql/check feature, the schema
// and its values are first executed against an in-memory SQLite database.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	if err := dialect.Validate(g.opts.Dialect); err != nil {
		return nil, gen.NewConfigError("sql.dialect", g.opts.Dialect, err.Error())
	}
	b := newBuilder(gc, g.opts)
	tables, err := b.build()
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		gc.Logger.Debug("no persistent class in scope", "generator", g.Name())
		return nil, nil
	}
	selfCheck, err := gc.Config.FeatureEnabled(gen.FeatureSQLCheck.Name)
	if err != nil {
		return nil, err
	}
	if g.opts.Values || selfCheck {
		if err := validate(b.values()); err != nil {
			return nil, err
		}
	}
	if selfCheck {
		if err := check(context.Background(), gc, g.opts); err != nil {
			return nil, gen.NewGenerationError(g.Name(), "", "schema check", err)
		}
	}

	tasks := []gen.Task{{
		Path: path.Join(g.opts.Root, "tables.sql"),
		Unit: "tables",
		Render: func() ([]byte, error) {
			stmts, err := plan(context.Background(), g.opts.Dialect, tables)
			if err != nil {
				return nil, err
			}
			return script(gc.Header(), stmts), nil
		},
	}}
	if g.opts.Values {
		if rows := b.values(); len(rows) > 0 {
			tasks = append(tasks, gen.Task{
				Path: path.Join(g.opts.Root, "values.sql"),
				Unit: "values",
				Render: func() ([]byte, error) {
					return script(gc.Header(), b.inserts(rows)), nil
				},
			})
		}
	}
	return tasks, nil
}

func planner(name string) migrate.PlanApplier {
	switch name {
	case dialect.MySQL:
		return mysql.DefaultPlan
	case dialect.SQLite:
		return sqlite.DefaultPlan
	default:
		return postgres.DefaultPlan
	}
}

// plan returns the statements creating tables, in dependency order.
func plan(ctx context.Context, name string, tables []*schema.Table) ([]string, error) {
	changes := make([]schema.Change, len(tables))
	for i, t := range tables {
		changes[i] = &schema.AddTable{T: t}
	}
	p, err := planner(name).PlanChanges(ctx, "tables", changes, func(o *migrate.PlanOptions) {
		o.Indent = "  "
	})
	if err != nil {
		return nil, err
	}
	stmts := make([]string, len(p.Changes))
	for i, c := range p.Changes {
		stmts[i] = c.Cmd
	}
	return stmts, nil
}

// script joins statements under the header.
func script(header string, stmts []string) []byte {
	t := gen.NewText("  ")
	t.Comment(0, "--", header)
	for _, s := range stmts {
		t.Blank()
		for _, l := range strings.Split(s+";", "\n") {
			t.Linef(0, "%s", l)
		}
	}
	return t.Bytes()
}
