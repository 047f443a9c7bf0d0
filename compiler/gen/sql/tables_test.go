package sql

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/internal/modeltest"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/dialect"
)

func renderTask(t *testing.T, tasks []gen.Task, path string) string {
	t.Helper()
	for _, task := range tasks {
		if task.Path == path {
			out, err := task.Render()
			require.NoError(t, err)
			return string(out)
		}
	}
	require.Failf(t, "missing file", "no task for %s", path)
	return ""
}

func taskPaths(tasks []gen.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Path
	}
	return out
}

func TestPostgres(t *testing.T) {
	g := New(Options{Values: true})
	assert.Equal(t, "sql", g.Name())
	assert.Equal(t, domain.TargetSQL, g.DomainTarget())

	s := modeltest.NewSample(t)
	tasks, err := g.Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.NoError(t, err)
	require.Equal(t, []string{"sql/tables.sql", "sql/values.sql"}, taskPaths(tasks))

	out := renderTask(t, tasks, "sql/tables.sql")
	assert.True(t, strings.HasPrefix(out, "-- Code generated by modelgen. DO NOT EDIT.\n\n"))
	assert.Contains(t, out, `CREATE TABLE "ORDER" (`)
	assert.Contains(t, out, `"ORD_ORDER_ID" bigint NOT NULL GENERATED BY DEFAULT AS IDENTITY`)
	assert.Contains(t, out, `"ORD_LABEL" character varying(100) NOT NULL`)
	assert.Contains(t, out, `"ORD_AMOUNT" numeric(12,2) NULL`)
	assert.Contains(t, out, `"ORD_CREATED_AT" date NULL`)
	assert.Contains(t, out, `PRIMARY KEY ("ORD_ORDER_ID")`)
	assert.Contains(t, out, `CONSTRAINT "FK_ORDER_STA_CODE" FOREIGN KEY ("STA_CODE") REFERENCES "STATUS" ("STA_CODE")`)
	assert.Contains(t, out, `CONSTRAINT "FK_ORDER_LINE_ORD_ORDER_ID" FOREIGN KEY ("ORD_ORDER_ID") REFERENCES "ORDER" ("ORD_ORDER_ID")`)
	assert.Contains(t, out, `CREATE UNIQUE INDEX "UK_ORDER_ORD_LABEL" ON "ORDER" ("ORD_LABEL");`)
	assert.Contains(t, out, `CREATE INDEX "IDX_ORDER_STA_CODE" ON "ORDER" ("STA_CODE");`)
	assert.NotContains(t, out, "ORDER_SEARCH", "non persistent classes have no table")
	assert.Less(t, strings.Index(out, `CREATE TABLE "STATUS"`), strings.Index(out, `CREATE TABLE "ORDER"`),
		"referenced tables come first")

	out = renderTask(t, tasks, "sql/values.sql")
	assert.Contains(t, out, `INSERT INTO "STATUS" ("STA_CODE", "STA_LABEL") VALUES ('ACTIVE', 'Active');`)
	assert.Contains(t, out, `INSERT INTO "COUNTRY" ("COUNTRY_CODE") VALUES ('FR');`)
}

func TestSchemaAndComments(t *testing.T) {
	s := modeltest.NewSample(t)
	tasks, err := New(Options{Schema: "shop", Comments: true, Values: true}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.NoError(t, err)

	out := renderTask(t, tasks, "sql/tables.sql")
	assert.Contains(t, out, `CREATE TABLE "shop"."STATUS" (`)
	assert.Contains(t, out, `COMMENT ON TABLE "shop"."ORDER" IS 'Customer order.'`)

	out = renderTask(t, tasks, "sql/values.sql")
	assert.Contains(t, out, `INSERT INTO "shop"."STATUS"`)
}

func TestMySQL(t *testing.T) {
	s := modeltest.NewSample(t)
	tasks, err := New(Options{Dialect: dialect.MySQL, Values: true}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.NoError(t, err)

	out := renderTask(t, tasks, "sql/tables.sql")
	assert.Contains(t, out, "CREATE TABLE `ORDER` (")
	assert.Contains(t, out, "`ORD_ORDER_ID` bigint NOT NULL AUTO_INCREMENT")
	assert.Contains(t, out, "`ORD_LABEL` varchar(100) NOT NULL")

	out = renderTask(t, tasks, "sql/values.sql")
	assert.Contains(t, out, "INSERT INTO `STATUS` (`STA_CODE`, `STA_LABEL`) VALUES ('ACTIVE', 'Active');")
}

func TestInvalidDialect(t *testing.T) {
	s := modeltest.NewSample(t)
	_, err := New(Options{Dialect: "oracle"}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	var cerr *gen.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "sql.dialect", cerr.Option)
}

func TestTagScope(t *testing.T) {
	s := modeltest.NewSample(t)
	tasks, err := New(Options{}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig(), "front"))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCheck(t *testing.T) {
	cfg := gen.MustNewConfig(gen.WithFeatureNames(gen.FeatureSQLCheck.Name))

	t.Run("valid", func(t *testing.T) {
		s := modeltest.NewSample(t)
		for _, d := range dialect.Supported {
			_, err := New(Options{Dialect: d, Values: true}).Tasks(gen.NewContext(s.Graph, cfg))
			require.NoError(t, err, d)
		}
	})

	t.Run("missing required value", func(t *testing.T) {
		s := modeltest.NewSample(t)
		d, err := s.Graph.Domains.Resolve("DO_LIBELLE")
		require.NoError(t, err)
		_, err = s.Graph.AddProperty(model.ClassOwner(s.Country.ID), &model.RegularProperty{PropertyBase: model.PropertyBase{
			Name:     "Label",
			Required: true,
			Domain:   d,
		}})
		require.NoError(t, err)

		_, err = New(Options{}).Tasks(gen.NewContext(s.Graph, cfg))
		require.ErrorIs(t, err, gen.ErrGenerationFailed)
		assert.Contains(t, err.Error(), "COUNTRY")
	})
}

func TestValueTypes(t *testing.T) {
	s := modeltest.NewSample(t)
	d, err := s.Graph.Domains.Resolve("DO_ID")
	require.NoError(t, err)
	_, err = s.Graph.AddProperty(model.ClassOwner(s.Country.ID), &model.RegularProperty{PropertyBase: model.PropertyBase{
		Name:   "Rank",
		Domain: d,
	}})
	require.NoError(t, err)
	s.Country.Values[0].Values["Rank"] = "first"

	_, err = New(Options{Values: true}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.ErrorIs(t, err, gen.ErrValidationFailed)
	var ve *gen.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Country", ve.Class)
	assert.Equal(t, "Rank", ve.Property)
	assert.Equal(t, "first", ve.Value)

	s.Country.Values[0].Values["Rank"] = "1"
	tasks, err := New(Options{Values: true}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.NoError(t, err)
	assert.Contains(t, renderTask(t, tasks, "sql/values.sql"), "'FR', 1)")
}

func TestJoinTable(t *testing.T) {
	manyToMany := func(t *testing.T, s *modeltest.Sample, from, to *model.Class) {
		t.Helper()
		_, err := s.Graph.AddProperty(model.ClassOwner(from.ID), &model.AssociationProperty{Association: to.ID, Type: model.ManyToMany})
		require.NoError(t, err)
	}
	tasks := func(t *testing.T, s *modeltest.Sample) (string, string) {
		t.Helper()
		var logs bytes.Buffer
		cfg := gen.MustNewConfig(gen.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		tasks, err := New(Options{}).Tasks(gen.NewContext(s.Graph, cfg))
		require.NoError(t, err)
		return renderTask(t, tasks, "sql/tables.sql"), logs.String()
	}

	t.Run("mapped", func(t *testing.T) {
		s := modeltest.NewSample(t)
		manyToMany(t, s, s.Order, s.Country)
		out, logs := tasks(t, s)
		assert.Contains(t, out, `CREATE TABLE "ORDER_COUNTRY" (`)
		assert.NotContains(t, logs, "no join table")
	})

	t.Run("unmapped target", func(t *testing.T) {
		s := modeltest.NewSample(t)
		manyToMany(t, s, s.Country, s.OrderSearch)
		out, logs := tasks(t, s)
		assert.NotContains(t, out, "COUNTRY_ORDER_SEARCH")
		assert.Contains(t, logs, "level=WARN")
		assert.Contains(t, logs, "many-to-many association has no join table")
		assert.Contains(t, logs, "class=Country")
		assert.Contains(t, logs, `reason="associated class has no table"`)
	})

	t.Run("composite key", func(t *testing.T) {
		s := modeltest.NewSample(t)
		d, err := s.Graph.Domains.Resolve("DO_CODE")
		require.NoError(t, err)
		_, err = s.Graph.AddProperty(model.ClassOwner(s.Country.ID), &model.RegularProperty{PropertyBase: model.PropertyBase{
			Name:       "Region",
			PrimaryKey: true,
			Required:   true,
			Domain:     d,
		}})
		require.NoError(t, err)
		manyToMany(t, s, s.Country, s.Status)
		out, logs := tasks(t, s)
		assert.NotContains(t, out, "COUNTRY_STATUS")
		assert.Contains(t, logs, `reason="class has no single primary key column"`)
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		dialect, raw, want string
	}{
		{dialect.Postgres, "int8[]", "int8[]"},
		{dialect.MySQL, "int8", "bigint"},
		{dialect.MySQL, "varchar", "varchar(255)"},
		{dialect.MySQL, "varchar(10)[]", "json"},
		{dialect.SQLite, "bytea", "bytea"},
		{dialect.SQLite, "varchar[]", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.dialect, tt.raw))
		})
	}
}
