package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/gen/i18n"
)

const sample = `app: Shop
modelRoot: model
target: out
lockFile: shop.lock
workers: 4
features: [sql/check]
disableFeatures: [go/imports]
log:
  level: debug
sql:
  - root: sql
    dialect: postgres
    comments: true
golang:
  - root: internal/model
    importPath: example.com/shop/internal/model
jpa:
  - root: java
    package: com.example.shop
    identity: sequence
typescript:
  - modelRoot: ts/model
    mode: untyped
    references: values
i18n:
  - root: i18n
    langs: [en, fr]
    format: ts
    translations: translations
graphql:
  - tags: [front]
import:
  outputDirectory: imported
  source:
    type: postgres
    dbName: shop
    user: shop
  classNameOverrides:
    T_ORDER: Order
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, FileName, sample)
	write(t, dir, ".env", "MODELGEN_IMPORT_SOURCE_PASSWORD=secret\n")
	write(t, dir, "translations/fr.yml", "sales.order.label: Commande\n")
	t.Cleanup(func() { os.Unsetenv("MODELGEN_IMPORT_SOURCE_PASSWORD") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "Shop", cfg.App)
	assert.Equal(t, filepath.Join(dir, "model"), cfg.Path(cfg.ModelRoot))
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"sql/check"}, cfg.Features)

	require.NotNil(t, cfg.Import)
	assert.Equal(t, "imported", cfg.Import.OutputDirectory)
	assert.Equal(t, "shop", cfg.Import.Source.User)
	assert.Equal(t, "secret", cfg.Import.Source.Password)
	assert.Equal(t, "Order", cfg.Import.ClassNameOverrides["t_order"])

	gens, err := cfg.Generators()
	require.NoError(t, err)
	names := make([]string, len(gens))
	for i, g := range gens {
		names[i] = g.Name()
	}
	assert.Equal(t, []string{"sql", "golang", "jpa", "typescript", "i18n", "graphql"}, names)
	tf, ok := gens[5].(gen.TagFilter)
	require.True(t, ok)
	assert.Equal(t, []string{"front"}, tf.Tags())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestOptions(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, FileName, "target: out\nheader: Generated.\ngraphql:\n  - file: api.graphqls\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Import)
	assert.Equal(t, "info", cfg.Log.Level)

	opts, err := cfg.Options(slog.Default())
	require.NoError(t, err)
	c, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), c.Target)
	assert.Equal(t, "Generated.", c.Header)
	require.Len(t, c.Generators, 1)
	assert.True(t, c.HasFeature(gen.FeatureLockFile.Name))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		option  string
	}{
		{"level", "log:\n  level: loud\n", "log.level"},
		{"format", "log:\n  format: xml\n", "log.format"},
		{"feature", "features: [unknown]\n", "features"},
		{"workers", "workers: -1\n", "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, t.TempDir(), FileName, tt.content)
			_, err := Load(path)
			var ce *gen.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
		})
	}

	t.Run("enum", func(t *testing.T) {
		path := write(t, t.TempDir(), FileName, "typescript:\n  - mode: loose\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		_, err = cfg.Generators()
		var ce *gen.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "typescript[0].mode", ce.Option)
	})

	t.Run("no generator", func(t *testing.T) {
		path := write(t, t.TempDir(), FileName, "app: Shop\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		_, err = cfg.Options(slog.Default())
		require.ErrorIs(t, err, gen.ErrMissingConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName))
		require.Error(t, err)
	})
}

func TestReadCatalog(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "fr.yml", "sales.order.label: Commande\n")
	write(t, dir, "de.yaml", "sales.order.label: Bestellung\n")
	write(t, dir, "README.md", "# translations\n")

	catalog, err := readCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, i18n.Catalog{
		"fr": {"sales.order.label": "Commande"},
		"de": {"sales.order.label": "Bestellung"},
	}, catalog)
}
