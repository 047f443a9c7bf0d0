// Package config reads the modelgen.yaml configuration of a project.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/gen/golang"
	"github.com/syssam/modelgen/compiler/gen/graphql"
	"github.com/syssam/modelgen/compiler/gen/i18n"
	"github.com/syssam/modelgen/compiler/gen/jpa"
	"github.com/syssam/modelgen/compiler/gen/sql"
	"github.com/syssam/modelgen/compiler/gen/typescript"
	"github.com/syssam/modelgen/compiler/importer"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "modelgen.yaml"

// EnvPrefix prefixes the environment variables overriding the file.
const EnvPrefix = "MODELGEN"

// Config is the content of a configuration file. Relative paths are
// resolved from the directory of the file.
type Config struct {
	// Dir is the directory of the configuration file.
	Dir string `mapstructure:"-"`

	App       string `mapstructure:"app"`
	ModelRoot string `mapstructure:"modelRoot"`
	Target    string `mapstructure:"target"`
	Header    string `mapstructure:"header"`
	LockFile  string `mapstructure:"lockFile"`
	Workers   int    `mapstructure:"workers"`
	// Features enables feature-flags, DisableFeatures disables default ones.
	Features        []string `mapstructure:"features"`
	DisableFeatures []string `mapstructure:"disableFeatures"`
	Log             Log      `mapstructure:"log"`

	SQL        []SQL        `mapstructure:"sql"`
	Golang     []Golang     `mapstructure:"golang"`
	JPA        []JPA        `mapstructure:"jpa"`
	TypeScript []TypeScript `mapstructure:"typescript"`
	I18n       []I18n       `mapstructure:"i18n"`
	GraphQL    []GraphQL    `mapstructure:"graphql"`

	Import *importer.Config `mapstructure:"import"`
}

// Log configures the logger of the command line.
type Log struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// SQL configures a DDL target.
type SQL struct {
	Tags              []string `mapstructure:"tags"`
	Root              string   `mapstructure:"root"`
	Dialect           string   `mapstructure:"dialect"`
	Schema            string   `mapstructure:"schema"`
	Comments          bool     `mapstructure:"comments"`
	Values            bool     `mapstructure:"values"`
	IdentityStart     int64    `mapstructure:"identityStart"`
	IdentityIncrement int64    `mapstructure:"identityIncrement"`
}

// Golang configures a Go target.
type Golang struct {
	Tags       []string `mapstructure:"tags"`
	Root       string   `mapstructure:"root"`
	ImportPath string   `mapstructure:"importPath"`
	DBTags     bool     `mapstructure:"dbTags"`
}

// JPA configures a Java target.
type JPA struct {
	Tags                []string `mapstructure:"tags"`
	Root                string   `mapstructure:"root"`
	Package             string   `mapstructure:"package"`
	EntitiesPackage     string   `mapstructure:"entitiesPackage"`
	DtosPackage         string   `mapstructure:"dtosPackage"`
	EnumsPackage        string   `mapstructure:"enumsPackage"`
	APIPackage          string   `mapstructure:"apiPackage"`
	Persistence         string   `mapstructure:"persistence"`
	Identity            string   `mapstructure:"identity"`
	SequenceStart       int      `mapstructure:"sequenceStart"`
	SequenceIncrement   int      `mapstructure:"sequenceIncrement"`
	Clients             bool     `mapstructure:"clients"`
	AssociationAdders   bool     `mapstructure:"associationAdders"`
	AssociationRemovers bool     `mapstructure:"associationRemovers"`
}

// TypeScript configures a TypeScript target.
type TypeScript struct {
	Tags                []string `mapstructure:"tags"`
	ModelRoot           string   `mapstructure:"modelRoot"`
	APIRoot             string   `mapstructure:"apiRoot"`
	DomainPath          string   `mapstructure:"domainPath"`
	EntityTypesPath     string   `mapstructure:"entityTypesPath"`
	FetchPath           string   `mapstructure:"fetchPath"`
	Mode                string   `mapstructure:"mode"`
	References          string   `mapstructure:"references"`
	TranslateProperties bool     `mapstructure:"translateProperties"`
	Comments            bool     `mapstructure:"comments"`
}

// I18n configures resource bundles.
type I18n struct {
	Tags                []string `mapstructure:"tags"`
	Root                string   `mapstructure:"root"`
	Langs               []string `mapstructure:"langs"`
	Format              string   `mapstructure:"format"`
	TranslateReferences bool     `mapstructure:"translateReferences"`
	// Translations is a directory of <lang>.yml files mapping resource
	// keys to translated text.
	Translations string `mapstructure:"translations"`
}

// GraphQL configures a schema target.
type GraphQL struct {
	Tags []string `mapstructure:"tags"`
	Root string   `mapstructure:"root"`
	File string   `mapstructure:"file"`
}

// Load reads the configuration file at path, or modelgen.yaml in the
// working directory when path is empty. The .env file next to the
// configuration is loaded first; MODELGEN_ variables override file
// values, as in MODELGEN_IMPORT_SOURCE_PASSWORD.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	if err := loadEnv(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(abs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("modelRoot", ".")
	v.SetDefault("target", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	for _, key := range []string{"import.source.host", "import.source.user", "import.source.password", "import.source.dsn"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{Dir: dir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// loadEnv loads .env then .env.local from dir, the latter overriding the
// former. Variables already set in the environment win over .env.
func loadEnv(dir string) error {
	if err := loadIfExists(godotenv.Load, filepath.Join(dir, ".env")); err != nil {
		return err
	}
	return loadIfExists(godotenv.Overload, filepath.Join(dir, ".env.local"))
}

func loadIfExists(load func(...string) error, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return gen.NewConfigError("log.format", c.Log.Format, "expected text or json")
	}
	if c.Workers < 0 {
		return gen.NewConfigError("workers", c.Workers, "must not be negative")
	}
	for _, name := range slices.Concat(c.Features, c.DisableFeatures) {
		if _, ok := gen.FeatureByName(name); !ok {
			return gen.NewConfigError("features", name, "unexpected feature name")
		}
	}
	return nil
}

// Level returns the log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, gen.NewConfigError("log.level", c.Log.Level, "expected debug, info, warn or error")
	}
	return l, nil
}

// Path resolves p from the configuration directory.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Options returns the generation options of the configuration.
func (c *Config) Options(logger *slog.Logger) ([]gen.Option, error) {
	gens, err := c.Generators()
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, gen.NewConfigError("generators", nil, "no generator configured")
	}
	opts := []gen.Option{
		gen.WithTarget(c.Path(c.Target)),
		gen.WithLogger(logger),
		gen.WithGenerators(gens...),
		gen.WithFeatureNames(c.Features...),
		gen.WithoutFeatures(c.DisableFeatures...),
	}
	if c.Header != "" {
		opts = append(opts, gen.WithHeader(c.Header))
	}
	if c.LockFile != "" {
		opts = append(opts, gen.WithLockFile(c.LockFile))
	}
	if c.Workers > 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	return opts, nil
}

// Generators returns the configured generators, in file order of targets:
// sql, golang, jpa, typescript, i18n then graphql.
func (c *Config) Generators() ([]gen.Generator, error) {
	var gens []gen.Generator
	for _, o := range c.SQL {
		gens = append(gens, sql.New(sql.Options{
			Tags:              o.Tags,
			Root:              o.Root,
			Dialect:           o.Dialect,
			Schema:            o.Schema,
			Comments:          o.Comments,
			Values:            o.Values,
			IdentityStart:     o.IdentityStart,
			IdentityIncrement: o.IdentityIncrement,
		}))
	}
	for _, o := range c.Golang {
		gens = append(gens, golang.New(golang.Options{
			Tags:       o.Tags,
			Root:       o.Root,
			ImportPath: o.ImportPath,
			DBTags:     o.DBTags,
		}))
	}
	for i, o := range c.JPA {
		identity, err := parseEnum(fmt.Sprintf("jpa[%d].identity", i), o.Identity, map[string]jpa.IdentityMode{
			"identity": jpa.Identity,
			"sequence": jpa.Sequence,
		})
		if err != nil {
			return nil, err
		}
		gens = append(gens, jpa.New(jpa.Options{
			Tags:                o.Tags,
			Root:                o.Root,
			Package:             o.Package,
			EntitiesPackage:     o.EntitiesPackage,
			DtosPackage:         o.DtosPackage,
			EnumsPackage:        o.EnumsPackage,
			APIPackage:          o.APIPackage,
			Persistence:         o.Persistence,
			Identity:            identity,
			SequenceStart:       o.SequenceStart,
			SequenceIncrement:   o.SequenceIncrement,
			Clients:             o.Clients,
			AssociationAdders:   o.AssociationAdders,
			AssociationRemovers: o.AssociationRemovers,
		}))
	}
	for i, o := range c.TypeScript {
		mode, err := parseEnum(fmt.Sprintf("typescript[%d].mode", i), o.Mode, map[string]typescript.EntityMode{
			"typed":   typescript.Typed,
			"untyped": typescript.Untyped,
			"plain":   typescript.Plain,
		})
		if err != nil {
			return nil, err
		}
		refs, err := parseEnum(fmt.Sprintf("typescript[%d].references", i), o.References, map[string]typescript.ReferenceMode{
			"definition": typescript.Definition,
			"values":     typescript.Values,
		})
		if err != nil {
			return nil, err
		}
		gens = append(gens, typescript.New(typescript.Options{
			Tags:                o.Tags,
			ModelRoot:           o.ModelRoot,
			APIRoot:             o.APIRoot,
			DomainPath:          o.DomainPath,
			EntityTypesPath:     o.EntityTypesPath,
			FetchPath:           o.FetchPath,
			Mode:                mode,
			References:          refs,
			TranslateProperties: o.TranslateProperties,
			Comments:            o.Comments,
		}))
	}
	for i, o := range c.I18n {
		format, err := parseEnum(fmt.Sprintf("i18n[%d].format", i), o.Format, map[string]i18n.Format{
			"json": i18n.JSON,
			"ts":   i18n.TS,
		})
		if err != nil {
			return nil, err
		}
		var catalog i18n.Catalog
		if o.Translations != "" {
			if catalog, err = readCatalog(c.Path(o.Translations)); err != nil {
				return nil, err
			}
		}
		gens = append(gens, i18n.New(i18n.Options{
			Tags:                o.Tags,
			Root:                o.Root,
			Langs:               o.Langs,
			Format:              format,
			TranslateReferences: o.TranslateReferences,
			Translations:        catalog,
		}))
	}
	for _, o := range c.GraphQL {
		gens = append(gens, graphql.New(graphql.Options{
			Tags: o.Tags,
			Root: o.Root,
			File: o.File,
		}))
	}
	return gens, nil
}

// parseEnum maps a configuration value to its constant. The empty value
// maps to the zero constant.
func parseEnum[T comparable](option, value string, values map[string]T) (T, error) {
	var zero T
	if value == "" {
		return zero, nil
	}
	v, ok := values[strings.ToLower(value)]
	if !ok {
		return zero, gen.NewConfigError(option, value, "unexpected value")
	}
	return v, nil
}

// readCatalog reads the translation files of dir: one <lang>.yml or
// <lang>.yaml file per language, mapping resource keys to text.
func readCatalog(dir string) (i18n.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read translations: %w", err)
	}
	catalog := make(i18n.Catalog)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		texts := make(map[string]string)
		if err := yaml.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("config: translations %s: %w", e.Name(), err)
		}
		catalog[strings.TrimSuffix(e.Name(), ext)] = texts
	}
	return catalog, nil
}
