package importer

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/dialect"
)

// Config describes the database to import and how its tables map to
// model files.
type Config struct {
	// OutputDirectory is the directory of the model files, relative to the
	// model root.
	OutputDirectory string `yaml:"outputDirectory" mapstructure:"outputDirectory"`
	// App is written in the header of every model file.
	App    string `yaml:"app" mapstructure:"app"`
	Source Source `yaml:"source" mapstructure:"source"`
	// Domains maps column types to domains. The first matching entry wins.
	Domains []DomainMapping `yaml:"domains" mapstructure:"domains"`
	// Exclude lists patterns of tables left out.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	// Tags are written in the header of every model file.
	Tags []string `yaml:"tags" mapstructure:"tags"`
	// ExtractValues lists patterns of tables whose rows become the values
	// of a reference class.
	ExtractValues []string `yaml:"extractValues" mapstructure:"extractValues"`
	// ClassNameOverrides maps table names, compared case-insensitively, to
	// class names.
	ClassNameOverrides map[string]string `yaml:"classNameOverrides" mapstructure:"classNameOverrides"`
	// Modules assigns tables to modules. Tables matching no module go to
	// DefaultModule.
	Modules       []Module `yaml:"modules" mapstructure:"modules"`
	DefaultModule string   `yaml:"defaultModule" mapstructure:"defaultModule"`
}

// Source locates the database.
type Source struct {
	// Type is the dialect of the database.
	Type     string `yaml:"type" mapstructure:"type"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	DBName   string `yaml:"dbName" mapstructure:"dbName"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	// Schema is the PostgreSQL schema to read, "public" by default. For
	// MySQL the database is read.
	Schema string `yaml:"schema" mapstructure:"schema"`
	// DSN overrides the connection string built from the other fields.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// DomainMapping maps columns to a domain.
type DomainMapping struct {
	Domain string `yaml:"domain" mapstructure:"domain"`
	// SQLType is the column type, without length, compared case-insensitively.
	SQLType string `yaml:"sqlType" mapstructure:"sqlType"`
	// Length and Scale, when set, must equal those of the column.
	Length *int `yaml:"length" mapstructure:"length"`
	Scale  *int `yaml:"scale" mapstructure:"scale"`
	// Column, when set, is a pattern the column name must match.
	Column string `yaml:"column" mapstructure:"column"`
}

// Module groups tables in one model file.
type Module struct {
	Name string `yaml:"name" mapstructure:"name"`
	// Tables lists table name patterns.
	Tables []string `yaml:"tables" mapstructure:"tables"`
}

func (c *Config) defaults() {
	if c.DefaultModule == "" {
		c.DefaultModule = "Database"
	}
	if c.Source.Type == dialect.Postgres && c.Source.Schema == "" {
		c.Source.Schema = "public"
	}
	if c.Source.Type == dialect.MySQL && c.Source.Schema == "" {
		c.Source.Schema = c.Source.DBName
	}
}

// Validate reports the first invalid option of c.
func (c *Config) Validate() error {
	if err := dialect.Validate(c.Source.Type); err != nil {
		return gen.NewConfigError("import.source.type", c.Source.Type, err.Error())
	}
	if c.Source.DSN == "" && c.Source.DBName == "" {
		return gen.NewConfigError("import.source.dbName", "", "a database name or a dsn is required")
	}
	for i, m := range c.Domains {
		if m.Domain == "" || m.SQLType == "" {
			return gen.NewConfigError(fmt.Sprintf("import.domains[%d]", i), m.Domain, "domain and sqlType are required")
		}
	}
	patterns := slicesOf(c.Exclude, c.ExtractValues)
	for _, m := range c.Modules {
		if m.Name == "" {
			return gen.NewConfigError("import.modules", m.Tables, "module without name")
		}
		patterns = append(patterns, m.Tables...)
	}
	for _, m := range c.Domains {
		if m.Column != "" {
			patterns = append(patterns, m.Column)
		}
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return gen.NewConfigError("import", p, "invalid pattern: "+err.Error())
		}
	}
	return nil
}

// ConnectionString returns the database/sql data source name of s.
func (s Source) ConnectionString() string {
	if s.DSN != "" {
		return s.DSN
	}
	switch s.Type {
	case dialect.Postgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     s.address(5432),
			Path:     "/" + s.DBName,
			RawQuery: "sslmode=disable",
		}
		if s.User != "" {
			u.User = url.User(s.User)
			if s.Password != "" {
				u.User = url.UserPassword(s.User, s.Password)
			}
		}
		return u.String()
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = s.User
		cfg.Passwd = s.Password
		cfg.Net = "tcp"
		cfg.Addr = s.address(3306)
		cfg.DBName = s.DBName
		return cfg.FormatDSN()
	}
	return s.DBName
}

func (s Source) address(port int) string {
	host := s.Host
	if host == "" {
		host = "localhost"
	}
	if s.Port != 0 {
		port = s.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// match reports whether name matches one of patterns, ignoring case.
func match(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(strings.ToUpper(p), strings.ToUpper(name)); ok {
			return true
		}
	}
	return false
}

func slicesOf(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
