package gen

import (
	"log/slog"
	"runtime"
	"slices"
)

const (
	// defaultHeader is written at the top of every generated file that supports comments.
	defaultHeader = "Code generated by modelgen. DO NOT EDIT."
	// defaultLockFile is the name of the lock file listing generated files.
	defaultLockFile = "modelgen.lock"
)

// Config holds the configuration of a generation run.
type Config struct {
	// Target is the root directory of all generated files.
	Target string

	// Header is the comment written at the top of generated files.
	Header string

	// LockFile is the lock file path relative to Target.
	LockFile string

	// Workers bounds the number of files rendered concurrently.
	Workers int

	// Logger receives progress and diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Features lists the enabled feature-flags.
	Features []Feature

	// Generators are run in order; their tasks share one writer.
	Generators []Generator

	// Hooks wrap every generator before it runs.
	Hooks []Hook
}

// DefaultConfig returns a config with default-enabled features.
func DefaultConfig() *Config {
	c := &Config{
		Header:   defaultHeader,
		LockFile: defaultLockFile,
		Workers:  runtime.GOMAXPROCS(0),
	}
	for _, f := range AllFeatures {
		if f.Default {
			c.Features = append(c.Features, f)
		}
	}
	return c
}

// FeatureEnabled reports if the given feature name is enabled.
// Generators use it to reject feature names unknown to this package.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	if !slices.ContainsFunc(allFeatures, func(f Feature) bool { return f.Name == name }) {
		return false, NewConfigError("Features", name, "unexpected feature name")
	}
	return c.HasFeature(name), nil
}

// HasFeature reports if the feature name is enabled, ignoring unknown names.
func (c *Config) HasFeature(name string) bool {
	return slices.ContainsFunc(c.Features, func(f Feature) bool { return f.Name == name })
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) header() string {
	if c.Header == "" {
		return defaultHeader
	}
	return c.Header
}
