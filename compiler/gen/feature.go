package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureLockFile records generated files in a lock file and removes
	// files that a later run no longer produces.
	FeatureLockFile = Feature{
		Name:        "lockfile",
		Stage:       Stable,
		Default:     true,
		Description: "Tracks generated files in a lock file and deletes stale ones",
		cleanup: func(c *Config) error {
			if c.LockFile == "" {
				return nil
			}
			err := os.Remove(filepath.Join(c.Target, c.LockFile))
			if os.IsNotExist(err) {
				return nil
			}
			return err
		},
	}

	// FeatureGoImports formats generated Go files with goimports.
	FeatureGoImports = Feature{
		Name:        "go/imports",
		Stage:       Stable,
		Default:     true,
		Description: "Formats generated Go files and fixes their imports",
	}

	// FeatureLegacyRoleNames keeps the historical column naming of associations
	// with a role: the role is appended verbatim after an underscore.
	FeatureLegacyRoleNames = Feature{
		Name:        "sql/legacyroles",
		Stage:       Stable,
		Default:     false,
		Description: "Appends association roles verbatim to column names",
	}

	// FeatureSQLCheck executes the generated DDL against an in-memory SQLite
	// database before writing it.
	FeatureSQLCheck = Feature{
		Name:        "sql/check",
		Stage:       Experimental,
		Default:     false,
		Description: "Validates generated SQLite DDL against an in-memory database",
	}

	// FeatureCommentResources emits translated comment bundles next to label bundles.
	FeatureCommentResources = Feature{
		Name:        "i18n/comments",
		Stage:       Beta,
		Default:     false,
		Description: "Generates resource bundles for property comments",
	}

	// FeatureTSReferences emits reference lists for TypeScript clients.
	FeatureTSReferences = Feature{
		Name:        "ts/references",
		Stage:       Beta,
		Default:     true,
		Description: "Generates reference class values and enum key unions for TypeScript",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureLockFile,
		FeatureGoImports,
		FeatureLegacyRoleNames,
		FeatureSQLCheck,
		FeatureCommentResources,
		FeatureTSReferences,
	}
	// allFeatures includes all public and private features.
	allFeatures = AllFeatures
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change or disappear.
	Experimental

	// Alpha features are complete but their output may still change.
	Alpha

	// Beta features are documented and their output is not expected to change.
	Beta

	// Stable features are Beta features that have been used on real models for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the code generator.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// FeatureByName returns the declared feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range allFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// cleanupDisabled runs the cleanup of every declared feature that is not enabled.
func cleanupDisabled(c *Config) error {
	for _, f := range allFeatures {
		if f.cleanup == nil || c.HasFeature(f.Name) {
			continue
		}
		if err := f.cleanup(c); err != nil {
			return NewGenerationError("", "", "cleanup feature "+f.Name, err)
		}
	}
	return nil
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
