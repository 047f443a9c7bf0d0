package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFeatureEnabled(t *testing.T) {
	t.Run("returns true for enabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureLockFile, FeatureSQLCheck}}

		enabled, err := c.FeatureEnabled("sql/check")

		assert.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("returns false for disabled feature", func(t *testing.T) {
		c := &Config{Features: []Feature{FeatureLockFile}}

		enabled, err := c.FeatureEnabled("sql/check")

		assert.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("returns error for unknown feature", func(t *testing.T) {
		_, err := (&Config{}).FeatureEnabled("nonexistent")

		assert.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestConfigHasFeature(t *testing.T) {
	c := &Config{Features: []Feature{{Name: "i18n/comments"}}}
	assert.True(t, c.HasFeature("i18n/comments"))
	assert.False(t, c.HasFeature("lockfile"))
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	t.Run("has default header", func(t *testing.T) {
		assert.Equal(t, defaultHeader, c.Header)
		assert.Equal(t, defaultLockFile, c.LockFile)
		assert.Positive(t, c.Workers)
	})

	t.Run("enables default features only", func(t *testing.T) {
		for _, f := range AllFeatures {
			assert.Equal(t, f.Default, c.HasFeature(f.Name), f.Name)
		}
	})
}

func TestConfigFeatureEnabled_AllFeatures(t *testing.T) {
	for _, f := range allFeatures {
		t.Run(f.Name, func(t *testing.T) {
			c := &Config{Features: []Feature{f}}

			enabled, err := c.FeatureEnabled(f.Name)

			require.NoError(t, err)
			assert.True(t, enabled)
			assert.NotEqual(t, "unknown", f.Stage.String())
		})
	}
}

func TestFeatureCleanup(t *testing.T) {
	t.Run("disabled lock file is removed", func(t *testing.T) {
		dir := t.TempDir()
		c := &Config{Target: dir, LockFile: "modelgen.lock"}
		require.NoError(t, (&LockFile{Files: []string{"a.ts"}}).Write(dir+"/modelgen.lock"))

		require.NoError(t, cleanupDisabled(c))
		assert.NoFileExists(t, dir+"/modelgen.lock")
	})

	t.Run("enabled lock file is kept", func(t *testing.T) {
		dir := t.TempDir()
		c := &Config{Target: dir, LockFile: "modelgen.lock", Features: []Feature{FeatureLockFile}}
		require.NoError(t, (&LockFile{}).Write(dir+"/modelgen.lock"))

		require.NoError(t, cleanupDisabled(c))
		assert.FileExists(t, dir+"/modelgen.lock")
	})
}
