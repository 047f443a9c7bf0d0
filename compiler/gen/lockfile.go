package gen

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const lockFileVersion = 1

// LockFile lists the files written by the last successful run.
type LockFile struct {
	Version int      `yaml:"version"`
	Files   []string `yaml:"generatedFiles"`
}

// ReadLockFile reads the lock file at path. A missing file yields an empty lock.
func ReadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LockFile{Version: lockFileVersion}, nil
	}
	if err != nil {
		return nil, err
	}
	lf := &LockFile{}
	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parse lock file %s: %w", path, err)
	}
	return lf, nil
}

// Write stores the lock file at path, files sorted.
func (l *LockFile) Write(path string) error {
	l.Version = lockFileVersion
	l.Files = SortedUnique(l.Files...)
	var buf bytes.Buffer
	buf.WriteString("# " + defaultHeader + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := writeAtomic(path, buf.Bytes())
	return err
}

// Stale returns the locked files missing from current.
func (l *LockFile) Stale(current []string) []string {
	var out []string
	for _, f := range l.Files {
		if !slices.Contains(current, f) {
			out = append(out, f)
		}
	}
	return out
}
