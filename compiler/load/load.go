// Package load reads YAML model files and builds the model graph.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// Parse decodes the YAML documents of one model file.
func Parse(path string, data []byte) (*File, error) {
	f := &File{Path: filepath.ToSlash(path)}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &gen.ModelError{File: f.Path, Message: "invalid YAML", Cause: err}
		}
		switch {
		case doc.Class != nil:
			f.Classes = append(f.Classes, doc.Class)
		case doc.Endpoint != nil:
			f.Endpoints = append(f.Endpoints, doc.Endpoint)
		case doc.Decorator != nil:
			f.Decorators = append(f.Decorators, doc.Decorator)
		case doc.Domain != nil:
			f.Domains = append(f.Domains, doc.Domain)
		default:
			if doc.Module != "" {
				f.Module = doc.Module
			}
			if doc.App != "" {
				f.App = doc.App
			}
			f.Tags = append(f.Tags, doc.Tags...)
			f.Uses = append(f.Uses, doc.Uses...)
		}
	}
	if f.Module == "" && (len(f.Classes) > 0 || len(f.Endpoints) > 0 || len(f.Decorators) > 0) {
		return nil, &gen.ModelError{File: f.Path, Message: "missing module in file header"}
	}
	return f, nil
}

// ParseFile reads and parses the model file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Files parses every .yml and .yaml file under dir, in lexical order.
func Files(dir string) ([]*File, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".yml", ".yaml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load: walk %s: %w", dir, err)
	}
	slices.Sort(paths)
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(dir, path)
		if err == nil {
			f.Path = filepath.ToSlash(rel)
		}
		files = append(files, f)
	}
	return files, nil
}

// Dir parses the model files under dir and builds their graph.
func Dir(dir string) (*model.Graph, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &gen.ModelError{File: dir, Message: "no model file found"}
	}
	return Build(files...)
}
