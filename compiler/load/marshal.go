package load

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Marshal encodes f in the format read by Parse: the header document
// followed by one document per declaration.
func Marshal(f *File) ([]byte, error) {
	var (
		b    bytes.Buffer
		docs = []document{{App: f.App, Module: f.Module, Tags: f.Tags, Uses: f.Uses}}
	)
	for _, d := range f.Domains {
		docs = append(docs, document{Domain: d})
	}
	for _, d := range f.Decorators {
		docs = append(docs, document{Decorator: d})
	}
	for _, c := range f.Classes {
		docs = append(docs, document{Class: c})
	}
	for _, e := range f.Endpoints {
		docs = append(docs, document{Endpoint: e})
	}
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
