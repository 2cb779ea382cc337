package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/thisisdope/dlt/api"
)

// FromDocument compiles a schema configuration document into a Schema.
// All validation happens here, before any traversal starts.
func FromDocument(doc api.Document) (*Schema, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("schema document without a name")
	}
	s := New(doc.Name)
	if err := s.MergePrimaryKeyHints(doc.PrimaryKey); err != nil {
		return nil, err
	}
	for _, pattern := range doc.ComplexHints {
		if err := s.AddComplexHint(pattern); err != nil {
			return nil, err
		}
	}
	for _, t := range doc.Tables {
		if err := s.UpdateTable(t); err != nil {
			return nil, err
		}
	}
	if doc.Propagation != nil {
		if err := s.SetPropagation(*doc.Propagation); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadFile reads a schema document from a .json or .hcl file and compiles
// it.
func LoadFile(path string) (*Schema, error) {
	var doc api.Document
	switch filepath.Ext(path) {
	case ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", path, err)
		}
	case ".hcl":
		if err := hclsimple.DecodeFile(path, nil, &doc); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema format %q (want .json or .hcl)", filepath.Ext(path))
	}
	return FromDocument(doc)
}
