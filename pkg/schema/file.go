package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"gopkg.in/yaml.v3"
)

// File is the on-disk schema format:
//
//	tables:
//	  main.orders:
//	    id: int
//	    customer: string
//	    note: ~        # unknown type
type File struct {
	Tables yaml.Node `yaml:"tables"`
}

// Parse reads a schema document into a MappingResolver.
// Relation order in the document is irrelevant; column order is kept.
func Parse(data []byte, d *dialect.Dialect) (*MappingResolver, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}

	r := NewMappingResolver(d)
	if f.Tables.Kind == 0 {
		return r, nil
	}
	if f.Tables.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: tables must be a mapping of relation to columns", f.Tables.Line)
	}

	for i := 0; i+1 < len(f.Tables.Content); i += 2 {
		name, body := f.Tables.Content[i], f.Tables.Content[i+1]
		cols := NewColumnTypeMap()
		if err := body.Decode(cols); err != nil {
			return nil, fmt.Errorf("relation %q: %w", name.Value, err)
		}
		r.Add(name.Value, cols)
	}
	return r, nil
}

// LoadFile reads a YAML schema file.
func LoadFile(path string, d *dialect.Dialect) (*MappingResolver, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	r, err := Parse(data, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
