// Package schema supplies column metadata to macros.
//
// A Resolver maps a relation to an ordered ColumnTypeMap. Resolvers are
// backed by in-memory mappings, YAML schema files, or live catalog
// adapters (see pkg/adapter).
package schema

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"gopkg.in/yaml.v3"
)

// TypeUnknown marks a column whose declared type could not be determined.
const TypeUnknown = ""

// ColumnTypeMap is an ordered mapping of column name to declared type.
// Insertion order is the order columns are projected in.
type ColumnTypeMap struct {
	names []string
	types map[string]string
}

// NewColumnTypeMap creates an empty map.
func NewColumnTypeMap() *ColumnTypeMap {
	return &ColumnTypeMap{types: make(map[string]string)}
}

// Columns builds a map from alternating name/type pairs.
// It panics on an odd number of arguments.
func Columns(pairs ...string) *ColumnTypeMap {
	if len(pairs)%2 != 0 {
		panic("schema.Columns: odd number of arguments")
	}
	m := NewColumnTypeMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// FromMetadata builds a map from adapter column metadata, ordered by position.
func FromMetadata(cols []core.ColumnMetadata) *ColumnTypeMap {
	m := NewColumnTypeMap()
	for _, c := range cols {
		m.Set(c.Name, strings.TrimSpace(c.Type))
	}
	return m
}

// Set adds or updates a column. Updating keeps the original position.
func (m *ColumnTypeMap) Set(name, typ string) {
	if _, ok := m.types[name]; !ok {
		m.names = append(m.names, name)
	}
	m.types[name] = typ
}

// Get returns the declared type of a column.
func (m *ColumnTypeMap) Get(name string) (string, bool) {
	typ, ok := m.types[name]
	return typ, ok
}

// Names returns column names in order.
func (m *ColumnTypeMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of columns.
func (m *ColumnTypeMap) Len() int {
	return len(m.names)
}

// AllKnown reports whether every column has a declared type.
func (m *ColumnTypeMap) AllKnown() bool {
	for _, name := range m.names {
		if m.types[name] == TypeUnknown {
			return false
		}
	}
	return true
}

// Filter returns a new map with the columns for which keep returns true,
// in their original relative order.
func (m *ColumnTypeMap) Filter(keep func(name string) bool) *ColumnTypeMap {
	out := NewColumnTypeMap()
	for _, name := range m.names {
		if keep(name) {
			out.Set(name, m.types[name])
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *ColumnTypeMap) Clone() *ColumnTypeMap {
	return m.Filter(func(string) bool { return true })
}

// UnmarshalYAML decodes a YAML mapping of column -> type, keeping document
// order. A null or empty type is TypeUnknown.
func (m *ColumnTypeMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: columns must be a mapping of name to type", node.Line)
	}
	if m.types == nil {
		m.types = make(map[string]string)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: type of column %q must be a scalar", val.Line, key.Value)
		}
		typ := val.Value
		if val.Tag == "!!null" {
			typ = TypeUnknown
		}
		m.Set(key.Value, strings.TrimSpace(typ))
	}
	return nil
}

// MarshalYAML encodes the map as an ordered YAML mapping.
func (m *ColumnTypeMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range m.names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.types[name]},
		)
	}
	return node, nil
}
