package schema

import (
	"testing"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestColumnTypeMap_Order(t *testing.T) {
	m := Columns("d", "int", "a", "string", "c", "string")
	m.Set("a", "text") // update keeps position
	m.Set("b", TypeUnknown)

	assert.Equal(t, []string{"d", "a", "c", "b"}, m.Names())
	assert.Equal(t, 4, m.Len())

	typ, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "text", typ)

	_, ok = m.Get("zzz")
	assert.False(t, ok)
}

func TestColumnTypeMap_AllKnown(t *testing.T) {
	assert.True(t, Columns("a", "int", "b", "text").AllKnown())
	assert.False(t, Columns("a", "int", "b", TypeUnknown).AllKnown())
	assert.True(t, NewColumnTypeMap().AllKnown())
}

func TestColumnTypeMap_Filter(t *testing.T) {
	m := Columns("a", "int", "b", "int", "c", "int", "d", "int")
	out := m.Filter(func(name string) bool { return name != "c" })

	assert.Equal(t, []string{"a", "b", "d"}, out.Names())
	assert.Equal(t, 4, m.Len(), "source map is unchanged")
}

func TestColumnTypeMap_NamesIsCopy(t *testing.T) {
	m := Columns("a", "int")
	names := m.Names()
	names[0] = "x"
	assert.Equal(t, []string{"a"}, m.Names())
}

func TestColumnTypeMap_OddPairsPanics(t *testing.T) {
	assert.Panics(t, func() { Columns("a") })
}

func TestFromMetadata(t *testing.T) {
	m := FromMetadata([]core.ColumnMetadata{
		{Name: "id", Type: "INTEGER", Position: 1},
		{Name: "name", Type: " VARCHAR ", Position: 2},
	})
	assert.Equal(t, []string{"id", "name"}, m.Names())
	typ, _ := m.Get("name")
	assert.Equal(t, "VARCHAR", typ)
}

func TestColumnTypeMap_YAML(t *testing.T) {
	src := "z: int\na: string\nm: ~\n"

	m := NewColumnTypeMap()
	require.NoError(t, yaml.Unmarshal([]byte(src), m))
	assert.Equal(t, []string{"z", "a", "m"}, m.Names())
	assert.False(t, m.AllKnown())

	out, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "z: int\na: string\nm: \"\"\n", string(out))
}

func TestColumnTypeMap_YAMLRejectsSequence(t *testing.T) {
	m := NewColumnTypeMap()
	err := yaml.Unmarshal([]byte("- a\n- b\n"), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping")
}
