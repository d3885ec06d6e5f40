package macro

import (
	"testing"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderKey(t *testing.T, d *dialect.Dialect, fields ...core.Expr) string {
	t.Helper()
	key, err := GenerateSurrogateKey(fields...)
	require.NoError(t, err)
	return format.Expr(key, d)
}

func TestGenerateSurrogateKey(t *testing.T) {
	tests := []struct {
		name     string
		fields   []core.Expr
		expected string
	}{
		{
			name:     "single field",
			fields:   []core.Expr{core.Column("a")},
			expected: "DIGEST(CONCAT(COALESCE(CAST(a AS TEXT), '_leapmacro_surrogate_key_null_')), 'sha256')",
		},
		{
			name:   "two fields",
			fields: []core.Expr{core.Column("a"), core.QualifiedColumn("t", "b", false)},
			expected: "DIGEST(CONCAT(" +
				"COALESCE(CAST(a AS TEXT), '_leapmacro_surrogate_key_null_'), '|', " +
				"COALESCE(CAST(t.b AS TEXT), '_leapmacro_surrogate_key_null_')), 'sha256')",
		},
		{
			name:   "arbitrary expressions",
			fields: []core.Expr{core.Func("UPPER", core.Column("a")), core.Number("1")},
			expected: "DIGEST(CONCAT(" +
				"COALESCE(CAST(UPPER(a) AS TEXT), '_leapmacro_surrogate_key_null_'), '|', " +
				"COALESCE(CAST(1 AS TEXT), '_leapmacro_surrogate_key_null_')), 'sha256')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderKey(t, dialect.Postgres, tt.fields...))
		})
	}
}

func TestGenerateSurrogateKey_Deterministic(t *testing.T) {
	first := renderKey(t, dialect.DuckDB, core.Column("a"), core.Column("b"), core.Column("c"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, renderKey(t, dialect.DuckDB, core.Column("a"), core.Column("b"), core.Column("c")))
	}
}

func TestGenerateSurrogateKey_OrderSensitive(t *testing.T) {
	ab := renderKey(t, dialect.DuckDB, core.Column("a"), core.Column("b"))
	ba := renderKey(t, dialect.DuckDB, core.Column("b"), core.Column("a"))
	assert.NotEqual(t, ab, ba)
}

func TestGenerateSurrogateKey_NullHandling(t *testing.T) {
	key, err := GenerateSurrogateKey(core.Null(), core.Column("a"))
	require.NoError(t, err)

	// Every field is wrapped so a NULL never reaches CONCAT.
	concat := key.(*core.FuncCall).Args[0].(*core.FuncCall)
	require.Equal(t, "CONCAT", concat.Name)
	require.Len(t, concat.Args, 3)
	for _, i := range []int{0, 2} {
		coalesce := concat.Args[i].(*core.FuncCall)
		assert.Equal(t, "COALESCE", coalesce.Name)
		assert.Equal(t, core.String(NullSentinel), coalesce.Args[1])
	}

	// A NULL field and a field holding a different string produce different keys.
	withNull := renderKey(t, dialect.DuckDB, core.Null())
	withValue := renderKey(t, dialect.DuckDB, core.String("x"))
	assert.NotEqual(t, withNull, withValue)
}

func TestGenerateSurrogateKey_DoesNotMutateInputs(t *testing.T) {
	col := core.QualifiedColumn("t", "a", true)
	_, err := GenerateSurrogateKey(col)
	require.NoError(t, err)
	assert.Equal(t, core.QualifiedColumn("t", "a", true), col)
}

func TestGenerateSurrogateKey_NoFields(t *testing.T) {
	_, err := GenerateSurrogateKey()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, SurrogateKeyName, cfgErr.Macro)
	assert.Equal(t, "fields", cfgErr.Arg)
}

func TestGenerateSurrogateKey_DialectCastType(t *testing.T) {
	assert.Contains(t, renderKey(t, dialect.Snowflake, core.Column("a")), "CAST(a AS VARCHAR)")
	assert.Contains(t, renderKey(t, dialect.MySQL, core.Column("a")), "CAST(a AS CHAR)")
}
