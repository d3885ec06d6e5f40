package macro

import (
	"testing"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		expr core.Expr
		want Kind
	}{
		{core.Table("foo"), KindTable},
		{core.Column("a"), KindColumn},
		{core.Ident("a"), KindIdentifier},
		{core.Array(), KindArray},
		{core.Tuple(), KindTuple},
		{core.String("x"), KindLiteral},
		{core.Number("1"), KindLiteral},
		{core.True(), KindBoolean},
		{core.Null(), KindNull},
		{core.Func("F"), KindExpression},
		{core.Cast(core.Column("a"), "int"), KindExpression},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.expr))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "any", KindAny.String())
	assert.Equal(t, "column|array|tuple", (KindArray | KindTuple | KindColumn).String())
	assert.Equal(t, "nothing", Kind(0).String())
}

func TestBind_StarDefaults(t *testing.T) {
	args, err := Bind(StarName, starSignature, []core.Expr{core.Column("foo")}, nil)
	require.NoError(t, err)

	assert.Equal(t, core.Column("foo"), args.Get("relation"))
	assert.Equal(t, core.Column(""), args.Get("alias"))
	assert.Equal(t, core.Tuple(), args.Get("exclude"))
	assert.Equal(t, core.String(""), args.Get("prefix"))
	assert.Equal(t, core.True(), args.Get("quote_identifiers"))
	assert.Equal(t, core.False(), args.Get("select_only"))
}

func TestBind_DefaultsAreFreshPerCall(t *testing.T) {
	first, err := Bind(StarName, starSignature, []core.Expr{core.Column("foo")}, nil)
	require.NoError(t, err)
	second, err := Bind(StarName, starSignature, []core.Expr{core.Column("foo")}, nil)
	require.NoError(t, err)

	a := first.Get("exclude").(*core.TupleExpr)
	b := second.Get("exclude").(*core.TupleExpr)
	assert.NotSame(t, a, b)

	a.Elements = append(a.Elements, core.Column("x"))
	assert.Empty(t, b.Elements)
}

func TestBind_PositionalAndNamed(t *testing.T) {
	args, err := Bind(StarName, starSignature,
		[]core.Expr{core.Column("foo"), core.Ident("bar")},
		map[string]core.Expr{"PREFIX": core.String("baz_"), "select_only": core.True()},
	)
	require.NoError(t, err)

	assert.Equal(t, core.Ident("bar"), args.Get("alias"))
	assert.Equal(t, core.String("baz_"), args.Get("prefix"))
	assert.Equal(t, core.True(), args.Get("select_only"))

	assert.True(t, args.Supplied("alias"))
	assert.True(t, args.Supplied("prefix"))
	assert.False(t, args.Supplied("exclude"))
	assert.Equal(t, core.Tuple(), args.Get("exclude"))
}

func TestBind_Variadic(t *testing.T) {
	fields := []core.Expr{core.Column("a"), core.Column("b"), core.Func("F")}
	args, err := Bind(SurrogateKeyName, surrogateKeySignature, fields, nil)
	require.NoError(t, err)
	assert.Equal(t, fields, args.Rest())

	args, err = Bind(SurrogateKeyName, surrogateKeySignature, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, args.Rest())
}

func TestBind_Errors(t *testing.T) {
	tests := []struct {
		name       string
		sig        Signature
		positional []core.Expr
		named      map[string]core.Expr
		arg        string
		got        string
	}{
		{
			name: "missing required",
			sig:  starSignature,
			arg:  "relation",
			got:  "nothing",
		},
		{
			name:       "non-identifier alias",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo"), core.String("bar")},
			arg:        "alias",
			got:        "literal",
		},
		{
			name:       "literal exclude",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"exclude": core.String("c")},
			arg:        "exclude",
			got:        "literal",
		},
		{
			name:       "non-literal prefix",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"prefix": core.Column("baz")},
			arg:        "prefix",
			got:        "column",
		},
		{
			name:       "non-literal suffix",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"suffix": core.Func("F")},
			arg:        "suffix",
			got:        "expression",
		},
		{
			name:       "non-boolean quote_identifiers",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"quote_identifiers": core.String("true")},
			arg:        "quote_identifiers",
			got:        "literal",
		},
		{
			name:       "non-boolean select_only",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"select_only": core.Number("1")},
			arg:        "select_only",
			got:        "literal",
		},
		{
			name:       "non-array except_",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"except_": core.True()},
			arg:        "except_",
			got:        "boolean",
		},
		{
			name:       "unknown named",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"colour": core.True()},
			arg:        "colour",
			got:        "unknown argument",
		},
		{
			name:       "duplicate",
			sig:        starSignature,
			positional: []core.Expr{core.Column("foo")},
			named:      map[string]core.Expr{"relation": core.Column("bar")},
			arg:        "relation",
			got:        "multiple values",
		},
		{
			name: "too many positional",
			sig:  starSignature,
			positional: []core.Expr{
				core.Column("foo"), core.Ident("a"), core.Tuple(), core.String(""), core.String(""),
				core.True(), core.Tuple(), core.False(), core.Number("9"),
			},
			got: "9",
		},
		{
			name:       "named variadic",
			sig:        surrogateKeySignature,
			named:      map[string]core.Expr{"fields": core.Column("a")},
			arg:        "fields",
			got:        "unknown argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Bind("M", tt.sig, tt.positional, tt.named)
			assert.Nil(t, args)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "M", cfgErr.Macro)
			assert.Equal(t, tt.arg, cfgErr.Arg)
			assert.Equal(t, tt.got, cfgErr.Got)
		})
	}
}

func TestBind_UnknownNamedHint(t *testing.T) {
	tests := []struct {
		name     string
		sig      Signature
		expected string
	}{
		{"lists named parameters", starSignature, "one of relation, alias, exclude, prefix, suffix, quote_identifiers, except_, select_only"},
		{"variadic only", surrogateKeySignature, "no named arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind("M", tt.sig, []core.Expr{core.Column("a")}, map[string]core.Expr{"colour": core.True()})

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.expected, cfgErr.Expected)
		})
	}
}

func TestSignature_Accepts(t *testing.T) {
	assert.True(t, starSignature.Accepts("prefix"))
	assert.True(t, starSignature.Accepts("SELECT_ONLY"))
	assert.False(t, starSignature.Accepts("colour"))
	assert.False(t, surrogateKeySignature.Accepts("fields"), "variadic parameters are positional only")
}

func TestConfigurationError_Error(t *testing.T) {
	err := &ConfigurationError{Macro: "STAR", Arg: "prefix", Expected: "literal", Got: "column"}
	assert.Equal(t, `STAR: argument "prefix": expected literal, got column`, err.Error())

	err = &ConfigurationError{Macro: "STAR", Expected: "at most 8 arguments"}
	assert.Equal(t, `STAR: expected at most 8 arguments`, err.Error())
}

func TestSignature_String(t *testing.T) {
	assert.Equal(t, "*fields any", surrogateKeySignature.String())
	assert.Contains(t, starSignature.String(), "relation table|column|identifier, alias column|identifier = ")
	assert.Contains(t, starSignature.String(), "quote_identifiers boolean = TRUE")
	assert.Contains(t, starSignature.String(), "exclude column|array|tuple = ()")
	assert.Contains(t, starSignature.String(), "prefix literal = ''")
}
