package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
)

// StarName is the registered name of the star expansion macro.
const StarName = "STAR"

var errNoResolver = errors.New("no schema resolver configured")

var starSignature = Signature{
	{Name: "relation", Kinds: KindTable | KindColumn | KindIdentifier},
	{Name: "alias", Kinds: KindIdentifier | KindColumn, Default: func() core.Expr { return core.Column("") }},
	{Name: "exclude", Kinds: KindArray | KindTuple | KindColumn, Default: func() core.Expr { return core.Tuple() }},
	{Name: "prefix", Kinds: KindLiteral, Default: func() core.Expr { return core.String("") }},
	{Name: "suffix", Kinds: KindLiteral, Default: func() core.Expr { return core.String("") }},
	{Name: "quote_identifiers", Kinds: KindBoolean, Default: func() core.Expr { return core.True() }},
	{Name: "except_", Kinds: KindArray | KindTuple | KindColumn, Default: func() core.Expr { return core.Tuple() }},
	{Name: "select_only", Kinds: KindBoolean, Default: func() core.Expr { return core.False() }},
}

// StarOptions are the inputs of a star expansion.
type StarOptions struct {
	Relation *core.TableName

	// Alias qualifies output columns. Empty means the relation name.
	Alias       string
	AliasQuoted bool

	// Exclude lists columns to omit: column references, identifiers or
	// string literals.
	Exclude []core.Expr

	// LegacyExclude is the deprecated spelling of Exclude (except_).
	// Both lists are merged; a non-empty LegacyExclude logs a warning.
	LegacyExclude []core.Expr

	Prefix string
	Suffix string

	QuoteIdentifiers bool
	SelectOnly       bool
}

// NewStarOptions returns options with the macro's defaults for relation.
func NewStarOptions(relation *core.TableName) StarOptions {
	return StarOptions{Relation: relation, QuoteIdentifiers: true}
}

// Expander expands relations into explicit projection lists.
type Expander struct {
	Resolver schema.Resolver
	Dialect  *dialect.Dialect
	Logger   *slog.Logger
}

// Star expands opts.Relation into one projection per retained column, in
// schema order. When every retained column has a known type each projection
// is CAST(t.col AS type) AS prefix||col||suffix; if any type is unknown no
// projection is cast. With SelectOnly the bare qualified columns are returned.
//
// Errors from the resolver are returned unchanged.
func (x *Expander) Star(ctx context.Context, opts StarOptions) ([]core.Expr, error) {
	d := x.Dialect
	if d == nil {
		d = dialect.Default()
	}
	logger := x.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Relation == nil || opts.Relation.Name == "" {
		return nil, &ConfigurationError{Macro: StarName, Arg: "relation", Expected: "a table reference", Got: "nothing"}
	}

	excluded, err := exclusionSet(d, "exclude", opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(opts.LegacyExclude) > 0 {
		logger.Warn("STAR argument except_ is deprecated, use exclude instead")
		legacy, err := exclusionSet(d, "except_", opts.LegacyExclude)
		if err != nil {
			return nil, err
		}
		for name := range legacy {
			excluded[name] = struct{}{}
		}
	}

	tableIdentifier := opts.Alias
	quotedTable := opts.AliasQuoted
	if tableIdentifier == "" {
		tableIdentifier = opts.Relation.Name
		quotedTable = opts.Relation.Quoted
	}
	tableIdentifier = d.NormalizeIdentifier(tableIdentifier, quotedTable)

	if x.Resolver == nil {
		return nil, &schema.ResolutionError{Relation: opts.Relation.QualifiedName(), Err: errNoResolver}
	}
	columns, err := x.Resolver.ColumnsFor(ctx, opts.Relation)
	if err != nil {
		return nil, err
	}

	columns = columns.Filter(func(name string) bool {
		_, raw := excluded[name]
		_, normalized := excluded[d.NormalizeName(name)]
		return !raw && !normalized
	})

	names := columns.Names()
	out := make([]core.Expr, 0, len(names))

	if opts.SelectOnly {
		for _, name := range names {
			out = append(out, core.QualifiedColumn(tableIdentifier, name, opts.QuoteIdentifiers))
		}
		return out, nil
	}

	cast := columns.AllKnown()
	if !cast {
		logger.Debug("not casting star projections, some column types are unknown",
			"relation", opts.Relation.QualifiedName())
	}

	for _, name := range names {
		var projection core.Expr = core.QualifiedColumn(tableIdentifier, name, opts.QuoteIdentifiers)
		if cast {
			typ, _ := columns.Get(name)
			projection = core.Cast(projection, typ)
		}
		out = append(out, core.As(projection, opts.Prefix+name+opts.Suffix, opts.QuoteIdentifiers))
	}
	return out, nil
}

// exclusionSet normalizes the excluded names.
func exclusionSet(d *dialect.Dialect, arg string, exprs []core.Expr) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(exprs))
	for _, e := range exprs {
		var (
			name   string
			quoted bool
		)
		switch n := e.(type) {
		case *core.ColumnRef:
			name, quoted = n.Column, n.Quoted
		case *core.Identifier:
			name, quoted = n.Name, n.Quoted
		case *core.Literal:
			if n.Type != core.LiteralString {
				return nil, excludeShapeError(arg, e)
			}
			name = n.Value
		default:
			return nil, excludeShapeError(arg, e)
		}
		set[d.NormalizeIdentifier(name, quoted)] = struct{}{}
	}
	return set, nil
}

func excludeShapeError(arg string, e core.Expr) error {
	return &ConfigurationError{
		Macro:    StarName,
		Arg:      arg,
		Expected: "column names",
		Got:      fmt.Sprintf("an element of kind %s", KindOf(e)),
	}
}

// starMacro adapts bound arguments to Expander.Star.
func starMacro(ctx context.Context, env *Env, args *Args) ([]core.Expr, error) {
	opts := StarOptions{
		Relation:         relationOf(args.Get("relation")),
		Exclude:          core.Elements(args.Get("exclude")),
		LegacyExclude:    core.Elements(args.Get("except_")),
		Prefix:           literalText(args.Get("prefix")),
		Suffix:           literalText(args.Get("suffix")),
		QuoteIdentifiers: args.Get("quote_identifiers").(*core.Literal).BoolValue(),
		SelectOnly:       args.Get("select_only").(*core.Literal).BoolValue(),
	}

	switch a := args.Get("alias").(type) {
	case *core.Identifier:
		opts.Alias, opts.AliasQuoted = a.Name, a.Quoted
	case *core.ColumnRef:
		if a.Table != "" {
			return nil, &ConfigurationError{Macro: StarName, Arg: "alias", Expected: "an unqualified name", Got: "a qualified column"}
		}
		opts.Alias, opts.AliasQuoted = a.Column, a.Quoted
	}

	x := &Expander{Resolver: env.Resolver, Dialect: env.Dialect, Logger: env.Logger}
	return x.Star(ctx, opts)
}

// relationOf converts a table-shaped argument to a TableName.
// A column reference a.b is read as schema a, table b.
func relationOf(e core.Expr) *core.TableName {
	switch n := e.(type) {
	case *core.TableName:
		return n
	case *core.ColumnRef:
		path := n.Column
		if n.Table != "" {
			path = n.Table + "." + n.Column
		}
		t := core.Table(path)
		t.Quoted = n.Quoted
		return t
	case *core.Identifier:
		return &core.TableName{Name: n.Name, Quoted: n.Quoted}
	}
	return nil
}

func literalText(e core.Expr) string {
	if lit, ok := e.(*core.Literal); ok {
		return lit.Value
	}
	return ""
}
