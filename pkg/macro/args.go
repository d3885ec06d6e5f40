package macro

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/format"
)

// Kind classifies an argument node. Kinds form a closed set and a Param
// accepts any combination of them.
type Kind uint16

// Argument kinds.
const (
	KindTable Kind = 1 << iota
	KindColumn
	KindIdentifier
	KindArray
	KindTuple
	KindLiteral // string or number
	KindBoolean
	KindNull
	KindExpression // function calls, casts and other computed nodes

	KindAny = KindTable | KindColumn | KindIdentifier | KindArray | KindTuple |
		KindLiteral | KindBoolean | KindNull | KindExpression
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindTable, "table"},
	{KindColumn, "column"},
	{KindIdentifier, "identifier"},
	{KindArray, "array"},
	{KindTuple, "tuple"},
	{KindLiteral, "literal"},
	{KindBoolean, "boolean"},
	{KindNull, "null"},
	{KindExpression, "expression"},
}

// String returns the kinds joined with "|", or "any".
func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			parts = append(parts, kn.name)
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, "|")
}

// KindOf returns the kind of a node.
func KindOf(e core.Expr) Kind {
	switch n := e.(type) {
	case *core.TableName:
		return KindTable
	case *core.ColumnRef:
		return KindColumn
	case *core.Identifier:
		return KindIdentifier
	case *core.ArrayExpr:
		return KindArray
	case *core.TupleExpr:
		return KindTuple
	case *core.Literal:
		switch n.Type {
		case core.LiteralBool:
			return KindBoolean
		case core.LiteralNull:
			return KindNull
		default:
			return KindLiteral
		}
	default:
		return KindExpression
	}
}

// Param declares one macro parameter.
type Param struct {
	Name  string
	Kinds Kind

	// Default builds the value used when the argument is omitted. It is
	// called once per invocation. A nil Default makes the parameter required.
	Default func() core.Expr

	// Variadic collects all remaining positional arguments. Only the last
	// parameter may be variadic.
	Variadic bool
}

// Signature is the ordered parameter list of a macro.
type Signature []Param

// String renders the signature, e.g. "relation table|column, prefix literal = ''".
func (s Signature) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		part := p.Name + " " + p.Kinds.String()
		if p.Variadic {
			part = "*" + part
		}
		if p.Default != nil {
			part += " = " + renderDefault(p.Default())
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// Args holds bound arguments.
type Args struct {
	values   map[string]core.Expr
	supplied map[string]bool
	rest     []core.Expr
}

// Get returns the argument bound to name (explicit or default).
func (a *Args) Get(name string) core.Expr {
	return a.values[name]
}

// Supplied reports whether the caller passed name rather than relying on
// its default.
func (a *Args) Supplied(name string) bool {
	return a.supplied[name]
}

// Rest returns the arguments collected by the variadic parameter.
func (a *Args) Rest() []core.Expr {
	return a.rest
}

// Bind matches positional and named arguments to the signature, fills in
// defaults, and checks every argument's kind. Named arguments are matched
// case-insensitively. Any mismatch is a *ConfigurationError.
func Bind(macro string, sig Signature, positional []core.Expr, named map[string]core.Expr) (*Args, error) {
	args := &Args{
		values:   make(map[string]core.Expr, len(sig)),
		supplied: make(map[string]bool, len(sig)),
	}

	i := 0
	for _, p := range sig {
		if i >= len(positional) {
			break
		}
		if p.Variadic {
			args.rest = append(args.rest, positional[i:]...)
			i = len(positional)
			break
		}
		args.values[p.Name] = positional[i]
		args.supplied[p.Name] = true
		i++
	}
	if i < len(positional) {
		return nil, &ConfigurationError{
			Macro:    macro,
			Expected: fmt.Sprintf("at most %d arguments", len(sig)),
			Got:      fmt.Sprintf("%d", len(positional)),
		}
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := sig.lookup(name)
		if !ok || p.Variadic {
			return nil, &ConfigurationError{
				Macro:    macro,
				Arg:      name,
				Expected: sig.namedHint(),
				Got:      "unknown argument",
			}
		}
		if _, dup := args.values[p.Name]; dup {
			return nil, &ConfigurationError{
				Macro:    macro,
				Arg:      p.Name,
				Expected: "a single value",
				Got:      "multiple values",
			}
		}
		args.values[p.Name] = named[name]
		args.supplied[p.Name] = true
	}

	for _, p := range sig {
		if p.Variadic {
			for _, e := range args.rest {
				if err := check(macro, p, e); err != nil {
					return nil, err
				}
			}
			continue
		}

		e, ok := args.values[p.Name]
		if !ok {
			if p.Default == nil {
				return nil, &ConfigurationError{Macro: macro, Arg: p.Name, Expected: p.Kinds.String(), Got: "nothing"}
			}
			args.values[p.Name] = p.Default()
			continue
		}
		if err := check(macro, p, e); err != nil {
			return nil, err
		}
	}

	return args, nil
}

func check(macro string, p Param, e core.Expr) error {
	if e == nil {
		return &ConfigurationError{Macro: macro, Arg: p.Name, Expected: p.Kinds.String(), Got: "nothing"}
	}
	if k := KindOf(e); p.Kinds&k == 0 {
		return &ConfigurationError{Macro: macro, Arg: p.Name, Expected: p.Kinds.String(), Got: k.String()}
	}
	return nil
}

func (s Signature) lookup(name string) (Param, bool) {
	for _, p := range s {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Param{}, false
}

// Accepts reports whether name can be passed as a named argument.
func (s Signature) Accepts(name string) bool {
	p, ok := s.lookup(name)
	return ok && !p.Variadic
}

func (s Signature) namedHint() string {
	names := make([]string, 0, len(s))
	for _, p := range s {
		if !p.Variadic {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return "no named arguments"
	}
	return "one of " + strings.Join(names, ", ")
}

func renderDefault(e core.Expr) string {
	return format.Expr(e, dialect.ANSI)
}
