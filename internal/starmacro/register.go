package starmacro

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/format"
	"github.com/leapstack-labs/leapmacro/pkg/macro"
	"go.starlark.net/starlark"
)

// MacroName returns the registered name of fn in namespace.
func MacroName(namespace, fn string) string {
	return strings.ToUpper(namespace + "__" + fn)
}

// Register adds every function of modules to registry.
func Register(registry *macro.Registry, modules []*Module) error {
	for _, module := range modules {
		for _, fn := range module.Functions {
			m := &macro.Macro{
				Name:      MacroName(module.Namespace, fn.Name()),
				Doc:       firstLine(fn.Doc()),
				Signature: signatureOf(fn),
				Fn:        call(fn),
			}
			if err := registry.Register(m); err != nil {
				return &LoadError{File: module.Path, Message: err.Error()}
			}
		}
	}
	return nil
}

// LoadDir loads dir and registers its macros. It returns the number of
// macros added.
func LoadDir(registry *macro.Registry, dir string) (int, error) {
	modules, err := NewLoader(dir).Load()
	if err != nil {
		return 0, err
	}
	if err := Register(registry, modules); err != nil {
		return 0, err
	}
	n := 0
	for _, m := range modules {
		n += len(m.Functions)
	}
	return n, nil
}

// signatureOf derives a macro signature from a Starlark function. Every
// parameter accepts any kind; optional parameters keep their Starlark
// default, shown in usage text only. String defaults read as SQL strings.
func signatureOf(fn *starlark.Function) macro.Signature {
	regular := fn.NumParams()
	if fn.HasVarargs() {
		regular--
	}

	sig := make(macro.Signature, 0, fn.NumParams())
	for i := 0; i < regular; i++ {
		name, _ := fn.Param(i)
		p := macro.Param{Name: name, Kinds: macro.KindAny}
		if def := fn.ParamDefault(i); def != nil {
			p.Default = defaultExpr(def)
		}
		sig = append(sig, p)
	}
	if fn.HasVarargs() {
		name, _ := fn.Param(regular)
		sig = append(sig, macro.Param{Name: name, Kinds: macro.KindAny, Variadic: true})
	}
	return sig
}

func defaultExpr(def starlark.Value) func() core.Expr {
	if s, ok := starlark.AsString(def); ok {
		return func() core.Expr { return core.String(s) }
	}
	text := def.String()
	return func() core.Expr { return core.Raw(text) }
}

// call adapts a Starlark function to a macro body. Arguments are passed as
// SQL text. Omitted optional arguments are left to the function's own
// defaults.
func call(fn *starlark.Function) macro.Func {
	sig := signatureOf(fn)

	return func(ctx context.Context, env *macro.Env, args *macro.Args) ([]core.Expr, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sql := func(e core.Expr) starlark.Value {
			return starlark.String(format.Expr(e, env.Dialect))
		}

		var (
			positional starlark.Tuple
			named      []starlark.Tuple
		)
		rest := args.Rest()
		for _, p := range sig {
			switch {
			case p.Variadic:
				for _, e := range rest {
					positional = append(positional, sql(e))
				}
			case len(rest) > 0:
				// Bind fills every regular parameter before rest.
				positional = append(positional, sql(args.Get(p.Name)))
			case args.Supplied(p.Name):
				named = append(named, starlark.Tuple{starlark.String(p.Name), sql(args.Get(p.Name))})
			}
		}

		thread := &starlark.Thread{
			Name: "macro:" + fn.Name(),
			Print: func(_ *starlark.Thread, msg string) {
				env.Logger.Info(msg)
			},
		}
		thread.SetLocal(localContext, ctx)
		thread.SetLocal(localEnv, env)

		result, err := starlark.Call(thread, fn, positional, named)
		if err != nil {
			return nil, fmt.Errorf("macro %s failed: %w", fn.Name(), err)
		}
		return toExprs(fn.Name(), result)
	}
}

// toExprs converts a macro result: a string, or a list or tuple of strings.
func toExprs(name string, v starlark.Value) ([]core.Expr, error) {
	if s, ok := starlark.AsString(v); ok {
		return []core.Expr{core.Raw(s)}, nil
	}

	iterable, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("macro %s must return a string or a list of strings, got %s", name, v.Type())
	}
	out := make([]core.Expr, 0, iterable.Len())
	for i := 0; i < iterable.Len(); i++ {
		s, ok := starlark.AsString(iterable.Index(i))
		if !ok {
			return nil, fmt.Errorf("macro %s returned a %s at index %d, want string", name, iterable.Index(i).Type(), i)
		}
		out = append(out, core.Raw(s))
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
