package starmacro

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/macro"
	"go.starlark.net/starlark"
)

// Thread-local keys set for each macro call.
const (
	localContext = "leapmacro.context"
	localEnv     = "leapmacro.env"
)

// builtins returns the globals predeclared in every macro file.
func builtins() starlark.StringDict {
	return starlark.StringDict{
		"quote":   starlark.NewBuiltin("quote", quote),
		"columns": starlark.NewBuiltin("columns", columns),
	}
}

func envOf(thread *starlark.Thread, fn string) (*macro.Env, error) {
	env, ok := thread.Local(localEnv).(*macro.Env)
	if !ok {
		return nil, fmt.Errorf("%s: only available inside a macro call", fn)
	}
	return env, nil
}

// quote(name) quotes an identifier for the active dialect.
func quote(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	env, err := envOf(thread, b.Name())
	if err != nil {
		return nil, err
	}
	return starlark.String(env.Dialect.QuoteIdentifier(name)), nil
}

// columns(relation) returns the column names of a relation, in schema order.
func columns(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var relation string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &relation); err != nil {
		return nil, err
	}
	env, err := envOf(thread, b.Name())
	if err != nil {
		return nil, err
	}
	if env.Resolver == nil {
		return nil, fmt.Errorf("%s: no schema resolver configured", b.Name())
	}

	ctx, ok := thread.Local(localContext).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	cols, err := env.Resolver.ColumnsFor(ctx, core.Table(relation))
	if err != nil {
		return nil, err
	}

	names := cols.Names()
	values := make([]starlark.Value, len(names))
	for i, name := range names {
		values[i] = starlark.String(name)
	}
	return starlark.NewList(values), nil
}
