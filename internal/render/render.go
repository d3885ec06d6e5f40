package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/format"
	"github.com/leapstack-labs/leapmacro/pkg/macro"
)

// Renderer expands macro calls in SQL text.
type Renderer struct {
	evaluator *macro.Evaluator
	dialect   *dialect.Dialect
	logger    *slog.Logger
}

// New creates a renderer. Output is printed in the evaluator's dialect.
func New(e *macro.Evaluator, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := e.Dialect
	if d == nil {
		d = dialect.Default()
	}
	return &Renderer{evaluator: e, dialect: d, logger: logger}
}

// Render replaces every macro call in sql with its expansion. Text without
// macro calls is returned unchanged. Any error aborts the whole statement.
func (r *Renderer) Render(ctx context.Context, sql string) (string, error) {
	calls, err := FindCalls(sql, r.dialect)
	if err != nil {
		return "", err
	}
	if len(calls) == 0 {
		return sql, nil
	}

	var b strings.Builder
	b.Grow(len(sql))
	last := 0
	for _, call := range calls {
		expanded, err := r.expand(ctx, call)
		if err != nil {
			return "", err
		}
		b.WriteString(sql[last:call.Start])
		b.WriteString(expanded)
		last = call.End
	}
	b.WriteString(sql[last:])

	r.logger.Debug("rendered sql", "calls", len(calls))
	return b.String(), nil
}

func (r *Renderer) expand(ctx context.Context, call Call) (string, error) {
	out, err := r.evaluate(ctx, call)
	if err != nil {
		return "", err
	}
	return format.List(out, r.dialect), nil
}

// evaluate parses a call's arguments, expanding nested calls first, and runs
// the macro.
func (r *Renderer) evaluate(ctx context.Context, call Call) ([]core.Expr, error) {
	parser := &ArgParser{
		Dialect: r.dialect,
		Named:   r.namedFor(call.Name),
		Expand: func(nested Call) ([]core.Expr, error) {
			return r.evaluate(ctx, nested)
		},
	}
	positional, named, err := parser.Parse(call.Args, call.Start+len(call.Name)+2)
	if err != nil {
		return nil, err
	}

	out, err := r.evaluator.Call(ctx, call.Name, positional, named)
	if err != nil {
		return nil, fmt.Errorf("@%s at offset %d: %w", call.Name, call.Start, err)
	}
	return out, nil
}

// namedFor reports which names "name = value" may bind for the macro.
// Unknown macros accept any name; the evaluator rejects the call anyway.
func (r *Renderer) namedFor(name string) func(string) bool {
	if r.evaluator.Registry == nil {
		return nil
	}
	m, ok := r.evaluator.Registry.Lookup(name)
	if !ok {
		return nil
	}
	return m.Signature.Accepts
}
