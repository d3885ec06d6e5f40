package macro

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
)

// Evaluator calls macros by name.
type Evaluator struct {
	Dialect  *dialect.Dialect
	Resolver schema.Resolver
	Logger   *slog.Logger
	Registry *Registry
}

// NewEvaluator creates an evaluator over the default registry.
// A nil dialect uses dialect.Default(); a nil logger discards output.
func NewEvaluator(d *dialect.Dialect, resolver schema.Resolver, logger *slog.Logger) *Evaluator {
	if d == nil {
		d = dialect.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{
		Dialect:  d,
		Resolver: resolver,
		Logger:   logger,
		Registry: Default(),
	}
}

// Call binds the arguments to the named macro and runs it.
// An unknown name yields *UnknownMacroError; bad arguments yield
// *ConfigurationError before the macro runs.
func (e *Evaluator) Call(ctx context.Context, name string, positional []core.Expr, named map[string]core.Expr) ([]core.Expr, error) {
	registry := e.Registry
	if registry == nil {
		registry = Default()
	}

	m, ok := registry.Lookup(name)
	if !ok {
		return nil, &UnknownMacroError{Name: name, Available: registry.Names()}
	}

	args, err := Bind(m.Name, m.Signature, positional, named)
	if err != nil {
		return nil, err
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	env := &Env{
		Dialect:  e.Dialect,
		Resolver: e.Resolver,
		Logger:   logger.With("macro", m.Name),
	}

	logger.Debug("expanding macro", "macro", m.Name, "args", len(positional)+len(named))
	return m.Fn(ctx, env, args)
}
