package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmacro/internal/config"
	"github.com/leapstack-labs/leapmacro/internal/render"
	"github.com/leapstack-labs/leapmacro/internal/starmacro"
	"github.com/leapstack-labs/leapmacro/pkg/adapter"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/macro"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
	"github.com/spf13/cobra"

	// Register catalog adapters
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Dialect   *dialect.Dialect
	Resolver  schema.Resolver
	Evaluator *macro.Evaluator
	Renderer  *render.Renderer
}

// NewCommandContext builds the evaluator from the loaded configuration:
// schema file first, then the target catalog, plus user macros.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, nil, err
	}

	var (
		resolvers []schema.Resolver
		cleanup   = func() {}
	)

	if cfg.SchemaFile != "" {
		fileResolver, err := schema.LoadFile(cfg.SchemaFile, d)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded schema file", "path", cfg.SchemaFile, "relations", len(fileResolver.Relations()))
		resolvers = append(resolvers, fileResolver)
	}

	if cfg.Target != nil {
		adp, err := adapter.Open(ctx, cfg.Target.AdapterConfig(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to target: %w", err)
		}
		cleanup = func() {
			if err := adp.Close(); err != nil {
				logger.Warn("failed to close adapter", "error", err)
			}
		}
		resolvers = append(resolvers, adapter.NewResolver(adp, logger))
	}

	var resolver schema.Resolver
	if len(resolvers) > 0 {
		resolver = schema.Chain(resolvers...)
	}

	evaluator := macro.NewEvaluator(d, resolver, logger)
	n, err := starmacro.LoadDir(evaluator.Registry, cfg.MacrosDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if n > 0 {
		logger.Debug("loaded user macros", "dir", cfg.MacrosDir, "count", n)
	}

	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Dialect:   d,
		Resolver:  resolver,
		Evaluator: evaluator,
		Renderer:  render.New(evaluator, logger),
	}, cleanup, nil
}
