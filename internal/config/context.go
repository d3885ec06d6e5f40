package config

import (
	"context"
	"log/slog"
)

type configKey struct{}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Dialect:   DefaultDialect,
		MacrosDir: DefaultMacrosDir,
		LogLevel:  DefaultLogLevel,
		Output:    DefaultOutput,
		Jobs:      DefaultJobs,
	}
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the configuration stored in ctx, or Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	return Default()
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
