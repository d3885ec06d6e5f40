// Package adapter provides catalog adapters: database connections used to
// read column metadata for schema resolution.
//
// This package contains the public contract that all catalog adapters must
// implement. Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
)

type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.ColumnMetadata.
	Column = core.ColumnMetadata

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)

// Adapter defines the interface that all catalog adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// GetTableMetadata retrieves the ordered columns of a table.
	// An unknown table yields a *schema.ResolutionError wrapping
	// schema.ErrRelationNotFound.
	GetTableMetadata(ctx context.Context, table *core.TableName) (*Metadata, error)

	// Dialect returns the SQL dialect of the connected database. It decides
	// identifier normalization for lookups and the default schema.
	Dialect() *dialect.Dialect
}
