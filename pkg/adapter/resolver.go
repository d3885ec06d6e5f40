package adapter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
)

// Resolver resolves relations against a live catalog adapter.
// It implements schema.Resolver.
type Resolver struct {
	Adapter Adapter
	Logger  *slog.Logger
}

// NewResolver creates a resolver over a connected adapter.
func NewResolver(adp Adapter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{Adapter: adp, Logger: logger}
}

// ColumnsFor reads the table's columns in ordinal order. Declared types are
// kept as the catalog reports them; driver failures are returned as a
// *schema.ResolutionError wrapping the driver error.
func (r *Resolver) ColumnsFor(ctx context.Context, table *core.TableName) (*schema.ColumnTypeMap, error) {
	meta, err := r.Adapter.GetTableMetadata(ctx, table)
	if err != nil {
		var resErr *schema.ResolutionError
		if errors.As(err, &resErr) {
			return nil, err
		}
		return nil, &schema.ResolutionError{Relation: table.QualifiedName(), Err: err}
	}

	r.Logger.Debug("resolved relation",
		"relation", table.QualifiedName(),
		"columns", len(meta.Columns),
	)
	return schema.FromMetadata(meta.Columns), nil
}

var _ schema.Resolver = (*Resolver)(nil)
