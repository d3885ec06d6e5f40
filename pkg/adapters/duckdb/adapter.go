// Package duckdb provides a DuckDB catalog adapter for leapmacro.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/adapter"
	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return dialect.DuckDB
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

// applyParams loads extensions, applies settings and attaches databases.
func (a *Adapter) applyParams(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		if _, err := a.DB.ExecContext(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for _, key := range sortedKeys(a.params.Settings) {
		stmt := fmt.Sprintf("SET %s = '%s'", key, strings.ReplaceAll(a.params.Settings[key], "'", "''"))
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}

	for _, alias := range sortedKeys(a.params.Attach) {
		stmt := fmt.Sprintf("ATTACH '%s' AS %s (READ_ONLY)",
			strings.ReplaceAll(a.params.Attach[alias], "'", "''"),
			dialect.DuckDB.QuoteIdentifier(alias))
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to attach %s: %w", alias, err)
		}
	}
	return nil
}

// GetTableMetadata retrieves the ordered columns of a table.
// A three-part name is looked up in the attached catalog of that name.
func (a *Adapter) GetTableMetadata(ctx context.Context, table *core.TableName) (*adapter.Metadata, error) {
	if table.Catalog == "" {
		return a.GetTableMetadataCommon(ctx, table, dialect.DuckDB)
	}
	return a.getCatalogTableMetadata(ctx, table)
}

func (a *Adapter) getCatalogTableMetadata(ctx context.Context, table *core.TableName) (*adapter.Metadata, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schemaName, tableName := adapter.ParseQualifiedName(table, dialect.DuckDB)

	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE lower(table_catalog) = lower(?) AND lower(table_schema) = lower(?) AND lower(table_name) = lower(?)
		ORDER BY ordinal_position
	`

	rows, err := a.DB.QueryContext(ctx, query, table.Catalog, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		var col adapter.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, schema.NotFound(table.QualifiedName())
	}

	return &adapter.Metadata{
		Schema:  schemaName,
		Name:    tableName,
		Columns: columns,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
