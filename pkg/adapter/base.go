package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close and metadata lookups.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName returns the schema and name to look a table up by.
// Unquoted parts are normalized by the dialect; the dialect's default
// schema is used when none is given.
func ParseQualifiedName(table *core.TableName, d *dialect.Dialect) (schemaName, name string) {
	schemaName = table.Schema
	if schemaName == "" {
		schemaName = d.DefaultSchema
	} else {
		schemaName = d.NormalizeIdentifier(schemaName, table.Quoted)
	}
	return schemaName, d.NormalizeIdentifier(table.Name, table.Quoted)
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata.
// Uses information_schema.columns with dialect-appropriate placeholders.
// This can be called by concrete adapters to avoid code duplication.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table *core.TableName, d *dialect.Dialect) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schemaName, tableName := ParseQualifiedName(table, d)

	// Case-insensitive engines keep the spelling a table was created with.
	filter := "table_schema = %s AND table_name = %s"
	if d.Identifiers.Normalization == dialect.NormCaseInsensitive && !table.Quoted {
		filter = "lower(table_schema) = lower(%s) AND lower(table_name) = lower(%s)"
	}

	//nolint:gosec // Placeholders are safe - they come from dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE `+filter+`
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	if b.Logger != nil {
		b.Logger.Debug("querying column metadata", "schema", schemaName, "table", tableName)
	}

	rows, err := b.DB.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnMetadata
	for rows.Next() {
		var col core.ColumnMetadata
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

	return &core.TableMetadata{
		Schema:  schemaName,
		Name:    tableName,
		Columns: columns,
	}, nil
}
