package adapter

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		expectErr bool
	}{
		{
			name:      "close with nil DB",
			setupDB:   false,
			expectErr: false,
		},
		{
			name:      "close with open DB",
			setupDB:   true,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			err := base.Close()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_IsConnected(t *testing.T) {
	base := &BaseSQLAdapter{}
	assert.False(t, base.IsConnected())

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	base.DB = db
	assert.True(t, base.IsConnected())
}

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		name       string
		table      *core.TableName
		d          *dialect.Dialect
		wantSchema string
		wantName   string
	}{
		{"default schema", core.Table("Orders"), dialect.Postgres, "public", "orders"},
		{"explicit schema", core.Table("Sales.Orders"), dialect.Postgres, "sales", "orders"},
		{"quoted kept", &core.TableName{Schema: "Sales", Name: "Orders", Quoted: true}, dialect.Postgres, "Sales", "Orders"},
		{"uppercase dialect", core.Table("orders"), dialect.Snowflake, "PUBLIC", "ORDERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, n := ParseQualifiedName(tt.table, tt.d)
			assert.Equal(t, tt.wantSchema, s)
			assert.Equal(t, tt.wantName, n)
		})
	}
}

func TestBaseSQLAdapter_GetTableMetadataCommon(t *testing.T) {
	columns := []string{"column_name", "data_type", "is_nullable", "ordinal_position"}

	tests := []struct {
		name      string
		d         *dialect.Dialect
		table     *core.TableName
		setupMock func(mock sqlmock.Sqlmock)
		want      *core.TableMetadata
		wantErr   error
		errMsg    string
	}{
		{
			name:  "postgres columns in ordinal order",
			d:     dialect.Postgres,
			table: core.Table("Orders"),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE table_schema = $1 AND table_name = $2")).
					WithArgs("public", "orders").
					WillReturnRows(sqlmock.NewRows(columns).
						AddRow("id", "integer", "NO", 1).
						AddRow("note", "text", "YES", 2))
			},
			want: &core.TableMetadata{
				Schema: "public",
				Name:   "orders",
				Columns: []core.ColumnMetadata{
					{Name: "id", Type: "integer", Nullable: false, Position: 1},
					{Name: "note", Type: "text", Nullable: true, Position: 2},
				},
			},
		},
		{
			name:  "case-insensitive dialect compares lowered names",
			d:     dialect.DuckDB,
			table: core.Table("Orders"),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("lower(table_schema) = lower(?) AND lower(table_name) = lower(?)")).
					WithArgs("main", "orders").
					WillReturnRows(sqlmock.NewRows(columns).AddRow("id", "INTEGER", "YES", 1))
			},
			want: &core.TableMetadata{
				Schema:  "main",
				Name:    "orders",
				Columns: []core.ColumnMetadata{{Name: "id", Type: "INTEGER", Nullable: true, Position: 1}},
			},
		},
		{
			name:  "unknown table",
			d:     dialect.Postgres,
			table: core.Table("missing"),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("information_schema.columns").
					WillReturnRows(sqlmock.NewRows(columns))
			},
			wantErr: schema.ErrRelationNotFound,
		},
		{
			name:  "query error",
			d:     dialect.Postgres,
			table: core.Table("orders"),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("information_schema.columns").WillReturnError(assert.AnError)
			},
			wantErr: assert.AnError,
			errMsg:  "failed to query column metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			base := &BaseSQLAdapter{DB: db}
			got, err := base.GetTableMetadataCommon(context.Background(), tt.table, tt.d)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_GetTableMetadataCommon_NotConnected(t *testing.T) {
	base := &BaseSQLAdapter{}
	_, err := base.GetTableMetadataCommon(context.Background(), core.Table("t"), dialect.DuckDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")
}
