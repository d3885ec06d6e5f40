package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmacro/internal/testutil"
	"github.com/leapstack-labs/leapmacro/pkg/adapter"
	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, cfg core.AdapterConfig) *Adapter {
	t.Helper()
	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setupPath(t)
			adp := connect(t, core.AdapterConfig{Path: dbPath})
			assert.True(t, adp.IsConnected())

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ConnectInvalidParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Params: map[string]any{"bogus": true},
	})
	require.Error(t, err)
	assert.False(t, adp.IsConnected())
}

func TestAdapter_Settings(t *testing.T) {
	adp := connect(t, core.AdapterConfig{
		Params: map[string]any{"settings": map[string]any{"threads": 2}},
	})

	var threads int
	require.NoError(t, adp.DB.QueryRowContext(context.Background(), "SELECT current_setting('threads')").Scan(&threads))
	assert.Equal(t, 2, threads)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{})

	_, err := adp.DB.ExecContext(ctx, `CREATE TABLE Orders (id INTEGER, customer VARCHAR, amount DOUBLE)`)
	require.NoError(t, err)

	for _, name := range []string{"orders", "main.orders", "ORDERS"} {
		t.Run(name, func(t *testing.T) {
			meta, err := adp.GetTableMetadata(ctx, core.Table(name))
			require.NoError(t, err)

			names := make([]string, 0, len(meta.Columns))
			for _, c := range meta.Columns {
				names = append(names, c.Name)
			}
			assert.Equal(t, []string{"id", "customer", "amount"}, names)
			assert.Equal(t, "INTEGER", meta.Columns[0].Type)
			assert.Equal(t, "VARCHAR", meta.Columns[1].Type)
		})
	}

	_, err = adp.GetTableMetadata(ctx, core.Table("nope"))
	require.ErrorIs(t, err, schema.ErrRelationNotFound)
}

func TestAdapter_AttachedCatalog(t *testing.T) {
	ctx := context.Background()
	lakePath := filepath.Join(t.TempDir(), "lake.duckdb")

	seed := connect(t, core.AdapterConfig{Path: lakePath})
	_, err := seed.DB.ExecContext(ctx, `CREATE TABLE events (ts TIMESTAMP, kind VARCHAR)`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	adp := connect(t, core.AdapterConfig{
		Params: map[string]any{"attach": map[string]any{"lake": lakePath}},
	})

	meta, err := adp.GetTableMetadata(ctx, core.Table("lake.main.events"))
	require.NoError(t, err)
	require.Len(t, meta.Columns, 2)
	assert.Equal(t, "ts", meta.Columns[0].Name)

	_, err = adp.GetTableMetadata(ctx, core.Table("lake.main.missing"))
	require.ErrorIs(t, err, schema.ErrRelationNotFound)
}

func TestAdapter_Resolver(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{})

	_, err := adp.DB.ExecContext(ctx, `CREATE TABLE foo (a VARCHAR, b VARCHAR, c VARCHAR, d INTEGER)`)
	require.NoError(t, err)

	r := adapter.NewResolver(adp, testutil.NewTestLogger(t))
	cols, err := r.ColumnsFor(ctx, core.Table("foo"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, cols.Names())
	assert.True(t, cols.AllKnown())
}

func TestAdapter_NotConnected(t *testing.T) {
	adp := New(nil)
	_, err := adp.GetTableMetadata(context.Background(), core.Table("foo"))
	require.Error(t, err)
	_, err = adp.GetTableMetadata(context.Background(), core.Table("a.b.foo"))
	require.Error(t, err)
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))
	adp, err := adapter.NewAdapter(core.AdapterConfig{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", adp.Dialect().Name)
}
