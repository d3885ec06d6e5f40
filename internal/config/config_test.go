package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register adapters so target validation can see them
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapmacro/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.String("schema", "", "")
	flags.String("macros-dir", "", "")
	flags.String("log-level", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	flags.Int("jobs", 0, "")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultJobs, cfg.Jobs)
	assert.Equal(t, DefaultMacrosDir, cfg.MacrosDir)
	assert.Empty(t, cfg.SchemaFile)
	assert.Empty(t, cfg.ConfigFile)
	assert.Nil(t, cfg.Target)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
dialect: postgres
schema_file: schema.yaml
output: json
jobs: 2
target:
  type: DuckDB
  database: catalog.duckdb
  params:
    extensions: [json]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, filepath.Join(dir, "schema.yaml"), cfg.SchemaFile)
	assert.Equal(t, filepath.Join(dir, "macros"), cfg.MacrosDir)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 2, cfg.Jobs)
	assert.Equal(t, path, cfg.ConfigFile)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, filepath.Join(dir, "catalog.duckdb"), cfg.Target.Database)
	assert.Equal(t, []any{"json"}, cfg.Target.Params["extensions"])
}

func TestLoad_FindsFileUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "dialect: snowflake\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", cfg.Dialect)
	assert.Equal(t, filepath.Join(root, ConfigFileName), cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dialect: postgres\noutput: text\njobs: 2\n")

	t.Setenv("LEAPMACRO_DIALECT", "sqlite")
	t.Setenv("LEAPMACRO_JOBS", "3")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--dialect", "mysql", "--schema", "s.yaml"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Dialect, "flag beats env and file")
	assert.Equal(t, 3, cfg.Jobs, "env beats file")
	assert.Equal(t, "text", cfg.Output, "file beats default")
	assert.Equal(t, "s.yaml", cfg.SchemaFile, "flag paths stay relative to the working directory")
}

func TestLoad_EnvNestedKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEAPMACRO_TARGET__TYPE", "postgres")
	t.Setenv("LEAPMACRO_TARGET__HOST", "db.internal")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, "db.internal", cfg.Target.Host)
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "public", cfg.Target.Schema)
}

func TestLoad_ExpandsTargetEnvVars(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, t.TempDir(), `
target:
  type: postgres
  host: localhost
  database: analytics
  password: ${TEST_PG_PASSWORD}
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "analytics", cfg.Target.Database, "postgres database names are not paths")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown dialect", "dialect: oracle\n", "invalid dialect"},
		{"unknown adapter", "target:\n  type: redshift\n", "unknown adapter type"},
		{"bad output", "output: html\n", "invalid output format"},
		{"bad jobs", "jobs: 0\n", "jobs must be at least 1"},
		{"bad log level", "log_level: loud\n", "invalid log_level"},
		{"malformed yaml", "dialect: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		cfg  Config
		want slog.Level
	}{
		{Config{LogLevel: "info"}, slog.LevelInfo},
		{Config{LogLevel: "WARN"}, slog.LevelWarn},
		{Config{LogLevel: "error", Verbose: true}, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := tt.cfg.Level()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"variable in path", "/path/${TEST_VAR_ONE}/file", "/path/value_one/file"},
		{"unset variable stays as-is", "${UNSET_VARIABLE_X}", "${UNSET_VARIABLE_X}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestTargetConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    TargetConfig
		errSubstr string
	}{
		{"empty type", TargetConfig{}, "target type is required"},
		{"duckdb", TargetConfig{Type: "duckdb"}, ""},
		{"uppercase", TargetConfig{Type: "SQLite"}, ""},
		{"postgres", TargetConfig{Type: "postgres"}, ""},
		{"unknown", TargetConfig{Type: "bigquery"}, "unknown adapter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTargetConfig_AdapterConfig(t *testing.T) {
	target := &TargetConfig{Type: "sqlite", Database: "/tmp/c.db", User: "u", Schema: "main"}
	cfg := target.AdapterConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "/tmp/c.db", cfg.Path)
	assert.Equal(t, "/tmp/c.db", cfg.Database)
	assert.Equal(t, "u", cfg.Username)
	assert.Equal(t, "main", cfg.Schema)
}

func TestDefaultSchemaForType(t *testing.T) {
	assert.Equal(t, "main", DefaultSchemaForType("duckdb"))
	assert.Equal(t, "public", DefaultSchemaForType("postgres"))
	assert.Equal(t, "main", DefaultSchemaForType("unknown"))
}

func TestContext(t *testing.T) {
	ctx := t.Context()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Dialect: "postgres"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))

	logger := slog.New(slog.DiscardHandler)
	assert.Same(t, logger, GetLogger(WithLogger(ctx, logger)))
}
