// Package config loads leapmacro configuration.
//
// Values are layered with koanf: built-in defaults, then the config file
// (leapmacro.yaml or leapmacro.yml), then LEAPMACRO_* environment variables,
// then command-line flags that were explicitly set.
package config

import (
	"github.com/leapstack-labs/leapmacro/pkg/core"
)

// TargetConfig holds the catalog database used to resolve relation columns.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// AdapterConfig converts the target to the adapter connection config.
func (t *TargetConfig) AdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Config holds all leapmacro configuration options.
type Config struct {
	// Dialect selects identifier rules and type spelling for rendered SQL.
	Dialect string `koanf:"dialect"`

	// SchemaFile is a YAML file mapping relations to their columns.
	SchemaFile string `koanf:"schema_file"`

	// MacrosDir holds user-defined Starlark macros.
	MacrosDir string `koanf:"macros_dir"`

	// Target is an optional catalog database consulted after SchemaFile.
	Target *TargetConfig `koanf:"target"`

	Verbose  bool   `koanf:"verbose"`
	LogLevel string `koanf:"log_level"`
	Output   string `koanf:"output"`
	Jobs     int    `koanf:"jobs"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDialect   = "duckdb"
	DefaultMacrosDir = "macros"
	DefaultLogLevel  = "info"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultJobs      = 4
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "leapmacro.yaml"
	ConfigFileNameAlt = "leapmacro.yml"
)

// EnvPrefix prefixes environment variables read as configuration.
const EnvPrefix = "LEAPMACRO_"
