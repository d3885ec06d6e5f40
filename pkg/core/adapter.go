package core

// AdapterConfig holds configuration for connecting to a catalog database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string

	// Params holds adapter-specific settings, decoded by each adapter.
	Params map[string]any
}

// ColumnMetadata describes a column in a database table.
type ColumnMetadata struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// TableMetadata holds metadata about a database table.
// Columns are in ordinal position order.
type TableMetadata struct {
	Schema  string
	Name    string
	Columns []ColumnMetadata
}
