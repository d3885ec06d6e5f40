package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data with no behavior.
//
// The runtime behavior (normalization, quoting, type spelling) lives in
// pkg/dialect.Dialect, which is built from this config.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// Strings lists the string literal forms beyond standard '...'
	Strings StringConfig

	// DefaultSchema is the default schema name ("main" for DuckDB, "public" for Postgres)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// TypeAliases maps type names as written in schemas (upper-case) to the
	// spelling this dialect renders in CAST targets, e.g. STRING -> TEXT.
	TypeAliases map[string]string

	// ReservedWords need quoting when used as identifiers
	ReservedWords []string
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL, ClickHouse).
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (BigQuery, Hive, DuckDB).
	NormCaseInsensitive
)

// String returns the string representation of NormalizationStrategy.
func (n NormalizationStrategy) String() string {
	switch n {
	case NormLowercase:
		return "lowercase"
	case NormUppercase:
		return "uppercase"
	case NormCaseSensitive:
		return "case-sensitive"
	case NormCaseInsensitive:
		return "case-insensitive"
	default:
		return "unknown"
	}
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// StringConfig defines the extra string literal syntaxes a dialect accepts.
type StringConfig struct {
	DollarQuoted bool // $$...$$ and $tag$...$tag$ (Postgres, DuckDB)
	EscapePrefix bool // E'...' with backslash escapes
}
