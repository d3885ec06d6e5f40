package dialect

import "github.com/leapstack-labs/leapmacro/pkg/core"

// commonReservedWords are keywords reserved by every built-in dialect.
var commonReservedWords = []string{
	"ALL", "AND", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST", "CHECK", "COLUMN",
	"CONSTRAINT", "CREATE", "CROSS", "DEFAULT", "DELETE", "DESC", "DISTINCT", "DROP",
	"ELSE", "END", "EXCEPT", "EXISTS", "FALSE", "FETCH", "FOR", "FOREIGN", "FROM",
	"FULL", "GROUP", "HAVING", "IN", "INNER", "INSERT", "INTERSECT", "INTO", "IS",
	"JOIN", "LEFT", "LIKE", "LIMIT", "NOT", "NULL", "OFFSET", "ON", "OR", "ORDER",
	"OUTER", "PRIMARY", "REFERENCES", "RIGHT", "SELECT", "SET", "TABLE", "THEN",
	"TO", "TRUE", "UNION", "UNIQUE", "UPDATE", "USING", "VALUES", "WHEN", "WHERE",
	"WITH",
}

// textTypes maps the generic STRING type to TEXT, as most engines spell it.
var textTypes = map[string]string{
	"STRING": "TEXT",
}

// ANSI is the generic SQL dialect.
var ANSI = New(&core.DialectConfig{
	Name: "ansi",
	Identifiers: core.IdentifierConfig{
		Quote: `"`, QuoteEnd: `"`, Escape: `""`,
		Normalization: core.NormLowercase,
	},
	TypeAliases:   textTypes,
	ReservedWords: commonReservedWords,
}).Build()

// DuckDB is the DuckDB dialect.
var DuckDB = New(&core.DialectConfig{
	Name:          "duckdb",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote: `"`, QuoteEnd: `"`, Escape: `""`,
		Normalization: core.NormCaseInsensitive,
	},
	Strings:       core.StringConfig{DollarQuoted: true, EscapePrefix: true},
	TypeAliases:   textTypes,
	ReservedWords: append([]string{"QUALIFY", "PIVOT", "UNPIVOT"}, commonReservedWords...),
}).Build()

// Postgres is the PostgreSQL dialect.
var Postgres = New(&core.DialectConfig{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
	Identifiers: core.IdentifierConfig{
		Quote: `"`, QuoteEnd: `"`, Escape: `""`,
		Normalization: core.NormLowercase, // Postgres normalizes unquoted to lowercase
	},
	TypeAliases: map[string]string{
		"STRING":   "TEXT",
		"DATETIME": "TIMESTAMP",
		"DOUBLE":   "DOUBLE PRECISION",
	},
	ReservedWords: append([]string{"RETURNING", "LATERAL"}, commonReservedWords...),
	Strings:       core.StringConfig{DollarQuoted: true, EscapePrefix: true},
}).Build()

// SQLite is the SQLite dialect.
var SQLite = New(&core.DialectConfig{
	Name:          "sqlite",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote: `"`, QuoteEnd: `"`, Escape: `""`,
		Normalization: core.NormCaseInsensitive,
	},
	TypeAliases:   textTypes,
	ReservedWords: commonReservedWords,
}).Build()

// Snowflake is the Snowflake dialect. Unquoted identifiers resolve upper-case.
var Snowflake = New(&core.DialectConfig{
	Name:          "snowflake",
	DefaultSchema: "PUBLIC",
	Placeholder:   core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote: `"`, QuoteEnd: `"`, Escape: `""`,
		Normalization: core.NormUppercase,
	},
	TypeAliases: map[string]string{
		"STRING": "VARCHAR",
		"TEXT":   "VARCHAR",
	},
	ReservedWords: append([]string{"QUALIFY"}, commonReservedWords...),
}).Build()

// MySQL is the MySQL dialect. CAST only accepts a narrow set of targets,
// so common type names are mapped onto them.
var MySQL = New(&core.DialectConfig{
	Name:        "mysql",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote: "`", QuoteEnd: "`", Escape: "``",
		Normalization: core.NormCaseSensitive,
	},
	TypeAliases: map[string]string{
		"STRING":  "CHAR",
		"TEXT":    "CHAR",
		"VARCHAR": "CHAR",
		"INT":     "SIGNED",
		"INTEGER": "SIGNED",
		"BIGINT":  "SIGNED",
	},
	ReservedWords: commonReservedWords,
}).Build()

func init() {
	for _, d := range []*Dialect{ANSI, DuckDB, Postgres, SQLite, Snowflake, MySQL} {
		Register(d)
	}
	SetDefault(DuckDB)
}
