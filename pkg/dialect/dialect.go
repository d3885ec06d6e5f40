// Package dialect provides SQL dialect configuration: identifier normalization,
// identifier quoting and data type spelling.
//
// This package contains the public contract for dialect definitions used by the
// macro evaluator, the formatter and the catalog adapters. Built-in dialects are
// registered in builtin.go.
package dialect

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Re-exported normalization strategies so callers building dialects do not
// need to import pkg/core.
const (
	NormLowercase       = core.NormLowercase
	NormUppercase       = core.NormUppercase
	NormCaseSensitive   = core.NormCaseSensitive
	NormCaseInsensitive = core.NormCaseInsensitive
)

// NormalizationStrategy is an alias for core.NormalizationStrategy.
type NormalizationStrategy = core.NormalizationStrategy

// Dialect represents a SQL dialect configuration.
// A Dialect is immutable after Build and safe for concurrent use.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig
	Strings     core.StringConfig

	// Database-specific settings
	DefaultSchema string                // Default schema name ("main" for DuckDB, "public" for Postgres)
	Placeholder   core.PlaceholderStyle // How to format query parameters

	typeAliases   map[string]string   // upper-case source type -> rendered type
	reservedWords map[string]struct{} // All keywords that need quoting as identifiers
}

// Config returns the pure data configuration for this dialect.
func (d *Dialect) Config() *core.DialectConfig {
	aliases := make(map[string]string, len(d.typeAliases))
	for k, v := range d.typeAliases {
		aliases[k] = v
	}

	reserved := make([]string, 0, len(d.reservedWords))
	for w := range d.reservedWords {
		reserved = append(reserved, w)
	}

	return &core.DialectConfig{
		Name:          d.Name,
		Identifiers:   d.Identifiers,
		Strings:       d.Strings,
		DefaultSchema: d.DefaultSchema,
		Placeholder:   d.Placeholder,
		TypeAliases:   aliases,
		ReservedWords: reserved,
	}
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// NormalizeName normalizes an unquoted identifier according to dialect rules.
// Case folding is Unicode aware.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return cases.Upper(language.Und).String(name)
	case core.NormLowercase, core.NormCaseInsensitive:
		return cases.Lower(language.Und).String(name)
	default: // NormCaseSensitive
		return name
	}
}

// NormalizeIdentifier normalizes an identifier that may have been quoted in
// the source. Quoted identifiers keep their exact spelling.
func (d *Dialect) NormalizeIdentifier(name string, quoted bool) string {
	if quoted {
		return name
	}
	return d.NormalizeName(name)
}

// TypeName returns the spelling of a declared type in this dialect.
// The base name is upper-cased and mapped through the dialect's aliases;
// any parameter list such as "(10, 2)" is preserved.
func (d *Dialect) TypeName(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}

	base, params := declared, ""
	if i := strings.IndexByte(declared, '('); i >= 0 {
		base, params = strings.TrimSpace(declared[:i]), declared[i:]
	}
	base = strings.ToUpper(base)

	if alias, ok := d.typeAliases[base]; ok {
		base = alias
	}
	return base + params
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for PlaceholderDollar style.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToUpper(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only if it's a reserved word
// or is not a plain identifier.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) || !isPlainIdentifier(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

func isPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: core.IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: core.NormLowercase,
			},
			typeAliases:   make(map[string]string),
			reservedWords: make(map[string]struct{}),
		},
	}
}

// New creates a dialect builder from a DialectConfig.
func New(cfg *core.DialectConfig) *Builder {
	return NewDialect(cfg.Name).
		Identifiers(cfg.Identifiers.Quote, cfg.Identifiers.QuoteEnd, cfg.Identifiers.Escape, cfg.Identifiers.Normalization).
		StringLiterals(cfg.Strings).
		DefaultSchema(cfg.DefaultSchema).
		PlaceholderStyle(cfg.Placeholder).
		TypeAliases(cfg.TypeAliases).
		WithReservedWords(cfg.ReservedWords...)
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// StringLiterals sets the extra string literal forms the dialect accepts.
func (b *Builder) StringLiterals(cfg core.StringConfig) *Builder {
	b.dialect.Strings = cfg
	return b
}

// TypeAliases adds type spelling overrides. Keys are matched case-insensitively.
func (b *Builder) TypeAliases(aliases map[string]string) *Builder {
	for from, to := range aliases {
		b.dialect.typeAliases[strings.ToUpper(from)] = to
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets the query parameter placeholder style.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// WithReservedWords adds words that must be quoted when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToUpper(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
