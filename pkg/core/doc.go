// Package core defines the shared language of leapmacro.
//
// This package contains:
//   - The expression model (Expr and its node types) that macros consume and produce
//   - Constructors for building expression trees
//   - Dialect and adapter configuration types
//
// The Golden Rule: pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
