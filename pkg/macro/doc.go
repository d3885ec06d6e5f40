// Package macro implements the built-in SQL macros and the machinery to call
// them by name.
//
// Two macros are provided:
//
//	GENERATE_SURROGATE_KEY__SHA_256(field, ...)
//	STAR(relation, alias, exclude, prefix, suffix, quote_identifiers, except_, select_only)
//
// Arguments arrive as core.Expr nodes. Each macro declares a Signature and
// Bind checks every argument against it before the macro body runs, so
// macro bodies only ever see well-shaped input. Macros build fresh nodes and
// never mutate their arguments; all of them are safe for concurrent use.
package macro
