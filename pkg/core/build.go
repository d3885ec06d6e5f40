package core

import "strings"

// String creates a string literal.
func String(v string) *Literal {
	return &Literal{Type: LiteralString, Value: v}
}

// Number creates a numeric literal from its SQL text.
func Number(v string) *Literal {
	return &Literal{Type: LiteralNumber, Value: v}
}

// Bool creates a TRUE or FALSE literal.
func Bool(v bool) *Literal {
	if v {
		return &Literal{Type: LiteralBool, Value: "TRUE"}
	}
	return &Literal{Type: LiteralBool, Value: "FALSE"}
}

// True creates a TRUE literal.
func True() *Literal { return Bool(true) }

// False creates a FALSE literal.
func False() *Literal { return Bool(false) }

// Null creates a NULL literal.
func Null() *Literal {
	return &Literal{Type: LiteralNull, Value: "NULL"}
}

// Ident creates an unquoted identifier.
func Ident(name string) *Identifier {
	return &Identifier{Name: name}
}

// Column creates an unqualified, unquoted column reference.
func Column(name string) *ColumnRef {
	return &ColumnRef{Column: name}
}

// QualifiedColumn creates a table-qualified column reference.
func QualifiedColumn(table, column string, quoted bool) *ColumnRef {
	return &ColumnRef{Table: table, Column: column, Quoted: quoted}
}

// Table creates a table reference from a dotted path such as
// "catalog.schema.name", "schema.name" or "name".
func Table(path string) *TableName {
	parts := strings.Split(path, ".")
	t := &TableName{Name: parts[len(parts)-1]}
	if len(parts) >= 2 {
		t.Schema = parts[len(parts)-2]
	}
	if len(parts) >= 3 {
		t.Catalog = strings.Join(parts[:len(parts)-2], ".")
	}
	return t
}

// Func creates a function call.
func Func(name string, args ...Expr) *FuncCall {
	return &FuncCall{Name: name, Args: args}
}

// Coalesce creates a COALESCE(args...) function call.
func Coalesce(args ...Expr) *FuncCall {
	return Func("COALESCE", args...)
}

// Concat creates a CONCAT(args...) function call.
func Concat(args ...Expr) *FuncCall {
	return Func("CONCAT", args...)
}

// Cast creates a CAST(expr AS typeName) expression.
func Cast(e Expr, typeName string) *CastExpr {
	return &CastExpr{Expr: e, TypeName: typeName}
}

// As wraps an expression with an output alias.
func As(e Expr, alias string, quoted bool) *AliasExpr {
	return &AliasExpr{Expr: e, Alias: alias, Quoted: quoted}
}

// Array creates an array literal.
func Array(elems ...Expr) *ArrayExpr {
	return &ArrayExpr{Elements: elems}
}

// Tuple creates a tuple. Tuple() is the empty tuple.
func Tuple(elems ...Expr) *TupleExpr {
	return &TupleExpr{Elements: elems}
}

// Star creates a * or t.* expression.
func Star(table string) *StarExpr {
	return &StarExpr{Table: table}
}

// Raw creates a verbatim SQL fragment.
func Raw(sql string) *RawExpr {
	return &RawExpr{SQL: sql}
}
