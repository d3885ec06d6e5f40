package core

import "strings"

// ---------- Expression Types ----------

// Literal represents a literal value.
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// String returns the string representation of LiteralType.
func (t LiteralType) String() string {
	switch t {
	case LiteralNumber:
		return "number"
	case LiteralString:
		return "string"
	case LiteralBool:
		return "boolean"
	case LiteralNull:
		return "null"
	default:
		return "unknown"
	}
}

// IsBool reports whether the literal is TRUE or FALSE.
func (l *Literal) IsBool() bool { return l.Type == LiteralBool }

// BoolValue returns the truth value of a boolean literal.
// Non-boolean literals report false.
func (l *Literal) BoolValue() bool {
	return l.Type == LiteralBool && strings.EqualFold(l.Value, "true")
}

// Identifier represents a bare identifier, optionally quoted.
type Identifier struct {
	Name   string
	Quoted bool
}

func (*Identifier) exprNode() {}

// ColumnRef represents a column reference (possibly qualified).
// Quoted applies to both the qualifier and the column name.
type ColumnRef struct {
	Table  string // optional table/alias qualifier
	Column string
	Quoted bool
}

func (*ColumnRef) exprNode() {}

// GetTable returns the table qualifier.
func (c *ColumnRef) GetTable() string { return c.Table }

// GetColumn returns the column name.
func (c *ColumnRef) GetColumn() string { return c.Column }

// TableName represents a table name reference.
// It is an Expr so that relations can be passed as macro arguments.
type TableName struct {
	Catalog string
	Schema  string
	Name    string
	Alias   string
	Quoted  bool
}

func (*TableName) exprNode() {}

// QualifiedName returns catalog.schema.name with empty parts omitted.
func (t *TableName) QualifiedName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Catalog, t.Schema, t.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// FuncCall represents a function call.
type FuncCall struct {
	Name string
	Args []Expr
}

func (*FuncCall) exprNode() {}

// CastExpr represents a CAST expression.
type CastExpr struct {
	Expr     Expr
	TypeName string
}

func (*CastExpr) exprNode() {}

// AliasExpr represents "expr AS alias" in a projection list.
type AliasExpr struct {
	Expr   Expr
	Alias  string
	Quoted bool
}

func (*AliasExpr) exprNode() {}

// ArrayExpr represents an array literal: [a, b, c].
type ArrayExpr struct {
	Elements []Expr
}

func (*ArrayExpr) exprNode() {}

// TupleExpr represents a parenthesized list: (a, b, c).
type TupleExpr struct {
	Elements []Expr
}

func (*TupleExpr) exprNode() {}

// StarExpr represents a * expression (for SELECT *).
type StarExpr struct {
	Table string // optional table qualifier for t.*
}

func (*StarExpr) exprNode() {}

// RawExpr is SQL text produced outside the expression model, such as the
// result of a user-defined macro. It is printed verbatim.
type RawExpr struct {
	SQL string
}

func (*RawExpr) exprNode() {}

// NameOf returns the name carried by a name-shaped node: the column of a
// ColumnRef, the name of an Identifier or TableName, or the text of a string
// literal. Any other node yields "".
func NameOf(e Expr) string {
	switch n := e.(type) {
	case *Identifier:
		return n.Name
	case *ColumnRef:
		return n.Column
	case *TableName:
		return n.Name
	case *Literal:
		if n.Type == LiteralString {
			return n.Value
		}
	}
	return ""
}

// Elements returns the members of a set-valued node. Arrays and tuples
// yield their elements, any other non-nil node is treated as a singleton.
func Elements(e Expr) []Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ArrayExpr:
		return n.Elements
	case *TupleExpr:
		return n.Elements
	default:
		return []Expr{e}
	}
}
