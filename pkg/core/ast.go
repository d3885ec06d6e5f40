package core

// Expr is the interface implemented by every expression node.
//
// The set of implementations is closed: Literal, Identifier, ColumnRef,
// TableName, FuncCall, CastExpr, AliasExpr, ArrayExpr, TupleExpr, StarExpr
// and RawExpr.
// Nodes are treated as immutable once built; code that needs a different
// tree builds new nodes instead of rewriting existing ones.
type Expr interface {
	exprNode() // Marker method to distinguish expressions
}
