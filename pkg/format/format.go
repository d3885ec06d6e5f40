package format

import (
	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
)

// Expr renders a single expression for the dialect.
// A nil dialect falls back to dialect.Default().
func Expr(e core.Expr, d *dialect.Dialect) string {
	p := newPrinter(d)
	p.formatExpr(e)
	return p.String()
}

// List renders expressions separated by ", ", the way a macro result is
// spliced into a projection list.
func List(exprs []core.Expr, d *dialect.Dialect) string {
	p := newPrinter(d)
	p.formatExprList(exprs)
	return p.String()
}
