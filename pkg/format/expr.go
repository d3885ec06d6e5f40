package format

import (
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
)

func (p *Printer) formatExpr(e core.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *core.Literal:
		p.formatLiteral(expr)
	case *core.Identifier:
		p.ident(expr.Name, expr.Quoted)
	case *core.ColumnRef:
		p.formatColumnRef(expr)
	case *core.TableName:
		p.formatTableName(expr)
	case *core.FuncCall:
		p.formatFuncCall(expr)
	case *core.CastExpr:
		p.formatCastExpr(expr)
	case *core.AliasExpr:
		p.formatAliasExpr(expr)
	case *core.ArrayExpr:
		p.write("[")
		p.formatExprList(expr.Elements)
		p.write("]")
	case *core.TupleExpr:
		p.write("(")
		p.formatExprList(expr.Elements)
		p.write(")")
	case *core.StarExpr:
		p.formatStarExpr(expr)
	case *core.RawExpr:
		p.write(expr.SQL)
	}
}

func (p *Printer) formatExprList(exprs []core.Expr) {
	p.formatList(len(exprs), func(i int) { p.formatExpr(exprs[i]) }, ", ")
}

func (p *Printer) formatLiteral(lit *core.Literal) {
	switch lit.Type {
	case core.LiteralString:
		p.write("'")
		p.write(strings.ReplaceAll(lit.Value, "'", "''"))
		p.write("'")
	case core.LiteralBool:
		if lit.BoolValue() {
			p.keyword("true")
		} else {
			p.keyword("false")
		}
	case core.LiteralNull:
		p.keyword("null")
	default:
		p.write(lit.Value)
	}
}

func (p *Printer) formatColumnRef(col *core.ColumnRef) {
	if col.Table != "" {
		p.ident(col.Table, col.Quoted)
		p.write(".")
	}
	p.ident(col.Column, col.Quoted)
}

func (p *Printer) formatTableName(t *core.TableName) {
	parts := make([]string, 0, 3)
	for _, part := range []string{t.Catalog, t.Schema, t.Name} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	p.formatList(len(parts), func(i int) { p.ident(parts[i], t.Quoted) }, ".")
	if t.Alias != "" {
		p.space()
		p.keyword("as")
		p.space()
		p.ident(t.Alias, t.Quoted)
	}
}

func (p *Printer) formatFuncCall(fn *core.FuncCall) {
	p.write(fn.Name)
	p.write("(")
	p.formatExprList(fn.Args)
	p.write(")")
}

func (p *Printer) formatCastExpr(c *core.CastExpr) {
	p.keyword("cast")
	p.write("(")
	p.formatExpr(c.Expr)
	p.space()
	p.keyword("as")
	p.space()
	p.write(p.dialect.TypeName(c.TypeName))
	p.write(")")
}

func (p *Printer) formatAliasExpr(a *core.AliasExpr) {
	p.formatExpr(a.Expr)
	p.space()
	p.keyword("as")
	p.space()
	p.ident(a.Alias, a.Quoted)
}

func (p *Printer) formatStarExpr(star *core.StarExpr) {
	if star.Table != "" {
		p.write(star.Table)
		p.write(".")
	}
	p.write("*")
}
