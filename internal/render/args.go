package render

import (
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/format"
	"go.starlark.net/syntax"
)

// ArgParser turns the text between a macro call's parentheses into
// expression nodes.
type ArgParser struct {
	// Dialect selects the string literal forms recognized. Nil means
	// dialect.Default().
	Dialect *dialect.Dialect

	// Named reports whether "name = value" passes a named argument. When it
	// returns false the text is an equality. Nil accepts every plain name.
	// "name := value" is always a named argument.
	Named func(name string) bool

	// Expand evaluates a nested macro call. Nil rejects nested calls.
	Expand func(call Call) ([]core.Expr, error)
}

// ParseArgs parses src with the default ArgParser.
// offset is the position of src in the SQL source, for error reporting.
func ParseArgs(src string, offset int) ([]core.Expr, map[string]core.Expr, error) {
	return (&ArgParser{}).Parse(src, offset)
}

// Parse splits src into positional and named arguments. A nested call that
// forms a whole positional argument contributes every node it expands to.
func (p *ArgParser) Parse(src string, offset int) ([]core.Expr, map[string]core.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil, nil
	}

	parts, err := newLexer(src, p.Dialect).split()
	if err != nil {
		return nil, nil, shift(err, offset)
	}

	var (
		positional []core.Expr
		named      map[string]core.Expr
	)
	for _, part := range parts {
		text, at := trimmed(src[part.start:part.end], offset+part.start)
		if text == "" {
			return nil, nil, &SyntaxError{Offset: at, Message: "empty argument"}
		}

		name, valueText, valueAt, isNamed, err := p.splitNamed(text, at)
		if err != nil {
			return nil, nil, err
		}
		if !isNamed {
			if named != nil {
				return nil, nil, &SyntaxError{Offset: at, Message: "positional argument follows named argument"}
			}
			values, err := p.value(text, at)
			if err != nil {
				return nil, nil, err
			}
			positional = append(positional, values...)
			continue
		}

		values, err := p.value(valueText, valueAt)
		if err != nil {
			return nil, nil, err
		}
		if named == nil {
			named = make(map[string]core.Expr)
		}
		if len(values) == 1 {
			named[name] = values[0]
		} else {
			named[name] = core.Tuple(values...)
		}
	}
	return positional, named, nil
}

// splitNamed recognizes "name := value" and "name = value".
func (p *ArgParser) splitNamed(text string, at int) (name, value string, valueAt int, ok bool, err error) {
	op, size, err := newLexer(text, p.Dialect).assignment()
	if err != nil {
		return "", "", 0, false, shift(err, at)
	}
	if op < 0 {
		return "", "", 0, false, nil
	}

	name = strings.TrimSpace(text[:op])
	plain := isPlainName(name)
	if size == 1 && (!plain || (p.Named != nil && !p.Named(name))) {
		return "", "", 0, false, nil
	}
	if !plain {
		return "", "", 0, false, &SyntaxError{Offset: at, Message: "named argument must be a plain name"}
	}

	value, valueAt = trimmed(text[op+size:], at+op+size)
	if value == "" {
		return "", "", 0, false, &SyntaxError{Offset: valueAt, Message: "missing value for " + name}
	}
	return name, value, valueAt, true, nil
}

// value converts one argument. Simple values become typed nodes; any other
// SQL expression is kept verbatim as a RawExpr.
func (p *ArgParser) value(text string, at int) ([]core.Expr, error) {
	l := newLexer(text, p.Dialect)
	calls, err := l.calls()
	if err != nil {
		return nil, shift(err, at)
	}

	if len(calls) > 0 {
		if p.Expand == nil {
			return nil, &SyntaxError{Offset: at + calls[0].Start, Message: "nested macro calls are not supported here"}
		}
		if len(calls) == 1 && calls[0].Start == 0 && calls[0].End == len(text) {
			return p.Expand(moved(calls[0], at))
		}
		sql, err := p.splice(text, calls, at)
		if err != nil {
			return nil, err
		}
		return []core.Expr{core.Raw(sql)}, nil
	}

	if e, ok := p.convertText(text); ok {
		return []core.Expr{e}, nil
	}
	return []core.Expr{core.Raw(text)}, nil
}

// splice replaces nested calls inside a larger expression with their SQL.
func (p *ArgParser) splice(text string, calls []Call, at int) (string, error) {
	var b strings.Builder
	last := 0
	for _, call := range calls {
		out, err := p.Expand(moved(call, at))
		if err != nil {
			return "", err
		}
		b.WriteString(text[last:call.Start])
		b.WriteString(format.List(out, p.Dialect))
		last = call.End
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// convertText parses text as a Starlark expression and maps it onto core
// nodes. ok is false when the text is not in that subset.
func (p *ArgParser) convertText(text string) (core.Expr, bool) {
	src, ok := toStarlark(text, p.Dialect)
	if !ok {
		return nil, false
	}
	opts := &syntax.FileOptions{}
	expr, err := opts.ParseExpr("macro", src, 0)
	if err != nil {
		return nil, false
	}
	return convert(expr)
}

// convert maps a Starlark syntax node onto a core expression.
func convert(e syntax.Expr) (core.Expr, bool) {
	switch n := e.(type) {
	case *syntax.Ident:
		switch strings.ToUpper(n.Name) {
		case "TRUE":
			return core.True(), true
		case "FALSE":
			return core.False(), true
		case "NULL":
			return core.Null(), true
		}
		return core.Column(n.Name), true

	case *syntax.DotExpr:
		path, ok := dottedPath(n.X)
		if !ok {
			return nil, false
		}
		return core.QualifiedColumn(path, n.Name.Name, false), true

	case *syntax.Literal:
		switch n.Token {
		case syntax.STRING:
			s, _ := n.Value.(string)
			if strings.HasPrefix(n.Raw, `"`) {
				return &core.ColumnRef{Column: s, Quoted: true}, true
			}
			return core.String(s), true
		case syntax.INT, syntax.FLOAT:
			return core.Number(n.Raw), true
		}

	case *syntax.UnaryExpr:
		if lit, ok := n.X.(*syntax.Literal); ok && (lit.Token == syntax.INT || lit.Token == syntax.FLOAT) {
			switch n.Op {
			case syntax.MINUS:
				return core.Number("-" + lit.Raw), true
			case syntax.PLUS:
				return core.Number(lit.Raw), true
			}
		}

	case *syntax.ListExpr:
		elems, ok := convertAll(n.List)
		if !ok {
			return nil, false
		}
		return core.Array(elems...), true

	case *syntax.TupleExpr:
		elems, ok := convertAll(n.List)
		if !ok {
			return nil, false
		}
		return core.Tuple(elems...), true

	case *syntax.ParenExpr:
		// (a) is a single value; (a,) and () arrive as tuples.
		if n.X == nil {
			return core.Tuple(), true
		}
		return convert(n.X)

	case *syntax.CallExpr:
		var name string
		switch fn := n.Fn.(type) {
		case *syntax.Ident:
			name = fn.Name
		case *syntax.DotExpr:
			path, ok := dottedPath(fn.X)
			if !ok {
				return nil, false
			}
			name = path + "." + fn.Name.Name
		default:
			return nil, false
		}
		args, ok := convertAll(n.Args)
		if !ok {
			return nil, false
		}
		return core.Func(name, args...), true
	}

	return nil, false
}

func convertAll(exprs []syntax.Expr) ([]core.Expr, bool) {
	var out []core.Expr
	for _, e := range exprs {
		c, ok := convert(e)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

func dottedPath(e syntax.Expr) (string, bool) {
	switch n := e.(type) {
	case *syntax.Ident:
		return n.Name, true
	case *syntax.DotExpr:
		prefix, ok := dottedPath(n.X)
		if !ok {
			return "", false
		}
		return prefix + "." + n.Name.Name, true
	}
	return "", false
}

// toStarlark rewrites SQL argument spelling into Starlark: SQL string and
// quoted identifier escapes become backslash escapes. ok is false when the
// text uses SQL-only syntax such as E'...' strings, dollar quotes or comments.
func toStarlark(src string, d *dialect.Dialect) (string, bool) {
	l := newLexer(src, d)

	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\'' && c != '"' {
			if _, ok, _ := l.skip(i); ok {
				return "", false
			}
			b.WriteByte(c)
			i++
			continue
		}

		end, serr := skipQuoted(src, i)
		if serr != nil {
			return "", false
		}
		q := string(c)
		body := strings.ReplaceAll(src[i+1:end-1], q+q, q)
		b.WriteString(q)
		b.WriteString(escape(body, c))
		b.WriteString(q)
		i = end
	}
	return b.String(), true
}

func escape(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// trimmed strips surrounding space from s and moves at past the leading part.
func trimmed(s string, at int) (string, int) {
	lead := len(s) - len(strings.TrimLeft(s, " \t\r\n"))
	return strings.TrimSpace(s), at + lead
}

// shift moves a syntax error's offset from local to source coordinates.
func shift(err error, by int) error {
	if serr, ok := err.(*SyntaxError); ok {
		return &SyntaxError{Offset: serr.Offset + by, Message: serr.Message}
	}
	return err
}

// moved returns call with its offsets moved by at.
func moved(call Call, at int) Call {
	call.Start += at
	call.End += at
	return call
}

func isPlainName(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
