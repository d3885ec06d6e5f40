// Package render expands macro calls written inline in SQL text.
//
// A call is "@NAME(arg, ...)" anywhere outside string literals, quoted
// identifiers and comments. Arguments use SQL spelling ('text', "quoted
// identifier", TRUE, NULL, [a, b], (a, b), name := value). Simple values are
// parsed with the Starlark expression grammar and mapped onto core expression
// nodes; any other SQL expression is passed through verbatim.
package render

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
)

// Call is a macro call site found in SQL text.
type Call struct {
	Name  string
	Args  string // text between the parentheses
	Start int    // offset of '@'
	End   int    // offset just past ')'
}

// SyntaxError reports malformed macro call text.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// FindCalls returns the macro calls in sql, in order of appearance.
// The dialect decides which string literal forms are skipped; nil means
// dialect.Default().
func FindCalls(sql string, d *dialect.Dialect) ([]Call, error) {
	return newLexer(sql, d).calls()
}

// lexer walks SQL text, stepping over the runs that cannot contain macro
// calls: string literals, quoted identifiers and comments.
type lexer struct {
	src     string
	strings core.StringConfig
}

func newLexer(src string, d *dialect.Dialect) lexer {
	if d == nil {
		d = dialect.Default()
	}
	return lexer{src: src, strings: d.Strings}
}

func (l lexer) calls() ([]Call, error) {
	var calls []Call
	i := 0
	for i < len(l.src) {
		end, ok, serr := l.skip(i)
		if serr != nil {
			return nil, serr
		}
		if ok {
			i = end
			continue
		}
		if l.src[i] == '@' {
			call, ok, err := l.readCall(i)
			if err != nil {
				return nil, err
			}
			if ok {
				calls = append(calls, call)
				i = call.End
				continue
			}
		}
		i++
	}
	return calls, nil
}

// skip returns the offset just past the literal, quoted identifier or
// comment starting at i. ok is false when none starts there.
func (l lexer) skip(i int) (end int, ok bool, serr *SyntaxError) {
	s := l.src
	c := s[i]
	switch {
	case c == '\'' || c == '"':
		end, serr = skipQuoted(s, i)
		return end, serr == nil, serr

	case (c == 'E' || c == 'e') && l.strings.EscapePrefix && i+1 < len(s) && s[i+1] == '\'' && !followsIdent(s, i):
		end, serr = skipEscaped(s, i)
		return end, serr == nil, serr

	case c == '$' && l.strings.DollarQuoted && !followsIdent(s, i):
		delim := dollarDelimiter(s, i)
		if delim == "" {
			return 0, false, nil
		}
		body := i + len(delim)
		n := strings.Index(s[body:], delim)
		if n < 0 {
			return 0, false, &SyntaxError{Offset: i, Message: "unterminated dollar-quoted string"}
		}
		return body + n + len(delim), true, nil

	case c == '-' && i+1 < len(s) && s[i+1] == '-':
		if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
			return i + n, true, nil
		}
		return len(s), true, nil

	case c == '/' && i+1 < len(s) && s[i+1] == '*':
		n := strings.Index(s[i+2:], "*/")
		if n < 0 {
			return 0, false, &SyntaxError{Offset: i, Message: "unterminated block comment"}
		}
		return i + n + 4, true, nil
	}
	return 0, false, nil
}

// readCall reads "@NAME(...)" at start. ok is false when the text is not a call.
func (l lexer) readCall(start int) (Call, bool, error) {
	s := l.src
	i := start + 1
	if i >= len(s) || !isIdentStart(s[i]) {
		return Call{}, false, nil
	}
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	name := s[start+1 : i]
	if i >= len(s) || s[i] != '(' {
		return Call{}, false, nil
	}

	open := i
	depth := 0
	for i < len(s) {
		end, ok, serr := l.skip(i)
		if serr != nil {
			return Call{}, false, serr
		}
		if ok {
			i = end
			continue
		}
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 {
				return Call{Name: name, Args: s[open+1 : i], Start: start, End: i + 1}, true, nil
			}
		}
		i++
	}
	return Call{}, false, &SyntaxError{Offset: start, Message: fmt.Sprintf("unterminated call to @%s", name)}
}

// span is a half-open byte range of the lexer's source.
type span struct{ start, end int }

// split cuts the source at commas outside brackets, literals and comments.
func (l lexer) split() ([]span, error) {
	var parts []span
	start, depth := 0, 0
	for i := 0; i < len(l.src); {
		end, ok, serr := l.skip(i)
		if serr != nil {
			return nil, serr
		}
		if ok {
			i = end
			continue
		}
		switch l.src[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, span{start, i})
				start = i + 1
			}
		}
		i++
	}
	return append(parts, span{start, len(l.src)}), nil
}

// assignment finds the first top-level ":=" or "=" that is not part of a
// comparison operator. It returns the operator's offset and length, or -1.
func (l lexer) assignment() (at, size int, err error) {
	s := l.src
	depth := 0
	for i := 0; i < len(s); {
		end, ok, serr := l.skip(i)
		if serr != nil {
			return -1, 0, serr
		}
		if ok {
			i = end
			continue
		}
		switch c := s[i]; {
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case depth == 0 && c == ':' && i+1 < len(s) && s[i+1] == '=':
			return i, 2, nil
		case depth == 0 && c == '=':
			if i+1 < len(s) && s[i+1] == '=' {
				i += 2
				continue
			}
			if i > 0 && strings.IndexByte("<>!:", s[i-1]) >= 0 {
				break
			}
			return i, 1, nil
		}
		i++
	}
	return -1, 0, nil
}

// skipQuoted returns the offset just past the quoted run starting at i.
// A doubled quote character is an escaped quote.
func skipQuoted(s string, i int) (int, *SyntaxError) {
	q := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == q {
			if j+1 < len(s) && s[j+1] == q {
				j += 2
				continue
			}
			return j + 1, nil
		}
		j++
	}
	kind := "string literal"
	if q == '"' {
		kind = "quoted identifier"
	}
	return 0, &SyntaxError{Offset: i, Message: "unterminated " + kind}
}

// skipEscaped skips an E'...' string, where a backslash escapes the next byte.
func skipEscaped(s string, i int) (int, *SyntaxError) {
	j := i + 2
	for j < len(s) {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '\'':
			if j+1 < len(s) && s[j+1] == '\'' {
				j += 2
				continue
			}
			return j + 1, nil
		}
		j++
	}
	return 0, &SyntaxError{Offset: i, Message: "unterminated string literal"}
}

// dollarDelimiter returns the "$tag$" opening at i, or "" when the text is
// not a dollar quote (for example a "$1" parameter).
func dollarDelimiter(s string, i int) string {
	j := i + 1
	if j < len(s) && s[j] == '$' {
		return "$$"
	}
	if j >= len(s) || !isIdentStart(s[j]) {
		return ""
	}
	for j < len(s) && isIdentPart(s[j]) {
		j++
	}
	if j < len(s) && s[j] == '$' {
		return s[i : j+1]
	}
	return ""
}

func followsIdent(s string, i int) bool {
	return i > 0 && (isIdentPart(s[i-1]) || s[i-1] == '$')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
