// Package format renders expression trees back to SQL text.
//
// Output is single-line and dialect aware: identifier quoting and CAST
// target spelling come from the dialect the printer is created with.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/leapmacro/pkg/dialect"
)

// Printer accumulates rendered SQL for one or more expressions.
type Printer struct {
	dialect *dialect.Dialect
	output  *bytes.Buffer
}

func newPrinter(d *dialect.Dialect) *Printer {
	if d == nil {
		d = dialect.Default()
	}
	return &Printer{
		dialect: d,
		output:  &bytes.Buffer{},
	}
}

// String returns the rendered output.
func (p *Printer) String() string {
	return p.output.String()
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

func (p *Printer) keyword(s string) {
	p.write(strings.ToUpper(s))
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// ident writes a single identifier part, quoted when asked to. Unquoted
// names are still quoted when they are reserved words or not plain
// identifiers, so the output always parses.
func (p *Printer) ident(name string, quoted bool) {
	switch {
	case quoted:
		p.write(p.dialect.QuoteIdentifier(name))
	case name != "":
		p.write(p.dialect.QuoteIdentifierIfNeeded(name))
	}
}

// formatList prints a list of items with separators.
// count is the number of items, format is called for each index.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}
