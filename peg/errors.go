package peg

import (
	"fmt"
	"strings"

	"github.com/gnolang/pegmacro/source"
)

// excerptWidth is the amount of text shown on each side of an error.
const excerptWidth = 50

// ParseErrors records the farthest position an expression failed at, and
// the sub-expressions that failed exactly there. The record survives later
// successes of the same expression: the deepest failure is the most useful
// diagnostic when the whole parse fails.
type ParseErrors struct {
	expr     *Expr
	begin    int
	position int
	subs     []*ParseErrors
}

func newParseErrors(expr *Expr, begin int) *ParseErrors {
	return &ParseErrors{expr: expr, begin: begin, position: begin - 1}
}

func (e *ParseErrors) Expr() *Expr { return e.expr }

// Position is the farthest input offset a failure was recorded at, or
// Begin()-1 if nothing failed.
func (e *ParseErrors) Position() int { return e.position }

func (e *ParseErrors) Begin() int { return e.begin }

func (e *ParseErrors) Subs() []*ParseErrors { return e.subs }

// mergePosition records a failure of an atomic sub-expression.
func (e *ParseErrors) mergePosition(pos int) {
	if pos > e.position {
		e.position = pos
		e.subs = nil
	}
}

func (e *ParseErrors) merge(child *ParseErrors) {
	switch {
	case child.position == e.begin && e.position <= e.begin:
		e.position = e.begin
	case child.position > e.position:
		e.position = child.position
		e.subs = []*ParseErrors{child}
	case child.position == e.position:
		e.subs = append(e.subs, child)
	}
}

// Trace renders the expression paths leading to the farthest failure.
func (e *ParseErrors) Trace() string {
	var b strings.Builder
	e.trace(&b, 0)
	return b.String()
}

func (e *ParseErrors) trace(b *strings.Builder, indent int) {
	b.WriteString(e.expr.String())
	if len(e.subs) == 1 {
		b.WriteString(" > ")
		e.subs[0].trace(b, indent)
		return
	}
	for _, s := range e.subs {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", indent+2))
		b.WriteString(">> ")
		s.trace(b, indent+2)
	}
}

// Paths flattens the failure tree into expression paths from the root.
func (e *ParseErrors) Paths() [][]string {
	var out [][]string
	var walk func(n *ParseErrors, prefix []string)
	walk = func(n *ParseErrors, prefix []string) {
		path := append(append([]string(nil), prefix...), n.expr.String())
		if len(n.subs) == 0 {
			out = append(out, path)
			return
		}
		for _, s := range n.subs {
			walk(s, path)
		}
	}
	walk(e, nil)
	return out
}

// Report renders the failure with an excerpt of src around it.
func (e *ParseErrors) Report(src source.Source) string {
	pos := e.position
	if pos < 0 {
		pos = 0
	}
	text := src.Text()
	var b strings.Builder
	fmt.Fprintf(&b, "error at input position %d (%s)\n\n", pos, src.Where(pos))
	b.WriteString("[start excerpt]\n")
	b.WriteString(src.Slice(pos-excerptWidth, pos))
	b.WriteString("\n[the error is at the start of the next line]\n")
	b.WriteString(src.Slice(pos, min(pos+excerptWidth, len(text))))
	b.WriteString("\n[end excerpt]\n\nin ")
	b.WriteString(e.Trace())
	return b.String()
}

// ParseError is returned when a match fails.
type ParseError struct {
	Source source.Source
	Errors *ParseErrors
}

func (e *ParseError) Error() string {
	return e.Errors.Report(e.Source)
}

// Position returns the location of the farthest failure.
func (e *ParseError) Position() source.Position {
	return e.Source.Where(e.Errors.Position())
}
