// Package trees searches and rewrites match trees.
package trees

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnolang/pegmacro/peg"
)

// Spec is a predicate over matches.
type Spec interface {
	Matches(m *peg.Match) bool
	String() string
}

type strSpec string

func (s strSpec) Matches(m *peg.Match) bool { return m.String() == string(s) }
func (s strSpec) String() string            { return "match string " + strconv.Quote(string(s)) }

// Str matches nodes whose trimmed text is s.
func Str(s string) Spec { return strSpec(s) }

type ruleSpec string

func (s ruleSpec) Matches(m *peg.Match) bool { return m.IsRule(string(s)) }
func (s ruleSpec) String() string            { return "match rule " + strconv.Quote(string(s)) }

// Rule matches nodes of the rule called name.
func Rule(name string) Spec { return ruleSpec(name) }

type captureSpec string

func (s captureSpec) Matches(m *peg.Match) bool {
	e := m.Expr()
	return e.Kind == peg.KindCapture && e.Name == string(s)
}

func (s captureSpec) String() string { return "match capture " + strconv.Quote(string(s)) }

// Capture matches capture nodes called name.
func Capture(name string) Spec { return captureSpec(name) }

type exprSpec struct{ expr *peg.Expr }

// Matches cleans the expression in the grammar of m and compares
// identities. The expression becomes part of that grammar.
func (s exprSpec) Matches(m *peg.Match) bool {
	g := m.Expr().Grammar
	if g == nil {
		return false
	}
	clean, err := g.Clean(s.expr)
	if err != nil {
		return false
	}
	return m.Expr() == clean
}

func (s exprSpec) String() string { return "match expression [" + s.expr.String() + "]" }

// Expr matches nodes of the expression e.
func Expr(e *peg.Expr) Spec { return exprSpec{expr: e} }

type orSpec []Spec

func (s orSpec) Matches(m *peg.Match) bool {
	for _, sub := range s {
		if sub.Matches(m) {
			return true
		}
	}
	return false
}

func (s orSpec) String() string { return joinSpecs(s, " or ") }

func Or(specs ...Spec) Spec { return orSpec(specs) }

type andSpec []Spec

func (s andSpec) Matches(m *peg.Match) bool {
	for _, sub := range s {
		if !sub.Matches(m) {
			return false
		}
	}
	return true
}

func (s andSpec) String() string { return joinSpecs(s, " and ") }

func And(specs ...Spec) Spec { return andSpec(specs) }

func joinSpecs(specs []Spec, sep string) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = "(" + s.String() + ")"
	}
	return strings.Join(parts, sep)
}

type notSpec struct{ spec Spec }

func (s notSpec) Matches(m *peg.Match) bool { return !s.spec.Matches(m) }
func (s notSpec) String() string            { return "not (" + s.spec.String() + ")" }

func Not(spec Spec) Spec { return notSpec{spec: spec} }

type atSpec int

func (s atSpec) Matches(m *peg.Match) bool { return m.Begin() == int(s) }
func (s atSpec) String() string            { return fmt.Sprintf("at position %d", int(s)) }

// At matches nodes starting at offset pos.
func At(pos int) Spec { return atSpec(pos) }

type hasSpec struct{ spec Spec }

func (s hasSpec) Matches(m *peg.Match) bool { return HasMatch(m, s.spec) }
func (s hasSpec) String() string            { return "has submatch matching (" + s.spec.String() + ")" }

// Has matches nodes with a node matching spec in their subtree, the node
// itself included.
func Has(spec Spec) Spec { return hasSpec{spec: spec} }

type anySpec struct{}

func (anySpec) Matches(*peg.Match) bool { return true }
func (anySpec) String() string          { return "match anything" }

// Anything matches every node.
func Anything() Spec { return anySpec{} }

// HasExprAtPos matches trees holding a node of e starting at pos.
func HasExprAtPos(e *peg.Expr, pos int) Spec {
	return Has(And(At(pos), Expr(e)))
}

// HasMatchAtPos matches trees holding, at pos, a node with the expression
// and text of m.
func HasMatchAtPos(m *peg.Match, pos int) Spec {
	return Has(And(At(pos), Expr(m.Expr()), Str(m.String())))
}

// Is reports whether m satisfies spec.
func Is(m *peg.Match, spec Spec) bool { return spec.Matches(m) }
