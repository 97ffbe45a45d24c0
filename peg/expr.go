// Package peg implements parsing expression grammars: an expression graph
// that can be mutated between parses, a memoizing backtracking matcher, and
// the immutable match trees it produces.
package peg

import (
	"strconv"
	"strings"
)

// Kind tags the variant of an Expr.
type Kind uint8

const (
	KindRule Kind = iota
	KindChoice
	KindSequence
	KindAnd
	KindNot
	KindStar
	KindPlus
	KindOptional
	KindCapture
	KindString
	KindCharClass
	KindRange
	KindAny
	KindReference
)

var kindNames = [...]string{
	KindRule:      "rule",
	KindChoice:    "choice",
	KindSequence:  "sequence",
	KindAnd:       "and",
	KindNot:       "not",
	KindStar:      "star",
	KindPlus:      "plus",
	KindOptional:  "optional",
	KindCapture:   "capture",
	KindString:    "string",
	KindCharClass: "class",
	KindRange:     "range",
	KindAny:       "any",
	KindReference: "reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MacroBinding is attached to the private rule of a macro so the expansion
// engine can recognize matches of that rule.
type MacroBinding interface {
	MacroName() string
}

// Expr is a node of a parsing expression graph. Recursive rules make the
// graph cyclic, which is why nodes are only ever shared by pointer.
//
// An Expr is "dirty" until a Grammar cleans it: cleaning resolves
// references, fixes rule identities and assigns the canonical signature.
// Fields must not be modified once the expression has been cleaned, with
// the exception of rule alternatives, which change through Grammar.
type Expr struct {
	Kind Kind

	// Name is the rule name, capture name or referenced rule name.
	Name string

	// Text holds the literal of a string or the characters of a class.
	Text string

	// First and Last bound a character range.
	First, Last rune

	// Negated inverts a character class or range.
	Negated bool

	// Atomic hides the inner structure of the match and collapses errors
	// to the start of the expression.
	Atomic bool

	// Children are the alternatives of rules and choices, the items of a
	// sequence, or the single operand of unary operators.
	Children []*Expr

	// ID is the process-wide identity of a rule, assigned when cleaned.
	ID int64

	Callbacks Callbacks
	Macro     MacroBinding

	// Grammar is the grammar that cleaned the expression.
	Grammar *Grammar

	sig string
}

// Signature returns the canonical text of a cleaned expression, or the
// empty string if the expression was never cleaned.
func (e *Expr) Signature() string { return e.sig }

// Clean reports whether the expression went through a grammar.
func (e *Expr) Clean() bool { return e.sig != "" }

// String returns the signature, or renders a dirty expression the same
// way.
func (e *Expr) String() string {
	if e.sig != "" {
		return e.sig
	}
	return signature(e)
}

// IsRule reports whether the expression is a rule, optionally with the
// given name.
func (e *Expr) IsRule(name ...string) bool {
	if e == nil || e.Kind != KindRule {
		return false
	}
	return len(name) == 0 || e.Name == name[0]
}

// Child returns the first child, or nil.
func (e *Expr) Child() *Expr {
	if len(e.Children) == 0 {
		return nil
	}
	return e.Children[0]
}

func (e *Expr) atomicByKind() bool {
	switch e.Kind {
	case KindNot, KindString, KindCharClass, KindRange, KindAny:
		return true
	}
	return false
}

func (e *Expr) precedence() int {
	switch e.Kind {
	case KindChoice:
		return 0
	case KindSequence:
		return 1
	case KindAnd, KindNot:
		return 2
	case KindStar, KindPlus, KindOptional, KindCapture:
		return 3
	default:
		return 4
	}
}

func wrap(prec int, child *Expr) string {
	if child.precedence() >= prec {
		return child.String()
	}
	return "(" + child.String() + ")"
}

// signature renders a node from the text of its children. Rules render as
// their name, which ends recursion on cycles.
func signature(e *Expr) string {
	var b strings.Builder
	switch e.Kind {
	case KindRule, KindReference:
		return e.Name
	case KindChoice:
		for i, c := range e.Children {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(c.String())
		}
		if b.Len() == 0 {
			return "<empty>"
		}
	case KindSequence:
		for _, c := range e.Children {
			b.WriteString(wrap(1, c))
			b.WriteByte(' ')
		}
		if b.Len() == 0 {
			return "<empty>"
		}
	case KindAnd:
		return "&" + wrap(2, e.Child())
	case KindNot:
		return "!" + wrap(2, e.Child())
	case KindStar:
		return wrap(3, e.Child()) + "*"
	case KindPlus:
		return wrap(3, e.Child()) + "+"
	case KindOptional:
		return wrap(3, e.Child()) + "?"
	case KindCapture:
		return e.Name + ":" + wrap(3, e.Child())
	case KindString:
		return "\"" + stringEscaper.Replace(e.Text) + "\""
	case KindCharClass:
		if e.Negated {
			b.WriteByte('^')
		}
		b.WriteString("[" + classEscaper.Replace(e.Text) + "]")
	case KindRange:
		if e.Negated {
			b.WriteByte('^')
		}
		b.WriteString("[" + classEscaper.Replace(string(e.First)) + "-" + classEscaper.Replace(string(e.Last)) + "]")
	case KindAny:
		return "_"
	}
	return b.String()
}

// The escapers render literals the way the notation package reads them.
var (
	stringEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	classEscaper = strings.NewReplacer(
		`\`, `\\`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		"]", `\]`,
		"-", `\-`,
		"^", `\^`,
	)
)
