// Package quote builds match trees from source text with holes: dynamic
// quotation fills numbered markers with values, static quotation turns
// quotation syntax written in a program into dynamic quotation calls.
package quote

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
)

var (
	ErrInsertIndex      = errors.New("insert marker out of range")
	ErrSpliceValue      = errors.New("splice marker needs a slice or array")
	ErrInsertValue      = errors.New("nil match inserted")
	ErrInvalidParse     = errors.New("quotation does not yield a valid parse")
	ErrVerification     = errors.New("quoted tree does not hold the inserted match")
	ErrNegativeDepth    = errors.New("unquotation with negative depth")
	ErrInvalidQuotation = errors.New("not a quotation")
)

// Syntax names the host grammar rules the quotation syntax is built on and
// the host functions quotations expand to.
type Syntax struct {
	// Expression is the rule quotations are alternatives of, and the rule
	// their expansions parse as.
	Expression string
	Identifier string
	Spacing    string
	LBracket   string
	RBracket   string
	// Primitive and Dynamic are the host functions called by expansions
	// without and with inserts.
	Primitive string
	Dynamic   string
}

func DefaultSyntax() Syntax {
	return Syntax{
		Expression: "unaryExpression",
		Identifier: "identifier",
		Spacing:    "spacing",
		LBracket:   "lBracket",
		RBracket:   "rBracket",
		Primitive:  "quote",
		Dynamic:    "dynamicQuote",
	}
}

// MacroName is the name of the rule holding the quotation macro.
const MacroName = "quotationMacro"

// markerRules returns the rules shared by the insert markers of dynamic
// quotation and the unquotations of static quotation.
func markerRules(sp *peg.Expr) []*peg.Expr {
	escape := peg.Seq(peg.Str(`\`), peg.Any())
	delim := peg.Ref("spliceDelimiter")
	return []*peg.Expr{
		peg.RuleSeq("hash", peg.Str("#"), peg.Not(peg.Str("@")), sp),
		peg.RuleSeq("hashat", peg.Str("#@"), sp),
		peg.Rule("backslash", peg.Str(`\`)),
		peg.Rule("spliceDelimiter", peg.Star(peg.Choice(escape, peg.Seq(peg.Not(peg.Str("|")), peg.Any())))),
		peg.RuleSeq("spliceDelimiters",
			peg.Str("|"), delim, peg.Str("|"), delim, peg.Str("|"), delim, peg.Str("|"),
		),
		peg.RuleSeq("splicePrefix", peg.Opt(peg.Ref("backslash")), peg.Ref("hashat"), peg.Ref("spliceDelimiters"), sp),
		peg.Atomic(peg.Rule("markerNumber", peg.Plus(peg.Range('0', '9')))),
		peg.RuleSeq("insertMarker",
			peg.Choice(peg.Ref("splicePrefix"), peg.Seq(peg.Opt(peg.Ref("backslash")), peg.Ref("hash"))),
			peg.Ref("markerNumber"),
		),
		peg.RuleSeq("dynamicSourceFragment",
			peg.Star(peg.Until(peg.Any(), peg.Ref("insertMarker"))),
			peg.Star(peg.Any()),
		),
	}
}

var (
	markerOnce    sync.Once
	markerGrammar *peg.Grammar
	markerErr     error
)

// markers is the grammar dynamic quotation scans templates with.
func markers() (*peg.Grammar, error) {
	markerOnce.Do(func() {
		rules := append(markerRules(peg.Ref("spacing")),
			peg.Atomic(peg.Rule("spacing", peg.Star(peg.Chars(" \t\r\n")))))
		markerGrammar, markerErr = peg.NewGrammar("markers", rules...)
	})
	return markerGrammar, markerErr
}

// Install adds the quotation syntax to g and enables the quotation macro,
// which it returns. The rules named by syntax must exist in g.
func Install(g *peg.Grammar, syntax Syntax) (*macro.Macro, error) {
	for _, name := range []string{syntax.Expression, syntax.Identifier, syntax.Spacing, syntax.LBracket, syntax.RBracket} {
		if _, err := g.Rule(name); err != nil {
			return nil, fmt.Errorf("installing quotation: %w", err)
		}
	}
	sp := peg.Ref(syntax.Spacing)
	rb := peg.Ref(syntax.RBracket)
	qEnd := peg.Seq(rb, peg.Choice(peg.Ref("quoteMark"), peg.Ref("backquoteMark")))
	fragmentChar := peg.Seq(peg.Not(qEnd), peg.Any())
	quotation := func(name, mark string) *peg.Expr {
		return peg.RuleSeq(name,
			peg.Ref(mark), peg.Ref(syntax.Identifier), peg.Ref(syntax.LBracket),
			peg.Ref("sourceFragment"),
			rb, peg.Ref(mark),
		)
	}

	rules := append(markerRules(sp),
		peg.RuleSeq("quoteMark", peg.Str("'"), sp),
		peg.RuleSeq("backquoteMark", peg.Str("`"), sp),
		peg.RuleSeq("regularUnquotation",
			peg.Opt(peg.Ref("backslash")), peg.Ref("hash"),
			peg.Choice(peg.Ref("unquotation"), peg.Ref(syntax.Expression)),
		),
		peg.RuleSeq("splice", peg.Ref("splicePrefix"), peg.Ref(syntax.Expression)),
		peg.Rule("unquotation", peg.Ref("regularUnquotation"), peg.Ref("splice")),
		peg.RuleSeq("escapedQEndMarker", peg.Ref("backslash"), qEnd),
		peg.RuleSeq("sourceFragment",
			peg.Star(peg.Until(fragmentChar, peg.Choice(
				peg.Ref("quotation"), peg.Ref("unquotation"), peg.Ref("escapedQEndMarker"),
			))),
			peg.Star(fragmentChar),
		),
		quotation("simpleQuotation", "quoteMark"),
		quotation("quasiquotation", "backquoteMark"),
		peg.Rule("quotation", peg.Ref("simpleQuotation"), peg.Ref("quasiquotation")),
	)
	if err := g.AddRules(rules...); err != nil {
		return nil, fmt.Errorf("installing quotation: %w", err)
	}

	m, err := Macro(g, syntax)
	if err != nil {
		return nil, err
	}
	if err := m.Enable(); err != nil {
		return nil, err
	}
	return m, nil
}
