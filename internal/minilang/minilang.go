// Package minilang is a small expression and statement language used to
// exercise macros and quotation. Tokens consume the spacing that follows
// them; comments start with "//".
package minilang

import (
	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/quote"
)

// Syntax tells the quotation engine which minilang rules to use.
var Syntax = quote.DefaultSyntax()

// Root is the rule of a whole program.
const Root = "program"

// Keywords cannot be identifiers.
var Keywords = []string{"let", "print", "if", "else"}

// New returns a fresh grammar with the quotation syntax installed and
// enabled. Every call builds independent rules, so macros enabled in one
// grammar do not leak into another.
func New() (*peg.Grammar, error) {
	g, _, err := NewWithQuotation()
	return g, err
}

// NewWithQuotation is New that also returns the quotation macro.
func NewWithQuotation() (*peg.Grammar, *macro.Macro, error) {
	g, err := peg.NewGrammar("minilang", rules()...)
	if err != nil {
		return nil, nil, err
	}
	m, err := quote.Install(g, Syntax)
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

// MustNew is New for tests and tools that embed the language.
func MustNew() *peg.Grammar {
	g, err := New()
	if err != nil {
		panic(err)
	}
	return g
}

var sp = peg.Ref("spacing")

func letterDigit() *peg.Expr {
	return peg.Choice(peg.Range('a', 'z'), peg.Range('A', 'Z'), peg.Range('0', '9'), peg.Chars("_"))
}

func keyword(word string) *peg.Expr {
	return peg.Seq(peg.Str(word), peg.Not(letterDigit()), sp)
}

func token(name, text string) *peg.Expr {
	return peg.RuleSeq(name, peg.Str(text), sp)
}

func rules() []*peg.Expr {
	words := make([]*peg.Expr, len(Keywords))
	for i, w := range Keywords {
		words[i] = peg.Str(w)
	}
	expr := peg.Ref("expression")
	args := peg.Opt(peg.List(peg.Ref("comma"), expr))

	return []*peg.Expr{
		// lexical
		peg.Atomic(peg.Rule("spacing", peg.Star(peg.Choice(
			peg.Chars(" \t\r\n"),
			peg.Seq(peg.Str("//"), peg.Star(peg.NotChars("\n"))),
		)))),
		peg.Atomic(peg.RuleSeq("identifier",
			peg.Not(peg.Choice(words...), peg.Not(letterDigit())),
			peg.Choice(peg.Range('a', 'z'), peg.Range('A', 'Z'), peg.Chars("_")),
			peg.Star(letterDigit()),
			sp,
		)),
		peg.Atomic(peg.RuleSeq("integerLiteral", peg.Plus(peg.Range('0', '9')), sp)),
		peg.Atomic(peg.RuleSeq("stringLiteral",
			peg.Str(`"`),
			peg.Star(peg.Choice(peg.Seq(peg.Str(`\`), peg.Any()), peg.NotChars("\"\\\n"))),
			peg.Str(`"`),
			sp,
		)),
		token("lParen", "("),
		token("rParen", ")"),
		token("lBracket", "["),
		token("rBracket", "]"),
		token("lBrace", "{"),
		token("rBrace", "}"),
		token("comma", ","),
		token("semicolon", ";"),
		peg.RuleSeq("assign", peg.Str("="), peg.Not(peg.Str("=")), sp),
		peg.Atomic(peg.RuleSeq("binaryOperator",
			peg.Choice(peg.Str("=="), peg.Str("<"), peg.Str("+"), peg.Str("-"), peg.Str("*")),
			sp,
		)),
		peg.Atomic(peg.RuleSeq("prefixOperator",
			peg.Choice(peg.Seq(peg.Str("!"), peg.Not(peg.Str("="))), peg.Str("-")),
			sp,
		)),

		// expressions
		peg.RuleSeq("expression",
			peg.Ref("unaryExpression"),
			peg.Star(peg.Ref("binaryOperator"), peg.Ref("unaryExpression")),
		),
		peg.Rule("unaryExpression",
			peg.Seq(peg.Ref("prefixOperator"), peg.Ref("unaryExpression")),
			peg.Ref("suffixedExpression"),
		),
		peg.RuleSeq("suffixedExpression", peg.LRecur(peg.Ref("primary"), peg.Ref("suffix"))),
		peg.Rule("suffix", peg.Ref("callSuffix"), peg.Ref("indexSuffix")),
		peg.RuleSeq("callSuffix", peg.Ref("lParen"), args, peg.Ref("rParen")),
		peg.RuleSeq("indexSuffix", peg.Ref("lBracket"), expr, peg.Ref("rBracket")),
		peg.Rule("primary",
			peg.Ref("parenExpression"),
			peg.Ref("listExpression"),
			peg.Ref("integerLiteral"),
			peg.Ref("stringLiteral"),
			peg.Ref("identifier"),
		),
		peg.RuleSeq("parenExpression", peg.Ref("lParen"), expr, peg.Ref("rParen")),
		peg.RuleSeq("listExpression", peg.Ref("lBracket"), args, peg.Ref("rBracket")),

		// statements
		peg.RuleSeq("program", sp, peg.Star(peg.Ref("statement"))),
		peg.Rule("statement",
			peg.Ref("letStatement"),
			peg.Ref("printStatement"),
			peg.Ref("ifStatement"),
			peg.Ref("block"),
			peg.Ref("expressionStatement"),
		),
		peg.RuleSeq("letStatement", keyword("let"), peg.Ref("identifier"), peg.Ref("assign"), expr, peg.Ref("semicolon")),
		peg.RuleSeq("printStatement", keyword("print"), expr, peg.Ref("semicolon")),
		peg.RuleSeq("ifStatement",
			keyword("if"), peg.Ref("lParen"), expr, peg.Ref("rParen"), peg.Ref("statement"),
			peg.Opt(keyword("else"), peg.Ref("statement")),
		),
		peg.RuleSeq("block", peg.Ref("lBrace"), peg.Star(peg.Ref("statement")), peg.Ref("rBrace")),
		peg.RuleSeq("expressionStatement", expr, peg.Ref("semicolon")),
	}
}
