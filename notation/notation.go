// Package notation reads parsing expressions written as text:
//
//	a b       sequence
//	a | b     ordered choice
//	&a !a     lookahead
//	a* a+ a?  repetition
//	n:a       capture
//	a *+ b    a until b
//	a ++ b    a until b, at least once
//	a +/ b    list of b separated by a
//	"x" 'x'   literal
//	[a-z_]    character class, negated with ^[...]
//	_         any character
//	name      reference to a rule
//
// Comments start with # and run to the end of the line.
package notation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

var ErrSyntax = errors.New("invalid notation")

var (
	grammarOnce sync.Once
	grammar     *peg.Grammar
	grammarErr  error
)

func notationGrammar() (*peg.Grammar, error) {
	grammarOnce.Do(func() {
		grammar, grammarErr = peg.NewGrammar("notation", rules()...)
	})
	return grammar, grammarErr
}

func rules() []*peg.Expr {
	sp := peg.Ref("spacing")
	identChar := peg.Choice(peg.Range('a', 'z'), peg.Range('A', 'Z'), peg.Range('0', '9'), peg.Chars("_"))
	escaped := peg.Seq(peg.Str(`\`), peg.Any())
	quoted := func(q string) *peg.Expr {
		return peg.Seq(peg.Str(q), peg.Star(peg.Choice(escaped, peg.NotChars(q+`\`))), peg.Str(q))
	}

	return []*peg.Expr{
		peg.Atomic(peg.Rule("spacing", peg.Star(peg.Choice(
			peg.Chars(" \t\r\n"),
			peg.Seq(peg.Str("#"), peg.Star(peg.NotChars("\n"))),
		)))),
		peg.Atomic(peg.RuleSeq("ident",
			peg.Not(peg.Str("_"), peg.Not(identChar)),
			peg.Choice(peg.Range('a', 'z'), peg.Range('A', 'Z'), peg.Chars("_")),
			peg.Star(identChar),
		)),
		peg.Atomic(peg.Rule("stringToken", quoted(`"`), quoted(`'`))),
		peg.Atomic(peg.RuleSeq("classToken",
			peg.Opt(peg.Str("^")), peg.Str("["),
			peg.Star(peg.Choice(escaped, peg.NotChars(`]\`))),
			peg.Str("]"),
		)),

		peg.RuleSeq("notation", sp, peg.Capture("root", peg.Ref("choice"))),
		peg.RuleSeq("choice",
			peg.Capture("alt", peg.Ref("sequence")),
			peg.Star(peg.Str("|"), sp, peg.Capture("alt", peg.Ref("sequence"))),
		),
		peg.RuleSeq("sequence", peg.Plus(peg.Capture("item", peg.Ref("binary")))),
		peg.RuleSeq("binary",
			peg.Capture("left", peg.Ref("prefixed")),
			peg.Opt(
				peg.Capture("op", peg.Choice(peg.Str("*+"), peg.Str("++"), peg.Str("+/"))), sp,
				peg.Capture("right", peg.Ref("prefixed")),
			),
		),
		peg.RuleSeq("prefixed",
			peg.Star(peg.Capture("prefix", peg.Chars("&!")), sp),
			peg.Capture("operand", peg.Ref("suffixed")),
		),
		peg.RuleSeq("suffixed",
			peg.Capture("base", peg.Ref("primary")),
			peg.Star(peg.Capture("suffix", peg.Choice(
				peg.Seq(peg.Str("*"), peg.Not(peg.Str("+"))),
				peg.Seq(peg.Str("+"), peg.Not(peg.Chars("+/"))),
				peg.Str("?"),
			)), sp),
		),
		peg.Rule("primary",
			peg.Ref("capture"),
			peg.Ref("reference"),
			peg.Ref("literal"),
			peg.Ref("class"),
			peg.Ref("any"),
			peg.Ref("group"),
		),
		peg.RuleSeq("capture",
			peg.Capture("name", peg.Ref("ident")), peg.Str(":"), sp,
			peg.Capture("body", peg.Ref("prefixed")),
		),
		peg.RuleSeq("reference", peg.Capture("name", peg.Ref("ident")), peg.Not(peg.Str(":")), sp),
		peg.RuleSeq("literal", peg.Capture("text", peg.Ref("stringToken")), sp),
		peg.RuleSeq("class", peg.Capture("text", peg.Ref("classToken")), sp),
		peg.RuleSeq("any", peg.Str("_"), sp),
		peg.RuleSeq("group", peg.Str("("), sp, peg.Capture("inner", peg.Ref("choice")), peg.Str(")"), sp),
	}
}

// Parse reads text as a parsing expression. The result is dirty: clean it
// in the grammar that defines the rules it references.
func Parse(text string) (*peg.Expr, error) {
	g, err := notationGrammar()
	if err != nil {
		return nil, err
	}
	m, err := peg.Parse(g, "notation", source.Named("notation", text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return build(m.Capture("root"))
}

// MustParse is Parse for expressions known to be valid.
func MustParse(text string) *peg.Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func build(m *peg.Match) (*peg.Expr, error) {
	switch m.RuleName() {
	case "choice":
		return buildAll(m.Captures("alt"), peg.Choice)
	case "sequence":
		return buildAll(m.Captures("item"), peg.Seq)
	case "binary":
		left, err := build(m.Capture("left"))
		if err != nil || m.Capture("op") == nil {
			return left, err
		}
		right, err := build(m.Capture("right"))
		if err != nil {
			return nil, err
		}
		switch m.Capture("op").String() {
		case "*+":
			return peg.Until(left, right), nil
		case "++":
			return peg.UntilOnce(left, right), nil
		default:
			return peg.List(left, right), nil
		}
	case "prefixed":
		e, err := build(m.Capture("operand"))
		if err != nil {
			return nil, err
		}
		prefixes := m.Captures("prefix")
		for i := len(prefixes) - 1; i >= 0; i-- {
			if prefixes[i].String() == "&" {
				e = peg.And(e)
			} else {
				e = peg.Not(e)
			}
		}
		return e, nil
	case "suffixed":
		e, err := build(m.Capture("base"))
		if err != nil {
			return nil, err
		}
		for _, s := range m.Captures("suffix") {
			switch s.String() {
			case "*":
				e = peg.Star(e)
			case "+":
				e = peg.Plus(e)
			default:
				e = peg.Opt(e)
			}
		}
		return e, nil
	case "primary":
		return build(m.Child())
	case "capture":
		body, err := build(m.Capture("body"))
		if err != nil {
			return nil, err
		}
		return peg.Capture(m.Capture("name").String(), body), nil
	case "reference":
		return peg.Ref(m.Capture("name").String()), nil
	case "literal":
		text := m.Capture("text").String()
		s, err := unescape(text[1 : len(text)-1])
		if err != nil {
			return nil, fmt.Errorf("%w: literal %s: %w", ErrSyntax, text, err)
		}
		return peg.Str(s), nil
	case "class":
		return parseClass(m.Capture("text").String())
	case "any":
		return peg.Any(), nil
	case "group":
		return build(m.Capture("inner"))
	}
	return nil, fmt.Errorf("%w: unexpected %s %s", ErrSyntax, m.Expr(), m.Where())
}

func buildAll(ms []*peg.Match, combine func(...*peg.Expr) *peg.Expr) (*peg.Expr, error) {
	exprs := make([]*peg.Expr, 0, len(ms))
	for _, m := range ms {
		e, err := build(m)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return combine(exprs...), nil
}

// parseClass reads a classToken such as ^[a-z_].
func parseClass(text string) (*peg.Expr, error) {
	negated := strings.HasPrefix(text, "^")
	body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(text, "^"), "["), "]")
	runes, err := classRunes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: class %s: %w", ErrSyntax, text, err)
	}

	var chars strings.Builder
	var ranges []*peg.Expr
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if i+2 < len(runes) && runes[i+1].dash {
			ranges = append(ranges, peg.Range(r.r, runes[i+2].r))
			i += 2
			continue
		}
		chars.WriteRune(r.r)
	}

	switch {
	case len(ranges) == 0 && chars.Len() == 0:
		return nil, fmt.Errorf("%w: empty class %s", ErrSyntax, text)
	case len(ranges) == 0:
		if negated {
			return peg.NotChars(chars.String()), nil
		}
		return peg.Chars(chars.String()), nil
	case len(ranges) == 1 && chars.Len() == 0:
		if negated {
			ranges[0].Negated = true
		}
		return ranges[0], nil
	}
	alts := ranges
	if chars.Len() > 0 {
		alts = append(alts, peg.Chars(chars.String()))
	}
	if negated {
		return peg.Seq(peg.Not(peg.Choice(alts...)), peg.Any()), nil
	}
	return peg.Choice(alts...), nil
}

type classRune struct {
	r rune
	// dash is an unescaped '-'
	dash bool
}

func classRunes(body string) ([]classRune, error) {
	var out []classRune
	for len(body) > 0 {
		r, n := utf8.DecodeRuneInString(body)
		body = body[n:]
		if r != '\\' {
			out = append(out, classRune{r: r, dash: r == '-'})
			continue
		}
		if body == "" {
			return nil, errors.New("trailing backslash")
		}
		e, n := utf8.DecodeRuneInString(body)
		body = body[n:]
		out = append(out, classRune{r: unescapeRune(e)})
	}
	return out, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for len(s) > 0 {
		r, n := utf8.DecodeRuneInString(s)
		s = s[n:]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if s == "" {
			return "", errors.New("trailing backslash")
		}
		e, n := utf8.DecodeRuneInString(s)
		s = s[n:]
		b.WriteRune(unescapeRune(e))
	}
	return b.String(), nil
}

func unescapeRune(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return r
}
