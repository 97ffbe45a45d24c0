package quote

import (
	"fmt"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
	"github.com/gnolang/pegmacro/trees"
)

// Primitive parses the whole of code as rule and checks the result against
// specs. It returns the match of rule.
func Primitive(g *peg.Grammar, rule, code string, specs ...trees.Spec) (*peg.Match, error) {
	r, err := g.Rule(rule)
	if err != nil {
		return nil, fmt.Errorf("quoting %s: %w", rule, err)
	}
	wrap, err := g.Clean(peg.Seq(r, peg.EndOfInput()))
	if err != nil {
		return nil, err
	}

	m := peg.NewMatcher(source.Named("quotation", code))
	result, err := m.Match(wrap)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s [%s]': %w", ErrInvalidParse, rule, code, err)
	}
	for _, spec := range specs {
		if !spec.Matches(result) {
			return nil, fmt.Errorf("%w: parsing %q did not satisfy %s", ErrVerification, code, spec)
		}
	}
	return trees.First(result, trees.Expr(r)), nil
}
