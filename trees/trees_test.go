package trees

import (
	"testing"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

// node builds a synthetic match of a rule called name. Leaves match their
// own name.
func node(g *peg.Grammar, name string, children ...*peg.Match) *peg.Match {
	rule := g.MustClean(peg.Rule(name))
	if len(children) == 0 {
		return peg.NewMatchAt(rule, source.New(name), 0, len(name), nil)
	}
	return peg.NewMatch(rule, children)
}

func names(ms []*peg.Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.RuleName())
	}
	return out
}

func testGrammar(t *testing.T) *peg.Grammar {
	t.Helper()
	return peg.MustGrammar(t.Name())
}
