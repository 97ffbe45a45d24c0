package macro_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

type recorder struct {
	peg.NoCallbacks
	name   string
	events *[]string
	fail   error
}

func (r recorder) record(event string, m *peg.Match) (*peg.Match, error) {
	*r.events = append(*r.events, event+" "+r.name+" "+m.String())
	if r.fail != nil {
		return nil, r.fail
	}
	return m, nil
}

func (r recorder) PostParseTopDown(m *peg.Match) (*peg.Match, error) {
	return r.record("parse-down", m)
}

func (r recorder) PostParseBottomUp(m *peg.Match) (*peg.Match, error) {
	return r.record("parse-up", m)
}

func (r recorder) PostExpansionTopDown(m *peg.Match) (*peg.Match, error) {
	return r.record("expansion-down", m)
}

func (r recorder) PostExpansionBottomUp(m *peg.Match) (*peg.Match, error) {
	return r.record("expansion-up", m)
}

func listGrammar(t *testing.T, events *[]string, itemFail error) *peg.Grammar {
	t.Helper()
	g, err := peg.NewGrammar("list",
		peg.WithCallbacks(
			peg.RuleSeq("list", peg.Ref("item"), peg.Star(peg.Str(","), peg.Ref("item"))),
			recorder{name: "list", events: events},
		),
		peg.WithCallbacks(
			peg.Rule("item", peg.Range('a', 'z')),
			recorder{name: "item", events: events, fail: itemFail},
		),
	)
	require.NoError(t, err)
	return g
}

func TestPipelineCallbackOrder(t *testing.T) {
	t.Parallel()
	var events []string
	g := listGrammar(t, &events, nil)

	m, err := peg.Parse(g, "list", source.New("a,b"))
	require.NoError(t, err)
	out, err := macro.NewPipeline(nil).Run(m)
	require.NoError(t, err)
	assert.Same(t, m, out)

	assert.Equal(t, []string{
		"parse-down list a,b",
		"parse-down item a",
		"parse-up item a",
		"parse-down item b",
		"parse-up item b",
		"parse-up list a,b",
		"expansion-down list a,b",
		"expansion-down item a",
		"expansion-up item a",
		"expansion-down item b",
		"expansion-up item b",
		"expansion-up list a,b",
	}, events)
}

func TestPipelineCallbackError(t *testing.T) {
	t.Parallel()
	var events []string
	boom := errors.New("boom")
	g := listGrammar(t, &events, boom)

	m, err := peg.Parse(g, "list", source.New("a"))
	require.NoError(t, err)
	_, err = macro.NewPipeline(nil).Run(m)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "post-parse")
}

type upper struct{ peg.NoCallbacks }

func (upper) PostExpansionBottomUp(m *peg.Match) (*peg.Match, error) {
	if m.String() != "b" {
		return m, nil
	}
	return peg.NewMatchAt(m.Expr(), source.Composed("B"), 0, 1, nil), nil
}

func TestPipelineRewritesAfterExpansion(t *testing.T) {
	t.Parallel()
	g, err := peg.NewGrammar("list",
		peg.RuleSeq("list", peg.Ref("item"), peg.Star(peg.Str(","), peg.Ref("item"))),
		peg.WithCallbacks(peg.Rule("item", peg.Range('a', 'z')), upper{}),
	)
	require.NoError(t, err)

	m, err := peg.Parse(g, "list", source.New("a,b,c"))
	require.NoError(t, err)
	out, err := macro.NewPipeline(nil).Run(m)
	require.NoError(t, err)
	assert.Equal(t, "a,B,c", out.String())
	assert.Same(t, m.Child().Child(), out.Child().Child(), "the first item is shared")
}
