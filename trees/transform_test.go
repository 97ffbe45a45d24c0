package trees

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

type deepCopy struct{}

func (d deepCopy) Transform(m *peg.Match) (*peg.Match, error) {
	return TransformChildren(d, m)
}

func TestTransformChildrenShares(t *testing.T) {
	t.Parallel()
	m := parseCall(t, "f(x,y)")

	same, err := deepCopy{}.Transform(m)
	require.NoError(t, err)
	assert.Same(t, m, same)
}

func TestRewriteCopiesOnlyChangedPaths(t *testing.T) {
	t.Parallel()
	g := callGrammar()
	m, err := peg.Parse(g, "call", source.New("f(x,y)"))
	require.NoError(t, err)
	fname := m.Child().Child()

	renamed, err := Rewrite(m, func(n *peg.Match) (*peg.Match, error) {
		if n.IsRule("name") && n.String() == "y" {
			return peg.NewMatchAt(n.Expr(), source.New("zz"), 0, 2, nil), nil
		}
		return n, nil
	})
	require.NoError(t, err)

	assert.NotSame(t, m, renamed)
	assert.Equal(t, "f(x,zz)", renamed.String())
	assert.Equal(t, "f(x,y)", m.String(), "the original tree is untouched")
	assert.Same(t, fname, renamed.Child().Child(), "unchanged subtrees are shared")
	assert.Same(t, m.Expr(), renamed.Expr())

	args := All(renamed, Capture("arg"))
	require.Len(t, args, 2)
	assert.Same(t, All(m, Capture("arg"))[0], args[0])
}

func TestTransformErrors(t *testing.T) {
	t.Parallel()
	m := parseCall(t, "f(x)")
	boom := errors.New("boom")
	_, err := Rewrite(m, func(n *peg.Match) (*peg.Match, error) {
		if n.IsRule("name") {
			return nil, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
}
