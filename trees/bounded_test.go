package trees

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/pegmacro/peg"
)

type boundedTree struct {
	nodes map[string]*peg.Match
	root  *peg.Match
}

// a(b(d(h,i),e(j,k)),c(f(l,m),g(n,o)))
func newBoundedTree(t *testing.T) boundedTree {
	gr := testGrammar(t)
	n := map[string]*peg.Match{}
	for _, leaf := range []string{"h", "i", "j", "k", "l", "m", "n", "o"} {
		n[leaf] = node(gr, leaf)
	}
	n["d"] = node(gr, "d", n["h"], n["i"])
	n["e"] = node(gr, "e", n["j"], n["k"])
	n["f"] = node(gr, "f", n["l"], n["m"])
	n["g"] = node(gr, "g", n["n"], n["o"])
	n["b"] = node(gr, "b", n["d"], n["e"])
	n["c"] = node(gr, "c", n["f"], n["g"])
	n["a"] = node(gr, "a", n["b"], n["c"])
	return boundedTree{nodes: n, root: n["a"]}
}

func (bt boundedTree) path(names ...string) []*peg.Match {
	out := make([]*peg.Match, len(names))
	for i, name := range names {
		out[i] = bt.nodes[name]
	}
	return out
}

func walk(it *BoundedIterator, skip bool) []string {
	var out []string
	for it.HasNext() {
		out = append(out, it.Next().RuleName())
		if skip {
			it.SkipChildren()
		}
	}
	return out
}

func TestBoundedIterator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		inclusive   bool
		left, right []string
		leftRight   []string
		rightLeft   []string
		skip        []string
	}{
		{
			name:      "inclusive to leaves",
			inclusive: true,
			left:      []string{"a", "b", "d", "i"},
			right:     []string{"a", "c", "g", "n"},
			leftRight: []string{"e", "j", "k", "f", "l", "m"},
			rightLeft: []string{"f", "m", "l", "e", "k", "j"},
			skip:      []string{"e", "f"},
		},
		{
			name:      "inclusive to inner nodes",
			inclusive: true,
			left:      []string{"a", "b", "d"},
			right:     []string{"a", "c", "g"},
			leftRight: []string{"e", "j", "k", "f", "l", "m"},
			rightLeft: []string{"f", "m", "l", "e", "k", "j"},
			skip:      []string{"e", "f"},
		},
		{
			name:      "exclusive to leaves",
			left:      []string{"a", "b", "e", "j"},
			right:     []string{"a", "c", "f", "m"},
			leftRight: []string{"d", "h", "i", "g", "n", "o"},
			rightLeft: []string{"g", "o", "n", "d", "i", "h"},
			skip:      []string{"d", "g"},
		},
		{
			name:      "exclusive to inner nodes",
			left:      []string{"a", "b", "e"},
			right:     []string{"a", "c", "f"},
			leftRight: []string{"d", "h", "i", "g", "n", "o"},
			rightLeft: []string{"g", "o", "n", "d", "i", "h"},
			skip:      []string{"d", "g"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bt := newBoundedTree(t)
			left, right := bt.path(tt.left...), bt.path(tt.right...)

			assert.Equal(t, tt.leftRight, walk(NewBoundedIterator(bt.root, left, right, true, tt.inclusive), false))
			assert.Equal(t, tt.rightLeft, walk(NewBoundedIterator(bt.root, left, right, false, tt.inclusive), false))
			assert.Equal(t, tt.skip, walk(NewBoundedIterator(bt.root, left, right, true, tt.inclusive), true))
		})
	}
}

func TestBoundedIteratorWithoutBounds(t *testing.T) {
	t.Parallel()
	bt := newBoundedTree(t)
	all := []string{"a", "b", "d", "h", "i", "e", "j", "k", "c", "f", "l", "m", "g", "n", "o"}

	assert.Equal(t, all, walk(NewBoundedIterator(bt.root, nil, nil, true, true), false))
	assert.Empty(t, walk(NewBoundedIterator(bt.root, nil, nil, true, false), false))

	leaf := bt.nodes["o"]
	assert.Equal(t, []string{"o"}, walk(NewBoundedIterator(leaf, nil, nil, true, true), false))
	assert.Empty(t, walk(NewBoundedIterator(leaf, nil, nil, true, false), false))
}
