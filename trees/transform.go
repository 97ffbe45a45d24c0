package trees

import "github.com/gnolang/pegmacro/peg"

// Transformer rewrites match trees. Implementations return the node they
// were given when nothing changes, which lets unchanged subtrees be shared
// between the old and new trees.
type Transformer interface {
	Transform(m *peg.Match) (*peg.Match, error)
}

// TransformFunc adapts a function to Transformer.
type TransformFunc func(m *peg.Match) (*peg.Match, error)

func (f TransformFunc) Transform(m *peg.Match) (*peg.Match, error) { return f(m) }

// TransformChildren applies t to every child of m. If no child changed, m
// itself is returned; otherwise a new node of the same expression is built
// over the new children.
func TransformChildren(t Transformer, m *peg.Match) (*peg.Match, error) {
	children := m.Children()
	var rebuilt []*peg.Match
	for i, c := range children {
		nc, err := t.Transform(c)
		if err != nil {
			return nil, err
		}
		if nc != c && rebuilt == nil {
			rebuilt = make([]*peg.Match, len(children))
			copy(rebuilt, children[:i])
		}
		if rebuilt != nil {
			rebuilt[i] = nc
		}
	}
	if rebuilt == nil {
		return m, nil
	}
	return peg.NewMatch(m.Expr(), rebuilt), nil
}

// Rewrite transforms every node of the tree bottom-up with f, sharing the
// subtrees f leaves untouched.
func Rewrite(m *peg.Match, f func(*peg.Match) (*peg.Match, error)) (*peg.Match, error) {
	var t TransformFunc
	t = func(n *peg.Match) (*peg.Match, error) {
		n, err := TransformChildren(t, n)
		if err != nil {
			return nil, err
		}
		return f(n)
	}
	return t(m)
}
