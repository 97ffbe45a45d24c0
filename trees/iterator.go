package trees

import "github.com/gnolang/pegmacro/peg"

type nodeState struct {
	match        *peg.Match
	upperHasNext bool
	next         int
	leftToRight  bool
}

func (s *nodeState) hasNext() bool { return s.next < len(s.match.Children()) }

func (s *nodeState) treeHasNext() bool { return s.upperHasNext || s.hasNext() }

func (s *nodeState) nextChild() *peg.Match {
	children := s.match.Children()
	i := s.next
	s.next++
	if !s.leftToRight {
		i = len(children) - 1 - i
	}
	return children[i]
}

// Iterator walks a match tree in pre-order, each node before its
// children. Right to left iteration visits the children of each node in
// reverse order.
type Iterator struct {
	root        *peg.Match
	leftToRight bool
	stack       []*nodeState
}

func NewIterator(root *peg.Match, leftToRight bool) *Iterator {
	return &Iterator{root: root, leftToRight: leftToRight}
}

func (it *Iterator) top() *nodeState { return it.stack[len(it.stack)-1] }

func (it *Iterator) HasNext() bool {
	return len(it.stack) == 0 || it.top().treeHasNext()
}

// Next returns the next node, or nil when the walk is over.
func (it *Iterator) Next() *peg.Match {
	if !it.HasNext() {
		return nil
	}
	if len(it.stack) == 0 {
		it.push(it.root, false)
		return it.root
	}
	for !it.top().hasNext() {
		it.stack = it.stack[:len(it.stack)-1]
	}
	parent := it.top()
	child := parent.nextChild()
	it.push(child, parent.treeHasNext())
	return child
}

func (it *Iterator) push(m *peg.Match, upperHasNext bool) {
	it.stack = append(it.stack, &nodeState{
		match:        m,
		upperHasNext: upperHasNext,
		leftToRight:  it.leftToRight,
	})
}

// SkipChildren makes the walk ignore the subtree of the node last
// returned by Next.
func (it *Iterator) SkipChildren() {
	if len(it.stack) == 0 || !it.HasNext() {
		return
	}
	top := it.top()
	top.next = len(top.match.Children())
}

// Trace returns the path from the root to the node last returned by Next.
func (it *Iterator) Trace() []*peg.Match {
	out := make([]*peg.Match, len(it.stack))
	for i, s := range it.stack {
		out[i] = s.match
	}
	return out
}
