package trees

import "github.com/gnolang/pegmacro/peg"

type peeker struct {
	items []*peg.Match
	pos   int
}

func (p *peeker) hasNext() bool { return p.pos < len(p.items) }

func (p *peeker) peek() *peg.Match {
	if !p.hasNext() {
		return nil
	}
	return p.items[p.pos]
}

func (p *peeker) advance() { p.pos++ }

type boundState int

const (
	boundLeft boundState = iota
	boundMiddle
	boundRight
)

// BoundedIterator walks the part of a tree lying between two paths from
// the root. The left path ends at the node after which the walk starts,
// the right path at the node before which it stops. Both are walked in
// the direction of iteration.
//
// An inclusive walk returns the nodes strictly between the two path ends,
// skipping the ends and their subtrees. An exclusive walk returns the nodes
// outside of that region: before the left end and after the right end.
// Nodes that are ancestors of a path end are never returned.
type BoundedIterator struct {
	it        *Iterator
	left      *peeker
	right     *peeker
	inclusive bool
	rightOpen bool
	state     boundState
	next      *peg.Match
	prev      *peg.Match
}

func NewBoundedIterator(root *peg.Match, left, right []*peg.Match, leftToRight, inclusive bool) *BoundedIterator {
	if !leftToRight {
		left, right = right, left
	}
	b := &BoundedIterator{
		it:        NewIterator(root, leftToRight),
		left:      &peeker{items: left},
		right:     &peeker{items: right},
		inclusive: inclusive,
	}
	b.rightOpen = !b.right.hasNext()
	b.forward()
	return b
}

func (b *BoundedIterator) HasNext() bool { return b.next != nil }

// Next returns the next node, or nil when the walk is over.
func (b *BoundedIterator) Next() *peg.Match {
	b.prev = b.next
	b.forward()
	return b.prev
}

// SkipChildren makes the walk ignore the subtree of the node last
// returned by Next.
func (b *BoundedIterator) SkipChildren() {
	if b.prev == nil || len(b.prev.Children()) == 0 {
		return
	}
	// the walk already stepped into the subtree of prev: get past the
	// remaining siblings of the node it stands on
	for i := 0; i < len(b.prev.Children())-1; i++ {
		b.it.SkipChildren()
		b.it.Next()
	}
	b.it.SkipChildren()
	b.forward()
}

func (b *BoundedIterator) forward() {
	switch b.state {
	case boundLeft:
		b.leftItem()
	case boundMiddle:
		b.middleItem()
	default:
		b.rightItem()
	}
}

func (b *BoundedIterator) leftItem() {
	for b.left.hasNext() && b.it.HasNext() {
		m := b.it.Next()
		if m == b.left.peek() {
			b.left.advance()
			if m == b.right.peek() {
				b.right.advance()
			}
		} else if !b.inclusive {
			b.next = m
			return
		}
	}
	b.state = boundMiddle
	b.it.SkipChildren()
	b.middleItem()
}

func (b *BoundedIterator) middleItem() {
	for b.right.hasNext() && b.it.HasNext() {
		m := b.it.Next()
		if m == b.right.peek() {
			b.right.advance()
			continue
		}
		if b.inclusive {
			b.next = m
			return
		}
	}
	b.state = boundRight
	b.it.SkipChildren()
	b.rightItem()
}

func (b *BoundedIterator) rightItem() {
	if b.inclusive == b.rightOpen && b.it.HasNext() {
		b.next = b.it.Next()
	} else {
		b.next = nil
	}
}
