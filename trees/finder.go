package trees

import "github.com/gnolang/pegmacro/peg"

// Finder selects which matching nodes Find returns.
type Finder int

const (
	// FinderFirst returns the first match in pre-order.
	FinderFirst Finder = iota
	// FinderLast returns the first match of a right to left walk.
	FinderLast
	// FinderAll returns every match in pre-order, but no match nested in
	// another one.
	FinderAll
)

// Find returns the nodes of root satisfying spec and lying between the
// node reached by the before specs and the node reached by the after
// specs.
//
// The before specs are matched in order along a left to right walk, each
// one after the node that satisfied the previous one; the after specs in
// reverse order along a right to left walk. Inclusive searches look
// between the two nodes found, exclusive searches outside of them. When a
// sequence of boundary specs cannot be satisfied, nothing is found.
func Find(root *peg.Match, spec Spec, finder Finder, before, after []Spec, inclusive bool) []*peg.Match {
	left, ok := trace(root, before, true, !inclusive)
	if !ok {
		return nil
	}
	right, ok := trace(root, after, false, !inclusive)
	if !ok {
		return nil
	}

	leftToRight := finder != FinderLast
	it := NewBoundedIterator(root, left, right, leftToRight, inclusive)

	var out []*peg.Match
	for it.HasNext() {
		m := it.Next()
		if !spec.Matches(m) {
			continue
		}
		out = append(out, m)
		if finder != FinderAll {
			return out
		}
		it.SkipChildren()
	}
	return out
}

// trace returns the path to the node satisfying the last of specs. With
// firstSpec set, the path to the node satisfying the first spec is
// returned instead, once the whole sequence is known to be satisfied.
func trace(root *peg.Match, specs []Spec, leftToRight, firstSpec bool) ([]*peg.Match, bool) {
	if len(specs) == 0 {
		return nil, true
	}
	it := NewIterator(root, leftToRight)
	var saved []*peg.Match
	found := 0
	for found < len(specs) && it.HasNext() {
		spec := specs[found]
		if !leftToRight {
			spec = specs[len(specs)-1-found]
		}
		if spec.Matches(it.Next()) {
			if firstSpec && saved == nil {
				saved = it.Trace()
			}
			found++
		}
	}
	if found < len(specs) {
		return nil, false
	}
	if saved != nil {
		return saved, true
	}
	return it.Trace(), true
}

func one(out []*peg.Match) *peg.Match {
	if len(out) == 1 {
		return out[0]
	}
	return nil
}

// HasMatch reports whether root, or a node below it, satisfies spec.
func HasMatch(root *peg.Match, spec Spec) bool { return First(root, spec) != nil }

// First returns the first node satisfying spec, root included.
func First(root *peg.Match, spec Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, nil, nil, true))
}

// FirstAfterFirst returns the first node satisfying spec after the node
// reached by before.
func FirstAfterFirst(root *peg.Match, spec Spec, before ...Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, before, nil, true))
}

// FirstAfterLast returns the first node satisfying spec after the node
// reached backwards by after.
func FirstAfterLast(root *peg.Match, spec Spec, after ...Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, nil, after, false))
}

// FirstBeforeLast returns the first node satisfying spec before the node
// reached backwards by after.
func FirstBeforeLast(root *peg.Match, spec Spec, after ...Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, nil, after, true))
}

// FirstBeforeFirst returns the first node satisfying spec before the node
// reached by before.
func FirstBeforeFirst(root *peg.Match, spec Spec, before ...Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, before, nil, false))
}

func FirstBetween(root *peg.Match, spec Spec, before, after []Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, before, after, true))
}

func FirstOutside(root *peg.Match, spec Spec, before, after []Spec) *peg.Match {
	return one(Find(root, spec, FinderFirst, before, after, false))
}

// Last returns the last node satisfying spec in a right to left walk,
// that is the first one found walking from the end.
func Last(root *peg.Match, spec Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, nil, nil, true))
}

func LastAfterFirst(root *peg.Match, spec Spec, before ...Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, before, nil, true))
}

func LastAfterLast(root *peg.Match, spec Spec, after ...Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, nil, after, false))
}

func LastBeforeLast(root *peg.Match, spec Spec, after ...Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, nil, after, true))
}

func LastBeforeFirst(root *peg.Match, spec Spec, before ...Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, before, nil, false))
}

func LastBetween(root *peg.Match, spec Spec, before, after []Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, before, after, true))
}

func LastOutside(root *peg.Match, spec Spec, before, after []Spec) *peg.Match {
	return one(Find(root, spec, FinderLast, before, after, false))
}

// All returns every node satisfying spec, without descending into the
// nodes it returns.
func All(root *peg.Match, spec Spec) []*peg.Match {
	return Find(root, spec, FinderAll, nil, nil, true)
}

func AllAfterFirst(root *peg.Match, spec Spec, before ...Spec) []*peg.Match {
	return Find(root, spec, FinderAll, before, nil, true)
}

func AllAfterLast(root *peg.Match, spec Spec, after ...Spec) []*peg.Match {
	return Find(root, spec, FinderAll, nil, after, false)
}

func AllBeforeLast(root *peg.Match, spec Spec, after ...Spec) []*peg.Match {
	return Find(root, spec, FinderAll, nil, after, true)
}

func AllBeforeFirst(root *peg.Match, spec Spec, before ...Spec) []*peg.Match {
	return Find(root, spec, FinderAll, before, nil, false)
}

func AllBetween(root *peg.Match, spec Spec, before, after []Spec) []*peg.Match {
	return Find(root, spec, FinderAll, before, after, true)
}

func AllOutside(root *peg.Match, spec Spec, before, after []Spec) []*peg.Match {
	return Find(root, spec, FinderAll, before, after, false)
}
