// Package trie indexes words for prefix completion.
//
// Nodes live in one slice and refer to their children by index, so an index
// built once per repl session is a single allocation that grows in place.
package trie

import "sort"

// NodeIndex is the position of a node in its arena.
type NodeIndex int

// Arena stores all nodes of a trie.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	children map[rune]NodeIndex
	isEnd    bool
}

// NewArena returns an arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{nodes: make([]arenaNode, 0, 256)}
	arena.newNode()
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[rune]NodeIndex)})
	return idx
}

// Insert adds word. Inserting a word twice is a no-op.
func (a *Arena) Insert(word string) {
	current := NodeIndex(0)
	for _, r := range word {
		child, ok := a.nodes[current].children[r]
		if !ok {
			child = a.newNode()
			a.nodes[current].children[r] = child
		}
		current = child
	}
	a.nodes[current].isEnd = true
}

// find returns the node reached by prefix.
func (a *Arena) find(prefix string) (NodeIndex, bool) {
	current := NodeIndex(0)
	for _, r := range prefix {
		child, ok := a.nodes[current].children[r]
		if !ok {
			return 0, false
		}
		current = child
	}
	return current, true
}

// Contains reports whether word was inserted.
func (a *Arena) Contains(word string) bool {
	idx, ok := a.find(word)
	return ok && a.nodes[idx].isEnd
}

// Complete returns the inserted words starting with prefix, sorted.
func (a *Arena) Complete(prefix string) []string {
	idx, ok := a.find(prefix)
	if !ok {
		return nil
	}
	var words []string
	buf := []rune(prefix)
	var walk func(NodeIndex)
	walk = func(idx NodeIndex) {
		node := a.nodes[idx]
		if node.isEnd {
			words = append(words, string(buf))
		}
		keys := make([]rune, 0, len(node.children))
		for r := range node.children {
			keys = append(keys, r)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, r := range keys {
			buf = append(buf, r)
			walk(node.children[r])
			buf = buf[:len(buf)-1]
		}
	}
	walk(idx)
	return words
}

// Len returns the number of nodes, root included.
func (a *Arena) Len() int { return len(a.nodes) }

// Trie is a completion index over an arena.
type Trie struct {
	arena *Arena
}

// New returns an empty Trie.
func New(words ...string) *Trie {
	t := &Trie{arena: NewArena()}
	for _, w := range words {
		t.Insert(w)
	}
	return t
}

func (t *Trie) Insert(word string)              { t.arena.Insert(word) }
func (t *Trie) Contains(word string) bool       { return t.arena.Contains(word) }
func (t *Trie) Complete(prefix string) []string { return t.arena.Complete(prefix) }
