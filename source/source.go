// Package source provides the text a matcher runs over, with mapping from
// byte offsets to line and column positions.
package source

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"
)

// Position is a resolved location inside a source text.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
	Composed bool
}

func (p Position) String() string {
	loc := fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	if p.Filename != "" {
		loc = fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	if p.Composed {
		loc += " (in composed source)"
	}
	return loc
}

// Source is the input of a parse. Offsets are byte offsets into Text.
type Source interface {
	Name() string
	Text() string
	Len() int
	Slice(begin, end int) string
	Where(offset int) Position
}

// Text is a Source backed by an in-memory string.
type Text struct {
	name     string
	text     string
	composed bool
	lines    []int // byte offset of each line start
}

var _ Source = (*Text)(nil)

// New returns an anonymous source over text.
func New(text string) *Text {
	return Named("", text)
}

// Named returns a source over text reported under name.
func Named(name, text string) *Text {
	t := &Text{name: name, text: text}
	t.lines = append(t.lines, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			t.lines = append(t.lines, i+1)
		}
	}
	return t
}

// Composed returns a source whose text was assembled from other sources
// by tree rewriting. Positions inside it do not map to any file.
func Composed(text string) *Text {
	t := Named("", text)
	t.composed = true
	return t
}

// ReadFile loads a file into a named source.
func ReadFile(path string) (*Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	return Named(path, string(data)), nil
}

func (t *Text) Name() string { return t.name }
func (t *Text) Text() string { return t.text }
func (t *Text) Len() int     { return len(t.text) }

// IsComposed reports whether the source was built by rewriting.
func (t *Text) IsComposed() bool { return t.composed }

// Slice returns text[begin:end], clamping both bounds to the text.
func (t *Text) Slice(begin, end int) string {
	begin = clamp(begin, 0, len(t.text))
	end = clamp(end, begin, len(t.text))
	return t.text[begin:end]
}

// Where maps a byte offset to a 1-based line and a 1-based column counted
// in runes.
func (t *Text) Where(offset int) Position {
	offset = clamp(offset, 0, len(t.text))
	line := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	start := t.lines[line]
	return Position{
		Filename: t.name,
		Offset:   offset,
		Line:     line + 1,
		Column:   utf8.RuneCountInString(t.text[start:offset]) + 1,
		Composed: t.composed,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
