package peg

import (
	"fmt"
	"strings"

	"github.com/gnolang/pegmacro/source"
)

// Match is an immutable node of a parse tree: an expression that matched
// the span [Begin, End) of a source. Rewrites build new matches and share
// the unchanged ones, so pointer identity tells whether a subtree changed.
type Match struct {
	expr     *Expr
	src      source.Source
	begin    int
	end      int
	children []*Match
}

// NewMatchAt builds a match over an existing source.
func NewMatchAt(expr *Expr, src source.Source, begin, end int, children []*Match) *Match {
	m := &Match{expr: expr, src: src, begin: begin, end: end}
	if len(children) > 0 {
		m.children = append([]*Match(nil), children...)
	}
	return m
}

// NewMatch builds a synthetic match of a clean expression whose text is the
// concatenation of the children's text.
func NewMatch(expr *Expr, children []*Match) *Match {
	var b strings.Builder
	for _, c := range children {
		b.WriteString(c.OriginalString())
	}
	src := source.Composed(b.String())
	return NewMatchAt(expr, src, 0, src.Len(), children)
}

// NewRuleMatch builds a match of a new rule called name whose single
// alternative is the sequence of the children's expressions.
func (g *Grammar) NewRuleMatch(name string, children ...*Match) (*Match, error) {
	exprs := make([]*Expr, len(children))
	for i, c := range children {
		exprs[i] = c.expr
	}
	seq, err := g.Clean(Seq(exprs...))
	if err != nil {
		return nil, err
	}
	rule, err := g.Clean(Rule(name, seq))
	if err != nil {
		return nil, err
	}
	switch len(children) {
	case 0:
		return NewMatch(rule, nil), nil
	case 1:
		return NewMatch(rule, children), nil
	default:
		return NewMatch(rule, []*Match{NewMatch(seq, children)}), nil
	}
}

func (m *Match) Expr() *Expr           { return m.expr }
func (m *Match) Source() source.Source { return m.src }
func (m *Match) Begin() int            { return m.begin }
func (m *Match) End() int              { return m.end }
func (m *Match) Len() int              { return m.end - m.begin }
func (m *Match) Empty() bool           { return m.end == m.begin }

// Children returns the sub-matches. The slice must not be modified.
func (m *Match) Children() []*Match { return m.children }

// Child returns the first sub-match, or nil.
func (m *Match) Child() *Match {
	if len(m.children) == 0 {
		return nil
	}
	return m.children[0]
}

// OriginalString returns the matched text as it appears in the source.
func (m *Match) OriginalString() string {
	return m.src.Slice(m.begin, m.end)
}

// String returns the matched text without surrounding whitespace.
func (m *Match) String() string {
	return strings.TrimSpace(m.OriginalString())
}

// RuleName returns the name of the matched rule, or "" if the match is not
// a rule match.
func (m *Match) RuleName() string {
	if m.expr.Kind != KindRule {
		return ""
	}
	return m.expr.Name
}

// IsRule reports whether the match is a match of the rule called name.
func (m *Match) IsRule(name string) bool {
	return m.expr.IsRule(name)
}

// Position returns the start of the match.
func (m *Match) Position() source.Position {
	return m.src.Where(m.begin)
}

// Where describes the location of the match for error messages.
func (m *Match) Where() string {
	name := m.src.Name()
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("in [%s] at [%s]", name, m.Position())
}

// Captures returns the matches captured under name. The search does not
// descend into sub-rules nor into the captures it finds.
func (m *Match) Captures(name string) []*Match {
	var out []*Match
	for _, c := range m.children {
		out = c.captures(name, out)
	}
	return out
}

func (m *Match) captures(name string, out []*Match) []*Match {
	switch m.expr.Kind {
	case KindRule:
		return out
	case KindCapture:
		if m.expr.Name == name {
			if c := m.Child(); c != nil {
				out = append(out, c)
			}
			return out
		}
	}
	for _, c := range m.children {
		out = c.captures(name, out)
	}
	return out
}

// Capture returns the first capture called name, or nil.
func (m *Match) Capture(name string) *Match {
	if cs := m.Captures(name); len(cs) > 0 {
		return cs[0]
	}
	return nil
}
