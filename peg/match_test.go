package peg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/source"
)

func captureGrammar() *Grammar {
	return MustGrammar("captures",
		Rule("pair", Seq(Capture("a", Ref("word")), Str(" "), Capture("a", Ref("word")), Opt(Str(" "), Ref("nested")))),
		Rule("nested", Capture("a", Ref("word"))),
		Rule("word", Plus(Range('a', 'z'))),
	)
}

func TestCaptures(t *testing.T) {
	t.Parallel()
	m, err := Parse(captureGrammar(), "pair", source.New("ab cd ef"))
	require.NoError(t, err)

	caps := m.Captures("a")
	require.Len(t, caps, 2, "captures of sub-rules are not visible")
	assert.Equal(t, "ab", caps[0].String())
	assert.Equal(t, "cd", caps[1].String())
	assert.True(t, caps[0].IsRule("word"))

	assert.Same(t, caps[0], m.Capture("a"))
	assert.Nil(t, m.Capture("missing"))
	assert.Empty(t, m.Captures("missing"))
}

func TestMatchText(t *testing.T) {
	t.Parallel()
	g := MustGrammar("text", RuleSeq("padded", Str("  "), Plus(Range('a', 'z')), Str("  ")))
	m, err := Parse(g, "padded", source.Named("f.txt", "  xy  "))
	require.NoError(t, err)

	assert.Equal(t, "  xy  ", m.OriginalString())
	assert.Equal(t, "xy", m.String())
	assert.Equal(t, 6, m.Len())
	assert.False(t, m.Empty())
	assert.Equal(t, "padded", m.RuleName())
	assert.Equal(t, "", m.Child().RuleName())
	assert.Equal(t, "in [f.txt] at [f.txt:1:1]", m.Where())
}

func TestNewRuleMatch(t *testing.T) {
	t.Parallel()
	g := captureGrammar()
	m, err := Parse(g, "pair", source.New("ab cd"))
	require.NoError(t, err)
	words := m.Captures("a")

	none, err := g.NewRuleMatch("empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", none.RuleName())
	assert.Empty(t, none.Children())
	assert.True(t, none.Empty())

	one, err := g.NewRuleMatch("single", words[0])
	require.NoError(t, err)
	require.Len(t, one.Children(), 1)
	assert.Same(t, words[0], one.Child())
	assert.Equal(t, "ab", one.String())

	two, err := g.NewRuleMatch("double", words...)
	require.NoError(t, err)
	require.Len(t, two.Children(), 1)
	seq := two.Child()
	assert.Equal(t, KindSequence, seq.Expr().Kind)
	assert.Equal(t, []*Match{words[0], words[1]}, seq.Children())
	assert.Equal(t, "abcd", two.String())
	assert.Equal(t, "word word ", seq.Expr().Signature())
	assert.True(t, two.Position().Composed)
}

func TestNewMatchKeepsChildren(t *testing.T) {
	t.Parallel()
	g := captureGrammar()
	m, err := Parse(g, "pair", source.New("ab cd"))
	require.NoError(t, err)

	children := []*Match{m.Child()}
	rebuilt := NewMatch(m.Expr(), children)
	children[0] = nil
	assert.NotNil(t, rebuilt.Child(), "children are copied")
	assert.Equal(t, m.OriginalString(), rebuilt.OriginalString())
}

func TestPrintTree(t *testing.T) {
	t.Parallel()
	g := MustGrammar("print",
		RuleSeq("assign", Ref("name"), Str("="), Ref("name")),
		Atomic(Rule("name", Plus(Range('a', 'z')))),
	)
	m, err := Parse(g, "assign", source.New("ab=c"))
	require.NoError(t, err)

	want := strings.Join([]string{
		`assign`,
		`  name "=" name `,
		`    name = "ab"`,
		`    "=" = "="`,
		`    name = "c"`,
		``,
	}, "\n")
	assert.Equal(t, want, TreeString(m))
}

func TestPrintGrammar(t *testing.T) {
	t.Parallel()
	g := MustGrammar("print",
		Rule("value", Ref("name"), Seq(Str("("), Ref("value"), Str(")"))),
		Atomic(Rule("name", Plus(Range('a', 'z')))),
	)
	var b strings.Builder
	require.NoError(t, PrintGrammar(&b, g))
	assert.Equal(t, "@name <- [a-z]+\nvalue <- name | \"(\" value \")\"\n", b.String())
}
