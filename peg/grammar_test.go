package peg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/source"
)

func TestSignatures(t *testing.T) {
	t.Parallel()
	g := MustGrammar("sig", Rule("r", Str("x")))

	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{"string", Str("ab"), `"ab"`},
		{"escaped string", Str("a\"\n"), `"a\"\n"`},
		{"sequence has trailing space", Seq(Str("a"), Str("b")), `"a" "b" `},
		{"choice", Choice(Str("a"), Str("b")), `"a" | "b"`},
		{"choice of sequences", Choice(Seq(Str("a"), Str("b")), Str("c")), `"a" "b"  | "c"`},
		{"sequence of choice", Seq(Choice(Str("a"), Str("b")), Str("c")), `("a" | "b") "c" `},
		{"star over sequence", Star(Str("a"), Str("b")), `("a" "b" )*`},
		{"plus", Plus(Ref("r")), `r+`},
		{"optional over choice", Opt(Choice(Str("a"), Str("b"))), `("a" | "b")?`},
		{"not", Not(Str("a")), `!"a"`},
		{"and over star", And(Star(Str("a"))), `&"a"*`},
		{"not over sequence", Not(Str("a"), Str("b")), `!("a" "b" )`},
		{"capture", Capture("c", Ref("r")), `c:r`},
		{"capture over choice", Capture("c", Choice(Ref("r"), Str("y"))), `c:(r | "y")`},
		{"range", Range('a', 'z'), `[a-z]`},
		{"negated range", NotRange('0', '9'), `^[0-9]`},
		{"class", Chars("ab-"), `[ab\-]`},
		{"negated class", NotChars(" \n"), `^[ \n]`},
		{"any", Any(), `_`},
		{"end of input", EndOfInput(), `!_`},
		{"empty sequence", Seq(), `<empty>`},
		{"reference resolves to rule", Ref("r"), `r`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, err := g.Clean(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, clean.Signature())
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	t.Parallel()
	g := MustGrammar("idem",
		Rule("expr", Seq(Ref("term"), Star(Str("+"), Ref("term")))),
		Rule("term", Seq(Str("("), Ref("expr"), Str(")")), Plus(Range('0', '9'))),
	)

	expr := g.MustRule("expr")
	again, err := g.Clean(expr)
	require.NoError(t, err)
	assert.Same(t, expr, again)

	body := expr.Children[0]
	assert.Same(t, body, g.MustClean(body))

	fresh := g.MustClean(Seq(Ref("term"), Star(Str("+"), Ref("term"))))
	assert.Same(t, body, fresh, "equal signatures are unified")

	term := g.MustRule("term")
	assert.Same(t, expr, term.Children[0].Children[1], "cycles resolve to the registered rule")
}

func TestCleanUnification(t *testing.T) {
	t.Parallel()
	g := MustGrammar("unify", Rule("r", Str("x")))

	a := g.MustClean(Seq(Str("a"), Str("b")))
	b := g.MustClean(Seq(Str("a"), Str("b")))
	assert.Same(t, a, b)

	atomic := g.MustClean(Atomic(Seq(Str("a"), Str("b"))))
	assert.NotSame(t, a, atomic, "atomicity is part of the identity")

	assert.NotSame(t, g.MustClean(Seq()), g.MustClean(Choice()), "kinds are never unified")

	single := g.MustClean(Seq(Str("a")))
	assert.Equal(t, KindString, single.Kind, "single element sequences collapse")

	r1, err := g.CleanUnregisteredRule(Rule("local", Str("a")))
	require.NoError(t, err)
	r2, err := g.CleanUnregisteredRule(Rule("local", Str("a")))
	require.NoError(t, err)
	assert.NotSame(t, r1, r2, "rules are never unified")
	assert.NotEqual(t, r1.ID, r2.ID)
	_, ok := g.LookupRule("local")
	assert.False(t, ok)
}

func TestCleanKeepsNestedAtomicity(t *testing.T) {
	t.Parallel()
	g := MustGrammar("atomic", Rule("r", Str("x")))

	plain := g.MustClean(Star(Seq(Ref("r"), Str("b"))))
	nested := g.MustClean(Star(Atomic(Seq(Ref("r"), Str("b")))))
	assert.Equal(t, plain.Signature(), nested.Signature())
	assert.NotSame(t, plain, nested, "an atomic operand is part of the identity")
	assert.True(t, nested.Child().Atomic)
	assert.False(t, plain.Child().Atomic)

	wrapped := g.MustClean(Atomic(Seq(Ref("r"))))
	assert.Equal(t, KindSequence, wrapped.Kind, "an atomic wrapper of a rule does not collapse")
	assert.True(t, wrapped.Atomic)
	assert.Same(t, g.MustRule("r"), wrapped.Child())

	assert.Equal(t, KindString, g.MustClean(Atomic(Seq(Str("a")))).Kind, "atomic elements still collapse")
}

func TestAtomicSingleElementMatchesAsLeaf(t *testing.T) {
	t.Parallel()
	g := MustGrammar("leaf",
		Rule("top", Star(Atomic(Seq(Ref("pair"))))),
		RuleSeq("pair", Ref("letter"), Ref("letter")),
		Rule("letter", Range('a', 'z')),
	)

	m, err := Parse(g, "top", source.New("abcd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", m.String())
	items := m.Child().Children()
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Empty(t, item.Children(), "atomic matches hide their structure")
	}
}

func TestGrammarErrors(t *testing.T) {
	t.Parallel()

	_, err := NewGrammar("dup", Rule("a", Str("x")), Rule("a", Str("y")))
	assert.True(t, errors.Is(err, ErrDuplicateRule))

	_, err = NewGrammar("ref", Rule("a", Ref("missing")))
	assert.True(t, errors.Is(err, ErrUnresolvedReference))

	g := MustGrammar("ok", Rule("a", Str("x")))
	err = g.UnregisterRule(Rule("nope"))
	assert.True(t, errors.Is(err, ErrUnknownRule))

	_, err = g.Rule("nope")
	assert.True(t, errors.Is(err, ErrUnknownRule))

	err = g.RegisterRule(Str("x"))
	assert.True(t, errors.Is(err, ErrNotRule))
}

func TestRuleAlternatives(t *testing.T) {
	t.Parallel()
	g := MustGrammar("alts", Rule("target", Str("base")))
	target := g.MustRule("target")

	tail, err := g.CleanUnregisteredRule(Rule("tail", Str("t")))
	require.NoError(t, err)
	head1, err := g.CleanUnregisteredRule(Rule("head1", Str("h1")))
	require.NoError(t, err)
	head2, err := g.CleanUnregisteredRule(Rule("head2", Str("h2")))
	require.NoError(t, err)

	require.NoError(t, g.AddRuleAlternative(target, tail, false))
	require.NoError(t, g.AddRuleAlternative(target, head1, true))
	require.NoError(t, g.AddRuleAlternative(target, head2, true))

	names := func() []string {
		var out []string
		for _, c := range target.Children {
			out = append(out, c.String())
		}
		return out
	}
	assert.Equal(t, []string{"head2", "head1", `"base"`, "tail"}, names())

	err = g.AddRuleAlternative(target, tail, false)
	assert.True(t, errors.Is(err, ErrDuplicateRule))

	require.NoError(t, g.RemoveRuleAlternative(target, head1))
	assert.Equal(t, []string{"head2", `"base"`, "tail"}, names())
	_, ok := g.LookupRule("head1")
	assert.False(t, ok)

	err = g.RemoveRuleAlternative(target, head1)
	assert.True(t, errors.Is(err, ErrUnknownRule))
}

func TestRulesSorted(t *testing.T) {
	t.Parallel()
	g := MustGrammar("sorted", Rule("b", Str("b")), Rule("a", Ref("b")), Rule("c", Ref("a")))
	var names []string
	for _, r := range g.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Same(t, g, g.MustRule("a").Grammar)
}
