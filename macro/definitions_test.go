package macro_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/quote"
)

const definitions = `
macros:
  - name: unless
    strategy: as
    target: statement
    syntax: '"unless" spacing lParen cond:expression rParen body:statement'
    template: "if (!(:[cond])) :[body]"
  - name: sum
    strategy: replaces
    target: primary
    rule: parenExpression
    priority: true
    syntax: '"sum" spacing lParen (term:unaryExpression comma?)* rParen'
    template: "(0#@| + | + ||:[[term]]*)"
`

func TestLoadDefinitions(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "macros.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definitions), 0o644))

	defs, err := macro.LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "unless", defs[0].Name)
	assert.Equal(t, "statement", defs[0].Target)
	assert.Equal(t, "parenExpression", defs[1].Rule)

	_, err = macro.LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseDefinitionsErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"no name", "macros:\n  - syntax: '\"x\"'\n"},
		{"no syntax", "macros:\n  - name: x\n"},
		{"unknown field", "macros:\n  - name: x\n    syntax: '\"x\"'\n    body: y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := macro.ParseDefinitions([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestBuildDefinitions(t *testing.T) {
	t.Parallel()
	g := grammar(t)
	defs, err := macro.ParseDefinitions([]byte(definitions))
	require.NoError(t, err)

	macros, err := macro.BuildAll(g, defs, quote.TemplateCompiler{})
	require.NoError(t, err)
	require.Len(t, macros, 2)
	assert.Equal(t, macro.As, macros[0].Strategy())
	assert.Equal(t, macro.Replaces, macros[1].Strategy())

	scope := macro.NewScope(macros...)
	require.NoError(t, scope.Enter())
	assert.True(t, scope.Active())

	out := expand(t, parse(t, g, "unless (ready) print sum(1, 2, 3);"))
	assert.Equal(t, "if (!(ready)) print (0 + 1 + 2 + 3);", out.String())

	require.NoError(t, scope.Leave())
	assert.False(t, macros[0].Enabled())
	assert.False(t, macros[1].Enabled())
	assert.False(t, scope.Active())
}

const calledDefinitions = `
macros:
  - name: answer
    strategy: called
    rule: integerLiteral
    syntax: '"answer" spacing'
    template: "42"
  - name: ask
    strategy: as
    target: statement
    syntax: '"ask" spacing a:answer semicolon'
    template: "print :[a];"
`

func TestBuildDefinitionsUsingCalledMacro(t *testing.T) {
	t.Parallel()
	g := grammar(t)
	defs, err := macro.ParseDefinitions([]byte(calledDefinitions))
	require.NoError(t, err)

	macros, err := macro.BuildAll(g, defs, quote.TemplateCompiler{})
	require.NoError(t, err)
	require.Len(t, macros, 2)
	assert.Equal(t, macro.Called, macros[0].Strategy())
	assert.False(t, macros[0].Enabled())
	assert.False(t, macros[1].Enabled())
	_, ok := g.LookupRule("answer")
	assert.False(t, ok, "the called macro is not left in the grammar")

	scope := macro.NewScope(macros...)
	require.NoError(t, scope.Enter())
	out := expand(t, parse(t, g, "ask answer;"))
	assert.Equal(t, "print 42;", out.String())
	require.NoError(t, scope.Leave())
}

func TestScopeBuildEnablesInOrder(t *testing.T) {
	t.Parallel()
	g := grammar(t)
	defs, err := macro.ParseDefinitions([]byte(calledDefinitions))
	require.NoError(t, err)

	scope := macro.NewScope()
	require.NoError(t, scope.Enter())
	require.NoError(t, scope.Build(g, defs, quote.TemplateCompiler{}))
	require.Len(t, scope.Macros(), 2)
	assert.True(t, scope.Macros()[0].Enabled())
	assert.True(t, scope.Macros()[1].Enabled())

	out := expand(t, parse(t, g, "let x = 1; ask answer; print x;"))
	assert.Equal(t, "let x = 1; print 42; print x;", out.String())
	require.NoError(t, scope.Leave())

	err = macro.NewScope().Build(g, defs[1:], quote.TemplateCompiler{})
	assert.ErrorIs(t, err, peg.ErrUnresolvedReference, "ask alone cannot see answer")
}

func TestBuildDefinitionErrors(t *testing.T) {
	t.Parallel()
	g := grammar(t)

	tests := []struct {
		name string
		def  macro.Definition
	}{
		{"bad strategy", macro.Definition{Name: "a", Strategy: "around", Target: "statement", Syntax: `"a"`}},
		{"bad syntax", macro.Definition{Name: "b", Target: "statement", Syntax: `"b`}},
		{"unknown hole", macro.Definition{Name: "c", Target: "statement", Syntax: `x:expression`, Template: ":[y];"}},
		{"called with a target", macro.Definition{Name: "d", Strategy: "called", Target: "statement", Syntax: `"d"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Build(g, quote.TemplateCompiler{})
			assert.Error(t, err)
		})
	}

	_, err := macro.Definition{Name: "e", Target: "statement", Syntax: `"e"`, Template: "x;"}.Build(g, nil)
	assert.Error(t, err, "a template needs a compiler")
}

func TestScopeRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	g := grammar(t)
	noop := macro.ExpanderFunc(func(m *peg.Match) (*peg.Match, error) { return m, nil })

	a, err := macro.New(g, macro.Options{Name: "a", Target: "statement", Syntax: peg.Str("%a"), Expander: noop})
	require.NoError(t, err)
	clash, err := macro.New(g, macro.Options{Name: "a", Target: "statement", Syntax: peg.Str("%b"), Expander: noop})
	require.NoError(t, err)

	scope := macro.NewScope(a, clash)
	err = scope.Enter()
	assert.ErrorIs(t, err, peg.ErrDuplicateRule)
	assert.False(t, a.Enabled(), "macros enabled before the failure are disabled again")
	assert.False(t, scope.Active())
	require.NoError(t, scope.Leave())
}
