package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	t.Parallel()
	tr := New(":quit", ":q", ":tree", ":rule", "expression", "exprList", "identifier")

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"commands", ":", []string{":q", ":quit", ":rule", ":tree"}},
		{"shared prefix", "expr", []string{"exprList", "expression"}},
		{"exact word", "identifier", []string{"identifier"}},
		{"word and longer", ":q", []string{":q", ":quit"}},
		{"no match", "zz", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tr.Complete(tt.prefix))
		})
	}
}

func TestCompleteEmptyPrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "ab", "b"}, New("b", "ab", "a").Complete(""))
	assert.Nil(t, New().Complete(""))
}

func TestContains(t *testing.T) {
	t.Parallel()
	tr := New("rule", "rules")
	assert.True(t, tr.Contains("rule"))
	assert.True(t, tr.Contains("rules"))
	assert.False(t, tr.Contains("ru"))
	assert.False(t, tr.Contains("ruless"))
}

func TestInsertSharesNodes(t *testing.T) {
	t.Parallel()
	a := NewArena()
	a.Insert("abc")
	a.Insert("abd")
	a.Insert("abc")
	assert.Equal(t, 5, a.Len())
}

func TestMultibyte(t *testing.T) {
	t.Parallel()
	tr := New("λx", "λy", "lambda")
	assert.Equal(t, []string{"λx", "λy"}, tr.Complete("λ"))
}
