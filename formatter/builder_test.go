package formatter

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func listGrammar(t *testing.T) *peg.Grammar {
	t.Helper()
	g, err := peg.NewGrammar("list",
		peg.RuleSeq("list", peg.Ref("item"), peg.Star(peg.Str(","), peg.Ref("item"))),
		peg.Rule("item", peg.Range('a', 'z')),
	)
	require.NoError(t, err)
	return g
}

func parseError(t *testing.T, src source.Source) *peg.ParseError {
	t.Helper()
	_, err := peg.Parse(listGrammar(t), "list", src)
	var perr *peg.ParseError
	require.ErrorAs(t, err, &perr)
	return perr
}

func TestFromParseError(t *testing.T) {
	t.Parallel()
	d := FromParseError(parseError(t, source.Named("list.txt", "a,b;c")))

	assert.Equal(t, ParseFailure, d.Kind)
	assert.Equal(t, "list.txt", d.Filename)
	assert.Equal(t, 1, d.Start.Line)
	assert.Equal(t, 4, d.Start.Column)
	assert.Equal(t, `unexpected ";"`, d.Message)
	require.Len(t, d.Notes, 1)
	assert.Contains(t, d.Notes[0], "in ")
}

func TestFromParseErrorAtEnd(t *testing.T) {
	t.Parallel()
	d := FromParseError(parseError(t, source.New("a,")))
	assert.Equal(t, "unexpected end of input", d.Message)
	assert.Equal(t, "<input>", d.Filename)
}

func TestFormat(t *testing.T) {
	t.Parallel()
	src := source.Named("list.txt", "a,b;c")
	diags := []Diagnostic{{
		Kind:     ParseFailure,
		Filename: "list.txt",
		Start:    src.Where(3),
		End:      src.Where(3),
		Message:  `unexpected ";"`,
		Notes:    []string{"in list"},
	}}

	expected := `error: parse-error
 --> list.txt:1:4
  |
1 | a,b;c
  |    ^
  = unexpected ";"
note: in list

`
	assert.Equal(t, expected, Format(diags, src))
}

func TestFormatRangeWithIndent(t *testing.T) {
	t.Parallel()
	text := "one\n" + "\tlet x = bad;\n" + "two\n"
	src := source.Named("prog.ml", text)
	diags := []Diagnostic{{
		Kind:     "unknown-macro",
		Filename: "prog.ml",
		Start:    src.Where(13),
		End:      src.Where(16),
		Message:  "no such macro",
	}}

	expected := `error: unknown-macro
 --> prog.ml:2:10
  |
2 | let x = bad;
  |         ^^^
  = no such macro

`
	assert.Equal(t, expected, Format(diags, src))
}

func TestFormatMultipleDigitLineNumbers(t *testing.T) {
	t.Parallel()
	text := ""
	for i := 1; i <= 10; i++ {
		text += fmt.Sprintf("line%d\n", i)
	}
	src := source.Named("long.txt", text)
	pos := src.Where(len(text) - len("line10\n"))
	require.Equal(t, 10, pos.Line)

	diags := []Diagnostic{{Kind: Failure, Filename: "long.txt", Start: pos, End: pos, Message: "here"}}
	expected := `error: error
  --> long.txt:10:1
   |
10 | line10
   | ^
   = here

`
	assert.Equal(t, expected, Format(diags, src))
}

func TestFormatErrorWrapsParseFailures(t *testing.T) {
	t.Parallel()
	perr := parseError(t, source.Named("list.txt", "a,b;c"))
	err := fmt.Errorf("expanding macro m: %w", perr)

	out := FormatError(err)
	assert.Contains(t, out, "error: parse-error\n --> list.txt:1:4\n")
	assert.Contains(t, out, "note: expanding macro m\n")
	assert.Contains(t, out, "  = unexpected \";\"\n")
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "error: boom\n", FormatError(errors.New("boom")))
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"  \tx", 4, 8},
		{"éa", 2, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column), "%q col %d", tt.line, tt.column)
	}
}

func TestFindCommonIndent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		expected string
		lines    []string
	}{
		{
			name:     "whitespace indent",
			lines:    []string{"    if foo {", "        println()", "    }"},
			expected: "    ",
		},
		{
			name:     "tab indent",
			lines:    []string{"\tif foo {", "\t\tprintln()", "\t}"},
			expected: "\t",
		},
		{
			name:     "mixed indent (space and tab)",
			lines:    []string{"\t    if foo {", "\t    \tprintln()", "\t    }"},
			expected: "\t    ",
		},
		{
			name:     "no indent",
			lines:    []string{"if foo {", "println()", "}"},
			expected: "",
		},
		{
			name:     "empty line",
			lines:    []string{"    if foo {", "", "        println()", "    }"},
			expected: "    ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, findCommonIndent(tt.lines))
		})
	}
}
