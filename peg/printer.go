package peg

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PrintTree writes the match tree rooted at m, one node per line, indented
// by depth. Leaves show the text they matched.
func PrintTree(w io.Writer, m *Match) error {
	return printTree(w, m, 0)
}

func printTree(w io.Writer, m *Match, depth int) error {
	indent := strings.Repeat("  ", depth)
	label := m.expr.String()
	if m.expr.Macro != nil {
		label += " (macro " + m.expr.Macro.MacroName() + ")"
	}
	if len(m.children) == 0 {
		_, err := fmt.Fprintf(w, "%s%s = %s\n", indent, label, strconv.Quote(m.OriginalString()))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", indent, label); err != nil {
		return err
	}
	for _, c := range m.children {
		if err := printTree(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// TreeString renders m like PrintTree.
func TreeString(m *Match) string {
	var b strings.Builder
	_ = PrintTree(&b, m)
	return b.String()
}

// PrintGrammar writes every rule of g as "name <- alternatives".
func PrintGrammar(w io.Writer, g *Grammar) error {
	for _, r := range g.Rules() {
		if _, err := fmt.Fprintln(w, RuleString(r)); err != nil {
			return err
		}
	}
	return nil
}

// RuleString renders the definition of a clean rule.
func RuleString(r *Expr) string {
	alts := make([]string, len(r.Children))
	for i, a := range r.Children {
		alts[i] = strings.TrimSpace(a.String())
	}
	def := strings.Join(alts, " | ")
	if def == "" {
		def = "<empty>"
	}
	prefix := ""
	if r.Atomic {
		prefix = "@"
	}
	return prefix + r.Name + " <- " + def
}
