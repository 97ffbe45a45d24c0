package quote

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gnolang/pegmacro/internal/template"
	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
)

// TemplateCompiler compiles macro bodies written as templates whose holes
// name captures of the macro syntax.
type TemplateCompiler struct{}

var _ macro.ExpanderCompiler = TemplateCompiler{}

// defaultSplice separates spliced captures with a space.
const defaultSplice = "#@|| ||"

var splicePrefixAtEnd = regexp.MustCompile(`#@\s*\|(?:\\.|[^|\\])*\|(?:\\.|[^|\\])*\|(?:\\.|[^|\\])*\|\s*$`)

type hole struct {
	name       string
	quantifier template.Quantifier
}

type templateExpander struct {
	code  string
	rule  string
	holes []hole
}

// Compile turns body into an expander that parses it as rule, each hole
// filled with the text of the corresponding captures.
func (TemplateCompiler) Compile(body string, captures []string, rule string) (macro.Expander, error) {
	if rule == "" {
		return nil, fmt.Errorf("template has no rule to parse as")
	}
	nodes, err := template.Parse(body)
	if err != nil {
		return nil, err
	}

	e := &templateExpander{rule: rule}
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *template.TextNode:
			b.WriteString(n.Content)
		case *template.HoleNode:
			if !slices.Contains(captures, n.Name()) {
				return nil, fmt.Errorf("unknown hole %s at %d: the syntax captures %v", n.Config, n.Position(), captures)
			}
			e.holes = append(e.holes, hole{name: n.Name(), quantifier: n.Config.Quantifier})
			num := strconv.Itoa(len(e.holes))
			switch {
			case !n.Config.Quantifier.Repeated():
				b.WriteString("#" + num)
			case splicePrefixAtEnd.MatchString(b.String()):
				b.WriteString(num)
			default:
				b.WriteString(defaultSplice + num)
			}
		}
	}
	e.code = b.String()
	return e, nil
}

func (e *templateExpander) Expand(m *peg.Match) (*peg.Match, error) {
	values := make([]any, len(e.holes))
	for i, h := range e.holes {
		caps := m.Captures(h.name)
		switch h.quantifier {
		case template.QuantNone:
			if len(caps) == 0 {
				return nil, fmt.Errorf("capture %s is missing %s", h.name, m.Where())
			}
			values[i] = insertValue(caps[0])
		case template.QuantZeroOrOne:
			values[i] = ""
			if len(caps) > 0 {
				values[i] = insertValue(caps[0])
			}
		case template.QuantOneOrMore, template.QuantZeroOrMore:
			if h.quantifier == template.QuantOneOrMore && len(caps) == 0 {
				return nil, fmt.Errorf("capture %s needs at least one match %s", h.name, m.Where())
			}
			items := make([]any, len(caps))
			for j, c := range caps {
				items[j] = insertValue(c)
			}
			values[i] = items
		}
	}
	return Dynamic(m.Expr().Grammar, e.rule, e.code, values...)
}

// insertValue keeps rule matches so their reinsertion is checked; other
// captures are plain text.
func insertValue(c *peg.Match) any {
	if c.Expr().IsRule() {
		return c
	}
	return c.String()
}
