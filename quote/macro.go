package quote

import (
	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/trees"
)

// Macro returns the quotation macro of g: a raw macro that makes
// quotations alternatives of syntax.Expression and expands each into a
// call of syntax.Primitive or syntax.Dynamic. The quotation rules must
// already be in g.
func Macro(g *peg.Grammar, syntax Syntax) (*macro.Macro, error) {
	expand := func(m *peg.Match) (*peg.Match, error) {
		q := trees.First(m, trees.Rule("quotation"))
		if q == nil {
			q = m
		}
		req, err := Static(syntax, q)
		if err != nil {
			return nil, err
		}
		return Primitive(g, syntax.Expression, req.Render(syntax))
	}
	return macro.New(g, macro.Options{
		Name:     MacroName,
		Target:   syntax.Expression,
		Syntax:   peg.Ref("quotation"),
		Expander: macro.ExpanderFunc(expand),
		Strategy: macro.As,
		Raw:      true,
	})
}
