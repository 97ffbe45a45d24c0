package quote

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/trees"
)

var (
	unquotationSpec = trees.Rule("unquotation")
	quasiSpec       = trees.Rule("quasiquotation")
	simpleSpec      = trees.Rule("simpleQuotation")
	escapedEndSpec  = trees.Rule("escapedQEndMarker")
	backslashSpec   = trees.Rule("backslash")
	hashLikeSpec    = trees.Or(trees.Rule("hash"), trees.Rule("hashat"))
	sourceSubSpec   = trees.Or(simpleSpec, quasiSpec, unquotationSpec, escapedEndSpec)
)

// Request is a quotation turned into a call to a quotation function: the
// rule to parse, the text with insert markers and the values to insert.
type Request struct {
	Rule    string
	Text    string
	Inserts []*peg.Match
}

// Render returns the host call evaluating the request:
// quote("rule", "text") or dynamicQuote("rule", "text", insert...).
func (r *Request) Render(syntax Syntax) string {
	fn := syntax.Primitive
	if len(r.Inserts) > 0 {
		fn = syntax.Dynamic
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s, %s", fn, strconv.Quote(r.Rule), strconv.Quote(r.Text))
	for _, in := range r.Inserts {
		b.WriteString(", ")
		b.WriteString(in.String())
	}
	b.WriteString(")")
	return b.String()
}

// Static reads a quotation match. Unquotations that belong to it become
// numbered markers, escaped end markers that belong to it lose their
// backslash.
func Static(syntax Syntax, quotation *peg.Match) (*Request, error) {
	id := trees.First(quotation, trees.Rule(syntax.Identifier))
	frag := trees.First(quotation, trees.Rule("sourceFragment"))
	if id == nil || frag == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuotation, quotation.Where())
	}
	s := &static{
		syntax:  syntax,
		text:    strings.TrimRightFunc(frag.OriginalString(), unicode.IsSpace),
		diff:    -frag.Begin(),
		counter: 1,
	}
	if err := s.replaceUnquotations(quotation, 0); err != nil {
		return nil, err
	}
	return &Request{Rule: id.String(), Text: s.text, Inserts: s.inserts}, nil
}

type static struct {
	syntax  Syntax
	text    string
	diff    int // offset from source positions to text positions
	counter int // number of the next marker
	nesting int // quotations and unquotations entered
	inserts []*peg.Match
}

func (s *static) edit(m *peg.Match, with string) {
	s.text = replace(s.text, m.Begin()+s.diff, m.End()+s.diff, with)
	s.diff += len(with) - m.Len()
}

func (s *static) replaceUnquotations(m *peg.Match, depth int) error {
	for _, sub := range trees.All(m, sourceSubSpec) {
		s.nesting++
		var err error
		switch {
		case quasiSpec.Matches(sub):
			err = s.replaceUnquotations(sub.Child(), depth+1)
		case simpleSpec.Matches(sub):
			if depth > 0 {
				err = s.replaceUnquotations(sub.Child(), depth)
			} else if s.nesting == 1 {
				for _, esc := range trees.All(sub.Child(), sourceSubSpec) {
					if escapedEndSpec.Matches(esc) {
						s.unescapeEndMarker(esc)
					}
				}
			}
		case escapedEndSpec.Matches(sub):
			if s.nesting == 2 {
				s.unescapeEndMarker(sub)
			}
		default:
			err = s.processUnquotation(sub.Child(), depth-1)
		}
		s.nesting--
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *static) unescapeEndMarker(esc *peg.Match) {
	s.edit(esc, esc.OriginalString()[1:])
}

// processUnquotation handles the regular unquotation or splice unq found
// at depth. An escaped unquotation counts one level shallower; the escape
// is consumed by the quotation it would otherwise belong to.
func (s *static) processUnquotation(unq *peg.Match, depth int) error {
	escaped := trees.FirstBeforeFirst(unq, backslashSpec, hashLikeSpec) != nil
	if escaped {
		depth++
	}
	if depth == 0 {
		return s.applyUnquotation(unq)
	}
	if escaped && depth == 1 {
		s.edit(trees.First(unq, backslashSpec), "")
	}
	return s.replaceUnquotations(unq, depth)
}

func (s *static) applyUnquotation(unq *peg.Match) error {
	value := trees.First(unq, trees.Or(unquotationSpec, trees.Rule(s.syntax.Expression)))
	if value == nil || value.IsRule("unquotation") {
		return fmt.Errorf("%w %s", ErrNegativeDepth, unq.Where())
	}
	s.inserts = append(s.inserts, value)

	hashLike := "#"
	if unq.IsRule("splice") {
		hashLike = "#@" + trees.First(unq, trees.Rule("spliceDelimiters")).String()
	}
	marker := hashLike + strconv.Itoa(s.counter)
	s.counter++
	if orig := unq.OriginalString(); orig != strings.TrimRightFunc(orig, unicode.IsSpace) {
		marker += " "
	}
	s.edit(unq, marker)
	return nil
}
