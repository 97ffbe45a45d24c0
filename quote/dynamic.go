package quote

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
	"github.com/gnolang/pegmacro/trees"
)

// Dynamic parses template as rule after replacing its insert markers with
// values. A marker #N takes the Nth value; #@|L|S|R|N takes the Nth value,
// which must be a slice or an array, and renders its elements between L
// and R separated by S. A marker preceded by a backslash is left as is.
//
// A *peg.Match value renders as its text, and the result must hold a match
// of the same expression and text where it was inserted. Other values
// render with fmt.Sprint.
func Dynamic(g *peg.Grammar, rule, template string, values ...any) (*peg.Match, error) {
	code, specs, err := Substitute(template, values...)
	if err != nil {
		return nil, err
	}
	return Primitive(g, rule, code, specs...)
}

// Substitute is the text substitution of Dynamic. It returns the code to
// parse and the checks the parse result must pass.
func Substitute(template string, values ...any) (string, []trees.Spec, error) {
	mg, err := markers()
	if err != nil {
		return "", nil, err
	}
	m := peg.NewMatcher(source.New(template))
	frag, err := m.Match(mg.MustRule("dynamicSourceFragment"))
	if err != nil {
		return "", nil, fmt.Errorf("scanning quotation template: %w", err)
	}

	s := &substitution{template: template, values: values}
	out := template
	for _, marker := range trees.All(frag, trees.Rule("insertMarker")) {
		if trees.HasMatch(marker, trees.Rule("backslash")) {
			continue
		}
		insertion, err := s.insertion(marker)
		if err != nil {
			return "", nil, err
		}
		out = replace(out, marker.Begin()+s.diff, marker.End()+s.diff, insertion)
		s.diff += len(insertion) - marker.Len()
	}
	return out, s.specs, nil
}

type substitution struct {
	template string
	values   []any
	specs    []trees.Spec
	// diff maps template offsets to offsets in the output
	diff int
}

func (s *substitution) insertion(marker *peg.Match) (string, error) {
	num := trees.First(marker, trees.Rule("markerNumber")).String()
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > len(s.values) {
		return "", fmt.Errorf("%w: %s in [%s] with %d values", ErrInsertIndex, marker.String(), s.template, len(s.values))
	}
	value := s.values[n-1]
	at := marker.Begin() + s.diff

	if !trees.HasMatch(marker, trees.Rule("splicePrefix")) {
		return s.render(marker, value, at)
	}
	items, ok := spliceItems(value)
	if !ok {
		return "", fmt.Errorf("%w: %s got %T in [%s]", ErrSpliceValue, marker.String(), value, s.template)
	}
	if len(items) == 0 {
		return "", nil
	}
	delims := trees.All(marker, trees.Rule("spliceDelimiter"))
	left, sep, right := unescape(delims[0].OriginalString()), unescape(delims[1].OriginalString()), unescape(delims[2].OriginalString())

	var b strings.Builder
	b.WriteString(left)
	at += len(left)
	for i, item := range items {
		if i > 0 {
			b.WriteString(sep)
			at += len(sep)
		}
		str, err := s.render(marker, item, at)
		if err != nil {
			return "", err
		}
		b.WriteString(str)
		at += len(str)
	}
	b.WriteString(right)
	return b.String(), nil
}

// render returns the text of value and, for matches, records where the
// match must be found again.
func (s *substitution) render(marker *peg.Match, value any, at int) (string, error) {
	if m, ok := value.(*peg.Match); ok {
		if m == nil {
			return "", fmt.Errorf("%w: %s in [%s]", ErrInsertValue, marker.String(), s.template)
		}
		s.specs = append(s.specs, trees.HasMatchAtPos(m, at))
		return m.String(), nil
	}
	return fmt.Sprint(value), nil
}

func spliceItems(value any) ([]any, bool) {
	v := reflect.ValueOf(value)
	if k := v.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, true
}

// replace substitutes s[begin:end], clamping both ends to s.
func replace(s string, begin, end int, with string) string {
	begin = min(max(begin, 0), len(s))
	end = min(max(end, begin), len(s))
	return s[:begin] + with + s[end:]
}

// unescape resolves backslash escapes in splice delimiters.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for len(s) > 0 {
		r, n := utf8.DecodeRuneInString(s)
		s = s[n:]
		if r != '\\' || s == "" {
			b.WriteRune(r)
			continue
		}
		e, n := utf8.DecodeRuneInString(s)
		s = s[n:]
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(e)
		}
	}
	return b.String()
}
