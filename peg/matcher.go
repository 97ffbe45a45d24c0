package peg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/source"
)

// parseData is the state of one expression evaluated at one position.
type parseData struct {
	expr      *Expr
	src       source.Source
	begin     int
	end       int
	atomic    bool
	succeeded bool
	children  []*Match
	errors    *ParseErrors
	match     *Match
}

func newParseData(e *Expr, src source.Source, begin int, atomic bool) *parseData {
	d := &parseData{expr: e, src: src, begin: begin, end: begin, atomic: atomic}
	if !atomic {
		d.errors = newParseErrors(e, begin)
	}
	return d
}

// merge folds the outcome of a sub-expression into d.
func (d *parseData) merge(sub *parseData) {
	if d.atomic {
		return
	}
	if sub.atomic {
		d.errors.mergePosition(sub.begin)
	} else {
		d.errors.merge(sub.errors)
	}
	if sub.succeeded {
		d.children = append(d.children, sub.match)
	}
}

func (d *parseData) succeed(end int) {
	d.succeeded = true
	d.end = end
	d.match = &Match{expr: d.expr, src: d.src, begin: d.begin, end: end, children: d.children}
	if d.expr.Callbacks != nil {
		d.expr.Callbacks.ParseDo(d.match)
	}
}

func (d *parseData) fail() {
	d.succeeded = false
	d.end = d.begin
	d.children = nil
}

// Matcher runs clean expressions over a source. A Matcher keeps its memo
// table across calls, so it must not be reused after the grammar changed.
type Matcher struct {
	src       source.Source
	text      string
	strategy  MemoStrategy
	memoLimit int
	logger    *zap.Logger

	memo   memo
	atomic bool
	pos    int
	last   *parseData
}

// Option configures a Matcher.
type Option func(*Matcher)

func WithMemo(s MemoStrategy) Option {
	return func(m *Matcher) { m.strategy = s }
}

// WithMemoLimit caps the number of entries of a flat memo table. When the
// cap is reached the table is emptied.
func WithMemoLimit(n int) Option {
	return func(m *Matcher) { m.memoLimit = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMatcher(src source.Source, opts ...Option) *Matcher {
	m := &Matcher{
		src:      src,
		text:     src.Text(),
		strategy: MemoLimited,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset rewinds the matcher to the start of the source and drops the memo
// table.
func (m *Matcher) Reset() {
	m.pos = 0
	m.last = nil
	m.atomic = false
	if m.strategy == MemoFlat {
		m.memo = newFlatMemo(m.memoLimit)
	} else {
		m.memo = newLimitedMemo()
	}
}

func (m *Matcher) Source() source.Source { return m.src }

// Position is where the next call to Match starts. It advances past every
// successful match.
func (m *Matcher) Position() int { return m.pos }

// Match runs e at the current position. On failure it returns a
// *ParseError describing the farthest failure.
func (m *Matcher) Match(e *Expr) (*Match, error) {
	if !e.Clean() {
		return nil, fmt.Errorf("%w: %s", ErrDirtyExpression, e)
	}
	d := newParseData(e, m.src, m.pos, false)
	m.eval(d)
	m.last = d
	if !d.succeeded {
		return nil, &ParseError{Source: m.src, Errors: d.errors}
	}
	m.pos = d.end
	return d.match, nil
}

// Matches is Match reduced to its success.
func (m *Matcher) Matches(e *Expr) bool {
	_, err := m.Match(e)
	return err == nil
}

// Result returns the match of the last successful call, or nil.
func (m *Matcher) Result() *Match {
	if m.last == nil || !m.last.succeeded {
		return nil
	}
	return m.last.match
}

// Errors returns the failure record of the last call, or nil.
func (m *Matcher) Errors() *ParseErrors {
	if m.last == nil {
		return nil
	}
	return m.last.errors
}

// parse evaluates e at pos in a fresh parse data.
func (m *Matcher) parse(e *Expr, pos int) *parseData {
	d := newParseData(e, m.src, pos, m.atomic || e.Atomic)
	prev := m.atomic
	m.atomic = d.atomic
	m.eval(d)
	m.atomic = prev
	return d
}

// visit evaluates a child of d at pos through the memo table.
func (m *Matcher) visit(d *parseData, e *Expr, pos int) *parseData {
	prev := m.atomic
	m.atomic = d.atomic
	sub := m.memo.get(m, e, pos)
	m.atomic = prev
	d.merge(sub)
	return sub
}

func (m *Matcher) eval(d *parseData) {
	e := d.expr
	switch e.Kind {
	case KindRule, KindChoice:
		for _, alt := range e.Children {
			if sub := m.visit(d, alt, d.begin); sub.succeeded {
				d.succeed(sub.end)
				return
			}
		}
		d.fail()

	case KindSequence:
		pos := d.begin
		for _, c := range e.Children {
			sub := m.visit(d, c, pos)
			if !sub.succeeded {
				d.fail()
				return
			}
			pos = sub.end
		}
		d.succeed(pos)

	case KindAnd:
		if m.visit(d, e.Child(), d.begin).succeeded {
			d.succeed(d.begin)
		} else {
			d.fail()
		}

	case KindNot:
		if m.visit(d, e.Child(), d.begin).succeeded {
			d.fail()
		} else {
			d.succeed(d.begin)
		}

	case KindPlus:
		sub := m.visit(d, e.Child(), d.begin)
		if !sub.succeeded {
			d.fail()
			return
		}
		d.succeed(m.repeat(d, e.Child(), sub.end))

	case KindStar:
		d.succeed(m.repeat(d, e.Child(), d.begin))

	case KindOptional:
		if sub := m.visit(d, e.Child(), d.begin); sub.succeeded {
			d.succeed(sub.end)
		} else {
			d.succeed(d.begin)
		}

	case KindCapture:
		if sub := m.visit(d, e.Child(), d.begin); sub.succeeded {
			d.succeed(sub.end)
		} else {
			d.fail()
		}

	case KindString:
		if strings.HasPrefix(m.text[d.begin:], e.Text) {
			d.succeed(d.begin + len(e.Text))
		} else {
			d.fail()
		}

	case KindCharClass:
		r, size := m.peekRune(d.begin)
		if size > 0 && strings.ContainsRune(e.Text, r) != e.Negated {
			d.succeed(d.begin + size)
		} else {
			d.fail()
		}

	case KindRange:
		r, size := m.peekRune(d.begin)
		if size > 0 && (e.First <= r && r <= e.Last) != e.Negated {
			d.succeed(d.begin + size)
		} else {
			d.fail()
		}

	case KindAny:
		if _, size := m.peekRune(d.begin); size > 0 {
			d.succeed(d.begin + size)
		} else {
			d.fail()
		}

	default:
		d.fail()
	}
}

// repeat matches e as many times as possible from pos and returns the end
// of the last repetition. A repetition that consumes nothing ends the loop.
func (m *Matcher) repeat(d *parseData, e *Expr, pos int) int {
	for {
		sub := m.visit(d, e, pos)
		if !sub.succeeded || sub.end == pos {
			return pos
		}
		pos = sub.end
	}
}

func (m *Matcher) peekRune(pos int) (rune, int) {
	if pos >= len(m.text) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(m.text[pos:])
}

func (m *Matcher) memoPressure(entries, pos int) {
	m.logger.Warn("memo table emptied",
		zap.Int("entries", entries),
		zap.Int("position", pos),
		zap.String("source", m.src.Name()),
	)
}

// Parse matches the rule called name against the whole text and returns
// the match of the rule.
func Parse(g *Grammar, name string, src source.Source, opts ...Option) (*Match, error) {
	rule, err := g.Rule(name)
	if err != nil {
		return nil, err
	}
	whole, err := g.Clean(Seq(rule, EndOfInput()))
	if err != nil {
		return nil, err
	}
	m, err := NewMatcher(src, opts...).Match(whole)
	if err != nil {
		return nil, err
	}
	return m.Child(), nil
}
