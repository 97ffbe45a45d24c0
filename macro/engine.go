package macro

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
	"github.com/gnolang/pegmacro/trees"
)

// Engine expands the macros of a match tree. Expansions that keep
// reintroducing their own macro do not terminate.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Transform returns m with every macro use expanded. Subtrees without
// macros are shared with m.
func (e *Engine) Transform(m *peg.Match) (*peg.Match, error) {
	if m == nil {
		return nil, nil
	}
	expr := m.Expr()
	// a called macro expands wherever it is used
	if mac, ok := expr.Macro.(*Macro); ok && mac.strategy == Called {
		return e.expand(m, m, mac)
	}
	if expr.Kind == peg.KindRule && !expr.Atomic {
		if child := m.Child(); child != nil {
			if mac, ok := child.Expr().Macro.(*Macro); ok {
				return e.expand(m, child, mac)
			}
		}
	}
	return trees.TransformChildren(e, m)
}

// expand replaces the use mm of mac, found under parent.
func (e *Engine) expand(parent, mm *peg.Match, mac *Macro) (*peg.Match, error) {
	var err error
	if !mac.raw {
		if mm, err = trees.TransformChildren(e, mm); err != nil {
			return nil, err
		}
	}
	out, err := mac.Expand(mm)
	if err != nil {
		return nil, fmt.Errorf("expanding macro %s %s: %w", mac.name, mm.Where(), err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: macro %s %s", ErrNilExpansion, mac.name, mm.Where())
	}
	e.logger.Debug("macro expanded",
		zap.String("macro", mac.name),
		zap.Stringer("strategy", mac.strategy),
		zap.String("where", mm.Where()),
		zap.String("expansion", out.String()),
	)

	var expansion *peg.Match
	if out == mm {
		expansion, err = trees.TransformChildren(e, out)
	} else {
		expansion, err = e.Transform(out)
	}
	if err != nil {
		return nil, err
	}

	if mac.strategy != Called && parent.RuleName() != mac.target.Name {
		return nil, fmt.Errorf("%w: macro %s extends %s but was found in %s %s",
			ErrForeignParent, mac.name, mac.target.Name, parent.RuleName(), mm.Where())
	}

	switch mac.strategy {
	case As:
		if expansion.RuleName() != mac.target.Name {
			got := "a non-rule match"
			if expansion.Expr().IsRule() {
				got = "rule " + expansion.RuleName()
			}
			return nil, fmt.Errorf("%w: macro %s must expand to %s but produced %s %s",
				ErrWrongRule, mac.name, mac.target.Name, got, mm.Where())
		}
		return keepTrailingSpace(parent, expansion), nil
	case Under:
		children := append([]*peg.Match(nil), parent.Children()...)
		children[0] = keepTrailingSpace(mm, expansion)
		return peg.NewMatch(parent.Expr(), children), nil
	default:
		return keepTrailingSpace(parent, expansion), nil
	}
}

// keepTrailingSpace gives expansion the whitespace that ended the text it
// replaces, so the expansion does not run into what follows it.
func keepTrailingSpace(replaced, expansion *peg.Match) *peg.Match {
	text := replaced.OriginalString()
	trailing := text[len(strings.TrimRightFunc(text, unicode.IsSpace)):]
	out := expansion.OriginalString()
	if trailing == "" || strings.TrimRightFunc(out, unicode.IsSpace) != out {
		return expansion
	}
	src := source.Composed(out + trailing)
	return peg.NewMatchAt(expansion.Expr(), src, 0, src.Len(), expansion.Children())
}
