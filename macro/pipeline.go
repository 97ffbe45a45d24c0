package macro

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/trees"
)

// Pipeline runs the post-parse callbacks, the macro expansion and the
// post-expansion callbacks over a parse result.
type Pipeline struct {
	logger *zap.Logger
	engine *Engine
}

func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger, engine: NewEngine(logger)}
}

func (p *Pipeline) Engine() *Engine { return p.engine }

func (p *Pipeline) Run(m *peg.Match) (*peg.Match, error) {
	m, err := postParse.Transform(m)
	if err != nil {
		return nil, fmt.Errorf("post-parse: %w", err)
	}
	m, err = p.engine.Transform(m)
	if err != nil {
		return nil, err
	}
	m, err = postExpansion.Transform(m)
	if err != nil {
		return nil, fmt.Errorf("post-expansion: %w", err)
	}
	p.logger.Debug("pipeline done", zap.String("where", m.Where()))
	return m, nil
}

type hook func(peg.Callbacks, *peg.Match) (*peg.Match, error)

// callbackPass calls topDown on the way down and bottomUp on the way up
// for every match of a rule with callbacks.
type callbackPass struct {
	topDown, bottomUp hook
}

var (
	postParse = callbackPass{
		topDown:  peg.Callbacks.PostParseTopDown,
		bottomUp: peg.Callbacks.PostParseBottomUp,
	}
	postExpansion = callbackPass{
		topDown:  peg.Callbacks.PostExpansionTopDown,
		bottomUp: peg.Callbacks.PostExpansionBottomUp,
	}
)

func (c callbackPass) Transform(m *peg.Match) (*peg.Match, error) {
	cb := m.Expr().Callbacks
	if m.Expr().Kind != peg.KindRule || cb == nil {
		return trees.TransformChildren(c, m)
	}
	m, err := c.topDown(cb, m)
	if err != nil {
		return nil, err
	}
	if m, err = trees.TransformChildren(c, m); err != nil {
		return nil, err
	}
	return c.bottomUp(cb, m)
}
