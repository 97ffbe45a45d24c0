package peg

// Callbacks are hooks attached to an expression. ParseDo runs during the
// parse, each time the expression matches. The other hooks run on rule
// matches, around macro expansion, and may replace the match they are
// given.
type Callbacks interface {
	ParseDo(m *Match)
	PostParseTopDown(m *Match) (*Match, error)
	PostParseBottomUp(m *Match) (*Match, error)
	PostExpansionTopDown(m *Match) (*Match, error)
	PostExpansionBottomUp(m *Match) (*Match, error)
}

// NoCallbacks implements Callbacks by doing nothing. Embed it to override
// only some of the hooks.
type NoCallbacks struct{}

var _ Callbacks = NoCallbacks{}

func (NoCallbacks) ParseDo(*Match) {}

func (NoCallbacks) PostParseTopDown(m *Match) (*Match, error)      { return m, nil }
func (NoCallbacks) PostParseBottomUp(m *Match) (*Match, error)     { return m, nil }
func (NoCallbacks) PostExpansionTopDown(m *Match) (*Match, error)  { return m, nil }
func (NoCallbacks) PostExpansionBottomUp(m *Match) (*Match, error) { return m, nil }

// WithCallbacks attaches cb to e and returns e.
func WithCallbacks(e *Expr, cb Callbacks) *Expr {
	e.Callbacks = cb
	return e
}
