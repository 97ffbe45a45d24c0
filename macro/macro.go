// Package macro extends a grammar with user defined syntax that expands,
// after parsing, into ordinary constructs of the same grammar.
package macro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/pegmacro/peg"
)

var (
	ErrStrategyMismatch = errors.New("strategy does not match the target rule")
	ErrNoExpander       = errors.New("macro without body")
	ErrAlreadyEnabled   = errors.New("macro already enabled")
	ErrNotEnabled       = errors.New("macro not enabled")
	ErrWrongRule        = errors.New("macro expanded to the wrong rule")
	ErrForeignParent    = errors.New("macro appears under a rule it does not extend")
	ErrNilExpansion     = errors.New("macro expanded to nothing")
)

// Strategy tells how the expansion of a macro replaces the macro use in
// the match tree.
type Strategy int

const (
	// As macros expand to a match of the target rule, which replaces the
	// node of the target rule holding the macro.
	As Strategy = iota
	// Under macros expand to a match that replaces the macro itself, under
	// the node of the target rule.
	Under
	// Replaces macros expand to anything, which replaces the node of the
	// target rule.
	Replaces
	// Called macros have no target rule. They are referenced by name from
	// other syntax and expand in place.
	Called
)

var strategyNames = [...]string{As: "as", Under: "under", Replaces: "replaces", Called: "called"}

func (s Strategy) String() string {
	if s >= As && s <= Called {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if strings.EqualFold(s, name) {
			return Strategy(i), nil
		}
	}
	return As, fmt.Errorf("unknown macro strategy %q", s)
}

// Expander computes the expansion of a macro use.
type Expander interface {
	Expand(m *peg.Match) (*peg.Match, error)
}

// ExpanderFunc adapts a function to Expander.
type ExpanderFunc func(m *peg.Match) (*peg.Match, error)

func (f ExpanderFunc) Expand(m *peg.Match) (*peg.Match, error) { return f(m) }

// Options describe a macro.
type Options struct {
	Name string
	// Target is the rule the macro extends. Called macros have none.
	Target string
	Syntax *peg.Expr
	// Expander may be nil for called macros, which then leave their match
	// untouched.
	Expander Expander
	Strategy Strategy
	// Raw macros see their syntax unexpanded.
	Raw bool
	// Priority macros are tried before the alternatives of the target.
	Priority bool
}

// Macro is a syntax extension bound to a grammar. A macro is inert until
// enabled.
type Macro struct {
	name     string
	grammar  *peg.Grammar
	target   *peg.Expr
	rule     *peg.Expr
	expander Expander
	strategy Strategy
	raw      bool
	priority bool
	enabled  bool
}

// New builds the private rule of a macro in g. The rule is cleaned but not
// registered until the macro is enabled.
func New(g *peg.Grammar, opts Options) (*Macro, error) {
	if opts.Expander == nil && opts.Strategy != Called {
		return nil, fmt.Errorf("%w: no body for macro %s, maybe you meant to use the called strategy", ErrNoExpander, opts.Name)
	}
	if (opts.Target == "") != (opts.Strategy == Called) {
		return nil, fmt.Errorf("%w: strategy %s and target %q in macro %s", ErrStrategyMismatch, opts.Strategy, opts.Target, opts.Name)
	}
	if opts.Syntax == nil {
		return nil, fmt.Errorf("macro %s has no syntax", opts.Name)
	}

	m := &Macro{
		name:     opts.Name,
		grammar:  g,
		expander: opts.Expander,
		strategy: opts.Strategy,
		raw:      opts.Raw,
		priority: opts.Priority,
	}
	if opts.Target != "" {
		target, err := g.Rule(opts.Target)
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", opts.Name, err)
		}
		m.target = target
	}

	rule := peg.Rule(opts.Name, opts.Syntax)
	if opts.Expander != nil {
		rule.Macro = m
	}
	clean, err := g.CleanUnregisteredRule(rule)
	if err != nil {
		return nil, fmt.Errorf("macro %s: %w", opts.Name, err)
	}
	m.rule = clean
	return m, nil
}

// Register is New under the name used by drivers.
func Register(g *peg.Grammar, opts Options) (*Macro, error) { return New(g, opts) }

func (m *Macro) Name() string          { return m.name }
func (m *Macro) MacroName() string     { return m.name }
func (m *Macro) Grammar() *peg.Grammar { return m.grammar }
func (m *Macro) Rule() *peg.Expr       { return m.rule }
func (m *Macro) Strategy() Strategy    { return m.strategy }
func (m *Macro) Raw() bool             { return m.raw }
func (m *Macro) Priority() bool        { return m.priority }
func (m *Macro) Enabled() bool         { return m.enabled }

// Target returns the rule the macro extends, or nil for called macros.
func (m *Macro) Target() *peg.Expr { return m.target }

// Expand runs the body of the macro on a match of its rule.
func (m *Macro) Expand(match *peg.Match) (*peg.Match, error) {
	if m.expander == nil {
		return match, nil
	}
	return m.expander.Expand(match)
}

// Enable makes the syntax of the macro part of the grammar.
func (m *Macro) Enable() error {
	if m.enabled {
		return fmt.Errorf("%w: %s", ErrAlreadyEnabled, m.name)
	}
	var err error
	if m.target != nil {
		err = m.grammar.AddRuleAlternative(m.target, m.rule, m.priority)
	} else {
		err = m.grammar.RegisterRule(m.rule)
	}
	if err != nil {
		return fmt.Errorf("enabling macro %s: %w", m.name, err)
	}
	m.enabled = true
	return nil
}

// Disable removes the syntax of the macro from the grammar.
func (m *Macro) Disable() error {
	if !m.enabled {
		return fmt.Errorf("%w: %s", ErrNotEnabled, m.name)
	}
	var err error
	if m.target != nil {
		err = m.grammar.RemoveRuleAlternative(m.target, m.rule)
	} else {
		err = m.grammar.UnregisterRule(m.rule)
	}
	if err != nil {
		return fmt.Errorf("disabling macro %s: %w", m.name, err)
	}
	m.enabled = false
	return nil
}

// EnsureDisabled disables the macro if it is enabled.
func (m *Macro) EnsureDisabled() error {
	if !m.enabled {
		return nil
	}
	return m.Disable()
}

func (m *Macro) String() string {
	target := "called"
	if m.target != nil {
		target = m.strategy.String() + " " + m.target.Name
	}
	return fmt.Sprintf("macro %s (%s)", m.name, target)
}
