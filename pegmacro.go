// Package pegmacro parses text with PEG grammars that can be extended while
// the program runs, and expands the macros written in the text.
//
// A typical driver builds a grammar, registers macros on it, enables them
// for the units that use them, then parses and expands each unit in turn:
//
//	m, err := pegmacro.RegisterMacro(g, macro.Options{...})
//	err = pegmacro.EnableMacro(g, m)
//	tree, err := pegmacro.Parse(g, "program", text)
//	tree, err = pegmacro.Expand(tree)
//
// A grammar must not be changed while a parse over it is running.
package pegmacro

import (
	"errors"
	"fmt"

	"github.com/gnolang/pegmacro/macro"
	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/quote"
	"github.com/gnolang/pegmacro/source"
)

// ErrGrammarMismatch is returned when a macro is used with a grammar other
// than the one it was registered on.
var ErrGrammarMismatch = errors.New("macro belongs to another grammar")

// Parse matches the rule called rule against the whole of text.
func Parse(g *peg.Grammar, rule, text string, opts ...peg.Option) (*peg.Match, error) {
	return ParseSource(g, rule, source.New(text), opts...)
}

// ParseSource is Parse over a named or composed source.
func ParseSource(g *peg.Grammar, rule string, src source.Source, opts ...peg.Option) (*peg.Match, error) {
	return peg.Parse(g, rule, src, opts...)
}

// Expand runs the post-parse callbacks, expands every macro use and runs
// the post-expansion callbacks.
func Expand(m *peg.Match) (*peg.Match, error) {
	return macro.NewPipeline(nil).Run(m)
}

// Quote parses template as rule after filling its insert markers with
// values. See quote.Dynamic.
func Quote(g *peg.Grammar, rule, template string, values ...any) (*peg.Match, error) {
	return quote.Dynamic(g, rule, template, values...)
}

// RegisterMacro builds a macro for g. It has no effect on parsing until
// enabled.
func RegisterMacro(g *peg.Grammar, opts macro.Options) (*macro.Macro, error) {
	return macro.Register(g, opts)
}

func EnableMacro(g *peg.Grammar, m *macro.Macro) error {
	if err := sameGrammar(g, m); err != nil {
		return err
	}
	return m.Enable()
}

func DisableMacro(g *peg.Grammar, m *macro.Macro) error {
	if err := sameGrammar(g, m); err != nil {
		return err
	}
	return m.Disable()
}

func sameGrammar(g *peg.Grammar, m *macro.Macro) error {
	if m.Grammar() != g {
		return fmt.Errorf("%w: %s is registered on %s, not %s", ErrGrammarMismatch, m.Name(), m.Grammar().Name(), g.Name())
	}
	return nil
}
