package macro

import (
	"errors"
	"fmt"

	"github.com/gnolang/pegmacro/peg"
)

// Scope is a group of macros enabled and disabled together.
type Scope struct {
	macros []*Macro
	active bool
}

func NewScope(macros ...*Macro) *Scope {
	return &Scope{macros: macros}
}

func (s *Scope) Add(m ...*Macro) { s.macros = append(s.macros, m...) }

func (s *Scope) Macros() []*Macro { return s.macros }

func (s *Scope) Active() bool { return s.active }

// Enter enables the macros of the scope in order. If one fails, those
// already enabled are disabled again.
func (s *Scope) Enter() error {
	if s.active {
		return errors.New("scope already entered")
	}
	for i, m := range s.macros {
		if err := m.Enable(); err != nil {
			for j := i - 1; j >= 0; j-- {
				// the rollback error is dominated by err
				_ = s.macros[j].Disable()
			}
			return fmt.Errorf("entering scope: %w", err)
		}
	}
	s.active = true
	return nil
}

// Leave disables the macros in reverse order.
func (s *Scope) Leave() error {
	if !s.active {
		return nil
	}
	var errs []error
	for i := len(s.macros) - 1; i >= 0; i-- {
		if err := s.macros[i].EnsureDisabled(); err != nil {
			errs = append(errs, err)
		}
	}
	s.active = false
	return errors.Join(errs...)
}

// Build builds the definitions in order and adds them to the scope. In an
// entered scope each macro is enabled before the next definition is built,
// so later syntax can refer to earlier called macros. Macros built before a
// failure stay in the scope.
func (s *Scope) Build(g *peg.Grammar, defs []Definition, compiler ExpanderCompiler) error {
	for _, d := range defs {
		m, err := d.Build(g, compiler)
		if err != nil {
			return err
		}
		if s.active {
			if err := m.Enable(); err != nil {
				return err
			}
		}
		s.macros = append(s.macros, m)
	}
	return nil
}
