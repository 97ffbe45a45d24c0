package macro

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/pegmacro/notation"
	"github.com/gnolang/pegmacro/peg"
)

// Definition is a macro written in a definitions file. Syntax uses the
// grammar notation; Template is the body, compiled by an ExpanderCompiler.
type Definition struct {
	Name     string `yaml:"name"`
	Strategy string `yaml:"strategy"`
	Target   string `yaml:"target"`
	// Rule is the rule the template parses as. It defaults to Target.
	Rule     string `yaml:"rule"`
	Raw      bool   `yaml:"raw"`
	Priority bool   `yaml:"priority"`
	Syntax   string `yaml:"syntax"`
	Template string `yaml:"template"`
}

type definitionsFile struct {
	Macros []Definition `yaml:"macros"`
}

// ExpanderCompiler turns the template of a definition into an Expander.
// captures lists the capture names of the macro syntax.
type ExpanderCompiler interface {
	Compile(body string, captures []string, rule string) (Expander, error)
}

func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func ParseDefinitions(data []byte) ([]Definition, error) {
	var f definitionsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i, d := range f.Macros {
		if d.Name == "" {
			return nil, fmt.Errorf("macro #%d has no name", i+1)
		}
		if d.Syntax == "" {
			return nil, fmt.Errorf("macro %s has no syntax", d.Name)
		}
	}
	return f.Macros, nil
}

// Build creates the macro in g. The macro is not enabled.
func (d Definition) Build(g *peg.Grammar, compiler ExpanderCompiler) (*Macro, error) {
	strategy := As
	if d.Strategy != "" {
		var err error
		if strategy, err = ParseStrategy(d.Strategy); err != nil {
			return nil, fmt.Errorf("macro %s: %w", d.Name, err)
		}
	}
	syntax, err := notation.Parse(d.Syntax)
	if err != nil {
		return nil, fmt.Errorf("macro %s syntax: %w", d.Name, err)
	}

	var exp Expander
	if d.Template != "" {
		if compiler == nil {
			return nil, fmt.Errorf("macro %s has a template but no compiler was given", d.Name)
		}
		rule := d.Rule
		if rule == "" {
			rule = d.Target
		}
		if exp, err = compiler.Compile(d.Template, notation.CaptureNames(syntax), rule); err != nil {
			return nil, fmt.Errorf("macro %s template: %w", d.Name, err)
		}
	}

	return New(g, Options{
		Name:     d.Name,
		Target:   d.Target,
		Syntax:   syntax,
		Expander: exp,
		Strategy: strategy,
		Raw:      d.Raw,
		Priority: d.Priority,
	})
}

// BuildAll builds every definition, in order, and returns the macros
// disabled. Called macros are enabled while the definitions after them are
// built, so their syntax can refer to them by name.
func BuildAll(g *peg.Grammar, defs []Definition, compiler ExpanderCompiler) ([]*Macro, error) {
	scope := NewScope()
	if err := scope.Enter(); err != nil {
		return nil, err
	}
	err := scope.Build(g, defs, compiler)
	if err := errors.Join(err, scope.Leave()); err != nil {
		return nil, err
	}
	return scope.Macros(), nil
}
