package notation

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/pegmacro/peg"
)

// RuleDef is one rule of a grammar file. Either Expr or Alternatives is
// set; a top level choice in Expr becomes the alternatives of the rule.
type RuleDef struct {
	Name         string   `yaml:"name"`
	Expr         string   `yaml:"expr"`
	Alternatives []string `yaml:"alternatives"`
	Atomic       bool     `yaml:"atomic"`
}

type GrammarFile struct {
	Name  string    `yaml:"name"`
	Rules []RuleDef `yaml:"rules"`
}

func LoadGrammar(path string) (*peg.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := ParseGrammarFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func ParseGrammarFile(data []byte) (*peg.Grammar, error) {
	var f GrammarFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("grammar file has no rules")
	}
	rules, err := f.Build()
	if err != nil {
		return nil, err
	}
	name := f.Name
	if name == "" {
		name = "grammar"
	}
	return peg.NewGrammar(name, rules...)
}

// Build returns the dirty rules of the file.
func (f GrammarFile) Build() ([]*peg.Expr, error) {
	rules := make([]*peg.Expr, 0, len(f.Rules))
	for _, def := range f.Rules {
		r, err := def.Build()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (d RuleDef) Build() (*peg.Expr, error) {
	if d.Name == "" {
		return nil, errors.New("rule without a name")
	}
	var alts []*peg.Expr
	switch {
	case d.Expr != "" && len(d.Alternatives) > 0:
		return nil, fmt.Errorf("rule %s has both expr and alternatives", d.Name)
	case d.Expr != "":
		e, err := Parse(d.Expr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", d.Name, err)
		}
		if e.Kind == peg.KindChoice {
			alts = e.Children
		} else {
			alts = []*peg.Expr{e}
		}
	default:
		for i, text := range d.Alternatives {
			e, err := Parse(text)
			if err != nil {
				return nil, fmt.Errorf("rule %s alternative %d: %w", d.Name, i+1, err)
			}
			alts = append(alts, e)
		}
	}
	if len(alts) == 0 {
		return nil, fmt.Errorf("rule %s has no definition", d.Name)
	}
	r := peg.Rule(d.Name, alts...)
	r.Atomic = d.Atomic
	return r, nil
}

// CaptureNames lists the capture names of a dirty or clean expression in
// the order they appear, without duplicates. References are not followed.
func CaptureNames(e *peg.Expr) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(*peg.Expr, bool)
	walk = func(e *peg.Expr, top bool) {
		if e == nil || (e.Kind == peg.KindRule && !top) || e.Kind == peg.KindReference {
			return
		}
		if e.Kind == peg.KindCapture && !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
		for _, c := range e.Children {
			walk(c, false)
		}
	}
	walk(e, true)
	return names
}
