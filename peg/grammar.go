package peg

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

var (
	ErrDuplicateRule       = errors.New("duplicate rule")
	ErrUnknownRule         = errors.New("unknown rule")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrNotRule             = errors.New("expression is not a rule")
	ErrUnnamedRule         = errors.New("rule without a name")
	ErrDirtyExpression     = errors.New("expression was not cleaned")
)

var ruleIDs atomic.Int64

func nextRuleID() int64 { return ruleIDs.Add(1) }

// Grammar is a registry of named rules. It owns the canonical form of every
// expression it cleans.
//
// A grammar may change between parses (macros add and remove rule
// alternatives) but never while a Matcher is running over it.
type Grammar struct {
	name       string
	rules      map[string]*Expr
	canonicals map[canonicalKey]*Expr
}

// canonicalKey identifies a clean non-rule node. Children are already
// canonical, so their identities stand for their whole subtrees, including
// atomicity the signature does not show.
type canonicalKey struct {
	kind     Kind
	atomic   bool
	sig      string
	children string
}

// NewGrammar registers every rule, then cleans them all, so rules may
// refer to each other in any order.
func NewGrammar(name string, rules ...*Expr) (*Grammar, error) {
	g := &Grammar{
		name:       name,
		rules:      make(map[string]*Expr),
		canonicals: make(map[canonicalKey]*Expr),
	}
	if err := g.AddRules(rules...); err != nil {
		return nil, err
	}
	return g, nil
}

// MustGrammar is NewGrammar for grammars known to be well formed.
func MustGrammar(name string, rules ...*Expr) *Grammar {
	g, err := NewGrammar(name, rules...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grammar) Name() string { return g.name }

// AddRules registers new rules then cleans them.
func (g *Grammar) AddRules(rules ...*Expr) error {
	for _, r := range rules {
		if err := g.RegisterRule(r); err != nil {
			return err
		}
	}
	for _, r := range rules {
		if _, err := g.Clean(r); err != nil {
			return fmt.Errorf("grammar %s: %w", g.name, err)
		}
	}
	return nil
}

// RegisterRule makes rule resolvable by name. The rule is not cleaned.
func (g *Grammar) RegisterRule(rule *Expr) error {
	if rule.Kind != KindRule {
		return fmt.Errorf("%w: %s", ErrNotRule, rule)
	}
	if rule.Name == "" {
		return ErrUnnamedRule
	}
	if _, ok := g.rules[rule.Name]; ok {
		return fmt.Errorf("%w: %s already exists in grammar %s", ErrDuplicateRule, rule.Name, g.name)
	}
	g.rules[rule.Name] = rule
	return nil
}

// UnregisterRule removes a rule previously registered under its name.
func (g *Grammar) UnregisterRule(rule *Expr) error {
	if _, ok := g.rules[rule.Name]; !ok {
		return fmt.Errorf("%w: %s is not in grammar %s", ErrUnknownRule, rule.Name, g.name)
	}
	delete(g.rules, rule.Name)
	return nil
}

// Rule returns the rule registered under name.
func (g *Grammar) Rule(name string) (*Expr, error) {
	r, ok := g.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in grammar %s", ErrUnknownRule, name, g.name)
	}
	return r, nil
}

// MustRule is Rule for names known to exist.
func (g *Grammar) MustRule(name string) *Expr {
	r, err := g.Rule(name)
	if err != nil {
		panic(err)
	}
	return r
}

func (g *Grammar) LookupRule(name string) (*Expr, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// Rules returns the registered rules sorted by name.
func (g *Grammar) Rules() []*Expr {
	rules := make([]*Expr, 0, len(g.rules))
	for _, r := range g.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })
	return rules
}

// AddRuleAlternative registers rule and makes it an alternative of target,
// first if priority is set and last otherwise.
func (g *Grammar) AddRuleAlternative(target, rule *Expr, priority bool) error {
	if err := g.RegisterRule(rule); err != nil {
		return err
	}
	return g.AddExistingRuleAlternative(target, rule, priority)
}

// AddExistingRuleAlternative adds an alternative to target without
// touching the registry.
func (g *Grammar) AddExistingRuleAlternative(target, alternative *Expr, priority bool) error {
	if target.Kind != KindRule {
		return fmt.Errorf("%w: %s", ErrNotRule, target)
	}
	if priority {
		target.Children = append([]*Expr{alternative}, target.Children...)
	} else {
		target.Children = append(target.Children, alternative)
	}
	return nil
}

// RemoveRuleAlternative undoes AddRuleAlternative.
func (g *Grammar) RemoveRuleAlternative(target, rule *Expr) error {
	if err := g.UnregisterRule(rule); err != nil {
		return err
	}
	for i, alt := range target.Children {
		if alt == rule {
			target.Children = append(target.Children[:i:i], target.Children[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not an alternative of %s", ErrUnknownRule, rule.Name, target.Name)
}

// Clean turns e into its canonical form and returns it. References are
// resolved against the grammar. Cleaning a clean expression returns the
// same object. The returned expression may differ from e: non-rule nodes
// are unified by signature and single-element sequences and choices
// collapse into their element.
func (g *Grammar) Clean(e *Expr) (*Expr, error) {
	return g.clean(e)
}

// MustClean is Clean for expressions known to resolve.
func (g *Grammar) MustClean(e *Expr) *Expr {
	c, err := g.clean(e)
	if err != nil {
		panic(err)
	}
	return c
}

// CleanUnregisteredRule cleans a rule that may refer to itself by name
// without leaving it in the registry.
func (g *Grammar) CleanUnregisteredRule(rule *Expr) (*Expr, error) {
	if err := g.RegisterRule(rule); err != nil {
		return nil, err
	}
	clean, err := g.clean(rule)
	if uerr := g.UnregisterRule(rule); err == nil {
		err = uerr
	}
	return clean, err
}

func (g *Grammar) clean(e *Expr) (*Expr, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrDirtyExpression)
	}
	if e.Kind == KindReference {
		r, ok := g.rules[e.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s in grammar %s", ErrUnresolvedReference, e.Name, g.name)
		}
		e = r
	}
	if e.sig != "" {
		return g.standardize(e), nil
	}
	if e.Kind == KindRule {
		if e.Name == "" {
			return nil, ErrUnnamedRule
		}
		// naming the rule first is what stops recursion on cycles
		e.sig = e.Name
		e.ID = nextRuleID()
	}
	e.Atomic = e.Atomic || e.atomicByKind()
	e.Grammar = g
	for i, child := range e.Children {
		c, err := g.clean(child)
		if err != nil {
			return nil, err
		}
		e.Children[i] = c
	}
	if e.Kind != KindRule {
		e.sig = signature(e)
	}
	return g.standardize(e), nil
}

func (g *Grammar) standardize(e *Expr) *Expr {
	if e.Kind == KindRule {
		return e
	}
	// an atomic wrapper only collapses into an atomic element
	if (e.Kind == KindSequence || e.Kind == KindChoice) && len(e.Children) == 1 {
		if child := e.Children[0]; !e.Atomic || child.Atomic {
			return child
		}
	}
	// expressions with callbacks keep their identity
	if e.Callbacks != nil {
		return e
	}
	var children strings.Builder
	for _, c := range e.Children {
		fmt.Fprintf(&children, "%p ", c)
	}
	key := canonicalKey{kind: e.Kind, atomic: e.Atomic, sig: e.sig, children: children.String()}
	if c, ok := g.canonicals[key]; ok {
		return c
	}
	g.canonicals[key] = e
	return e
}
