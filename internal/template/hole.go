package template

import (
	"fmt"
	"strings"
)

// Quantifier defines how many captures a hole takes.
type Quantifier int

const (
	QuantNone       Quantifier = iota // exactly one capture
	QuantZeroOrMore                   // * (all captures, possibly none)
	QuantOneOrMore                    // + (all captures, at least one)
	QuantZeroOrOne                    // ? (the first capture, if any)
)

func (q Quantifier) String() string {
	switch q {
	case QuantNone:
		return ""
	case QuantZeroOrMore:
		return "*"
	case QuantOneOrMore:
		return "+"
	case QuantZeroOrOne:
		return "?"
	default:
		return "unknown"
	}
}

// Repeated reports whether the hole takes every capture.
func (q Quantifier) Repeated() bool {
	return q == QuantZeroOrMore || q == QuantOneOrMore
}

// HoleConfig stores what a hole refers to.
type HoleConfig struct {
	Name       string
	Quantifier Quantifier
	// Long is set for the :[[name]] form.
	Long bool
}

func (h HoleConfig) String() string {
	if h.Long {
		return ":[[" + h.Name + "]]" + h.Quantifier.String()
	}
	return ":[" + h.Name + "]" + h.Quantifier.String()
}

// ParseHolePattern parses :[name], :[[name]] and either followed by a
// quantifier.
func ParseHolePattern(pattern string) (*HoleConfig, error) {
	if len(pattern) < 4 || pattern[0] != ':' || pattern[1] != '[' {
		return nil, fmt.Errorf("invalid hole pattern: %s", pattern)
	}
	cfg := &HoleConfig{}

	end := len(pattern)
	if isQuantifier(pattern[end-1]) {
		switch pattern[end-1] {
		case '*':
			cfg.Quantifier = QuantZeroOrMore
		case '+':
			cfg.Quantifier = QuantOneOrMore
		case '?':
			cfg.Quantifier = QuantZeroOrOne
		}
		end--
	}

	body := pattern[:end]
	switch {
	case strings.HasPrefix(body, ":[[") && strings.HasSuffix(body, "]]") && len(body) > 5:
		cfg.Long = true
		cfg.Name = body[3 : len(body)-2]
	case strings.HasSuffix(body, "]") && !strings.HasPrefix(body, ":[["):
		cfg.Name = body[2 : len(body)-1]
	default:
		return nil, fmt.Errorf("invalid hole pattern: %s", pattern)
	}

	if !validName(cfg.Name) {
		return nil, fmt.Errorf("invalid hole name %q in %s", cfg.Name, pattern)
	}
	if cfg.Quantifier.Repeated() && !cfg.Long {
		return nil, fmt.Errorf("repeated hole %s must use the :[[name]] form", pattern)
	}
	return cfg, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var quantifiers = map[byte]bool{
	'*': true, '+': true, '?': true,
}

func isQuantifier(c byte) bool {
	return quantifiers[c]
}
