package peg

// Constructors for dirty expressions. Operators taking several expressions
// apply to their sequence, so Star(a, b) is Star(Seq(a, b)).

func seqOf(exprs []*Expr) *Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return Seq(exprs...)
}

func unary(kind Kind, exprs []*Expr) *Expr {
	return &Expr{Kind: kind, Children: []*Expr{seqOf(exprs)}}
}

// Rule returns a rule with the given ordered alternatives.
func Rule(name string, alternatives ...*Expr) *Expr {
	return &Expr{Kind: KindRule, Name: name, Children: alternatives}
}

// RuleSeq returns a rule with a single alternative made of the sequence
// of exprs.
func RuleSeq(name string, exprs ...*Expr) *Expr {
	return Rule(name, seqOf(exprs))
}

func Choice(alternatives ...*Expr) *Expr {
	return &Expr{Kind: KindChoice, Children: alternatives}
}

func Seq(exprs ...*Expr) *Expr {
	return &Expr{Kind: KindSequence, Children: exprs}
}

// And is positive lookahead.
func And(exprs ...*Expr) *Expr { return unary(KindAnd, exprs) }

// Not is negative lookahead. It is always atomic.
func Not(exprs ...*Expr) *Expr {
	e := unary(KindNot, exprs)
	e.Atomic = true
	return e
}

func Star(exprs ...*Expr) *Expr { return unary(KindStar, exprs) }
func Plus(exprs ...*Expr) *Expr { return unary(KindPlus, exprs) }
func Opt(exprs ...*Expr) *Expr  { return unary(KindOptional, exprs) }

// Capture tags the match of exprs with name.
func Capture(name string, exprs ...*Expr) *Expr {
	e := unary(KindCapture, exprs)
	e.Name = name
	return e
}

// Ref refers to the rule called name. References are resolved when the
// expression is cleaned.
func Ref(name string) *Expr {
	return &Expr{Kind: KindReference, Name: name}
}

func Str(s string) *Expr {
	return &Expr{Kind: KindString, Text: s, Atomic: true}
}

// Chars matches any one of the characters in s.
func Chars(s string) *Expr {
	return &Expr{Kind: KindCharClass, Text: s, Atomic: true}
}

// NotChars matches any character not in s.
func NotChars(s string) *Expr {
	e := Chars(s)
	e.Negated = true
	return e
}

// Range matches a character between first and last, inclusive.
func Range(first, last rune) *Expr {
	return &Expr{Kind: KindRange, First: first, Last: last, Atomic: true}
}

func NotRange(first, last rune) *Expr {
	e := Range(first, last)
	e.Negated = true
	return e
}

// Any matches a single character.
func Any() *Expr {
	return &Expr{Kind: KindAny, Atomic: true}
}

// EndOfInput succeeds only at the end of the input.
func EndOfInput() *Expr { return Not(Any()) }

// Atomic marks e atomic and returns it.
func Atomic(e *Expr) *Expr {
	e.Atomic = true
	return e
}

// Until matches iter repeatedly until end matches, then end.
func Until(iter, end *Expr) *Expr {
	return Seq(Star(Not(end), iter), end)
}

// UntilOnce is Until with at least one iteration of iter.
func UntilOnce(iter, end *Expr) *Expr {
	return Seq(Plus(Not(end), iter), end)
}

// List matches one or more expr separated by sep.
func List(sep, expr *Expr) *Expr {
	return Seq(expr, Star(sep, expr))
}

// LRecur matches base followed by any number of suffix, the PEG rendition
// of a left recursive rule.
func LRecur(base, suffix *Expr) *Expr {
	return Seq(base, Star(suffix))
}

// LRecurPlus is LRecur with at least one suffix.
func LRecurPlus(base, suffix *Expr) *Expr {
	return Seq(base, Plus(suffix))
}
