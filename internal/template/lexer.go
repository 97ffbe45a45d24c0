package template

// Lexer scans a template and produces text and hole tokens.
type Lexer struct {
	input    string // the entire input to tokenize
	position int    // current reading position in input
	tokens   []Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

// Tokenize processes the entire input. Adjacent text is merged into one
// token; a ':' that does not open a hole is text.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		if l.input[l.position] == ':' {
			ok, err := l.matchHole()
			if err != nil {
				return nil, err
			}
			if ok {
				continue
			}
			l.position++
		}
		l.lexText(start)
	}
	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

// matchHole reads :[name] or :[[name]] and an optional quantifier.
func (l *Lexer) matchHole() (bool, error) {
	if l.position+1 >= len(l.input) || l.input[l.position+1] != '[' {
		return false, nil
	}
	long := l.position+2 < len(l.input) && l.input[l.position+2] == '['
	end := l.findHoleEnd(long)
	if end < 0 {
		return false, nil
	}
	if end < len(l.input) && isQuantifier(l.input[end]) {
		end++
	}
	value := l.input[l.position:end]
	cfg, err := ParseHolePattern(value)
	if err != nil {
		return false, err
	}
	l.tokens = append(l.tokens, Token{Type: TokenHole, Value: value, Position: l.position, Hole: cfg})
	l.position = end
	return true, nil
}

// lexText scans up to the next possible hole.
func (l *Lexer) lexText(start int) {
	for l.position < len(l.input) {
		if l.input[l.position] == ':' && l.position+1 < len(l.input) && l.input[l.position+1] == '[' {
			break
		}
		l.position++
	}
	if l.position == start {
		return
	}
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type == TokenText {
		l.tokens[n-1].Value += l.input[start:l.position]
		return
	}
	l.addToken(TokenText, l.input[start:l.position], start)
}

// findHoleEnd returns the index just after the closing bracket(s), or -1.
func (l *Lexer) findHoleEnd(long bool) int {
	if long {
		for i := l.position + 3; i < len(l.input)-1; i++ {
			if l.input[i] == ']' && l.input[i+1] == ']' {
				return i + 2
			}
		}
		return -1
	}
	for i := l.position + 2; i < len(l.input); i++ {
		if l.input[i] == ']' {
			return i + 1
		}
	}
	return -1
}

func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: tokenType, Value: value, Position: pos})
}
