// Package template reads macro body templates: text with :[name] holes
// that refer to the captures of the macro syntax.
//
//	:[name]     the first capture called name
//	:[name]?    the first capture called name, or nothing
//	:[[name]]*  every capture called name, as a splice
//	:[[name]]+  every capture called name, at least one
package template

import (
	"fmt"
	"strconv"
)

type TokenType int

const (
	TokenText TokenType = iota
	TokenHole
	TokenEOF
)

type Token struct {
	Type     TokenType
	Value    string
	Position int
	Hole     *HoleConfig // nil for non-hole tokens
}

// Node is a piece of a parsed template.
type Node interface {
	String() string
	Position() int
}

var (
	_ Node = (*TextNode)(nil)
	_ Node = (*HoleNode)(nil)
)

type TextNode struct {
	Content string
	pos     int
}

func (t *TextNode) String() string {
	escaped := strconv.Quote(t.Content)
	return fmt.Sprintf("TextNode(%s)", escaped[1:len(escaped)-1])
}

func (t *TextNode) Position() int { return t.pos }

type HoleNode struct {
	Config HoleConfig
	pos    int
}

func (h *HoleNode) String() string { return fmt.Sprintf("HoleNode(%s)", h.Config) }
func (h *HoleNode) Position() int  { return h.pos }
func (h *HoleNode) Name() string   { return h.Config.Name }

// Parser turns tokens into nodes.
type Parser struct {
	tokens  []Token
	current int
	holes   map[string]int // hole name -> position of its first use
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, holes: make(map[string]int)}
}

func (p *Parser) Parse() []Node {
	var nodes []Node
	for ; p.current < len(p.tokens); p.current++ {
		tok := p.tokens[p.current]
		switch tok.Type {
		case TokenText:
			nodes = append(nodes, &TextNode{Content: tok.Value, pos: tok.Position})
		case TokenHole:
			if _, ok := p.holes[tok.Hole.Name]; !ok {
				p.holes[tok.Hole.Name] = tok.Position
			}
			nodes = append(nodes, &HoleNode{Config: *tok.Hole, pos: tok.Position})
		case TokenEOF:
			return nodes
		}
	}
	return nodes
}

// Holes returns the names used by the parsed template, with the position
// of their first use.
func (p *Parser) Holes() map[string]int { return p.holes }

// Parse lexes and parses a template.
func Parse(input string) ([]Node, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse(), nil
}
