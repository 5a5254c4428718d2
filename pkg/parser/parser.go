package parser

import (
	"fmt"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

// ParseError reports a token the grammar did not allow at that point.
type ParseError struct {
	Pos      lexer.Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: ParseError: expected %s, found %s", e.Pos.Line, e.Pos.Column, e.Expected, e.Found)
}

// ModuleParser turns RIFT source into a Program.
type ModuleParser struct{}

// NewModuleParser constructs a parser.
func NewModuleParser() *ModuleParser {
	return &ModuleParser{}
}

// ParseModule parses RIFT source into the canonical AST program.
func (mp *ModuleParser) ParseModule(source []byte) (*ast.Program, error) {
	return ParseSource(string(source))
}

// ParseSource tokenizes and parses a whole program.
func ParseSource(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse builds a Program from a token stream ending in EOF.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := newParser(tokens)
	return p.parseProgram()
}

// ParseExpression parses source consisting of exactly one expression.
func ParseExpression(source string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := newParser(tokens)
	p.skipNewlines()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if tok := p.peek(); tok.Kind != lexer.EOF {
		return nil, p.errorAt(tok, "end of input")
	}
	return expr, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
	last   lexer.Token

	// newlineModes is a stack; the top says whether line breaks are
	// insignificant (inside parentheses, lists, maps) or end statements.
	newlineModes []bool

	// noBareLambda disables `x =! ...` and `(x) =! ...` lambdas where `=!`
	// belongs to an enclosing construct, such as a check clause guard.
	noBareLambda bool
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		tokens = append(tokens, lexer.Token{Kind: lexer.EOF})
	}
	return &parser{tokens: tokens}
}

func (p *parser) pushNewlines(insignificant bool) {
	p.newlineModes = append(p.newlineModes, insignificant)
}

func (p *parser) popNewlines() {
	if len(p.newlineModes) > 0 {
		p.newlineModes = p.newlineModes[:len(p.newlineModes)-1]
	}
}

func (p *parser) newlinesInsignificant() bool {
	return len(p.newlineModes) > 0 && p.newlineModes[len(p.newlineModes)-1]
}

// peek returns the current token, stepping over line breaks where they carry no meaning.
func (p *parser) peek() lexer.Token {
	if p.newlinesInsignificant() {
		p.skipNewlines()
	}
	return p.tokens[p.pos]
}

// peekAt looks n significant tokens past the current one without consuming.
func (p *parser) peekAt(n int) lexer.Token {
	p.peek()
	idx := p.pos
	for n > 0 && idx < len(p.tokens)-1 {
		idx++
		if p.newlinesInsignificant() {
			for idx < len(p.tokens)-1 && p.tokens[idx].Kind == lexer.Newline {
				idx++
			}
		}
		n--
	}
	return p.tokens[idx]
}

// peekPastNewlines returns the first token after any line breaks.
func (p *parser) peekPastNewlines() lexer.Token {
	idx := p.pos
	for idx < len(p.tokens)-1 && p.tokens[idx].Kind == lexer.Newline {
		idx++
	}
	return p.tokens[idx]
}

func (p *parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	p.last = tok
	return tok
}

func (p *parser) skipNewlines() {
	for p.tokens[p.pos].Kind == lexer.Newline {
		p.pos++
	}
}

func (p *parser) at(lexeme string) bool {
	return p.peek().Is(lexeme)
}

func (p *parser) accept(lexeme string) bool {
	if p.at(lexeme) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(lexeme string) (lexer.Token, error) {
	tok := p.peek()
	if !tok.Is(lexeme) {
		return tok, p.errorAt(tok, fmt.Sprintf("'%s'", lexeme))
	}
	return p.advance(), nil
}

func (p *parser) expectKind(kind lexer.Kind, expected string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorAt(tok, expected)
	}
	return p.advance(), nil
}

func (p *parser) errorAt(tok lexer.Token, expected string) error {
	return &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.String()}
}

// endStatement consumes a statement terminator. Statements ending in a
// block closer need none.
func (p *parser) endStatement() error {
	tok := p.tokens[p.pos]
	switch {
	case tok.Kind == lexer.Newline || tok.Is(";"):
		p.pos++
		return nil
	case tok.Kind == lexer.EOF || tok.Is("#") || tok.Kind == lexer.InterpEnd:
		return nil
	case p.last.Is("#"):
		return nil
	}
	return p.errorAt(tok, "end of statement")
}

func (p *parser) skipSeparators() {
	for {
		tok := p.tokens[p.pos]
		if tok.Kind == lexer.Newline || tok.Is(";") {
			p.pos++
			continue
		}
		return
	}
}

// withBareLambdas runs fn with bare lambdas enabled or disabled, restoring the previous setting.
func (p *parser) withBareLambdas(enabled bool, fn func() error) error {
	saved := p.noBareLambda
	p.noBareLambda = !enabled
	defer func() { p.noBareLambda = saved }()
	return fn()
}
