package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

func (p *parser) parseIdentifier() (*ast.Identifier, error) {
	tok, err := p.expectKind(lexer.Identifier, "identifier")
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), nil
}

// parseMemberName accepts identifiers and keywords, so `gen.next()` and
// `@ type: 1 #` style names work.
func (p *parser) parseMemberName() (*ast.Identifier, error) {
	tok := p.peek()
	if tok.Kind != lexer.Identifier && tok.Kind != lexer.Keyword {
		return nil, p.errorAt(tok, "member name")
	}
	p.advance()
	return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), nil
}

func isTerminator(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.Newline, lexer.EOF, lexer.InterpEnd:
		return true
	}
	return tok.Is(";") || tok.Is("#") || tok.Is(")") || tok.Is(",") || tok.Is("!")
}

func isAssignmentOperator(tok lexer.Token) bool {
	if tok.Kind != lexer.Operator {
		return false
	}
	switch tok.Lexeme {
	case "=", "+=", "-=", "*=", "/=":
		return true
	}
	return false
}

// identifierFollowedByArrow reports whether the parser sits on `name =!`.
func (p *parser) identifierFollowedByArrow() bool {
	if p.noBareLambda {
		return false
	}
	return p.peek().Kind == lexer.Identifier && p.peekAt(1).Is("=!")
}

// parenthesizedArrowAhead reports whether the `(` at the cursor opens a
// lambda parameter list, i.e. its matching `)` is followed by `=!`.
func (p *parser) parenthesizedArrowAhead() bool {
	if p.noBareLambda || !p.at("(") {
		return false
	}
	return p.parenGroupFollowedBy(p.pos, "=!")
}

// parenGroupFollowedBy reports whether the parenthesised group opening at
// tokens[idx] is followed, past any line breaks, by lexeme.
func (p *parser) parenGroupFollowedBy(idx int, lexeme string) bool {
	depth := 0
	for ; idx < len(p.tokens); idx++ {
		tok := p.tokens[idx]
		switch {
		case tok.Kind == lexer.EOF:
			return false
		case tok.Is("("):
			depth++
		case tok.Is(")"):
			depth--
			if depth == 0 {
				next := idx + 1
				for next < len(p.tokens)-1 && p.tokens[next].Kind == lexer.Newline {
					next++
				}
				return p.tokens[next].Is(lexeme)
			}
		}
	}
	return false
}

// repeatCallAhead reports whether the `repeat` keyword at the cursor is a call
// of the repeat builtin rather than the head of a loop.
func (p *parser) repeatCallAhead() bool {
	next := p.pos + 1
	if next >= len(p.tokens) || !p.tokens[next].Is("(") {
		return false
	}
	return !p.parenGroupFollowedBy(next, "in")
}
