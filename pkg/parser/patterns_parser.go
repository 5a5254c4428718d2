package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

// parsePattern parses a pattern. allowTyped permits the `name: Type` form;
// declarations and parameters pass false because there `: Type` annotates
// the binding instead.
func (p *parser) parsePattern(allowTyped bool) (ast.Pattern, error) {
	start := p.peek().Pos
	pattern, err := p.parsePatternBase()
	if err != nil {
		return nil, err
	}
	if allowTyped && p.at(":") && isTypeNameToken(p.peekAt(1)) {
		p.advance()
		typ, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		return annotatePattern(p, ast.NewTypedPattern(pattern, typ), start), nil
	}
	return pattern, nil
}

func (p *parser) parsePatternBase() (ast.Pattern, error) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.Identifier && tok.Lexeme == "_":
		p.advance()
		return annotatePattern(p, ast.NewWildcardPattern(), tok.Pos), nil
	case tok.Kind == lexer.Identifier:
		p.advance()
		return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), nil
	case tok.Kind == lexer.Number || (tok.Is("-") && p.peekAt(1).Kind == lexer.Number):
		return p.parseNumericPattern()
	case tok.Kind == lexer.String:
		p.advance()
		lit := annotateExpression(p, ast.NewStringLiteral(tok.Value), tok.Pos)
		return annotatePattern(p, ast.NewLiteralPattern(lit), tok.Pos), nil
	case tok.Is("yes") || tok.Is("no"):
		p.advance()
		lit := annotateExpression(p, ast.NewBooleanLiteral(tok.Lexeme == "yes"), tok.Pos)
		return annotatePattern(p, ast.NewLiteralPattern(lit), tok.Pos), nil
	case tok.Is("none"):
		p.advance()
		lit := annotateExpression(p, ast.NewNoneLiteral(), tok.Pos)
		return annotatePattern(p, ast.NewLiteralPattern(lit), tok.Pos), nil
	case tok.Is("~!"):
		p.advance()
		return annotatePattern(p, ast.NewArrayPattern(nil, nil), tok.Pos), nil
	case tok.Is("~"):
		return p.parseArrayPattern()
	case tok.Is("@"):
		return p.parseMapPattern()
	}
	return nil, p.errorAt(tok, "pattern")
}

// canBeginPattern reports whether the current token can start a pattern.
func (p *parser) canBeginPattern() bool {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.Identifier, tok.Kind == lexer.Number, tok.Kind == lexer.String:
		return true
	case tok.Is("-"):
		return p.peekAt(1).Kind == lexer.Number
	}
	return tok.Is("yes") || tok.Is("no") || tok.Is("none") || tok.Is("~") || tok.Is("~!") || tok.Is("@")
}

func (p *parser) parseSignedNumber() (*ast.NumberLiteral, error) {
	start := p.peek().Pos
	negative := p.accept("-")
	tok, err := p.expectKind(lexer.Number, "number")
	if err != nil {
		return nil, err
	}
	value := tok.Num
	if negative {
		value = -value
	}
	return annotateExpression(p, ast.NewNumberLiteral(value), start), nil
}

// parseNumericPattern parses a number literal or an inclusive range `lo..hi` / `lo to hi`.
func (p *parser) parseNumericPattern() (ast.Pattern, error) {
	start := p.peek().Pos
	low, err := p.parseSignedNumber()
	if err != nil {
		return nil, err
	}
	if p.at("..") || p.at("to") {
		p.advance()
		high, err := p.parseSignedNumber()
		if err != nil {
			return nil, err
		}
		return annotatePattern(p, ast.NewRangePattern(low, high), start), nil
	}
	return annotatePattern(p, ast.NewLiteralPattern(low), start), nil
}

// parseArrayPattern parses `~p1, p2, ...rest!`.
func (p *parser) parseArrayPattern() (ast.Pattern, error) {
	start := p.advance().Pos
	p.pushNewlines(true)
	defer p.popNewlines()
	var (
		elements []ast.Pattern
		rest     ast.Pattern
	)
	for !p.at("!") {
		if p.accept("...") {
			r, err := p.parsePatternBase()
			if err != nil {
				return nil, err
			}
			rest = r
			break
		}
		el, err := p.parsePattern(true)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("!"); err != nil {
		return nil, err
	}
	return annotatePattern(p, ast.NewArrayPattern(elements, rest), start), nil
}

// parseMapPattern parses `@ key: pattern, key, ...rest #`.
func (p *parser) parseMapPattern() (ast.Pattern, error) {
	start := p.advance().Pos
	p.pushNewlines(true)
	defer p.popNewlines()
	var (
		fields []*ast.MapPatternField
		rest   ast.Pattern
	)
	for !p.at("#") {
		if p.accept("...") {
			r, err := p.parsePatternBase()
			if err != nil {
				return nil, err
			}
			rest = r
			break
		}
		tok := p.peek()
		var key string
		switch tok.Kind {
		case lexer.Identifier, lexer.Keyword:
			key = tok.Lexeme
		case lexer.String:
			key = tok.Value
		default:
			return nil, p.errorAt(tok, "map pattern key")
		}
		p.advance()
		var fieldPattern ast.Pattern
		if p.accept(":") {
			fp, err := p.parsePattern(true)
			if err != nil {
				return nil, err
			}
			fieldPattern = fp
		} else {
			if tok.Kind != lexer.Identifier {
				return nil, p.errorAt(p.peek(), "':' after map pattern key")
			}
			fieldPattern = annotateExpression(p, ast.NewIdentifier(key), tok.Pos)
		}
		field := ast.NewMapPatternField(key, fieldPattern)
		p.annotate(field, tok.Pos)
		fields = append(fields, field)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("#"); err != nil {
		return nil, err
	}
	return annotatePattern(p, ast.NewMapPattern(fields, rest), start), nil
}
