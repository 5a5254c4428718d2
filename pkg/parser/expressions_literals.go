package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

func (p *parser) parseTemplateString() (ast.Expression, error) {
	start := p.advance().Pos
	var parts []ast.Expression
	for {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case lexer.TemplateFragment:
			p.advance()
			parts = append(parts, annotateExpression(p, ast.NewStringLiteral(tok.Value), tok.Pos))
		case lexer.InterpStart:
			p.advance()
			p.pushNewlines(true)
			var expr ast.Expression
			err := p.withBareLambdas(true, func() error {
				var ierr error
				if expr, ierr = p.parseExpression(); ierr != nil {
					return ierr
				}
				p.skipNewlines()
				_, ierr = p.expectKind(lexer.InterpEnd, "'#' to close interpolation")
				return ierr
			})
			p.popNewlines()
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr)
		case lexer.TemplateEnd:
			p.advance()
			return annotateExpression(p, ast.NewTemplateString(parts), start), nil
		default:
			return nil, p.errorAt(tok, "template text or interpolation")
		}
	}
}

// parseListLiteral parses `~a, b, ...rest!`.
func (p *parser) parseListLiteral() (ast.Expression, error) {
	start := p.advance().Pos
	p.pushNewlines(true)
	var elements []ast.Expression
	err := p.withBareLambdas(true, func() error {
		for !p.at("!") {
			el, err := p.parseElement()
			if err != nil {
				return err
			}
			elements = append(elements, el)
			if !p.accept(",") {
				break
			}
		}
		_, err := p.expect("!")
		return err
	})
	p.popNewlines()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewArrayLiteral(elements), start), nil
}

// parseMapLiteral parses `@ key: value, shorthand, ~computed!: value, ...spread #`.
func (p *parser) parseMapLiteral() (ast.Expression, error) {
	start := p.advance().Pos
	p.pushNewlines(true)
	var entries []*ast.MapEntry
	err := p.withBareLambdas(true, func() error {
		for !p.at("#") {
			entry, err := p.parseMapEntry()
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			if !p.accept(",") {
				break
			}
		}
		_, err := p.expect("#")
		return err
	})
	p.popNewlines()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewMapLiteral(entries), start), nil
}

func (p *parser) parseMapEntry() (*ast.MapEntry, error) {
	tok := p.peek()
	var entry *ast.MapEntry
	switch {
	case tok.Is("..."):
		p.advance()
		spread, err := p.parseNullish()
		if err != nil {
			return nil, err
		}
		entry = ast.NewMapSpreadEntry(spread)
	case tok.Is("~"):
		p.advance()
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("!"); err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entry = ast.NewMapEntry(key, value, true)
	case tok.Kind == lexer.Identifier || tok.Kind == lexer.Keyword || tok.Kind == lexer.String || tok.Kind == lexer.Number:
		p.advance()
		keyText := tok.Lexeme
		switch tok.Kind {
		case lexer.String:
			keyText = tok.Value
		case lexer.Number:
			keyText = ast.FormatNumber(tok.Num)
		}
		key := annotateExpression(p, ast.NewStringLiteral(keyText), tok.Pos)
		if !p.accept(":") {
			if tok.Kind != lexer.Identifier {
				return nil, p.errorAt(p.peek(), "':' after map key")
			}
			entry = ast.NewMapEntry(key, annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), false)
			break
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entry = ast.NewMapEntry(key, value, false)
	default:
		return nil, p.errorAt(tok, "map entry")
	}
	p.annotate(entry, tok.Pos)
	return entry, nil
}

// parseArrowLambda parses `name =! body`, `(params) =! body` and their `async` forms.
func (p *parser) parseArrowLambda(isAsync bool) (ast.Expression, error) {
	start := p.peek().Pos
	if isAsync {
		p.advance()
	}
	var params []*ast.FunctionParameter
	if tok := p.peek(); tok.Kind == lexer.Identifier {
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		param := ast.NewFunctionParameter(id, nil, nil, false)
		p.annotate(param, tok.Pos)
		params = []*ast.FunctionParameter{param}
	} else {
		var err error
		if params, err = p.parseParameters(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("=!"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	body, err := p.parseArrowBody()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewLambdaExpression(params, body, nil, isAsync, false, true), start), nil
}

// parseArrowBody parses what follows `=!`: a block when it opens with `@`,
// otherwise an expression.
func (p *parser) parseArrowBody() (ast.Expression, error) {
	if p.at("@") {
		return p.parseBlock()
	}
	var body ast.Expression
	err := p.withBareLambdas(true, func() error {
		var berr error
		body, berr = p.parseExpression()
		return berr
	})
	return body, err
}

// parseAnonymousConduit parses `[async] conduit[*](params)[: Type] @ body #` in expression position.
func (p *parser) parseAnonymousConduit(isAsync bool) (ast.Expression, error) {
	start := p.peek().Pos
	if isAsync {
		p.advance()
	}
	p.advance()
	isGenerator := p.accept("*")
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	returnType, err := p.parseOptionalTypeAnnotation()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewLambdaExpression(params, body, returnType, isAsync, isGenerator, false), start), nil
}
