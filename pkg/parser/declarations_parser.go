package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

// parseVariableDeclaration handles `let|mut|const target[: Type] = value`.
// A `mut` binding may omit its initializer and starts as none.
func (p *parser) parseVariableDeclaration() (ast.Statement, error) {
	kindTok := p.advance()
	target, err := p.parsePattern(false)
	if err != nil {
		return nil, err
	}
	typ, err := p.parseOptionalTypeAnnotation()
	if err != nil {
		return nil, err
	}
	var value ast.Expression
	if p.accept("=") {
		p.skipNewlines()
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	} else if kindTok.Lexeme == "mut" {
		value = ast.NewNoneLiteral()
	} else {
		return nil, p.errorAt(p.peek(), "'=' after declaration target")
	}
	decl := ast.NewVariableDeclaration(ast.DeclarationKind(kindTok.Lexeme), target, value, typ)
	return annotateStatement(p, decl, kindTok.Pos), nil
}

// parseFunctionDefinition handles `[async] conduit[*] name(params)[: Type] @ body #`.
func (p *parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	start := p.peek().Pos
	isAsync := p.accept("async")
	if _, err := p.expect("conduit"); err != nil {
		return nil, err
	}
	isGenerator := p.accept("*")
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return p.parseFunctionRest(name, start, isAsync, isGenerator)
}

func (p *parser) parseFunctionRest(name *ast.Identifier, start lexer.Position, isAsync, isGenerator bool) (*ast.FunctionDefinition, error) {
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
	fn := ast.NewFunctionDefinition(name, params, body, returnType, isAsync, isGenerator)
	return annotateStatement(p, fn, start), nil
}

// parseParameters parses `(p1, p2: Type = default, ...rest)`.
func (p *parser) parseParameters() ([]*ast.FunctionParameter, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	p.pushNewlines(true)
	var params []*ast.FunctionParameter
	err := p.withBareLambdas(true, func() error {
		for !p.at(")") {
			param, err := p.parseParameter()
			if err != nil {
				return err
			}
			params = append(params, param)
			if !p.accept(",") {
				break
			}
		}
		_, err := p.expect(")")
		return err
	})
	p.popNewlines()
	if err != nil {
		return nil, err
	}
	seenRest := false
	for _, param := range params {
		if seenRest {
			return nil, &ParseError{Pos: p.last.Pos, Expected: "rest parameter last", Found: "parameter after rest parameter"}
		}
		seenRest = param.IsRest
	}
	return params, nil
}

func (p *parser) parseParameter() (*ast.FunctionParameter, error) {
	start := p.peek().Pos
	isRest := p.accept("...")
	name, err := p.parsePattern(false)
	if err != nil {
		return nil, err
	}
	typ, err := p.parseOptionalTypeAnnotation()
	if err != nil {
		return nil, err
	}
	var defaultValue ast.Expression
	if p.accept("=") {
		if defaultValue, err = p.parsePipeline(); err != nil {
			return nil, err
		}
	}
	param := ast.NewFunctionParameter(name, typ, defaultValue, isRest)
	p.annotate(param, start)
	return param, nil
}

// parseClassDefinition handles `make Name [extend Parent] @ members #`.
func (p *parser) parseClassDefinition() (ast.Statement, error) {
	start := p.advance().Pos
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	var parent *ast.Identifier
	if p.accept("extend") {
		if parent, err = p.parseIdentifier(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("@"); err != nil {
		return nil, err
	}
	p.pushNewlines(false)
	defer p.popNewlines()
	var members []*ast.ClassMember
	for {
		p.skipSeparators()
		tok := p.tokens[p.pos]
		if tok.Is("#") {
			p.advance()
			break
		}
		if tok.Kind == lexer.EOF {
			return nil, p.errorAt(tok, "'#' to close class body")
		}
		member, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
	return annotateStatement(p, ast.NewClassDefinition(name, parent, members), start), nil
}

func (p *parser) parseClassMember() (*ast.ClassMember, error) {
	start := p.peek().Pos
	isStatic := p.accept("static")
	tok := p.peek()
	var member *ast.ClassMember
	switch {
	case tok.Is("build"):
		p.advance()
		name := annotateExpression(p, ast.NewIdentifier("build"), tok.Pos)
		fn, err := p.parseFunctionRest(name, tok.Pos, false, false)
		if err != nil {
			return nil, err
		}
		member = ast.NewClassMember(ast.ClassMemberConstructor, name, fn, nil, nil, isStatic)
	case tok.Is("conduit") || tok.Is("async"):
		fn, err := p.parseFunctionDefinition()
		if err != nil {
			return nil, err
		}
		member = ast.NewClassMember(ast.ClassMemberMethod, fn.ID, fn, nil, nil, isStatic)
	case tok.Kind == lexer.Identifier && (tok.Lexeme == "get" || tok.Lexeme == "set") && p.peekAt(1).Kind == lexer.Identifier:
		p.advance()
		kind := ast.ClassMemberGetter
		if tok.Lexeme == "set" {
			kind = ast.ClassMemberSetter
		}
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		fn, err := p.parseFunctionRest(name, tok.Pos, false, false)
		if err != nil {
			return nil, err
		}
		member = ast.NewClassMember(kind, name, fn, nil, nil, isStatic)
	case tok.Kind == lexer.Identifier:
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseOptionalTypeAnnotation()
		if err != nil {
			return nil, err
		}
		var defaultValue ast.Expression
		if p.accept("=") {
			p.skipNewlines()
			if defaultValue, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
		member = ast.NewClassMember(ast.ClassMemberProperty, name, nil, typ, defaultValue, isStatic)
	default:
		return nil, p.errorAt(tok, "class member")
	}
	p.annotate(member, start)
	return member, nil
}
