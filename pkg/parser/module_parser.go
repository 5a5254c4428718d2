package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

func (p *parser) parseProgram() (*ast.Program, error) {
	var body []ast.Statement
	for {
		p.skipSeparators()
		tok := p.peek()
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Is("#") {
			return nil, p.errorAt(tok, "statement")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
	program := ast.NewProgram(body)
	if len(p.tokens) > 0 {
		ast.SetSpan(program, ast.Span{Start: astPosition(p.tokens[0].Pos), End: astPosition(p.tokens[len(p.tokens)-1].End)})
	}
	return program, nil
}

// parseGrab handles
//
//	grab name [as alias]
//	grab a.b.c [as alias]
//	grab a.*
//	grab "relative/path" [as alias]
func (p *parser) parseGrab() (ast.Statement, error) {
	start := p.advance().Pos
	var (
		path       []*ast.Identifier
		source     *ast.StringLiteral
		isWildcard bool
	)
	if tok := p.peek(); tok.Kind == lexer.String {
		p.advance()
		source = annotateExpression(p, ast.NewStringLiteral(tok.Value), tok.Pos)
	} else {
		first, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		path = append(path, first)
		for p.at(".") {
			p.advance()
			if p.accept("*") {
				isWildcard = true
				break
			}
			segment, err := p.parseMemberName()
			if err != nil {
				return nil, err
			}
			path = append(path, segment)
		}
	}
	var alias *ast.Identifier
	if p.accept("as") {
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		alias = id
	}
	if isWildcard && alias != nil {
		return nil, &ParseError{Pos: p.last.Pos, Expected: "end of statement", Found: "'as' after wildcard grab"}
	}
	return annotateStatement(p, ast.NewGrabStatement(path, source, alias, isWildcard), start), nil
}

// parseShare handles `share <declaration>`, `share @ a, b #` and `share a, b`.
func (p *parser) parseShare() (ast.Statement, error) {
	start := p.advance().Pos
	tok := p.peek()
	switch {
	case tok.Is("let"), tok.Is("mut"), tok.Is("const"), tok.Is("conduit"), tok.Is("async"), tok.Is("make"):
		decl, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return annotateStatement(p, ast.NewShareStatement(decl, nil), start), nil
	case tok.Is("@"):
		p.advance()
		p.pushNewlines(true)
		defer p.popNewlines()
		var names []*ast.Identifier
		for !p.at("#") {
			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			names = append(names, id)
			if !p.accept(",") {
				break
			}
		}
		if _, err := p.expect("#"); err != nil {
			return nil, err
		}
		return annotateStatement(p, ast.NewShareStatement(nil, names), start), nil
	default:
		var names []*ast.Identifier
		for {
			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			names = append(names, id)
			if !p.accept(",") {
				break
			}
		}
		return annotateStatement(p, ast.NewShareStatement(nil, names), start), nil
	}
}
