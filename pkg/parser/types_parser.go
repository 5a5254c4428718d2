package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

// parseTypeAnnotation parses the name after `:`. `none` and `conduit` are
// keywords but also valid type names.
func (p *parser) parseTypeAnnotation() (*ast.SimpleTypeExpression, error) {
	tok := p.peek()
	if tok.Kind != lexer.Identifier && !tok.Is("none") && !tok.Is("conduit") {
		return nil, p.errorAt(tok, "type name")
	}
	p.advance()
	name := annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos)
	typ := ast.NewSimpleTypeExpression(name)
	p.annotate(typ, tok.Pos)
	return typ, nil
}

// parseOptionalTypeAnnotation consumes `: Type` when present.
func (p *parser) parseOptionalTypeAnnotation() (*ast.SimpleTypeExpression, error) {
	if !p.at(":") {
		return nil, nil
	}
	p.advance()
	return p.parseTypeAnnotation()
}

func isTypeNameToken(tok lexer.Token) bool {
	return tok.Kind == lexer.Identifier || tok.Is("none") || tok.Is("conduit")
}
