package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

func astPosition(pos lexer.Position) ast.Position {
	return ast.Position{Line: pos.Line, Column: pos.Column}
}

// annotate sets the node's span from start to the end of the last consumed token.
func (p *parser) annotate(node ast.Node, start lexer.Position) {
	if node == nil {
		return
	}
	ast.SetSpan(node, ast.Span{Start: astPosition(start), End: astPosition(p.last.End)})
}

func annotateExpression[T ast.Expression](p *parser, expr T, start lexer.Position) T {
	p.annotate(expr, start)
	return expr
}

func annotateStatement[T ast.Statement](p *parser, stmt T, start lexer.Position) T {
	p.annotate(stmt, start)
	return stmt
}

func annotatePattern[T ast.Pattern](p *parser, pattern T, start lexer.Position) T {
	p.annotate(pattern, start)
	return pattern
}
