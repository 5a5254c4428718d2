package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

func (p *parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	if tok.Kind == lexer.Keyword {
		switch tok.Lexeme {
		case "let", "mut", "const":
			return p.parseVariableDeclaration()
		case "conduit":
			if p.functionDefinitionAhead(0) {
				return p.parseFunctionDefinition()
			}
		case "async":
			if p.peekAt(1).Is("conduit") && p.functionDefinitionAhead(1) {
				return p.parseFunctionDefinition()
			}
		case "make":
			return p.parseClassDefinition()
		case "while":
			return p.parseWhileLoop()
		case "repeat":
			if !p.repeatCallAhead() {
				return p.parseRepeatLoop()
			}
		case "try":
			return p.parseTryStatement()
		case "give":
			return p.parseReturnStatement()
		case "stop":
			p.advance()
			return annotateStatement(p, ast.NewBreakStatement(), tok.Pos), nil
		case "next":
			p.advance()
			return annotateStatement(p, ast.NewContinueStatement(), tok.Pos), nil
		case "fail":
			p.advance()
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return annotateStatement(p, ast.NewFailStatement(arg), tok.Pos), nil
		case "grab":
			return p.parseGrab()
		case "share":
			return p.parseShare()
		}
	}
	if tok.Is("@") {
		return p.parseBlock()
	}
	return p.parseExpression()
}

// functionDefinitionAhead reports whether the `conduit` keyword at offset is
// followed by a name (optionally after `*`), as opposed to an anonymous conduit.
func (p *parser) functionDefinitionAhead(offset int) bool {
	next := p.peekAt(offset + 1)
	if next.Is("*") {
		next = p.peekAt(offset + 2)
	}
	return next.Kind == lexer.Identifier
}

// parseBlock parses `@ statements #`. Line breaks inside are significant.
func (p *parser) parseBlock() (*ast.BlockExpression, error) {
	open, err := p.expect("@")
	if err != nil {
		return nil, err
	}
	p.pushNewlines(false)
	var body []ast.Statement
	for {
		p.skipSeparators()
		tok := p.tokens[p.pos]
		if tok.Is("#") {
			break
		}
		if tok.Kind == lexer.EOF {
			p.popNewlines()
			return nil, p.errorAt(tok, "'#' to close block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			p.popNewlines()
			return nil, err
		}
		body = append(body, stmt)
		if err := p.endStatement(); err != nil {
			p.popNewlines()
			return nil, err
		}
	}
	p.advance()
	p.popNewlines()
	return annotateExpression(p, ast.NewBlockExpression(body), open.Pos), nil
}

func (p *parser) parseIfExpression() (*ast.IfExpression, error) {
	start := p.advance().Pos
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var alternate ast.Expression
	if p.peekPastNewlines().Is("else") {
		p.skipNewlines()
		p.advance()
		if p.at("if") {
			alternate, err = p.parseIfExpression()
		} else {
			alternate, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return annotateExpression(p, ast.NewIfExpression(cond, consequent, alternate), start), nil
}

func (p *parser) parseWhileLoop() (ast.Statement, error) {
	start := p.advance().Pos
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewWhileLoop(cond, body), start), nil
}

// parseRepeatLoop handles `repeat pattern in expr @ #` and `repeat (i, x) in expr @ #`.
func (p *parser) parseRepeatLoop() (ast.Statement, error) {
	start := p.advance().Pos
	var indexPattern, pattern ast.Pattern
	var err error
	if p.at("(") {
		p.advance()
		p.pushNewlines(true)
		indexPattern, err = p.parsePattern(true)
		if err == nil {
			_, err = p.expect(",")
		}
		if err == nil {
			pattern, err = p.parsePattern(true)
		}
		if err == nil {
			_, err = p.expect(")")
		}
		p.popNewlines()
	} else {
		pattern, err = p.parsePattern(true)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewRepeatLoop(pattern, iterable, body, indexPattern), start), nil
}

func (p *parser) parseTryStatement() (ast.Statement, error) {
	start := p.advance().Pos
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var (
		binding     *ast.Identifier
		catchBody   *ast.BlockExpression
		finallyBody *ast.BlockExpression
	)
	if p.peekPastNewlines().Is("catch") {
		p.skipNewlines()
		p.advance()
		if p.peek().Kind == lexer.Identifier {
			if binding, err = p.parseIdentifier(); err != nil {
				return nil, err
			}
		}
		if catchBody, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	if p.peekPastNewlines().Is("finally") {
		p.skipNewlines()
		p.advance()
		if finallyBody, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	if catchBody == nil && finallyBody == nil {
		return nil, p.errorAt(p.peek(), "'catch' or 'finally'")
	}
	return annotateStatement(p, ast.NewTryStatement(body, binding, catchBody, finallyBody), start), nil
}

func (p *parser) parseReturnStatement() (ast.Statement, error) {
	start := p.advance().Pos
	if isTerminator(p.tokens[p.pos]) {
		return annotateStatement(p, ast.NewReturnStatement(nil), start), nil
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return annotateStatement(p, ast.NewReturnStatement(arg), start), nil
}

// parseCheckExpression parses `check subject @ clause* #`. Clauses are
// `pattern [when guard] =! body`, optionally separated by line breaks, `,`
// or `;`; a clause may follow the previous body directly on the same line.
func (p *parser) parseCheckExpression() (*ast.CheckExpression, error) {
	start := p.advance().Pos
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("@"); err != nil {
		return nil, err
	}
	p.pushNewlines(false)
	defer p.popNewlines()

	var clauses []*ast.CheckClause
	for {
		for p.tokens[p.pos].Kind == lexer.Newline || p.tokens[p.pos].Is(";") || p.tokens[p.pos].Is(",") {
			p.pos++
		}
		if p.tokens[p.pos].Is("#") {
			p.advance()
			break
		}
		clause, err := p.parseCheckClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		tok := p.tokens[p.pos]
		if !(tok.Kind == lexer.Newline || tok.Is(";") || tok.Is(",") || tok.Is("#") || p.canBeginPattern()) {
			return nil, p.errorAt(tok, "clause separator")
		}
	}
	return annotateExpression(p, ast.NewCheckExpression(subject, clauses), start), nil
}

func (p *parser) parseCheckClause() (*ast.CheckClause, error) {
	start := p.peek().Pos
	pattern, err := p.parsePattern(true)
	if err != nil {
		return nil, err
	}
	var guard ast.Expression
	if p.accept("when") {
		err := p.withBareLambdas(false, func() error {
			var gerr error
			guard, gerr = p.parseExpression()
			return gerr
		})
		if err != nil {
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
	clause := ast.NewCheckClause(pattern, body, guard)
	p.annotate(clause, start)
	return clause, nil
}
