package parser

import (
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

// Precedence climbing, lowest level first:
//
//	assignment  = += -= *= /=   (right)
//	pipeline    -! ~!
//	nullish     ??
//	or, and, not
//	equality    == !=
//	comparison  < > <= >= in    (chains)
//	range       .. to
//	additive, multiplicative, power (right)
//	unary       - + wait; yield (operand is a whole pipeline)
//	postfix     call . ?. :: ~index! ?~index!

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() (ast.Expression, error) {
	start := p.peek().Pos
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if !isAssignmentOperator(tok) {
		return left, nil
	}
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, &ParseError{Pos: tok.Pos, Expected: "assignable target before '" + tok.Lexeme + "'", Found: string(left.NodeType())}
	}
	p.advance()
	p.skipNewlines()
	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	assign := ast.NewAssignmentExpression(ast.AssignmentOperator(tok.Lexeme), target, right)
	return annotateExpression(p, assign, start), nil
}

// parsePipeline is left-associative. A line beginning with `-!` or `~!`
// continues the pipeline from the previous line.
func (p *parser) parsePipeline() (ast.Expression, error) {
	start := p.peek().Pos
	left, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	for {
		next := p.peekPastNewlines()
		if !next.Is("-!") && !next.Is("~!") {
			return left, nil
		}
		p.skipNewlines()
		op := p.advance()
		p.skipNewlines()
		right, err := p.parseNullish()
		if err != nil {
			return nil, err
		}
		left = annotateExpression(p, ast.NewPipelineExpression(left, right, op.Lexeme == "~!"), start)
	}
}

func (p *parser) parseNullish() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parseOr, "??")
}

func (p *parser) parseOr() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parseAnd, "or")
}

func (p *parser) parseAnd() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parseNot, "and")
}

func (p *parser) parseNot() (ast.Expression, error) {
	if tok := p.peek(); tok.Is("not") {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewUnaryExpression("not", operand), tok.Pos), nil
	}
	return p.parseEquality()
}

func (p *parser) parseEquality() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parseComparison, "==", "!=")
}

// parseComparison folds `a < b < c` into a CompareExpression; a single
// comparison stays a BinaryExpression.
func (p *parser) parseComparison() (ast.Expression, error) {
	start := p.peek().Pos
	first, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	operands := []ast.Expression{first}
	var operators []string
	for {
		tok := p.peek()
		if !(tok.Is("<") || tok.Is(">") || tok.Is("<=") || tok.Is(">=") || tok.Is("in")) {
			break
		}
		p.advance()
		p.skipNewlines()
		operand, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		operators = append(operators, tok.Lexeme)
		operands = append(operands, operand)
	}
	switch len(operators) {
	case 0:
		return first, nil
	case 1:
		return annotateExpression(p, ast.NewBinaryExpression(operators[0], operands[0], operands[1]), start), nil
	default:
		return annotateExpression(p, ast.NewCompareExpression(operands, operators), start), nil
	}
}

func (p *parser) parseRange() (ast.Expression, error) {
	start := p.peek().Pos
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if !tok.Is("..") && !tok.Is("to") {
		return left, nil
	}
	p.advance()
	p.skipNewlines()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewRangeExpression(left, right, tok.Is("to")), start), nil
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseLeftAssociative(p.parsePower, "*", "/", "%")
}

func (p *parser) parsePower() (ast.Expression, error) {
	start := p.peek().Pos
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if !p.at("**") {
		return base, nil
	}
	p.advance()
	p.skipNewlines()
	exponent, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	return annotateExpression(p, ast.NewBinaryExpression("**", base, exponent), start), nil
}

func (p *parser) parseLeftAssociative(operand func() (ast.Expression, error), operators ...string) (ast.Expression, error) {
	start := p.peek().Pos
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		matched := ""
		for _, op := range operators {
			if tok.Is(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		p.advance()
		p.skipNewlines()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = annotateExpression(p, ast.NewBinaryExpression(matched, left, right), start)
	}
}

func (p *parser) parseUnary() (ast.Expression, error) {
	tok := p.peek()
	switch {
	case tok.Is("-") || tok.Is("+"):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewUnaryExpression(tok.Lexeme, operand), tok.Pos), nil
	case tok.Is("wait"):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewWaitExpression(operand), tok.Pos), nil
	case tok.Is("yield"):
		p.advance()
		if isTerminator(p.tokens[p.pos]) {
			return annotateExpression(p, ast.NewYieldExpression(nil), tok.Pos), nil
		}
		operand, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewYieldExpression(operand), tok.Pos), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expression, error) {
	start := p.peek().Pos
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		// postfix operators must sit on the same line as their operand
		tok := p.tokens[p.pos]
		switch {
		case tok.Is("("):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = annotateExpression(p, ast.NewFunctionCall(expr, args), start)
		case tok.Is(".") || tok.Is("?.") || tok.Is("::"):
			p.advance()
			name, err := p.parseMemberName()
			if err != nil {
				return nil, err
			}
			expr = annotateExpression(p, ast.NewMemberAccessExpression(expr, name, tok.Is("?."), tok.Is("::")), start)
		case tok.Is("~") || tok.Is("?~"):
			p.advance()
			p.pushNewlines(true)
			var index ast.Expression
			err := p.withBareLambdas(true, func() error {
				var ierr error
				if index, ierr = p.parseExpression(); ierr != nil {
					return ierr
				}
				_, ierr = p.expect("!")
				return ierr
			})
			p.popNewlines()
			if err != nil {
				return nil, err
			}
			expr = annotateExpression(p, ast.NewIndexExpression(expr, index, tok.Is("?~")), start)
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	p.pushNewlines(true)
	var args []ast.Expression
	err := p.withBareLambdas(true, func() error {
		for !p.at(")") {
			arg, err := p.parseElement()
			if err != nil {
				return err
			}
			args = append(args, arg)
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
	return args, nil
}

// parseElement parses a list element or call argument, which may be a `...spread`.
func (p *parser) parseElement() (ast.Expression, error) {
	if tok := p.peek(); tok.Is("...") {
		p.advance()
		arg, err := p.parseNullish()
		if err != nil {
			return nil, err
		}
		return annotateExpression(p, ast.NewSpreadExpression(arg), tok.Pos), nil
	}
	return p.parseExpression()
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return annotateExpression(p, ast.NewNumberLiteral(tok.Num), tok.Pos), nil
	case lexer.String:
		p.advance()
		return annotateExpression(p, ast.NewStringLiteral(tok.Value), tok.Pos), nil
	case lexer.TemplateStart:
		return p.parseTemplateString()
	case lexer.Identifier:
		if p.identifierFollowedByArrow() {
			return p.parseArrowLambda(false)
		}
		p.advance()
		return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), nil
	case lexer.Keyword:
		switch tok.Lexeme {
		case "yes", "no":
			p.advance()
			return annotateExpression(p, ast.NewBooleanLiteral(tok.Lexeme == "yes"), tok.Pos), nil
		case "none":
			p.advance()
			return annotateExpression(p, ast.NewNoneLiteral(), tok.Pos), nil
		case "me":
			p.advance()
			return annotateExpression(p, ast.NewMeExpression(), tok.Pos), nil
		case "parent":
			p.advance()
			return annotateExpression(p, ast.NewParentExpression(), tok.Pos), nil
		case "conduit":
			return p.parseAnonymousConduit(false)
		case "async":
			next := p.peekAt(1)
			if next.Is("conduit") {
				return p.parseAnonymousConduit(true)
			}
			if next.Is("(") || next.Kind == lexer.Identifier {
				return p.parseArrowLambda(true)
			}
		case "if":
			return p.parseIfExpression()
		case "check":
			return p.parseCheckExpression()
		case "repeat":
			if p.repeatCallAhead() {
				p.advance()
				return annotateExpression(p, ast.NewIdentifier(tok.Lexeme), tok.Pos), nil
			}
		}
	case lexer.Delimiter, lexer.Operator:
		switch {
		case tok.Is("("):
			if p.parenthesizedArrowAhead() {
				return p.parseArrowLambda(false)
			}
			return p.parseParenthesized()
		case tok.Is("~"):
			return p.parseListLiteral()
		case tok.Is("~!"):
			p.advance()
			return annotateExpression(p, ast.NewArrayLiteral(nil), tok.Pos), nil
		case tok.Is("@"):
			return p.parseMapLiteral()
		}
	}
	return nil, p.errorAt(tok, "expression")
}

func (p *parser) parseParenthesized() (ast.Expression, error) {
	p.advance()
	p.pushNewlines(true)
	var expr ast.Expression
	err := p.withBareLambdas(true, func() error {
		var perr error
		if expr, perr = p.parseExpression(); perr != nil {
			return perr
		}
		_, perr = p.expect(")")
		return perr
	})
	p.popNewlines()
	if err != nil {
		return nil, err
	}
	return expr, nil
}
