package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Binding strength of each expression form, lowest first. Printing wraps an
// operand in parentheses when it binds more loosely than its position allows.
const (
	precAssign = iota + 1
	precPipeline
	precNullish
	precOr
	precAnd
	precNot
	precEquality
	precCompare
	precRange
	precAdditive
	precMultiplicative
	precPower
	precUnary
	precPostfix
	precPrimary
)

const printIndent = "    "

var reservedWords = map[string]struct{}{
	"conduit": {}, "let": {}, "mut": {}, "const": {}, "give": {}, "stop": {}, "next": {},
	"if": {}, "else": {}, "check": {}, "repeat": {}, "while": {}, "try": {}, "catch": {},
	"finally": {}, "fail": {}, "make": {}, "extend": {}, "build": {}, "me": {}, "parent": {},
	"grab": {}, "share": {}, "wait": {}, "async": {}, "yes": {}, "no": {}, "none": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "as": {}, "yield": {}, "when": {}, "to": {},
	"static": {},
}

// IsReservedWord reports whether name is a RIFT keyword.
func IsReservedWord(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// Print renders node as canonical RIFT source.
func Print(node Node) string {
	p := &printer{}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Body {
			p.statement(stmt)
			p.buf.WriteByte('\n')
		}
	case Statement:
		p.statement(n)
	case Pattern:
		p.pattern(n)
	default:
		fmt.Fprintf(&p.buf, "<%s>", node.NodeType())
	}
	return p.buf.String()
}

type printer struct {
	buf   bytes.Buffer
	depth int
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat(printIndent, p.depth))
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		fmt.Fprintf(&p.buf, "%s ", s.Kind)
		p.pattern(s.Target)
		p.typeAnnotation(s.TypeAnnotation)
		p.buf.WriteString(" = ")
		p.expression(s.Value, precAssign)
	case *FunctionDefinition:
		p.function(s)
	case *ClassDefinition:
		fmt.Fprintf(&p.buf, "make %s ", s.ID.Name)
		if s.Parent != nil {
			fmt.Fprintf(&p.buf, "extend %s ", s.Parent.Name)
		}
		p.buf.WriteByte('@')
		p.depth++
		for _, member := range s.Members {
			p.newline()
			p.classMember(member)
		}
		p.depth--
		p.newline()
		p.buf.WriteByte('#')
	case *WhileLoop:
		p.buf.WriteString("while ")
		p.expression(s.Condition, precAssign)
		p.buf.WriteByte(' ')
		p.block(s.Body)
	case *RepeatLoop:
		p.buf.WriteString("repeat ")
		if s.IndexPattern != nil {
			p.buf.WriteByte('(')
			p.pattern(s.IndexPattern)
			p.buf.WriteString(", ")
			p.pattern(s.Pattern)
			p.buf.WriteByte(')')
		} else {
			p.pattern(s.Pattern)
		}
		p.buf.WriteString(" in ")
		p.expression(s.Iterable, precAssign)
		p.buf.WriteByte(' ')
		p.block(s.Body)
	case *BreakStatement:
		p.buf.WriteString("stop")
	case *ContinueStatement:
		p.buf.WriteString("next")
	case *ReturnStatement:
		p.buf.WriteString("give")
		if s.Argument != nil {
			p.buf.WriteByte(' ')
			p.expression(s.Argument, precAssign)
		}
	case *FailStatement:
		p.buf.WriteString("fail ")
		p.expression(s.Argument, precAssign)
	case *TryStatement:
		p.buf.WriteString("try ")
		p.block(s.Body)
		if s.CatchBody != nil {
			p.buf.WriteString(" catch ")
			if s.CatchBinding != nil {
				p.buf.WriteString(s.CatchBinding.Name)
				p.buf.WriteByte(' ')
			}
			p.block(s.CatchBody)
		}
		if s.FinallyBody != nil {
			p.buf.WriteString(" finally ")
			p.block(s.FinallyBody)
		}
	case *GrabStatement:
		p.buf.WriteString("grab ")
		if s.Source != nil {
			p.buf.WriteString(quoteString(s.Source.Value))
		} else {
			names := make([]string, len(s.Path))
			for idx, part := range s.Path {
				names[idx] = part.Name
			}
			p.buf.WriteString(strings.Join(names, "."))
			if s.IsWildcard {
				p.buf.WriteString(".*")
			}
		}
		if s.Alias != nil {
			fmt.Fprintf(&p.buf, " as %s", s.Alias.Name)
		}
	case *ShareStatement:
		p.buf.WriteString("share ")
		if s.Declaration != nil {
			p.statement(s.Declaration)
			return
		}
		names := make([]string, len(s.Names))
		for idx, name := range s.Names {
			names[idx] = name.Name
		}
		fmt.Fprintf(&p.buf, "@ %s #", strings.Join(names, ", "))
	case *BlockExpression:
		p.block(s)
	case *MapLiteral:
		p.buf.WriteByte('(')
		p.expression(s, precAssign)
		p.buf.WriteByte(')')
	case Expression:
		p.expression(s, precAssign)
	default:
		fmt.Fprintf(&p.buf, "<%s>", stmt.NodeType())
	}
}

func (p *printer) function(fn *FunctionDefinition) {
	if fn.IsAsync {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString("conduit")
	if fn.IsGenerator {
		p.buf.WriteByte('*')
	}
	p.buf.WriteByte(' ')
	p.buf.WriteString(fn.ID.Name)
	p.params(fn.Params)
	p.typeAnnotation(fn.ReturnType)
	p.buf.WriteByte(' ')
	p.block(fn.Body)
}

func (p *printer) classMember(member *ClassMember) {
	if member.IsStatic {
		p.buf.WriteString("static ")
	}
	switch member.Kind {
	case ClassMemberConstructor:
		p.buf.WriteString("build")
		p.params(member.Function.Params)
		p.buf.WriteByte(' ')
		p.block(member.Function.Body)
	case ClassMemberMethod:
		p.function(member.Function)
	case ClassMemberGetter, ClassMemberSetter:
		if member.Kind == ClassMemberGetter {
			p.buf.WriteString("get ")
		} else {
			p.buf.WriteString("set ")
		}
		p.buf.WriteString(member.Name.Name)
		p.params(member.Function.Params)
		p.buf.WriteByte(' ')
		p.block(member.Function.Body)
	case ClassMemberProperty:
		p.buf.WriteString(member.Name.Name)
		p.typeAnnotation(member.TypeAnnotation)
		if member.Default != nil {
			p.buf.WriteString(" = ")
			p.expression(member.Default, precAssign)
		}
	}
}

func (p *printer) params(params []*FunctionParameter) {
	p.buf.WriteByte('(')
	for idx, param := range params {
		if idx > 0 {
			p.buf.WriteString(", ")
		}
		if param.IsRest {
			p.buf.WriteString("...")
		}
		p.pattern(param.Name)
		p.typeAnnotation(param.TypeAnnotation)
		if param.Default != nil {
			p.buf.WriteString(" = ")
			p.expression(param.Default, precPipeline)
		}
	}
	p.buf.WriteByte(')')
}

func (p *printer) typeAnnotation(t *SimpleTypeExpression) {
	if t == nil || t.Name == nil {
		return
	}
	fmt.Fprintf(&p.buf, ": %s", t.Name.Name)
}

func (p *printer) block(block *BlockExpression) {
	if block == nil || len(block.Body) == 0 {
		p.buf.WriteString("@ #")
		return
	}
	p.buf.WriteByte('@')
	p.depth++
	for _, stmt := range block.Body {
		p.newline()
		p.statement(stmt)
	}
	p.depth--
	p.newline()
	p.buf.WriteByte('#')
}

func (p *printer) expression(expr Expression, min int) {
	prec := precedenceOf(expr)
	if prec < min {
		p.buf.WriteByte('(')
		defer p.buf.WriteByte(')')
	}
	switch e := expr.(type) {
	case *Identifier:
		p.buf.WriteString(e.Name)
	case *NumberLiteral:
		p.buf.WriteString(FormatNumber(e.Value))
	case *StringLiteral:
		p.buf.WriteString(quoteString(e.Value))
	case *BooleanLiteral:
		if e.Value {
			p.buf.WriteString("yes")
		} else {
			p.buf.WriteString("no")
		}
	case *NoneLiteral:
		p.buf.WriteString("none")
	case *TemplateString:
		p.buf.WriteByte('`')
		for _, part := range e.Parts {
			if lit, ok := part.(*StringLiteral); ok {
				p.buf.WriteString(escapeTemplate(lit.Value))
				continue
			}
			p.buf.WriteString("$@ ")
			p.expression(part, precAssign)
			p.buf.WriteString(" #")
		}
		p.buf.WriteByte('`')
	case *ArrayLiteral:
		if len(e.Elements) == 0 {
			p.buf.WriteString("~!")
			return
		}
		p.buf.WriteByte('~')
		for idx, el := range e.Elements {
			if idx > 0 {
				p.buf.WriteString(", ")
			}
			p.expression(el, precAssign)
		}
		p.buf.WriteByte('!')
	case *MapLiteral:
		if len(e.Entries) == 0 {
			p.buf.WriteString("@#")
			return
		}
		p.buf.WriteString("@ ")
		for idx, entry := range e.Entries {
			if idx > 0 {
				p.buf.WriteString(", ")
			}
			p.mapEntry(entry)
		}
		p.buf.WriteString(" #")
	case *SpreadExpression:
		p.buf.WriteString("...")
		p.expression(e.Argument, precNullish)
	case *UnaryExpression:
		if e.Operator == "not" {
			p.buf.WriteString("not ")
			p.expression(e.Operand, precNot)
			return
		}
		p.buf.WriteString(e.Operator)
		p.expression(e.Operand, precUnary)
	case *BinaryExpression:
		prec := binaryPrecedence(e.Operator)
		left, right := prec, prec+1
		switch {
		case e.Operator == "**":
			left, right = prec+1, prec
		case prec == precCompare:
			left = prec + 1
		}
		p.expression(e.Left, left)
		fmt.Fprintf(&p.buf, " %s ", e.Operator)
		p.expression(e.Right, right)
	case *CompareExpression:
		for idx, operand := range e.Operands {
			if idx > 0 {
				fmt.Fprintf(&p.buf, " %s ", e.Operators[idx-1])
			}
			p.expression(operand, precRange)
		}
	case *RangeExpression:
		p.expression(e.Start, precAdditive)
		if e.Keyword {
			p.buf.WriteString(" to ")
		} else {
			p.buf.WriteString("..")
		}
		p.expression(e.End, precAdditive)
	case *PipelineExpression:
		p.expression(e.Left, precPipeline)
		if e.IsAsync {
			p.buf.WriteString(" ~! ")
		} else {
			p.buf.WriteString(" -! ")
		}
		p.expression(e.Right, precNullish)
	case *AssignmentExpression:
		p.expression(e.Left, precPostfix)
		fmt.Fprintf(&p.buf, " %s ", e.Operator)
		p.expression(e.Right, precAssign)
	case *FunctionCall:
		p.expression(e.Callee, precPostfix)
		p.buf.WriteByte('(')
		for idx, arg := range e.Arguments {
			if idx > 0 {
				p.buf.WriteString(", ")
			}
			p.expression(arg, precAssign)
		}
		p.buf.WriteByte(')')
	case *MemberAccessExpression:
		p.expression(e.Object, precPostfix)
		switch {
		case e.IsStatic:
			p.buf.WriteString("::")
		case e.IsSafe:
			p.buf.WriteString("?.")
		default:
			p.buf.WriteByte('.')
		}
		p.buf.WriteString(e.Member.Name)
	case *IndexExpression:
		p.expression(e.Object, precPostfix)
		if e.IsSafe {
			p.buf.WriteString("?~")
		} else {
			p.buf.WriteByte('~')
		}
		p.expression(e.Index, precAssign)
		p.buf.WriteByte('!')
	case *MeExpression:
		p.buf.WriteString("me")
	case *ParentExpression:
		p.buf.WriteString("parent")
	case *WaitExpression:
		p.buf.WriteString("wait ")
		p.expression(e.Argument, precUnary)
	case *YieldExpression:
		p.buf.WriteString("yield")
		if e.Argument != nil {
			p.buf.WriteByte(' ')
			p.expression(e.Argument, precPipeline)
		}
	case *LambdaExpression:
		p.lambda(e)
	case *BlockExpression:
		p.block(e)
	case *IfExpression:
		p.buf.WriteString("if ")
		p.expression(e.Condition, precAssign)
		p.buf.WriteByte(' ')
		p.block(e.Consequent)
		if e.Alternate != nil {
			p.buf.WriteString(" else ")
			p.expression(e.Alternate, precAssign)
		}
	case *CheckExpression:
		p.buf.WriteString("check ")
		p.expression(e.Subject, precAssign)
		p.buf.WriteString(" @")
		p.depth++
		for _, clause := range e.Clauses {
			p.newline()
			p.pattern(clause.Pattern)
			if clause.Guard != nil {
				p.buf.WriteString(" when ")
				p.expression(clause.Guard, precAssign)
			}
			p.buf.WriteString(" =! ")
			p.arrowBody(clause.Body)
		}
		p.depth--
		p.newline()
		p.buf.WriteByte('#')
	default:
		fmt.Fprintf(&p.buf, "<%s>", expr.NodeType())
	}
}

func (p *printer) lambda(e *LambdaExpression) {
	if e.IsAsync {
		p.buf.WriteString("async ")
	}
	if !e.IsArrow {
		p.buf.WriteString("conduit")
		if e.IsGenerator {
			p.buf.WriteByte('*')
		}
		p.params(e.Params)
		p.typeAnnotation(e.ReturnType)
		p.buf.WriteByte(' ')
		if block, ok := e.Body.(*BlockExpression); ok {
			p.block(block)
		} else {
			p.block(NewBlockExpression([]Statement{e.Body}))
		}
		return
	}
	p.params(e.Params)
	p.buf.WriteString(" =! ")
	p.arrowBody(e.Body)
}

func (p *printer) arrowBody(body Expression) {
	switch b := body.(type) {
	case *BlockExpression:
		p.block(b)
	case *MapLiteral:
		p.buf.WriteByte('(')
		p.expression(b, precAssign)
		p.buf.WriteByte(')')
	default:
		p.expression(b, precAssign)
	}
}

func (p *printer) mapEntry(entry *MapEntry) {
	if entry.Spread != nil {
		p.buf.WriteString("...")
		p.expression(entry.Spread, precNullish)
		return
	}
	if entry.Computed {
		p.buf.WriteByte('~')
		p.expression(entry.Key, precAssign)
		p.buf.WriteByte('!')
	} else if lit, ok := entry.Key.(*StringLiteral); ok {
		p.buf.WriteString(mapKey(lit.Value))
	} else {
		p.expression(entry.Key, precPrimary)
	}
	p.buf.WriteString(": ")
	p.expression(entry.Value, precAssign)
}

func (p *printer) pattern(pattern Pattern) {
	switch pt := pattern.(type) {
	case *Identifier:
		p.buf.WriteString(pt.Name)
	case *WildcardPattern:
		p.buf.WriteByte('_')
	case *LiteralPattern:
		if num, ok := pt.Literal.(*NumberLiteral); ok {
			p.buf.WriteString(FormatNumber(num.Value))
			return
		}
		p.expression(pt.Literal, precPrimary)
	case *RangePattern:
		fmt.Fprintf(&p.buf, "%s..%s", FormatNumber(pt.Start.Value), FormatNumber(pt.End.Value))
	case *TypedPattern:
		p.pattern(pt.Pattern)
		p.typeAnnotation(pt.TypeAnnotation)
	case *ArrayPattern:
		if len(pt.Elements) == 0 && pt.RestPattern == nil {
			p.buf.WriteString("~!")
			return
		}
		p.buf.WriteByte('~')
		for idx, el := range pt.Elements {
			if idx > 0 {
				p.buf.WriteString(", ")
			}
			p.pattern(el)
		}
		if pt.RestPattern != nil {
			if len(pt.Elements) > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString("...")
			p.pattern(pt.RestPattern)
		}
		p.buf.WriteByte('!')
	case *MapPattern:
		if len(pt.Fields) == 0 && pt.RestPattern == nil {
			p.buf.WriteString("@#")
			return
		}
		p.buf.WriteString("@ ")
		for idx, field := range pt.Fields {
			if idx > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(mapKey(field.Key))
			if id, ok := field.Pattern.(*Identifier); ok && id.Name == field.Key {
				continue
			}
			p.buf.WriteString(": ")
			p.pattern(field.Pattern)
		}
		if pt.RestPattern != nil {
			if len(pt.Fields) > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString("...")
			p.pattern(pt.RestPattern)
		}
		p.buf.WriteString(" #")
	default:
		fmt.Fprintf(&p.buf, "<%s>", pattern.NodeType())
	}
}

func precedenceOf(expr Expression) int {
	switch e := expr.(type) {
	case *AssignmentExpression:
		return precAssign
	case *LambdaExpression:
		if e.IsArrow {
			return precAssign
		}
		return precPrimary
	case *PipelineExpression:
		return precPipeline
	case *BinaryExpression:
		return binaryPrecedence(e.Operator)
	case *CompareExpression:
		return precCompare
	case *RangeExpression:
		return precRange
	case *UnaryExpression:
		if e.Operator == "not" {
			return precNot
		}
		return precUnary
	case *YieldExpression:
		// the operand extends to the end of the pipeline
		return precAssign
	case *WaitExpression, *SpreadExpression:
		return precUnary
	case *FunctionCall, *MemberAccessExpression, *IndexExpression:
		return precPostfix
	case *NumberLiteral:
		if e.Value < 0 {
			return precUnary
		}
		return precPrimary
	default:
		return precPrimary
	}
}

func binaryPrecedence(op string) int {
	switch op {
	case "??":
		return precNullish
	case "or":
		return precOr
	case "and":
		return precAnd
	case "==", "!=":
		return precEquality
	case "<", ">", "<=", ">=", "in":
		return precCompare
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	case "**":
		return precPower
	default:
		return precPrimary
	}
}

// FormatNumber renders a number the way RIFT prints it: integral values carry no fraction.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) && v < 1e15 && v > -1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func mapKey(key string) string {
	if isPlainName(key) && !IsReservedWord(key) {
		return key
	}
	return quoteString(key)
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for idx, r := range s {
		if r == '_' || unicode.IsLetter(r) || (idx > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func escapeTemplate(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '`':
			sb.WriteString("\\`")
		case '\\':
			sb.WriteString(`\\`)
		case '$':
			sb.WriteString(`\$`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
