package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func None() *NoneLiteral {
	return NewNoneLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func MapLit(entries ...*MapEntry) *MapLiteral {
	return NewMapLiteral(entries)
}

// Entry builds a `key: value` map entry with a plain name key.
func Entry(key string, value Expression) *MapEntry {
	return NewMapEntry(Str(key), value, false)
}

func Spread(argument Expression) *SpreadExpression {
	return NewSpreadExpression(argument)
}

func Tmpl(parts ...Expression) *TemplateString {
	return NewTemplateString(parts)
}

func Ty(name string) *SimpleTypeExpression {
	return NewSimpleTypeExpression(ID(name))
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Range(start, end Expression) *RangeExpression {
	return NewRangeExpression(start, end, false)
}

func Pipe(left, right Expression) *PipelineExpression {
	return NewPipelineExpression(left, right, false)
}

func AsyncPipe(left, right Expression) *PipelineExpression {
	return NewPipelineExpression(left, right, true)
}

func Call(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func CallName(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Member(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member), false, false)
}

func SafeMember(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member), true, false)
}

func Static(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member), false, true)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index, false)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, target, value)
}

func AssignOp(op AssignmentOperator, target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, target, value)
}

func Me() *MeExpression {
	return NewMeExpression()
}

func Parent() *ParentExpression {
	return NewParentExpression()
}

func Wait(argument Expression) *WaitExpression {
	return NewWaitExpression(argument)
}

func Yield(argument Expression) *YieldExpression {
	return NewYieldExpression(argument)
}

func Block(body ...Statement) *BlockExpression {
	return NewBlockExpression(body)
}

func If(condition Expression, consequent *BlockExpression, alternate Expression) *IfExpression {
	return NewIfExpression(condition, consequent, alternate)
}

// Arrow builds `(params) =! body`.
func Arrow(params []*FunctionParameter, body Expression) *LambdaExpression {
	return NewLambdaExpression(params, body, nil, false, false, true)
}

func Check(subject Expression, clauses ...*CheckClause) *CheckExpression {
	return NewCheckExpression(subject, clauses)
}

func Clause(pattern Pattern, body Expression) *CheckClause {
	return NewCheckClause(pattern, body, nil)
}

func GuardedClause(pattern Pattern, guard Expression, body Expression) *CheckClause {
	return NewCheckClause(pattern, body, guard)
}

// Pattern helpers.

func Wild() *WildcardPattern {
	return NewWildcardPattern()
}

func LitP(literal Literal) *LiteralPattern {
	return NewLiteralPattern(literal)
}

func RangeP(start, end float64) *RangePattern {
	return NewRangePattern(Num(start), Num(end))
}

func TypedP(pattern Pattern, typeName string) *TypedPattern {
	return NewTypedPattern(pattern, Ty(typeName))
}

func ArrP(elements []Pattern, rest Pattern) *ArrayPattern {
	return NewArrayPattern(elements, rest)
}

func FieldP(key string, pattern Pattern) *MapPatternField {
	return NewMapPatternField(key, pattern)
}

func MapP(fields []*MapPatternField, rest Pattern) *MapPattern {
	return NewMapPattern(fields, rest)
}

// Statement helpers.

func Let(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationLet, ID(name), value, nil)
}

func Mut(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationMut, ID(name), value, nil)
}

func Const(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationConst, ID(name), value, nil)
}

func LetP(target Pattern, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(DeclarationLet, target, value, nil)
}

func Param(name string) *FunctionParameter {
	return NewFunctionParameter(ID(name), nil, nil, false)
}

func ParamDefault(name string, defaultValue Expression) *FunctionParameter {
	return NewFunctionParameter(ID(name), nil, defaultValue, false)
}

func RestParam(name string) *FunctionParameter {
	return NewFunctionParameter(ID(name), nil, nil, true)
}

func Fn(name string, params []*FunctionParameter, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), params, Block(body...), nil, false, false)
}

func AsyncFn(name string, params []*FunctionParameter, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), params, Block(body...), nil, true, false)
}

func GenFn(name string, params []*FunctionParameter, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), params, Block(body...), nil, false, true)
}

func Class(name string, parent string, members ...*ClassMember) *ClassDefinition {
	var parentID *Identifier
	if parent != "" {
		parentID = ID(parent)
	}
	return NewClassDefinition(ID(name), parentID, members)
}

func Ctor(params []*FunctionParameter, body ...Statement) *ClassMember {
	fn := Fn("build", params, body...)
	return NewClassMember(ClassMemberConstructor, fn.ID, fn, nil, nil, false)
}

func Method(name string, params []*FunctionParameter, body ...Statement) *ClassMember {
	fn := Fn(name, params, body...)
	return NewClassMember(ClassMemberMethod, fn.ID, fn, nil, nil, false)
}

func Prop(name string, defaultValue Expression) *ClassMember {
	return NewClassMember(ClassMemberProperty, ID(name), nil, nil, defaultValue, false)
}

func While(condition Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(condition, Block(body...))
}

func Repeat(pattern Pattern, iterable Expression, body ...Statement) *RepeatLoop {
	return NewRepeatLoop(pattern, iterable, Block(body...), nil)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Stop() *BreakStatement {
	return NewBreakStatement()
}

func Next() *ContinueStatement {
	return NewContinueStatement()
}

func Fail(argument Expression) *FailStatement {
	return NewFailStatement(argument)
}

func Try(body *BlockExpression, binding string, catchBody, finallyBody *BlockExpression) *TryStatement {
	var id *Identifier
	if binding != "" {
		id = ID(binding)
	}
	return NewTryStatement(body, id, catchBody, finallyBody)
}

func Prog(body ...Statement) *Program {
	return NewProgram(body)
}
