package ast

type NodeType string

const (
	NodeIdentifier             NodeType = "Identifier"
	NodeNumberLiteral          NodeType = "NumberLiteral"
	NodeStringLiteral          NodeType = "StringLiteral"
	NodeBooleanLiteral         NodeType = "BooleanLiteral"
	NodeNoneLiteral            NodeType = "NoneLiteral"
	NodeTemplateString         NodeType = "TemplateString"
	NodeArrayLiteral           NodeType = "ArrayLiteral"
	NodeMapLiteral             NodeType = "MapLiteral"
	NodeMapEntry               NodeType = "MapEntry"
	NodeSpreadExpression       NodeType = "SpreadExpression"
	NodeSimpleTypeExpression   NodeType = "SimpleTypeExpression"
	NodeWildcardPattern        NodeType = "WildcardPattern"
	NodeLiteralPattern         NodeType = "LiteralPattern"
	NodeRangePattern           NodeType = "RangePattern"
	NodeTypedPattern           NodeType = "TypedPattern"
	NodeArrayPattern           NodeType = "ArrayPattern"
	NodeMapPatternField        NodeType = "MapPatternField"
	NodeMapPattern             NodeType = "MapPattern"
	NodeUnaryExpression        NodeType = "UnaryExpression"
	NodeBinaryExpression       NodeType = "BinaryExpression"
	NodeCompareExpression      NodeType = "CompareExpression"
	NodeRangeExpression        NodeType = "RangeExpression"
	NodePipelineExpression     NodeType = "PipelineExpression"
	NodeAssignmentExpression   NodeType = "AssignmentExpression"
	NodeFunctionCall           NodeType = "FunctionCall"
	NodeMemberAccessExpression NodeType = "MemberAccessExpression"
	NodeIndexExpression        NodeType = "IndexExpression"
	NodeMeExpression           NodeType = "MeExpression"
	NodeParentExpression       NodeType = "ParentExpression"
	NodeLambdaExpression       NodeType = "LambdaExpression"
	NodeBlockExpression        NodeType = "BlockExpression"
	NodeIfExpression           NodeType = "IfExpression"
	NodeCheckClause            NodeType = "CheckClause"
	NodeCheckExpression        NodeType = "CheckExpression"
	NodeWaitExpression         NodeType = "WaitExpression"
	NodeYieldExpression        NodeType = "YieldExpression"
	NodeWhileLoop              NodeType = "WhileLoop"
	NodeRepeatLoop             NodeType = "RepeatLoop"
	NodeBreakStatement         NodeType = "BreakStatement"
	NodeContinueStatement      NodeType = "ContinueStatement"
	NodeReturnStatement        NodeType = "ReturnStatement"
	NodeFailStatement          NodeType = "FailStatement"
	NodeTryStatement           NodeType = "TryStatement"
	NodeVariableDeclaration    NodeType = "VariableDeclaration"
	NodeFunctionParameter      NodeType = "FunctionParameter"
	NodeFunctionDefinition     NodeType = "FunctionDefinition"
	NodeClassMember            NodeType = "ClassMember"
	NodeClassDefinition        NodeType = "ClassDefinition"
	NodeGrabStatement          NodeType = "GrabStatement"
	NodeShareStatement         NodeType = "ShareStatement"
	NodeProgram                NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Pattern interface {
	Node
	patternNode()
}

type patternMarker struct{}

func (patternMarker) patternNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// AssignmentTarget is implemented by expressions that may appear on the left of `=`.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Identifiers & literals

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	patternMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NoneLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker
}

func NewNoneLiteral() *NoneLiteral {
	return &NoneLiteral{nodeImpl: newNodeImpl(NodeNoneLiteral)}
}

// TemplateString holds alternating literal fragments and interpolated expressions.
// Fragments are *StringLiteral values.
type TemplateString struct {
	nodeImpl
	expressionMarker
	statementMarker

	Parts []Expression `json:"parts"`
}

func NewTemplateString(parts []Expression) *TemplateString {
	return &TemplateString{nodeImpl: newNodeImpl(NodeTemplateString), Parts: parts}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// MapEntry is either a key/value pair or, when Spread is set, a `...expr` entry.
type MapEntry struct {
	nodeImpl

	Key      Expression `json:"key,omitempty"`
	Value    Expression `json:"value,omitempty"`
	Computed bool       `json:"computed,omitempty"`
	Spread   Expression `json:"spread,omitempty"`
}

func NewMapEntry(key Expression, value Expression, computed bool) *MapEntry {
	return &MapEntry{nodeImpl: newNodeImpl(NodeMapEntry), Key: key, Value: value, Computed: computed}
}

func NewMapSpreadEntry(spread Expression) *MapEntry {
	return &MapEntry{nodeImpl: newNodeImpl(NodeMapEntry), Spread: spread}
}

type MapLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Entries []*MapEntry `json:"entries"`
}

func NewMapLiteral(entries []*MapEntry) *MapLiteral {
	return &MapLiteral{nodeImpl: newNodeImpl(NodeMapLiteral), Entries: entries}
}

type SpreadExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Argument Expression `json:"argument"`
}

func NewSpreadExpression(argument Expression) *SpreadExpression {
	return &SpreadExpression{nodeImpl: newNodeImpl(NodeSpreadExpression), Argument: argument}
}

// Type annotations

type SimpleTypeExpression struct {
	nodeImpl

	Name *Identifier `json:"name"`
}

func NewSimpleTypeExpression(name *Identifier) *SimpleTypeExpression {
	return &SimpleTypeExpression{nodeImpl: newNodeImpl(NodeSimpleTypeExpression), Name: name}
}

// Patterns

type WildcardPattern struct {
	nodeImpl
	patternMarker
}

func NewWildcardPattern() *WildcardPattern {
	return &WildcardPattern{nodeImpl: newNodeImpl(NodeWildcardPattern)}
}

type LiteralPattern struct {
	nodeImpl
	patternMarker

	Literal Literal `json:"literal"`
}

func NewLiteralPattern(literal Literal) *LiteralPattern {
	return &LiteralPattern{nodeImpl: newNodeImpl(NodeLiteralPattern), Literal: literal}
}

// RangePattern matches numbers in the inclusive interval [Start, End].
type RangePattern struct {
	nodeImpl
	patternMarker

	Start *NumberLiteral `json:"start"`
	End   *NumberLiteral `json:"end"`
}

func NewRangePattern(start, end *NumberLiteral) *RangePattern {
	return &RangePattern{nodeImpl: newNodeImpl(NodeRangePattern), Start: start, End: end}
}

type TypedPattern struct {
	nodeImpl
	patternMarker

	Pattern        Pattern               `json:"pattern"`
	TypeAnnotation *SimpleTypeExpression `json:"typeAnnotation"`
}

func NewTypedPattern(pattern Pattern, typeAnnotation *SimpleTypeExpression) *TypedPattern {
	return &TypedPattern{nodeImpl: newNodeImpl(NodeTypedPattern), Pattern: pattern, TypeAnnotation: typeAnnotation}
}

type ArrayPattern struct {
	nodeImpl
	patternMarker

	Elements    []Pattern `json:"elements"`
	RestPattern Pattern   `json:"restPattern,omitempty"`
}

func NewArrayPattern(elements []Pattern, rest Pattern) *ArrayPattern {
	return &ArrayPattern{nodeImpl: newNodeImpl(NodeArrayPattern), Elements: elements, RestPattern: rest}
}

type MapPatternField struct {
	nodeImpl

	Key     string  `json:"key"`
	Pattern Pattern `json:"pattern"`
}

func NewMapPatternField(key string, pattern Pattern) *MapPatternField {
	return &MapPatternField{nodeImpl: newNodeImpl(NodeMapPatternField), Key: key, Pattern: pattern}
}

type MapPattern struct {
	nodeImpl
	patternMarker

	Fields      []*MapPatternField `json:"fields"`
	RestPattern Pattern            `json:"restPattern,omitempty"`
}

func NewMapPattern(fields []*MapPatternField, rest Pattern) *MapPattern {
	return &MapPattern{nodeImpl: newNodeImpl(NodeMapPattern), Fields: fields, RestPattern: rest}
}

// Expressions

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// CompareExpression is a chained comparison `a < b <= c`; len(Operators) == len(Operands)-1.
type CompareExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operands  []Expression `json:"operands"`
	Operators []string     `json:"operators"`
}

func NewCompareExpression(operands []Expression, operators []string) *CompareExpression {
	return &CompareExpression{nodeImpl: newNodeImpl(NodeCompareExpression), Operands: operands, Operators: operators}
}

type RangeExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Start   Expression `json:"start"`
	End     Expression `json:"end"`
	Keyword bool       `json:"keyword,omitempty"`
}

func NewRangeExpression(start, end Expression, keyword bool) *RangeExpression {
	return &RangeExpression{nodeImpl: newNodeImpl(NodeRangeExpression), Start: start, End: end, Keyword: keyword}
}

// PipelineExpression threads Left into the call described by Right (`-!` or `~!`).
type PipelineExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Left    Expression `json:"left"`
	Right   Expression `json:"right"`
	IsAsync bool       `json:"isAsync,omitempty"`
}

func NewPipelineExpression(left, right Expression, isAsync bool) *PipelineExpression {
	return &PipelineExpression{nodeImpl: newNodeImpl(NodePipelineExpression), Left: left, Right: right, IsAsync: isAsync}
}

type AssignmentOperator string

const (
	AssignmentAssign AssignmentOperator = "="
	AssignmentAdd    AssignmentOperator = "+="
	AssignmentSub    AssignmentOperator = "-="
	AssignmentMul    AssignmentOperator = "*="
	AssignmentDiv    AssignmentOperator = "/="
)

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator AssignmentOperator `json:"operator"`
	Left     AssignmentTarget   `json:"left"`
	Right    Expression         `json:"right"`
}

func NewAssignmentExpression(operator AssignmentOperator, left AssignmentTarget, right Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Left: left, Right: right}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, arguments []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: arguments}
}

type MemberAccessExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object   Expression  `json:"object"`
	Member   *Identifier `json:"member"`
	IsSafe   bool        `json:"isSafe,omitempty"`
	IsStatic bool        `json:"isStatic,omitempty"`
}

func NewMemberAccessExpression(object Expression, member *Identifier, isSafe, isStatic bool) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccessExpression), Object: object, Member: member, IsSafe: isSafe, IsStatic: isStatic}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
	IsSafe bool       `json:"isSafe,omitempty"`
}

func NewIndexExpression(object, index Expression, isSafe bool) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index, IsSafe: isSafe}
}

type MeExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewMeExpression() *MeExpression {
	return &MeExpression{nodeImpl: newNodeImpl(NodeMeExpression)}
}

type ParentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewParentExpression() *ParentExpression {
	return &ParentExpression{nodeImpl: newNodeImpl(NodeParentExpression)}
}

// LambdaExpression covers arrow lambdas and anonymous conduits. Body is a
// *BlockExpression or a bare expression.
type LambdaExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Params      []*FunctionParameter  `json:"params"`
	ReturnType  *SimpleTypeExpression `json:"returnType,omitempty"`
	Body        Expression            `json:"body"`
	IsAsync     bool                  `json:"isAsync,omitempty"`
	IsGenerator bool                  `json:"isGenerator,omitempty"`
	IsArrow     bool                  `json:"isArrow,omitempty"`
}

func NewLambdaExpression(params []*FunctionParameter, body Expression, returnType *SimpleTypeExpression, isAsync, isGenerator, isArrow bool) *LambdaExpression {
	return &LambdaExpression{
		nodeImpl:    newNodeImpl(NodeLambdaExpression),
		Params:      params,
		ReturnType:  returnType,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
		IsArrow:     isArrow,
	}
}

type BlockExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockExpression(body []Statement) *BlockExpression {
	return &BlockExpression{nodeImpl: newNodeImpl(NodeBlockExpression), Body: body}
}

// IfExpression's Alternate is nil, a *BlockExpression, or a nested *IfExpression (`else if`).
type IfExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition  Expression       `json:"condition"`
	Consequent *BlockExpression `json:"consequent"`
	Alternate  Expression       `json:"alternate,omitempty"`
}

func NewIfExpression(condition Expression, consequent *BlockExpression, alternate Expression) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Condition: condition, Consequent: consequent, Alternate: alternate}
}

type CheckClause struct {
	nodeImpl

	Pattern Pattern    `json:"pattern"`
	Guard   Expression `json:"guard,omitempty"`
	Body    Expression `json:"body"`
}

func NewCheckClause(pattern Pattern, body Expression, guard Expression) *CheckClause {
	return &CheckClause{nodeImpl: newNodeImpl(NodeCheckClause), Pattern: pattern, Guard: guard, Body: body}
}

type CheckExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Subject Expression     `json:"subject"`
	Clauses []*CheckClause `json:"clauses"`
}

func NewCheckExpression(subject Expression, clauses []*CheckClause) *CheckExpression {
	return &CheckExpression{nodeImpl: newNodeImpl(NodeCheckExpression), Subject: subject, Clauses: clauses}
}

type WaitExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Argument Expression `json:"argument"`
}

func NewWaitExpression(argument Expression) *WaitExpression {
	return &WaitExpression{nodeImpl: newNodeImpl(NodeWaitExpression), Argument: argument}
}

type YieldExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewYieldExpression(argument Expression) *YieldExpression {
	return &YieldExpression{nodeImpl: newNodeImpl(NodeYieldExpression), Argument: argument}
}

// Control flow

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression       `json:"condition"`
	Body      *BlockExpression `json:"body"`
}

func NewWhileLoop(condition Expression, body *BlockExpression) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

// RepeatLoop iterates Iterable binding each element to Pattern. IndexPattern is
// set for the `repeat (i, x) in xs` form.
type RepeatLoop struct {
	nodeImpl
	statementMarker

	IndexPattern Pattern          `json:"indexPattern,omitempty"`
	Pattern      Pattern          `json:"pattern"`
	Iterable     Expression       `json:"iterable"`
	Body         *BlockExpression `json:"body"`
}

func NewRepeatLoop(pattern Pattern, iterable Expression, body *BlockExpression, indexPattern Pattern) *RepeatLoop {
	return &RepeatLoop{nodeImpl: newNodeImpl(NodeRepeatLoop), IndexPattern: indexPattern, Pattern: pattern, Iterable: iterable, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type FailStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument"`
}

func NewFailStatement(argument Expression) *FailStatement {
	return &FailStatement{nodeImpl: newNodeImpl(NodeFailStatement), Argument: argument}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Body         *BlockExpression `json:"body"`
	CatchBinding *Identifier      `json:"catchBinding,omitempty"`
	CatchBody    *BlockExpression `json:"catchBody,omitempty"`
	FinallyBody  *BlockExpression `json:"finallyBody,omitempty"`
}

func NewTryStatement(body *BlockExpression, catchBinding *Identifier, catchBody, finallyBody *BlockExpression) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, CatchBinding: catchBinding, CatchBody: catchBody, FinallyBody: finallyBody}
}

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}
