package ast

// Definitions

type DeclarationKind string

const (
	DeclarationLet   DeclarationKind = "let"
	DeclarationMut   DeclarationKind = "mut"
	DeclarationConst DeclarationKind = "const"
)

// VariableDeclaration binds Target (an identifier or destructuring pattern).
type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Kind           DeclarationKind       `json:"kind"`
	Target         Pattern               `json:"target"`
	TypeAnnotation *SimpleTypeExpression `json:"typeAnnotation,omitempty"`
	Value          Expression            `json:"value"`
}

func NewVariableDeclaration(kind DeclarationKind, target Pattern, value Expression, typeAnnotation *SimpleTypeExpression) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Kind: kind, Target: target, TypeAnnotation: typeAnnotation, Value: value}
}

type FunctionParameter struct {
	nodeImpl

	Name           Pattern               `json:"name"`
	TypeAnnotation *SimpleTypeExpression `json:"typeAnnotation,omitempty"`
	Default        Expression            `json:"default,omitempty"`
	IsRest         bool                  `json:"isRest,omitempty"`
}

func NewFunctionParameter(name Pattern, typeAnnotation *SimpleTypeExpression, defaultValue Expression, isRest bool) *FunctionParameter {
	return &FunctionParameter{nodeImpl: newNodeImpl(NodeFunctionParameter), Name: name, TypeAnnotation: typeAnnotation, Default: defaultValue, IsRest: isRest}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	ID          *Identifier           `json:"id"`
	Params      []*FunctionParameter  `json:"params"`
	ReturnType  *SimpleTypeExpression `json:"returnType,omitempty"`
	Body        *BlockExpression      `json:"body"`
	IsAsync     bool                  `json:"isAsync,omitempty"`
	IsGenerator bool                  `json:"isGenerator,omitempty"`
}

func NewFunctionDefinition(id *Identifier, params []*FunctionParameter, body *BlockExpression, returnType *SimpleTypeExpression, isAsync, isGenerator bool) *FunctionDefinition {
	return &FunctionDefinition{
		nodeImpl:    newNodeImpl(NodeFunctionDefinition),
		ID:          id,
		Params:      params,
		ReturnType:  returnType,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
	}
}

type ClassMemberKind string

const (
	ClassMemberConstructor ClassMemberKind = "constructor"
	ClassMemberMethod      ClassMemberKind = "method"
	ClassMemberGetter      ClassMemberKind = "getter"
	ClassMemberSetter      ClassMemberKind = "setter"
	ClassMemberProperty    ClassMemberKind = "property"
)

// ClassMember is one entry of a `make` body. Function is set for every kind
// except properties, which use Name, TypeAnnotation and Default.
type ClassMember struct {
	nodeImpl

	Kind           ClassMemberKind       `json:"kind"`
	Name           *Identifier           `json:"name"`
	Function       *FunctionDefinition   `json:"function,omitempty"`
	TypeAnnotation *SimpleTypeExpression `json:"typeAnnotation,omitempty"`
	Default        Expression            `json:"default,omitempty"`
	IsStatic       bool                  `json:"isStatic,omitempty"`
}

func NewClassMember(kind ClassMemberKind, name *Identifier, function *FunctionDefinition, typeAnnotation *SimpleTypeExpression, defaultValue Expression, isStatic bool) *ClassMember {
	return &ClassMember{
		nodeImpl:       newNodeImpl(NodeClassMember),
		Kind:           kind,
		Name:           name,
		Function:       function,
		TypeAnnotation: typeAnnotation,
		Default:        defaultValue,
		IsStatic:       isStatic,
	}
}

type ClassDefinition struct {
	nodeImpl
	statementMarker

	ID      *Identifier    `json:"id"`
	Parent  *Identifier    `json:"parent,omitempty"`
	Members []*ClassMember `json:"members"`
}

func NewClassDefinition(id *Identifier, parent *Identifier, members []*ClassMember) *ClassDefinition {
	return &ClassDefinition{nodeImpl: newNodeImpl(NodeClassDefinition), ID: id, Parent: parent, Members: members}
}

// Modules

// GrabStatement imports a module. Path is set for bare and dotted specifiers,
// Source for quoted relative paths.
type GrabStatement struct {
	nodeImpl
	statementMarker

	Path       []*Identifier  `json:"path,omitempty"`
	Source     *StringLiteral `json:"source,omitempty"`
	Alias      *Identifier    `json:"alias,omitempty"`
	IsWildcard bool           `json:"isWildcard,omitempty"`
}

func NewGrabStatement(path []*Identifier, source *StringLiteral, alias *Identifier, isWildcard bool) *GrabStatement {
	return &GrabStatement{nodeImpl: newNodeImpl(NodeGrabStatement), Path: path, Source: source, Alias: alias, IsWildcard: isWildcard}
}

// ShareStatement exports either a wrapped declaration or a list of names.
type ShareStatement struct {
	nodeImpl
	statementMarker

	Declaration Statement     `json:"declaration,omitempty"`
	Names       []*Identifier `json:"names,omitempty"`
}

func NewShareStatement(declaration Statement, names []*Identifier) *ShareStatement {
	return &ShareStatement{nodeImpl: newNodeImpl(NodeShareStatement), Declaration: declaration, Names: names}
}
