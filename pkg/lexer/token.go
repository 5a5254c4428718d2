package lexer

import "fmt"

// Kind identifies the lexical category of a token.
type Kind int

const (
	EOF Kind = iota
	Newline
	Identifier
	Keyword
	Number
	String
	TemplateStart
	TemplateFragment
	InterpStart
	InterpEnd
	TemplateEnd
	Operator
	Delimiter
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Newline:
		return "line break"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Number:
		return "number"
	case String:
		return "string"
	case TemplateStart:
		return "template start"
	case TemplateFragment:
		return "template text"
	case InterpStart:
		return "interpolation start"
	case InterpEnd:
		return "interpolation end"
	case TemplateEnd:
		return "template end"
	case Operator:
		return "operator"
	case Delimiter:
		return "delimiter"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Position is a location in the source. Line and Column are 1-based; Offset
// counts runes from the start of the input.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexical unit. Lexeme is the raw source text; Value
// carries the decoded text of strings and template fragments, Num the value
// of numeric literals.
type Token struct {
	Kind   Kind
	Lexeme string
	Value  string
	Num    float64
	Pos    Position
	End    Position
}

// Is reports whether the token is an operator, delimiter or keyword spelled lexeme.
func (t Token) Is(lexeme string) bool {
	switch t.Kind {
	case Operator, Delimiter, Keyword:
		return t.Lexeme == lexeme
	default:
		return false
	}
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Newline:
		return "line break"
	case String:
		return fmt.Sprintf("string %q", t.Value)
	case TemplateFragment:
		return fmt.Sprintf("template text %q", t.Value)
	default:
		return fmt.Sprintf("%s '%s'", t.Kind, t.Lexeme)
	}
}

var keywords = map[string]struct{}{
	"conduit": {}, "let": {}, "mut": {}, "const": {}, "give": {}, "stop": {}, "next": {},
	"if": {}, "else": {}, "check": {}, "repeat": {}, "while": {}, "try": {}, "catch": {},
	"finally": {}, "fail": {}, "make": {}, "extend": {}, "build": {}, "me": {}, "parent": {},
	"grab": {}, "share": {}, "wait": {}, "async": {}, "yes": {}, "no": {}, "none": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "as": {}, "yield": {}, "when": {}, "to": {},
	"static": {},
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

var threeCharOperators = []string{"..."}

var twoCharOperators = []string{
	"?.", "?~", "??", "::", "..", "=!", "==", "!=", "-!", "~!",
	"-=", "+=", "*=", "/=", "**", "<=", ">=",
}

const singleCharOperators = "+-*/%<>=."

const delimiters = "(),;:@#~!"
