package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// LexError reports malformed source text.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: LexError: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type frameKind int

const (
	frameCode frameKind = iota
	frameTemplate
	frameInterpolation
)

// frame is one level of the scanning mode stack. depth counts the `@` openers
// seen in code and interpolation frames so the matching `#` can be told apart
// from the one closing an interpolation or starting a top-level comment.
type frame struct {
	kind  frameKind
	depth int
	start Position
}

// Lexer scans RIFT source into tokens.
type Lexer struct {
	src    []rune
	cur    int
	line   int
	col    int
	frames []frame
	start  Position
	done   bool
}

// New creates a lexer over src.
func New(src string) *Lexer {
	return &Lexer{
		src:    []rune(src),
		line:   1,
		col:    1,
		frames: []frame{{kind: frameCode}},
	}
}

// Tokenize scans the whole source. The final token is always EOF.
func Tokenize(src string) ([]Token, error) {
	return New(src).Tokenize()
}

// Tokenize drains the lexer.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.done {
		return Token{Kind: EOF, Pos: l.pos(), End: l.pos()}, nil
	}
	if l.top().kind == frameTemplate {
		return l.scanTemplate()
	}
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	l.start = l.pos()
	if l.atEnd() {
		if top := l.top(); top.kind == frameInterpolation {
			return Token{}, &LexError{Pos: top.start, Message: "unterminated template interpolation"}
		}
		l.done = true
		return l.token(EOF), nil
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return l.token(Newline), nil
	case ch == '`':
		l.advance()
		l.push(frameTemplate)
		return l.token(TemplateStart), nil
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	case isDigit(ch):
		return l.scanNumber()
	case isIdentStart(ch):
		return l.scanIdentifier(), nil
	case ch == '@':
		l.advance()
		l.top().depth++
		return l.token(Delimiter), nil
	case ch == '#':
		l.advance()
		top := l.top()
		if top.kind == frameInterpolation && top.depth == 0 {
			l.pop()
			return l.token(InterpEnd), nil
		}
		top.depth--
		return l.token(Delimiter), nil
	}
	return l.scanOperator()
}

func (l *Lexer) top() *frame {
	return &l.frames[len(l.frames)-1]
}

func (l *Lexer) push(kind frameKind) {
	l.frames = append(l.frames, frame{kind: kind, start: l.start})
}

func (l *Lexer) pop() {
	if len(l.frames) > 1 {
		l.frames = l.frames[:len(l.frames)-1]
	}
}

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() rune { return l.peekAt(0) }

func (l *Lexer) peekAt(n int) rune {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() rune {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) pos() Position {
	return Position{Offset: l.cur, Line: l.line, Column: l.col}
}

func (l *Lexer) token(kind Kind) Token {
	return Token{Kind: kind, Lexeme: string(l.src[l.start.Offset:l.cur]), Pos: l.start, End: l.pos()}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// skipTrivia discards spaces, block comments, and `#` line comments. A `#`
// only starts a comment where it cannot close anything: outside every block
// at the top level of code.
func (l *Lexer) skipTrivia() error {
	for !l.atEnd() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f':
			l.advance()
		case ch == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return l.errorf(start, "unterminated block comment")
			}
		case ch == '#' && len(l.frames) == 1 && l.top().depth == 0:
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scanIdentifier() Token {
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	tok := l.token(Identifier)
	if IsKeyword(tok.Lexeme) {
		tok.Kind = Keyword
	}
	return tok
}

func (l *Lexer) scanOperator() (Token, error) {
	for _, op := range threeCharOperators {
		if l.matches(op) {
			return l.consumeOperator(op, Operator), nil
		}
	}
	for _, op := range twoCharOperators {
		if l.matches(op) {
			return l.consumeOperator(op, Operator), nil
		}
	}
	ch := l.peek()
	if strings.ContainsRune(singleCharOperators, ch) {
		return l.consumeOperator(string(ch), Operator), nil
	}
	if strings.ContainsRune(delimiters, ch) {
		return l.consumeOperator(string(ch), Delimiter), nil
	}
	return Token{}, l.errorf(l.pos(), "unexpected character %q", ch)
}

func (l *Lexer) matches(op string) bool {
	idx := 0
	for _, r := range op {
		if l.peekAt(idx) != r {
			return false
		}
		idx++
	}
	return true
}

func (l *Lexer) consumeOperator(op string, kind Kind) Token {
	for range op {
		l.advance()
	}
	return l.token(kind)
}

// scanString reads a single- or double-quoted literal. Line breaks are kept verbatim.
func (l *Lexer) scanString(quote rune) (Token, error) {
	l.advance()
	var sb strings.Builder
	for !l.atEnd() {
		ch := l.peek()
		if ch == quote {
			l.advance()
			tok := l.token(String)
			tok.Value = sb.String()
			return tok, nil
		}
		if ch == '\\' {
			r, err := l.scanEscape()
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.advance())
	}
	return Token{}, l.errorf(l.start, "unterminated string")
}

// scanEscape consumes a backslash sequence and returns the rune it denotes.
func (l *Lexer) scanEscape() (rune, error) {
	at := l.pos()
	l.advance()
	if l.atEnd() {
		return 0, l.errorf(at, "unfinished escape sequence")
	}
	esc := l.advance()
	switch esc {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'', '`', '$', '@', '#':
		return esc, nil
	case 'u':
		if l.peek() != '{' {
			return 0, l.errorf(at, "unicode escape must have the form \\u{hex}")
		}
		l.advance()
		var digits strings.Builder
		for !l.atEnd() && l.peek() != '}' {
			digits.WriteRune(l.advance())
		}
		if l.atEnd() {
			return 0, l.errorf(at, "unterminated unicode escape")
		}
		l.advance()
		v, err := strconv.ParseUint(digits.String(), 16, 32)
		if err != nil || digits.Len() == 0 || v > unicode.MaxRune {
			return 0, l.errorf(at, "invalid unicode escape \\u{%s}", digits.String())
		}
		return rune(v), nil
	default:
		return 0, l.errorf(at, "invalid escape sequence \\%c", esc)
	}
}

// scanTemplate produces the next token while inside a backtick template.
func (l *Lexer) scanTemplate() (Token, error) {
	l.start = l.pos()
	if l.atEnd() {
		return Token{}, l.errorf(l.top().start, "unterminated template string")
	}
	if l.peek() == '`' {
		l.advance()
		l.pop()
		return l.token(TemplateEnd), nil
	}
	if l.peek() == '$' && l.peekAt(1) == '@' {
		l.advance()
		l.advance()
		l.push(frameInterpolation)
		return l.token(InterpStart), nil
	}
	var sb strings.Builder
	for !l.atEnd() {
		ch := l.peek()
		if ch == '`' || (ch == '$' && l.peekAt(1) == '@') {
			break
		}
		if ch == '\\' {
			r, err := l.scanEscape()
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.advance())
	}
	if l.atEnd() {
		return Token{}, l.errorf(l.top().start, "unterminated template string")
	}
	tok := l.token(TemplateFragment)
	tok.Value = sb.String()
	return tok, nil
}

// scanNumber reads decimal, hex and binary literals. Underscores may only
// separate digits and are dropped before conversion.
func (l *Lexer) scanNumber() (Token, error) {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		return l.scanRadix(16, "hex")
	}
	if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		return l.scanRadix(2, "binary")
	}

	var digits strings.Builder
	if err := l.scanDigits(&digits, isDigit); err != nil {
		return Token{}, err
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		digits.WriteRune(l.advance())
		if err := l.scanDigits(&digits, isDigit); err != nil {
			return Token{}, err
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			digits.WriteRune(l.advance())
			if next == '+' || next == '-' {
				digits.WriteRune(l.advance())
			}
			if err := l.scanDigits(&digits, isDigit); err != nil {
				return Token{}, err
			}
		}
	}
	if isIdentPart(l.peek()) {
		return Token{}, l.errorf(l.start, "invalid numeric literal %q", string(l.src[l.start.Offset:l.cur+1]))
	}
	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return Token{}, l.errorf(l.start, "invalid numeric literal %q", digits.String())
	}
	tok := l.token(Number)
	tok.Value = digits.String()
	tok.Num = v
	return tok, nil
}

func (l *Lexer) scanRadix(base int, name string) (Token, error) {
	l.advance()
	l.advance()
	valid := isHexDigit
	if base == 2 {
		valid = isBinaryDigit
	}
	var digits strings.Builder
	if !valid(l.peek()) {
		return Token{}, l.errorf(l.start, "malformed %s literal: expected a digit after %q", name, string(l.src[l.start.Offset:l.cur]))
	}
	if err := l.scanDigits(&digits, valid); err != nil {
		return Token{}, err
	}
	if isIdentPart(l.peek()) {
		return Token{}, l.errorf(l.start, "malformed %s literal: unexpected %q", name, l.peek())
	}
	v, err := strconv.ParseUint(digits.String(), base, 64)
	if err != nil {
		return Token{}, l.errorf(l.start, "malformed %s literal: %v", name, err)
	}
	tok := l.token(Number)
	tok.Value = digits.String()
	tok.Num = float64(v)
	return tok, nil
}

func (l *Lexer) scanDigits(out *strings.Builder, valid func(rune) bool) error {
	for !l.atEnd() {
		ch := l.peek()
		if valid(ch) {
			out.WriteRune(l.advance())
			continue
		}
		if ch == '_' {
			if !valid(l.peekAt(1)) || l.cur == 0 || !valid(l.src[l.cur-1]) {
				return l.errorf(l.pos(), "misplaced digit separator '_'")
			}
			l.advance()
			continue
		}
		break
	}
	return nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }
