package lexer_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/lexer"
)

type tokenShape struct {
	Kind   lexer.Kind
	Lexeme string
}

func shapes(t *testing.T, src string) []tokenShape {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", src, err)
	}
	out := make([]tokenShape, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tokenShape{Kind: tok.Kind, Lexeme: tok.Lexeme})
	}
	return out
}

func TestTokenizeDeclaration(t *testing.T) {
	got := shapes(t, "let x = 42\n")
	want := []tokenShape{
		{lexer.Keyword, "let"},
		{lexer.Identifier, "x"},
		{lexer.Operator, "="},
		{lexer.Number, "42"},
		{lexer.Newline, "\n"},
		{lexer.EOF, ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestTokenizeLongestOperatorWins(t *testing.T) {
	got := shapes(t, "a ?. b ?? c -! d ~! e ... f :: g ** h != i =! j")
	var ops []string
	for _, tok := range got {
		if tok.Kind == lexer.Operator {
			ops = append(ops, tok.Lexeme)
		}
	}
	want := []string{"?.", "??", "-!", "~!", "...", "::", "**", "!=", "=!"}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("unexpected operators: got %v want %v", ops, want)
	}
}

func TestTokenizeListDelimiters(t *testing.T) {
	got := shapes(t, "~1, 2! ~!")
	want := []tokenShape{
		{lexer.Delimiter, "~"},
		{lexer.Number, "1"},
		{lexer.Delimiter, ","},
		{lexer.Number, "2"},
		{lexer.Delimiter, "!"},
		{lexer.Operator, "~!"},
		{lexer.EOF, ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := map[string]float64{
		"0":         0,
		"1_000_000": 1000000,
		"3.25":      3.25,
		"1e3":       1000,
		"2.5E-1":    0.25,
		"0xFF":      255,
		"0b1010":    10,
		"0xff_ff":   65535,
	}
	for src, want := range cases {
		tokens, err := lexer.Tokenize(src)
		if err != nil {
			t.Fatalf("Tokenize(%q) returned error: %v", src, err)
		}
		if tokens[0].Kind != lexer.Number || tokens[0].Num != want {
			t.Fatalf("Tokenize(%q): got %+v, want number %v", src, tokens[0], want)
		}
	}
}

func TestTokenizeRangeIsNotAFraction(t *testing.T) {
	got := shapes(t, "1..5")
	want := []tokenShape{
		{lexer.Number, "1"},
		{lexer.Operator, ".."},
		{lexer.Number, "5"},
		{lexer.EOF, ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestTokenizeMalformedNumbers(t *testing.T) {
	for _, src := range []string{"1__0", "10_", "0x", "0b2", "12abc"} {
		_, err := lexer.Tokenize(src)
		var lexErr *lexer.LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("Tokenize(%q): expected LexError, got %v", src, err)
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := lexer.Tokenize(`"a\tb\n\"q\" \u{1F600} \$\@\#" 'single'`)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if tokens[0].Kind != lexer.String || tokens[0].Value != "a\tb\n\"q\" \U0001F600 $@#" {
		t.Fatalf("unexpected string token %+v", tokens[0])
	}
	if tokens[1].Value != "single" {
		t.Fatalf("unexpected single-quoted value %q", tokens[1].Value)
	}
}

func TestTokenizeStringErrors(t *testing.T) {
	cases := map[string]string{
		`"open`:     "unterminated string",
		`"bad \q"`:  "invalid escape",
		`"\u{zz}"`:  "invalid unicode escape",
		"/* never":  "unterminated block comment",
		"`tmpl":     "unterminated template",
		"`$@ x":     "unterminated template interpolation",
		"let a = $": "unexpected character",
	}
	for src, fragment := range cases {
		_, err := lexer.Tokenize(src)
		if err == nil {
			t.Fatalf("Tokenize(%q): expected error", src)
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("Tokenize(%q): error %q does not mention %q", src, err.Error(), fragment)
		}
	}
}

func TestTokenizeTemplateInterpolation(t *testing.T) {
	tokens, err := lexer.Tokenize("`hi $@ @ n: 1 #.n # and \\$@ done`")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	var kinds []lexer.Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []lexer.Kind{
		lexer.TemplateStart,
		lexer.TemplateFragment,
		lexer.InterpStart,
		lexer.Delimiter, lexer.Identifier, lexer.Delimiter, lexer.Number, lexer.Delimiter,
		lexer.Operator, lexer.Identifier,
		lexer.InterpEnd,
		lexer.TemplateFragment,
		lexer.TemplateEnd,
		lexer.EOF,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("unexpected kinds:\n got: %v\nwant: %v", kinds, want)
	}
	if tokens[1].Value != "hi " {
		t.Fatalf("unexpected leading fragment %q", tokens[1].Value)
	}
	if tokens[11].Value != " and $@ done" {
		t.Fatalf("unexpected trailing fragment %q", tokens[11].Value)
	}
}

func TestHashCommentsOnlyAtTopLevel(t *testing.T) {
	src := "# comment line\nlet a = 1 # trailing\nif a @\n    b\n#\n"
	got := shapes(t, src)
	want := []tokenShape{
		{lexer.Newline, "\n"},
		{lexer.Keyword, "let"},
		{lexer.Identifier, "a"},
		{lexer.Operator, "="},
		{lexer.Number, "1"},
		{lexer.Newline, "\n"},
		{lexer.Keyword, "if"},
		{lexer.Identifier, "a"},
		{lexer.Delimiter, "@"},
		{lexer.Newline, "\n"},
		{lexer.Identifier, "b"},
		{lexer.Newline, "\n"},
		{lexer.Delimiter, "#"},
		{lexer.Newline, "\n"},
		{lexer.EOF, ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := lexer.Tokenize("let x\n  = 'é'")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	eq := tokens[3]
	if eq.Lexeme != "=" || eq.Pos.Line != 2 || eq.Pos.Column != 3 {
		t.Fatalf("unexpected position for '=': %+v", eq.Pos)
	}
	str := tokens[4]
	if str.Pos.Column != 5 || str.End.Column != 8 {
		t.Fatalf("unexpected string span %v-%v", str.Pos, str.End)
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	got := shapes(t, "café_1 = 1")
	if got[0].Kind != lexer.Identifier || got[0].Lexeme != "café_1" {
		t.Fatalf("unexpected identifier token %+v", got[0])
	}
}

func TestKeywordsAreRecognised(t *testing.T) {
	for _, word := range []string{"conduit", "give", "check", "yield", "static", "when"} {
		if !lexer.IsKeyword(word) {
			t.Fatalf("expected %q to be a keyword", word)
		}
	}
	tokens, err := lexer.Tokenize("give")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if tokens[0].Kind != lexer.Keyword || !tokens[0].Is("give") {
		t.Fatalf("expected keyword token, got %+v", tokens[0])
	}
}
