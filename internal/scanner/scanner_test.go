package scanner

import (
	"testing"

	"github.com/lonelycoder306/plox/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLexeme string
		expectedType   token.Type
	}{
		{"var", token.VAR},
		{"x", token.IDENTIFIER},
		{"=", token.EQUAL},
		{"5", token.NUMBER},
		{";", token.SEMICOLON},
		{"x", token.IDENTIFIER},
		{"=", token.EQUAL},
		{"x", token.IDENTIFIER},
		{"+", token.PLUS},
		{"10", token.NUMBER},
		{";", token.SEMICOLON},
		{"", token.EOF},
	}

	s := New(input, "")
	for i, tt := range tests {
		tok := s.nextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (lexeme=%q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `and or class else false for fun if nil print return super this
		true var fix while break continue list group match is fallthrough end
		attempt handle report safe GetMod GetLib GetFile`

	tests := []token.Type{
		token.AND, token.OR, token.CLASS, token.ELSE, token.FALSE, token.FOR,
		token.FUN, token.IF, token.NIL, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.FIX, token.WHILE, token.BREAK,
		token.CONTINUE, token.LIST, token.GROUP, token.MATCH, token.IS,
		token.FALLTHROUGH, token.END, token.ATTEMPT, token.HANDLE, token.REPORT,
		token.SAFE, token.GET_MOD, token.GET_LIB, token.GET_FILE,
	}

	s := New(input, "")
	for i, want := range tests {
		tok := s.nextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (lexeme=%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestOperatorsAndPunctuation(t *testing.T) {
	input := `( ) { } [ ] , . .. ... ; : ? - -= -- + += ++ / /= * *= ** % ! != = == < <= > >=`

	tests := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.LBRACKET,
		token.RBRACKET, token.COMMA, token.DOT, token.DOT_DOT, token.DOT_DOT_DOT,
		token.SEMICOLON, token.COLON, token.QUESTION, token.MINUS, token.MINUS_EQUAL,
		token.MINUS_MINUS, token.PLUS, token.PLUS_EQUAL, token.PLUS_PLUS, token.SLASH,
		token.SLASH_EQUAL, token.STAR, token.STAR_EQUAL, token.STAR_STAR, token.PERCENT,
		token.BANG, token.BANG_EQUAL, token.EQUAL, token.EQUAL_EQUAL, token.LESS,
		token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
	}

	s := New(input, "")
	for i, want := range tests {
		tok := s.nextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (lexeme=%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	s := New(`"hello world"`, "")
	tok := s.nextToken()
	if tok.Type != token.STRING {
		t.Fatalf("type = %s, want STRING", tok.Type)
	}
	if tok.Literal != "hello world" {
		t.Fatalf("literal = %q, want %q", tok.Literal, "hello world")
	}
}

func TestUnterminatedStringReportsScanError(t *testing.T) {
	s := New(`"hello`, "")
	s.ScanTokens()
	if !s.Errors().HasErrors() {
		t.Fatalf("expected a scan error for an unterminated string")
	}
}

func TestNumberLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"5", 5},
		{"3.14", 3.14},
		{"0", 0},
	}
	for _, tt := range tests {
		s := New(tt.input, "")
		tok := s.nextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("type = %s, want NUMBER", tok.Type)
		}
		if tok.Literal.(float64) != tt.want {
			t.Fatalf("literal = %v, want %v", tok.Literal, tt.want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := `// a line comment
	var /* a block /* nested */ comment */ x = 1;`
	s := New(input, "")
	toks := s.ScanTokens()
	if s.Errors().HasErrors() {
		t.Fatalf("unexpected scan errors: %v", s.Errors().Items())
	}
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.Type{token.VAR, token.IDENTIFIER, token.EQUAL, token.NUMBER, token.SEMICOLON, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(types), len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("types[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestScanTokensEndsWithEOF(t *testing.T) {
	toks := New("var a = 1;", "").ScanTokens()
	last := toks[len(toks)-1]
	if last.Type != token.EOF {
		t.Fatalf("last token = %s, want EOF", last.Type)
	}
}
