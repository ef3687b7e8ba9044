package parser

import "testing"

func TestLexer_NextToken(t *testing.T) {
	input := `x => x.id >= lid`

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{TokenIdent, "x"},
		{TokenArrow, "=>"},
		{TokenIdent, "x"},
		{TokenDot, "."},
		{TokenIdent, "id"},
		{TokenGte, ">="},
		{TokenIdent, "lid"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, tt := range expected {
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - wrong token type. expected=%q, got=%q", i, tt.typ, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
	}
}

func TestLexer_Operators(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"==", TokenEq},
		{"===", TokenStrictEq},
		{"!=", TokenNotEq},
		{"!==", TokenStrictNeq},
		{">", TokenGt},
		{"<", TokenLt},
		{">=", TokenGte},
		{"<=", TokenLte},
		{"&&", TokenAnd},
		{"||", TokenOr},
		{"!", TokenBang},
		{"=", TokenAssign},
		{"=>", TokenArrow},
		{"@", TokenIllegal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			if tok.Type != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tok.Type)
			}
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{`'abc'`, TokenString, "abc"},
		{`"a\"b"`, TokenString, `a"b`},
		{"`tpl`", TokenString, "tpl"},
		{`'open`, TokenIllegal, "open"},
		{"42", TokenInt, "42"},
		{"3.14", TokenFloat, "3.14"},
		{"1e3", TokenFloat, "1e3"},
		{".5", TokenFloat, ".5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			if tok.Type != tt.typ || tok.Literal != tt.literal {
				t.Errorf("expected %s %q, got %s %q", tt.typ, tt.literal, tok.Type, tok.Literal)
			}
		})
	}
}

func TestTokenize_List(t *testing.T) {
	tokens := Tokenize(`item.id in [1, -2, 'x']`)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}

	want := []TokenType{
		TokenIdent, TokenDot, TokenIdent, TokenIdent,
		TokenLBracket, TokenInt, TokenComma, TokenMinus, TokenInt, TokenComma, TokenString, TokenRBracket,
		TokenEOF,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], types[i])
		}
	}
	if !tokens[3].IsKeyword("IN") {
		t.Error("expected in keyword to match case-insensitively")
	}
}

func TestTokenType_IsComparison(t *testing.T) {
	if !TokenGte.IsComparison() {
		t.Error(">= should be a comparison")
	}
	if TokenArrow.IsComparison() {
		t.Error("=> should not be a comparison")
	}
}
