package parser

import "strings"

// TokenType identifies the kind of a predicate token
type TokenType string

const (
	TokenEOF     TokenType = "EOF"
	TokenIllegal TokenType = "ILLEGAL"

	TokenIdent  TokenType = "IDENT"
	TokenString TokenType = "STRING"
	TokenInt    TokenType = "INT"
	TokenFloat  TokenType = "FLOAT"

	TokenLParen   TokenType = "("
	TokenRParen   TokenType = ")"
	TokenLBracket TokenType = "["
	TokenRBracket TokenType = "]"
	TokenLBrace   TokenType = "{"
	TokenRBrace   TokenType = "}"
	TokenComma    TokenType = ","
	TokenDot      TokenType = "."
	TokenMinus    TokenType = "-"
	TokenArrow    TokenType = "=>"

	// comparison operators
	TokenEq        TokenType = "=="
	TokenStrictEq  TokenType = "==="
	TokenNotEq     TokenType = "!="
	TokenStrictNeq TokenType = "!=="
	TokenGt        TokenType = ">"
	TokenLt        TokenType = "<"
	TokenGte       TokenType = ">="
	TokenLte       TokenType = "<="

	// tokens that only appear in predicates the extractor rejects
	TokenAnd    TokenType = "&&"
	TokenOr     TokenType = "||"
	TokenBang   TokenType = "!"
	TokenAssign TokenType = "="
)

// Token is a lexed predicate token. For strings Literal holds the
// unquoted, unescaped text.
type Token struct {
	Type    TokenType
	Literal string
	Column  int
}

// IsComparison reports whether t is one of the symbolic comparison operators
func (t TokenType) IsComparison() bool {
	switch t {
	case TokenEq, TokenStrictEq, TokenNotEq, TokenStrictNeq, TokenGt, TokenLt, TokenGte, TokenLte:
		return true
	}
	return false
}

// IsKeyword reports whether tok is the identifier kw, ignoring case
func (tok Token) IsKeyword(kw string) bool {
	return tok.Type == TokenIdent && strings.EqualFold(tok.Literal, kw)
}
