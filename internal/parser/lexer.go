package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes the source text of a single-parameter predicate such as
// `x => x.id >= lid`
type Lexer struct {
	input        string
	position     int  // index of ch
	readPosition int  // index after ch
	ch           byte // current byte, 0 at EOF
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize returns every token up to and including EOF
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	col := l.position + 1
	single := func(t TokenType) Token {
		tok := Token{Type: t, Literal: string(l.ch), Column: col}
		l.readChar()
		return tok
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Column: col}
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	case '{':
		return single(TokenLBrace)
	case '}':
		return single(TokenRBrace)
	case ',':
		return single(TokenComma)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(col)
		}
		return single(TokenDot)
	case '-':
		return single(TokenMinus)
	case '=':
		switch {
		case l.peekChar() == '>':
			return l.readOperator(col, TokenArrow, 2)
		case l.peekChar() == '=' && l.charAt(2) == '=':
			return l.readOperator(col, TokenStrictEq, 3)
		case l.peekChar() == '=':
			return l.readOperator(col, TokenEq, 2)
		}
		return single(TokenAssign)
	case '!':
		switch {
		case l.peekChar() == '=' && l.charAt(2) == '=':
			return l.readOperator(col, TokenStrictNeq, 3)
		case l.peekChar() == '=':
			return l.readOperator(col, TokenNotEq, 2)
		}
		return single(TokenBang)
	case '>':
		if l.peekChar() == '=' {
			return l.readOperator(col, TokenGte, 2)
		}
		return single(TokenGt)
	case '<':
		if l.peekChar() == '=' {
			return l.readOperator(col, TokenLte, 2)
		}
		return single(TokenLt)
	case '&':
		if l.peekChar() == '&' {
			return l.readOperator(col, TokenAnd, 2)
		}
	case '|':
		if l.peekChar() == '|' {
			return l.readOperator(col, TokenOr, 2)
		}
	case '"', '\'', '`':
		return l.readString(col)
	default:
		if isLetter(l.ch) {
			return Token{Type: TokenIdent, Literal: l.readIdentifier(), Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumber(col)
		}
	}

	return single(TokenIllegal)
}

// charAt returns the byte n positions after the current one
func (l *Lexer) charAt(n int) byte {
	i := l.position + n
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) readOperator(col int, t TokenType, width int) Token {
	lit := l.input[l.position : l.position+width]
	for i := 0; i < width; i++ {
		l.readChar()
	}
	return Token{Type: t, Literal: lit, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == ';' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an int or float literal; a sign is a separate token
func (l *Lexer) readNumber(col int) Token {
	position := l.position
	tokenType := TokenInt

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = TokenFloat
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.charAt(2))) {
			tokenType = TokenFloat
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return Token{Type: tokenType, Literal: l.input[position:l.position], Column: col}
}

// readString reads a quoted string. An unterminated string is ILLEGAL.
func (l *Lexer) readString(col int) Token {
	quote := l.ch
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return Token{Type: TokenIllegal, Literal: b.String(), Column: col}
		case quote:
			l.readChar()
			return Token{Type: TokenString, Literal: b.String(), Column: col}
		case '\\':
			l.readChar()
			switch l.ch {
			case 0:
				return Token{Type: TokenIllegal, Literal: b.String(), Column: col}
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(l.ch)
			}
		default:
			b.WriteByte(l.ch)
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' ||
		ch >= utf8.RuneSelf && unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
