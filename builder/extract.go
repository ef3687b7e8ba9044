package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carlosnayan/linq-go/internal/limits"
	"github.com/carlosnayan/linq-go/internal/parser"
)

// Extraction is the result of matching a predicate against the single
// comparison grammar. When Matched is false, Reason says why and the
// other fields are not meaningful.
type Extraction struct {
	Matched  bool
	Field    string
	Operator Operator
	Value    any
	HasValue bool
	// Resolved holds the free identifiers found bound in the context
	Resolved map[string]any
	Reason   string
}

// defaultParams are the entity names accepted when the source has no
// arrow head
var defaultParams = []string{"entity", "item"}

// keywords never treated as free variables
var literalKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true,
}

var operatorKeywords = map[string]bool{
	"in": true, "not": true, "like": true, "is": true, "return": true,
}

// SourcePredicate is a predicate given as source text, such as
// `x => x.id >= lid`. Free identifiers resolve against the builder's
// variables when the predicate is appended.
type SourcePredicate struct {
	Text string
}

// Source wraps predicate source text
func Source(text string) SourcePredicate {
	return SourcePredicate{Text: text}
}

func (s SourcePredicate) String() string {
	return s.Text
}

// Extract implements Predicate
func (s SourcePredicate) Extract(vars *QueryContext) Extraction {
	return ExtractSource(s.Text, vars)
}

// ExtractSource matches exactly one `<param>.<field> <op> <operand>`
// comparison in src
func ExtractSource(src string, vars *QueryContext) Extraction {
	if len(src) > limits.MaxPredicateSize {
		return noMatch("predicate exceeds %d bytes", limits.MaxPredicateSize)
	}

	tokens := parser.Tokenize(src)
	for _, tok := range tokens {
		if tok.Type == parser.TokenIllegal {
			return noMatch("illegal token %q at column %d", tok.Literal, tok.Column)
		}
	}

	params, body, ok := splitArrow(tokens)
	if !ok {
		return noMatch("malformed arrow function")
	}
	body = unwrapBlock(body)

	ex := Extraction{Resolved: resolveFreeIdentifiers(body, params, vars)}
	m := &matcher{tokens: body, params: params, vars: vars}
	if reason := m.match(&ex); reason != "" {
		ex.Matched = false
		ex.Reason = reason
		return ex
	}
	ex.Matched = true
	return ex
}

func noMatch(format string, args ...any) Extraction {
	return Extraction{Reason: fmt.Sprintf(format, args...)}
}

// splitArrow separates `x =>` or `(x) =>` from the body
func splitArrow(tokens []parser.Token) (params []string, body []parser.Token, ok bool) {
	arrow := -1
	for i, tok := range tokens {
		if tok.Type == parser.TokenArrow {
			arrow = i
			break
		}
	}
	if arrow == -1 {
		return defaultParams, tokens, true
	}

	head := tokens[:arrow]
	switch {
	case len(head) == 1 && head[0].Type == parser.TokenIdent:
		return []string{head[0].Literal}, tokens[arrow+1:], true
	case len(head) == 3 && head[0].Type == parser.TokenLParen &&
		head[1].Type == parser.TokenIdent && head[2].Type == parser.TokenRParen:
		return []string{head[1].Literal}, tokens[arrow+1:], true
	}
	return nil, nil, false
}

// unwrapBlock turns `{ return <expr> }` into `<expr>`
func unwrapBlock(body []parser.Token) []parser.Token {
	// body always ends with EOF
	if len(body) < 4 || body[0].Type != parser.TokenLBrace || !body[1].IsKeyword("return") {
		return body
	}
	if body[len(body)-2].Type != parser.TokenRBrace {
		return body
	}
	inner := append([]parser.Token(nil), body[2:len(body)-2]...)
	return append(inner, body[len(body)-1])
}

func resolveFreeIdentifiers(body []parser.Token, params []string, vars *QueryContext) map[string]any {
	resolved := make(map[string]any)
	for i, tok := range body {
		if tok.Type != parser.TokenIdent {
			continue
		}
		if i > 0 && body[i-1].Type == parser.TokenDot {
			continue
		}
		name := tok.Literal
		if isParam(name, params) || literalKeywords[name] || operatorKeywords[strings.ToLower(name)] {
			continue
		}
		if v, ok := vars.Get(name); ok {
			resolved[name] = v
		}
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

func isParam(name string, params []string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}
	return false
}

type matcher struct {
	tokens []parser.Token
	pos    int
	params []string
	vars   *QueryContext
}

func (m *matcher) peek() parser.Token {
	return m.tokens[m.pos]
}

func (m *matcher) next() parser.Token {
	tok := m.tokens[m.pos]
	if tok.Type != parser.TokenEOF {
		m.pos++
	}
	return tok
}

// match fills ex and returns a non-empty reason on failure
func (m *matcher) match(ex *Extraction) string {
	param := m.next()
	if param.Type != parser.TokenIdent || !isParam(param.Literal, m.params) {
		return fmt.Sprintf("expected %s.<field> at column %d", m.params[0], param.Column)
	}
	if m.next().Type != parser.TokenDot {
		return "expected property access on the entity"
	}
	field := m.next()
	if field.Type != parser.TokenIdent {
		return "expected a field name after the entity"
	}
	ex.Field = field.Literal
	if m.peek().Type == parser.TokenDot {
		return "nested property paths are not supported"
	}

	op, reason := m.operator()
	if reason != "" {
		return reason
	}
	ex.Operator = op

	if op != OpIsNull && op != OpIsNotNull {
		value, reason := m.operand(op)
		if reason != "" {
			return reason
		}
		ex.Value = value
		ex.HasValue = true
	}

	switch tok := m.peek(); tok.Type {
	case parser.TokenEOF:
		return ""
	case parser.TokenAnd, parser.TokenOr:
		return "boolean connectives are not supported"
	default:
		if tok.IsKeyword("and") || tok.IsKeyword("or") {
			return "boolean connectives are not supported"
		}
		return fmt.Sprintf("unexpected %q at column %d", tok.Literal, tok.Column)
	}
}

func (m *matcher) operator() (Operator, string) {
	tok := m.next()
	switch tok.Type {
	case parser.TokenEq, parser.TokenStrictEq:
		return OpEq, ""
	case parser.TokenNotEq, parser.TokenStrictNeq:
		return OpNe, ""
	case parser.TokenGt:
		return OpGt, ""
	case parser.TokenLt:
		return OpLt, ""
	case parser.TokenGte:
		return OpGte, ""
	case parser.TokenLte:
		return OpLte, ""
	case parser.TokenLParen:
		return "", "function calls are not supported"
	}

	switch {
	case tok.IsKeyword("in"):
		return OpIn, ""
	case tok.IsKeyword("like"):
		return OpLike, ""
	case tok.IsKeyword("not"):
		if m.next().IsKeyword("in") {
			return OpNotIn, ""
		}
		return "", "expected in after not"
	case tok.IsKeyword("is"):
		if m.peek().IsKeyword("not") {
			m.next()
			if m.next().IsKeyword("null") {
				return OpIsNotNull, ""
			}
			return "", "expected null after is not"
		}
		if m.next().IsKeyword("null") {
			return OpIsNull, ""
		}
		return "", "expected null after is"
	}
	return "", fmt.Sprintf("unsupported operator %q", tok.Literal)
}

func (m *matcher) operand(op Operator) (any, string) {
	if m.peek().Type == parser.TokenLBracket {
		if op != OpIn && op != OpNotIn {
			return nil, "list operands are only valid with in and not in"
		}
		return m.list()
	}

	tok := m.peek()
	if tok.Type == parser.TokenIdent && !literalKeywords[tok.Literal] {
		m.next()
		if m.peek().Type == parser.TokenDot || m.peek().Type == parser.TokenLParen {
			return nil, "operand must be a variable or a literal"
		}
		if isParam(tok.Literal, m.params) {
			return nil, "comparing the entity with itself is not supported"
		}
		value, ok := m.vars.Get(tok.Literal)
		if !ok {
			return nil, fmt.Sprintf("variable %q is not bound", tok.Literal)
		}
		return value, ""
	}

	return m.literal()
}

func (m *matcher) literal() (any, string) {
	tok := m.next()
	negative := false
	if tok.Type == parser.TokenMinus {
		negative = true
		tok = m.next()
		if tok.Type != parser.TokenInt && tok.Type != parser.TokenFloat {
			return nil, "expected a number after -"
		}
	}

	switch tok.Type {
	case parser.TokenString:
		return tok.Literal, ""
	case parser.TokenInt:
		lit := tok.Literal
		if negative {
			lit = "-" + lit
		}
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, fmt.Sprintf("invalid integer %s", lit)
		}
		return n, ""
	case parser.TokenFloat:
		lit := tok.Literal
		if negative {
			lit = "-" + lit
		}
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Sprintf("invalid number %s", lit)
		}
		return f, ""
	case parser.TokenIdent:
		switch tok.Literal {
		case "true":
			return true, ""
		case "false":
			return false, ""
		case "null", "undefined":
			return nil, ""
		}
	case parser.TokenEOF:
		return nil, "missing operand"
	}
	return nil, fmt.Sprintf("unsupported operand %q", tok.Literal)
}

func (m *matcher) list() (any, string) {
	m.next() // [
	items := []any{}
	if m.peek().Type == parser.TokenRBracket {
		m.next()
		return items, ""
	}
	for {
		if m.peek().Type == parser.TokenEOF {
			return nil, "unbalanced brackets"
		}
		v, reason := m.literal()
		if reason != "" {
			return nil, reason
		}
		items = append(items, v)

		switch tok := m.next(); tok.Type {
		case parser.TokenComma:
			continue
		case parser.TokenRBracket:
			return items, ""
		case parser.TokenEOF:
			return nil, "unbalanced brackets"
		default:
			return nil, fmt.Sprintf("unexpected %q in list", tok.Literal)
		}
	}
}
