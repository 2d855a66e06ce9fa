package lexer

import "github.com/raven-lang/raven/internal/diag"

// TokenType represents the type of a token
type TokenType string

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string    // exact source text of the token
	Value   any       // decoded value: int64, float64, string or bool for literals
	Span    diag.Span // source location information
}

// Is reports whether the token has type tt.
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"  // add, foobar, x, y, ...
	INT    TokenType = "INT"    // 1343456
	FLOAT  TokenType = "FLOAT"  // 3.14
	STRING TokenType = "STRING" // "hello"
	TYPE   TokenType = "TYPE"   // int, float, bool, string, String, void

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	AND      TokenType = "&&"
	OR       TokenType = "||"

	LT     TokenType = "<"
	GT     TokenType = ">"
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LE     TokenType = "<="
	GE     TokenType = ">="

	// Delimiters
	COMMA        TokenType = ","
	SEMICOLON    TokenType = ";"
	COLON        TokenType = ":"
	DOUBLE_COLON TokenType = "::"
	DOT          TokenType = "."
	DOTDOT       TokenType = ".."
	ARROW        TokenType = "->"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// Keywords
	LET    TokenType = "LET"
	CONST  TokenType = "CONST"
	FUN    TokenType = "FUN"
	RETURN TokenType = "RETURN"
	IF     TokenType = "IF"
	ELSEIF TokenType = "ELSEIF"
	ELSE   TokenType = "ELSE"
	WHILE  TokenType = "WHILE"
	FOR    TokenType = "FOR"
	IMPORT TokenType = "IMPORT"
	EXPORT TokenType = "EXPORT"
	FROM   TokenType = "FROM"
	STRUCT TokenType = "STRUCT"
	ENUM   TokenType = "ENUM"
	PRINT  TokenType = "PRINT"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"let":    LET,
	"const":  CONST,
	"fun":    FUN,
	"return": RETURN,
	"if":     IF,
	"elseif": ELSEIF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"import": IMPORT,
	"export": EXPORT,
	"from":   FROM,
	"struct": STRUCT,
	"enum":   ENUM,
	"print":  PRINT,
	"true":   TRUE,
	"false":  FALSE,

	// word forms of the logical operators
	"and": AND,
	"or":  OR,
	"not": BANG,

	"int":    TYPE,
	"float":  TYPE,
	"bool":   TYPE,
	"string": TYPE,
	"String": TYPE,
	"void":   TYPE,
}

// Keywords returns the reserved words, used for editor completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
