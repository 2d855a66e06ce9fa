package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raven-lang/raven/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrUnterminatedBlockComment
	ErrIllegalRune
	ErrNumberRange
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    diag.Span
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	d := diag.Lexical(e.Message, e.Span)
	switch e.Kind {
	case ErrUnterminatedString:
		d = d.WithHint("Close the string with '\"'")
	case ErrUnterminatedBlockComment:
		d = d.WithHint("Close the comment with '*/'")
	case ErrNumberRange:
		d = d.WithHint("Integer literals must fit in a signed 64-bit integer")
	}
	return d
}

// Lexer represents the lexer state. Positions are zero-based; the offset is a
// byte offset into the input and the column counts runes.
type Lexer struct {
	input  string
	pos    int  // byte offset of the current rune
	next   int  // byte offset just past the current rune
	ch     rune // current rune
	line   int
	column int

	Errors []LexerError
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.decode()
	return l
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span diag.Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// decode loads the rune at l.pos.
func (l *Lexer) decode() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.next = len(l.input)
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.next = l.pos + w
}

// read advances the lexer to the next character, keeping line/column in step
// with the rune at pos.
func (l *Lexer) read() {
	if l.atEOF() {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.pos = l.next
	l.decode()
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

// mark captures the position of the character we are about to tokenize.
type mark struct {
	line, column, pos int
}

func (l *Lexer) mark() mark {
	return mark{line: l.line, column: l.column, pos: l.pos}
}

// spanFrom builds the span from m to the current position.
func (l *Lexer) spanFrom(m mark) diag.Span {
	return diag.NewSpan(m.line, m.column, m.pos, l.pos-m.pos)
}

// makeToken creates a token whose literal is the source text from m to the
// current position.
func (l *Lexer) makeToken(tokType TokenType, m mark, value any) Token {
	return Token{
		Type:    tokType,
		Literal: l.input[m.pos:l.pos],
		Value:   value,
		Span:    l.spanFrom(m),
	}
}

// single consumes one rune and returns a token of type tt.
func (l *Lexer) single(tt TokenType) Token {
	m := l.mark()
	l.read()
	return l.makeToken(tt, m, nil)
}

// either consumes one or two runes: two when the following rune is second.
func (l *Lexer) either(second rune, two, one TokenType) Token {
	m := l.mark()
	if l.peek() == second {
		l.read()
		l.read()
		return l.makeToken(two, m, nil)
	}
	l.read()
	return l.makeToken(one, m, nil)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && unicode.IsSpace(l.ch) {
		l.read()
	}
}

func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.read()
	}
}

func (l *Lexer) skipBlockComment(m mark) {
	l.read() // '/'
	l.read() // '*'
	for {
		if l.atEOF() {
			l.addError(ErrUnterminatedBlockComment, "unterminated block comment", l.spanFrom(m))
			return
		}
		if l.ch == '*' && l.peek() == '/' {
			l.read()
			l.read()
			return
		}
		l.read()
	}
}

// NextToken consumes and returns exactly one token. Once the input is
// exhausted it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		if l.atEOF() {
			return l.makeToken(EOF, l.mark(), nil)
		}

		switch l.ch {
		case '=':
			return l.either('=', EQ, ASSIGN)
		case '!':
			return l.either('=', NOT_EQ, BANG)
		case '<':
			return l.either('=', LE, LT)
		case '>':
			return l.either('=', GE, GT)
		case '-':
			return l.either('>', ARROW, MINUS)
		case ':':
			return l.either(':', DOUBLE_COLON, COLON)
		case '.':
			return l.either('.', DOTDOT, DOT)
		case '&':
			if l.peek() == '&' {
				return l.either('&', AND, ILLEGAL)
			}
			return l.illegal()
		case '|':
			if l.peek() == '|' {
				return l.either('|', OR, ILLEGAL)
			}
			return l.illegal()
		case '/':
			switch l.peek() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				l.skipBlockComment(l.mark())
				continue
			}
			return l.single(SLASH)
		case '+':
			return l.single(PLUS)
		case '*':
			return l.single(ASTERISK)
		case '%':
			return l.single(PERCENT)
		case ';':
			return l.single(SEMICOLON)
		case ',':
			return l.single(COMMA)
		case '(':
			return l.single(LPAREN)
		case ')':
			return l.single(RPAREN)
		case '{':
			return l.single(LBRACE)
		case '}':
			return l.single(RBRACE)
		case '[':
			return l.single(LBRACKET)
		case ']':
			return l.single(RBRACKET)
		case '"':
			return l.readString()
		}

		switch {
		case isLetter(l.ch):
			m := l.mark()
			ident := l.readIdentifier()
			tt := LookupIdent(ident)
			var value any
			switch tt {
			case TRUE:
				value = true
			case FALSE:
				value = false
			}
			return l.makeToken(tt, m, value)
		case isDigit(l.ch):
			return l.readNumber()
		default:
			return l.illegal()
		}
	}
}

// PeekToken returns the next token without advancing the lexer. It runs a
// copy of the cursor so neither position nor recorded errors change.
func (l *Lexer) PeekToken() Token {
	tmp := *l
	tmp.Errors = nil
	return tmp.NextToken()
}

// Tokenize lexes the remaining input, including the final EOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// ErrorAt returns the lexer error recorded for the token starting at offset.
func (l *Lexer) ErrorAt(offset int) (LexerError, bool) {
	for _, e := range l.Errors {
		if e.Span.Offset == offset {
			return e, true
		}
	}
	return LexerError{}, false
}

func (l *Lexer) illegal() Token {
	m := l.mark()
	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, m, nil)
	l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(raw), tok.Span)
	return tok
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return l.input[start:l.pos]
}

// readNumber reads digits with at most one decimal point. The literal is a
// FLOAT exactly when it contains the point, so `5.` is 5.0. A point followed
// by another point or a name is left for the next token.
func (l *Lexer) readNumber() Token {
	m := l.mark()
	for isDigit(l.ch) {
		l.read()
	}
	if l.ch == '.' && l.peek() != '.' && !isLetter(l.peek()) {
		l.read()
		for isDigit(l.ch) {
			l.read()
		}
		literal := l.input[m.pos:l.pos]
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			tok := l.makeToken(ILLEGAL, m, nil)
			l.addError(ErrNumberRange, "float literal "+literal+" is out of range", tok.Span)
			return tok
		}
		return l.makeToken(FLOAT, m, f)
	}

	literal := l.input[m.pos:l.pos]
	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		tok := l.makeToken(ILLEGAL, m, nil)
		l.addError(ErrNumberRange, "integer literal "+literal+" is out of range", tok.Span)
		return tok
	}
	return l.makeToken(INT, m, n)
}

// readString reads a double-quoted string literal. Strings may span lines;
// the escapes \n \t \r \" and \\ are decoded and any other escape is kept
// verbatim.
func (l *Lexer) readString() Token {
	m := l.mark()
	var decoded strings.Builder

	l.read() // opening quote
	for {
		if l.atEOF() {
			tok := l.makeToken(ILLEGAL, m, nil)
			l.addError(ErrUnterminatedString, "unterminated string literal", tok.Span)
			return tok
		}
		if l.ch == '"' {
			l.read()
			return l.makeToken(STRING, m, decoded.String())
		}
		if l.ch == '\\' {
			l.read()
			if l.atEOF() {
				continue
			}
			switch l.ch {
			case 'n':
				decoded.WriteRune('\n')
			case 't':
				decoded.WriteRune('\t')
			case 'r':
				decoded.WriteRune('\r')
			case '\\':
				decoded.WriteRune('\\')
			case '"':
				decoded.WriteRune('"')
			default:
				decoded.WriteRune('\\')
				decoded.WriteRune(l.ch)
			}
			l.read()
			continue
		}
		decoded.WriteRune(l.ch)
		l.read()
	}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}
