package parser

import (
	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/lexer"
)

type options struct {
	filename string
}

// Option configures the parser.
type Option func(*options)

// WithFilename sets the filename recorded on diagnostics.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// Parser turns a token stream into a program block. It keeps a two token
// window (curTok, peekTok) and stops at the first error.
type Parser struct {
	lx       *lexer.Lexer
	source   string
	filename string

	curTok  lexer.Token
	peekTok lexer.Token
	prevTok lexer.Token // last consumed token, used for end spans

	err error
}

// New creates a new parser for the given source.
func New(src string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p := &Parser{
		lx:       lexer.New(src),
		source:   src,
		filename: cfg.filename,
	}

	// Read two tokens, so curTok and peekTok are both set
	p.nextToken()
	p.nextToken()

	return p
}

// ParseSource parses src and attaches filename to any diagnostic.
func ParseSource(filename, src string) (*ast.BlockStmt, error) {
	return New(src, WithFilename(filename)).Parse()
}

// Parse parses the whole input into one block. The first malformed construct
// aborts the parse and is returned as a diag.Diagnostic.
func (p *Parser) Parse() (*ast.BlockStmt, error) {
	start := p.curTok.Span
	var stmts []ast.Stmt

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement(true)
		if p.err != nil {
			return nil, p.err
		}
		stmts = append(stmts, stmt)
	}

	return ast.NewBlockStmt(stmts, diag.Merge(start, p.curTok.Span)), nil
}

func (p *Parser) nextToken() {
	p.prevTok = p.curTok
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

func (p *Parser) curTokenIs(tt lexer.TokenType) bool {
	return p.curTok.Type == tt
}

func (p *Parser) peekTokenIs(tt lexer.TokenType) bool {
	return p.peekTok.Type == tt
}

// failed reports whether an error has already been recorded.
func (p *Parser) failed() bool {
	return p.err != nil
}

// expect consumes the current token when it has type tt. Otherwise it records
// msg (with hint) and returns false. A missing terminator is reported just
// after the previous token, where the user has to type it.
func (p *Parser) expect(tt lexer.TokenType, msg, hint string) bool {
	if p.curTokenIs(tt) {
		p.nextToken()
		return true
	}
	span := p.curTok.Span
	if isTerminator(tt) && p.prevTok.Span.Line < p.curTok.Span.Line {
		span = p.afterPrev()
	}
	p.errorAt(span, msg, hint)
	return false
}

// expectIdent consumes an identifier and returns it as a node.
func (p *Parser) expectIdent(msg, hint string) *ast.Ident {
	if !p.curTokenIs(lexer.IDENT) {
		p.errorAt(p.curTok.Span, msg, hint)
		return nil
	}
	id := ast.NewIdent(p.curTok.Literal, p.curTok.Span)
	p.nextToken()
	return id
}

func isTerminator(tt lexer.TokenType) bool {
	switch tt {
	case lexer.SEMICOLON, lexer.RPAREN, lexer.RBRACE, lexer.RBRACKET:
		return true
	}
	return false
}

// afterPrev is the one column span immediately following the previous token.
func (p *Parser) afterPrev() diag.Span {
	prev := p.prevTok.Span
	width := len([]rune(p.prevTok.Literal))
	return diag.NewSpan(prev.Line, prev.Column+width, prev.End(), 1)
}

// spanFrom spans from start to the end of the last consumed token.
func (p *Parser) spanFrom(start diag.Span) diag.Span {
	return diag.Merge(start, p.prevTok.Span)
}
