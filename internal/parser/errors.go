package parser

import (
	"errors"

	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/lexer"
)

// ErrIncomplete marks a parse that failed only because the input ended early.
var ErrIncomplete = errors.New("incomplete input")

// incompleteError carries the diagnostic of a parse that ran into EOF.
type incompleteError struct {
	diag.Diagnostic
}

func (e incompleteError) Unwrap() []error {
	return []error{ErrIncomplete, e.Diagnostic}
}

// IsIncomplete reports whether err came from input that ended too early, so
// more lines could complete it.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// errorAt records the first parse error; later ones are dropped.
func (p *Parser) errorAt(span diag.Span, msg, hint string) {
	if p.err != nil {
		return
	}

	var d diag.Diagnostic
	if p.curTokenIs(lexer.ILLEGAL) {
		// the lexer already knows why this token is bad
		if lexErr, ok := p.lx.ErrorAt(p.curTok.Span.Offset); ok {
			d = lexErr.ToDiagnostic()
		}
	}
	if d.Message == "" {
		d = diag.Parse(msg, span).WithHint(hint)
	}
	d = d.WithSource(p.source).WithFilename(p.filename)

	if p.curTokenIs(lexer.EOF) || p.lexedUnterminated() {
		p.err = incompleteError{d}
		return
	}
	p.err = d
}

// lexedUnterminated reports whether the lexer stopped inside a string or a
// block comment.
func (p *Parser) lexedUnterminated() bool {
	for _, e := range p.lx.Errors {
		switch e.Kind {
		case lexer.ErrUnterminatedString, lexer.ErrUnterminatedBlockComment:
			return true
		}
	}
	return false
}
