package parser

import (
	"github.com/raven-lang/raven/internal/lexer"
)

type delimitedConfig struct {
	Closing   lexer.TokenType
	Separator lexer.TokenType

	AllowEmpty    bool
	AllowTrailing bool

	MissingElemMsg   string
	MissingCloseMsg  string
	MissingCloseHint string
}

// parseDelimited parses separated items up to and including the closing
// token. The opening token must already be consumed.
func parseDelimited[T any](p *Parser, cfg delimitedConfig, parseItem func() (T, bool)) ([]T, bool) {
	if cfg.Separator == "" {
		cfg.Separator = lexer.COMMA
	}
	if cfg.Closing == "" {
		panic("parseDelimited requires a closing token")
	}

	var items []T
	if p.curTokenIs(cfg.Closing) {
		if !cfg.AllowEmpty {
			msg := cfg.MissingElemMsg
			if msg == "" {
				msg = "expected element"
			}
			p.errorAt(p.curTok.Span, msg, cfg.MissingCloseHint)
			return nil, false
		}
		p.nextToken()
		return items, true
	}

	for {
		item, ok := parseItem()
		if !ok {
			return nil, false
		}
		items = append(items, item)

		switch p.curTok.Type {
		case cfg.Separator:
			p.nextToken()
			if p.curTokenIs(cfg.Closing) && cfg.AllowTrailing {
				p.nextToken()
				return items, true
			}
		case cfg.Closing:
			p.nextToken()
			return items, true
		default:
			span := p.curTok.Span
			if p.curTokenIs(lexer.EOF) || p.prevTok.Span.Line < p.curTok.Span.Line {
				span = p.afterPrev()
			}
			p.errorAt(span, cfg.MissingCloseMsg, cfg.MissingCloseHint)
			return nil, false
		}
	}
}
