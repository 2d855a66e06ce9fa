package diag

import (
	"errors"
	"fmt"
)

// Kind identifies which pipeline stage produced the diagnostic.
type Kind int

const (
	KindLexical Kind = iota
	KindParse
	KindType
	KindRuntime
)

// String returns the user-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "Lexical Error"
	case KindParse:
		return "Parse Error"
	case KindType:
		return "Type Error"
	case KindRuntime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// DefaultFilename is reported when a diagnostic carries no filename.
const DefaultFilename = "program.rv"

// Diagnostic is a structured error surfaced to end-users. Source and Hint are
// optional; when Source is present the formatter renders a snippet.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Span     Span
	Source   string
	Filename string
	Hint     string
}

// New creates a diagnostic of the given kind.
func New(kind Kind, message string, span Span) Diagnostic {
	return Diagnostic{Kind: kind, Message: message, Span: span}
}

// Lexical creates a lexical diagnostic.
func Lexical(message string, span Span) Diagnostic { return New(KindLexical, message, span) }

// Parse creates a parse diagnostic.
func Parse(message string, span Span) Diagnostic { return New(KindParse, message, span) }

// Type creates a type diagnostic.
func Type(message string, span Span) Diagnostic { return New(KindType, message, span) }

// Runtime creates a runtime diagnostic.
func Runtime(message string, span Span) Diagnostic { return New(KindRuntime, message, span) }

// Typef creates a type diagnostic with a formatted message.
func Typef(span Span, format string, args ...any) Diagnostic {
	return Type(fmt.Sprintf(format, args...), span)
}

// Runtimef creates a runtime diagnostic with a formatted message.
func Runtimef(span Span, format string, args ...any) Diagnostic {
	return Runtime(fmt.Sprintf(format, args...), span)
}

// WithSource returns a copy of d carrying the full source text.
func (d Diagnostic) WithSource(source string) Diagnostic {
	d.Source = source
	return d
}

// WithFilename returns a copy of d carrying the filename.
func (d Diagnostic) WithFilename(filename string) Diagnostic {
	d.Filename = filename
	return d
}

// WithHint returns a copy of d carrying a remediation hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// WithSpan returns a copy of d pointing at span.
func (d Diagnostic) WithSpan(span Span) Diagnostic {
	d.Span = span
	return d
}

// FilenameOrDefault returns the filename, falling back to DefaultFilename.
func (d Diagnostic) FilenameOrDefault() string {
	if d.Filename == "" {
		return DefaultFilename
	}
	return d.Filename
}

// Error implements error with the compact file:line:col form.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%s: %s: %s", d.FilenameOrDefault(), d.Span, d.Kind, d.Message)
}

// AsDiagnostic extracts a Diagnostic from err, if it carries one.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var d Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return Diagnostic{}, false
}

// Attach fills in source and filename on err when it is a Diagnostic that does
// not already carry them. Other errors are returned unchanged.
func Attach(err error, filename, source string) error {
	d, ok := AsDiagnostic(err)
	if !ok {
		return err
	}
	if d.Filename == "" {
		d.Filename = filename
	}
	if d.Source == "" {
		d.Source = source
	}
	return d
}
