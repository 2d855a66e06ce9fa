package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Formatter renders diagnostics in a compiler-style layout with a source
// snippet and caret underline.
type Formatter struct {
	w io.Writer
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Print writes the rendered diagnostic to the formatter's writer.
func (f *Formatter) Print(d Diagnostic) error {
	_, err := io.WriteString(f.w, Format(d))
	return err
}

// PrintError renders err as a diagnostic when possible and as a plain
// "error: ..." line otherwise.
func (f *Formatter) PrintError(err error) error {
	if d, ok := AsDiagnostic(err); ok {
		return f.Print(d)
	}
	_, werr := fmt.Fprintf(f.w, "error: %v\n", err)
	return werr
}

// Format renders d:
//
//	error[Parse Error]: message
//	  --> file:line:col
//	   |
//	 3 | source line
//	   |     ^^^
//	   = help: hint
func Format(d Diagnostic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "error[%s]: %s\n", d.Kind, d.Message)
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", d.FilenameOrDefault(), d.Span.Line+1, d.Span.Column+1)

	if d.Source != "" {
		writeSnippet(&b, d)
	}

	if d.Hint != "" {
		fmt.Fprintf(&b, "   = help: %s\n", d.Hint)
	}

	return b.String()
}

func writeSnippet(b *strings.Builder, d Diagnostic) {
	lines := strings.Split(strings.ReplaceAll(d.Source, "\r\n", "\n"), "\n")
	if d.Span.Line < 0 || d.Span.Line >= len(lines) {
		return
	}

	lineNum := strconv.Itoa(d.Span.Line + 1)
	pad := strings.Repeat(" ", len(lineNum))
	content := lines[d.Span.Line]

	fmt.Fprintf(b, " %s |\n", pad)
	fmt.Fprintf(b, " %s | %s\n", lineNum, content)

	width := max(d.Span.Length, 1)
	lineLen := len([]rune(content))
	if rest := lineLen - d.Span.Column; rest > 0 && width > rest {
		width = rest
	}
	fmt.Fprintf(b, " %s | %s%s\n", pad, strings.Repeat(" ", d.Span.Column), strings.Repeat("^", width))
}
