package diag

import "fmt"

// Span represents a location in source code. All fields are zero-based; the
// zero Span is used for synthesized errors that have no source location.
type Span struct {
	Line   int
	Column int
	Offset int
	Length int
}

// NewSpan builds a span from its four coordinates.
func NewSpan(line, column, offset, length int) Span {
	return Span{Line: line, Column: column, Offset: offset, Length: length}
}

// String returns the one-based line:column form shown to users.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line+1, s.Column+1)
}

// IsZero reports whether s is the dummy span.
func (s Span) IsZero() bool {
	return s == Span{}
}

// End returns the byte offset just past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Offset && offset < s.End()
}

// Merge returns a span covering both a and b: the minimum start and the
// maximum end. The column is only narrowed when both spans share a line.
func Merge(a, b Span) Span {
	start := min(a.Offset, b.Offset)
	end := max(a.End(), b.End())

	column := a.Column
	if a.Line == b.Line {
		column = min(a.Column, b.Column)
	} else if b.Line < a.Line {
		column = b.Column
	}

	return Span{
		Line:   min(a.Line, b.Line),
		Column: column,
		Offset: start,
		Length: end - start,
	}
}
