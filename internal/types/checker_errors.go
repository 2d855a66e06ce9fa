package types

import (
	"fmt"

	"github.com/raven-lang/raven/internal/diag"
)

func (c *Checker) errorf(span diag.Span, format string, args ...any) error {
	return diag.Typef(span, format, args...).WithFilename(c.filename)
}

func (c *Checker) errorHint(span diag.Span, hint, format string, args ...any) error {
	return diag.Typef(span, format, args...).WithFilename(c.filename).WithHint(hint)
}

func (c *Checker) mismatch(span diag.Span, expected, found Type) error {
	return c.errorf(span, "Type mismatch: expected %s, found %s", expected, found)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
