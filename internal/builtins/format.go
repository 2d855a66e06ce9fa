package builtins

import (
	"fmt"
	"strings"
)

const placeholder = "{}"

// Placeholders counts the `{}` slots in format.
func Placeholders(format string) int {
	return strings.Count(format, placeholder)
}

// Substitute fills the `{}` slots of format with args in order. The number of
// slots and arguments must match exactly.
func Substitute(format string, args []string) (string, error) {
	want := Placeholders(format)
	switch {
	case want > len(args):
		return "", fmt.Errorf("not enough arguments for format string: %d placeholders, %d arguments", want, len(args))
	case want < len(args):
		return "", fmt.Errorf("too many arguments for format string: %d placeholders, %d arguments", want, len(args))
	}

	var b strings.Builder
	rest := format
	for _, arg := range args {
		i := strings.Index(rest, placeholder)
		b.WriteString(rest[:i])
		b.WriteString(arg)
		rest = rest[i+len(placeholder):]
	}
	b.WriteString(rest)
	return b.String(), nil
}

// ExpandNewlines turns the two character sequence `\n` into a newline, the
// way file writes store text.
func ExpandNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
