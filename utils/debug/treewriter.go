// Package debug has helpers producing human readable dumps of intermediate
// conversion state for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLen limits how much of the markup is shown by Excerpt.
const DefaultExcerptLen = 80

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value under label, empty value is written as is.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(quote(value))
	tw.w.WriteByte('\n')
}

// Excerpt is TextBlock for potentially long values: value is cut to limit
// runes (DefaultExcerptLen if limit is not positive) and total length is
// appended when cut happened.
func (tw TreeWriter) Excerpt(depth int, label, value string, limit int) {
	if limit <= 0 {
		limit = DefaultExcerptLen
	}
	total := utf8.RuneCountInString(value)
	if total <= limit {
		tw.TextBlock(depth, label, value)
		return
	}
	cut := value
	for i := range value {
		if limit == 0 {
			cut = value[:i]
			break
		}
		limit--
	}
	tw.indent(depth)
	fmt.Fprintf(tw.w, "%s: %s... (%d runes)\n", label, quote(cut), total)
}

func quote(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
