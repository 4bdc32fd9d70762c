package util

import (
	"fmt"
	"strings"
)

// ExtractSnippet returns up to context lines on each side of line (1-based),
// with the flagged line marked. Line numbers are included so the snippet is
// readable standalone in reports.
func ExtractSnippet(content string, line, context int) string {
	if context <= 0 {
		context = 3
	}
	lines := strings.Split(content, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	start := line - context - 1
	if start < 0 {
		start = 0
	}
	end := line + context
	if end > len(lines) {
		end = len(lines)
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		prefix := "    "
		if i == line-1 {
			prefix = ">>> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", prefix, i+1, lines[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

// Window returns the slice of lines in [line-radius, line+radius] joined back
// into one block. Used by detectors that look for companion constraints in a
// bounded region around a field.
func Window(lines []string, line, radius int) string {
	if line < 1 {
		line = 1
	}
	start := line - 1 - radius
	if start < 0 {
		start = 0
	}
	end := line + radius
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}
