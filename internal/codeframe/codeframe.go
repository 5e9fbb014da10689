// Package codeframe renders the short source excerpt spec.md §7 requires
// InputError and InternalError to carry: the offending line plus a few
// lines of context and a caret under the column, the same shape most JS
// toolchains print for a SyntaxError.
package codeframe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format renders a code frame for (line, col), both 1-based. context is
// the number of lines to show above and below the offending line. Out-of-
// range positions are clamped rather than treated as an error, since a
// caller only has an approximate position in many cases (see ExtractPosition).
func Format(source string, line, col, context int) string {
	lines := strings.Split(source, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	start := line - context
	if start < 1 {
		start = 1
	}
	end := line + context
	if end > len(lines) {
		end = len(lines)
	}

	width := len(strconv.Itoa(end))
	var b strings.Builder
	for n := start; n <= end; n++ {
		marker := "  "
		if n == line {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%*d | %s\n", marker, width, n, lines[n-1])
		if n == line {
			caretCol := col
			if caretCol < 1 {
				caretCol = 1
			}
			if caretCol > len(lines[n-1])+1 {
				caretCol = len(lines[n-1]) + 1
			}
			fmt.Fprintf(&b, "  %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", caretCol-1))
		}
	}
	return b.String()
}

var positionPattern = regexp.MustCompile(`(?:line[ :]?|:)(\d+)(?:[,: ]+col(?:umn)?[ :]?)?:?(\d+)?`)

// ExtractPosition tries to recover a 1-based (line, col) from an opaque
// parser error's message. go-fast's parser error type isn't one this
// module's retrieved examples expose a documented structure for, so this
// degrades gracefully: any message without a recognizable "line N" (and
// optionally "column N") substring reports ok=false, and callers fall
// back to a frame-less error (still fatal, just without the excerpt).
func ExtractPosition(msg string) (line, col int, ok bool) {
	m := positionPattern.FindStringSubmatch(strings.ToLower(msg))
	if m == nil {
		return 0, 0, false
	}
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	if m[2] != "" {
		col, _ = strconv.Atoi(m[2])
	} else {
		col = 1
	}
	return line, col, true
}
