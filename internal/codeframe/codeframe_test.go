package codeframe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHighlightsOffendingLine(t *testing.T) {
	src := "const a = 1;\nconst b = ;\nconst c = 3;"
	frame := Format(src, 2, 11, 1)

	assert.Contains(t, frame, "> 2 | const b = ;")
	assert.Contains(t, frame, "1 | const a = 1;")
	assert.Contains(t, frame, "3 | const c = 3;")

	lines := strings.Split(frame, "\n")
	var caretLine string
	for i, l := range lines {
		if strings.Contains(l, "const b = ;") {
			caretLine = lines[i+1]
			break
		}
	}
	assert.True(t, strings.HasSuffix(caretLine, "^"))
}

func TestFormatClampsOutOfRangeColumn(t *testing.T) {
	src := "x"
	frame := Format(src, 1, 99, 0)
	assert.Contains(t, frame, "^")
}

func TestExtractPosition(t *testing.T) {
	line, col, ok := ExtractPosition("parse error at line 4, column 12: unexpected token")
	assert.True(t, ok)
	assert.Equal(t, 4, line)
	assert.Equal(t, 12, col)

	_, _, ok = ExtractPosition("some opaque failure")
	assert.False(t, ok)
}
