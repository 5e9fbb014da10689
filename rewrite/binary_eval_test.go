package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func runBinaryEval(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	transform.ApplyTransform(prog, BinaryEval())
	return fastgen.Generate(prog)
}

func TestBinaryEvalFoldsArithmetic(t *testing.T) {
	assert.Contains(t, runBinaryEval(t, "var x = 1 + 2;"), "3")
	assert.Contains(t, runBinaryEval(t, "var x = 10 - 4;"), "6")
	assert.Contains(t, runBinaryEval(t, "var x = 6 * 7;"), "42")
}

func TestBinaryEvalFoldsStringConcat(t *testing.T) {
	assert.Contains(t, runBinaryEval(t, `var x = "foo" + "bar";`), `"foobar"`)
}

func TestBinaryEvalFoldsUnaryNegationAndNot(t *testing.T) {
	assert.Contains(t, runBinaryEval(t, "var x = -5;"), "-5")
	assert.Contains(t, runBinaryEval(t, "var x = !true;"), "false")
}

func TestBinaryEvalFoldsLogicalShortCircuit(t *testing.T) {
	assert.Contains(t, runBinaryEval(t, "var x = false && 1;"), "false")
	assert.Contains(t, runBinaryEval(t, "var x = true || 1;"), "true")
}

func TestBinaryEvalFoldsArrayTruthiness(t *testing.T) {
	assert.Contains(t, runBinaryEval(t, "var x = ![];"), "false")
	assert.Contains(t, runBinaryEval(t, "var x = !![];"), "true")
}

func TestBinaryEvalLeavesNonLiteralOperandsAlone(t *testing.T) {
	out := runBinaryEval(t, "var x = y + 1;")
	assert.Contains(t, out, "y")
	assert.Contains(t, out, "+")
}
