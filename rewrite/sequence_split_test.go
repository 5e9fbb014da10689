package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestSequenceSplitBreaksCommaStatementIntoSeparateStatements(t *testing.T) {
	src := `a(), b(), c();`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, SequenceSplit())
	assert.Equal(t, 1, changes)
	assert.Len(t, prog.Body, 3)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "a()")
	assert.Contains(t, out, "b()")
	assert.Contains(t, out, "c()")
}

func TestSequenceSplitLeavesSingleExpressionAlone(t *testing.T) {
	src := `a();`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, SequenceSplit())
	assert.Equal(t, 0, changes)
	assert.Len(t, prog.Body, 1)
}

func runSequenceSplit(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	transform.ApplyTransform(prog, SequenceSplit())
	return fastgen.Generate(prog)
}

func TestSequenceSplitHoistsLeadingReturnOperands(t *testing.T) {
	out := runSequenceSplit(t, `function f() { return a(), b(), c(); }`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "b();")
	assert.Contains(t, out, "return c()")
}

func TestSequenceSplitHoistsLeadingThrowOperands(t *testing.T) {
	out := runSequenceSplit(t, `function f() { throw (a(), b()); }`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "throw b()")
}

func TestSequenceSplitHoistsLeadingIfTestOperands(t *testing.T) {
	out := runSequenceSplit(t, `if (a(), b()) { c(); }`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "if (b())")
}

func TestSequenceSplitHoistsLeadingSwitchDiscriminantOperands(t *testing.T) {
	out := runSequenceSplit(t, `switch (a(), b()) { case 1: break; }`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "switch (b())")
}

func TestSequenceSplitHoistsLeadingForInSourceOperands(t *testing.T) {
	out := runSequenceSplit(t, `for (var k in (a(), obj)) { c(); }`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "in obj")
}

func TestSequenceSplitHoistsLeadingSingleDeclaratorInitOperands(t *testing.T) {
	out := runSequenceSplit(t, `var x = (a(), b());`)
	assert.Contains(t, out, "a();")
	assert.Contains(t, out, "var x = b()")
}

func TestSequenceSplitFillsBareDeclaratorsFromForInit(t *testing.T) {
	out := runSequenceSplit(t, `var i, j; for (i = 0, j = 1; i < 10; i++) { body(); }`)
	assert.NotContains(t, out, "for (i = 0")
	assert.NotContains(t, out, "(i = 0, j = 1")
	assert.Contains(t, out, "i = 0")
	assert.Contains(t, out, "j = 1")
}

func TestSequenceSplitHoistsForInitWithoutBareDeclarator(t *testing.T) {
	out := runSequenceSplit(t, `for (i = 0, j = 1; i < 10; i++) { body(); }`)
	assert.NotContains(t, out, "for (i = 0")
	assert.NotContains(t, out, "i = 0, j = 1")
	assert.Contains(t, out, "i = 0")
	assert.Contains(t, out, "j = 1")
}

func TestSequenceSplitMovesForUpdateIntoEmptyBody(t *testing.T) {
	out := runSequenceSplit(t, `for (i = 0; i < 10; i++, j--) {}`)
	assert.Contains(t, out, "for (i = 0; i < 10;")
	assert.Contains(t, out, "i++")
	assert.Contains(t, out, "j--")
}

func TestSequenceSplitLeavesForUpdateAloneWhenBodyNonEmpty(t *testing.T) {
	out := runSequenceSplit(t, `for (i = 0; i < 10; i++, j--) { body(); }`)
	assert.Contains(t, out, "i++, j--")
}
