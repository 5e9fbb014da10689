package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestDeadBranchKeepsTrueConsequent(t *testing.T) {
	src := `if (true) { foo(); } else { bar(); }`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, DeadBranch())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "foo()")
	assert.NotContains(t, out, "bar()")
}

func TestDeadBranchDropsWholeStatementWhenNoAlternate(t *testing.T) {
	src := `if (false) { foo(); }`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, DeadBranch())
	assert.Equal(t, 1, changes)
	assert.Empty(t, prog.Body)
}

func TestDeadBranchFoldsConditionalExpression(t *testing.T) {
	src := `var x = true ? 1 : 2;`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, DeadBranch())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "1")
	assert.NotContains(t, out, "2")
}

func TestDeadBranchRenamesCollidingOuterLetWhenSplicingBranch(t *testing.T) {
	src := `
function f() {
	let x = 1;
	if (true) {
		let x = 2;
		use(x);
	}
	console.log(x);
}
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, DeadBranch())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "x = 2")
	assert.Contains(t, out, "use(x)")
	assert.Contains(t, out, "_x = 1")
	assert.Contains(t, out, "console.log(_x)")
}
