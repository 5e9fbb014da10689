package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func runControlFlowUnflatten(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	transform.ApplyTransform(prog, ControlFlowUnflatten())
	return fastgen.Generate(prog)
}

func TestControlFlowUnflattenReordersDispatchedCases(t *testing.T) {
	src := `
function run() {
	var order = "c|a|b".split("|");
	var i = 0;
	while (true) {
		switch (order[i++]) {
			case "a":
				step1();
				continue;
			case "b":
				step2();
				continue;
			case "c":
				step3();
				break;
		}
		break;
	}
}
`
	out := runControlFlowUnflatten(t, src)
	assert.NotContains(t, out, "order")
	assert.NotContains(t, out, "switch")
	assert.NotContains(t, out, "while")

	posC := indexOf(out, "step3()")
	posA := indexOf(out, "step1()")
	posB := indexOf(out, "step2()")
	require.NotEqual(t, -1, posC)
	require.NotEqual(t, -1, posA)
	require.NotEqual(t, -1, posB)
	assert.True(t, posC < posA && posA < posB, "expected statements reordered to c, a, b alphabet order: %s", out)
}

func TestControlFlowUnflattenDropsContinueOnlyCase(t *testing.T) {
	src := `
function run() {
	var order = "a|b".split("|");
	var i = 0;
	while (true) {
		switch (order[i++]) {
			case "a":
				continue;
			case "b":
				step2();
				break;
		}
		break;
	}
}
`
	out := runControlFlowUnflatten(t, src)
	assert.Contains(t, out, "step2()")
}

func TestControlFlowUnflattenLeavesOrdinaryLoopAlone(t *testing.T) {
	src := `
function run() {
	var i = 0;
	while (true) {
		if (i++ > 10) break;
		step1();
	}
}
`
	out := runControlFlowUnflatten(t, src)
	assert.Contains(t, out, "while")
}

func TestControlFlowUnflattenRecursesIntoNestedFunction(t *testing.T) {
	src := `
function outer() {
	function run() {
		var order = "a|b".split("|");
		var i = 0;
		while (true) {
			switch (order[i++]) {
				case "a":
					step1();
					continue;
				case "b":
					step2();
					break;
			}
			break;
		}
	}
}
`
	out := runControlFlowUnflatten(t, src)
	assert.NotContains(t, out, "order")
	assert.Contains(t, out, "step1()")
	assert.Contains(t, out, "step2()")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
