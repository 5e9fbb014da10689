package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func runSelfInvoke(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	transform.ApplyTransform(prog, SelfInvoke())
	return fastgen.Generate(prog)
}

func TestSelfInvokeSplicesNiladicWrapper(t *testing.T) {
	out := runSelfInvoke(t, `(function(){ console.log("hi"); })();`)
	assert.NotContains(t, out, "function")
	assert.Contains(t, out, `console.log("hi")`)
}

func TestSelfInvokeUnwrapsTailReturnValue(t *testing.T) {
	out := runSelfInvoke(t, `var x = (function(){ return 42; })();`)
	assert.NotContains(t, out, "function")
	assert.Contains(t, out, "42")
}

func TestSelfInvokeSubstitutesLiteralParameters(t *testing.T) {
	out := runSelfInvoke(t, `(function(a, b){ console.log(a + b); })(1, 2);`)
	assert.NotContains(t, out, "function")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "2")
	assert.NotContains(t, out, "(a")
	assert.NotContains(t, out, "a +")
}

func TestSelfInvokeLeavesReassignedParameterAlone(t *testing.T) {
	src := `(function(a){ a = a + 1; console.log(a); })(1);`
	out := runSelfInvoke(t, src)
	assert.Contains(t, out, "function")
}

func TestSelfInvokeLeavesNonLiteralArgumentAlone(t *testing.T) {
	src := `(function(a){ console.log(a); })(sideEffect());`
	out := runSelfInvoke(t, src)
	assert.Contains(t, out, "function")
}

func TestSelfInvokeSplicesWrapperWithShadowedParameter(t *testing.T) {
	// the inner `var a` shadows the parameter throughout the body (JS var
	// hoisting gives them the same binding), so the literal argument 1 is
	// never read and the wrapper is still safe to splice away unchanged.
	src := `(function(a){ var a = 5; console.log(a); })(1);`
	out := runSelfInvoke(t, src)
	assert.NotContains(t, out, "function")
	assert.Contains(t, out, "var a = 5")
}
