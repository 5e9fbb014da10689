package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func runIndirectionCollapse(t *testing.T, src string, decoderNames map[string]bool) string {
	t.Helper()
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	transform.ApplyTransform(prog, IndirectionCollapse(0, decoderNames))
	return fastgen.Generate(prog)
}

func TestIndirectionCollapseInlinesSingleLineWrapper(t *testing.T) {
	src := `
function real(a, b) { return a + b; }
function W(x, y) { return real(x, y); }
console.log(W(1, 2));
`
	out := runIndirectionCollapse(t, src, nil)
	assert.NotContains(t, out, "W(1, 2)")
	assert.Contains(t, out, "real(1, 2)")
}

func TestIndirectionCollapseCollapsesNestedWrappersAcrossDepth(t *testing.T) {
	src := `
function real(a) { return a * 2; }
function W2(x) { return real(x); }
function W1(y) { return W2(y); }
console.log(W1(5));
`
	out := runIndirectionCollapse(t, src, nil)
	assert.NotContains(t, out, "W1(5)")
	assert.NotContains(t, out, "W2(5)")
	assert.Contains(t, out, "real(5)")
}

func TestIndirectionCollapseSkipsDesignatedDecoderWrapper(t *testing.T) {
	src := `
function real(a) { return a; }
function decoder(x) { return real(x); }
console.log(decoder(1));
`
	out := runIndirectionCollapse(t, src, map[string]bool{"decoder": true})
	assert.Contains(t, out, "decoder(1)")
}

func TestIndirectionCollapseLeavesNonLiteralNonIdentifierArgumentAlone(t *testing.T) {
	src := `
function real(a) { return a; }
function W(x) { return real(x); }
console.log(W(sideEffect()));
`
	out := runIndirectionCollapse(t, src, nil)
	assert.Contains(t, out, "W(sideEffect())")
}

func TestIndirectionCollapseLeavesMultiStatementBodyAlone(t *testing.T) {
	src := `
function W(x) { var y = x; return real(y); }
console.log(W(1));
`
	out := runIndirectionCollapse(t, src, nil)
	assert.Contains(t, out, "W(1)")
}
