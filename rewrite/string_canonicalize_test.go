package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestStringCanonicalizeLeavesDecodedValueUntouched(t *testing.T) {
	src := `var s = "hello world";`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	n := transform.ApplyTransform(prog, StringCanonicalize())
	assert.Equal(t, 0, n, "go-fast's StringLiteral carries no raw representation to drop")
	assert.Contains(t, fastgen.Generate(prog), "hello world")
}

func TestStringCanonicalizeConvergesImmediately(t *testing.T) {
	src := `var a = "x"; var b = "y"; function f() { return "z"; }`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	total, err := transform.ApplyTransforms(prog, []transform.Transform{StringCanonicalize()}, transform.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
