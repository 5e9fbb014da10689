package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestConstantInlineReplacesConstantReads(t *testing.T) {
	src := `
var greeting = "hello";
console.log(greeting);
console.log(greeting);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, ConstantInline())
	assert.Equal(t, 2, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, `"hello"`)
}

func TestConstantInlineSkipsReassignedBindings(t *testing.T) {
	src := `
var count = 1;
count = 2;
console.log(count);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, ConstantInline())
	assert.Equal(t, 0, changes)
}

func TestConstantInlineSkipsNonLiteralInitializer(t *testing.T) {
	src := `
var a = foo();
console.log(a);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, ConstantInline())
	assert.Equal(t, 0, changes)
}
