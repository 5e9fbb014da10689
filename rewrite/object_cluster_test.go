package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestObjectClusterInlinesStaticAndComputedMemberReads(t *testing.T) {
	src := `
var tab = { a: 1, b: "two" };
console.log(tab.a);
console.log(tab["b"]);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, ObjectCluster())
	assert.Equal(t, 2, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "1")
	assert.Contains(t, out, `"two"`)
	assert.NotContains(t, out, "tab.a")
}

func TestObjectClusterSkipsReassignedBinding(t *testing.T) {
	src := `
var tab = { a: 1 };
tab = {};
console.log(tab.a);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, ObjectCluster())
	assert.Equal(t, 0, changes)
}

func TestObjectClusterCapturesAssignmentSpliceForm(t *testing.T) {
	src := `
var tab = {};
tab.a = 1;
tab.b = "two";
console.log(tab.a);
console.log(tab["b"]);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, ObjectCluster())
	assert.Equal(t, 4, changes)

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "tab.a =")
	assert.NotContains(t, out, "tab.b =")
	assert.NotContains(t, out, "tab.a)")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, `"two"`)
}

func TestObjectClusterCapturesFunctionTableValue(t *testing.T) {
	src := `
var tab = { fn: function() { return 1; } };
var got = tab.fn;
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	changes := transform.ApplyTransform(prog, ObjectCluster())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "tab.fn")
	assert.Contains(t, out, "function")
}
