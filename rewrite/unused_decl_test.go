package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/transform"
)

func TestUnusedDeclDropsUnreadLiteralBinding(t *testing.T) {
	src := `
var dead = 1;
var alive = 2;
console.log(alive);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, UnusedDecl())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "dead")
	assert.Contains(t, out, "alive")
}

func TestUnusedDeclKeepsUnreadCallInitializer(t *testing.T) {
	src := `var x = sideEffect();`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, UnusedDecl())
	assert.Equal(t, 0, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "sideEffect")
}

func TestUnusedDeclKeepsReassignedBinding(t *testing.T) {
	src := `
var x = 1;
x = 2;
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, UnusedDecl())
	assert.Equal(t, 0, changes)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "var x")
}

func TestUnusedDeclDropsUnusedObjectAndFunctionInitializers(t *testing.T) {
	src := `
var table = { a: 1 };
var helper = function() { return 1; };
console.log("nothing uses either");
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, UnusedDecl())
	assert.Equal(t, 2, changes)

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "table")
	assert.NotContains(t, out, "helper")
}

func TestUnusedDeclDropsUnusedTopLevelFunctionDeclaration(t *testing.T) {
	src := `
function dead() { return 1; }
function alive() { return 2; }
console.log(alive());
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	changes := transform.ApplyTransform(prog, UnusedDecl())
	assert.Equal(t, 1, changes)

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "function dead")
	assert.Contains(t, out, "function alive")
}
