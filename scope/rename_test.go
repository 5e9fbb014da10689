package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t14raptor/go-fast/ast"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

func TestRenameFastRenamesDeclarationAndReferences(t *testing.T) {
	prog, err := parser.ParseFile(`
var a = 1;
console.log(a);
console.log(a);
`)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	b := sc.Lookup("a")
	require.NotNil(t, b)
	RenameFast(sc, b, "renamed")

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "var a")
	assert.Contains(t, out, "renamed")
	assert.Equal(t, "renamed", b.Name)
}

func TestRenameFastRenamesConstantViolations(t *testing.T) {
	prog, err := parser.ParseFile(`
var a = 1;
a = 2;
`)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	b := sc.Lookup("a")
	require.NotNil(t, b)
	require.NotEmpty(t, b.ConstantViolations)
	RenameFast(sc, b, "renamed")

	out := fastgen.Generate(prog)
	assert.NotContains(t, out, "a = 2")
	assert.Contains(t, out, "renamed = 2")
}

func TestRenameFastAvoidsCollisionWithExistingBinding(t *testing.T) {
	prog, err := parser.ParseFile(`
var a = 1;
var renamed = "taken";
console.log(a);
console.log(renamed);
`)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	a := sc.Lookup("a")
	existing := sc.Lookup("renamed")
	require.NotNil(t, a)
	require.NotNil(t, existing)

	RenameFast(sc, a, "renamed")

	assert.Equal(t, "renamed", a.Name)
	assert.NotEqual(t, "renamed", existing.Name)
	assert.Equal(t, "_renamed", existing.Name)

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "_renamed")
	assert.Contains(t, out, `"taken"`)
}

func TestRenameParametersRenamesParamAndBodyReferences(t *testing.T) {
	prog, err := parser.ParseFile(`function f(a, b) { return a + b; }`)
	require.NoError(t, err)

	var fn *ast.FunctionLiteral
	var fnScope *traverse.Scope
	traverse.Visit(prog, traverse.VisitorMap{
		traverse.KindFunctionDeclaration: {Enter: func(p *traverse.Path) {
			decl := p.Stmt.Stmt.(*ast.FunctionDeclaration)
			fn = decl.Function
		}},
		traverse.KindReturnStatement: {Enter: func(p *traverse.Path) {
			fnScope = p.Scope()
		}},
	}, traverse.Options{Scope: true})

	require.NotNil(t, fn)
	require.NotNil(t, fnScope)

	RenameParameters(fn, fnScope, []string{"key", "offset"})

	out := fastgen.Generate(prog)
	assert.Contains(t, out, "key")
	assert.Contains(t, out, "offset")
	assert.Contains(t, out, "key + offset")
}
