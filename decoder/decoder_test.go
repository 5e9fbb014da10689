package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

func TestLocateByCallCountFindsExpressionAndDeclarationDecoders(t *testing.T) {
	src := `
var _0xtab = ["a", "b"];
function _0xdec(i) { return _0xtab[i]; }
var _0xalt = function(i) { return _0xtab[i]; };
console.log(_0xdec(0));
console.log(_0xdec(1));
console.log(_0xalt(0));
console.log(_0xalt(1));
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	candidates := LocateByCallCount(sc, 2)
	names := map[string]bool{}
	for _, c := range candidates {
		names[c.Name] = true
	}
	assert.True(t, names["_0xdec"], "expected function-declaration decoder to be located")
	assert.True(t, names["_0xalt"], "expected function-expression decoder to be located")
}

func TestLocateByBigArrayRequiresFunctionScope(t *testing.T) {
	src := `var _0xtab = ["a", "b", "c"];`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	warned := ""
	candidates := LocateByBigArray(sc, 3, false, func(name string) { warned = name })
	assert.Empty(t, candidates)
	assert.Equal(t, "_0xtab", warned)
}

func TestLocateByBigArraySkipsTablesWithTooManyReferences(t *testing.T) {
	var src string
	src = "var _0xtab = [1, 2, 3];\nfunction dec(i) { return _0xtab[i]; }\n"
	for i := 0; i < bigArrayMaxReferences; i++ {
		src += "console.log(_0xtab[0]);\n"
	}
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	candidates := LocateByBigArray(sc, 3, true, nil)
	assert.Empty(t, candidates, "a table referenced >=10 times isn't the kind of narrowly-shared decoder table this locator looks for")
}

func TestLocateByBigArrayClassifiesCallArgumentAsRotator(t *testing.T) {
	src := `
function setup(tbl) { tbl.unshift(tbl.pop()); }
var _0xtab = [1, 2, 3];
setup(_0xtab);
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	candidates := LocateByBigArray(sc, 3, true, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, RoleRotator, candidates[0].Role)
}

func TestDecryptFnSetCollectsAliases(t *testing.T) {
	src := `
function _0xdec(i) { return i; }
var a1 = _0xdec;
var a2 = a1;
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	candidates := LocateByCallCount(sc, 0)
	require.NotEmpty(t, candidates)
	set := NewDecryptFnSet(candidates[0])
	set.CollectAliases(sc)

	assert.True(t, set.Has("_0xdec"))
	assert.True(t, set.Has("a1"))
	assert.True(t, set.Has("a2"))
}
