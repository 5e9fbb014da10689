package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/sandbox"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

func TestSubstituteReplacesResolvedCallsAndReportsTheRest(t *testing.T) {
	src := `
function _0xdec(i) { return i; }
console.log(_0xdec(0));
console.log(_0xdec(1));
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)
	pending := PendingCalls(sc, map[string]bool{"_0xdec": true})
	require.Len(t, pending, 2)

	results := []sandbox.Value{
		sandbox.String("resolved"),
		sandbox.Number(42),
	}
	changes, errs := Substitute(pending, results)

	assert.Equal(t, 1, changes)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "number")

	out := fastgen.Generate(prog)
	assert.Contains(t, out, `"resolved"`)
	assert.Contains(t, out, "_0xdec(1)")
}
