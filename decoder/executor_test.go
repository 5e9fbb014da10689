package decoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/sandbox"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// fixedSandbox returns a preset Value regardless of what it's asked to
// evaluate, so executor tests can exercise the batching plumbing without
// depending on the real interpreter.
type fixedSandbox struct {
	value sandbox.Value
	err   error
	calls int
}

func (f *fixedSandbox) Evaluate(ctx context.Context, code string) (sandbox.Value, error) {
	f.calls++
	return f.value, f.err
}

func TestPendingCallsSkipsNonConstantArguments(t *testing.T) {
	src := `
function _0xdec(i) { return i; }
var x = 1;
console.log(_0xdec(0));
console.log(_0xdec(x));
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)
	sc := traverse.BuildScope(prog)

	pending := PendingCalls(sc, map[string]bool{"_0xdec": true})
	require.Len(t, pending, 1)
}

func TestSetupCodeCapturesPrefixThroughLastDeclaration(t *testing.T) {
	src := `
var _0xtab = ["a", "b"];
function _0xdec(i) { return _0xtab[i]; }
console.log(_0xdec(0));
`
	prog, err := parser.ParseFile(src)
	require.NoError(t, err)

	setup := SetupCode(prog, map[string]bool{"_0xtab": true, "_0xdec": true})
	assert.Contains(t, setup, "_0xtab")
	assert.Contains(t, setup, "_0xdec")
	assert.NotContains(t, setup, "console")
}

func TestExecuteReturnsOneValuePerPendingCall(t *testing.T) {
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

	sb := &fixedSandbox{value: sandbox.ArrayOf([]sandbox.Value{
		sandbox.String("zero"), sandbox.String("one"),
	})}
	results, err := Execute(context.Background(), sb, "", pending)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, sb.calls)
}

func TestExecuteRejectsMismatchedResultLength(t *testing.T) {
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

	sb := &fixedSandbox{value: sandbox.ArrayOf([]sandbox.Value{sandbox.String("only-one")})}
	_, err = Execute(context.Background(), sb, "", pending)
	assert.Error(t, err)
}
