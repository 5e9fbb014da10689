package interp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxnatic/jsdeobfuscator/sandbox"
)

func eval(t *testing.T, code string) sandbox.Value {
	t.Helper()
	v, err := New().Evaluate(context.Background(), code)
	require.NoError(t, err)
	return v
}

func TestEvaluateArithmeticAndString(t *testing.T) {
	assert.Equal(t, sandbox.Number(7), eval(t, "3 + 4"))
	assert.Equal(t, sandbox.String("ab"), eval(t, `"a" + "b"`))
}

func TestEvaluateFunctionDeclarationAndCall(t *testing.T) {
	v := eval(t, `
function add(a, b) { return a + b; }
add(2, 3);
`)
	assert.Equal(t, sandbox.Number(5), v)
}

func TestEvaluateClosureCapturesOuterVariable(t *testing.T) {
	v := eval(t, `
function makeAdder(base) {
	return function(x) { return x + base; };
}
var add10 = makeAdder(10);
add10(5);
`)
	assert.Equal(t, sandbox.Number(15), v)
}

func TestEvaluateArrayIndexing(t *testing.T) {
	v := eval(t, `
var tab = ["a", "b", "c"];
tab[1];
`)
	assert.Equal(t, sandbox.String("b"), v)
}

func TestEvaluateStringDecoderShapedFunction(t *testing.T) {
	v := eval(t, `
var _0xtab = ["zero", "one", "two"];
function _0xdec(i) { return _0xtab[i]; }
_0xdec(2);
`)
	assert.Equal(t, sandbox.String("two"), v)
}

func TestEvaluateForLoopAccumulation(t *testing.T) {
	v := eval(t, `
var sum = 0;
for (var i = 0; i < 5; i++) {
	sum = sum + i;
}
sum;
`)
	assert.Equal(t, sandbox.Number(10), v)
}

func TestEvaluateContextCancellationStopsExecution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Evaluate(ctx, "1 + 1;")
	assert.Error(t, err)
}
