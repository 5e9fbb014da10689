package jsdeobfuscator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxnatic/jsdeobfuscator/sandbox/interp"
)

func TestDeobfuscateResolvesDesignatedDecoder(t *testing.T) {
	src := `
var _0x1a2b = ["hello", "world"];
function _0xdec(i) { return _0x1a2b[i]; }
console.log(_0xdec(0) + " " + _0xdec(1));
`
	result, err := Deobfuscate(context.Background(), src, Options{
		Decoders: []string{"_0xdec"},
		Sandbox:  interp.New(),
	})
	require.NoError(t, err)
	assert.Contains(t, result.Code, `"hello"`)
	assert.Contains(t, result.Code, `"world"`)
	assert.NotContains(t, result.Code, "_0xdec(0)")
	assert.Greater(t, result.Changes, 0)
}

func TestDeobfuscateLocatesDecoderByCallCount(t *testing.T) {
	var b strings.Builder
	b.WriteString(`var _0xtab = ["zero","one"];` + "\n")
	b.WriteString(`function _0xget(i) { return _0xtab[i]; }` + "\n")
	for i := 0; i < 5; i++ {
		b.WriteString("console.log(_0xget(0));\n")
	}

	result, err := Deobfuscate(context.Background(), b.String(), Options{
		Sandbox:            interp.New(),
		CallCountThreshold: 5,
	})
	require.NoError(t, err)
	assert.NotContains(t, result.Code, "_0xget(0)")
	assert.Contains(t, result.Code, `"zero"`)
}

func TestDeobfuscateRunsRewritePipeline(t *testing.T) {
	src := `
if (1 === 1) {
  console.log("kept");
} else {
  console.log("dropped");
}
var unused = 5;
console.log(1 + 2);
`
	result, err := Deobfuscate(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Code, "kept")
	assert.NotContains(t, result.Code, "dropped")
	assert.NotContains(t, result.Code, "unused")
	assert.Contains(t, result.Code, "3")
}

func TestDeobfuscateReportsInputError(t *testing.T) {
	_, err := Deobfuscate(context.Background(), "function (;;", Options{})
	require.Error(t, err)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestDeobfuscateWithoutSandboxReportsDecodeFailure(t *testing.T) {
	src := `
var _0x1a2b = ["a", "b"];
function _0xdec(i) { return _0x1a2b[i]; }
console.log(_0xdec(0));
`
	result, err := Deobfuscate(context.Background(), src, Options{Decoders: []string{"_0xdec"}})
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.NotEmpty(t, decodeErr.Failures)
	assert.Contains(t, result.Code, "_0xdec(0)")
}

func TestDeobfuscateMarksSuspiciousStatements(t *testing.T) {
	src := `
debugger;
console.log("normal");
`
	result, err := Deobfuscate(context.Background(), src, Options{MarkKeywords: []string{"normal"}})
	require.NoError(t, err)
	require.NotEmpty(t, result.Marks)
}
