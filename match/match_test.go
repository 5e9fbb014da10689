package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"
)

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog, err := parser.ParseFile(src + ";")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	stmt, ok := prog.Body[0].Stmt.(*ast.ExpressionStatement)
	require.True(t, ok)
	return stmt.Expression.Expr
}

func TestLiteralMatchesValue(t *testing.T) {
	assert.True(t, Literal(nil).Match(parseExpr(t, `"x"`)))
	assert.True(t, Literal("x").Match(parseExpr(t, `"x"`)))
	assert.False(t, Literal("y").Match(parseExpr(t, `"x"`)))
	assert.False(t, Literal(nil).Match(parseExpr(t, `foo`)))
}

func TestIdentifierMatchesName(t *testing.T) {
	assert.True(t, Identifier("").Match(parseExpr(t, `foo`)))
	assert.True(t, Identifier("foo").Match(parseExpr(t, `foo`)))
	assert.False(t, Identifier("bar").Match(parseExpr(t, `foo`)))
}

func TestMemberExpressionMatchesObjectAndProp(t *testing.T) {
	m := MemberExpression(Identifier("obj"), "key")
	assert.True(t, m.Match(parseExpr(t, `obj.key`)))
	assert.True(t, m.Match(parseExpr(t, `obj["key"]`)))
	assert.False(t, m.Match(parseExpr(t, `obj.other`)))
	assert.False(t, m.Match(parseExpr(t, `other.key`)))
}

func TestCallExpressionMatchesCalleeAndArgc(t *testing.T) {
	m := CallExpression(Identifier("f"), 1)
	assert.True(t, m.Match(parseExpr(t, `f(1)`)))
	assert.False(t, m.Match(parseExpr(t, `f(1, 2)`)))
	assert.False(t, m.Match(parseExpr(t, `g(1)`)))
}

func TestFunctionLiteralNiladic(t *testing.T) {
	niladic := FunctionLiteral(true)
	assert.True(t, niladic.Match(parseExpr(t, `(function(){})`)))
	assert.False(t, niladic.Match(parseExpr(t, `(function(a){})`)))

	anyArity := FunctionLiteral(false)
	assert.True(t, anyArity.Match(parseExpr(t, `(function(a){})`)))
}

func TestCaptureRecordsMatchedNode(t *testing.T) {
	c := NewCapture(FunctionLiteral(true))
	expr := parseExpr(t, `(function(){})()`)
	require.True(t, CallExpression(c, 0).Match(expr))
	assert.IsType(t, &ast.FunctionLiteral{}, c.Current)
}

func TestOrAndNot(t *testing.T) {
	isFooOrBar := Or(Identifier("foo"), Identifier("bar"))
	assert.True(t, isFooOrBar.Match(parseExpr(t, `foo`)))
	assert.True(t, isFooOrBar.Match(parseExpr(t, `bar`)))
	assert.False(t, isFooOrBar.Match(parseExpr(t, `baz`)))

	isFooLiteral := And(Identifier(""), Not(Literal(nil)))
	assert.True(t, isFooLiteral.Match(parseExpr(t, `foo`)))
	assert.False(t, isFooLiteral.Match(parseExpr(t, `"foo"`)))
}
