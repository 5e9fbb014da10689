package jsval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"
)

// parseExpr parses src as a single expression statement and returns its
// expression node, for tests that need a real UnaryExpression/literal
// without guessing at how to hand-construct one (go-fast's token
// constants for unary operators aren't documented anywhere in the pack).
func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog, err := parser.ParseFile(src + ";")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	stmt, ok := prog.Body[0].Stmt.(*ast.ExpressionStatement)
	require.True(t, ok)
	return stmt.Expression.Expr
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral(&ast.StringLiteral{Value: "x"}))
	assert.True(t, IsLiteral(&ast.NumberLiteral{Value: 1}))
	assert.True(t, IsLiteral(&ast.BooleanLiteral{Value: true}))
	assert.True(t, IsLiteral(&ast.NullLiteral{}))
	assert.False(t, IsLiteral(&ast.Identifier{Name: "x"}))
}

func TestIsInlineableNumber(t *testing.T) {
	assert.True(t, IsInlineableNumber(&ast.NumberLiteral{Value: 5}))
	assert.True(t, IsInlineableNumber(parseExpr(t, "-5")))
	assert.False(t, IsInlineableNumber(&ast.StringLiteral{Value: "5"}))
}

func TestEvalNumericLiteral(t *testing.T) {
	v, ok := EvalNumericLiteral(parseExpr(t, "-5"))
	assert.True(t, ok)
	assert.Equal(t, -5.0, v)
}

func TestJSParseInt(t *testing.T) {
	assert.Equal(t, 42.0, JSParseInt("42px"))
	assert.Equal(t, -7.0, JSParseInt("-7"))
	assert.True(t, math.IsNaN(JSParseInt("abc")))
}

func TestMemberPropName(t *testing.T) {
	name, ok := MemberPropName(&ast.MemberProperty{Prop: &ast.Identifier{Name: "foo"}})
	assert.True(t, ok)
	assert.Equal(t, "foo", name)

	name, ok = MemberPropName(&ast.MemberProperty{Prop: &ast.ComputedProperty{
		Expr: &ast.Expression{Expr: &ast.StringLiteral{Value: "bar"}},
	}})
	assert.True(t, ok)
	assert.Equal(t, "bar", name)
}
