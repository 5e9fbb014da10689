// Package jsval holds small, shared helpers for reading and constructing
// go-fast AST literal values. The transform library, the decoder subsystem,
// and the sandbox interpreter all need the same handful of conversions, so
// they live here instead of being copy-pasted per package.
package jsval

import (
	"math"
	"strconv"
	"strings"

	"github.com/t14raptor/go-fast/ast"
)

// LiteralKeyName returns the static key name of an object-property key
// expression, covering both `{ foo: 1 }` and `{ "foo": 1 }` forms.
func LiteralKeyName(keyExpr *ast.Expression) (string, bool) {
	if keyExpr == nil || keyExpr.Expr == nil {
		return "", false
	}
	switch k := keyExpr.Expr.(type) {
	case *ast.Identifier:
		return k.Name, true
	case *ast.StringLiteral:
		return k.Value, true
	default:
		return "", false
	}
}

// MemberPropName returns the static property name of a member expression,
// whether written dotted (`a.b`) or computed with a literal string
// (`a["b"]`). Computed non-literal properties are not static.
func MemberPropName(mp *ast.MemberProperty) (string, bool) {
	if mp == nil || mp.Prop == nil {
		return "", false
	}
	switch p := mp.Prop.(type) {
	case *ast.Identifier:
		return p.Name, true
	case *ast.ComputedProperty:
		if p.Expr == nil {
			return "", false
		}
		if str, ok := p.Expr.Expr.(*ast.StringLiteral); ok {
			return str.Value, true
		}
		return "", false
	default:
		return "", false
	}
}

// UnwrapSequenceTail follows a chain of comma expressions down to the final
// value-producing sub-expression.
func UnwrapSequenceTail(expr ast.Expr) ast.Expr {
	for {
		seq, ok := expr.(*ast.SequenceExpression)
		if !ok || len(seq.Sequence) == 0 {
			return expr
		}
		expr = seq.Sequence[len(seq.Sequence)-1].Expr
	}
}

// IsLiteral reports whether e is a literal expression node (string, number,
// boolean, null, or an array literal of further literals) that the
// fixpoint transforms are allowed to clone freely. Array literals are
// included so that `![]`/`!![]`-style truthiness folding (ToBool below
// already coerces them) and object-cluster values that are array-typed
// both see them as eligible, not just the scalar literal kinds.
func IsLiteral(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return true
	case *ast.ArrayLiteral:
		for i := range v.Value {
			if v.Value[i].Expr == nil || !IsLiteral(v.Value[i].Expr) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsInlineableNumber reports whether e is a number literal or a unary
// +/- applied to one, i.e. something safe to treat as a constant number
// without evaluating arbitrary code.
func IsInlineableNumber(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.NumberLiteral:
		return true
	case *ast.UnaryExpression:
		if v.Operand == nil || v.Operand.Expr == nil {
			return false
		}
		_, ok := v.Operand.Expr.(*ast.NumberLiteral)
		return ok && (v.Operator.String() == "-" || v.Operator.String() == "+")
	default:
		return false
	}
}

// EvalNumericLiteral evaluates a number literal or a signed number literal
// to a float64, without touching anything else.
func EvalNumericLiteral(e ast.Expr) (float64, bool) {
	switch v := e.(type) {
	case *ast.NumberLiteral:
		return v.Value, true
	case *ast.UnaryExpression:
		if v.Operand == nil || v.Operand.Expr == nil {
			return 0, false
		}
		num, ok := v.Operand.Expr.(*ast.NumberLiteral)
		if !ok {
			return 0, false
		}
		switch v.Operator.String() {
		case "-":
			return -num.Value, true
		case "+":
			return num.Value, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// JSParseInt mirrors the non-strict prefix semantics of JS's global
// parseInt: optional sign, then leading decimal digits, stopping at the
// first non-digit. It never errors; input with no leading
// digits yields NaN, except an empty or all-space string, which yields 0.
func JSParseInt(val string) float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}

	sign := 1.0
	if val[0] == '-' {
		sign = -1
		val = val[1:]
	} else if val[0] == '+' {
		val = val[1:]
	}

	end := 0
	for end < len(val) && val[end] >= '0' && val[end] <= '9' {
		end++
	}
	if end == 0 {
		return math.NaN()
	}

	n, err := strconv.ParseFloat(val[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return sign * n
}

// StringLiteral builds a string literal expression node.
func StringLiteral(v string) *ast.Expression {
	return &ast.Expression{Expr: &ast.StringLiteral{Value: v}}
}

// NumberLiteral builds a number literal expression node.
func NumberLiteral(v float64) *ast.Expression {
	return &ast.Expression{Expr: &ast.NumberLiteral{Value: v}}
}

// BooleanLiteral builds a boolean literal expression node.
func BooleanLiteral(v bool) *ast.Expression {
	return &ast.Expression{Expr: &ast.BooleanLiteral{Value: v}}
}

// ToBool applies JS's ToBoolean abstract operation to a literal node.
// ok is false when e isn't a literal this function knows how to coerce.
func ToBool(e ast.Expr) (bool, bool) {
	switch v := e.(type) {
	case *ast.BooleanLiteral:
		return v.Value, true
	case *ast.NumberLiteral:
		return v.Value != 0 && !math.IsNaN(v.Value), true
	case *ast.StringLiteral:
		return v.Value != "", true
	case *ast.NullLiteral:
		return false, true
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		return true, true
	default:
		return false, false
	}
}
