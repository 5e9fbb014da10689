// Package rewrite is the transform library: one file per named rewrite
// family from spec.md §4.4, each exposing a constructor that returns a
// transform.Transform ready to hand to transform.ApplyTransforms.
package rewrite

import (
	"math"
	"strings"

	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// BinaryEval folds binary/logical/unary expressions whose operands are
// already literals into a single literal, the generalized form of the
// numeric folding deob.go does ad hoc inside evalNumericLiteral and the
// member-expression substitution path of VisitExpression. Folding only
// triggers once every operand is already a literal, per OPEN QUESTION (b):
// that keeps any side-effecting callee's evaluation order untouched,
// because folding never reaches into an unevaluated call.
func BinaryEval() transform.Transform {
	return transform.Transform{
		Name:       "binary-eval",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			return traverse.VisitorMap{
				traverse.KindBinaryExpression: {Exit: func(p *traverse.Path) {
					bin, ok := p.Expr.Expr.(*ast.BinaryExpression)
					if !ok {
						return
					}
					if folded := foldBinary(bin); folded != nil {
						p.ReplaceWith(folded)
						state.Changes++
					}
				}},
				traverse.KindUnaryExpression: {Exit: func(p *traverse.Path) {
					un, ok := p.Expr.Expr.(*ast.UnaryExpression)
					if !ok {
						return
					}
					if folded := foldUnary(un); folded != nil {
						p.ReplaceWith(folded)
						state.Changes++
					}
				}},
				traverse.KindLogicalExpression: {Exit: func(p *traverse.Path) {
					lg, ok := p.Expr.Expr.(*ast.LogicalExpression)
					if !ok {
						return
					}
					if folded := foldLogical(lg); folded != nil {
						p.ReplaceWith(folded)
						state.Changes++
					}
				}},
			}
		},
	}
}

func foldUnary(un *ast.UnaryExpression) ast.Expr {
	if un.Operand == nil || !jsval.IsLiteral(un.Operand.Expr) {
		return nil
	}
	switch un.Operator.String() {
	case "!":
		b, ok := jsval.ToBool(un.Operand.Expr)
		if !ok {
			return nil
		}
		return &ast.BooleanLiteral{Value: !b}
	case "-":
		n, ok := jsval.EvalNumericLiteral(un.Operand.Expr)
		if !ok {
			return nil
		}
		return &ast.NumberLiteral{Value: -n}
	case "+":
		n, ok := jsval.EvalNumericLiteral(un.Operand.Expr)
		if !ok {
			return nil
		}
		return &ast.NumberLiteral{Value: n}
	case "void":
		return &ast.Identifier{Name: "undefined"}
	default:
		return nil
	}
}

func foldBinary(bin *ast.BinaryExpression) ast.Expr {
	if bin.Left == nil || bin.Right == nil {
		return nil
	}
	if !jsval.IsLiteral(bin.Left.Expr) || !jsval.IsLiteral(bin.Right.Expr) {
		return nil
	}

	op := bin.Operator.String()

	if ls, lok := bin.Left.Expr.(*ast.StringLiteral); lok {
		if rs, rok := bin.Right.Expr.(*ast.StringLiteral); rok && op == "+" {
			return &ast.StringLiteral{Value: ls.Value + rs.Value}
		}
	}

	ln, lok := jsval.EvalNumericLiteral(bin.Left.Expr)
	rn, rok := jsval.EvalNumericLiteral(bin.Right.Expr)
	if !lok || !rok {
		if op == "==" || op == "===" || op == "!=" || op == "!==" {
			return foldEquality(bin.Left.Expr, bin.Right.Expr, op)
		}
		return nil
	}

	switch op {
	case "+":
		return &ast.NumberLiteral{Value: ln + rn}
	case "-":
		return &ast.NumberLiteral{Value: ln - rn}
	case "*":
		return &ast.NumberLiteral{Value: ln * rn}
	case "/":
		return &ast.NumberLiteral{Value: ln / rn}
	case "%":
		return &ast.NumberLiteral{Value: math.Mod(ln, rn)}
	case "**":
		return &ast.NumberLiteral{Value: math.Pow(ln, rn)}
	case "&":
		return &ast.NumberLiteral{Value: float64(int64(ln) & int64(rn))}
	case "|":
		return &ast.NumberLiteral{Value: float64(int64(ln) | int64(rn))}
	case "^":
		return &ast.NumberLiteral{Value: float64(int64(ln) ^ int64(rn))}
	case "<<":
		return &ast.NumberLiteral{Value: float64(int64(ln) << (int64(rn) & 31))}
	case ">>":
		return &ast.NumberLiteral{Value: float64(int64(ln) >> (int64(rn) & 31))}
	case "<":
		return &ast.BooleanLiteral{Value: ln < rn}
	case "<=":
		return &ast.BooleanLiteral{Value: ln <= rn}
	case ">":
		return &ast.BooleanLiteral{Value: ln > rn}
	case ">=":
		return &ast.BooleanLiteral{Value: ln >= rn}
	case "==", "===":
		return &ast.BooleanLiteral{Value: ln == rn}
	case "!=", "!==":
		return &ast.BooleanLiteral{Value: ln != rn}
	default:
		return nil
	}
}

func foldEquality(l, r ast.Expr, op string) ast.Expr {
	ls, lok := l.(*ast.StringLiteral)
	rs, rok := r.(*ast.StringLiteral)
	if !lok || !rok {
		return nil
	}
	eq := ls.Value == rs.Value
	if op == "!=" || op == "!==" {
		eq = !eq
	}
	return &ast.BooleanLiteral{Value: eq}
}

func foldLogical(lg *ast.LogicalExpression) ast.Expr {
	if lg.Left == nil || !jsval.IsLiteral(lg.Left.Expr) {
		return nil
	}
	lb, ok := jsval.ToBool(lg.Left.Expr)
	if !ok {
		return nil
	}
	switch strings.TrimSpace(lg.Operator.String()) {
	case "&&":
		if !lb {
			return lg.Left.Expr
		}
		if lg.Right != nil && jsval.IsLiteral(lg.Right.Expr) {
			return lg.Right.Expr
		}
		return nil
	case "||":
		if lb {
			return lg.Left.Expr
		}
		if lg.Right != nil && jsval.IsLiteral(lg.Right.Expr) {
			return lg.Right.Expr
		}
		return nil
	case "??":
		if _, isNull := lg.Left.Expr.(*ast.NullLiteral); !isNull {
			return lg.Left.Expr
		}
		if lg.Right != nil && jsval.IsLiteral(lg.Right.Expr) {
			return lg.Right.Expr
		}
		return nil
	default:
		return nil
	}
}
