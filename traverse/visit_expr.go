package traverse

import (
	"github.com/t14raptor/go-fast/ast"
)

// walkExprField descends into an *ast.Expression field at the current
// statement's scope.
func (w *walker) walkExprField(parent *Path, slot *ast.Expression, key string) {
	w.walkExprFieldScoped(parent, slot, key, parent.scope)
}

func (w *walker) walkExprFieldScoped(parent *Path, slot *ast.Expression, key string, scope *Scope) {
	if slot == nil {
		return
	}
	p := &Path{Expr: slot, Parent: parent, Key: key, walk: w, scope: scope}
	w.walkExpression(p)
}

func (w *walker) walkVariableDeclarator(parent *Path, d *ast.VariableDeclarator) {
	if d == nil {
		return
	}
	if d.Target != nil {
		w.walkExprField(parent, d.Target, "Target")
	}
	if d.Initializer != nil {
		w.walkExprField(parent, d.Initializer, "Initializer")
	}
	if parent.scope != nil && d.Target != nil {
		if id, ok := d.Target.Expr.(*ast.Identifier); ok {
			if b := parent.scope.Lookup(id.Name); b != nil && d.Initializer != nil {
				b.ReferencePaths = append(b.ReferencePaths, parent)
			}
		}
	}
}

// walkExpression dispatches a single *ast.Expression, recursing into its
// operands by hand. Mutation during enter re-descends into the
// replacement because we read p.Expr.Expr fresh after the enter callback
// runs, rather than caching the old node.
func (w *walker) walkExpression(p *Path) {
	if p.Expr == nil || p.Expr.Expr == nil {
		return
	}

	kind := expressionKind(p.Expr.Expr)
	savedSkip := w.skipCurrent
	w.skipCurrent = false
	w.dispatch(kind, enterFn, p)
	if w.stopped {
		return
	}
	if w.skipCurrent {
		w.skipCurrent = savedSkip
		w.dispatch(kind, exitFn, p)
		return
	}
	w.skipCurrent = savedSkip

	w.descendExpression(p)
	if w.stopped {
		return
	}
	w.dispatch(kind, exitFn, p)
}

func (w *walker) descendExpression(p *Path) {
	switch e := p.Expr.Expr.(type) {
	case *ast.Identifier:
		if p.scope != nil {
			if b := p.scope.Lookup(e.Name); b != nil {
				b.ReferencePaths = append(b.ReferencePaths, p)
			}
		}

	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral, *ast.RegExpLiteral:
		// leaves

	case *ast.SequenceExpression:
		for i := range e.Sequence {
			w.walkExprField(p, &e.Sequence[i], "Sequence")
		}

	case *ast.AssignExpression:
		w.walkExprField(p, e.Left, "Left")
		w.walkExprField(p, e.Right, "Right")
		w.recordAssignTarget(p, e.Left)

	case *ast.BinaryExpression:
		w.walkExprField(p, e.Left, "Left")
		w.walkExprField(p, e.Right, "Right")

	case *ast.LogicalExpression:
		w.walkExprField(p, e.Left, "Left")
		w.walkExprField(p, e.Right, "Right")

	case *ast.UnaryExpression:
		w.walkExprField(p, e.Operand, "Operand")

	case *ast.UpdateExpression:
		w.walkExprField(p, e.Operand, "Operand")
		w.recordAssignTarget(p, e.Operand)

	case *ast.ConditionalExpression:
		w.walkExprField(p, e.Test, "Test")
		w.walkExprField(p, e.Consequent, "Consequent")
		w.walkExprField(p, e.Alternate, "Alternate")

	case *ast.CallExpression:
		w.walkExprField(p, e.Callee, "Callee")
		for i := range e.ArgumentList {
			w.walkExprField(p, &e.ArgumentList[i], "Argument")
		}

	case *ast.NewExpression:
		w.walkExprField(p, e.Callee, "Callee")
		for i := range e.ArgumentList {
			w.walkExprField(p, &e.ArgumentList[i], "Argument")
		}

	case *ast.MemberExpression:
		w.walkExprField(p, e.Object, "Object")
		if e.Property != nil {
			if cp, ok := e.Property.Prop.(*ast.ComputedProperty); ok && cp.Expr != nil {
				w.walkExprField(p, cp.Expr, "Property")
			}
		}

	case *ast.ArrayLiteral:
		for i := range e.Value {
			w.walkExprField(p, &e.Value[i], "Element")
		}

	case *ast.ObjectLiteral:
		for _, prop := range e.Value {
			switch kp := prop.Prop.(type) {
			case *ast.PropertyKeyed:
				w.walkExprField(p, kp.Value, "Value")
			case *ast.SpreadElement:
				w.walkExprField(p, kp.Expression, "Spread")
			default:
			}
		}

	case *ast.SpreadElement:
		w.walkExprField(p, e.Expression, "Expression")

	case *ast.TemplateLiteral:
		for i := range e.Expressions {
			w.walkExprField(p, &e.Expressions[i], "Expression")
		}

	case *ast.FunctionLiteral:
		if e.Body != nil {
			w.walkFunctionBody(p, e.Body, e.ParameterList)
		}

	case *ast.ArrowFunctionLiteral:
		if e.Body != nil {
			w.walkFunctionBody(p, e.Body, e.ParameterList)
		}

	default:
		// Unhandled expression kind: no known children to descend into
		// from this package's grounded subset of the AST.
	}
}

// recordAssignTarget marks the binding behind a simple identifier target
// as having a constant violation, the signal the constant inliner and the
// unused-declaration remover both check via Binding.Constant().
func (w *walker) recordAssignTarget(p *Path, target *ast.Expression) {
	if target == nil || p.scope == nil {
		return
	}
	id, ok := target.Expr.(*ast.Identifier)
	if !ok {
		return
	}
	if b := p.scope.Lookup(id.Name); b != nil {
		b.ConstantViolations = append(b.ConstantViolations, p)
	}
}

func expressionKind(e ast.Expr) NodeKind {
	switch e.(type) {
	case *ast.Identifier:
		return KindIdentifier
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral, *ast.RegExpLiteral:
		return KindLiteral
	case *ast.CallExpression:
		return KindCallExpression
	case *ast.NewExpression:
		return KindNewExpression
	case *ast.MemberExpression:
		return KindMemberExpression
	case *ast.BinaryExpression:
		return KindBinaryExpression
	case *ast.LogicalExpression:
		return KindLogicalExpression
	case *ast.UnaryExpression:
		return KindUnaryExpression
	case *ast.UpdateExpression:
		return KindUpdateExpression
	case *ast.AssignExpression:
		return KindAssignExpression
	case *ast.SequenceExpression:
		return KindSequenceExpression
	case *ast.ConditionalExpression:
		return KindConditionalExpression
	case *ast.ArrayLiteral:
		return KindArrayLiteral
	case *ast.ObjectLiteral:
		return KindObjectLiteral
	case *ast.FunctionLiteral:
		return KindFunctionLiteral
	case *ast.ArrowFunctionLiteral:
		return KindArrowFunctionLiteral
	case *ast.TemplateLiteral:
		return KindTemplateLiteral
	case *ast.SpreadElement:
		return KindSpreadElement
	default:
		return KindOther
	}
}
