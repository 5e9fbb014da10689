package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// ObjectIndex snapshots one object-literal binding's keyed values at
// declaration time, the generalized form of deob.go's
// `deobVisitor.numbers map[ast.Id]map[string]float64` (numeric-only) into
// the full literal set SPEC_FULL §4.4/SUPPLEMENTED FEATURES calls for.
type ObjectIndex struct {
	Binding *traverse.Binding
	Values  map[string]ast.Expr
}

// ObjectCluster finds `var OBJ = { k1: v1, k2: v2, ... }` declarations
// whose values are all literals (or function literals, the indirection-
// table shape SPEC_FULL §1's nested-indirection sub-engine describes),
// builds an ObjectIndex per such binding, and rewrites every static
// member read (`OBJ.k1`, `OBJ["k1"]`) into a clone of the stashed value —
// the same shape as deob.go's captureNumericObjectMap + the
// MemberExpression substitution branch of VisitExpression, generalized to
// object literals of any literal kind.
//
// It also tracks the assignment-splice form obfuscators commonly emit
// instead of one inline literal: `var OBJ = {}; OBJ.k1 = v1; OBJ.k2 = v2;`
// populates the same ObjectIndex one property-assignment statement at a
// time, each folded away as it's captured.
func ObjectCluster() transform.Transform {
	return transform.Transform{
		Name:       "object-cluster",
		NeedsScope: true,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			indexes := map[string]*ObjectIndex{}

			return traverse.VisitorMap{
				traverse.KindVariableDeclaration: {Exit: func(p *traverse.Path) {
					decl, ok := p.Stmt.Stmt.(*ast.VariableDeclaration)
					if !ok {
						return
					}
					scope := p.Scope()
					if scope == nil {
						return
					}
					for _, d := range decl.List {
						captureObjectLiteral(scope, d, indexes)
					}
				}},
				traverse.KindExpressionStatement: {Exit: func(p *traverse.Path) {
					if capturePropertySplice(p, indexes) {
						state.Changes++
					}
				}},
				traverse.KindMemberExpression: {Exit: func(p *traverse.Path) {
					mem, ok := p.Expr.Expr.(*ast.MemberExpression)
					if !ok || mem.Object == nil {
						return
					}
					id, ok := mem.Object.Expr.(*ast.Identifier)
					if !ok {
						return
					}
					idx, ok := indexes[id.Name]
					if !ok {
						return
					}
					if idx.Binding != nil && !idx.Binding.Constant() {
						return
					}
					propName, ok := jsval.MemberPropName(mem.Property)
					if !ok {
						return
					}
					val, ok := idx.Values[propName]
					if !ok {
						return
					}
					if idx.Binding != nil {
						idx.Binding.ReferencePaths = removePath(idx.Binding.ReferencePaths, p)
					}
					p.ReplaceWith(cloneLiteral(val))
					state.Changes++
				}},
			}
		},
	}
}

// isClusterable reports whether e is a value ObjectCluster is willing to
// stash: a plain literal, or a function literal (the indirection-table
// case - cloneLiteral falls back to returning the node as-is for function
// literals, so a table fn read at more than one call site still shares
// one underlying *ast.FunctionLiteral; documented in DESIGN.md).
func isClusterable(e ast.Expr) bool {
	if jsval.IsLiteral(e) {
		return true
	}
	_, ok := e.(*ast.FunctionLiteral)
	return ok
}

func captureObjectLiteral(scope *traverse.Scope, d *ast.VariableDeclarator, indexes map[string]*ObjectIndex) {
	if d == nil || d.Target == nil || d.Initializer == nil {
		return
	}
	id, ok := d.Target.Expr.(*ast.Identifier)
	if !ok {
		return
	}
	obj, ok := d.Initializer.Expr.(*ast.ObjectLiteral)
	if !ok {
		return
	}
	b := scope.Lookup(id.Name)
	if b == nil || !b.Constant() {
		return
	}

	values := map[string]ast.Expr{}
	for _, prop := range obj.Value {
		kp, ok := prop.Prop.(*ast.PropertyKeyed)
		if !ok || kp.Value == nil {
			return
		}
		name, ok := jsval.LiteralKeyName(kp.Key)
		if !ok || !isClusterable(kp.Value.Expr) {
			return
		}
		values[name] = kp.Value.Expr
	}
	indexes[id.Name] = &ObjectIndex{Binding: b, Values: values}
}

// capturePropertySplice recognizes `OBJ.key = value;` (or `OBJ["key"] =
// value;`) where OBJ already has an ObjectIndex from an earlier
// declaration, folds value into that index, and removes the now-redundant
// assignment statement.
func capturePropertySplice(p *traverse.Path, indexes map[string]*ObjectIndex) bool {
	stmt, ok := p.Stmt.Stmt.(*ast.ExpressionStatement)
	if !ok || stmt.Expression == nil || !p.InList() {
		return false
	}
	asn, ok := stmt.Expression.Expr.(*ast.AssignExpression)
	if !ok || asn.Operator.String() != "=" || asn.Left == nil || asn.Right == nil {
		return false
	}
	mem, ok := asn.Left.Expr.(*ast.MemberExpression)
	if !ok || mem.Object == nil {
		return false
	}
	objID, ok := mem.Object.Expr.(*ast.Identifier)
	if !ok {
		return false
	}
	idx, ok := indexes[objID.Name]
	if !ok {
		return false
	}
	propName, ok := jsval.MemberPropName(mem.Property)
	if !ok || !isClusterable(asn.Right.Expr) {
		return false
	}
	idx.Values[propName] = asn.Right.Expr
	p.Remove()
	return true
}

func removePath(paths []*traverse.Path, target *traverse.Path) []*traverse.Path {
	out := paths[:0]
	for _, p := range paths {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
