package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// constLiteral is one binding ConstantInline is currently willing to
// substitute at any read it sees from here on: the literal it was last
// declared or assigned with, and the binding it came from so a same-named
// binding in an unrelated scope is never confused for this one.
type constLiteral struct {
	binding *traverse.Binding
	literal ast.Expr
}

// ConstantInline replaces every read of a literal-initialized binding with
// a clone of its literal, up to the point (if any) where the binding is
// reassigned — the general form of the number-literal substitution
// deob.go performs through its `numbers map[ast.Id]map[string]float64`
// snapshot, generalized beyond numbers to any literal kind per
// SPEC_FULL's SUPPLEMENTED FEATURES note.
//
// The declaration and its reads are visited in program order within a
// single pass, the same forward-index shape ObjectCluster uses for its
// member-expression substitution: a read is resolved against whatever the
// `live` table says *at that point in the walk*, not against a binding's
// full-program ReferencePaths (which isn't complete yet when the
// declaration itself is visited, since later sibling statements haven't
// been walked). An assignment clears the entry, so a read before a
// reassignment still inlines and a read after does not.
func ConstantInline() transform.Transform {
	return transform.Transform{
		Name:       "constant-inline",
		NeedsScope: true,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			live := map[string]constLiteral{}

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
						trackConstant(scope, d, live)
					}
				}},
				traverse.KindIdentifier: {Exit: func(p *traverse.Path) {
					id, ok := p.Expr.Expr.(*ast.Identifier)
					if !ok || p.Scope() == nil || isLvaluePosition(p) {
						return
					}
					cur, ok := live[id.Name]
					if !ok {
						return
					}
					if p.Scope().Lookup(id.Name) != cur.binding {
						return
					}
					p.ReplaceWith(cloneLiteral(cur.literal))
					state.Changes++
				}},
				traverse.KindAssignExpression: {Exit: func(p *traverse.Path) {
					invalidateOnWrite(p, assignTargetName(p.Expr.Expr), live)
				}},
				traverse.KindUpdateExpression: {Exit: func(p *traverse.Path) {
					up, ok := p.Expr.Expr.(*ast.UpdateExpression)
					if !ok || up.Operand == nil {
						return
					}
					name, _ := identifierName(up.Operand.Expr)
					invalidateOnWrite(p, name, live)
				}},
			}
		},
	}
}

func assignTargetName(e ast.Expr) string {
	asn, ok := e.(*ast.AssignExpression)
	if !ok || asn.Left == nil {
		return ""
	}
	name, _ := identifierName(asn.Left.Expr)
	return name
}

func identifierName(e ast.Expr) (string, bool) {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// isLvaluePosition reports whether p is the write target of an assignment
// or update expression (AssignExpression.Left, UpdateExpression.Operand),
// where substituting a literal in would produce invalid, un-assignable
// syntax even though the node visited is a bare identifier.
func isLvaluePosition(p *traverse.Path) bool {
	if p.Parent == nil || p.Parent.Expr == nil {
		return false
	}
	switch p.Parent.Expr.Expr.(type) {
	case *ast.AssignExpression:
		return p.Key == "Left"
	case *ast.UpdateExpression:
		return p.Key == "Operand"
	default:
		return false
	}
}

func invalidateOnWrite(p *traverse.Path, name string, live map[string]constLiteral) {
	if name == "" {
		return
	}
	delete(live, name)
}

// trackConstant registers d's literal as inlineable from here forward if
// it is the kind of declarator ConstantInline can safely clone: a plain
// identifier target with a literal initializer (destructuring/
// multiple-declarator aliasing isn't tracked).
func trackConstant(scope *traverse.Scope, d *ast.VariableDeclarator, live map[string]constLiteral) {
	if d == nil || d.Target == nil || d.Initializer == nil {
		return
	}
	id, ok := d.Target.Expr.(*ast.Identifier)
	if !ok {
		return
	}
	if !jsval.IsLiteral(d.Initializer.Expr) {
		return
	}
	b := scope.Lookup(id.Name)
	if b == nil {
		return
	}
	live[id.Name] = constLiteral{binding: b, literal: d.Initializer.Expr}
}

func cloneLiteral(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.StringLiteral:
		return &ast.StringLiteral{Value: v.Value}
	case *ast.NumberLiteral:
		return &ast.NumberLiteral{Value: v.Value}
	case *ast.BooleanLiteral:
		return &ast.BooleanLiteral{Value: v.Value}
	case *ast.NullLiteral:
		return &ast.NullLiteral{}
	case *ast.ArrayLiteral:
		out := make([]ast.Expression, len(v.Value))
		for i := range v.Value {
			if v.Value[i].Expr != nil {
				out[i] = ast.Expression{Expr: cloneLiteral(v.Value[i].Expr)}
			}
		}
		return &ast.ArrayLiteral{Value: out}
	default:
		return e
	}
}
