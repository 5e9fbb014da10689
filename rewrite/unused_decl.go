package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// UnusedDecl drops variable declarators and top-level function
// declarations that are never read after ConstantInline has already
// replaced every read with a literal clone — the cleanup half of that
// transform, split out so it can also catch declarations that were dead
// on arrival (e.g. an obfuscator's unused helper variable or a dead
// string-indirection function nothing calls anymore).
//
// Whether a binding is ever read is a whole-program question, not
// something knowable from the Path visiting the declaration itself: by
// the time a KindVariableDeclaration Exit callback runs, later sibling
// statements (where a read would live) haven't been walked yet, so
// Path.Scope()'s Binding.ReferencePaths is necessarily incomplete. This
// pass instead runs traverse.BuildScope(program) once, up front, to get
// every binding's complete reference list before mutating anything, the
// same shape the decoder subsystem's locators use.
func UnusedDecl() transform.Transform {
	return transform.Transform{
		Name:       "unused-decl",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			sc := traverse.BuildScope(program)

			return traverse.VisitorMap{
				traverse.KindVariableDeclaration: {Exit: func(p *traverse.Path) {
					decl, ok := p.Stmt.Stmt.(*ast.VariableDeclaration)
					if !ok {
						return
					}
					kept := decl.List[:0]
					for _, d := range decl.List {
						if isDead(sc, d) {
							state.Changes++
							continue
						}
						kept = append(kept, d)
					}
					decl.List = kept
					if len(decl.List) == 0 && p.InList() {
						p.Remove()
					}
				}},
				traverse.KindFunctionDeclaration: {Exit: func(p *traverse.Path) {
					fd, ok := p.Stmt.Stmt.(*ast.FunctionDeclaration)
					if !ok || fd.Function == nil || fd.Function.Name == nil || !p.InList() {
						return
					}
					b := sc.Lookup(fd.Function.Name.Name)
					if b == nil || hasRealRead(b, nil) {
						return
					}
					p.Remove()
					state.Changes++
				}},
			}
		},
	}
}

// hasRealRead reports whether b has any reference besides the
// declaration's own target identifier (walking a declarator's Target
// always records a self-reference; see visit_expr.go's
// walkVariableDeclarator) and any write-only assignment target. target,
// when non-nil, is that declarator's own Target slot to exclude.
func hasRealRead(b *traverse.Binding, target *ast.Expression) bool {
	for _, ref := range b.ReferencePaths {
		if ref == nil || ref.Expr == nil {
			continue
		}
		if target != nil && ref.Expr == target {
			continue
		}
		if _, ok := ref.Expr.Expr.(*ast.Identifier); !ok {
			continue
		}
		return true
	}
	return false
}

func isDead(scope *traverse.Scope, d *ast.VariableDeclarator) bool {
	if d == nil || d.Target == nil {
		return false
	}
	id, ok := d.Target.Expr.(*ast.Identifier)
	if !ok {
		return false
	}
	b := scope.Lookup(id.Name)
	if b == nil {
		return false
	}
	if hasRealRead(b, d.Target) {
		return false
	}
	// A binding that's ever reassigned elsewhere keeps its declaration:
	// dropping `var x;` while `x = ...;` still runs somewhere else in the
	// program would turn that assignment into an implicit global.
	if len(b.ConstantViolations) != 0 {
		return false
	}
	// An initializer with potential side effects (a call) must not be
	// dropped purely because the result is unused; literal, identifier,
	// object, and function initializers are safe to discard outright.
	if d.Initializer == nil {
		return true
	}
	switch d.Initializer.Expr.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral,
		*ast.Identifier, *ast.ObjectLiteral, *ast.FunctionLiteral, *ast.ArrayLiteral:
		return true
	default:
		return false
	}
}
