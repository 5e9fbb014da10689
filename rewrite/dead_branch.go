package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/scope"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// DeadBranch collapses an if-statement whose test is already a literal
// into whichever branch actually runs, dropping the other one entirely.
// `var`/function-declaration hoisting (traverse's hoist) already resolved
// those bindings to the enclosing function scope regardless of which
// branch physically holds them, so splicing never moves them into a new
// scope. A `let`/`const`/`class` declared directly in the winning
// branch's block is different: it lives in that block's own scope today,
// and splicing its statement up into the enclosing list rebinds it into
// that enclosing scope, where a same-named sibling binding may already
// exist (two different if-branches each declaring their own `let x`, say,
// now both block-scoped the same way a sibling scope works). collideAndRename
// resolves that by renaming the pre-existing outer binding out of the way,
// the same collision rule scope.RenameFast already applies for every other
// caller — the branch's own declaration keeps its original name.
func DeadBranch() transform.Transform {
	return transform.Transform{
		Name:       "dead-branch",
		NeedsScope: true,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			return traverse.VisitorMap{
				traverse.KindIfStatement: {Exit: func(p *traverse.Path) {
					ifs, ok := p.Stmt.Stmt.(*ast.IfStatement)
					if !ok || ifs.Test == nil {
						return
					}
					b, ok := jsval.ToBool(ifs.Test.Expr)
					if !ok {
						return
					}
					if !p.InList() {
						return
					}
					if b {
						collideAndRename(ifs.Consequent, p.Scope())
						p.ReplaceWithMultiple(asStatementList(ifs.Consequent))
					} else if ifs.Alternate != nil {
						collideAndRename(ifs.Alternate, p.Scope())
						p.ReplaceWithMultiple(asStatementList(ifs.Alternate))
					} else {
						p.Remove()
					}
					state.Changes++
				}},
				traverse.KindConditionalExpression: {Exit: func(p *traverse.Path) {
					cond, ok := p.Expr.Expr.(*ast.ConditionalExpression)
					if !ok || cond.Test == nil || !jsval.IsLiteral(cond.Test.Expr) {
						return
					}
					b, ok := jsval.ToBool(cond.Test.Expr)
					if !ok {
						return
					}
					if b {
						p.ReplaceWith(cond.Consequent.Expr)
					} else {
						p.ReplaceWith(cond.Alternate.Expr)
					}
					state.Changes++
				}},
			}
		},
	}
}

// asStatementList flattens a branch statement into the list its caller
// splices into an enclosing sequence: a block's own statements if it's a
// block, or a one-element list otherwise.
func asStatementList(s *ast.Statement) []ast.Statement {
	if s == nil || s.Stmt == nil {
		return nil
	}
	if block, ok := s.Stmt.(*ast.BlockStatement); ok {
		return block.List
	}
	return []ast.Statement{*s}
}

// collideAndRename finds every let/const/class/function binding declared
// directly in branch's block (a nested block keeps its own scope and is
// left alone) and, for each whose name already names a different binding
// live in outer, renames that pre-existing outer binding out of the way.
// It builds scope for branch's statements in isolation — a synthetic
// single-statement Program wrapping the same, uncloned []ast.Statement —
// purely to get at each declaration's *traverse.Binding (with its real
// ReferencePaths into the actual tree) without re-walking the whole
// program; that scope object itself is discarded once used.
func collideAndRename(branch *ast.Statement, outer *traverse.Scope) {
	if branch == nil || branch.Stmt == nil || outer == nil {
		return
	}
	block, ok := branch.Stmt.(*ast.BlockStatement)
	if !ok {
		return
	}
	sub := traverse.BuildScope(&ast.Program{Body: block.List})
	for name, b := range sub.Bindings {
		switch b.Kind {
		case traverse.BindingLet, traverse.BindingConst, traverse.BindingClass, traverse.BindingFunction:
		default:
			continue
		}
		if existing := outer.Lookup(name); existing != nil && existing != b {
			scope.RenameFast(outer, b, name)
		}
	}
}
