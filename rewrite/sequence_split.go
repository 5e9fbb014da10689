package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// SequenceSplit breaks a comma-expression out of every context spec.md's
// sequence splitter names: a bare statement (`a(), b(), c();`), the trailing
// expression of a return/throw/if-test/switch-discriminant/for-in-source/
// single-declarator-init, and a for-loop's comma-joined init/update clauses.
// Splitting makes every later transform's job simpler: no pass needs to
// reach into a SequenceExpression to find the mutation it's looking for.
//
// For a general context the leading sub-expressions become their own
// statements immediately before the one that held the sequence, and the
// final sub-expression stays in the original role (spliceSequenceTail).
//
// A for-loop's init clause gets special treatment: each leading assignment
// either fills in a matching bare `var name;` declarator seen earlier in the
// same pass (turning it into `var name = expr;` right where it already
// sits, with nothing left to hoist) or, when no such declarator exists, is
// hoisted as a plain assignment statement before the loop. A for-loop's
// update clause is only split when the body is empty, since splicing update
// statements into a non-empty body would change what a `continue` inside it
// skips.
func SequenceSplit() transform.Transform {
	return transform.Transform{
		Name:       "sequence-split",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			bareDecls := map[string]*ast.VariableDeclarator{}

			return traverse.VisitorMap{
				traverse.KindExpressionStatement: {Exit: func(p *traverse.Path) {
					stmt, ok := p.Stmt.Stmt.(*ast.ExpressionStatement)
					if !ok || stmt.Expression == nil {
						return
					}
					seq, ok := stmt.Expression.Expr.(*ast.SequenceExpression)
					if !ok || len(seq.Sequence) < 2 || !p.InList() {
						return
					}
					out := make([]ast.Statement, len(seq.Sequence))
					for i := range seq.Sequence {
						out[i] = ast.Statement{Stmt: &ast.ExpressionStatement{Expression: &seq.Sequence[i]}}
					}
					p.ReplaceWithMultiple(out)
					state.Changes++
				}},

				traverse.KindReturnStatement: {Exit: func(p *traverse.Path) {
					ret, ok := p.Stmt.Stmt.(*ast.ReturnStatement)
					if !ok || ret.Argument == nil {
						return
					}
					seq, ok := ret.Argument.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					ret.Argument = tail
					state.Changes++
				}},

				traverse.KindThrowStatement: {Exit: func(p *traverse.Path) {
					th, ok := p.Stmt.Stmt.(*ast.ThrowStatement)
					if !ok || th.Argument == nil {
						return
					}
					seq, ok := th.Argument.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					th.Argument = tail
					state.Changes++
				}},

				traverse.KindIfStatement: {Exit: func(p *traverse.Path) {
					ifs, ok := p.Stmt.Stmt.(*ast.IfStatement)
					if !ok || ifs.Test == nil {
						return
					}
					seq, ok := ifs.Test.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					ifs.Test = tail
					state.Changes++
				}},

				traverse.KindSwitchStatement: {Exit: func(p *traverse.Path) {
					sw, ok := p.Stmt.Stmt.(*ast.SwitchStatement)
					if !ok || sw.Discriminant == nil {
						return
					}
					seq, ok := sw.Discriminant.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					sw.Discriminant = tail
					state.Changes++
				}},

				traverse.KindForInStatement: {Exit: func(p *traverse.Path) {
					fi, ok := p.Stmt.Stmt.(*ast.ForInStatement)
					if !ok || fi.Source == nil {
						return
					}
					seq, ok := fi.Source.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					fi.Source = tail
					state.Changes++
				}},

				traverse.KindVariableDeclaration: {Exit: func(p *traverse.Path) {
					decl, ok := p.Stmt.Stmt.(*ast.VariableDeclaration)
					if !ok {
						return
					}
					trackBareDeclarators(decl, bareDecls)

					if len(decl.List) != 1 || !p.InList() {
						return
					}
					d := decl.List[0]
					if d == nil || d.Initializer == nil {
						return
					}
					seq, ok := d.Initializer.Expr.(*ast.SequenceExpression)
					if !ok {
						return
					}
					tail, ok := spliceSequenceTail(p, seq)
					if !ok {
						return
					}
					d.Initializer = tail
					state.Changes++
				}},

				traverse.KindForStatement: {Exit: func(p *traverse.Path) {
					fs, ok := p.Stmt.Stmt.(*ast.ForStatement)
					if !ok {
						return
					}
					if splitForInit(p, fs, bareDecls) {
						state.Changes++
					}
					if splitForUpdateWithEmptyBody(fs) {
						state.Changes++
					}
				}},
			}
		},
	}
}

// spliceSequenceTail hoists every sub-expression of seq but the last as its
// own ExpressionStatement immediately before p (p.InsertBefore), and returns
// the last sub-expression for the caller to install back into whatever
// single-expression slot seq came from. Returns ok=false (no mutation) when
// seq is too short to split or p isn't in a statement list to insert before.
func spliceSequenceTail(p *traverse.Path, seq *ast.SequenceExpression) (*ast.Expression, bool) {
	if seq == nil || len(seq.Sequence) < 2 || !p.InList() {
		return nil, false
	}
	lead := seq.Sequence[:len(seq.Sequence)-1]
	hoisted := make([]ast.Statement, len(lead))
	for i := range lead {
		hoisted[i] = ast.Statement{Stmt: &ast.ExpressionStatement{Expression: &lead[i]}}
	}
	p.InsertBefore(hoisted...)
	return &seq.Sequence[len(seq.Sequence)-1], true
}

// trackBareDeclarators remembers every `var name;` declarator in decl that
// has no initializer of its own, so a later for-init sequence that assigns
// name can fill this exact declarator in place instead of needing a new
// hoisted declaration.
func trackBareDeclarators(decl *ast.VariableDeclaration, bareDecls map[string]*ast.VariableDeclarator) {
	for _, d := range decl.List {
		if d == nil || d.Target == nil || d.Initializer != nil {
			continue
		}
		if id, ok := d.Target.Expr.(*ast.Identifier); ok {
			bareDecls[id.Name] = d
		}
	}
}

// splitForInit empties a for-loop's comma-joined, all-assignment init
// clause (`for (a=1, b=2; ...; ...)`). Refuses (returns false, no mutation)
// unless every element is a plain `=` assignment to a bare identifier,
// since anything else (a declaration, a compound op, a non-identifier
// target) isn't a pattern this can reproduce as an equivalent standalone
// statement.
//
// When an assignment's target has a matching bare `var name;` declarator
// earlier in the same pass, that declarator's Initializer is set in place —
// the declaration was already positioned before the loop (JS requires a
// binding to exist before use), so this reproduces `var name = expr;`
// hoisted before the loop without physically relocating or deleting
// anything: a single forward pass can't safely delete an earlier sibling
// statement's node once that statement's own list action has already been
// consumed, so filling in place sidesteps the hazard entirely. Anything
// left over (no matching bare declarator) is hoisted as a plain assignment
// statement via p.InsertBefore.
func splitForInit(p *traverse.Path, fs *ast.ForStatement, bareDecls map[string]*ast.VariableDeclarator) bool {
	if fs.Initializer == nil || !p.InList() {
		return false
	}
	initExpr, ok := fs.Initializer.(*ast.Expression)
	if !ok || initExpr == nil {
		return false
	}
	seq, ok := initExpr.Expr.(*ast.SequenceExpression)
	if !ok || len(seq.Sequence) == 0 {
		return false
	}

	assigns := make([]*ast.AssignExpression, len(seq.Sequence))
	for i := range seq.Sequence {
		asn, ok := seq.Sequence[i].Expr.(*ast.AssignExpression)
		if !ok || asn.Operator.String() != "=" || asn.Left == nil || asn.Right == nil {
			return false
		}
		if _, ok := asn.Left.Expr.(*ast.Identifier); !ok {
			return false
		}
		assigns[i] = asn
	}

	var hoisted []ast.Statement
	for _, asn := range assigns {
		name := asn.Left.Expr.(*ast.Identifier).Name
		if decor, tracked := bareDecls[name]; tracked {
			decor.Initializer = asn.Right
			delete(bareDecls, name)
			continue
		}
		hoisted = append(hoisted, ast.Statement{Stmt: &ast.ExpressionStatement{Expression: &ast.Expression{Expr: asn}}})
	}
	if len(hoisted) > 0 {
		p.InsertBefore(hoisted...)
	}
	fs.Initializer = nil
	return true
}

// splitForUpdateWithEmptyBody moves a for-loop's comma-joined update clause
// (`for (...; ...; a++, b--)`) into the loop body as trailing statements,
// but only when the body is a block with no statements of its own: a
// non-empty body would change what `continue` skips, since the update
// clause always runs on continue but spliced-in body statements would not.
func splitForUpdateWithEmptyBody(fs *ast.ForStatement) bool {
	if fs.Update == nil || fs.Body == nil {
		return false
	}
	seq, ok := fs.Update.Expr.(*ast.SequenceExpression)
	if !ok || len(seq.Sequence) < 2 {
		return false
	}
	block, ok := fs.Body.Stmt.(*ast.BlockStatement)
	if !ok || len(block.List) != 0 {
		return false
	}
	updates := make([]ast.Statement, len(seq.Sequence))
	for i := range seq.Sequence {
		updates[i] = ast.Statement{Stmt: &ast.ExpressionStatement{Expression: &seq.Sequence[i]}}
	}
	block.List = updates
	fs.Update = nil
	return true
}
