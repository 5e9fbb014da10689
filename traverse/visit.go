package traverse

import (
	"github.com/t14raptor/go-fast/ast"
)

// walker carries the per-Visit-call mutable state: whether the current
// enter callback asked to skip its children, whether Stop was called, and
// the visitor table being dispatched to. It does not track a change count
// itself — transforms own that in their own transform.State, since only
// they know which edits are semantically meaningful.
type walker struct {
	visitors   VisitorMap
	skipCurrent bool
	stopped    bool
}

// Options controls a single Visit call.
type Options struct {
	// Scope requests that Path.Scope() be populated. Building scope costs
	// an extra hoisting scan per function/block, so transforms that never
	// call Scope() can skip it.
	Scope bool
}

// Visit walks program depth-first, dispatching enter/exit callbacks from
// visitors by NodeKind. Statement sequences (Program.Body,
// BlockStatement.List, a CaseStatement's Consequent) are walked with a
// builder that honors InsertBefore/ReplaceWithMultiple/Remove queued
// against any Path in that sequence.
func Visit(program *ast.Program, visitors VisitorMap, opts Options) {
	w := &walker{visitors: visitors}

	var rootScope *Scope
	if opts.Scope {
		rootScope = newScope(nil, true)
		hoist(rootScope, program.Body, true)
	}

	root := &Path{walk: w, scope: rootScope, Key: "Program"}
	w.walkStatementList(root, &program.Body)
}

// BuildScope runs a scope-only walk (no transform visitors) and returns
// the populated program-level Scope: every binding's declaration site,
// ReferencePaths, and ConstantViolations. Callers that need to reason
// about bindings without rewriting anything — the decoder subsystem's
// locators, chiefly — use this instead of threading a throwaway
// transform.Transform through ApplyTransform just to get a *Scope out.
func BuildScope(program *ast.Program) *Scope {
	w := &walker{visitors: VisitorMap{}}
	rootScope := newScope(nil, true)
	hoist(rootScope, program.Body, true)
	root := &Path{walk: w, scope: rootScope, Key: "Program"}
	w.walkStatementList(root, &program.Body)
	return rootScope
}

// dispatch invokes the enter/exit callbacks registered for kind, if any.
func (w *walker) dispatch(kind NodeKind, phase func(v Visitor) func(*Path), p *Path) {
	v, ok := w.visitors[kind]
	if !ok {
		return
	}
	if fn := phase(v); fn != nil {
		fn(p)
	}
}

func enterFn(v Visitor) func(*Path) { return v.Enter }
func exitFn(v Visitor) func(*Path) { return v.Exit }

// walkStatementList walks a mutable statement sequence, applying any
// queued InsertBefore/ReplaceWithMultiple/Remove actions as it goes and
// writing the rebuilt sequence back into *list.
func (w *walker) walkStatementList(parent *Path, list *ast.Statements) {
	out := make(ast.Statements, 0, len(*list))
	for i := range *list {
		if w.stopped {
			out = append(out, (*list)[i:]...)
			break
		}
		stmt := &(*list)[i]
		p := &Path{Stmt: stmt, Parent: parent, Key: "", walk: w, inList: true}
		p.scope = parent.scope

		w.walkStatement(p)

		switch p.action.kind {
		case listActionRemove:
			out = append(out, p.action.before...)
		case listActionReplace:
			out = append(out, p.action.before...)
			out = append(out, p.action.replace...)
		default:
			out = append(out, p.action.before...)
			out = append(out, *stmt)
		}
		if w.stopped {
			break
		}
	}
	*list = out
}

// walkStatement dispatches a single *ast.Statement, descending into its
// children after the enter callback (unless Skip/Stop was called) and
// running the exit callback afterward. Re-entrancy after an enter-time
// mutation is handled by re-reading p.Stmt.Stmt after the callback runs.
func (w *walker) walkStatement(p *Path) {
	if p.Stmt == nil || p.Stmt.Stmt == nil {
		return
	}

	kind := statementKind(p.Stmt.Stmt)
	w.skipCurrent = false
	w.dispatch(kind, enterFn, p)
	if w.stopped {
		return
	}
	if w.skipCurrent {
		w.skipCurrent = false
		w.dispatch(kind, exitFn, p)
		return
	}

	w.descendStatement(p)
	if w.stopped {
		return
	}
	w.dispatch(kind, exitFn, p)
}

// descendStatement recurses into a statement's child statements and
// expressions by hand, mirroring the manual recursion the teacher uses in
// findAlphabetInStatement.
func (w *walker) descendStatement(p *Path) {
	switch s := p.Stmt.Stmt.(type) {
	case *ast.BlockStatement:
		child := childScope(p, false)
		if child != nil {
			declareDirect(child, s.List)
		}
		w.walkStatementListScoped(p, &s.List, child)

	case *ast.ExpressionStatement:
		w.walkExprField(p, &s.Expression, "Expression")

	case *ast.VariableDeclaration:
		for i := range s.List {
			w.walkVariableDeclarator(p, s.List[i])
		}

	case *ast.IfStatement:
		w.walkExprField(p, &s.Test, "Test")
		w.walkNestedStatement(p, &s.Consequent, "Consequent")
		if s.Alternate != nil {
			w.walkNestedStatement(p, &s.Alternate, "Alternate")
		}

	case *ast.ForStatement:
		child := childScope(p, false)
		if s.Test != nil {
			w.walkExprFieldScoped(p, &s.Test, "Test", child)
		}
		if s.Update != nil {
			w.walkExprFieldScoped(p, &s.Update, "Update", child)
		}
		w.walkNestedStatementScoped(p, &s.Body, "Body", child)

	case *ast.ForInStatement:
		child := childScope(p, false)
		if s.Source != nil {
			w.walkExprFieldScoped(p, &s.Source, "Source", child)
		}
		w.walkNestedStatementScoped(p, &s.Body, "Body", child)

	case *ast.WhileStatement:
		w.walkExprField(p, &s.Test, "Test")
		w.walkNestedStatement(p, &s.Body, "Body")

	case *ast.DoWhileStatement:
		w.walkExprField(p, &s.Test, "Test")
		w.walkNestedStatement(p, &s.Body, "Body")

	case *ast.SwitchStatement:
		w.walkExprField(p, &s.Discriminant, "Discriminant")
		child := childScope(p, false)
		for _, c := range s.Body {
			if c.Test != nil {
				w.walkExprFieldScoped(p, &c.Test, "CaseTest", child)
			}
			cp := &Path{Stmt: nil, Parent: p, Key: "Consequent", walk: w, scope: child}
			w.walkStatementList(cp, &c.Consequent)
		}

	case *ast.ReturnStatement:
		if s.Argument != nil {
			w.walkExprField(p, &s.Argument, "Argument")
		}

	case *ast.ThrowStatement:
		w.walkExprField(p, &s.Argument, "Argument")

	case *ast.TryStatement:
		if s.Body != nil {
			w.walkNestedBlock(p, s.Body)
		}
		if s.Catch != nil && s.Catch.Body != nil {
			w.walkNestedBlock(p, s.Catch.Body)
		}
		if s.Finally != nil {
			w.walkNestedBlock(p, s.Finally)
		}

	case *ast.LabelledStatement:
		w.walkNestedStatement(p, &s.Statement, "Statement")

	case *ast.FunctionDeclaration:
		if s.Function.Body != nil {
			w.walkFunctionBody(p, s.Function.Body, s.Function.ParameterList)
		}

	default:
		// Break/Continue/Debugger/EmptyStatement and anything else without
		// child nodes worth descending into.
	}
}

func (w *walker) walkNestedStatement(parent *Path, slot *ast.Statement, key string) {
	w.walkNestedStatementScoped(parent, slot, key, parent.scope)
}

func (w *walker) walkNestedStatementScoped(parent *Path, slot *ast.Statement, key string, scope *Scope) {
	if slot == nil || slot.Stmt == nil {
		return
	}
	p := &Path{Stmt: slot, Parent: parent, Key: key, walk: w, scope: scope}
	w.walkStatement(p)
}

func (w *walker) walkNestedBlock(parent *Path, block *ast.BlockStatement) {
	child := childScope(parent, false)
	if child != nil {
		declareDirect(child, block.List)
	}
	w.walkStatementListScoped(parent, &block.List, child)
}

func (w *walker) walkStatementListScoped(parent *Path, list *ast.Statements, scope *Scope) {
	scopedParent := &Path{Parent: parent, Key: parent.Key, walk: w, scope: scope}
	w.walkStatementList(scopedParent, list)
}

// walkFunctionBody builds the function's own scope (parameters, hoisted
// vars, and its top-level let/const/function/class declarations) before
// descending into its statements.
func (w *walker) walkFunctionBody(parent *Path, body *ast.BlockStatement, params *ast.ParameterList) {
	if parent.scope == nil {
		w.walkStatementListScoped(parent, &body.List, nil)
		return
	}
	fnScope := newScope(parent.scope, true)
	declareParams(fnScope, params)
	hoist(fnScope, body.List, true)
	w.walkStatementListScoped(parent, &body.List, fnScope)
}

func childScope(p *Path, isFunc bool) *Scope {
	if p.scope == nil {
		return nil
	}
	return newScope(p.scope, isFunc)
}

func statementKind(s ast.Stmt) NodeKind {
	switch s.(type) {
	case *ast.Program:
		return KindProgram
	case *ast.BlockStatement:
		return KindBlockStatement
	case *ast.ExpressionStatement:
		return KindExpressionStatement
	case *ast.VariableDeclaration:
		return KindVariableDeclaration
	case *ast.IfStatement:
		return KindIfStatement
	case *ast.ForStatement:
		return KindForStatement
	case *ast.ForInStatement:
		return KindForInStatement
	case *ast.WhileStatement:
		return KindWhileStatement
	case *ast.DoWhileStatement:
		return KindDoWhileStatement
	case *ast.SwitchStatement:
		return KindSwitchStatement
	case *ast.ReturnStatement:
		return KindReturnStatement
	case *ast.BreakStatement:
		return KindBreakStatement
	case *ast.ContinueStatement:
		return KindContinueStatement
	case *ast.ThrowStatement:
		return KindThrowStatement
	case *ast.TryStatement:
		return KindTryStatement
	case *ast.LabelledStatement:
		return KindLabelledStatement
	case *ast.FunctionDeclaration:
		return KindFunctionDeclaration
	case *ast.ClassDeclaration:
		return KindClassDeclaration
	default:
		return KindOther
	}
}
