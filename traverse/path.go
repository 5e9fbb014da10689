// Package traverse implements the visitor dispatcher described by the
// transform engine: a depth-first walk over a go-fast AST that hands each
// transform a Path (node + parent chain + key + scope + mutation
// primitives) instead of a bare node, the way the rewrite library expects.
//
// go-fast's own ast.NoopVisitor already gives single-slot mutation for free
// (VisitExpression/VisitStatement receive a pointer straight into the slot
// that holds the node, so `n.Expr = x` mutates the tree in place — see the
// teacher's visitors/deob.go). What it does not give is list-aware splicing
// (insertBefore / replaceWithMultiple / remove) for statement sequences, so
// this package hand-rolls that level the same way the teacher hand-rolls
// findAlphabetInStatement/findAlphabetInExpression, and leans on the
// go-fast visitor only where a single slot is enough.
package traverse

import (
	"github.com/t14raptor/go-fast/ast"
)

// Path is a cursor over one node of the AST: the node itself, its parent
// chain, its key within the parent, the enclosing scope, and the mutation
// primitives transforms use to rewrite it.
type Path struct {
	// At most one of Stmt/Expr is non-nil, depending on what this Path
	// wraps; both are nil on the list-holder paths the walker creates.
	Stmt *ast.Statement
	Expr *ast.Expression

	Parent *Path
	Key    string

	scope *Scope
	walk  *walker

	// inList is set when this Path sits inside a mutable statement
	// sequence (Program.Body, BlockStatement.List, a switch case's
	// Consequent); only then are InsertBefore/ReplaceWithMultiple/Remove
	// legal.
	inList bool
	action listAction
}

type listActionKind int

const (
	listActionKeep listActionKind = iota
	listActionRemove
	listActionReplace
)

type listAction struct {
	kind    listActionKind
	before  []ast.Statement
	replace []ast.Statement
}

// Scope returns the lexical scope enclosing this path. The walker attaches
// the right scope to every Path as it descends; Scope falls back to the
// parent chain for the rare Path built outside that walk (e.g. a synthetic
// root).
func (p *Path) Scope() *Scope {
	if p.scope != nil {
		return p.scope
	}
	if p.Parent != nil {
		p.scope = p.Parent.Scope()
	}
	return p.scope
}

// InList reports whether this path sits inside a mutable statement
// sequence, the precondition for InsertBefore/ReplaceWithMultiple/Remove.
func (p *Path) InList() bool {
	return p.inList
}

// Node returns the underlying node as an `any`, a *ast.Statement or
// *ast.Expression depending on what this Path wraps.
func (p *Path) Node() any {
	if p.Stmt != nil {
		return p.Stmt
	}
	return p.Expr
}

// ReplaceWith replaces this path's node with a new expression node. Legal
// on expression paths only. Callers are responsible for recording the edit
// in their own transform.State.Changes counter.
func (p *Path) ReplaceWith(expr ast.Expr) {
	if p.Expr == nil {
		return
	}
	p.Expr.Expr = expr
}

// ReplaceWithStmt replaces this path's node with a new single statement.
// Legal on statement paths only.
func (p *Path) ReplaceWithStmt(stmt ast.Stmt) {
	if p.Stmt == nil {
		return
	}
	p.Stmt.Stmt = stmt
}

// ReplaceWithMultiple replaces this statement with zero or more statements
// in its enclosing list. Legal only on statement paths sitting inside a
// mutable statement sequence (see inList).
func (p *Path) ReplaceWithMultiple(stmts []ast.Statement) {
	if !p.inList {
		return
	}
	p.action = listAction{kind: listActionReplace, replace: stmts}
}

// InsertBefore queues sibling statements to be emitted immediately before
// this one in its enclosing list. The inserted siblings are not re-visited
// in the current pass.
func (p *Path) InsertBefore(stmts ...ast.Statement) {
	if !p.inList {
		return
	}
	p.action.before = append(p.action.before, stmts...)
}

// Remove deletes this statement from its enclosing list.
func (p *Path) Remove() {
	if !p.inList {
		return
	}
	p.action.kind = listActionRemove
}

// Skip suppresses descent into this node's children for the current enter
// call.
func (p *Path) Skip() {
	if p.walk != nil {
		p.walk.skipCurrent = true
	}
}

// Stop halts the entire walk immediately after the current node finishes
// processing.
func (p *Path) Stop() {
	if p.walk != nil {
		p.walk.stopped = true
	}
}
