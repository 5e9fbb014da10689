package traverse

import (
	"github.com/t14raptor/go-fast/ast"
)

// BindingKind classifies how a name came to be bound.
type BindingKind int

const (
	BindingVar BindingKind = iota
	BindingLet
	BindingConst
	BindingParam
	BindingFunction
	BindingClass
)

// Binding is one declaration site together with everything the fixpoint
// transforms need to reason about it safely: whether it is ever
// reassigned, and every path that reads or writes it.
type Binding struct {
	Name       string
	Kind       BindingKind
	Identifier *ast.Identifier

	// Init is the declaration-site initializer, when this binding came
	// from a VariableDeclarator with one (nil for parameters, function
	// declarations, catch bindings, or a bare `var x;`). It is a static
	// snapshot taken once at declare time, not re-resolved if the
	// initializer expression is later replaced.
	Init *ast.Expression

	// Function is the function literal this binding declares, set only
	// for BindingFunction (a `function f() {}` declaration has no
	// VariableDeclarator to hang an Init off of).
	Function *ast.FunctionLiteral

	ConstantViolations []*Path
	ReferencePaths     []*Path
}

// Constant reports whether this binding is never reassigned after its
// declaration — the condition the constant inliner and the unused-
// declaration remover both require.
func (b *Binding) Constant() bool {
	return len(b.ConstantViolations) == 0
}

// Scope is a lexical-environment record attached to a function, block, or
// program node. Scopes form a tree mirroring lexical nesting.
type Scope struct {
	Parent   *Scope
	Bindings map[string]*Binding
	IsFunc   bool // function/program scope vs. a bare block scope
}

func newScope(parent *Scope, isFunc bool) *Scope {
	return &Scope{Parent: parent, Bindings: make(map[string]*Binding), IsFunc: isFunc}
}

// Lookup walks up the scope chain and returns the binding for name, or nil
// if name resolves to the global environment (a true free variable).
func (s *Scope) Lookup(name string) *Binding {
	for sc := s; sc != nil; sc = sc.Parent {
		if b, ok := sc.Bindings[name]; ok {
			return b
		}
	}
	return nil
}

// declare registers a new binding in this scope, or returns the existing
// one if name is already bound here (redeclaration, e.g. `var` hoisting).
func (s *Scope) declare(name string, kind BindingKind, id *ast.Identifier) *Binding {
	if b, ok := s.Bindings[name]; ok {
		return b
	}
	b := &Binding{Name: name, Kind: kind, Identifier: id}
	s.Bindings[name] = b
	return b
}

// declareWithInit is declare plus recording the declaration-site
// initializer, used when the caller already has the VariableDeclarator in
// hand.
func (s *Scope) declareWithInit(name string, kind BindingKind, id *ast.Identifier, init *ast.Expression) *Binding {
	b := s.declare(name, kind, id)
	if b.Init == nil {
		b.Init = init
	}
	return b
}

// funcScope returns the nearest enclosing function/program scope, the
// target for `var` hoisting.
func (s *Scope) funcScope() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.IsFunc {
			return sc
		}
	}
	return s
}
