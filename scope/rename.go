// Package scope implements the rename utilities SPEC_FULL.md §4.6 assigns
// a home of their own: renaming a binding everywhere it is used, and
// renaming a function's parameters in lockstep with their call sites
// inside that function's own body. Both operate directly on the
// traverse.Binding/Path machinery rather than re-walking the tree.
package scope

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// RenameFast renames binding everywhere it is declared and referenced:
// its declaration identifier, every Path in ReferencePaths, and every Path
// in ConstantViolations (an assignment target is a use of the name too,
// just not a read one). It does not re-run scope analysis; callers must
// already hold an up-to-date Binding (i.e. call this within the same
// traverse.Visit pass that built it, before the tree changes underneath
// it).
//
// scope, if non-nil, is consulted for a name collision: per SPEC_FULL
// §4.6's scope-safety requirement, if newName already names a different
// binding live in scope, that pre-existing binding is renamed out of the
// way first (to a fresh `_`-prefixed name) so the rename never shadows or
// gets shadowed by it. Pass nil when the caller already knows newName is
// fresh (e.g. a name it generated itself).
func RenameFast(scope *traverse.Scope, binding *traverse.Binding, newName string) {
	if binding == nil {
		return
	}
	if scope != nil {
		if existing := scope.Lookup(newName); existing != nil && existing != binding {
			RenameFast(scope, existing, freshCollisionName(scope, newName))
		}
	}
	oldName := binding.Name
	if binding.Identifier != nil {
		binding.Identifier.Name = newName
	}
	for _, ref := range binding.ReferencePaths {
		renameIdentifierAt(ref, newName)
	}
	for _, ref := range binding.ConstantViolations {
		renameIdentifierAt(ref, newName)
	}
	binding.Name = newName
	if scope != nil {
		rekey(scope, binding, oldName, newName)
	}
}

// rekey re-indexes binding under newName in whichever scope in scope's
// ancestor chain actually owns it. Scope.Bindings is keyed by name, so
// just updating Binding.Name would otherwise leave a stale map entry: a
// later scope.Lookup(oldName) would still resolve, and scope.Lookup
// (newName) would not, breaking collision detection for any rename after
// this one.
func rekey(scope *traverse.Scope, binding *traverse.Binding, oldName, newName string) {
	for sc := scope; sc != nil; sc = sc.Parent {
		if sc.Bindings[oldName] == binding {
			delete(sc.Bindings, oldName)
			sc.Bindings[newName] = binding
			return
		}
	}
}

func renameIdentifierAt(ref *traverse.Path, newName string) {
	if ref == nil || ref.Expr == nil {
		return
	}
	if id, ok := ref.Expr.Expr.(*ast.Identifier); ok {
		id.Name = newName
	}
}

// freshCollisionName builds a name derived from base that isn't currently
// bound in scope, by prefixing underscores until it's clear.
func freshCollisionName(scope *traverse.Scope, base string) string {
	name := "_" + base
	for scope.Lookup(name) != nil {
		name = "_" + name
	}
	return name
}

// RenameParameters renames a function literal's own parameters and every
// reference to them inside its body, given the parallel list of new names
// (by position; a "" entry leaves that parameter's name unchanged). No
// other package in this module calls it.
func RenameParameters(fn *ast.FunctionLiteral, scope *traverse.Scope, names []string) {
	if fn == nil || fn.ParameterList == nil || scope == nil {
		return
	}
	for i, newName := range names {
		if newName == "" || i >= len(fn.ParameterList.List) {
			continue
		}
		param := fn.ParameterList.List[i]
		id, ok := param.Expr.(*ast.Identifier)
		if !ok {
			continue
		}
		if b := scope.Lookup(id.Name); b != nil {
			RenameFast(scope, b, newName)
			continue
		}
		id.Name = newName
	}
}
