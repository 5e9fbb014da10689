// Package decoder implements the string-array decoder engine of spec.md
// §4.5: locating a decoder function (by call count or by owning a
// suspiciously large array literal), tracking every alias it's assigned
// to, and replacing its call sites with the literal values it would have
// returned — generalizing the Cloudflare-challenge-specific decoder
// recognition deob.go hand-writes (extractOffset/extractTarget/
// extractStringTable/wkMapFinder/rotateTableDynamic/collectAliases) into
// the spec's general locator strategies.
package decoder

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// Role classifies what a located decoder-shaped function actually does.
type Role int

const (
	RoleUnknown Role = iota
	RoleDecoder      // returns STRING_TABLE[index] (optionally rotated)
	RoleRotator      // performs the in-place array rotation setup step
)

// Candidate is one binding a locator reports as decoder- or rotator-shaped
// (a function for LocateByCallCount, the array binding itself for
// LocateByBigArray). DecryptFnSet takes it as given; nothing re-validates it.
type Candidate struct {
	Name     string
	Binding  *traverse.Binding
	Function *ast.FunctionLiteral
	Role     Role
	// Table is the backing array literal this candidate indexes into.
	// LocateByBigArray sets it; LocateByCallCount leaves it nil.
	Table *ast.ArrayLiteral
}

// LocateByCallCount finds function bindings referenced at least
// threshold times as a call callee — spec.md §4.5's first locator
// strategy: a function this heavily used, early in the obfuscated file, is
// almost always the shared decoder.
func LocateByCallCount(scope *traverse.Scope, threshold int) []*Candidate {
	var out []*Candidate
	for _, b := range scope.Bindings {
		if b.Kind != traverse.BindingFunction && b.Kind != traverse.BindingVar &&
			b.Kind != traverse.BindingConst && b.Kind != traverse.BindingLet {
			continue
		}
		calls := 0
		for _, ref := range b.ReferencePaths {
			if isCallCallee(ref) {
				calls++
			}
		}
		if calls < threshold {
			continue
		}
		fn := functionLiteralOf(b)
		if fn == nil {
			continue
		}
		out = append(out, &Candidate{Name: b.Name, Binding: b, Function: fn, Role: RoleDecoder})
	}
	return out
}

// bigArrayMaxReferences is spec.md §4.5's "<10 references" precondition: a
// table this central to the file is read from only the decoder and maybe a
// rotator, so a binding referenced too widely to fit that shape is skipped
// rather than misclassified.
const bigArrayMaxReferences = 10

// LocateByBigArray finds array-literal bindings with at least minSize
// elements and few references, the second locator strategy: the decoder's
// backing string table is large and is read from only a couple of places
// (the decoder function itself, and maybe a rotator). Per OPEN QUESTION
// (c), an array found outside any function scope (including Program
// itself) is reported as unlocatable rather than guessed at.
func LocateByBigArray(scope *traverse.Scope, minSize int, isFunctionScope bool, warn func(name string)) []*Candidate {
	var out []*Candidate
	for _, b := range scope.Bindings {
		arr := arrayLiteralOf(b)
		if arr == nil || len(arr.Value) < minSize {
			continue
		}
		if !isFunctionScope {
			if warn != nil {
				warn(b.Name)
			}
			continue
		}
		if len(b.ReferencePaths) >= bigArrayMaxReferences {
			continue
		}
		role := RoleUnknown
		for _, ref := range b.ReferencePaths {
			if isSubscripted(ref) {
				role = RoleDecoder
			}
			if isCallArgument(ref) {
				role = RoleRotator
			}
		}
		out = append(out, &Candidate{Name: b.Name, Binding: b, Role: role, Table: arr})
	}
	return out
}

func isCallCallee(p *traverse.Path) bool {
	parent := p.Parent
	if parent == nil || parent.Expr == nil {
		return false
	}
	call, ok := parent.Expr.Expr.(*ast.CallExpression)
	return ok && call.Callee == p.Expr
}

func isSubscripted(p *traverse.Path) bool {
	parent := p.Parent
	if parent == nil || parent.Expr == nil {
		return false
	}
	mem, ok := parent.Expr.Expr.(*ast.MemberExpression)
	return ok && mem.Object == p.Expr
}

// isCallArgument reports whether p is one of a CallExpression's arguments
// (spec.md §4.5's rotator signal), as opposed to the callee itself or a
// subscripted object.
func isCallArgument(p *traverse.Path) bool {
	parent := p.Parent
	if parent == nil || parent.Expr == nil {
		return false
	}
	call, ok := parent.Expr.Expr.(*ast.CallExpression)
	if !ok {
		return false
	}
	for i := range call.ArgumentList {
		if call.ArgumentList[i].Expr == p.Expr.Expr {
			return true
		}
	}
	return false
}

func functionLiteralOf(b *traverse.Binding) *ast.FunctionLiteral {
	if b.Function != nil {
		return b.Function
	}
	if b.Init == nil {
		return nil
	}
	fn, _ := b.Init.Expr.(*ast.FunctionLiteral)
	return fn
}

func arrayLiteralOf(b *traverse.Binding) *ast.ArrayLiteral {
	if b.Init == nil {
		return nil
	}
	arr, _ := b.Init.Expr.(*ast.ArrayLiteral)
	return arr
}
