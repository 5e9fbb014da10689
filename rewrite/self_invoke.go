package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/match"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// SelfInvoke unwraps an immediately-invoked function expression: a niladic
// `(function(){ BODY })()` used purely as a scoping wrapper becomes BODY
// spliced in place, and `(function(){ return V })()` used purely to
// produce one value becomes V. A parameterized IIFE called with
// all-literal arguments (the common `(function(a,b){...})(x,y)`
// obfuscator wrapper) is handled the same way, after first substituting
// every free read of a/b inside BODY with a clone of x/y — the same
// constant-substitution ConstantInline performs for a plain declaration,
// applied here to a parameter binding instead.
func SelfInvoke() transform.Transform {
	return transform.Transform{
		Name:       "self-invoke",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			return traverse.VisitorMap{
				traverse.KindExpressionStatement: {Exit: func(p *traverse.Path) {
					stmt, ok := p.Stmt.Stmt.(*ast.ExpressionStatement)
					if !ok || !p.InList() {
						return
					}
					if fn, args := matchParameterizedIIFE(stmt.Expression.Expr); fn != nil {
						if !substituteParameters(fn, args) {
							return
						}
						spliced, ok := stripTailReturn(fn.Body.List)
						if !ok {
							return
						}
						p.ReplaceWithMultiple(spliced)
						state.Changes++
						return
					}
					fn, body := matchNiladicIIFE(stmt.Expression.Expr)
					if fn == nil {
						return
					}
					spliced, ok := stripTailReturn(body.List)
					if !ok {
						return
					}
					p.ReplaceWithMultiple(spliced)
					state.Changes++
				}},
				traverse.KindCallExpression: {Exit: func(p *traverse.Path) {
					fn, body := matchNiladicIIFE(p.Expr.Expr)
					if fn == nil || body == nil || len(body.List) != 1 {
						return
					}
					ret, ok := body.List[0].Stmt.(*ast.ReturnStatement)
					if !ok || ret.Argument == nil {
						return
					}
					p.ReplaceWith(ret.Argument.Expr)
					state.Changes++
				}},
			}
		},
	}
}

// stripTailReturn rewrites a function body for splicing into a statement
// context whose result is discarded: a trailing `return EXPR;` becomes
// `EXPR;` (or is dropped if EXPR is absent), and any other return found
// anywhere in the body vetoes the unwrap entirely, since that would change
// which statements run once the function boundary disappears.
func stripTailReturn(list []ast.Statement) ([]ast.Statement, bool) {
	for i, s := range list {
		ret, ok := s.Stmt.(*ast.ReturnStatement)
		if !ok {
			if containsReturn(s.Stmt) {
				return nil, false
			}
			continue
		}
		if i != len(list)-1 {
			return nil, false
		}
		out := make([]ast.Statement, 0, len(list))
		out = append(out, list[:i]...)
		if ret.Argument != nil {
			out = append(out, ast.Statement{Stmt: &ast.ExpressionStatement{Expression: ret.Argument}})
		}
		return out, true
	}
	return list, true
}

func containsReturn(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		for _, c := range st.List {
			if containsReturn(c.Stmt) {
				return true
			}
		}
	case *ast.IfStatement:
		if st.Consequent != nil && containsReturn(st.Consequent.Stmt) {
			return true
		}
		if st.Alternate != nil && containsReturn(st.Alternate.Stmt) {
			return true
		}
	case *ast.ForStatement:
		return st.Body != nil && containsReturn(st.Body.Stmt)
	case *ast.ForInStatement:
		return st.Body != nil && containsReturn(st.Body.Stmt)
	case *ast.WhileStatement:
		return st.Body != nil && containsReturn(st.Body.Stmt)
	case *ast.DoWhileStatement:
		return st.Body != nil && containsReturn(st.Body.Stmt)
	case *ast.TryStatement:
		if st.Body != nil {
			for _, c := range st.Body.List {
				if containsReturn(c.Stmt) {
					return true
				}
			}
		}
	case *ast.SwitchStatement:
		for _, c := range st.Body {
			for _, cs := range c.Consequent {
				if containsReturn(cs.Stmt) {
					return true
				}
			}
		}
	case *ast.LabelledStatement:
		return st.Statement != nil && containsReturn(st.Statement.Stmt)
	}
	return false
}

// matchNiladicIIFE recognizes `(function(){ ... })()` via match's combinator
// library rather than a hand-rolled type-switch: the callee capture lands
// the matched FunctionLiteral so the caller can reach its body.
func matchNiladicIIFE(e ast.Expr) (*ast.FunctionLiteral, *ast.BlockStatement) {
	callee := match.NewCapture(match.FunctionLiteral(true))
	if !match.CallExpression(callee, 0).Match(e) {
		return nil, nil
	}
	fn, ok := callee.Current.(*ast.FunctionLiteral)
	if !ok {
		return nil, nil
	}
	return fn, fn.Body
}

// matchParameterizedIIFE recognizes `(function(p1, p2, ...){ BODY })(a1, a2,
// ...)` where the function has at least one plain-identifier parameter, is
// called with exactly that many arguments, and every argument is a literal
// (jsval.IsLiteral) — the only case a single textual substitution can
// safely stand in for real call-time binding, since a non-literal argument
// might have a side effect that a multiply-referenced parameter would
// duplicate or reorder.
func matchParameterizedIIFE(e ast.Expr) (*ast.FunctionLiteral, []ast.Expr) {
	callee := match.NewCapture(match.FunctionLiteral(false))
	if !match.CallExpression(callee, -1).Match(e) {
		return nil, nil
	}
	fn, ok := callee.Current.(*ast.FunctionLiteral)
	if !ok || fn.Body == nil || fn.ParameterList == nil || len(fn.ParameterList.List) == 0 {
		return nil, nil
	}
	call := e.(*ast.CallExpression)
	if len(call.ArgumentList) != len(fn.ParameterList.List) {
		return nil, nil
	}
	args := make([]ast.Expr, len(call.ArgumentList))
	for i := range call.ArgumentList {
		a := call.ArgumentList[i].Expr
		if a == nil || !jsval.IsLiteral(a) {
			return nil, nil
		}
		args[i] = a
	}
	for _, p := range fn.ParameterList.List {
		if _, ok := p.Expr.(*ast.Identifier); !ok {
			return nil, nil
		}
	}
	return fn, args
}

// substituteParameters replaces every free read of fn's parameters inside
// fn.Body with a clone of the matching argument, and reports whether the
// substitution was safe to perform at all: if any parameter is ever the
// target of an assignment or update inside the body, the call is left
// untouched entirely rather than partially inlined, since the body
// depends on that parameter acting as a real, reassignable local.
//
// Shadowing is resolved by building a throwaway *ast.Program wrapping just
// fn.Body's statements and running traverse.BuildScope over it: a read
// that this scope resolves to *some* binding is shadowed by an inner
// declaration with the same name and is left alone; a read that resolves
// to nothing is free, and free reads are exactly the ones that meant the
// now-removed parameter.
func substituteParameters(fn *ast.FunctionLiteral, args []ast.Expr) bool {
	names := make(map[string]ast.Expr, len(fn.ParameterList.List))
	for i, p := range fn.ParameterList.List {
		id := p.Expr.(*ast.Identifier)
		names[id.Name] = args[i]
	}

	bodyProgram := &ast.Program{Body: fn.Body.List}
	safe := true
	traverse.Visit(bodyProgram, traverse.VisitorMap{
		traverse.KindIdentifier: {Exit: func(p *traverse.Path) {
			if !safe || p.Expr == nil {
				return
			}
			id, ok := p.Expr.Expr.(*ast.Identifier)
			if !ok {
				return
			}
			if _, tracked := names[id.Name]; !tracked {
				return
			}
			if p.Scope() != nil && p.Scope().Lookup(id.Name) != nil {
				return
			}
			if isLvaluePosition(p) {
				safe = false
			}
		}},
	}, traverse.Options{Scope: true})
	if !safe {
		return false
	}

	traverse.Visit(bodyProgram, traverse.VisitorMap{
		traverse.KindIdentifier: {Exit: func(p *traverse.Path) {
			id, ok := p.Expr.Expr.(*ast.Identifier)
			if !ok {
				return
			}
			val, tracked := names[id.Name]
			if !tracked {
				return
			}
			if p.Scope() != nil && p.Scope().Lookup(id.Name) != nil {
				return
			}
			p.ReplaceWith(cloneLiteral(val))
		}},
	}, traverse.Options{Scope: true})
	return true
}
