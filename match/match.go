// Package match implements a small combinator library for declarative AST
// pattern matching with capture slots, in the spirit of the ad-hoc
// type-switch matching the teacher repo hand-rolls in
// visitors/deob.go (captureNumericObjectMap, literalKeyName, and friends):
// this package gives the rewrite library the same shape of match, but
// composable and reusable across transforms instead of written out fresh
// for every call site.
//
// Matchers are pure: Match never mutates the node it inspects. Capture
// slots are the only mutable state, and they only ever move forward
// (populated on a successful match, left alone otherwise).
package match

import (
	"github.com/t14raptor/go-fast/ast"
)

// Matcher matches a single AST node (an ast.Expr, ast.Stmt, or a concrete
// node type depending on what it was built for).
type Matcher interface {
	Match(node any) bool
}

type matcherFunc func(node any) bool

func (f matcherFunc) Match(node any) bool { return f(node) }

// Anything matches any non-nil node.
func Anything() Matcher {
	return matcherFunc(func(node any) bool {
		return !isNilNode(node)
	})
}

// Or matches if any of the given matchers match.
func Or(ms ...Matcher) Matcher {
	return matcherFunc(func(node any) bool {
		for _, m := range ms {
			if m.Match(node) {
				return true
			}
		}
		return false
	})
}

// And matches if every given matcher matches.
func And(ms ...Matcher) Matcher {
	return matcherFunc(func(node any) bool {
		for _, m := range ms {
			if !m.Match(node) {
				return false
			}
		}
		return true
	})
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return matcherFunc(func(node any) bool {
		return !m.Match(node)
	})
}

// Literal matches any literal expression (string/number/boolean/null).
// If v is non-nil, it additionally requires the literal's Go value to
// equal v.
func Literal(v any) Matcher {
	return matcherFunc(func(node any) bool {
		expr := asExpr(node)
		if expr == nil {
			return false
		}
		switch lit := expr.(type) {
		case *ast.StringLiteral:
			return v == nil || v == lit.Value
		case *ast.NumberLiteral:
			return v == nil || v == lit.Value
		case *ast.BooleanLiteral:
			return v == nil || v == lit.Value
		case *ast.NullLiteral:
			return v == nil
		default:
			return false
		}
	})
}

// Identifier matches an *ast.Identifier, optionally constrained to a name.
func Identifier(name string) Matcher {
	return matcherFunc(func(node any) bool {
		id, ok := asExpr(node).(*ast.Identifier)
		if !ok {
			return false
		}
		return name == "" || id.Name == name
	})
}

// MemberExpression matches an *ast.MemberExpression whose object and
// (optional) static property name satisfy the given sub-matchers.
func MemberExpression(obj Matcher, propName string) Matcher {
	return matcherFunc(func(node any) bool {
		mem, ok := asExpr(node).(*ast.MemberExpression)
		if !ok {
			return false
		}
		if obj != nil && mem.Object != nil && !obj.Match(mem.Object.Expr) {
			return false
		}
		if propName == "" {
			return true
		}
		name, ok := memberPropName(mem.Property)
		return ok && name == propName
	})
}

// CallExpression matches an *ast.CallExpression whose callee matches
// callee, and, when argc >= 0, whose argument count equals argc exactly.
func CallExpression(callee Matcher, argc int) Matcher {
	return matcherFunc(func(node any) bool {
		call, ok := asExpr(node).(*ast.CallExpression)
		if !ok {
			return false
		}
		if callee != nil && call.Callee != nil && !callee.Match(call.Callee.Expr) {
			return false
		}
		if argc >= 0 && len(call.ArgumentList) != argc {
			return false
		}
		return true
	})
}

// FunctionLiteral matches an *ast.FunctionLiteral. When niladic is true it
// additionally requires the function to take no parameters.
func FunctionLiteral(niladic bool) Matcher {
	return matcherFunc(func(node any) bool {
		fn, ok := asExpr(node).(*ast.FunctionLiteral)
		if !ok || fn.Body == nil {
			return false
		}
		if niladic && fn.ParameterList != nil && len(fn.ParameterList.List) != 0 {
			return false
		}
		return true
	})
}

// SequenceExpression matches an *ast.SequenceExpression. When minLen >= 0 it
// additionally requires at least that many elements.
func SequenceExpression(minLen int) Matcher {
	return matcherFunc(func(node any) bool {
		seq, ok := asExpr(node).(*ast.SequenceExpression)
		if !ok {
			return false
		}
		return minLen < 0 || len(seq.Sequence) >= minLen
	})
}

// VariableDeclaration matches an *ast.VariableDeclaration, optionally
// constrained to a declaration kind ("var"/"let"/"const").
func VariableDeclaration(kind string) Matcher {
	return matcherFunc(func(node any) bool {
		decl, ok := asStmt(node).(*ast.VariableDeclaration)
		if !ok {
			return false
		}
		return kind == "" || decl.Token.String() == kind
	})
}

// VariableDeclarator matches an *ast.VariableDeclarator whose target and
// initializer satisfy the given sub-matchers (nil sub-matcher = don't care).
func VariableDeclarator(target, init Matcher) Matcher {
	return matcherFunc(func(node any) bool {
		d, ok := node.(*ast.VariableDeclarator)
		if !ok {
			return false
		}
		if target != nil {
			var targetExpr ast.Expr
			if d.Target != nil {
				targetExpr = d.Target.Expr
			}
			if !target.Match(targetExpr) {
				return false
			}
		}
		if init != nil {
			var initExpr ast.Expr
			if d.Initializer != nil {
				initExpr = d.Initializer.Expr
			}
			if !init.Match(initExpr) {
				return false
			}
		}
		return true
	})
}

// ForInStatement matches an *ast.ForInStatement whose source matches src
// (nil = don't care).
func ForInStatement(src Matcher) Matcher {
	return matcherFunc(func(node any) bool {
		f, ok := asStmt(node).(*ast.ForInStatement)
		if !ok {
			return false
		}
		if src == nil {
			return true
		}
		var srcExpr ast.Expr
		if f.Source != nil {
			srcExpr = f.Source.Expr
		}
		return src.Match(srcExpr)
	})
}

// Capture wraps inner and records the last node it successfully matched in
// Current, so a caller can retrieve it after a successful Match on an
// enclosing pattern.
type Capture struct {
	inner   Matcher
	Current any
}

func NewCapture(inner Matcher) *Capture {
	return &Capture{inner: inner}
}

func (c *Capture) Match(node any) bool {
	if c.inner != nil && !c.inner.Match(node) {
		return false
	}
	c.Current = node
	return true
}

// helpers

func isNilNode(node any) bool {
	switch v := node.(type) {
	case nil:
		return true
	case ast.Expr:
		return v == nil
	case ast.Stmt:
		return v == nil
	default:
		return false
	}
}

// asExpr accepts either an ast.Expr directly or an *ast.Expression wrapper,
// since matchers are sometimes handed the wrapper and sometimes the bare
// union value depending on call site.
func asExpr(node any) ast.Expr {
	switch v := node.(type) {
	case ast.Expr:
		return v
	case *ast.Expression:
		if v == nil {
			return nil
		}
		return v.Expr
	default:
		return nil
	}
}

func asStmt(node any) ast.Stmt {
	switch v := node.(type) {
	case ast.Stmt:
		return v
	case *ast.Statement:
		if v == nil {
			return nil
		}
		return v.Stmt
	default:
		return nil
	}
}

func memberPropName(mp *ast.MemberProperty) (string, bool) {
	if mp == nil || mp.Prop == nil {
		return "", false
	}
	switch p := mp.Prop.(type) {
	case *ast.Identifier:
		return p.Name, true
	case *ast.ComputedProperty:
		if p.Expr == nil {
			return "", false
		}
		if str, ok := p.Expr.Expr.(*ast.StringLiteral); ok {
			return str.Value, true
		}
		return "", false
	default:
		return "", false
	}
}
