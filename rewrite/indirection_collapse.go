package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// DefaultIndirectionDepth is spec.md §4.4's "configurable depth (default 2
// passes)" for IndirectionCollapse.
const DefaultIndirectionDepth = 2

// indirectionWrapper is one recognized `function W(p1, ..., pn) { return
// F(expr(p1, ..., pn)); }` declaration: Params names the parameters in
// declaration order, Template is the `F(expr(...))` call still written in
// terms of those parameter names, and Binding identifies exactly which
// declaration a call-site identifier must resolve to before it's treated
// as a reference to this wrapper (the same same-name-different-scope
// guard ConstantInline's trackConstant/live table uses).
type indirectionWrapper struct {
	Binding  *traverse.Binding
	Params   []string
	Template *ast.CallExpression
}

// IndirectionCollapse inlines nested one-line call wrappers: a function
// whose entire body is `return F(expr(p1, ..., pn));` is, at every call
// site `W(a1, ..., an)`, replaced by a fresh clone of F(expr(...)) with
// each parameter substituted by its matching actual argument. Only
// call-site arguments that are themselves literal or a plain identifier
// are substituted, SelfInvoke's literal-only argument restriction widened
// to plain identifiers — anything more complex might carry a
// side effect that duplicating into expr's multiple parameter references
// would reorder or repeat.
//
// decoderNames lists functions the caller already treats as designated
// decoder entry points (see applyDesignatedDecoderRenaming); a wrapper
// around one of those is left alone; inlining through it would erase the
// very call site the decoder locator is looking for.
//
// depth bounds how many times the whole program is rescanned for newly-
// exposed wrapper calls, so a wrapper-of-a-wrapper (W1 calling W2 calling
// the real F) collapses one layer per scan rather than needing a single
// pass to see through both at once. depth<=0 uses DefaultIndirectionDepth.
func IndirectionCollapse(depth int, decoderNames map[string]bool) transform.Transform {
	if depth <= 0 {
		depth = DefaultIndirectionDepth
	}
	return transform.Transform{
		Name:       "indirection-collapse",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			for i := 0; i < depth; i++ {
				if collapseIndirectionPass(state, program, decoderNames) == 0 {
					break
				}
			}
			return traverse.VisitorMap{}
		},
	}
}

// collapseIndirectionPass runs one full scan-and-substitute round and
// returns how many call sites it rewrote. It rebuilds scope from scratch
// every round (traverse.BuildScope), the same whole-program-first shape
// UnusedDecl and the decoder locators use, since a call site exposed by
// the previous round's substitution wasn't visible to the round before.
func collapseIndirectionPass(state *transform.State, program *ast.Program, decoderNames map[string]bool) int {
	sc := traverse.BuildScope(program)
	wrappers := map[string]*indirectionWrapper{}
	for _, b := range sc.Bindings {
		if b.Kind != traverse.BindingFunction || b.Function == nil || decoderNames[b.Name] {
			continue
		}
		params, tmpl := matchIndirectionWrapper(b.Function)
		if tmpl == nil {
			continue
		}
		wrappers[b.Name] = &indirectionWrapper{Binding: b, Params: params, Template: tmpl}
	}
	if len(wrappers) == 0 {
		return 0
	}

	before := state.Changes
	traverse.Visit(program, traverse.VisitorMap{
		traverse.KindCallExpression: {Exit: func(p *traverse.Path) {
			call, ok := p.Expr.Expr.(*ast.CallExpression)
			if !ok || call.Callee == nil {
				return
			}
			id, ok := call.Callee.Expr.(*ast.Identifier)
			if !ok {
				return
			}
			w, ok := wrappers[id.Name]
			if !ok || len(call.ArgumentList) != len(w.Params) {
				return
			}
			if p.Scope() == nil || p.Scope().Lookup(id.Name) != w.Binding {
				return
			}
			bindings := make(map[string]ast.Expr, len(w.Params))
			for i, name := range w.Params {
				arg := call.ArgumentList[i].Expr
				if arg == nil {
					return
				}
				if _, isID := identifierName(arg); !isID && !jsval.IsLiteral(arg) {
					return
				}
				bindings[name] = arg
			}
			cloned := cloneExprTree(w.Template, bindings)
			if cloned == nil {
				return
			}
			p.ReplaceWith(cloned)
			state.Changes++
		}},
	}, traverse.Options{Scope: true})
	return state.Changes - before
}

// matchIndirectionWrapper recognizes fn's body as exactly one `return
// F(...);` statement and reports its parameter names (in order, only
// when every parameter is a plain identifier) plus the call expression
// itself as the substitution template.
func matchIndirectionWrapper(fn *ast.FunctionLiteral) ([]string, *ast.CallExpression) {
	if fn.Body == nil || len(fn.Body.List) != 1 || fn.ParameterList == nil || len(fn.ParameterList.List) == 0 {
		return nil, nil
	}
	ret, ok := fn.Body.List[0].Stmt.(*ast.ReturnStatement)
	if !ok || ret.Argument == nil {
		return nil, nil
	}
	call, ok := ret.Argument.Expr.(*ast.CallExpression)
	if !ok {
		return nil, nil
	}
	params := make([]string, len(fn.ParameterList.List))
	for i, p := range fn.ParameterList.List {
		id, ok := p.Expr.(*ast.Identifier)
		if !ok {
			return nil, nil
		}
		params[i] = id.Name
	}
	return params, call
}

// cloneExprTree deep-clones e, substituting any Identifier whose name is a
// key of bindings with a fresh clone of the bound actual argument instead
// of the parameter reference. Coverage is bounded to the expression kinds
// a one-line call-wrapper body realistically contains (literals,
// identifiers, calls, member access, unary/binary/logical/conditional
// operators, array literals); an unrecognized kind returns nil, which
// vetoes the whole substitution rather than risk silently dropping a
// subexpression the generator would then print as missing.
func cloneExprTree(e ast.Expr, bindings map[string]ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.Identifier:
		if repl, ok := bindings[v.Name]; ok {
			return cloneExprTree(repl, nil)
		}
		return &ast.Identifier{Name: v.Name}
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return cloneLiteral(e)
	case *ast.ArrayLiteral:
		out := make([]ast.Expression, len(v.Value))
		for i := range v.Value {
			if v.Value[i].Expr != nil {
				out[i] = ast.Expression{Expr: cloneExprTree(v.Value[i].Expr, bindings)}
			}
		}
		return &ast.ArrayLiteral{Value: out}
	case *ast.CallExpression:
		callee := cloneExprField(v.Callee, bindings)
		if callee == nil {
			return nil
		}
		args := make([]ast.Expression, len(v.ArgumentList))
		for i := range v.ArgumentList {
			if v.ArgumentList[i].Expr == nil {
				return nil
			}
			args[i] = ast.Expression{Expr: cloneExprTree(v.ArgumentList[i].Expr, bindings)}
		}
		return &ast.CallExpression{Callee: callee, ArgumentList: args}
	case *ast.MemberExpression:
		obj := cloneExprField(v.Object, bindings)
		prop := cloneMemberProperty(v.Property, bindings)
		if obj == nil || prop == nil {
			return nil
		}
		return &ast.MemberExpression{Object: obj, Property: prop}
	case *ast.BinaryExpression:
		left, right := cloneExprField(v.Left, bindings), cloneExprField(v.Right, bindings)
		if left == nil || right == nil {
			return nil
		}
		return &ast.BinaryExpression{Left: left, Right: right, Operator: v.Operator}
	case *ast.LogicalExpression:
		left, right := cloneExprField(v.Left, bindings), cloneExprField(v.Right, bindings)
		if left == nil || right == nil {
			return nil
		}
		return &ast.LogicalExpression{Left: left, Right: right, Operator: v.Operator}
	case *ast.UnaryExpression:
		operand := cloneExprField(v.Operand, bindings)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpression{Operand: operand, Operator: v.Operator}
	case *ast.ConditionalExpression:
		test, cons, alt := cloneExprField(v.Test, bindings), cloneExprField(v.Consequent, bindings), cloneExprField(v.Alternate, bindings)
		if test == nil || cons == nil || alt == nil {
			return nil
		}
		return &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}
	default:
		return nil
	}
}

func cloneExprField(e *ast.Expression, bindings map[string]ast.Expr) *ast.Expression {
	if e == nil {
		return nil
	}
	cloned := cloneExprTree(e.Expr, bindings)
	if cloned == nil {
		return nil
	}
	return &ast.Expression{Expr: cloned}
}

func cloneMemberProperty(mp *ast.MemberProperty, bindings map[string]ast.Expr) *ast.MemberProperty {
	if mp == nil {
		return nil
	}
	switch p := mp.Prop.(type) {
	case *ast.Identifier:
		return &ast.MemberProperty{Prop: &ast.Identifier{Name: p.Name}}
	case *ast.ComputedProperty:
		expr := cloneExprField(p.Expr, bindings)
		if expr == nil {
			return nil
		}
		return &ast.MemberProperty{Prop: &ast.ComputedProperty{Expr: expr}}
	default:
		return nil
	}
}
