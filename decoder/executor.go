package decoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/t14raptor/go-fast/ast"
	fastgen "github.com/t14raptor/go-fast/generator"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/sandbox"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// PendingCall is one decoder call site collected for a sandboxed batch: the
// CallExpression's own Path (so Substitute can rewrite it in place) and
// the call node itself.
type PendingCall struct {
	Path *traverse.Path
	Call *ast.CallExpression
}

// PendingCalls finds every call site in scope whose callee is a tracked
// decoder name and whose arguments are all literals — the only calls
// spec.md §4.5 allows the sandboxed executor to resolve, since a
// non-constant argument can't be reproduced outside the program's own
// control flow. isCallCallee is the same locator-side helper
// LocateByCallCount uses to classify a reference as a call.
func PendingCalls(scope *traverse.Scope, names map[string]bool) []*PendingCall {
	var out []*PendingCall
	for name := range names {
		b, ok := scope.Bindings[name]
		if !ok {
			continue
		}
		for _, ref := range b.ReferencePaths {
			if !isCallCallee(ref) {
				continue
			}
			callPath := ref.Parent
			call, ok := callPath.Expr.Expr.(*ast.CallExpression)
			if !ok || !allArgsConstant(call.ArgumentList) {
				continue
			}
			out = append(out, &PendingCall{Path: callPath, Call: call})
		}
	}
	return out
}

func allArgsConstant(args []ast.Expression) bool {
	for i := range args {
		if !jsval.IsLiteral(args[i].Expr) {
			return false
		}
	}
	return true
}

// SetupCode returns the source of every top-level statement up to and
// including the last one that declares a name in names — spec.md §4.5's
// "setup code" prefix, which must run before the batch's call sites can be
// evaluated. Callers are expected to fold any rotator statements into
// names before calling this, so the rotator's own setup is captured too.
func SetupCode(program *ast.Program, names map[string]bool) string {
	lastIdx := -1
	for i := range program.Body {
		if statementDeclares(program.Body[i].Stmt, names) {
			lastIdx = i
		}
	}
	if lastIdx < 0 {
		return ""
	}
	prefix := &ast.Program{Body: program.Body[:lastIdx+1]}
	return fastgen.Generate(prefix)
}

func statementDeclares(s ast.Stmt, names map[string]bool) bool {
	switch st := s.(type) {
	case *ast.FunctionDeclaration:
		return st.Function != nil && st.Function.Name != nil && names[st.Function.Name.Name]
	case *ast.VariableDeclaration:
		for _, d := range st.List {
			if d.Target == nil {
				continue
			}
			if id, ok := d.Target.Expr.(*ast.Identifier); ok && names[id.Name] {
				return true
			}
		}
	}
	return false
}

// exprSource prints a single expression by wrapping it in a throwaway
// program statement and trimming the trailing statement terminator the
// printer adds — go-fast's generator only exposes a *ast.Program entry
// point (see the teacher's deobfuscateScript/fastgen.Generate(prog)), so
// there is no lower-level "print one expression" call to reach for.
func exprSource(expr ast.Expr) string {
	prog := &ast.Program{Body: []ast.Statement{
		{Stmt: &ast.ExpressionStatement{Expression: &ast.Expression{Expr: expr}}},
	}}
	return strings.TrimRight(fastgen.Generate(prog), "; \t\n")
}

// PrintCall renders a single pending call's source, for callers reporting
// a DecodeFailure against a call site PendingCalls found.
func PrintCall(call *ast.CallExpression) string {
	return exprSource(call)
}

// Execute runs one sandboxed batch per spec.md §5's concurrency model: the
// setup code, followed by a single wrapper expression returning an array
// of every pending call's result in order, so one Sandbox.Evaluate call
// resolves the whole batch instead of one round trip per call site.
func Execute(ctx context.Context, sb sandbox.Sandbox, setup string, pending []*PendingCall) ([]sandbox.Value, error) {
	if len(pending) == 0 {
		return nil, nil
	}
	elems := make([]ast.Expression, len(pending))
	for i, pc := range pending {
		elems[i] = ast.Expression{Expr: pc.Call}
	}
	arr := exprSource(&ast.ArrayLiteral{Value: elems})

	wrapper := fmt.Sprintf("(() => { %s\nreturn %s; })()", setup, arr)
	v, err := sb.Evaluate(ctx, wrapper)
	if err != nil {
		return nil, fmt.Errorf("decoder: sandbox batch failed: %w", err)
	}
	if v.Kind != sandbox.KindArray || len(v.Array) != len(pending) {
		return nil, fmt.Errorf("decoder: sandbox batch returned %d values, want %d", len(v.Array), len(pending))
	}
	return v.Array, nil
}
