package rewrite

import (
	"strings"

	"github.com/t14raptor/go-fast/ast"
	fastgen "github.com/t14raptor/go-fast/generator"
)

// Mark is one statement spec.md §4.4's comment marker flags for manual
// review: a `debugger` statement, a setTimeout/setInterval call, or a
// statement containing an identifier or string literal matching a
// user-supplied keyword (case-insensitive).
//
// Spec.md describes this as adding a leading `TOLOOK` source comment.
// go-fast's ast package, as established throughout this codebase (see
// DESIGN.md's decoder section), has no comment node to attach one to, so
// Marks reports findings instead of mutating the tree; the orchestrator
// logs each one through zap in place of writing the comment.
type Mark struct {
	Reason string
	Source string
}

// Marks scans program for every statement a reason applies to. Unlike the
// rewrite library's transforms this is a pure read with no fixpoint to
// reach, so it runs once, after the transform pipeline converges, using
// the same hand-rolled recursive-descent shape as deob.go's
// findAlphabetInStatement/findAlphabetInExpression rather than going
// through traverse.Visit — there is no mutation here for Path to manage,
// just a scan.
func Marks(program *ast.Program, keywords []string) []Mark {
	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}
	var out []Mark
	markStatementList(program.Body, lower, &out)
	return out
}

func markStatementList(list []ast.Statement, keywords []string, out *[]Mark) {
	for i := range list {
		markStatement(&list[i], keywords, out)
	}
}

func markStatement(stmt *ast.Statement, keywords []string, out *[]Mark) {
	if stmt == nil || stmt.Stmt == nil {
		return
	}

	if reason := statementMarkReason(stmt.Stmt, keywords); reason != "" {
		*out = append(*out, Mark{Reason: reason, Source: statementSource(stmt.Stmt)})
	}

	switch s := stmt.Stmt.(type) {
	case *ast.BlockStatement:
		markStatementList(s.List, keywords, out)
	case *ast.IfStatement:
		markStatement(s.Consequent, keywords, out)
		markStatement(s.Alternate, keywords, out)
	case *ast.ForStatement:
		markStatement(s.Body, keywords, out)
	case *ast.ForInStatement:
		markStatement(s.Body, keywords, out)
	case *ast.WhileStatement:
		markStatement(s.Body, keywords, out)
	case *ast.DoWhileStatement:
		markStatement(s.Body, keywords, out)
	case *ast.TryStatement:
		if s.Body != nil {
			markStatementList(s.Body.List, keywords, out)
		}
		if s.Catch != nil && s.Catch.Body != nil {
			markStatementList(s.Catch.Body.List, keywords, out)
		}
		if s.Finally != nil {
			markStatementList(s.Finally.List, keywords, out)
		}
	case *ast.SwitchStatement:
		for i := range s.Body {
			markStatementList(s.Body[i].Consequent, keywords, out)
		}
	case *ast.FunctionDeclaration:
		if s.Function != nil && s.Function.Body != nil {
			markStatementList(s.Function.Body.List, keywords, out)
		}
	case *ast.LabelledStatement:
		markStatement(&s.Statement, keywords, out)
	}
}

// statementMarkReason reports why stmt itself (not its nested statement
// bodies, which markStatement recurses into separately) should be marked,
// or "" if it doesn't qualify.
func statementMarkReason(s ast.Stmt, keywords []string) string {
	if _, ok := s.(*ast.DebuggerStatement); ok {
		return "debugger statement"
	}

	var found string
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil || found != "" {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			if matchesKeyword(n.Name, keywords) {
				found = "identifier matches a marked keyword"
			}
		case *ast.StringLiteral:
			if matchesKeyword(n.Value, keywords) {
				found = "string literal matches a marked keyword"
			}
		case *ast.CallExpression:
			if id, ok := n.Callee.Expr.(*ast.Identifier); ok && (id.Name == "setTimeout" || id.Name == "setInterval") {
				found = "setTimeout/setInterval call"
				return
			}
			walk(n.Callee.Expr)
			for i := range n.ArgumentList {
				walk(n.ArgumentList[i].Expr)
			}
		case *ast.MemberExpression:
			walk(n.Object.Expr)
		case *ast.BinaryExpression:
			walk(n.Left.Expr)
			walk(n.Right.Expr)
		case *ast.LogicalExpression:
			walk(n.Left.Expr)
			walk(n.Right.Expr)
		case *ast.AssignExpression:
			walk(n.Left.Expr)
			walk(n.Right.Expr)
		case *ast.UnaryExpression:
			walk(n.Operand.Expr)
		case *ast.ConditionalExpression:
			walk(n.Test.Expr)
			walk(n.Consequent.Expr)
			walk(n.Alternate.Expr)
		case *ast.SequenceExpression:
			for i := range n.Sequence {
				walk(n.Sequence[i].Expr)
			}
		case *ast.ArrayLiteral:
			for i := range n.Value {
				walk(n.Value[i].Expr)
			}
		}
	}

	switch s := s.(type) {
	case *ast.ExpressionStatement:
		walk(s.Expression.Expr)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			walk(s.Argument.Expr)
		}
	case *ast.VariableDeclaration:
		for i := range s.List {
			if s.List[i].Target != nil {
				walk(s.List[i].Target.Expr)
			}
			if s.List[i].Initializer != nil {
				walk(s.List[i].Initializer.Expr)
			}
		}
	case *ast.IfStatement:
		walk(s.Test.Expr)
	case *ast.ForStatement:
		if s.Test != nil {
			walk(s.Test.Expr)
		}
	case *ast.WhileStatement:
		walk(s.Test.Expr)
	case *ast.ThrowStatement:
		if s.Argument != nil {
			walk(s.Argument.Expr)
		}
	}
	return found
}

func matchesKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func statementSource(s ast.Stmt) string {
	return strings.TrimSpace(fastgen.Generate(&ast.Program{Body: []ast.Statement{{Stmt: s}}}))
}
