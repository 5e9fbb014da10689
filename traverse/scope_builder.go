package traverse

import (
	"github.com/t14raptor/go-fast/ast"
)

// declareDirect registers every binding a statement list introduces at its
// own level: let/const/var declarators, function declarations, class
// declarations. It does not recurse into nested statements — that is
// hoistVars' job, and only for `var`.
func declareDirect(scope *Scope, stmts []ast.Statement) {
	for i := range stmts {
		declareOne(scope, stmts[i].Stmt)
	}
}

func declareOne(scope *Scope, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		kind := bindingKindFromToken(st.Token.String())
		for _, d := range st.List {
			if d.Target == nil {
				continue
			}
			if id, ok := d.Target.Target.(*ast.Identifier); ok {
				scope.declareWithInit(id.Name, kind, id, d.Initializer)
			}
		}
	case *ast.FunctionDeclaration:
		if st.Function != nil && st.Function.Name != nil {
			b := scope.declare(st.Function.Name.Name, BindingFunction, st.Function.Name)
			b.Function = st.Function
		}
	case *ast.ClassDeclaration:
		if st.Class != nil && st.Class.Name != nil {
			scope.declare(st.Class.Name.Name, BindingClass, st.Class.Name)
		}
	default:
	}
}

// hoistVars recursively collects `var` declarations and function
// declarations reachable from stmts without crossing a function boundary,
// the way JS hoists them to the nearest enclosing function/program scope.
// let/const are deliberately not collected here: they stay block scoped
// and are declared by declareDirect at the block that actually holds them.
func hoistVars(scope *Scope, stmts []ast.Statement) {
	for i := range stmts {
		hoistVarsFromStatement(scope, stmts[i].Stmt)
	}
}

func hoistVarsFromStatement(scope *Scope, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		if bindingKindFromToken(st.Token.String()) != BindingVar {
			return
		}
		for _, d := range st.List {
			if d.Target == nil {
				continue
			}
			if id, ok := d.Target.Target.(*ast.Identifier); ok {
				scope.declareWithInit(id.Name, BindingVar, id, d.Initializer)
			}
		}
	case *ast.FunctionDeclaration:
		if st.Function != nil && st.Function.Name != nil {
			scope.declare(st.Function.Name.Name, BindingFunction, st.Function.Name)
		}
	case *ast.BlockStatement:
		hoistVars(scope, st.List)
	case *ast.IfStatement:
		if st.Consequent != nil {
			hoistVarsFromStatement(scope, st.Consequent.Stmt)
		}
		if st.Alternate != nil {
			hoistVarsFromStatement(scope, st.Alternate.Stmt)
		}
	case *ast.ForStatement:
		if st.Body != nil {
			hoistVarsFromStatement(scope, st.Body.Stmt)
		}
	case *ast.ForInStatement:
		if st.Body != nil {
			hoistVarsFromStatement(scope, st.Body.Stmt)
		}
	case *ast.WhileStatement:
		if st.Body != nil {
			hoistVarsFromStatement(scope, st.Body.Stmt)
		}
	case *ast.DoWhileStatement:
		if st.Body != nil {
			hoistVarsFromStatement(scope, st.Body.Stmt)
		}
	case *ast.TryStatement:
		if st.Body != nil {
			hoistVars(scope, st.Body.List)
		}
		if st.Catch != nil && st.Catch.Body != nil {
			hoistVars(scope, st.Catch.Body.List)
		}
		if st.Finally != nil {
			hoistVars(scope, st.Finally.List)
		}
	case *ast.SwitchStatement:
		for _, c := range st.Body {
			hoistVars(scope, c.Consequent)
		}
	case *ast.LabelledStatement:
		if st.Statement != nil {
			hoistVarsFromStatement(scope, st.Statement.Stmt)
		}
	default:
	}
}

// hoist prepares a function/program scope: var/function hoisting across
// its whole body, plus the let/const/function/class declared directly at
// its top level.
func hoist(scope *Scope, stmts []ast.Statement, isFunctionScope bool) {
	if isFunctionScope {
		hoistVars(scope, stmts)
	}
	declareDirect(scope, stmts)
}

func bindingKindFromToken(tok string) BindingKind {
	switch tok {
	case "let":
		return BindingLet
	case "const":
		return BindingConst
	default:
		return BindingVar
	}
}

// declareParams registers a function's parameters as BindingParam entries,
// covering plain identifiers, defaulted parameters (`a = 1`), and rest
// parameters (`...rest`). Destructuring parameter patterns are not
// resolved to individual names; they are skipped rather than guessed.
func declareParams(scope *Scope, params *ast.ParameterList) {
	if params == nil {
		return
	}
	for i := range params.List {
		declareParamTarget(scope, &params.List[i])
	}
	if params.Rest != nil {
		if id, ok := params.Rest.(*ast.Identifier); ok {
			scope.declare(id.Name, BindingParam, id)
		}
	}
}

func declareParamTarget(scope *Scope, d *ast.VariableDeclarator) {
	if d == nil || d.Target == nil {
		return
	}
	if id, ok := d.Target.Target.(*ast.Identifier); ok {
		scope.declare(id.Name, BindingParam, id)
	}
}
