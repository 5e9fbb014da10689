package rewrite

import (
	"strings"

	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// ControlFlowUnflatten undoes spec.md §4.4's switch-dispatch flattening
// idiom: a declarator splitting an alphabet string into an `order` array,
// a counter starting at 0, and a `while (true)`/`for (;;)` loop whose
// body opens with `switch (order[counter++])`, with each case a
// string-literal step of the original control flow ending in `continue`
// (the step that closes the loop instead ends in `break`). Reordering the
// cases by the split alphabet and splicing their bodies in sequence
// reconstructs the statements in their original order.
//
// Unlike every other transform in this package, this one doesn't dispatch
// through a traverse.VisitorMap: it needs to look sideways across sibling
// statements (the alphabet declarator, the counter declarator, and the
// loop are three separate statements in the same list) and splice a
// variable-length replacement into the middle of that list, neither of
// which traverse.Path's single-statement Enter/Exit callbacks are built
// for. Instead it walks program.Body and every nested statement list by
// hand, the same manual-recursion shape the teacher's own
// findAlphabetInStatement/findAlphabetInBlockStatement use, and mutates
// each list directly — safe here only because there is no traverse.Visit
// pass underneath consuming Path actions concurrently.
func ControlFlowUnflatten() transform.Transform {
	return transform.Transform{
		Name:       "control-flow-unflatten",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			unflattenStatementList(&program.Body, state)
			return traverse.VisitorMap{}
		},
	}
}

// unflattenStatementList rewrites every flattening idiom found directly
// in list, then descends into each statement's nested lists (block
// bodies, if/loop/try/switch bodies, function declaration bodies).
// Descending first would miss an idiom whose loop sits in list itself
// after a rewrite changes a nested list's indices, so this processes
// list's own idioms to a local fixpoint before recursing.
func unflattenStatementList(list *[]ast.Statement, state *transform.State) {
	for unflattenOnce(list, state) {
	}
	for i := range *list {
		recurseIntoNestedLists(&(*list)[i], state)
	}
}

func recurseIntoNestedLists(s *ast.Statement, state *transform.State) {
	if s == nil || s.Stmt == nil {
		return
	}
	switch st := s.Stmt.(type) {
	case *ast.BlockStatement:
		unflattenStatementList(&st.List, state)
	case *ast.IfStatement:
		recurseIntoNestedLists(st.Consequent, state)
		recurseIntoNestedLists(st.Alternate, state)
	case *ast.ForStatement:
		recurseIntoNestedLists(st.Body, state)
	case *ast.ForInStatement:
		recurseIntoNestedLists(st.Body, state)
	case *ast.WhileStatement:
		recurseIntoNestedLists(st.Body, state)
	case *ast.DoWhileStatement:
		recurseIntoNestedLists(st.Body, state)
	case *ast.TryStatement:
		if st.Body != nil {
			unflattenStatementList(&st.Body.List, state)
		}
		if st.Catch != nil && st.Catch.Body != nil {
			unflattenStatementList(&st.Catch.Body.List, state)
		}
		if st.Finally != nil {
			unflattenStatementList(&st.Finally.List, state)
		}
	case *ast.SwitchStatement:
		for i := range st.Body {
			unflattenStatementList(&st.Body[i].Consequent, state)
		}
	case *ast.FunctionDeclaration:
		if st.Function != nil && st.Function.Body != nil {
			unflattenStatementList(&st.Function.Body.List, state)
		}
	case *ast.LabelledStatement:
		recurseIntoNestedLists(st.Statement, state)
	}
}

// unflattenOnce finds and rewrites at most one occurrence of the
// flattening idiom in list, reporting whether it made a change.
func unflattenOnce(list *[]ast.Statement, state *transform.State) bool {
	loopIdx, sw := findDispatchLoop(*list)
	if loopIdx < 0 {
		return false
	}
	orderName, counterName, ok := matchDispatchDiscriminant(sw.Discriminant)
	if !ok {
		return false
	}
	declIdx, declaratorIdx, alphabet, ok := findAlphabetDeclarator(*list, orderName)
	if !ok {
		return false
	}
	if _, _, ok := findCounterDeclarator(*list, counterName); !ok {
		return false
	}
	cases, ok := extractFlattenCases(sw.Body)
	if !ok {
		return false
	}

	byValue := map[string]flattenCase{}
	var defaultCase *flattenCase
	for i := range cases {
		c := cases[i]
		if c.isDefault {
			dc := c
			defaultCase = &dc
			continue
		}
		byValue[c.value] = c
	}

	var outStmts []ast.Statement
	for _, val := range alphabet {
		fc, ok := byValue[val]
		if !ok || len(fc.content) == 0 {
			continue // no matching case, or "drop cases whose only body is continue"
		}
		outStmts = append(outStmts, fc.content...)
	}
	if defaultCase != nil && len(defaultCase.content) > 0 {
		outStmts = append(outStmts, defaultCase.content...)
	}

	newList := make([]ast.Statement, 0, len(*list)+len(outStmts))
	for i, s := range *list {
		switch i {
		case declIdx:
			if rebuilt, keep := dropDeclarator(s, declaratorIdx); keep {
				newList = append(newList, rebuilt)
			}
		case loopIdx:
			newList = append(newList, outStmts...)
		default:
			newList = append(newList, s)
		}
	}
	*list = newList
	state.Changes++
	return true
}

// flattenCase is one switch case's recognized shape: the string value it
// dispatches on (meaningless when isDefault), and its body with the
// trailing continue/break already stripped.
type flattenCase struct {
	value     string
	isDefault bool
	content   []ast.Statement
}

// isInfiniteLoop reports whether s is `while (true) { ... }` or a bare
// `for (;;) { ... }`, returning the loop's block body.
func isInfiniteLoop(s ast.Stmt) (*ast.BlockStatement, bool) {
	switch st := s.(type) {
	case *ast.WhileStatement:
		if st.Test == nil {
			return nil, false
		}
		b, ok := st.Test.Expr.(*ast.BooleanLiteral)
		if !ok || !b.Value || st.Body == nil {
			return nil, false
		}
		block, ok := st.Body.Stmt.(*ast.BlockStatement)
		return block, ok
	case *ast.ForStatement:
		if st.Initializer != nil || st.Test != nil || st.Update != nil || st.Body == nil {
			return nil, false
		}
		block, ok := st.Body.Stmt.(*ast.BlockStatement)
		return block, ok
	default:
		return nil, false
	}
}

// findDispatchLoop looks for a statement in list matching isInfiniteLoop
// whose body opens with a switch, and returns its index and the switch
// itself. Whatever follows the switch in the loop body (typically a bare
// `break;`, there only to exit the loop once the terminal case's own
// `break` falls out of the switch) is part of the loop statement being
// replaced wholesale, so it isn't inspected separately.
func findDispatchLoop(list []ast.Statement) (int, *ast.SwitchStatement) {
	for i := range list {
		block, ok := isInfiniteLoop(list[i].Stmt)
		if !ok || len(block.List) == 0 {
			continue
		}
		sw, ok := block.List[0].Stmt.(*ast.SwitchStatement)
		if !ok || sw.Discriminant == nil {
			continue
		}
		return i, sw
	}
	return -1, nil
}

// matchDispatchDiscriminant recognizes `order[counter++]` exactly: a
// computed member access whose object is a plain identifier and whose
// property is a postfix-incremented plain identifier.
func matchDispatchDiscriminant(e *ast.Expression) (orderName, counterName string, ok bool) {
	if e == nil {
		return "", "", false
	}
	mem, ok := e.Expr.(*ast.MemberExpression)
	if !ok || mem.Object == nil || mem.Property == nil {
		return "", "", false
	}
	orderID, ok := mem.Object.Expr.(*ast.Identifier)
	if !ok {
		return "", "", false
	}
	cp, ok := mem.Property.Prop.(*ast.ComputedProperty)
	if !ok || cp.Expr == nil {
		return "", "", false
	}
	up, ok := cp.Expr.Expr.(*ast.UpdateExpression)
	if !ok || up.Operator.String() != "++" || up.Operand == nil {
		return "", "", false
	}
	counterID, ok := up.Operand.Expr.(*ast.Identifier)
	if !ok {
		return "", "", false
	}
	return orderID.Name, counterID.Name, true
}

// matchAlphabetSplit recognizes `"A|B|C".split("|")` (any string and any
// separator) and returns the split result.
func matchAlphabetSplit(e ast.Expr) ([]string, bool) {
	call, ok := e.(*ast.CallExpression)
	if !ok || call.Callee == nil || len(call.ArgumentList) != 1 {
		return nil, false
	}
	mem, ok := call.Callee.Expr.(*ast.MemberExpression)
	if !ok || mem.Object == nil {
		return nil, false
	}
	name, ok := jsval.MemberPropName(mem.Property)
	if !ok || name != "split" {
		return nil, false
	}
	str, ok := mem.Object.Expr.(*ast.StringLiteral)
	if !ok {
		return nil, false
	}
	sep, ok := call.ArgumentList[0].Expr.(*ast.StringLiteral)
	if !ok {
		return nil, false
	}
	return strings.Split(str.Value, sep.Value), true
}

// findAlphabetDeclarator looks for a VariableDeclarator anywhere in list
// that binds orderName to an alphabet-split call, returning its enclosing
// statement's index in list, its own index within that declaration, and
// the split alphabet.
func findAlphabetDeclarator(list []ast.Statement, orderName string) (declIdx, declaratorIdx int, alphabet []string, ok bool) {
	for i, s := range list {
		decl, isDecl := s.Stmt.(*ast.VariableDeclaration)
		if !isDecl {
			continue
		}
		for j, d := range decl.List {
			if d == nil || d.Target == nil || d.Initializer == nil {
				continue
			}
			id, isID := d.Target.Expr.(*ast.Identifier)
			if !isID || id.Name != orderName {
				continue
			}
			if a, matched := matchAlphabetSplit(d.Initializer.Expr); matched {
				return i, j, a, true
			}
		}
	}
	return 0, 0, nil, false
}

// findCounterDeclarator looks for a VariableDeclarator anywhere in list
// that binds counterName to the number literal 0.
func findCounterDeclarator(list []ast.Statement, counterName string) (declIdx, declaratorIdx int, ok bool) {
	for i, s := range list {
		decl, isDecl := s.Stmt.(*ast.VariableDeclaration)
		if !isDecl {
			continue
		}
		for j, d := range decl.List {
			if d == nil || d.Target == nil || d.Initializer == nil {
				continue
			}
			id, isID := d.Target.Expr.(*ast.Identifier)
			if !isID || id.Name != counterName {
				continue
			}
			n, isNum := d.Initializer.Expr.(*ast.NumberLiteral)
			if isNum && n.Value == 0 {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// extractFlattenCases validates every switch case has a string-literal
// (or default) test and a body ending in a bare continue/break, and
// returns each case with that trailing statement stripped.
func extractFlattenCases(body []ast.CaseStatement) ([]flattenCase, bool) {
	out := make([]flattenCase, 0, len(body))
	for i := range body {
		c := &body[i]
		isDefault := c.Test == nil
		var value string
		if !isDefault {
			str, ok := c.Test.Expr.(*ast.StringLiteral)
			if !ok {
				return nil, false
			}
			value = str.Value
		}
		content, ok := stripTrailingControl(c.Consequent)
		if !ok {
			return nil, false
		}
		out = append(out, flattenCase{value: value, isDefault: isDefault, content: content})
	}
	return out, true
}

// stripTrailingControl requires list's last statement to be a bare
// continue or break and returns list with it removed.
func stripTrailingControl(list []ast.Statement) ([]ast.Statement, bool) {
	if len(list) == 0 {
		return nil, false
	}
	switch list[len(list)-1].Stmt.(type) {
	case *ast.ContinueStatement, *ast.BreakStatement:
		return list[:len(list)-1], true
	default:
		return nil, false
	}
}

// dropDeclarator removes declarator index idx from s (a
// VariableDeclaration) in place and reports whether the declaration still
// has any declarators left to keep as its own statement.
func dropDeclarator(s ast.Statement, idx int) (ast.Statement, bool) {
	decl, ok := s.Stmt.(*ast.VariableDeclaration)
	if !ok {
		return s, true
	}
	kept := make([]*ast.VariableDeclarator, 0, len(decl.List)-1)
	for i, d := range decl.List {
		if i == idx {
			continue
		}
		kept = append(kept, d)
	}
	decl.List = kept
	return s, len(decl.List) > 0
}
