package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/internal/jsval"
)

func evalExpr(x ast.Expr, e *env) (any, error) {
	if err := checkCtx(e); err != nil {
		return nil, err
	}
	switch n := x.(type) {
	case *ast.StringLiteral:
		return n.Value, nil
	case *ast.NumberLiteral:
		return n.Value, nil
	case *ast.BooleanLiteral:
		return n.Value, nil
	case *ast.NullLiteral:
		return jsNull{}, nil

	case *ast.Identifier:
		if n.Name == "undefined" {
			return nil, nil
		}
		if v, ok := e.get(n.Name); ok {
			return v, nil
		}
		if b, ok := globalBuiltin(n.Name); ok {
			return b, nil
		}
		return nil, fmt.Errorf("sandbox: %s is not defined", n.Name)

	case *ast.ArrayLiteral:
		out := make([]any, len(n.Value))
		for i := range n.Value {
			v, err := evalExpr(n.Value[i].Expr, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return &out, nil

	case *ast.ObjectLiteral:
		out := map[string]any{}
		for _, prop := range n.Value {
			kp, ok := prop.Prop.(*ast.PropertyKeyed)
			if !ok || kp.Value == nil {
				continue
			}
			name, ok := jsval.LiteralKeyName(kp.Key)
			if !ok {
				continue
			}
			v, err := evalExpr(kp.Value.Expr, e)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil

	case *ast.SequenceExpression:
		var v any
		for i := range n.Sequence {
			var err error
			v, err = evalExpr(n.Sequence[i].Expr, e)
			if err != nil {
				return nil, err
			}
		}
		return v, nil

	case *ast.UnaryExpression:
		return evalUnary(n, e)

	case *ast.UpdateExpression:
		return evalUpdate(n, e)

	case *ast.BinaryExpression:
		return evalBinary(n, e)

	case *ast.LogicalExpression:
		return evalLogical(n, e)

	case *ast.ConditionalExpression:
		test, err := evalExpr(n.Test.Expr, e)
		if err != nil {
			return nil, err
		}
		if toBool(test) {
			return evalExpr(n.Consequent.Expr, e)
		}
		return evalExpr(n.Alternate.Expr, e)

	case *ast.AssignExpression:
		return evalAssign(n, e)

	case *ast.FunctionLiteral:
		return &jsFunction{params: paramExprs(n.ParameterList), body: n.Body, env: e, name: identOr(n.Name, "")}, nil

	case *ast.ArrowFunctionLiteral:
		return &jsFunction{params: paramExprs(n.ParameterList), body: n.Body, env: e, name: "<anonymous>"}, nil

	case *ast.MemberExpression:
		obj, err := evalExpr(n.Object.Expr, e)
		if err != nil {
			return nil, err
		}
		key, err := memberKey(n, e)
		if err != nil {
			return nil, err
		}
		return memberGet(obj, key)

	case *ast.CallExpression:
		return evalCall(n, e)

	default:
		return nil, fmt.Errorf("sandbox: unsupported expression %T", x)
	}
}

func identOr(id *ast.Identifier, fallback string) string {
	if id == nil {
		return fallback
	}
	return id.Name
}

func memberKey(n *ast.MemberExpression, e *env) (string, error) {
	if n.Property == nil {
		return "", fmt.Errorf("sandbox: member access with no property")
	}
	switch prop := n.Property.Prop.(type) {
	case *ast.Identifier:
		return prop.Name, nil
	case *ast.ComputedProperty:
		v, err := evalExpr(prop.Expr.Expr, e)
		if err != nil {
			return "", err
		}
		return toStr(v), nil
	default:
		return "", fmt.Errorf("sandbox: unsupported member property %T", prop)
	}
}

func memberGet(obj any, key string) (any, error) {
	switch o := obj.(type) {
	case string:
		return stringMember(o, key)
	case *[]any:
		return arrayMember(o, key)
	case map[string]any:
		v, ok := o[key]
		if !ok {
			return nil, nil
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("sandbox: cannot read property %q of undefined", key)
	default:
		return nil, fmt.Errorf("sandbox: cannot read property %q of %T", key, obj)
	}
}

func evalUnary(n *ast.UnaryExpression, e *env) (any, error) {
	if n.Operator.String() == "typeof" {
		v, err := evalExpr(n.Operand.Expr, e)
		if err != nil {
			if strings.Contains(err.Error(), "is not defined") {
				return "undefined", nil
			}
			return nil, err
		}
		return typeOf(v), nil
	}
	v, err := evalExpr(n.Operand.Expr, e)
	if err != nil {
		return nil, err
	}
	switch n.Operator.String() {
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	case "!":
		return !toBool(v), nil
	case "~":
		return float64(^int64(toNumber(v))), nil
	case "void":
		return nil, nil
	default:
		return nil, fmt.Errorf("sandbox: unsupported unary operator %q", n.Operator.String())
	}
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case jsNull:
		return "object"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *jsFunction:
		return "function"
	default:
		return "object"
	}
}

func evalUpdate(n *ast.UpdateExpression, e *env) (any, error) {
	id, ok := n.Operand.Expr.(*ast.Identifier)
	if !ok {
		return nil, fmt.Errorf("sandbox: unsupported update target %T", n.Operand.Expr)
	}
	cur, ok := e.get(id.Name)
	if !ok {
		return nil, fmt.Errorf("sandbox: %s is not defined", id.Name)
	}
	before := toNumber(cur)
	after := before
	switch n.Operator.String() {
	case "++":
		after = before + 1
	case "--":
		after = before - 1
	}
	e.set(id.Name, after)
	if n.Postfix {
		return before, nil
	}
	return after, nil
}

func evalBinary(n *ast.BinaryExpression, e *env) (any, error) {
	l, err := evalExpr(n.Left.Expr, e)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(n.Right.Expr, e)
	if err != nil {
		return nil, err
	}
	op := n.Operator.String()

	if op == "+" {
		_, lIsStr := l.(string)
		_, rIsStr := r.(string)
		if lIsStr || rIsStr {
			return toStr(l) + toStr(r), nil
		}
		return toNumber(l) + toNumber(r), nil
	}

	switch op {
	case "==", "===":
		return looseOrStrictEqual(l, r, op == "==="), nil
	case "!=", "!==":
		return !looseOrStrictEqual(l, r, op == "!=="), nil
	}

	ln, rn := toNumber(l), toNumber(r)
	switch op {
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		return ln / rn, nil
	case "%":
		return math.Mod(ln, rn), nil
	case "**":
		return math.Pow(ln, rn), nil
	case "&":
		return float64(int64(ln) & int64(rn)), nil
	case "|":
		return float64(int64(ln) | int64(rn)), nil
	case "^":
		return float64(int64(ln) ^ int64(rn)), nil
	case "<<":
		return float64(int64(ln) << (int64(rn) & 31)), nil
	case ">>":
		return float64(int64(ln) >> (int64(rn) & 31)), nil
	case ">>>":
		return float64(uint32(int64(ln)) >> (uint32(rn) & 31)), nil
	case "<":
		return ln < rn, nil
	case "<=":
		return ln <= rn, nil
	case ">":
		return ln > rn, nil
	case ">=":
		return ln >= rn, nil
	default:
		return nil, fmt.Errorf("sandbox: unsupported binary operator %q", op)
	}
}

func looseOrStrictEqual(l, r any, strict bool) bool {
	if fmt.Sprintf("%T", l) == fmt.Sprintf("%T", r) {
		return l == r
	}
	if strict {
		return false
	}
	return toNumber(l) == toNumber(r)
}

func evalLogical(n *ast.LogicalExpression, e *env) (any, error) {
	l, err := evalExpr(n.Left.Expr, e)
	if err != nil {
		return nil, err
	}
	switch strings.TrimSpace(n.Operator.String()) {
	case "&&":
		if !toBool(l) {
			return l, nil
		}
		return evalExpr(n.Right.Expr, e)
	case "||":
		if toBool(l) {
			return l, nil
		}
		return evalExpr(n.Right.Expr, e)
	case "??":
		if l != nil {
			if _, isNull := l.(jsNull); !isNull {
				return l, nil
			}
		}
		return evalExpr(n.Right.Expr, e)
	default:
		return nil, fmt.Errorf("sandbox: unsupported logical operator %q", n.Operator.String())
	}
}

func evalAssign(n *ast.AssignExpression, e *env) (any, error) {
	rhs, err := evalExpr(n.Right.Expr, e)
	if err != nil {
		return nil, err
	}
	op := n.Operator.String()
	if op != "=" {
		cur, err := evalExpr(n.Left.Expr, e)
		if err != nil {
			return nil, err
		}
		rhs, err = applyCompoundOp(strings.TrimSuffix(op, "="), cur, rhs)
		if err != nil {
			return nil, err
		}
	}
	switch target := n.Left.Expr.(type) {
	case *ast.Identifier:
		e.set(target.Name, rhs)
	case *ast.MemberExpression:
		obj, err := evalExpr(target.Object.Expr, e)
		if err != nil {
			return nil, err
		}
		key, err := memberKey(target, e)
		if err != nil {
			return nil, err
		}
		if err := memberSet(obj, key, rhs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sandbox: unsupported assignment target %T", n.Left.Expr)
	}
	return rhs, nil
}

// applyCompoundOp implements the `+=`/`-=`/... family directly over
// already-evaluated values, mirroring evalBinary's operator table without
// needing to fabricate a synthetic token.Token for a borrowed AST node.
func applyCompoundOp(op string, l, r any) (any, error) {
	if op == "+" {
		if _, ok := l.(string); ok {
			return toStr(l) + toStr(r), nil
		}
		if _, ok := r.(string); ok {
			return toStr(l) + toStr(r), nil
		}
		return toNumber(l) + toNumber(r), nil
	}
	ln, rn := toNumber(l), toNumber(r)
	switch op {
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		return ln / rn, nil
	case "%":
		return math.Mod(ln, rn), nil
	case "**":
		return math.Pow(ln, rn), nil
	case "&":
		return float64(int64(ln) & int64(rn)), nil
	case "|":
		return float64(int64(ln) | int64(rn)), nil
	case "^":
		return float64(int64(ln) ^ int64(rn)), nil
	case "<<":
		return float64(int64(ln) << (int64(rn) & 31)), nil
	case ">>":
		return float64(int64(ln) >> (int64(rn) & 31)), nil
	default:
		return nil, fmt.Errorf("sandbox: unsupported compound assignment operator %q=", op)
	}
}

func memberSet(obj any, key string, v any) error {
	switch o := obj.(type) {
	case map[string]any:
		o[key] = v
		return nil
	case *[]any:
		if key == "length" {
			n := int(toNumber(v))
			if n < len(*o) {
				*o = (*o)[:n]
			} else {
				for len(*o) < n {
					*o = append(*o, nil)
				}
			}
			return nil
		}
		idx, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("sandbox: unsupported array index %q", key)
		}
		for idx >= len(*o) {
			*o = append(*o, nil)
		}
		(*o)[idx] = v
		return nil
	default:
		return fmt.Errorf("sandbox: cannot set property %q on %T", key, obj)
	}
}

func evalCall(n *ast.CallExpression, e *env) (any, error) {
	args := make([]any, len(n.ArgumentList))
	for i := range n.ArgumentList {
		v, err := evalExpr(n.ArgumentList[i].Expr, e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if mem, ok := n.Callee.Expr.(*ast.MemberExpression); ok {
		obj, err := evalExpr(mem.Object.Expr, e)
		if err != nil {
			return nil, err
		}
		key, err := memberKey(mem, e)
		if err != nil {
			return nil, err
		}
		return callMethod(obj, key, args)
	}

	callee, err := evalExpr(n.Callee.Expr, e)
	if err != nil {
		return nil, err
	}
	return callValue(callee, args, e)
}

func callValue(callee any, args []any, e *env) (any, error) {
	switch fn := callee.(type) {
	case *jsFunction:
		return callJSFunction(fn, args)
	case builtinFunc:
		return fn(args)
	default:
		return nil, fmt.Errorf("sandbox: %v is not a function", callee)
	}
}

func callJSFunction(fn *jsFunction, args []any) (any, error) {
	callEnv := newEnv(fn.env)
	for i, p := range fn.params {
		id, ok := p.Expr.(*ast.Identifier)
		if !ok {
			continue
		}
		var v any
		if i < len(args) {
			v = args[i]
		}
		callEnv.declare(id.Name, v)
	}
	for i := range fn.body.List {
		_, _, err := execStatement(fn.body.List[i].Stmt, callEnv)
		if err != nil {
			if c, ok := err.(*control); ok {
				if c.kind == ctrlReturn {
					return c.value, nil
				}
				return nil, fmt.Errorf("sandbox: unexpected control flow signal in function body")
			}
			return nil, err
		}
	}
	return nil, nil
}
