package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// builtinFunc is a native function value: the small standard-library
// surface (String/Array prototype methods, a handful of globals) a
// string-array decoder function typically calls.
type builtinFunc func(args []any) (any, error)

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func globalBuiltin(name string) (builtinFunc, bool) {
	switch name {
	case "parseInt":
		return func(args []any) (any, error) {
			return jsParseIntValue(arg(args, 0)), nil
		}, true
	case "String":
		return func(args []any) (any, error) {
			return toStr(arg(args, 0)), nil
		}, true
	case "Number":
		return func(args []any) (any, error) {
			return toNumber(arg(args, 0)), nil
		}, true
	case "isNaN":
		return func(args []any) (any, error) {
			n := toNumber(arg(args, 0))
			return n != n, nil
		}, true
	default:
		return nil, false
	}
}

func jsParseIntValue(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return toNumber(v)
	}
	return jsParseIntStr(s)
}

func jsParseIntStr(s string) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) {
		_, err := strconv.ParseInt(s[:end+1], base, 64)
		if err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return floatNaN()
	}
	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		return floatNaN()
	}
	return sign * float64(n)
}

func floatNaN() float64 {
	var z float64
	return z / z
}

func stringMember(s, key string) (any, error) {
	if key == "length" {
		return float64(len([]rune(s))), nil
	}
	if idx, err := strconv.Atoi(key); err == nil {
		r := []rune(s)
		if idx < 0 || idx >= len(r) {
			return nil, nil
		}
		return string(r[idx]), nil
	}
	fn, ok := stringMethod(s, key)
	if !ok {
		return nil, fmt.Errorf("sandbox: unsupported string property %q", key)
	}
	return builtinFunc(fn), nil
}

func stringMethod(s, key string) (builtinFunc, bool) {
	r := []rune(s)
	switch key {
	case "charAt":
		return func(args []any) (any, error) {
			i := int(toNumber(arg(args, 0)))
			if i < 0 || i >= len(r) {
				return "", nil
			}
			return string(r[i]), nil
		}, true
	case "charCodeAt":
		return func(args []any) (any, error) {
			i := int(toNumber(arg(args, 0)))
			if i < 0 || i >= len(r) {
				return floatNaN(), nil
			}
			return float64(r[i]), nil
		}, true
	case "indexOf":
		return func(args []any) (any, error) {
			return float64(strings.Index(s, toStr(arg(args, 0)))), nil
		}, true
	case "slice", "substring":
		return func(args []any) (any, error) {
			start, end := sliceBounds(len(r), args)
			return string(r[start:end]), nil
		}, true
	case "split":
		return func(args []any) (any, error) {
			sep := toStr(arg(args, 0))
			var parts []string
			if sep == "" {
				for _, c := range s {
					parts = append(parts, string(c))
				}
			} else {
				parts = strings.Split(s, sep)
			}
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out, nil
		}, true
	case "toUpperCase":
		return func(args []any) (any, error) { return strings.ToUpper(s), nil }, true
	case "toLowerCase":
		return func(args []any) (any, error) { return strings.ToLower(s), nil }, true
	case "trim":
		return func(args []any) (any, error) { return strings.TrimSpace(s), nil }, true
	case "replace":
		return func(args []any) (any, error) {
			return strings.Replace(s, toStr(arg(args, 0)), toStr(arg(args, 1)), 1), nil
		}, true
	case "replaceAll":
		return func(args []any) (any, error) {
			return strings.ReplaceAll(s, toStr(arg(args, 0)), toStr(arg(args, 1))), nil
		}, true
	case "repeat":
		return func(args []any) (any, error) {
			return strings.Repeat(s, int(toNumber(arg(args, 0)))), nil
		}, true
	case "concat":
		return func(args []any) (any, error) {
			out := s
			for _, a := range args {
				out += toStr(a)
			}
			return out, nil
		}, true
	case "toString":
		return func(args []any) (any, error) { return s, nil }, true
	default:
		return nil, false
	}
}

func sliceBounds(n int, args []any) (int, int) {
	start := 0
	end := n
	if len(args) > 0 {
		start = clampIndex(int(toNumber(args[0])), n)
	}
	if len(args) > 1 && args[1] != nil {
		end = clampIndex(int(toNumber(args[1])), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func arrayMember(a *[]any, key string) (any, error) {
	if key == "length" {
		return float64(len(*a)), nil
	}
	if idx, err := strconv.Atoi(key); err == nil {
		if idx < 0 || idx >= len(*a) {
			return nil, nil
		}
		return (*a)[idx], nil
	}
	return nil, fmt.Errorf("sandbox: unsupported array property %q", key)
}

func callMethod(obj any, key string, args []any) (any, error) {
	switch o := obj.(type) {
	case string:
		fn, ok := stringMethod(o, key)
		if !ok {
			return nil, fmt.Errorf("sandbox: unsupported string method %q", key)
		}
		return fn(args)
	case *[]any:
		return arrayMethod(o, key, args)
	case map[string]any:
		v, ok := o[key]
		if !ok {
			return nil, fmt.Errorf("sandbox: %q is not a function", key)
		}
		return callValue(v, args, nil)
	default:
		return nil, fmt.Errorf("sandbox: cannot call method %q on %T", key, obj)
	}
}

// arrayMethod dispatches a JS array prototype method. a is the pointer
// stored in the variable slot that referenced this array, so push/splice
// mutate it in place exactly like a real JS array reference would — this
// matters for the decoder subsystem's rotator replay, which works by
// calling .push()/.splice() on the shared string table in a loop.
func arrayMethod(a *[]any, key string, args []any) (any, error) {
	switch key {
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = toStr(args[0])
		}
		parts := make([]string, len(*a))
		for i, v := range *a {
			parts[i] = toStr(v)
		}
		return strings.Join(parts, sep), nil
	case "push":
		*a = append(*a, args...)
		return float64(len(*a)), nil
	case "pop":
		if len(*a) == 0 {
			return nil, nil
		}
		last := (*a)[len(*a)-1]
		*a = (*a)[:len(*a)-1]
		return last, nil
	case "shift":
		if len(*a) == 0 {
			return nil, nil
		}
		first := (*a)[0]
		*a = (*a)[1:]
		return first, nil
	case "unshift":
		*a = append(append([]any{}, args...), *a...)
		return float64(len(*a)), nil
	case "splice":
		return arraySplice(a, args), nil
	case "indexOf":
		for i, v := range *a {
			if fmt.Sprint(v) == fmt.Sprint(arg(args, 0)) {
				return float64(i), nil
			}
		}
		return float64(-1), nil
	case "slice":
		start, end := sliceBounds(len(*a), args)
		out := make([]any, end-start)
		copy(out, (*a)[start:end])
		return &out, nil
	case "map":
		fn, ok := arg(args, 0).(*jsFunction)
		if !ok {
			return nil, fmt.Errorf("sandbox: Array.map requires a function argument")
		}
		out := make([]any, len(*a))
		for i, v := range *a {
			r, err := callJSFunction(fn, []any{v, float64(i)})
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return &out, nil
	case "reverse":
		n := len(*a)
		out := make([]any, n)
		for i, v := range *a {
			out[n-1-i] = v
		}
		*a = out
		return a, nil
	default:
		return nil, fmt.Errorf("sandbox: unsupported array method %q", key)
	}
}

func arraySplice(a *[]any, args []any) any {
	n := len(*a)
	start := clampIndex(int(toNumber(arg(args, 0))), n)
	deleteCount := n - start
	if len(args) > 1 {
		deleteCount = int(toNumber(args[1]))
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}
	removed := make([]any, deleteCount)
	copy(removed, (*a)[start:start+deleteCount])

	inserted := args[min(2, len(args)):]
	tail := append([]any{}, (*a)[start+deleteCount:]...)
	*a = append((*a)[:start], inserted...)
	*a = append(*a, tail...)
	return &removed
}
