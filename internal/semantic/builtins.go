package semantic

import "github.com/mkerian10/pluto/internal/types"

// BuiltinMethod describes one intrinsic method on a built-in type. Mutating
// methods require the receiver's root binding to be mutable; the method
// names mirror the runtime ABI surface (array_push, map_insert, ...).
type BuiltinMethod struct {
	Name     string
	Sig      *types.Function
	Mutating bool
}

// builtinMethod resolves an intrinsic method on the given receiver type.
func builtinMethod(recv types.Type, name string) (*BuiltinMethod, bool) {
	switch t := recv.(type) {
	case *types.Primitive:
		switch t.Kind {
		case types.KindString:
			return stringMethod(name)
		case types.KindBytes:
			return bytesMethod(name)
		case types.KindInt, types.KindFloat, types.KindBool, types.KindByte:
			if name == "to_string" {
				return method("to_string", fn(types.STRING)), true
			}
		}
	case *types.Array:
		return arrayMethod(t, name)
	case *types.Map:
		return mapMethod(t, name)
	case *types.Set:
		return setMethod(t, name)
	}
	return nil, false
}

func fn(ret types.Type, params ...types.Type) *types.Function {
	return &types.Function{Params: params, Return: ret}
}

func method(name string, sig *types.Function) *BuiltinMethod {
	return &BuiltinMethod{Name: name, Sig: sig}
}

func mutating(name string, sig *types.Function) *BuiltinMethod {
	return &BuiltinMethod{Name: name, Sig: sig, Mutating: true}
}

func stringMethod(name string) (*BuiltinMethod, bool) {
	switch name {
	case "len":
		return method(name, fn(types.INT)), true
	case "contains", "starts_with", "ends_with":
		return method(name, fn(types.BOOL, types.STRING)), true
	case "index_of":
		return method(name, fn(types.INT, types.STRING)), true
	case "substring":
		return method(name, fn(types.STRING, types.INT, types.INT)), true
	case "trim", "to_upper", "to_lower", "to_string":
		return method(name, fn(types.STRING)), true
	case "replace":
		return method(name, fn(types.STRING, types.STRING, types.STRING)), true
	case "split":
		return method(name, fn(types.NewArray(types.STRING), types.STRING)), true
	case "char_at":
		return method(name, fn(types.BYTE, types.INT)), true
	case "to_bytes":
		return method(name, fn(types.BYTES)), true
	}
	return nil, false
}

func bytesMethod(name string) (*BuiltinMethod, bool) {
	switch name {
	case "push":
		return mutating(name, fn(types.VOID, types.BYTE)), true
	case "len":
		return method(name, fn(types.INT)), true
	case "to_string":
		return method(name, fn(types.STRING)), true
	}
	return nil, false
}

func arrayMethod(t *types.Array, name string) (*BuiltinMethod, bool) {
	switch name {
	case "push":
		return mutating(name, fn(types.VOID, t.Elem)), true
	case "len":
		return method(name, fn(types.INT)), true
	case "contains":
		return method(name, fn(types.BOOL, t.Elem)), true
	}
	return nil, false
}

func mapMethod(t *types.Map, name string) (*BuiltinMethod, bool) {
	switch name {
	case "insert":
		return mutating(name, fn(types.VOID, t.Key, t.Value)), true
	case "remove":
		return mutating(name, fn(types.VOID, t.Key)), true
	case "get":
		return method(name, fn(nullableOf(t.Value), t.Key)), true
	case "contains":
		return method(name, fn(types.BOOL, t.Key)), true
	case "len":
		return method(name, fn(types.INT)), true
	case "keys":
		return method(name, fn(types.NewArray(t.Key))), true
	case "values":
		return method(name, fn(types.NewArray(t.Value))), true
	}
	return nil, false
}

func setMethod(t *types.Set, name string) (*BuiltinMethod, bool) {
	switch name {
	case "insert":
		return mutating(name, fn(types.VOID, t.Elem)), true
	case "remove":
		return mutating(name, fn(types.VOID, t.Elem)), true
	case "contains":
		return method(name, fn(types.BOOL, t.Elem)), true
	case "len":
		return method(name, fn(types.INT)), true
	case "to_array":
		return method(name, fn(types.NewArray(t.Elem))), true
	}
	return nil, false
}

// nullableOf wraps t unless it is already nullable.
func nullableOf(t types.Type) types.Type {
	if types.IsNullable(t) {
		return t
	}
	return types.NewNullable(t)
}

// isBuiltinFunction reports whether name is one of the prelude's free
// functions. print and to_string accept any stringable argument, handled
// specially by the checker; len accepts the measurable container types.
func isBuiltinFunction(name string) bool {
	switch name {
	case "print", "len", "to_string", "panic":
		return true
	}
	return false
}

// isStringable reports whether a value can appear in string interpolation:
// primitives and any type carrying a to_string method (checked by the
// caller for user classes).
func isStringable(t types.Type) bool {
	switch tt := t.(type) {
	case *types.Primitive:
		return tt.Kind != types.KindVoid
	}
	return false
}
