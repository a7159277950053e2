// Package types defines the semantic type model for Pluto.
//
// Named types (classes, traits, enums, errors) are nominal: two named types
// are equal iff their qualified names are equal and their instantiations
// are element-wise equal. Structural types (arrays, maps, sets, nullable,
// functions) are equal by shape.
package types

import "strings"

// Type is the interface implemented by all semantic types.
type Type interface {
	// String returns the source-level rendering of the type.
	String() string

	// Equals reports type equality (nominal for named types).
	Equals(other Type) bool
}

// Kind discriminates primitive types.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindByte
	KindString
	KindBytes
	KindVoid
)

// Primitive is a built-in scalar or intrinsic heap type.
type Primitive struct {
	Kind Kind
	Name string
}

// Primitive singletons.
var (
	INT    = &Primitive{Kind: KindInt, Name: "int"}
	FLOAT  = &Primitive{Kind: KindFloat, Name: "float"}
	BOOL   = &Primitive{Kind: KindBool, Name: "bool"}
	BYTE   = &Primitive{Kind: KindByte, Name: "byte"}
	STRING = &Primitive{Kind: KindString, Name: "string"}
	BYTES  = &Primitive{Kind: KindBytes, Name: "bytes"}
	VOID   = &Primitive{Kind: KindVoid, Name: "void"}
)

func (p *Primitive) String() string { return p.Name }

func (p *Primitive) Equals(other Type) bool {
	o, ok := other.(*Primitive)
	return ok && o.Kind == p.Kind
}

// NoneType is the type of the bare `none` literal before it is unified with
// a nullable context.
type NoneType struct{}

// NONE is the singleton none type.
var NONE = &NoneType{}

func (n *NoneType) String() string { return "none" }

func (n *NoneType) Equals(other Type) bool {
	_, ok := other.(*NoneType)
	return ok
}

// Array is Array<T>.
type Array struct {
	Elem Type
}

func NewArray(elem Type) *Array { return &Array{Elem: elem} }

func (a *Array) String() string { return "Array<" + a.Elem.String() + ">" }

func (a *Array) Equals(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Elem.Equals(o.Elem)
}

// Map is Map<K, V>. Keys are restricted to hashable primitives and enums;
// the restriction is enforced at registration and annotation sites.
type Map struct {
	Key   Type
	Value Type
}

func NewMap(key, value Type) *Map { return &Map{Key: key, Value: value} }

func (m *Map) String() string {
	return "Map<" + m.Key.String() + ", " + m.Value.String() + ">"
}

func (m *Map) Equals(other Type) bool {
	o, ok := other.(*Map)
	return ok && m.Key.Equals(o.Key) && m.Value.Equals(o.Value)
}

// Set is Set<T>.
type Set struct {
	Elem Type
}

func NewSet(elem Type) *Set { return &Set{Elem: elem} }

func (s *Set) String() string { return "Set<" + s.Elem.String() + ">" }

func (s *Set) Equals(other Type) bool {
	o, ok := other.(*Set)
	return ok && s.Elem.Equals(o.Elem)
}

// Nullable is T?. Nullable<Nullable<T>> and Nullable<void> are rejected at
// construction sites by the checker, not representable here by invariant.
type Nullable struct {
	Inner Type
}

func NewNullable(inner Type) *Nullable { return &Nullable{Inner: inner} }

func (n *Nullable) String() string { return n.Inner.String() + "?" }

func (n *Nullable) Equals(other Type) bool {
	o, ok := other.(*Nullable)
	return ok && n.Inner.Equals(o.Inner)
}

// Function is fn(T1, ..., Tn) -> R. Return is VOID for void functions.
type Function struct {
	Params []Type
	Return Type
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	sig := "fn(" + strings.Join(params, ", ") + ")"
	if f.Return != nil && !f.Return.Equals(VOID) {
		sig += " -> " + f.Return.String()
	}
	return sig
}

func (f *Function) Equals(other Type) bool {
	o, ok := other.(*Function)
	if !ok || len(f.Params) != len(o.Params) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return returnEquals(f.Return, o.Return)
}

func returnEquals(a, b Type) bool {
	if a == nil {
		a = VOID
	}
	if b == nil {
		b = VOID
	}
	return a.Equals(b)
}

// NamedKind discriminates the declaration kinds behind a named type.
type NamedKind int

const (
	NamedClass NamedKind = iota
	NamedTrait
	NamedEnum
	NamedError
)

// Named is a nominal type: a class, trait, enum, or error type, possibly
// instantiated with type arguments. Name is the flattened qualified name;
// the declaration itself lives in the type environment and is resolved by
// name on demand.
type Named struct {
	Kind     NamedKind
	Name     string
	TypeArgs []Type
}

func NewClass(name string, args ...Type) *Named {
	return &Named{Kind: NamedClass, Name: name, TypeArgs: args}
}

func NewTrait(name string, args ...Type) *Named {
	return &Named{Kind: NamedTrait, Name: name, TypeArgs: args}
}

func NewEnum(name string, args ...Type) *Named {
	return &Named{Kind: NamedEnum, Name: name, TypeArgs: args}
}

func NewError(name string) *Named {
	return &Named{Kind: NamedError, Name: name}
}

func (n *Named) String() string {
	if len(n.TypeArgs) == 0 {
		return n.Name
	}
	args := make([]string, len(n.TypeArgs))
	for i, a := range n.TypeArgs {
		args[i] = a.String()
	}
	return n.Name + "<" + strings.Join(args, ", ") + ">"
}

func (n *Named) Equals(other Type) bool {
	o, ok := other.(*Named)
	if !ok || o.Kind != n.Kind || o.Name != n.Name || len(o.TypeArgs) != len(n.TypeArgs) {
		return false
	}
	for i := range n.TypeArgs {
		if !n.TypeArgs[i].Equals(o.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// TypeParam is an uninstantiated generic parameter T. It survives only
// until monomorphization; no reachable declaration carries one afterward.
type TypeParam struct {
	Name string
}

func (t *TypeParam) String() string { return t.Name }

func (t *TypeParam) Equals(other Type) bool {
	o, ok := other.(*TypeParam)
	return ok && o.Name == t.Name
}

// IsVoid reports whether t is void (or nil, which callers use for void).
func IsVoid(t Type) bool {
	if t == nil {
		return true
	}
	return t.Equals(VOID)
}

// IsNullable reports whether t is a nullable type.
func IsNullable(t Type) bool {
	_, ok := t.(*Nullable)
	return ok
}

// Unwrap returns the inner type of a nullable, or t unchanged.
func Unwrap(t Type) Type {
	if n, ok := t.(*Nullable); ok {
		return n.Inner
	}
	return t
}

// IsHashable reports whether t may be a Map key or Set element: hashable
// primitives and enums.
func IsHashable(t Type) bool {
	switch tt := t.(type) {
	case *Primitive:
		return tt.Kind != KindVoid && tt.Kind != KindBytes
	case *Named:
		return tt.Kind == NamedEnum
	}
	return false
}

// AssignableTo reports whether a value of type src may be assigned to a
// destination of type dst: exact equality, the implicit T -> T? widening,
// and none -> T?.
func AssignableTo(src, dst Type) bool {
	if src == nil || dst == nil {
		return src == nil && dst == nil
	}
	if src.Equals(dst) {
		return true
	}
	if d, ok := dst.(*Nullable); ok {
		if _, isNone := src.(*NoneType); isNone {
			return true
		}
		return src.Equals(d.Inner)
	}
	return false
}

// ContainsTypeParam reports whether t mentions any generic parameter.
func ContainsTypeParam(t Type) bool {
	switch tt := t.(type) {
	case *TypeParam:
		return true
	case *Array:
		return ContainsTypeParam(tt.Elem)
	case *Map:
		return ContainsTypeParam(tt.Key) || ContainsTypeParam(tt.Value)
	case *Set:
		return ContainsTypeParam(tt.Elem)
	case *Nullable:
		return ContainsTypeParam(tt.Inner)
	case *Function:
		for _, p := range tt.Params {
			if ContainsTypeParam(p) {
				return true
			}
		}
		return tt.Return != nil && ContainsTypeParam(tt.Return)
	case *Named:
		for _, a := range tt.TypeArgs {
			if ContainsTypeParam(a) {
				return true
			}
		}
	}
	return false
}

// Substitute replaces type parameters in t according to bindings, returning
// a new type. Types without parameters are returned unchanged.
func Substitute(t Type, bindings map[string]Type) Type {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *TypeParam:
		if bound, ok := bindings[tt.Name]; ok {
			return bound
		}
		return tt
	case *Array:
		return NewArray(Substitute(tt.Elem, bindings))
	case *Map:
		return NewMap(Substitute(tt.Key, bindings), Substitute(tt.Value, bindings))
	case *Set:
		return NewSet(Substitute(tt.Elem, bindings))
	case *Nullable:
		return NewNullable(Substitute(tt.Inner, bindings))
	case *Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(p, bindings)
		}
		return &Function{Params: params, Return: Substitute(tt.Return, bindings)}
	case *Named:
		if len(tt.TypeArgs) == 0 {
			return tt
		}
		args := make([]Type, len(tt.TypeArgs))
		for i, a := range tt.TypeArgs {
			args[i] = Substitute(a, bindings)
		}
		return &Named{Kind: tt.Kind, Name: tt.Name, TypeArgs: args}
	default:
		return t
	}
}
