package types

import "testing"

func TestPrimitiveEquality(t *testing.T) {
	if !INT.Equals(INT) {
		t.Error("int != int")
	}
	if INT.Equals(FLOAT) {
		t.Error("int == float")
	}
	if STRING.Equals(BYTES) {
		t.Error("string == bytes")
	}
}

func TestNominalEquality(t *testing.T) {
	a := NewClass("a.User")
	b := NewClass("b.User")
	if a.Equals(b) {
		t.Error("distinct qualified names compare equal")
	}
	if !a.Equals(NewClass("a.User")) {
		t.Error("same qualified name compares unequal")
	}
	if NewClass("X").Equals(NewTrait("X")) {
		t.Error("class equals trait of the same name")
	}
}

func TestGenericInstantiationEquality(t *testing.T) {
	boxInt := NewClass("Box", INT)
	boxStr := NewClass("Box", STRING)
	if boxInt.Equals(boxStr) {
		t.Error("Box<int> == Box<string>")
	}
	if !boxInt.Equals(NewClass("Box", INT)) {
		t.Error("Box<int> != Box<int>")
	}
}

func TestStructuralEquality(t *testing.T) {
	if !NewArray(INT).Equals(NewArray(INT)) {
		t.Error("Array<int> != Array<int>")
	}
	if NewArray(INT).Equals(NewArray(FLOAT)) {
		t.Error("Array<int> == Array<float>")
	}
	if !NewMap(STRING, INT).Equals(NewMap(STRING, INT)) {
		t.Error("map equality failed")
	}

	f1 := &Function{Params: []Type{INT}, Return: STRING}
	f2 := &Function{Params: []Type{INT}, Return: STRING}
	f3 := &Function{Params: []Type{INT}, Return: VOID}
	if !f1.Equals(f2) {
		t.Error("identical function types unequal")
	}
	if f1.Equals(f3) {
		t.Error("different returns compare equal")
	}
}

func TestAssignability(t *testing.T) {
	tests := []struct {
		name string
		src  Type
		dst  Type
		want bool
	}{
		{"identity", INT, INT, true},
		{"int widens to int?", INT, NewNullable(INT), true},
		{"none widens to int?", NONE, NewNullable(INT), true},
		{"int? does not narrow to int", NewNullable(INT), INT, false},
		{"string not to int?", STRING, NewNullable(INT), false},
		{"class to same class", NewClass("User"), NewClass("User"), true},
		{"class to other class", NewClass("User"), NewClass("Admin"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignableTo(tt.src, tt.dst); got != tt.want {
				t.Errorf("AssignableTo(%s, %s) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestNullableHelpers(t *testing.T) {
	n := NewNullable(STRING)
	if !IsNullable(n) || IsNullable(STRING) {
		t.Error("IsNullable misreports")
	}
	if !Unwrap(n).Equals(STRING) {
		t.Error("Unwrap failed")
	}
	if !Unwrap(INT).Equals(INT) {
		t.Error("Unwrap changed a plain type")
	}
}

func TestHashability(t *testing.T) {
	if !IsHashable(INT) || !IsHashable(STRING) || !IsHashable(BYTE) {
		t.Error("hashable primitives misreported")
	}
	if !IsHashable(NewEnum("Color")) {
		t.Error("enums should be hashable")
	}
	if IsHashable(NewClass("User")) || IsHashable(NewArray(INT)) || IsHashable(BYTES) {
		t.Error("non-hashable types misreported")
	}
}

func TestSubstitute(t *testing.T) {
	param := &TypeParam{Name: "T"}
	bindings := map[string]Type{"T": INT}

	got := Substitute(NewArray(param), bindings)
	if !got.Equals(NewArray(INT)) {
		t.Errorf("Substitute(Array<T>) = %s", got)
	}

	fnType := &Function{Params: []Type{param, STRING}, Return: NewNullable(param)}
	sub := Substitute(fnType, bindings).(*Function)
	if !sub.Params[0].Equals(INT) || !sub.Return.Equals(NewNullable(INT)) {
		t.Errorf("Substitute(fn) = %s", sub)
	}

	// Unbound parameters survive untouched.
	free := Substitute(&TypeParam{Name: "U"}, bindings)
	if !free.Equals(&TypeParam{Name: "U"}) {
		t.Errorf("unbound param rewritten to %s", free)
	}
}

func TestContainsTypeParam(t *testing.T) {
	param := &TypeParam{Name: "T"}
	if !ContainsTypeParam(NewArray(param)) {
		t.Error("Array<T> should contain a param")
	}
	if ContainsTypeParam(NewArray(INT)) {
		t.Error("Array<int> should not contain a param")
	}
	if !ContainsTypeParam(NewClass("Box", param)) {
		t.Error("Box<T> should contain a param")
	}
}

func TestStringRendering(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{NewNullable(INT), "int?"},
		{NewArray(STRING), "Array<string>"},
		{NewMap(STRING, INT), "Map<string, int>"},
		{NewClass("Box", INT), "Box<int>"},
		{&Function{Params: []Type{INT, INT}, Return: INT}, "fn(int, int) -> int"},
		{&Function{Params: nil, Return: VOID}, "fn()"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
