// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArenaID(t *testing.T) {
	t.Parallel()
	var a Arena
	x, y := &Field{Name: "x"}, &Field{Name: "y"}
	idx := a.ID(x)
	idy := a.ID(y)
	if idx == 0 || idy == 0 || idx == idy {
		t.Fatalf("bad IDs: %d, %d", idx, idy)
	}
	if a.ID(x) != idx {
		t.Errorf("ID changed on second call")
	}
	if a.Len() != 2 {
		t.Errorf("Len()=%d, want 2", a.Len())
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()
	intType := &TypeDecl{Kind: Struct, Prim: Int, Name: "Int32", Namespace: "System"}
	str := &TypeDecl{Kind: Class, Prim: String, Name: "String", Namespace: "System"}
	tp := &TypeParam{Name: "T"}
	list := &TypeDecl{Kind: Class, Name: "List", Namespace: "System.Collections.Generic", TParms: []*TypeParam{tp}}
	listInt := &TypeDecl{Kind: Class, Name: "List", Namespace: "System.Collections.Generic", Def: list, Args: []Type{intType}}
	outer := &TypeDecl{Kind: Class, Name: "Outer", Namespace: "N"}
	inner := &TypeDecl{Kind: Class, Name: "Inner", Outer: outer}

	tests := []struct {
		typ  Type
		want string
	}{
		{intType, "int"},
		{list, "List<T>"},
		{listInt, "List<int>"},
		{inner, "Outer.Inner"},
		{&ArrayType{Elem: intType, Rank: 1}, "int[]"},
		{&ArrayType{Elem: intType, Rank: 3}, "int[,,]"},
		{&PointerType{Elem: intType}, "int*"},
		{&RefType{Elem: str}, "ref string"},
		{&TupleType{Fields: []TupleField{{Name: "a", Type: intType}, {Type: str}}}, "(int a, string)"},
		{&UnionType{Elems: []Type{intType, str}}, "int | string"},
		{&ModType{Mod: NonNull, Elem: str}, "string!"},
		{&ModType{Mod: Nullable, Elem: &UnionType{Elems: []Type{intType, str}}}, "(int | string)?"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
	if got := listInt.FullName(); got != "System.Collections.Generic.List`1" {
		t.Errorf("FullName()=%q", got)
	}
	if got := inner.FullName(); got != "N.Outer.Inner" {
		t.Errorf("FullName()=%q", got)
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()
	str := &TypeDecl{Kind: Class, Prim: String, Name: "String"}
	m := &ModType{Mod: Nullable, Elem: &ModType{Mod: Boxed, Elem: str}}
	if Unwrap(m) != str {
		t.Errorf("Unwrap(%s) != string", m)
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()
	x := &Ident{Name: "x"}
	body := &Block{Stmts: []Stmt{
		&LocalDecl{Name: "y", Init: &Binary{Op: "+", L: x, R: &Literal{Value: int32(1)}}},
		&Return{X: &Ident{Name: "y"}},
	}}
	m := &Method{Name: "f", Body: body}
	c := &TypeDecl{Name: "C", Members: []Decl{m}}
	var got []string
	Walk(c, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			got = append(got, id.Name)
		}
		return true
	})
	if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessOf(t *testing.T) {
	t.Parallel()
	owner := &TypeDecl{Name: "C"}
	f := &Field{Name: "f", Access: Private, Owner: owner, Const: true}
	if AccessOf(f) != Private || OwnerOf(f) != owner || !IsStatic(f) {
		t.Errorf("bad field accessors")
	}
	if a, ok := ParseAccess("protected internal"); !ok || a != ProtectedInternal {
		t.Errorf("ParseAccess failed")
	}
	if p, ok := PrimByName("ulong"); !ok || p != ULong {
		t.Errorf("PrimByName failed")
	}
}
