// Copyright © 2020 The Pea Authors under an MIT-style license.

package irtext

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func TestParseType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
		err  string
	}{
		{src: "int", want: "int"},
		{src: "System.String", want: "System.String"},
		{src: "List<int>", want: "List<int>"},
		{src: "Dictionary<string, List<int[]>>", want: "Dictionary<string, List<int[]>>"},
		{src: "int[,]", want: "int[,]"},
		{src: "int*[]", want: "int*[]"},
		{src: "ref int", want: "ref int"},
		{src: "int!", want: "int!"},
		{src: "string?", want: "string?"},
		{src: "T^", want: "T^"},
		{src: "object~", want: "object~"},
		{src: "int | string", want: "int | string"},
		{src: "(A | B)?", want: "(A | B)?"},
		{src: "IA & IB", want: "IA & IB"},
		{src: "(int a, string b)", want: "(int a, string b)"},
		{src: "(int, string)", want: "(int, string)"},
		{src: "(int)", want: "int"},
		{src: "int!!", want: "int!!"},
		{src: "List<int", err: "expected"},
		{src: "", err: "unexpected end"},
		{src: "int ]", err: "unexpected"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			typ, err := ParseType(test.src, loc.Loc{})
			if test.err != "" {
				if err == nil || !strings.Contains(err.Error(), test.err) {
					t.Fatalf("ParseType(%q) error=%v, want containing %q", test.src, err, test.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) failed: %s", test.src, err)
			}
			if got := typ.String(); got != test.want {
				t.Errorf("ParseType(%q)=%s, want %s\n%s", test.src, got, test.want, spew.Sdump(typ))
			}
		})
	}
}

const testModule = `
assembly: Lib
references: [corlib]
namespace: N
using: [System]
alias: {S: System.String}
types:
  - class: C
    tparams: [T, {name: U, new: true, bounds: [IComparable<U>]}]
    base: B
    implements: [I]
    attrs: [{type: Obsolete, args: ["old", true]}]
    members:
      - field: x
        type: int
        const: true
        init: 5
      - method: f
        access: private
        static: true
        params:
          - {name: a, type: int}
          - {name: rest, type: "object[]", params: true}
        returns: int
        body:
          - local: y
            init: {bin: "+", l: a, r: 1L}
          - if: {bin: "<", l: y, r: 0}
            then: [{return: 0}]
          - return: y
      - property: Item
        type: T
        params: [{name: i, type: int}]
        set: true
      - struct: Nested
  - enum: Color
    values: [Red, {Green: 5}, Blue]
  - delegate: Fn
    params: [{name: x, type: T}]
    tparams: [T]
    returns: bool
`

func TestRead(t *testing.T) {
	t.Parallel()
	var files loc.Files
	mod, err := Read(&files, "lib.yaml", []byte(testModule))
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}
	if mod.Name != "Lib" || mod.MVID == (uuid.UUID{}) {
		t.Errorf("bad module header: %s %s", mod.Name, mod.MVID)
	}
	if diff := cmp.Diff([]string{"corlib"}, mod.Refs); diff != "" {
		t.Errorf("Refs mismatch (-want +got):\n%s", diff)
	}
	var names []string
	for _, typ := range mod.Types {
		names = append(names, typ.FullName())
	}
	if diff := cmp.Diff([]string{"N.C`2", "N.Color", "N.Fn`1"}, names); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}

	c := mod.Types[0]
	if len(c.TParms) != 2 || !c.TParms[1].DefaultCtor || len(c.TParms[1].BoundExprs) != 1 {
		t.Errorf("bad type parameters:\n%s", spew.Sdump(c.TParms))
	}
	if c.BaseExpr.String() != "B" || len(c.IfaceExprs) != 1 || len(c.Attrs) != 1 {
		t.Errorf("bad class header")
	}
	if got := c.Attrs[0].Args[0].(*ir.Literal).Value; got != "old" {
		t.Errorf("attribute arg=%#v, want \"old\"", got)
	}
	if len(c.Members) != 4 {
		t.Fatalf("got %d members, want 4", len(c.Members))
	}
	f := c.Members[1].(*ir.Method)
	if f.Access != ir.Private || !f.Static || !f.HasParamsArray() || f.RetExpr.String() != "int" {
		t.Errorf("bad method:\n%s", spew.Sdump(f))
	}
	local := f.Body.Stmts[0].(*ir.LocalDecl)
	if got := local.Init.(*ir.Binary).R.(*ir.Literal).Value; got != int64(1) {
		t.Errorf("1L=%#v, want int64(1)", got)
	}
	if got := f.Body.Stmts[1].(*ir.If).Then.(*ir.Block).Stmts[0].(*ir.Return).X.(*ir.Literal).Value; got != int32(0) {
		t.Errorf("0=%#v, want int32(0)", got)
	}
	if p := c.Members[2].(*ir.Property); !p.Set || !p.Get || len(p.Params) != 1 {
		t.Errorf("bad indexer")
	}
	if n := c.Members[3].(*ir.TypeDecl); n.Kind != ir.Struct || n.Outer != c || n.FullName() != "N.C`2.Nested" {
		t.Errorf("bad nested type %s", n.FullName())
	}
	if got := f.Loc().String(); got != "lib.yaml:18:9" {
		t.Errorf("method location=%s, want lib.yaml:18:9", got)
	}

	color := mod.Types[1]
	if len(color.Members) != 3 {
		t.Fatalf("got %d enum values, want 3", len(color.Members))
	}
	if _, ok := color.Members[2].(*ir.Field).Init.(*ir.Binary); !ok {
		t.Errorf("implicit enum value is not prev+1")
	}

	fn := mod.Types[2]
	if fn.Kind != ir.Delegate || len(fn.Members) != 1 || fn.Members[0].DeclName() != "Invoke" {
		t.Errorf("bad delegate:\n%s", spew.Sdump(fn.Members))
	}
}

func TestScalarExprs(t *testing.T) {
	t.Parallel()
	src := `
module: M
types:
  - class: C
    members:
      - method: f
        body:
          - expr: {call: Console.WriteLine, args: ["hi", 'c', 3000000000, 1.5, 2.5f, 7UL, null, true, this, x]}
`
	var files loc.Files
	mod, err := Read(&files, "m.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}
	call := mod.Types[0].Members[0].(*ir.Method).Body.Stmts[0].(*ir.ExprStmt).X.(*ir.Call)
	fn, ok := call.Fn.(*ir.QualIdent)
	if !ok || fn.Name != "WriteLine" || fn.X.(*ir.Ident).Name != "Console" {
		t.Errorf("bad callee:\n%s", spew.Sdump(call.Fn))
	}
	var got []interface{}
	for _, a := range call.Args {
		switch a := a.(type) {
		case *ir.Literal:
			got = append(got, a.Value)
		case *ir.This:
			got = append(got, "<this>")
		case *ir.Ident:
			got = append(got, "<ident "+a.Name+">")
		}
	}
	want := []interface{}{"hi", uint16('c'), uint32(3000000000), 1.5, float32(2.5), uint64(7), nil, true, "<this>", "<ident x>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		err  string
	}{
		{name: "no name", src: "types: []", err: "missing module or assembly name"},
		{name: "bad access", src: "module: M\ntypes:\n  - class: C\n    access: secret", err: `m.yaml:4:13: bad access "secret"`},
		{name: "bad type", src: "module: M\ntypes:\n  - class: C\n    base: \"List<\"", err: "bad type"},
		{name: "bad statement", src: "module: M\ntypes:\n  - class: C\n    members:\n      - method: f\n        body: [{loop: 1}]", err: `bad statement "loop"`},
		{name: "bad mvid", src: "module: M\nmvid: nope", err: "bad mvid"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var files loc.Files
			_, err := Read(&files, "m.yaml", []byte(test.src))
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("got error %v, want containing %q", err, test.err)
			}
		})
	}
}
