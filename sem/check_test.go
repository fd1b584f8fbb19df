// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/eaburns/pretty"
	"github.com/hesam/SketchSharp-sub002/corlib"
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/irtext"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func TestLookupErrors(t *testing.T) {
	tests := []errorTest{
		{
			name: "ident not found",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        body:
          - local: x
            init: y
`,
			err: "y not found",
		},
		{
			name: "local shadows field",
			src: `
module: M
types:
  - class: C
    members:
      - field: x
        type: string
      - method: F
        returns: int
        body:
          - local: x
            type: int
            init: 1
          - return: x
`,
			err: "",
		},
		{
			name: "parameter in scope",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}]
        returns: int
        body:
          - return: {bin: "+", l: a, r: 1}
`,
			err: "",
		},
		{
			name: "private field inaccessible",
			src: `
module: M
types:
  - class: A
    members:
      - field: secret
        type: int
        access: private
  - class: B
    members:
      - method: F
        params: [{name: a, type: A}]
        returns: int
        body:
          - return: {member: secret, of: a}
`,
			err: "secret is inaccessible due to its protection level",
		},
		{
			name: "private field accessible inside",
			src: `
module: M
types:
  - class: A
    members:
      - field: secret
        type: int
        access: private
      - method: F
        returns: int
        body:
          - return: secret
`,
			err: "",
		},
		{
			name: "instance member from static method",
			src: `
module: M
types:
  - class: C
    members:
      - field: x
        type: int
      - method: F
        static: true
        returns: int
        body:
          - return: x
`,
			err: "instance member x needs an object reference",
		},
		{
			name: "primitive keyword is a type",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        returns: int
        body:
          - return: int.MaxValue
`,
			err: "",
		},
		{
			name: "redundant non-null",
			src: `
module: M
types:
  - class: C
    members:
      - field: x
        type: int!
`,
			err: "warning: int is already non-null",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestAmbiguousTypes(t *testing.T) {
	const a = `
assembly: A
namespaces:
  - name: N
    types:
      - class: T
        members:
          - field: x
            type: int
`
	const b = `
assembly: B
namespaces:
  - name: N
    types:
      - class: T
        members:
          - field: y
            type: string
`
	const sameB = `
assembly: B
mvid: b7c6e0a4-3f0e-5d7a-9a1c-6c2f4e0b8d12
namespaces:
  - name: N
    types:
      - class: T
`
	const sameC = `
assembly: C
mvid: b7c6e0a4-3f0e-5d7a-9a1c-6c2f4e0b8d12
namespaces:
  - name: N
    types:
      - class: T
`
	const user = `
module: M
using: [N]
types:
  - class: U
    members:
      - field: t
        type: T
      - field: s
        type: T
`
	tests := []errorTest{
		{
			name: "distinct declarations",
			src:  user,
			refs: []string{a, b},
			err:  "T is ambiguous between A:N.T and B:N.T",
		},
		{
			name: "same module identity",
			src:  user,
			refs: []string{sameB, sameC},
			err:  "",
		},
		{
			name: "qualified",
			src: `
module: M
types:
  - class: U
    members:
      - field: t
        type: N.T
`,
			refs: []string{a},
			err:  "",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

// An ambiguity is reported once per name,
// no matter how many references make it.
func TestAmbiguousTypeReportedOnce(t *testing.T) {
	t.Parallel()
	const a = `
assembly: A
namespaces:
  - name: N
    types: [{class: T, members: [{field: x, type: int}]}]
`
	const b = `
assembly: B
namespaces:
  - name: N
    types: [{class: T}]
`
	_, errs := checkTest(t, `
module: M
using: [N]
types:
  - class: U
    members:
      - field: t
        type: T
      - field: s
        type: T
      - field: r
        type: T
`, []string{a, b}, Config{})
	n := 0
	for _, err := range errs {
		if strings.Contains(err.Error(), "is ambiguous") {
			n++
		}
	}
	if n != 1 {
		t.Errorf("got %d ambiguity errors, want 1: %v", n, errs)
	}
}

func TestOverloadErrors(t *testing.T) {
	tests := []errorTest{
		{
			name: "no overload",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}]
      - method: F
        params: [{name: a, type: bool}]
      - method: G
        body:
          - expr: {call: F, args: ["s"]}
`,
			err: `no overload of F accepts \(string\)`,
		},
		{
			name: "wrong argument count",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}]
      - method: G
        body:
          - expr: {call: F, args: [1, 2]}
`,
			err: "F expects 1 arguments, got 2",
		},
		{
			name: "ambiguous call",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}, {name: b, type: long}]
      - method: F
        params: [{name: a, type: long}, {name: b, type: int}]
      - method: G
        body:
          - expr: {call: F, args: [1, 1]}
`,
			err: "F: ambiguous call",
		},
		{
			name: "exact match wins",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}]
      - method: F
        params: [{name: a, type: long}]
      - method: G
        body:
          - expr: {call: F, args: [1]}
`,
			err: "",
		},
		{
			name: "null prefers the more specific reference type",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: object}]
      - method: F
        params: [{name: a, type: string}]
      - method: G
        body:
          - expr: {call: F, args: [null]}
`,
			err: "",
		},
		{
			name: "params array",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params:
          - {name: f, type: string}
          - {name: rest, type: "object[]", params: true}
      - method: G
        body:
          - expr: {call: F, args: ["x"]}
          - expr: {call: F, args: ["x", 1, "y"]}
`,
			err: "",
		},
		{
			name: "default argument",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: a, type: int}, {name: b, type: int, default: 7}]
      - method: G
        body:
          - expr: {call: F, args: [1]}
`,
			err: "",
		},
		{
			name: "constraint violation",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        tparams: [{name: T, class: true}]
        params: [{name: a, type: T}]
      - method: G
        body:
          - expr: {call: F, args: [1]}
`,
			err: "int must be a reference type to be used as T",
		},
		{
			name: "abstract instance",
			src: `
module: M
types:
  - class: A
    abstract: true
  - class: B
    members:
      - method: F
        body:
          - local: a
            init: {new: A}
`,
			err: "cannot create an instance of abstract class A",
		},
		{
			name: "constructor overload",
			src: `
module: M
types:
  - class: P
    members:
      - ctor: true
        params: [{name: x, type: int}]
      - ctor: true
        params: [{name: s, type: string}]
  - class: B
    members:
      - method: F
        body:
          - local: a
            init: {new: P, args: [1]}
          - local: b
            init: {new: P, args: ["s"]}
`,
			err: "",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestConstantErrors(t *testing.T) {
	tests := []errorTest{
		{
			name: "int overflow",
			src: `
module: M
types:
  - class: C
    members:
      - field: x
        type: int
        const: true
        init: {bin: "+", l: int.MaxValue, r: 1}
`,
			err: `compile-time overflow: 2147483647 \+ 1`,
		},
		{
			name: "divide by zero",
			src: `
module: M
types:
  - class: C
    members:
      - field: x
        type: int
        const: true
        init: {bin: "/", l: 1, r: 0}
`,
			err: "division by constant zero",
		},
		{
			name: "cast overflow",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        returns: byte
        body:
          - return: {cast: byte, x: 300}
`,
			err: `compile-time overflow: \(byte\)300`,
		},
		{
			name: "circular",
			src: `
module: M
types:
  - class: C
    members:
      - field: A
        type: int
        const: true
        init: B
      - field: B
        type: int
        const: true
        init: A
`,
			err: "the evaluation of constant A involves a circular definition",
		},
		{
			name: "constants across types",
			src: `
module: M
types:
  - class: C
    members:
      - field: X
        type: int
        const: true
        init: {bin: "*", l: D.Y, r: 2}
  - class: D
    members:
      - field: Y
        type: int
        const: true
        init: 21
`,
			err: "",
		},
		{
			name: "literal narrows to byte",
			src: `
module: M
types:
  - class: C
    members:
      - field: b
        type: byte
        const: true
        init: 255
`,
			err: "",
		},
		{
			name: "literal too large for byte",
			src: `
module: M
types:
  - class: C
    members:
      - field: b
        type: byte
        const: true
        init: 256
`,
			err: "cannot implicitly convert int to byte",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestObsolete(t *testing.T) {
	tests := []errorTest{
		{
			name: "warning",
			src: `
module: M
using: [System]
types:
  - class: C
    members:
      - method: Old
        attrs: [Obsolete]
      - method: F
        body:
          - expr: {call: Old}
`,
			err: "warning: Old is obsolete",
		},
		{
			name: "error with message",
			src: `
module: M
using: [System]
types:
  - class: C
    members:
      - method: Old
        attrs: [{type: Obsolete, args: ["gone", true]}]
      - method: F
        body:
          - expr: {call: Old}
`,
			err: `\d: Old is obsolete: gone`,
		},
		{
			name: "unused is silent",
			src: `
module: M
using: [System]
types:
  - class: C
    members:
      - method: Old
        attrs: [Obsolete]
`,
			err: "",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestLabels(t *testing.T) {
	tests := []errorTest{
		{
			name: "goto label",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        body:
          - goto: done
          - label: done
            do: {return: null}
`,
			err: "",
		},
		{
			name: "label not found",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        body:
          - goto: nowhere
`,
			err: "label nowhere not found",
		},
		{
			name: "unused label",
			src: `
module: M
types:
  - class: C
    members:
      - method: F
        body:
          - label: idle
            do: {return: null}
`,
			err: "warning: label idle is not used",
		},
		{
			name: "goto leaves anonymous method",
			src: `
module: M
using: [System]
types:
  - delegate: D
  - class: C
    members:
      - method: F
        body:
          - local: d
            type: D
            init:
              fn: []
              body:
                - goto: out
          - label: out
            do: {expr: {call: d}}
`,
			err: "goto out leaves the enclosing method",
		},
		{
			name: "goto inside anonymous method",
			src: `
module: M
types:
  - delegate: D
  - class: C
    members:
      - method: F
        body:
          - local: d
            type: D
            init:
              fn: []
              body:
                - goto: inner
                - label: inner
                  do: {return: null}
          - expr: {call: d}
`,
			err: "",
		},
		{
			name: "unused label in anonymous method",
			src: `
module: M
types:
  - delegate: D
  - class: C
    members:
      - method: F
        body:
          - local: d
            type: D
            init:
              fn: []
              body:
                - label: idle
                  do: {return: null}
          - expr: {call: d}
`,
			err: "warning: label idle is not used",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestUnchecked(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - field: x
        type: int
        const: true
        init: {bin: "+", l: int.MaxValue, r: 1}
`, nil, Config{Unchecked: true})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	f := mod.Types[0].Members[0].(*ir.Field)
	if f.Value != int32(-2147483648) {
		t.Errorf("x=%#v, want int32(-2147483648)", f.Value)
	}
}

// localType returns the type of the local named name
// in the body of the method named meth of the first type.
func localType(t *testing.T, mod *ir.Module, meth, name string) ir.Type {
	t.Helper()
	var slot *ir.Field
	for _, d := range mod.Types[0].Members {
		m, ok := d.(*ir.Method)
		if !ok || m.Name != meth || m.Body == nil {
			continue
		}
		ir.Walk(m.Body, func(n ir.Node) bool {
			if l, ok := n.(*ir.LocalDecl); ok && l.Name == name {
				slot = l.Slot
			}
			return true
		})
	}
	if slot == nil {
		t.Fatalf("local %s not found in %s", name, meth)
	}
	return slot.Type
}

func TestInferredLocals(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: Choose
        static: true
        tparams: [T]
        params: [{name: a, type: T}, {name: b, type: T}]
        returns: T
        body:
          - return: a
      - method: F
        params: [{name: a, type: object}]
        returns: bool
        body:
          - return: false
      - method: F
        params: [{name: a, type: string}]
        returns: int
        body:
          - return: 0
      - method: G
        body:
          - local: i
            init: {call: Choose, args: [1, 2]}
          - local: l
            init: {call: Choose, args: [1, 2L]}
          - local: r
            init: {call: F, args: [null]}
          - local: s
            init: {bin: "+", l: "a", r: 1}
          - local: d
            init: {bin: "*", l: 2, r: 1.5}
`, nil, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, test := range []struct{ name, want string }{
		{"i", "int"},
		{"l", "long"},
		{"r", "int"},
		{"s", "string"},
		{"d", "double"},
	} {
		if got := localType(t, mod, "G", test.name).String(); got != test.want {
			t.Errorf("%s has type %s, want %s", test.name, got, test.want)
		}
	}
}

func TestParamsPacked(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: F
        params:
          - {name: f, type: string}
          - {name: rest, type: "object[]", params: true}
      - method: G
        body:
          - expr: {call: F, args: ["x", 1, "y"]}
`, nil, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	g := mod.Types[0].Members[1].(*ir.Method)
	call, ok := g.Body.Stmts[0].(*ir.ExprStmt).X.(*ir.Call)
	if !ok {
		t.Fatalf("got %T, want *ir.Call", g.Body.Stmts[0].(*ir.ExprStmt).X)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2:\n%s", len(call.Args), pretty.String(call.Args))
	}
	arr, ok := call.Args[1].(*ir.ArrayLit)
	if !ok || len(arr.Elems) != 2 {
		t.Errorf("params tail not packed:\n%s", spew.Sdump(call.Args[1]))
	}
	if call.Method == nil || call.Method.Name != "F" {
		t.Errorf("call not bound to F")
	}
}

func TestFoldedLiteral(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - field: x
        type: long
        const: true
        init: {bin: "<<", l: 1L, r: 40}
      - method: F
        returns: int
        body:
          - return: {bin: "+", l: {bin: "*", l: 6, r: 7}, r: x}
`, nil, Config{})
	// The return is a long, which does not convert to int.
	if !strings.Contains(fmt.Sprint(errs), "cannot implicitly convert long to int") {
		t.Fatalf("got %v, want a conversion error", errs)
	}
	if f := mod.Types[0].Members[0].(*ir.Field); f.Value != int64(1)<<40 {
		t.Errorf("x=%#v, want %d", f.Value, int64(1)<<40)
	}
}

func TestClosureCapture(t *testing.T) {
	t.Parallel()
	mod, info, errs := checkInfo(t, `
module: M
types:
  - delegate: Get
    returns: int
  - class: C
    members:
      - method: F
        returns: Get
        body:
          - local: n
            type: int
            init: 5
          - return:
              fn: []
              body: [{return: n}]
`, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if info.Closures != 1 {
		t.Errorf("Closures=%d, want 1", info.Closures)
	}
	var n *ir.Field
	ir.Walk(mod.Types[1], func(node ir.Node) bool {
		if l, ok := node.(*ir.LocalDecl); ok && l.Name == "n" {
			n = l.Slot
		}
		return true
	})
	if n == nil || !n.Captured {
		t.Fatalf("n is not captured:\n%s", spew.Sdump(n))
	}
	if n.Host == nil || !strings.HasPrefix(n.Host.Name, "<>c__DisplayClass") {
		t.Errorf("bad host:\n%s", spew.Sdump(n.Host))
	}
}

func TestComposers(t *testing.T) {
	t.Parallel()
	const src = `
module: M
using: [System.Compiler]
types:
  - class: C
    attrs: [{type: Composer, args: ["Asm", "Gen"]}]
    members:
      - method: F
        attrs: [{type: Composer, args: ["Asm", "Gen"]}]
      - method: G
        attrs: [{type: Composer, args: ["Asm", "Missing"]}]
`
	var got []string
	reg := NewRegistry()
	reg.Register("Asm", "Gen", ComposerFunc(func(d ir.Decl, _ diag.Sink) {
		got = append(got, d.DeclName())
	}))
	_, errs := checkTest(t, src, nil, Config{Composers: reg})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "composer Asm:Missing not registered") {
		t.Errorf("got %v, want one unregistered composer error", errs)
	}
	if fmt.Sprint(got) != "[C F]" {
		t.Errorf("composed %v, want [C F]", got)
	}
}

func TestForeachElem(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: F
        params: [{name: xs, type: "string[]"}, {name: n, type: int}]
        body:
          - foreach: s
            in: xs
            do:
              - local: copy
                init: s
          - local: qs
            init: {from: q, in: xs, select: q}
          - foreach: i
            in: n
            do: []
`, nil, Config{})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "cannot convert int to") {
		t.Errorf("got %v, want one error for the int loop", errs)
	}
	if got := localType(t, mod, "F", "copy").String(); got != "string" {
		t.Errorf("copy has type %s, want string", got)
	}
}

func TestCircularBase(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: A
    base: B
  - class: B
    base: A
  - class: C
    members:
      - method: F
        params: [{name: a, type: A}]
        returns: object
        body:
          - return: a
`, nil, Config{})
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "circular base type dependency involving") {
		t.Fatalf("got %v, want one circular base error", errs)
	}
	// The cycle is broken, so walking the bases terminates.
	for _, typ := range mod.Types[:2] {
		n := 0
		for b := typ.BaseType; b != nil && n < 4; b = b.BaseType {
			n++
		}
		if n >= 4 {
			t.Errorf("%s still has a circular base", typ.Name)
		}
	}
}

func TestOverflowReportedOnce(t *testing.T) {
	t.Parallel()
	for _, init := range []string{
		`{bin: "+", l: int.MaxValue, r: 1}`,
		`{bin: "/", l: 1, r: 0}`,
		`{bin: "*", l: {bin: "+", l: int.MaxValue, r: 1}, r: 2}`,
	} {
		_, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - field: x
        type: int
        const: true
        init: `+init+`
`, nil, Config{})
		if len(errs) != 1 {
			t.Errorf("%s: got %v, want one error", init, errs)
			continue
		}
		if strings.Contains(errs[0].Error(), "is not constant") {
			t.Errorf("%s: got %v, want the fold error", init, errs[0])
		}
	}
}

func TestParamsPackedAfterInt(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: f
        params:
          - {name: n, type: int}
          - {name: rest, type: "object[]", params: true}
      - method: G
        body:
          - expr: {call: f, args: [1, "a", 2]}
`, nil, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	g := mod.Types[0].Members[1].(*ir.Method)
	call := g.Body.Stmts[0].(*ir.ExprStmt).X.(*ir.Call)
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2:\n%s", len(call.Args), pretty.String(call.Args))
	}
	if got := call.Args[0].Type().String(); got != "int" {
		t.Errorf("first argument has type %s, want int", got)
	}
	arr, ok := call.Args[1].(*ir.ArrayLit)
	if !ok || len(arr.Elems) != 2 {
		t.Fatalf("params tail not packed:\n%s", spew.Sdump(call.Args[1]))
	}
	if got := arr.Type().String(); got != "object[]" {
		t.Errorf("packed array has type %s, want object[]", got)
	}
}

type errorTest struct {
	name  string
	src   string
	refs  []string
	err   string // regexp, "" means no error
	trace bool
}

func (test errorTest) run(t *testing.T) {
	if strings.HasPrefix(test.name, "SKIP:") {
		t.Skip()
	}
	t.Parallel()
	switch _, errs := checkTest(t, test.src, test.refs, Config{Trace: test.trace}); {
	case test.err == "" && len(errs) == 0:
		return
	case test.err == "" && len(errs) > 0:
		t.Errorf("got %v, expected nil", errs)
	case test.err != "" && len(errs) == 0:
		t.Errorf("got nil, expected matching %s", test.err)
	default:
		err := fmt.Sprintf("%v", errs)
		if !regexp.MustCompile(test.err).MatchString(err) {
			t.Errorf("got %v, expected matching %s", errs, test.err)
		}
	}
}

func checkTest(t *testing.T, src string, refs []string, cfg Config) (*ir.Module, []error) {
	t.Helper()
	mod, _, errs := checkInfo(t, src, cfg, refs...)
	return mod, errs
}

func checkInfo(t *testing.T, src string, cfg Config, refs ...string) (*ir.Module, *Info, []error) {
	t.Helper()
	var files loc.Files
	for i, r := range refs {
		ref, err := irtext.Read(&files, fmt.Sprintf("ref%d.yaml", i), []byte(r))
		if err != nil {
			t.Fatalf("failed to read reference: %s", err)
		}
		cfg.References = append(cfg.References, ref)
	}
	mod, err := irtext.Read(&files, "test.yaml", []byte(src))
	if err != nil {
		t.Fatalf("failed to read source: %s", err)
	}
	cfg.Core = corlib.Load(&files)
	info, errs := Check(&ir.Unit{Module: mod}, cfg)
	return mod, info, errs
}
