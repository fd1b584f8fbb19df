// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func TestInstTypeOnce(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	list := refType(t, x, "System.Collections.Generic", "List", 1)
	args := []ir.Type{x.prims[ir.Int]}

	a := x.instType(list, args, loc.Loc{})
	n := x.info.Instances
	b := x.instType(list, []ir.Type{x.prims[ir.Int]}, loc.Loc{})
	if a != b {
		t.Fatalf("List<int> instantiated twice")
	}
	if x.info.Instances != n {
		t.Errorf("Instances=%d, want %d", x.info.Instances, n)
	}
	if a.Def != list || len(a.Args) != 1 || a.Args[0] != x.prims[ir.Int] {
		t.Errorf("bad instance:\n%s", spew.Sdump(a.Def, a.Args))
	}
	if got := a.String(); got != "List<int>" {
		t.Errorf("String()=%s, want List<int>", got)
	}
	if c := x.instType(a, args, loc.Loc{}); c != a {
		t.Errorf("instantiating an instance made a new instance")
	}
	if c := x.instType(list, []ir.Type{list.TParms[0]}, loc.Loc{}); c != list {
		t.Errorf("List<T> is not the definition")
	}
	if c := x.instType(list, []ir.Type{x.core.str}, loc.Loc{}); c == a {
		t.Errorf("List<string> is List<int>")
	}
}

func TestInstTypeMembers(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	list := refType(t, x, "System.Collections.Generic", "List", 1)
	inst := x.instType(list, []ir.Type{x.core.str}, loc.Loc{})

	var item *ir.Property
	var add *ir.Method
	for _, d := range inst.Members {
		switch d := d.(type) {
		case *ir.Property:
			if d.Name == "Item" {
				item = d
			}
		case *ir.Method:
			if d.Name == "Add" {
				add = d
			}
		}
	}
	if item == nil || add == nil {
		t.Fatalf("missing members:\n%s", spew.Sdump(inst.Members))
	}
	if item.Type != x.core.str || item.Params[0].Type != x.prims[ir.Int] {
		t.Errorf("Item has type %s", item.Type)
	}
	if add.Params[0].Type != x.core.str || add.Owner != inst || add.Origin().Owner != list {
		t.Errorf("bad Add: %s", spew.Sdump(add.Params))
	}
	enum := x.instType(x.core.enumerableT, []ir.Type{x.core.str}, loc.Loc{})
	if len(inst.Ifaces) != 1 || inst.Ifaces[0] != enum {
		t.Errorf("List<string> implements %v, want %s", inst.Ifaces, enum)
	}
}

func TestInstMethodOnce(t *testing.T) {
	t.Parallel()
	mod, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: Id
        static: true
        tparams: [T]
        params: [{name: a, type: T}]
        returns: T
        body:
          - return: a
      - method: F
        body:
          - expr: {call: Id, args: [1]}
          - expr: {call: Id, args: [2]}
          - expr: {call: Id, args: ["s"]}
`, nil, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	id := mod.Types[0].Members[0].(*ir.Method)
	if len(id.Insts) != 2 {
		t.Fatalf("got %d instances of Id, want 2", len(id.Insts))
	}
	if id.Insts[0].Ret.String() != "int" || id.Insts[1].Ret.String() != "string" {
		t.Errorf("bad instances: %s, %s", id.Insts[0].Ret, id.Insts[1].Ret)
	}
	f := mod.Types[0].Members[1].(*ir.Method)
	c0 := f.Body.Stmts[0].(*ir.ExprStmt).X.(*ir.Call)
	c1 := f.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	if c0.Method != c1.Method || c0.Method.Origin() != id {
		t.Errorf("calls with the same type arguments bound different instances")
	}
}

// Expansive recursion terminates:
// Node<T> refers to Node<List<T>>, which refers to Node<List<List<T>>>, and so on.
func TestInstExpansive(t *testing.T) {
	t.Parallel()
	_, info, errs := checkInfo(t, `
module: M
using: [System.Collections.Generic]
types:
  - class: Node
    tparams: [T]
    members:
      - field: next
        type: Node<List<T>>
      - field: value
        type: T
  - class: User
    members:
      - field: n
        type: Node<int>
`, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if info.Instances == 0 || info.Instances > 16 {
		t.Errorf("Instances=%d", info.Instances)
	}
}

func TestConstraints(t *testing.T) {
	tests := []errorTest{
		{
			name: "value type constraint",
			src: `
module: M
types:
  - class: Box
    tparams: [{name: T, struct: true}]
  - class: C
    members:
      - field: b
        type: Box<string>
`,
			err: "string must be a non-nullable value type to be used as T in Box",
		},
		{
			name: "default constructor constraint",
			src: `
module: M
types:
  - class: Make
    tparams: [{name: T, new: true}]
  - class: NoCtor
    members:
      - ctor: true
        params: [{name: x, type: int}]
  - class: C
    members:
      - field: b
        type: Make<NoCtor>
`,
			err: "NoCtor must have a public parameterless constructor to be used as T in Make",
		},
		{
			name: "bound satisfied",
			src: `
module: M
using: [System]
types:
  - class: Sorted
    tparams: [{name: T, bounds: ["IComparable<T>"]}]
  - class: C
    members:
      - field: b
        type: Sorted<int>
`,
			err: "",
		},
		{
			name: "bound violated",
			src: `
module: M
using: [System]
types:
  - class: Sorted
    tparams: [{name: T, bounds: ["IComparable<T>"]}]
  - class: C
    members:
      - field: b
        type: Sorted<object>
`,
			err: "object does not satisfy constraint IComparable<object> of T in Sorted",
		},
		{
			name: "boxed argument is a reference",
			src: `
module: M
types:
  - class: Ref
    tparams: [{name: T, class: true}]
  - class: C
    members:
      - field: b
        type: Ref<int~>
`,
			err: "",
		},
		{
			name: "boxed argument is not a value type",
			src: `
module: M
types:
  - class: Box
    tparams: [{name: T, struct: true}]
  - class: C
    members:
      - field: b
        type: Box<int~>
`,
			err: "must be a non-nullable value type to be used as T in Box",
		},
		{
			name: "satisfied",
			src: `
module: M
types:
  - class: Box
    tparams: [{name: T, struct: true}]
  - class: C
    members:
      - field: b
        type: Box<int>
`,
			err: "",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, test.run)
	}
}

func TestInstInterface(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	enum := x.instType(x.core.enumerableT, []ir.Type{x.core.str}, loc.Loc{})
	if enum.BaseType != nil {
		t.Errorf("IEnumerable<string> has base %s", enum.BaseType)
	}
	if enum.Def != x.core.enumerableT || len(enum.Members) != len(x.core.enumerableT.Members) {
		t.Errorf("bad instance:\n%s", spew.Sdump(enum.Def, enum.Members))
	}
	cmp := refType(t, x, "System", "IComparable", 1)
	if c := x.instType(cmp, []ir.Type{x.prims[ir.Int]}, loc.Loc{}); c.BaseType != nil || c.Def != cmp {
		t.Errorf("bad IComparable<int>:\n%s", spew.Sdump(c.BaseType, c.Def))
	}
}

// Instances created while visiting the body of another instance
// are visited in turn, and their diagnostics are suppressed.
func TestInstBodyVisited(t *testing.T) {
	t.Parallel()
	mod, info, errs := checkInfo(t, `
module: M
types:
  - class: Box
    tparams: [{name: T, struct: true}]
  - class: C
    members:
      - method: Inner
        static: true
        tparams: [U]
        body:
          - local: b
            type: Box<U>
      - method: Outer
        static: true
        tparams: [V]
        body:
          - expr: {call: Inner, targs: [V]}
      - method: F
        static: true
        body:
          - expr: {call: Outer, targs: [string]}
`, Config{})
	s := fmt.Sprint(errs)
	if !strings.Contains(s, "U must be a non-nullable value type to be used as T in Box") {
		t.Errorf("missing error in the definition: %v", errs)
	}
	if strings.Contains(s, "string must be") {
		t.Errorf("error in a secondary instance was reported: %v", errs)
	}
	if info.Suppressed == 0 {
		t.Errorf("Suppressed=0, want > 0")
	}
	inner := mod.Types[1].Members[0].(*ir.Method)
	var targs []string
	for _, m := range inner.Insts {
		targs = append(targs, typeStrings(m.TArgs))
	}
	if fmt.Sprint(targs) != "[V string]" {
		t.Errorf("Inner instances %v, want [V string]", targs)
	}
}

func TestInstBodyVisitBounded(t *testing.T) {
	t.Parallel()
	mod, _, errs := checkInfo(t, `
module: M
using: [System.Collections.Generic]
types:
  - class: C
    members:
      - method: Grow
        static: true
        tparams: [T]
        body:
          - expr: {call: Grow, targs: ["List<T>"]}
      - method: F
        static: true
        body:
          - expr: {call: Grow, targs: [int]}
`, Config{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	grow := mod.Types[0].Members[0].(*ir.Method)
	if n := len(grow.Insts); n < 2 || n > 2*(maxVisitDepth+1) {
		t.Errorf("got %d instances of Grow", n)
	}
}
