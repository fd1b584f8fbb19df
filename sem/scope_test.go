// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strings"
	"testing"

	"github.com/hesam/SketchSharp-sub002/corlib"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/irtext"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func TestScopeChain(t *testing.T) {
	t.Parallel()
	root := newTestScope(t)
	outer := root.newVars(blockScope)
	a0 := &ir.Field{Name: "a"}
	b0 := &ir.Field{Name: "b"}
	if !outer.declare(a0) || !outer.declare(b0) {
		t.Fatalf("declare failed")
	}
	inner := outer.newVars(blockScope)
	a1 := &ir.Field{Name: "a"}
	if !inner.declare(a1) {
		t.Fatalf("declare failed")
	}

	if f := inner.lookup("a", 0); len(f.decls) != 1 || f.decls[0] != a1 || f.depth != 0 {
		t.Errorf("inner a: got %v at depth %d", f.decls, f.depth)
	}
	if f := inner.lookup("b", 0); len(f.decls) != 1 || f.decls[0] != b0 || f.depth != 1 || f.level != outer {
		t.Errorf("inner b: got %v at depth %d", f.decls, f.depth)
	}
	if f := outer.lookup("a", 0); len(f.decls) != 1 || f.decls[0] != a0 {
		t.Errorf("outer a: got %v", f.decls)
	}
	if f := inner.lookup("a", 1); !f.empty() {
		t.Errorf("found a with one type argument")
	}
	if f := inner.lookup("nothing", 0); !f.empty() {
		t.Errorf("found nothing: %v", f.decls)
	}
	if f := inner.lookup("System", 0); !f.isNS || f.ns != "System" {
		t.Errorf("System is not a namespace: %+v", f)
	}
	if inner.OuterScope() != ir.Scope(outer) || root.OuterScope() != nil {
		t.Errorf("bad outer scopes")
	}

	// A redeclaration is reported and does not replace the original.
	if inner.declare(&ir.Field{Name: "a"}) {
		t.Errorf("redeclaration succeeded")
	}
	if f := inner.lookup("a", 0); f.decls[0] != a1 {
		t.Errorf("redeclaration replaced the original")
	}
	if errs := inner.diags.Errors(); len(errs) != 1 || !strings.Contains(errs[0].Error(), "a redefined") {
		t.Errorf("got %v, want a redefined", errs)
	}
}

func TestScopeTypeLevels(t *testing.T) {
	t.Parallel()
	const src = `
module: M
namespaces:
  - name: Outer.Inner
    types:
      - class: C
        tparams: [T]
        members:
          - field: f
            type: T
          - field: hidden
            type: int
            access: private
          - class: Nested
  - name: Other
    types:
      - class: D
        members:
          - method: M
            tparams: [U]
`
	var files loc.Files
	mod, err := irtext.Read(&files, "test.yaml", []byte(src))
	if err != nil {
		t.Fatalf("failed to read source: %s", err)
	}
	x := newState(Config{Core: corlib.Load(&files)}, &ir.Unit{Module: mod})
	c := mod.Types[0]
	d := mod.Types[1]

	y := x.declScope(c)
	if f := y.lookup("T", 0); len(f.decls) != 1 || f.decls[0] != c.TParms[0] {
		t.Errorf("T: got %v", f.decls)
	}
	if f := y.lookup("f", 0); len(f.decls) != 1 || f.decls[0].DeclName() != "f" {
		t.Errorf("f: got %v", f.decls)
	}
	if f := y.lookup("hidden", 0); len(f.decls) != 1 {
		t.Errorf("private member not visible inside its type")
	}
	if f := y.lookup("Nested", 0); len(f.decls) != 1 || f.decls[0].DeclName() != "Nested" {
		t.Errorf("Nested: got %v", f.decls)
	}
	if f := y.lookup("Inner", 0); !f.isNS || f.ns != "Outer.Inner" {
		t.Errorf("Inner: got %+v", f)
	}

	z := x.declScope(d)
	if f := z.lookup("C", 1); !f.empty() {
		t.Errorf("C found outside its namespace")
	}
	if f := z.lookup("Outer", 0); !f.isNS {
		t.Errorf("Outer is not a namespace")
	}
	if f := z.splitAccess(x.members(c, "hidden", 0)); len(f.inacc) != 1 || len(f.decls) != 0 {
		t.Errorf("private member accessible from another type")
	}
	w := z.new()
	w.meth = &methLevel{m: d.Members[0].(*ir.Method)}
	if f := w.lookup("U", 0); len(f.decls) != 1 {
		t.Errorf("method type parameter not found")
	}
	if f := w.lookup("M", 0); len(f.decls) != 1 {
		t.Errorf("method not found from its own body")
	}
}
