// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if _, ok := r.Lookup("A", "B"); ok {
		t.Fatalf("empty registry found A:B")
	}
	var calls []string
	mk := func(name string) Composer {
		return ComposerFunc(func(ir.Decl, diag.Sink) { calls = append(calls, name) })
	}
	r.Register("Z", "Last", mk("z"))
	r.Register("A", "First", mk("a"))
	r.Register("A", "First", mk("a2"))

	c, ok := r.Lookup("A", "First")
	if !ok {
		t.Fatalf("A:First not found")
	}
	c.Compose(nil, nil)
	if diff := cmp.Diff([]string{"a2"}, calls); diff != "" {
		t.Errorf("re-registration not replaced (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A:First", "Z:Last"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if _, ok := r.Lookup("A:First", ""); ok {
		t.Errorf("found by joined key")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Register(fmt.Sprintf("A%d", i), fmt.Sprintf("T%d", j), ComposerFunc(func(ir.Decl, diag.Sink) {}))
				r.Lookup("A0", "T0")
				r.Names()
			}
		}(i)
	}
	wg.Wait()
	if n := len(r.Names()); n != 8*50 {
		t.Errorf("got %d composers, want %d", n, 8*50)
	}
}

// A composer may report diagnostics of its own,
// which are returned with the rest.
func TestComposerReports(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	reg.Register("Rules", "NoFields", ComposerFunc(func(d ir.Decl, sink diag.Sink) {
		for _, m := range d.(*ir.TypeDecl).Members {
			if f, ok := m.(*ir.Field); ok {
				sink.Report(diag.BadModifier, f.Loc(), "field", f.Name)
			}
		}
	}))
	_, errs := checkTest(t, `
module: M
types:
  - class: C
    attrs: [{type: System.Compiler.Composer, args: ["Rules", "NoFields"]}]
    members:
      - field: x
        type: int
`, nil, Config{Composers: reg})
	if len(errs) != 1 || errs[0].Error() != "test.yaml:7:9: field modifier cannot be applied to x" {
		t.Errorf("got %v", errs)
	}
}

func TestSinkForwarding(t *testing.T) {
	t.Parallel()
	var sink diag.List
	_, errs := checkTest(t, `
module: M
types:
  - class: C
    members:
      - method: F
        body:
          - expr: y
`, nil, Config{Sink: &sink})
	if len(errs) == 0 || sink.Count(diag.Error) != len(errs) {
		t.Fatalf("got %v and %d forwarded", errs, sink.Count(diag.Error))
	}
	if d := sink.Sorted()[0]; !d.Loc.IsValid() || d.Kind != diag.IdentNotFound {
		t.Errorf("bad forwarded diagnostic %+v", d)
	}
}
