// Copyright © 2020 The Pea Authors under an MIT-style license.

package corlib

import (
	"testing"

	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func TestLoad(t *testing.T) {
	t.Parallel()
	var files loc.Files
	mod := Load(&files)
	if mod.Name != Name {
		t.Errorf("Name=%q, want %q", mod.Name, Name)
	}
	prims := make(map[ir.Prim]*ir.TypeDecl)
	byName := make(map[string]*ir.TypeDecl)
	for _, typ := range mod.Types {
		if typ.Prim != ir.NotPrim {
			if prims[typ.Prim] != nil {
				t.Errorf("duplicate prim %s", typ.Prim)
			}
			prims[typ.Prim] = typ
		}
		byName[typ.FullName()] = typ
	}
	for p := ir.Void; p <= ir.Object; p++ {
		if prims[p] == nil {
			t.Errorf("missing prim %s", p)
		}
	}
	for _, name := range []string{
		"System.Delegate",
		"System.ObsoleteAttribute",
		"System.Nullable`1",
		"System.Collections.Generic.IEnumerable`1",
		"System.Collections.Generic.NonEmptyIEnumerable`1",
		"System.Compiler.ComposerAttribute",
	} {
		if byName[name] == nil {
			t.Errorf("missing %s", name)
		}
	}
}

func TestLoadFresh(t *testing.T) {
	t.Parallel()
	var files loc.Files
	if Load(&files).Types[0] == Load(&files).Types[0] {
		t.Errorf("Load returned shared declarations")
	}
}
