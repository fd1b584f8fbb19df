// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package corlib provides the core library assembly:
// System.Object, the primitive types, strings, arrays, delegates,
// enumerables, and the attributes known to the compiler.
package corlib

import (
	_ "embed"
	"fmt"

	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/irtext"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// Name is the assembly name of the core library.
const Name = "corlib"

//go:embed corlib.yaml
var src []byte

// Load returns a new copy of the core library module.
// The semantic passes add instances to the module's types,
// so each compilation must load its own copy.
func Load(files *loc.Files) *ir.Module {
	mod, err := irtext.Read(files, "<corlib>", src)
	if err != nil {
		panic(fmt.Sprintf("impossible: bad corlib: %s", err))
	}
	return mod
}
