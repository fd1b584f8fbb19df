// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package sem binds and resolves a compilation unit:
// it looks up names through the scope chain, instantiates generics,
// resolves overloads and folds constants, reporting diagnostics as it goes.
package sem

import (
	"github.com/hesam/SketchSharp-sub002/ir"
)

// Check binds and resolves a unit in place
// and returns a summary and the sorted diagnostics.
// Warnings are included; see diag.Diagnostic.Severity.
//
// The unit is checked against cfg.Core and cfg.References.
// After Check returns, every expression of the unit has a type.
func Check(unit *ir.Unit, cfg Config) (*Info, []error) {
	x := newScope(newState(cfg, unit))
	check(x, unit)
	return &x.info, x.diags.Errors()
}

func check(x *scope, unit *ir.Unit) {
	defer x.tr("check(%s)", unit.Module.Name)()
	look(x, unit)
	resolve(x, unit)
	drain(x)
	compose(x, unit)
	ir.Walk(unit, func(n ir.Node) bool {
		x.arena.ID(n)
		return true
	})
	x.info.Nodes = x.arena.Len()
}
