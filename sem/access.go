// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import "github.com/hesam/SketchSharp-sub002/ir"

// accessible returns whether d may be referenced from the current scope.
// A member is only accessible if its declaring type is too.
func (x *scope) accessible(d ir.Decl) bool {
	owner := ir.OwnerOf(d)
	if owner != nil && !x.accessible(owner) {
		return false
	}
	switch ir.AccessOf(d) {
	case ir.Public:
		return true
	case ir.Internal:
		return x.sameModule(d)
	case ir.Private:
		return x.within(owner)
	case ir.Protected:
		return x.within(owner) || x.derivesFrom(owner)
	case ir.ProtectedInternal:
		return x.sameModule(d) || x.within(owner) || x.derivesFrom(owner)
	case ir.PrivateProtected:
		return x.sameModule(d) && (x.within(owner) || x.derivesFrom(owner))
	}
	return false
}

// moduleOf returns the module declaring d.
func (x *state) moduleOf(d ir.Decl) *ir.Module {
	t, ok := d.(*ir.TypeDecl)
	if !ok {
		t = ir.OwnerOf(d)
	}
	if t == nil {
		return x.mod
	}
	t = t.Origin()
	for t.Outer != nil {
		t = t.Outer.Origin()
	}
	if m := x.declMod[t]; m != nil {
		return m
	}
	if t.Module != nil {
		return t.Module
	}
	return x.mod
}

func (x *scope) sameModule(d ir.Decl) bool {
	m := x.moduleOf(d)
	return m == x.mod || m.MVID == x.mod.MVID
}

// within returns whether the current scope is inside owner,
// possibly nested in it.
func (x *scope) within(owner *ir.TypeDecl) bool {
	if owner == nil {
		return true
	}
	owner = owner.Origin()
	for t := x.curType(); t != nil; t = t.Outer {
		if t.Origin() == owner {
			return true
		}
	}
	return false
}

// derivesFrom returns whether the current type,
// or a type enclosing it, derives from owner.
func (x *scope) derivesFrom(owner *ir.TypeDecl) bool {
	if owner == nil {
		return false
	}
	owner = owner.Origin()
	for t := x.curType(); t != nil; t = t.Outer {
		for b := x.baseOf(t); b != nil; b = x.baseOf(b) {
			if b.Origin() == owner {
				return true
			}
		}
	}
	return false
}
