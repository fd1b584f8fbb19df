// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"github.com/hesam/SketchSharp-sub002/ir"
)

// A binding is the inferred argument of a method type parameter.
type binding struct {
	t ir.Type
	// explicit is whether the argument was written at the call.
	explicit bool
}

// infer infers the type arguments of a generic method
// by unifying its parameter types with the argument types.
// Explicit arguments, if any, bind the leading type parameters.
// A parameter bound to two types is rebound to the wider type
// if one implicitly converts to the other; otherwise inference fails.
// Parameters that nothing constrains are bound to themselves.
func (x *scope) infer(m *ir.Method, explicit []ir.Type, params []ir.Type, args []ir.Type) (targs []ir.Type, ok bool) {
	defer x.tr("infer(%s, [%s])", m.Name, typeStrings(args))(&targs)
	bs := make(map[*ir.TypeParam]*binding, len(m.TParms))
	for i, p := range m.TParms {
		if i < len(explicit) && explicit[i] != nil {
			bs[p] = &binding{t: explicit[i], explicit: true}
		}
	}
	for i, a := range args {
		if i >= len(params) || a == nil || a == x.nullType || a == x.errType {
			continue
		}
		if !x.unify(bs, params[i], a) {
			return nil, false
		}
	}
	targs = make([]ir.Type, len(m.TParms))
	for i, p := range m.TParms {
		if b := bs[p]; b != nil {
			targs[i] = b.t
		} else {
			targs[i] = p
		}
	}
	return targs, true
}

func (x *scope) unify(bs map[*ir.TypeParam]*binding, p, a ir.Type) bool {
	switch p := p.(type) {
	case *ir.TypeParam:
		b, ok := bs[p]
		if !ok {
			if _, isMethParm := p.Owner.(*ir.Method); !isMethParm {
				return true
			}
			bs[p] = &binding{t: a}
			return true
		}
		switch {
		case b.t == a:
			return true
		case !b.explicit && x.implicitConv(b.t, a).ok():
			x.log("widen %s from %s to %s", p.Name, b.t, a)
			b.t = a
			return true
		case x.implicitConv(a, b.t).ok():
			return true
		}
		return false
	case *ir.ArrayType:
		if a, ok := a.(*ir.ArrayType); ok && a.Rank == p.Rank {
			return x.unify(bs, p.Elem, a.Elem)
		}
	case *ir.RefType:
		if a, ok := a.(*ir.RefType); ok {
			return x.unify(bs, p.Elem, a.Elem)
		}
		return x.unify(bs, p.Elem, a)
	case *ir.PointerType:
		if a, ok := a.(*ir.PointerType); ok {
			return x.unify(bs, p.Elem, a.Elem)
		}
	case *ir.ModType:
		return x.unify(bs, p.Elem, ir.Unwrap(a))
	case *ir.TupleType:
		if a, ok := a.(*ir.TupleType); ok && len(a.Fields) == len(p.Fields) {
			for i := range p.Fields {
				if !x.unify(bs, p.Fields[i].Type, a.Fields[i].Type) {
					return false
				}
			}
		}
	case *ir.TypeDecl:
		if p.Def == nil {
			return true
		}
		if at, ok := a.(*ir.ArrayType); ok && at.Rank == 1 && p.Def == x.core.enumerableT {
			return x.unify(bs, p.Args[0], at.Elem)
		}
		if inst := x.findInst(a, p.Def); inst != nil {
			for i := range p.Args {
				if !x.unify(bs, p.Args[i], inst.Args[i]) {
					return false
				}
			}
		}
	}
	return true
}

// findInst returns the instance of def that t is, derives from,
// or implements, searching declaring types too.
func (x *scope) findInst(t ir.Type, def *ir.TypeDecl) *ir.TypeDecl {
	d, ok := ir.Unwrap(t).(*ir.TypeDecl)
	if !ok {
		return nil
	}
	seen := make(map[*ir.TypeDecl]bool)
	var walk func(*ir.TypeDecl) *ir.TypeDecl
	walk = func(d *ir.TypeDecl) *ir.TypeDecl {
		if d == nil || seen[d] {
			return nil
		}
		seen[d] = true
		if d.Def == def {
			return d
		}
		x.bindDecl(d)
		if b := walk(x.baseOf(d)); b != nil {
			return b
		}
		for _, i := range d.Ifaces {
			if b := walk(i); b != nil {
				return b
			}
		}
		return walk(d.Outer)
	}
	return walk(d)
}
