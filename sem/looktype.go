// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strconv"
	"strings"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// lookType resolves a type expression in the current scope.
// An expression that cannot be resolved is reported and resolves to nil.
// Each type expression is resolved once.
func (x *scope) lookType(te ir.TypeExpr) (res ir.Type) {
	if te == nil {
		return nil
	}
	if t, ok := x.resolved[te]; ok {
		return t
	}
	defer x.tr("lookType(%s)", te)(&res)
	t := x.lookType1(te)
	x.resolved[te] = t
	return t
}

func (x *scope) lookTypes(tes []ir.TypeExpr) ([]ir.Type, bool) {
	ok := true
	var ts []ir.Type
	for _, te := range tes {
		t := x.lookType(te)
		if t == nil {
			ok = false
		}
		ts = append(ts, t)
	}
	return ts, ok
}

func (x *scope) lookType1(te ir.TypeExpr) ir.Type {
	switch te := te.(type) {
	case *ir.NamedTypeExpr:
		return x.lookNamedType(te)
	case *ir.ArrayTypeExpr:
		if e := x.lookType(te.Elem); e != nil {
			return x.arrayOf(e, te.Rank)
		}
	case *ir.PointerTypeExpr:
		if e := x.lookType(te.Elem); e != nil {
			return x.pointerTo(e)
		}
	case *ir.RefTypeExpr:
		if e := x.lookType(te.Elem); e != nil {
			return x.refTo(e)
		}
	case *ir.ModTypeExpr:
		if e := x.lookType(te.Elem); e != nil {
			return x.modify(te.Mod, e, te.Loc())
		}
	case *ir.TupleTypeExpr:
		ts, ok := x.lookTypes(te.Elems)
		if !ok {
			return nil
		}
		fs := make([]ir.TupleField, len(ts))
		for i, t := range ts {
			fs[i].Type = t
			if i < len(te.Names) {
				fs[i].Name = te.Names[i]
			}
		}
		return x.tupleOf(fs)
	case *ir.UnionTypeExpr:
		if ts, ok := x.lookTypes(te.Elems); ok {
			return x.unionOf(ts)
		}
	case *ir.IntersectionTypeExpr:
		if ts, ok := x.lookTypes(te.Elems); ok {
			return x.intersectionOf(ts)
		}
	}
	return nil
}

// A hit is a resolved element of a qualified type name.
type hit struct {
	ns   string
	isNS bool
	typ  ir.Type
	decl ir.Decl
}

func (x *scope) lookNamedType(te *ir.NamedTypeExpr) ir.Type {
	args, ok := x.lookTypes(te.Args)
	if !ok {
		return nil
	}
	path := te.Path
	if len(path) == 1 && len(args) == 0 {
		if p, ok := ir.PrimByName(path[0]); ok && p < ir.Null {
			return x.prims[p]
		}
	}
	at := te.Loc()
	var cur hit
	for i, name := range path {
		arity := 0
		if i == len(path)-1 {
			arity = len(args)
		}
		var f *found
		switch {
		case i == 0:
			f = x.lookup(name, arity)
		case cur.isNS:
			f = x.lookupIn(cur.ns, name, arity)
		case cur.typ == nil:
			x.report(diag.NotAType, at, strings.Join(path[:i], "."), cur.decl.DeclKind())
			return nil
		default:
			d, ok := cur.typ.(*ir.TypeDecl)
			if !ok {
				x.report(diag.MemberNotFound, at, cur.typ.String(), name)
				return nil
			}
			f = x.splitAccess(nestedTypes(x.members(d, name, arity)))
		}
		h, ok := x.hitOf(name, f, te)
		if !ok {
			x.reportTypeNotFound(te, i, cur, f, arity)
			return nil
		}
		cur = h
	}
	switch {
	case cur.isNS:
		x.report(diag.NotAType, at, te.String(), "namespace")
		return nil
	case cur.typ == nil:
		x.report(diag.NotAType, at, te.String(), cur.decl.DeclKind())
		return nil
	}
	if cur.decl != nil {
		x.checkObsolete(cur.decl, at)
	}
	d, ok := cur.typ.(*ir.TypeDecl)
	if !ok || len(args) == 0 {
		return cur.typ
	}
	return x.instAt(d, args, at)
}

// instAt instantiates a generic type named at a site,
// checking the constraints of the arguments there.
func (x *scope) instAt(d *ir.TypeDecl, args []ir.Type, at loc.Loc) ir.Type {
	x.checkConstraints(d.TParms, args, d.String(), at, true)
	return x.instType(d, args, at)
}

func nestedTypes(ds []ir.Decl) []ir.Decl {
	var ts []ir.Decl
	for _, d := range ds {
		if _, ok := d.(*ir.TypeDecl); ok {
			ts = append(ts, d)
		}
	}
	return ts
}

func (x *scope) hitOf(name string, f *found, n ir.Node) (hit, bool) {
	switch {
	case f.isNS:
		return hit{ns: f.ns, isNS: true}, true
	case f.alias != nil:
		x.lookAlias(f.alias)
		if f.alias.Type != nil {
			return hit{typ: f.alias.Type}, true
		}
		if f.alias.Namespace != "" {
			return hit{ns: f.alias.Namespace, isNS: true}, true
		}
		return hit{}, false
	case len(f.decls) == 0:
		return hit{}, false
	}
	x.reportAmbiguous(name, f, n)
	switch d := f.decls[0].(type) {
	case *ir.TypeDecl:
		return hit{typ: d, decl: d}, true
	case *ir.TypeParam:
		return hit{typ: d, decl: d}, true
	default:
		return hit{decl: d}, true
	}
}

func (x *scope) reportTypeNotFound(te *ir.NamedTypeExpr, i int, cur hit, f *found, arity int) {
	at := te.Loc()
	name := te.Path[i]
	switch {
	case len(f.inacc) > 0:
		x.report(diag.TypeInaccessible, at, name)
	case i == len(te.Path)-1 && x.reportArity(te, i, cur):
	case i > 0 && cur.isNS:
		x.report(diag.NamespaceMemberNotFound, at, cur.ns, name)
	default:
		x.report(diag.TypeNotFound, at, strings.Join(te.Path[:i+1], "."))
	}
}

// reportArity reports a generic type used with the wrong number of
// type arguments, if one exists with the name.
func (x *scope) reportArity(te *ir.NamedTypeExpr, i int, cur hit) bool {
	name := te.Path[i]
	for k := 0; k <= 8; k++ {
		if k == len(te.Args) {
			continue
		}
		var f *found
		x.mute++
		switch {
		case i == 0:
			f = x.lookup(name, k)
		case cur.isNS:
			f = x.lookupIn(cur.ns, name, k)
		default:
			if d, ok := cur.typ.(*ir.TypeDecl); ok {
				f = x.splitAccess(nestedTypes(x.members(d, name, k)))
			}
		}
		x.mute--
		if f == nil || len(f.decls) == 0 {
			continue
		}
		if _, ok := f.decls[0].(*ir.TypeDecl); ok {
			x.report(diag.WrongTypeArgCount, te.Loc(), name, strconv.Itoa(k), strconv.Itoa(len(te.Args)))
			return true
		}
	}
	return false
}

// lookAlias resolves the target of a using-alias.
// Targets are resolved from the global namespace.
func (x *state) lookAlias(a *ir.Alias) {
	if a.Type != nil || a.Namespace != "" {
		return
	}
	if nt, ok := a.Target.(*ir.NamedTypeExpr); ok && len(nt.Args) == 0 {
		name := strings.Join(nt.Path, ".")
		if _, ok := x.nss[name]; ok {
			a.Namespace = name
			return
		}
	}
	a.Type = newScope(x).lookType(a.Target)
}

// typeDeclOf returns the declaration whose members are the members of t.
func (x *state) typeDeclOf(t ir.Type) *ir.TypeDecl {
	switch t := ir.Unwrap(t).(type) {
	case *ir.TypeDecl:
		if t.Prim == ir.Null || t.Prim == ir.Error {
			return nil
		}
		return t
	case *ir.ArrayType:
		return x.core.array
	case *ir.TypeParam:
		for _, b := range t.Bounds {
			if d, ok := b.(*ir.TypeDecl); ok && d.Kind == ir.Class {
				return d
			}
		}
		if t.ValueType {
			return x.core.valueType
		}
		return x.core.object
	}
	return nil
}

// typeMembers returns the members of a type named name,
// including those of the interface bounds of a type parameter.
func (x *state) typeMembers(t ir.Type, name string, arity int) []ir.Decl {
	d := x.typeDeclOf(t)
	if d == nil {
		return nil
	}
	ds := x.members(d, name, arity)
	if p, ok := ir.Unwrap(t).(*ir.TypeParam); ok && len(ds) == 0 {
		for _, b := range p.Bounds {
			if bd, ok := b.(*ir.TypeDecl); ok && bd.Kind == ir.Interface {
				ds = append(ds, x.members(bd, name, arity)...)
			}
		}
	}
	return ds
}
