// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
	"modernc.org/sortutil"
)

// typeKey returns the interning key of a structural type
// built from its element identities.
func (x *state) typeKey(kind string, elems []ir.Type, extra ...interface{}) string {
	var s strings.Builder
	s.WriteString(kind)
	for _, e := range elems {
		fmt.Fprintf(&s, " %d", x.arena.ID(e))
	}
	for _, e := range extra {
		fmt.Fprintf(&s, " %v", e)
	}
	return s.String()
}

func (x *state) intern(key string, t ir.Type) ir.Type {
	if u, ok := x.structural[key]; ok {
		return u
	}
	x.structural[key] = t
	return t
}

func (x *state) arrayOf(elem ir.Type, rank int) *ir.ArrayType {
	if rank < 1 {
		rank = 1
	}
	key := x.typeKey("array", []ir.Type{elem}, rank)
	return x.intern(key, &ir.ArrayType{Elem: elem, Rank: rank}).(*ir.ArrayType)
}

func (x *state) pointerTo(elem ir.Type) *ir.PointerType {
	key := x.typeKey("pointer", []ir.Type{elem})
	return x.intern(key, &ir.PointerType{Elem: elem}).(*ir.PointerType)
}

func (x *state) refTo(elem ir.Type) *ir.RefType {
	key := x.typeKey("ref", []ir.Type{elem})
	return x.intern(key, &ir.RefType{Elem: elem}).(*ir.RefType)
}

func (x *state) tupleOf(fields []ir.TupleField) *ir.TupleType {
	var ts []ir.Type
	var names []interface{}
	for _, f := range fields {
		ts = append(ts, f.Type)
		names = append(names, f.Name)
	}
	key := x.typeKey("tuple", ts, names...)
	return x.intern(key, &ir.TupleType{Fields: fields}).(*ir.TupleType)
}

// modOf returns the interned ModType without normalization.
func (x *state) modOf(mod ir.Modifier, elem ir.Type) *ir.ModType {
	key := x.typeKey("mod", []ir.Type{elem}, mod)
	return x.intern(key, &ir.ModType{Mod: mod, Elem: elem}).(*ir.ModType)
}

type byID struct {
	x  *state
	ts []ir.Type
}

func (s byID) Len() int      { return len(s.ts) }
func (s byID) Swap(i, j int) { s.ts[i], s.ts[j] = s.ts[j], s.ts[i] }
func (s byID) Less(i, j int) bool {
	return s.x.arena.ID(s.ts[i]) < s.x.arena.ID(s.ts[j])
}

// setOf flattens nested unions (or intersections), sorts,
// and removes duplicates.
func (x *state) setOf(elems []ir.Type, union bool) []ir.Type {
	var flat []ir.Type
	var add func(ir.Type)
	add = func(t ir.Type) {
		switch t := t.(type) {
		case *ir.UnionType:
			if union {
				for _, e := range t.Elems {
					add(e)
				}
				return
			}
		case *ir.IntersectionType:
			if !union {
				for _, e := range t.Elems {
					add(e)
				}
				return
			}
		}
		if t != nil {
			flat = append(flat, t)
		}
	}
	for _, e := range elems {
		add(e)
	}
	s := byID{x: x, ts: flat}
	sort.Sort(s)
	return flat[:sortutil.Dedupe(s)]
}

func (x *state) unionOf(elems []ir.Type) ir.Type {
	ts := x.setOf(elems, true)
	switch len(ts) {
	case 0:
		return nil
	case 1:
		return ts[0]
	}
	return x.intern(x.typeKey("union", ts), &ir.UnionType{Elems: ts})
}

func (x *state) intersectionOf(elems []ir.Type) ir.Type {
	ts := x.setOf(elems, false)
	switch len(ts) {
	case 0:
		return nil
	case 1:
		return ts[0]
	}
	return x.intern(x.typeKey("intersection", ts), &ir.IntersectionType{Elems: ts})
}

// modify applies a modifier to a type, normalizing the result.
func (x *scope) modify(mod ir.Modifier, t ir.Type, at loc.Loc) ir.Type {
	defer x.tr("modify(%s, %s)", mod, t)()
	if t == nil || t == x.errType {
		return t
	}
	if m, ok := t.(*ir.ModType); ok && m.Mod == mod {
		x.report(diag.RedundantModifier, at, mod.Suffix(), t.String())
		return t
	}
	switch mod {
	case ir.NonNull:
		if m, ok := t.(*ir.ModType); ok && m.Mod == ir.Nullable {
			return x.modify(ir.NonNull, m.Elem, at)
		}
		if n := x.nullableArg(t); n != nil {
			return n
		}
		if x.isValueType(t) {
			x.reportOnce(t, diag.AlreadyNonNull, at, t.String())
			return t
		}
		if e := x.streamElem(t); e != nil {
			ne := x.instType(x.core.nonEmptyT, []ir.Type{e}, at)
			x.report(diag.StreamModifier, at, mod.String(), t.String(), ne.String())
			return ne
		}
	case ir.Nullable:
		if m, ok := t.(*ir.ModType); ok && m.Mod == ir.NonNull {
			return x.modify(ir.Nullable, m.Elem, at)
		}
		if x.nullableArg(t) != nil {
			x.report(diag.RedundantModifier, at, mod.Suffix(), t.String())
			return t
		}
		if x.isValueType(t) {
			return x.instType(x.core.nullable, []ir.Type{t}, at)
		}
	case ir.Invariant:
		if x.streamElem(t) != nil {
			x.report(diag.StreamModifier, at, mod.String(), t.String(), t.String())
			return t
		}
	case ir.Boxed:
		if !x.isValueType(t) {
			if _, ok := t.(*ir.TypeParam); !ok {
				x.report(diag.BadModifier, at, mod.String(), t.String())
				return t
			}
		}
	}
	return x.modOf(mod, t)
}

// nullableArg returns T if t is System.Nullable<T>.
func (x *state) nullableArg(t ir.Type) ir.Type {
	if d, ok := t.(*ir.TypeDecl); ok && d.Def == x.core.nullable && len(d.Args) == 1 {
		return d.Args[0]
	}
	return nil
}

// streamElem returns T if t is an IEnumerable<T> or NonEmptyIEnumerable<T>.
func (x *state) streamElem(t ir.Type) ir.Type {
	if d, ok := t.(*ir.TypeDecl); ok && len(d.Args) == 1 &&
		(d.Def == x.core.enumerableT || d.Def == x.core.nonEmptyT) {
		return d.Args[0]
	}
	return nil
}

func (x *state) isValueType(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.TypeDecl:
		switch {
		case t.Prim == ir.String || t.Prim == ir.Object || t.Prim == ir.Null || t.Prim == ir.Error:
			return false
		case t.Prim != ir.NotPrim:
			return true
		}
		return t.Kind == ir.Struct || t.Kind == ir.Enum
	case *ir.TypeParam:
		return t.ValueType || t.Unmanaged
	case *ir.TupleType, *ir.PointerType:
		return true
	case *ir.ModType:
		return t.Mod != ir.Boxed && x.isValueType(t.Elem)
	}
	return false
}

// isRefType returns whether t can hold a null reference.
func (x *state) isRefType(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.TypeDecl:
		if t.Prim == ir.String || t.Prim == ir.Object {
			return true
		}
		if t.Prim != ir.NotPrim {
			return false
		}
		return t.Kind == ir.Class || t.Kind == ir.Interface || t.Kind == ir.Delegate
	case *ir.TypeParam:
		return t.RefType
	case *ir.ArrayType, *ir.UnionType, *ir.IntersectionType:
		return true
	case *ir.ModType:
		return t.Mod == ir.Nullable || t.Mod == ir.Boxed || t.Mod != ir.NonNull && x.isRefType(t.Elem)
	}
	return false
}

func (x *state) isUnmanaged(t ir.Type, seen map[ir.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true
	switch t := t.(type) {
	case *ir.TypeDecl:
		if t.Prim != ir.NotPrim {
			return t.Prim.Size() > 0
		}
		switch t.Kind {
		case ir.Enum:
			return true
		case ir.Struct:
			for _, m := range t.Members {
				if f, ok := m.(*ir.Field); ok && !ir.IsStatic(f) {
					if f.Type == nil || !x.isUnmanaged(f.Type, seen) {
						return false
					}
				}
			}
			return true
		}
	case *ir.PointerType:
		return true
	case *ir.TypeParam:
		return t.Unmanaged
	}
	return false
}

// sizeOf returns the size of an unmanaged type in bytes, or 0.
func (x *state) sizeOf(t ir.Type) int {
	switch t := t.(type) {
	case *ir.TypeDecl:
		if t.Prim != ir.NotPrim {
			return t.Prim.Size()
		}
		if t.Kind == ir.Enum {
			return x.sizeOf(x.enumBase(t))
		}
		n := 0
		for _, m := range t.Members {
			if f, ok := m.(*ir.Field); ok && !ir.IsStatic(f) && f.Type != nil {
				n += x.sizeOf(f.Type)
			}
		}
		return n
	case *ir.PointerType:
		return 8
	}
	return 0
}

func (x *state) enumBase(t *ir.TypeDecl) *ir.TypeDecl {
	if t.EnumBase != nil {
		return t.EnumBase
	}
	return x.prims[ir.Int]
}

func (x *state) isPrim(t ir.Type, ps ...ir.Prim) bool {
	d, ok := t.(*ir.TypeDecl)
	if !ok {
		return false
	}
	for _, p := range ps {
		if d.Prim == p {
			return true
		}
	}
	return false
}

func primOf(t ir.Type) ir.Prim {
	if d, ok := t.(*ir.TypeDecl); ok {
		return d.Prim
	}
	return ir.NotPrim
}

func isEnum(t ir.Type) bool {
	d, ok := t.(*ir.TypeDecl)
	return ok && d.Kind == ir.Enum && d.Prim == ir.NotPrim
}

func isDelegate(t ir.Type) bool {
	d, ok := t.(*ir.TypeDecl)
	return ok && d.Kind == ir.Delegate
}

func isInterface(t ir.Type) bool {
	d, ok := t.(*ir.TypeDecl)
	return ok && d.Kind == ir.Interface
}

// invokeOf returns the Invoke method of a delegate type.
func invokeOf(t ir.Type) *ir.Method {
	d, ok := ir.Unwrap(t).(*ir.TypeDecl)
	if !ok || d.Kind != ir.Delegate {
		return nil
	}
	for _, m := range d.Lookup("Invoke") {
		if m, ok := m.(*ir.Method); ok {
			return m
		}
	}
	return nil
}

// structKey returns a key identifying a type declaration by its shape:
// kind, full name, and member signatures.
func structKey(t *ir.TypeDecl) string {
	var ms []string
	for _, m := range t.Members {
		s := m.DeclKind() + " " + m.DeclName()
		if fn, ok := m.(*ir.Method); ok {
			for _, p := range fn.Params {
				if p.TypeExpr != nil {
					s += " " + p.TypeExpr.String()
				}
			}
		}
		ms = append(ms, s)
	}
	sort.Strings(ms)
	return t.Kind.String() + " " + t.FullName() + "{" + strings.Join(ms, ";") + "}"
}

// typeString returns the diagnostic string of a possibly nil type.
func typeString(t ir.Type) string {
	if t == nil {
		return "<error>"
	}
	return t.String()
}

func typeStrings(ts []ir.Type) string {
	var ss []string
	for _, t := range ts {
		ss = append(ss, typeString(t))
	}
	return strings.Join(ss, ", ")
}
