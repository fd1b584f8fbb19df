// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hesam/SketchSharp-sub002/ir"
)

type subMap map[*ir.TypeParam]ir.Type

func makeSubMap(parms []*ir.TypeParam, args []ir.Type) subMap {
	sub := make(subMap, len(parms))
	for i, p := range parms {
		if i < len(args) {
			sub[p] = args[i]
		}
	}
	return sub
}

func subTypes(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, ts0 []ir.Type) []ir.Type {
	var ts1 []ir.Type
	for _, t := range ts0 {
		ts1 = append(ts1, subType(x, seen, sub, t))
	}
	return ts1
}

// subType returns t with type parameters replaced by their substitutes.
// seen maps a generic definition to the instance being built from it.
func subType(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, t ir.Type) ir.Type {
	if t == nil || len(sub) == 0 {
		return t
	}
	switch t := t.(type) {
	case *ir.TypeParam:
		if s, ok := sub[t]; ok {
			return s
		}
		return t
	case *ir.TypeDecl:
		if t == nil {
			return nil
		}
		if inst := seen[t]; inst != nil {
			return inst
		}
		switch {
		case t.Def != nil:
			args := subTypes(x, seen, sub, t.Args)
			if typesEq(args, t.Args) {
				return t
			}
			return x.instType(t.Def, args, t.At)
		case len(t.TParms) > 0:
			args := subTypes(x, seen, sub, tparmTypes(t.TParms))
			if typesEq(args, tparmTypes(t.TParms)) {
				return t
			}
			return x.instType(t, args, t.At)
		}
		return t
	case *ir.ArrayType:
		return x.arrayOf(subType(x, seen, sub, t.Elem), t.Rank)
	case *ir.PointerType:
		return x.pointerTo(subType(x, seen, sub, t.Elem))
	case *ir.RefType:
		return x.refTo(subType(x, seen, sub, t.Elem))
	case *ir.ModType:
		elem := subType(x, seen, sub, t.Elem)
		switch {
		case t.Mod == ir.Nullable && x.isValueType(elem) && x.nullableArg(elem) == nil:
			return x.instType(x.core.nullable, []ir.Type{elem}, t.At)
		case t.Mod == ir.NonNull && x.isValueType(elem):
			return elem
		}
		return x.modOf(t.Mod, elem)
	case *ir.TupleType:
		fs := make([]ir.TupleField, len(t.Fields))
		for i, f := range t.Fields {
			fs[i] = ir.TupleField{Name: f.Name, Type: subType(x, seen, sub, f.Type)}
		}
		return x.tupleOf(fs)
	case *ir.UnionType:
		return x.unionOf(subTypes(x, seen, sub, t.Elems))
	case *ir.IntersectionType:
		return x.intersectionOf(subTypes(x, seen, sub, t.Elems))
	}
	panic(fmt.Sprintf("impossible type %T", t))
}

func tparmTypes(ps []*ir.TypeParam) []ir.Type {
	ts := make([]ir.Type, len(ps))
	for i, p := range ps {
		ts[i] = p
	}
	return ts
}

func typesEq(a, b []ir.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subTypeBody fills in the header and members of a new instance
// from its generic definition.
// Member signatures are substituted; bodies are shared with the definition.
func subTypeBody(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, inst *ir.TypeDecl) {
	defer x.tr("subTypeBody(%s, %s)", subDebugString(sub), inst)()
	def := inst.Def
	inst.BaseType = nil
	if def.BaseType != nil {
		if b, ok := subType(x, seen, sub, def.BaseType).(*ir.TypeDecl); ok {
			inst.BaseType = b
		}
	}
	inst.Ifaces = nil
	for _, i := range def.Ifaces {
		if i, ok := subType(x, seen, sub, i).(*ir.TypeDecl); ok {
			inst.Ifaces = append(inst.Ifaces, i)
		}
	}
	inst.Members = nil
	for _, m := range def.Members {
		inst.Members = append(inst.Members, subMember(x, seen, sub, inst, m))
	}
}

func subMember(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, inst *ir.TypeDecl, d ir.Decl) ir.Decl {
	switch d := d.(type) {
	case *ir.Field:
		f := *d
		f.Base = ir.Base{At: d.At}
		f.Type = subType(x, seen, sub, d.Type)
		f.Owner = inst
		f.Def = d
		return &f
	case *ir.Method:
		return subMethod(x, seen, sub, inst, d)
	case *ir.Property:
		p := *d
		p.Base = ir.Base{At: d.At}
		p.Type = subType(x, seen, sub, d.Type)
		p.Params = subParams(x, seen, sub, d.Params)
		p.Owner = inst
		p.Def = d
		return &p
	case *ir.Event:
		e := *d
		e.Base = ir.Base{At: d.At}
		e.Type = subType(x, seen, sub, d.Type)
		e.Owner = inst
		e.Def = d
		return &e
	}
	// Nested types are shared by all instances.
	return d
}

func subMethod(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, owner *ir.TypeDecl, m0 *ir.Method) *ir.Method {
	m1 := *m0
	m1.Base = ir.Base{At: m0.At}
	m1.Params = subParams(x, seen, sub, m0.Params)
	m1.Ret = subType(x, seen, sub, m0.Ret)
	m1.Owner = owner
	m1.Def = m0
	m1.Insts = nil
	return &m1
}

func subParams(x *scope, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, ps0 []*ir.Param) []*ir.Param {
	var ps1 []*ir.Param
	for _, p0 := range ps0 {
		p1 := *p0
		p1.Base = ir.Base{At: p0.At}
		p1.Type = subType(x, seen, sub, p0.Type)
		p1.Slot = nil
		ps1 = append(ps1, &p1)
	}
	return ps1
}

func subDebugString(sub subMap) string {
	var ss []string
	for k, v := range sub {
		ss = append(ss, fmt.Sprintf("%s=%s", k.Name, typeString(v)))
	}
	sort.Strings(ss)
	return "[" + strings.Join(ss, ",") + "]"
}
