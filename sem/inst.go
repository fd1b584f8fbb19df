// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strconv"
	"strings"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// A workItem is an instance waiting to be visited.
type workItem struct {
	n ir.Node
	// secondary is whether the instance was created
	// while visiting another instance.
	secondary bool
	// quiet is whether the instance was created
	// while diagnostics were suppressed.
	quiet bool
	// depth is the number of instances visited
	// on the way to creating this one.
	depth int
	at    loc.Loc
}

// maxVisitDepth bounds the instances created by visiting bodies,
// which would otherwise grow without limit
// for a method like F<T>() { F<List<T>>(); }.
const maxVisitDepth = 8

func (x *state) instKey(def ir.Node, args []ir.Type) instKey {
	var s strings.Builder
	for i, a := range args {
		if i > 0 {
			s.WriteRune(',')
		}
		s.WriteString(strconv.FormatInt(int64(x.arena.ID(a)), 10))
	}
	return instKey{def: x.arena.ID(def), args: s.String()}
}

// instType returns the instance of a generic type for the given arguments.
// Each (definition, arguments) pair is instantiated at most once.
// The instance is registered before its members are substituted,
// so references to it from its own members find it.
// If a new instance of a definition is requested
// while the definition is being instantiated,
// the definition itself is returned; this bounds expansive recursion.
func (x *state) instType(def *ir.TypeDecl, args []ir.Type, at loc.Loc) (res *ir.TypeDecl) {
	def = def.Origin()
	if len(args) == 0 || len(def.TParms) != len(args) {
		return def
	}
	if typesEq(args, tparmTypes(def.TParms)) {
		return def
	}
	key := x.instKey(def, args)
	if n, ok := x.insts[key]; ok {
		return n.(*ir.TypeDecl)
	}
	defer x.tr("instType(%s, [%s])", def, typeStrings(args))(&res)
	if x.instantiating[def] {
		x.log("%s is being instantiated; using the definition", def)
		return def
	}
	x.bindDecl(def)
	inst := &ir.TypeDecl{}
	*inst = *def
	inst.Base = ir.Base{At: def.At}
	inst.Def = def
	inst.Args = args
	inst.Insts = nil
	inst.Members = nil
	x.insts[key] = inst
	def.Insts = append(def.Insts, inst)
	x.info.Instances++
	x.enqueue(inst, at)
	if x.bound[def] == bindBusy {
		x.log("deferring members of %s", inst)
		x.pending[def] = append(x.pending[def], inst)
		return inst
	}
	x.fillInst(inst)
	return inst
}

func (x *state) fillInst(inst *ir.TypeDecl) {
	def := inst.Def
	x.instantiating[def] = true
	defer delete(x.instantiating, def)
	s := newScope(x)
	subTypeBody(s, map[*ir.TypeDecl]*ir.TypeDecl{def: inst}, makeSubMap(def.TParms, inst.Args), inst)
}

// instMethod returns the instance of a generic method
// for the given type arguments.
func (x *state) instMethod(m *ir.Method, targs []ir.Type, at loc.Loc) (res *ir.Method) {
	if len(targs) == 0 || len(m.TParms) != len(targs) || typesEq(targs, tparmTypes(m.TParms)) {
		return m
	}
	key := x.instKey(m, targs)
	if n, ok := x.insts[key]; ok {
		return n.(*ir.Method)
	}
	defer x.tr("instMethod(%s.%s, [%s])", m.Owner, m.Name, typeStrings(targs))()
	s := newScope(x)
	inst := subMethod(s, map[*ir.TypeDecl]*ir.TypeDecl{}, makeSubMap(m.TParms, targs), m.Owner, m)
	inst.TParms = nil
	inst.TArgs = targs
	x.insts[key] = inst
	m.Insts = append(m.Insts, inst)
	x.info.Instances++
	x.enqueue(inst, at)
	return inst
}

func (x *state) enqueue(n ir.Node, at loc.Loc) {
	w := workItem{
		n:         n,
		secondary: x.draining,
		quiet:     x.mute > 0,
		at:        at,
	}
	if x.draining {
		w.depth = x.visiting + 1
	}
	x.work = append(x.work, w)
}

// drain visits the instances on the worklist,
// including those added while draining.
func drain(x *scope) {
	defer x.tr("drain(%d)", len(x.work)-x.drained)()
	x.draining = true
	for ; x.drained < len(x.work); x.drained++ {
		w := x.work[x.drained]
		x.visiting = w.depth
		visitInst(x, w)
	}
	x.draining = false
}

// visitInst checks the constraints of the instances
// appearing in the substituted signatures and bodies of an instance.
// Bodies are shared with the definition;
// their types are substituted as they are visited,
// and generic methods they call are instantiated in turn.
// Diagnostics are suppressed for secondary and quiet instances;
// the instance that caused them reports at its own site.
func visitInst(x *scope, w workItem) {
	report := !w.secondary && !w.quiet
	var ts []ir.Type
	switch n := w.n.(type) {
	case *ir.TypeDecl:
		defer x.tr("visitInst(%s, report=%v)", n, report)()
		if len(n.Members) == 0 && len(x.pending[n.Def]) > 0 {
			return
		}
		seen := map[*ir.TypeDecl]*ir.TypeDecl{n.Def: n}
		sub := makeSubMap(n.Def.TParms, n.Args)
		for _, m := range n.Members {
			ts = append(ts, sigTypes(m)...)
			if m, ok := m.(*ir.Method); ok && len(m.TParms) == 0 {
				ts = append(ts, bodyTypes(x, w, seen, sub, m.Body)...)
			}
		}
	case *ir.Method:
		defer x.tr("visitInst(%s.%s, report=%v)", n.Owner, n.Name, report)()
		ts = sigTypes(n)
		seen := map[*ir.TypeDecl]*ir.TypeDecl{}
		sub := subMap{}
		if o := n.Owner; o != nil && o.Def != nil {
			seen[o.Def] = o
			sub = makeSubMap(o.Def.TParms, o.Args)
		}
		if n.Def != nil {
			for i, p := range n.Def.TParms {
				if i < len(n.TArgs) {
					sub[p] = n.TArgs[i]
				}
			}
		}
		ts = append(ts, bodyTypes(x, w, seen, sub, n.Body)...)
	}
	checked := make(map[ir.Type]bool)
	for _, t := range ts {
		if t == nil || checked[t] {
			continue
		}
		checked[t] = true
		if !x.checkTypeConstraints(t, w.at, report) && !report {
			x.info.Suppressed++
		}
	}
}

// bodyTypes returns the substituted types of the locals and expressions of body.
func bodyTypes(x *scope, w workItem, seen map[*ir.TypeDecl]*ir.TypeDecl, sub subMap, body *ir.Block) []ir.Type {
	if body == nil || len(sub) == 0 {
		return nil
	}
	if w.depth >= maxVisitDepth {
		x.log("not visiting body at depth %d", w.depth)
		return nil
	}
	var ts []ir.Type
	add := func(t ir.Type) {
		if t != nil && t != x.errType {
			ts = append(ts, subType(x, seen, sub, t))
		}
	}
	ir.Walk(body, func(n ir.Node) bool {
		switch n := n.(type) {
		case *ir.LocalDecl:
			if n.Slot != nil {
				add(n.Slot.Type)
			}
		case *ir.Call:
			if m := n.Method; m != nil && m.Def != nil && len(m.TArgs) > 0 {
				if args := subTypes(x, seen, sub, m.TArgs); !typesEq(args, m.TArgs) {
					x.instMethod(m.Def, args, w.at)
				}
			}
			add(n.Type())
		case ir.Expr:
			add(n.Type())
		}
		return true
	})
	return ts
}

func sigTypes(d ir.Decl) []ir.Type {
	switch d := d.(type) {
	case *ir.Field:
		if d.Slot == ir.NotSlot {
			return []ir.Type{d.Type}
		}
	case *ir.Method:
		ts := []ir.Type{d.Ret}
		for _, p := range d.Params {
			ts = append(ts, p.Type)
		}
		return ts
	case *ir.Property:
		ts := []ir.Type{d.Type}
		for _, p := range d.Params {
			ts = append(ts, p.Type)
		}
		return ts
	case *ir.Event:
		return []ir.Type{d.Type}
	}
	return nil
}

// checkTypeConstraints checks the constraints of every instance within t.
func (x *scope) checkTypeConstraints(t ir.Type, at loc.Loc, report bool) bool {
	ok := true
	var walk func(ir.Type)
	walk = func(t ir.Type) {
		switch t := t.(type) {
		case *ir.TypeDecl:
			if t.Def != nil {
				for _, a := range t.Args {
					walk(a)
				}
				if !x.checkConstraints(t.Def.TParms, t.Args, t.Def.String(), at, report) {
					ok = false
				}
			}
		case *ir.ArrayType:
			walk(t.Elem)
		case *ir.PointerType:
			walk(t.Elem)
		case *ir.RefType:
			walk(t.Elem)
		case *ir.ModType:
			walk(t.Elem)
		case *ir.TupleType:
			for _, f := range t.Fields {
				walk(f.Type)
			}
		case *ir.UnionType:
			for _, e := range t.Elems {
				walk(e)
			}
		case *ir.IntersectionType:
			for _, e := range t.Elems {
				walk(e)
			}
		}
	}
	walk(t)
	return ok
}

// checkConstraints checks type arguments against
// the constraints of their type parameters.
func (x *scope) checkConstraints(parms []*ir.TypeParam, args []ir.Type, of string, at loc.Loc, report bool) bool {
	ok := true
	fail := func(kind diag.Kind, args ...string) {
		ok = false
		if report {
			x.report(kind, at, args...)
		}
	}
	sub := makeSubMap(parms, args)
	for i, p := range parms {
		if i >= len(args) || args[i] == nil || args[i] == x.errType {
			continue
		}
		a := args[i]
		use := p.Name + " in " + of
		if p.RefType && !x.isRefType(a) {
			fail(diag.ConstraintRefType, a.String(), use)
		}
		if p.ValueType && (!x.isValueType(a) || x.nullableArg(a) != nil) {
			fail(diag.ConstraintValueType, a.String(), use)
		}
		if p.Unmanaged && !x.isUnmanaged(a, map[ir.Type]bool{}) {
			fail(diag.ConstraintUnmanaged, a.String(), use)
		}
		if p.DefaultCtor && !x.hasDefaultCtor(a) {
			fail(diag.ConstraintDefaultCtor, a.String(), use)
		}
		for _, b := range p.Bounds {
			b = subType(x, map[*ir.TypeDecl]*ir.TypeDecl{}, sub, b)
			if x.implicitConv(a, b).class == noConv {
				fail(diag.ConstraintBase, a.String(), b.String(), use)
			}
		}
	}
	return ok
}

func (x *scope) hasDefaultCtor(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.TypeParam:
		return t.DefaultCtor || t.ValueType || t.Unmanaged
	case *ir.TypeDecl:
		if x.isValueType(t) {
			return true
		}
		if t.Kind != ir.Class || t.Abstract || t.Static {
			return false
		}
		ctors := 0
		for _, d := range t.Lookup(".ctor") {
			m := d.(*ir.Method)
			ctors++
			if len(m.Params) == 0 && m.Access == ir.Public {
				return true
			}
		}
		return ctors == 0
	}
	return false
}
