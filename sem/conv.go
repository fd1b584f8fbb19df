// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"github.com/hesam/SketchSharp-sub002/ir"
)

// convClass ranks implicit conversions; greater is better.
type convClass int

const (
	noConv convClass = iota
	lossyConv
	losslessConv
	exactConv
)

func (c convClass) String() string {
	switch c {
	case lossyConv:
		return "lossy"
	case losslessConv:
		return "lossless"
	case exactConv:
		return "exact"
	}
	return "none"
}

type conv struct {
	class convClass
	kind  ir.ConvKind
	// op is the user-defined operator of a UserConv.
	op *ir.Method
}

var none = conv{class: noConv}

func (c conv) ok() bool { return c.class != noConv }

func worst(a, b conv) conv {
	if a.class < b.class {
		return a
	}
	return b
}

func best(a, b conv) conv {
	if a.class > b.class {
		return a
	}
	return b
}

// implicitConv returns the implicit conversion from one type to another,
// including user-defined conversions.
func (x *state) implicitConv(from, to ir.Type) conv {
	return x.convert(from, to, true)
}

// standardConv is implicitConv without user-defined conversions.
func (x *state) standardConv(from, to ir.Type) conv {
	return x.convert(from, to, false)
}

func (x *state) convert(from, to ir.Type, user bool) conv {
	switch {
	case from == nil || to == nil || from == x.errType || to == x.errType:
		// Errors were already reported.
		return conv{class: exactConv}
	case from == to:
		return conv{class: exactConv}
	}
	key := convKey{from: x.arena.ID(from), to: x.arena.ID(to), user: user}
	if c, ok := x.convs.Get(key); ok {
		return c
	}
	c := x.convert1(from, to, user)
	x.convs.Add(key, c)
	return c
}

func (x *state) convert1(from, to ir.Type, user bool) conv {
	if from == x.nullType {
		return x.nullConv(to)
	}
	if c := x.modConv(from, to, user); c != nil {
		return *c
	}
	if c := x.setConv(from, to, user); c != nil {
		return *c
	}
	c := none
	switch f := from.(type) {
	case *ir.TypeDecl:
		c = x.declConv(f, to)
	case *ir.ArrayType:
		c = x.arrayConv(f, to)
	case *ir.TypeParam:
		c = x.tparmConv(f, to)
	case *ir.TupleType:
		if t, ok := to.(*ir.TupleType); ok && len(t.Fields) == len(f.Fields) {
			c = conv{class: exactConv, kind: ir.IdentityConv}
			for i := range f.Fields {
				fc := x.convert(f.Fields[i].Type, t.Fields[i].Type, user)
				c = worst(c, fc)
			}
			if c.ok() && c.class == exactConv {
				c = conv{class: losslessConv, kind: ir.IdentityConv}
			}
		} else if x.isObjectLike(to) {
			c = conv{class: losslessConv, kind: ir.BoxingConv}
		}
	case *ir.PointerType:
		if t, ok := to.(*ir.PointerType); ok && x.isPrim(t.Elem, ir.Void) {
			c = conv{class: losslessConv, kind: ir.ReferenceConv}
		}
	}
	if !c.ok() {
		if n := x.nullableArg(to); n != nil {
			src := from
			if m := x.nullableArg(from); m != nil {
				src = m
			}
			if e := x.convert(src, n, user); e.ok() {
				c = conv{class: worst(e, conv{class: losslessConv}).class, kind: ir.NullableConv, op: e.op}
			}
		}
	}
	if !c.ok() && user {
		c = x.userConv(from, to)
	}
	return c
}

func (x *state) nullConv(to ir.Type) conv {
	switch t := to.(type) {
	case *ir.PointerType:
		return conv{class: losslessConv, kind: ir.NullConv}
	case *ir.ModType:
		if t.Mod == ir.NonNull {
			return none
		}
		return x.nullConv(t.Elem)
	case *ir.TypeParam:
		if t.RefType {
			return conv{class: losslessConv, kind: ir.NullConv}
		}
		return none
	}
	if x.isRefType(to) || x.nullableArg(to) != nil {
		return conv{class: losslessConv, kind: ir.NullConv}
	}
	return none
}

// modConv handles conversions to and from modified types.
// Adding or removing a modifier never changes representation
// except for boxing, so it is a reference conversion;
// only removing nullability loses information.
func (x *state) modConv(from, to ir.Type, user bool) *conv {
	fm, fok := from.(*ir.ModType)
	tm, tok := to.(*ir.ModType)
	switch {
	case fok && tok && fm.Mod == tm.Mod:
		c := x.convert(fm.Elem, tm.Elem, user)
		return &c
	case tok:
		c := x.convert(from, tm.Elem, user)
		if c.ok() && tm.Mod == ir.Boxed && x.isValueType(from) {
			c = conv{class: losslessConv, kind: ir.BoxingConv}
		} else if c.class == exactConv {
			c = conv{class: losslessConv, kind: ir.ReferenceConv}
		}
		return &c
	case fok:
		c := x.convert(fm.Elem, to, user)
		if c.ok() && fm.Mod == ir.Nullable {
			c = worst(c, conv{class: lossyConv, kind: ir.ReferenceConv})
		}
		if c.class == exactConv {
			c = conv{class: losslessConv, kind: ir.ReferenceConv}
		}
		return &c
	}
	return nil
}

// setConv handles unions and intersections.
func (x *state) setConv(from, to ir.Type, user bool) *conv {
	switch f := from.(type) {
	case *ir.UnionType:
		// Every member must convert.
		c := conv{class: losslessConv, kind: ir.ReferenceConv}
		for _, e := range f.Elems {
			c = worst(c, x.convert(e, to, user))
		}
		if !c.ok() && x.isObjectLike(to) {
			c = conv{class: losslessConv, kind: ir.ReferenceConv}
		}
		return &c
	case *ir.IntersectionType:
		// Some member must convert.
		c := none
		for _, e := range f.Elems {
			c = best(c, x.convert(e, to, user))
		}
		if c.class == exactConv {
			c = conv{class: losslessConv, kind: ir.ReferenceConv}
		}
		return &c
	}
	switch t := to.(type) {
	case *ir.UnionType:
		c := none
		for _, e := range t.Elems {
			c = best(c, x.convert(from, e, user))
		}
		if c.ok() {
			if x.isValueType(from) {
				c = conv{class: losslessConv, kind: ir.BoxingConv}
			} else {
				c = conv{class: losslessConv, kind: ir.ReferenceConv}
			}
		}
		return &c
	case *ir.IntersectionType:
		c := conv{class: losslessConv, kind: ir.ReferenceConv}
		for _, e := range t.Elems {
			c = worst(c, x.convert(from, e, user))
		}
		return &c
	}
	return nil
}

// numericConvs are the implicit numeric conversions.
// The lossy ones may lose precision but not magnitude.
var numericConvs = map[ir.Prim]map[ir.Prim]convClass{
	ir.SByte:  {ir.Short: losslessConv, ir.Int: losslessConv, ir.Long: losslessConv, ir.Float: losslessConv, ir.Double: losslessConv},
	ir.Byte:   {ir.Short: losslessConv, ir.UShort: losslessConv, ir.Int: losslessConv, ir.UInt: losslessConv, ir.Long: losslessConv, ir.ULong: losslessConv, ir.Float: losslessConv, ir.Double: losslessConv},
	ir.Short:  {ir.Int: losslessConv, ir.Long: losslessConv, ir.Float: losslessConv, ir.Double: losslessConv},
	ir.UShort: {ir.Int: losslessConv, ir.UInt: losslessConv, ir.Long: losslessConv, ir.ULong: losslessConv, ir.Float: losslessConv, ir.Double: losslessConv},
	ir.Char:   {ir.UShort: losslessConv, ir.Int: losslessConv, ir.UInt: losslessConv, ir.Long: losslessConv, ir.ULong: losslessConv, ir.Float: losslessConv, ir.Double: losslessConv},
	ir.Int:    {ir.Long: losslessConv, ir.Float: lossyConv, ir.Double: losslessConv},
	ir.UInt:   {ir.Long: losslessConv, ir.ULong: losslessConv, ir.Float: lossyConv, ir.Double: losslessConv},
	ir.Long:   {ir.Float: lossyConv, ir.Double: lossyConv},
	ir.ULong:  {ir.Float: lossyConv, ir.Double: lossyConv},
	ir.Float:  {ir.Double: losslessConv},
}

func (x *state) declConv(f *ir.TypeDecl, to ir.Type) conv {
	t, ok := to.(*ir.TypeDecl)
	if !ok {
		return none
	}
	if c, ok := numericConvs[f.Prim][t.Prim]; ok && t.Prim != ir.NotPrim {
		return conv{class: c, kind: ir.NumericConv}
	}
	if f.Prim == ir.Null || f.Prim == ir.Error {
		return none
	}
	if !x.derives(f, t) {
		return none
	}
	if x.isValueType(f) && !x.isValueType(t) {
		return conv{class: losslessConv, kind: ir.BoxingConv}
	}
	return conv{class: losslessConv, kind: ir.ReferenceConv}
}

func (x *state) arrayConv(f *ir.ArrayType, to ir.Type) conv {
	switch t := to.(type) {
	case *ir.ArrayType:
		if t.Rank != f.Rank || !x.isRefType(f.Elem) {
			return none
		}
		if c := x.standardConv(f.Elem, t.Elem); c.ok() && c.kind == ir.ReferenceConv {
			return conv{class: losslessConv, kind: ir.ReferenceConv}
		}
	case *ir.TypeDecl:
		if x.derives(x.core.array, t) {
			return conv{class: losslessConv, kind: ir.ReferenceConv}
		}
		if f.Rank == 1 && t.Def == x.core.enumerableT {
			if c := x.standardConv(f.Elem, t.Args[0]); c.class == exactConv || c.kind == ir.ReferenceConv {
				return conv{class: losslessConv, kind: ir.ReferenceConv}
			}
		}
	}
	return none
}

func (x *state) tparmConv(f *ir.TypeParam, to ir.Type) conv {
	kind := ir.ReferenceConv
	if !f.RefType {
		kind = ir.BoxingConv
	}
	if x.isObjectLike(to) {
		return conv{class: losslessConv, kind: kind}
	}
	for _, b := range f.Bounds {
		if c := x.standardConv(b, to); c.ok() {
			return conv{class: losslessConv, kind: kind}
		}
	}
	if f.ValueType && to == x.core.valueType {
		return conv{class: losslessConv, kind: ir.BoxingConv}
	}
	return none
}

func (x *state) isObjectLike(t ir.Type) bool {
	return t == x.core.object
}

// derives returns whether t is u, or u is a base class
// or an implemented interface of t.
func (x *state) derives(t, u *ir.TypeDecl) bool {
	if t == u {
		return true
	}
	seen := make(map[*ir.TypeDecl]bool)
	var walk func(*ir.TypeDecl) bool
	walk = func(t *ir.TypeDecl) bool {
		if t == nil || seen[t] {
			return false
		}
		seen[t] = true
		if t == u {
			return true
		}
		x.bindDecl(t)
		for _, i := range t.Ifaces {
			if walk(i) {
				return true
			}
		}
		if t.Kind == ir.Interface {
			return u == x.core.object
		}
		return walk(x.baseOf(t))
	}
	return walk(t)
}

// userConv finds a user-defined implicit conversion operator
// declared by either type.
// The operator's parameter must accept the source
// and its result must convert to the target by standard conversions.
func (x *state) userConv(from, to ir.Type) conv {
	var ops []*ir.Method
	for _, t := range []ir.Type{from, to} {
		d := x.typeDeclOf(t)
		if d == nil || d.Prim != ir.NotPrim {
			continue
		}
		for _, m := range x.members(d, "op_Implicit", 0) {
			if m, ok := m.(*ir.Method); ok && m.Static && len(m.Params) == 1 {
				ops = append(ops, m)
			}
		}
	}
	var found *ir.Method
	for _, m := range ops {
		if !x.standardConv(from, m.Params[0].Type).ok() || !x.standardConv(m.Ret, to).ok() {
			continue
		}
		if found == nil || m.Params[0].Type == from && m.Ret == to {
			found = m
		}
	}
	if found == nil {
		return none
	}
	return conv{class: lossyConv, kind: ir.UserConv, op: found}
}

// explicitConv returns whether a cast from one type to another is allowed.
func (x *state) explicitConv(from, to ir.Type) bool {
	if x.implicitConv(from, to).ok() || x.implicitConv(to, from).ok() {
		return true
	}
	from, to = ir.Unwrap(from), ir.Unwrap(to)
	if n := x.nullableArg(from); n != nil {
		from = n
	}
	if n := x.nullableArg(to); n != nil {
		to = n
	}
	numeric := func(t ir.Type) bool {
		return primOf(t).IsNumeric() || isEnum(t)
	}
	switch {
	case numeric(from) && numeric(to):
		return true
	case isInterface(from) || isInterface(to):
		return !x.isValueType(from) || !x.isValueType(to) || x.implicitConv(from, to).ok()
	case x.isPointerOrInt(from) && x.isPointerOrInt(to):
		return true
	}
	if _, ok := from.(*ir.TypeParam); ok {
		return true
	}
	if _, ok := to.(*ir.TypeParam); ok {
		return true
	}
	for _, t := range []ir.Type{from, to} {
		d := x.typeDeclOf(t)
		if d == nil || d.Prim != ir.NotPrim {
			continue
		}
		for _, m := range x.members(d, "op_Explicit", 0) {
			if m, ok := m.(*ir.Method); ok && len(m.Params) == 1 &&
				x.standardConv(from, m.Params[0].Type).ok() && x.standardConv(m.Ret, to).ok() {
				return true
			}
		}
	}
	return false
}

func (x *state) isPointerOrInt(t ir.Type) bool {
	if _, ok := t.(*ir.PointerType); ok {
		return true
	}
	return primOf(t).IsIntegral()
}
