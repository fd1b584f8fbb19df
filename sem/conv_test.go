// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"testing"

	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

func newTestScope(t *testing.T) *scope {
	t.Helper()
	return newScope(newState(Config{}, &ir.Unit{Module: &ir.Module{Name: "M"}}))
}

// refType returns the referenced core type ns.name of the given arity.
func refType(t *testing.T, x *scope, ns, name string, arity int) *ir.TypeDecl {
	t.Helper()
	for _, d := range x.nss[ns].refs[name] {
		if len(d.TParms) == arity {
			return d
		}
	}
	t.Fatalf("no type %s.%s`%d", ns, name, arity)
	return nil
}

func TestImplicitConv(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	p := func(prim ir.Prim) ir.Type { return x.prims[prim] }
	enumInt := x.instType(x.core.enumerableT, []ir.Type{p(ir.Int)}, loc.Loc{})
	enumObj := x.instType(x.core.enumerableT, []ir.Type{x.core.object}, loc.Loc{})
	nullableInt := x.instType(x.core.nullable, []ir.Type{p(ir.Int)}, loc.Loc{})
	tests := []struct {
		name     string
		from, to ir.Type
		class    convClass
		kind     ir.ConvKind
	}{
		{"identity", p(ir.Int), p(ir.Int), exactConv, 0},
		{"widen", p(ir.Int), p(ir.Long), losslessConv, ir.NumericConv},
		{"int to float", p(ir.Int), p(ir.Float), lossyConv, ir.NumericConv},
		{"int to double", p(ir.Int), p(ir.Double), losslessConv, ir.NumericConv},
		{"long to double", p(ir.Long), p(ir.Double), lossyConv, ir.NumericConv},
		{"char to int", p(ir.Char), p(ir.Int), losslessConv, ir.NumericConv},
		{"byte to ulong", p(ir.Byte), p(ir.ULong), losslessConv, ir.NumericConv},
		{"narrow", p(ir.Long), p(ir.Int), noConv, 0},
		{"int to char", p(ir.Int), p(ir.Char), noConv, 0},
		{"sbyte to uint", p(ir.SByte), p(ir.UInt), noConv, 0},
		{"box", p(ir.Int), x.core.object, losslessConv, ir.BoxingConv},
		{"box to value type", p(ir.Int), x.core.valueType, losslessConv, ir.BoxingConv},
		{"string to object", x.core.str, x.core.object, losslessConv, ir.ReferenceConv},
		{"object to string", x.core.object, x.core.str, noConv, 0},
		{"null to string", x.nullType, x.core.str, losslessConv, ir.NullConv},
		{"null to int", x.nullType, p(ir.Int), noConv, 0},
		{"null to int?", x.nullType, nullableInt, losslessConv, ir.NullConv},
		{"int to int?", p(ir.Int), nullableInt, losslessConv, ir.NullableConv},
		{"array to Array", x.arrayOf(p(ir.Int), 1), x.core.array, losslessConv, ir.ReferenceConv},
		{"array to enumerable", x.arrayOf(p(ir.Int), 1), enumInt, losslessConv, ir.ReferenceConv},
		{"covariant array", x.arrayOf(x.core.str, 1), x.arrayOf(x.core.object, 1), losslessConv, ir.ReferenceConv},
		{"value array is invariant", x.arrayOf(p(ir.Int), 1), x.arrayOf(x.core.object, 1), noConv, 0},
		{"rank mismatch", x.arrayOf(x.core.str, 2), x.arrayOf(x.core.object, 1), noConv, 0},
		{"string array to enumerable of object", x.arrayOf(x.core.str, 1), enumObj, losslessConv, ir.ReferenceConv},
		{"error converts", x.errType, p(ir.Int), exactConv, 0},
	}
	for _, test := range tests {
		c := x.implicitConv(test.from, test.to)
		if c.class != test.class || test.class != noConv && test.class != exactConv && c.kind != test.kind {
			t.Errorf("%s: implicitConv(%s, %s)=%s/%v, want %s/%v",
				test.name, test.from, test.to, c.class, c.kind, test.class, test.kind)
		}
	}
}

func TestImplicitConvCached(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	from, to := x.prims[ir.Int], x.prims[ir.Long]
	c0 := x.implicitConv(from, to)
	n := x.convs.Len()
	c1 := x.implicitConv(from, to)
	if c0 != c1 || x.convs.Len() != n {
		t.Errorf("repeated conversion was not cached")
	}
	if _, ok := x.convs.Get(convKey{from: x.arena.ID(from), to: x.arena.ID(to), user: true}); !ok {
		t.Errorf("conversion not in the cache")
	}
}

func TestExplicitConv(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	p := func(prim ir.Prim) ir.Type { return x.prims[prim] }
	tests := []struct {
		name     string
		from, to ir.Type
		want     bool
	}{
		{"narrow", p(ir.Long), p(ir.Int), true},
		{"double to byte", p(ir.Double), p(ir.Byte), true},
		{"int to char", p(ir.Int), p(ir.Char), true},
		{"unbox", x.core.object, p(ir.Int), true},
		{"downcast", x.core.object, x.core.str, true},
		{"string to int", x.core.str, p(ir.Int), false},
		{"bool to int", p(ir.Bool), p(ir.Int), false},
		{"pointer to int", x.pointerTo(p(ir.Int)), p(ir.Long), true},
	}
	for _, test := range tests {
		if got := x.explicitConv(test.from, test.to); got != test.want {
			t.Errorf("%s: explicitConv(%s, %s)=%v, want %v", test.name, test.from, test.to, got, test.want)
		}
	}
}

func TestDerives(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	list := refType(t, x, "System.Collections.Generic", "List", 1)
	listInt := x.instType(list, []ir.Type{x.prims[ir.Int]}, loc.Loc{})
	enumInt := x.instType(x.core.enumerableT, []ir.Type{x.prims[ir.Int]}, loc.Loc{})
	if !x.derives(listInt, enumInt) {
		t.Errorf("List<int> does not derive from IEnumerable<int>")
	}
	if !x.derives(listInt, x.core.object) {
		t.Errorf("List<int> does not derive from object")
	}
	if !x.derives(x.core.multicast, x.core.delegate) {
		t.Errorf("MulticastDelegate does not derive from Delegate")
	}
	if x.derives(x.core.object, x.core.str) {
		t.Errorf("object derives from string")
	}
	if x.derives(x.prims[ir.Int], x.prims[ir.Long]) {
		t.Errorf("int derives from long")
	}
}

func TestBoxedIsReference(t *testing.T) {
	t.Parallel()
	x := newTestScope(t)
	boxed := x.modOf(ir.Boxed, x.prims[ir.Int])
	if x.isValueType(boxed) {
		t.Errorf("%s is a value type", boxed)
	}
	if !x.isRefType(boxed) {
		t.Errorf("%s is not a reference type", boxed)
	}
	if nn := x.modOf(ir.NonNull, x.core.str); x.isRefType(nn) {
		t.Errorf("%s is a reference type", nn)
	}
}
