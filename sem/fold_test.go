// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"math"
	"testing"

	"github.com/hesam/SketchSharp-sub002/ir"
)

func TestFoldArith(t *testing.T) {
	t.Parallel()
	tests := []struct {
		op        string
		a, b      interface{}
		unchecked bool
		want      interface{}
		fail      foldFail
	}{
		{op: "+", a: int32(1), b: int32(2), want: int32(3)},
		{op: "+", a: int32(math.MaxInt32), b: int32(1), fail: foldOverflow},
		{op: "+", a: int32(math.MaxInt32), b: int32(1), unchecked: true, want: int32(math.MinInt32)},
		{op: "-", a: int32(math.MinInt32), b: int32(1), fail: foldOverflow},
		{op: "*", a: int32(1 << 16), b: int32(1 << 16), fail: foldOverflow},
		{op: "*", a: int64(1 << 16), b: int64(1 << 16), want: int64(1 << 32)},
		{op: "*", a: int64(math.MaxInt64), b: int64(2), fail: foldOverflow},
		{op: "/", a: int32(7), b: int32(2), want: int32(3)},
		{op: "/", a: int32(-7), b: int32(2), want: int32(-3)},
		{op: "/", a: int32(1), b: int32(0), fail: foldDivZero},
		{op: "/", a: int32(1), b: int32(0), unchecked: true, fail: foldDivZero},
		{op: "%", a: int32(1), b: int32(0), fail: foldDivZero},
		{op: "%", a: int32(-7), b: int32(2), want: int32(-1)},
		{op: "/", a: int32(math.MinInt32), b: int32(-1), fail: foldOverflow},
		{op: "%", a: int32(math.MinInt32), b: int32(-1), want: int32(0)},
		{op: "-", a: uint32(0), b: uint32(1), fail: foldOverflow},
		{op: "-", a: uint32(0), b: uint32(1), unchecked: true, want: uint32(math.MaxUint32)},
		{op: "+", a: uint64(math.MaxUint64), b: uint64(1), fail: foldOverflow},
		{op: "*", a: uint64(1 << 32), b: uint64(1 << 32), fail: foldOverflow},
		{op: "&", a: int32(6), b: int32(3), want: int32(2)},
		{op: "|", a: int32(6), b: int32(3), want: int32(7)},
		{op: "^", a: int32(6), b: int32(3), want: int32(5)},
		{op: "<", a: int64(1), b: int64(2), want: true},
		{op: ">=", a: uint32(1), b: uint32(2), want: false},
		{op: "==", a: int32(5), b: int32(5), want: true},
		{op: "/", a: float64(1), b: float64(4), want: float64(0.25)},
		{op: "/", a: float64(1), b: float64(0), want: math.Inf(1)},
		{op: "%", a: float64(7.5), b: float64(2), want: float64(1.5)},
		{op: "*", a: float32(1.5), b: float32(2), want: float32(3)},
		{op: "+", a: "a", b: "b", want: "ab"},
		{op: "==", a: "a", b: "b", want: false},
		{op: "-", a: "a", b: "b", fail: foldNone},
		{op: "&&", a: true, b: false, want: false},
		{op: "||", a: true, b: false, want: true},
		{op: "^", a: true, b: true, want: false},
	}
	for _, test := range tests {
		name := fmt.Sprintf("%#v %s %#v", test.a, test.op, test.b)
		if test.unchecked {
			name = "unchecked " + name
		}
		got, fail := foldArith(test.op, test.a, test.b, !test.unchecked)
		want := test.fail
		if test.want != nil {
			want = foldOK
		}
		if fail != want {
			t.Errorf("%s: fail=%d, want %d", name, fail, want)
			continue
		}
		if fail == foldOK && got != test.want {
			t.Errorf("%s=%#v, want %#v", name, got, test.want)
		}
	}
}

func TestFoldShift(t *testing.T) {
	t.Parallel()
	tests := []struct {
		op   string
		a    interface{}
		n    int32
		want interface{}
	}{
		{"<<", int32(1), 4, int32(16)},
		{"<<", int32(1), 33, int32(2)},
		{"<<", int64(1), 33, int64(1 << 33)},
		{"<<", int64(1), 65, int64(2)},
		{">>", int32(-8), 1, int32(-4)},
		{">>", uint32(math.MaxUint32), 31, uint32(1)},
		{"<<", int32(1), 31, int32(math.MinInt32)},
	}
	for _, test := range tests {
		got, fail := foldShift(test.op, test.a, test.n)
		if fail != foldOK || got != test.want {
			t.Errorf("%#v %s %d=%#v (%d), want %#v", test.a, test.op, test.n, got, fail, test.want)
		}
	}
	if _, fail := foldShift("<<", float64(1), 1); fail != foldNone {
		t.Errorf("shifted a float")
	}
}

func TestFoldUnary(t *testing.T) {
	t.Parallel()
	tests := []struct {
		op        string
		a         interface{}
		unchecked bool
		want      interface{}
		fail      foldFail
	}{
		{op: "-", a: int32(5), want: int32(-5)},
		{op: "-", a: int32(math.MinInt32), fail: foldOverflow},
		{op: "-", a: int32(math.MinInt32), unchecked: true, want: int32(math.MinInt32)},
		{op: "-", a: int64(math.MinInt64), fail: foldOverflow},
		{op: "-", a: float64(2), want: float64(-2)},
		{op: "~", a: int32(0), want: int32(-1)},
		{op: "~", a: uint32(0), want: uint32(math.MaxUint32)},
		{op: "!", a: true, want: false},
		{op: "+", a: int64(3), want: int64(3)},
		{op: "!", a: int32(1), fail: foldNone},
	}
	for _, test := range tests {
		got, fail := foldUnaryConst(test.op, test.a, !test.unchecked)
		want := test.fail
		if test.want != nil {
			want = foldOK
		}
		if fail != want || fail == foldOK && got != test.want {
			t.Errorf("%s%#v=%#v (%d), want %#v (%d)", test.op, test.a, got, fail, test.want, want)
		}
	}
}

func TestConvertConst(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v         interface{}
		to        ir.Prim
		unchecked bool
		want      interface{}
		ok        bool
	}{
		{v: int32(255), to: ir.Byte, want: uint8(255), ok: true},
		{v: int32(300), to: ir.Byte, ok: false},
		{v: int32(300), to: ir.Byte, unchecked: true, want: uint8(44), ok: true},
		{v: int32(-1), to: ir.Byte, ok: false},
		{v: int32(-1), to: ir.UInt, unchecked: true, want: uint32(math.MaxUint32), ok: true},
		{v: int32(-1), to: ir.SByte, want: int8(-1), ok: true},
		{v: int32('a'), to: ir.Char, want: uint16('a'), ok: true},
		{v: uint32(math.MaxUint32), to: ir.Int, ok: false},
		{v: int64(1 << 40), to: ir.Long, want: int64(1 << 40), ok: true},
		{v: int64(-1), to: ir.ULong, ok: false},
		{v: float64(1.9), to: ir.Int, want: int32(1), ok: true},
		{v: float64(-1.9), to: ir.Int, want: int32(-1), ok: true},
		{v: float64(1e20), to: ir.Int, ok: false},
		{v: int32(3), to: ir.Double, want: float64(3), ok: true},
		{v: int64(1 << 24), to: ir.Float, want: float32(1 << 24), ok: true},
		{v: "s", to: ir.String, want: "s", ok: true},
		{v: int32(1), to: ir.String, ok: false},
		{v: true, to: ir.Bool, want: true, ok: true},
		{v: nil, to: ir.Object, want: nil, ok: true},
		{v: int32(1), to: ir.Object, ok: false},
	}
	for _, test := range tests {
		got, ok := convertConst(test.v, test.to, !test.unchecked)
		if ok != test.ok {
			t.Errorf("convertConst(%#v, %s)=%#v, %v, want ok=%v", test.v, test.to, got, ok, test.ok)
			continue
		}
		if ok && got != test.want {
			t.Errorf("convertConst(%#v, %s)=%#v, want %#v", test.v, test.to, got, test.want)
		}
	}
}
