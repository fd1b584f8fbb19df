// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"math"
	"math/bits"

	"fortio.org/safecast"
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"golang.org/x/exp/constraints"
	"modernc.org/mathutil"
)

type foldFail int

const (
	foldOK foldFail = iota
	foldOverflow
	foldDivZero
	// foldNone is an operation with no constant result.
	foldNone
)

// litType returns the type of a constant value.
func (x *state) litType(v interface{}) ir.Type {
	switch v.(type) {
	case nil:
		return x.nullType
	case bool:
		return x.prims[ir.Bool]
	case uint16:
		return x.prims[ir.Char]
	case int8:
		return x.prims[ir.SByte]
	case uint8:
		return x.prims[ir.Byte]
	case int16:
		return x.prims[ir.Short]
	case int32:
		return x.prims[ir.Int]
	case uint32:
		return x.prims[ir.UInt]
	case int64:
		return x.prims[ir.Long]
	case uint64:
		return x.prims[ir.ULong]
	case float32:
		return x.prims[ir.Float]
	case float64:
		return x.prims[ir.Double]
	case string:
		return x.prims[ir.String]
	}
	panic(fmt.Sprintf("impossible literal %T", v))
}

// constPrim returns the primitive representing the values of t:
// the underlying type of an enum, or t's own primitive.
func (x *state) constPrim(t ir.Type) ir.Prim {
	if isEnum(t) {
		return x.enumBase(t.(*ir.TypeDecl)).Prim
	}
	return primOf(t)
}

// constFits returns whether a constant converts implicitly to a type
// because its value is in range:
// an int constant to a smaller or unsigned integral type,
// a long constant to ulong, or the constant 0 to an enum.
func (x *state) constFits(l *ir.Literal, to ir.Type) bool {
	if l.T != nil && l.T != x.litType(l.Value) {
		return false
	}
	if isEnum(to) {
		v, ok := l.Value.(int32)
		return ok && v == 0
	}
	p := primOf(to)
	switch l.Value.(type) {
	case int32:
		switch p {
		case ir.SByte, ir.Byte, ir.Short, ir.UShort, ir.UInt, ir.ULong:
			_, ok := convertConst(l.Value, p, true)
			return ok
		}
	case int64:
		if p == ir.ULong {
			_, ok := convertConst(l.Value, p, true)
			return ok
		}
	}
	return false
}

// convertConst converts a constant to the representation of a primitive.
// If checked, an integer out of the target's range fails;
// otherwise it wraps. Floating point conversions never fail.
func convertConst(v interface{}, p ir.Prim, checked bool) (interface{}, bool) {
	switch p {
	case ir.SByte:
		return toInt[int8](v, checked)
	case ir.Byte:
		return toInt[uint8](v, checked)
	case ir.Short:
		return toInt[int16](v, checked)
	case ir.UShort, ir.Char:
		return toInt[uint16](v, checked)
	case ir.Int:
		return toInt[int32](v, checked)
	case ir.UInt:
		return toInt[uint32](v, checked)
	case ir.Long:
		return toInt[int64](v, checked)
	case ir.ULong:
		return toInt[uint64](v, checked)
	case ir.Float:
		return toFloat[float32](v)
	case ir.Double:
		return toFloat[float64](v)
	case ir.Bool:
		b, ok := v.(bool)
		return b, ok
	case ir.String:
		s, ok := v.(string)
		return s, ok
	case ir.Object:
		return v, v == nil
	}
	return nil, false
}

func toInt[T constraints.Integer](v interface{}, checked bool) (interface{}, bool) {
	switch v := v.(type) {
	case int8:
		return intFrom[T](v, checked)
	case uint8:
		return intFrom[T](v, checked)
	case int16:
		return intFrom[T](v, checked)
	case uint16:
		return intFrom[T](v, checked)
	case int32:
		return intFrom[T](v, checked)
	case uint32:
		return intFrom[T](v, checked)
	case int64:
		return intFrom[T](v, checked)
	case uint64:
		return intFrom[T](v, checked)
	case float32:
		return truncFrom[T](v, checked)
	case float64:
		return truncFrom[T](v, checked)
	}
	return nil, false
}

func intFrom[T, F constraints.Integer](v F, checked bool) (interface{}, bool) {
	if !checked {
		return T(v), true
	}
	r, err := safecast.Conv[T](v)
	if err != nil {
		return nil, false
	}
	return r, true
}

func truncFrom[T constraints.Integer, F constraints.Float](v F, checked bool) (interface{}, bool) {
	if !checked {
		return T(v), true
	}
	r, err := safecast.Truncate[T](v)
	if err != nil {
		return nil, false
	}
	return r, true
}

func toFloat[T constraints.Float](v interface{}) (interface{}, bool) {
	switch v := v.(type) {
	case int8:
		return T(v), true
	case uint8:
		return T(v), true
	case int16:
		return T(v), true
	case uint16:
		return T(v), true
	case int32:
		return T(v), true
	case uint32:
		return T(v), true
	case int64:
		return T(v), true
	case uint64:
		return T(v), true
	case float32:
		return T(v), true
	case float64:
		return T(v), true
	}
	return nil, false
}

// retag returns a copy of a literal with a new type,
// converting its value to the type's representation.
func (x *scope) retag(l *ir.Literal, to ir.Type) (*ir.Literal, bool) {
	c := *l
	c.ID = 0
	c.T = to
	if l.Value == nil {
		return &c, true
	}
	p := x.constPrim(to)
	if p == ir.NotPrim || p == ir.Object {
		return &c, true
	}
	v, ok := convertConst(l.Value, p, !x.cfg.Unchecked)
	if !ok {
		return nil, false
	}
	c.Value = v
	return &c, true
}

// foldArith folds a binary operation on two constants
// of the same promoted representation.
func foldArith(op string, a, b interface{}, checked bool) (interface{}, foldFail) {
	switch a := a.(type) {
	case int32:
		return foldInt(op, a, b.(int32), checked, ovfInt32)
	case int64:
		return foldInt(op, a, b.(int64), checked, ovfInt64)
	case uint32:
		return foldInt(op, a, b.(uint32), checked, ovfUint32)
	case uint64:
		return foldInt(op, a, b.(uint64), checked, ovfUint64)
	case float32:
		return foldFloat(op, a, b.(float32))
	case float64:
		return foldFloat(op, a, b.(float64))
	case bool:
		return foldBool(op, a, b.(bool))
	case string:
		b := b.(string)
		switch op {
		case "+":
			return a + b, foldOK
		case "==":
			return a == b, foldOK
		case "!=":
			return a != b, foldOK
		}
	}
	return nil, foldNone
}

func foldInt[T constraints.Integer](op string, a, b T, checked bool, ovf func(string, T, T) bool) (interface{}, foldFail) {
	switch op {
	case "+", "-", "*":
		if checked && ovf(op, a, b) {
			return nil, foldOverflow
		}
		switch op {
		case "+":
			return a + b, foldOK
		case "-":
			return a - b, foldOK
		}
		return a * b, foldOK
	case "/", "%":
		if b == 0 {
			return nil, foldDivZero
		}
		if op == "%" {
			return a % b, foldOK
		}
		if checked && ovf(op, a, b) {
			return nil, foldOverflow
		}
		return a / b, foldOK
	case "&":
		return a & b, foldOK
	case "|":
		return a | b, foldOK
	case "^":
		return a ^ b, foldOK
	}
	return compare(op, a, b)
}

func compare[T constraints.Ordered](op string, a, b T) (interface{}, foldFail) {
	switch op {
	case "==":
		return a == b, foldOK
	case "!=":
		return a != b, foldOK
	case "<":
		return a < b, foldOK
	case "<=":
		return a <= b, foldOK
	case ">":
		return a > b, foldOK
	case ">=":
		return a >= b, foldOK
	}
	return nil, foldNone
}

func foldFloat[T constraints.Float](op string, a, b T) (interface{}, foldFail) {
	switch op {
	case "+":
		return a + b, foldOK
	case "-":
		return a - b, foldOK
	case "*":
		return a * b, foldOK
	case "/":
		return a / b, foldOK
	case "%":
		return T(math.Mod(float64(a), float64(b))), foldOK
	}
	return compare(op, a, b)
}

func foldBool(op string, a, b bool) (interface{}, foldFail) {
	switch op {
	case "&", "&&":
		return a && b, foldOK
	case "|", "||":
		return a || b, foldOK
	case "^", "!=":
		return a != b, foldOK
	case "==":
		return a == b, foldOK
	}
	return nil, foldNone
}

func ovfInt32(op string, a, b int32) bool {
	var o bool
	switch op {
	case "+":
		_, o = mathutil.AddOverflowInt32(a, b)
	case "-":
		_, o = mathutil.SubOverflowInt32(a, b)
	case "*":
		_, o = mathutil.MulOverflowInt32(a, b)
	case "/":
		o = a == math.MinInt32 && b == -1
	}
	return o
}

func ovfInt64(op string, a, b int64) bool {
	var o bool
	switch op {
	case "+":
		_, o = mathutil.AddOverflowInt64(a, b)
	case "-":
		_, o = mathutil.SubOverflowInt64(a, b)
	case "*":
		_, o = mathutil.MulOverflowInt64(a, b)
	case "/":
		o = a == math.MinInt64 && b == -1
	}
	return o
}

func ovfUint32(op string, a, b uint32) bool {
	var r uint64
	switch op {
	case "+":
		r = uint64(a) + uint64(b)
	case "*":
		r = uint64(a) * uint64(b)
	case "-":
		return b > a
	default:
		return false
	}
	_, err := safecast.Conv[uint32](r)
	return err != nil
}

func ovfUint64(op string, a, b uint64) bool {
	switch op {
	case "+":
		_, carry := bits.Add64(a, b, 0)
		return carry != 0
	case "-":
		return b > a
	case "*":
		hi, _ := bits.Mul64(a, b)
		return hi != 0
	}
	return false
}

// foldShift shifts a constant; the count is masked to the operand width.
func foldShift(op string, a interface{}, n int32) (interface{}, foldFail) {
	left := op == "<<"
	switch a := a.(type) {
	case int32:
		return shift(a, uint(n&31), left), foldOK
	case uint32:
		return shift(a, uint(n&31), left), foldOK
	case int64:
		return shift(a, uint(n&63), left), foldOK
	case uint64:
		return shift(a, uint(n&63), left), foldOK
	}
	return nil, foldNone
}

func shift[T constraints.Integer](a T, n uint, left bool) T {
	if left {
		return a << n
	}
	return a >> n
}

func foldUnaryConst(op string, a interface{}, checked bool) (interface{}, foldFail) {
	switch op {
	case "+":
		return a, foldOK
	case "!":
		if b, ok := a.(bool); ok {
			return !b, foldOK
		}
	case "-":
		switch a := a.(type) {
		case int32:
			if checked && a == math.MinInt32 {
				return nil, foldOverflow
			}
			return -a, foldOK
		case int64:
			if checked && a == math.MinInt64 {
				return nil, foldOverflow
			}
			return -a, foldOK
		case float32:
			return -a, foldOK
		case float64:
			return -a, foldOK
		}
	case "~":
		switch a := a.(type) {
		case int32:
			return ^a, foldOK
		case uint32:
			return ^a, foldOK
		case int64:
			return ^a, foldOK
		case uint64:
			return ^a, foldOK
		}
	}
	return nil, foldNone
}

// foldBinary replaces a binary operation on constant operands
// with its value. On overflow or division by zero
// the operation is reported and left unfolded.
func foldBinary(x *scope, e *ir.Expr, n *ir.Binary) {
	l, ok1 := n.L.(*ir.Literal)
	r, ok2 := n.R.(*ir.Literal)
	if !ok1 || !ok2 || n.Method != nil || n.Lifted || n.Scale != 0 {
		return
	}
	if l.Value == nil || r.Value == nil {
		return
	}
	checked := !x.cfg.Unchecked
	var v interface{}
	var fail foldFail
	switch n.Op {
	case "<<", ">>":
		c, ok := r.Value.(int32)
		if !ok {
			return
		}
		v, fail = foldShift(n.Op, l.Value, c)
	default:
		if fmt.Sprintf("%T", l.Value) != fmt.Sprintf("%T", r.Value) {
			return
		}
		v, fail = foldArith(n.Op, l.Value, r.Value, checked)
	}
	x.foldDone(e, fail, v, n.T, fmt.Sprintf("%v %s %v", l.Value, n.Op, r.Value))
}

func foldUnary(x *scope, e *ir.Expr, n *ir.Unary) {
	l, ok := n.X.(*ir.Literal)
	if !ok || l.Value == nil || n.Method != nil || n.Lifted || n.Op == "++" || n.Op == "--" {
		return
	}
	v, fail := foldUnaryConst(n.Op, l.Value, !x.cfg.Unchecked)
	x.foldDone(e, fail, v, n.T, fmt.Sprintf("%s%v", n.Op, l.Value))
}

// foldDone replaces *e with the folded value v of type t,
// or reports why it could not.
func (x *scope) foldDone(e *ir.Expr, fail foldFail, v interface{}, t ir.Type, what string) bool {
	switch fail {
	case foldNone:
		return false
	case foldDivZero:
		x.foldFailed++
		x.report(diag.DivideByZero, (*e).Loc())
		return false
	case foldOverflow:
		x.foldFailed++
		x.report(diag.ConstantOverflow, (*e).Loc(), what)
		return false
	}
	lit := &ir.Literal{Value: v}
	lit.At = (*e).Loc()
	lit.T = x.litType(v)
	if t != nil && t != lit.T {
		c, ok := x.retag(lit, t)
		if !ok {
			x.foldFailed++
			x.report(diag.ConstantOverflow, (*e).Loc(), what)
			return false
		}
		lit = c
	}
	x.log("fold %s = %v", what, v)
	x.info.Folded++
	*e = lit
	return true
}

// evalConst evaluates the initializer of a constant field.
// A field whose evaluation reaches itself is circular:
// the cycle is reported once and the initializer is discarded.
func evalConst(x *state, f *ir.Field) {
	if f.Def != nil {
		evalConst(x, f.Def)
		f.Value, f.State = f.Def.Value, f.Def.State
		return
	}
	switch f.State {
	case ir.Evaluated, ir.Circular:
		return
	case ir.Evaluating:
		f.State = ir.Circular
		x.circular++
		x.reportOnce(f, diag.CircularConst, f.Loc(), f.Name)
		return
	}
	defer x.tr("evalConst(%s)", f.Name)()
	f.State = ir.Evaluating
	if f.Owner != nil {
		x.bindDecl(f.Owner)
	}
	if f.Init == nil {
		f.State = ir.Evaluated
		return
	}
	var y *scope
	if f.Owner != nil {
		y = x.declScope(f.Owner)
	} else {
		y = newScope(x)
	}
	failed := x.foldFailed
	lookExpr(y, &f.Init)
	t := resolveExpr(y, &f.Init)
	if f.State == ir.Circular {
		f.Init = nil
		f.Value = nil
		return
	}
	if f.Type != nil && t != x.errType {
		if isEnum(f.Type) {
			if t != f.Type {
				coerce(y, &f.Init, x.enumBase(f.Type.(*ir.TypeDecl)))
			}
			if l, ok := f.Init.(*ir.Literal); ok {
				f.Init = &ir.Literal{ExprBase: ir.ExprBase{Base: l.Base, T: f.Type}, Value: l.Value}
			}
		} else {
			coerce(y, &f.Init, f.Type)
		}
	}
	f.State = ir.Evaluated
	l, ok := f.Init.(*ir.Literal)
	switch {
	case ok:
		f.Value = l.Value
	case f.Init.Type() != x.errType && x.foldFailed == failed:
		x.report(diag.ConstNotConstant, f.Init.Loc(), f.Name)
	}
}
