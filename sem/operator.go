// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// binaryOps maps the overloadable binary operators
// to the names of their implementing methods.
var binaryOps = map[string]string{
	"+":  "op_Addition",
	"-":  "op_Subtraction",
	"*":  "op_Multiply",
	"/":  "op_Division",
	"%":  "op_Modulus",
	"&":  "op_BitwiseAnd",
	"|":  "op_BitwiseOr",
	"^":  "op_ExclusiveOr",
	"<<": "op_LeftShift",
	">>": "op_RightShift",
	"==": "op_Equality",
	"!=": "op_Inequality",
	"<":  "op_LessThan",
	">":  "op_GreaterThan",
	"<=": "op_LessThanOrEqual",
	">=": "op_GreaterThanOrEqual",
}

var unaryOps = map[string]string{
	"+":  "op_UnaryPlus",
	"-":  "op_UnaryNegation",
	"!":  "op_LogicalNot",
	"~":  "op_OnesComplement",
	"++": "op_Increment",
	"--": "op_Decrement",
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func isEquality(op string) bool { return op == "==" || op == "!=" }

func isShift(op string) bool { return op == "<<" || op == ">>" }

func isBitwise(op string) bool { return op == "&" || op == "|" || op == "^" }

// promote1 returns the type an operand of a unary operator
// or a shift is promoted to.
func promote1(p ir.Prim) ir.Prim {
	switch p {
	case ir.Char, ir.SByte, ir.Byte, ir.Short, ir.UShort:
		return ir.Int
	}
	if p.IsNumeric() {
		return p
	}
	return ir.NotPrim
}

// promote2 returns the type both operands of
// a binary numeric operator are promoted to.
func promote2(a, b ir.Prim) ir.Prim {
	switch {
	case !a.IsNumeric() || !b.IsNumeric():
		return ir.NotPrim
	case a == ir.Double || b == ir.Double:
		return ir.Double
	case a == ir.Float || b == ir.Float:
		return ir.Float
	case a == ir.ULong || b == ir.ULong:
		if a.IsSigned() || b.IsSigned() {
			return ir.NotPrim
		}
		return ir.ULong
	case a == ir.Long || b == ir.Long:
		return ir.Long
	case a == ir.UInt || b == ir.UInt:
		if a.IsSigned() || b.IsSigned() {
			return ir.Long
		}
		return ir.UInt
	}
	return ir.Int
}

// promote converts an operand to the type its operator works in.
// Constants are converted in place.
func promote(x *scope, e *ir.Expr, to ir.Type) {
	t := (*e).Type()
	if t == to || t == nil || to == nil {
		return
	}
	if l, ok := (*e).(*ir.Literal); ok {
		if c, ok := x.retag(l, to); ok {
			*e = c
			return
		}
	}
	kind := ir.NumericConv
	if x.nullableArg(to) != nil {
		kind = ir.NullableConv
	}
	c := &ir.Convert{X: *e, Kind: kind}
	c.At = (*e).Loc()
	c.T = to
	*e = c
}

func (x *state) nullableOf(t ir.Type, at loc.Loc) ir.Type {
	if x.nullableArg(t) != nil {
		return t
	}
	return x.instType(x.core.nullable, []ir.Type{t}, at)
}

// typed returns a placeholder operand of the given type.
func typed(t ir.Type, at loc.Loc) ir.Expr {
	e := &ir.This{}
	e.At = at
	e.T = t
	return e
}

func resolveBinary(x *scope, e *ir.Expr, n *ir.Binary) ir.Type {
	defer x.tr("resolveBinary(%s)", n.Op)()
	lt := resolveExpr(x, &n.L)
	rt := resolveExpr(x, &n.R)
	if lt == x.errType || rt == x.errType {
		n.T = x.errType
		return n.T
	}
	switch n.Op {
	case "&&", "||":
		b := x.prims[ir.Bool]
		if primOf(lt) != ir.Bool || primOf(rt) != ir.Bool {
			x.report(diag.BadOperands, n.Loc(), n.Op, lt.String(), rt.String())
			n.T = x.errType
			return n.T
		}
		n.T = b
		foldBinary(x, e, n)
		return b
	case "??":
		return resolveCoalesce(x, n, lt, rt)
	}
	if win, ok := x.userOperator(binaryOps[n.Op], []arg{{n.L, lt}, {n.R, rt}}, n.Loc()); ok {
		if win == nil {
			n.T = x.errType
			return n.T
		}
		m := win.decl.(*ir.Method)
		args := packArgs(x, win, []ir.Expr{n.L, n.R}, n.Loc())
		n.L, n.R = args[0], args[1]
		n.Method = m
		n.T = m.Ret
		return n.T
	}
	t := binaryType(x, n, lt, rt)
	if t == nil {
		x.report(diag.BadOperands, n.Loc(), n.Op, lt.String(), rt.String())
		n.T = x.errType
		return n.T
	}
	n.T = t
	foldBinary(x, e, n)
	if b, ok := (*e).(*ir.Binary); ok && b.Op == "+" && t == x.core.str {
		concat(x, e, b)
	}
	return (*e).Type()
}

// binaryType returns the result type of a predefined binary operator,
// converting the operands to the operator's operand type,
// or nil if no predefined operator applies.
func binaryType(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	if _, ok := binaryOps[n.Op]; !ok {
		return nil
	}
	boolean := x.prims[ir.Bool]
	switch {
	case n.Op == "+" && (lt == x.core.str || rt == x.core.str):
		return x.core.str
	case (n.Op == "+" || n.Op == "-") && isDelegate(lt) && x.implicitConv(rt, lt).ok():
		coerce(x, &n.R, lt)
		name := "Combine"
		if n.Op == "-" {
			name = "Remove"
		}
		if ms := x.core.delegate.Lookup(name); len(ms) > 0 {
			n.Method = ms[0].(*ir.Method)
		}
		return lt
	case isEquality(n.Op) && (lt == x.nullType || rt == x.nullType):
		other := lt
		if other == x.nullType {
			other = rt
		}
		if other == x.nullType || x.nullConv(other).ok() || x.isTypeParam(other) {
			return boolean
		}
		return nil
	}
	if t := pointerOp(x, n, lt, rt); t != nil {
		return t
	}
	if x.nullableArg(lt) != nil || x.nullableArg(rt) != nil {
		return liftedOp(x, n, lt, rt)
	}
	if isEnum(lt) || isEnum(rt) {
		return enumOp(x, n, lt, rt)
	}
	if t := primOp(x, n, lt, rt); t != nil {
		return t
	}
	if isEquality(n.Op) && x.isRefType(lt) && x.isRefType(rt) &&
		(x.implicitConv(lt, rt).ok() || x.implicitConv(rt, lt).ok()) {
		return boolean
	}
	return nil
}

func (x *state) isTypeParam(t ir.Type) bool {
	_, ok := t.(*ir.TypeParam)
	return ok
}

// literalFit returns the primitive of a constant operand
// that fits the other operand's type, or p.
func (x *scope) literalFit(e ir.Expr, p ir.Prim, other ir.Type) ir.Prim {
	if l, ok := e.(*ir.Literal); ok && x.constFits(l, other) {
		return primOf(other)
	}
	return p
}

func primOp(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	boolean := x.prims[ir.Bool]
	lp, rp := primOf(lt), primOf(rt)
	switch {
	case lp == ir.Bool && rp == ir.Bool:
		if isBitwise(n.Op) || isEquality(n.Op) {
			return boolean
		}
		return nil
	case lp == ir.String && rp == ir.String:
		if isEquality(n.Op) {
			return boolean
		}
		return nil
	case isShift(n.Op):
		p := promote1(lp)
		if !p.IsIntegral() || promote1(rp) != ir.Int {
			return nil
		}
		promote(x, &n.L, x.prims[p])
		promote(x, &n.R, x.prims[ir.Int])
		return x.prims[p]
	}
	lp, rp = x.literalFit(n.L, lp, rt), x.literalFit(n.R, rp, lt)
	p := promote2(lp, rp)
	if p == ir.NotPrim || isBitwise(n.Op) && !p.IsIntegral() {
		return nil
	}
	t := x.prims[p]
	promote(x, &n.L, t)
	promote(x, &n.R, t)
	if isComparison(n.Op) {
		return boolean
	}
	return t
}

// enumOp types the operators on enums:
// bitwise and comparison operators on two values of the enum,
// subtraction of two values giving the underlying type,
// and addition or subtraction of an underlying value.
// The operands are promoted to the underlying type.
func enumOp(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	en, ok := lt.(*ir.TypeDecl)
	if !isEnum(lt) {
		en, ok = rt.(*ir.TypeDecl)
	}
	if !ok {
		return nil
	}
	base := x.enumBase(en)
	isInt := func(e ir.Expr, t ir.Type) bool {
		if l, ok := e.(*ir.Literal); ok && x.constFits(l, base) {
			return true
		}
		return primOf(t).IsIntegral() && x.implicitConv(t, base).ok()
	}
	zero := func(e ir.Expr) bool {
		l, ok := e.(*ir.Literal)
		return ok && x.constFits(l, en)
	}
	both := lt == rt || lt == en && zero(n.R) || rt == en && zero(n.L)
	var res ir.Type
	switch {
	case both && isBitwise(n.Op):
		res = en
	case both && isComparison(n.Op):
		res = x.prims[ir.Bool]
	case lt == rt && n.Op == "-":
		res = base
	case n.Op == "+" && (lt == en && isInt(n.R, rt) || rt == en && isInt(n.L, lt)):
		res = en
	case n.Op == "-" && lt == en && isInt(n.R, rt):
		res = en
	default:
		return nil
	}
	ut := x.prims[promote1(base.Prim)]
	promote(x, &n.L, ut)
	promote(x, &n.R, ut)
	return res
}

func pointerOp(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	lp, lok := lt.(*ir.PointerType)
	rp, rok := rt.(*ir.PointerType)
	switch {
	case lok && rok && isComparison(n.Op):
		return x.prims[ir.Bool]
	case lok && rok && n.Op == "-" && lt == rt:
		if n.Scale = x.sizeOf(lp.Elem); n.Scale == 0 {
			return nil
		}
		return x.prims[ir.Long]
	case lok && primOf(rt).IsIntegral() && (n.Op == "+" || n.Op == "-"):
		if n.Scale = x.sizeOf(lp.Elem); n.Scale == 0 {
			return nil
		}
		return lt
	case rok && primOf(lt).IsIntegral() && n.Op == "+":
		if n.Scale = x.sizeOf(rp.Elem); n.Scale == 0 {
			return nil
		}
		return rt
	}
	return nil
}

// liftedOp types a predefined operator applied to nullable operands.
// Comparisons of lifted operands are bool;
// other lifted operators give the nullable of the result.
func liftedOp(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	lu, ru := lt, rt
	if a := x.nullableArg(lt); a != nil {
		lu = a
	}
	if a := x.nullableArg(rt); a != nil {
		ru = a
	}
	under := &ir.Binary{Op: n.Op, L: typed(lu, n.L.Loc()), R: typed(ru, n.R.Loc())}
	if l, ok := n.L.(*ir.Literal); ok {
		under.L = l
	}
	if r, ok := n.R.(*ir.Literal); ok {
		under.R = r
	}
	var res ir.Type
	if isEnum(lu) || isEnum(ru) {
		res = enumOp(x, under, lu, ru)
	} else {
		res = primOp(x, under, lu, ru)
	}
	if res == nil {
		return nil
	}
	n.Lifted = true
	promote(x, &n.L, x.nullableOf(under.L.Type(), n.Loc()))
	promote(x, &n.R, x.nullableOf(under.R.Type(), n.Loc()))
	if isComparison(n.Op) {
		return res
	}
	return x.nullableOf(res, n.Loc())
}

func resolveCoalesce(x *scope, n *ir.Binary, lt, rt ir.Type) ir.Type {
	a := x.nullableArg(lt)
	switch {
	case a != nil && x.implicitConv(rt, a).ok():
		coerce(x, &n.R, a)
		n.T = a
	case (a != nil || x.isRefType(lt)) && x.implicitConv(rt, lt).ok():
		coerce(x, &n.R, lt)
		n.T = lt
	case x.isRefType(lt) && x.implicitConv(lt, rt).ok():
		coerce(x, &n.L, rt)
		n.T = rt
	default:
		x.report(diag.BadOperands, n.Loc(), n.Op, lt.String(), rt.String())
		n.T = x.errType
	}
	return n.T
}

// concat rewrites a string concatenation as a call of String.Concat.
func concat(x *scope, e *ir.Expr, n *ir.Binary) {
	args := []arg{{n.L, n.L.Type()}, {n.R, n.R.Type()}}
	cands := x.members(x.core.str, "Concat", 0)
	win, fail := x.overload(cands, nil, args, n.Loc())
	if win == nil {
		x.reportOverload(fail, "string.Concat", cands, args, n.Loc())
		return
	}
	m := win.decl.(*ir.Method)
	fn := &ir.MemberBinding{Decl: m}
	fn.At = n.Loc()
	fn.T = m.Ret
	call := &ir.Call{Fn: fn, Method: m, Args: packArgs(x, win, []ir.Expr{n.L, n.R}, n.Loc())}
	call.At = n.Loc()
	call.T = x.core.str
	*e = call
}

// userOperator resolves a user-defined operator
// declared by the types of the operands.
// The boolean is false if the types declare no such operator;
// the candidate is nil if they do but the resolution failed.
func (x *scope) userOperator(name string, args []arg, at loc.Loc) (*cand, bool) {
	if name == "" {
		return nil, false
	}
	var ds []ir.Decl
	seen := make(map[*ir.TypeDecl]bool)
	for _, a := range args {
		d := x.typeDeclOf(a.t)
		if d == nil || d.Prim != ir.NotPrim || seen[d] {
			continue
		}
		seen[d] = true
		for _, m := range x.members(d, name, 0) {
			if m, ok := m.(*ir.Method); ok && m.Static {
				ds = append(ds, m)
			}
		}
	}
	if len(ds) == 0 {
		return nil, false
	}
	win, fail := x.overload(ds, nil, args, at)
	switch fail {
	case noFail:
		return win, true
	case ambiguous:
		x.reportOverload(fail, name, ds, args, at)
		return nil, true
	}
	return nil, false
}

func resolveUnary(x *scope, e *ir.Expr, n *ir.Unary) ir.Type {
	defer x.tr("resolveUnary(%s)", n.Op)()
	t := resolveExpr(x, &n.X)
	if t == x.errType {
		n.T = x.errType
		return n.T
	}
	if win, ok := x.userOperator(unaryOps[n.Op], []arg{{n.X, t}}, n.Loc()); ok {
		if win == nil {
			n.T = x.errType
			return n.T
		}
		m := win.decl.(*ir.Method)
		n.X = packArgs(x, win, []ir.Expr{n.X}, n.Loc())[0]
		n.Method = m
		n.T = m.Ret
		return n.T
	}
	step := n.Op == "++" || n.Op == "--"
	if step && !x.assignable(n.X) {
		x.report(diag.NotAssignable, n.X.Loc(), exprString(n.X))
	}
	u := t
	if a := x.nullableArg(t); a != nil {
		u = a
		n.Lifted = true
	}
	res := unaryType(x, n.Op, u)
	if res == nil {
		x.report(diag.BadOperand, n.Loc(), n.Op, t.String())
		n.T = x.errType
		return n.T
	}
	switch {
	case step:
		res = t
	case n.Lifted:
		promote(x, &n.X, x.nullableOf(res, n.Loc()))
		res = x.nullableOf(res, n.Loc())
	default:
		promote(x, &n.X, res)
	}
	n.T = res
	foldUnary(x, e, n)
	return (*e).Type()
}

func unaryType(x *scope, op string, t ir.Type) ir.Type {
	p := primOf(t)
	q := promote1(p)
	switch op {
	case "!":
		if p == ir.Bool {
			return t
		}
	case "+":
		if q != ir.NotPrim {
			return x.prims[q]
		}
	case "-":
		switch q {
		case ir.NotPrim, ir.ULong:
			return nil
		case ir.UInt:
			return x.prims[ir.Long]
		}
		return x.prims[q]
	case "~":
		if isEnum(t) {
			return t
		}
		if q.IsIntegral() {
			return x.prims[q]
		}
	case "++", "--":
		if _, ok := t.(*ir.PointerType); ok || p.IsNumeric() || isEnum(t) {
			return t
		}
	}
	return nil
}
