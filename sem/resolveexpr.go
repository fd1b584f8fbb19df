// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"strconv"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// resolveExpr types an expression in value position,
// replacing it through e if it resolves to a different node.
// An expression that already has a type is not revisited.
func resolveExpr(x *scope, e *ir.Expr) (res ir.Type) {
	if *e == nil {
		return nil
	}
	if t := (*e).Type(); t != nil {
		return t
	}
	switch n := (*e).(type) {
	case *ir.Ident:
		lookExpr(x, e)
		if _, ok := (*e).(*ir.Ident); ok {
			panic("impossible: unbound identifier")
		}
		return resolveExpr(x, e)
	case *ir.QualIdent:
		lookExpr(x, e)
		if q, ok := (*e).(*ir.QualIdent); ok {
			*e = qualBinding(x, q)
		}
		return resolveExpr(x, e)
	case *ir.Literal:
		n.T = x.litType(n.Value)
	case *ir.NameBinding:
		resolveName(x, e, n)
	case *ir.MemberBinding:
		resolveMemberBinding(x, n)
	case *ir.This:
		if x.isStatic() {
			x.report(diag.InstanceNeedsObject, n.Loc(), "this")
		}
		n.T = x.thisType()
	case *ir.BaseRef:
		if x.isStatic() {
			x.report(diag.InstanceNeedsObject, n.Loc(), "base")
		}
		if b := x.baseOf(x.thisType()); b != nil {
			n.T = b
		} else {
			n.T = x.errType
		}
	case *ir.TypeLit:
		x.report(diag.NotAValue, n.Loc(), typeString(n.Of), "type")
		n.T = x.errType
	case *ir.NamespaceRef:
		x.report(diag.NotAValue, n.Loc(), n.Name, "namespace")
		n.T = x.errType
	case *ir.AliasBinding:
		x.report(diag.NotAValue, n.Loc(), n.Alias.Name, "alias")
		n.T = x.errType
	case *ir.Binary:
		return resolveBinary(x, e, n)
	case *ir.Unary:
		return resolveUnary(x, e, n)
	case *ir.Ternary:
		resolveTernary(x, e, n)
	case *ir.Assign:
		resolveAssign(x, n)
	case *ir.Call:
		resolveCall(x, n)
	case *ir.Construct:
		resolveConstruct(x, n)
	case *ir.Index:
		resolveIndex(x, n)
	case *ir.Cast:
		resolveCast(x, e, n)
	case *ir.TypeOf:
		if n.Of == nil {
			n.Of = x.lookType(n.TypeExpr)
		}
		n.T = x.core.typ
	case *ir.AnonMethod:
		resolveAnon(x, n, nil)
	case *ir.Query:
		resolveQuery(x, n)
	case *ir.TupleLit:
		var fs []ir.TupleField
		for i := range n.Elems {
			f := ir.TupleField{Type: resolveExpr(x, &n.Elems[i])}
			if i < len(n.Names) {
				f.Name = n.Names[i]
			}
			fs = append(fs, f)
		}
		n.T = x.tupleOf(fs)
	case *ir.ArrayLit:
		resolveArrayLit(x, n)
	case *ir.ClosureRef:
		n.T = n.Class
	case *ir.Convert:
		n.T = resolveExpr(x, &n.X)
	default:
		panic(fmt.Sprintf("impossible expression %T", n))
	}
	return (*e).Type()
}

// thisType returns the type of this in the current context.
func (x *scope) thisType() *ir.TypeDecl {
	t := x.curType()
	if t == nil {
		return x.errType
	}
	for t.Closure && t.Outer != nil {
		t = t.Outer
	}
	return t
}

func isMethodGroup(n *ir.NameBinding) bool {
	ds := n.Cands
	if len(ds) == 0 {
		ds = n.Inaccessible
	}
	if len(ds) == 0 {
		return false
	}
	for _, d := range ds {
		if _, ok := d.(*ir.Method); !ok {
			return false
		}
	}
	return true
}

// qualBinding binds a member access on a value.
func qualBinding(x *scope, q *ir.QualIdent) *ir.NameBinding {
	n := &ir.NameBinding{Name: q.Name, Scope: x, Target: q.X, TArgs: q.TArgs}
	n.At = q.At
	t := resolveExpr(x, &n.Target)
	if t == x.errType {
		n.T = x.errType
		return n
	}
	f := x.splitAccess(x.typeMembers(t, q.Name, len(q.TArgs)))
	n.Cands, n.Inaccessible = f.decls, f.inacc
	return n
}

// resolveName replaces a name binding in value position
// with a reference to the declaration it names.
func resolveName(x *scope, e *ir.Expr, n *ir.NameBinding) {
	if len(n.Cands) == 0 && len(n.Inaccessible) == 0 {
		reportNotFound(x, n)
		n.T = x.errType
		return
	}
	if isMethodGroup(n) {
		x.report(diag.NotAValue, n.Loc(), n.Name, "method group")
		n.T = x.errType
		return
	}
	d := n.Cands
	if len(d) == 0 {
		x.report(diag.MemberInaccessible, n.Loc(), n.Name)
		d = n.Inaccessible
	}
	switch t := d[0].(type) {
	case *ir.TypeDecl:
		x.report(diag.NotAValue, n.Loc(), t.String(), "type")
		n.T = x.errType
		return
	case *ir.TypeParam:
		x.report(diag.NotAValue, n.Loc(), t.Name, "type parameter")
		n.T = x.errType
		return
	}
	*e = memberRef(x, n.Target, d[0], n.Loc(), n.Name)
	resolveExpr(x, e)
}

func reportNotFound(x *scope, n *ir.NameBinding) {
	switch t := n.Target.(type) {
	case nil:
		x.report(diag.IdentNotFound, n.Loc(), n.Name)
	case *ir.NamespaceRef:
		x.report(diag.NamespaceMemberNotFound, n.Loc(), t.Name, n.Name)
	case *ir.TypeLit:
		x.report(diag.MemberNotFound, n.Loc(), typeString(t.Of), n.Name)
	default:
		if t.Type() != x.errType {
			x.report(diag.MemberNotFound, n.Loc(), typeString(t.Type()), n.Name)
		}
	}
}

// memberRef returns a reference to a member through a target.
// A simple name of an instance member in an instance context
// is accessed through this.
// A reference to a constant is replaced by its value.
func memberRef(x *scope, target ir.Expr, d ir.Decl, at loc.Loc, name string) ir.Expr {
	x.checkObsolete(d, at)
	static := ir.IsStatic(d)
	slot := false
	if f, ok := d.(*ir.Field); ok && f.Slot != ir.NotSlot {
		slot = true
	}
	switch target.(type) {
	case nil:
		if !static && !slot {
			if x.isStatic() {
				x.report(diag.InstanceNeedsObject, at, name)
			} else {
				this := &ir.This{}
				this.At = at
				this.T = x.thisType()
				target = this
			}
		}
	case *ir.TypeLit, *ir.NamespaceRef, *ir.AliasBinding:
		if !static {
			x.report(diag.InstanceNeedsObject, at, name)
		}
		target = nil
	default:
		if static {
			x.report(diag.StaticNeedsType, at, name)
			target = nil
		}
	}
	if f, ok := d.(*ir.Field); ok && f.Const {
		evalConst(x.state, f)
		if l := constLit(x, f, at); l != nil {
			return l
		}
	}
	mb := &ir.MemberBinding{Target: target, Decl: d}
	mb.At = at
	return mb
}

// constLit returns the value of a constant field as a literal,
// or an error-typed literal if it has none.
func constLit(x *scope, f *ir.Field, at loc.Loc) *ir.Literal {
	l := &ir.Literal{Value: f.Value}
	l.At = at
	g := f
	for g.Def != nil {
		g = g.Def
	}
	switch {
	case g.State == ir.Circular,
		g.Init != nil && g.Init.Type() == x.errType,
		g.Value == nil && !isNullLit(g.Init):
		l.T = x.errType
	case f.Type != nil:
		l.T = f.Type
	default:
		l.T = x.litType(f.Value)
	}
	return l
}

func isNullLit(e ir.Expr) bool {
	l, ok := e.(*ir.Literal)
	return ok && l.Value == nil
}

func declType(d ir.Decl) ir.Type {
	switch d := d.(type) {
	case *ir.Field:
		return d.Type
	case *ir.Property:
		return d.Type
	case *ir.Event:
		return d.Type
	case *ir.Method:
		return d.Ret
	}
	return nil
}

func resolveMemberBinding(x *scope, n *ir.MemberBinding) {
	if f, ok := n.Decl.(*ir.Field); ok && f.Captured && n.Target == nil {
		c := &ir.ClosureRef{Class: f.Host}
		c.At = n.At
		n.Target = c
	}
	if n.Target != nil {
		resolveExpr(x, &n.Target)
	}
	if n.T = declType(n.Decl); n.T == nil {
		n.T = x.errType
	}
}

func resolveTernary(x *scope, e *ir.Expr, n *ir.Ternary) {
	coerce(x, &n.Cond, x.prims[ir.Bool])
	tt := resolveExpr(x, &n.Then)
	et := resolveExpr(x, &n.Else)
	switch {
	case tt == x.errType || et == x.errType:
		n.T = x.errType
	case tt == et:
		n.T = tt
	case x.fits(n.Then, tt, et) && !x.fits(n.Else, et, tt):
		coerce(x, &n.Then, et)
		n.T = et
	case x.fits(n.Else, et, tt) && !x.fits(n.Then, tt, et):
		coerce(x, &n.Else, tt)
		n.T = tt
	default:
		x.report(diag.NoConversion, n.Loc(), tt.String(), et.String())
		n.T = x.errType
		return
	}
	c, ok := n.Cond.(*ir.Literal)
	if !ok {
		return
	}
	pick := n.Else
	if b, _ := c.Value.(bool); b {
		pick = n.Then
	}
	if _, ok := pick.(*ir.Literal); ok {
		x.info.Folded++
		*e = pick
	}
}

// fits returns whether an expression of type t implicitly converts to u.
func (x *scope) fits(e ir.Expr, t, u ir.Type) bool {
	if l, ok := e.(*ir.Literal); ok && x.constFits(l, u) {
		return true
	}
	return x.implicitConv(t, u).ok()
}

func resolveAssign(x *scope, n *ir.Assign) {
	defer x.tr("resolveAssign(%s)", n.Op)()
	tt := resolveExpr(x, &n.Target)
	if tt == x.errType {
		resolveExpr(x, &n.Value)
		n.T = x.errType
		return
	}
	if !x.assignable(n.Target) {
		x.report(diag.NotAssignable, n.Target.Loc(), exprString(n.Target))
	}
	n.T = tt
	if n.Op == "" {
		coerce(x, &n.Value, tt)
		return
	}
	if mb, ok := n.Target.(*ir.MemberBinding); ok && isDelegate(tt) && (n.Op == "+" || n.Op == "-") {
		coerce(x, &n.Value, tt)
		name := "Combine"
		if n.Op == "-" {
			name = "Remove"
		}
		if ms := x.core.delegate.Lookup(name); len(ms) > 0 {
			n.Method = ms[0].(*ir.Method)
		}
		x.log("%s %s= on %s", name, n.Op, mb.Decl.DeclName())
		return
	}
	vt := resolveExpr(x, &n.Value)
	if vt == x.errType {
		return
	}
	b := &ir.Binary{Op: n.Op, L: n.Target, R: n.Value}
	b.At = n.At
	var be ir.Expr = b
	rt := resolveBinary(x, &be, b)
	if rt == x.errType {
		return
	}
	switch c := be.(type) {
	case *ir.Call:
		n.Method = c.Method
		n.Value = c.Args[len(c.Args)-1]
	case *ir.Binary:
		n.Method = c.Method
		n.Value = c.R
	}
	if !x.implicitConv(rt, tt).ok() && !(x.explicitConv(rt, tt) && x.fits(n.Value, vt, tt)) {
		x.report(diag.NoImplicitConversion, n.Loc(), rt.String(), tt.String())
	}
}

// assignable returns whether an expression denotes a variable
// or a settable property.
func (x *scope) assignable(e ir.Expr) bool {
	switch e := e.(type) {
	case *ir.MemberBinding:
		switch d := e.Decl.(type) {
		case *ir.Field:
			switch {
			case d.Slot != ir.NotSlot:
				return true
			case d.Const:
				return false
			case d.ReadOnly:
				m := x.realMeth()
				return m != nil && m.m.Ctor && m.m.Owner == d.Owner
			}
			return true
		case *ir.Property:
			return d.Set
		case *ir.Event:
			return true
		}
	case *ir.Index:
		if e.Indexer != nil {
			return e.Indexer.Set
		}
		return e.T != x.errType
	}
	return false
}

// resolveArgs types the arguments of a call.
// Anonymous functions and method groups are left untyped;
// they are typed by the parameter of the selected candidate.
func resolveArgs(x *scope, es []ir.Expr) []arg {
	args := make([]arg, len(es))
	for i := range es {
		switch n := es[i].(type) {
		case *ir.AnonMethod:
			if n.T == nil {
				args[i].e = n
				continue
			}
		case *ir.QualIdent:
			lookExpr(x, &es[i])
			if q, ok := es[i].(*ir.QualIdent); ok {
				es[i] = qualBinding(x, q)
			}
		}
		if n, ok := es[i].(*ir.NameBinding); ok && n.T == nil && isMethodGroup(n) {
			args[i].e = n
			continue
		}
		args[i].t = resolveExpr(x, &es[i])
		args[i].e = es[i]
	}
	return args
}

func resolveCall(x *scope, n *ir.Call) {
	defer x.tr("resolveCall")()
	switch n.Fn.(type) {
	case *ir.Ident, *ir.QualIdent:
		lookExpr(x, &n.Fn)
	}
	if q, ok := n.Fn.(*ir.QualIdent); ok {
		n.Fn = qualBinding(x, q)
	}
	args := resolveArgs(x, n.Args)
	if f, ok := n.Fn.(*ir.NameBinding); ok && f.T == nil && isMethodGroup(f) {
		resolveMethodCall(x, n, f, args)
		return
	}
	ft := resolveExpr(x, &n.Fn)
	if ft == x.errType {
		n.T = x.errType
		return
	}
	inv := x.invoke(ft)
	if inv == nil {
		x.report(diag.NotCallable, n.Fn.Loc(), exprString(n.Fn), ft.String())
		n.T = x.errType
		return
	}
	win, fail := x.overload([]ir.Decl{inv}, nil, args, n.Loc())
	if win == nil {
		x.reportOverload(fail, exprString(n.Fn), []ir.Decl{inv}, args, n.Loc())
		n.T = x.errType
		return
	}
	n.Args = packArgs(x, win, n.Args, n.Loc())
	n.Method = inv
	n.T = inv.Ret
}

func resolveMethodCall(x *scope, n *ir.Call, f *ir.NameBinding, args []arg) {
	explicit, _ := x.lookTypes(n.TArgs)
	if len(explicit) == 0 {
		explicit, _ = x.lookTypes(f.TArgs)
	}
	win, fail := x.overload(f.Cands, explicit, args, n.Loc())
	if win == nil && len(f.Inaccessible) > 0 {
		x.mute++
		win, _ = x.overload(f.Inaccessible, explicit, args, n.Loc())
		x.mute--
		if win != nil {
			x.report(diag.MemberInaccessible, f.Loc(), f.Name)
		} else if len(f.Cands) == 0 {
			x.report(diag.MemberInaccessible, f.Loc(), f.Name)
			n.T = x.errType
			return
		}
	}
	if win == nil {
		if !x.explainConstraints(f.Cands, explicit, args, n.Loc()) {
			x.reportOverload(fail, f.Name, f.Cands, args, n.Loc())
		}
		n.T = x.errType
		return
	}
	if win.gen != nil {
		x.checkConstraints(win.gen.TParms, win.targs, win.gen.Name, n.Loc(), true)
	}
	m := win.decl.(*ir.Method)
	n.Args = packArgs(x, win, n.Args, n.Loc())
	fn := memberRef(x, f.Target, m, f.Loc(), f.Name)
	if mb, ok := fn.(*ir.MemberBinding); ok && mb.Target != nil {
		resolveExpr(x, &mb.Target)
	}
	fn.SetType(m.Ret)
	n.Fn = fn
	n.Method = m
	n.T = m.Ret
}

// explainConstraints reports the constraint violations
// of the only generic candidate of a failed call, if that is why it failed.
func (x *scope) explainConstraints(cands []ir.Decl, explicit []ir.Type, args []arg, at loc.Loc) bool {
	if len(cands) != 1 {
		return false
	}
	m, ok := cands[0].(*ir.Method)
	if !ok || len(m.TParms) == 0 || !x.countOK(m, len(args)) {
		return false
	}
	var ts []ir.Type
	for _, a := range args {
		ts = append(ts, a.t)
	}
	expand := m.HasParamsArray() && len(args) != len(m.Params)
	targs, ok := x.infer(m, explicit, paramTypes(m.Params, len(args), expand), ts)
	if !ok || x.checkConstraints(m.TParms, targs, m.Name, at, false) {
		return false
	}
	x.checkConstraints(m.TParms, targs, m.Name, at, true)
	return true
}

func resolveConstruct(x *scope, n *ir.Construct) {
	defer x.tr("resolveConstruct(%s)", n.TypeExpr)()
	t := x.lookType(n.TypeExpr)
	args := resolveArgs(x, n.Args)
	if t == nil || t == x.errType {
		n.T = x.errType
		return
	}
	n.T = t
	switch d := t.(type) {
	case *ir.TypeParam:
		if !x.hasDefaultCtor(d) {
			x.report(diag.ConstraintDefaultCtor, n.Loc(), d.Name, "new "+d.Name+"()")
		}
		if len(args) > 0 {
			x.report(diag.ArgumentCount, n.Loc(), "new "+d.Name, "0", strconv.Itoa(len(args)))
		}
	case *ir.TypeDecl:
		x.bindDecl(d)
		switch {
		case d.Kind == ir.Interface:
			x.report(diag.AbstractInstance, n.Loc(), "interface", d.String())
			return
		case d.Static:
			x.report(diag.AbstractInstance, n.Loc(), "static class", d.String())
			return
		case d.Abstract:
			x.report(diag.AbstractInstance, n.Loc(), "abstract class", d.String())
			return
		case d.Kind == ir.Delegate:
			if len(n.Args) != 1 {
				x.report(diag.ArgumentCount, n.Loc(), d.String(), "1", strconv.Itoa(len(args)))
				return
			}
			coerce(x, &n.Args[0], d)
			return
		}
		ctors := d.Lookup(".ctor")
		if len(ctors) == 0 || len(args) == 0 && x.isValueType(d) {
			if len(args) > 0 {
				x.report(diag.ArgumentCount, n.Loc(), d.String(), "0", strconv.Itoa(len(args)))
			}
			return
		}
		f := x.splitAccess(ctors)
		win, fail := x.overload(f.decls, nil, args, n.Loc())
		if win == nil && len(f.inacc) > 0 {
			x.mute++
			win, _ = x.overload(f.inacc, nil, args, n.Loc())
			x.mute--
			if win != nil {
				x.report(diag.MemberInaccessible, n.Loc(), d.Name+"."+".ctor")
			}
		}
		if win == nil {
			x.reportOverload(fail, d.String(), ctors, args, n.Loc())
			return
		}
		n.Ctor = win.decl.(*ir.Method)
		x.checkObsolete(n.Ctor, n.Loc())
		n.Args = packArgs(x, win, n.Args, n.Loc())
	default:
		x.report(diag.NotCallable, n.Loc(), t.String(), "type")
	}
}

func resolveIndex(x *scope, n *ir.Index) {
	t := resolveExpr(x, &n.X)
	args := resolveArgs(x, n.Args)
	if t == x.errType {
		n.T = x.errType
		return
	}
	switch u := ir.Unwrap(t).(type) {
	case *ir.ArrayType:
		if len(args) != u.Rank {
			x.report(diag.ArgumentCount, n.Loc(), "[]", strconv.Itoa(u.Rank), strconv.Itoa(len(args)))
		}
		for i := range n.Args {
			coerceIndex(x, &n.Args[i])
		}
		n.T = u.Elem
		return
	case *ir.PointerType:
		if len(args) != 1 {
			x.report(diag.ArgumentCount, n.Loc(), "[]", "1", strconv.Itoa(len(args)))
		}
		for i := range n.Args {
			coerceIndex(x, &n.Args[i])
		}
		n.T = u.Elem
		return
	}
	var all []ir.Decl
	for _, p := range x.indexers(t) {
		all = append(all, p)
	}
	if len(all) == 0 {
		x.report(diag.NotIndexable, n.Loc(), t.String())
		n.T = x.errType
		return
	}
	f := x.splitAccess(all)
	win, fail := x.overload(f.decls, nil, args, n.Loc())
	if win == nil {
		if len(f.decls) == 0 {
			x.report(diag.MemberInaccessible, n.Loc(), "this[]")
		} else {
			x.reportOverload(fail, t.String()+"[]", f.decls, args, n.Loc())
		}
		n.T = x.errType
		return
	}
	n.Indexer = win.decl.(*ir.Property)
	n.Args = packArgs(x, win, n.Args, n.Loc())
	n.T = n.Indexer.Type
}

func coerceIndex(x *scope, e *ir.Expr) {
	switch primOf(resolveExpr(x, e)) {
	case ir.Int, ir.UInt, ir.Long, ir.ULong:
		return
	}
	coerce(x, e, x.prims[ir.Int])
}

// indexers returns the indexers of t declared by the most derived type
// declaring any.
func (x *scope) indexers(t ir.Type) []*ir.Property {
	for d := x.typeDeclOf(t); d != nil; d = x.baseOf(d) {
		x.bindDecl(d)
		var ps []*ir.Property
		for _, m := range d.Members {
			if p, ok := m.(*ir.Property); ok && len(p.Params) > 0 {
				ps = append(ps, p)
			}
		}
		if len(ps) > 0 {
			return ps
		}
	}
	return nil
}

func resolveCast(x *scope, e *ir.Expr, n *ir.Cast) {
	t := x.lookType(n.TypeExpr)
	ft := resolveExpr(x, &n.X)
	if t == nil || t == x.errType {
		n.T = x.errType
		return
	}
	n.T = t
	if ft == x.errType {
		return
	}
	if !x.explicitConv(ft, t) {
		x.report(diag.NoConversion, n.Loc(), ft.String(), t.String())
		return
	}
	l, ok := n.X.(*ir.Literal)
	if !ok || l.Value == nil {
		return
	}
	p := x.constPrim(t)
	if !p.IsNumeric() {
		return
	}
	v, ok := convertConst(l.Value, p, !x.cfg.Unchecked)
	if !ok {
		x.foldFailed++
		x.report(diag.ConstantOverflow, n.Loc(), fmt.Sprintf("(%s)%v", t, l.Value))
		return
	}
	lit := &ir.Literal{Value: v}
	lit.At = n.At
	lit.T = t
	x.info.Folded++
	*e = lit
}

func resolveQuery(x *scope, q *ir.Query) {
	t := resolveExpr(x, &q.In)
	var elem ir.Type = x.errType
	if t != x.errType {
		if elem = x.elemOf(t); elem == nil {
			x.report(diag.NoConversion, q.In.Loc(), t.String(), x.core.enumerable.FullName())
			elem = x.errType
		}
	}
	if q.Slot.Type == nil {
		q.Slot.Type = elem
	}
	if q.Where != nil {
		coerce(x, &q.Where, x.prims[ir.Bool])
	}
	st := resolveExpr(x, &q.Select)
	def := x.core.enumerableT
	if d, ok := t.(*ir.TypeDecl); ok && d.Def == x.core.nonEmptyT && q.Where == nil {
		def = x.core.nonEmptyT
	}
	q.T = x.instType(def, []ir.Type{st}, q.Loc())
}

func resolveArrayLit(x *scope, n *ir.ArrayLit) {
	elem := n.Elem
	if elem == nil {
		for i := range n.Elems {
			t := resolveExpr(x, &n.Elems[i])
			if elem == nil || elem == x.nullType || t != x.nullType && x.implicitConv(elem, t).ok() {
				elem = t
			}
		}
		if elem == nil || elem == x.nullType {
			x.report(diag.CannotInfer, n.Loc(), "array")
			n.T = x.errType
			return
		}
	}
	for i := range n.Elems {
		coerce(x, &n.Elems[i], elem)
	}
	n.Elem = elem
	n.T = x.arrayOf(elem, 1)
}

// invoke returns the bound Invoke method of a delegate type or nil.
func (x *state) invoke(t ir.Type) *ir.Method {
	if d, ok := ir.Unwrap(t).(*ir.TypeDecl); ok && d.Kind == ir.Delegate {
		x.bindDecl(d)
	}
	return invokeOf(t)
}

// resolveAnon types an anonymous function as the delegate type to,
// taking the types of its untyped parameters from the delegate,
// then resolves its body.
func resolveAnon(x *scope, a *ir.AnonMethod, to ir.Type) {
	if a.T != nil {
		return
	}
	inv := x.invoke(to)
	switch {
	case inv == nil:
		x.report(diag.NoDelegateType, a.Loc())
		a.T = x.errType
	case len(inv.Params) != len(a.Params):
		x.report(diag.NoConversion, a.Loc(), "anonymous method", to.String())
		a.T = x.errType
	default:
		a.T = to
		for i, p := range a.Params {
			switch pt := inv.Params[i].Type; {
			case p.Type == nil:
				p.Type = pt
				if p.Slot != nil {
					p.Slot.Type = pt
				}
			case p.Type != pt:
				x.report(diag.NoConversion, a.Loc(), "anonymous method", to.String())
				a.T = x.errType
			}
		}
		if a.Method.Ret == nil {
			a.Method.Ret = inv.Ret
		}
	}
	for _, p := range a.Params {
		if p.Type == nil {
			p.Type = x.errType
			if p.Slot != nil {
				p.Slot.Type = x.errType
			}
		}
	}
	if a.Method.Ret == nil {
		a.Method.Ret = x.prims[ir.Void]
	}
	if a.Body == nil {
		return
	}
	y := x.new()
	y.meth = &methLevel{m: a.Method, anon: a}
	resolveStmts(y, a.Body.Stmts)
}

// coerce resolves an expression and converts it to the type to,
// reporting an error if there is no implicit conversion.
// Anonymous functions and method groups are converted to a delegate type.
func coerce(x *scope, e *ir.Expr, to ir.Type) {
	if *e == nil {
		return
	}
	if q, ok := (*e).(*ir.QualIdent); ok {
		lookExpr(x, e)
		if q, ok = (*e).(*ir.QualIdent); ok {
			*e = qualBinding(x, q)
		}
	}
	switch n := (*e).(type) {
	case *ir.AnonMethod:
		if n.T == nil {
			resolveAnon(x, n, to)
			return
		}
	case *ir.NameBinding:
		if n.T == nil && isMethodGroup(n) && x.invoke(to) != nil {
			coerceGroup(x, e, n, to)
			return
		}
	}
	t := resolveExpr(x, e)
	if to == nil || t == nil || t == to || t == x.errType || to == x.errType {
		return
	}
	if l, ok := (*e).(*ir.Literal); ok && x.constFits(l, to) {
		if c, ok := x.retag(l, to); ok {
			*e = c
			return
		}
	}
	c := x.implicitConv(t, to)
	switch {
	case !c.ok():
		x.report(diag.NoImplicitConversion, (*e).Loc(), t.String(), to.String())
		return
	case c.class == exactConv:
		return
	}
	if l, ok := (*e).(*ir.Literal); ok && c.kind == ir.NumericConv {
		if lit, ok := x.retag(l, to); ok {
			*e = lit
			return
		}
	}
	cv := &ir.Convert{X: *e, Kind: c.kind, Op: c.op}
	cv.At = (*e).Loc()
	cv.T = to
	*e = cv
}

func coerceGroup(x *scope, e *ir.Expr, n *ir.NameBinding, to ir.Type) {
	m := x.groupConv(n, invokeOf(to))
	if m == nil {
		x.report(diag.NoConversion, n.Loc(), n.Name, to.String())
		n.T = x.errType
		return
	}
	if len(n.Cands) == 0 {
		x.report(diag.MemberInaccessible, n.Loc(), n.Name)
	}
	fn := memberRef(x, n.Target, m, n.Loc(), n.Name)
	if mb, ok := fn.(*ir.MemberBinding); ok && mb.Target != nil {
		resolveExpr(x, &mb.Target)
	}
	fn.SetType(m.Ret)
	cv := &ir.Convert{X: fn, Kind: ir.MethodGroupConv}
	cv.At = n.Loc()
	cv.T = to
	*e = cv
}

// exprString returns a short source-like rendering of an expression
// for diagnostics.
func exprString(e ir.Expr) string {
	switch e := e.(type) {
	case *ir.Ident:
		return e.Name
	case *ir.QualIdent:
		return exprString(e.X) + "." + e.Name
	case *ir.NameBinding:
		if e.Target != nil {
			return exprString(e.Target) + "." + e.Name
		}
		return e.Name
	case *ir.MemberBinding:
		switch e.Target.(type) {
		case nil, *ir.This, *ir.ClosureRef:
			return e.Decl.DeclName()
		}
		return exprString(e.Target) + "." + e.Decl.DeclName()
	case *ir.Literal:
		switch v := e.Value.(type) {
		case nil:
			return "null"
		case string:
			return strconv.Quote(v)
		}
		return fmt.Sprint(e.Value)
	case *ir.This:
		return "this"
	case *ir.BaseRef:
		return "base"
	case *ir.TypeLit:
		return typeString(e.Of)
	case *ir.NamespaceRef:
		return e.Name
	case *ir.Call:
		return exprString(e.Fn) + "(...)"
	case *ir.Convert:
		return exprString(e.X)
	case *ir.Index:
		return exprString(e.X) + "[...]"
	}
	return "expression"
}
