// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strconv"

	"github.com/hesam/SketchSharp-sub002/ir"
)

func lookExprs(x *scope, es []ir.Expr) {
	for i := range es {
		lookExpr(x, &es[i])
	}
}

// lookExpr binds the names in an expression,
// replacing identifiers through the expression's slot.
func lookExpr(x *scope, e *ir.Expr) {
	if *e == nil {
		return
	}
	switch n := (*e).(type) {
	case *ir.Ident:
		*e = lookIdent(x, n)
	case *ir.QualIdent:
		*e = lookQual(x, n)
	case *ir.Binary:
		lookExpr(x, &n.L)
		lookExpr(x, &n.R)
	case *ir.Unary:
		lookExpr(x, &n.X)
	case *ir.Ternary:
		lookExpr(x, &n.Cond)
		lookExpr(x, &n.Then)
		lookExpr(x, &n.Else)
	case *ir.Assign:
		lookExpr(x, &n.Target)
		lookExpr(x, &n.Value)
	case *ir.Call:
		lookExpr(x, &n.Fn)
		lookExprs(x, n.Args)
		x.lookTypes(n.TArgs)
	case *ir.Construct:
		x.lookType(n.TypeExpr)
		lookExprs(x, n.Args)
	case *ir.Index:
		lookExpr(x, &n.X)
		lookExprs(x, n.Args)
	case *ir.Cast:
		x.lookType(n.TypeExpr)
		lookExpr(x, &n.X)
	case *ir.TypeOf:
		n.Of = x.lookType(n.TypeExpr)
	case *ir.TypeLit:
		if n.Of == nil {
			n.Of = x.lookType(n.TypeExpr)
		}
	case *ir.AnonMethod:
		lookAnon(x, n)
	case *ir.Query:
		lookQuery(x, n)
	case *ir.TupleLit:
		lookExprs(x, n.Elems)
	case *ir.ArrayLit:
		if n.ElemExpr != nil {
			n.Elem = x.lookType(n.ElemExpr)
		}
		lookExprs(x, n.Elems)
	case *ir.Convert:
		lookExpr(x, &n.X)
	case *ir.Literal, *ir.This, *ir.BaseRef, *ir.NameBinding, *ir.MemberBinding,
		*ir.NamespaceRef, *ir.AliasBinding, *ir.ClosureRef:
	}
}

func lookIdent(x *scope, id *ir.Ident) ir.Expr {
	defer x.tr("lookIdent(%s)", id.Name)()
	if p, ok := ir.PrimByName(id.Name); ok && p < ir.Null && len(id.TArgs) == 0 {
		return &ir.TypeLit{ExprBase: ir.ExprBase{Base: ir.Base{At: id.At}}, Of: x.prims[p]}
	}
	f := x.lookup(id.Name, len(id.TArgs))
	return bindFound(x, id.Name, f, nil, id.TArgs, id)
}

// bindFound converts a lookup result to its binding:
// a slot reference, a type, a namespace, an alias,
// or a NameBinding of candidate members.
func bindFound(x *scope, name string, f *found, target ir.Expr, targs []ir.TypeExpr, n ir.Expr) ir.Expr {
	b := ir.ExprBase{Base: ir.Base{At: n.Loc()}}
	switch {
	case f.isNS:
		return &ir.NamespaceRef{ExprBase: b, Name: f.ns}
	case f.alias != nil:
		x.lookAlias(f.alias)
		return &ir.AliasBinding{ExprBase: b, Alias: f.alias}
	case len(f.decls) > 0:
		switch d := f.decls[0].(type) {
		case *ir.TypeDecl:
			x.reportAmbiguous(name, f, n)
			x.checkObsolete(d, n.Loc())
			var t ir.Type = d
			if args, ok := x.lookTypes(targs); ok && len(args) > 0 {
				t = x.instAt(d, args, n.Loc())
			}
			return &ir.TypeLit{ExprBase: b, Of: t}
		case *ir.TypeParam:
			return &ir.TypeLit{ExprBase: b, Of: d}
		case *ir.Field:
			if d.Slot != ir.NotSlot {
				return bindSlot(x, d, f, b)
			}
		}
	}
	var level ir.Scope = x
	if f.level != nil {
		level = f.level
	}
	x.lookTypes(targs)
	return &ir.NameBinding{
		ExprBase:     b,
		Name:         name,
		Cands:        f.decls,
		Inaccessible: f.inacc,
		Scope:        level,
		Depth:        f.depth,
		Target:       target,
		TArgs:        targs,
	}
}

// bindSlot binds a reference to a variable.
// A variable of an enclosing method referenced from an anonymous function
// is captured: it becomes a member of the enclosing method's closure class.
func bindSlot(x *scope, slot *ir.Field, f *found, b ir.ExprBase) ir.Expr {
	crossed := false
	for s := x; s != nil && s != f.level; s = s.up {
		if s.meth != nil && s.meth.anon != nil {
			crossed = true
		}
	}
	if !crossed {
		if slot.Captured {
			return &ir.MemberBinding{
				ExprBase: b,
				Target:   &ir.ClosureRef{ExprBase: b, Class: slot.Host},
				Decl:     slot,
			}
		}
		return &ir.MemberBinding{ExprBase: b, Decl: slot}
	}
	var owner *methLevel
	for s := f.level; s != nil; s = s.up {
		if s.meth != nil {
			owner = s.meth
			break
		}
	}
	if owner == nil {
		return &ir.MemberBinding{ExprBase: b, Decl: slot}
	}
	host := x.closureClass(owner)
	capture(x, slot, host)
	return &ir.MemberBinding{
		ExprBase: b,
		Target:   &ir.ClosureRef{ExprBase: b, Class: host},
		Decl:     slot,
	}
}

func capture(x *scope, slot *ir.Field, host *ir.TypeDecl) {
	if slot.Captured {
		return
	}
	x.log("capture %s in %s", slot.Name, host.Name)
	slot.Captured = true
	slot.Host = host
	slot.Owner = host
	host.Members = append(host.Members, slot)
}

// closureClass returns the closure class of a method level,
// creating it on first use.
// The class is nested in the method's declaring type.
func (x *scope) closureClass(m *methLevel) *ir.TypeDecl {
	if m.closure != nil {
		return m.closure
	}
	owner := m.m.Owner
	c := &ir.TypeDecl{
		Base:     ir.Base{At: m.m.At},
		Kind:     ir.Class,
		Name:     "<>c__DisplayClass" + strconv.Itoa(x.nclosure),
		Module:   x.mod,
		Access:   ir.Private,
		Outer:    owner,
		BaseType: x.core.object,
		Closure:  true,
	}
	x.nclosure++
	x.info.Closures++
	x.bound[c] = bindDone
	x.declMod[c] = x.mod
	if owner != nil {
		owner.Members = append(owner.Members, c)
	}
	m.closure = c
	return c
}

// lookAnon hoists an anonymous function to a method
// of the closure class of its enclosing method,
// then binds its body in a new method level.
func lookAnon(x *scope, a *ir.AnonMethod) {
	defer x.tr("lookAnon")()
	outer := x.curMeth()
	if outer == nil {
		// An anonymous function in a field initializer
		// is hosted by a static method of the declaring type.
		t := x.curType()
		init := &ir.Method{Base: ir.Base{At: a.At}, Name: ".init", Static: true, Owner: t}
		outer = &methLevel{m: init}
	}
	host := x.closureClass(outer)
	m := &ir.Method{
		Base:    ir.Base{At: a.At},
		Name:    "<" + outer.m.Name + ">b__" + strconv.Itoa(len(host.Members)),
		Access:  ir.Internal,
		Owner:   host,
		Params:  a.Params,
		RetExpr: a.RetExpr,
		Body:    a.Body,
	}
	if a.RetExpr != nil {
		m.Ret = x.lookType(a.RetExpr)
	}
	host.Members = append(host.Members, m)
	a.Method = m
	a.Closure = host

	ml := &methLevel{m: m, anon: a}
	y := x.new()
	y.meth = ml
	y = y.newVars(methodScope)
	for _, p := range a.Params {
		if p.TypeExpr != nil {
			p.Type = x.lookType(p.TypeExpr)
		}
	}
	declareParams(y, a.Params)
	if a.Body == nil {
		return
	}
	collectLabels(y, ml, a.Body.Stmts)
	lookStmts(y, a.Body.Stmts)
	checkUnusedLabels(y, ml)
}

func lookQuery(x *scope, q *ir.Query) {
	lookExpr(x, &q.In)
	y := x.newVars(queryScope)
	var t ir.Type
	if q.TypeExpr != nil {
		t = x.lookType(q.TypeExpr)
	}
	q.Slot = &ir.Field{Base: ir.Base{At: q.At}, Name: q.Var, Type: t, Slot: ir.InductionSlot}
	y.declare(q.Slot)
	addLocal(x, q.Slot)
	if q.Where != nil {
		lookExpr(y, &q.Where)
	}
	lookExpr(y, &q.Select)
}

// lookQual binds a qualified name whose qualifier is
// a namespace, an alias, or a type.
// A qualified name on a value is left for the resolver,
// which knows the value's type.
func lookQual(x *scope, q *ir.QualIdent) ir.Expr {
	lookExpr(x, &q.X)
	defer x.tr("lookQual(%s)", q.Name)()
	arity := len(q.TArgs)
	if a, ok := q.X.(*ir.AliasBinding); ok {
		switch {
		case a.Alias.Namespace != "":
			q.X = &ir.NamespaceRef{ExprBase: a.ExprBase, Name: a.Alias.Namespace}
		case a.Alias.Type != nil:
			q.X = &ir.TypeLit{ExprBase: a.ExprBase, Of: a.Alias.Type}
		}
	}
	switch t := q.X.(type) {
	case *ir.NamespaceRef:
		f := x.lookupIn(t.Name, q.Name, arity)
		return bindFound(x, q.Name, f, q.X, q.TArgs, q)
	case *ir.TypeLit:
		f := x.splitAccess(x.typeMembers(t.Of, q.Name, arity))
		if len(f.decls) > 0 {
			if d, ok := f.decls[0].(*ir.TypeDecl); ok {
				return bindFound(x, q.Name, &found{decls: []ir.Decl{d}}, q.X, q.TArgs, q)
			}
		}
		return bindFound(x, q.Name, f, q.X, q.TArgs, q)
	}
	return q
}
