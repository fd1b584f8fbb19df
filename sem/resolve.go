// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
)

// resolve types the expressions of a unit: the Resolver pass.
// It replaces the NameBindings left by the binder,
// selects overloads, inserts implicit conversions,
// and folds constants.
func resolve(x *scope, unit *ir.Unit) {
	defer x.tr("resolve(%s)", unit.Module.Name)()
	for _, t := range sourceTypes(unit.Module) {
		resolveType(x, t)
	}
}

func resolveType(x *scope, t *ir.TypeDecl) {
	defer x.tr("resolveType(%s)", t)()
	y := x.declScope(t)
	resolveAttrs(y, t.Attrs)
	members := append([]ir.Decl{}, t.Members...)
	for _, d := range members {
		if isTypeDecl(d) {
			continue
		}
		resolveAttrs(y, ir.AttrsOf(d))
		switch d := d.(type) {
		case *ir.Field:
			if d.Const {
				evalConst(x.state, d)
				continue
			}
			if d.Init != nil {
				coerce(y, &d.Init, d.Type)
			}
		case *ir.Method:
			resolveMethod(y, d)
		case *ir.Property:
			resolveDefaults(y, d.Params)
		}
	}
}

// resolveAttrs selects the constructor of each attribute
// and folds its arguments.
func resolveAttrs(x *scope, as []*ir.Attribute) {
	for _, a := range as {
		if a.Type == nil || a.Ctor != nil {
			continue
		}
		x.bindDecl(a.Type)
		y := x.newVars(attrScope)
		args := resolveArgs(y, a.Args)
		ctors := a.Type.Lookup(".ctor")
		win, fail := y.overload(ctors, nil, args, a.Loc())
		if win == nil {
			y.reportOverload(fail, a.Type.Name, ctors, args, a.Loc())
			continue
		}
		a.Ctor = win.decl.(*ir.Method)
		a.Args = packArgs(y, win, a.Args, a.Loc())
		for _, e := range a.Args {
			switch e := e.(type) {
			case *ir.Literal, *ir.TypeOf:
			case *ir.ArrayLit:
				if !allLiterals(e.Elems) {
					y.report(diag.ConstNotConstant, e.Loc(), a.Type.Name)
				}
			default:
				if e.Type() != x.errType {
					y.report(diag.ConstNotConstant, e.Loc(), a.Type.Name)
				}
			}
		}
	}
}

func allLiterals(es []ir.Expr) bool {
	for _, e := range es {
		if _, ok := e.(*ir.Literal); !ok {
			return false
		}
	}
	return true
}

func resolveDefaults(x *scope, ps []*ir.Param) {
	for _, p := range ps {
		if p.Default != nil {
			coerce(x, &p.Default, p.Type)
		}
	}
}

func resolveMethod(x *scope, m *ir.Method) {
	defer x.tr("resolveMethod(%s)", m.Name)()
	y := x.new()
	y.meth = &methLevel{m: m}
	resolveAttrs(y, m.Attrs)
	resolveDefaults(y, m.Params)
	if m.Body == nil {
		return
	}
	resolveStmts(y, m.Body.Stmts)
}

func resolveStmts(x *scope, ss []ir.Stmt) {
	for _, s := range ss {
		resolveStmt(x, s)
	}
}

func resolveStmt(x *scope, s ir.Stmt) {
	switch s := s.(type) {
	case *ir.Block:
		if s != nil {
			resolveStmts(x, s.Stmts)
		}
	case *ir.LocalDecl:
		resolveLocal(x, s)
	case *ir.ExprStmt:
		resolveExpr(x, &s.X)
	case *ir.Return:
		resolveReturn(x, s)
	case *ir.If:
		coerce(x, &s.Cond, x.prims[ir.Bool])
		resolveStmt(x, s.Then)
		if s.Else != nil {
			resolveStmt(x, s.Else)
		}
	case *ir.While:
		coerce(x, &s.Cond, x.prims[ir.Bool])
		resolveStmt(x, s.Body)
	case *ir.Foreach:
		resolveForeach(x, s)
	case *ir.Try:
		resolveStmt(x, s.Body)
		for _, c := range s.Catches {
			if c.Type != nil && c.Type != x.errType {
				if d, ok := c.Type.(*ir.TypeDecl); !ok || !x.derives(d, x.core.exception) {
					x.report(diag.NoConversion, c.Loc(), c.Type.String(), x.core.exception.FullName())
				}
			}
			resolveStmt(x, c.Body)
		}
		if s.Finally != nil {
			resolveStmt(x, s.Finally)
		}
	case *ir.Lock:
		resolveRefOperand(x, "lock", &s.X)
		resolveStmt(x, s.Body)
	case *ir.Acquire:
		resolveRefOperand(x, "acquire", &s.X)
		resolveStmt(x, s.Body)
	case *ir.UsingStmt:
		t := resolveExpr(x, &s.X)
		if t != x.errType && !x.implicitConv(t, x.core.disposable).ok() {
			x.report(diag.NoImplicitConversion, s.X.Loc(), t.String(), x.core.disposable.FullName())
		}
		resolveStmt(x, s.Body)
	case *ir.Switch:
		t := resolveExpr(x, &s.X)
		for _, c := range s.Cases {
			for i := range c.Values {
				coerce(x, &c.Values[i], t)
				if _, ok := c.Values[i].(*ir.Literal); !ok && c.Values[i].Type() != x.errType {
					x.report(diag.ConstNotConstant, c.Values[i].Loc(), "case")
				}
			}
			resolveStmts(x, c.Body)
		}
	case *ir.Labeled:
		resolveStmt(x, s.Stmt)
	case *ir.Throw:
		if s.X != nil {
			t := resolveExpr(x, &s.X)
			if d, ok := t.(*ir.TypeDecl); t != x.errType && (!ok || !x.derives(d, x.core.exception)) {
				x.report(diag.NoImplicitConversion, s.X.Loc(), t.String(), x.core.exception.FullName())
			}
		}
	case *ir.Goto, *ir.Break, *ir.Continue, nil:
	default:
		panic("impossible statement")
	}
}

func resolveLocal(x *scope, s *ir.LocalDecl) {
	slot := s.Slot
	switch {
	case slot.Type != nil:
		if s.Init != nil {
			coerce(x, &s.Init, slot.Type)
		}
	case s.Init == nil:
		x.report(diag.CannotInfer, s.Loc(), s.Name)
		slot.Type = x.errType
	default:
		t := resolveExpr(x, &s.Init)
		if t == x.nullType {
			x.report(diag.CannotInfer, s.Loc(), s.Name)
			t = x.errType
		}
		slot.Type = t
	}
}

func resolveReturn(x *scope, s *ir.Return) {
	m := x.curMeth()
	if m == nil {
		if s.X != nil {
			resolveExpr(x, &s.X)
		}
		return
	}
	ret := m.m.Ret
	void := ret == nil || x.isPrim(ret, ir.Void) || m.m.Ctor
	switch {
	case s.X == nil && !void:
		x.report(diag.MissingReturnValue, s.Loc(), m.m.Name, ret.String())
	case s.X != nil && void:
		if t := resolveExpr(x, &s.X); t != x.errType {
			x.report(diag.NoImplicitConversion, s.X.Loc(), t.String(), "void")
		}
	case s.X != nil:
		coerce(x, &s.X, ret)
	}
}

func resolveForeach(x *scope, s *ir.Foreach) {
	t := resolveExpr(x, &s.In)
	var elem ir.Type = x.errType
	if t != x.errType {
		if elem = x.elemOf(t); elem == nil {
			x.report(diag.NoConversion, s.In.Loc(), t.String(), x.core.enumerable.FullName())
			elem = x.errType
		}
	}
	switch {
	case s.Slot.Type == nil:
		s.Slot.Type = elem
	case elem != x.errType && !x.explicitConv(elem, s.Slot.Type):
		x.report(diag.NoConversion, s.Loc(), elem.String(), s.Slot.Type.String())
	}
	resolveStmt(x, s.Body)
}

func resolveRefOperand(x *scope, what string, e *ir.Expr) {
	t := resolveExpr(x, e)
	if t != x.errType && !x.isRefType(t) {
		x.report(diag.BadOperand, (*e).Loc(), what, t.String())
	}
}

// elemOf returns the element type of an enumerable type, or nil.
func (x *scope) elemOf(t ir.Type) ir.Type {
	if a, ok := ir.Unwrap(t).(*ir.ArrayType); ok {
		return a.Elem
	}
	if t == x.core.str {
		return x.prims[ir.Char]
	}
	if inst := x.findInst(t, x.core.enumerableT); inst != nil {
		return inst.Args[0]
	}
	if d := x.typeDeclOf(t); d != nil && x.derives(d, x.core.enumerable) {
		return x.core.object
	}
	return nil
}
