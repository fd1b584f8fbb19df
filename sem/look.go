// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strconv"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
	"golang.org/x/exp/slices"
)

// look binds the names of a unit: the Looker pass.
// It resolves type expressions, declares slots for variables,
// hoists anonymous functions, and leaves member references
// as NameBindings for the resolver.
func look(x *scope, unit *ir.Unit) {
	defer x.tr("look(%s)", unit.Module.Name)()
	for _, ns := range unit.Module.Namespaces {
		lookAliases(x, ns)
	}
	types := sourceTypes(unit.Module)
	checkDupTypes(x, unit.Module)
	for _, t := range types {
		x.bindDecl(t)
		checkDupMembers(x, t)
	}
	for _, t := range types {
		lookTypeBody(x, t)
	}
}

func lookAliases(x *scope, ns *ir.Namespace) {
	for _, a := range ns.Aliases {
		x.lookAlias(a)
		if a.Type == nil && a.Namespace == "" {
			x.log("unresolved alias %s", a.Name)
		}
	}
	for _, kid := range ns.Namespaces {
		lookAliases(x, kid)
	}
}

// sourceTypes returns the types declared in a module,
// outer types before the types nested in them.
func sourceTypes(mod *ir.Module) []*ir.TypeDecl {
	var ts []*ir.TypeDecl
	var add func(*ir.TypeDecl)
	add = func(t *ir.TypeDecl) {
		ts = append(ts, t)
		for _, m := range t.Members {
			if n, ok := m.(*ir.TypeDecl); ok && !n.Closure {
				add(n)
			}
		}
	}
	for _, t := range mod.Types {
		add(t)
	}
	return ts
}

func checkDupTypes(x *scope, mod *ir.Module) {
	seen := make(map[string]*ir.TypeDecl)
	for _, t := range mod.Types {
		k := t.FullName()
		if seen[k] != nil {
			x.report(diag.Redefined, t.Loc(), k)
			continue
		}
		seen[k] = t
	}
}

// checkDupMembers reports members with the same name,
// except overloaded methods with different signatures.
func checkDupMembers(x *scope, t *ir.TypeDecl) {
	byName := make(map[string][]ir.Decl)
	for _, m := range t.Members {
		name := m.DeclName()
		if n, ok := m.(*ir.TypeDecl); ok {
			name += "`" + strconv.Itoa(len(n.TParms))
		}
		prev := byName[name]
		byName[name] = append(prev, m)
		if len(prev) == 0 {
			continue
		}
		fn, ok := m.(*ir.Method)
		if !ok {
			x.report(diag.Redefined, m.Loc(), m.DeclName())
			continue
		}
		for _, p := range prev {
			if pfn, ok := p.(*ir.Method); !ok || sameSig(pfn, fn) {
				x.report(diag.Redefined, m.Loc(), m.DeclName())
				break
			}
		}
	}
}

// bindDecl resolves the header and member signatures of a type.
// Referenced types are bound on first use.
func (x *state) bindDecl(t *ir.TypeDecl) {
	if t == nil {
		return
	}
	if t.Def != nil {
		x.bindDecl(t.Def)
		return
	}
	if t.Prim == ir.Null || t.Prim == ir.Error || x.bound[t] != bindNone {
		return
	}
	x.bound[t] = bindBusy
	defer x.tr("bindDecl(%s)", t)()
	y := x.declScope(t)
	for _, p := range t.TParms {
		bindTParm(y, p)
	}
	bindBase(y, t)
	for _, a := range t.Attrs {
		lookAttrType(y, a)
	}
	for _, d := range t.Members {
		bindMember(y, d)
	}
	x.bound[t] = bindDone
	for _, inst := range x.pending[t] {
		x.fillInst(inst)
	}
	delete(x.pending, t)
}

func bindTParm(x *scope, p *ir.TypeParam) {
	p.Bounds = nil
	for _, be := range p.BoundExprs {
		if b := x.lookType(be); b != nil {
			p.Bounds = append(p.Bounds, b)
		}
	}
}

func bindBase(x *scope, t *ir.TypeDecl) {
	var base ir.Type
	if t.BaseExpr != nil {
		base = x.lookType(t.BaseExpr)
	}
	var ifaces []ir.Type
	for _, ie := range t.IfaceExprs {
		if i := x.lookType(ie); i != nil {
			ifaces = append(ifaces, i)
		}
	}
	if isInterface(base) {
		ifaces = append([]ir.Type{base}, ifaces...)
		base = nil
	}
	for _, i := range ifaces {
		if d, ok := i.(*ir.TypeDecl); ok && d.Kind == ir.Interface {
			t.Ifaces = append(t.Ifaces, d)
		} else {
			x.report(diag.BadBase, t.Loc(), t.String(), i.String())
		}
	}
	switch t.Kind {
	case ir.Class:
		if t == x.core.object {
			return
		}
		if d, ok := base.(*ir.TypeDecl); ok && d.Kind == ir.Class && d.Prim != ir.String && !d.Static {
			t.BaseType = d
		} else {
			if base != nil {
				x.report(diag.BadBase, t.Loc(), t.String(), base.String())
			}
			t.BaseType = x.core.object
		}
	case ir.Struct:
		if base != nil {
			x.report(diag.BadBase, t.Loc(), t.String(), base.String())
		}
		t.BaseType = x.core.valueType
	case ir.Interface:
		if base != nil {
			x.report(diag.BadBase, t.Loc(), t.String(), base.String())
		}
		return
	case ir.Enum:
		if base != nil {
			x.report(diag.BadBase, t.Loc(), t.String(), base.String())
		}
		t.BaseType = x.core.enum
		t.EnumBase = x.prims[ir.Int]
		if t.EnumExpr != nil {
			u := x.lookType(t.EnumExpr)
			if d, ok := u.(*ir.TypeDecl); ok && d.Prim.IsIntegral() && d.Prim != ir.Char {
				t.EnumBase = d
			} else if u != nil {
				x.report(diag.BadBase, t.Loc(), t.String(), u.String())
			}
		}
	case ir.Delegate:
		t.BaseType = x.core.multicast
	}
	checkBaseCycle(x, t)
}

// checkBaseCycle reports a type that is its own base,
// breaking the cycle at the type.
func checkBaseCycle(x *scope, t *ir.TypeDecl) {
	seen := map[*ir.TypeDecl]bool{t: true}
	for b := t.BaseType; b != nil; b = x.baseOf(b) {
		b = b.Origin()
		if b == t {
			x.report(diag.CircularBase, t.Loc(), t.Name)
			t.BaseType = x.core.object
			return
		}
		if seen[b] {
			return
		}
		seen[b] = true
	}
}

func bindMember(x *scope, d ir.Decl) {
	switch d := d.(type) {
	case *ir.Field:
		if d.TypeExpr != nil {
			d.Type = x.lookType(d.TypeExpr)
		}
		lookAttrTypes(x, d.Attrs)
	case *ir.Method:
		y := x
		if len(d.TParms) > 0 {
			y = x.new()
			y.meth = &methLevel{m: d}
			for _, p := range d.TParms {
				bindTParm(y, p)
			}
		}
		bindParams(y, d.Params)
		switch {
		case d.RetExpr != nil:
			d.Ret = y.lookType(d.RetExpr)
		default:
			d.Ret = x.prims[ir.Void]
		}
		lookAttrTypes(x, d.Attrs)
	case *ir.Property:
		d.Type = x.lookType(d.TypeExpr)
		bindParams(x, d.Params)
		lookAttrTypes(x, d.Attrs)
	case *ir.Event:
		d.Type = x.lookType(d.TypeExpr)
		if d.Type != nil && !isDelegate(d.Type) {
			x.report(diag.NoDelegateType, d.Loc())
		}
		lookAttrTypes(x, d.Attrs)
	}
}

func bindParams(x *scope, ps []*ir.Param) {
	for _, p := range ps {
		p.Type = x.lookType(p.TypeExpr)
		if p.IsParams {
			if _, ok := p.Type.(*ir.ArrayType); !ok && p.Type != nil {
				x.report(diag.BadModifier, p.Loc(), "params", p.Type.String())
				p.IsParams = false
			}
		}
	}
}

func lookAttrTypes(x *scope, as []*ir.Attribute) {
	for _, a := range as {
		lookAttrType(x, a)
	}
}

// lookAttrType resolves an attribute's type:
// the name as written, or else the name with an Attribute suffix.
func lookAttrType(x *scope, a *ir.Attribute) *ir.TypeDecl {
	if a.Type != nil {
		return a.Type
	}
	if t, ok := x.resolved[a.TypeExpr]; ok {
		if x.isAttribute(t) {
			a.Type = t.(*ir.TypeDecl)
		}
		return a.Type
	}
	nt, ok := a.TypeExpr.(*ir.NamedTypeExpr)
	if !ok {
		x.report(diag.NotAType, a.Loc(), a.TypeExpr.String(), "attribute")
		return nil
	}
	x.mute++
	t := x.lookType(nt)
	x.mute--
	if !x.isAttribute(t) {
		path := append([]string{}, nt.Path...)
		path[len(path)-1] += "Attribute"
		long := &ir.NamedTypeExpr{Base: ir.Base{At: nt.At}, Path: path, Args: nt.Args}
		x.mute++
		t = x.lookType(long)
		x.mute--
	}
	if !x.isAttribute(t) {
		delete(x.resolved, nt)
		if t := x.lookType(nt); t != nil {
			x.report(diag.BadBase, a.Loc(), t.String(), x.core.attribute.String())
		}
		return nil
	}
	x.resolved[nt] = t
	a.Type = t.(*ir.TypeDecl)
	return a.Type
}

func (x *state) isAttribute(t ir.Type) bool {
	d, ok := t.(*ir.TypeDecl)
	if !ok {
		return false
	}
	for b := d; b != nil; b = x.baseOf(b) {
		if b == x.core.attribute {
			return true
		}
	}
	return false
}

// checkObsolete reports a reference to a declaration
// marked with the ObsoleteAttribute.
func (x *scope) checkObsolete(d ir.Decl, at loc.Loc) {
	d = declOrigin(d)
	owner := ir.OwnerOf(d)
	for _, a := range ir.AttrsOf(d) {
		var y *scope
		switch {
		case owner != nil:
			y = x.declScope(owner)
		case isTypeDecl(d):
			y = x.declScope(d.(*ir.TypeDecl))
		default:
			y = x
		}
		if lookAttrType(y, a) != x.core.obsolete {
			continue
		}
		var msg string
		var isErr bool
		if len(a.Args) > 0 {
			if l, ok := a.Args[0].(*ir.Literal); ok {
				if s, ok := l.Value.(string); ok && s != "" {
					msg = ": " + s
				}
			}
		}
		if len(a.Args) > 1 {
			if l, ok := a.Args[1].(*ir.Literal); ok {
				isErr, _ = l.Value.(bool)
			}
		}
		kind := diag.ObsoleteWarning
		if isErr {
			kind = diag.ObsoleteError
		}
		x.report(kind, at, d.DeclName(), msg)
		return
	}
}

func isTypeDecl(d ir.Decl) bool {
	_, ok := d.(*ir.TypeDecl)
	return ok
}

// declOrigin returns the declaration an instance member was made from.
func declOrigin(d ir.Decl) ir.Decl {
	switch d := d.(type) {
	case *ir.TypeDecl:
		return d.Origin()
	case *ir.Method:
		return d.Origin()
	case *ir.Field:
		if d.Def != nil {
			return d.Def
		}
	case *ir.Property:
		if d.Def != nil {
			return d.Def
		}
	case *ir.Event:
		if d.Def != nil {
			return d.Def
		}
	}
	return d
}

func lookTypeBody(x *scope, t *ir.TypeDecl) {
	defer x.tr("lookTypeBody(%s)", t)()
	y := x.declScope(t)
	for _, a := range t.Attrs {
		lookAttrArgs(y, a)
	}
	for _, tp := range t.TParms {
		for _, b := range tp.Bounds {
			y.checkTypeConstraints(b, tp.Loc(), true)
		}
	}
	members := append([]ir.Decl{}, t.Members...)
	for _, d := range members {
		for _, a := range ir.AttrsOf(d) {
			if !isTypeDecl(d) {
				lookAttrArgs(y, a)
			}
		}
		switch d := d.(type) {
		case *ir.Field:
			if d.Init != nil {
				lookExpr(y, &d.Init)
			}
		case *ir.Method:
			lookMethod(y, d)
		case *ir.Property:
			for _, p := range d.Params {
				lookExpr(y, &p.Default)
			}
		}
	}
}

func lookAttrArgs(x *scope, a *ir.Attribute) {
	y := x.newVars(attrScope)
	for i := range a.Args {
		lookExpr(y, &a.Args[i])
	}
}

func lookMethod(x *scope, m *ir.Method) {
	defer x.tr("lookMethod(%s)", m.Name)()
	ml := &methLevel{m: m}
	y := x.new()
	y.meth = ml
	y = y.newVars(methodScope)
	declareParams(y, m.Params)
	if m.Body == nil {
		return
	}
	collectLabels(y, ml, m.Body.Stmts)
	lookStmts(y, m.Body.Stmts)
	checkUnusedLabels(y, ml)
}

func declareParams(x *scope, ps []*ir.Param) {
	for _, p := range ps {
		if p.Default != nil {
			lookExpr(x, &p.Default)
		}
		p.Slot = &ir.Field{
			Base: ir.Base{At: p.At},
			Name: p.Name,
			Type: p.Type,
			Slot: ir.ParamSlot,
		}
		x.declare(p.Slot)
	}
}

func addLocal(x *scope, f *ir.Field) {
	if m := x.curMeth(); m != nil {
		m.m.Locals = append(m.m.Locals, f)
	}
}

func lookStmts(x *scope, ss []ir.Stmt) {
	for _, s := range ss {
		lookStmt(x, s)
	}
}

func lookBlock(x *scope, b *ir.Block) {
	if b == nil {
		return
	}
	lookStmts(x.newVars(blockScope), b.Stmts)
}

// lookSub binds a statement nested in another, in its own block level.
func lookSub(x *scope, s ir.Stmt) {
	if s == nil {
		return
	}
	if b, ok := s.(*ir.Block); ok {
		lookBlock(x, b)
		return
	}
	lookStmt(x.newVars(blockScope), s)
}

func lookStmt(x *scope, s ir.Stmt) {
	switch s := s.(type) {
	case *ir.Block:
		lookBlock(x, s)
	case *ir.LocalDecl:
		var t ir.Type
		if s.TypeExpr != nil {
			t = x.lookType(s.TypeExpr)
		}
		if s.Init != nil {
			lookExpr(x, &s.Init)
		}
		s.Slot = &ir.Field{Base: ir.Base{At: s.At}, Name: s.Name, Type: t, Slot: ir.LocalSlot}
		x.declare(s.Slot)
		addLocal(x, s.Slot)
	case *ir.ExprStmt:
		lookExpr(x, &s.X)
	case *ir.Return:
		if s.X != nil {
			lookExpr(x, &s.X)
		}
	case *ir.If:
		lookExpr(x, &s.Cond)
		lookSub(x, s.Then)
		lookSub(x, s.Else)
	case *ir.While:
		lookExpr(x, &s.Cond)
		lookSub(x, s.Body)
	case *ir.Foreach:
		lookExpr(x, &s.In)
		y := x.newVars(blockScope)
		var t ir.Type
		if s.TypeExpr != nil {
			t = x.lookType(s.TypeExpr)
		}
		s.Slot = &ir.Field{Base: ir.Base{At: s.At}, Name: s.Name, Type: t, Slot: ir.InductionSlot}
		y.declare(s.Slot)
		addLocal(x, s.Slot)
		lookSub(y, s.Body)
	case *ir.Try:
		lookBlock(x, s.Body)
		for _, c := range s.Catches {
			y := x.newVars(catchScope)
			if c.TypeExpr != nil {
				c.Type = x.lookType(c.TypeExpr)
			}
			if c.Name != "" {
				c.Slot = &ir.Field{Base: ir.Base{At: c.At}, Name: c.Name, Type: c.Type, Slot: ir.CatchSlot}
				y.declare(c.Slot)
				addLocal(x, c.Slot)
			}
			lookBlock(y, c.Body)
		}
		lookBlock(x, s.Finally)
	case *ir.Lock:
		lookExpr(x, &s.X)
		lookSub(x, s.Body)
	case *ir.UsingStmt:
		lookExpr(x, &s.X)
		lookSub(x, s.Body)
	case *ir.Acquire:
		lookExpr(x, &s.X)
		lookSub(x, s.Body)
	case *ir.Switch:
		lookExpr(x, &s.X)
		y := x.newVars(blockScope)
		for _, c := range s.Cases {
			for i := range c.Values {
				lookExpr(y, &c.Values[i])
			}
			lookStmts(y, c.Body)
		}
	case *ir.Goto:
		lookGoto(x, s)
	case *ir.Labeled:
		lookStmt(x, s.Stmt)
	case *ir.Throw:
		if s.X != nil {
			lookExpr(x, &s.X)
		}
	case *ir.Break, *ir.Continue:
	}
}

// collectLabels gathers the labels of a method body,
// not including those of nested anonymous functions.
func collectLabels(x *scope, m *methLevel, ss []ir.Stmt) {
	if m.labels == nil {
		m.labels = make(map[string]*ir.Labeled)
		m.used = make(map[*ir.Labeled]bool)
	}
	var walk func(ir.Stmt)
	walk = func(s ir.Stmt) {
		switch s := s.(type) {
		case *ir.Block:
			if s != nil {
				for _, t := range s.Stmts {
					walk(t)
				}
			}
		case *ir.Labeled:
			if m.labels[s.Label] != nil {
				x.report(diag.Redefined, s.Loc(), s.Label)
			} else {
				m.labels[s.Label] = s
			}
			walk(s.Stmt)
		case *ir.If:
			walk(s.Then)
			walk(s.Else)
		case *ir.While:
			walk(s.Body)
		case *ir.Foreach:
			walk(s.Body)
		case *ir.Try:
			walk(s.Body)
			for _, c := range s.Catches {
				walk(c.Body)
			}
			if s.Finally != nil {
				walk(s.Finally)
			}
		case *ir.Lock:
			walk(s.Body)
		case *ir.UsingStmt:
			walk(s.Body)
		case *ir.Acquire:
			walk(s.Body)
		case *ir.Switch:
			for _, c := range s.Cases {
				for _, t := range c.Body {
					walk(t)
				}
			}
		}
	}
	for _, s := range ss {
		walk(s)
	}
}

// lookGoto binds a goto to a label of the innermost method.
// Labels of enclosing methods are visible but not reachable.
func lookGoto(x *scope, g *ir.Goto) {
	m := x.curMeth()
	if m == nil {
		x.report(diag.LabelNotFound, g.Loc(), g.Label)
		return
	}
	if l := m.labels[g.Label]; l != nil {
		g.Target = l
		m.used[l] = true
		return
	}
	for y := x; y != nil; y = y.up {
		if y.meth != nil && y.meth != m && y.meth.labels[g.Label] != nil {
			x.report(diag.GotoLeavesMethod, g.Loc(), g.Label)
			return
		}
	}
	x.report(diag.LabelNotFound, g.Loc(), g.Label)
}

func checkUnusedLabels(x *scope, m *methLevel) {
	var ls []*ir.Labeled
	for _, l := range m.labels {
		if !m.used[l] {
			ls = append(ls, l)
		}
	}
	slices.SortFunc(ls, func(a, b *ir.Labeled) bool { return a.Loc().Less(b.Loc()) })
	for _, l := range ls {
		x.report(diag.UnusedLabel, l.Loc(), l.Label)
	}
}
