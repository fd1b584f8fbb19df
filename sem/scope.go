// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strings"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
)

type scopeKind int

const (
	blockScope scopeKind = iota
	methodScope
	queryScope
	catchScope
	attrScope
)

// A scope is one level of the scope chain.
// Entering a construct pushes a level with x = x.new();
// the caller's *scope is unchanged, so leaving is implicit.
type scope struct {
	*state
	up *scope

	// One of each of the following fields is non-nil.
	ns   *nsLevel
	typ  *ir.TypeDecl
	meth *methLevel
	vars *varLevel
}

type nsLevel struct {
	name string
	// decl is the namespace declaration whose directives apply, if any.
	decl *ir.Namespace
}

type methLevel struct {
	m *ir.Method
	// anon is the anonymous function hoisted to m, if any.
	anon    *ir.AnonMethod
	closure *ir.TypeDecl
	labels  map[string]*ir.Labeled
	used    map[*ir.Labeled]bool
}

// A varLevel holds the members declared in a block, method, query,
// catch clause, or attribute argument list, in declaration order.
type varLevel struct {
	kind  scopeKind
	names []string
	decls map[string]ir.Decl
}

func newScope(x *state) *scope {
	return &scope{state: x, ns: &nsLevel{name: ""}}
}

func (x *scope) new() *scope {
	return &scope{state: x.state, up: x}
}

// OuterScope implements ir.Scope.
func (x *scope) OuterScope() ir.Scope {
	if x.up == nil {
		return nil
	}
	return x.up
}

func (x *scope) newVars(kind scopeKind) *scope {
	x = x.new()
	x.vars = &varLevel{kind: kind, decls: make(map[string]ir.Decl)}
	return x
}

// declare adds a member to the innermost variable level.
// An existing member of the same name is never overwritten.
func (x *scope) declare(d ir.Decl) bool {
	v := x.vars
	name := d.DeclName()
	if _, ok := v.decls[name]; ok {
		x.report(diag.Redefined, d.Loc(), name)
		return false
	}
	v.names = append(v.names, name)
	v.decls[name] = d
	return true
}

// nsScope returns the scope chain for the namespace declaration ns:
// one level for each enclosing namespace name.
func (x *state) nsScope(ns *ir.Namespace) *scope {
	if ns == nil {
		return newScope(x)
	}
	var up *scope
	var outerName string
	if o := x.nsUp[ns]; o != nil {
		up = x.nsScope(o)
		outerName = o.Name
	} else {
		up = newScope(x)
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(ns.Name, outerName), ".")
	if rest == "" {
		// The namespace has the same name as its outer level;
		// its directives apply at that level.
		y := up.new()
		y.ns = &nsLevel{name: ns.Name, decl: ns}
		return y
	}
	parts := strings.Split(rest, ".")
	name := outerName
	for i, p := range parts {
		if name == "" {
			name = p
		} else {
			name += "." + p
		}
		y := up.new()
		y.ns = &nsLevel{name: name}
		if i == len(parts)-1 {
			y.ns.decl = ns
		}
		up = y
	}
	return up
}

// declScope returns the scope in which the signature
// of a type's members is resolved: the type's own level.
func (x *state) declScope(t *ir.TypeDecl) *scope {
	t = t.Origin()
	var up *scope
	if t.Outer != nil {
		up = x.declScope(t.Outer)
	} else {
		up = x.nsScope(x.nsOf[t])
	}
	y := up.new()
	y.typ = t
	return y
}

func (x *scope) curType() *ir.TypeDecl {
	for ; x != nil; x = x.up {
		if x.typ != nil {
			return x.typ
		}
	}
	return nil
}

// curMeth returns the innermost method level, which may be
// that of an anonymous function.
func (x *scope) curMeth() *methLevel {
	for ; x != nil; x = x.up {
		if x.meth != nil {
			return x.meth
		}
	}
	return nil
}

// realMeth returns the innermost method level
// that is not an anonymous function.
func (x *scope) realMeth() *methLevel {
	for ; x != nil; x = x.up {
		if x.meth != nil && x.meth.anon == nil {
			return x.meth
		}
	}
	return nil
}

func (x *scope) inAttr() bool {
	for ; x != nil; x = x.up {
		if x.vars != nil && x.vars.kind == attrScope {
			return true
		}
	}
	return false
}

// isStatic returns whether the current context has no this.
func (x *scope) isStatic() bool {
	if x.inAttr() {
		return true
	}
	m := x.realMeth()
	return m == nil || m.m.Static
}

// A found is the result of a name lookup.
type found struct {
	decls []ir.Decl
	inacc []ir.Decl
	// ns is the namespace found, if isNS.
	ns    string
	isNS  bool
	alias *ir.Alias
	// level is the scope level at which the name was found.
	level *scope
	depth int
	// ambiguous types that remain after de-duplication.
	ambiguous []*ir.TypeDecl
}

func (f *found) empty() bool {
	return len(f.decls) == 0 && !f.isNS && f.alias == nil
}

// lookup finds name in the scope chain.
// Lookup stops at the innermost level declaring an accessible match;
// inaccessible matches are remembered while the search continues outward.
// Types must have the given arity; other declarations must have arity 0,
// except methods, whose type arguments may be inferred.
func (x *scope) lookup(name string, arity int) *found {
	defer x.tr("lookup(%s, %d)", name, arity)()
	var inacc []ir.Decl
	for s, depth := x, 0; s != nil; s, depth = s.up, depth+1 {
		f := s.lookupLevel(name, arity)
		if f == nil {
			continue
		}
		f.level, f.depth = s, depth
		if !f.empty() {
			f.inacc = append(f.inacc, inacc...)
			return f
		}
		inacc = append(inacc, f.inacc...)
	}
	return &found{inacc: inacc}
}

func (x *scope) lookupLevel(name string, arity int) *found {
	switch {
	case x.vars != nil:
		if d, ok := x.vars.decls[name]; ok && arity == 0 {
			return &found{decls: []ir.Decl{d}}
		}
	case x.meth != nil:
		for _, p := range x.meth.m.TParms {
			if p.Name == name && arity == 0 {
				return &found{decls: []ir.Decl{p}}
			}
		}
	case x.typ != nil:
		for _, p := range x.typ.TParms {
			if p.Name == name && arity == 0 {
				return &found{decls: []ir.Decl{p}}
			}
		}
		ds := x.members(x.typ, name, arity)
		if len(ds) == 0 {
			return nil
		}
		return x.splitAccess(ds)
	case x.ns != nil:
		return x.lookupNS(name, arity)
	}
	return nil
}

func (x *scope) splitAccess(ds []ir.Decl) *found {
	var f found
	for _, d := range ds {
		if x.accessible(d) {
			f.decls = append(f.decls, d)
		} else {
			f.inacc = append(f.inacc, d)
		}
	}
	return &f
}

func arityOK(d ir.Decl, arity int) bool {
	switch d := d.(type) {
	case *ir.TypeDecl:
		return len(d.Origin().TParms) == arity
	case *ir.Method:
		return arity == 0 || len(d.TParms) == arity
	}
	return arity == 0
}

// lookupNS searches a namespace level in order:
// the unit's own types, nested namespaces, using-aliases,
// types of used namespaces, and then referenced modules.
func (x *scope) lookupNS(name string, arity int) *found {
	lev := x.ns
	tab := x.nss[lev.name]
	var decl *ir.Namespace
	if lev.decl != nil {
		decl = lev.decl
	}
	var inacc []ir.Decl
	try := func(ts []*ir.TypeDecl) *found {
		var ds []ir.Decl
		for _, t := range ts {
			if arityOK(t, arity) {
				ds = append(ds, t)
			}
		}
		if len(ds) == 0 {
			return nil
		}
		f := x.splitAccess(ds)
		if len(f.decls) == 0 {
			inacc = append(inacc, f.inacc...)
			return nil
		}
		x.disambiguate(f)
		return f
	}
	if tab != nil {
		if f := try(tab.local[name]); f != nil {
			return f
		}
	}
	if arity == 0 {
		full := name
		if lev.name != "" {
			full = lev.name + "." + name
		}
		if _, ok := x.nss[full]; ok {
			return &found{ns: full, isNS: true}
		}
	}
	if decl != nil && arity == 0 {
		for _, a := range decl.Aliases {
			if a.Name == name {
				return &found{alias: a}
			}
		}
	}
	var usings []*nsTable
	if decl != nil {
		for _, u := range decl.Usings {
			if t := x.nss[u.Namespace]; t != nil {
				usings = append(usings, t)
			}
		}
	}
	var ts []*ir.TypeDecl
	for _, u := range usings {
		ts = append(ts, u.local[name]...)
	}
	if f := try(ts); f != nil {
		return f
	}
	if tab != nil {
		if f := try(tab.refs[name]); f != nil {
			return f
		}
	}
	ts = nil
	for _, u := range usings {
		ts = append(ts, u.refs[name]...)
	}
	if f := try(ts); f != nil {
		return f
	}
	if len(inacc) > 0 {
		return &found{inacc: inacc}
	}
	return nil
}

// disambiguate removes duplicate types reached by more than one path.
// Two types with the same full name are the same type
// if they come from the same module version or have the same shape.
// Any remaining types are recorded as ambiguous.
func (x *scope) disambiguate(f *found) {
	var keep []ir.Decl
	for _, d := range f.decls {
		t, ok := d.(*ir.TypeDecl)
		if !ok {
			keep = append(keep, d)
			continue
		}
		dup := false
		for _, k := range keep {
			if u, ok := k.(*ir.TypeDecl); ok && x.sameType(t, u) {
				dup = true
				break
			}
		}
		if !dup {
			keep = append(keep, d)
		}
	}
	f.decls = keep
	if len(keep) > 1 {
		for _, d := range keep {
			if t, ok := d.(*ir.TypeDecl); ok {
				f.ambiguous = append(f.ambiguous, t)
			}
		}
	}
}

func (x *state) sameType(t, u *ir.TypeDecl) bool {
	if t == u {
		return true
	}
	if t.FullName() != u.FullName() {
		return false
	}
	tm, um := x.declMod[t], x.declMod[u]
	if tm != nil && um != nil && tm.MVID == um.MVID {
		return true
	}
	return structKey(t) == structKey(u)
}

// reportAmbiguous reports an ambiguous type name once per identifier.
func (x *scope) reportAmbiguous(name string, f *found, n ir.Node) {
	if len(f.ambiguous) < 2 || x.mute > 0 {
		return
	}
	k := onceKey{id: ir.ID(-x.names.Id(name)), kind: diag.AmbiguousType}
	if x.once[k] {
		return
	}
	x.once[k] = true
	x.report(diag.AmbiguousType, n.Loc(), name,
		x.declMod[f.ambiguous[0]].Name+":"+f.ambiguous[0].FullName(),
		x.declMod[f.ambiguous[1]].Name+":"+f.ambiguous[1].FullName())
}

// lookupIn finds a type or nested namespace in the namespace named ns,
// across the unit and all referenced modules.
func (x *scope) lookupIn(ns, name string, arity int) *found {
	tab := x.nss[ns]
	if tab == nil {
		return &found{}
	}
	var ds []ir.Decl
	for _, t := range append(append([]*ir.TypeDecl{}, tab.local[name]...), tab.refs[name]...) {
		if arityOK(t, arity) {
			ds = append(ds, t)
		}
	}
	if len(ds) > 0 {
		f := x.splitAccess(ds)
		x.disambiguate(f)
		return f
	}
	full := name
	if ns != "" {
		full = ns + "." + name
	}
	if _, ok := x.nss[full]; ok && arity == 0 {
		return &found{ns: full, isNS: true}
	}
	return &found{}
}

// members returns the members of t named name,
// searching the base type chain until a type declares one.
// Method overloads accumulate across the chain,
// excluding base methods hidden by a method with the same signature.
func (x *state) members(t *ir.TypeDecl, name string, arity int) []ir.Decl {
	var ds []ir.Decl
	seen := make(map[*ir.TypeDecl]bool)
	var walk func(*ir.TypeDecl) bool
	walk = func(t *ir.TypeDecl) bool {
		if t == nil || seen[t] {
			return false
		}
		seen[t] = true
		x.bindDecl(t)
		onlyMethods := true
		var here []ir.Decl
		for _, d := range t.Lookup(name) {
			if !arityOK(d, arity) {
				continue
			}
			m, ok := d.(*ir.Method)
			if !ok {
				onlyMethods = false
			} else if hidden(ds, m) {
				continue
			}
			here = append(here, d)
		}
		ds = append(ds, here...)
		if len(here) > 0 && !onlyMethods {
			return true
		}
		if t.Kind == ir.Interface {
			for _, i := range t.Ifaces {
				walk(i)
			}
			walk(x.core.object)
			return len(ds) > 0
		}
		return walk(x.baseOf(t))
	}
	walk(t)
	return ds
}

func hidden(ds []ir.Decl, m *ir.Method) bool {
	for _, d := range ds {
		if n, ok := d.(*ir.Method); ok && sameSig(n, m) {
			return true
		}
	}
	return false
}

func sameSig(a, b *ir.Method) bool {
	if len(a.Params) != len(b.Params) || len(a.TParms) != len(b.TParms) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Type != b.Params[i].Type {
			return false
		}
	}
	return true
}

// baseOf returns the resolved base type of t.
func (x *state) baseOf(t *ir.TypeDecl) *ir.TypeDecl {
	if t == nil || t == x.core.object || t.Prim == ir.Null || t.Prim == ir.Error {
		return nil
	}
	x.bindDecl(t)
	return t.BaseType
}
