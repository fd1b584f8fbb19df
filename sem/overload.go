// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"strconv"
	"strings"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// An arg is a call argument.
// The type is nil for anonymous functions and method groups,
// which are typed by their parameter.
// The expression is nil for arguments synthesized
// from a delegate signature.
type arg struct {
	e ir.Expr
	t ir.Type
}

// A cand is an applicable overload candidate.
type cand struct {
	// decl is the *ir.Method or indexer *ir.Property,
	// instantiated if it is generic.
	decl   ir.Decl
	params []*ir.Param
	// types are the parameter types for each argument.
	types []ir.Type
	convs []conv
	// expanded is whether a params array is applied in expanded form,
	// with elem its element type.
	expanded bool
	elem     ir.Type
	// gen is the generic method definition of an inferred candidate.
	gen   *ir.Method
	targs []ir.Type
}

type overloadFail int

const (
	noFail overloadFail = iota
	noMatch
	ambiguous
	cannotInfer
	wrongCount
)

func paramsOf(d ir.Decl) []*ir.Param {
	switch d := d.(type) {
	case *ir.Method:
		return d.Params
	case *ir.Property:
		return d.Params
	}
	return nil
}

// overload selects the best applicable candidate for the arguments.
func (x *scope) overload(decls []ir.Decl, explicit []ir.Type, args []arg, at loc.Loc) (win *cand, fail overloadFail) {
	defer x.tr("overload(%d cands, [%s])", len(decls), argStrings(args))()
	var cs []*cand
	inferFailed, counted := false, 0
	for _, d := range decls {
		if !x.countOK(d, len(args)) {
			continue
		}
		counted++
		c, ok := x.candidate(d, explicit, args, at)
		if !ok {
			inferFailed = true
		}
		if c != nil {
			cs = append(cs, c)
		}
	}
	switch {
	case len(cs) == 0 && counted == 0 && len(decls) == 1:
		return nil, wrongCount
	case len(cs) == 0 && inferFailed:
		return nil, cannotInfer
	case len(cs) == 0:
		return nil, noMatch
	case len(cs) == 1:
		return cs[0], noFail
	}
	survivors := x.undominated(cs, args)
	if len(survivors) == 1 {
		return survivors[0], noFail
	}
	survivors = prefer(survivors, func(c *cand) bool { return c.gen == nil })
	survivors = prefer(survivors, func(c *cand) bool { return !c.expanded })
	if len(survivors) == 1 {
		return survivors[0], noFail
	}
	x.log("ambiguous among %d", len(survivors))
	return nil, ambiguous
}

// prefer returns the candidates satisfying pred,
// or all of them if none or all do.
func prefer(cs []*cand, pred func(*cand) bool) []*cand {
	var yes []*cand
	for _, c := range cs {
		if pred(c) {
			yes = append(yes, c)
		}
	}
	if len(yes) == 0 {
		return cs
	}
	return yes
}

// countOK returns whether a declaration can accept n arguments
// in either normal or expanded form.
func (x *scope) countOK(d ir.Decl, n int) bool {
	ps := paramsOf(d)
	if m, ok := d.(*ir.Method); ok && m.HasParamsArray() && n >= len(ps)-1 {
		return true
	}
	if n > len(ps) {
		return false
	}
	for _, p := range ps[n:] {
		if p.Default == nil {
			return false
		}
	}
	return true
}

// candidate returns the candidate made from d, or nil if it is not applicable.
// The boolean is false if d is generic and its type arguments
// could not be inferred.
func (x *scope) candidate(d ir.Decl, explicit []ir.Type, args []arg, at loc.Loc) (*cand, bool) {
	var gen *ir.Method
	var targs []ir.Type
	if m, ok := d.(*ir.Method); ok && len(m.TParms) > 0 {
		if len(explicit) > len(m.TParms) {
			return nil, true
		}
		var ts []ir.Type
		for _, a := range args {
			ts = append(ts, a.t)
		}
		expand := m.HasParamsArray() && (len(args) != len(m.Params) || len(ts) > 0 && !isArray(ts[len(ts)-1]))
		var ok bool
		targs, ok = x.infer(m, explicit, paramTypes(m.Params, len(args), expand), ts)
		if !ok {
			return nil, false
		}
		if !x.checkConstraints(m.TParms, targs, m.Name, at, false) {
			return nil, true
		}
		x.mute++
		d = x.instMethod(m, targs, at)
		x.mute--
		gen = m
	}
	ps := paramsOf(d)
	c := x.applicable(d, ps, args, false)
	if c == nil {
		if m, ok := d.(*ir.Method); ok && m.HasParamsArray() {
			c = x.applicable(d, ps, args, true)
		}
	}
	if c != nil {
		c.gen, c.targs = gen, targs
	}
	return c, true
}

func isArray(t ir.Type) bool {
	_, ok := t.(*ir.ArrayType)
	return ok
}

// paramTypes returns the parameter type for each of n arguments.
// In expanded form, the trailing arguments take the element type
// of the params array.
func paramTypes(ps []*ir.Param, n int, expanded bool) []ir.Type {
	ts := make([]ir.Type, n)
	for i := range ts {
		switch {
		case expanded && i >= len(ps)-1:
			if a, ok := ps[len(ps)-1].Type.(*ir.ArrayType); ok {
				ts[i] = a.Elem
			}
		case i < len(ps):
			ts[i] = ps[i].Type
		}
	}
	return ts
}

func (x *scope) applicable(d ir.Decl, ps []*ir.Param, args []arg, expanded bool) *cand {
	if expanded {
		if len(args) < len(ps)-1 {
			return nil
		}
	} else {
		if len(args) > len(ps) {
			return nil
		}
		for _, p := range ps[len(args):] {
			if p.Default == nil {
				return nil
			}
		}
	}
	c := &cand{decl: d, params: ps, expanded: expanded, types: paramTypes(ps, len(args), expanded)}
	if expanded {
		if a, ok := ps[len(ps)-1].Type.(*ir.ArrayType); ok {
			c.elem = a.Elem
		}
	}
	for i, a := range args {
		cv := x.argConv(a, c.types[i])
		if !cv.ok() {
			return nil
		}
		c.convs = append(c.convs, cv)
	}
	return c
}

// argConv returns the conversion of an argument to a parameter type.
func (x *scope) argConv(a arg, p ir.Type) conv {
	switch e := a.e.(type) {
	case *ir.AnonMethod:
		if inv := invokeOf(p); inv != nil && len(inv.Params) == len(e.Params) {
			return conv{class: losslessConv, kind: ir.MethodGroupConv}
		}
		return none
	case *ir.NameBinding:
		if a.t == nil {
			if inv := invokeOf(p); inv != nil && x.groupConv(e, inv) != nil {
				return conv{class: losslessConv, kind: ir.MethodGroupConv}
			}
			return none
		}
	case *ir.Literal:
		if x.constFits(e, p) {
			return conv{class: losslessConv, kind: ir.NumericConv}
		}
	}
	if a.t == nil {
		return none
	}
	return x.implicitConv(a.t, p)
}

// undominated returns the candidates that no other candidate dominates.
func (x *scope) undominated(cs []*cand, args []arg) []*cand {
	var keep []*cand
	for _, c := range cs {
		dominated := false
		for _, d := range cs {
			if d != c && x.dominates(d, c, args) {
				dominated = true
				break
			}
		}
		if !dominated {
			keep = append(keep, c)
		}
	}
	return keep
}

// dominates returns whether c is at least as good as d
// for every argument and better for at least one.
func (x *scope) dominates(c, d *cand, args []arg) bool {
	better := false
	for i, a := range args {
		switch x.better(a, c.types[i], d.types[i], c.convs[i], d.convs[i]) {
		case -1:
			return false
		case 1:
			better = true
		}
	}
	return better
}

// better compares two parameter types for an argument:
// 1 if p1 is better, -1 if p2 is better, and 0 if neither is.
// A better conversion class wins;
// among equal classes, the more specific parameter type wins.
// For the null literal, a pointer beats a by-reference parameter.
func (x *scope) better(a arg, p1, p2 ir.Type, c1, c2 conv) int {
	if p1 == p2 {
		return 0
	}
	if a.t == x.nullType {
		_, ptr1 := p1.(*ir.PointerType)
		_, ptr2 := p2.(*ir.PointerType)
		_, ref1 := p1.(*ir.RefType)
		_, ref2 := p2.(*ir.RefType)
		switch {
		case ptr1 && ref2:
			return 1
		case ref1 && ptr2:
			return -1
		}
	}
	if c1.class != c2.class {
		if c1.class > c2.class {
			return 1
		}
		return -1
	}
	s12 := x.implicitConv(p1, p2).ok()
	s21 := x.implicitConv(p2, p1).ok()
	switch {
	case s12 && !s21:
		return 1
	case s21 && !s12:
		return -1
	}
	return 0
}

// groupConv returns the method of a method group
// matching a delegate's Invoke signature.
func (x *scope) groupConv(n *ir.NameBinding, inv *ir.Method) *ir.Method {
	var args []arg
	for _, p := range inv.Params {
		args = append(args, arg{t: p.Type})
	}
	x.mute++
	win, _ := x.overload(n.Cands, nil, args, n.Loc())
	x.mute--
	if win == nil {
		return nil
	}
	m, _ := win.decl.(*ir.Method)
	return m
}

// reportOverload reports a failed overload resolution.
func (x *scope) reportOverload(fail overloadFail, name string, decls []ir.Decl, args []arg, at loc.Loc) {
	switch fail {
	case ambiguous:
		x.report(diag.AmbiguousCall, at, name)
	case cannotInfer:
		x.report(diag.CannotInfer, at, name)
	case wrongCount:
		x.report(diag.ArgumentCount, at, name, strconv.Itoa(len(paramsOf(decls[0]))), strconv.Itoa(len(args)))
	default:
		x.report(diag.NoOverload, at, name, argStrings(args))
	}
}

func argStrings(args []arg) string {
	var ss []string
	for _, a := range args {
		switch {
		case a.t != nil:
			ss = append(ss, a.t.String())
		case a.e != nil:
			if _, ok := a.e.(*ir.AnonMethod); ok {
				ss = append(ss, "anonymous method")
			} else {
				ss = append(ss, "method group")
			}
		default:
			ss = append(ss, "<error>")
		}
	}
	return strings.Join(ss, ", ")
}

// packArgs converts the arguments of a call to the parameter types
// of the winning candidate, packing the tail of an expanded call
// into an array and appending default values of omitted parameters.
func packArgs(x *scope, c *cand, args []ir.Expr, at loc.Loc) []ir.Expr {
	ps := c.params
	fixed := len(args)
	if c.expanded {
		fixed = len(ps) - 1
	}
	var out []ir.Expr
	for i := 0; i < fixed; i++ {
		coerce(x, &args[i], c.types[i])
		out = append(out, args[i])
	}
	if c.expanded {
		tail := append([]ir.Expr{}, args[fixed:]...)
		for i := range tail {
			coerce(x, &tail[i], c.elem)
		}
		arr := &ir.ArrayLit{Elems: tail, Elem: c.elem}
		arr.At = at
		arr.T = ps[len(ps)-1].Type
		return append(out, arr)
	}
	for _, p := range ps[len(args):] {
		out = append(out, defaultArg(x, p, at))
	}
	return out
}

// defaultArg returns a copy of a parameter's default value.
func defaultArg(x *scope, p *ir.Param, at loc.Loc) ir.Expr {
	resolveExpr(x, &p.Default)
	var e ir.Expr
	if l, ok := p.Default.(*ir.Literal); ok {
		c := *l
		c.Base = ir.Base{At: at}
		e = &c
	} else {
		e = p.Default
	}
	coerce(x, &e, p.Type)
	return e
}
