// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package irtext reads the input node graph from YAML.
//
// A YAML document describes one module:
// either a module being compiled (key "module")
// or a referenced assembly (key "assembly").
// Declarations carry source locations from the YAML nodes.
package irtext

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
	"gopkg.in/yaml.v3"
)

// mvidSpace is the namespace of MVIDs derived from assembly names.
var mvidSpace = uuid.MustParse("b7c6e0a4-3f0e-5d7a-9a1c-6c2f4e0b8d11")

// ReadFile reads a module from a YAML file.
func ReadFile(files *loc.Files, path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return Read(files, path, data)
}

// Read reads a module from YAML data.
// The path names the data in locations.
func Read(files *loc.Files, path string, data []byte) (*ir.Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d := &decoder{file: files.AddLines(path, strings.Count(string(data), "\n")+1)}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty document", path)
	}
	mod := d.module(doc.Content[0])
	if d.err != nil {
		return nil, d.err
	}
	return mod, nil
}

type decoder struct {
	file *loc.File
	err  error
}

func (d *decoder) at(n *yaml.Node) ir.Base {
	return ir.Base{At: d.file.At(n.Line, n.Column)}
}

func (d *decoder) fail(n *yaml.Node, f string, vs ...interface{}) {
	if d.err == nil {
		l := d.file.At(n.Line, n.Column)
		d.err = fmt.Errorf("%s: %s", l, fmt.Sprintf(f, vs...))
	}
}

// fields returns the key/value pairs of a mapping node.
func (d *decoder) fields(n *yaml.Node) [][2]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		d.fail(n, "expected a mapping")
		return nil
	}
	var kvs [][2]*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		kvs = append(kvs, [2]*yaml.Node{n.Content[i], n.Content[i+1]})
	}
	return kvs
}

func (d *decoder) get(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func (d *decoder) items(n *yaml.Node) []*yaml.Node {
	switch {
	case n == nil || isNull(n):
		return nil
	case n.Kind == yaml.SequenceNode:
		return n.Content
	default:
		return []*yaml.Node{n}
	}
}

func (d *decoder) str(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.fail(n, "expected a scalar")
		return ""
	}
	return n.Value
}

func (d *decoder) strs(n *yaml.Node) []string {
	var ss []string
	for _, it := range d.items(n) {
		ss = append(ss, d.str(it))
	}
	return ss
}

func (d *decoder) flag(n *yaml.Node, key string) bool {
	v := d.get(n, key)
	if v == nil {
		return false
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		d.fail(v, "%s: expected a boolean", key)
	}
	return b
}

func (d *decoder) access(n *yaml.Node) ir.Access {
	v := d.get(n, "access")
	if v == nil {
		return ir.Public
	}
	a, ok := ir.ParseAccess(v.Value)
	if !ok {
		d.fail(v, "bad access %q", v.Value)
	}
	return a
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func (d *decoder) module(n *yaml.Node) *ir.Module {
	mod := &ir.Module{Base: d.at(n)}
	switch {
	case d.get(n, "module") != nil:
		mod.Name = d.str(d.get(n, "module"))
	case d.get(n, "assembly") != nil:
		mod.Name = d.str(d.get(n, "assembly"))
		mod.Assembly = true
	default:
		d.fail(n, "missing module or assembly name")
	}
	if v := d.get(n, "mvid"); v != nil {
		id, err := uuid.Parse(v.Value)
		if err != nil {
			d.fail(v, "bad mvid: %s", err)
		}
		mod.MVID = id
	} else {
		mod.MVID = uuid.NewSHA1(mvidSpace, []byte(mod.Name))
	}
	mod.Refs = d.strs(d.get(n, "references"))

	if ns := d.get(n, "namespaces"); ns != nil {
		for _, it := range d.items(ns) {
			mod.Namespaces = append(mod.Namespaces, d.namespace(mod, "", it))
		}
	}
	if d.get(n, "types") != nil || d.get(n, "namespace") != nil {
		mod.Namespaces = append(mod.Namespaces, d.namespace(mod, "", n))
	}
	var collect func([]*ir.Namespace)
	collect = func(nss []*ir.Namespace) {
		for _, ns := range nss {
			mod.Types = append(mod.Types, ns.Types...)
			collect(ns.Namespaces)
		}
	}
	collect(mod.Namespaces)
	return mod
}

func (d *decoder) namespace(mod *ir.Module, outer string, n *yaml.Node) *ir.Namespace {
	name := d.str(d.get(n, "namespace"))
	if name == "" {
		name = d.str(d.get(n, "name"))
	}
	if outer != "" && name != "" {
		name = outer + "." + name
	} else if name == "" {
		name = outer
	}
	ns := &ir.Namespace{Base: d.at(n), Name: name}
	for _, u := range d.items(d.get(n, "using")) {
		ns.Usings = append(ns.Usings, &ir.Using{Base: d.at(u), Namespace: d.str(u)})
	}
	if as := d.get(n, "alias"); as != nil {
		for _, kv := range d.fields(as) {
			ns.Aliases = append(ns.Aliases, &ir.Alias{
				Base:   d.at(kv[0]),
				Name:   kv[0].Value,
				Target: d.typeExpr(kv[1]),
			})
		}
	}
	for _, it := range d.items(d.get(n, "types")) {
		if t := d.typeDecl(mod, name, nil, it); t != nil {
			ns.Types = append(ns.Types, t)
		}
	}
	for _, it := range d.items(d.get(n, "namespaces")) {
		ns.Namespaces = append(ns.Namespaces, d.namespace(mod, name, it))
	}
	return ns
}

var typeKinds = []struct {
	key  string
	kind ir.TypeKind
}{
	{"class", ir.Class},
	{"struct", ir.Struct},
	{"interface", ir.Interface},
	{"enum", ir.Enum},
	{"delegate", ir.Delegate},
}

func typeKindOf(n *yaml.Node) (string, ir.TypeKind, bool) {
	if n.Kind != yaml.MappingNode {
		return "", 0, false
	}
	for _, k := range typeKinds {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == k.key {
				return k.key, k.kind, true
			}
		}
	}
	return "", 0, false
}

func (d *decoder) typeDecl(mod *ir.Module, ns string, outer *ir.TypeDecl, n *yaml.Node) *ir.TypeDecl {
	key, kind, ok := typeKindOf(n)
	if !ok {
		d.fail(n, "expected a type declaration")
		return nil
	}
	t := &ir.TypeDecl{
		Base:     d.at(n),
		Kind:     kind,
		Name:     d.str(d.get(n, key)),
		Module:   mod,
		Access:   d.access(n),
		Abstract: d.flag(n, "abstract"),
		Static:   d.flag(n, "static"),
		Outer:    outer,
		Attrs:    d.attrs(d.get(n, "attrs")),
	}
	if outer == nil {
		t.Namespace = ns
	}
	if p := d.get(n, "prim"); p != nil {
		prim, ok := ir.PrimByName(p.Value)
		if !ok {
			d.fail(p, "bad prim %q", p.Value)
		}
		t.Prim = prim
	}
	t.TParms = d.tparams(t, d.get(n, "tparams"))
	if b := d.get(n, "base"); b != nil {
		t.BaseExpr = d.typeExpr(b)
	}
	for _, it := range d.items(d.get(n, "implements")) {
		t.IfaceExprs = append(t.IfaceExprs, d.typeExpr(it))
	}
	switch kind {
	case ir.Enum:
		if u := d.get(n, "underlying"); u != nil {
			t.EnumExpr = d.typeExpr(u)
		}
		d.enumValues(t, d.get(n, "values"))
	case ir.Delegate:
		inv := &ir.Method{
			Base:   d.at(n),
			Name:   "Invoke",
			Owner:  t,
			Params: d.params(d.get(n, "params")),
		}
		if r := d.get(n, "returns"); r != nil {
			inv.RetExpr = d.typeExpr(r)
		}
		t.Members = append(t.Members, inv)
	}
	for _, it := range d.items(d.get(n, "members")) {
		if m := d.member(mod, t, it); m != nil {
			t.Members = append(t.Members, m)
		}
	}
	return t
}

func (d *decoder) enumValues(t *ir.TypeDecl, n *yaml.Node) {
	var prev *ir.Field
	for _, it := range d.items(n) {
		f := &ir.Field{Base: d.at(it), Const: true, Static: true, Owner: t, Type: t}
		switch it.Kind {
		case yaml.ScalarNode:
			f.Name = it.Value
		case yaml.MappingNode:
			kvs := d.fields(it)
			if len(kvs) != 1 {
				d.fail(it, "expected name: value")
				continue
			}
			f.Name = kvs[0][0].Value
			f.Init = d.expr(kvs[0][1])
		}
		if f.Init == nil {
			if prev == nil {
				f.Init = &ir.Literal{ExprBase: ir.ExprBase{Base: f.Base}, Value: int32(0)}
			} else {
				f.Init = &ir.Binary{
					ExprBase: ir.ExprBase{Base: f.Base},
					Op:       "+",
					L:        &ir.Ident{ExprBase: ir.ExprBase{Base: f.Base}, Name: prev.Name},
					R:        &ir.Literal{ExprBase: ir.ExprBase{Base: f.Base}, Value: int32(1)},
				}
			}
		}
		t.Members = append(t.Members, f)
		prev = f
	}
}

func (d *decoder) tparams(owner ir.Decl, n *yaml.Node) []*ir.TypeParam {
	var ps []*ir.TypeParam
	for i, it := range d.items(n) {
		p := &ir.TypeParam{Base: d.at(it), Index: i, Owner: owner}
		if it.Kind == yaml.ScalarNode {
			p.Name = it.Value
		} else {
			p.Name = d.str(d.get(it, "name"))
			p.DefaultCtor = d.flag(it, "new")
			p.RefType = d.flag(it, "class")
			p.ValueType = d.flag(it, "struct")
			p.Unmanaged = d.flag(it, "unmanaged")
			for _, b := range d.items(d.get(it, "bounds")) {
				p.BoundExprs = append(p.BoundExprs, d.typeExpr(b))
			}
		}
		ps = append(ps, p)
	}
	return ps
}

func (d *decoder) attrs(n *yaml.Node) []*ir.Attribute {
	var as []*ir.Attribute
	for _, it := range d.items(n) {
		a := &ir.Attribute{Base: d.at(it)}
		if it.Kind == yaml.ScalarNode {
			a.TypeExpr = d.typeExpr(it)
		} else {
			a.TypeExpr = d.typeExpr(d.get(it, "type"))
			a.Args = d.exprs(d.get(it, "args"))
		}
		as = append(as, a)
	}
	return as
}

func (d *decoder) member(mod *ir.Module, owner *ir.TypeDecl, n *yaml.Node) ir.Decl {
	if _, _, ok := typeKindOf(n); ok {
		return d.typeDecl(mod, "", owner, n)
	}
	switch {
	case d.get(n, "field") != nil:
		f := &ir.Field{
			Base:     d.at(n),
			Name:     d.str(d.get(n, "field")),
			Access:   d.access(n),
			Static:   d.flag(n, "static"),
			Const:    d.flag(n, "const"),
			ReadOnly: d.flag(n, "readonly"),
			Owner:    owner,
			Attrs:    d.attrs(d.get(n, "attrs")),
		}
		f.TypeExpr = d.typeExpr(d.get(n, "type"))
		if v := d.get(n, "init"); v != nil {
			f.Init = d.expr(v)
		}
		return f
	case d.get(n, "method") != nil || d.get(n, "ctor") != nil:
		m := &ir.Method{
			Base:     d.at(n),
			Access:   d.access(n),
			Static:   d.flag(n, "static"),
			Abstract: d.flag(n, "abstract"),
			Owner:    owner,
			Attrs:    d.attrs(d.get(n, "attrs")),
		}
		if d.get(n, "ctor") != nil {
			m.Name = ".ctor"
			m.Ctor = true
		} else {
			m.Name = d.str(d.get(n, "method"))
		}
		m.TParms = d.tparams(m, d.get(n, "tparams"))
		m.Params = d.params(d.get(n, "params"))
		if r := d.get(n, "returns"); r != nil {
			m.RetExpr = d.typeExpr(r)
		}
		if b := d.get(n, "body"); b != nil {
			m.Body = d.block(b)
		}
		return m
	case d.get(n, "property") != nil:
		p := &ir.Property{
			Base:   d.at(n),
			Name:   d.str(d.get(n, "property")),
			Access: d.access(n),
			Static: d.flag(n, "static"),
			Params: d.params(d.get(n, "params")),
			Get:    d.get(n, "get") == nil || d.flag(n, "get"),
			Set:    d.flag(n, "set"),
			Owner:  owner,
			Attrs:  d.attrs(d.get(n, "attrs")),
		}
		p.TypeExpr = d.typeExpr(d.get(n, "type"))
		return p
	case d.get(n, "event") != nil:
		e := &ir.Event{
			Base:   d.at(n),
			Name:   d.str(d.get(n, "event")),
			Access: d.access(n),
			Static: d.flag(n, "static"),
			Owner:  owner,
			Attrs:  d.attrs(d.get(n, "attrs")),
		}
		e.TypeExpr = d.typeExpr(d.get(n, "type"))
		return e
	}
	d.fail(n, "expected a member declaration")
	return nil
}

func (d *decoder) params(n *yaml.Node) []*ir.Param {
	var ps []*ir.Param
	for _, it := range d.items(n) {
		p := &ir.Param{
			Base:     d.at(it),
			Name:     d.str(d.get(it, "name")),
			IsParams: d.flag(it, "params"),
		}
		p.TypeExpr = d.typeExpr(d.get(it, "type"))
		if v := d.get(it, "default"); v != nil {
			p.Default = d.expr(v)
		}
		ps = append(ps, p)
	}
	return ps
}

func (d *decoder) typeExpr(n *yaml.Node) ir.TypeExpr {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.ScalarNode {
		d.fail(n, "expected a type")
		return nil
	}
	t, err := ParseType(n.Value, d.file.At(n.Line, n.Column))
	if err != nil {
		d.fail(n, "%s", err)
		return nil
	}
	return t
}

func (d *decoder) typeExprs(n *yaml.Node) []ir.TypeExpr {
	var ts []ir.TypeExpr
	for _, it := range d.items(n) {
		ts = append(ts, d.typeExpr(it))
	}
	return ts
}

func (d *decoder) block(n *yaml.Node) *ir.Block {
	b := &ir.Block{Base: d.at(n)}
	for _, it := range d.items(n) {
		if s := d.stmt(it); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

// body decodes a statement or a statement list.
func (d *decoder) body(n *yaml.Node) ir.Stmt {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.SequenceNode {
		return d.block(n)
	}
	return d.stmt(n)
}

func (d *decoder) optBlock(n *yaml.Node) *ir.Block {
	if n == nil {
		return nil
	}
	return d.block(n)
}

func (d *decoder) stmt(n *yaml.Node) ir.Stmt {
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "break":
			return &ir.Break{Base: d.at(n)}
		case "continue":
			return &ir.Continue{Base: d.at(n)}
		}
		d.fail(n, "bad statement %q", n.Value)
		return nil
	}
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		d.fail(n, "expected a statement")
		return nil
	}
	key, val := n.Content[0].Value, n.Content[1]
	b := d.at(n)
	switch key {
	case "local":
		s := &ir.LocalDecl{Base: b, Name: d.str(val)}
		s.TypeExpr = d.typeExpr(d.get(n, "type"))
		if v := d.get(n, "init"); v != nil {
			s.Init = d.expr(v)
		}
		return s
	case "expr":
		return &ir.ExprStmt{Base: b, X: d.expr(val)}
	case "return":
		s := &ir.Return{Base: b}
		if !isNull(val) {
			s.X = d.expr(val)
		}
		return s
	case "if":
		return &ir.If{Base: b, Cond: d.expr(val), Then: d.body(d.get(n, "then")), Else: d.body(d.get(n, "else"))}
	case "while":
		return &ir.While{Base: b, Cond: d.expr(val), Body: d.body(d.get(n, "do"))}
	case "foreach":
		s := &ir.Foreach{Base: b, Name: d.str(val), In: d.expr(d.get(n, "in")), Body: d.body(d.get(n, "do"))}
		s.TypeExpr = d.typeExpr(d.get(n, "type"))
		return s
	case "block":
		return d.block(val)
	case "try":
		s := &ir.Try{Base: b, Body: d.block(val), Finally: d.optBlock(d.get(n, "finally"))}
		for _, c := range d.items(d.get(n, "catch")) {
			s.Catches = append(s.Catches, &ir.Catch{
				Base:     d.at(c),
				TypeExpr: d.typeExpr(d.get(c, "type")),
				Name:     d.str(d.get(c, "name")),
				Body:     d.block(d.get(c, "do")),
			})
		}
		return s
	case "lock":
		return &ir.Lock{Base: b, X: d.expr(val), Body: d.body(d.get(n, "do"))}
	case "using":
		return &ir.UsingStmt{Base: b, X: d.expr(val), Body: d.body(d.get(n, "do"))}
	case "acquire":
		return &ir.Acquire{Base: b, X: d.expr(val), Body: d.body(d.get(n, "do"))}
	case "switch":
		s := &ir.Switch{Base: b, X: d.expr(val)}
		for _, c := range d.items(d.get(n, "cases")) {
			sc := &ir.SwitchCase{Base: d.at(c)}
			if v := d.get(c, "case"); v != nil {
				sc.Values = d.exprs(v)
			}
			if blk := d.get(c, "do"); blk != nil {
				sc.Body = d.block(blk).Stmts
			}
			s.Cases = append(s.Cases, sc)
		}
		return s
	case "goto":
		return &ir.Goto{Base: b, Label: d.str(val)}
	case "label":
		return &ir.Labeled{Base: b, Label: d.str(val), Stmt: d.body(d.get(n, "do"))}
	case "throw":
		s := &ir.Throw{Base: b}
		if !isNull(val) {
			s.X = d.expr(val)
		}
		return s
	}
	d.fail(n, "bad statement %q", key)
	return nil
}

func (d *decoder) exprs(n *yaml.Node) []ir.Expr {
	var es []ir.Expr
	for _, it := range d.items(n) {
		es = append(es, d.expr(it))
	}
	return es
}

var (
	intSuffixRx   = regexp.MustCompile(`^(0[xX][0-9a-fA-F]+|[0-9]+)([uU][lL]|[lL][uU]|[lL]|[uU])$`)
	floatSuffixRx = regexp.MustCompile(`^([0-9]+(\.[0-9]*)?([eE][-+]?[0-9]+)?)([fFdD])$`)
	identPathRx   = regexp.MustCompile(`^[A-Za-z_@][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func (d *decoder) expr(n *yaml.Node) ir.Expr {
	if n == nil {
		return nil
	}
	b := ir.ExprBase{Base: d.at(n)}
	if n.Kind == yaml.ScalarNode {
		return d.scalarExpr(n, b)
	}
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		d.fail(n, "expected an expression")
		return nil
	}
	key, val := n.Content[0].Value, n.Content[1]
	switch key {
	case "str":
		return &ir.Literal{ExprBase: b, Value: val.Value}
	case "char":
		r := []rune(val.Value)
		if len(r) != 1 || r[0] > 0xFFFF {
			d.fail(val, "bad char literal %q", val.Value)
			return nil
		}
		return &ir.Literal{ExprBase: b, Value: uint16(r[0])}
	case "call":
		return &ir.Call{ExprBase: b, Fn: d.expr(val), Args: d.exprs(d.get(n, "args")), TArgs: d.typeExprs(d.get(n, "targs"))}
	case "new":
		return &ir.Construct{ExprBase: b, TypeExpr: d.typeExpr(val), Args: d.exprs(d.get(n, "args"))}
	case "member":
		return &ir.QualIdent{ExprBase: b, X: d.expr(d.get(n, "of")), Name: d.str(val), TArgs: d.typeExprs(d.get(n, "targs"))}
	case "bin":
		return &ir.Binary{ExprBase: b, Op: d.str(val), L: d.expr(d.get(n, "l")), R: d.expr(d.get(n, "r"))}
	case "un":
		return &ir.Unary{ExprBase: b, Op: d.str(val), X: d.expr(d.get(n, "x"))}
	case "cond":
		return &ir.Ternary{ExprBase: b, Cond: d.expr(val), Then: d.expr(d.get(n, "then")), Else: d.expr(d.get(n, "else"))}
	case "assign":
		return &ir.Assign{ExprBase: b, Target: d.expr(val), Value: d.expr(d.get(n, "value")), Op: d.str(d.get(n, "op"))}
	case "index":
		return &ir.Index{ExprBase: b, X: d.expr(val), Args: d.exprs(d.get(n, "args"))}
	case "cast":
		return &ir.Cast{ExprBase: b, TypeExpr: d.typeExpr(val), X: d.expr(d.get(n, "x"))}
	case "typeof":
		return &ir.TypeOf{ExprBase: b, TypeExpr: d.typeExpr(val)}
	case "fn":
		a := &ir.AnonMethod{ExprBase: b, Params: d.params(val), Body: d.block(d.get(n, "body"))}
		if r := d.get(n, "returns"); r != nil {
			a.RetExpr = d.typeExpr(r)
		}
		return a
	case "from":
		q := &ir.Query{ExprBase: b, Var: d.str(val), In: d.expr(d.get(n, "in")), Select: d.expr(d.get(n, "select"))}
		q.TypeExpr = d.typeExpr(d.get(n, "type"))
		if w := d.get(n, "where"); w != nil {
			q.Where = d.expr(w)
		}
		return q
	case "tuple":
		return &ir.TupleLit{ExprBase: b, Elems: d.exprs(val), Names: d.strs(d.get(n, "names"))}
	case "array":
		return &ir.ArrayLit{ExprBase: b, ElemExpr: d.typeExpr(val), Elems: d.exprs(d.get(n, "elems"))}
	}
	d.fail(n, "bad expression %q", key)
	return nil
}

func (d *decoder) scalarExpr(n *yaml.Node, b ir.ExprBase) ir.Expr {
	switch {
	case n.Tag == "!!null":
		return &ir.Literal{ExprBase: b}
	case n.Tag == "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			d.fail(n, "%s", err)
		}
		return &ir.Literal{ExprBase: b, Value: v}
	case n.Tag == "!!int":
		return &ir.Literal{ExprBase: b, Value: d.intLit(n, n.Value, "")}
	case n.Tag == "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			d.fail(n, "%s", err)
		}
		return &ir.Literal{ExprBase: b, Value: v}
	case n.Style&yaml.DoubleQuotedStyle != 0:
		return &ir.Literal{ExprBase: b, Value: n.Value}
	case n.Style&yaml.SingleQuotedStyle != 0:
		r := []rune(n.Value)
		if len(r) != 1 || r[0] > 0xFFFF {
			d.fail(n, "bad char literal %q", n.Value)
			return nil
		}
		return &ir.Literal{ExprBase: b, Value: uint16(r[0])}
	}
	s := n.Value
	if m := intSuffixRx.FindStringSubmatch(s); m != nil {
		return &ir.Literal{ExprBase: b, Value: d.intLit(n, m[1], strings.ToUpper(m[2]))}
	}
	if m := floatSuffixRx.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			d.fail(n, "%s", err)
		}
		if m[4] == "f" || m[4] == "F" {
			return &ir.Literal{ExprBase: b, Value: float32(f)}
		}
		return &ir.Literal{ExprBase: b, Value: f}
	}
	switch s {
	case "this":
		return &ir.This{ExprBase: b}
	case "base":
		return &ir.BaseRef{ExprBase: b}
	}
	if !identPathRx.MatchString(s) {
		d.fail(n, "bad expression %q", s)
		return nil
	}
	parts := strings.Split(s, ".")
	var x ir.Expr = &ir.Ident{ExprBase: b, Name: strings.TrimPrefix(parts[0], "@")}
	for _, p := range parts[1:] {
		x = &ir.QualIdent{ExprBase: b, X: x, Name: p}
	}
	return x
}

// intLit returns the typed value of an integer literal
// following the C# rules: the first of int, uint, long, ulong
// that can represent the value, restricted by the suffix.
func (d *decoder) intLit(n *yaml.Node, s, suffix string) interface{} {
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		i, err2 := strconv.ParseInt(s, 0, 64)
		if err2 != nil {
			d.fail(n, "bad integer %q: %s", s, err)
			return int32(0)
		}
		// Negative values come from YAML like -5.
		if suffix == "" && i >= -1<<31 {
			return int32(i)
		}
		return i
	}
	switch suffix {
	case "":
		switch {
		case u <= 1<<31-1:
			return int32(u)
		case u <= 1<<32-1:
			return uint32(u)
		case u <= 1<<63-1:
			return int64(u)
		}
		return u
	case "U":
		if u <= 1<<32-1 {
			return uint32(u)
		}
		return u
	case "L":
		if u <= 1<<63-1 {
			return int64(u)
		}
		return u
	}
	return u
}
