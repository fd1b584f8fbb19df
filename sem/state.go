// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hesam/SketchSharp-sub002/corlib"
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
	"modernc.org/strutil"
)

// Config are configuration parameters for the semantic passes.
type Config struct {
	// Core is the core library module.
	// The default is a fresh copy of the embedded corlib.
	Core *ir.Module
	// References are the modules referenced by the unit,
	// in addition to the core library.
	References []*ir.Module
	// Trace is whether to enable debug tracing.
	Trace bool
	// TraceOut receives the trace (default=os.Stdout).
	TraceOut io.Writer
	// Unchecked is whether constant arithmetic silently wraps
	// instead of reporting overflow.
	Unchecked bool
	// Composers are the composer extensions
	// that attributed declarations may name.
	Composers *Registry
	// ConvCacheSize is the number of memoized conversions (default=4096).
	ConvCacheSize int
	// Sink, if non-nil, also receives every diagnostic as it is reported.
	Sink diag.Sink
}

// Info summarizes a checked unit.
type Info struct {
	Instances  int
	Closures   int
	Folded     int
	Suppressed int
	Nodes      int
}

type instKey struct {
	def  ir.ID
	args string
}

type convKey struct {
	from, to ir.ID
	user     bool
}

type bindState int

const (
	bindNone bindState = iota
	bindBusy
	bindDone
)

type onceKey struct {
	id   ir.ID
	kind diag.Kind
}

// A nsTable holds the types of one namespace name.
// Local types come from the unit being compiled,
// refs from referenced modules.
type nsTable struct {
	name  string
	local map[string][]*ir.TypeDecl
	refs  map[string][]*ir.TypeDecl
}

type core struct {
	object, valueType, enum, array, str, typ *ir.TypeDecl
	delegate, multicast                      *ir.TypeDecl
	attribute, obsolete, composer            *ir.TypeDecl
	exception, disposable                    *ir.TypeDecl
	enumerable, enumerableT, nonEmptyT       *ir.TypeDecl
	nullable                                 *ir.TypeDecl
}

type state struct {
	cfg   Config
	unit  *ir.Unit
	mod   *ir.Module
	mods  []*ir.Module
	diags diag.List
	arena ir.Arena
	names *strutil.Dict
	once  map[onceKey]bool

	nss     map[string]*nsTable
	nsOf    map[*ir.TypeDecl]*ir.Namespace
	nsUp    map[*ir.Namespace]*ir.Namespace
	declMod map[*ir.TypeDecl]*ir.Module

	core     core
	prims    [ir.Error + 1]*ir.TypeDecl
	nullType *ir.TypeDecl
	errType  *ir.TypeDecl

	structural map[string]ir.Type

	insts         map[instKey]ir.Node
	instantiating map[ir.Node]bool
	work          []workItem
	drained       int
	draining      bool
	visiting      int

	// mute suppresses diagnostics while positive.
	mute int

	bound    map[*ir.TypeDecl]bindState
	pending  map[*ir.TypeDecl][]*ir.TypeDecl
	resolved map[ir.TypeExpr]ir.Type
	convs    *lru.Cache[convKey, conv]
	nclosure int
	circular int

	// foldFailed counts the folds reported as overflow or division by zero.
	foldFailed int

	info   Info
	indent string
}

func newState(cfg Config, unit *ir.Unit) *state {
	x := &state{
		cfg:           cfg,
		unit:          unit,
		mod:           unit.Module,
		names:         strutil.NewDict(),
		once:          make(map[onceKey]bool),
		nss:           make(map[string]*nsTable),
		nsOf:          make(map[*ir.TypeDecl]*ir.Namespace),
		nsUp:          make(map[*ir.Namespace]*ir.Namespace),
		declMod:       make(map[*ir.TypeDecl]*ir.Module),
		structural:    make(map[string]ir.Type),
		insts:         make(map[instKey]ir.Node),
		instantiating: make(map[ir.Node]bool),
		bound:         make(map[*ir.TypeDecl]bindState),
		pending:       make(map[*ir.TypeDecl][]*ir.TypeDecl),
		resolved:      make(map[ir.TypeExpr]ir.Type),
	}
	setConfigDefaults(x)
	x.diags.Forward = x.cfg.Sink
	convs, err := lru.New[convKey, conv](x.cfg.ConvCacheSize)
	if err != nil {
		panic("impossible: " + err.Error())
	}
	x.convs = convs
	x.mods = append([]*ir.Module{x.cfg.Core}, x.cfg.References...)
	for _, m := range x.mods {
		x.indexModule(m, false)
	}
	x.indexModule(x.mod, true)
	x.initCore()
	return x
}

func setConfigDefaults(x *state) {
	if x.cfg.Core == nil {
		x.cfg.Core = corlib.Load(&loc.Files{})
	}
	if x.cfg.TraceOut == nil {
		x.cfg.TraceOut = os.Stdout
	}
	switch {
	case x.cfg.ConvCacheSize == 0:
		x.cfg.ConvCacheSize = 4096
	case x.cfg.ConvCacheSize < 0:
		panic(fmt.Sprintf("bad ConvCacheSize %d", x.cfg.ConvCacheSize))
	}
	if x.cfg.Composers == nil {
		x.cfg.Composers = NewRegistry()
	}
}

func (x *state) indexModule(m *ir.Module, local bool) {
	x.table("")
	if len(m.Namespaces) == 0 {
		for _, t := range m.Types {
			x.indexType(m, nil, t, local)
		}
		return
	}
	var walk func(up, ns *ir.Namespace)
	walk = func(up, ns *ir.Namespace) {
		x.nsUp[ns] = up
		x.table(ns.Name)
		for _, t := range ns.Types {
			x.indexType(m, ns, t, local)
		}
		for _, kid := range ns.Namespaces {
			walk(ns, kid)
		}
	}
	for _, ns := range m.Namespaces {
		walk(nil, ns)
	}
}

func (x *state) indexType(m *ir.Module, ns *ir.Namespace, t *ir.TypeDecl, local bool) {
	var walk func(*ir.TypeDecl)
	walk = func(t *ir.TypeDecl) {
		x.declMod[t] = m
		if ns != nil {
			x.nsOf[t] = ns
		}
		for _, d := range t.Members {
			if n, ok := d.(*ir.TypeDecl); ok {
				walk(n)
			}
		}
	}
	walk(t)
	tab := x.table(t.Namespace)
	if local {
		tab.local[t.Name] = append(tab.local[t.Name], t)
	} else {
		tab.refs[t.Name] = append(tab.refs[t.Name], t)
	}
}

// table returns the table for a namespace name,
// creating it and the tables of its enclosing namespaces.
func (x *state) table(name string) *nsTable {
	if t, ok := x.nss[name]; ok {
		return t
	}
	t := &nsTable{
		name:  name,
		local: make(map[string][]*ir.TypeDecl),
		refs:  make(map[string][]*ir.TypeDecl),
	}
	x.nss[name] = t
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		x.table(name[:i])
	} else if name != "" {
		x.table("")
	}
	return t
}

func (x *state) initCore() {
	find := func(ns, name string, arity int) *ir.TypeDecl {
		for _, t := range x.nss[ns].refs[name] {
			if x.declMod[t] == x.cfg.Core && len(t.TParms) == arity {
				return t
			}
		}
		panic(fmt.Sprintf("impossible: core library has no %s.%s", ns, name))
	}
	for _, t := range x.cfg.Core.Types {
		if t.Prim != ir.NotPrim {
			x.prims[t.Prim] = t
		}
	}
	x.core = core{
		object:      x.prims[ir.Object],
		str:         x.prims[ir.String],
		valueType:   find("System", "ValueType", 0),
		enum:        find("System", "Enum", 0),
		array:       find("System", "Array", 0),
		typ:         find("System", "Type", 0),
		delegate:    find("System", "Delegate", 0),
		multicast:   find("System", "MulticastDelegate", 0),
		attribute:   find("System", "Attribute", 0),
		obsolete:    find("System", "ObsoleteAttribute", 0),
		exception:   find("System", "Exception", 0),
		disposable:  find("System", "IDisposable", 0),
		nullable:    find("System", "Nullable", 1),
		composer:    find("System.Compiler", "ComposerAttribute", 0),
		enumerable:  find("System.Collections", "IEnumerable", 0),
		enumerableT: find("System.Collections.Generic", "IEnumerable", 1),
		nonEmptyT:   find("System.Collections.Generic", "NonEmptyIEnumerable", 1),
	}
	x.nullType = &ir.TypeDecl{Kind: ir.Class, Prim: ir.Null, Name: "<null>"}
	x.errType = &ir.TypeDecl{Kind: ir.Class, Prim: ir.Error, Name: "<error>"}
	x.prims[ir.Null] = x.nullType
	x.prims[ir.Error] = x.errType
}

func (x *state) report(kind diag.Kind, at loc.Loc, args ...string) {
	if x.mute > 0 {
		x.log("muted %s: %s", at, kind.Format(args))
		return
	}
	x.log("report %s: %s", at, kind.Format(args))
	x.diags.Report(kind, at, args...)
}

// reportOnce reports the diagnostic only the first time
// it is reported for the given node.
func (x *state) reportOnce(n ir.Node, kind diag.Kind, at loc.Loc, args ...string) {
	if x.mute > 0 {
		return
	}
	k := onceKey{id: x.arena.ID(n), kind: kind}
	if x.once[k] {
		return
	}
	x.once[k] = true
	x.report(kind, at, args...)
}

// The argument to the returned function, if non-empty,
// must be a pointer to a value to log on return.
func (x *state) tr(f string, vs ...interface{}) func(...interface{}) {
	if !x.cfg.Trace {
		return func(...interface{}) {}
	}
	x.log(f, vs...)
	olddent := x.indent
	x.indent += "---"
	return func(rs ...interface{}) {
		defer func() { x.indent = olddent }()
		if len(rs) == 0 {
			return
		}
		v := reflect.ValueOf(rs[0])
		if v.Kind() != reflect.Ptr || v.IsNil() || isNil(v.Elem()) {
			return
		}
		x.log("%v", v.Elem().Interface())
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

func (x *state) log(f string, vs ...interface{}) {
	if !x.cfg.Trace {
		return
	}
	fmt.Fprintf(x.cfg.TraceOut, "%s%s\n", x.indent, fmt.Sprintf(f, vs...))
}
