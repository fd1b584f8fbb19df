// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"sync"

	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Composer is an extension that further processes declarations
// carrying a System.Compiler.ComposerAttribute naming it.
// Compose is called after both passes complete without changing
// the bound tree's structure; it reports problems to the sink.
type Composer interface {
	Compose(d ir.Decl, sink diag.Sink)
}

// ComposerFunc adapts a function to a Composer.
type ComposerFunc func(ir.Decl, diag.Sink)

func (f ComposerFunc) Compose(d ir.Decl, sink diag.Sink) { f(d, sink) }

// A Registry maps assembly and type names to composers.
// It is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	cs map[string]Composer
}

// NewRegistry returns a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{cs: make(map[string]Composer)}
}

func composerKey(assembly, typ string) string { return assembly + ":" + typ }

// Register registers a composer under an assembly and type name,
// replacing any previous registration.
func (r *Registry) Register(assembly, typ string, c Composer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cs[composerKey(assembly, typ)] = c
}

// Lookup returns the composer registered under an assembly and type name.
func (r *Registry) Lookup(assembly, typ string) (Composer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cs[composerKey(assembly, typ)]
	return c, ok
}

// Names returns the sorted keys of the registered composers,
// each of the form assembly:type.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ks := maps.Keys(r.cs)
	slices.Sort(ks)
	return ks
}

// compose invokes the composer named by each ComposerAttribute
// applied to a source declaration.
func compose(x *scope, unit *ir.Unit) {
	defer x.tr("compose")()
	var visit func(d ir.Decl)
	visit = func(d ir.Decl) {
		for _, a := range ir.AttrsOf(d) {
			composeAttr(x, d, a)
		}
		if t, ok := d.(*ir.TypeDecl); ok {
			for _, m := range t.Members {
				visit(m)
			}
		}
	}
	for _, t := range sourceTypes(unit.Module) {
		if t.Outer == nil {
			visit(t)
		}
	}
}

func composeAttr(x *scope, d ir.Decl, a *ir.Attribute) {
	if a.Type == nil || !x.derives(a.Type, x.core.composer) || len(a.Args) < 2 {
		return
	}
	asm, ok0 := stringArg(a.Args[0])
	typ, ok1 := stringArg(a.Args[1])
	if !ok0 || !ok1 {
		return
	}
	c, ok := x.cfg.Composers.Lookup(asm, typ)
	if !ok {
		x.report(diag.ComposerNotFound, a.Loc(), composerKey(asm, typ))
		return
	}
	x.log("compose %s with %s", d.DeclName(), composerKey(asm, typ))
	c.Compose(d, &x.diags)
}

func stringArg(e ir.Expr) (string, bool) {
	l, ok := e.(*ir.Literal)
	if !ok {
		return "", false
	}
	s, ok := l.Value.(string)
	return s, ok
}
