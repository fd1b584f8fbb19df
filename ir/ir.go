// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package ir is the node graph shared by the semantic passes:
// declarations, statements, expressions, type expressions, and types.
//
// The passes mutate the graph in place.
// When a node must be replaced by a different variant,
// the replacement is written through the parent's child slot
// (for example, a *Expr).
package ir

import (
	"github.com/google/uuid"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// An ID is a stable node identity, unique within one Arena.
// The zero ID means no identity has been assigned yet.
type ID int64

// An Arena assigns IDs to nodes.
type Arena struct {
	next ID
}

// ID returns the ID of the node, assigning a new one if needed.
func (a *Arena) ID(n Node) ID {
	b := n.base()
	if b.ID == 0 {
		a.next++
		b.ID = a.next
	}
	return b.ID
}

// Len returns the number of IDs assigned by the Arena.
func (a *Arena) Len() int { return int(a.next) }

// A Node is a node of the graph.
type Node interface {
	base() *Base
	Loc() loc.Loc
}

// Base is embedded in every node.
type Base struct {
	ID ID
	At loc.Loc
}

func (b *Base) base() *Base { return b }

// Loc returns the source location of the node.
func (b *Base) Loc() loc.Loc { return b.At }

// A Scope is a lexical scope recorded on a NameBinding.
// It is implemented by the semantic passes.
type Scope interface {
	OuterScope() Scope
}

// Access is a declaration's accessibility.
type Access int

const (
	Public Access = iota
	Internal
	Protected
	ProtectedInternal
	PrivateProtected
	Private
)

var accessNames = [...]string{
	Public:            "public",
	Internal:          "internal",
	Protected:         "protected",
	ProtectedInternal: "protected internal",
	PrivateProtected:  "private protected",
	Private:           "private",
}

func (a Access) String() string { return accessNames[a] }

// ParseAccess returns the Access named by s.
func ParseAccess(s string) (Access, bool) {
	for a, n := range accessNames {
		if n == s {
			return Access(a), true
		}
	}
	return 0, false
}

// A Module is an assembly: either one being compiled or a reference.
type Module struct {
	Base
	Name string
	// MVID is the module version ID.
	// Two modules with the same MVID are the same module.
	MVID uuid.UUID
	// Assembly is whether the module is a referenced assembly
	// rather than a module being compiled.
	Assembly bool
	Refs     []string
	Types    []*TypeDecl
	// Namespaces of the module's source, if it is being compiled.
	Namespaces []*Namespace
}

// A Unit is a compilation unit.
type Unit struct {
	Base
	Module *Module
	Files  []string
}

// A Namespace is a namespace declaration in source.
type Namespace struct {
	Base
	// Name is the dot-separated full name; "" is the global namespace.
	Name       string
	Usings     []*Using
	Aliases    []*Alias
	Types      []*TypeDecl
	Namespaces []*Namespace
}

// A Using is a using-namespace directive.
type Using struct {
	Base
	Namespace string
}

// An Alias is a using-alias directive: using Name = Target.
type Alias struct {
	Base
	Name   string
	Target TypeExpr
	// Type is the resolved target type if Target names a type.
	Type Type
	// Namespace is the target namespace if Target names a namespace.
	Namespace string
}

// An Attribute is a custom attribute application.
type Attribute struct {
	Base
	TypeExpr TypeExpr
	Args     []Expr
	Type     *TypeDecl
	Ctor     *Method
}
