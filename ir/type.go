// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

import (
	"strconv"
	"strings"
)

// A Type is a resolved type:
// *TypeDecl, *ArrayType, *PointerType, *RefType, *TupleType,
// *UnionType, *IntersectionType, *TypeParam, or *ModType.
//
// Structural types are interned by the semantic passes,
// so two Types are identical if and only if they are equal pointers.
type Type interface {
	Node
	String() string
	isType()
}

// An ArrayType is a single or multi-dimensional array.
type ArrayType struct {
	Base
	Elem Type
	Rank int
}

// A PointerType is an unmanaged pointer.
type PointerType struct {
	Base
	Elem Type
}

// A RefType is a by-reference type.
type RefType struct {
	Base
	Elem Type
}

// A TupleType is a tuple with optionally named fields.
type TupleType struct {
	Base
	Fields []TupleField
}

// A TupleField is a field of a tuple type.
type TupleField struct {
	Name string
	Type Type
}

// A UnionType is a flattened, de-duplicated type union.
type UnionType struct {
	Base
	Elems []Type
}

// An IntersectionType is a flattened, de-duplicated type intersection.
type IntersectionType struct {
	Base
	Elems []Type
}

// A Modifier qualifies a type.
type Modifier int

const (
	NonNull Modifier = iota
	Nullable
	Boxed
	Invariant
)

var modifierNames = [...]string{
	NonNull:   "non-null",
	Nullable:  "nullable",
	Boxed:     "boxed",
	Invariant: "invariant",
}

func (m Modifier) String() string { return modifierNames[m] }

var modifierSuffix = [...]string{
	NonNull:   "!",
	Nullable:  "?",
	Boxed:     "~",
	Invariant: "^",
}

// Suffix returns the type-syntax suffix of the modifier.
func (m Modifier) Suffix() string { return modifierSuffix[m] }

// A ModType is a type wrapped in a modifier.
// A ModType never directly wraps a ModType with the same modifier.
type ModType struct {
	Base
	Mod  Modifier
	Elem Type
}

func (*ArrayType) isType()        {}
func (*PointerType) isType()      {}
func (*RefType) isType()          {}
func (*TupleType) isType()        {}
func (*UnionType) isType()        {}
func (*IntersectionType) isType() {}
func (*ModType) isType()          {}

// Unwrap returns t with all modifiers removed.
func Unwrap(t Type) Type {
	for {
		m, ok := t.(*ModType)
		if !ok {
			return t
		}
		t = m.Elem
	}
}

// FullName returns the namespace-qualified name of the type,
// including enclosing types and generic arity.
func (n *TypeDecl) FullName() string {
	var s strings.Builder
	if n.Outer != nil {
		s.WriteString(n.Outer.FullName())
		s.WriteRune('.')
	} else if n.Namespace != "" {
		s.WriteString(n.Namespace)
		s.WriteRune('.')
	}
	s.WriteString(n.Name)
	if k := len(n.Origin().TParms); k > 0 {
		s.WriteRune('`')
		s.WriteString(strconv.Itoa(k))
	}
	return s.String()
}

func (n *TypeDecl) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Prim != NotPrim {
		return n.Prim.String()
	}
	var s strings.Builder
	if n.Outer != nil {
		s.WriteString(n.Outer.String())
		s.WriteRune('.')
	}
	s.WriteString(n.Name)
	switch {
	case len(n.Args) > 0:
		writeTypes(&s, "<", n.Args, ", ", ">")
	case len(n.TParms) > 0:
		s.WriteRune('<')
		for i, p := range n.TParms {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(p.Name)
		}
		s.WriteRune('>')
	}
	return s.String()
}

func (n *ArrayType) String() string {
	return n.Elem.String() + "[" + strings.Repeat(",", n.Rank-1) + "]"
}

func (n *PointerType) String() string { return n.Elem.String() + "*" }
func (n *RefType) String() string     { return "ref " + n.Elem.String() }

func (n *TupleType) String() string {
	var s strings.Builder
	s.WriteRune('(')
	for i, f := range n.Fields {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(f.Type.String())
		if f.Name != "" {
			s.WriteRune(' ')
			s.WriteString(f.Name)
		}
	}
	s.WriteRune(')')
	return s.String()
}

func (n *UnionType) String() string {
	var s strings.Builder
	writeTypes(&s, "", n.Elems, " | ", "")
	return s.String()
}

func (n *IntersectionType) String() string {
	var s strings.Builder
	writeTypes(&s, "", n.Elems, " & ", "")
	return s.String()
}

func (n *ModType) String() string {
	switch n.Elem.(type) {
	case *UnionType, *IntersectionType:
		return "(" + n.Elem.String() + ")" + n.Mod.Suffix()
	}
	return n.Elem.String() + n.Mod.Suffix()
}

func (n *TypeParam) String() string { return n.Name }

func writeTypes(s *strings.Builder, open string, ts []Type, sep, close string) {
	s.WriteString(open)
	for i, t := range ts {
		if i > 0 {
			s.WriteString(sep)
		}
		if t == nil {
			s.WriteString("<nil>")
			continue
		}
		s.WriteString(t.String())
	}
	s.WriteString(close)
}
