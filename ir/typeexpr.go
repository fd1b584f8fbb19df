// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

import "strings"

// A TypeExpr is an unresolved type expression.
type TypeExpr interface {
	Node
	String() string
	isTypeExpr()
}

// A NamedTypeExpr is a possibly qualified, possibly generic type name.
// Args apply to the last element of Path.
type NamedTypeExpr struct {
	Base
	Path []string
	Args []TypeExpr
}

// An ArrayTypeExpr is an array type expression.
type ArrayTypeExpr struct {
	Base
	Elem TypeExpr
	Rank int
}

// A PointerTypeExpr is a pointer type expression.
type PointerTypeExpr struct {
	Base
	Elem TypeExpr
}

// A RefTypeExpr is a by-reference type expression.
type RefTypeExpr struct {
	Base
	Elem TypeExpr
}

// A ModTypeExpr is a modifier applied to a type expression.
type ModTypeExpr struct {
	Base
	Mod  Modifier
	Elem TypeExpr
}

// A TupleTypeExpr is a tuple type expression.
type TupleTypeExpr struct {
	Base
	Names []string
	Elems []TypeExpr
}

// A UnionTypeExpr is a type union expression.
type UnionTypeExpr struct {
	Base
	Elems []TypeExpr
}

// An IntersectionTypeExpr is a type intersection expression.
type IntersectionTypeExpr struct {
	Base
	Elems []TypeExpr
}

func (*NamedTypeExpr) isTypeExpr()        {}
func (*ArrayTypeExpr) isTypeExpr()        {}
func (*PointerTypeExpr) isTypeExpr()      {}
func (*RefTypeExpr) isTypeExpr()          {}
func (*ModTypeExpr) isTypeExpr()          {}
func (*TupleTypeExpr) isTypeExpr()        {}
func (*UnionTypeExpr) isTypeExpr()        {}
func (*IntersectionTypeExpr) isTypeExpr() {}

func (n *NamedTypeExpr) String() string {
	var s strings.Builder
	s.WriteString(strings.Join(n.Path, "."))
	if len(n.Args) > 0 {
		writeTypeExprs(&s, "<", n.Args, ", ", ">")
	}
	return s.String()
}

func (n *ArrayTypeExpr) String() string {
	return n.Elem.String() + "[" + strings.Repeat(",", n.Rank-1) + "]"
}

func (n *PointerTypeExpr) String() string { return n.Elem.String() + "*" }
func (n *RefTypeExpr) String() string     { return "ref " + n.Elem.String() }

func (n *ModTypeExpr) String() string {
	switch n.Elem.(type) {
	case *UnionTypeExpr, *IntersectionTypeExpr:
		return "(" + n.Elem.String() + ")" + n.Mod.Suffix()
	}
	return n.Elem.String() + n.Mod.Suffix()
}

func (n *TupleTypeExpr) String() string {
	var s strings.Builder
	s.WriteRune('(')
	for i, e := range n.Elems {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(e.String())
		if i < len(n.Names) && n.Names[i] != "" {
			s.WriteRune(' ')
			s.WriteString(n.Names[i])
		}
	}
	s.WriteRune(')')
	return s.String()
}

func (n *UnionTypeExpr) String() string {
	var s strings.Builder
	writeTypeExprs(&s, "", n.Elems, " | ", "")
	return s.String()
}

func (n *IntersectionTypeExpr) String() string {
	var s strings.Builder
	writeTypeExprs(&s, "", n.Elems, " & ", "")
	return s.String()
}

func writeTypeExprs(s *strings.Builder, open string, es []TypeExpr, sep, close string) {
	s.WriteString(open)
	for i, e := range es {
		if i > 0 {
			s.WriteString(sep)
		}
		s.WriteString(e.String())
	}
	s.WriteString(close)
}
