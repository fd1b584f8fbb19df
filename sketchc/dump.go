// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"strings"

	"github.com/hesam/SketchSharp-sub002/ir"
)

// A declDump is the printed form of a checked declaration.
type declDump struct {
	Kind    string
	Name    string
	Type    string
	Value   any
	Members []declDump
}

// dumpModule returns the printed form of the module's source types.
// Closure classes are included; instances are not.
func dumpModule(m *ir.Module) []declDump {
	var ds []declDump
	for _, t := range m.Types {
		if t.Outer == nil {
			ds = append(ds, dumpType(t))
		}
	}
	return ds
}

func dumpType(t *ir.TypeDecl) declDump {
	d := declDump{Kind: t.DeclKind(), Name: qualName(t)}
	if t.BaseType != nil {
		d.Type = t.BaseType.String()
	}
	for _, m := range t.Members {
		d.Members = append(d.Members, dumpMember(m))
	}
	return d
}

func dumpMember(m ir.Decl) declDump {
	switch m := m.(type) {
	case *ir.TypeDecl:
		return dumpType(m)
	case *ir.Field:
		return declDump{Kind: m.DeclKind(), Name: m.Name, Type: typeString(m.Type), Value: m.Value}
	case *ir.Method:
		return declDump{Kind: m.DeclKind(), Name: m.Name, Type: signature(m.Params, m.Ret)}
	case *ir.Property:
		return declDump{Kind: m.DeclKind(), Name: m.Name, Type: typeString(m.Type)}
	default:
		return declDump{Kind: m.DeclKind(), Name: m.DeclName()}
	}
}

func qualName(t *ir.TypeDecl) string {
	if t.Outer != nil || t.Namespace == "" {
		return t.String()
	}
	return t.Namespace + "." + t.String()
}

func signature(ps []*ir.Param, ret ir.Type) string {
	var s strings.Builder
	s.WriteByte('(')
	for i, p := range ps {
		if i > 0 {
			s.WriteString(", ")
		}
		if p.IsParams {
			s.WriteString("params ")
		}
		s.WriteString(typeString(p.Type))
	}
	s.WriteByte(')')
	if ret != nil {
		s.WriteByte(' ')
		s.WriteString(ret.String())
	}
	return s.String()
}

func typeString(t ir.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
