// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

// Walk calls f for n and, if f returns true, for each child of n
// in depth-first order. Types and type expressions are not visited.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Unit:
		if n.Module != nil {
			Walk(n.Module, f)
		}
	case *Module:
		if len(n.Namespaces) > 0 {
			for _, ns := range n.Namespaces {
				Walk(ns, f)
			}
			return
		}
		for _, t := range n.Types {
			Walk(t, f)
		}
	case *Namespace:
		for _, t := range n.Types {
			Walk(t, f)
		}
		for _, ns := range n.Namespaces {
			Walk(ns, f)
		}
	case *TypeDecl:
		walkAttrs(n.Attrs, f)
		for _, m := range n.Members {
			Walk(m, f)
		}
	case *Field:
		walkAttrs(n.Attrs, f)
		walkExpr(n.Init, f)
	case *Method:
		walkAttrs(n.Attrs, f)
		for _, p := range n.Params {
			walkExpr(p.Default, f)
		}
		if n.Body != nil {
			Walk(n.Body, f)
		}
	case *Property:
		walkAttrs(n.Attrs, f)
	case *Event:
		walkAttrs(n.Attrs, f)
	case *Attribute:
		walkExprs(n.Args, f)

	case *Block:
		walkStmts(n.Stmts, f)
	case *LocalDecl:
		walkExpr(n.Init, f)
	case *ExprStmt:
		walkExpr(n.X, f)
	case *Return:
		walkExpr(n.X, f)
	case *If:
		walkExpr(n.Cond, f)
		walkStmt(n.Then, f)
		walkStmt(n.Else, f)
	case *While:
		walkExpr(n.Cond, f)
		walkStmt(n.Body, f)
	case *Foreach:
		walkExpr(n.In, f)
		walkStmt(n.Body, f)
	case *Try:
		Walk(n.Body, f)
		for _, c := range n.Catches {
			Walk(c, f)
		}
		if n.Finally != nil {
			Walk(n.Finally, f)
		}
	case *Catch:
		Walk(n.Body, f)
	case *Lock:
		walkExpr(n.X, f)
		walkStmt(n.Body, f)
	case *UsingStmt:
		walkExpr(n.X, f)
		walkStmt(n.Body, f)
	case *Acquire:
		walkExpr(n.X, f)
		walkStmt(n.Body, f)
	case *Switch:
		walkExpr(n.X, f)
		for _, c := range n.Cases {
			Walk(c, f)
		}
	case *SwitchCase:
		walkExprs(n.Values, f)
		walkStmts(n.Body, f)
	case *Labeled:
		walkStmt(n.Stmt, f)
	case *Throw:
		walkExpr(n.X, f)

	case *QualIdent:
		walkExpr(n.X, f)
	case *NameBinding:
		walkExpr(n.Target, f)
	case *MemberBinding:
		walkExpr(n.Target, f)
	case *Binary:
		walkExpr(n.L, f)
		walkExpr(n.R, f)
	case *Unary:
		walkExpr(n.X, f)
	case *Ternary:
		walkExpr(n.Cond, f)
		walkExpr(n.Then, f)
		walkExpr(n.Else, f)
	case *Assign:
		walkExpr(n.Target, f)
		walkExpr(n.Value, f)
	case *Call:
		walkExpr(n.Fn, f)
		walkExprs(n.Args, f)
	case *Construct:
		walkExprs(n.Args, f)
	case *Index:
		walkExpr(n.X, f)
		walkExprs(n.Args, f)
	case *Cast:
		walkExpr(n.X, f)
	case *Convert:
		walkExpr(n.X, f)
	case *AnonMethod:
		if n.Body != nil {
			Walk(n.Body, f)
		}
	case *Query:
		walkExpr(n.In, f)
		walkExpr(n.Where, f)
		walkExpr(n.Select, f)
	case *TupleLit:
		walkExprs(n.Elems, f)
	case *ArrayLit:
		walkExprs(n.Elems, f)
	}
}

func walkAttrs(as []*Attribute, f func(Node) bool) {
	for _, a := range as {
		Walk(a, f)
	}
}

func walkStmts(ss []Stmt, f func(Node) bool) {
	for _, s := range ss {
		walkStmt(s, f)
	}
}

func walkStmt(s Stmt, f func(Node) bool) {
	if s != nil {
		Walk(s, f)
	}
}

func walkExprs(es []Expr, f func(Node) bool) {
	for _, e := range es {
		walkExpr(e, f)
	}
}

func walkExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Walk(e, f)
	}
}
