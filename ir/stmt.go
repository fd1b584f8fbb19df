// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

// A Stmt is a statement.
type Stmt interface {
	Node
	isStmt()
}

// A Block is a braced statement list.
type Block struct {
	Base
	Stmts []Stmt
}

// A LocalDecl declares a local variable.
// A nil TypeExpr means the type is inferred from Init.
type LocalDecl struct {
	Base
	Name     string
	TypeExpr TypeExpr
	Init     Expr
	Slot     *Field
}

// An ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Base
	X Expr
}

// A Return returns from a method; X may be nil.
type Return struct {
	Base
	X Expr
}

// An If is a conditional statement; Else may be nil.
type If struct {
	Base
	Cond Expr
	Then Stmt
	Else Stmt
}

// A While is a loop.
type While struct {
	Base
	Cond Expr
	Body Stmt
}

// A Foreach iterates over an enumerable or array.
// A nil TypeExpr means the type is the element type.
type Foreach struct {
	Base
	Name     string
	TypeExpr TypeExpr
	In       Expr
	Body     Stmt
	Slot     *Field
}

// A Try is a try/catch/finally statement.
type Try struct {
	Base
	Body    *Block
	Catches []*Catch
	Finally *Block
}

// A Catch is a catch clause.
// TypeExpr and Name may be empty for a catch-all clause.
type Catch struct {
	Base
	TypeExpr TypeExpr
	Name     string
	Body     *Block
	Type     Type
	Slot     *Field
}

// A Lock is a lock statement.
type Lock struct {
	Base
	X    Expr
	Body Stmt
}

// A UsingStmt disposes of a resource after its body.
type UsingStmt struct {
	Base
	X    Expr
	Body Stmt
}

// An Acquire holds exclusive access to an object during its body.
type Acquire struct {
	Base
	X    Expr
	Body Stmt
}

// A Switch is a switch statement.
type Switch struct {
	Base
	X     Expr
	Cases []*SwitchCase
}

// A SwitchCase is a switch section.
// A nil Values is the default section.
type SwitchCase struct {
	Base
	Values []Expr
	Body   []Stmt
}

// A Goto transfers control to a label.
type Goto struct {
	Base
	Label string
	// Target is the labeled statement, set by the binder.
	Target *Labeled
}

// A Labeled is a labeled statement.
type Labeled struct {
	Base
	Label string
	Stmt  Stmt
}

// A Throw raises an exception; X may be nil to rethrow.
type Throw struct {
	Base
	X Expr
}

// A Break exits the innermost loop or switch.
type Break struct{ Base }

// A Continue begins the next iteration of the innermost loop.
type Continue struct{ Base }

func (*Block) isStmt()     {}
func (*LocalDecl) isStmt() {}
func (*ExprStmt) isStmt()  {}
func (*Return) isStmt()    {}
func (*If) isStmt()        {}
func (*While) isStmt()     {}
func (*Foreach) isStmt()   {}
func (*Try) isStmt()       {}
func (*Lock) isStmt()      {}
func (*UsingStmt) isStmt() {}
func (*Acquire) isStmt()   {}
func (*Switch) isStmt()    {}
func (*Goto) isStmt()      {}
func (*Labeled) isStmt()   {}
func (*Throw) isStmt()     {}
func (*Break) isStmt()     {}
func (*Continue) isStmt()  {}
