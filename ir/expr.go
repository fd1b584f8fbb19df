// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

// An Expr is an expression.
// After resolution, every expression has a non-nil Type.
type Expr interface {
	Node
	Type() Type
	SetType(Type)
}

// ExprBase is embedded in every expression.
type ExprBase struct {
	Base
	T Type
}

// Type returns the static type of the expression.
func (e *ExprBase) Type() Type { return e.T }

// SetType sets the static type of the expression.
func (e *ExprBase) SetType(t Type) { e.T = t }

// A Literal is a constant value.
// Value is nil for the null literal, or one of
// bool, uint16 (char and ushort), int8, uint8, int16, int32, uint32,
// int64, uint64, float32, float64, or string.
type Literal struct {
	ExprBase
	Value interface{}
}

// An Ident is an unresolved identifier.
type Ident struct {
	ExprBase
	Name  string
	TArgs []TypeExpr
}

// A QualIdent is an unresolved qualified identifier X.Name.
type QualIdent struct {
	ExprBase
	X     Expr
	Name  string
	TArgs []TypeExpr
}

// A NameBinding is a name reference with its candidate declarations.
// The binder produces NameBindings; the resolver replaces them.
type NameBinding struct {
	ExprBase
	Name string
	// Cands are the accessible declarations found
	// at the nearest scope level declaring Name.
	Cands []Decl
	// Inaccessible are declarations that were found
	// but are not accessible from the reference.
	Inaccessible []Decl
	Scope        Scope
	Depth        int
	// Target is the object or type the candidates are members of;
	// nil for a simple name.
	Target Expr
	TArgs  []TypeExpr
}

// A MemberBinding is a resolved reference to a declaration.
type MemberBinding struct {
	ExprBase
	// Target is the object expression;
	// nil for static members and unqualified slots.
	Target Expr
	Decl   Decl
}

// A TypeLit is a type in expression position.
type TypeLit struct {
	ExprBase
	TypeExpr TypeExpr
	Of       Type
}

// A NamespaceRef is a namespace in expression position.
type NamespaceRef struct {
	ExprBase
	Name string
}

// An AliasBinding is a reference to a using-alias.
type AliasBinding struct {
	ExprBase
	Alias *Alias
}

// A Binary is a binary operation.
type Binary struct {
	ExprBase
	Op   string
	L, R Expr
	// Method is the operator's implementing method, if any:
	// a user-defined operator, or the delegate combine and remove helpers.
	Method *Method
	// Scale is the element size multiplying the integer operand
	// of pointer arithmetic.
	Scale int
	// Lifted is whether the operator is lifted over nullable operands.
	Lifted bool
}

// A Unary is a unary operation.
type Unary struct {
	ExprBase
	Op     string
	X      Expr
	Method *Method
	Lifted bool
}

// A Ternary is a conditional expression.
type Ternary struct {
	ExprBase
	Cond, Then, Else Expr
}

// An Assign is a simple or compound assignment.
type Assign struct {
	ExprBase
	// Op is the compound operator, or "" for simple assignment.
	Op     string
	Target Expr
	Value  Expr
	Method *Method
}

// A Call is a method or delegate invocation.
type Call struct {
	ExprBase
	Fn     Expr
	Args   []Expr
	TArgs  []TypeExpr
	Method *Method
}

// A Construct is an object creation expression.
type Construct struct {
	ExprBase
	TypeExpr TypeExpr
	Args     []Expr
	Ctor     *Method
}

// An Index is an array element access or an indexer call.
type Index struct {
	ExprBase
	X       Expr
	Args    []Expr
	Indexer *Property
}

// A Cast is an explicit conversion.
type Cast struct {
	ExprBase
	TypeExpr TypeExpr
	X        Expr
}

// ConvKind is the kind of an implicit conversion.
type ConvKind int

const (
	IdentityConv ConvKind = iota
	NumericConv
	ReferenceConv
	BoxingConv
	NullableConv
	NullConv
	UserConv
	MethodGroupConv
)

var convKindNames = [...]string{
	IdentityConv:    "identity",
	NumericConv:     "numeric",
	ReferenceConv:   "reference",
	BoxingConv:      "boxing",
	NullableConv:    "nullable",
	NullConv:        "null",
	UserConv:        "user-defined",
	MethodGroupConv: "method-group",
}

func (k ConvKind) String() string { return convKindNames[k] }

// A Convert is an implicit conversion inserted by the resolver.
type Convert struct {
	ExprBase
	X    Expr
	Kind ConvKind
	// Op is the user-defined conversion operator, if any.
	Op *Method
}

// A This is a reference to the current instance.
type This struct{ ExprBase }

// A BaseRef is a reference to the current instance as its base type.
type BaseRef struct{ ExprBase }

// A TypeOf is a typeof expression.
type TypeOf struct {
	ExprBase
	TypeExpr TypeExpr
	Of       Type
}

// An AnonMethod is an anonymous function.
// The binder hoists it to Method, a member of the closure class Closure.
type AnonMethod struct {
	ExprBase
	Params  []*Param
	RetExpr TypeExpr
	Body    *Block
	Method  *Method
	Closure *TypeDecl
}

// A ClosureRef is a reference to the closure instance of Class
// in the current method.
type ClosureRef struct {
	ExprBase
	Class *TypeDecl
}

// A Query is a comprehension: from Var in In [where Where] select Select.
type Query struct {
	ExprBase
	Var      string
	TypeExpr TypeExpr
	In       Expr
	Where    Expr
	Select   Expr
	Slot     *Field
}

// A TupleLit is a tuple construction.
type TupleLit struct {
	ExprBase
	Names []string
	Elems []Expr
}

// An ArrayLit is an array construction.
// ElemExpr is nil for arrays synthesized by the resolver.
type ArrayLit struct {
	ExprBase
	ElemExpr TypeExpr
	Elems    []Expr
	Elem     Type
}
