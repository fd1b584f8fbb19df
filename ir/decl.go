// Copyright © 2020 The Pea Authors under an MIT-style license.

package ir

// A Decl is a named declaration:
// *TypeDecl, *Field, *Method, *Property, *Event, or *TypeParam.
type Decl interface {
	Node
	DeclName() string
	// DeclKind returns the name of the declaration kind
	// for use in diagnostics.
	DeclKind() string
}

// TypeKind is the kind of a declared type.
type TypeKind int

const (
	Class TypeKind = iota
	Struct
	Interface
	Enum
	Delegate
)

var typeKindNames = [...]string{
	Class:     "class",
	Struct:    "struct",
	Interface: "interface",
	Enum:      "enum",
	Delegate:  "delegate",
}

func (k TypeKind) String() string { return typeKindNames[k] }

// Prim identifies the built-in types.
type Prim int

const (
	NotPrim Prim = iota
	Void
	Bool
	Char
	SByte
	Byte
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	String
	Object
	// Null is the type of the null literal.
	Null
	// Error is the type substituted for expressions that failed to resolve.
	Error
)

var primNames = [...]string{
	NotPrim: "",
	Void:    "void",
	Bool:    "bool",
	Char:    "char",
	SByte:   "sbyte",
	Byte:    "byte",
	Short:   "short",
	UShort:  "ushort",
	Int:     "int",
	UInt:    "uint",
	Long:    "long",
	ULong:   "ulong",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Object:  "object",
	Null:    "<null>",
	Error:   "<error>",
}

func (p Prim) String() string { return primNames[p] }

// PrimByName returns the Prim with the given keyword name.
func PrimByName(name string) (Prim, bool) {
	for p, n := range primNames {
		if n == name && Prim(p) != NotPrim {
			return Prim(p), true
		}
	}
	return NotPrim, false
}

// IsNumeric returns whether p is an integral or floating point type.
func (p Prim) IsNumeric() bool { return p >= Char && p <= Double }

// IsIntegral returns whether p is an integral type.
func (p Prim) IsIntegral() bool { return p >= Char && p <= ULong }

// IsSigned returns whether p is a signed integral type.
func (p Prim) IsSigned() bool {
	return p == SByte || p == Short || p == Int || p == Long
}

// Size returns the size in bytes of an unmanaged primitive or 0.
func (p Prim) Size() int {
	switch p {
	case Bool, SByte, Byte:
		return 1
	case Char, Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	case Long, ULong, Double:
		return 8
	}
	return 0
}

// A TypeDecl is a class, struct, interface, enum, or delegate.
// Built-in types are TypeDecls with a non-zero Prim.
type TypeDecl struct {
	Base
	Kind      TypeKind
	Prim      Prim
	Name      string
	Namespace string
	Module    *Module
	Access    Access
	Abstract  bool
	Static    bool
	// Outer is the enclosing type of a nested type.
	Outer  *TypeDecl
	TParms []*TypeParam

	BaseExpr   TypeExpr
	IfaceExprs []TypeExpr
	// EnumExpr is the underlying type expression of an enum.
	EnumExpr TypeExpr

	// BaseType, Ifaces, and EnumBase are resolved by the binder.
	BaseType *TypeDecl
	Ifaces   []*TypeDecl
	EnumBase *TypeDecl

	Members []Decl
	Attrs   []*Attribute

	// Def is the generic definition of an instance;
	// it is nil if the TypeDecl is not an instance.
	Def *TypeDecl
	// Args are the type arguments of an instance.
	Args []Type
	// Insts are all instances of a generic definition.
	Insts []*TypeDecl

	// Closure is whether the type was synthesized
	// to hold variables captured by nested functions.
	Closure bool
}

func (*TypeDecl) isType()            {}
func (n *TypeDecl) DeclName() string { return n.Name }
func (n *TypeDecl) DeclKind() string { return n.Kind.String() }

// Origin returns the generic definition of an instance or n itself.
func (n *TypeDecl) Origin() *TypeDecl {
	if n.Def != nil {
		return n.Def
	}
	return n
}

// IsGeneric returns whether n is an uninstantiated generic definition.
func (n *TypeDecl) IsGeneric() bool { return len(n.TParms) > 0 && n.Def == nil }

// Lookup returns the members with the given name.
func (n *TypeDecl) Lookup(name string) []Decl {
	var ds []Decl
	for _, m := range n.Members {
		if m.DeclName() == name {
			ds = append(ds, m)
		}
	}
	return ds
}

// ConstState is the folding state of a constant field.
type ConstState int

const (
	Unvisited ConstState = iota
	Evaluating
	Evaluated
	Circular
)

// SlotKind distinguishes compiler-synthesized fields
// standing in for variables.
type SlotKind int

const (
	NotSlot SlotKind = iota
	LocalSlot
	ParamSlot
	InductionSlot
	CatchSlot
)

// A Field is a field declaration, or a slot synthesized for a
// local variable, parameter, or induction variable.
type Field struct {
	Base
	Name     string
	Access   Access
	Static   bool
	Const    bool
	ReadOnly bool
	TypeExpr TypeExpr
	Type     Type
	Init     Expr
	Owner    *TypeDecl
	Attrs    []*Attribute

	// Value is the folded value of a constant.
	Value interface{}
	State ConstState

	Slot SlotKind
	// Captured is whether the slot is referenced by a nested function.
	// A captured slot is a member of Host, a closure class.
	Captured bool
	Host     *TypeDecl

	// Def is the field of the generic definition of an instance member.
	Def *Field
}

func (n *Field) DeclName() string { return n.Name }

func (n *Field) DeclKind() string {
	switch n.Slot {
	case LocalSlot, InductionSlot, CatchSlot:
		return "local"
	case ParamSlot:
		return "parameter"
	}
	if n.Const {
		return "constant"
	}
	return "field"
}

// A Method is a method, constructor, or operator declaration.
type Method struct {
	Base
	Name     string
	Access   Access
	Static   bool
	Abstract bool
	Ctor     bool
	TParms   []*TypeParam
	Params   []*Param
	RetExpr  TypeExpr
	Ret      Type
	Body     *Block
	Owner    *TypeDecl
	Attrs    []*Attribute

	// Def is the method this was made from by instantiation,
	// either of the method itself or of its declaring type.
	// It is nil for a definition.
	Def *Method
	// TArgs are the type arguments of an instantiated generic method.
	TArgs []Type
	Insts []*Method

	// Locals are the slots of the method body.
	Locals []*Field
}

func (n *Method) DeclName() string { return n.Name }

func (n *Method) DeclKind() string {
	if n.Ctor {
		return "constructor"
	}
	return "method"
}

// Origin returns the definition the method was instantiated from, or n.
func (n *Method) Origin() *Method {
	m := n
	for m.Def != nil {
		m = m.Def
	}
	return m
}

// IsGenericInst returns whether the method is an instance of a generic method.
func (n *Method) IsGenericInst() bool { return len(n.TArgs) > 0 }

// HasParamsArray returns whether the last parameter is a params array.
func (n *Method) HasParamsArray() bool {
	return len(n.Params) > 0 && n.Params[len(n.Params)-1].IsParams
}

// A Param is a method parameter.
type Param struct {
	Base
	Name     string
	TypeExpr TypeExpr
	Type     Type
	IsParams bool
	Default  Expr
	// Slot is the field standing in for the parameter in the body.
	Slot *Field
}

// A Property is a property or an indexer.
type Property struct {
	Base
	Name     string
	Access   Access
	Static   bool
	TypeExpr TypeExpr
	Type     Type
	// Params are the parameters of an indexer.
	Params []*Param
	Get    bool
	Set    bool
	Owner  *TypeDecl
	Attrs  []*Attribute
	Def    *Property
}

func (n *Property) DeclName() string { return n.Name }

func (n *Property) DeclKind() string {
	if len(n.Params) > 0 {
		return "indexer"
	}
	return "property"
}

// An Event is an event declaration.
type Event struct {
	Base
	Name     string
	Access   Access
	Static   bool
	TypeExpr TypeExpr
	Type     Type
	Owner    *TypeDecl
	Attrs    []*Attribute
	Def      *Event
}

func (n *Event) DeclName() string { return n.Name }
func (n *Event) DeclKind() string { return "event" }

// A TypeParam is a generic type parameter.
type TypeParam struct {
	Base
	Name  string
	Index int
	// Owner is the *TypeDecl or *Method declaring the parameter.
	Owner Decl

	DefaultCtor bool
	RefType     bool
	ValueType   bool
	Unmanaged   bool
	BoundExprs  []TypeExpr
	Bounds      []Type
}

func (*TypeParam) isType()            {}
func (n *TypeParam) DeclName() string { return n.Name }
func (n *TypeParam) DeclKind() string { return "type parameter" }

// AccessOf returns the declared accessibility of d.
// Type parameters and slots are public.
func AccessOf(d Decl) Access {
	switch d := d.(type) {
	case *TypeDecl:
		return d.Access
	case *Field:
		return d.Access
	case *Method:
		return d.Access
	case *Property:
		return d.Access
	case *Event:
		return d.Access
	}
	return Public
}

// OwnerOf returns the declaring type of d or nil.
func OwnerOf(d Decl) *TypeDecl {
	switch d := d.(type) {
	case *TypeDecl:
		return d.Outer
	case *Field:
		return d.Owner
	case *Method:
		return d.Owner
	case *Property:
		return d.Owner
	case *Event:
		return d.Owner
	}
	return nil
}

// IsStatic returns whether d is a static member.
// Nested types are static members.
func IsStatic(d Decl) bool {
	switch d := d.(type) {
	case *TypeDecl:
		return true
	case *Field:
		return d.Static || d.Const
	case *Method:
		return d.Static
	case *Property:
		return d.Static
	case *Event:
		return d.Static
	}
	return false
}

// AttrsOf returns the attributes applied to d.
func AttrsOf(d Decl) []*Attribute {
	switch d := d.(type) {
	case *TypeDecl:
		return d.Attrs
	case *Field:
		return d.Attrs
	case *Method:
		return d.Attrs
	case *Property:
		return d.Attrs
	case *Event:
		return d.Attrs
	}
	return nil
}
