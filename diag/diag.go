// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package diag defines the diagnostics reported by the semantic passes
// and a Sink that collects them.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hesam/SketchSharp-sub002/loc"
)

// A Category is one of the error taxonomy classes.
type Category int

const (
	NotFound Category = iota
	Ambiguous
	Inaccessible
	KindMismatch
	ConstraintViolation
	Overflow
	Circular
	Obsolete
	Redundant
	Invalid
)

var categoryNames = [...]string{
	NotFound:            "not-found",
	Ambiguous:           "ambiguous",
	Inaccessible:        "inaccessible",
	KindMismatch:        "kind-mismatch",
	ConstraintViolation: "constraint-violation",
	Overflow:            "overflow",
	Circular:            "circular",
	Obsolete:            "obsolete",
	Redundant:           "redundant",
	Invalid:             "invalid",
}

func (c Category) String() string { return categoryNames[c] }

// A Severity is whether a diagnostic is an error or a warning.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// A Kind identifies a specific diagnostic.
type Kind int

const (
	IdentNotFound Kind = iota
	TypeNotFound
	MemberNotFound
	NamespaceMemberNotFound
	LabelNotFound
	ComposerNotFound
	NoOverload
	AmbiguousType
	AmbiguousCall
	MemberInaccessible
	TypeInaccessible
	NotAType
	NotAValue
	NotCallable
	NotIndexable
	WrongTypeArgCount
	NoImplicitConversion
	BadOperands
	BadOperand
	NoDelegateType
	CannotInfer
	GotoLeavesMethod
	Redefined
	StaticNeedsType
	InstanceNeedsObject
	ConstNotConstant
	ArgumentCount
	ConstraintDefaultCtor
	ConstraintRefType
	ConstraintValueType
	ConstraintUnmanaged
	ConstraintBase
	ConstantOverflow
	DivideByZero
	CircularConst
	CircularBase
	ObsoleteWarning
	ObsoleteError
	AlreadyNonNull
	RedundantModifier
	StreamModifier
	UnusedLabel
	BadBase
	BadModifier
	NoConversion
	NotAssignable
	AbstractInstance
	MissingReturnValue
)

type kindInfo struct {
	cat Category
	sev Severity
	fmt string
}

var kinds = [...]kindInfo{
	IdentNotFound:           {NotFound, Error, "%s not found"},
	TypeNotFound:            {NotFound, Error, "type %s not found"},
	MemberNotFound:          {NotFound, Error, "%s has no member %s"},
	NamespaceMemberNotFound: {NotFound, Error, "namespace %s has no member %s"},
	LabelNotFound:           {NotFound, Error, "label %s not found"},
	ComposerNotFound:        {NotFound, Error, "composer %s not registered"},
	NoOverload:              {NotFound, Error, "no overload of %s accepts (%s)"},
	AmbiguousType:           {Ambiguous, Error, "%s is ambiguous between %s and %s"},
	AmbiguousCall:           {Ambiguous, Error, "%s: ambiguous call"},
	MemberInaccessible:      {Inaccessible, Error, "%s is inaccessible due to its protection level"},
	TypeInaccessible:        {Inaccessible, Error, "type %s is inaccessible due to its protection level"},
	NotAType:                {KindMismatch, Error, "%s is a %s, not a type"},
	NotAValue:               {KindMismatch, Error, "%s is a %s, not a value"},
	NotCallable:             {KindMismatch, Error, "%s (%s) is not callable"},
	NotIndexable:            {KindMismatch, Error, "cannot index %s"},
	WrongTypeArgCount:       {KindMismatch, Error, "%s expects %s type arguments, got %s"},
	NoImplicitConversion:    {KindMismatch, Error, "cannot implicitly convert %s to %s"},
	BadOperands:             {KindMismatch, Error, "operator %s cannot be applied to %s and %s"},
	BadOperand:              {KindMismatch, Error, "operator %s cannot be applied to %s"},
	NoDelegateType:          {KindMismatch, Error, "anonymous method has no target delegate type"},
	CannotInfer:             {KindMismatch, Error, "cannot infer type arguments of %s"},
	GotoLeavesMethod:        {KindMismatch, Error, "goto %s leaves the enclosing method"},
	Redefined:               {KindMismatch, Error, "%s redefined"},
	StaticNeedsType:         {KindMismatch, Error, "static member %s accessed through an instance"},
	InstanceNeedsObject:     {KindMismatch, Error, "instance member %s needs an object reference"},
	ConstNotConstant:        {KindMismatch, Error, "initializer of constant %s is not constant"},
	ArgumentCount:           {KindMismatch, Error, "%s expects %s arguments, got %s"},
	ConstraintDefaultCtor:   {ConstraintViolation, Error, "%s must have a public parameterless constructor to be used as %s"},
	ConstraintRefType:       {ConstraintViolation, Error, "%s must be a reference type to be used as %s"},
	ConstraintValueType:     {ConstraintViolation, Error, "%s must be a non-nullable value type to be used as %s"},
	ConstraintUnmanaged:     {ConstraintViolation, Error, "%s must be an unmanaged type to be used as %s"},
	ConstraintBase:          {ConstraintViolation, Error, "%s does not satisfy constraint %s of %s"},
	ConstantOverflow:        {Overflow, Error, "compile-time overflow: %s"},
	DivideByZero:            {Overflow, Error, "division by constant zero"},
	CircularConst:           {Circular, Error, "the evaluation of constant %s involves a circular definition"},
	CircularBase:            {Circular, Error, "circular base type dependency involving %s"},
	ObsoleteWarning:         {Obsolete, Warning, "%s is obsolete%s"},
	ObsoleteError:           {Obsolete, Error, "%s is obsolete%s"},
	AlreadyNonNull:          {Redundant, Warning, "%s is already non-null"},
	RedundantModifier:       {Redundant, Error, "redundant %s modifier on %s"},
	StreamModifier:          {Redundant, Warning, "%s modifier is not meaningful on %s; using %s"},
	UnusedLabel:             {Redundant, Warning, "label %s is not used"},
	BadBase:                 {KindMismatch, Error, "%s cannot derive from %s"},
	BadModifier:             {KindMismatch, Error, "%s modifier cannot be applied to %s"},
	NoConversion:            {KindMismatch, Error, "cannot convert %s to %s"},
	NotAssignable:           {KindMismatch, Error, "cannot assign to %s"},
	AbstractInstance:        {KindMismatch, Error, "cannot create an instance of %s %s"},
	MissingReturnValue:      {KindMismatch, Error, "%s must return a value of type %s"},
}

// Category returns the taxonomy class of the kind.
func (k Kind) Category() Category { return kinds[k].cat }

// Severity returns the default severity of the kind.
func (k Kind) Severity() Severity { return kinds[k].sev }

// Format returns the message for the kind with its arguments.
// Missing arguments print as "?".
func (k Kind) Format(args []string) string {
	n := strings.Count(kinds[k].fmt, "%s")
	vs := make([]interface{}, n)
	for i := range vs {
		if i < len(args) {
			vs[i] = args[i]
		} else {
			vs[i] = "?"
		}
	}
	return fmt.Sprintf(kinds[k].fmt, vs...)
}

// A Sink receives diagnostics.
// Report must not stop the caller; the caller always continues.
type Sink interface {
	Report(kind Kind, at loc.Loc, args ...string)
}

// A Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind  Kind
	Loc   loc.Loc
	Args  []string
	Notes []string
}

// Severity returns the diagnostic's severity.
func (d *Diagnostic) Severity() Severity { return d.Kind.Severity() }

// Msg returns the formatted message without location.
func (d *Diagnostic) Msg() string { return d.Kind.Format(d.Args) }

func (d *Diagnostic) Error() string {
	var s strings.Builder
	s.WriteString(d.Loc.String())
	s.WriteString(": ")
	if d.Severity() == Warning {
		s.WriteString("warning: ")
	}
	s.WriteString(d.Msg())
	for _, n := range d.Notes {
		s.WriteString("\n\t")
		s.WriteString(n)
	}
	return s.String()
}

// A List is a Sink that records diagnostics.
type List struct {
	Diags []*Diagnostic
	// Forward, if non-nil, also receives each diagnostic.
	Forward Sink
}

// Report implements Sink.
func (l *List) Report(kind Kind, at loc.Loc, args ...string) {
	l.Diags = append(l.Diags, &Diagnostic{Kind: kind, Loc: at, Args: args})
	if l.Forward != nil {
		l.Forward.Report(kind, at, args...)
	}
}

// Note adds a note to the most recently reported diagnostic.
func (l *List) Note(f string, vs ...interface{}) {
	if len(l.Diags) == 0 {
		return
	}
	d := l.Diags[len(l.Diags)-1]
	d.Notes = append(d.Notes, fmt.Sprintf(f, vs...))
}

// Count returns the number of diagnostics of the given severity.
func (l *List) Count(sev Severity) int {
	var n int
	for _, d := range l.Diags {
		if d.Severity() == sev {
			n++
		}
	}
	return n
}

// Sorted returns the diagnostics sorted by location,
// with exact duplicates removed.
func (l *List) Sorted() []*Diagnostic {
	if len(l.Diags) == 0 {
		return nil
	}
	ds := make([]*Diagnostic, len(l.Diags))
	copy(ds, l.Diags)
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Loc.Less(ds[j].Loc)
	})
	dedup := []*Diagnostic{ds[0]}
	for _, d := range ds[1:] {
		prev := dedup[len(dedup)-1]
		if d.Loc != prev.Loc || d.Kind != prev.Kind || d.Msg() != prev.Msg() {
			dedup = append(dedup, d)
		}
	}
	return dedup
}

// Errors returns the sorted diagnostics as a slice of error.
func (l *List) Errors() []error {
	var errs []error
	for _, d := range l.Sorted() {
		errs = append(errs, d)
	}
	return errs
}
