package model

import (
	"go/scanner"
	"go/token"
)

// TypeDeclaration is a tagged union: a named type whose values are exactly
// one of a fixed set of variants.
type TypeDeclaration struct {
	Name   string
	Params ParamList

	// Prefix is prepended to variant names that carry no Rename.
	Prefix string

	// Variants are in declaration order.
	Variants []Variant

	Source Source
}

// Variant is one case of a tagged union.
type Variant struct {
	Name string

	// Rename replaces the synthesized event name when non-nil.
	Rename *string

	// Pointer is set when the variant is matched through a pointer (*T),
	// i.e. its marker methods have pointer receivers.
	Pointer bool

	// TypeArgs instantiates a generic variant. Each entry names a parameter
	// of the enclosing declaration.
	TypeArgs []string

	Source Source
}

// Lookup returns the variant called name.
func (d *TypeDeclaration) Lookup(name string) (*Variant, bool) {
	for i := range d.Variants {
		if d.Variants[i].Name == name {
			return &d.Variants[i], true
		}
	}
	return nil, false
}

// Identifiers returns every identifier a declaration's generated code may
// refer to: the declaration's name, its variants' names and the
// identifiers in its parameter constraints.
func (d *TypeDeclaration) Identifiers() []string {
	ids := []string{d.Name}
	for _, v := range d.Variants {
		ids = append(ids, v.Name)
	}
	for _, p := range d.Params {
		var s scanner.Scanner
		fset := token.NewFileSet()
		src := []byte(p.Constraint)
		s.Init(fset.AddFile("", fset.Base(), len(src)), src, nil, 0)
		for {
			_, tok, lit := s.Scan()
			if tok == token.EOF {
				break
			}
			if tok == token.IDENT {
				ids = append(ids, lit)
			}
		}
	}
	return ids
}

// FragmentKind identifies one of the generated code fragments.
type FragmentKind int

const (
	FragmentNaming FragmentKind = iota
	FragmentPublish
	FragmentDowncast
)

// String returns the string representation of the fragment kind.
func (k FragmentKind) String() string {
	switch k {
	case FragmentNaming:
		return "NamingImpl"
	case FragmentPublish:
		return "PublishImpl"
	case FragmentDowncast:
		return "DowncastImpl"
	default:
		return "Unknown"
	}
}

// Fragment is a generated code fragment together with its own generic
// parameter list, derived from the declaration's list.
type Fragment struct {
	Kind   FragmentKind
	Params ParamList
}

// Synthetic parameter names shared by every host.
const (
	SinkParam      = "S"
	FrameLifetime  = "frame"
	BPLifetime     = "bp"
	HolderLifetime = "a"
)

// PublishParams is the synthetic set for the publish fragment: the sink
// type, which must not borrow from the caller, and the sink's two internal
// lifetimes.
func PublishParams(sinkName, sinkConstraint string) []Param {
	return []Param{
		TypeParam(sinkName, sinkConstraint),
		Lifetime(FrameLifetime),
		Lifetime(BPLifetime),
	}
}

// DowncastParams is the synthetic set for the downcast fragment: the borrow
// lifetime of the holder being inspected.
func DowncastParams() []Param {
	return []Param{Lifetime(HolderLifetime)}
}

// Fragments derives the three fragments of d. Each gets an independent
// clone of d.Params; the naming fragment's list is unchanged. The sink
// parameter is named fresh against d.Params and reserved.
func Fragments(d *TypeDeclaration, sinkConstraint string, reserved ...string) [3]Fragment {
	sink := d.Params.Fresh(SinkParam, reserved...)
	return [3]Fragment{
		{Kind: FragmentNaming, Params: d.Params.Clone()},
		{Kind: FragmentPublish, Params: d.Params.Extend(PublishParams(sink, sinkConstraint)...)},
		{Kind: FragmentDowncast, Params: d.Params.Extend(DowncastParams()...)},
	}
}

// Package is one host package and the unions declared in it.
type Package struct {
	PackageInfo

	// Unions are in source order.
	Unions []TypeDeclaration

	// Imports are the packages referenced by type parameter constraints.
	Imports []Import

	// Declared holds every package-level identifier, used to detect
	// collisions with generated names.
	Declared map[string]bool
}
