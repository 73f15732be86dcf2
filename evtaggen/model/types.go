// Package model defines the host-neutral structural model of a tagged union
// declaration. Host adapters (see package provider) translate source syntax
// into this model; emitters (see package golang) translate it back out.
package model

import "fmt"

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as file:line:col, omitting missing parts.
func (s Source) String() string {
	switch {
	case s.IsZero():
		return "-"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}

// Warning codes.
const (
	// WarnDuplicateEventName is reported when two variants of one union
	// resolve to the same event name. Downcasts of either variant may then
	// match the other.
	WarnDuplicateEventName = "DUPLICATE_EVENT_NAME"
)

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source Source

	// TypeName is the union that triggered the warning, if applicable.
	TypeName string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Source, w.Code, w.Message)
}

// PackageInfo describes a Go package.
type PackageInfo struct {
	// Path is the import path (e.g., "github.com/foo/bar").
	Path string

	// Name is the package name (e.g., "bar").
	Name string

	// Dir is the filesystem directory, if known.
	Dir string
}

// Import is a package referenced by a declaration, e.g. by a type
// parameter constraint.
type Import struct {
	Path string
	Name string
}

// GeneratedHeader is the first line of every file the generator writes.
const GeneratedHeader = "// Code generated by evtag. DO NOT EDIT."
