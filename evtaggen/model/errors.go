package model

import "fmt"

// ShapeError reports a declaration that is not a tagged union.
type ShapeError struct {
	Source   Source
	TypeName string
	Message  string
}

func (e *ShapeError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.TypeName, e.Message)
}

// Shapef creates a ShapeError with a formatted message.
func Shapef(src Source, typeName, format string, args ...any) *ShapeError {
	return &ShapeError{
		Source:   src,
		TypeName: typeName,
		Message:  fmt.Sprintf(format, args...),
	}
}

// AttributeError reports a configuration option with an unrecognized name
// or a value of the wrong type.
type AttributeError struct {
	Source  Source
	Option  string // empty when the directive itself is unrecognized
	Message string
}

func (e *AttributeError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: option %q: %s", e.Source, e.Option, e.Message)
}

// Attributef creates an AttributeError with a formatted message.
func Attributef(src Source, option, format string, args ...any) *AttributeError {
	return &AttributeError{
		Source:  src,
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

// AmbiguityError is returned instead of a WarnDuplicateEventName warning
// when generation runs in strict mode.
type AmbiguityError struct {
	Warnings []Warning
}

func (e *AmbiguityError) Error() string {
	if len(e.Warnings) == 1 {
		return e.Warnings[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", e.Warnings[0], len(e.Warnings)-1)
}
