package model

import (
	"fmt"
	"strings"
)

// Identifier returns the event name of v: its rename when present,
// otherwise prefix followed by the variant's own name.
func Identifier(prefix string, v Variant) string {
	if v.Rename != nil {
		return *v.Rename
	}
	return prefix + v.Name
}

// Arm pairs a variant with its event name.
type Arm struct {
	Variant    Variant
	Identifier string
}

// Arms returns one arm per variant of d, in declaration order.
func Arms(d *TypeDeclaration) []Arm {
	arms := make([]Arm, len(d.Variants))
	for i, v := range d.Variants {
		arms[i] = Arm{Variant: v, Identifier: Identifier(d.Prefix, v)}
	}
	return arms
}

// Duplicates reports every event name shared by more than one arm of d.
// Duplicates do not stop generation.
func Duplicates(d *TypeDeclaration, arms []Arm) []Warning {
	seen := make(map[string][]string)
	var order []string
	for _, a := range arms {
		if _, ok := seen[a.Identifier]; !ok {
			order = append(order, a.Identifier)
		}
		seen[a.Identifier] = append(seen[a.Identifier], a.Variant.Name)
	}

	var warnings []Warning
	for _, id := range order {
		names := seen[id]
		if len(names) < 2 {
			continue
		}
		warnings = append(warnings, Warning{
			Code:     WarnDuplicateEventName,
			Message:  fmt.Sprintf("variants %s share event name %q", strings.Join(names, ", "), id),
			Source:   d.Source,
			TypeName: d.Name,
		})
	}
	return warnings
}
