package model

import "strconv"

// ParamKind identifies the category of a generic parameter.
// The order of the constants is the order the host syntax requires
// parameters to appear in.
type ParamKind int

const (
	KindLifetime ParamKind = iota // borrow lifetime; no spelling in Go
	KindType                      // type parameter
	KindConst                     // const parameter; no spelling in Go
)

// String returns the string representation of the parameter kind.
func (k ParamKind) String() string {
	switch k {
	case KindLifetime:
		return "Lifetime"
	case KindType:
		return "Type"
	case KindConst:
		return "Const"
	default:
		return "Unknown"
	}
}

// Param is a single generic parameter.
type Param struct {
	Kind ParamKind
	Name string

	// Constraint is the host-language source text of the bound, if any.
	// For Go type parameters this is the constraint expression ("any",
	// "comparable", "~int | ~string", "fmt.Stringer").
	Constraint string

	// Synthetic marks parameters introduced by the generator.
	Synthetic bool
}

// Lifetime returns a synthetic lifetime parameter.
func Lifetime(name string) Param {
	return Param{Kind: KindLifetime, Name: name, Synthetic: true}
}

// TypeParam returns a synthetic type parameter.
func TypeParam(name, constraint string) Param {
	return Param{Kind: KindType, Name: name, Constraint: constraint, Synthetic: true}
}

// ParamList is an ordered generic parameter list. A well-formed list holds
// all lifetimes before all type parameters before all const parameters.
type ParamList []Param

// Valid reports whether l satisfies Lifetime < Type < Const ordering.
func (l ParamList) Valid() bool {
	for i := 1; i < len(l); i++ {
		if l[i].Kind < l[i-1].Kind {
			return false
		}
	}
	return true
}

// Clone returns a copy of l that shares no storage with it.
func (l ParamList) Clone() ParamList {
	if l == nil {
		return nil
	}
	out := make(ParamList, len(l))
	copy(out, l)
	return out
}

// Names returns the parameter names in order.
func (l ParamList) Names() []string {
	names := make([]string, len(l))
	for i, p := range l {
		names[i] = p.Name
	}
	return names
}

// OfKind returns the parameters of kind k, in order.
func (l ParamList) OfKind(k ParamKind) ParamList {
	var out ParamList
	for _, p := range l {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether a parameter called name exists.
func (l ParamList) Has(name string) bool {
	for _, p := range l {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Fresh returns base, or base followed by the smallest positive integer,
// such that the result names no parameter in l and is not in reserved.
func (l ParamList) Fresh(base string, reserved ...string) string {
	taken := func(name string) bool {
		if l.Has(name) {
			return true
		}
		for _, r := range reserved {
			if r == name {
				return true
			}
		}
		return false
	}
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		name := base + strconv.Itoa(i)
		if !taken(name) {
			return name
		}
	}
}

// Extend returns a copy of l with params inserted. Each new parameter of
// kind K goes immediately before the first parameter of a strictly later
// kind, or at the end if there is none. Parameters already in l keep their
// relative order, new parameters of one kind keep their argument order, and
// the result is well-formed whenever l is. l itself is never modified.
func (l ParamList) Extend(params ...Param) ParamList {
	out := make(ParamList, 0, len(l)+len(params))
	out = append(out, l...)
	for _, p := range params {
		at := len(out)
		for i, q := range out {
			if q.Kind > p.Kind {
				at = i
				break
			}
		}
		out = append(out, Param{})
		copy(out[at+1:], out[at:])
		out[at] = p
	}
	return out
}
