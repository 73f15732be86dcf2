package generics

import "fmt"

// Result is a generic union.
//
//evtag:union prefix=result.
type Result[T any] interface {
	isResult()
}

// Ok holds a value.
type Ok[T any] struct {
	Value T
}

func (Ok[T]) isResult() {}

// Failed is not generic.
type Failed struct {
	Reason string
}

func (Failed) isResult() {}

// Keyed has constrained parameters, one from another package.
//
//evtag:union
type Keyed[K fmt.Stringer, V comparable] interface {
	isKeyed()
}

// Entry is matched through a pointer.
//
//evtag:variant rename=entry
type Entry[K fmt.Stringer, V comparable] struct {
	Key   K
	Value V
}

func (*Entry[K, V]) isKeyed() {}

// Swapped instantiates with the union's names in its own order.
type Swapped[V comparable, K fmt.Stringer] struct{}

func (Swapped[V, K]) isKeyed() {}
