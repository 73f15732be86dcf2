package badparam

//evtag:union
type Events interface {
	isEvent()
}

// Boxed needs a type argument Events cannot supply.
type Boxed[T any] struct {
	Value T
}

func (Boxed[T]) isEvent() {}
