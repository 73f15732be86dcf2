package basic

// MyEvents are the events of the basic fixture.
//
//evtag:union prefix=abc
type MyEvents interface {
	isMyEvent()
}

// VariantA carries a message.
//
//evtag:variant rename=event_a
type VariantA struct {
	Text string
}

func (VariantA) isMyEvent() {}

// VariantB is matched through a pointer.
type VariantB struct{}

func (*VariantB) isMyEvent() {}

// VariantC carries a count.
type VariantC struct {
	Foo int
}

func (VariantC) isMyEvent() {}

// NotAVariant has no marker method.
type NotAVariant struct{}

// Other is an unrelated interface.
type Other interface {
	isMyEvent()
}
