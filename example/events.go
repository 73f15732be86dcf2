package main

//go:generate go run github.com/broady/evtag/cmd/evtag gen

// MyEvents are the events this program publishes.
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

// VariantB is published by pointer.
type VariantB struct{}

func (*VariantB) isMyEvent() {}

// VariantC carries a count.
type VariantC struct {
	Foo int
}

func (VariantC) isMyEvent() {}
