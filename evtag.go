// Package evtag is the runtime side of evtag-generated code.
//
// The evtag command generates, for every sealed interface marked with
// //evtag:union, three functions:
//
//	func <U>EventName(v <U>) string              // stable name of v's variant
//	func Publish<U>[S evtag.Sink](sink S, v <U>) // publish v under its name
//	func <U>From(h evtag.Holder) (<U>, bool)     // typed view of an untyped event
//
// Generated code depends only on the two interfaces in this package, [Sink]
// and [Holder]. Any event bus offering equivalent operations can be used by
// pointing the generator at a different runtime package.
package evtag

// Sink is the untyped publishing side of an event bus.
type Sink interface {
	// Publish delivers payload under name.
	Publish(name string, payload any)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(name string, payload any)

// Publish calls f(name, payload).
func (f SinkFunc) Publish(name string, payload any) {
	f(name, payload)
}

// Holder is an untyped event: a recorded name plus an opaque payload.
type Holder interface {
	// Name returns the name the event was published under.
	Name() string

	// Payload returns the value the event was published with.
	Payload() any
}

// Payload returns the payload of h as a T. The boolean is false when the
// payload's dynamic type is not a T.
func Payload[T any](h Holder) (T, bool) {
	v, ok := h.Payload().(T)
	return v, ok
}
