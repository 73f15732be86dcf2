package caller

import "github.com/broady/evtag"

// Events is used through its generated functions before they exist.
//
//evtag:union prefix=caller.
type Events interface {
	isEvent()
}

type Opened struct{}

func (Opened) isEvent() {}

func describe(e Events) string { return EventsEventName(e) }

func send(s evtag.Sink, e Events) { PublishEvents(s, e) }

func receive(h evtag.Holder) (Events, bool) { return EventsFrom(h) }
