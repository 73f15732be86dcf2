package orphan

//evtag:union
type Events interface {
	isEvent()
}

type A struct{}

func (A) isEvent() {}

// Loose is not a variant of Events.
//
//evtag:variant rename=loose
type Loose struct{}
