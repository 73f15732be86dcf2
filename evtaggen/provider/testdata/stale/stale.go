package stale

// Events lost a variant since the last generation.
//
//evtag:union
type Events interface {
	isEvent()
}

type Kept struct{}

func (Kept) isEvent() {}
