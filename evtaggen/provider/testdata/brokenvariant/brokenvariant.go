package brokenvariant

//evtag:union
type Events interface {
	isEvent()
}

type Bad struct {
	Field Missing
}

func (Bad) isEvent() {}
