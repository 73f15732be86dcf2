package collide

// Events has two variants with the same name.
//
//evtag:union prefix=x
type Events interface {
	isEvent()
}

//evtag:variant rename=xB
type A struct{}

func (A) isEvent() {}

type B struct{}

func (B) isEvent() {}
