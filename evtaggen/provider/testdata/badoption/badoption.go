package badoption

//evtag:union prefix=a suffix=b
type Events interface {
	isEvent()
}
