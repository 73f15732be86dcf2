package unsealed

// Events can be implemented by anyone.
//
//evtag:union
type Events interface {
	EventName() string
}
