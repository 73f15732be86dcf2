package empty

// Nothing has no variants.
//
//evtag:union
type Nothing interface {
	isNothing()
}
