package notinterface

// Events is a struct, not a union.
//
//evtag:union
type Events struct {
	Name string
}
