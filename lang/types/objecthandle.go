package types

// ObjectHandle is the type of a program variable that holds a reference
// to a class instance (§3 "object-handle"): a pointer under the hood,
// but a distinct static type from the class it refers to, so that
// assignability and upcast/downcast rules (§4.2, §4.6.2) have a single
// place to live instead of being smeared across every class type.
type ObjectHandle struct {
	Referent *Virtual
}

func NewObjectHandle(referent *Virtual) *ObjectHandle {
	return &ObjectHandle{Referent: referent}
}

func (h *ObjectHandle) FQN() string {
	if h.Referent == nil {
		return "handle(<undefined>)"
	}
	return h.Referent.FQN()
}

func (h *ObjectHandle) String() string { return h.FQN() }

func (h *ObjectHandle) IsValid() bool {
	return h.Referent != nil && h.Referent.IsValid()
}
