package document

// EntityRef points at a catalog entity, or marks one that does not exist
// yet. A nil ID is the explicit "new entity" marker: the original hint is
// preserved in Name/Document so persistence can create the record.
type EntityRef struct {
	ID       *string `json:"id"`
	Name     string  `json:"name"`
	Document string  `json:"document,omitempty"`
}

// Unresolved reports whether the reference is a creation candidate.
func (r EntityRef) Unresolved() bool { return r.ID == nil }

// ResolvedRef builds a reference to a known catalog entity.
func ResolvedRef(id, name, doc string) EntityRef {
	return EntityRef{ID: &id, Name: name, Document: doc}
}

// UnresolvedRef builds the explicit new-entity marker from a hint.
func UnresolvedRef(name, doc string) EntityRef {
	return EntityRef{Name: name, Document: doc}
}

// Hint is a loosely-specified entity reference as extracted from provider
// output: any of the fields may be absent or invented.
type Hint struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Document string `json:"document,omitempty"`
}

func (h Hint) Empty() bool { return h.ID == "" && h.Name == "" && h.Document == "" }
