// Package opset defines operation codes and named operation sets — the
// "what may be done" half of a provost grant.
package opset

// Code is a registry-wide operation code. Codes are minted by administrative
// import tooling and treated as read-only reference data by the engine.
type Code int32

// CodeInfo is the persisted descriptor for an operation code.
type CodeInfo struct {
	Code        Code   `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Operation is one operation inside a set. An operation may carry attribute
// strings: an empty attribute list means the operation applies to any
// requested attribute value, a non-empty list is an exact-match whitelist.
type Operation struct {
	ID    int64 `json:"id"`
	SetID int64 `json:"set_id"`
	Code  Code  `json:"code"`
}

// Set is a named bundle of operations. It is an explicit change-tracking
// record: a Set remembers whether it was loaded from storage and whether a
// setter has modified it since. Store.SaveSet inserts when the record was
// never loaded (allocating a new id from the shared sequence) and updates
// otherwise, and does nothing at all while no change is pending.
type Set struct {
	id      int64
	name    string
	found   bool
	changed bool
}

// NewSet returns an unsaved Set with the given name.
func NewSet(name string) *Set {
	return &Set{name: name, changed: true}
}

// Hydrate reconstructs a Set from storage. Used by store implementations.
func Hydrate(id int64, name string) *Set {
	return &Set{id: id, name: name, found: true}
}

// ID returns the set id, zero until the first save.
func (s *Set) ID() int64 { return s.id }

// Name returns the set name.
func (s *Set) Name() string { return s.name }

// Rename changes the set name and marks the record dirty.
func (s *Set) Rename(name string) {
	if name == s.name {
		return
	}
	s.name = name
	s.changed = true
}

// Found reports whether the record was loaded from (or has been written to)
// storage.
func (s *Set) Found() bool { return s.found }

// Changed reports whether an unsaved modification is pending.
func (s *Set) Changed() bool { return s.changed }

// MarkSaved records a successful write. Used by store implementations.
func (s *Set) MarkSaved(id int64) {
	s.id = id
	s.found = true
	s.changed = false
}
