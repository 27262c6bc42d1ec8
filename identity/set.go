package identity

import "iter"

// Set is a deduplicated, order-preserving collection of identities.
//
// The zero value is an empty set ready for use. A nil *Set is treated as empty
// by all read methods.
type Set struct {
	items []Identity
	index map[string]int
}

// NewSet creates a set from ids, keeping the first occurrence of each key.
func NewSet(ids ...Identity) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id if it is not present yet. It reports whether id was added.
// nil identities are ignored.
func (s *Set) Add(id Identity) bool {
	if id == nil {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	k := id.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, id)
	return true
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id Identity) bool {
	if s == nil || id == nil || s.index == nil {
		return false
	}
	_, ok := s.index[id.Key()]
	return ok
}

// ContainsKey reports whether an identity with key k is in the set.
func (s *Set) ContainsKey(k string) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[k]
	return ok
}

// Len returns the number of identities in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// IsEmpty reports whether the set has no identities.
func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Slice returns a copy of the identities in insertion order.
func (s *Set) Slice() []Identity {
	if s == nil {
		return []Identity{}
	}
	out := make([]Identity, len(s.items))
	copy(out, s.items)
	return out
}

// Keys returns the keys of all identities in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.items))
	for i, id := range s.items {
		out[i] = id.Key()
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return NewSet(s.Slice()...)
}

// Equal reports whether both sets hold the same identities, ignoring order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for _, id := range s.items {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Difference returns the identities of s that are not in other, in s order.
func (s *Set) Difference(other *Set) *Set {
	out := &Set{}
	if s == nil {
		return out
	}
	for _, id := range s.items {
		if !other.Contains(id) {
			out.Add(id)
		}
	}
	return out
}

// Union returns s followed by the identities of other not already in s.
func (s *Set) Union(other *Set) *Set {
	out := s.Clone()
	if other == nil {
		return out
	}
	for _, id := range other.items {
		out.Add(id)
	}
	return out
}

// SymmetricDifference returns (s − other) followed by (other − s).
func (s *Set) SymmetricDifference(other *Set) *Set {
	return s.Difference(other).Union(other.Difference(s))
}

// Filter returns the identities for which keep returns true.
func (s *Set) Filter(keep func(Identity) bool) *Set {
	out := &Set{}
	if s == nil {
		return out
	}
	for _, id := range s.items {
		if keep(id) {
			out.Add(id)
		}
	}
	return out
}

// All yields every identity in insertion order.
func (s *Set) All() iter.Seq[Identity] {
	return func(yield func(Identity) bool) {
		if s == nil {
			return
		}
		for _, id := range s.items {
			if !yield(id) {
				return
			}
		}
	}
}
