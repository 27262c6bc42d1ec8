package dataset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// RowSet is a set of row indices backed by a 32-bit Roaring Bitmap.
type RowSet struct {
	rb *roaring.Bitmap
}

// NewRowSet creates a row set holding indices.
func NewRowSet(indices ...int) *RowSet {
	s := &RowSet{rb: roaring.New()}
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// rangeRowSet creates a row set holding [0, n).
func rangeRowSet(n int) *RowSet {
	s := &RowSet{rb: roaring.New()}
	if n > 0 {
		s.rb.AddRange(0, uint64(n))
	}
	return s
}

// Add adds a row index. Negative indices are ignored.
func (s *RowSet) Add(i int) {
	if i < 0 {
		return
	}
	s.rb.Add(uint32(i))
}

// Contains checks if a row index is in the set.
func (s *RowSet) Contains(i int) bool {
	if i < 0 {
		return false
	}
	return s.rb.Contains(uint32(i))
}

// IsEmpty returns true if the set is empty.
func (s *RowSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of rows in the set.
func (s *RowSet) Cardinality() int {
	return int(s.rb.GetCardinality())
}

// Clone returns a deep copy of the set.
func (s *RowSet) Clone() *RowSet {
	return &RowSet{rb: s.rb.Clone()}
}

// And intersects s with other in place.
func (s *RowSet) And(other *RowSet) {
	s.rb.And(other.rb)
}

// Or unions s with other in place.
func (s *RowSet) Or(other *RowSet) {
	s.rb.Or(other.rb)
}

// Indices returns the row indices in ascending order.
func (s *RowSet) Indices() []int {
	out := make([]int, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// All yields the row indices in ascending order.
func (s *RowSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}
