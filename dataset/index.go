package dataset

import (
	"github.com/hupe1980/crossfilter/datum"
)

// invertedIndex maps field values to the rows holding them.
//
// Structure: field -> valueKey -> row set. Value keys come from
// datum.Value.Key, so two values share a posting list exactly when they are
// structurally equal (integral floats and ints collapse onto one key).
type invertedIndex struct {
	postings map[string]map[string]*RowSet
}

func newInvertedIndex() *invertedIndex {
	return &invertedIndex{postings: make(map[string]map[string]*RowSet)}
}

// add indexes every valid value of doc under row.
func (ix *invertedIndex) add(row int, doc datum.Document) {
	for field, v := range doc {
		if !v.IsValid() {
			continue
		}
		values, ok := ix.postings[field]
		if !ok {
			values = make(map[string]*RowSet)
			ix.postings[field] = values
		}
		key := v.Key()
		rs, ok := values[key]
		if !ok {
			rs = NewRowSet()
			values[key] = rs
		}
		rs.Add(row)
	}
}

// lookup returns the posting list of field == v, or nil when no row holds it.
// The returned set must not be mutated.
func (ix *invertedIndex) lookup(field string, v datum.Value) *RowSet {
	if !v.IsValid() {
		return nil
	}
	values, ok := ix.postings[field]
	if !ok {
		return nil
	}
	return values[v.Key()]
}

// cardinality returns the number of distinct values indexed for field.
func (ix *invertedIndex) cardinality(field string) int {
	return len(ix.postings[field])
}
