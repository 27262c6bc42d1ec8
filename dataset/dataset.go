package dataset

import (
	"errors"
	"fmt"

	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

var (
	// ErrRowIndex is returned when row indices are not dense and 0-based.
	ErrRowIndex = errors.New("dataset: row indices must be dense and 0-based")
	// ErrMissingIdentity is returned when a row carries no identity.
	ErrMissingIdentity = errors.New("dataset: row has no identity")
	// ErrDuplicateIdentity is returned when two rows share an identity.
	ErrDuplicateIdentity = errors.New("dataset: duplicate row identity")
)

// Row is one record of the canonical dataset.
type Row struct {
	// Index is the dense, 0-based row index.
	Index int
	// Identity is the opaque host-issued token of the row.
	Identity identity.Identity
	// Values holds the field values keyed by field name.
	Values datum.Document
}

// Datum returns the row as the rendering engine sees it: a copy of the field
// values plus the __row__ and __identity__ tags.
func (r Row) Datum() datum.Document {
	d := make(datum.Document, len(r.Values)+2)
	for k, v := range r.Values {
		d[k] = v
	}
	d[datum.RowKey] = datum.Int(int64(r.Index))
	d[datum.IdentityKey] = datum.ID(r.Identity)
	return d
}

// Dataset is one immutable generation of the canonical dataset.
//
// A Dataset is never mutated after it has been built; a new data-processing
// cycle produces a new Dataset with a higher generation.
type Dataset struct {
	generation uint64
	rows       []Row
	fields     Fields
	byKey      map[string]int
	index      *invertedIndex
}

// New builds an unregistered dataset (generation 0).
func New(rows []Row, fields Fields) (*Dataset, error) {
	return build(0, rows, fields)
}

func build(generation uint64, rows []Row, fields Fields) (*Dataset, error) {
	ds := &Dataset{
		generation: generation,
		rows:       make([]Row, len(rows)),
		fields:     fields.Clone(),
		byKey:      make(map[string]int, len(rows)),
		index:      newInvertedIndex(),
	}

	for i, r := range rows {
		if r.Index != i {
			return nil, fmt.Errorf("%w: row %d has index %d", ErrRowIndex, i, r.Index)
		}
		if r.Identity == nil {
			return nil, fmt.Errorf("%w: row %d", ErrMissingIdentity, i)
		}
		key := r.Identity.Key()
		if prev, ok := ds.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %q at rows %d and %d", ErrDuplicateIdentity, key, prev, i)
		}
		ds.byKey[key] = i

		values := r.Values.Clone()
		if values == nil {
			values = datum.Document{}
		}
		ds.rows[i] = Row{Index: i, Identity: r.Identity, Values: values}
		ds.index.add(i, values)
	}

	return ds, nil
}

// Generation returns the generation number of the dataset.
func (d *Dataset) Generation() uint64 {
	if d == nil {
		return 0
	}
	return d.generation
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Rows returns the rows in index order. The documents must not be mutated.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Row returns the row at index i.
func (d *Dataset) Row(i int) (Row, bool) {
	if d == nil || i < 0 || i >= len(d.rows) {
		return Row{}, false
	}
	return d.rows[i], true
}

// Fields returns a copy of the field metadata.
func (d *Dataset) Fields() Fields {
	if d == nil {
		return Fields{}
	}
	return d.fields.Clone()
}

// Field returns the metadata of the named field.
func (d *Dataset) Field(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	f, ok := d.fields[name]
	return f, ok
}

// All returns the set of every row index.
func (d *Dataset) All() *RowSet {
	return rangeRowSet(d.Len())
}

// Match returns the rows whose values structurally equal every entry of
// query. An empty query matches every row.
func (d *Dataset) Match(query datum.Document) *RowSet {
	if len(query) == 0 {
		return d.All()
	}
	if d.Len() == 0 {
		return NewRowSet()
	}

	var result *RowSet
	for field, v := range query {
		posting := d.index.lookup(field, v)
		if posting == nil {
			return NewRowSet()
		}
		if result == nil {
			result = posting.Clone()
		} else {
			result.And(posting)
		}
		if result.IsEmpty() {
			return result
		}
	}

	// Value keys are a superset of equality (NaN shares a key with NaN but
	// never equals it), so confirm every candidate.
	out := NewRowSet()
	for i := range result.All() {
		if datum.Matches(d.rows[i].Values, query) {
			out.Add(i)
		}
	}
	return out
}

// Identities returns the identities of the rows in rs, in row order.
func (d *Dataset) Identities(rs *RowSet) *identity.Set {
	out := identity.NewSet()
	if rs == nil {
		return out
	}
	for i := range rs.All() {
		if i < d.Len() {
			out.Add(d.rows[i].Identity)
		}
	}
	return out
}

// IdentityAt returns the identity of the row at index i.
func (d *Dataset) IdentityAt(i int) (identity.Identity, bool) {
	r, ok := d.Row(i)
	if !ok {
		return nil, false
	}
	return r.Identity, true
}

// IndexOf returns the row index of id in this generation.
func (d *Dataset) IndexOf(id identity.Identity) (int, bool) {
	if d == nil || id == nil {
		return 0, false
	}
	i, ok := d.byKey[id.Key()]
	return i, ok
}

// Contains reports whether id belongs to a row of this generation.
func (d *Dataset) Contains(id identity.Identity) bool {
	_, ok := d.IndexOf(id)
	return ok
}

// Prune returns the members of s that belong to this generation, in order.
// Tokens from a stale generation are dropped.
func (d *Dataset) Prune(s *identity.Set) *identity.Set {
	return s.Filter(d.Contains)
}

// Values returns the value of field for every row, in row order. Rows that do
// not carry the field yield an invalid Value.
func (d *Dataset) Values(field string) []datum.Value {
	out := make([]datum.Value, d.Len())
	for i := range out {
		out[i] = d.rows[i].Values[field]
	}
	return out
}

// Distinct returns the number of distinct values of field.
func (d *Dataset) Distinct(field string) int {
	if d == nil {
		return 0
	}
	return d.index.cardinality(field)
}
