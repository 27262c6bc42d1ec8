package resolve

import (
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

// Query is the input of a resolution strategy.
type Query struct {
	Dataset *dataset.Dataset
	Data    []datum.Document
}

// Outcome is the successful result of a strategy.
type Outcome struct {
	// Identities is the resolved set, in a deterministic order.
	Identities *identity.Set
	// Rows holds the dataset rows the identities were derived from. It is nil
	// for explicit tag tiers, which are exempt from the coverage check.
	Rows *dataset.RowSet
}

// Strategy is one tier of identity resolution. Resolve reports ok=false when
// the tier does not apply, in which case the next tier is tried.
type Strategy interface {
	Name() string
	Resolve(q Query) (Outcome, bool)
}

// DirectTag resolves a single datum carrying an identity tag of the current
// generation.
type DirectTag struct{}

// Name implements Strategy.
func (DirectTag) Name() string { return "direct-tag" }

// Resolve implements Strategy.
func (DirectTag) Resolve(q Query) (Outcome, bool) {
	if len(q.Data) != 1 {
		return Outcome{}, false
	}
	id, ok := q.Data[0].Identity()
	if !ok || !q.Dataset.Contains(id) {
		return Outcome{}, false
	}
	return Outcome{Identities: identity.NewSet(id)}, true
}

// BatchTags resolves several datums that all carry a valid row-index tag.
// Identities follow the tag order, deduplicated. A lone datum applies only
// when it carries nothing but tags; one with field values is left to
// MetadataMatch.
type BatchTags struct{}

// Name implements Strategy.
func (BatchTags) Name() string { return "batch-tags" }

// Resolve implements Strategy.
func (BatchTags) Resolve(q Query) (Outcome, bool) {
	switch {
	case len(q.Data) == 0:
		return Outcome{}, false
	case len(q.Data) == 1 && !onlyTags(q.Data[0]):
		return Outcome{}, false
	}
	ids, ok := rowIdentities(q.Dataset, q.Data)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{Identities: ids}, true
}

// MetadataMatch reduces every datum to the known dataset fields, coerces the
// values to the field types and matches rows structurally. When nothing
// matches on the full field set, the match is retried on non-measure fields
// only so that aggregated measures do not prevent a match.
type MetadataMatch struct{}

// Name implements Strategy.
func (MetadataMatch) Name() string { return "metadata-match" }

// Resolve implements Strategy.
func (MetadataMatch) Resolve(q Query) (Outcome, bool) {
	if q.Dataset.Len() == 0 {
		return Outcome{}, false
	}
	fields := q.Dataset.Fields()

	rows := matchRows(q.Dataset, q.Data, fields)
	if rows.IsEmpty() {
		nonMeasures := fields.NonMeasures()
		if len(nonMeasures) == len(fields) {
			return Outcome{}, false
		}
		rows = matchRows(q.Dataset, q.Data, nonMeasures)
	}
	if rows.IsEmpty() {
		return Outcome{}, false
	}
	return Outcome{Identities: q.Dataset.Identities(rows), Rows: rows}, true
}

func matchRows(ds *dataset.Dataset, data []datum.Document, fields dataset.Fields) *dataset.RowSet {
	out := dataset.NewRowSet()
	for _, d := range data {
		out.Or(ds.Match(reduce(d, fields)))
	}
	return out
}

// Synthesize builds identities from field metadata for the row indices the
// datums carry, using the host identity builder. It always applies: without
// a builder or row indices it resolves to an empty, non-nil set.
type Synthesize struct {
	Builder Builder
}

// Name implements Strategy.
func (Synthesize) Name() string { return "synthesize" }

// Resolve implements Strategy.
func (s Synthesize) Resolve(q Query) (Outcome, bool) {
	out := Outcome{Identities: identity.NewSet()}
	if s.Builder == nil {
		return out, true
	}

	fields := q.Dataset.Fields()
	rows := dataset.NewRowSet()
	for _, d := range q.Data {
		row, ok := d.RowIndex()
		if !ok || row < 0 || row >= q.Dataset.Len() {
			continue
		}
		b := s.Builder.NewIdentity()
		for _, k := range d.Keys() {
			f, ok := fields[k]
			if !ok {
				continue
			}
			if f.IsMeasure() {
				b = b.WithMeasure(f.QueryName)
			} else {
				b = b.WithCategory(f, row)
			}
		}
		if id := b.Build(); id != nil {
			out.Identities.Add(id)
			rows.Add(row)
		}
	}
	if !rows.IsEmpty() {
		out.Rows = rows
	}
	return out, true
}

// Builder creates host identity builders.
type Builder interface {
	NewIdentity() IdentityBuilder
}

// IdentityBuilder assembles one host identity from category columns and
// measure query names.
type IdentityBuilder interface {
	WithCategory(field dataset.Field, row int) IdentityBuilder
	WithMeasure(queryName string) IdentityBuilder
	Build() identity.Identity
}

// rowIdentities maps each datum's row-index tag to the identity of that row.
// It fails when any datum lacks a valid tag.
func rowIdentities(ds *dataset.Dataset, data []datum.Document) (*identity.Set, bool) {
	ids := identity.NewSet()
	for _, d := range data {
		idx, ok := d.RowIndex()
		if !ok {
			return nil, false
		}
		id, ok := ds.IdentityAt(idx)
		if !ok {
			return nil, false
		}
		ids.Add(id)
	}
	return ids, true
}

func onlyTags(d datum.Document) bool {
	for k := range d {
		if k != datum.RowKey && k != datum.IdentityKey {
			return false
		}
	}
	return true
}
