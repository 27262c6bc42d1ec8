// Package resolve recovers canonical row identities from rendered datums.
//
// Resolution runs an ordered list of strategies, first match wins:
//
//  1. DirectTag: a single datum carrying an identity tag.
//  2. BatchTags: several datums that all carry a row-index tag.
//  3. MetadataMatch: structural matching of known field values, retried on
//     non-measure fields when nothing matches.
//  4. Synthesize: host-built identities for the row indices the datums carry.
//
// A result derived from dataset rows that covers every row resolves to nil:
// selecting everything is no restriction at all.
package resolve

import (
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

// Resolution describes how a resolution was reached.
type Resolution struct {
	// Identities is nil when the selection should be cleared.
	Identities *identity.Set
	// Strategy is the name of the tier that matched, empty when none ran.
	Strategy string
	// Covered is set when the matched rows covered the whole dataset.
	Covered bool
}

type options struct {
	strategies []Strategy
	builder    Builder
}

// Option configures a Resolver.
type Option func(*options)

// WithBuilder sets the host identity builder used by the Synthesize tier.
func WithBuilder(b Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithStrategies replaces the default tier list.
func WithStrategies(strategies ...Strategy) Option {
	return func(o *options) {
		o.strategies = strategies
	}
}

// Resolver is an ordered list of resolution strategies.
type Resolver struct {
	strategies []Strategy
}

// New creates a resolver with the default tiers.
func New(optFns ...Option) *Resolver {
	opts := options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	strategies := opts.strategies
	if strategies == nil {
		strategies = DefaultStrategies(opts.builder)
	}
	return &Resolver{strategies: strategies}
}

// DefaultStrategies returns the default tier order.
func DefaultStrategies(b Builder) []Strategy {
	return []Strategy{DirectTag{}, BatchTags{}, MetadataMatch{}, Synthesize{Builder: b}}
}

// Strategies returns the names of the configured tiers, in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Identities resolves data against ds. A nil set means "clear the selection";
// an empty set means nothing was resolved but state should be kept.
func (r *Resolver) Identities(ds *dataset.Dataset, data []datum.Document) *identity.Set {
	return r.Resolve(ds, data).Identities
}

// Resolve resolves data against ds and reports which tier matched.
func (r *Resolver) Resolve(ds *dataset.Dataset, data []datum.Document) Resolution {
	if len(data) == 0 {
		return Resolution{}
	}

	q := Query{Dataset: ds, Data: data}
	for _, s := range r.strategies {
		out, ok := s.Resolve(q)
		if !ok {
			continue
		}
		res := Resolution{Identities: out.Identities, Strategy: s.Name()}
		if out.Rows != nil && out.Rows.Cardinality() == ds.Len() {
			res.Identities = nil
			res.Covered = true
		}
		return res
	}
	return Resolution{}
}

// RowIdentities maps the row-index tag of every datum to its row identity,
// in order and deduplicated. Datums without a valid tag are skipped. The
// result is never nil.
func RowIdentities(ds *dataset.Dataset, data []datum.Document) *identity.Set {
	ids := identity.NewSet()
	for _, d := range data {
		idx, ok := d.RowIndex()
		if !ok {
			continue
		}
		if id, ok := ds.IdentityAt(idx); ok {
			ids.Add(id)
		}
	}
	return ids
}
