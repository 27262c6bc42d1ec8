package dataset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Source is the owner of the canonical dataset.
type Source interface {
	// Rows returns the processed rows of the current data-processing cycle.
	Rows(ctx context.Context) ([]Row, error)
	// Fields returns the field metadata of the current cycle.
	Fields(ctx context.Context) (Fields, error)
}

// StaticSource is a Source over fixed rows and fields.
type StaticSource struct {
	mu     sync.RWMutex
	rows   []Row
	fields Fields
}

// NewStaticSource creates a source holding rows and fields.
func NewStaticSource(rows []Row, fields Fields) *StaticSource {
	return &StaticSource{rows: rows, fields: fields}
}

// Set replaces the rows and fields served by the source.
func (s *StaticSource) Set(rows []Row, fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.fields = rows, fields
}

// Rows implements Source.
func (s *StaticSource) Rows(context.Context) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows, nil
}

// Fields implements Source.
func (s *StaticSource) Fields(context.Context) (Fields, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields, nil
}

// Registry holds the currently published dataset generation.
//
// Readers obtain the current generation with Current and keep using that
// value for the duration of one gesture; Refresh and Publish swap in a new
// generation atomically.
type Registry struct {
	source     Source
	current    atomic.Pointer[Dataset]
	generation atomic.Uint64
	mu         sync.Mutex // serializes publishers
}

// NewRegistry creates a registry bound to source. Nothing is published until
// Refresh or Publish is called; Current returns an empty dataset until then.
func NewRegistry(source Source) *Registry {
	r := &Registry{source: source}
	empty, _ := build(0, nil, nil)
	r.current.Store(empty)
	return r
}

// Current returns the published dataset. It never returns nil.
func (r *Registry) Current() *Dataset {
	return r.current.Load()
}

// Refresh reads rows and fields from the source and publishes them as a new
// generation.
func (r *Registry) Refresh(ctx context.Context) (*Dataset, error) {
	if r.source == nil {
		return nil, fmt.Errorf("dataset: registry has no source")
	}
	rows, err := r.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: read rows: %w", err)
	}
	fields, err := r.source.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: read fields: %w", err)
	}
	return r.Publish(rows, fields)
}

// Publish validates rows and publishes them as a new generation. The previous
// generation stays untouched for readers that still hold it.
func (r *Registry) Publish(rows []Row, fields Fields) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, err := build(r.generation.Load()+1, rows, fields)
	if err != nil {
		return nil, err
	}
	r.generation.Store(ds.generation)
	r.current.Store(ds)
	return ds, nil
}
