// Package pipeline defines minimal, non-rendering pipeline definitions and
// the engine that executes them.
//
// A Definition holds named datasets, each with inline values and an ordered
// list of transforms. Instances are private to the caller: values are copied
// in on Build and out on Data, so running an instance can never observe or
// mutate the documents it was built from.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/crossfilter/datum"
)

// TransformFilter keeps the rows for which Expr evaluates to true.
const TransformFilter = "filter"

// Definition is a pipeline definition.
type Definition struct {
	Data []Data
}

// Data is one named dataset of a definition.
type Data struct {
	Name      string
	Values    []datum.Document
	Transform []Transform
}

// Transform is one transform step.
type Transform struct {
	Type string
	Expr string
}

// Engine builds pipeline instances.
type Engine interface {
	Build(def Definition) (Instance, error)
}

// Instance is a built pipeline.
type Instance interface {
	// Run executes every dataset to completion.
	Run(ctx context.Context) error
	// Data returns the output rows of the named dataset after Run.
	Data(name string) ([]datum.Document, error)
}

var (
	// ErrNotRun is returned by Data before Run has completed.
	ErrNotRun = errors.New("pipeline: instance has not run")
	// ErrUnknownDataset is returned by Data for a name not in the definition.
	ErrUnknownDataset = errors.New("pipeline: unknown dataset")
)

// Error is a definition or expression error: a malformed definition, an
// expression that does not compile, references an unknown field, or does not
// evaluate to a boolean.
type Error struct {
	// Op is "build" or "run".
	Op string
	// Dataset is the dataset the error belongs to.
	Dataset string
	// Expr is the offending expression, if any.
	Expr string
	Err  error
}

func (e *Error) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("pipeline %s %q: expression %q: %v", e.Op, e.Dataset, e.Expr, e.Err)
	}
	return fmt.Sprintf("pipeline %s %q: %v", e.Op, e.Dataset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validate checks dataset names and transform types.
func (d Definition) Validate() error {
	seen := make(map[string]struct{}, len(d.Data))
	for _, data := range d.Data {
		if data.Name == "" {
			return &Error{Op: "build", Err: errors.New("dataset has no name")}
		}
		if _, ok := seen[data.Name]; ok {
			return &Error{Op: "build", Dataset: data.Name, Err: errors.New("duplicate dataset")}
		}
		seen[data.Name] = struct{}{}

		for _, t := range data.Transform {
			if t.Type != TransformFilter {
				return &Error{Op: "build", Dataset: data.Name, Err: fmt.Errorf("unsupported transform %q", t.Type)}
			}
		}
	}
	return nil
}
