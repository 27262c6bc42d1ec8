// Package headless evaluates advanced cross-filter expressions against the
// complete dataset in an isolated, non-rendering pipeline instance.
package headless

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/pipeline"
	"github.com/hupe1980/crossfilter/resolve"
)

// DatasetName is the name of the single dataset of the headless pipeline.
const DatasetName = "cross-filter"

// ExpressionError is a filter expression or pipeline construction failure.
// It is recoverable: callers turn it into a user-facing warning.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("cross-filter expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// EngineFactory builds the pipeline engine for one evaluation. fields are
// the field names of the dataset being evaluated.
type EngineFactory func(fields []string) pipeline.Engine

// DefaultEngine builds an expression engine that knows the dataset fields and
// the row-index tag.
func DefaultEngine(fields []string) pipeline.Engine {
	known := append([]string{datum.RowKey}, fields...)
	return pipeline.NewExprEngine(pipeline.WithKnownFields(known...))
}

// Evaluator runs headless cross-filter evaluations.
type Evaluator struct {
	engine EngineFactory
}

// New creates an evaluator. A nil factory selects DefaultEngine.
func New(factory EngineFactory) *Evaluator {
	if factory == nil {
		factory = DefaultEngine
	}
	return &Evaluator{engine: factory}
}

// Evaluate filters every row of ds with filterExpr and returns the identities
// of the rows kept, in row order. origin is the datum of the originating
// event and feeds token substitution; it may be nil.
//
// An empty expression keeps every row. Expression and construction failures
// are returned as *ExpressionError; any other error is returned as is.
func (e *Evaluator) Evaluate(ctx context.Context, filterExpr string, ds *dataset.Dataset, origin datum.Document) (*identity.Set, error) {
	src := Substitute(filterExpr, origin)

	data := pipeline.Data{Name: DatasetName, Values: rowsOf(ds)}
	if strings.TrimSpace(src) != "" {
		data.Transform = []pipeline.Transform{{Type: pipeline.TransformFilter, Expr: src}}
	}

	inst, err := e.engine(ds.Fields().Names()).Build(pipeline.Definition{Data: []pipeline.Data{data}})
	if err != nil {
		return nil, classify(src, err)
	}
	if err := inst.Run(ctx); err != nil {
		return nil, classify(src, err)
	}
	rows, err := inst.Data(DatasetName)
	if err != nil {
		return nil, err
	}
	return resolve.RowIdentities(ds, rows), nil
}

// rowsOf returns the rows as engine values: field values plus the row-index
// tag. Identity tokens stay out of the pipeline.
func rowsOf(ds *dataset.Dataset) []datum.Document {
	rows := ds.Rows()
	out := make([]datum.Document, len(rows))
	for i, r := range rows {
		d := r.Datum()
		delete(d, datum.IdentityKey)
		out[i] = d
	}
	return out
}

func classify(src string, err error) error {
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		return &ExpressionError{Expr: src, Err: err}
	}
	return err
}

var tokenPattern = regexp.MustCompile(`_\{([^{}]+)\}_`)

// Substitute replaces every _{field}_ token of filterExpr with the literal
// value of field in origin. Tokens naming a field origin does not carry are
// left untouched, so the expression fails to compile.
func Substitute(filterExpr string, origin datum.Document) string {
	if len(origin) == 0 || !strings.Contains(filterExpr, "_{") {
		return filterExpr
	}
	return tokenPattern.ReplaceAllStringFunc(filterExpr, func(tok string) string {
		field := tokenPattern.FindStringSubmatch(tok)[1]
		v, ok := origin[field]
		if !ok {
			return tok
		}
		return Literal(v)
	})
}

// Literal renders v as an expression literal.
func Literal(v datum.Value) string {
	switch v.Kind {
	case datum.KindString:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v.StringValue()) + "'"
	case datum.KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return "nil"
		}
		return v.Text()
	case datum.KindInt, datum.KindBool:
		return v.Text()
	case datum.KindTime:
		// Rows carry times as time.Time, which compare against date().
		return `date("` + v.T.UTC().Format(time.RFC3339Nano) + `")`
	default:
		return "nil"
	}
}
