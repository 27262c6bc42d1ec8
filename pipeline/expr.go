package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/hupe1980/crossfilter/datum"
)

// RowVariable is the name under which the current row is exposed to filter
// expressions.
const RowVariable = "datum"

// strict-equality operators are accepted and evaluated as loose equality.
var operatorRewriter = strings.NewReplacer("===", "==", "!==", "!=")

// ExprOption configures an ExprEngine.
type ExprOption func(*ExprEngine)

// WithKnownFields declares fields that expressions may reference in addition
// to the keys present in the dataset values.
func WithKnownFields(fields ...string) ExprOption {
	return func(e *ExprEngine) {
		e.known = append(e.known, fields...)
	}
}

// WithFunction registers an additional expression function.
func WithFunction(name string, fn func(params ...any) (any, error), types ...any) ExprOption {
	return func(e *ExprEngine) {
		e.functions = append(e.functions, expr.Function(name, fn, types...))
	}
}

// ExprEngine is an Engine evaluating filter transforms with expr-lang/expr.
//
// Rows are exposed as the map variable datum. Expressions referencing a
// field that no row carries and that is not declared known fail to build.
type ExprEngine struct {
	known     []string
	functions []expr.Option
}

// NewExprEngine creates an engine.
func NewExprEngine(opts ...ExprOption) *ExprEngine {
	e := &ExprEngine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// fieldCollector records the datum fields an expression reads.
type fieldCollector struct {
	fields []string
}

func (c *fieldCollector) Visit(node *ast.Node) {
	m, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}
	id, ok := m.Node.(*ast.IdentifierNode)
	if !ok || id.Value != RowVariable {
		return
	}
	if s, ok := m.Property.(*ast.StringNode); ok {
		c.fields = append(c.fields, s.Value)
	}
}

func isValid(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("isValid expects 1 argument, got %d", len(params))
	}
	switch v := params[0].(type) {
	case nil:
		return false, nil
	case float64:
		return !math.IsNaN(v), nil
	default:
		return true, nil
	}
}

type compiledFilter struct {
	src  string
	prog *vm.Program
}

type compiledData struct {
	name    string
	values  []datum.Document
	filters []compiledFilter
}

// Build implements Engine.
func (e *ExprEngine) Build(def Definition) (Instance, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	inst := &exprInstance{datasets: make([]compiledData, 0, len(def.Data))}
	for _, data := range def.Data {
		known := e.knownFields(data.Values)

		cd := compiledData{name: data.Name, values: make([]datum.Document, len(data.Values))}
		for i, v := range data.Values {
			cd.values[i] = v.Clone()
		}

		for _, t := range data.Transform {
			src := strings.TrimSpace(t.Expr)
			if src == "" {
				continue
			}
			prog, err := e.compile(src, known)
			if err != nil {
				return nil, &Error{Op: "build", Dataset: data.Name, Expr: t.Expr, Err: err}
			}
			cd.filters = append(cd.filters, compiledFilter{src: t.Expr, prog: prog})
		}
		inst.datasets = append(inst.datasets, cd)
	}
	return inst, nil
}

func (e *ExprEngine) knownFields(values []datum.Document) map[string]struct{} {
	known := make(map[string]struct{}, len(e.known))
	for _, f := range e.known {
		known[f] = struct{}{}
	}
	for _, v := range values {
		for k := range v {
			known[k] = struct{}{}
		}
	}
	return known
}

func (e *ExprEngine) compile(src string, known map[string]struct{}) (*vm.Program, error) {
	collector := &fieldCollector{}

	options := []expr.Option{
		expr.Env(map[string]any{RowVariable: map[string]any{}}),
		expr.Function("isValid", isValid, new(func(any) bool)),
		expr.Patch(collector),
	}
	options = append(options, e.functions...)

	prog, err := expr.Compile(operatorRewriter.Replace(src), options...)
	if err != nil {
		return nil, err
	}

	if len(known) > 0 {
		var unknown []string
		for _, f := range collector.fields {
			if _, ok := known[f]; !ok {
				unknown = append(unknown, f)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, fmt.Errorf("unknown field %s", strings.Join(unknown, ", "))
		}
	}
	return prog, nil
}

type exprInstance struct {
	datasets []compiledData
	out      map[string][]datum.Document
}

// Run implements Instance.
func (in *exprInstance) Run(ctx context.Context) error {
	out := make(map[string][]datum.Document, len(in.datasets))
	for _, cd := range in.datasets {
		rows := cd.values
		for _, f := range cd.filters {
			kept := make([]datum.Document, 0, len(rows))
			for i, row := range rows {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				ok, err := evalFilter(f.prog, row)
				if err != nil {
					return &Error{Op: "run", Dataset: cd.name, Expr: f.src, Err: err}
				}
				if ok {
					kept = append(kept, row)
				}
			}
			rows = kept
		}
		out[cd.name] = rows
	}
	in.out = out
	return nil
}

func evalFilter(prog *vm.Program, row datum.Document) (bool, error) {
	res, err := expr.Run(prog, map[string]any{RowVariable: datum.DocumentToAny(row)})
	if err != nil {
		return false, err
	}
	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("expression evaluated to %T, want bool", res)
	}
	return b, nil
}

// Data implements Instance.
func (in *exprInstance) Data(name string) ([]datum.Document, error) {
	if in.out == nil {
		return nil, ErrNotRun
	}
	rows, ok := in.out[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	out := make([]datum.Document, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}
