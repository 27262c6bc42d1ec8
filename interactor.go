package crossfilter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/crossfilter/admission"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/export"
	"github.com/hupe1980/crossfilter/headless"
	"github.com/hupe1980/crossfilter/highlight"
	"github.com/hupe1980/crossfilter/i18n"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/resolve"
	"github.com/hupe1980/crossfilter/selection"
	"github.com/hupe1980/crossfilter/tooltip"
)

// InteractionGate is implemented by hosts that can refuse interactions, for
// example while the host is in a read-only view. Hosts without it always
// allow interactions.
type InteractionGate interface {
	AllowInteractions() bool
}

// Interactor binds one visual instance to its dataset registry and host.
//
// Interaction events are expected to be delivered one at a time; each is
// handled through commit dispatch before Handle returns. Commits complete
// asynchronously and are reported on Result.Ack.
type Interactor struct {
	registry *dataset.Registry
	host     selection.Host

	settings  config.Settings
	localizer *i18n.Localizer
	logger    *Logger
	metrics   MetricsCollector

	resolver   *resolve.Resolver
	evaluator  *headless.Evaluator
	admission  *admission.Controller
	machine    *selection.Machine
	reconciler *tooltip.Reconciler
	tooltips   *tooltip.Dispatcher // nil without a tooltip service
}

// New creates an interactor for registry and host. host may be nil for
// read-only use (tooltips and statuses); selection gestures then fail with
// ErrNoHost.
func New(registry *dataset.Registry, host selection.Host, optFns ...Option) (*Interactor, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.settings.Validate(); err != nil {
		return nil, err
	}

	localizer := opts.localizer
	if localizer == nil {
		l, err := i18n.New(opts.settings.Locale)
		if err != nil {
			return nil, err
		}
		localizer = l
	}

	limits := opts.limits
	if limits.Default == 0 {
		limits.Default = opts.settings.SelectionMaxDataPoints
	}

	resolverOpts := []resolve.Option{resolve.WithBuilder(opts.builder)}
	if opts.strategies != nil {
		resolverOpts = append(resolverOpts, resolve.WithStrategies(opts.strategies...))
	}

	i := &Interactor{
		registry:  registry,
		host:      host,
		settings:  opts.settings,
		localizer: localizer,
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
		resolver:  resolve.New(resolverOpts...),
		evaluator: headless.New(opts.engine),
		admission: admission.NewController(admission.Config{
			Limits:         limits,
			NoticeInterval: opts.noticeInterval,
		}, opts.onAbort),
		reconciler: tooltip.NewReconciler(
			tooltip.WithNumberFormat(opts.settings.Features.TooltipResolveNumberFieldFormat),
			tooltip.WithLocalizer(localizer),
		),
	}
	i.machine = selection.NewMachine(host, selection.WithCommitHook(i.committed))
	if opts.tooltips != nil {
		i.tooltips = tooltip.NewDispatcher(opts.tooltips, opts.settings.TooltipDelay())
	}

	if ds := registry.Current(); ds != nil && host != nil {
		i.machine.Sync(ds)
	}
	return i, nil
}

func (i *Interactor) committed(c selection.Commit) {
	i.metrics.RecordCommit(c.Cleared, c.Err)
	if c.Err != nil {
		c.Err = &ErrCommitFailed{Identities: c.Next.Len(), Cleared: c.Cleared, cause: c.Err}
	}
	i.logger.LogCommit(context.Background(), c.Next.Len(), c.Cleared, c.Err)
}

// Settings returns the interactivity settings.
func (i *Interactor) Settings() config.Settings {
	return i.settings
}

func (i *Interactor) allowInteractions() bool {
	if i.host == nil {
		return false
	}
	if g, ok := i.host.(InteractionGate); ok {
		return g.AllowInteractions()
	}
	return true
}

// SelectionEnabled reports whether data point selection is on and the host
// currently allows interactions.
func (i *Interactor) SelectionEnabled() bool {
	return i.settings.EnableSelection && i.settings.Features.SelectionDataPoint && i.allowInteractions()
}

// ContextMenuEnabled reports whether the context menu may carry a data
// point identity.
func (i *Interactor) ContextMenuEnabled() bool {
	return i.settings.EnableContextMenu && i.settings.Features.SelectionContextMenu && i.allowInteractions()
}

// TooltipsEnabled reports whether tooltip events are handled.
func (i *Interactor) TooltipsEnabled() bool {
	return i.tooltips != nil && i.settings.EnableTooltips && i.settings.Features.TooltipHandler
}

// DefaultCrossFilterOptions returns the options used when an event carries
// none: the configured selection mode with the default limit.
func (i *Interactor) DefaultCrossFilterOptions() *CrossFilterOptions {
	return &CrossFilterOptions{Mode: Mode(i.settings.SelectionMode)}
}

// HandleInteractionEvent resolves the item of a selection gesture, checks
// the selection limit and dispatches the merged selection to the host.
//
// Recoverable failures are reported in the result rather than as errors: a
// rejected gesture sets Aborted and Limit, a failing cross-filter expression
// sets Warning. When selection is disabled the result is empty and nothing
// is dispatched.
func (i *Interactor) HandleInteractionEvent(ctx context.Context, ev Event, item *datum.Item, opts *CrossFilterOptions) (Result, error) {
	if !i.SelectionEnabled() {
		return Result{Identities: identity.NewSet()}, nil
	}
	start := time.Now()
	res, err := i.handleSelection(ctx, ev, item, opts)
	i.metrics.RecordInteraction(time.Since(start), err)
	return res, err
}

func (i *Interactor) handleSelection(ctx context.Context, ev Event, item *datum.Item, opts *CrossFilterOptions) (Result, error) {
	ds := i.registry.Current()
	if ds == nil {
		return Result{}, ErrNoDataset
	}
	if opts == nil {
		opts = i.DefaultCrossFilterOptions()
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	if i.tooltips != nil {
		i.tooltips.Hide()
	}

	mode := ModeSimple
	if opts.Advanced() {
		mode = ModeAdvanced
	}
	log := i.logger.WithGeneration(ds.Generation()).WithMode(mode)
	multi := opts.IsMultiSelect(ev.Modifiers)
	limit := i.admission.Limits().Resolve(opts.Limit, opts.Advanced())

	var strategy string
	gesture := selection.Gesture{
		Dataset: ds,
		Multi:   multi,
		Resolve: func(ctx context.Context) (*identity.Set, error) {
			if opts.Advanced() {
				return i.evaluate(ctx, log, opts.FilterExpr, ds, item)
			}
			data := datum.Normalize(item)
			r := i.resolver.Resolve(ds, data)
			strategy = r.Strategy
			log.LogResolve(ctx, r.Strategy, len(data), r.Identities.Len())
			i.metrics.RecordResolve(r.Strategy, r.Identities.Len())
			return clearIfEmpty(r.Identities), nil
		},
		Admit: func(candidates, existing int, multi bool) bool {
			ok := i.admission.Check(candidates, existing, multi, limit)
			i.metrics.RecordAdmission(ok)
			if !ok {
				log.LogAbort(ctx, candidates, existing, limit)
			}
			return ok
		},
	}

	out, err := i.machine.Handle(ctx, gesture)
	if err != nil {
		var exprErr *headless.ExpressionError
		if errors.As(err, &exprErr) {
			return Result{
				Identities: identity.NewSet(),
				Warning:    i.localizer.Text(i18n.WarningCrossFilterGeneral, exprErr.Error()),
				Limit:      limit,
			}, nil
		}
		return Result{}, fmt.Errorf("crossfilter: %w", err)
	}
	if out.Candidates == nil {
		// A cleared gesture resets the abort status like an admitted one.
		i.admission.Reset()
	}

	if out.Rejected {
		return Result{
			Identities: ds.Prune(i.host.Current()),
			Aborted:    true,
			Limit:      limit,
			Strategy:   strategy,
		}, nil
	}
	return Result{Identities: out.Next, Limit: limit, Strategy: strategy, Ack: out.Ack}, nil
}

func (i *Interactor) evaluate(ctx context.Context, log *Logger, expr string, ds *dataset.Dataset, item *datum.Item) (*identity.Set, error) {
	var origin datum.Document
	if item != nil {
		origin = item.Datum
	}
	start := time.Now()
	ids, err := i.evaluator.Evaluate(ctx, expr, ds, origin)
	i.metrics.RecordEvaluate(time.Since(start), err)
	log.LogEvaluate(ctx, expr, ids.Len(), err)
	if err != nil {
		return nil, err
	}
	return clearIfEmpty(ids), nil
}

// clearIfEmpty maps an empty resolution to nil: nothing matched clears the
// selection.
func clearIfEmpty(ids *identity.Set) *identity.Set {
	if ids.IsEmpty() {
		return nil
	}
	return ids
}

// HandleContextMenu opens the host context menu at the event position. The
// menu carries the item's identity only when the context menu is enabled
// and the item resolves to exactly one identity.
func (i *Interactor) HandleContextMenu(ctx context.Context, ev Event, item *datum.Item) error {
	if i.host == nil {
		return ErrNoHost
	}
	var id identity.Identity
	if i.ContextMenuEnabled() {
		if ds := i.registry.Current(); ds != nil {
			if ids := i.resolver.Identities(ds, datum.Normalize(item)); ids.Len() == 1 {
				id = ids.Slice()[0]
			}
		}
	}
	if err := i.host.ShowContextMenu(ctx, id, ev.Point); err != nil {
		return fmt.Errorf("crossfilter: context menu: %w", err)
	}
	return nil
}

// HandleTooltip shows the item's tooltip for mouseover and mousemove events
// and hides it for any other event or when the item carries no tooltip. While
// ctrl is held the tooltip shows after the configured delay; a later event
// supersedes a pending show.
func (i *Interactor) HandleTooltip(ev Event, item *datum.Item) {
	if !i.TooltipsEnabled() {
		return
	}
	if item == nil || !item.Tooltip.IsValid() || item.Tooltip.IsNull() {
		i.tooltips.Hide()
		return
	}
	opts := tooltip.ShowOptions{
		Coordinates: tooltip.Point(ev.Point),
		Items:       i.TooltipItems(item.Tooltip),
		Identities:  identity.NewSet(),
	}
	if ds := i.registry.Current(); ds != nil {
		if ids := i.resolver.Identities(ds, datum.Normalize(item)); ids != nil {
			opts.Identities = ids
		}
	}
	i.metrics.RecordTooltip(len(opts.Items))
	i.tooltips.Dispatch(ev.Type, ev.Modifiers.Ctrl, opts)
}

// TooltipItems returns the display items of a tooltip payload, formatted
// against the fields of the current dataset.
func (i *Interactor) TooltipItems(v datum.Value) []tooltip.DisplayItem {
	var fields dataset.Fields
	if ds := i.registry.Current(); ds != nil {
		fields = ds.Fields()
	}
	return i.reconciler.Items(v, fields)
}

// Refresh republishes the dataset from the registry source and re-reads the
// host selection against it.
func (i *Interactor) Refresh(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := i.registry.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if i.host != nil {
		i.machine.Sync(ds)
	}
	return ds, nil
}

// Selection returns the last host-confirmed selection.
func (i *Interactor) Selection() *identity.Set {
	return i.machine.Snapshot()
}

// Statuses returns the selection status of every row of the current
// dataset, in row order.
func (i *Interactor) Statuses() []selection.Status {
	ds := i.registry.Current()
	if ds == nil {
		return nil
	}
	return i.machine.Statuses(ds)
}

// Values returns the rows of the current dataset as the rendering engine
// sees them, tagged with their selection status. When highlighting is
// enabled and the dataset carries highlight values, highlight status and
// comparator fields are added.
func (i *Interactor) Values() []datum.Document {
	ds := i.registry.Current()
	if ds == nil {
		return nil
	}
	statuses := i.machine.Statuses(ds)
	rows := ds.Rows()
	out := make([]datum.Document, len(rows))
	for n, r := range rows {
		out[n] = r.Datum()
	}

	fields := ds.Fields()
	active := i.settings.EnableHighlight && highlight.Active(out, fields)
	for n, d := range out {
		if i.settings.EnableHighlight {
			d = highlight.Derive(d, fields, active)
		}
		d[datum.SelectedKey] = datum.String(statuses[n].String())
		out[n] = d
	}
	return out
}

// Snapshot captures the current dataset with selection statuses and the
// interactivity settings, ready for export.
func (i *Interactor) Snapshot() (*export.Snapshot, error) {
	ds := i.registry.Current()
	if ds == nil {
		return nil, ErrNoDataset
	}
	snap := export.FromDataset(ds, i.machine.Statuses(ds))
	snap.Interactivity = export.Interactivity{
		Tooltip:        i.settings.EnableTooltips,
		ContextMenu:    i.settings.EnableContextMenu,
		Selection:      i.settings.EnableSelection,
		Highlight:      i.settings.EnableHighlight,
		DataPointLimit: i.settings.SelectionMaxDataPoints,
	}
	return snap, nil
}

// AbortStatus returns the abort status of the last gesture.
func (i *Interactor) AbortStatus() admission.Abort {
	return i.admission.Status()
}

// ResetAbort clears the abort status.
func (i *Interactor) ResetAbort() {
	i.admission.Reset()
}

// Wait blocks until every dispatched commit has been acknowledged.
func (i *Interactor) Wait() {
	i.machine.Wait()
}

// Close cancels a pending tooltip and waits for outstanding commits.
func (i *Interactor) Close() error {
	if i.tooltips != nil {
		i.tooltips.Stop()
	}
	i.machine.Wait()
	return nil
}
