package crossfilter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/admission"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/selection"
	"github.com/hupe1980/crossfilter/testutil"
	"github.com/hupe1980/crossfilter/tooltip"
)

var (
	click     = Event{Type: "click", Point: selection.Point{X: 10, Y: 20}}
	ctrlClick = Event{Type: "click", Modifiers: Modifiers{Ctrl: true}}
)

func enabled(mutate ...func(*config.Settings)) config.Settings {
	s := config.Default()
	s.EnableSelection = true
	for _, fn := range mutate {
		fn(&s)
	}
	return s
}

func newInteractor(t *testing.T, host *testutil.Host, opts ...Option) *Interactor {
	t.Helper()
	opts = append([]Option{WithSettings(enabled())}, opts...)
	i, err := New(testutil.Registry(t), host, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = i.Close() })
	return i
}

func item(d datum.Document) *datum.Item {
	return &datum.Item{Datum: d}
}

func commit(t *testing.T, res Result) {
	t.Helper()
	require.NotNil(t, res.Ack)
	require.NoError(t, <-res.Ack)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, testutil.NewHost())
	assert.ErrorIs(t, err, ErrNoRegistry)

	bad := config.Default()
	bad.SelectionMode = "expert"
	_, err = New(testutil.Registry(t), testutil.NewHost(), WithSettings(bad))
	assert.Error(t, err)

	bad = config.Default()
	bad.Locale = "not a locale!"
	_, err = New(testutil.Registry(t), testutil.NewHost(), WithSettings(bad))
	assert.Error(t, err)
}

func TestHandleInteractionEvent_ResolvesColumnMatch(t *testing.T) {
	host := testutil.NewHost()
	i := newInteractor(t, host)

	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"cat": datum.String("y")}), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.Identities.Keys())
	assert.Equal(t, "metadata-match", res.Strategy)
	assert.Equal(t, 50, res.Limit)
	assert.False(t, res.Aborted)
	assert.Empty(t, res.Warning)

	commit(t, res)
	assert.Equal(t, []string{"B"}, host.Current().Keys())
	assert.Equal(t, []string{"B"}, i.Selection().Keys())
}

func TestHandleInteractionEvent_MultiSelectToggles(t *testing.T) {
	host := testutil.NewHost("A")
	i := newInteractor(t, host)

	res, err := i.HandleInteractionEvent(context.Background(), ctrlClick, testutil.Facet(testutil.RowTags(0, 1)...), nil)
	require.NoError(t, err)
	assert.Equal(t, "batch-tags", res.Strategy)
	assert.Equal(t, []string{"B"}, res.Identities.Keys())

	commit(t, res)
	assert.Equal(t, []string{"B"}, host.Current().Keys())
	assert.False(t, host.LastMulti())
}

func TestHandleInteractionEvent_SingleSelectDeselects(t *testing.T) {
	host := testutil.NewHost()
	i := newInteractor(t, host)
	ctx := context.Background()
	y := item(datum.Document{"cat": datum.String("y")})

	res, err := i.HandleInteractionEvent(ctx, click, y, nil)
	require.NoError(t, err)
	commit(t, res)

	res, err = i.HandleInteractionEvent(ctx, click, y, nil)
	require.NoError(t, err)
	assert.True(t, res.Identities.IsEmpty())
	commit(t, res)

	assert.True(t, host.Current().IsEmpty())
	assert.Equal(t, 1, host.Clears())
}

func TestHandleInteractionEvent_UnresolvedClears(t *testing.T) {
	host := testutil.NewHost("A")
	i := newInteractor(t, host)

	res, err := i.HandleInteractionEvent(context.Background(), ctrlClick, item(datum.Document{"cat": datum.String("nope")}), nil)
	require.NoError(t, err)
	commit(t, res)

	assert.True(t, res.Identities.IsEmpty())
	assert.Equal(t, 1, host.Clears())
	assert.Equal(t, 0, host.Selects())
}

func TestHandleInteractionEvent_LimitExceeded(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewHost()
	host.SetSelection(testutil.RowKeys(0, 48))

	var (
		mu     sync.Mutex
		aborts []admission.Abort
	)
	metrics := &BasicMetricsCollector{}
	i, err := New(
		testutil.RegistryOf(t, testutil.NumberedRows(60), testutil.NumberedFields()),
		host,
		WithSettings(enabled()),
		WithMetrics(metrics),
		WithAbortHandler(func(a admission.Abort) {
			mu.Lock()
			defer mu.Unlock()
			aborts = append(aborts, a)
		}),
	)
	require.NoError(t, err)

	res, err := i.HandleInteractionEvent(ctx, ctrlClick, testutil.Facet(testutil.RowTags(48, 49, 50, 51, 52)...), nil)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, 50, res.Limit)
	assert.Nil(t, res.Ack)
	assert.Equal(t, 48, res.Identities.Len())

	assert.Equal(t, admission.Abort{Status: true, Limit: 50}, i.AbortStatus())
	assert.Equal(t, 0, host.Selects())
	assert.True(t, testutil.RowKeys(0, 48).Equal(host.Current()))
	assert.Equal(t, int64(1), metrics.GetStats().Rejected)

	// Exactly at the limit is admitted and clears the abort status.
	res, err = i.HandleInteractionEvent(ctx, ctrlClick, testutil.Facet(testutil.RowTags(48, 49)...), nil)
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	commit(t, res)
	assert.Equal(t, 50, host.Current().Len())
	assert.Equal(t, admission.Abort{}, i.AbortStatus())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []admission.Abort{{Status: true, Limit: 50}, {}}, aborts)
}

func TestHandleInteractionEvent_LimitOverride(t *testing.T) {
	host := testutil.NewHost()
	i := newInteractor(t, host)

	res, err := i.HandleInteractionEvent(context.Background(), click, testutil.Facet(testutil.RowTags(0, 1)...), &CrossFilterOptions{Limit: 1})
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, 1, res.Limit)
}

func TestHandleInteractionEvent_ConfiguredLimit(t *testing.T) {
	ctx := context.Background()
	settings := enabled(func(s *config.Settings) { s.SelectionMaxDataPoints = 3 })
	reg := testutil.RegistryOf(t, testutil.NumberedRows(10), testutil.NumberedFields())

	i, err := New(reg, testutil.NewHost(), WithSettings(settings))
	require.NoError(t, err)
	defer i.Close()

	res, err := i.HandleInteractionEvent(ctx, click, testutil.Facet(testutil.RowTags(0, 1, 2, 3, 4)...), nil)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, 3, res.Limit)

	// Explicit limits win over the setting.
	limits := admission.DefaultLimits()
	limits.Default = 8
	j, err := New(reg, testutil.NewHost(), WithSettings(settings), WithLimits(limits))
	require.NoError(t, err)
	defer j.Close()

	res, err = j.HandleInteractionEvent(ctx, click, testutil.Facet(testutil.RowTags(0, 1, 2, 3, 4)...), nil)
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	assert.Equal(t, 8, res.Limit)
	commit(t, res)
}

func TestNew_IgnoresInvalidEnvironmentWithSettings(t *testing.T) {
	t.Setenv("XFILTER_SELECTIONMODE", "bogus")

	assert.NotPanics(t, func() {
		i, err := New(testutil.Registry(t), testutil.NewHost(), WithSettings(enabled()))
		require.NoError(t, err)
		_ = i.Close()
	})
	assert.NotPanics(t, func() {
		i, err := New(testutil.Registry(t), testutil.NewHost())
		require.NoError(t, err)
		_ = i.Close()
	})
}

func TestHandleInteractionEvent_Advanced(t *testing.T) {
	host := testutil.NewHost()
	i := newInteractor(t, host)

	opts := &CrossFilterOptions{Mode: ModeAdvanced, FilterExpr: "datum.val >= _{val}_"}
	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"val": datum.Int(20)}), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, res.Identities.Keys())
	assert.Empty(t, res.Strategy)
	commit(t, res)
	assert.Equal(t, []string{"B", "C"}, host.Current().Keys())
}

func TestHandleInteractionEvent_AdvancedMultiSelectKeys(t *testing.T) {
	host := testutil.NewHost("A")
	i := newInteractor(t, host)
	opts := &CrossFilterOptions{Mode: ModeAdvanced, FilterExpr: "datum.cat == 'y'", MultiSelect: []ModifierKey{KeyAlt}}

	// ctrl is not a configured key: the gesture replaces.
	res, err := i.HandleInteractionEvent(context.Background(), ctrlClick, nil, opts)
	require.NoError(t, err)
	commit(t, res)
	assert.Equal(t, []string{"B"}, host.Current().Keys())

	res, err = i.HandleInteractionEvent(context.Background(), Event{Type: "click", Modifiers: Modifiers{Alt: true}}, nil, &CrossFilterOptions{Mode: ModeAdvanced, FilterExpr: "datum.cat == 'z'", MultiSelect: []ModifierKey{KeyAlt}})
	require.NoError(t, err)
	commit(t, res)
	assert.ElementsMatch(t, []string{"B", "C"}, host.Current().Keys())
}

func TestHandleInteractionEvent_ExpressionWarning(t *testing.T) {
	host := testutil.NewHost("A")
	metrics := &BasicMetricsCollector{}
	i := newInteractor(t, host, WithMetrics(metrics))

	opts := &CrossFilterOptions{Mode: ModeAdvanced, FilterExpr: "datum.nonexistent == 1"}
	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"cat": datum.String("x")}), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Identities)
	assert.True(t, res.Identities.IsEmpty())
	assert.NotEmpty(t, res.Warning)
	assert.Contains(t, res.Warning, "The cross-filter could not be applied")
	assert.Nil(t, res.Ack)

	assert.Equal(t, []string{"A"}, host.Current().Keys())
	assert.Equal(t, 0, host.Selects()+host.Clears())
	assert.Equal(t, int64(1), metrics.GetStats().EvaluateErrors)
}

func TestHandleInteractionEvent_Gated(t *testing.T) {
	ctx := context.Background()
	y := item(datum.Document{"cat": datum.String("y")})

	tests := []struct {
		name  string
		setup func(*config.Settings, *testutil.Host)
	}{
		{"selection disabled", func(s *config.Settings, _ *testutil.Host) { s.EnableSelection = false }},
		{"feature off", func(s *config.Settings, _ *testutil.Host) { s.Features.SelectionDataPoint = false }},
		{"host blocks interactions", func(_ *config.Settings, h *testutil.Host) { h.BlockInteractions(true) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := testutil.NewHost()
			s := enabled()
			tt.setup(&s, host)
			i := newInteractor(t, host, WithSettings(s))

			res, err := i.HandleInteractionEvent(ctx, click, y, nil)
			require.NoError(t, err)
			assert.True(t, res.Identities.IsEmpty())
			assert.Nil(t, res.Ack)
			assert.Equal(t, 0, host.Selects())
		})
	}
}

func TestHandleInteractionEvent_InvalidOptions(t *testing.T) {
	i := newInteractor(t, testutil.NewHost())

	_, err := i.HandleInteractionEvent(context.Background(), click, nil, &CrossFilterOptions{Mode: "expert"})
	var invalid *ErrInvalidOptions
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "mode", invalid.Field)
}

func TestHandleInteractionEvent_CommitFailureKeepsSelection(t *testing.T) {
	host := testutil.NewHost("A")
	metrics := &BasicMetricsCollector{}
	i := newInteractor(t, host, WithMetrics(metrics))
	host.FailWith(errors.New("host rejected"))

	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"cat": datum.String("y")}), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Ack)
	assert.Error(t, <-res.Ack)

	i.Wait()
	assert.Equal(t, []string{"A"}, i.Selection().Keys())
	assert.Equal(t, int64(1), metrics.GetStats().CommitErrors)
}

func TestHandleInteractionEvent_HidesTooltip(t *testing.T) {
	svc := &testutil.TooltipService{}
	i := newInteractor(t, testutil.NewHost(), WithTooltipService(svc))

	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"cat": datum.String("y")}), nil)
	require.NoError(t, err)
	commit(t, res)
	assert.Equal(t, 1, svc.Hides())
}

func TestHandleContextMenu(t *testing.T) {
	ctx := context.Background()
	at := selection.Point{X: 3, Y: 4}
	ev := Event{Type: "contextmenu", Point: at}

	host := testutil.NewHost()
	i := newInteractor(t, host)

	require.NoError(t, i.HandleContextMenu(ctx, ev, item(datum.Document{"cat": datum.String("y")})))
	require.NoError(t, i.HandleContextMenu(ctx, ev, testutil.Facet(testutil.RowTags(0, 1)...)))
	require.NoError(t, i.HandleContextMenu(ctx, ev, nil))

	calls := host.ContextMenus()
	require.Len(t, calls, 3)
	require.NotNil(t, calls[0].Identity)
	assert.Equal(t, "B", calls[0].Identity.Key())
	assert.Nil(t, calls[1].Identity, "more than one identity")
	assert.Nil(t, calls[2].Identity)
	for _, c := range calls {
		assert.Equal(t, at, c.At)
	}

	disabled := testutil.NewHost()
	i = newInteractor(t, disabled, WithSettings(enabled(func(s *config.Settings) { s.EnableContextMenu = false })))
	require.NoError(t, i.HandleContextMenu(ctx, ev, item(datum.Document{"cat": datum.String("y")})))
	require.Len(t, disabled.ContextMenus(), 1)
	assert.Nil(t, disabled.ContextMenus()[0].Identity)
	assert.Equal(t, at, disabled.ContextMenus()[0].At)
}

func TestHandleContextMenu_NoHost(t *testing.T) {
	i, err := New(testutil.Registry(t), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, i.HandleContextMenu(context.Background(), click, nil), ErrNoHost)
}

func TestHandleTooltip(t *testing.T) {
	svc := &testutil.TooltipService{}
	i := newInteractor(t, testutil.NewHost(), WithTooltipService(svc))

	it := &datum.Item{
		Datum:   datum.Document{"cat": datum.String("y")},
		Tooltip: datum.Map(datum.Document{"val": datum.Float(1234.5), "cat": datum.String("y")}),
	}
	i.HandleTooltip(Event{Type: "mouseover", Point: selection.Point{X: 1, Y: 2}}, it)

	shown := svc.Shown()
	require.Len(t, shown, 1)
	assert.Equal(t, tooltip.Point{X: 1, Y: 2}, shown[0].Coordinates)
	assert.Equal(t, []tooltip.DisplayItem{
		{DisplayName: "cat", Value: "y"},
		{DisplayName: "val", Value: "1,234.50"},
	}, shown[0].Items)
	assert.Equal(t, []string{"B"}, shown[0].Identities.Keys())

	i.HandleTooltip(Event{Type: "mouseout"}, it)
	assert.Equal(t, 1, svc.Hides())
}

func TestHandleTooltip_NoPayloadHides(t *testing.T) {
	svc := &testutil.TooltipService{}
	i := newInteractor(t, testutil.NewHost(), WithTooltipService(svc))
	over := Event{Type: "mouseover"}

	i.HandleTooltip(over, nil)
	i.HandleTooltip(over, &datum.Item{Datum: datum.Document{"cat": datum.String("y")}})
	i.HandleTooltip(over, &datum.Item{Tooltip: datum.Null()})

	assert.Empty(t, svc.Shown())
	assert.Equal(t, 3, svc.Hides())
}

func TestHandleTooltip_Disabled(t *testing.T) {
	svc := &testutil.TooltipService{}
	i := newInteractor(t, testutil.NewHost(), WithTooltipService(svc), WithSettings(enabled(func(s *config.Settings) {
		s.EnableTooltips = false
	})))

	i.HandleTooltip(Event{Type: "mouseover"}, &datum.Item{Tooltip: datum.String("x")})
	assert.Empty(t, svc.Shown())
	assert.Equal(t, 0, svc.Hides())
}

func TestTooltipItems(t *testing.T) {
	i := newInteractor(t, testutil.NewHost())

	assert.Equal(t, []tooltip.DisplayItem{{DisplayName: tooltip.ScalarName, Value: "42"}}, i.TooltipItems(datum.Int(42)))

	items := i.TooltipItems(datum.Map(datum.Document{datum.SelectedKey: datum.String("on")}))
	require.Len(t, items, 1)
	assert.Equal(t, "[Present]", items[0].Value)
}

func TestStatusesAndValues(t *testing.T) {
	host := testutil.NewHost()
	i := newInteractor(t, host)

	for _, s := range i.Statuses() {
		assert.Equal(t, selection.StatusNeutral, s)
	}

	res, err := i.HandleInteractionEvent(context.Background(), click, item(datum.Document{"cat": datum.String("y")}), nil)
	require.NoError(t, err)
	commit(t, res)
	i.Wait()

	assert.Equal(t, []selection.Status{selection.StatusOff, selection.StatusOn, selection.StatusOff}, i.Statuses())

	values := i.Values()
	require.Len(t, values, 3)
	assert.Equal(t, datum.String("on"), values[1][datum.SelectedKey])
	assert.Equal(t, datum.String("off"), values[0][datum.SelectedKey])

	snap, err := i.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "on", snap.Rows[1].Selected)
	assert.True(t, snap.Interactivity.Selection)
	assert.Equal(t, 50, snap.Interactivity.DataPointLimit)
}

func TestValues_Highlight(t *testing.T) {
	rows := testutil.Rows()
	rows[0].Values["val__highlight"] = datum.Int(5)
	reg := testutil.RegistryOf(t, rows, testutil.Fields())

	i, err := New(reg, testutil.NewHost(), WithSettings(enabled(func(s *config.Settings) { s.EnableHighlight = true })))
	require.NoError(t, err)

	values := i.Values()
	assert.Equal(t, datum.String("lt"), values[0]["val__highlightComparator"])
	assert.Equal(t, datum.String("on"), values[0]["val__highlightStatus"])
}

func TestRefresh_PrunesStaleSelection(t *testing.T) {
	host := testutil.NewHost("A", "stale")
	i := newInteractor(t, host)
	assert.Equal(t, []string{"A"}, i.Selection().Keys())

	ds, err := i.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"A"}, i.Selection().Keys())
}

func TestGetStatus(t *testing.T) {
	a, b := identity.Key("A"), identity.Key("B")

	assert.Equal(t, selection.StatusNeutral, GetStatus(a, identity.NewSet()))
	assert.Equal(t, selection.StatusOn, GetStatus(a, identity.NewSet(a)))
	assert.Equal(t, selection.StatusOff, GetStatus(a, identity.NewSet(b)))
}

func BenchmarkHandleInteractionEvent(b *testing.B) {
	reg := testutil.RegistryOf(b, testutil.RandomRows(1, 5000), testutil.NumberedFields())
	i, err := New(reg, testutil.NewHost(), WithSettings(enabled()))
	require.NoError(b, err)
	ctx := context.Background()
	it := item(datum.Document{"group": datum.String("g3"), "n": datum.Int(13)})

	b.ResetTimer()
	for b.Loop() {
		res, err := i.HandleInteractionEvent(ctx, click, it, nil)
		if err != nil {
			b.Fatal(err)
		}
		if res.Ack != nil {
			<-res.Ack
		}
	}
}
