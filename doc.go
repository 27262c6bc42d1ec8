// Package crossfilter reconciles the datums rendered by a declarative
// visualization engine with the host's stable row identities, to drive
// selection, cross-filtering, highlighting and tooltips.
//
// # Quick Start
//
//	reg := dataset.NewRegistry(source)
//	if _, err := reg.Refresh(ctx); err != nil { ... }
//
//	xf, _ := crossfilter.New(reg, host,
//	    crossfilter.WithSettings(settings),
//	    crossfilter.WithTooltipService(tooltips),
//	)
//	defer xf.Close()
//
//	res, err := xf.HandleInteractionEvent(ctx, ev, item, nil)
//	if res.Aborted { /* show "maximum of res.Limit data points" */ }
//	if res.Warning != "" { /* show res.Warning */ }
//	if res.Ack != nil { err = <-res.Ack } // host commit result
//
// # Resolution
//
// In simple mode the event item is normalized into datums and resolved by
// the tiers of package resolve: a direct identity tag, row-index tags,
// structural matching against field values, and finally host-built
// identities. Nothing resolved clears the selection.
//
// In advanced mode the filter expression of CrossFilterOptions is evaluated
// against every row of the dataset in an isolated pipeline (package
// headless). Tokens of the form _{field}_ are replaced with the value of
// field in the event datum:
//
//	opts := &crossfilter.CrossFilterOptions{
//	    Mode:       crossfilter.ModeAdvanced,
//	    FilterExpr: "datum.region == _{region}_",
//	}
//
// # Merging
//
// A gesture with a multi-select modifier toggles the resolved identities
// against the host selection; any other gesture replaces it, and repeating
// a gesture on the same selection deselects everything. The merged set is
// admitted only if it stays within the selection limit.
package crossfilter
