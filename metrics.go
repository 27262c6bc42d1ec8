package crossfilter

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInteraction is called after each handled interaction event.
	// duration covers resolution, admission and commit dispatch, err is nil
	// if successful.
	RecordInteraction(duration time.Duration, err error)

	// RecordResolve is called after each identity resolution. strategy is
	// empty when no tier matched.
	RecordResolve(strategy string, identities int)

	// RecordEvaluate is called after each headless cross-filter evaluation.
	RecordEvaluate(duration time.Duration, err error)

	// RecordAdmission is called after each admission check.
	RecordAdmission(admitted bool)

	// RecordCommit is called when the host acknowledges a commit.
	RecordCommit(cleared bool, err error)

	// RecordTooltip is called after each tooltip dispatch with the number of
	// display items.
	RecordTooltip(items int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInteraction(time.Duration, error) {}
func (NoopMetricsCollector) RecordResolve(string, int)              {}
func (NoopMetricsCollector) RecordEvaluate(time.Duration, error)    {}
func (NoopMetricsCollector) RecordAdmission(bool)                   {}
func (NoopMetricsCollector) RecordCommit(bool, error)               {}
func (NoopMetricsCollector) RecordTooltip(int)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InteractionCount      atomic.Int64
	InteractionErrors     atomic.Int64
	InteractionTotalNanos atomic.Int64
	ResolveCount          atomic.Int64
	ResolveMisses         atomic.Int64
	EvaluateCount         atomic.Int64
	EvaluateErrors        atomic.Int64
	EvaluateTotalNanos    atomic.Int64
	Admitted              atomic.Int64
	Rejected              atomic.Int64
	CommitCount           atomic.Int64
	CommitClears          atomic.Int64
	CommitErrors          atomic.Int64
	TooltipCount          atomic.Int64
	TooltipItems          atomic.Int64
}

// RecordInteraction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInteraction(duration time.Duration, err error) {
	b.InteractionCount.Add(1)
	b.InteractionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InteractionErrors.Add(1)
	}
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(strategy string, _ int) {
	b.ResolveCount.Add(1)
	if strategy == "" {
		b.ResolveMisses.Add(1)
	}
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordAdmission implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdmission(admitted bool) {
	if admitted {
		b.Admitted.Add(1)
	} else {
		b.Rejected.Add(1)
	}
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(cleared bool, err error) {
	b.CommitCount.Add(1)
	if cleared {
		b.CommitClears.Add(1)
	}
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// RecordTooltip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTooltip(items int) {
	b.TooltipCount.Add(1)
	b.TooltipItems.Add(int64(items))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InteractionCount:    b.InteractionCount.Load(),
		InteractionErrors:   b.InteractionErrors.Load(),
		InteractionAvgNanos: avg(b.InteractionTotalNanos.Load(), b.InteractionCount.Load()),
		ResolveCount:        b.ResolveCount.Load(),
		ResolveMisses:       b.ResolveMisses.Load(),
		EvaluateCount:       b.EvaluateCount.Load(),
		EvaluateErrors:      b.EvaluateErrors.Load(),
		EvaluateAvgNanos:    avg(b.EvaluateTotalNanos.Load(), b.EvaluateCount.Load()),
		Admitted:            b.Admitted.Load(),
		Rejected:            b.Rejected.Load(),
		CommitCount:         b.CommitCount.Load(),
		CommitClears:        b.CommitClears.Load(),
		CommitErrors:        b.CommitErrors.Load(),
		TooltipCount:        b.TooltipCount.Load(),
		TooltipItems:        b.TooltipItems.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InteractionCount    int64
	InteractionErrors   int64
	InteractionAvgNanos int64
	ResolveCount        int64
	ResolveMisses       int64
	EvaluateCount       int64
	EvaluateErrors      int64
	EvaluateAvgNanos    int64
	Admitted            int64
	Rejected            int64
	CommitCount         int64
	CommitClears        int64
	CommitErrors        int64
	TooltipCount        int64
	TooltipItems        int64
}
