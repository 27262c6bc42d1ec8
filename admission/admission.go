// Package admission gates candidate selections by size.
package admission

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limits bounds the selection size.
type Limits struct {
	// Min is the smallest accepted limit override.
	Min int
	// Max is the largest accepted limit override in simple mode.
	Max int
	// MaxAdvanced is the largest accepted limit override in advanced mode.
	MaxAdvanced int
	// Default is the limit used when no override is given.
	Default int
}

// DefaultLimits returns the stock limits: default 50, bounded to [1, 250]
// (2500 in advanced mode).
func DefaultLimits() Limits {
	return Limits{Min: 1, Max: 250, MaxAdvanced: 2500, Default: 50}
}

// Resolve returns the effective limit for a per-invocation override. A
// non-positive override selects the default as configured; any other value
// is clamped to the bounds.
func (l Limits) Resolve(override int, advanced bool) int {
	if override <= 0 {
		return l.Default
	}
	limit := override
	upper := l.Max
	if advanced && l.MaxAdvanced > 0 {
		upper = l.MaxAdvanced
	}
	if upper > 0 && limit > upper {
		limit = upper
	}
	if limit < l.Min {
		limit = l.Min
	}
	return limit
}

// IsWithinLimit reports whether a candidate set may be admitted. The
// effective size counts the existing selection only for multi-select, and a
// size equal to limit is admitted.
func IsWithinLimit(candidates, existing int, multi bool, limit int) bool {
	size := candidates
	if multi {
		size += existing
	}
	return size <= limit
}

// Abort is the signal emitted when admission rejects a candidate set.
type Abort struct {
	// Status is set while the last gesture was rejected.
	Status bool
	// Limit is the effective limit that was exceeded.
	Limit int
}

// Config configures a Controller.
type Config struct {
	Limits Limits
	// NoticeInterval is the minimum interval between two rejection notices.
	// Zero disables throttling.
	NoticeInterval time.Duration
	// NoticeBurst is the number of notices allowed in a burst. Defaults to 1.
	NoticeBurst int
}

// Controller applies the admission limit and tracks the abort status.
//
// The abort status is updated on every gesture. Notices to the abort
// callback are throttled so a burst of rejected gestures does not flood the
// user with identical warnings.
type Controller struct {
	limits  Limits
	notices *rate.Limiter // nil if unthrottled
	onAbort func(Abort)

	mu     sync.Mutex
	status Abort

	admitted atomic.Int64
	rejected atomic.Int64
}

// NewController creates a controller. onAbort may be nil.
func NewController(cfg Config, onAbort func(Abort)) *Controller {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	c := &Controller{limits: cfg.Limits, onAbort: onAbort}
	if cfg.NoticeInterval > 0 {
		burst := cfg.NoticeBurst
		if burst <= 0 {
			burst = 1
		}
		c.notices = rate.NewLimiter(rate.Every(cfg.NoticeInterval), burst)
	}
	return c
}

// Limits returns the configured limits.
func (c *Controller) Limits() Limits {
	return c.limits
}

// Check applies IsWithinLimit and updates the abort status.
func (c *Controller) Check(candidates, existing int, multi bool, limit int) bool {
	if IsWithinLimit(candidates, existing, multi, limit) {
		c.admitted.Add(1)
		c.clear()
		return true
	}

	c.rejected.Add(1)
	abort := Abort{Status: true, Limit: limit}
	c.mu.Lock()
	c.status = abort
	c.mu.Unlock()

	if c.onAbort != nil && (c.notices == nil || c.notices.Allow()) {
		c.onAbort(abort)
	}
	return false
}

// Admit returns a check bound to limit, suitable as a selection admit
// function.
func (c *Controller) Admit(limit int) func(candidates, existing int, multi bool) bool {
	return func(candidates, existing int, multi bool) bool {
		return c.Check(candidates, existing, multi, limit)
	}
}

// Status returns the current abort status.
func (c *Controller) Status() Abort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Reset clears the abort status.
func (c *Controller) Reset() {
	c.clear()
}

func (c *Controller) clear() {
	c.mu.Lock()
	was := c.status.Status
	c.status = Abort{}
	c.mu.Unlock()

	if was && c.onAbort != nil {
		c.onAbort(Abort{})
	}
}

// Stats returns the number of admitted and rejected checks.
func (c *Controller) Stats() (admitted, rejected int64) {
	return c.admitted.Load(), c.rejected.Load()
}
