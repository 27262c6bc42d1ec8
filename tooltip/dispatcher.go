package tooltip

import (
	"sync"
	"time"

	"github.com/hupe1980/crossfilter/identity"
)

// Point is a screen position.
type Point struct {
	X, Y float64
}

// ShowOptions is the payload handed to the host tooltip service.
type ShowOptions struct {
	Coordinates Point
	Items       []DisplayItem
	Identities  *identity.Set
}

// Service is the host tooltip service.
type Service interface {
	Show(opts ShowOptions)
	Hide()
}

// Dispatcher shows or hides host tooltips for pointer events.
//
// Shows are delayed while the ctrl key is held. A later show supersedes a
// pending one (trailing timer, last write wins).
type Dispatcher struct {
	svc   Service
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending uint64
}

// NewDispatcher creates a dispatcher for svc. delay applies to shows made
// while ctrl is held.
func NewDispatcher(svc Service, delay time.Duration) *Dispatcher {
	return &Dispatcher{svc: svc, delay: delay}
}

// Dispatch shows the tooltip for mouseover and mousemove events and hides it
// for every other event type.
func (d *Dispatcher) Dispatch(eventType string, ctrl bool, opts ShowOptions) {
	switch eventType {
	case "mouseover", "mousemove":
		wait := time.Duration(0)
		if ctrl {
			wait = d.delay
		}
		d.Show(opts, wait)
	default:
		d.Hide()
	}
}

// Show displays opts after wait, superseding any pending show.
func (d *Dispatcher) Show(opts ShowOptions, wait time.Duration) {
	d.mu.Lock()
	d.pending++
	seq := d.pending
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if wait <= 0 {
		d.mu.Unlock()
		d.svc.Show(opts)
		return
	}
	d.timer = time.AfterFunc(wait, func() {
		d.mu.Lock()
		current := seq == d.pending
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.svc.Show(opts)
		}
	})
	d.mu.Unlock()
}

// Hide hides the tooltip immediately.
func (d *Dispatcher) Hide() {
	d.svc.Hide()
}

// Stop cancels a pending show.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
