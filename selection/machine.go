package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/identity"
)

// Point is a screen coordinate.
type Point struct {
	X, Y float64
}

// Host is the host application's selection capability. It owns the
// authoritative selection.
type Host interface {
	// Current returns the host's confirmed selection.
	Current() *identity.Set
	// Select commits ids. The machine merges multi-select gestures itself
	// and always passes the complete next selection with multi false.
	Select(ctx context.Context, ids *identity.Set, multi bool) error
	// Clear empties the host selection.
	Clear(ctx context.Context) error
	// ShowContextMenu opens the host context menu; id is nil unless exactly
	// one identity was resolved.
	ShowContextMenu(ctx context.Context, id identity.Identity, at Point) error
}

// State is the lifecycle state of the machine.
type State uint8

const (
	StateIdle State = iota
	StateResolving
	StateAdmitting
	StateCommitting
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateAdmitting:
		return "admitting"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// ErrNoHost is returned when the machine has no host to commit to.
var ErrNoHost = errors.New("selection: no host")

// ResolveFunc produces the candidate identities of a gesture. A nil set
// means "clear the selection".
type ResolveFunc func(ctx context.Context) (*identity.Set, error)

// AdmitFunc decides whether candidates may be merged against an existing
// selection of the given size.
type AdmitFunc func(candidates, existing int, multi bool) bool

// Gesture is one interaction to be merged into the selection.
type Gesture struct {
	// Dataset is the generation the gesture was resolved against.
	Dataset *dataset.Dataset
	// Multi selects the toggle merge instead of replace.
	Multi bool
	// Resolve produces the candidate identities.
	Resolve ResolveFunc
	// Admit gates the candidate size; nil admits everything.
	Admit AdmitFunc
}

// Outcome is the result of a handled gesture.
type Outcome struct {
	// Candidates are the resolved identities (nil when the gesture cleared).
	Candidates *identity.Set
	// Next is the set dispatched to the host; empty when the host was cleared.
	Next *identity.Set
	// Rejected is set when admission refused the candidates. Nothing was
	// dispatched in that case.
	Rejected bool
	// Ack receives the host commit result once and is then closed. It is nil
	// when nothing was dispatched.
	Ack <-chan error
}

// Commit describes a finished host commit.
type Commit struct {
	Next      *identity.Set
	Confirmed *identity.Set
	Cleared   bool
	Err       error
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithCommitHook registers fn to be called after every host commit, on the
// commit goroutine.
func WithCommitHook(fn func(Commit)) MachineOption {
	return func(m *Machine) {
		m.onCommit = fn
	}
}

// Machine tracks the host-confirmed selection and merges gestures into it.
//
// Gestures are handled one at a time through commit dispatch. Commits
// complete asynchronously; the local snapshot is only replaced by the host's
// read-back after a successful commit, so a failed commit leaves it intact.
type Machine struct {
	host     Host
	onCommit func(Commit)

	mu    sync.Mutex // serializes gestures
	state atomic.Uint32

	snapMu   sync.RWMutex
	snapshot *identity.Set

	pending atomic.Int64
	wg      sync.WaitGroup
}

// NewMachine creates a machine committing to host.
func NewMachine(host Host, opts ...MachineOption) *Machine {
	m := &Machine{host: host, snapshot: identity.NewSet()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return State(m.state.Load())
}

func (m *Machine) setState(s State) {
	m.state.Store(uint32(s))
}

// Snapshot returns a copy of the last confirmed selection.
func (m *Machine) Snapshot() *identity.Set {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snapshot.Clone()
}

// Sync reads the host selection, prunes it to ds and stores it as the local
// snapshot.
func (m *Machine) Sync(ds *dataset.Dataset) *identity.Set {
	if m.host == nil {
		return m.Snapshot()
	}
	confirmed := ds.Prune(m.host.Current())
	m.snapMu.Lock()
	m.snapshot = confirmed
	m.snapMu.Unlock()
	return confirmed.Clone()
}

// Status returns the status of id against the local snapshot.
func (m *Machine) Status(id identity.Identity) Status {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return StatusOf(id, m.snapshot)
}

// Statuses returns the status of every row of ds, in row order.
func (m *Machine) Statuses(ds *dataset.Dataset) []Status {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()

	out := make([]Status, ds.Len())
	for i := range out {
		id, _ := ds.IdentityAt(i)
		out[i] = StatusOf(id, m.snapshot)
	}
	return out
}

// Handle runs a gesture through resolution, admission and commit dispatch.
// It returns once the commit has been dispatched; the outcome's Ack channel
// reports the host result.
func (m *Machine) Handle(ctx context.Context, g Gesture) (Outcome, error) {
	if m.host == nil {
		return Outcome{}, ErrNoHost
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setState(StateResolving)
	var candidates *identity.Set
	if g.Resolve != nil {
		var err error
		if candidates, err = g.Resolve(ctx); err != nil {
			m.settle()
			return Outcome{}, fmt.Errorf("selection: resolve: %w", err)
		}
	}

	current := g.Dataset.Prune(m.host.Current())

	m.setState(StateAdmitting)
	if candidates != nil && g.Admit != nil && !g.Admit(candidates.Len(), current.Len(), g.Multi) {
		m.settle()
		return Outcome{Candidates: candidates, Rejected: true}, nil
	}

	next := identity.NewSet()
	if candidates != nil {
		next = Merge(candidates, current, g.Multi)
	}

	m.setState(StateCommitting)
	ack := m.dispatch(context.WithoutCancel(ctx), g.Dataset, next)
	return Outcome{Candidates: candidates, Next: next, Ack: ack}, nil
}

// settle returns to idle unless a commit is still in flight.
func (m *Machine) settle() {
	if m.pending.Load() > 0 {
		m.setState(StateCommitting)
		return
	}
	m.setState(StateIdle)
}

func (m *Machine) dispatch(ctx context.Context, ds *dataset.Dataset, next *identity.Set) <-chan error {
	ack := make(chan error, 1)
	m.pending.Add(1)
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer close(ack)

		c := Commit{Next: next, Cleared: next.IsEmpty()}
		if c.Cleared {
			c.Err = m.host.Clear(ctx)
		} else {
			c.Err = m.host.Select(ctx, next, false)
		}

		if c.Err == nil {
			c.Confirmed = ds.Prune(m.host.Current())
			m.snapMu.Lock()
			m.snapshot = c.Confirmed.Clone()
			m.snapMu.Unlock()
		}

		if m.pending.Add(-1) == 0 {
			m.state.CompareAndSwap(uint32(StateCommitting), uint32(StateIdle))
		}
		if m.onCommit != nil {
			m.onCommit(c)
		}
		ack <- c.Err
	}()

	return ack
}

// Wait blocks until every dispatched commit has been acknowledged.
func (m *Machine) Wait() {
	m.wg.Wait()
}
