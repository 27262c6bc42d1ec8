package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/resolve"
	"github.com/hupe1980/crossfilter/selection"
	"github.com/hupe1980/crossfilter/tooltip"
)

// ContextMenuCall records one ShowContextMenu call.
type ContextMenuCall struct {
	Identity identity.Identity
	At       selection.Point
}

// Host is an in-memory selection.Host. It is safe for concurrent use.
type Host struct {
	mu        sync.Mutex
	current   *identity.Set
	err       error
	blocked   bool
	selects   int
	clears    int
	menus     []ContextMenuCall
	lastMulti bool
	release   chan struct{}
}

// NewHost creates a host whose selection holds keys.
func NewHost(keys ...string) *Host {
	h := &Host{current: identity.NewSet()}
	for _, k := range keys {
		h.current.Add(identity.Key(k))
	}
	return h
}

// SetSelection replaces the host selection without going through a commit.
func (h *Host) SetSelection(ids *identity.Set) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = ids.Clone()
}

// FailWith makes every following commit fail with err. A nil err restores
// normal behavior.
func (h *Host) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// BlockInteractions makes AllowInteractions report false.
func (h *Host) BlockInteractions(blocked bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.blocked = blocked
}

// Hold makes commits wait until the returned function is called.
func (h *Host) Hold() (release func()) {
	ch := make(chan struct{})
	h.mu.Lock()
	h.release = ch
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

func (h *Host) wait(ctx context.Context) {
	h.mu.Lock()
	ch := h.release
	h.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// Current implements selection.Host.
func (h *Host) Current() *identity.Set {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Clone()
}

// Select implements selection.Host.
func (h *Host) Select(ctx context.Context, ids *identity.Set, multi bool) error {
	h.wait(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selects++
	h.lastMulti = multi
	if h.err != nil {
		return h.err
	}
	h.current = ids.Clone()
	return nil
}

// Clear implements selection.Host.
func (h *Host) Clear(ctx context.Context) error {
	h.wait(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clears++
	if h.err != nil {
		return h.err
	}
	h.current = identity.NewSet()
	return nil
}

// ShowContextMenu implements selection.Host.
func (h *Host) ShowContextMenu(_ context.Context, id identity.Identity, at selection.Point) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.menus = append(h.menus, ContextMenuCall{Identity: id, At: at})
	return nil
}

// AllowInteractions reports whether the host accepts selection gestures.
func (h *Host) AllowInteractions() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.blocked
}

// Selects returns the number of Select calls.
func (h *Host) Selects() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selects
}

// Clears returns the number of Clear calls.
func (h *Host) Clears() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clears
}

// LastMulti returns the multi flag of the last Select call.
func (h *Host) LastMulti() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastMulti
}

// ContextMenus returns the recorded context menu calls.
func (h *Host) ContextMenus() []ContextMenuCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ContextMenuCall(nil), h.menus...)
}

// Builder is a resolve.Builder whose identities are the category values and
// measure names joined into a key, e.g. "cat=y|Sum(val)".
type Builder struct {
	Dataset *dataset.Dataset
}

// NewIdentity implements resolve.Builder.
func (b Builder) NewIdentity() resolve.IdentityBuilder {
	return &identityBuilder{ds: b.Dataset}
}

type identityBuilder struct {
	ds  *dataset.Dataset
	key string
}

func (ib *identityBuilder) append(part string) {
	if ib.key != "" {
		ib.key += "|"
	}
	ib.key += part
}

func (ib *identityBuilder) WithCategory(field dataset.Field, row int) resolve.IdentityBuilder {
	value := fmt.Sprint(row)
	if ib.ds != nil {
		if r, ok := ib.ds.Row(row); ok {
			value = r.Values[field.Name].Text()
		}
	}
	ib.append(field.Name + "=" + value)
	return ib
}

func (ib *identityBuilder) WithMeasure(queryName string) resolve.IdentityBuilder {
	ib.append(queryName)
	return ib
}

func (ib *identityBuilder) Build() identity.Identity {
	return identity.Key(ib.key)
}

// TooltipService records tooltip calls. It is safe for concurrent use.
type TooltipService struct {
	mu    sync.Mutex
	shown []tooltip.ShowOptions
	hides int
}

// Show implements tooltip.Service.
func (s *TooltipService) Show(opts tooltip.ShowOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, opts)
}

// Hide implements tooltip.Service.
func (s *TooltipService) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hides++
}

// Shown returns the recorded Show calls.
func (s *TooltipService) Shown() []tooltip.ShowOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tooltip.ShowOptions(nil), s.shown...)
}

// Hides returns the number of Hide calls.
func (s *TooltipService) Hides() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hides
}
