package commands

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/selection"
	"github.com/hupe1980/crossfilter/tooltip"
)

// memoryHost is the selection host of a command run. The selection lives
// for the run only.
type memoryHost struct {
	out io.Writer

	mu      sync.Mutex
	current *identity.Set
}

func newMemoryHost(out io.Writer, selected ...string) *memoryHost {
	h := &memoryHost{out: out, current: identity.NewSet()}
	for _, k := range selected {
		h.current.Add(identity.Key(k))
	}
	return h
}

func (h *memoryHost) Current() *identity.Set {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Clone()
}

func (h *memoryHost) Select(_ context.Context, ids *identity.Set, _ bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = ids.Clone()
	return nil
}

func (h *memoryHost) Clear(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = identity.NewSet()
	return nil
}

func (h *memoryHost) ShowContextMenu(_ context.Context, id identity.Identity, at selection.Point) error {
	target := "(none)"
	if id != nil {
		target = id.Key()
	}
	_, err := fmt.Fprintf(h.out, "context menu at (%g, %g) for %s\n", at.X, at.Y, target)
	return err
}

// printingTooltips writes shown tooltips as an aligned list.
type printingTooltips struct {
	out io.Writer
}

func (p *printingTooltips) Show(opts tooltip.ShowOptions) {
	writeItems(p.out, opts.Items)
}

func (p *printingTooltips) Hide() {}
