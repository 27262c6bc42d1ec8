// Package selection implements the selection state machine: the merge
// algebra of single- and multi-select gestures, per-row status and the
// asynchronous commit to the host selection capability.
package selection

import (
	"fmt"

	"github.com/hupe1980/crossfilter/identity"
)

// Status is the presentation state of a data point relative to the current
// selection.
type Status uint8

const (
	// StatusNeutral means the selection is empty: nothing is dimmed.
	StatusNeutral Status = iota
	// StatusOn means the point is selected.
	StatusOn
	// StatusOff means the selection is non-empty and the point is not in it.
	StatusOff
)

// String returns the string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusNeutral:
		return "neutral"
	case StatusOn:
		return "on"
	case StatusOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseStatus parses "on", "off" or "neutral".
func ParseStatus(s string) (Status, error) {
	switch s {
	case "neutral":
		return StatusNeutral, nil
	case "on":
		return StatusOn, nil
	case "off":
		return StatusOff, nil
	default:
		return StatusNeutral, fmt.Errorf("unknown selection status %q", s)
	}
}

// StatusOf returns the status of id against sel.
func StatusOf(id identity.Identity, sel *identity.Set) Status {
	switch {
	case sel.IsEmpty():
		return StatusNeutral
	case sel.Contains(id):
		return StatusOn
	default:
		return StatusOff
	}
}

// Toggle is the multi-select merge: (incoming − current) ∪ (current − incoming).
// Applying it twice with the same incoming set restores current.
func Toggle(incoming, current *identity.Set) *identity.Set {
	return incoming.SymmetricDifference(current)
}

// Replace is the single-select merge: incoming replaces current, unless both
// are set-equal, in which case the selection is emptied.
func Replace(incoming, current *identity.Set) *identity.Set {
	if incoming.Equal(current) {
		return identity.NewSet()
	}
	return incoming.Clone()
}

// Merge applies Toggle when multi is set and Replace otherwise.
func Merge(incoming, current *identity.Set, multi bool) *identity.Set {
	if multi {
		return Toggle(incoming, current)
	}
	return Replace(incoming, current)
}
