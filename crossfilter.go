package crossfilter

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/selection"
)

// Mode selects how a gesture is resolved to identities.
type Mode string

const (
	// ModeSimple resolves the rendered datums of the gesture.
	ModeSimple Mode = "simple"
	// ModeAdvanced evaluates a filter expression against the whole dataset.
	ModeAdvanced Mode = "advanced"
)

// ModifierKey is a multi-select modifier key.
type ModifierKey string

const (
	KeyCtrl  ModifierKey = "ctrl"
	KeyShift ModifierKey = "shift"
	KeyAlt   ModifierKey = "alt"
)

// DefaultMultiSelect is the advanced-mode modifier set used when none is
// configured.
var DefaultMultiSelect = []ModifierKey{KeyCtrl, KeyShift}

// CrossFilterOptions configures one cross-filter invocation.
type CrossFilterOptions struct {
	Mode       Mode   `json:"mode,omitempty" yaml:"mode,omitempty"`
	FilterExpr string `json:"filterExpr,omitempty" yaml:"filterExpr,omitempty"`
	// Limit overrides the maximum selection size; zero uses the default.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
	// MultiSelect lists the modifier keys that toggle in advanced mode.
	MultiSelect []ModifierKey `json:"multiSelect,omitempty" yaml:"multiSelect,omitempty"`
}

// ParseCrossFilterOptions decodes options from JSON or YAML. Input starting
// with '{' is read as JSON. Missing fields keep their zero value; an empty
// mode means simple.
func ParseCrossFilterOptions(data []byte) (*CrossFilterOptions, error) {
	var o CrossFilterOptions
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &CrossFilterOptions{Mode: ModeSimple}, nil
	}

	var err error
	if trimmed[0] == '{' {
		err = codec.Default.Unmarshal(trimmed, &o)
	} else {
		err = yaml.Unmarshal(trimmed, &o)
	}
	if err != nil {
		return nil, &ErrInvalidOptions{cause: err}
	}
	if o.Mode == "" {
		o.Mode = ModeSimple
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate checks the mode, limit and modifier keys.
func (o *CrossFilterOptions) Validate() error {
	switch o.Mode {
	case "", ModeSimple, ModeAdvanced:
	default:
		return &ErrInvalidOptions{Field: "mode", Value: o.Mode, cause: fmt.Errorf("unknown mode %q", o.Mode)}
	}
	if o.Limit < 0 {
		return &ErrInvalidOptions{Field: "limit", Value: o.Limit, cause: fmt.Errorf("negative limit %d", o.Limit)}
	}
	for _, k := range o.MultiSelect {
		switch k {
		case KeyCtrl, KeyShift, KeyAlt:
		default:
			return &ErrInvalidOptions{Field: "multiSelect", Value: k, cause: fmt.Errorf("unknown key %q", k)}
		}
	}
	return nil
}

// Advanced reports whether the options select advanced mode.
func (o *CrossFilterOptions) Advanced() bool {
	return o != nil && o.Mode == ModeAdvanced
}

// IsMultiSelect reports whether m toggles the selection. Simple mode toggles
// on ctrl or shift; advanced mode on any of the configured keys.
func (o *CrossFilterOptions) IsMultiSelect(m Modifiers) bool {
	if !o.Advanced() {
		return m.Ctrl || m.Shift
	}
	keys := o.MultiSelect
	if len(keys) == 0 {
		keys = DefaultMultiSelect
	}
	return (m.Ctrl && slices.Contains(keys, KeyCtrl)) ||
		(m.Shift && slices.Contains(keys, KeyShift)) ||
		(m.Alt && slices.Contains(keys, KeyAlt))
}

// Modifiers are the modifier keys held during an event.
type Modifiers struct {
	Ctrl, Shift, Alt bool
}

// Event is a rendering engine pointer event.
type Event struct {
	// Type is the engine event type, e.g. "click", "mouseover".
	Type      string
	Modifiers Modifiers
	// Point is the screen position of the event.
	Point selection.Point
}

// Result is the outcome of a handled interaction event.
type Result struct {
	// Identities is the selection after the gesture: the dispatched set, or
	// the unchanged host selection when the gesture was rejected.
	Identities *identity.Set
	// Warning is a localized message when the cross-filter expression failed.
	Warning string
	// Aborted is set when admission rejected the gesture.
	Aborted bool
	// Limit is the effective selection limit of the gesture.
	Limit int
	// Strategy names the resolver tier that matched in simple mode.
	Strategy string
	// Ack receives the host commit result; nil when nothing was dispatched.
	Ack <-chan error
}

// GetStatus returns the selection status of id: on when it is selected,
// neutral when nothing is selected, off otherwise.
func GetStatus(id identity.Identity, sel *identity.Set) selection.Status {
	return selection.StatusOf(id, sel)
}
