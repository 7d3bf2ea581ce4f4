// Package layout implements the row/column container state machine that
// wraps fields as they are emitted in form order. Transitions are pure: a
// transition returns the next state, the (possibly cleaned) descriptor, and
// the markup to emit before the field's own output. Descriptor arguments are
// never mutated.
package layout

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// fillEpsilon absorbs the rounding drift of summed thirds.
const fillEpsilon = 1e-6

// State is the container position between two fields. The zero value is a
// closed container whose first row will open odd.
type State struct {
	Open bool
	Odd  bool
	Fill float64
}

// full reports whether the open row has no remaining capacity.
func (s State) full() bool {
	return s.Open && s.Fill >= 1-fillEpsilon
}

// fits reports whether a fraction can be absorbed into the open row.
func (s State) fits(fraction float64) bool {
	return s.Open && s.Fill+fraction <= 1+fillEpsilon
}

// Transition advances the state for one field. skip marks presentation-only
// fields: their column markers are cleared on the returned descriptor so
// later balance calculations ignore them, but they neither open nor close a
// row. A row whose fractions reached capacity closes on the next field's
// arrival, which then starts a fresh row.
func Transition(state State, field model.FieldDescriptor, skip bool) (State, model.FieldDescriptor, string) {
	if skip {
		field.Size = model.SizeFull
		return state, field, ""
	}

	var markup strings.Builder

	if field.HasStopper() && state.Open {
		state = closeRow(state, &markup)
	}
	if state.full() {
		state = closeRow(state, &markup)
	}

	if field.Size.IsColumn() {
		fraction := field.Size.Fraction()
		if state.Open && !state.fits(fraction) {
			state = closeRow(state, &markup)
		}
		if !state.Open {
			state = openRow(state, &markup)
		}
		state.Fill += fraction
		return state, field, markup.String()
	}

	// Full-width field: close any open row, open the next one, and mark it
	// at capacity so the following field starts fresh.
	if state.Open {
		state = closeRow(state, &markup)
	}
	state = openRow(state, &markup)
	state.Fill = 1
	return state, field, markup.String()
}

func openRow(state State, markup *strings.Builder) State {
	state.Open = true
	state.Odd = !state.Odd
	state.Fill = 0
	parity := "even"
	if state.Odd {
		parity = "odd"
	}
	fmt.Fprintf(markup, "<div class=\"doc-row doc-row-%s\">\n", parity)
	return state
}

func closeRow(state State, markup *strings.Builder) State {
	state.Open = false
	state.Fill = 0
	markup.WriteString("</div>\n")
	return state
}

// Container threads a State through a document render. One container per
// document; never shared.
type Container struct {
	state State
	skip  map[model.FieldType]struct{}
}

// Option customises a Container.
type Option func(*Container)

// WithSkipTypes replaces the default presentation-only type set.
func WithSkipTypes(types ...model.FieldType) Option {
	return func(c *Container) {
		c.skip = make(map[model.FieldType]struct{}, len(types))
		for _, t := range types {
			c.skip[t] = struct{}{}
		}
	}
}

// New constructs a closed container. Page breaks and authored HTML blocks are
// skipped by default.
func New(options ...Option) *Container {
	c := &Container{
		skip: map[model.FieldType]struct{}{
			model.FieldTypePage: {},
			model.FieldTypeHTML: {},
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// State returns the current container state.
func (c *Container) State() State { return c.state }

// Place processes the next field and returns the cleaned descriptor plus the
// row markup to emit before the field's own output.
func (c *Container) Place(field model.FieldDescriptor) (model.FieldDescriptor, string) {
	_, skip := c.skip[field.Type]
	next, cleaned, markup := Transition(c.state, field, skip)
	c.state = next
	return cleaned, markup
}

// FauxColumn emits filler markup to visually complete a partially filled row
// without closing it. A closed or full row makes this a no-op.
func (c *Container) FauxColumn() string {
	if !c.state.Open || c.state.full() {
		return ""
	}
	return "<div class=\"doc-column doc-column-fill\"></div>\n"
}

// Close force-closes a dangling open row at the end of a document.
func (c *Container) Close() string {
	if !c.state.Open {
		return ""
	}
	var markup strings.Builder
	c.state = closeRow(c.state, &markup)
	return markup.String()
}
