package view

import (
	"math"
	"sync"

	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// RangeSelection wraps another view and adds a horizontal range selection.
// The selection is driven by an external event source (a GUI, a notebook
// widget) which calls Select when a drag gesture completes. Min and Max are
// its only state.
type RangeSelection struct {
	View View

	mu  sync.RWMutex
	min null.Float
	max null.Float
}

var rangeOptions = optionSpec{
	"interactive": optBool,
}

// SelectionPlot is the wrapped view's artifact plus the current range.
type SelectionPlot struct {
	Base        Artifact
	Interactive bool
	Min         null.Float
	Max         null.Float

	// OnSelect is the callback an interactive front end should invoke when
	// a drag-select gesture completes.
	OnSelect func(lo, hi float64) bool `json:"-"`
}

func (p *SelectionPlot) Kind() Kind { return KindRange }

// NewRangeSelection wraps base.
func NewRangeSelection(base View) *RangeSelection {
	return &RangeSelection{View: base}
}

func (r *RangeSelection) Kind() Kind { return KindRange }

func (r *RangeSelection) Validate(exp *experiment.Experiment) error {
	if r.View == nil {
		return errors.Wrap(ErrInvalidView, "range selection: no view to wrap")
	}
	return r.View.Validate(exp)
}

// Plot plots the wrapped view. The "interactive" option is consumed here;
// every other option is passed through unchanged.
func (r *RangeSelection) Plot(exp *experiment.Experiment, opts Options) (Artifact, error) {
	if r.View == nil {
		return nil, errors.Wrap(ErrInvalidView, "range selection: no view to wrap")
	}

	own, rest := Options{}, Options{}
	for k, v := range opts {
		if _, mine := rangeOptions[k]; mine {
			own[k] = v
		} else {
			rest[k] = v
		}
	}
	if err := own.check(KindRange, rangeOptions); err != nil {
		return nil, err
	}

	base, err := r.View.Plot(exp, rest)
	if err != nil {
		return nil, err
	}

	lo, hi, _ := r.Range()
	return &SelectionPlot{
		Base:        base,
		Interactive: own.Bool("interactive", false),
		Min:         lo,
		Max:         hi,
		OnSelect:    r.Select,
	}, nil
}

// Select records a completed drag from lo to hi. Bounds may arrive in
// either order. A zero-width (or NaN) selection is a no-op and returns
// false.
func (r *RangeSelection) Select(lo, hi float64) bool {
	if lo == hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return false
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.min = null.FloatFrom(lo)
	r.max = null.FloatFrom(hi)
	return true
}

// Range returns the current selection. ok is false until a selection has
// been made.
func (r *RangeSelection) Range() (lo, hi null.Float, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.min, r.max, r.min.Valid && r.max.Valid
}
