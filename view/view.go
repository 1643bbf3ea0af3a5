// Package view turns an Experiment into plot artifacts. Every view validates
// itself against an experiment (channels, conditions, subset) and then
// produces an Artifact; neither step modifies the experiment. Rendering the
// artifacts is left to the caller: each carries go-chart values that can be
// rendered directly.
package view

import (
	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
)

// Kind names a view implementation.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindPie       Kind = "pie"
	KindPetal     Kind = "petal"
	KindHeat      Kind = "heat"
	KindRange     Kind = "range"
)

// View is implemented by every analysis or visualization unit.
type View interface {
	Kind() Kind

	// Validate checks the view's parameters against exp. It is idempotent
	// and does not modify exp.
	Validate(exp *experiment.Experiment) error

	// Plot produces a renderable artifact. It does not modify exp.
	Plot(exp *experiment.Experiment, opts Options) (Artifact, error)
}

// Artifact is the output of a View.
type Artifact interface {
	Kind() Kind
}

// checkFacets verifies that every named facet is a declared condition and
// that no facet is used twice. Empty names are skipped.
func checkFacets(exp *experiment.Experiment, owner string, facets ...string) error {
	schema := exp.Conditions()
	seen := make(map[string]struct{}, len(facets))
	for _, facet := range facets {
		if facet == "" {
			continue
		}
		if !schema.Has(facet) {
			return errors.Wrapf(experiment.ErrUnknownCondition, "%s: facet %q is not a condition", owner, facet)
		}
		if _, dup := seen[facet]; dup {
			return errors.Wrapf(ErrInvalidView, "%s: facet %q is used twice", owner, facet)
		}
		seen[facet] = struct{}{}
	}
	return nil
}

// checkSubset compiles subset, if any, against exp.
func checkSubset(exp *experiment.Experiment, owner, subset string) error {
	if subset == "" {
		return nil
	}
	if _, err := exp.CompileSubset(subset); err != nil {
		return errors.Wrapf(err, "%s", owner)
	}
	return nil
}

func ownerName(kind Kind, name string) string {
	if name == "" {
		return string(kind) + " view"
	}
	return string(kind) + " view " + name
}
