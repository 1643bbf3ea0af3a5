package view

import (
	"sort"
	"strconv"

	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
)

// Facet orderings for the "order" option.
const (
	OrderAppearance = "appearance"
	OrderSorted     = "sorted"
)

func orderOption(opts Options) (string, error) {
	order := opts.Text("order", OrderAppearance)
	if order != OrderAppearance && order != OrderSorted {
		return "", errors.Wrapf(ErrInvalidOption, "order must be %q or %q, got %q", OrderAppearance, OrderSorted, order)
	}
	return order, nil
}

// levelLess orders facet labels numerically when both parse as numbers and
// lexically otherwise.
func levelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	if (errA == nil) != (errB == nil) {
		// Numbers before words
		return errA == nil
	}
	return a < b
}

func sortLevels(levels []string, order string) []string {
	out := append([]string(nil), levels...)
	if order == OrderSorted {
		sort.SliceStable(out, func(i, j int) bool { return levelLess(out[i], out[j]) })
	}
	return out
}

func sortGroups(groups []experiment.Group, order string) []experiment.Group {
	if order != OrderSorted {
		return groups
	}

	out := append([]experiment.Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Labels(), out[j].Labels()
		for k := range a {
			if a[k] != b[k] {
				return levelLess(a[k], b[k])
			}
		}
		return false
	})
	return out
}

// experimentLevels returns the formatted levels of a condition, in order of
// first appearance.
func experimentLevels(exp *experiment.Experiment, condition string) ([]string, error) {
	levels, err := exp.Levels(condition)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(levels))
	for i, v := range levels {
		out[i] = experiment.FormatValue(v)
	}
	return out, nil
}
