package statistic

import (
	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
)

// Compute groups the rows of t by the conditions in by and reduces channel
// within each group with fn. Null channel cells are skipped. Rows appear in
// order of first appearance of their group. With a count function, channel
// may be empty.
func Compute(t *experiment.Table, by []string, channel string, fn Function) (Statistic, error) {
	groups, err := t.GroupBy(by...)
	if err != nil {
		return Statistic{}, err
	}

	out := Statistic{
		Name:  fn.Name,
		Names: append([]string(nil), by...),
		Rows:  make([]Row, 0, len(groups)),
	}
	if channel != "" {
		out.Name = fn.Name + "(" + channel + ")"
	}

	for _, g := range groups {
		var v float64
		switch {
		case fn.Count && channel == "":
			v = float64(len(g.Rows))
		case channel == "":
			return Statistic{}, errors.Wrapf(experiment.ErrUnknownChannel, "function %s needs a channel", fn.Name)
		default:
			values, err := t.Values(channel, g.Rows)
			if err != nil {
				return Statistic{}, err
			}
			v = fn.Apply(values)
		}

		out.Rows = append(out.Rows, Row{Index: g.Labels(), Values: []float64{v}})
	}

	return out, nil
}

// Centroids computes the mean of two channels per group, producing a
// statistic of 2-D positions.
func Centroids(t *experiment.Table, by []string, xChannel, yChannel string) (Statistic, error) {
	mean, err := LookupFunction("mean")
	if err != nil {
		return Statistic{}, err
	}

	xs, err := Compute(t, by, xChannel, mean)
	if err != nil {
		return Statistic{}, err
	}
	ys, err := Compute(t, by, yChannel, mean)
	if err != nil {
		return Statistic{}, err
	}

	out := Statistic{
		Name:  "centroid(" + xChannel + "," + yChannel + ")",
		Names: xs.Names,
		Rows:  make([]Row, len(xs.Rows)),
	}
	for i := range xs.Rows {
		out.Rows[i] = Row{
			Index:  xs.Rows[i].Index,
			Values: []float64{xs.Rows[i].Values[0], ys.Rows[i].Values[0]},
		}
	}

	return out, nil
}
