package view

import (
	"strconv"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/cytometry/statistic"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
)

// PieView draws a grid of pie, petal or heat plots. The table is partitioned
// by every combination of Facets; within each cell, a statistic is computed
// for each level of Variable and drawn as a slice. A heat grid has no
// Variable: each cell is one circle shaded by its value.
type PieView struct {
	Name string

	// Variable is the condition whose levels become slices. It must be
	// empty for StyleHeat.
	Variable string

	// Facets partition the grid. When empty, every other condition is used,
	// in schema order.
	Facets []string

	// Channel and Function define the statistic. Function defaults to
	// "count", which does not need a channel.
	Channel  string
	Function string

	// Statistic, if set, is used instead of computing one from Channel and
	// Function. It must be indexed by the facets and Variable, if any.
	Statistic *statistic.Statistic

	// Positions, if set, places each cell at a centroid and connects the
	// cells with a minimum spanning tree.
	Positions *statistic.Statistic

	// Locations names one or two channels whose per-cell means are used as
	// positions when Positions is not set.
	Locations []string

	Style  Style
	Subset string
}

var pieOptions = optionSpec{
	"size":    optString,
	"radius":  optFloat,
	"palette": optStrings,
	"order":   optString,
	"title":   optString,
	"width":   optInt,
	"height":  optInt,
}

// PiePlot is a laid-out grid plus one go-chart pie per cell.
type PiePlot struct {
	Title  string
	Layout *Layout
	Charts []chart.PieChart
}

func (p *PiePlot) Kind() Kind { return p.Layout.kind() }

func (l *Layout) kind() Kind { return styleKind(l.Style) }

func (v *PieView) Kind() Kind { return styleKind(v.style()) }

func styleKind(s Style) Kind {
	switch s {
	case StylePetal:
		return KindPetal
	case StyleHeat:
		return KindHeat
	}
	return KindPie
}

func (v *PieView) owner() string { return ownerName(v.Kind(), v.Name) }

func (v *PieView) style() Style {
	if v.Style == "" {
		return StylePie
	}
	return v.Style
}

// facets resolves the grid facets without modifying v.
func (v *PieView) facets(exp *experiment.Experiment) []string {
	if len(v.Facets) > 0 {
		return v.Facets
	}

	out := make([]string, 0)
	for _, name := range exp.Conditions().Names() {
		if name != v.Variable {
			out = append(out, name)
		}
	}
	return out
}

func (v *PieView) function() (statistic.Function, error) {
	name := v.Function
	if name == "" {
		name = "count"
	}
	return statistic.LookupFunction(name)
}

// index returns the statistic index names: the facets, then Variable if set.
func (v *PieView) index(facets []string) []string {
	out := append([]string(nil), facets...)
	if v.Variable != "" {
		out = append(out, v.Variable)
	}
	return out
}

func (v *PieView) Validate(exp *experiment.Experiment) error {
	switch s := v.style(); s {
	case StylePie, StylePetal:
		if v.Variable == "" {
			return errors.Wrapf(ErrInvalidView, "%s: no variable set", v.owner())
		}
	case StyleHeat:
		if v.Variable != "" {
			return errors.Wrapf(ErrInvalidView, "%s: heat takes no variable, got %q", v.owner(), v.Variable)
		}
	default:
		return errors.Wrapf(ErrInvalidView, "%s: style must be %q, %q or %q, got %q", v.owner(), StyleHeat, StylePie, StylePetal, s)
	}

	facets := v.facets(exp)
	if err := checkFacets(exp, v.owner(), append([]string{v.Variable}, facets...)...); err != nil {
		return err
	}

	if v.Statistic == nil {
		fn, err := v.function()
		if err != nil {
			return errors.Wrapf(err, "%s", v.owner())
		}
		if v.Channel != "" || !fn.Count {
			if err := experiment.NewChannel(v.Channel, v.owner()).Validate(exp); err != nil {
				return err
			}
		}
	} else if _, err := v.Statistic.Reorder(v.index(facets)); err != nil {
		return errors.Wrapf(err, "%s: statistic", v.owner())
	}

	if v.Positions == nil && len(v.Locations) > 0 {
		if len(v.Locations) > 2 {
			return errors.Wrapf(ErrDimensionMismatch, "%s: %d location channels", v.owner(), len(v.Locations))
		}
		for _, ch := range v.Locations {
			if err := experiment.NewChannel(ch, v.owner()).Validate(exp); err != nil {
				return err
			}
		}
	}

	return checkSubset(exp, v.owner(), v.Subset)
}

// positions returns the position statistic, computing centroids from
// Locations when no explicit statistic was given.
func (v *PieView) positions(table *experiment.Table, facets []string) (*statistic.Statistic, error) {
	if v.Positions != nil || len(v.Locations) == 0 {
		return v.Positions, nil
	}

	if len(v.Locations) == 1 {
		mean, err := statistic.LookupFunction("mean")
		if err != nil {
			return nil, err
		}
		s, err := statistic.Compute(table, facets, v.Locations[0], mean)
		if err != nil {
			return nil, err
		}
		return &s, nil
	}

	s, err := statistic.Centroids(table, facets, v.Locations[0], v.Locations[1])
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (v *PieView) Plot(exp *experiment.Experiment, opts Options) (Artifact, error) {
	if err := opts.check(v.Kind(), pieOptions); err != nil {
		return nil, err
	}
	if err := v.Validate(exp); err != nil {
		return nil, err
	}

	order, err := orderOption(opts)
	if err != nil {
		return nil, err
	}
	var palette Palette
	if v.style() == StyleHeat {
		palette, err = heatPaletteOption(opts)
	} else {
		palette, err = paletteOption(opts)
	}
	if err != nil {
		return nil, err
	}

	table, err := exp.Table(v.Subset)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		log.WithField("view", v.owner()).Warnf("Subset %q selected no events", v.Subset)
	}

	facets := v.facets(exp)

	var stat statistic.Statistic
	if v.Statistic != nil {
		stat = *v.Statistic
	} else {
		fn, err := v.function()
		if err != nil {
			return nil, err
		}
		stat, err = statistic.Compute(table, v.index(facets), v.Channel, fn)
		if err != nil {
			return nil, err
		}
	}

	// Grid cells span every level in the experiment, even those the subset
	// removed, so that empty combinations still get a cell.
	levels := make(map[string][]string, len(facets)+1)
	for _, name := range v.index(facets) {
		if levels[name], err = experimentLevels(exp, name); err != nil {
			return nil, err
		}
	}

	events, err := cellEvents(table, facets)
	if err != nil {
		return nil, err
	}

	positions, err := v.positions(table, facets)
	if err != nil {
		return nil, err
	}

	layout, err := ComputeLayout(LayoutInput{
		Statistic: stat,
		Positions: positions,
		Facets:    facets,
		Variable:  v.Variable,
		Levels:    levels,
		Events:    func(index []string) int { return events[cellKey(index)] },
	}, LayoutConfig{
		Style:  v.style(),
		Size:   opts.Text("size", SizeFixed),
		Radius: opts.Float("radius", 0.4),
		Order:  order,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s", v.owner())
	}

	empty := 0
	for _, c := range layout.Cells {
		if c.Events == 0 {
			empty++
		}
	}
	if empty > 0 {
		log.WithFields(log.Fields{
			"view":  v.owner(),
			"cells": len(layout.Cells),
			"empty": empty,
		}).Warnln("Some grid cells have no events")
	}

	out := &PiePlot{
		Title:  opts.Text("title", v.title(stat)),
		Layout: layout,
		Charts: make([]chart.PieChart, len(layout.Cells)),
	}
	for i, c := range layout.Cells {
		out.Charts[i] = pieChart(c, layout.Style, palette, opts)
	}

	return out, nil
}

func cellEvents(table *experiment.Table, facets []string) (map[string]int, error) {
	groups, err := table.GroupBy(facets...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(groups))
	for _, g := range groups {
		out[cellKey(g.Labels())] = len(g.Rows)
	}
	return out, nil
}

func (v *PieView) title(stat statistic.Statistic) string {
	if v.Variable != "" {
		return v.Variable
	}
	return stat.Name
}

func pieChart(c Cell, style Style, palette Palette, opts Options) chart.PieChart {
	values := make([]chart.Value, 0, len(c.Slices))
	for i, s := range c.Slices {
		if style == StyleHeat {
			// go-chart sizes slices by value, so the heat circle is a single
			// unit slice labelled with the value.
			values = append(values, chart.Value{
				Label: strconv.FormatFloat(s.Value, 'g', 4, 64),
				Value: 1,
				Style: chart.Style{FillColor: palette.Shade(c.Shade)},
			})
			continue
		}
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Level,
			Value: s.Value,
			Style: chart.Style{FillColor: palette.Chart(i)},
		})
	}

	title := ""
	for _, level := range c.Index {
		if title != "" {
			title += " / "
		}
		title += level
	}

	return chart.PieChart{
		Title:  title,
		Width:  opts.Int("width", 256),
		Height: opts.Int("height", 256),
		Values: values,
	}
}
