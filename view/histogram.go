package view

import (
	"math"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// HistogramView plots the distribution of one channel, optionally split into
// panels by x and y facets and colored by a hue facet.
type HistogramView struct {
	Name     string
	Channel  string
	XFacet   string
	YFacet   string
	HueFacet string
	Subset   string
}

var histogramOptions = optionSpec{
	"bins":    optInt,
	"title":   optString,
	"palette": optStrings,
	"order":   optString,
	"width":   optInt,
	"height":  optInt,
}

// HistogramPlot holds one panel per combination of facet levels present in
// the data.
type HistogramPlot struct {
	Title   string
	Channel string
	Bins    int
	Panels  []HistogramPanel
}

// HistogramPanel is the histogram of one (x, y, hue) facet combination.
type HistogramPanel struct {
	X, Y, Hue string
	Events    int
	Histogram histogram.Histogram
	Chart     chart.BarChart
}

func (p *HistogramPlot) Kind() Kind { return KindHistogram }

func (v *HistogramView) Kind() Kind { return KindHistogram }

func (v *HistogramView) owner() string { return ownerName(KindHistogram, v.Name) }

func (v *HistogramView) Validate(exp *experiment.Experiment) error {
	if err := experiment.NewChannel(v.Channel, v.owner()).Validate(exp); err != nil {
		return err
	}
	if err := checkFacets(exp, v.owner(), v.XFacet, v.YFacet, v.HueFacet); err != nil {
		return err
	}
	return checkSubset(exp, v.owner(), v.Subset)
}

func (v *HistogramView) Plot(exp *experiment.Experiment, opts Options) (Artifact, error) {
	if err := opts.check(KindHistogram, histogramOptions); err != nil {
		return nil, err
	}
	if err := v.Validate(exp); err != nil {
		return nil, err
	}

	bins := opts.Int("bins", 50)
	if bins < 1 {
		return nil, errors.Wrapf(ErrInvalidOption, "%s: bins must be positive, got %d", v.owner(), bins)
	}
	order, err := orderOption(opts)
	if err != nil {
		return nil, err
	}
	palette, err := paletteOption(opts)
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

	facets := make([]string, 0, 3)
	for _, f := range []string{v.XFacet, v.YFacet, v.HueFacet} {
		if f != "" {
			facets = append(facets, f)
		}
	}

	groups, err := table.GroupBy(facets...)
	if err != nil {
		return nil, err
	}
	groups = sortGroups(groups, order)

	out := &HistogramPlot{
		Title:   opts.Text("title", v.Channel),
		Channel: v.Channel,
		Bins:    bins,
		Panels:  make([]HistogramPanel, 0, len(groups)),
	}

	hues := make(map[string]int)
	for _, g := range groups {
		labels := g.Labels()
		panel := HistogramPanel{Events: len(g.Rows)}

		i := 0
		if v.XFacet != "" {
			panel.X = labels[i]
			i++
		}
		if v.YFacet != "" {
			panel.Y = labels[i]
			i++
		}
		if v.HueFacet != "" {
			panel.Hue = labels[i]
		}
		if _, seen := hues[panel.Hue]; !seen {
			hues[panel.Hue] = len(hues)
		}

		values, err := table.Values(v.Channel, g.Rows)
		if err != nil {
			return nil, err
		}
		values = finiteValues(values)
		if len(values) > 0 {
			panel.Histogram = histogram.Hist(bins, values)
		}

		panel.Chart = histogramChart(out.Title, panel, palette.Chart(hues[panel.Hue]), opts)
		out.Panels = append(out.Panels, panel)
	}

	return out, nil
}

// finiteValues drops NaN and infinite values, which cannot be binned.
func finiteValues(x []float64) []float64 {
	out := x[:0:0]
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func histogramChart(title string, panel HistogramPanel, fill drawing.Color, opts Options) chart.BarChart {
	for _, level := range []string{panel.X, panel.Y, panel.Hue} {
		if level != "" {
			title += " " + level
		}
	}

	bars := make([]chart.Value, 0, len(panel.Histogram.Buckets))
	for _, b := range panel.Histogram.Buckets {
		bars = append(bars, chart.Value{
			Label: strconv.FormatFloat(b.Min, 'g', 4, 64),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	return chart.BarChart{
		Title:  title,
		Width:  opts.Int("width", 512),
		Height: opts.Int("height", 256),
		Bars:   bars,
	}
}
