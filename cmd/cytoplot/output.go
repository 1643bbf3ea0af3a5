package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/cytometry"
	"github.com/carbocation/cytometry/view"
	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func printSummary(w io.Writer, summaries []cytometry.ChannelSummary) {
	fmt.Fprintln(w, strings.Join([]string{"channel", "tubes", "events", "min", "max", "mean", "sd"}, "\t"))
	for _, s := range summaries {
		fmt.Fprintln(w, strings.Join([]string{
			s.Channel,
			strconv.Itoa(s.Tubes),
			strconv.Itoa(s.Events),
			ftoa(s.Min),
			ftoa(s.Max),
			ftoa(s.Mean),
			ftoa(s.SD),
		}, "\t"))
	}
}

func printArtifact(w io.Writer, a view.Artifact) error {
	switch x := a.(type) {
	case *view.HistogramPlot:
		printHistogram(w, x)
	case *view.PiePlot:
		printLayout(w, x.Layout)
	case *view.SelectionPlot:
		if x.Min.Valid && x.Max.Valid {
			fmt.Fprintf(w, "# selection\t%s\t%s\n", ftoa(x.Min.Float64), ftoa(x.Max.Float64))
		}
		return printArtifact(w, x.Base)
	default:
		return pfx.Err(fmt.Errorf("cannot print a %s artifact", a.Kind()))
	}
	return nil
}

func printHistogram(w io.Writer, h *view.HistogramPlot) {
	fmt.Fprintln(w, strings.Join([]string{"x", "y", "hue", "bin_min", "bin_max", "count"}, "\t"))
	for _, p := range h.Panels {
		for _, b := range p.Histogram.Buckets {
			fmt.Fprintln(w, strings.Join([]string{p.X, p.Y, p.Hue, ftoa(b.Min), ftoa(b.Max), strconv.Itoa(b.Count)}, "\t"))
		}
	}
}

func printLayout(w io.Writer, l *view.Layout) {
	variable := l.Variable
	if variable == "" {
		variable = "level"
	}
	header := append(append([]string(nil), l.Facets...), "row", "col", "events", "radius", "x", "y", variable, "value", "start", "sweep", "slice_radius", "shade")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, c := range l.Cells {
		x, y := "NA", "NA"
		if c.Position != nil {
			x, y = ftoa(c.Position[0]), ftoa(c.Position[1])
		}
		cell := append(append([]string(nil), c.Index...), strconv.Itoa(c.Row), strconv.Itoa(c.Col), strconv.Itoa(c.Events), ftoa(c.Radius), x, y)

		for _, s := range c.Slices {
			fmt.Fprintln(w, strings.Join(append(append([]string(nil), cell...), s.Level, ftoa(s.Value), ftoa(s.Start), ftoa(s.Sweep), ftoa(s.Radius), ftoa(c.Shade)), "\t"))
		}
	}

	for _, e := range l.Edges {
		from, to := l.Cells[e.From].Index, l.Cells[e.To].Index
		fmt.Fprintf(w, "# edge\t%s\t%s\t%s\n", strings.Join(from, "/"), strings.Join(to, "/"), ftoa(e.Weight))
	}
}

// renderArtifact writes each chart in a to <prefix>_<n>.png and returns how
// many files were written. Empty charts are skipped.
func renderArtifact(a view.Artifact, prefix string) (int, error) {
	var charts []interface {
		Render(chart.RendererProvider, io.Writer) error
	}

	switch x := a.(type) {
	case *view.HistogramPlot:
		for _, p := range x.Panels {
			if len(p.Chart.Bars) > 0 {
				charts = append(charts, p.Chart)
			}
		}
	case *view.PiePlot:
		for _, c := range x.Charts {
			if len(c.Values) > 0 {
				charts = append(charts, c)
			}
		}
	case *view.SelectionPlot:
		return renderArtifact(x.Base, prefix)
	default:
		return 0, pfx.Err(fmt.Errorf("cannot render a %s artifact", a.Kind()))
	}

	for i, c := range charts {
		if err := renderFile(c, fmt.Sprintf("%s_%d.png", prefix, i)); err != nil {
			return i, err
		}
	}

	return len(charts), nil
}

func renderFile(c interface {
	Render(chart.RendererProvider, io.Writer) error
}, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}
