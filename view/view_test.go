package view

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/cytometry/statistic"
	"github.com/pkg/errors"
)

var genotypes = []string{"WT", "KO", "HET"}

// testExperiment has one tube per (dox, genotype) pair. The tube for dox
// index d and genotype index g has 10*(g+1)+d events.
func testExperiment(t *testing.T) *experiment.Experiment {
	t.Helper()

	ex := experiment.New()
	if err := ex.AddCondition("genotype", experiment.TypeString); err != nil {
		t.Fatal(err)
	}
	if err := ex.AddCondition("dox", experiment.TypeFloat); err != nil {
		t.Fatal(err)
	}

	for d, dox := range []float64{1, 10} {
		for g, genotype := range genotypes {
			n := 10*(g+1) + d
			fsc := make([]float64, n)
			ssc := make([]float64, n)
			for i := range fsc {
				fsc[i] = float64(i)
				ssc[i] = dox + float64(g)
			}

			data, err := experiment.NewEventData([]string{"FSC-A", "SSC-A"}, map[string][]float64{"FSC-A": fsc, "SSC-A": ssc})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := ex.AddTube(genotype, data, map[string]interface{}{"genotype": genotype, "dox": dox}); err != nil {
				t.Fatal(err)
			}
		}
	}

	return ex
}

func TestPieFixedRadius(t *testing.T) {
	ex := testExperiment(t)

	v := &PieView{Variable: "genotype"}
	out, err := v.Plot(ex, Options{"size": SizeFixed, "radius": 5.0})
	if err != nil {
		t.Fatal(err)
	}

	plot, ok := out.(*PiePlot)
	if !ok {
		t.Fatalf("Expected *PiePlot, got %T", out)
	}
	if plot.Kind() != KindPie {
		t.Fatalf("Expected kind %s, got %s", KindPie, plot.Kind())
	}

	l := plot.Layout
	if len(l.Facets) != 1 || l.Facets[0] != "dox" {
		t.Fatalf("Expected the grid to default to the dox facet, got %v", l.Facets)
	}
	if len(l.Cells) != 2 {
		t.Fatalf("Expected 2 cells, got %d", len(l.Cells))
	}
	for _, c := range l.Cells {
		if c.Radius != 5.0 {
			t.Fatalf("Cell %v: expected radius exactly 5.0, got %f", c.Index, c.Radius)
		}
		if len(c.Slices) != len(genotypes) {
			t.Fatalf("Cell %v: expected %d slices, got %d", c.Index, len(genotypes), len(c.Slices))
		}

		sweep := 0.0
		for _, s := range c.Slices {
			sweep += s.Sweep
		}
		if math.Abs(sweep-2*math.Pi) > 1e-9 {
			t.Fatalf("Cell %v: slices sweep %f, not a full circle", c.Index, sweep)
		}
	}

	if len(plot.Charts) != len(l.Cells) || len(plot.Charts[0].Values) != len(genotypes) {
		t.Fatalf("Expected one chart per cell with one value per genotype, got %+v", plot.Charts)
	}
}

func TestPieEventSizing(t *testing.T) {
	ex := testExperiment(t)

	v := &PieView{Variable: "genotype", Facets: []string{"dox"}}
	out, err := v.Plot(ex, Options{"size": SizeEvents, "radius": 2.0})
	if err != nil {
		t.Fatal(err)
	}

	l := out.(*PiePlot).Layout
	for _, c := range l.Cells {
		var events int
		var radius float64
		switch c.Index[0] {
		case "1":
			events, radius = 60, 2*60.0/63
		case "10":
			events, radius = 63, 2
		default:
			t.Fatalf("Unexpected cell %v", c.Index)
		}

		if c.Events != events {
			t.Fatalf("Cell %v: expected %d events, got %d", c.Index, events, c.Events)
		}
		if math.Abs(c.Radius-radius) > 1e-12 {
			t.Fatalf("Cell %v: expected radius %f, got %f", c.Index, radius, c.Radius)
		}
	}
}

func TestPieSubsetKeepsEmptyCells(t *testing.T) {
	ex := testExperiment(t)

	v := &PieView{Variable: "genotype", Subset: "dox > 5", Locations: []string{"FSC-A", "SSC-A"}}
	out, err := v.Plot(ex, Options{"size": SizeEvents})
	if err != nil {
		t.Fatal(err)
	}

	l := out.(*PiePlot).Layout
	if len(l.Cells) != 2 {
		t.Fatalf("Expected 2 cells, got %d", len(l.Cells))
	}
	for _, c := range l.Cells {
		if c.Index[0] == "1" {
			if !c.Empty || c.Events != 0 || c.Radius != 0 || c.Position != nil {
				t.Fatalf("Expected cell %v to be empty with radius 0, got %+v", c.Index, c)
			}
			continue
		}
		if c.Empty || c.Position == nil {
			t.Fatalf("Expected cell %v to hold data and a position, got %+v", c.Index, c)
		}
	}
	if len(l.Edges) != 0 {
		t.Fatalf("Expected no edges with one populated cell, got %v", l.Edges)
	}
}

func TestPetalWithCentroids(t *testing.T) {
	ex := testExperiment(t)

	v := &PieView{
		Variable:  "dox",
		Facets:    []string{"genotype"},
		Channel:   "FSC-A",
		Function:  "mean",
		Locations: []string{"FSC-A", "SSC-A"},
		Style:     StylePetal,
	}
	out, err := v.Plot(ex, Options{"order": OrderSorted})
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind() != KindPetal {
		t.Fatalf("Expected kind %s, got %s", KindPetal, out.Kind())
	}

	l := out.(*PiePlot).Layout
	if len(l.Cells) != 3 || len(l.Edges) != 2 {
		t.Fatalf("Expected 3 cells joined by 2 edges, got %d cells and %v", len(l.Cells), l.Edges)
	}

	// Sorted order puts HET before KO before WT
	for i, want := range []string{"HET", "KO", "WT"} {
		if l.Cells[i].Index[0] != want {
			t.Fatalf("Cell %d: expected %s, got %v", i, want, l.Cells[i].Index)
		}
	}
	for _, c := range l.Cells {
		for _, s := range c.Slices {
			if math.Abs(s.Sweep-math.Pi) > 1e-12 {
				t.Fatalf("Expected two petals of equal angle, got %f", s.Sweep)
			}
		}
	}
}

func TestHeatView(t *testing.T) {
	ex := testExperiment(t)

	v := &PieView{Style: StyleHeat, Facets: []string{"dox"}, Locations: []string{"SSC-A"}}
	if err := v.Validate(ex); err != nil {
		t.Fatal(err)
	}
	out, err := v.Plot(ex, Options{"palette": []string{"#000000", "#ffffff"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind() != KindHeat {
		t.Fatalf("Expected kind %s, got %s", KindHeat, out.Kind())
	}

	plot := out.(*PiePlot)
	l := plot.Layout
	if len(l.Cells) != 2 || len(l.Edges) != 1 {
		t.Fatalf("Expected 2 cells joined by one edge, got %d cells and %v", len(l.Cells), l.Edges)
	}
	for i, want := range []struct {
		count float64
		shade float64
	}{{60, 0}, {63, 1}} {
		c := l.Cells[i]
		if len(c.Slices) != 1 || c.Slices[0].Value != want.count || c.Shade != want.shade {
			t.Fatalf("Cell %v: expected count %f and shade %f, got %+v", c.Index, want.count, want.shade, c)
		}
	}

	last := plot.Charts[1].Values
	if len(last) != 1 || last[0].Style.FillColor.R != 255 {
		t.Fatalf("Expected the largest cell to take the last palette color, got %+v", last)
	}
}

func TestPaletteShade(t *testing.T) {
	p, err := ParsePalette([]string{"#000000", "#ffffff"})
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		t    float64
		want uint8
	}{{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {2, 255}, {math.NaN(), 0}} {
		if c := p.Shade(tc.t); c.R != tc.want || c.G != tc.want || c.B != tc.want {
			t.Fatalf("Shade(%f): expected gray %d, got %+v", tc.t, tc.want, c)
		}
	}
}

func TestPieValidate(t *testing.T) {
	ex := testExperiment(t)

	for name, tc := range map[string]struct {
		view *PieView
		want error
	}{
		"no variable":      {&PieView{}, ErrInvalidView},
		"unknown variable": {&PieView{Variable: "time"}, experiment.ErrUnknownCondition},
		"variable faceted": {&PieView{Variable: "dox", Facets: []string{"dox"}}, ErrInvalidView},
		"unknown channel":  {&PieView{Variable: "dox", Channel: "PE-A", Function: "mean"}, experiment.ErrUnknownChannel},
		"no channel":       {&PieView{Variable: "dox", Function: "mean"}, experiment.ErrUnknownChannel},
		"unknown function": {&PieView{Variable: "dox", Channel: "FSC-A", Function: "mode"}, statistic.ErrUnknownFunction},
		"bad style":        {&PieView{Variable: "dox", Style: "donut"}, ErrInvalidView},
		"heat variable":    {&PieView{Variable: "dox", Style: StyleHeat}, ErrInvalidView},
		"bad subset":       {&PieView{Variable: "dox", Subset: "dox >"}, experiment.ErrInvalidSubset},
		"three locations":  {&PieView{Variable: "dox", Locations: []string{"FSC-A", "SSC-A", "FSC-A"}}, ErrDimensionMismatch},
	} {
		if err := tc.view.Validate(ex); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, err)
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	ex := testExperiment(t)
	tubes, events, channels := ex.Len(), ex.Events(), len(ex.Channels())

	for _, v := range []View{
		&HistogramView{Channel: "FSC-A", XFacet: "dox", Subset: "genotype == 'WT'"},
		&PieView{Variable: "genotype", Channel: "SSC-A", Function: "median"},
		NewRangeSelection(&HistogramView{Channel: "FSC-A"}),
	} {
		first := v.Validate(ex)
		second := v.Validate(ex)
		if first != nil || second != nil {
			t.Fatalf("%s: expected both validations to pass, got %v and %v", v.Kind(), first, second)
		}
	}

	if ex.Len() != tubes || ex.Events() != events || len(ex.Channels()) != channels || ex.Conditions().Len() != 2 {
		t.Fatalf("Validate modified the experiment")
	}
}

func TestHistogram(t *testing.T) {
	ex := testExperiment(t)

	v := &HistogramView{Channel: "FSC-A", XFacet: "dox", HueFacet: "genotype"}
	out, err := v.Plot(ex, Options{"bins": 8, "title": "forward scatter"})
	if err != nil {
		t.Fatal(err)
	}

	plot := out.(*HistogramPlot)
	if len(plot.Panels) != 6 {
		t.Fatalf("Expected 6 panels, got %d", len(plot.Panels))
	}

	total := 0
	for _, p := range plot.Panels {
		total += p.Events
		if p.X == "" || p.Hue == "" || p.Y != "" {
			t.Fatalf("Panel has the wrong facet labels: %+v", p)
		}
		if p.Chart.Title == "" || len(p.Chart.Bars) == 0 {
			t.Fatalf("Panel %s/%s has no chart", p.X, p.Hue)
		}
	}
	if total != ex.Events() {
		t.Fatalf("Expected %d events across panels, got %d", ex.Events(), total)
	}
}

func TestHistogramErrors(t *testing.T) {
	ex := testExperiment(t)

	for name, tc := range map[string]struct {
		view *HistogramView
		opts Options
		want error
	}{
		"unknown channel": {&HistogramView{Channel: "PE-A"}, nil, experiment.ErrUnknownChannel},
		"unknown facet":   {&HistogramView{Channel: "FSC-A", XFacet: "time"}, nil, experiment.ErrUnknownCondition},
		"repeated facet":  {&HistogramView{Channel: "FSC-A", XFacet: "dox", YFacet: "dox"}, nil, ErrInvalidView},
		"unknown option":  {&HistogramView{Channel: "FSC-A"}, Options{"binz": 10}, ErrUnknownOption},
		"bad option type": {&HistogramView{Channel: "FSC-A"}, Options{"bins": "ten"}, ErrInvalidOption},
		"no bins":         {&HistogramView{Channel: "FSC-A"}, Options{"bins": 0}, ErrInvalidOption},
		"bad palette":     {&HistogramView{Channel: "FSC-A"}, Options{"palette": []string{"blue"}}, ErrInvalidOption},
		"bad order":       {&HistogramView{Channel: "FSC-A"}, Options{"order": "random"}, ErrInvalidOption},
	} {
		if _, err := tc.view.Plot(ex, tc.opts); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, err)
		}
	}
}

func TestRangeSelection(t *testing.T) {
	ex := testExperiment(t)

	r := NewRangeSelection(&HistogramView{Channel: "FSC-A"})
	if _, _, ok := r.Range(); ok {
		t.Fatalf("Expected no selection before the first drag")
	}

	out, err := r.Plot(ex, Options{"interactive": true, "bins": 10})
	if err != nil {
		t.Fatal(err)
	}
	plot := out.(*SelectionPlot)
	if !plot.Interactive || plot.Base.Kind() != KindHistogram {
		t.Fatalf("Expected an interactive histogram, got %+v", plot)
	}

	if plot.OnSelect(3, 3) {
		t.Fatalf("A zero-width selection should be ignored")
	}
	if plot.OnSelect(math.NaN(), 3) {
		t.Fatalf("A NaN selection should be ignored")
	}
	if _, _, ok := r.Range(); ok {
		t.Fatalf("Expected no selection after ignored drags")
	}

	if !r.Select(12, 2) {
		t.Fatalf("Expected the selection to be recorded")
	}
	lo, hi, ok := r.Range()
	if !ok || lo.Float64 != 2 || hi.Float64 != 12 {
		t.Fatalf("Expected range [2, 12], got [%v, %v] (%v)", lo, hi, ok)
	}

	// Zero width leaves the previous selection in place
	r.Select(5, 5)
	if lo, hi, _ := r.Range(); lo.Float64 != 2 || hi.Float64 != 12 {
		t.Fatalf("Expected range [2, 12] to survive, got [%v, %v]", lo, hi)
	}
}

func TestRangeSelectionDelegates(t *testing.T) {
	ex := testExperiment(t)

	r := NewRangeSelection(&HistogramView{Channel: "PE-A"})
	if err := r.Validate(ex); !errors.Is(err, experiment.ErrUnknownChannel) {
		t.Fatalf("Expected the wrapped view's ErrUnknownChannel, got %v", err)
	}

	r = NewRangeSelection(&HistogramView{Channel: "FSC-A"})
	if _, err := r.Plot(ex, Options{"radius": 1.0}); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("Expected the wrapped view to reject radius, got %v", err)
	}
	if _, err := r.Plot(ex, Options{"interactive": "yes"}); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("Expected ErrInvalidOption for a non-bool interactive, got %v", err)
	}

	if err := (&RangeSelection{}).Validate(ex); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("Expected ErrInvalidView with nothing to wrap, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{Kind: "scatter"}); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("Expected ErrUnknownView, got %v", err)
	}
	if _, err := New(Config{Kind: KindRange}); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("Expected ErrInvalidView for a range view with nothing to wrap, got %v", err)
	}
	if _, err := New(Config{Kind: KindRange, Wrap: &Config{Kind: "scatter"}}); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("Expected ErrUnknownView from the wrapped config, got %v", err)
	}

	v, err := New(Config{Kind: KindPetal, Variable: "genotype"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindPetal || v.(*PieView).Style != StylePetal {
		t.Fatalf("Expected a petal view, got %+v", v)
	}

	v, err = New(Config{Kind: KindHeat, Facets: []string{"dox"}})
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindHeat || v.(*PieView).Style != StyleHeat {
		t.Fatalf("Expected a heat view, got %+v", v)
	}
}

func TestConfigFromJSON(t *testing.T) {
	ex := testExperiment(t)

	raw := `{
		"kind": "range",
		"name": "gate",
		"view": {"kind": "histogram", "channel": "FSC-A", "huefacet": "genotype"},
		"options": {"bins": 12, "interactive": true, "palette": ["#000000", "#ff0000"]}
	}`

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatal(err)
	}

	v, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	out, err := v.Plot(ex, cfg.Options)
	if err != nil {
		t.Fatal(err)
	}
	hist := out.(*SelectionPlot).Base.(*HistogramPlot)
	if hist.Bins != 12 || len(hist.Panels) != len(genotypes) {
		t.Fatalf("Expected %d panels of 12 bins, got %d of %d", len(genotypes), len(hist.Panels), hist.Bins)
	}
}
