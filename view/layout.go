package view

import (
	"math"
	"strings"

	"github.com/carbocation/cytometry/statistic"
	"github.com/pkg/errors"
)

// Style selects how a statistic is drawn in each grid cell.
type Style string

const (
	// StylePie draws slices whose angle is proportional to the value.
	StylePie Style = "pie"

	// StylePetal (a star plot) draws slices of equal angle whose radius
	// scales with the square root of the value, so area tracks the value.
	StylePetal Style = "petal"

	// StyleHeat draws one circle per cell, shaded by a single value. It
	// takes no Variable.
	StyleHeat Style = "heat"
)

// Circle sizing policies for the "size" option.
const (
	// SizeFixed gives every cell the configured radius.
	SizeFixed = "fixed"

	// SizeEvents scales the configured radius by the cell's share of the
	// largest cell's event count. A cell with no events has radius 0.
	SizeEvents = "events"
)

// LayoutInput is the data a grid is laid out from.
type LayoutInput struct {
	// Statistic is indexed by Facets plus Variable (Facets alone for
	// StyleHeat), in any level order, with one value per row. Pie and petal
	// values must not be negative. NaN, which an empty group produces,
	// draws as 0.
	Statistic statistic.Statistic

	// Positions, if set, is indexed by Facets and holds either a scalar or
	// an (x, y) pair per row. Its index must equal the set of grid cells
	// that have data.
	Positions *statistic.Statistic

	Facets   []string
	Variable string

	// Levels optionally fixes the complete level list of a facet or of the
	// variable. Missing entries are taken from the statistic.
	Levels map[string][]string

	// Events returns the number of events in a cell. Required for
	// SizeEvents.
	Events func(index []string) int
}

// LayoutConfig holds the drawing parameters.
type LayoutConfig struct {
	Style  Style
	Size   string
	Radius float64
	Order  string
}

// Slice is one category within a cell. Angles are in radians; slices start
// at 12 o'clock (pi/2) and proceed clockwise, so Sweep is subtracted from
// Start.
type Slice struct {
	Level  string
	Value  float64
	Start  float64
	Sweep  float64
	Radius float64
}

// Cell is one grid cell: a combination of facet levels.
type Cell struct {
	Index  []string
	Row    int
	Col    int
	Empty  bool
	Events int
	Radius float64
	Slices []Slice

	// Position is set when the layout has positions and the cell has data.
	Position *Point

	// Shade is the heat value rescaled to [0, 1] across the populated
	// cells. It is 0 for other styles.
	Shade float64
}

// Layout is a laid-out heat, pie or petal grid. Edges, when present, refer to
// indices in Cells.
type Layout struct {
	Style    Style
	Facets   []string
	Variable string
	Levels   []string
	Rows     int
	Cols     int
	Cells    []Cell
	Edges    []Edge
}

func cellKey(index []string) string {
	return strings.Join(index, "\x1f")
}

// ComputeLayout builds the Cartesian grid of facet levels, computes the
// slices and circle size of each cell, and, if positions are given, the
// minimum spanning tree over the cell centroids.
func ComputeLayout(in LayoutInput, cfg LayoutConfig) (*Layout, error) {
	switch cfg.Style {
	case StylePie, StylePetal:
		if in.Variable == "" {
			return nil, errors.Wrapf(ErrInvalidView, "style %q needs a variable", cfg.Style)
		}
	case StyleHeat:
		if in.Variable != "" {
			return nil, errors.Wrapf(ErrInvalidView, "style %q takes no variable, got %q", cfg.Style, in.Variable)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidView, "style must be %q, %q or %q, got %q", StyleHeat, StylePie, StylePetal, cfg.Style)
	}
	if cfg.Size != SizeFixed && cfg.Size != SizeEvents {
		return nil, errors.Wrapf(ErrInvalidOption, "size must be %q or %q, got %q", SizeFixed, SizeEvents, cfg.Size)
	}
	if cfg.Size == SizeEvents && in.Events == nil {
		return nil, errors.Wrapf(ErrInvalidOption, "size %q needs event counts", SizeEvents)
	}
	if cfg.Radius < 0 || math.IsNaN(cfg.Radius) {
		return nil, errors.Wrapf(ErrInvalidOption, "radius must be non-negative, got %f", cfg.Radius)
	}

	names := append([]string(nil), in.Facets...)
	if in.Variable != "" {
		names = append(names, in.Variable)
	}
	stat, err := in.Statistic.Reorder(names)
	if err != nil {
		return nil, err
	}

	// Facet and variable levels
	levels := make([][]string, len(names))
	known := make([]map[string]struct{}, len(names))
	for i, name := range stat.Names {
		if fixed, exists := in.Levels[name]; exists {
			levels[i] = sortLevels(fixed, cfg.Order)
		} else {
			seen := make(map[string]struct{})
			for _, row := range stat.Rows {
				if _, exists := seen[row.Index[i]]; !exists {
					seen[row.Index[i]] = struct{}{}
					levels[i] = append(levels[i], row.Index[i])
				}
			}
			levels[i] = sortLevels(levels[i], cfg.Order)
		}

		known[i] = make(map[string]struct{}, len(levels[i]))
		for _, level := range levels[i] {
			known[i][level] = struct{}{}
		}
	}
	facetLevels := levels[:len(in.Facets)]
	var varLevels []string
	if in.Variable != "" {
		varLevels = levels[len(in.Facets)]
	}

	values := make(map[string]float64, len(stat.Rows))
	populated := make(map[string]struct{})
	for _, row := range stat.Rows {
		if len(row.Values) != 1 {
			return nil, errors.Wrapf(ErrDimensionMismatch, "statistic %s has %d values at %v; slices need one", stat.Name, len(row.Values), row.Index)
		}
		for i, level := range row.Index {
			if _, exists := known[i][level]; !exists {
				return nil, errors.Wrapf(ErrIndexMismatch, "statistic %s has %s level %q, which is not among %v", stat.Name, stat.Names[i], level, levels[i])
			}
		}

		v := row.Values[0]
		if math.IsInf(v, 0) || (cfg.Style != StyleHeat && v < 0) {
			return nil, errors.Wrapf(ErrInvalidValue, "statistic %s is %v at %v", stat.Name, v, row.Index)
		}
		values[cellKey(row.Index)] = v
		populated[cellKey(row.Index[:len(in.Facets)])] = struct{}{}
	}

	out := &Layout{
		Style:    cfg.Style,
		Facets:   append([]string(nil), in.Facets...),
		Variable: in.Variable,
		Levels:   varLevels,
		Rows:     1,
		Cols:     1,
	}
	if len(facetLevels) > 0 {
		out.Rows = len(facetLevels[0])
		for _, l := range facetLevels[1:] {
			out.Cols *= len(l)
		}
	}

	out.Cells = crossFacets(facetLevels)
	for i := range out.Cells {
		c := &out.Cells[i]
		_, has := populated[cellKey(c.Index)]
		c.Empty = !has
		if in.Events != nil {
			c.Events = in.Events(c.Index)
		}

		if cfg.Style == StyleHeat {
			// A heat cell is one full circle; cells without a value have none.
			if v, exists := values[cellKey(c.Index)]; exists && !math.IsNaN(v) {
				c.Slices = []Slice{{Value: v}}
			}
			continue
		}

		c.Slices = make([]Slice, len(varLevels))
		for j, level := range varLevels {
			v := values[cellKey(append(append([]string(nil), c.Index...), level))]
			if math.IsNaN(v) {
				v = 0
			}
			c.Slices[j] = Slice{Level: level, Value: v}
		}
	}

	sizeCells(out.Cells, cfg)
	shapeSlices(out.Cells, cfg.Style)

	if in.Positions != nil {
		if err := out.connect(*in.Positions); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// crossFacets enumerates every combination of levels, the first facet
// varying slowest. Row follows the first facet; Col enumerates the rest.
func crossFacets(levels [][]string) []Cell {
	cells := []Cell{{}}
	for _, facet := range levels {
		next := make([]Cell, 0, len(cells)*len(facet))
		for _, c := range cells {
			for _, level := range facet {
				next = append(next, Cell{Index: append(append([]string(nil), c.Index...), level)})
			}
		}
		cells = next
	}

	if len(levels) == 0 {
		return cells
	}

	cols := 1
	for _, l := range levels[1:] {
		cols *= len(l)
	}
	for i := range cells {
		cells[i].Row = i / cols
		cells[i].Col = i % cols
	}
	return cells
}

func sizeCells(cells []Cell, cfg LayoutConfig) {
	if cfg.Size == SizeFixed {
		for i := range cells {
			cells[i].Radius = cfg.Radius
		}
		return
	}

	maxEvents := 0
	for _, c := range cells {
		if c.Events > maxEvents {
			maxEvents = c.Events
		}
	}
	for i := range cells {
		if maxEvents == 0 || cells[i].Events <= 0 {
			cells[i].Radius = 0
			continue
		}
		cells[i].Radius = cfg.Radius * float64(cells[i].Events) / float64(maxEvents)
	}
}

func shapeSlices(cells []Cell, style Style) {
	maxValue := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cells {
		for _, s := range c.Slices {
			maxValue = math.Max(maxValue, s.Value)
			lo = math.Min(lo, s.Value)
			hi = math.Max(hi, s.Value)
		}
	}

	for i := range cells {
		c := &cells[i]
		if len(c.Slices) == 0 {
			continue
		}

		angle := math.Pi / 2
		switch style {
		case StylePie:
			total := 0.0
			for _, s := range c.Slices {
				total += s.Value
			}
			for j := range c.Slices {
				s := &c.Slices[j]
				s.Start, s.Radius = angle, c.Radius
				if total > 0 {
					s.Sweep = 2 * math.Pi * s.Value / total
				}
				angle -= s.Sweep
			}

		case StylePetal:
			sweep := 2 * math.Pi / float64(len(c.Slices))
			for j := range c.Slices {
				s := &c.Slices[j]
				s.Start, s.Sweep = angle, sweep
				if maxValue > 0 {
					s.Radius = c.Radius * math.Sqrt(s.Value/maxValue)
				}
				angle -= sweep
			}

		case StyleHeat:
			s := &c.Slices[0]
			s.Start, s.Sweep, s.Radius = angle, 2*math.Pi, c.Radius
			if hi > lo {
				c.Shade = (s.Value - lo) / (hi - lo)
			}
		}
	}
}

// connect places the populated cells at their positions and joins them with
// a minimum spanning tree.
func (l *Layout) connect(positions statistic.Statistic) error {
	pos, err := positions.Reorder(l.Facets)
	if err != nil {
		return err
	}

	points := make(map[string]Point, len(pos.Rows))
	for _, row := range pos.Rows {
		var p Point
		switch len(row.Values) {
		case 1:
			p = Point{row.Values[0], 0}
		case 2:
			p = Point{row.Values[0], row.Values[1]}
		default:
			return errors.Wrapf(ErrDimensionMismatch, "position %v has %d values", row.Index, len(row.Values))
		}
		if !finite(p) {
			return errors.Wrapf(ErrDimensionMismatch, "position %v is not finite: %v", row.Index, p)
		}
		points[cellKey(row.Index)] = p
	}

	populated := 0
	for _, c := range l.Cells {
		if !c.Empty {
			populated++
		}
	}
	if populated != len(points) {
		return errors.Wrapf(ErrIndexMismatch, "positions %s have %d entries for %d populated cells", positions.Name, len(points), populated)
	}

	nodes := make([]int, 0, populated)
	coords := make([]Point, 0, populated)
	for i := range l.Cells {
		c := &l.Cells[i]
		if c.Empty {
			continue
		}
		p, exists := points[cellKey(c.Index)]
		if !exists {
			return errors.Wrapf(ErrIndexMismatch, "positions %s have no entry for %v", positions.Name, c.Index)
		}
		c.Position = &Point{p[0], p[1]}
		nodes = append(nodes, i)
		coords = append(coords, p)
	}

	for _, e := range MinimumSpanningTree(coords) {
		l.Edges = append(l.Edges, Edge{From: nodes[e.From], To: nodes[e.To], Weight: e.Weight})
	}

	return nil
}
