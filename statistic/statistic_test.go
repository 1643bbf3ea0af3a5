package statistic

import (
	"math"
	"testing"

	"github.com/carbocation/cytometry/experiment"
	"github.com/pkg/errors"
)

func table(t *testing.T) *experiment.Table {
	ex := experiment.New()
	ex.AddCondition("Dox", experiment.TypeFloat)
	ex.AddCondition("genotype", experiment.TypeCategory)

	for _, v := range []struct {
		dox      float64
		genotype string
		values   []float64
	}{
		{1, "wt", []float64{1, 2, 3}},
		{1, "ko", []float64{4, 8}},
		{10, "wt", []float64{2, 4, 6, 8}},
	} {
		data, err := experiment.NewEventData([]string{"V2-A", "Y2-A"}, map[string][]float64{
			"V2-A": v.values,
			"Y2-A": v.values,
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ex.AddTube("", data, map[string]interface{}{"Dox": v.dox, "genotype": v.genotype}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := ex.Table("")
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCompute(t *testing.T) {
	tab := table(t)

	for _, v := range []struct {
		fn      string
		by      []string
		channel string
		want    map[string]float64
	}{
		{"count", []string{"Dox"}, "", map[string]float64{"1": 5, "10": 4}},
		{"mean", []string{"genotype"}, "V2-A", map[string]float64{"wt": 26.0 / 7.0, "ko": 6}},
		{"median", []string{"Dox"}, "V2-A", map[string]float64{"1": 3, "10": 5}},
		{"max", []string{"genotype"}, "Y2-A", map[string]float64{"wt": 8, "ko": 8}},
		{"geom_mean", []string{"genotype"}, "V2-A", map[string]float64{"ko": math.Sqrt(32)}},
	} {
		fn, err := LookupFunction(v.fn)
		if err != nil {
			t.Fatal(err)
		}
		s, err := Compute(tab, v.by, v.channel, fn)
		if err != nil {
			t.Fatalf("%s: %v", v.fn, err)
		}
		for level, want := range v.want {
			row, ok := s.Lookup([]string{level})
			if !ok {
				t.Fatalf("%s: no row for %s", v.fn, level)
			}
			if math.Abs(row.Values[0]-want) > 1e-9 {
				t.Errorf("%s[%s] = %f, want %f", v.fn, level, row.Values[0], want)
			}
		}
	}
}

func TestComputeOrdersByFirstAppearance(t *testing.T) {
	fn, _ := LookupFunction("count")
	s, err := Compute(table(t), []string{"Dox", "genotype"}, "", fn)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", s.Len())
	}
	if s.Rows[0].Index[1] != "wt" || s.Rows[1].Index[1] != "ko" || s.Rows[2].Index[0] != "10" {
		t.Errorf("Unexpected order: %v", s.Rows)
	}
}

func TestUnknownFunction(t *testing.T) {
	if _, err := LookupFunction("mode"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("Expected ErrUnknownFunction, got %v", err)
	}
}

func TestCentroids(t *testing.T) {
	s, err := Centroids(table(t), []string{"Dox"}, "V2-A", "Y2-A")
	if err != nil {
		t.Fatal(err)
	}
	row, ok := s.Lookup([]string{"10"})
	if !ok {
		t.Fatal("No row for Dox=10")
	}
	if len(row.Values) != 2 || row.Values[0] != 5 || row.Values[1] != 5 {
		t.Errorf("Unexpected centroid %v", row.Values)
	}
}

func TestSameIndex(t *testing.T) {
	a := Statistic{Names: []string{"x", "y"}, Rows: []Row{
		{Index: []string{"1", "a"}, Values: []float64{1}},
		{Index: []string{"2", "b"}, Values: []float64{2}},
	}}
	b := Statistic{Names: []string{"y", "x"}, Rows: []Row{
		{Index: []string{"b", "2"}, Values: []float64{0, 1}},
		{Index: []string{"a", "1"}, Values: []float64{1, 0}},
	}}
	c := Statistic{Names: []string{"x", "y"}, Rows: []Row{
		{Index: []string{"1", "a"}, Values: []float64{1}},
	}}

	if !a.SameIndex(b) {
		t.Error("a and b share an index")
	}
	if a.SameIndex(c) {
		t.Error("a and c do not share an index")
	}
}
