package statistic

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Function reduces the values of one channel within a group to a number.
type Function struct {
	Name string

	// Count ignores the channel and reduces the number of events.
	Count bool

	reduce func([]float64) float64
}

// Apply reduces x. Empty input yields NaN, except for count.
func (f Function) Apply(x []float64) float64 {
	if f.Count {
		return float64(len(x))
	}
	if len(x) == 0 {
		return math.NaN()
	}
	return f.reduce(x)
}

var functions = map[string]Function{
	"count": {Name: "count", Count: true},
	"mean": {Name: "mean", reduce: func(x []float64) float64 {
		return stat.Mean(x, nil)
	}},
	"sd": {Name: "sd", reduce: func(x []float64) float64 {
		if len(x) < 2 {
			return math.NaN()
		}
		return stat.StdDev(x, nil)
	}},
	"sem": {Name: "sem", reduce: func(x []float64) float64 {
		if len(x) < 2 {
			return math.NaN()
		}
		return stat.StdErr(stat.StdDev(x, nil), float64(len(x)))
	}},
	"median":    {Name: "median", reduce: montanaflynn(stats.Median)},
	"geom_mean": {Name: "geom_mean", reduce: montanaflynn(stats.GeometricMean)},
	"min":       {Name: "min", reduce: montanaflynn(stats.Min)},
	"max":       {Name: "max", reduce: montanaflynn(stats.Max)},
}

// montanaflynn adapts a github.com/montanaflynn/stats reducer; its errors
// (empty input, out of domain) become NaN.
func montanaflynn(f func(stats.Float64Data) (float64, error)) func([]float64) float64 {
	return func(x []float64) float64 {
		v, err := f(x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// LookupFunction returns the named function.
func LookupFunction(name string) (Function, error) {
	f, exists := functions[name]
	if !exists {
		return Function{}, errors.Wrapf(ErrUnknownFunction, "%q (have %v)", name, FunctionNames())
	}
	return f, nil
}

// FunctionNames lists the known functions.
func FunctionNames() []string {
	out := make([]string, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
