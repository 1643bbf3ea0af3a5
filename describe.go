package cytometry

import (
	"math"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/runningvariance"
)

// ChannelSummary holds running statistics of one channel over every tube
// that acquired it.
type ChannelSummary struct {
	Channel string
	Tubes   int
	Events  int
	Min     float64
	Max     float64
	Mean    float64
	SD      float64
}

// Describe summarizes each channel of exp in one pass over the events.
// Channels appear in the experiment's channel order.
func Describe(exp *experiment.Experiment) []ChannelSummary {
	channels := exp.Channels()
	out := make([]ChannelSummary, len(channels))
	stats := make([]*runningvariance.RunningStat, len(channels))
	for i, name := range channels {
		out[i] = ChannelSummary{Channel: name, Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), SD: math.NaN()}
		stats[i] = runningvariance.NewRunningStat()
	}

	for _, tube := range exp.Tubes() {
		data := tube.Data()
		for i, name := range channels {
			col, ok := data.Column(name)
			if !ok {
				continue
			}

			s := &out[i]
			s.Tubes++
			for _, v := range col {
				if s.Events == 0 || v < s.Min {
					s.Min = v
				}
				if s.Events == 0 || v > s.Max {
					s.Max = v
				}
				s.Events++
				stats[i].Push(v)
			}
		}
	}

	for i := range out {
		if out[i].Events > 0 {
			out[i].Mean = stats[i].Mean()
		}
		if out[i].Events > 1 {
			out[i].SD = stats[i].StandardDeviation()
		}
	}

	return out
}
