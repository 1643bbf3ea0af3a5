package experiment

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// EventData holds the per-event measurements of one tube: one column per
// channel, all of equal length. It is produced by an external parser; the
// experiment model only checks that it is rectangular.
type EventData struct {
	Channels []string
	Columns  [][]float64
}

// NewEventData builds EventData from a channel -> column map. Channels are
// ordered as given in order; every name in order must be present in columns.
func NewEventData(order []string, columns map[string][]float64) (EventData, error) {
	out := EventData{Channels: make([]string, 0, len(order)), Columns: make([][]float64, 0, len(order))}
	for _, name := range order {
		col, exists := columns[name]
		if !exists {
			return EventData{}, errors.Wrapf(ErrInvalidEventData, "no column for channel %q", name)
		}
		out.Channels = append(out.Channels, name)
		out.Columns = append(out.Columns, col)
	}

	return out, out.check()
}

// Len is the number of events.
func (d EventData) Len() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0])
}

// Column returns the values of channel, or false if the tube did not acquire
// it.
func (d EventData) Column(channel string) ([]float64, bool) {
	for i, name := range d.Channels {
		if name == channel {
			return d.Columns[i], true
		}
	}
	return nil, false
}

func (d EventData) check() error {
	if len(d.Channels) != len(d.Columns) {
		return errors.Wrapf(ErrInvalidEventData, "%d channel names for %d columns", len(d.Channels), len(d.Columns))
	}

	seen := make(map[string]struct{}, len(d.Channels))
	for i, name := range d.Channels {
		if name == "" {
			return errors.Wrapf(ErrInvalidEventData, "channel %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return errors.Wrapf(ErrInvalidEventData, "channel %q appears twice", name)
		}
		seen[name] = struct{}{}

		if len(d.Columns[i]) != len(d.Columns[0]) {
			return errors.Wrapf(ErrInvalidEventData, "channel %q has %d events, expected %d", name, len(d.Columns[i]), len(d.Columns[0]))
		}
	}

	return nil
}

// TubeID is a stable handle to a tube within one Experiment. IDs are never
// reused, even after a tube is removed.
type TubeID uint64

// Tube is one imported sample plus the condition values attached to it.
type Tube struct {
	ID         TubeID
	Name       string
	data       EventData
	conditions map[string]interface{}
}

// Data returns the tube's events. The columns are shared with the
// Experiment and must not be modified.
func (t *Tube) Data() EventData {
	return t.data
}

// Condition returns the normalized value of a condition on this tube.
func (t *Tube) Condition(name string) (interface{}, bool) {
	v, exists := t.conditions[name]
	return v, exists
}

// Conditions returns a copy of the tube's condition values.
func (t *Tube) Conditions() map[string]interface{} {
	out := make(map[string]interface{}, len(t.conditions))
	for k, v := range t.conditions {
		out[k] = v
	}
	return out
}

// conditionKey encodes an unordered set of normalized condition values.
// Names are sorted so that the key does not depend on map iteration order,
// and each value carries its type so that, e.g., "1" and 1 never collide.
func conditionKey(conditions map[string]interface{}) string {
	names := make([]string, 0, len(conditions))
	for name := range conditions {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(strconv.Quote(name))
		sb.WriteByte('=')
		switch v := conditions[name].(type) {
		case float64:
			sb.WriteString("f:")
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case int64:
			sb.WriteString("i:")
			sb.WriteString(strconv.FormatInt(v, 10))
		case bool:
			sb.WriteString("b:")
			sb.WriteString(strconv.FormatBool(v))
		case string:
			sb.WriteString("s:")
			sb.WriteString(strconv.Quote(v))
		}
		sb.WriteByte(';')
	}

	return sb.String()
}
