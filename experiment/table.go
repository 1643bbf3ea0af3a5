package experiment

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Table is the combined, columnar view of an Experiment: one row per event
// across all tubes, with channel columns and the tube's condition values
// broadcast to every one of its rows. Channel cells are null where the
// event's tube did not acquire that channel.
type Table struct {
	schema     *Schema
	channels   []string
	channelCol map[string][]null.Float
	condCol    map[string][]interface{}
	tubes      []TubeID
}

// Table returns the combined dataset. When subset is non-empty, only rows for
// which the predicate holds are kept; see CompileSubset for the grammar.
func (e *Experiment) Table(subset string) (*Table, error) {
	var pred *Subset
	if subset != "" {
		var err error
		pred, err = e.CompileSubset(subset)
		if err != nil {
			return nil, err
		}
	}

	t := e.table()
	if pred == nil {
		return t, nil
	}

	return pred.Filter(t)
}

// SubsetByCondition returns the rows whose condition equals value.
func (e *Experiment) SubsetByCondition(condition string, value interface{}) (*Table, error) {
	v, err := e.schema.Validate(condition, value)
	if err != nil {
		return nil, err
	}

	t := e.table()
	col := t.condCol[condition]
	return t.Filter(func(i int) bool { return col[i] == v }), nil
}

func (e *Experiment) table() *Table {
	n := e.Events()

	out := &Table{
		schema:     e.schema.clone(),
		channels:   e.Channels(),
		channelCol: make(map[string][]null.Float, len(e.channels)),
		condCol:    make(map[string][]interface{}, e.schema.Len()),
		tubes:      make([]TubeID, 0, n),
	}

	for _, ch := range out.channels {
		out.channelCol[ch] = make([]null.Float, 0, n)
	}
	for _, name := range e.schema.names {
		out.condCol[name] = make([]interface{}, 0, n)
	}

	for _, t := range e.tubes {
		rows := t.data.Len()

		for _, ch := range out.channels {
			col, acquired := t.data.Column(ch)
			for i := 0; i < rows; i++ {
				if acquired {
					out.channelCol[ch] = append(out.channelCol[ch], null.FloatFrom(col[i]))
				} else {
					out.channelCol[ch] = append(out.channelCol[ch], null.Float{})
				}
			}
		}

		for _, name := range e.schema.names {
			v := t.conditions[name]
			for i := 0; i < rows; i++ {
				out.condCol[name] = append(out.condCol[name], v)
			}
		}

		for i := 0; i < rows; i++ {
			out.tubes = append(out.tubes, t.ID)
		}
	}

	return out
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.tubes)
}

// Channels returns the channel column names.
func (t *Table) Channels() []string {
	return append([]string(nil), t.channels...)
}

// Conditions returns the condition column names in schema order.
func (t *Table) Conditions() []string {
	return t.schema.Names()
}

// Schema returns the condition schema the table was built under.
func (t *Table) Schema() *Schema {
	return t.schema.clone()
}

// Channel returns a channel column.
func (t *Table) Channel(name string) ([]null.Float, error) {
	col, exists := t.channelCol[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownChannel, "%q", name)
	}
	return col, nil
}

// Values returns the valid (non-null) values of a channel for the given
// rows, or for every row when rows is nil.
func (t *Table) Values(channel string, rows []int) ([]float64, error) {
	col, err := t.Channel(channel)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(col))
	if rows == nil {
		for _, v := range col {
			if v.Valid {
				out = append(out, v.Float64)
			}
		}
		return out, nil
	}

	for _, i := range rows {
		if col[i].Valid {
			out = append(out, col[i].Float64)
		}
	}
	return out, nil
}

// Condition returns a condition column.
func (t *Table) Condition(name string) ([]interface{}, error) {
	col, exists := t.condCol[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownCondition, "%q", name)
	}
	return col, nil
}

// TubeOf returns the source tube of row i.
func (t *Table) TubeOf(i int) TubeID {
	return t.tubes[i]
}

// Filter returns a new table holding the rows for which keep is true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{
		schema:     t.schema,
		channels:   t.channels,
		channelCol: make(map[string][]null.Float, len(t.channelCol)),
		condCol:    make(map[string][]interface{}, len(t.condCol)),
	}

	rows := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}

	for name, col := range t.channelCol {
		sub := make([]null.Float, len(rows))
		for j, i := range rows {
			sub[j] = col[i]
		}
		out.channelCol[name] = sub
	}
	for name, col := range t.condCol {
		sub := make([]interface{}, len(rows))
		for j, i := range rows {
			sub[j] = col[i]
		}
		out.condCol[name] = sub
	}
	out.tubes = make([]TubeID, len(rows))
	for j, i := range rows {
		out.tubes[j] = t.tubes[i]
	}

	return out
}

// GroupBy partitions row indices by the values of the given conditions. Groups
// are returned in order of first appearance.
func (t *Table) GroupBy(conditions ...string) ([]Group, error) {
	cols := make([][]interface{}, len(conditions))
	for i, name := range conditions {
		col, err := t.Condition(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	index := make(map[string]int)
	out := make([]Group, 0)
	for row := 0; row < t.Len(); row++ {
		levels := make([]interface{}, len(cols))
		for i, col := range cols {
			levels[i] = col[row]
		}

		key := levelKey(levels)
		g, exists := index[key]
		if !exists {
			g = len(out)
			index[key] = g
			out = append(out, Group{Levels: levels})
		}
		out[g].Rows = append(out[g].Rows, row)
	}

	return out, nil
}

// Group is a set of rows sharing the same condition values.
type Group struct {
	Levels []interface{}
	Rows   []int
}

// Labels returns the group's levels formatted as strings.
func (g Group) Labels() []string {
	out := make([]string, len(g.Levels))
	for i, v := range g.Levels {
		out[i] = FormatValue(v)
	}
	return out
}

func levelKey(levels []interface{}) string {
	m := make(map[string]interface{}, len(levels))
	for i, v := range levels {
		m[strconv.Itoa(i)] = v
	}
	return conditionKey(m)
}
