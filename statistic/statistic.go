// Package statistic computes per-group summaries of an experiment's events.
// A Statistic is indexed by the levels of one or more conditions and holds
// either one value (an aggregate) or two values (a 2-D position) per index.
package statistic

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownFunction = errors.New("unknown statistic function")
	ErrIndexMismatch   = errors.New("statistic indices differ")
)

// Row is one entry of a Statistic.
type Row struct {
	Index  []string
	Values []float64
}

// Statistic maps a tuple of facet levels to numeric values.
type Statistic struct {
	Name  string
	Names []string
	Rows  []Row
}

func indexKey(index []string) string {
	return strings.Join(index, "\x1f")
}

// Lookup returns the row for index.
func (s Statistic) Lookup(index []string) (Row, bool) {
	key := indexKey(index)
	for _, r := range s.Rows {
		if indexKey(r.Index) == key {
			return r, true
		}
	}
	return Row{}, false
}

// Len is the number of rows.
func (s Statistic) Len() int {
	return len(s.Rows)
}

// Reorder returns a copy whose index levels follow names. names must be a
// permutation of s.Names.
func (s Statistic) Reorder(names []string) (Statistic, error) {
	if len(names) != len(s.Names) {
		return Statistic{}, errors.Wrapf(ErrIndexMismatch, "%s has levels %v, not %v", s.Name, s.Names, names)
	}

	perm := make([]int, len(names))
	for i, name := range names {
		perm[i] = -1
		for j, have := range s.Names {
			if have == name {
				perm[i] = j
				break
			}
		}
		if perm[i] < 0 {
			return Statistic{}, errors.Wrapf(ErrIndexMismatch, "%s has levels %v, not %v", s.Name, s.Names, names)
		}
	}

	out := Statistic{Name: s.Name, Names: append([]string(nil), names...), Rows: make([]Row, len(s.Rows))}
	for r, row := range s.Rows {
		idx := make([]string, len(perm))
		for i, j := range perm {
			idx[i] = row.Index[j]
		}
		out.Rows[r] = Row{Index: idx, Values: append([]float64(nil), row.Values...)}
	}

	return out, nil
}

// SameIndex reports whether s and other have the same level names (in any
// order) and the same set of index tuples.
func (s Statistic) SameIndex(other Statistic) bool {
	o, err := other.Reorder(s.Names)
	if err != nil {
		return false
	}

	if len(o.Rows) != len(s.Rows) {
		return false
	}

	mine := make([]string, len(s.Rows))
	theirs := make([]string, len(o.Rows))
	for i := range s.Rows {
		mine[i] = indexKey(s.Rows[i].Index)
		theirs[i] = indexKey(o.Rows[i].Index)
	}
	sort.Strings(mine)
	sort.Strings(theirs)

	for i := range mine {
		if mine[i] != theirs[i] {
			return false
		}
	}
	return true
}
