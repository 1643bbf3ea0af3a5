package experiment

import (
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// Subset is a compiled row predicate over channel and condition names.
//
// The grammar is that of github.com/expr-lang/expr, e.g.
//
//	Dox > 1.0 && genotype == "wt" && V2_A > 500
//
// Names that are not valid identifiers are exposed with every character
// outside [A-Za-z0-9_] replaced by an underscore, so channel "V2-A" is
// written V2_A. A missing channel value evaluates as NaN.
type Subset struct {
	Expression string

	program *vm.Program
	columns map[string]column
}

type column struct {
	name      string
	channel   bool
	condition ConditionType
}

// SanitizeName converts a channel or condition name into the identifier
// used for it in subset expressions.
func SanitizeName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// CompileSubset parses expression and checks that it only references
// channels and conditions of this experiment and that it yields a boolean.
// Any failure is reported as ErrInvalidSubset.
func (e *Experiment) CompileSubset(expression string) (*Subset, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errors.Wrap(ErrInvalidSubset, "empty expression")
	}

	columns := make(map[string]column)
	add := func(c column) error {
		id := SanitizeName(c.name)
		if prev, exists := columns[id]; exists {
			return errors.Wrapf(ErrInvalidSubset, "names %q and %q are both written %s", prev.name, c.name, id)
		}
		columns[id] = c
		return nil
	}

	for _, name := range e.schema.names {
		if err := add(column{name: name, condition: e.schema.types[name]}); err != nil {
			return nil, err
		}
	}
	for _, ch := range e.channels {
		if err := add(column{name: ch, channel: true}); err != nil {
			return nil, err
		}
	}

	env := make(map[string]interface{}, len(columns))
	for id, c := range columns {
		env[id] = c.zero()
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSubset, "%q: %v", expression, err)
	}

	return &Subset{Expression: expression, program: program, columns: columns}, nil
}

func (c column) zero() interface{} {
	if c.channel {
		return 0.0
	}
	switch c.condition {
	case TypeFloat:
		return 0.0
	case TypeInt:
		return 0
	case TypeBool:
		return false
	}
	return ""
}

// Filter keeps the rows of t for which the predicate holds.
func (s *Subset) Filter(t *Table) (*Table, error) {
	channels := make(map[string][]float64)
	conditions := make(map[string][]interface{})
	for id, c := range s.columns {
		if c.channel {
			col, err := t.Channel(c.name)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidSubset, "%q: %v", s.Expression, err)
			}
			vals := make([]float64, len(col))
			for i, v := range col {
				if v.Valid {
					vals[i] = v.Float64
				} else {
					vals[i] = math.NaN()
				}
			}
			channels[id] = vals
			continue
		}

		col, err := t.Condition(c.name)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSubset, "%q: %v", s.Expression, err)
		}
		conditions[id] = col
	}

	keep := make([]bool, t.Len())
	env := make(map[string]interface{}, len(s.columns))
	for row := 0; row < t.Len(); row++ {
		for id, col := range channels {
			env[id] = col[row]
		}
		for id, col := range conditions {
			v := col[row]
			if i, ok := v.(int64); ok {
				v = int(i)
			}
			env[id] = v
		}

		out, err := expr.Run(s.program, env)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSubset, "%q at row %d: %v", s.Expression, row, err)
		}
		b, ok := out.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidSubset, "%q returned %T, not bool", s.Expression, out)
		}
		keep[row] = b
	}

	return t.Filter(func(row int) bool { return keep[row] }), nil
}
