package experiment

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ConditionType is the declared scalar type of a condition.
type ConditionType byte

const (
	TypeInvalid ConditionType = iota
	TypeFloat
	TypeInt
	TypeString
	TypeBool
	TypeCategory
)

var conditionTypeNames = map[ConditionType]string{
	TypeFloat:    "float",
	TypeInt:      "int",
	TypeString:   "string",
	TypeBool:     "bool",
	TypeCategory: "category",
}

func (t ConditionType) String() string {
	if name, exists := conditionTypeNames[t]; exists {
		return name
	}
	return "invalid"
}

// ParseConditionType maps a type name (as written in a manifest) to its
// ConditionType. A few common aliases are accepted.
func ParseConditionType(name string) (ConditionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float", "float64", "double":
		return TypeFloat, nil
	case "int", "int64", "integer":
		return TypeInt, nil
	case "string", "str":
		return TypeString, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "category", "categorical":
		return TypeCategory, nil
	}

	return TypeInvalid, errors.Wrapf(ErrTypeMismatch, "%q is not a condition type", name)
}

// Normalize converts v into the canonical Go representation for this type:
// float64 for TypeFloat, int64 for TypeInt, string for TypeString and
// TypeCategory, bool for TypeBool. The second return is false when v cannot
// be represented. Float NaN is never a valid value.
func (t ConditionType) Normalize(v interface{}) (interface{}, bool) {
	switch t {
	case TypeFloat:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		default:
			i, ok := asInt64(v)
			if !ok {
				return nil, false
			}
			f = float64(i)
		}
		if math.IsNaN(f) {
			return nil, false
		}
		// -0 and +0 are the same condition value.
		if f == 0 {
			f = 0
		}
		return f, true
	case TypeInt:
		if i, ok := asInt64(v); ok {
			return i, true
		}
		// Whole floats are tolerated, which is what JSON decoding produces.
		if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	case TypeString, TypeCategory:
		if s, ok := v.(string); ok {
			return s, true
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, true
		}
	}

	return nil, false
}

// Parse converts the textual form of a value into its normalized value.
func (t ConditionType) Parse(s string) (interface{}, error) {
	switch t {
	case TypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case TypeInt:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case TypeBool:
		return strconv.ParseBool(strings.TrimSpace(s))
	case TypeString, TypeCategory:
		return s, nil
	}

	return nil, errors.Wrapf(ErrTypeMismatch, "cannot parse %q as %s", s, t)
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

// FormatValue renders a normalized condition value. It is used both for
// display and for facet level labels.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case nil:
		return ""
	}
	return "?"
}

// Schema declares the named, typed conditions an Experiment tracks. Names
// keep their declaration order.
type Schema struct {
	names []string
	types map[string]ConditionType
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{types: make(map[string]ConditionType)}
}

// Declare registers a condition. Redeclaring a condition with the same type
// is a no-op.
func (s *Schema) Declare(name string, t ConditionType) error {
	if name == "" {
		return errors.Wrap(ErrUnknownCondition, "condition name must not be empty")
	}
	if _, known := conditionTypeNames[t]; !known {
		return errors.Wrapf(ErrTypeMismatch, "condition %q has invalid type %d", name, t)
	}

	if existing, exists := s.types[name]; exists {
		if existing != t {
			return errors.Wrapf(ErrDuplicateCondition, "condition %q is %s, cannot redeclare as %s", name, existing, t)
		}
		return nil
	}

	s.names = append(s.names, name)
	s.types[name] = t

	return nil
}

// Validate checks value against the declared type of name and returns its
// normalized form.
func (s *Schema) Validate(name string, value interface{}) (interface{}, error) {
	t, exists := s.types[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownCondition, "%q", name)
	}

	v, ok := t.Normalize(value)
	if !ok {
		return nil, errors.Wrapf(ErrTypeMismatch, "condition %q is %s, got %v (%T)", name, t, value, value)
	}

	return v, nil
}

// Type returns the declared type of name.
func (s *Schema) Type(name string) (ConditionType, bool) {
	t, exists := s.types[name]
	return t, exists
}

// Has reports whether name was declared.
func (s *Schema) Has(name string) bool {
	_, exists := s.types[name]
	return exists
}

// Names returns the condition names in declaration order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Schema) Len() int {
	return len(s.names)
}

func (s *Schema) clone() *Schema {
	out := NewSchema()
	for _, name := range s.names {
		out.names = append(out.names, name)
		out.types[name] = s.types[name]
	}
	return out
}
