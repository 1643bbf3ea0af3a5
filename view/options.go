package view

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Options carries per-plot settings. Each view recognizes a fixed set of
// keys; any other key is rejected with ErrUnknownOption.
type Options map[string]interface{}

type optionType byte

const (
	optInt optionType = iota
	optFloat
	optString
	optStrings
	optBool
)

func (t optionType) String() string {
	switch t {
	case optInt:
		return "int"
	case optFloat:
		return "float"
	case optString:
		return "string"
	case optStrings:
		return "list of strings"
	case optBool:
		return "bool"
	}
	return "?"
}

type optionSpec map[string]optionType

// check rejects unknown keys and values of the wrong type.
func (o Options) check(kind Kind, spec optionSpec) error {
	keys := make([]string, 0, len(o))
	for key := range o {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		t, known := spec[key]
		if !known {
			return errors.Wrapf(ErrUnknownOption, "%s view does not recognize %q", kind, key)
		}

		var ok bool
		switch t {
		case optInt:
			_, ok = asInt(o[key])
		case optFloat:
			_, ok = asFloat(o[key])
		case optString:
			_, ok = o[key].(string)
		case optStrings:
			_, ok = asStrings(o[key])
		case optBool:
			_, ok = o[key].(bool)
		}
		if !ok {
			return errors.Wrapf(ErrInvalidOption, "%s view option %q must be %s, got %T", kind, key, t, o[key])
		}
	}

	return nil
}

func (o Options) Int(key string, def int) int {
	if v, ok := asInt(o[key]); ok {
		return v
	}
	return def
}

func (o Options) Float(key string, def float64) float64 {
	if v, ok := asFloat(o[key]); ok {
		return v
	}
	return def
}

func (o Options) Text(key string, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

func (o Options) Strings(key string, def []string) []string {
	if v, ok := asStrings(o[key]); ok {
		return v
	}
	return def
}

func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

func asInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		// Decoded JSON numbers arrive as float64
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int(x), true
		}
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func asStrings(v interface{}) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
