package experiment

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestDeclare(t *testing.T) {
	s := NewSchema()
	if err := s.Declare("time", TypeFloat); err != nil {
		t.Fatal(err)
	}
	if err := s.Declare("time", TypeFloat); err != nil {
		t.Fatalf("Identical redeclaration should succeed: %v", err)
	}
	if err := s.Declare("time", TypeString); !errors.Is(err, ErrDuplicateCondition) {
		t.Fatalf("Expected ErrDuplicateCondition, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected 1 condition, got %d", s.Len())
	}
}

func TestValidate(t *testing.T) {
	s := NewSchema()
	s.Declare("Dox", TypeFloat)
	s.Declare("rep", TypeInt)
	s.Declare("strain", TypeString)
	s.Declare("induced", TypeBool)
	s.Declare("genotype", TypeCategory)

	for _, v := range []struct {
		name  string
		value interface{}
		want  interface{}
		err   error
	}{
		{"Dox", 10.0, 10.0, nil},
		{"Dox", float32(2.5), 2.5, nil},
		{"Dox", 3, 3.0, nil},
		{"Dox", "3", nil, ErrTypeMismatch},
		{"Dox", math.NaN(), nil, ErrTypeMismatch},
		{"rep", 2, int64(2), nil},
		{"rep", 2.0, int64(2), nil},
		{"rep", 2.5, nil, ErrTypeMismatch},
		{"strain", "MG1655", "MG1655", nil},
		{"strain", true, nil, ErrTypeMismatch},
		{"induced", true, true, nil},
		{"induced", 1, nil, ErrTypeMismatch},
		{"genotype", "wt", "wt", nil},
		{"time", 1.0, nil, ErrUnknownCondition},
	} {
		got, err := s.Validate(v.name, v.value)
		if v.err != nil {
			if !errors.Is(err, v.err) {
				t.Errorf("%s=%v: expected %v, got %v", v.name, v.value, v.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s=%v: %v", v.name, v.value, err)
			continue
		}
		if got != v.want {
			t.Errorf("%s=%v: normalized to %v (%T), want %v (%T)", v.name, v.value, got, got, v.want, v.want)
		}
	}
}

func TestValidateCanonicalZero(t *testing.T) {
	s := NewSchema()
	s.Declare("Dox", TypeFloat)

	got, err := s.Validate("Dox", math.Copysign(0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := got.(float64); !ok || f != 0 || math.Signbit(f) {
		t.Fatalf("Expected +0, got %v", got)
	}
	if s := FormatValue(got); s != "0" {
		t.Fatalf("Expected -0 to format as 0, got %q", s)
	}
}

func TestParseConditionType(t *testing.T) {
	for in, want := range map[string]ConditionType{
		"float":       TypeFloat,
		"Int":         TypeInt,
		"str":         TypeString,
		"bool":        TypeBool,
		"categorical": TypeCategory,
	} {
		got, err := ParseConditionType(in)
		if err != nil || got != want {
			t.Errorf("ParseConditionType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseConditionType("complex"); err == nil {
		t.Error("Expected an error for an unknown type")
	}
}
