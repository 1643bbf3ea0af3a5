package experiment

import "github.com/pkg/errors"

// Error kinds returned by the experiment model. Callers should test for them
// with errors.Is; the returned errors carry additional context.
var (
	ErrUnknownCondition         = errors.New("unknown condition")
	ErrTypeMismatch             = errors.New("condition type mismatch")
	ErrDuplicateCondition       = errors.New("condition already declared with a different type")
	ErrDuplicateConditionValues = errors.New("another tube has the same condition values")
	ErrSchemaLocked             = errors.New("schema is locked")
	ErrUnknownChannel           = errors.New("unknown channel")
	ErrInvalidSubset            = errors.New("invalid subset")
	ErrUnknownTube              = errors.New("unknown tube")
	ErrInvalidEventData         = errors.New("invalid event data")
)
