package view

import (
	"github.com/carbocation/cytometry/statistic"
	"github.com/pkg/errors"
)

var (
	ErrUnknownView       = errors.New("unknown view kind")
	ErrInvalidView       = errors.New("invalid view parameters")
	ErrUnknownOption     = errors.New("unknown plot option")
	ErrInvalidOption     = errors.New("invalid plot option")
	ErrDimensionMismatch = errors.New("position must be a scalar or an (x, y) pair")
	ErrInvalidValue      = errors.New("statistic value cannot be drawn")

	// ErrIndexMismatch is shared with the statistic package so that either
	// can be tested for with errors.Is.
	ErrIndexMismatch = statistic.ErrIndexMismatch
)
