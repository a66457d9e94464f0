package model

import (
	"errors"
	"fmt"

	"schedly/src-server/conflict"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidEvent = errors.New("invalid event")
	// ErrEmptySeries is returned when a rule yields no occurrence at all.
	ErrEmptySeries = errors.New("series has no occurrences")
	ErrConflict    = errors.New("schedule conflict")
)

// ConflictError carries the full report of a refused write. Nothing was
// written when it is returned.
type ConflictError struct {
	Report conflict.Report
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %d overlapping event(s)", ErrConflict, e.Report.Total)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
