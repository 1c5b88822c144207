package types

import (
	"fmt"
	"time"
)

// UnknownNodeError is returned when an identifier does not resolve to any
// registered service or system.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown service or system %q", e.ID)
}

// UnknownEventError is returned when a resolve targets an event that does
// not exist.
type UnknownEventError struct {
	ID string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown downtime event %q", e.ID)
}

// InvalidIntervalError is returned when an end time precedes the start time.
// Such facts are rejected outright, never silently swapped.
type InvalidIntervalError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("end time %s precedes start time %s", e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}
