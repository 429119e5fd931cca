package engine

import (
	"fmt"
	"strings"

	"github.com/willofcode/flowmind/internal/validation"
)

// InputError is returned for requests that fail validation. Nothing is
// generated or persisted.
type InputError struct {
	Result validation.ValidationResult
}

func (e *InputError) Error() string {
	descs := make([]string, 0, len(e.Result.Conflicts))
	for _, c := range e.Result.Conflicts {
		descs = append(descs, c.Description)
	}
	return "invalid request: " + strings.Join(descs, "; ")
}

func (e *InputError) ExitCode() int { return 2 }

// CalendarWriteError is returned when activities could not all be written
// to the calendar. The day stays open so the request can be retried.
type CalendarWriteError struct {
	Written int
	Total   int
	Err     error
}

func (e *CalendarWriteError) Error() string {
	return fmt.Sprintf("calendar write failed after %d of %d activities: %v", e.Written, e.Total, e.Err)
}

func (e *CalendarWriteError) Unwrap() error {
	return e.Err
}

func (e *CalendarWriteError) ExitCode() int { return 3 }

func inputError(t validation.ConflictType, date, format string, args ...any) *InputError {
	return &InputError{Result: validation.ValidationResult{Conflicts: []validation.Conflict{{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Date:        date,
	}}}}
}
