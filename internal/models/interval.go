package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval does not end after it starts.
var ErrInvalidInterval = errors.New("interval end must be after start")

// TimeInterval is a half-open span [Start, End) of wall-clock time.
// Values are never mutated once constructed; helpers return new intervals.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval builds a TimeInterval, rejecting empty or inverted spans.
func NewInterval(start, end time.Time) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, fmt.Errorf("%w: %s - %s", ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Valid reports whether the interval satisfies Start < End.
func (i TimeInterval) Valid() bool {
	return i.End.After(i.Start)
}

// Duration returns End - Start.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Minutes returns the length of the interval in whole minutes.
func (i TimeInterval) Minutes() int {
	return int(i.Duration() / time.Minute)
}

// Overlaps reports whether the two intervals share any instant.
// Intervals that only touch (a.End == b.Start) do not overlap.
func (i TimeInterval) Overlaps(o TimeInterval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Touches reports whether the intervals overlap or are directly adjacent.
func (i TimeInterval) Touches(o TimeInterval) bool {
	return !i.Start.After(o.End) && !o.Start.After(i.End)
}

// Contains reports whether o lies fully within i.
func (i TimeInterval) Contains(o TimeInterval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Pad widens the interval by d on both sides.
func (i TimeInterval) Pad(d time.Duration) TimeInterval {
	return TimeInterval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

func (i TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format("15:04"), i.End.Format("15:04"))
}
