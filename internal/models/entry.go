package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CalendarEntry is a stored calendar item: either a commitment the person
// entered or an activity the engine externalized.
type CalendarEntry struct {
	ID          string    `json:"id"`
	PersonID    string    `json:"person_id"`
	Day         string    `json:"day"`
	Label       string    `json:"label"`
	Source      string    `json:"source"`
	Category    Category  `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CreatedAt   time.Time `json:"created_at"`
}

// Interval returns the entry's span.
func (e CalendarEntry) Interval() TimeInterval {
	return TimeInterval{Start: e.Start, End: e.End}
}

// Commitment converts the entry into the scheduler's commitment shape.
func (e CalendarEntry) Commitment() Commitment {
	return Commitment{ID: e.ID, Label: e.Label, Source: e.Source, TimeInterval: e.Interval()}
}
