package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

// ErrIncompleteWrite is returned when the calendar accepted only some activities.
var ErrIncompleteWrite = errors.New("not all activities were written")

// Externalizer pushes activities to a calendar, skipping ones a previous
// partial run already wrote.
type Externalizer struct {
	cal calendar.Calendar
}

func NewExternalizer(cal calendar.Calendar) *Externalizer {
	return &Externalizer{cal: cal}
}

type entryKey struct {
	title      string
	start, end int64
}

func keyOf(title string, iv models.TimeInterval) entryKey {
	return entryKey{title: title, start: iv.Start.Unix(), end: iv.End.Unix()}
}

// Push writes acts that are not yet on the calendar. Writes are not rolled
// back on failure.
func (e *Externalizer) Push(ctx context.Context, personID, day string, acts []models.PlacedActivity) (calendar.WriteResult, error) {
	existing, err := e.cal.ListExisting(ctx, personID, day)
	if err != nil {
		return calendar.WriteResult{}, fmt.Errorf("failed to list calendar: %w", err)
	}

	present := make(map[entryKey]bool)
	for _, c := range existing {
		if c.Source == constants.SourceFlowmind {
			present[keyOf(c.Label, c.TimeInterval)] = true
		}
	}

	toWrite := make([]models.PlacedActivity, 0, len(acts))
	for _, a := range acts {
		if !present[keyOf(a.Title, a.Interval)] {
			toWrite = append(toWrite, a)
		}
	}
	if len(toWrite) == 0 {
		return calendar.WriteResult{WrittenIDs: []string{}}, nil
	}

	res, err := e.cal.WriteActivities(ctx, personID, day, toWrite)
	if err != nil {
		return res, fmt.Errorf("failed to write activities: %w", err)
	}
	if len(res.WrittenIDs) != len(toWrite) {
		return res, fmt.Errorf("%w: wrote %d of %d", ErrIncompleteWrite, len(res.WrittenIDs), len(toWrite))
	}
	return res, nil
}
