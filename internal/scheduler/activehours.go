package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

// ErrEmptyActiveHours is returned when wake and sleep resolve to the same instant.
var ErrEmptyActiveHours = errors.New("active hours must span a positive duration")

// DefaultActiveHours is used when no profile is known for a person.
var DefaultActiveHours = models.ActiveHoursProfile{
	Wake:  constants.DefaultDayStart,
	Sleep: constants.DefaultDayEnd,
}

// ResolveActiveHours anchors a wake/sleep profile to a calendar date.
// A nil profile falls back to DefaultActiveHours. A sleep time at or before
// the wake time is read as belonging to the following day.
func ResolveActiveHours(date string, profile *models.ActiveHoursProfile, loc *time.Location) (models.ActiveWindow, error) {
	p := DefaultActiveHours
	if profile != nil {
		p = *profile
	}
	if loc == nil {
		loc = time.Local
	}

	wakeMin, err := utils.ParseTimeToMinutes(p.Wake)
	if err != nil {
		return models.ActiveWindow{}, fmt.Errorf("invalid wake time %q: %w", p.Wake, err)
	}
	sleepMin, err := utils.ParseTimeToMinutes(p.Sleep)
	if err != nil {
		return models.ActiveWindow{}, fmt.Errorf("invalid sleep time %q: %w", p.Sleep, err)
	}
	if wakeMin == sleepMin {
		return models.ActiveWindow{}, fmt.Errorf("%w: wake and sleep are both %s", ErrEmptyActiveHours, p.Wake)
	}

	start, err := utils.CombineDateAndTime(date, p.Wake, loc)
	if err != nil {
		return models.ActiveWindow{}, err
	}
	end, err := utils.CombineDateAndTime(date, p.Sleep, loc)
	if err != nil {
		return models.ActiveWindow{}, err
	}
	if sleepMin < wakeMin {
		end = end.AddDate(0, 0, 1)
	}

	return models.ActiveWindow{
		TimeInterval: models.TimeInterval{Start: start, End: end},
		TotalMinutes: int(end.Sub(start) / time.Minute),
	}, nil
}
