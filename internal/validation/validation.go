package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingPerson       ConflictType = "missing_person"
	ConflictInvalidDateTime     ConflictType = "invalid_datetime"
	ConflictInvalidActiveHours  ConflictType = "invalid_active_hours"
	ConflictInvalidState        ConflictType = "invalid_state"
	ConflictOverlappingActivity ConflictType = "overlapping_activity"
)

// Conflict represents a single problem found in a request or a stored day
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	Date        string       `json:"date,omitempty"`
	Items       []string     `json:"items,omitempty"`
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, date, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Description: fmt.Sprintf(format, args...), Date: date})
}

// Validator checks generation requests and stored days
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Request is the part of a generation request that can be malformed.
type Request struct {
	PersonID    string
	Date        string
	Commitments []models.Commitment
	ActiveHours *models.ActiveHoursProfile
	State       models.StateSignals
}

// ValidateRequest rejects requests that cannot be scheduled: a missing
// person, an unparsable date, commitments that do not end after they start,
// unusable active hours, and out-of-range state signals. Overlapping
// commitments are accepted as given.
func (v *Validator) ValidateRequest(req Request) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if strings.TrimSpace(req.PersonID) == "" {
		result.add(ConflictMissingPerson, req.Date, "Request has no person ID")
	}

	if !utils.ValidateDateFormat(req.Date) {
		result.add(ConflictInvalidDateTime, req.Date, "Invalid date: %q (want YYYY-MM-DD)", req.Date)
	}

	for i, c := range req.Commitments {
		if c.Start.IsZero() || c.End.IsZero() {
			result.add(ConflictInvalidDateTime, req.Date, "Commitment %d %q is missing a start or end time", i+1, c.Label)
			continue
		}
		if !c.Valid() {
			result.add(ConflictInvalidDateTime, req.Date, "Commitment %d %q ends at or before it starts (%s - %s)",
				i+1, c.Label, utils.FormatClock(c.Start), utils.FormatClock(c.End))
		}
	}

	if req.ActiveHours != nil {
		v.validateActiveHours(&result, req.Date, *req.ActiveHours)
	}
	v.validateState(&result, req.Date, req.State)

	return result
}

func (v *Validator) validateActiveHours(result *ValidationResult, date string, ah models.ActiveHoursProfile) {
	wakeOK := utils.ValidateTimeFormat(ah.Wake)
	sleepOK := utils.ValidateTimeFormat(ah.Sleep)
	if !wakeOK {
		result.add(ConflictInvalidActiveHours, date, "Invalid wake time: %q (want HH:MM)", ah.Wake)
	}
	if !sleepOK {
		result.add(ConflictInvalidActiveHours, date, "Invalid sleep time: %q (want HH:MM)", ah.Sleep)
	}
	if wakeOK && sleepOK && ah.Wake == ah.Sleep {
		result.add(ConflictInvalidActiveHours, date, "Wake and sleep are both %s; active hours must have a positive duration", ah.Wake)
	}
}

func (v *Validator) validateState(result *ValidationResult, date string, s models.StateSignals) {
	if math.IsNaN(s.MoodScore) || s.MoodScore < 0 || s.MoodScore > constants.MaxMoodScore {
		result.add(ConflictInvalidState, date, "Mood score %v is outside 0-%v", s.MoodScore, constants.MaxMoodScore)
	}
	if !s.EnergyLevel.Valid() {
		result.add(ConflictInvalidState, date, "Invalid energy level: %q", s.EnergyLevel)
	}
	if !s.StressLevel.Valid() {
		result.add(ConflictInvalidState, date, "Invalid stress level: %q", s.StressLevel)
	}
}

// ValidateDay checks a stored day for generated activities that overlap
// another entry. Overlaps between the person's own commitments are ignored.
func (v *Validator) ValidateDay(day string, entries []models.CalendarEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	sorted := make([]models.CalendarEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if !b.Start.Before(a.End) {
				break
			}
			if a.Source != constants.SourceFlowmind && b.Source != constants.SourceFlowmind {
				continue
			}
			end := a.End
			if b.End.Before(end) {
				end = b.End
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingActivity,
				Description: fmt.Sprintf("%s: %s-%s %q overlaps %q",
					day, utils.FormatClock(b.Start), utils.FormatClock(end), a.Label, b.Label),
				Date:  day,
				Items: []string{a.Label, b.Label},
			})
		}
	}
	return result
}
