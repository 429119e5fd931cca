package models

import "time"

// Commitment is a fixed, caller-owned entry on the person's calendar.
type Commitment struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label"`
	Source string `json:"source,omitempty"` // "external" or "flowmind"
	TimeInterval
}

// ActiveHoursProfile is a person's wake/sleep boundary in HH:MM.
// Sleep may be numerically earlier than Wake, meaning the next day.
type ActiveHoursProfile struct {
	Wake  string `json:"wake"`
	Sleep string `json:"sleep"`
}

// ActiveWindow is an ActiveHoursProfile resolved against a calendar date.
type ActiveWindow struct {
	TimeInterval
	TotalMinutes int `json:"total_minutes"`
}

// BusyBlock is one or more merged, buffer-padded commitments.
type BusyBlock struct {
	TimeInterval
	// CommittedMinutes is the union length of the unpadded commitments
	// covered by this block.
	CommittedMinutes int      `json:"committed_minutes"`
	Labels           []string `json:"labels,omitempty"`
}

type SizeClass string

const (
	SizeMicro  SizeClass = "micro"
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// FreeWindow is a classified gap between busy blocks within active hours.
type FreeWindow struct {
	TimeInterval
	Size SizeClass `json:"size"`
}

type IntensityLevel string

const (
	IntensityLow    IntensityLevel = "low"
	IntensityMedium IntensityLevel = "medium"
	IntensityHigh   IntensityLevel = "high"
)

// IntensityScore is the ratio of committed minutes to active minutes.
// Ratio is not clamped; values above 1 indicate over-booking.
type IntensityScore struct {
	Ratio float64        `json:"ratio"`
	Level IntensityLevel `json:"level"`
}

// DayLayout bundles everything derived from a day's commitments.
type DayLayout struct {
	Active    ActiveWindow   `json:"active"`
	Blocks    []BusyBlock    `json:"busy_blocks"`
	Windows   []FreeWindow   `json:"free_windows"`
	Intensity IntensityScore `json:"intensity"`
}

// FreeMinutes sums the duration of all free windows.
func (l DayLayout) FreeMinutes() int {
	total := 0
	for _, w := range l.Windows {
		total += w.Minutes()
	}
	return total
}

// Profile is the stored per-person configuration.
type Profile struct {
	PersonID  string    `json:"person_id"`
	Wake      string    `json:"wake"`
	Sleep     string    `json:"sleep"`
	Timezone  string    `json:"timezone,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActiveHours returns the profile's wake/sleep pair.
func (p Profile) ActiveHours() ActiveHoursProfile {
	return ActiveHoursProfile{Wake: p.Wake, Sleep: p.Sleep}
}
