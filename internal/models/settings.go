package models

// Settings represents application-wide settings
type Settings struct {
	DayStart             string `json:"day_start"`              // default wake time, e.g. "07:00"
	DayEnd               string `json:"day_end"`                // default sleep time, e.g. "22:00"
	BufferMin            int    `json:"buffer_min"`             // transition buffer around every commitment
	MinWindowMin         int    `json:"min_window_min"`         // free windows shorter than this are dropped
	GenerationTimeoutSec int    `json:"generation_timeout_sec"` // upper bound for the generative backend call
	Timezone             string `json:"timezone"`               // IANA timezone name or "Local"
}
