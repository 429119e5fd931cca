package constants

import "time"

const (
	AppName            = "flowmind"
	DefaultKeyringUser = "database-connection"
	OpenAIKeyringUser  = "openai-api-key"
	DefaultConfigPath  = "~/.config/flowmind/flowmind.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard clock format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Commitment sources. Activities written back to a calendar by this
	// application carry SourceFlowmind so later runs can recognise them.
	SourceExternal = "external"
	SourceFlowmind = "flowmind"

	// Free window size classes (minutes, upper bound exclusive)
	MicroWindowMaxMin  = 10
	SmallWindowMaxMin  = 30
	MediumWindowMaxMin = 60

	// Intensity level thresholds (inclusive upper bounds)
	IntensityLowMax    = 0.4
	IntensityMediumMax = 0.7

	// Strategy selection
	LowMoodThreshold      = 4.0
	MaxMoodScore          = 10.0
	AmpleLargeWindowCount = 2
	MaxTargetCount        = 15

	// Fallback generation
	MinActivityMin = 5

	// Dedup gate
	DefaultClaimTTL        = 2 * time.Minute
	DefaultMarkerTTL       = time.Duration(0) // markers stay until reset
	MarkerPollAttempts     = 5
	MarkerPollInterval     = 200 * time.Millisecond
	DefaultCalendarWorkers = 4

	// HTTP adapter
	DefaultHTTPAddr = ":8080"
)
