package constants

const (
	// General Settings
	SettingDayStart             = "day_start"
	SettingDayEnd               = "day_end"
	SettingBufferMin            = "buffer_min"
	SettingMinWindowMin         = "min_window_min"
	SettingGenerationTimeoutSec = "generation_timeout_sec"
	SettingTimezone             = "timezone"

	// Default Settings Values
	DefaultDayStart             = "07:00"
	DefaultDayEnd               = "22:00"
	DefaultBufferMin            = 5
	DefaultMinWindowMin         = 10
	DefaultGenerationTimeoutSec = 20
	DefaultTimezone             = "Local" // Use system local timezone by default
)
