package models

import (
	"fmt"

	"github.com/willofcode/flowmind/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingDayStart:
			settings.DayStart = value
		case constants.SettingDayEnd:
			settings.DayEnd = value
		case constants.SettingBufferMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.BufferMin); err != nil {
				return Settings{}, fmt.Errorf("parsing buffer_min: %w", err)
			}
		case constants.SettingMinWindowMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.MinWindowMin); err != nil {
				return Settings{}, fmt.Errorf("parsing min_window_min: %w", err)
			}
		case constants.SettingGenerationTimeoutSec:
			if _, err := fmt.Sscanf(value, "%d", &settings.GenerationTimeoutSec); err != nil {
				return Settings{}, fmt.Errorf("parsing generation_timeout_sec: %w", err)
			}
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDayStart:             settings.DayStart,
		constants.SettingDayEnd:               settings.DayEnd,
		constants.SettingBufferMin:            fmt.Sprintf("%d", settings.BufferMin),
		constants.SettingMinWindowMin:         fmt.Sprintf("%d", settings.MinWindowMin),
		constants.SettingGenerationTimeoutSec: fmt.Sprintf("%d", settings.GenerationTimeoutSec),
		constants.SettingTimezone:             settings.Timezone,
	}
}

// DefaultSettings returns the settings a fresh store is initialised with.
func DefaultSettings() Settings {
	s := Settings{BufferMin: constants.DefaultBufferMin}
	ApplyDefaultSettings(&s)
	return s
}

// ApplyDefaultSettings applies default values to missing settings.
// A zero buffer is a legitimate choice and is therefore left alone.
func ApplyDefaultSettings(settings *Settings) {
	if settings.DayStart == "" {
		settings.DayStart = constants.DefaultDayStart
	}
	if settings.DayEnd == "" {
		settings.DayEnd = constants.DefaultDayEnd
	}
	if settings.BufferMin < 0 {
		settings.BufferMin = constants.DefaultBufferMin
	}
	if settings.MinWindowMin <= 0 {
		settings.MinWindowMin = constants.DefaultMinWindowMin
	}
	if settings.GenerationTimeoutSec <= 0 {
		settings.GenerationTimeoutSec = constants.DefaultGenerationTimeoutSec
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
