package models

import (
	"fmt"
	"strings"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel parses a low/medium/high level, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelHigh:
		return LevelHigh, nil
	}
	return "", fmt.Errorf("invalid level %q (want low, medium or high)", s)
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// StateSignals are the caller-supplied mood, energy and stress readings.
type StateSignals struct {
	MoodScore   float64 `json:"mood_score" yaml:"mood_score"` // 0-10
	EnergyLevel Level   `json:"energy_level" yaml:"energy_level"`
	StressLevel Level   `json:"stress_level" yaml:"stress_level"`
}
