package scheduler

import (
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

// ClassifyIntensity maps a ratio onto its level. Only the level is clamped.
func ClassifyIntensity(ratio float64) models.IntensityLevel {
	switch {
	case ratio <= constants.IntensityLowMax:
		return models.IntensityLow
	case ratio <= constants.IntensityMediumMax:
		return models.IntensityMedium
	default:
		return models.IntensityHigh
	}
}

// ScoreIntensity divides committed minutes by active minutes. Committed
// minutes come from the merged blocks, so overlapping meetings count once
// and buffer padding is not counted.
func ScoreIntensity(blocks []models.BusyBlock, active models.ActiveWindow) models.IntensityScore {
	if active.TotalMinutes <= 0 {
		return models.IntensityScore{Ratio: 0, Level: models.IntensityLow}
	}

	committed := 0
	for _, b := range blocks {
		committed += b.CommittedMinutes
	}

	ratio := float64(committed) / float64(active.TotalMinutes)
	return models.IntensityScore{
		Ratio: ratio,
		Level: ClassifyIntensity(ratio),
	}
}
