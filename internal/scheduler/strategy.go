package scheduler

import (
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

var (
	calmingCategories = []models.Category{
		models.CategoryBreathing,
		models.CategoryMeditation,
		models.CategoryMindfulness,
		models.CategoryStretching,
	}
	restorativeCategories = []models.Category{
		models.CategoryRest,
		models.CategoryStretching,
		models.CategoryBreathing,
		models.CategoryHydration,
		models.CategoryReading,
	}
	upliftingCategories = []models.Category{
		models.CategoryWalk,
		models.CategoryMovement,
		models.CategorySocial,
		models.CategoryCreative,
		models.CategoryOutdoor,
	}
	balancedCategories = []models.Category{
		models.CategoryBreathing,
		models.CategoryWalk,
		models.CategoryStretching,
		models.CategoryJournaling,
		models.CategoryHydration,
		models.CategoryCreative,
	}
)

// SelectPolicy picks the generation policy for a day. Rules are checked in
// order and the first match wins:
//
//	calming      stress high or intensity high
//	restorative  energy low
//	uplifting    mood below the low-mood threshold
//	expansive    low intensity with ample large windows
//	balanced     everything else
//
// The returned category slice is a fresh copy and safe to modify.
func SelectPolicy(intensity models.IntensityScore, state models.StateSignals, windows []models.FreeWindow) models.GenerationPolicy {
	stressHigh := state.StressLevel == models.LevelHigh
	busy := intensity.Level == models.IntensityHigh

	switch {
	case stressHigh || busy:
		count := 4
		if stressHigh && busy {
			count = 3
		}
		return policy(models.StrategyCalming, count, calmingCategories, 5)

	case state.EnergyLevel == models.LevelLow:
		count := 3
		if intensity.Level == models.IntensityLow {
			count = 4
		}
		return policy(models.StrategyRestorative, count, restorativeCategories, 10)

	case state.MoodScore < constants.LowMoodThreshold:
		count := 5
		if intensity.Level == models.IntensityMedium {
			count = 4
		}
		return policy(models.StrategyUplifting, count, upliftingCategories, 10)
	}

	large := CountWindows(windows, models.SizeLarge)
	if intensity.Level == models.IntensityLow && large >= constants.AmpleLargeWindowCount {
		count := clamp(6+2*large, 8, constants.MaxTargetCount)
		return policy(models.StrategyExpansive, count, models.AllCategories, 15)
	}

	count := 3
	switch intensity.Level {
	case models.IntensityLow:
		count = 5
	case models.IntensityMedium:
		count = 4
	}
	return policy(models.StrategyBalanced, count, balancedCategories, 10)
}

func policy(s models.Strategy, count int, categories []models.Category, spacing int) models.GenerationPolicy {
	allowed := make([]models.Category, len(categories))
	copy(allowed, categories)
	return models.GenerationPolicy{
		Strategy:          s,
		TargetCount:       count,
		AllowedCategories: allowed,
		MinSpacingMinutes: spacing,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
