package generator

import (
	"fmt"
	"sort"
	"time"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/scheduler"
)

type template struct {
	minutes     int
	title       string
	description string
}

var templates = map[models.Category]template{
	models.CategoryBreathing:   {5, "Box breathing", "Four counts in, hold, out, hold."},
	models.CategoryHydration:   {5, "Water break", "Refill and finish a glass of water."},
	models.CategoryMindfulness: {10, "Mindful pause", "Notice five things you can see and hear."},
	models.CategoryMeditation:  {10, "Guided meditation", "Sit comfortably and follow the breath."},
	models.CategoryStretching:  {10, "Stretch break", "Neck, shoulders, back and hips."},
	models.CategoryJournaling:  {15, "Quick journal", "Write down how the day is going."},
	models.CategoryRest:        {15, "Rest", "Step away from screens and rest your eyes."},
	models.CategoryReading:     {20, "Reading", "A few pages of something unrelated to work."},
	models.CategoryWalk:        {20, "Short walk", "A brisk walk around the block."},
	models.CategoryMovement:    {20, "Move", "Light exercise to raise the heart rate."},
	models.CategoryCreative:    {25, "Creative time", "Sketch, play music or write freely."},
	models.CategorySocial:      {30, "Catch up", "Call or meet someone you enjoy talking to."},
	models.CategoryOutdoor:     {30, "Outside", "Get some daylight and fresh air."},
}

// DefaultDuration returns the fallback length of an activity in minutes.
func DefaultDuration(c models.Category) int {
	if t, ok := templates[c]; ok {
		return t.minutes
	}
	return 10
}

// Fallback deterministically fills the largest windows first, cycling
// through the policy's categories in order. Each activity keeps its default
// length when it fits and is shortened otherwise, never below the minimum
// activity length. It stops at the target count or when windows run out.
func Fallback(windows []models.FreeWindow, policy models.GenerationPolicy) []models.ActivityCandidate {
	out := []models.ActivityCandidate{}
	if policy.TargetCount <= 0 || len(policy.AllowedCategories) == 0 {
		return out
	}

	ordered := make([]models.FreeWindow, len(windows))
	copy(ordered, windows)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].Duration(), ordered[j].Duration()
		if di != dj {
			return di > dj
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	spacing := time.Duration(max(policy.MinSpacingMinutes, 0)) * time.Minute
	shortest := time.Duration(constants.MinActivityMin) * time.Minute
	taken := make([]models.TimeInterval, 0, policy.TargetCount)
	next := 0

	for _, w := range ordered {
		cursor := w.Start
		for len(out) < policy.TargetCount {
			if w.End.Sub(cursor) < shortest {
				break
			}

			category := policy.AllowedCategories[next%len(policy.AllowedCategories)]
			length := time.Duration(DefaultDuration(category)) * time.Minute
			if remaining := w.End.Sub(cursor); length > remaining {
				length = remaining
			}

			iv, ok := fit(cursor, length, taken, spacing, shortest)
			if !ok {
				cursor = iv.End
				continue
			}

			out = append(out, candidateFor(category, iv))
			taken = append(taken, iv)
			next++
			cursor = iv.End.Add(spacing)
		}
		if len(out) >= policy.TargetCount {
			break
		}
	}

	return out
}

// fit places an activity of the given length at cursor. When that is too
// close to an earlier activity it tries to end early enough to clear it.
// On failure the returned interval's End is the next cursor to try.
func fit(cursor time.Time, length time.Duration, taken []models.TimeInterval, spacing, shortest time.Duration) (models.TimeInterval, bool) {
	iv := models.TimeInterval{Start: cursor, End: cursor.Add(length)}
	conflict, clash := firstConflict(iv, taken, spacing)
	if !clash {
		return iv, true
	}

	if conflict.Start.After(cursor) {
		if end := conflict.Start.Add(-spacing); end.Sub(cursor) >= shortest {
			shorter := models.TimeInterval{Start: cursor, End: end}
			if _, clash := firstConflict(shorter, taken, spacing); !clash {
				return shorter, true
			}
		}
	}
	return models.TimeInterval{End: conflict.End.Add(spacing)}, false
}

func firstConflict(iv models.TimeInterval, taken []models.TimeInterval, spacing time.Duration) (models.TimeInterval, bool) {
	for _, t := range taken {
		if !scheduler.RespectsSpacing(iv, []models.TimeInterval{t}, spacing) {
			return t, true
		}
	}
	return models.TimeInterval{}, false
}

func candidateFor(c models.Category, iv models.TimeInterval) models.ActivityCandidate {
	t, ok := templates[c]
	if !ok {
		t = template{title: fmt.Sprintf("%s break", c)}
	}
	return models.ActivityCandidate{
		Category:    c,
		Title:       t.title,
		Interval:    iv,
		Description: t.description,
	}
}
