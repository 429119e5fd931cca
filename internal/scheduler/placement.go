package scheduler

import (
	"sort"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

// ValidatePlacements filters candidates greedily in the order given. A
// candidate is kept when it is a valid interval, lies inside a single free
// window, does not overlap any busy block and sits at least
// minSpacingMinutes away from every candidate already kept. The result is
// sorted by start time.
func ValidatePlacements(candidates []models.ActivityCandidate, windows []models.FreeWindow, blocks []models.BusyBlock, minSpacingMinutes int) []models.PlacedActivity {
	spacing := minutes(minSpacingMinutes)
	placed := make([]models.PlacedActivity, 0, len(candidates))
	taken := make([]models.TimeInterval, 0, len(candidates))

	for _, c := range candidates {
		if !CanPlace(c.Interval, windows, blocks, taken, spacing) {
			continue
		}
		placed = append(placed, models.PlacedActivity{ActivityCandidate: c})
		taken = append(taken, c.Interval)
	}

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Interval.Start.Before(placed[j].Interval.Start)
	})
	return placed
}

// CanPlace reports whether iv may be added next to the already taken
// intervals.
func CanPlace(iv models.TimeInterval, windows []models.FreeWindow, blocks []models.BusyBlock, taken []models.TimeInterval, spacing time.Duration) bool {
	return iv.Valid() &&
		InsideWindow(iv, windows) &&
		ClearOfBlocks(iv, blocks) &&
		RespectsSpacing(iv, taken, spacing)
}

// InsideWindow reports whether iv is fully contained in one of the windows.
func InsideWindow(iv models.TimeInterval, windows []models.FreeWindow) bool {
	for _, w := range windows {
		if w.Contains(iv) {
			return true
		}
	}
	return false
}

// ClearOfBlocks reports whether iv avoids every busy block.
func ClearOfBlocks(iv models.TimeInterval, blocks []models.BusyBlock) bool {
	for _, b := range blocks {
		if iv.Overlaps(b.TimeInterval) {
			return false
		}
	}
	return true
}

// RespectsSpacing checks iv against every taken interval, not only the
// nearest one.
func RespectsSpacing(iv models.TimeInterval, taken []models.TimeInterval, spacing time.Duration) bool {
	for _, t := range taken {
		if g := Gap(iv, t); g < 0 || g < spacing {
			return false
		}
	}
	return true
}
