package scheduler

import (
	"time"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

// ClassifyWindow maps a window length onto its size class.
func ClassifyWindow(durationMin int) models.SizeClass {
	switch {
	case durationMin < constants.MicroWindowMaxMin:
		return models.SizeMicro
	case durationMin < constants.SmallWindowMaxMin:
		return models.SizeSmall
	case durationMin < constants.MediumWindowMaxMin:
		return models.SizeMedium
	default:
		return models.SizeLarge
	}
}

// FindWindows walks active hours between the busy blocks and returns the
// free gaps that are at least minWindowMinutes long. Blocks must be sorted
// by start, as returned by MergeBusyBlocks. With no blocks the whole active
// window is returned as a single free window.
func FindWindows(blocks []models.BusyBlock, active models.ActiveWindow, minWindowMinutes int) []models.FreeWindow {
	windows := []models.FreeWindow{}
	minDur := minutes(minWindowMinutes)

	emit := func(start, end time.Time) {
		d := end.Sub(start)
		if d <= 0 || d < minDur {
			return
		}
		windows = append(windows, models.FreeWindow{
			TimeInterval: models.TimeInterval{Start: start, End: end},
			Size:         ClassifyWindow(int(d / time.Minute)),
		})
	}

	cursor := active.Start
	for _, b := range blocks {
		if !b.Start.Before(active.End) {
			break
		}
		if !b.End.After(cursor) {
			// Entirely before the cursor, e.g. a commitment before wake-up.
			continue
		}
		if b.Start.After(cursor) {
			emit(cursor, b.Start)
		}
		cursor = b.End
	}
	if cursor.Before(active.End) {
		emit(cursor, active.End)
	}

	return windows
}

// CountWindows returns how many windows fall in the given size class.
func CountWindows(windows []models.FreeWindow, size models.SizeClass) int {
	n := 0
	for _, w := range windows {
		if w.Size == size {
			n++
		}
	}
	return n
}
