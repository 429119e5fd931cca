package scheduler

import (
	"sort"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

// MergeIntervals returns the union of the given intervals as a sorted list
// of disjoint intervals. Overlapping or touching inputs are joined.
func MergeIntervals(intervals []models.TimeInterval) []models.TimeInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]models.TimeInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []models.TimeInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start.After(last.End) {
			merged = append(merged, iv)
			continue
		}
		if iv.End.After(last.End) {
			last.End = iv.End
		}
	}
	return merged
}

// UnionMinutes returns the number of minutes covered by at least one interval.
func UnionMinutes(intervals []models.TimeInterval) int {
	var total time.Duration
	for _, iv := range MergeIntervals(intervals) {
		total += iv.Duration()
	}
	return int(total / time.Minute)
}

// Gap returns the time separating two intervals. The result is negative
// when they overlap and zero when they touch.
func Gap(a, b models.TimeInterval) time.Duration {
	if !a.End.After(b.Start) {
		return b.Start.Sub(a.End)
	}
	if !b.End.After(a.Start) {
		return a.Start.Sub(b.End)
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	return -end.Sub(start)
}

func minutes(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Minute
}
