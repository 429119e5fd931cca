package scheduler

import (
	"sort"

	"github.com/willofcode/flowmind/internal/models"
)

// MergeBusyBlocks pads every commitment by bufferMinutes on both sides and
// merges padded intervals that overlap or touch. The result is sorted by
// start time. No commitments yields an empty, non-nil slice.
//
// Blocks are not clipped to active hours here; FindWindows handles bounds.
func MergeBusyBlocks(commitments []models.Commitment, bufferMinutes int) []models.BusyBlock {
	blocks := make([]models.BusyBlock, 0, len(commitments))
	if len(commitments) == 0 {
		return blocks
	}

	sorted := make([]models.Commitment, len(commitments))
	copy(sorted, commitments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	buffer := minutes(bufferMinutes)
	var raw []models.TimeInterval

	flush := func() {
		blocks[len(blocks)-1].CommittedMinutes = UnionMinutes(raw)
	}

	for _, c := range sorted {
		padded := c.TimeInterval.Pad(buffer)

		if n := len(blocks); n > 0 && !padded.Start.After(blocks[n-1].End) {
			last := &blocks[n-1]
			if padded.End.After(last.End) {
				last.End = padded.End
			}
			if c.Label != "" {
				last.Labels = append(last.Labels, c.Label)
			}
			raw = append(raw, c.TimeInterval)
			continue
		}

		if len(blocks) > 0 {
			flush()
		}
		block := models.BusyBlock{TimeInterval: padded}
		if c.Label != "" {
			block.Labels = []string{c.Label}
		}
		blocks = append(blocks, block)
		raw = []models.TimeInterval{c.TimeInterval}
	}
	flush()

	return blocks
}
