package scheduler

import (
	"github.com/willofcode/flowmind/internal/models"
)

// Options holds the per-run tuning knobs taken from settings.
type Options struct {
	BufferMinutes    int
	MinWindowMinutes int
}

type Scheduler struct {
	opts Options
}

func New(opts Options) *Scheduler {
	if opts.BufferMinutes < 0 {
		opts.BufferMinutes = 0
	}
	if opts.MinWindowMinutes < 0 {
		opts.MinWindowMinutes = 0
	}
	return &Scheduler{opts: opts}
}

// Options returns the options the scheduler was built with.
func (s *Scheduler) Options() Options {
	return s.opts
}

// Layout derives busy blocks, free windows and intensity for one day.
func (s *Scheduler) Layout(commitments []models.Commitment, active models.ActiveWindow) models.DayLayout {
	blocks := MergeBusyBlocks(commitments, s.opts.BufferMinutes)
	return models.DayLayout{
		Active:    active,
		Blocks:    blocks,
		Windows:   FindWindows(blocks, active, s.opts.MinWindowMinutes),
		Intensity: ScoreIntensity(blocks, active),
	}
}
