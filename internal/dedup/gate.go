// Package dedup makes generation run at most once per person and day.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
)

// MarkerStore persists day markers, short-lived claims and pending writes.
// SetMarkerIfAbsent and ClaimDay must be atomic across processes.
type MarkerStore interface {
	HasMarker(ctx context.Context, personID, day string) (bool, error)
	SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error)
	// ClaimDay returns a token identifying the new lease, or "" while another
	// run holds an unexpired one.
	ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error)
	// ReleaseDay drops the lease only if token still holds it.
	ReleaseDay(ctx context.Context, personID, day, token string) error
	// MarkPending records that a calendar write for the day has started.
	// ClearPending removes the record once the marker is set.
	MarkPending(ctx context.Context, personID, day string) error
	IsPending(ctx context.Context, personID, day string) (bool, error)
	ClearPending(ctx context.Context, personID, day string) error
}

// ExternalizeError reports a failed or partial calendar write. The day marker
// is not set when it is returned.
type ExternalizeError struct {
	Written int
	Total   int
	Err     error
}

func (e *ExternalizeError) Error() string {
	return fmt.Sprintf("externalized %d of %d activities: %v", e.Written, e.Total, e.Err)
}

func (e *ExternalizeError) Unwrap() error {
	return e.Err
}

// Pipeline produces the validated activities for one run.
type Pipeline func(ctx context.Context) ([]models.PlacedActivity, error)

type Options struct {
	// ClaimTTL bounds how long a crashed run can block the day.
	ClaimTTL time.Duration
	// PollAttempts and PollInterval control how long a request that lost
	// the claim waits for the winner's marker.
	PollAttempts int
	PollInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		ClaimTTL:     constants.DefaultClaimTTL,
		PollAttempts: constants.MarkerPollAttempts,
		PollInterval: constants.MarkerPollInterval,
	}
}

// Outcome is the result of RunOnce. AlreadyGenerated and ScheduleFull are
// never both set.
type Outcome struct {
	Activities       []models.PlacedActivity
	AlreadyGenerated bool
	// ScheduleFull means the pipeline ran and produced nothing; no marker was set.
	ScheduleFull bool
	// WrittenIDs lists calendar entries written by this run, including
	// partial writes when externalizing failed.
	WrittenIDs []string
}

type Gate struct {
	markers MarkerStore
	ext     *Externalizer
	opts    Options
}

func NewGate(markers MarkerStore, ext *Externalizer, opts Options) *Gate {
	def := DefaultOptions()
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = def.ClaimTTL
	}
	if opts.PollAttempts < 0 {
		opts.PollAttempts = 0
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	return &Gate{markers: markers, ext: ext, opts: opts}
}

func alreadyGenerated() Outcome {
	return Outcome{Activities: []models.PlacedActivity{}, AlreadyGenerated: true}
}

// RunOnce runs pipeline unless the day was already generated. The marker is
// set only after every activity was externalized; an empty pipeline result
// or a failed write leaves the day open for a retry. A retry after a partial
// write re-runs the pipeline and writes only the missing activities.
func (g *Gate) RunOnce(ctx context.Context, personID, day string, pipeline Pipeline) (Outcome, error) {
	done, err := g.markers.HasMarker(ctx, personID, day)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read day marker: %w", err)
	}
	if done {
		logger.Debug("Day already generated", "person", personID, "day", day)
		return alreadyGenerated(), nil
	}

	token, err := g.markers.ClaimDay(ctx, personID, day, g.opts.ClaimTTL)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to claim day: %w", err)
	}
	if token == "" {
		return g.awaitWinner(ctx, personID, day)
	}
	defer g.release(ctx, personID, day, token)

	// A competing run may have finished between the first check and the claim.
	done, err = g.markers.HasMarker(ctx, personID, day)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read day marker: %w", err)
	}
	if done {
		return alreadyGenerated(), nil
	}

	pending, err := g.markers.IsPending(ctx, personID, day)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read pending write: %w", err)
	}
	if pending {
		logger.Info("Resuming an unfinished calendar write", "person", personID, "day", day)
	} else {
		existing, err := g.ext.cal.ListExisting(ctx, personID, day)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to list calendar: %w", err)
		}
		if calendar.HasGenerated(existing) {
			logger.Info("Calendar already holds generated activities", "person", personID, "day", day)
			if _, err := g.markers.SetMarkerIfAbsent(ctx, personID, day); err != nil {
				logger.Warn("Failed to backfill day marker", "person", personID, "day", day, "error", err)
			}
			return alreadyGenerated(), nil
		}
	}

	acts, err := pipeline(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if len(acts) == 0 {
		logger.Info("Nothing to schedule, leaving day open", "person", personID, "day", day)
		return Outcome{Activities: []models.PlacedActivity{}, ScheduleFull: true}, nil
	}

	if err := g.markers.MarkPending(ctx, personID, day); err != nil {
		return Outcome{}, fmt.Errorf("failed to record pending write: %w", err)
	}

	res, err := g.ext.Push(ctx, personID, day, acts)
	if err != nil {
		return Outcome{Activities: acts, WrittenIDs: res.WrittenIDs}, &ExternalizeError{Written: len(res.WrittenIDs), Total: len(acts), Err: err}
	}

	set, err := g.markers.SetMarkerIfAbsent(ctx, personID, day)
	if err != nil {
		return Outcome{Activities: acts, WrittenIDs: res.WrittenIDs}, fmt.Errorf("failed to set day marker: %w", err)
	}
	if err := g.markers.ClearPending(ctx, personID, day); err != nil {
		logger.Warn("Failed to clear pending write", "person", personID, "day", day, "error", err)
	}
	if !set {
		logger.Warn("Day marker was set by another run", "person", personID, "day", day)
		return Outcome{Activities: acts, AlreadyGenerated: true, WrittenIDs: res.WrittenIDs}, nil
	}

	logger.Info("Day generated", "person", personID, "day", day, "activities", len(acts))
	return Outcome{Activities: acts, WrittenIDs: res.WrittenIDs}, nil
}

// awaitWinner polls for the marker of the run holding the claim. Losing the
// race is reported as already generated either way.
func (g *Gate) awaitWinner(ctx context.Context, personID, day string) (Outcome, error) {
	for i := 0; i < g.opts.PollAttempts; i++ {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-time.After(g.opts.PollInterval):
		}

		done, err := g.markers.HasMarker(ctx, personID, day)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to read day marker: %w", err)
		}
		if done {
			return alreadyGenerated(), nil
		}
	}

	logger.Debug("Lost claim race and no marker yet", "person", personID, "day", day)
	return alreadyGenerated(), nil
}

func (g *Gate) release(ctx context.Context, personID, day, token string) {
	if err := g.markers.ReleaseDay(context.WithoutCancel(ctx), personID, day, token); err != nil {
		logger.Warn("Failed to release day claim", "person", personID, "day", day, "error", err)
	}
}
