// Package engine runs one generation request end to end: validation,
// day layout, strategy, candidate generation, placement and the
// once-per-day gate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/dedup"
	"github.com/willofcode/flowmind/internal/generator"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/scheduler"
	"github.com/willofcode/flowmind/internal/utils"
	"github.com/willofcode/flowmind/internal/validation"
)

type Request struct {
	PersonID    string                     `json:"person_id"`
	Date        string                     `json:"date"`
	Commitments []models.Commitment        `json:"commitments"`
	ActiveHours *models.ActiveHoursProfile `json:"active_hours,omitempty"`
	State       models.StateSignals        `json:"state"`
	// DryRun computes activities without the gate or any calendar write.
	DryRun      bool                       `json:"dry_run,omitempty"`
}

type Activity struct {
	Category    models.Category `json:"category"`
	Title       string          `json:"title"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Description string          `json:"description,omitempty"`
}

type Response struct {
	Activities       []Activity              `json:"activities"`
	AlreadyGenerated bool                    `json:"already_generated"`
	ScheduleFull     bool                    `json:"schedule_full"`
	Intensity        models.IntensityScore   `json:"intensity"`
	Strategy         models.Strategy         `json:"strategy"`
	Source           models.GenerationSource `json:"source,omitempty"`
	Rejected         int                     `json:"rejected"`
	WrittenIDs       []string                `json:"written_ids,omitempty"`
}

// Preview is the day layout and policy without any generation.
type Preview struct {
	Date     string                  `json:"date"`
	Layout   models.DayLayout        `json:"layout"`
	Policy   models.GenerationPolicy `json:"policy"`
	Location *time.Location          `json:"-"`
}

type Config struct {
	Settings models.Settings
	Profiles ProfileStore
	// Backend may be nil, in which case every run uses the fallback generator.
	Backend  generator.Backend
	Calendar calendar.Calendar
	Markers  dedup.MarkerStore
	Gate     dedup.Options
}

type Engine struct {
	settings  models.Settings
	sched     *scheduler.Scheduler
	gen       *generator.Generator
	gate      *dedup.Gate
	profiles  ProfileStore
	validator *validation.Validator
	loc       *time.Location
}

func New(cfg Config) (*Engine, error) {
	if cfg.Calendar == nil || cfg.Markers == nil {
		return nil, errors.New("engine needs a calendar and a marker store")
	}
	settings := cfg.Settings
	models.ApplyDefaultSettings(&settings)

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	return &Engine{
		settings: settings,
		sched: scheduler.New(scheduler.Options{
			BufferMinutes:    settings.BufferMin,
			MinWindowMinutes: settings.MinWindowMin,
		}),
		gen:       generator.New(cfg.Backend, time.Duration(settings.GenerationTimeoutSec)*time.Second),
		gate:      dedup.NewGate(cfg.Markers, dedup.NewExternalizer(cfg.Calendar), cfg.Gate),
		profiles:  cfg.Profiles,
		validator: validation.New(),
		loc:       loc,
	}, nil
}

// Generate runs the full pipeline for one person and day.
func (e *Engine) Generate(ctx context.Context, req Request) (Response, error) {
	res := e.validator.ValidateRequest(validation.Request{
		PersonID:    req.PersonID,
		Date:        req.Date,
		Commitments: req.Commitments,
		ActiveHours: req.ActiveHours,
		State:       req.State,
	})
	if res.HasConflicts() {
		return Response{}, &InputError{Result: res}
	}

	preview, err := e.prepare(ctx, req.PersonID, req.Date, req.Commitments, req.ActiveHours, req.State)
	if err != nil {
		return Response{}, err
	}
	layout, policy := preview.Layout, preview.Policy

	resp := Response{
		Activities: []Activity{},
		Intensity:  layout.Intensity,
		Strategy:   policy.Strategy,
	}
	logger.Info("Strategy selected",
		"person", req.PersonID, "day", req.Date, "strategy", policy.Strategy,
		"intensity", layout.Intensity.Level, "ratio", layout.Intensity.Ratio,
		"windows", len(layout.Windows), "target", policy.TargetCount)

	pipeline := func(ctx context.Context) ([]models.PlacedActivity, error) {
		if len(layout.Windows) == 0 {
			return nil, nil
		}
		pc := generator.ProposalContext{
			Date:     req.Date,
			Location: preview.Location,
			Windows:  layout.Windows,
			Policy:   policy,
			State:    req.State,
		}
		placed, source, rejected := e.place(ctx, pc, layout)
		resp.Source = source
		resp.Rejected = rejected
		return placed, nil
	}

	if req.DryRun {
		placed, err := pipeline(ctx)
		if err != nil {
			return Response{}, err
		}
		resp.Activities = toActivities(placed, preview.Location)
		resp.ScheduleFull = len(placed) == 0
		return resp, nil
	}

	out, err := e.gate.RunOnce(ctx, req.PersonID, req.Date, pipeline)
	if err != nil {
		var extErr *dedup.ExternalizeError
		if errors.As(err, &extErr) {
			return Response{}, &CalendarWriteError{Written: extErr.Written, Total: extErr.Total, Err: extErr.Err}
		}
		return Response{}, err
	}

	resp.AlreadyGenerated = out.AlreadyGenerated
	resp.ScheduleFull = out.ScheduleFull
	resp.WrittenIDs = out.WrittenIDs
	if !out.AlreadyGenerated {
		resp.Activities = toActivities(out.Activities, preview.Location)
	}
	return resp, nil
}

// place generates candidates and validates them. Generative output that
// yields no placement at all is replaced by the fallback.
func (e *Engine) place(ctx context.Context, pc generator.ProposalContext, layout models.DayLayout) ([]models.PlacedActivity, models.GenerationSource, int) {
	result := e.gen.Generate(ctx, pc)
	if result.Err != nil {
		logger.Warn("Generative backend failed, using fallback", "day", pc.Date, "reason", result.Err)
	}

	placed := scheduler.ValidatePlacements(result.Candidates, layout.Windows, layout.Blocks, pc.Policy.MinSpacingMinutes)
	rejected := len(result.Candidates) - len(placed)

	if len(placed) == 0 && result.Source == models.SourceGenerative {
		logger.Warn("All generated candidates were rejected, using fallback", "day", pc.Date, "rejected", rejected)
		fallback := generator.Fallback(layout.Windows, pc.Policy)
		placed = scheduler.ValidatePlacements(fallback, layout.Windows, layout.Blocks, pc.Policy.MinSpacingMinutes)
		rejected += len(fallback) - len(placed)
		result.Source = models.SourceFallback
	}

	if rejected > 0 {
		logger.Info("Rejected candidates", "day", pc.Date, "rejected", rejected, "accepted", len(placed))
	}
	return placed, result.Source, rejected
}

// Layout computes the day layout and policy without generating anything.
func (e *Engine) Layout(ctx context.Context, personID, date string, commitments []models.Commitment, override *models.ActiveHoursProfile, state models.StateSignals) (Preview, error) {
	if !utils.ValidateDateFormat(date) {
		return Preview{}, inputError(validation.ConflictInvalidDateTime, date, "Invalid date: %q (want YYYY-MM-DD)", date)
	}
	return e.prepare(ctx, personID, date, commitments, override, state)
}

func (e *Engine) prepare(ctx context.Context, personID, date string, commitments []models.Commitment, override *models.ActiveHoursProfile, state models.StateSignals) (Preview, error) {
	hours, loc, err := e.activeHours(ctx, personID, override)
	if err != nil {
		return Preview{}, err
	}

	active, err := scheduler.ResolveActiveHours(date, &hours, loc)
	if err != nil {
		return Preview{}, inputError(validation.ConflictInvalidActiveHours, date, "Invalid active hours %s-%s: %v", hours.Wake, hours.Sleep, err)
	}

	layout := e.sched.Layout(commitments, active)
	return Preview{
		Date:     date,
		Layout:   layout,
		Policy:   scheduler.SelectPolicy(layout.Intensity, state, layout.Windows),
		Location: loc,
	}, nil
}

// activeHours resolves the day bounds: request override, then the stored
// profile, then the configured defaults.
func (e *Engine) activeHours(ctx context.Context, personID string, override *models.ActiveHoursProfile) (models.ActiveHoursProfile, *time.Location, error) {
	loc := e.loc
	var profile *models.Profile
	if e.profiles != nil && personID != "" {
		p, err := e.profiles.LookupProfile(ctx, personID)
		if err != nil {
			return models.ActiveHoursProfile{}, nil, fmt.Errorf("failed to load profile: %w", err)
		}
		profile = p
	}
	if profile != nil && profile.Timezone != "" {
		l, err := utils.LoadLocation(profile.Timezone)
		if err != nil {
			logger.Warn("Ignoring invalid profile timezone", "person", personID, "timezone", profile.Timezone)
		} else {
			loc = l
		}
	}

	switch {
	case override != nil:
		return *override, loc, nil
	case profile != nil:
		return profile.ActiveHours(), loc, nil
	default:
		return models.ActiveHoursProfile{Wake: e.settings.DayStart, Sleep: e.settings.DayEnd}, loc, nil
	}
}

func toActivities(placed []models.PlacedActivity, loc *time.Location) []Activity {
	out := make([]Activity, 0, len(placed))
	for _, p := range placed {
		out = append(out, Activity{
			Category:    p.Category,
			Title:       p.Title,
			Start:       p.Interval.Start.In(loc),
			End:         p.Interval.End.In(loc),
			Description: p.Description,
		})
	}
	return out
}
