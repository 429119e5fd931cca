package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/config"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/dedup"
	"github.com/willofcode/flowmind/internal/engine"
	"github.com/willofcode/flowmind/internal/generator"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/storage"
	"github.com/willofcode/flowmind/internal/storage/redis"
	"github.com/willofcode/flowmind/internal/utils"
)

type Context struct {
	Store  storage.Provider
	Config config.Config
	// Person is the default person ID for commands that take one.
	Person string
}

// PersonOr returns id, or the context's default person when id is empty.
func (c *Context) PersonOr(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return c.Person
}

// ResolveDate turns "today", "tomorrow" or YYYY-MM-DD into a date string in
// the configured timezone.
func (c *Context) ResolveDate(date string) (string, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(date)) {
	case "", "today":
		return utils.GetTodayFromSettings(settings)
	case "tomorrow":
		now, err := utils.NowInTimezone(settings.Timezone)
		if err != nil {
			return "", err
		}
		return now.AddDate(0, 0, 1).Format(constants.DateFormat), nil
	}
	if !utils.ValidateDateFormat(date) {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD, 'today' or 'tomorrow'", date)
	}
	return date, nil
}

// Location returns the configured timezone.
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return utils.LoadLocation(settings.Timezone)
}

// PersonLocation returns the person's profile timezone, falling back to the
// configured one.
func (c *Context) PersonLocation(ctx context.Context, personID string) (*time.Location, error) {
	p, err := c.Store.GetProfile(ctx, personID)
	if err == nil && p.Timezone != "" {
		return utils.LoadLocation(p.Timezone)
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return c.Location()
}

// Calendar builds the configured calendar collaborator.
func (c *Context) Calendar(ctx context.Context) (calendar.Calendar, error) {
	if c.Config.Calendar != config.CalendarGoogle {
		return calendar.NewLocal(c.Store), nil
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return calendar.NewGoogle(ctx, calendar.GoogleOptions{
		CalendarID:    c.Config.Google.CalendarID,
		Workers:       c.Config.Google.Workers,
		Location:      loc,
		ClientOptions: calendar.CredentialOptions(c.Config.Google.Credentials),
	})
}

// Markers returns the configured marker store and a func that releases it.
func (c *Context) Markers() (MarkerStore, func(), error) {
	if c.Config.MarkerBackend != config.MarkerBackendRedis {
		return c.Store, func() {}, nil
	}
	store, err := redis.New(redis.Config{
		Addr:      c.Config.Redis.Addr,
		Password:  c.Config.Redis.Password,
		DB:        c.Config.Redis.DB,
		Prefix:    c.Config.Redis.Prefix,
		MarkerTTL: c.Config.Redis.MarkerTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close Redis marker store", "error", err)
		}
	}, nil
}

// MarkerStore is a dedup marker store that can also forget a day.
type MarkerStore interface {
	dedup.MarkerStore
	ClearMarker(ctx context.Context, personID, day string) error
}

// Backend returns the OpenAI backend, or nil when no API key is configured.
func (c *Context) Backend() generator.Backend {
	if !c.Config.GenerativeEnabled() {
		logger.Debug("No OpenAI key configured, using the rule-based generator")
		return nil
	}
	return generator.NewOpenAIBackend(generator.OpenAIOptions{
		APIKey:      c.Config.OpenAI.APIKey,
		Model:       c.Config.OpenAI.Model,
		BaseURL:     c.Config.OpenAI.BaseURL,
		MaxTokens:   c.Config.OpenAI.MaxTokens,
		Temperature: float32(c.Config.OpenAI.Temperature),
	})
}

// Engine wires an engine from stored settings and the configured
// collaborators. The returned func releases them.
func (c *Context) Engine(ctx context.Context) (*engine.Engine, calendar.Calendar, func(), error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	cal, err := c.Calendar(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	markers, release, err := c.Markers()
	if err != nil {
		return nil, nil, nil, err
	}

	gate := dedup.DefaultOptions()
	if c.Config.ClaimTTL > 0 {
		gate.ClaimTTL = c.Config.ClaimTTL
	}

	eng, err := engine.New(engine.Config{
		Settings: settings,
		Profiles: engine.StoredProfiles{Store: c.Store},
		Backend:  c.Backend(),
		Calendar: cal,
		Markers:  markers,
		Gate:     gate,
	})
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return eng, cal, release, nil
}

// ParseState builds state signals from CLI flags. Empty levels default to
// medium.
func ParseState(mood float64, energy, stress string) (models.StateSignals, error) {
	state := models.StateSignals{MoodScore: mood, EnergyLevel: models.LevelMedium, StressLevel: models.LevelMedium}
	if energy != "" {
		l, err := models.ParseLevel(energy)
		if err != nil {
			return state, fmt.Errorf("energy: %w", err)
		}
		state.EnergyLevel = l
	}
	if stress != "" {
		l, err := models.ParseLevel(stress)
		if err != nil {
			return state, fmt.Errorf("stress: %w", err)
		}
		state.StressLevel = l
	}
	return state, nil
}
