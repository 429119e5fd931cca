package settings

import (
	"fmt"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DayStart          *string `help:"Default wake time (HH:MM) for people without a profile."`
	DayEnd            *string `help:"Default sleep time (HH:MM) for people without a profile."`
	BufferMin         *int    `help:"Transition buffer around every commitment, in minutes."`
	MinWindowMin      *int    `help:"Free windows shorter than this many minutes are ignored."`
	GenerationTimeout *int    `help:"Seconds to wait for the generative backend before falling back." name:"generation-timeout"`
	Timezone          *string `help:"IANA timezone name, or Local."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Day Start:          %s\n", settings.DayStart)
		fmt.Printf("  Day End:            %s\n", settings.DayEnd)
		fmt.Printf("  Buffer:             %d min\n", settings.BufferMin)
		fmt.Printf("  Minimum Window:     %d min\n", settings.MinWindowMin)
		fmt.Printf("  Generation Timeout: %d s\n", settings.GenerationTimeoutSec)
		fmt.Printf("  Timezone:           %s\n", settings.Timezone)
		return nil
	}

	updated := false
	if c.DayStart != nil {
		if !utils.ValidateTimeFormat(*c.DayStart) {
			return fmt.Errorf("invalid day start %q, use HH:MM", *c.DayStart)
		}
		settings.DayStart = *c.DayStart
		updated = true
	}
	if c.DayEnd != nil {
		if !utils.ValidateTimeFormat(*c.DayEnd) {
			return fmt.Errorf("invalid day end %q, use HH:MM", *c.DayEnd)
		}
		settings.DayEnd = *c.DayEnd
		updated = true
	}
	if settings.DayStart == settings.DayEnd {
		return fmt.Errorf("day start and day end cannot both be %s", settings.DayStart)
	}
	if c.BufferMin != nil {
		if *c.BufferMin < 0 {
			return fmt.Errorf("buffer must not be negative")
		}
		settings.BufferMin = *c.BufferMin
		updated = true
	}
	if c.MinWindowMin != nil {
		if *c.MinWindowMin < 0 {
			return fmt.Errorf("minimum window must not be negative")
		}
		settings.MinWindowMin = *c.MinWindowMin
		updated = true
	}
	if c.GenerationTimeout != nil {
		if *c.GenerationTimeout <= 0 {
			return fmt.Errorf("generation timeout must be positive")
		}
		settings.GenerationTimeoutSec = *c.GenerationTimeout
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("unknown timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
