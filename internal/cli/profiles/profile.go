package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

type ProfileSetCmd struct {
	Person   string `help:"Person ID. Defaults to --person."`
	Wake     string `help:"Wake time (HH:MM)." required:""`
	Sleep    string `help:"Sleep time (HH:MM). Earlier than wake means the next day." required:""`
	Timezone string `help:"IANA timezone for this person. Empty uses the global setting."`
}

func (c *ProfileSetCmd) Run(ctx *cli.Context) error {
	person := ctx.PersonOr(c.Person)
	if person == "" {
		return errors.New("person ID is required")
	}
	if !utils.ValidateTimeFormat(c.Wake) {
		return fmt.Errorf("invalid wake time %q, use HH:MM", c.Wake)
	}
	if !utils.ValidateTimeFormat(c.Sleep) {
		return fmt.Errorf("invalid sleep time %q, use HH:MM", c.Sleep)
	}
	if c.Wake == c.Sleep {
		return fmt.Errorf("wake and sleep cannot both be %s", c.Wake)
	}
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}

	p := models.Profile{PersonID: person, Wake: c.Wake, Sleep: c.Sleep, Timezone: c.Timezone}
	if err := ctx.Store.SaveProfile(context.Background(), p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Printf("Profile for %s saved: active %s-%s\n", person, c.Wake, c.Sleep)
	return nil
}

type ProfileShowCmd struct {
	Person string `arg:"" optional:"" help:"Person ID. Defaults to --person."`
	All    bool   `help:"Show every stored profile."`
}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.All {
		profiles, err := ctx.Store.GetAllProfiles(bg)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles stored.")
			return nil
		}
		for _, p := range profiles {
			printProfile(p)
		}
		return nil
	}

	person := ctx.PersonOr(c.Person)
	p, err := ctx.Store.GetProfile(bg, person)
	if errors.Is(err, models.ErrNotFound) {
		settings, serr := ctx.Store.GetSettings()
		if serr != nil {
			return fmt.Errorf("failed to get settings: %w", serr)
		}
		fmt.Printf("No profile for %s; using defaults %s-%s.\n", person, settings.DayStart, settings.DayEnd)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	printProfile(p)
	return nil
}

func printProfile(p models.Profile) {
	tz := p.Timezone
	if tz == "" {
		tz = "(global setting)"
	}
	fmt.Printf("%s\n", p.PersonID)
	fmt.Printf("  Active:   %s-%s\n", p.Wake, p.Sleep)
	fmt.Printf("  Timezone: %s\n", tz)
	fmt.Printf("  Updated:  %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
}
