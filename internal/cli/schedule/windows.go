package schedule

import (
	"context"
	"fmt"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/cli"
)

// StateFlags are the state signal flags shared by windows and generate.
type StateFlags struct {
	Mood   float64 `help:"Mood score from 0 to 10." default:"5"`
	Energy string  `help:"Energy level (low, medium, high). Defaults to medium."`
	Stress string  `help:"Stress level (low, medium, high). Defaults to medium."`
}

type WindowsCmd struct {
	Date   string `arg:"" optional:"" help:"Day to inspect (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Person string `help:"Person ID. Defaults to --person."`
	StateFlags
}

func (c *WindowsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	person := ctx.PersonOr(c.Person)
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	state, err := cli.ParseState(c.Mood, c.Energy, c.Stress)
	if err != nil {
		return err
	}

	eng, cal, release, err := ctx.Engine(bg)
	if err != nil {
		return err
	}
	defer release()

	existing, err := cal.ListExisting(bg, person, day)
	if err != nil {
		return fmt.Errorf("failed to read calendar: %w", err)
	}

	preview, err := eng.Layout(bg, person, day, calendar.Externals(existing), nil, state)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderWindows(preview))
	return nil
}
