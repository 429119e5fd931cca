package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/engine"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

type GenerateCmd struct {
	Date        string `arg:"" optional:"" help:"Day to fill (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Person      string `help:"Person ID. Defaults to --person."`
	CheckIn     bool   `help:"Ask for mood, energy and stress interactively." name:"check-in"`
	Commitments string `help:"YAML file of commitments to use instead of the calendar." type:"existingfile"`
	DryRun      bool   `help:"Show the activities without writing them or marking the day."`
	StateFlags
}

// commitmentFile is one entry of a --commitments file. Start and End are
// HH:MM on the requested day; an End before Start means the next day.
type commitmentFile struct {
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
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
	if c.CheckIn {
		if state, err = cli.RunCheckIn(state); err != nil {
			return err
		}
	}

	eng, cal, release, err := ctx.Engine(bg)
	if err != nil {
		return err
	}
	defer release()

	var commitments []models.Commitment
	if c.Commitments != "" {
		loc, err := ctx.PersonLocation(bg, person)
		if err != nil {
			return err
		}
		if commitments, err = LoadCommitments(c.Commitments, day, loc); err != nil {
			return err
		}
	} else {
		existing, err := cal.ListExisting(bg, person, day)
		if err != nil {
			return fmt.Errorf("failed to read calendar: %w", err)
		}
		commitments = calendar.Externals(existing)
	}
	logger.Debug("Generating activities", "person", person, "day", day, "commitments", len(commitments), "dry_run", c.DryRun)

	resp, err := eng.Generate(bg, engine.Request{
		PersonID:    person,
		Date:        day,
		Commitments: commitments,
		State:       state,
		DryRun:      c.DryRun,
	})
	if err != nil {
		var inErr *engine.InputError
		if errors.As(err, &inErr) {
			fmt.Print(inErr.Result.FormatReport())
		}
		return err
	}

	fmt.Print(cli.RenderSchedule(day, resp))
	if c.DryRun && len(resp.Activities) > 0 {
		fmt.Println("Dry run: nothing was written.")
	}
	return nil
}

// LoadCommitments reads a YAML list of commitments and anchors them on day.
func LoadCommitments(path, day string, loc *time.Location) ([]models.Commitment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commitments: %w", err)
	}
	var entries []commitmentFile
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse commitments %s: %w", path, err)
	}

	out := make([]models.Commitment, 0, len(entries))
	for i, e := range entries {
		start, err := utils.CombineDateAndTime(day, e.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("commitment %d (%s): invalid start: %w", i+1, e.Label, err)
		}
		end, err := utils.CombineDateAndTime(day, e.End, loc)
		if err != nil {
			return nil, fmt.Errorf("commitment %d (%s): invalid end: %w", i+1, e.Label, err)
		}
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}
		out = append(out, models.Commitment{
			Label:        e.Label,
			Source:       constants.SourceExternal,
			TimeInterval: models.TimeInterval{Start: start, End: end},
		})
	}
	return out, nil
}
