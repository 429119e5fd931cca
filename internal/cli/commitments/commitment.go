package commitments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

type CommitmentAddCmd struct {
	Label  string `arg:"" help:"What the commitment is."`
	Start  string `help:"Start time (HH:MM)." required:""`
	End    string `help:"End time (HH:MM). Earlier than start means the next day." required:""`
	Date   string `help:"Day of the commitment (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Person string `help:"Person ID. Defaults to --person."`
}

func (c *CommitmentAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	person := ctx.PersonOr(c.Person)
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	loc, err := ctx.PersonLocation(bg, person)
	if err != nil {
		return err
	}

	start, err := utils.CombineDateAndTime(day, c.Start, loc)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	end, err := utils.CombineDateAndTime(day, c.End, loc)
	if err != nil {
		return fmt.Errorf("invalid end: %w", err)
	}
	if c.Start == c.End {
		return errors.New("start and end cannot be equal")
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	entry := models.CalendarEntry{
		ID:        uuid.NewString(),
		PersonID:  person,
		Day:       day,
		Label:     c.Label,
		Source:    constants.SourceExternal,
		Start:     start,
		End:       end,
		CreatedAt: time.Now(),
	}
	if err := ctx.Store.AddEntry(bg, entry); err != nil {
		return fmt.Errorf("failed to add commitment: %w", err)
	}
	fmt.Printf("Added commitment %q on %s %s-%s (ID: %s)\n", c.Label, day, c.Start, c.End, entry.ID)
	return nil
}

type CommitmentListCmd struct {
	Date   string `arg:"" optional:"" help:"Day to list (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Person string `help:"Person ID. Defaults to --person."`
}

func (c *CommitmentListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	person := ctx.PersonOr(c.Person)
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	loc, err := ctx.PersonLocation(bg, person)
	if err != nil {
		return err
	}

	entries, err := ctx.Store.ListEntries(bg, person, day)
	if err != nil {
		return fmt.Errorf("failed to list calendar: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("Nothing on the calendar for %s on %s.\n", person, day)
		return nil
	}

	fmt.Printf("Calendar for %s on %s:\n", person, day)
	generated := false
	for _, e := range entries {
		marker := " "
		if e.Source == constants.SourceFlowmind {
			marker = "*"
			generated = true
		}
		fmt.Printf("%s %s-%s  %-30s  %s\n", marker,
			utils.FormatClock(e.Start.In(loc)), utils.FormatClock(e.End.In(loc)), e.Label, e.ID)
	}
	if generated {
		fmt.Println("\n* generated by flowmind")
	}
	return nil
}

type CommitmentDeleteCmd struct {
	ID string `arg:"" help:"ID of the calendar entry to delete."`
}

func (c *CommitmentDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.DeleteEntry(context.Background(), c.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("no calendar entry with ID %s", c.ID)
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	fmt.Printf("Deleted calendar entry %s\n", c.ID)
	return nil
}
