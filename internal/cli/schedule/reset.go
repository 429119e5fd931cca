package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/willofcode/flowmind/internal/backup"
	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/storage/sqlite"
)

// ResetCmd reopens a day: it forgets the generation marker and removes the
// activities flowmind wrote to the local calendar.
type ResetCmd struct {
	Date   string `arg:"" optional:"" help:"Day to reset (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Person string `help:"Person ID. Defaults to --person."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	person := ctx.PersonOr(c.Person)
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Reset %s for %s?", day, person)).
			Description("Generated activities on the local calendar are deleted.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if _, ok := ctx.Store.(*sqlite.Store); ok {
		snap, err := backup.NewManager(ctx.Store.GetConfigPath()).Create()
		switch {
		case errors.Is(err, backup.ErrNoDatabase):
		case err != nil:
			return fmt.Errorf("failed to back up before reset: %w", err)
		default:
			fmt.Printf("✓ Backup created: %s\n", snap.Name())
		}
	}

	markers, release, err := ctx.Markers()
	if err != nil {
		return err
	}
	defer release()

	if err := markers.ClearMarker(bg, person, day); err != nil {
		return fmt.Errorf("failed to clear marker: %w", err)
	}
	removed, err := ctx.Store.DeleteEntriesBySource(bg, person, day, constants.SourceFlowmind)
	if err != nil {
		return fmt.Errorf("failed to remove generated activities: %w", err)
	}

	fmt.Printf("Reset %s for %s: %d generated activities removed.\n", day, person, removed)
	return nil
}
