package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/willofcode/flowmind/internal/backup"
	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/keyring"
	"github.com/willofcode/flowmind/internal/migration"
	"github.com/willofcode/flowmind/internal/storage/sqlite"
	"github.com/willofcode/flowmind/internal/utils"
	"github.com/willofcode/flowmind/internal/validation"
	"github.com/willofcode/flowmind/migrations"
)

type DoctorCmd struct {
	Date string `help:"Day whose calendar entries are checked (YYYY-MM-DD or 'today')." default:"today"`
}

type checkLevel int

const (
	levelFail checkLevel = iota
	levelWarn
)

type check struct {
	name  string
	level checkLevel
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
	run     func(ctx *cli.Context) error
}

func (c *DoctorCmd) checks() []check {
	return []check{
		{name: "Configuration", level: levelFail, run: checkConfig},
		{name: "Schema version", level: levelFail, needsDB: true, run: checkSchema},
		{name: "Settings", level: levelFail, needsDB: true, run: checkSettings},
		{name: "Clock/timezone", level: levelFail, needsDB: true, run: checkClockTimezone},
		{name: "Profiles", level: levelFail, needsDB: true, run: checkProfiles},
		{name: "Calendar entries", level: levelFail, needsDB: true, run: func(ctx *cli.Context) error {
			return checkCalendar(ctx, c.Date)
		}},
		{name: "Marker store", level: levelFail, needsDB: true, run: checkMarkers},
		{name: "OS keyring", level: levelWarn, run: checkKeyring},
		{name: "Generative backend", level: levelWarn, run: checkBackend},
		{name: "Backups present", level: levelWarn, run: checkBackups},
	}
}

func (c *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running flowmind diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, chk := range c.checks() {
		if chk.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", chk.name)
			continue
		}
		err := chk.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", chk.name)
		case chk.level == levelWarn:
			fmt.Printf("⚠ %s: WARNING\n", chk.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", chk.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkSchema(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// Load validates the PostgreSQL schema version.
		return nil
	}
	db := store.GetDB()
	if db == nil {
		return errors.New("database connection is nil")
	}
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	return migration.NewRunner(db, sub, migration.SQLite).ValidateVersion()
}

func checkSettings(ctx *cli.Context) error {
	s, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimeFormat(s.DayStart) || !utils.ValidateTimeFormat(s.DayEnd) {
		return fmt.Errorf("invalid default day bounds %q-%q", s.DayStart, s.DayEnd)
	}
	if s.DayStart == s.DayEnd {
		return fmt.Errorf("default day start and end are both %s", s.DayStart)
	}
	if s.BufferMin < 0 || s.MinWindowMin < 0 {
		return fmt.Errorf("buffer (%d) and minimum window (%d) must not be negative", s.BufferMin, s.MinWindowMin)
	}
	if s.GenerationTimeoutSec <= 0 {
		return fmt.Errorf("generation timeout must be positive, got %d", s.GenerationTimeoutSec)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	s, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("unknown timezone %q", s.Timezone)
	}
	if time.Now().Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", time.Now().Format(time.RFC3339))
	}
	return nil
}

func checkProfiles(ctx *cli.Context) error {
	profiles, err := ctx.Store.GetAllProfiles(context.Background())
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if !utils.ValidateTimeFormat(p.Wake) || !utils.ValidateTimeFormat(p.Sleep) || p.Wake == p.Sleep {
			return fmt.Errorf("profile %s has invalid active hours %q-%q", p.PersonID, p.Wake, p.Sleep)
		}
		if !utils.ValidateTimezone(p.Timezone) {
			return fmt.Errorf("profile %s has unknown timezone %q", p.PersonID, p.Timezone)
		}
	}
	return nil
}

// checkCalendar looks for generated activities that overlap another entry
// on the given day, for every known person.
func checkCalendar(ctx *cli.Context, date string) error {
	day, err := ctx.ResolveDate(date)
	if err != nil {
		return err
	}
	profiles, err := ctx.Store.GetAllProfiles(context.Background())
	if err != nil {
		return err
	}
	people := []string{ctx.Person}
	for _, p := range profiles {
		if p.PersonID != ctx.Person {
			people = append(people, p.PersonID)
		}
	}

	v := validation.New()
	var result validation.ValidationResult
	for _, person := range people {
		if person == "" {
			continue
		}
		entries, err := ctx.Store.ListEntries(context.Background(), person, day)
		if err != nil {
			return err
		}
		r := v.ValidateDay(day, entries)
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkMarkers(ctx *cli.Context) error {
	markers, release, err := ctx.Markers()
	if err != nil {
		return err
	}
	defer release()
	_, err = markers.HasMarker(context.Background(), "doctor", time.Now().Format(constants.DateFormat))
	return err
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkBackend(ctx *cli.Context) error {
	if !ctx.Config.GenerativeEnabled() {
		return errors.New("no OpenAI API key configured; schedules use the rule-based generator")
	}
	return nil
}

func checkBackups(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	snaps, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return errors.New("no backups found; run 'flowmind backup create'")
	}
	return nil
}
