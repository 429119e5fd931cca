package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

// CheckIn holds the raw answers of the check-in form.
type CheckIn struct {
	Mood   string
	Energy models.Level
	Stress models.Level
}

// NewCheckIn seeds the form with the given state.
func NewCheckIn(state models.StateSignals) *CheckIn {
	ci := &CheckIn{
		Mood:   strconv.FormatFloat(state.MoodScore, 'f', -1, 64),
		Energy: state.EnergyLevel,
		Stress: state.StressLevel,
	}
	if !ci.Energy.Valid() {
		ci.Energy = models.LevelMedium
	}
	if !ci.Stress.Valid() {
		ci.Stress = models.LevelMedium
	}
	return ci
}

func levelOptions() []huh.Option[models.Level] {
	return []huh.Option[models.Level]{
		huh.NewOption("Low", models.LevelLow),
		huh.NewOption("Medium", models.LevelMedium),
		huh.NewOption("High", models.LevelHigh),
	}
}

// Form builds the interactive check-in.
func (ci *CheckIn) Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Mood (0-%.0f)", constants.MaxMoodScore)).
				Description("How are you feeling right now?").
				Value(&ci.Mood).
				Validate(func(s string) error {
					_, err := parseMood(s)
					return err
				}),
			huh.NewSelect[models.Level]().
				Title("Energy").
				Options(levelOptions()...).
				Value(&ci.Energy),
			huh.NewSelect[models.Level]().
				Title("Stress").
				Options(levelOptions()...).
				Value(&ci.Stress),
		),
	)
}

// State converts the answers into state signals.
func (ci *CheckIn) State() (models.StateSignals, error) {
	mood, err := parseMood(ci.Mood)
	if err != nil {
		return models.StateSignals{}, err
	}
	return models.StateSignals{MoodScore: mood, EnergyLevel: ci.Energy, StressLevel: ci.Stress}, nil
}

func parseMood(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("mood must be a number")
	}
	if v < 0 || v > constants.MaxMoodScore {
		return 0, fmt.Errorf("mood must be between 0 and %.0f", constants.MaxMoodScore)
	}
	return v, nil
}

// RunCheckIn asks for mood, energy and stress, starting from state.
func RunCheckIn(state models.StateSignals) (models.StateSignals, error) {
	ci := NewCheckIn(state)
	if err := ci.Form().Run(); err != nil {
		return models.StateSignals{}, fmt.Errorf("check-in cancelled: %w", err)
	}
	return ci.State()
}
