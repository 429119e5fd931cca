package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

const systemPrompt = `You plan short wellness activities that fit into the free time of one person's day.
Only use the free windows you are given; never suggest anything outside them.
Keep activities at least the requested number of minutes apart.
Answer with a JSON object of the form:
{"activities":[{"category":"...","title":"...","start":"HH:MM","end":"HH:MM","description":"..."}]}
List the most important activities first.`

type proposal struct {
	Activities []proposedActivity `json:"activities"`
}

type proposedActivity struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

// BuildPrompt renders the user message describing windows, policy and state.
func BuildPrompt(pc ProposalContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Date: %s\n", pc.Date)
	fmt.Fprintf(&b, "Mood: %.1f/10, energy: %s, stress: %s\n",
		pc.State.MoodScore, pc.State.EnergyLevel, pc.State.StressLevel)
	fmt.Fprintf(&b, "Strategy: %s\n", pc.Policy.Strategy)
	fmt.Fprintf(&b, "Suggest up to %d activities, at least %d minutes apart.\n",
		pc.Policy.TargetCount, pc.Policy.MinSpacingMinutes)

	categories := make([]string, len(pc.Policy.AllowedCategories))
	for i, c := range pc.Policy.AllowedCategories {
		categories[i] = string(c)
	}
	fmt.Fprintf(&b, "Allowed categories: %s\n", strings.Join(categories, ", "))

	b.WriteString("Free windows:\n")
	for _, w := range pc.Windows {
		fmt.Fprintf(&b, "- %s to %s (%d min, %s)\n",
			w.Start.Format(constants.TimeFormat), w.End.Format(constants.TimeFormat), w.Minutes(), w.Size)
	}

	return b.String()
}

// ParseProposal decodes a backend reply into candidates. Items with an
// unknown category, bad times or an empty span are dropped.
func ParseProposal(content string, pc ProposalContext) ([]models.ActivityCandidate, error) {
	var p proposal
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("decode proposal: %w", err)}
	}
	if len(p.Activities) == 0 {
		return nil, &GenerationError{Kind: KindEmpty, Err: errors.New("proposal has no activities")}
	}

	loc := pc.Location
	if loc == nil {
		loc = time.Local
	}

	candidates := make([]models.ActivityCandidate, 0, len(p.Activities))
	for _, a := range p.Activities {
		category, err := models.ParseCategory(a.Category)
		if err != nil {
			continue
		}
		start, err := anchorClock(pc, a.Start, loc)
		if err != nil {
			continue
		}
		end, err := anchorClock(pc, a.End, loc)
		if err != nil {
			continue
		}
		iv, err := models.NewInterval(start, end)
		if err != nil {
			continue
		}

		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = candidateFor(category, iv).Title
		}
		candidates = append(candidates, models.ActivityCandidate{
			Category:    category,
			Title:       title,
			Interval:    iv,
			Description: strings.TrimSpace(a.Description),
		})
	}

	if len(candidates) == 0 {
		return nil, &GenerationError{Kind: KindMalformed, Err: fmt.Errorf("none of %d proposed activities were usable", len(p.Activities))}
	}
	return candidates, nil
}

// anchorClock resolves HH:MM on the run's date. Clock times earlier than
// the first free window belong to the next day, which covers active hours
// that run past midnight.
func anchorClock(pc ProposalContext, clock string, loc *time.Location) (time.Time, error) {
	t, err := utils.CombineDateAndTime(pc.Date, strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, err
	}
	if len(pc.Windows) > 0 && t.Before(pc.Windows[0].Start) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
