package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/willofcode/flowmind/internal/engine"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(13)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Width(12)

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	intensityColors = map[models.IntensityLevel]lipgloss.Color{
		models.IntensityLow:    lipgloss.Color("42"),
		models.IntensityMedium: lipgloss.Color("214"),
		models.IntensityHigh:   lipgloss.Color("196"),
	}
)

func clockRange(start, end time.Time) string {
	return utils.FormatClock(start) + "-" + utils.FormatClock(end)
}

func intensityBadge(score models.IntensityScore) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(intensityColors[score.Level])
	return style.Render(fmt.Sprintf("%s (%.0f%%)", score.Level, score.Ratio*100))
}

// RenderSchedule formats a generation response for the terminal.
func RenderSchedule(date string, resp engine.Response) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Schedule for "+date) + "\n")
	fmt.Fprintf(&b, "Intensity: %s   Strategy: %s\n\n", intensityBadge(resp.Intensity), resp.Strategy)

	switch {
	case resp.AlreadyGenerated:
		b.WriteString(noteStyle.Render("Activities were already generated for this day.") + "\n")
		b.WriteString("Use 'flowmind reset " + date + "' to start over.\n")
		return b.String()
	case resp.ScheduleFull || len(resp.Activities) == 0:
		b.WriteString(noteStyle.Render("No room for activities today. The day stays open for another try.") + "\n")
		return b.String()
	}

	for _, a := range resp.Activities {
		line := clockStyle.Render(clockRange(a.Start, a.End)) + categoryStyle.Render(string(a.Category)) + a.Title
		b.WriteString(line + "\n")
		if a.Description != "" {
			b.WriteString(busyStyle.Render(strings.Repeat(" ", 25)+a.Description) + "\n")
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%d activities from the %s generator", len(resp.Activities), resp.Source)
	if resp.Rejected > 0 {
		fmt.Fprintf(&b, ", %d candidates rejected", resp.Rejected)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderWindows formats a day layout preview: busy blocks, free windows and
// the policy a generation would use.
func RenderWindows(p engine.Preview) string {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	layout := p.Layout

	var b strings.Builder
	b.WriteString(titleStyle.Render("Free time on "+p.Date) + "\n")
	fmt.Fprintf(&b, "Active hours: %s (%d min)\n", clockRange(layout.Active.Start.In(loc), layout.Active.End.In(loc)), layout.Active.TotalMinutes)
	fmt.Fprintf(&b, "Intensity: %s\n\n", intensityBadge(layout.Intensity))

	if len(layout.Blocks) > 0 {
		b.WriteString("Busy\n")
		for _, blk := range layout.Blocks {
			label := strings.Join(blk.Labels, ", ")
			b.WriteString(busyStyle.Render("  "+clockRange(blk.Start.In(loc), blk.End.In(loc))+"  "+label) + "\n")
		}
		b.WriteString("\n")
	}

	if len(layout.Windows) == 0 {
		b.WriteString(noteStyle.Render("No free windows.") + "\n")
	} else {
		b.WriteString("Free\n")
		for _, w := range layout.Windows {
			fmt.Fprintf(&b, "  %s%s%d min\n", clockStyle.Render(clockRange(w.Start.In(loc), w.End.In(loc))), categoryStyle.Render(string(w.Size)), w.Minutes())
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Policy: %s, up to %d activities, %d min apart\n", p.Policy.Strategy, p.Policy.TargetCount, p.Policy.MinSpacingMinutes)
	return b.String()
}
