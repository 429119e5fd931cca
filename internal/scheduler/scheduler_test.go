package scheduler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

const testDate = "2025-03-10"

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func span(h1, m1, h2, m2 int) models.TimeInterval {
	return models.TimeInterval{Start: at(h1, m1), End: at(h2, m2)}
}

func commitment(label string, h1, m1, h2, m2 int) models.Commitment {
	return models.Commitment{Label: label, Source: "external", TimeInterval: span(h1, m1, h2, m2)}
}

func defaultActive(t *testing.T) models.ActiveWindow {
	t.Helper()
	active, err := ResolveActiveHours(testDate, nil, time.UTC)
	if err != nil {
		t.Fatalf("ResolveActiveHours failed: %v", err)
	}
	return active
}

func TestResolveActiveHours(t *testing.T) {
	tests := []struct {
		name      string
		profile   *models.ActiveHoursProfile
		wantStart time.Time
		wantEnd   time.Time
		wantMin   int
		wantErr   bool
	}{
		{
			name:      "default profile",
			profile:   nil,
			wantStart: at(7, 0),
			wantEnd:   at(22, 0),
			wantMin:   900,
		},
		{
			name:      "custom profile",
			profile:   &models.ActiveHoursProfile{Wake: "06:30", Sleep: "23:00"},
			wantStart: at(6, 30),
			wantEnd:   at(23, 0),
			wantMin:   990,
		},
		{
			name:      "sleep past midnight",
			profile:   &models.ActiveHoursProfile{Wake: "09:00", Sleep: "01:00"},
			wantStart: at(9, 0),
			wantEnd:   at(25, 0),
			wantMin:   960,
		},
		{
			name:    "wake equals sleep",
			profile: &models.ActiveHoursProfile{Wake: "08:00", Sleep: "08:00"},
			wantErr: true,
		},
		{
			name:    "malformed wake",
			profile: &models.ActiveHoursProfile{Wake: "8am", Sleep: "22:00"},
			wantErr: true,
		},
		{
			name:    "malformed sleep",
			profile: &models.ActiveHoursProfile{Wake: "08:00", Sleep: "25:00"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveActiveHours(testDate, tt.profile, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("got %s - %s, want %s - %s", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.TotalMinutes != tt.wantMin {
				t.Errorf("TotalMinutes = %d, want %d", got.TotalMinutes, tt.wantMin)
			}
		})
	}
}

func TestResolveActiveHours_EmptyIsSentinel(t *testing.T) {
	_, err := ResolveActiveHours(testDate, &models.ActiveHoursProfile{Wake: "10:00", Sleep: "10:00"}, time.UTC)
	if !errors.Is(err, ErrEmptyActiveHours) {
		t.Errorf("expected ErrEmptyActiveHours, got %v", err)
	}
}

func TestMergeIntervals(t *testing.T) {
	got := MergeIntervals([]models.TimeInterval{
		span(13, 0, 14, 0),
		span(9, 0, 10, 0),
		span(9, 30, 11, 0),
		span(11, 0, 11, 30),
	})
	want := []models.TimeInterval{span(9, 0, 11, 30), span(13, 0, 14, 0)}
	if len(got) != len(want) {
		t.Fatalf("got %d intervals, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d = %s, want %s", i, got[i], want[i])
		}
	}

	if MergeIntervals(nil) != nil {
		t.Error("expected nil for no intervals")
	}
}

func TestUnionMinutes(t *testing.T) {
	got := UnionMinutes([]models.TimeInterval{span(9, 0, 10, 0), span(9, 30, 10, 30), span(12, 0, 12, 15)})
	if got != 105 {
		t.Errorf("UnionMinutes = %d, want 105", got)
	}
}

func TestGap(t *testing.T) {
	tests := []struct {
		name string
		a, b models.TimeInterval
		want time.Duration
	}{
		{"a before b", span(9, 0, 10, 0), span(10, 15, 11, 0), 15 * time.Minute},
		{"b before a", span(10, 15, 11, 0), span(9, 0, 10, 0), 15 * time.Minute},
		{"touching", span(9, 0, 10, 0), span(10, 0, 11, 0), 0},
		{"overlapping", span(9, 0, 10, 0), span(9, 45, 11, 0), -15 * time.Minute},
		{"nested", span(9, 0, 12, 0), span(10, 0, 10, 30), -30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Gap(tt.a, tt.b); got != tt.want {
				t.Errorf("Gap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeBusyBlocks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := MergeBusyBlocks(nil, 5)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("single commitment is padded", func(t *testing.T) {
		got := MergeBusyBlocks([]models.Commitment{commitment("standup", 9, 0, 10, 0)}, 5)
		if len(got) != 1 {
			t.Fatalf("got %d blocks, want 1", len(got))
		}
		if !got[0].Start.Equal(at(8, 55)) || !got[0].End.Equal(at(10, 5)) {
			t.Errorf("block = %s, want [08:55, 10:05)", got[0].TimeInterval)
		}
		if got[0].CommittedMinutes != 60 {
			t.Errorf("CommittedMinutes = %d, want 60", got[0].CommittedMinutes)
		}
	})

	t.Run("padding joins near commitments", func(t *testing.T) {
		got := MergeBusyBlocks([]models.Commitment{
			commitment("b", 10, 10, 11, 0),
			commitment("a", 9, 0, 10, 0),
		}, 5)
		if len(got) != 1 {
			t.Fatalf("got %d blocks, want 1: %v", len(got), got)
		}
		if !got[0].Start.Equal(at(8, 55)) || !got[0].End.Equal(at(11, 5)) {
			t.Errorf("block = %s, want [08:55, 11:05)", got[0].TimeInterval)
		}
		if got[0].CommittedMinutes != 110 {
			t.Errorf("CommittedMinutes = %d, want 110", got[0].CommittedMinutes)
		}
		if len(got[0].Labels) != 2 || got[0].Labels[0] != "a" {
			t.Errorf("Labels = %v, want [a b]", got[0].Labels)
		}
	})

	t.Run("overlapping commitments count once", func(t *testing.T) {
		got := MergeBusyBlocks([]models.Commitment{
			commitment("a", 9, 0, 10, 0),
			commitment("b", 9, 30, 10, 30),
		}, 0)
		if len(got) != 1 || got[0].CommittedMinutes != 90 {
			t.Errorf("got %+v, want one block with 90 committed minutes", got)
		}
	})

	t.Run("distant commitments stay apart and sorted", func(t *testing.T) {
		got := MergeBusyBlocks([]models.Commitment{
			commitment("late", 15, 0, 16, 0),
			commitment("early", 9, 0, 10, 0),
		}, 5)
		if len(got) != 2 {
			t.Fatalf("got %d blocks, want 2", len(got))
		}
		if !got[0].Start.Before(got[1].Start) {
			t.Error("blocks not sorted by start")
		}
		if got[0].Overlaps(got[1].TimeInterval) {
			t.Error("blocks overlap")
		}
	})

	t.Run("negative buffer treated as zero", func(t *testing.T) {
		got := MergeBusyBlocks([]models.Commitment{commitment("a", 9, 0, 10, 0)}, -10)
		if !got[0].Start.Equal(at(9, 0)) || !got[0].End.Equal(at(10, 0)) {
			t.Errorf("block = %s, want [09:00, 10:00)", got[0].TimeInterval)
		}
	})
}

func TestFindWindows_SingleCommitmentScenario(t *testing.T) {
	active := defaultActive(t)
	blocks := MergeBusyBlocks([]models.Commitment{commitment("meeting", 9, 0, 10, 0)}, 5)

	got := FindWindows(blocks, active, 10)
	if len(got) != 2 {
		t.Fatalf("got %d windows, want 2: %v", len(got), got)
	}
	if !got[0].Start.Equal(at(7, 0)) || !got[0].End.Equal(at(8, 55)) || got[0].Minutes() != 115 {
		t.Errorf("first window = %s (%d min), want [07:00, 08:55) 115 min", got[0].TimeInterval, got[0].Minutes())
	}
	if !got[1].Start.Equal(at(10, 5)) || !got[1].End.Equal(at(22, 0)) || got[1].Minutes() != 715 {
		t.Errorf("second window = %s (%d min), want [10:05, 22:00) 715 min", got[1].TimeInterval, got[1].Minutes())
	}
	if got[1].Size != models.SizeLarge {
		t.Errorf("second window size = %s, want large", got[1].Size)
	}

	score := ScoreIntensity(blocks, active)
	if score.Level != models.IntensityLow {
		t.Errorf("intensity level = %s, want low", score.Level)
	}
	if score.Ratio < 0.066 || score.Ratio > 0.067 {
		t.Errorf("intensity ratio = %f, want about 0.0667", score.Ratio)
	}
}

func TestFindWindows(t *testing.T) {
	active := defaultActive(t)

	t.Run("no blocks yields whole day", func(t *testing.T) {
		got := FindWindows(nil, active, 10)
		if len(got) != 1 || got[0].Minutes() != 900 {
			t.Fatalf("got %v, want one 900 minute window", got)
		}
	})

	t.Run("fully booked yields nothing", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{commitment("all day", 6, 0, 23, 0)}, 5)
		got := FindWindows(blocks, active, 10)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("short gaps below minimum are dropped", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{
			commitment("a", 7, 0, 9, 0),
			commitment("b", 9, 8, 22, 0),
		}, 0)
		got := FindWindows(blocks, active, 10)
		if len(got) != 0 {
			t.Errorf("expected no windows, got %v", got)
		}
	})

	t.Run("blocks outside active hours are ignored", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{
			commitment("early", 5, 0, 6, 0),
			commitment("late", 22, 30, 23, 0),
		}, 5)
		got := FindWindows(blocks, active, 10)
		if len(got) != 1 || got[0].Minutes() != 900 {
			t.Errorf("got %v, want the full active window", got)
		}
	})

	t.Run("block straddling wake-up trims the first window", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{commitment("early", 6, 0, 8, 0)}, 0)
		got := FindWindows(blocks, active, 10)
		if len(got) != 1 || !got[0].Start.Equal(at(8, 0)) {
			t.Errorf("got %v, want a single window starting 08:00", got)
		}
	})

	t.Run("windows never overlap blocks and stay inside active hours", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{
			commitment("a", 8, 0, 8, 30),
			commitment("b", 11, 0, 12, 0),
			commitment("c", 12, 20, 13, 0),
			commitment("d", 17, 0, 18, 45),
		}, 5)
		got := FindWindows(blocks, active, 10)
		for _, w := range got {
			if !active.Contains(w.TimeInterval) {
				t.Errorf("window %s outside active hours", w.TimeInterval)
			}
			for _, b := range blocks {
				if w.Overlaps(b.TimeInterval) {
					t.Errorf("window %s overlaps block %s", w.TimeInterval, b.TimeInterval)
				}
			}
			if w.Minutes() < 10 {
				t.Errorf("window %s shorter than minimum", w.TimeInterval)
			}
		}
	})
}

// randomCommitments returns n minute-aligned commitments between 05:00 and
// 23:30, some of them reaching outside the default active hours.
func randomCommitments(r *rand.Rand, n int) []models.Commitment {
	out := make([]models.Commitment, 0, n)
	for i := range n {
		start := at(5, 0).Add(time.Duration(r.IntN(17*60)) * time.Minute)
		end := start.Add(time.Duration(5+r.IntN(175)) * time.Minute)
		out = append(out, models.Commitment{
			Label:        fmt.Sprintf("c%d", i),
			Source:       "external",
			TimeInterval: models.TimeInterval{Start: start, End: end},
		})
	}
	return out
}

func TestFindWindows_TilesActiveHours(t *testing.T) {
	active := defaultActive(t)

	for seed := range uint64(200) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r := rand.New(rand.NewPCG(seed, 7))
			blocks := MergeBusyBlocks(randomCommitments(r, r.IntN(9)), r.IntN(16))
			windows := FindWindows(blocks, active, 0)

			var pieces []models.TimeInterval
			for _, w := range windows {
				pieces = append(pieces, w.TimeInterval)
			}
			for _, b := range blocks {
				clipped := b.TimeInterval
				if clipped.Start.Before(active.Start) {
					clipped.Start = active.Start
				}
				if clipped.End.After(active.End) {
					clipped.End = active.End
				}
				if clipped.End.After(clipped.Start) {
					pieces = append(pieces, clipped)
				}
			}
			sort.Slice(pieces, func(i, j int) bool { return pieces[i].Start.Before(pieces[j].Start) })

			if len(pieces) == 0 {
				t.Fatal("nothing covers active hours")
			}
			if !pieces[0].Start.Equal(active.Start) {
				t.Errorf("coverage starts at %s, want %s", pieces[0].Start.Format("15:04"), active.Start.Format("15:04"))
			}
			for i := 1; i < len(pieces); i++ {
				if !pieces[i].Start.Equal(pieces[i-1].End) {
					t.Errorf("%s and %s leave a gap or overlap", pieces[i-1], pieces[i])
				}
			}
			if last := pieces[len(pieces)-1]; !last.End.Equal(active.End) {
				t.Errorf("coverage ends at %s, want %s", last.End.Format("15:04"), active.End.Format("15:04"))
			}
		})
	}
}

func TestClassifyWindow(t *testing.T) {
	tests := []struct {
		min  int
		want models.SizeClass
	}{
		{5, models.SizeMicro},
		{9, models.SizeMicro},
		{10, models.SizeSmall},
		{29, models.SizeSmall},
		{30, models.SizeMedium},
		{59, models.SizeMedium},
		{60, models.SizeLarge},
		{715, models.SizeLarge},
	}
	for _, tt := range tests {
		if got := ClassifyWindow(tt.min); got != tt.want {
			t.Errorf("ClassifyWindow(%d) = %s, want %s", tt.min, got, tt.want)
		}
	}
}

func TestScoreIntensity(t *testing.T) {
	active := defaultActive(t)

	t.Run("twelve of fifteen hours is high", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{
			commitment("morning", 7, 0, 13, 0),
			commitment("afternoon", 14, 0, 20, 0),
		}, 5)
		score := ScoreIntensity(blocks, active)
		if score.Ratio != 0.8 {
			t.Errorf("ratio = %f, want 0.8", score.Ratio)
		}
		if score.Level != models.IntensityHigh {
			t.Errorf("level = %s, want high", score.Level)
		}

		policy := SelectPolicy(score, models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelMedium, StressLevel: models.LevelLow}, nil)
		if policy.Strategy != models.StrategyCalming {
			t.Errorf("strategy = %s, want calming", policy.Strategy)
		}
		if policy.TargetCount > 4 {
			t.Errorf("target count = %d, want <= 4", policy.TargetCount)
		}
		for _, c := range policy.AllowedCategories {
			switch c {
			case models.CategoryBreathing, models.CategoryMeditation, models.CategoryMindfulness, models.CategoryStretching:
			default:
				t.Errorf("unexpected category %s in calming policy", c)
			}
		}
	})

	t.Run("over-commitment exceeds one", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{commitment("marathon", 5, 0, 23, 30)}, 0)
		score := ScoreIntensity(blocks, active)
		if score.Ratio <= 1 || score.Level != models.IntensityHigh {
			t.Errorf("got %+v, want ratio > 1 and high", score)
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		if ClassifyIntensity(0.4) != models.IntensityLow {
			t.Error("0.4 should be low")
		}
		if ClassifyIntensity(0.7) != models.IntensityMedium {
			t.Error("0.7 should be medium")
		}
		if ClassifyIntensity(0.71) != models.IntensityHigh {
			t.Error("0.71 should be high")
		}
	})

	t.Run("commitments outside active hours still count", func(t *testing.T) {
		blocks := MergeBusyBlocks([]models.Commitment{commitment("early", 5, 0, 6, 0)}, 5)
		score := ScoreIntensity(blocks, active)
		if want := 60.0 / 900.0; score.Ratio != want {
			t.Errorf("ratio = %f, want %f", score.Ratio, want)
		}
	})

	t.Run("zero active minutes", func(t *testing.T) {
		score := ScoreIntensity(nil, models.ActiveWindow{})
		if score.Ratio != 0 || score.Level != models.IntensityLow {
			t.Errorf("got %+v, want zero and low", score)
		}
	})
}

func TestScoreIntensity_NonOverlappingCommitmentNeverLowersRatio(t *testing.T) {
	active := defaultActive(t)

	for seed := range uint64(200) {
		r := rand.New(rand.NewPCG(seed, 11))
		base := randomCommitments(r, r.IntN(8))
		buffer := r.IntN(16)

		var extra models.Commitment
		found := false
		for range 100 {
			extra = randomCommitments(r, 1)[0]
			free := true
			for _, c := range base {
				if extra.Overlaps(c.TimeInterval) {
					free = false
					break
				}
			}
			if free {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		before := ScoreIntensity(MergeBusyBlocks(base, buffer), active)
		after := ScoreIntensity(MergeBusyBlocks(append(base, extra), buffer), active)
		if after.Ratio < before.Ratio {
			t.Errorf("seed %d: adding %s lowered the ratio from %f to %f", seed, extra.TimeInterval, before.Ratio, after.Ratio)
		}
		if after.Ratio == before.Ratio {
			t.Errorf("seed %d: adding %s left the ratio at %f", seed, extra.TimeInterval, before.Ratio)
		}
	}
}

func largeWindows(n int) []models.FreeWindow {
	windows := make([]models.FreeWindow, 0, n)
	for i := 0; i < n; i++ {
		windows = append(windows, models.FreeWindow{TimeInterval: span(8+i*2, 0, 9+i*2, 0), Size: models.SizeLarge})
	}
	return windows
}

func TestSelectPolicy(t *testing.T) {
	low := models.IntensityScore{Ratio: 0.2, Level: models.IntensityLow}
	medium := models.IntensityScore{Ratio: 0.5, Level: models.IntensityMedium}
	high := models.IntensityScore{Ratio: 0.9, Level: models.IntensityHigh}
	calm := models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelMedium, StressLevel: models.LevelLow}

	tests := []struct {
		name      string
		intensity models.IntensityScore
		state     models.StateSignals
		windows   []models.FreeWindow
		strategy  models.Strategy
		count     int
		spacing   int
	}{
		{"stress and intensity high", high, models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelMedium, StressLevel: models.LevelHigh}, nil, models.StrategyCalming, 3, 5},
		{"stress high only", low, models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelHigh, StressLevel: models.LevelHigh}, largeWindows(3), models.StrategyCalming, 4, 5},
		{"intensity high only", high, calm, nil, models.StrategyCalming, 4, 5},
		{"low energy beats low mood", medium, models.StateSignals{MoodScore: 2, EnergyLevel: models.LevelLow, StressLevel: models.LevelLow}, nil, models.StrategyRestorative, 3, 10},
		{"low energy on quiet day", low, models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelLow, StressLevel: models.LevelMedium}, nil, models.StrategyRestorative, 4, 10},
		{"low mood", low, models.StateSignals{MoodScore: 3.5, EnergyLevel: models.LevelHigh, StressLevel: models.LevelLow}, largeWindows(4), models.StrategyUplifting, 5, 10},
		{"low mood medium day", medium, models.StateSignals{MoodScore: 1, EnergyLevel: models.LevelMedium, StressLevel: models.LevelMedium}, nil, models.StrategyUplifting, 4, 10},
		{"ample large windows", low, calm, largeWindows(2), models.StrategyExpansive, 10, 15},
		{"many large windows clamp", low, calm, largeWindows(6), models.StrategyExpansive, 15, 15},
		{"one large window is balanced", low, calm, largeWindows(1), models.StrategyBalanced, 5, 10},
		{"medium day balanced", medium, calm, largeWindows(3), models.StrategyBalanced, 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectPolicy(tt.intensity, tt.state, tt.windows)
			if got.Strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", got.Strategy, tt.strategy)
			}
			if got.TargetCount != tt.count {
				t.Errorf("target count = %d, want %d", got.TargetCount, tt.count)
			}
			if got.MinSpacingMinutes != tt.spacing {
				t.Errorf("spacing = %d, want %d", got.MinSpacingMinutes, tt.spacing)
			}
			if len(got.AllowedCategories) == 0 {
				t.Error("policy has no categories")
			}
		})
	}
}

func TestSelectPolicy_CategoriesAreCopies(t *testing.T) {
	low := models.IntensityScore{Level: models.IntensityLow}
	state := models.StateSignals{MoodScore: 7, EnergyLevel: models.LevelMedium, StressLevel: models.LevelLow}

	first := SelectPolicy(low, state, largeWindows(2))
	first.AllowedCategories[0] = "tampered"

	second := SelectPolicy(low, state, largeWindows(2))
	if second.AllowedCategories[0] == "tampered" {
		t.Error("policy categories share backing storage")
	}
}

func candidate(cat models.Category, h1, m1, h2, m2 int) models.ActivityCandidate {
	return models.ActivityCandidate{Category: cat, Title: string(cat), Interval: span(h1, m1, h2, m2)}
}

func TestValidatePlacements(t *testing.T) {
	active := defaultActive(t)
	blocks := MergeBusyBlocks([]models.Commitment{commitment("meeting", 9, 0, 10, 0)}, 5)
	windows := FindWindows(blocks, active, 10)

	candidates := []models.ActivityCandidate{
		candidate(models.CategoryWalk, 14, 0, 14, 20),       // kept
		candidate(models.CategoryBreathing, 8, 50, 9, 0),    // overlaps padded block
		candidate(models.CategoryStretching, 7, 30, 7, 40),  // kept
		candidate(models.CategoryReading, 14, 25, 14, 45),   // too close to the walk
		candidate(models.CategoryRest, 21, 50, 22, 10),      // runs past active hours
		candidate(models.CategoryHydration, 14, 22, 14, 27), // inside the walk's spacing
		candidate(models.CategoryCreative, 16, 0, 15, 0),    // inverted
		candidate(models.CategoryJournaling, 12, 0, 12, 15),
	}

	got := ValidatePlacements(candidates, windows, blocks, 10)

	wantStarts := []time.Time{at(7, 30), at(12, 0), at(14, 0)}
	if len(got) != len(wantStarts) {
		t.Fatalf("got %d placements, want %d: %+v", len(got), len(wantStarts), got)
	}
	for i, want := range wantStarts {
		if !got[i].Interval.Start.Equal(want) {
			t.Errorf("placement %d starts %s, want %s", i, got[i].Interval.Start.Format("15:04"), want.Format("15:04"))
		}
	}

	for i := range got {
		for _, b := range blocks {
			if got[i].Interval.Overlaps(b.TimeInterval) {
				t.Errorf("placement %s overlaps block %s", got[i].Interval, b.TimeInterval)
			}
		}
		for j := i + 1; j < len(got); j++ {
			if Gap(got[i].Interval, got[j].Interval) < 10*time.Minute {
				t.Errorf("placements %s and %s too close", got[i].Interval, got[j].Interval)
			}
		}
	}
}

func TestValidatePlacements_SpacingChecksAllNeighbours(t *testing.T) {
	windows := []models.FreeWindow{{TimeInterval: span(8, 0, 18, 0), Size: models.SizeLarge}}

	// The third candidate sits far from the second but too close to the first.
	candidates := []models.ActivityCandidate{
		candidate(models.CategoryWalk, 10, 0, 10, 30),
		candidate(models.CategoryBreathing, 8, 0, 8, 5),
		candidate(models.CategoryStretching, 10, 35, 10, 45),
	}
	got := ValidatePlacements(candidates, windows, nil, 15)
	if len(got) != 2 {
		t.Fatalf("got %d placements, want 2: %+v", len(got), got)
	}
	if got[0].Category != models.CategoryBreathing || got[1].Category != models.CategoryWalk {
		t.Errorf("unexpected placements %+v", got)
	}
}

func TestValidatePlacements_Empty(t *testing.T) {
	got := ValidatePlacements(nil, nil, nil, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSchedulerLayout(t *testing.T) {
	s := New(Options{BufferMinutes: 5, MinWindowMinutes: 10})
	active := defaultActive(t)

	layout := s.Layout([]models.Commitment{commitment("meeting", 9, 0, 10, 0)}, active)
	if len(layout.Blocks) != 1 || len(layout.Windows) != 2 {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if layout.FreeMinutes() != 830 {
		t.Errorf("FreeMinutes = %d, want 830", layout.FreeMinutes())
	}
	if layout.Intensity.Level != models.IntensityLow {
		t.Errorf("intensity = %s, want low", layout.Intensity.Level)
	}

	if New(Options{BufferMinutes: -1, MinWindowMinutes: -1}).Options() != (Options{}) {
		t.Error("negative options should clamp to zero")
	}
}
