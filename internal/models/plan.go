package models

import (
	"fmt"
	"strings"
)

// Category is the closed set of activity kinds the engine will place.
type Category string

const (
	CategoryBreathing   Category = "breathing"
	CategoryMeditation  Category = "meditation"
	CategoryMindfulness Category = "mindfulness"
	CategoryStretching  Category = "stretching"
	CategoryRest        Category = "rest"
	CategoryHydration   Category = "hydration"
	CategoryReading     Category = "reading"
	CategoryJournaling  Category = "journaling"
	CategoryWalk        Category = "walk"
	CategoryMovement    Category = "movement"
	CategorySocial      Category = "social"
	CategoryCreative    Category = "creative"
	CategoryOutdoor     Category = "outdoor"
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryBreathing,
	CategoryMeditation,
	CategoryMindfulness,
	CategoryStretching,
	CategoryRest,
	CategoryHydration,
	CategoryReading,
	CategoryJournaling,
	CategoryWalk,
	CategoryMovement,
	CategorySocial,
	CategoryCreative,
	CategoryOutdoor,
}

// ParseCategory maps a string onto a known Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown activity category %q", s)
}

// Strategy names the rule that produced a GenerationPolicy.
type Strategy string

const (
	StrategyCalming     Strategy = "calming"
	StrategyRestorative Strategy = "restorative"
	StrategyUplifting   Strategy = "uplifting"
	StrategyExpansive   Strategy = "expansive"
	StrategyBalanced    Strategy = "balanced"
)

// GenerationPolicy controls how many activities are generated, of which
// kinds, and how far apart they must be.
type GenerationPolicy struct {
	Strategy          Strategy   `json:"strategy"`
	TargetCount       int        `json:"target_count"`
	AllowedCategories []Category `json:"allowed_categories"`
	MinSpacingMinutes int        `json:"min_spacing_minutes"`
}

// Allows reports whether c is permitted by the policy.
func (p GenerationPolicy) Allows(c Category) bool {
	for _, allowed := range p.AllowedCategories {
		if allowed == c {
			return true
		}
	}
	return false
}

// ActivityCandidate is an unvalidated proposal from a generator.
type ActivityCandidate struct {
	Category    Category     `json:"category"`
	Title       string       `json:"title"`
	Interval    TimeInterval `json:"interval"`
	Description string       `json:"description,omitempty"`
}

// PlacedActivity is a candidate that passed placement validation.
type PlacedActivity struct {
	ActivityCandidate
}

// GenerationSource records which path produced the candidates.
type GenerationSource string

const (
	SourceGenerative GenerationSource = "generative"
	SourceFallback   GenerationSource = "fallback"
)
