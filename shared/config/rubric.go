package config

import (
	"fmt"
	"strings"

	"video-judge/internal/models"
)

const DefaultFocusQuery = "Analyze the video project evaluation for innovation, technical complexity, functionality, user experience, presentation, strategic vision, accessibility, and sponsor protocol. Provide a detailed assessment including transaction analysis and autonomy assessment."

type RubricConfig struct {
	Categories []models.CategorySpec `yaml:"categories"`
	FocusQuery string                `yaml:"focus_query"`
}

// DefaultCategories returns a fresh copy of the built-in hackathon catalog.
func DefaultCategories() []models.CategorySpec {
	return []models.CategorySpec{
		{Name: "Innovation", MaxScore: 5, Guideline: "Evaluate uniqueness, creativity, and novel approaches"},
		{Name: "Technical Complexity", MaxScore: 5, Guideline: "Consider implementation sophistication and technology usage"},
		{Name: "Functionality", MaxScore: 5, Guideline: "Assess feature completeness and reliability"},
		{Name: "User Experience", MaxScore: 5, Guideline: "Evaluate interface design and usability"},
		{Name: "Presentation", MaxScore: 5, Guideline: "Consider explanation clarity and demo quality"},
		{Name: "Strategic Vision", MaxScore: 5, Guideline: "Assess market understanding and growth potential"},
		{Name: "Accessibility", MaxScore: 5, Guideline: "Evaluate inclusive design and ease of adoption"},
		{
			Name:      "Sponsor Protocol Integration",
			MaxScore:  5,
			Guideline: "Only award points for explicit mentions of using sponsor technology, quoting the exact words",
			SponsorRules: []models.SponsorRule{
				{Name: "Story Protocol", Points: 2},
				{Name: "FXN", Points: 2},
				{Name: "Alliances", Points: 1},
			},
		},
		{Name: "Transaction Analysis", MaxScore: 5, Guideline: "Evaluate efficiency and security"},
		{Name: "Autonomy Assessment", MaxScore: 5, Guideline: "Assess automation level and independence"},
	}
}

func (r *RubricConfig) applyDefaults() {
	if len(r.Categories) == 0 {
		r.Categories = DefaultCategories()
	}
	if strings.TrimSpace(r.FocusQuery) == "" {
		r.FocusQuery = DefaultFocusQuery
	}
}

// Validate enforces what the builder and parser rely on: unique names, one
// shared max score, at most one sponsor category whose rules fit its max.
func (r RubricConfig) Validate() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}

	seen := make(map[string]bool, len(r.Categories))
	sponsorCategories := 0
	maxScore := r.Categories[0].MaxScore

	for i, c := range r.Categories {
		name := models.NormalizeLabel(c.Name)
		if name == "" {
			return fmt.Errorf("category %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[key] = true

		if c.MaxScore <= 0 {
			return fmt.Errorf("category %q: max_score must be positive", c.Name)
		}
		if c.MaxScore != maxScore {
			return fmt.Errorf("category %q: max_score %.0f differs from %.0f; all categories must share one max", c.Name, c.MaxScore, maxScore)
		}

		if !c.IsSponsorCategory() {
			continue
		}
		sponsorCategories++

		var total float64
		for _, s := range c.SponsorRules {
			if strings.TrimSpace(s.Name) == "" {
				return fmt.Errorf("category %q: sponsor with empty name", c.Name)
			}
			if s.Points < 0 {
				return fmt.Errorf("category %q: sponsor %q has negative points", c.Name, s.Name)
			}
			total += s.Points
		}
		if total > c.MaxScore {
			return fmt.Errorf("category %q: sponsor points total %.1f exceeds max %.1f", c.Name, total, c.MaxScore)
		}
	}

	if sponsorCategories > 1 {
		return fmt.Errorf("only one category may carry sponsor rules, found %d", sponsorCategories)
	}

	return nil
}
